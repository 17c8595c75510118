package entity

import "slices"

// Clone returns a deep copy of the order.
func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	cp := *o
	cp.Lines = slices.Clone(o.Lines)
	cp.StatusHistory = slices.Clone(o.StatusHistory)
	cp.Notes = slices.Clone(o.Notes)
	cp.Delivery.Lat = clonePtr(o.Delivery.Lat)
	cp.Delivery.Lon = clonePtr(o.Delivery.Lon)
	cp.ProcessingAt = clonePtr(o.ProcessingAt)
	cp.CompletedAt = clonePtr(o.CompletedAt)
	cp.CancelledAt = clonePtr(o.CancelledAt)

	return &cp
}

// Clone returns a deep copy of the session.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	cp := *s
	cp.Lines = slices.Clone(s.Lines)
	cp.Lat = clonePtr(s.Lat)
	cp.Lon = clonePtr(s.Lon)
	cp.Draft = clonePtr(s.Draft)

	return &cp
}

// Clone returns a deep copy of the basket.
func (b *Basket) Clone() *Basket {
	if b == nil {
		return nil
	}
	cp := *b
	cp.Items = make(map[string]int, len(b.Items))
	for k, v := range b.Items {
		cp.Items[k] = v
	}

	return &cp
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p

	return &v
}
