package fsm

import (
	"strconv"
	"strings"

	"storebot/internal/domain/entity"
	domainerrors "storebot/internal/domain/errors"
	"storebot/internal/pricing"
)

// Checkout walks a user from product selection to a confirmed order.
//
//	ProductSelected -> AwaitingDuration -> AwaitingReceipt -> AwaitingDeliveryChoice
//	  -> (AwaitingRegion -> AwaitingDistrict | capital) -> AwaitingPhone
//	  -> AwaitingConfirmation -> committed | cancelled
//
// Basket checkouts enter at AwaitingReceipt. The capital branch collects an
// optional shared location inside AwaitingPhone.
type Checkout struct {
	CapitalRegion string
}

// Next applies ev to s.
func (c Checkout) Next(s entity.Session, ev Event) (Result, error) {
	switch ev.Kind {
	case EventCancel:
		return Result{Effects: []Effect{EffectCancelled}, Outcome: OutcomeCancelled}, nil
	case EventSelectProduct:
		return c.selectProduct(s, ev)
	case EventStartBasket:
		return c.startBasket(s, ev)
	}

	if s.Flow != entity.FlowCheckout {
		return ignored(s), nil
	}

	switch s.Step {
	case entity.StepProductSelected, entity.StepAwaitingDuration:
		return c.onDuration(s, ev), nil
	case entity.StepAwaitingReceipt:
		return c.onReceipt(s, ev), nil
	case entity.StepAwaitingDeliveryChoice:
		return c.onDeliveryChoice(s, ev), nil
	case entity.StepAwaitingRegion:
		return c.onRegion(s, ev), nil
	case entity.StepAwaitingDistrict:
		return c.onDistrict(s, ev), nil
	case entity.StepAwaitingPhone:
		return c.onPhone(s, ev), nil
	case entity.StepAwaitingConfirmation:
		return c.onConfirmation(s, ev), nil
	}

	return ignored(s), nil
}

// selectProduct starts a fresh session. ProductSelected is transient: the
// duration prompt is emitted in the same transition.
func (c Checkout) selectProduct(s entity.Session, ev Event) (Result, error) {
	if ev.Product == nil {
		return ignored(s), domainerrors.ErrProductNotFound
	}

	fresh := entity.Session{
		UserID:      s.UserID,
		Flow:        entity.FlowCheckout,
		Step:        entity.StepAwaitingDuration,
		ProductID:   ev.Product.ID,
		ProductName: ev.Product.Name,
		UnitPrice:   ev.Product.Price,
	}

	return next(fresh, EffectPromptDuration), nil
}

func (c Checkout) startBasket(s entity.Session, ev Event) (Result, error) {
	if len(ev.Lines) == 0 {
		return ignored(s), domainerrors.ErrEmptyBasket
	}

	names := make([]string, 0, len(ev.Lines))
	for _, l := range ev.Lines {
		names = append(names, l.Name)
	}

	fresh := entity.Session{
		UserID:      s.UserID,
		Flow:        entity.FlowCheckout,
		Step:        entity.StepAwaitingReceipt,
		ProductName: strings.Join(names, ", "),
		Lines:       ev.Lines,
		FromBasket:  true,
		Total:       pricing.Sum(ev.Lines).Display,
	}

	return next(fresh, EffectPaymentDetails), nil
}

func (c Checkout) onDuration(s entity.Session, ev Event) Result {
	switch ev.Kind {
	case EventDurationPreset:
		if ev.Months < 1 {
			return next(s, EffectInvalidDuration)
		}
		return c.withMonths(s, ev.Months)
	case EventDurationOther:
		return next(s, EffectPromptCustomDuration)
	case EventText:
		months, err := strconv.Atoi(strings.TrimSpace(ev.Text))
		if err != nil || months < 1 {
			return next(s, EffectInvalidDuration)
		}
		return c.withMonths(s, months)
	}

	return ignored(s)
}

func (c Checkout) withMonths(s entity.Session, months int) Result {
	s.Months = months
	s.Total = pricing.Total(s.UnitPrice, months).Display
	s.Step = entity.StepAwaitingReceipt

	return next(s, EffectPaymentDetails)
}

func (c Checkout) onReceipt(s entity.Session, ev Event) Result {
	switch ev.Kind {
	case EventPhoto:
		best, ok := LargestPhoto(ev.Photos)
		if !ok {
			return ignored(s)
		}
		s.ReceiptPhotoID = best.FileID
		s.Step = entity.StepAwaitingDeliveryChoice
		return next(s, EffectPromptDeliveryChoice)
	case EventReceiptHint, EventText:
		return next(s, EffectPromptReceipt)
	}

	return ignored(s)
}

func (c Checkout) onDeliveryChoice(s entity.Session, ev Event) Result {
	switch ev.Kind {
	case EventDeliveryCapital:
		s.Capital = true
		s.Region = c.CapitalRegion
		s.District = ""
		s.Step = entity.StepAwaitingPhone
		return next(s, EffectPromptCapitalLocation)
	case EventDeliveryOther:
		s.Capital = false
		s.Step = entity.StepAwaitingRegion
		return next(s, EffectPromptRegion)
	case EventText:
		return next(s, EffectPromptDeliveryChoice)
	}

	return ignored(s)
}

func (c Checkout) onRegion(s entity.Session, ev Event) Result {
	if ev.Kind != EventText {
		return ignored(s)
	}
	region := strings.TrimSpace(ev.Text)
	if region == "" {
		return next(s, EffectPromptRegion)
	}
	s.Region = region
	s.Step = entity.StepAwaitingDistrict

	return next(s, EffectPromptDistrict)
}

func (c Checkout) onDistrict(s entity.Session, ev Event) Result {
	if ev.Kind != EventText {
		return ignored(s)
	}
	district := strings.TrimSpace(ev.Text)
	if district == "" {
		return next(s, EffectPromptDistrict)
	}
	s.District = district
	s.Step = entity.StepAwaitingPhone

	return next(s, EffectPromptPhone)
}

// onPhone records a shared location without advancing; only phone text
// completes the step.
func (c Checkout) onPhone(s entity.Session, ev Event) Result {
	switch ev.Kind {
	case EventLocation:
		lat, lon := ev.Lat, ev.Lon
		s.Lat = &lat
		s.Lon = &lon
		return next(s, EffectLocationReceived)
	case EventText:
		phone := strings.TrimSpace(ev.Text)
		if phone == "" {
			return next(s, EffectPromptPhone)
		}
		s.Phone = phone
		s.Step = entity.StepAwaitingConfirmation
		return next(s, EffectShowSummary)
	}

	return ignored(s)
}

func (c Checkout) onConfirmation(s entity.Session, ev Event) Result {
	switch ev.Kind {
	case EventConfirm:
		return Result{Session: s, Effects: []Effect{EffectCommit}, Outcome: OutcomeCommitted}
	case EventText:
		return next(s, EffectShowSummary)
	}

	return ignored(s)
}

// LargestPhoto picks the highest-resolution variant. Ties keep the later
// entry, matching Telegram's ascending size ordering.
func LargestPhoto(photos []Photo) (Photo, bool) {
	if len(photos) == 0 {
		return Photo{}, false
	}

	best := photos[0]
	for _, p := range photos[1:] {
		if area(p) > area(best) || (area(p) == area(best) && p.FileSize >= best.FileSize) {
			best = p
		}
	}

	return best, best.FileID != ""
}

func area(p Photo) int {
	return p.Width * p.Height
}
