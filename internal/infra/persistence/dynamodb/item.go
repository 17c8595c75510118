package dynamodb

import (
	"time"

	"storebot/internal/domain/entity"

	"github.com/shopspring/decimal"
)

type productItem struct {
	ID                string `dynamodbav:"id"`
	Name              string `dynamodbav:"name"`
	Benefits          string `dynamodbav:"benefits,omitempty"`
	Description       string `dynamodbav:"description,omitempty"`
	Contraindications string `dynamodbav:"contraindications,omitempty"`
	Price             string `dynamodbav:"price"`
	Photo             string `dynamodbav:"photo,omitempty"`
	CreatedAt         string `dynamodbav:"created_at"`
	UpdatedAt         string `dynamodbav:"updated_at"`
}

type lineItem struct {
	ProductID string `dynamodbav:"product_id"`
	Name      string `dynamodbav:"name"`
	UnitPrice string `dynamodbav:"unit_price"`
	Quantity  int    `dynamodbav:"quantity"`
}

type statusItem struct {
	Status    string `dynamodbav:"status"`
	Timestamp string `dynamodbav:"timestamp"`
	Actor     string `dynamodbav:"actor"`
}

type noteItem struct {
	Text      string `dynamodbav:"text"`
	Actor     string `dynamodbav:"actor"`
	Timestamp string `dynamodbav:"timestamp"`
}

type deliveryItem struct {
	Region   string   `dynamodbav:"region"`
	District string   `dynamodbav:"district,omitempty"`
	Address  string   `dynamodbav:"address,omitempty"`
	Phone    string   `dynamodbav:"phone"`
	Lat      *float64 `dynamodbav:"lat,omitempty"`
	Lon      *float64 `dynamodbav:"lon,omitempty"`
}

type orderItem struct {
	ID             string       `dynamodbav:"id"`
	UserID         int64        `dynamodbav:"user_id"`
	ChatID         int64        `dynamodbav:"chat_id"`
	Username       string       `dynamodbav:"username,omitempty"`
	FullName       string       `dynamodbav:"full_name,omitempty"`
	ProductID      string       `dynamodbav:"product_id,omitempty"`
	Medicine       string       `dynamodbav:"medicine"`
	Months         int          `dynamodbav:"months,omitempty"`
	Quantity       int          `dynamodbav:"quantity,omitempty"`
	Lines          []lineItem   `dynamodbav:"lines,omitempty"`
	Price          string       `dynamodbav:"price"`
	Total          string       `dynamodbav:"total"`
	Status         string       `dynamodbav:"status"`
	StatusHistory  []statusItem `dynamodbav:"status_history"`
	Delivery       deliveryItem `dynamodbav:"delivery_info"`
	ReceiptPhotoID string       `dynamodbav:"receipt_photo_id,omitempty"`
	Notes          []noteItem   `dynamodbav:"notes,omitempty"`
	CreatedAt      string       `dynamodbav:"timestamp"`
	UpdatedAt      string       `dynamodbav:"updated_at"`
	ProcessingAt   string       `dynamodbav:"processing_at,omitempty"`
	CompletedAt    string       `dynamodbav:"completed_at,omitempty"`
	CancelledAt    string       `dynamodbav:"cancelled_at,omitempty"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)

	return t
}

func formatTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}

	return formatTime(*t)
}

func parseTimePtr(s string) *time.Time {
	if s == "" {
		return nil
	}
	t := parseTime(s)

	return &t
}

func toProductItem(p *entity.Product) productItem {
	return productItem{
		ID:                p.ID,
		Name:              p.Name,
		Benefits:          p.Benefits,
		Description:       p.Description,
		Contraindications: p.Contraindications,
		Price:             p.Price,
		Photo:             p.Photo,
		CreatedAt:         formatTime(p.CreatedAt),
		UpdatedAt:         formatTime(p.UpdatedAt),
	}
}

func fromProductItem(it productItem) *entity.Product {
	return &entity.Product{
		ID:                it.ID,
		Name:              it.Name,
		Benefits:          it.Benefits,
		Description:       it.Description,
		Contraindications: it.Contraindications,
		Price:             it.Price,
		Photo:             it.Photo,
		CreatedAt:         parseTime(it.CreatedAt),
		UpdatedAt:         parseTime(it.UpdatedAt),
	}
}

func toOrderItem(o *entity.Order) orderItem {
	it := orderItem{
		ID:        o.ID,
		UserID:    o.UserID,
		ChatID:    o.ChatID,
		Username:  o.Username,
		FullName:  o.FullName,
		ProductID: o.ProductID,
		Medicine:  o.Medicine,
		Months:    o.Months,
		Quantity:  o.Quantity,
		Price:     o.Price,
		Total:     o.Total.String(),
		Status:    string(o.Status),
		Delivery: deliveryItem{
			Region:   o.Delivery.Region,
			District: o.Delivery.District,
			Address:  o.Delivery.Address,
			Phone:    o.Delivery.Phone,
			Lat:      o.Delivery.Lat,
			Lon:      o.Delivery.Lon,
		},
		ReceiptPhotoID: o.ReceiptPhotoID,
		CreatedAt:      formatTime(o.CreatedAt),
		UpdatedAt:      formatTime(o.UpdatedAt),
		ProcessingAt:   formatTimePtr(o.ProcessingAt),
		CompletedAt:    formatTimePtr(o.CompletedAt),
		CancelledAt:    formatTimePtr(o.CancelledAt),
	}

	for _, l := range o.Lines {
		it.Lines = append(it.Lines, lineItem(l))
	}
	for _, h := range o.StatusHistory {
		it.StatusHistory = append(it.StatusHistory, statusItem{
			Status:    string(h.Status),
			Timestamp: formatTime(h.Timestamp),
			Actor:     h.Actor,
		})
	}
	for _, n := range o.Notes {
		it.Notes = append(it.Notes, noteItem{Text: n.Text, Actor: n.Actor, Timestamp: formatTime(n.Timestamp)})
	}

	return it
}

func fromOrderItem(it orderItem) *entity.Order {
	total, _ := decimal.NewFromString(it.Total)

	o := &entity.Order{
		ID:        it.ID,
		UserID:    it.UserID,
		ChatID:    it.ChatID,
		Username:  it.Username,
		FullName:  it.FullName,
		ProductID: it.ProductID,
		Medicine:  it.Medicine,
		Months:    it.Months,
		Quantity:  it.Quantity,
		Price:     it.Price,
		Total:     total,
		Status:    entity.OrderStatus(it.Status),
		Delivery: entity.DeliveryInfo{
			Region:   it.Delivery.Region,
			District: it.Delivery.District,
			Address:  it.Delivery.Address,
			Phone:    it.Delivery.Phone,
			Lat:      it.Delivery.Lat,
			Lon:      it.Delivery.Lon,
		},
		ReceiptPhotoID: it.ReceiptPhotoID,
		CreatedAt:      parseTime(it.CreatedAt),
		UpdatedAt:      parseTime(it.UpdatedAt),
		ProcessingAt:   parseTimePtr(it.ProcessingAt),
		CompletedAt:    parseTimePtr(it.CompletedAt),
		CancelledAt:    parseTimePtr(it.CancelledAt),
	}

	for _, l := range it.Lines {
		o.Lines = append(o.Lines, entity.OrderLine(l))
	}
	for _, h := range it.StatusHistory {
		o.StatusHistory = append(o.StatusHistory, entity.StatusChange{
			Status:    entity.OrderStatus(h.Status),
			Timestamp: parseTime(h.Timestamp),
			Actor:     h.Actor,
		})
	}
	for _, n := range it.Notes {
		o.Notes = append(o.Notes, entity.OrderNote{Text: n.Text, Actor: n.Actor, Timestamp: parseTime(n.Timestamp)})
	}

	return o
}
