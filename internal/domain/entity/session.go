package entity

import "time"

// Step is the current position of a user in a multi-step flow.
type Step string

// Checkout steps.
const (
	StepIdle                   Step = ""
	StepProductSelected        Step = "product_selected"
	StepAwaitingDuration       Step = "awaiting_duration"
	StepAwaitingReceipt        Step = "awaiting_receipt"
	StepAwaitingDeliveryChoice Step = "awaiting_delivery_choice"
	StepAwaitingRegion         Step = "awaiting_region"
	StepAwaitingDistrict       Step = "awaiting_district"
	StepAwaitingPhone          Step = "awaiting_phone"
	StepAwaitingConfirmation   Step = "awaiting_confirmation"
)

// Admin editing steps.
const (
	StepAdminProductID       Step = "admin_product_id"
	StepAdminProductName     Step = "admin_product_name"
	StepAdminProductPrice    Step = "admin_product_price"
	StepAdminProductBenefits Step = "admin_product_benefits"
	StepAdminProductContra   Step = "admin_product_contraindications"
	StepAdminProductPhoto    Step = "admin_product_photo"
	StepAdminEditValue       Step = "admin_edit_value"
	StepAdminOrderNote       Step = "admin_order_note"
)

// Flow tells which state machine owns a session.
type Flow string

const (
	FlowCheckout Flow = "checkout"
	FlowAdmin    Flow = "admin"
)

// Session is the transient per-user scratch space of an in-progress flow.
type Session struct {
	UserID int64 `json:"user_id"`
	Flow   Flow  `json:"flow"`
	Step   Step  `json:"step"`

	ProductID      string      `json:"product_id,omitempty"`
	ProductName    string      `json:"product_name,omitempty"`
	UnitPrice      string      `json:"unit_price,omitempty"`
	Lines          []OrderLine `json:"lines,omitempty"`
	FromBasket     bool        `json:"from_basket,omitempty"`
	Months         int         `json:"months,omitempty"`
	Total          string      `json:"total,omitempty"`
	ReceiptPhotoID string      `json:"receipt_photo_id,omitempty"`
	Region         string      `json:"region,omitempty"`
	District       string      `json:"district,omitempty"`
	Capital        bool        `json:"capital,omitempty"`
	Phone          string      `json:"phone,omitempty"`
	Lat            *float64    `json:"lat,omitempty"`
	Lon            *float64    `json:"lon,omitempty"`

	Draft     *Product     `json:"draft,omitempty"`
	EditField ProductField `json:"edit_field,omitempty"`
	OrderID   string       `json:"order_id,omitempty"`
	Note      string       `json:"note,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

// IsExpired reports whether the session has been idle longer than ttl.
// A zero ttl never expires.
func (s *Session) IsExpired(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 || s.UpdatedAt.IsZero() {
		return false
	}

	return now.Sub(s.UpdatedAt) > ttl
}

// Delivery assembles the collected delivery fields.
func (s *Session) Delivery() DeliveryInfo {
	d := DeliveryInfo{
		Region:   s.Region,
		District: s.District,
		Phone:    s.Phone,
		Lat:      s.Lat,
		Lon:      s.Lon,
	}
	switch {
	case s.Capital:
		d.Address = s.Region
	case s.District != "":
		d.Address = s.Region + ", " + s.District
	default:
		d.Address = s.Region
	}

	return d
}
