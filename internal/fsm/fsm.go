// Package fsm holds the conversational state machines as pure functions:
// (session, event) -> (session, effects, outcome). Nothing here performs I/O.
package fsm

import "storebot/internal/domain/entity"

// EventKind is the shape of an inbound user event.
type EventKind int

const (
	EventSelectProduct EventKind = iota + 1
	EventStartBasket
	EventDurationPreset
	EventDurationOther
	EventReceiptHint
	EventText
	EventPhoto
	EventLocation
	EventDeliveryCapital
	EventDeliveryOther
	EventConfirm
	EventCancel

	EventAdminBeginAdd
	EventAdminBeginEdit
	EventAdminBeginNote
	EventAdminSkipPhoto
)

// Photo is one resolution variant of an uploaded image.
type Photo struct {
	FileID   string
	Width    int
	Height   int
	FileSize int
}

// Event is an inbound user action already decoded from the transport.
type Event struct {
	Kind    EventKind
	Text    string
	Months  int
	Product *entity.Product
	Lines   []entity.OrderLine
	Photos  []Photo
	Lat     float64
	Lon     float64
	Field   entity.ProductField
	OrderID string
}

// Effect is an instruction for the caller: a prompt to render or a
// side effect to perform.
type Effect int

// Checkout effects.
const (
	EffectPromptDuration Effect = iota + 1
	EffectPromptCustomDuration
	EffectInvalidDuration
	EffectPaymentDetails
	EffectPromptReceipt
	EffectPromptDeliveryChoice
	EffectPromptCapitalLocation
	EffectPromptRegion
	EffectPromptDistrict
	EffectPromptPhone
	EffectLocationReceived
	EffectShowSummary
	EffectCommit
	EffectCancelled
)

// Admin editing effects.
const (
	EffectPromptProductID Effect = iota + 100
	EffectInvalidProductID
	EffectPromptProductName
	EffectPromptProductPrice
	EffectInvalidProductPrice
	EffectPromptProductBenefits
	EffectPromptProductContra
	EffectPromptProductPhoto
	EffectPromptEditValue
	EffectPromptNote
	EffectSaveProduct
	EffectSaveNote
	EffectEditCancelled
	// EffectDuplicateProductID is emitted by callers that find the entered
	// id already taken; the editor itself has no catalog access.
	EffectDuplicateProductID
)

// Outcome summarizes what a transition did to the flow.
type Outcome int

const (
	// OutcomeContinue means the flow is still in progress.
	OutcomeContinue Outcome = iota
	// OutcomeIgnored means the event does not apply to the current step.
	OutcomeIgnored
	// OutcomeCommitted means the flow reached its final step and the
	// caller must persist the result.
	OutcomeCommitted
	// OutcomeCancelled means the session must be discarded.
	OutcomeCancelled
)

// Result is the output of one transition.
type Result struct {
	Session entity.Session
	Effects []Effect
	Outcome Outcome
}

func next(s entity.Session, effects ...Effect) Result {
	return Result{Session: s, Effects: effects, Outcome: OutcomeContinue}
}

func ignored(s entity.Session) Result {
	return Result{Session: s, Outcome: OutcomeIgnored}
}
