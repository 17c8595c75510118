package fsm

import (
	"strings"

	"storebot/internal/domain/entity"
	"storebot/internal/pricing"
)

// AdminEditor drives operator catalog edits and order notes: choose field,
// supply value, persist.
//
// Add:  ProductID -> Name -> Price -> Benefits -> Contraindications -> Photo|skip -> save
// Edit: EditValue -> save
// Note: OrderNote -> save
type AdminEditor struct{}

// Next applies ev to s.
func (a AdminEditor) Next(s entity.Session, ev Event) Result {
	switch ev.Kind {
	case EventCancel:
		return Result{Effects: []Effect{EffectEditCancelled}, Outcome: OutcomeCancelled}
	case EventAdminBeginAdd:
		return next(entity.Session{
			UserID: s.UserID,
			Flow:   entity.FlowAdmin,
			Step:   entity.StepAdminProductID,
			Draft:  &entity.Product{},
		}, EffectPromptProductID)
	case EventAdminBeginEdit:
		if ev.Product == nil || !ev.Field.IsValid() {
			return ignored(s)
		}
		draft := *ev.Product
		return next(entity.Session{
			UserID:    s.UserID,
			Flow:      entity.FlowAdmin,
			Step:      entity.StepAdminEditValue,
			Draft:     &draft,
			EditField: ev.Field,
		}, EffectPromptEditValue)
	case EventAdminBeginNote:
		if ev.OrderID == "" {
			return ignored(s)
		}
		return next(entity.Session{
			UserID:  s.UserID,
			Flow:    entity.FlowAdmin,
			Step:    entity.StepAdminOrderNote,
			OrderID: ev.OrderID,
		}, EffectPromptNote)
	}

	if s.Flow != entity.FlowAdmin {
		return ignored(s)
	}
	if s.Draft == nil && s.Step != entity.StepAdminOrderNote {
		return ignored(s)
	}
	if s.Draft != nil {
		draft := *s.Draft
		s.Draft = &draft
	}

	switch s.Step {
	case entity.StepAdminProductID:
		return a.onProductID(s, ev)
	case entity.StepAdminProductName:
		return a.onText(s, ev, entity.ProductFieldName, EffectPromptProductName, entity.StepAdminProductPrice, EffectPromptProductPrice)
	case entity.StepAdminProductPrice:
		return a.onPrice(s, ev)
	case entity.StepAdminProductBenefits:
		return a.onText(s, ev, entity.ProductFieldBenefits, EffectPromptProductBenefits, entity.StepAdminProductContra, EffectPromptProductContra)
	case entity.StepAdminProductContra:
		return a.onText(s, ev, entity.ProductFieldContraindications, EffectPromptProductContra, entity.StepAdminProductPhoto, EffectPromptProductPhoto)
	case entity.StepAdminProductPhoto:
		return a.onPhoto(s, ev)
	case entity.StepAdminEditValue:
		return a.onEditValue(s, ev)
	case entity.StepAdminOrderNote:
		return a.onNote(s, ev)
	}

	return ignored(s)
}

func (a AdminEditor) onProductID(s entity.Session, ev Event) Result {
	if ev.Kind != EventText {
		return ignored(s)
	}
	id := strings.ToLower(strings.TrimSpace(ev.Text))
	if !entity.ValidProductID(id) {
		return next(s, EffectInvalidProductID)
	}
	s.Draft.ID = id
	s.Step = entity.StepAdminProductName

	return next(s, EffectPromptProductName)
}

// onText stores a required text field. Blank input repeats the field's
// own prompt.
func (a AdminEditor) onText(s entity.Session, ev Event, field entity.ProductField, again Effect, to entity.Step, prompt Effect) Result {
	if ev.Kind != EventText {
		return ignored(s)
	}
	value := strings.TrimSpace(ev.Text)
	if value == "" {
		return next(s, again)
	}
	s.Draft.Set(field, value)
	s.Step = to

	return next(s, prompt)
}

func (a AdminEditor) onPrice(s entity.Session, ev Event) Result {
	if ev.Kind != EventText {
		return ignored(s)
	}
	value := strings.TrimSpace(ev.Text)
	if _, err := pricing.Parse(value); err != nil {
		return next(s, EffectInvalidProductPrice)
	}
	s.Draft.Price = value
	s.Step = entity.StepAdminProductBenefits

	return next(s, EffectPromptProductBenefits)
}

func (a AdminEditor) onPhoto(s entity.Session, ev Event) Result {
	switch ev.Kind {
	case EventPhoto:
		best, ok := LargestPhoto(ev.Photos)
		if !ok {
			return ignored(s)
		}
		s.Draft.Photo = best.FileID
	case EventAdminSkipPhoto:
	default:
		return ignored(s)
	}

	return Result{Session: s, Effects: []Effect{EffectSaveProduct}, Outcome: OutcomeCommitted}
}

func (a AdminEditor) onEditValue(s entity.Session, ev Event) Result {
	var value string
	switch {
	case s.EditField == entity.ProductFieldPhoto && ev.Kind == EventPhoto:
		best, ok := LargestPhoto(ev.Photos)
		if !ok {
			return ignored(s)
		}
		value = best.FileID
	case ev.Kind == EventText:
		value = strings.TrimSpace(ev.Text)
		if value == "" {
			return next(s, EffectPromptEditValue)
		}
		if s.EditField == entity.ProductFieldPrice {
			if _, err := pricing.Parse(value); err != nil {
				return next(s, EffectInvalidProductPrice)
			}
		}
	default:
		return ignored(s)
	}

	s.Draft.Set(s.EditField, value)

	return Result{Session: s, Effects: []Effect{EffectSaveProduct}, Outcome: OutcomeCommitted}
}

func (a AdminEditor) onNote(s entity.Session, ev Event) Result {
	if ev.Kind != EventText {
		return ignored(s)
	}
	note := strings.TrimSpace(ev.Text)
	if note == "" {
		return next(s, EffectPromptNote)
	}
	s.Note = note

	return Result{Session: s, Effects: []Effect{EffectSaveNote}, Outcome: OutcomeCommitted}
}
