package fsm

import (
	"testing"

	"storebot/internal/domain/entity"
	domainerrors "storebot/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testProduct = &entity.Product{ID: "bio_tribesteron", Name: "Bio Tribesteron", Price: "150,000 UZS"}

func step(t *testing.T, c Checkout, s entity.Session, ev Event) Result {
	t.Helper()

	res, err := c.Next(s, ev)
	require.NoError(t, err)

	return res
}

func TestCheckout_RegionalHappyPath(t *testing.T) {
	c := Checkout{CapitalRegion: "Toshkent"}

	res := step(t, c, entity.Session{UserID: 1}, Event{Kind: EventSelectProduct, Product: testProduct})
	assert.Equal(t, entity.StepAwaitingDuration, res.Session.Step)
	assert.Equal(t, []Effect{EffectPromptDuration}, res.Effects)
	assert.Equal(t, int64(1), res.Session.UserID)

	res = step(t, c, res.Session, Event{Kind: EventDurationPreset, Months: 2})
	assert.Equal(t, entity.StepAwaitingReceipt, res.Session.Step)
	assert.Equal(t, "300000 UZS", res.Session.Total)
	assert.Equal(t, []Effect{EffectPaymentDetails}, res.Effects)

	res = step(t, c, res.Session, Event{Kind: EventPhoto, Photos: []Photo{
		{FileID: "small", Width: 90, Height: 90},
		{FileID: "large", Width: 1280, Height: 960},
	}})
	assert.Equal(t, "large", res.Session.ReceiptPhotoID)
	assert.Equal(t, entity.StepAwaitingDeliveryChoice, res.Session.Step)

	res = step(t, c, res.Session, Event{Kind: EventDeliveryOther})
	assert.Equal(t, entity.StepAwaitingRegion, res.Session.Step)
	assert.Equal(t, []Effect{EffectPromptRegion}, res.Effects)

	res = step(t, c, res.Session, Event{Kind: EventText, Text: " Samarqand "})
	assert.Equal(t, "Samarqand", res.Session.Region)
	assert.Equal(t, entity.StepAwaitingDistrict, res.Session.Step)

	res = step(t, c, res.Session, Event{Kind: EventText, Text: "Urgut"})
	assert.Equal(t, entity.StepAwaitingPhone, res.Session.Step)
	assert.Equal(t, []Effect{EffectPromptPhone}, res.Effects)

	res = step(t, c, res.Session, Event{Kind: EventText, Text: "+998901234567"})
	assert.Equal(t, entity.StepAwaitingConfirmation, res.Session.Step)
	assert.Equal(t, []Effect{EffectShowSummary}, res.Effects)

	res = step(t, c, res.Session, Event{Kind: EventConfirm})
	assert.Equal(t, OutcomeCommitted, res.Outcome)
	assert.Equal(t, []Effect{EffectCommit}, res.Effects)
	assert.Equal(t, "Samarqand, Urgut", res.Session.Delivery().Address)
}

func TestCheckout_CapitalBranch(t *testing.T) {
	c := Checkout{CapitalRegion: "capital"}
	s := entity.Session{
		UserID:         1,
		Flow:           entity.FlowCheckout,
		Step:           entity.StepAwaitingDeliveryChoice,
		ReceiptPhotoID: "receipt",
	}

	res := step(t, c, s, Event{Kind: EventDeliveryCapital})
	assert.True(t, res.Session.Capital)
	assert.Equal(t, "capital", res.Session.Region)
	assert.Equal(t, entity.StepAwaitingPhone, res.Session.Step)
	assert.Equal(t, []Effect{EffectPromptCapitalLocation}, res.Effects)

	res = step(t, c, res.Session, Event{Kind: EventLocation, Lat: 41.31, Lon: 69.28})
	assert.Equal(t, entity.StepAwaitingPhone, res.Session.Step)
	assert.Equal(t, []Effect{EffectLocationReceived}, res.Effects)
	require.NotNil(t, res.Session.Lat)
	assert.InDelta(t, 41.31, *res.Session.Lat, 1e-9)

	res = step(t, c, res.Session, Event{Kind: EventText, Text: "+998901234567"})
	assert.Equal(t, entity.StepAwaitingConfirmation, res.Session.Step)

	d := res.Session.Delivery()
	assert.Equal(t, "capital", d.Address)
	assert.True(t, d.HasLocation())
}

func TestCheckout_CustomDuration(t *testing.T) {
	c := Checkout{}
	s := step(t, c, entity.Session{UserID: 1}, Event{Kind: EventSelectProduct, Product: testProduct}).Session

	res := step(t, c, s, Event{Kind: EventDurationOther})
	assert.Equal(t, []Effect{EffectPromptCustomDuration}, res.Effects)
	assert.Equal(t, entity.StepAwaitingDuration, res.Session.Step)

	for _, input := range []string{"abc", "0", "-2", ""} {
		res = step(t, c, res.Session, Event{Kind: EventText, Text: input})
		assert.Equal(t, []Effect{EffectInvalidDuration}, res.Effects, "input %q", input)
		assert.Equal(t, entity.StepAwaitingDuration, res.Session.Step)
	}

	res = step(t, c, res.Session, Event{Kind: EventText, Text: " 5 "})
	assert.Equal(t, 5, res.Session.Months)
	assert.Equal(t, "750000 UZS", res.Session.Total)
}

func TestCheckout_UnparseablePrice(t *testing.T) {
	c := Checkout{}
	product := &entity.Product{ID: "x", Name: "X", Price: "Kelishilgan"}

	s := step(t, c, entity.Session{UserID: 1}, Event{Kind: EventSelectProduct, Product: product}).Session
	res := step(t, c, s, Event{Kind: EventDurationPreset, Months: 2})

	assert.Equal(t, "2 x Kelishilgan", res.Session.Total)
}

func TestCheckout_ReceiptRequiresPhoto(t *testing.T) {
	c := Checkout{}
	s := entity.Session{UserID: 1, Flow: entity.FlowCheckout, Step: entity.StepAwaitingReceipt}

	res := step(t, c, s, Event{Kind: EventText, Text: "to'ladim"})
	assert.Equal(t, []Effect{EffectPromptReceipt}, res.Effects)
	assert.Equal(t, entity.StepAwaitingReceipt, res.Session.Step)

	res = step(t, c, s, Event{Kind: EventReceiptHint})
	assert.Equal(t, []Effect{EffectPromptReceipt}, res.Effects)

	res = step(t, c, s, Event{Kind: EventPhoto})
	assert.Equal(t, OutcomeIgnored, res.Outcome)
}

func TestCheckout_BasketEntersAtReceipt(t *testing.T) {
	c := Checkout{}
	lines := []entity.OrderLine{
		{ProductID: "a", Name: "A", UnitPrice: "150,000 UZS", Quantity: 2},
		{ProductID: "b", Name: "B", UnitPrice: "10,000 UZS", Quantity: 1},
	}

	res := step(t, c, entity.Session{UserID: 1}, Event{Kind: EventStartBasket, Lines: lines})
	assert.Equal(t, entity.StepAwaitingReceipt, res.Session.Step)
	assert.True(t, res.Session.FromBasket)
	assert.Equal(t, "A, B", res.Session.ProductName)
	assert.Equal(t, "310000 UZS", res.Session.Total)
	assert.Equal(t, []Effect{EffectPaymentDetails}, res.Effects)

	_, err := c.Next(entity.Session{UserID: 1}, Event{Kind: EventStartBasket})
	assert.ErrorIs(t, err, domainerrors.ErrEmptyBasket)
}

func TestCheckout_SelectUnknownProduct(t *testing.T) {
	_, err := Checkout{}.Next(entity.Session{UserID: 1}, Event{Kind: EventSelectProduct})
	assert.ErrorIs(t, err, domainerrors.ErrProductNotFound)
}

func TestCheckout_SelectResetsSession(t *testing.T) {
	c := Checkout{}
	s := entity.Session{
		UserID:  1,
		Flow:    entity.FlowCheckout,
		Step:    entity.StepAwaitingPhone,
		Region:  "Samarqand",
		Capital: true,
	}

	res := step(t, c, s, Event{Kind: EventSelectProduct, Product: testProduct})
	assert.Empty(t, res.Session.Region)
	assert.False(t, res.Session.Capital)
	assert.Equal(t, testProduct.ID, res.Session.ProductID)
}

func TestCheckout_CancelFromAnyStep(t *testing.T) {
	c := Checkout{}
	for _, st := range []entity.Step{
		entity.StepAwaitingDuration,
		entity.StepAwaitingReceipt,
		entity.StepAwaitingPhone,
		entity.StepAwaitingConfirmation,
	} {
		res := step(t, c, entity.Session{UserID: 1, Flow: entity.FlowCheckout, Step: st}, Event{Kind: EventCancel})
		assert.Equal(t, OutcomeCancelled, res.Outcome)
		assert.Equal(t, []Effect{EffectCancelled}, res.Effects)
	}
}

func TestCheckout_IgnoresOutsideFlow(t *testing.T) {
	c := Checkout{}

	res := step(t, c, entity.Session{UserID: 1}, Event{Kind: EventText, Text: "salom"})
	assert.Equal(t, OutcomeIgnored, res.Outcome)

	res = step(t, c, entity.Session{UserID: 1, Flow: entity.FlowAdmin, Step: entity.StepAdminProductName}, Event{Kind: EventConfirm})
	assert.Equal(t, OutcomeIgnored, res.Outcome)
}

func TestCheckout_ConfirmationRepeatsSummary(t *testing.T) {
	s := entity.Session{UserID: 1, Flow: entity.FlowCheckout, Step: entity.StepAwaitingConfirmation}

	res := step(t, Checkout{}, s, Event{Kind: EventText, Text: "ha"})
	assert.Equal(t, []Effect{EffectShowSummary}, res.Effects)
	assert.Equal(t, OutcomeContinue, res.Outcome)
}

func TestLargestPhoto(t *testing.T) {
	_, ok := LargestPhoto(nil)
	assert.False(t, ok)

	best, ok := LargestPhoto([]Photo{
		{FileID: "a", Width: 100, Height: 100, FileSize: 10},
		{FileID: "b", Width: 800, Height: 600, FileSize: 50},
		{FileID: "c", Width: 800, Height: 600, FileSize: 60},
		{FileID: "d", Width: 320, Height: 240, FileSize: 20},
	})
	require.True(t, ok)
	assert.Equal(t, "c", best.FileID)
}
