package render

import (
	"strings"
	"testing"
	"time"

	"storebot/config"
	"storebot/internal/callback"
	"storebot/internal/domain/entity"
	"storebot/internal/domain/service"
	"storebot/internal/fsm"
	"storebot/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRenderer() *Renderer {
	cfg := &config.Config{}
	cfg.Store.Name = "Test Store"
	cfg.Store.CapitalRegion = "Toshkent"
	cfg.Store.PaymentCard = "8600 1234 5678 9012"
	cfg.Checkout.PresetMonths = []int{1, 2, 3}

	return New(cfg)
}

func testOrder() *entity.Order {
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	o := &entity.Order{
		ID:             "ab12cd34",
		UserID:         1,
		FullName:       "Aziz <Karimov>",
		Username:       "aziz",
		Medicine:       "Bio Tribesteron",
		Months:         2,
		Price:          "300000 UZS",
		ReceiptPhotoID: "receipt",
		Delivery:       entity.DeliveryInfo{Region: "Samarqand", Address: "Samarqand, Urgut", Phone: "+998901234567"},
		CreatedAt:      at,
	}
	o.ApplyStatus(entity.OrderStatusNew, "user:1", at)

	return o
}

// buttons flattens the inline keyboard of msg.
func buttons(msg service.Message) []service.Button {
	if msg.Markup == nil {
		return nil
	}

	var out []service.Button
	for _, r := range msg.Markup.Inline {
		out = append(out, r...)
	}

	return out
}

func assertDecodable(t *testing.T, msg service.Message) {
	t.Helper()

	for _, b := range buttons(msg) {
		assert.LessOrEqual(t, len(b.Data), callback.MaxLen, b.Text)
		_, err := callback.Decode(b.Data)
		assert.NoError(t, err, b.Text)
	}
}

func TestRenderer_ProductEscapesAndLinksActions(t *testing.T) {
	r := newRenderer()
	p := &entity.Product{ID: "bio_tribesteron", Name: "Bio <b>", Price: "150,000 UZS", Benefits: "A & B", Photo: "photo"}

	msg := r.Product(p)
	assert.True(t, msg.HTML)
	assert.Equal(t, "photo", msg.Photo)
	assert.Contains(t, msg.Text, "Bio &lt;b&gt;")
	assert.Contains(t, msg.Text, "A &amp; B")
	assert.NotContains(t, msg.Text, "Qarshi")
	assertDecodable(t, msg)

	action, err := callback.Decode(buttons(msg)[0].Data)
	require.NoError(t, err)
	assert.Equal(t, callback.TagOrder, action.Tag)
	assert.Equal(t, "bio_tribesteron", action.Arg(0))
}

func TestRenderer_LongestProductIDFitsEveryButton(t *testing.T) {
	r := newRenderer()
	p := &entity.Product{ID: strings.Repeat("z", entity.MaxProductIDLen), Name: "Z", Price: "1 UZS"}
	require.NoError(t, p.Validate())

	assertDecodable(t, r.Product(p))
	assertDecodable(t, r.Products([]*entity.Product{p}))
	assertDecodable(t, r.AdminProducts([]*entity.Product{p}))
	assertDecodable(t, r.FieldChooser(p))
	assertDecodable(t, r.DeleteConfirm(p))
}

func TestRenderer_CheckoutEffects(t *testing.T) {
	r := newRenderer()
	s := entity.Session{
		UserID:      1,
		Flow:        entity.FlowCheckout,
		ProductName: "Bio Tribesteron",
		Months:      2,
		Total:       "300000 UZS",
		Region:      "Samarqand",
		District:    "Urgut",
		Phone:       "+998901234567",
	}

	for _, effect := range []fsm.Effect{
		fsm.EffectPromptDuration,
		fsm.EffectPromptCustomDuration,
		fsm.EffectInvalidDuration,
		fsm.EffectPaymentDetails,
		fsm.EffectPromptReceipt,
		fsm.EffectPromptDeliveryChoice,
		fsm.EffectPromptCapitalLocation,
		fsm.EffectPromptRegion,
		fsm.EffectPromptDistrict,
		fsm.EffectPromptPhone,
		fsm.EffectLocationReceived,
		fsm.EffectShowSummary,
		fsm.EffectCancelled,
	} {
		msg, ok := r.Checkout(effect, s)
		require.True(t, ok, "effect %d", effect)
		assert.NotEmpty(t, msg.Text, "effect %d", effect)
		assertDecodable(t, msg)
	}

	_, ok := r.Checkout(fsm.EffectCommit, s)
	assert.False(t, ok)
}

func TestRenderer_DurationPromptPresets(t *testing.T) {
	msg, ok := newRenderer().Checkout(fsm.EffectPromptDuration, entity.Session{ProductName: "Bio"})
	require.True(t, ok)

	all := buttons(msg)
	require.Len(t, all, 5)
	action, err := callback.Decode(all[1].Data)
	require.NoError(t, err)
	assert.Equal(t, callback.TagMonths, action.Tag)
	assert.Equal(t, "2", action.Arg(0))
}

func TestRenderer_PaymentDetailsShowsCard(t *testing.T) {
	msg, _ := newRenderer().Checkout(fsm.EffectPaymentDetails, entity.Session{ProductName: "Bio", Months: 2, Total: "300000 UZS"})

	assert.Contains(t, msg.Text, "8600 1234 5678 9012")
	assert.Contains(t, msg.Text, "300000 UZS")
	assert.Contains(t, msg.Text, "2 oy")
}

func TestRenderer_SummaryCapitalWithLocation(t *testing.T) {
	lat, lon := 41.3, 69.2
	s := entity.Session{Capital: true, Region: "Toshkent", Phone: "+998", Lat: &lat, Lon: &lon}

	msg, _ := newRenderer().Checkout(fsm.EffectShowSummary, s)
	assert.Contains(t, msg.Text, "Toshkent (ulashilgan joylashuv)")
}

func TestRenderer_OrderCardAndFallback(t *testing.T) {
	r := newRenderer()
	o := testOrder()

	card := r.OrderCard(o)
	assert.Equal(t, "receipt", card.Photo)
	assert.Contains(t, card.Text, "ab12cd34")
	assert.Contains(t, card.Text, "Aziz &lt;Karimov&gt;")
	assertDecodable(t, card)

	for _, b := range buttons(card) {
		action, err := callback.Decode(b.Data)
		require.NoError(t, err)
		assert.Equal(t, callback.TagAdminStatus, action.Tag)
		assert.NotEqual(t, string(entity.OrderStatusNew), action.Arg(1))
	}
	assert.Len(t, buttons(card), len(entity.OrderStatuses)-1)

	fallback := r.RelayFallback(o)
	assert.Empty(t, fallback.Photo)
	assert.True(t, strings.HasPrefix(fallback.Text, "⚠️"))
}

func TestRenderer_AdminOrderShowsHistoryAndNotes(t *testing.T) {
	o := testOrder()
	o.ApplyStatus(entity.OrderStatusProcessing, "admin:9", o.CreatedAt.Add(time.Hour))
	o.Notes = []entity.OrderNote{{Text: "Kuryer <tez>", Actor: "admin:9", Timestamp: o.CreatedAt}}

	msg := newRenderer().AdminOrder(o)
	assert.Contains(t, msg.Text, "admin:9")
	assert.Contains(t, msg.Text, "Kuryer &lt;tez&gt;")
	assertDecodable(t, msg)

	all := buttons(msg)
	last, err := callback.Decode(all[len(all)-1].Data)
	require.NoError(t, err)
	assert.Equal(t, callback.TagAdminOrders, last.Tag)
}

func TestRenderer_AdminOrdersFilter(t *testing.T) {
	filter := entity.OrderStatusCancelled
	msg := newRenderer().AdminOrders(nil, &filter)

	assert.Contains(t, msg.Text, StatusLabel(entity.OrderStatusCancelled))
	assert.Contains(t, msg.Text, "topilmadi")
	assertDecodable(t, msg)
}

func TestRenderer_AdminEffects(t *testing.T) {
	r := newRenderer()
	reply := &usecase.AdminReply{Session: entity.Session{EditField: entity.ProductFieldPrice, OrderID: "ab12cd34"}}

	msg, ok := r.Admin(fsm.EffectPromptEditValue, reply)
	require.True(t, ok)
	assert.Contains(t, msg.Text, "Narxi")

	_, ok = r.Admin(fsm.EffectSaveProduct, reply)
	assert.False(t, ok)

	reply.Product = &entity.Product{Name: "Neo"}
	msg, ok = r.Admin(fsm.EffectSaveProduct, reply)
	require.True(t, ok)
	assert.Contains(t, msg.Text, "Neo")
}

func TestRenderer_BasketTotals(t *testing.T) {
	lines := []entity.OrderLine{
		{ProductID: "a", Name: "A", UnitPrice: "100,000 UZS", Quantity: 2},
		{ProductID: "b", Name: "B", UnitPrice: "50,000 UZS", Quantity: 1},
	}

	msg := newRenderer().Basket(lines)
	assert.Contains(t, msg.Text, "A x 2 = 200000 UZS")
	assert.Contains(t, msg.Text, "250000 UZS")

	empty := newRenderer().Basket(nil)
	assert.Contains(t, empty.Text, "bo'sh")
}

func TestRenderer_Stats(t *testing.T) {
	msg := newRenderer().Stats(&usecase.Stats{
		Orders:   3,
		ByStatus: map[entity.OrderStatus]int{entity.OrderStatusCompleted: 2, entity.OrderStatusNew: 1},
		Revenue:  decimal.NewFromInt(300000),
		Products: 2,
	})

	assert.Contains(t, msg.Text, "Jami buyurtmalar: 3")
	assert.Contains(t, msg.Text, "300000")
}

func TestStatusLabel(t *testing.T) {
	assert.Equal(t, "🆕 Yangi", StatusLabel(entity.OrderStatusNew))
	assert.Equal(t, "unknown", StatusLabel(entity.OrderStatus("unknown")))
}
