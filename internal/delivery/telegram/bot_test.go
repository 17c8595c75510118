package telegram

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"storebot/config"
	"storebot/internal/callback"
	"storebot/internal/domain/entity"
	domainerrors "storebot/internal/domain/errors"
	"storebot/internal/domain/repository"
	"storebot/internal/domain/service"
	"storebot/internal/infra/persistence/memory"
	mockservice "storebot/internal/mocks/service"
	"storebot/internal/render"
	"storebot/internal/usecase/impl"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

const (
	adminID    int64 = 9
	customerID int64 = 1
)

type fakeUpdates struct {
	ch      chan tgbotapi.Update
	stopped bool
}

func (f *fakeUpdates) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.ch
}

func (f *fakeUpdates) StopReceivingUpdates() {
	f.stopped = true
}

type botFixture struct {
	bot       *OrderBot
	lc        *fxtest.Lifecycle
	updates   *fakeUpdates
	messenger *mockservice.MockMessenger
	store     *memory.Store
	render    *render.Renderer
	nextID    int
}

func newBotFixture(t *testing.T) *botFixture {
	t.Helper()

	cfg := &config.Config{}
	cfg.Store.Name = "Test Store"
	cfg.Store.CapitalRegion = "Toshkent"
	cfg.Admin.IDs = []int64{adminID}
	cfg.Admin.OrderChannel = "@orders"
	cfg.Checkout.PresetMonths = []int{1, 2, 3}
	cfg.Orders.PageSize = 10
	cfg.Orders.NotifyTimeout = time.Second
	cfg.Telegram.PollTimeout = 1

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore()
	sessions := memory.NewSessionStore()
	require.NoError(t, store.PutProduct(context.Background(), &entity.Product{
		ID: "bio_tribesteron", Name: "Bio Tribesteron", Price: "150,000 UZS",
	}))

	messenger := mockservice.NewMockMessenger(t)
	messenger.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(1, nil).Maybe()
	messenger.On("SendLocation", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	messenger.On("AnswerCallback", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	messenger.On("Edit", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()

	renderer := render.New(cfg)
	catalog := impl.NewCatalogService(store, logger)
	baskets := impl.NewBasketService(sessions, catalog, logger)
	orders := impl.NewOrderService(store, messenger, renderer, cfg, logger)
	t.Cleanup(orders.Wait)

	updates := &fakeUpdates{ch: make(chan tgbotapi.Update)}
	lc := fxtest.NewLifecycle(t)

	bot := NewOrderBot(BotParams{
		Lifecycle: lc,
		Config:    cfg,
		Logger:    logger,
		Updates:   updates,
		Messenger: messenger,
		Render:    renderer,
		Checkout:  impl.NewCheckoutService(sessions, store, catalog, baskets, orders, cfg, logger),
		Orders:    orders,
		Catalog:   catalog,
		Baskets:   baskets,
		Admin:     impl.NewAdminService(sessions, store, catalog, orders, cfg, logger),
	})

	return &botFixture{
		bot:       bot,
		lc:        lc,
		updates:   updates,
		messenger: messenger,
		store:     store,
		render:    renderer,
	}
}

func user(id int64) *tgbotapi.User {
	return &tgbotapi.User{ID: id, FirstName: "Aziz", LastName: "Karimov", UserName: "aziz"}
}

func (f *botFixture) message(from int64, msg tgbotapi.Message) {
	f.nextID++
	msg.MessageID = f.nextID
	msg.From = user(from)
	msg.Chat = &tgbotapi.Chat{ID: from, Type: "private"}

	f.bot.HandleUpdate(context.Background(), tgbotapi.Update{UpdateID: f.nextID, Message: &msg})
}

func (f *botFixture) text(from int64, text string) {
	f.message(from, tgbotapi.Message{Text: text})
}

func (f *botFixture) command(from int64, name string) {
	text := "/" + name
	f.message(from, tgbotapi.Message{
		Text:     text,
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: len(text)}},
	})
}

func (f *botFixture) press(from int64, tag callback.Tag, args ...string) {
	f.pressOn(from, nil, tag, args...)
}

func (f *botFixture) pressOn(from int64, on *tgbotapi.Message, tag callback.Tag, args ...string) {
	f.nextID++
	if on == nil {
		on = &tgbotapi.Message{MessageID: 100, Chat: &tgbotapi.Chat{ID: from, Type: "private"}}
	}

	f.bot.HandleUpdate(context.Background(), tgbotapi.Update{
		UpdateID: f.nextID,
		CallbackQuery: &tgbotapi.CallbackQuery{
			ID:      "cb",
			From:    user(from),
			Message: on,
			Data:    callback.MustEncode(tag, args...),
		},
	})
}

// last returns the latest message sent to chatID.
func (f *botFixture) last(t *testing.T, chatID int64) service.Message {
	t.Helper()

	sent := f.messenger.SentTo(service.ChatRecipient(chatID))
	require.NotEmpty(t, sent)

	return sent[len(sent)-1]
}

func TestOrderBot_StartAndMenu(t *testing.T) {
	f := newBotFixture(t)

	f.command(customerID, "start")
	assert.Contains(t, f.last(t, customerID).Text, "Aziz")

	f.text(customerID, render.MenuProducts)
	assert.Equal(t, f.render.Products([]*entity.Product{{ID: "bio_tribesteron", Name: "Bio Tribesteron"}}).Markup, f.last(t, customerID).Markup)

	f.text(customerID, "salom")
	assert.Equal(t, f.render.Hint().Text, f.last(t, customerID).Text)
}

func TestOrderBot_CheckoutThroughUpdates(t *testing.T) {
	f := newBotFixture(t)

	f.press(customerID, callback.TagOrder, "bio_tribesteron")
	f.messenger.AssertCalled(t, "AnswerCallback", mock.Anything, "cb", "", false)
	assert.Contains(t, f.last(t, customerID).Text, "Bio Tribesteron")

	f.press(customerID, callback.TagMonths, "2")
	assert.Contains(t, f.last(t, customerID).Text, "300000 UZS")

	f.message(customerID, tgbotapi.Message{Photo: []tgbotapi.PhotoSize{{FileID: "receipt", Width: 800, Height: 600}}})
	f.press(customerID, callback.TagDelivery, "capital")
	f.message(customerID, tgbotapi.Message{Location: &tgbotapi.Location{Latitude: 41.31, Longitude: 69.28}})
	f.message(customerID, tgbotapi.Message{Contact: &tgbotapi.Contact{PhoneNumber: "+998901234567"}})
	assert.Contains(t, f.last(t, customerID).Text, "+998901234567")

	f.press(customerID, callback.TagConfirm)

	orders, err := f.store.ListOrders(context.Background(), repository.OrderFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	order := orders[0]
	assert.Equal(t, "receipt", order.ReceiptPhotoID)
	assert.Equal(t, "Toshkent", order.Delivery.Address)
	assert.Equal(t, "Aziz Karimov", order.FullName)

	assert.Contains(t, f.last(t, customerID).Text, order.ID)
	assert.Len(t, f.messenger.SentTo(service.Recipient{Channel: "@orders"}), 1)
}

func TestOrderBot_CancelCommand(t *testing.T) {
	f := newBotFixture(t)

	f.press(customerID, callback.TagOrder, "bio_tribesteron")
	f.command(customerID, "cancel")
	assert.Equal(t, f.render.Cancelled().Text, f.last(t, customerID).Text)

	f.press(customerID, callback.TagMonths, "2")
	assert.Equal(t, f.render.Hint().Text, f.last(t, customerID).Text)
}

func TestOrderBot_AdminRejected(t *testing.T) {
	f := newBotFixture(t)

	f.command(customerID, "admin")
	assert.Equal(t, domainerrors.ErrForbidden.Message(), f.last(t, customerID).Text)

	f.press(customerID, callback.TagAdminStats)
	f.messenger.AssertCalled(t, "AnswerCallback", mock.Anything, "cb", domainerrors.ErrForbidden.Message(), true)
}

func TestOrderBot_AdminStatusChangeRefreshesCard(t *testing.T) {
	f := newBotFixture(t)

	order := &entity.Order{ID: "ab12cd34", UserID: customerID, ChatID: customerID, CreatedAt: time.Now()}
	order.ApplyStatus(entity.OrderStatusNew, "user:1", order.CreatedAt)
	require.NoError(t, f.store.CreateOrder(context.Background(), order))

	card := &tgbotapi.Message{
		MessageID: 55,
		Chat:      &tgbotapi.Chat{ID: -1001, Type: "channel"},
		Photo:     []tgbotapi.PhotoSize{{FileID: "receipt"}},
	}
	f.pressOn(adminID, card, callback.TagAdminStatus, "ab12cd34", string(entity.OrderStatusCompleted))

	f.messenger.AssertCalled(t, "AnswerCallback", mock.Anything, "cb", "✅ "+render.StatusLabel(entity.OrderStatusCompleted), false)
	f.messenger.AssertCalled(t, "Edit", mock.Anything, service.ChatRecipient(-1001), 55, mock.Anything)

	stored, err := f.store.FindOrder(context.Background(), "ab12cd34")
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCompleted, stored.Status)
	assert.Equal(t, "admin:9", stored.StatusHistory[1].Actor)

	f.bot.orders.Wait()
	assert.Contains(t, f.last(t, customerID).Text, render.StatusLabel(entity.OrderStatusCompleted))
}

func TestOrderBot_AdminAddProductByText(t *testing.T) {
	f := newBotFixture(t)

	f.press(adminID, callback.TagAdminAdd)
	for _, text := range []string{"neo_vit", "Neo Vit", "90,000 UZS", "Vitaminlar", "Yo'q"} {
		f.text(adminID, text)
	}
	f.press(adminID, callback.TagAdminSkipPhoto)

	product, err := f.store.FindProduct(context.Background(), "neo_vit")
	require.NoError(t, err)
	assert.Equal(t, "Neo Vit", product.Name)
	assert.Contains(t, f.last(t, adminID).Text, "Neo Vit")
}

func TestOrderBot_UndecodableCallback(t *testing.T) {
	f := newBotFixture(t)

	f.bot.HandleUpdate(context.Background(), tgbotapi.Update{
		CallbackQuery: &tgbotapi.CallbackQuery{ID: "cb", From: user(customerID), Data: ""},
	})

	f.messenger.AssertCalled(t, "AnswerCallback", mock.Anything, "cb", "", false)
	assert.Equal(t, f.render.Hint().Text, f.last(t, customerID).Text)
}

func TestOrderBot_ServeStopsOnLifecycleStop(t *testing.T) {
	f := newBotFixture(t)

	done := make(chan error, 1)
	go func() { done <- f.bot.Serve(context.Background()) }()

	f.updates.ch <- tgbotapi.Update{UpdateID: 1, Message: &tgbotapi.Message{
		Text: "salom",
		From: user(customerID),
		Chat: &tgbotapi.Chat{ID: customerID},
	}}

	f.lc.RequireStart()
	f.lc.RequireStop()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after stop")
	}
	assert.True(t, f.updates.stopped)
	assert.NotEmpty(t, f.messenger.SentTo(service.ChatRecipient(customerID)))
}

func TestFirstName(t *testing.T) {
	assert.Equal(t, "Aziz", firstName(userInfo(user(1), 1)))
	assert.Equal(t, "", firstName(userInfo(&tgbotapi.User{ID: 1}, 1)))
}
