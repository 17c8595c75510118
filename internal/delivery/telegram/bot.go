// Package telegram is the update loop of the bot: it decodes Telegram
// updates into use case calls and renders the replies.
package telegram

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"storebot/config"
	"storebot/internal/delivery"
	"storebot/internal/domain/entity"
	domainerrors "storebot/internal/domain/errors"
	"storebot/internal/domain/service"
	"storebot/internal/fsm"
	"storebot/internal/render"
	"storebot/internal/usecase"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/fx"
)

const handleTimeout = 30 * time.Second

// UpdateSource is the long-polling side of *tgbotapi.BotAPI.
type UpdateSource interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type BotParams struct {
	fx.In
	fx.Lifecycle

	Config    *config.Config
	Logger    *slog.Logger
	Updates   UpdateSource
	Messenger service.Messenger
	Render    *render.Renderer
	Checkout  usecase.CheckoutUsecase
	Orders    usecase.OrderUsecase
	Catalog   usecase.CatalogUsecase
	Baskets   usecase.BasketUsecase
	Admin     usecase.AdminUsecase
}

// OrderBot processes updates one at a time, in arrival order.
type OrderBot struct {
	updates     UpdateSource
	messenger   service.Messenger
	render      *render.Renderer
	checkout    usecase.CheckoutUsecase
	orders      usecase.OrderUsecase
	catalog     usecase.CatalogUsecase
	baskets     usecase.BasketUsecase
	admin       usecase.AdminUsecase
	logger      *slog.Logger
	pollTimeout int
	pageSize    int

	done     chan struct{}
	stopOnce sync.Once

	// mu is held from receiving an update until it is handled.
	mu sync.Mutex
}

var _ delivery.Delivery = (*OrderBot)(nil)

func NewOrderBot(params BotParams) *OrderBot {
	bot := &OrderBot{
		updates:     params.Updates,
		messenger:   params.Messenger,
		render:      params.Render,
		checkout:    params.Checkout,
		orders:      params.Orders,
		catalog:     params.Catalog,
		baskets:     params.Baskets,
		admin:       params.Admin,
		logger:      params.Logger,
		pollTimeout: params.Config.Telegram.PollTimeout,
		pageSize:    params.Config.Orders.PageSize,
		done:        make(chan struct{}),
	}

	params.Append(fx.Hook{
		OnStop: bot.stop,
	})

	return bot
}

func (b *OrderBot) Serve(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout

	updates := b.updates.GetUpdatesChan(u)
	b.logger.Info("Starting Telegram update loop", slog.Int("pollTimeout", b.pollTimeout))

	for b.next(ctx, updates) {
	}

	return nil
}

// next receives and handles one update. It reports false once the loop
// has been stopped or the update channel is closed.
func (b *OrderBot) next(ctx context.Context, updates tgbotapi.UpdatesChannel) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	select {
	case <-b.done:
		return false
	default:
	}

	select {
	case <-b.done:
		return false
	case update, ok := <-updates:
		if !ok {
			return false
		}
		b.HandleUpdate(ctx, update)

		return true
	}
}

// stop ends the update loop and returns once the update in flight, if
// any, has been handled.
func (b *OrderBot) stop(_ context.Context) error {
	b.stopOnce.Do(func() {
		b.logger.Info("Stopping Telegram update loop")
		b.updates.StopReceivingUpdates()
		close(b.done)

		b.mu.Lock()
		b.mu.Unlock() //nolint:staticcheck // waits for the update in flight
	})

	return nil
}

// HandleUpdate routes one update. A panic is logged and answered with a
// generic apology so the loop keeps running.
func (b *OrderBot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	ctx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("Panic while handling update",
				slog.Int("updateID", update.UpdateID),
				slog.Any("panic", r),
			)
			if chat := update.FromChat(); chat != nil {
				b.reply(ctx, chat.ID, b.render.Failure(domainerrors.ErrInternal.Message()))
			}
		}
	}()

	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message != nil:
		b.handleMessage(ctx, update.Message)
	}
}

func userInfo(from *tgbotapi.User, chatID int64) usecase.UserInfo {
	return usecase.UserInfo{
		UserID:   from.ID,
		ChatID:   chatID,
		Username: from.UserName,
		FullName: strings.TrimSpace(from.FirstName + " " + from.LastName),
	}
}

func (b *OrderBot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}
	user := userInfo(msg.From, msg.Chat.ID)

	if msg.IsCommand() {
		b.handleCommand(ctx, user, msg)
		return
	}

	switch msg.Text {
	case render.MenuAddress:
		b.reply(ctx, user.ChatID, b.render.Address())
		return
	case render.MenuPhone:
		b.reply(ctx, user.ChatID, b.render.Phone())
		return
	case render.MenuProducts:
		b.showProducts(ctx, user.ChatID)
		return
	case render.MenuBasket:
		b.showBasket(ctx, user)
		return
	case render.MenuOrders:
		b.showUserOrders(ctx, user)
		return
	case render.MenuCancel:
		b.cancel(ctx, user)
		return
	}

	ev, ok := messageEvent(msg)
	if !ok {
		b.reply(ctx, user.ChatID, b.render.Hint())
		return
	}

	b.handleEvent(ctx, user, ev)
}

func (b *OrderBot) handleCommand(ctx context.Context, user usecase.UserInfo, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.reply(ctx, user.ChatID, b.render.Welcome(msg.From.FirstName))
	case "admin":
		if !b.admin.IsAdmin(user.UserID) {
			b.logger.Warn("Rejected admin menu", slog.Int64("userID", user.UserID))
			b.fail(ctx, user.ChatID, domainerrors.ErrForbidden)
			return
		}
		b.reply(ctx, user.ChatID, b.render.AdminMenu())
	case "cancel":
		b.cancel(ctx, user)
	case "orders":
		b.showUserOrders(ctx, user)
	default:
		b.reply(ctx, user.ChatID, b.render.Hint())
	}
}

// messageEvent decodes free input. A shared contact counts as typed phone text.
func messageEvent(msg *tgbotapi.Message) (fsm.Event, bool) {
	switch {
	case len(msg.Photo) > 0:
		photos := make([]fsm.Photo, 0, len(msg.Photo))
		for _, p := range msg.Photo {
			photos = append(photos, fsm.Photo{
				FileID:   p.FileID,
				Width:    p.Width,
				Height:   p.Height,
				FileSize: p.FileSize,
			})
		}
		return fsm.Event{Kind: fsm.EventPhoto, Photos: photos}, true
	case msg.Location != nil:
		return fsm.Event{Kind: fsm.EventLocation, Lat: msg.Location.Latitude, Lon: msg.Location.Longitude}, true
	case msg.Contact != nil:
		return fsm.Event{Kind: fsm.EventText, Text: msg.Contact.PhoneNumber}, true
	case msg.Text != "":
		return fsm.Event{Kind: fsm.EventText, Text: msg.Text}, true
	}

	return fsm.Event{}, false
}

// handleEvent feeds ev into whichever flow owns the user's session.
func (b *OrderBot) handleEvent(ctx context.Context, user usecase.UserInfo, ev fsm.Event) {
	sess, err := b.checkout.Current(ctx, user.UserID)
	if err != nil {
		b.fail(ctx, user.ChatID, err)
		return
	}
	if sess == nil {
		b.reply(ctx, user.ChatID, b.render.Hint())
		return
	}

	if sess.Flow == entity.FlowAdmin {
		reply, err := b.admin.HandleEdit(ctx, user.UserID, ev)
		if err != nil {
			b.fail(ctx, user.ChatID, err)
			return
		}
		b.sendAdmin(ctx, user.ChatID, reply)
		return
	}

	reply, err := b.checkout.Handle(ctx, user, ev)
	if err != nil {
		b.fail(ctx, user.ChatID, err)
		return
	}
	b.sendCheckout(ctx, user.ChatID, reply)
}

// cancel ends whichever flow is in progress.
func (b *OrderBot) cancel(ctx context.Context, user usecase.UserInfo) {
	sess, err := b.checkout.Current(ctx, user.UserID)
	if err == nil && sess != nil && sess.Flow == entity.FlowAdmin {
		reply, err := b.admin.HandleEdit(ctx, user.UserID, fsm.Event{Kind: fsm.EventCancel})
		if err != nil {
			b.fail(ctx, user.ChatID, err)
			return
		}
		b.sendAdmin(ctx, user.ChatID, reply)
		return
	}

	reply, err := b.checkout.Cancel(ctx, user)
	if err != nil {
		b.fail(ctx, user.ChatID, err)
		return
	}
	b.sendCheckout(ctx, user.ChatID, reply)
}

func (b *OrderBot) showProducts(ctx context.Context, chatID int64) {
	products, err := b.catalog.List(ctx)
	if err != nil {
		b.fail(ctx, chatID, err)
		return
	}
	b.reply(ctx, chatID, b.render.Products(products))
}

func (b *OrderBot) showBasket(ctx context.Context, user usecase.UserInfo) {
	lines, err := b.baskets.Lines(ctx, user.UserID)
	if err != nil {
		b.fail(ctx, user.ChatID, err)
		return
	}
	b.reply(ctx, user.ChatID, b.render.Basket(lines))
}

func (b *OrderBot) showUserOrders(ctx context.Context, user usecase.UserInfo) {
	orders, err := b.orders.UserOrders(ctx, user.UserID, b.pageSize)
	if err != nil {
		b.fail(ctx, user.ChatID, err)
		return
	}
	b.reply(ctx, user.ChatID, b.render.UserOrders(orders))
}

func (b *OrderBot) sendCheckout(ctx context.Context, chatID int64, reply *usecase.CheckoutReply) {
	if reply.Outcome == fsm.OutcomeIgnored {
		b.reply(ctx, chatID, b.render.Hint())
		return
	}

	for _, effect := range reply.Effects {
		if msg, ok := b.render.Checkout(effect, reply.Session); ok {
			b.reply(ctx, chatID, msg)
		}
	}
	if reply.Order != nil {
		b.reply(ctx, chatID, b.render.Confirmed(reply.Order))
	}
}

func (b *OrderBot) sendAdmin(ctx context.Context, chatID int64, reply *usecase.AdminReply) {
	if reply.Outcome == fsm.OutcomeIgnored {
		b.reply(ctx, chatID, b.render.Hint())
		return
	}

	for _, effect := range reply.Effects {
		if msg, ok := b.render.Admin(effect, reply); ok {
			b.reply(ctx, chatID, msg)
		}
	}
}

func (b *OrderBot) reply(ctx context.Context, chatID int64, msg service.Message) {
	if _, err := b.messenger.Send(ctx, service.ChatRecipient(chatID), msg); err != nil {
		b.logger.Error("Failed to send reply", slog.Int64("chatID", chatID), slog.Any("error", err))
	}
}

// fail answers with the user-facing message of err. Unexpected errors are
// logged with their full chain.
func (b *OrderBot) fail(ctx context.Context, chatID int64, err error) {
	appErr := domainerrors.AsAppError(err)

	switch appErr.Kind() {
	case domainerrors.KindInternal, domainerrors.KindUnavailable:
		b.logger.Error("Request failed", slog.Int64("chatID", chatID), slog.Any("error", err))
	default:
		b.logger.Debug("Request rejected", slog.Int64("chatID", chatID), slog.String("code", appErr.Code()))
	}

	b.reply(ctx, chatID, b.render.Failure(appErr.Message()))
}
