package telegram

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"storebot/internal/callback"
	"storebot/internal/domain/entity"
	domainerrors "storebot/internal/domain/errors"
	"storebot/internal/domain/service"
	"storebot/internal/fsm"
	"storebot/internal/render"
	"storebot/internal/usecase"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// press is one decoded button press.
type press struct {
	user    usecase.UserInfo
	action  callback.Action
	message *tgbotapi.Message
}

func (b *OrderBot) handleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if q.From == nil {
		return
	}

	chatID := q.From.ID
	if q.Message != nil && q.Message.Chat != nil {
		chatID = q.Message.Chat.ID
	}

	action, err := callback.Decode(q.Data)
	if err != nil {
		b.logger.Warn("Undecodable callback", slog.String("data", q.Data), slog.Any("error", err))
		b.answer(ctx, q.ID, "", false)
		b.reply(ctx, chatID, b.render.Hint())
		return
	}

	p := press{user: userInfo(q.From, chatID), action: action, message: q.Message}
	toast, err := b.dispatch(ctx, p)
	switch {
	case err == nil:
		b.answer(ctx, q.ID, toast, false)
	case domainerrors.IsKind(err, domainerrors.KindForbidden):
		b.answer(ctx, q.ID, domainerrors.AsAppError(err).Message(), true)
	default:
		b.answer(ctx, q.ID, "", false)
		b.fail(ctx, chatID, err)
	}
}

// answer acknowledges the press, optionally as an alert.
func (b *OrderBot) answer(ctx context.Context, callbackID, text string, alert bool) {
	if err := b.messenger.AnswerCallback(ctx, callbackID, text, alert); err != nil {
		b.logger.Warn("Failed to answer callback", slog.Any("error", err))
	}
}

// dispatch runs the action and returns an optional toast for the answer.
func (b *OrderBot) dispatch(ctx context.Context, p press) (string, error) {
	user, chatID := p.user, p.user.ChatID

	switch p.action.Tag {
	case callback.TagMainMenu:
		b.reply(ctx, chatID, b.render.Welcome(firstName(user)))
	case callback.TagProducts:
		b.showProducts(ctx, chatID)
	case callback.TagProduct:
		product, err := b.catalog.Get(ctx, p.action.Arg(0))
		if err != nil {
			return "", err
		}
		b.reply(ctx, chatID, b.render.Product(product))
	case callback.TagOrder:
		reply, err := b.checkout.SelectProduct(ctx, user, p.action.Arg(0))
		if err != nil {
			return "", err
		}
		b.sendCheckout(ctx, chatID, reply)
	case callback.TagMonths:
		months, err := strconv.Atoi(p.action.Arg(0))
		if err != nil {
			return "", domainerrors.ErrInvalidDuration
		}
		return "", b.checkoutEvent(ctx, user, fsm.Event{Kind: fsm.EventDurationPreset, Months: months})
	case callback.TagMonthsOther:
		return "", b.checkoutEvent(ctx, user, fsm.Event{Kind: fsm.EventDurationOther})
	case callback.TagUploadReceipt:
		return "", b.checkoutEvent(ctx, user, fsm.Event{Kind: fsm.EventReceiptHint})
	case callback.TagDelivery:
		kind := fsm.EventDeliveryOther
		if p.action.Arg(0) == "capital" {
			kind = fsm.EventDeliveryCapital
		}
		return "", b.checkoutEvent(ctx, user, fsm.Event{Kind: kind})
	case callback.TagConfirm:
		return "", b.checkoutEvent(ctx, user, fsm.Event{Kind: fsm.EventConfirm})
	case callback.TagCancel:
		b.cancel(ctx, user)
	case callback.TagBasketAdd:
		return b.addToBasket(ctx, user, p.action.Arg(0))
	case callback.TagBasket:
		b.showBasket(ctx, user)
	case callback.TagBasketClear:
		if err := b.baskets.Clear(ctx, user.UserID); err != nil {
			return "", err
		}
		b.reply(ctx, chatID, b.render.Basket(nil))
	case callback.TagCheckout:
		reply, err := b.checkout.StartBasketCheckout(ctx, user)
		if err != nil {
			return "", err
		}
		b.sendCheckout(ctx, chatID, reply)
	default:
		return b.dispatchAdmin(ctx, p)
	}

	return "", nil
}

func (b *OrderBot) dispatchAdmin(ctx context.Context, p press) (string, error) {
	userID, chatID := p.user.UserID, p.user.ChatID

	switch p.action.Tag {
	case callback.TagAdminMenu:
		if !b.admin.IsAdmin(userID) {
			return "", domainerrors.ErrForbidden
		}
		b.reply(ctx, chatID, b.render.AdminMenu())
	case callback.TagAdminOrders:
		var filter *entity.OrderStatus
		if arg := p.action.Arg(0); arg != "" {
			status := entity.OrderStatus(arg)
			filter = &status
		}
		orders, err := b.admin.ListOrders(ctx, userID, filter)
		if err != nil {
			return "", err
		}
		b.reply(ctx, chatID, b.render.AdminOrders(orders, filter))
	case callback.TagAdminOrder:
		order, err := b.admin.GetOrder(ctx, userID, p.action.Arg(0))
		if err != nil {
			return "", err
		}
		b.reply(ctx, chatID, b.render.AdminOrder(order))
	case callback.TagAdminStatus:
		order, err := b.admin.SetStatus(ctx, userID, p.action.Arg(0), entity.OrderStatus(p.action.Arg(1)))
		if err != nil {
			return "", err
		}
		b.refreshOrder(ctx, p, order)
		return "✅ " + render.StatusLabel(order.Status), nil
	case callback.TagAdminNote:
		reply, err := b.admin.BeginOrderNote(ctx, userID, p.action.Arg(0))
		if err != nil {
			return "", err
		}
		b.sendAdmin(ctx, chatID, reply)
	case callback.TagAdminProducts:
		products, err := b.admin.ListProducts(ctx, userID)
		if err != nil {
			return "", err
		}
		b.reply(ctx, chatID, b.render.AdminProducts(products))
	case callback.TagAdminAdd:
		reply, err := b.admin.BeginAddProduct(ctx, userID)
		if err != nil {
			return "", err
		}
		b.sendAdmin(ctx, chatID, reply)
	case callback.TagAdminEdit:
		product, err := b.admin.GetProduct(ctx, userID, p.action.Arg(0))
		if err != nil {
			return "", err
		}
		b.reply(ctx, chatID, b.render.FieldChooser(product))
	case callback.TagAdminField:
		reply, err := b.admin.BeginEditProduct(ctx, userID, p.action.Arg(0), entity.ProductField(p.action.Arg(1)))
		if err != nil {
			return "", err
		}
		b.sendAdmin(ctx, chatID, reply)
	case callback.TagAdminDelete:
		product, err := b.admin.GetProduct(ctx, userID, p.action.Arg(0))
		if err != nil {
			return "", err
		}
		b.reply(ctx, chatID, b.render.DeleteConfirm(product))
	case callback.TagAdminDeleteOK:
		id := p.action.Arg(0)
		if err := b.admin.DeleteProduct(ctx, userID, id); err != nil {
			return "", err
		}
		b.reply(ctx, chatID, b.render.Deleted(id))
	case callback.TagAdminSkipPhoto:
		return "", b.adminEvent(ctx, p.user, fsm.Event{Kind: fsm.EventAdminSkipPhoto})
	case callback.TagAdminCancelEdit:
		return "", b.adminEvent(ctx, p.user, fsm.Event{Kind: fsm.EventCancel})
	case callback.TagAdminStats:
		stats, err := b.admin.Stats(ctx, userID)
		if err != nil {
			return "", err
		}
		b.reply(ctx, chatID, b.render.Stats(stats))
	default:
		b.logger.Warn("Unknown callback action", slog.String("tag", string(p.action.Tag)))
		b.reply(ctx, chatID, b.render.Hint())
	}

	return "", nil
}

func (b *OrderBot) checkoutEvent(ctx context.Context, user usecase.UserInfo, ev fsm.Event) error {
	reply, err := b.checkout.Handle(ctx, user, ev)
	if err != nil {
		return err
	}
	b.sendCheckout(ctx, user.ChatID, reply)

	return nil
}

func (b *OrderBot) adminEvent(ctx context.Context, user usecase.UserInfo, ev fsm.Event) error {
	reply, err := b.admin.HandleEdit(ctx, user.UserID, ev)
	if err != nil {
		return err
	}
	b.sendAdmin(ctx, user.ChatID, reply)

	return nil
}

func (b *OrderBot) addToBasket(ctx context.Context, user usecase.UserInfo, productID string) (string, error) {
	product, err := b.catalog.Get(ctx, productID)
	if err != nil {
		return "", err
	}
	if _, err := b.baskets.Add(ctx, user.UserID, productID); err != nil {
		return "", err
	}

	return b.render.BasketAdded(product.Name), nil
}

// refreshOrder redraws the message the status button was pressed on: the
// relay card keeps its card layout, the console detail view is redrawn as
// detail. A failed edit falls back to a fresh detail message.
func (b *OrderBot) refreshOrder(ctx context.Context, p press, order *entity.Order) {
	if p.message == nil || p.message.Chat == nil {
		b.reply(ctx, p.user.ChatID, b.render.AdminOrder(order))
		return
	}

	msg := b.render.AdminOrder(order)
	if len(p.message.Photo) > 0 || p.message.Chat.IsChannel() {
		msg = b.render.OrderCard(order)
		if len(p.message.Photo) == 0 {
			msg.Photo = ""
		}
	}

	to := service.ChatRecipient(p.message.Chat.ID)
	if err := b.messenger.Edit(ctx, to, p.message.MessageID, msg); err != nil {
		b.logger.Warn("Failed to refresh order message",
			slog.String("orderID", order.ID),
			slog.Any("error", err),
		)
		b.reply(ctx, p.user.ChatID, b.render.AdminOrder(order))
	}
}

func firstName(user usecase.UserInfo) string {
	name, _, _ := strings.Cut(user.FullName, " ")

	return name
}
