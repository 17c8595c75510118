package impl

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"storebot/config"
	"storebot/internal/domain/entity"
	domainerrors "storebot/internal/domain/errors"
	"storebot/internal/domain/repository"
	"storebot/internal/domain/service"
	"storebot/internal/errors"
	"storebot/internal/render"
	"storebot/internal/usecase"
)

// orderService owns everything that happens to an order after commit.
type orderService struct {
	orders    repository.OrderRepository
	messenger service.Messenger
	render    *render.Renderer
	cfg       *config.Config
	logger    *slog.Logger
	now       func() time.Time

	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

// NewOrderService is the constructor for orderService.
func NewOrderService(
	orders repository.OrderRepository,
	messenger service.Messenger,
	renderer *render.Renderer,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.OrderUsecase {
	return &orderService{
		orders:    orders,
		messenger: messenger,
		render:    renderer,
		cfg:       cfg,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (srv *orderService) relayTarget() service.Recipient {
	return service.Recipient{
		ChatID:  srv.cfg.Admin.OrderChatID,
		Channel: srv.cfg.Admin.OrderChannel,
	}
}

// Relay sends the order card to the operator channel, with the receipt as
// the card photo and the shared location as a separate pin. Failures fall
// back to the primary admin and are never returned.
func (srv *orderService) Relay(ctx context.Context, order *entity.Order) {
	logger := srv.logger.With(slog.String("orderID", order.ID))

	target := srv.relayTarget()
	if target.IsZero() {
		srv.relayFallback(ctx, order, logger)

		return
	}

	if _, err := srv.messenger.Send(ctx, target, srv.render.OrderCard(order)); err != nil {
		logger.Error("Failed to relay order", slog.Any("error", err))
		srv.relayFallback(ctx, order, logger)

		return
	}

	if order.Delivery.HasLocation() {
		if err := srv.messenger.SendLocation(ctx, target, *order.Delivery.Lat, *order.Delivery.Lon); err != nil {
			logger.Warn("Failed to relay order location", slog.Any("error", err))
		}
	}

	logger.Info("Order relayed")
}

func (srv *orderService) relayFallback(ctx context.Context, order *entity.Order, logger *slog.Logger) {
	primary := srv.cfg.Admin.PrimaryAdmin()
	if primary == 0 {
		logger.Warn("No relay target configured, order not forwarded")

		return
	}

	to := service.ChatRecipient(primary)
	if _, err := srv.messenger.Send(ctx, to, srv.render.RelayFallback(order)); err != nil {
		logger.Error("Failed to notify primary admin", slog.Int64("adminID", primary), slog.Any("error", err))

		return
	}

	if order.ReceiptPhotoID != "" {
		receipt := service.Message{Photo: order.ReceiptPhotoID, Text: "🧾 " + order.ID}
		if _, err := srv.messenger.Send(ctx, to, receipt); err != nil {
			logger.Warn("Failed to forward receipt to primary admin", slog.Any("error", err))
		}
	}
	if order.Delivery.HasLocation() {
		if err := srv.messenger.SendLocation(ctx, to, *order.Delivery.Lat, *order.Delivery.Lon); err != nil {
			logger.Warn("Failed to forward location to primary admin", slog.Any("error", err))
		}
	}
}

// Transition appends a status change, persists it and notifies the
// customer in the background.
func (srv *orderService) Transition(
	ctx context.Context,
	orderID string,
	status entity.OrderStatus,
	actor string,
) (*entity.Order, error) {
	if !status.IsValid() {
		return nil, errors.Wrapf(domainerrors.ErrInvalidStatus, "status %q", status)
	}

	order, err := srv.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if srv.cfg.Orders.StrictTransitions && order.Status.IsTerminal() && order.Status != status {
		return nil, errors.Wrapf(domainerrors.ErrStatusTransition, "%s -> %s", order.Status, status)
	}

	order.ApplyStatus(status, actor, srv.stamp(order))
	if err := srv.orders.UpdateOrder(ctx, order); err != nil {
		return nil, domainerrors.NewStorageError(err, "update order status")
	}

	srv.logger.Info("Order status changed",
		slog.String("orderID", order.ID),
		slog.String("status", string(status)),
		slog.String("actor", actor),
	)

	srv.notifyCustomer(ctx, order.Clone())

	return order, nil
}

// stamp keeps history timestamps non-decreasing even if the clock steps back.
func (srv *orderService) stamp(order *entity.Order) time.Time {
	now := srv.now()
	if n := len(order.StatusHistory); n > 0 {
		if last := order.StatusHistory[n-1].Timestamp; now.Before(last) {
			return last
		}
	}

	return now
}

func (srv *orderService) notifyCustomer(ctx context.Context, order *entity.Order) {
	chatID := order.ChatID
	if chatID == 0 {
		chatID = order.UserID
	}
	msg := srv.render.StatusNotice(order)

	send := func() {
		notifyCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), srv.cfg.Orders.NotifyTimeout)
		defer cancel()

		if _, err := srv.messenger.Send(notifyCtx, service.ChatRecipient(chatID), msg); err != nil {
			srv.logger.Warn("Failed to notify customer about status change",
				slog.String("orderID", order.ID),
				slog.Int64("chatID", chatID),
				slog.Any("error", err),
			)
		}
	}

	// Once Wait has begun no goroutine may join the group; late notices are
	// sent inline instead.
	srv.mu.Lock()
	if !srv.closing {
		srv.wg.Go(send)
		srv.mu.Unlock()

		return
	}
	srv.mu.Unlock()

	send()
}

// AddNote appends an operator note to the order.
func (srv *orderService) AddNote(ctx context.Context, orderID, text, actor string) (*entity.Order, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.Wrap(domainerrors.ErrEmptyInput, "empty note")
	}

	order, err := srv.findOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	now := srv.now()
	order.Notes = append(order.Notes, entity.OrderNote{Text: text, Actor: actor, Timestamp: now})
	order.UpdatedAt = now
	if err := srv.orders.UpdateOrder(ctx, order); err != nil {
		return nil, domainerrors.NewStorageError(err, "update order notes")
	}

	srv.logger.Info("Order note added", slog.String("orderID", order.ID), slog.String("actor", actor))

	return order, nil
}

// UserOrders lists the latest orders placed by userID.
func (srv *orderService) UserOrders(ctx context.Context, userID int64, limit int) ([]*entity.Order, error) {
	orders, err := srv.orders.ListOrders(ctx, repository.OrderFilter{UserID: &userID, Limit: limit})
	if err != nil {
		return nil, domainerrors.NewStorageError(err, "list user orders")
	}

	return orders, nil
}

// Wait blocks until pending customer notifications finish. Notifications
// requested after Wait has been called are sent before Transition returns.
func (srv *orderService) Wait() {
	srv.mu.Lock()
	srv.closing = true
	srv.mu.Unlock()

	srv.wg.Wait()
}

func (srv *orderService) findOrder(ctx context.Context, orderID string) (*entity.Order, error) {
	order, err := srv.orders.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, errors.Wrapf(domainerrors.ErrOrderNotFound, "order %q", orderID)
		}

		return nil, domainerrors.NewStorageError(err, "find order")
	}

	return order, nil
}
