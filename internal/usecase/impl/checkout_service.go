package impl

import (
	"context"
	"log/slog"
	"time"

	"storebot/config"
	"storebot/internal/domain/entity"
	domainerrors "storebot/internal/domain/errors"
	"storebot/internal/domain/repository"
	"storebot/internal/errors"
	"storebot/internal/fsm"
	"storebot/internal/pricing"
	"storebot/internal/usecase"

	"github.com/samber/lo"
)

const createOrderAttempts = 3

// checkoutService runs the checkout state machine against the stores.
type checkoutService struct {
	machine   fsm.Checkout
	sessions  *sessionLoader
	orders    repository.OrderRepository
	catalog   usecase.CatalogUsecase
	baskets   usecase.BasketUsecase
	lifecycle usecase.OrderUsecase
	logger    *slog.Logger
	now       func() time.Time
}

// NewCheckoutService is the constructor for checkoutService.
func NewCheckoutService(
	sessions repository.SessionRepository,
	orders repository.OrderRepository,
	catalog usecase.CatalogUsecase,
	baskets usecase.BasketUsecase,
	lifecycle usecase.OrderUsecase,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.CheckoutUsecase {
	now := func() time.Time { return time.Now().UTC() }

	return &checkoutService{
		machine: fsm.Checkout{CapitalRegion: cfg.Store.CapitalRegion},
		sessions: &sessionLoader{
			repo:   sessions,
			ttl:    cfg.Session.TTL,
			now:    now,
			logger: logger,
		},
		orders:    orders,
		catalog:   catalog,
		baskets:   baskets,
		lifecycle: lifecycle,
		logger:    logger,
		now:       now,
	}
}

// SelectProduct starts a fresh checkout for productID, replacing any
// session in progress.
func (srv *checkoutService) SelectProduct(ctx context.Context, user usecase.UserInfo, productID string) (*usecase.CheckoutReply, error) {
	product, err := srv.catalog.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	return srv.apply(ctx, user, entity.Session{UserID: user.UserID}, fsm.Event{
		Kind:    fsm.EventSelectProduct,
		Product: product,
	})
}

// StartBasketCheckout starts a checkout over the priced basket lines.
func (srv *checkoutService) StartBasketCheckout(ctx context.Context, user usecase.UserInfo) (*usecase.CheckoutReply, error) {
	lines, err := srv.baskets.Lines(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	return srv.apply(ctx, user, entity.Session{UserID: user.UserID}, fsm.Event{
		Kind:  fsm.EventStartBasket,
		Lines: lines,
	})
}

// Handle feeds ev into the user's checkout session.
func (srv *checkoutService) Handle(ctx context.Context, user usecase.UserInfo, ev fsm.Event) (*usecase.CheckoutReply, error) {
	sess, err := srv.sessions.load(ctx, user.UserID)
	if err != nil {
		return nil, err
	}

	return srv.apply(ctx, user, sess, ev)
}

// Cancel discards the session.
func (srv *checkoutService) Cancel(ctx context.Context, user usecase.UserInfo) (*usecase.CheckoutReply, error) {
	return srv.apply(ctx, user, entity.Session{UserID: user.UserID}, fsm.Event{Kind: fsm.EventCancel})
}

// Current returns the live session of userID or nil.
func (srv *checkoutService) Current(ctx context.Context, userID int64) (*entity.Session, error) {
	sess, err := srv.sessions.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if sess.Flow == "" {
		return nil, nil
	}

	return &sess, nil
}

func (srv *checkoutService) apply(ctx context.Context, user usecase.UserInfo, sess entity.Session, ev fsm.Event) (*usecase.CheckoutReply, error) {
	res, err := srv.machine.Next(sess, ev)
	if err != nil {
		return nil, err
	}

	reply := &usecase.CheckoutReply{
		Session: res.Session,
		Effects: res.Effects,
		Outcome: res.Outcome,
	}

	switch res.Outcome {
	case fsm.OutcomeContinue:
		if len(res.Effects) > 0 {
			if err := srv.sessions.save(ctx, res.Session); err != nil {
				return nil, err
			}
		}
	case fsm.OutcomeCancelled:
		srv.sessions.drop(ctx, user.UserID)
		srv.logger.Info("Checkout cancelled", slog.Int64("userID", user.UserID))
	case fsm.OutcomeCommitted:
		order, err := srv.commit(ctx, user, res.Session)
		if err != nil {
			return nil, err
		}
		reply.Order = order
	}

	return reply, nil
}

// commit persists the order, then clears the session and basket and
// relays the order. Only the persist step can fail the checkout.
func (srv *checkoutService) commit(ctx context.Context, user usecase.UserInfo, sess entity.Session) (*entity.Order, error) {
	order, err := srv.buildOrder(user, sess)
	if err != nil {
		return nil, err
	}

	for attempt := 1; ; attempt++ {
		err = srv.orders.CreateOrder(ctx, order)
		if !errors.Is(err, repository.ErrDuplicateOrder) || attempt == createOrderAttempts {
			break
		}
		order.ID = entity.NewOrderID()
	}
	if err != nil {
		srv.logger.Error("Failed to persist order", slog.Int64("userID", user.UserID), slog.Any("error", err))

		return nil, domainerrors.NewStorageError(err, "create order")
	}

	srv.logger.Info("Order created",
		slog.String("orderID", order.ID),
		slog.Int64("userID", user.UserID),
		slog.String("price", order.Price),
	)

	srv.sessions.drop(ctx, user.UserID)
	if sess.FromBasket {
		if err := srv.baskets.Clear(ctx, user.UserID); err != nil {
			srv.logger.Warn("Failed to clear basket", slog.Int64("userID", user.UserID), slog.Any("error", err))
		}
	}

	srv.lifecycle.Relay(ctx, order)

	return order, nil
}

func (srv *checkoutService) buildOrder(user usecase.UserInfo, sess entity.Session) (*entity.Order, error) {
	delivery := sess.Delivery()
	if err := delivery.Validate(); err != nil {
		return nil, errors.Wrap(domainerrors.ErrInternal, err.Error())
	}

	now := srv.now()
	order := &entity.Order{
		ID:             entity.NewOrderID(),
		UserID:         user.UserID,
		ChatID:         user.ChatID,
		Username:       user.Username,
		FullName:       user.FullName,
		ProductID:      sess.ProductID,
		Medicine:       sess.ProductName,
		Months:         sess.Months,
		Lines:          sess.Lines,
		Price:          sess.Total,
		Delivery:       delivery,
		ReceiptPhotoID: sess.ReceiptPhotoID,
		CreatedAt:      now,
	}

	var quote pricing.Quote
	if sess.FromBasket {
		quote = pricing.Sum(sess.Lines)
		order.Quantity = lo.SumBy(sess.Lines, func(l entity.OrderLine) int { return l.Quantity })
	} else {
		quote = pricing.Total(sess.UnitPrice, sess.Months)
	}
	if quote.Exact {
		order.Total = quote.Amount
	}

	order.ApplyStatus(entity.OrderStatusNew, user.Actor(), now)

	return order, nil
}
