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
	"storebot/internal/usecase"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// adminService is the operator console. The allow-list is checked before
// any store is touched.
type adminService struct {
	editor    fsm.AdminEditor
	sessions  *sessionLoader
	orders    repository.OrderRepository
	catalog   usecase.CatalogUsecase
	lifecycle usecase.OrderUsecase
	admins    map[int64]struct{}
	pageSize  int
	logger    *slog.Logger
}

// NewAdminService is the constructor for adminService.
func NewAdminService(
	sessions repository.SessionRepository,
	orders repository.OrderRepository,
	catalog usecase.CatalogUsecase,
	lifecycle usecase.OrderUsecase,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.AdminUsecase {
	admins := lo.SliceToMap(cfg.Admin.IDs, func(id int64) (int64, struct{}) { return id, struct{}{} })

	return &adminService{
		sessions: &sessionLoader{
			repo:   sessions,
			ttl:    cfg.Session.TTL,
			now:    func() time.Time { return time.Now().UTC() },
			logger: logger,
		},
		orders:    orders,
		catalog:   catalog,
		lifecycle: lifecycle,
		admins:    admins,
		pageSize:  cfg.Orders.PageSize,
		logger:    logger,
	}
}

// IsAdmin reports whether userID is on the allow-list.
func (srv *adminService) IsAdmin(userID int64) bool {
	_, ok := srv.admins[userID]

	return ok
}

func (srv *adminService) authorize(userID int64, action string) error {
	if srv.IsAdmin(userID) {
		return nil
	}

	srv.logger.Warn("Rejected admin action", slog.Int64("userID", userID), slog.String("action", action))

	return errors.Wrap(domainerrors.ErrForbidden, action)
}

// ListOrders returns the newest orders, optionally filtered by status,
// truncated to the configured page size.
func (srv *adminService) ListOrders(ctx context.Context, userID int64, status *entity.OrderStatus) ([]*entity.Order, error) {
	if err := srv.authorize(userID, "list orders"); err != nil {
		return nil, err
	}
	if status != nil && !status.IsValid() {
		return nil, errors.Wrapf(domainerrors.ErrInvalidStatus, "status %q", *status)
	}

	orders, err := srv.orders.ListOrders(ctx, repository.OrderFilter{Status: status, Limit: srv.pageSize})
	if err != nil {
		return nil, domainerrors.NewStorageError(err, "list orders")
	}

	return orders, nil
}

// GetOrder returns one order.
func (srv *adminService) GetOrder(ctx context.Context, userID int64, orderID string) (*entity.Order, error) {
	if err := srv.authorize(userID, "get order"); err != nil {
		return nil, err
	}

	order, err := srv.orders.FindOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, errors.Wrapf(domainerrors.ErrOrderNotFound, "order %q", orderID)
		}

		return nil, domainerrors.NewStorageError(err, "find order")
	}

	return order, nil
}

// SetStatus moves an order to status on behalf of the operator.
func (srv *adminService) SetStatus(ctx context.Context, userID int64, orderID string, status entity.OrderStatus) (*entity.Order, error) {
	if err := srv.authorize(userID, "set status"); err != nil {
		return nil, err
	}

	return srv.lifecycle.Transition(ctx, orderID, status, usecase.AdminActor(userID))
}

// ListProducts returns the catalog.
func (srv *adminService) ListProducts(ctx context.Context, userID int64) ([]*entity.Product, error) {
	if err := srv.authorize(userID, "list products"); err != nil {
		return nil, err
	}

	return srv.catalog.List(ctx)
}

// GetProduct returns one catalog entry.
func (srv *adminService) GetProduct(ctx context.Context, userID int64, productID string) (*entity.Product, error) {
	if err := srv.authorize(userID, "get product"); err != nil {
		return nil, err
	}

	return srv.catalog.Get(ctx, productID)
}

// DeleteProduct removes a catalog entry.
func (srv *adminService) DeleteProduct(ctx context.Context, userID int64, productID string) error {
	if err := srv.authorize(userID, "delete product"); err != nil {
		return err
	}

	return srv.catalog.Delete(ctx, productID)
}

// BeginAddProduct starts the add-product dialogue.
func (srv *adminService) BeginAddProduct(ctx context.Context, userID int64) (*usecase.AdminReply, error) {
	if err := srv.authorize(userID, "add product"); err != nil {
		return nil, err
	}

	return srv.apply(ctx, userID, entity.Session{UserID: userID}, fsm.Event{Kind: fsm.EventAdminBeginAdd})
}

// BeginEditProduct starts editing one field of a product.
func (srv *adminService) BeginEditProduct(ctx context.Context, userID int64, productID string, field entity.ProductField) (*usecase.AdminReply, error) {
	if err := srv.authorize(userID, "edit product"); err != nil {
		return nil, err
	}
	if !field.IsValid() {
		return nil, errors.Wrapf(domainerrors.ErrInvalidProduct, "field %q", field)
	}

	product, err := srv.catalog.Get(ctx, productID)
	if err != nil {
		return nil, err
	}

	return srv.apply(ctx, userID, entity.Session{UserID: userID}, fsm.Event{
		Kind:    fsm.EventAdminBeginEdit,
		Product: product,
		Field:   field,
	})
}

// BeginOrderNote starts writing a note for an order.
func (srv *adminService) BeginOrderNote(ctx context.Context, userID int64, orderID string) (*usecase.AdminReply, error) {
	if _, err := srv.GetOrder(ctx, userID, orderID); err != nil {
		return nil, err
	}

	return srv.apply(ctx, userID, entity.Session{UserID: userID}, fsm.Event{
		Kind:    fsm.EventAdminBeginNote,
		OrderID: orderID,
	})
}

// HandleEdit feeds ev into the operator's editing session.
func (srv *adminService) HandleEdit(ctx context.Context, userID int64, ev fsm.Event) (*usecase.AdminReply, error) {
	if err := srv.authorize(userID, "edit"); err != nil {
		return nil, err
	}

	sess, err := srv.sessions.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	return srv.apply(ctx, userID, sess, ev)
}

func (srv *adminService) apply(ctx context.Context, userID int64, sess entity.Session, ev fsm.Event) (*usecase.AdminReply, error) {
	res := srv.editor.Next(sess, ev)

	if res.Session.Step == entity.StepAdminProductName && sess.Step == entity.StepAdminProductID {
		taken, err := srv.productExists(ctx, res.Session.Draft.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			res = fsm.Result{
				Session: sess,
				Effects: []fsm.Effect{fsm.EffectDuplicateProductID},
				Outcome: fsm.OutcomeContinue,
			}
		}
	}

	reply := &usecase.AdminReply{
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
		srv.sessions.drop(ctx, userID)
	case fsm.OutcomeCommitted:
		if err := srv.commit(ctx, userID, res, reply); err != nil {
			if domainerrors.AsAppError(err).Kind() == domainerrors.KindNotFound {
				srv.sessions.drop(ctx, userID)
			}
			return nil, err
		}
		srv.sessions.drop(ctx, userID)
	}

	return reply, nil
}

func (srv *adminService) commit(ctx context.Context, userID int64, res fsm.Result, reply *usecase.AdminReply) error {
	for _, effect := range res.Effects {
		switch effect {
		case fsm.EffectSaveProduct:
			product := res.Session.Draft
			if res.Session.EditField != "" {
				// The product may have been deleted while the edit was open.
				if _, err := srv.catalog.Get(ctx, product.ID); err != nil {
					return err
				}
			}
			if err := srv.catalog.Put(ctx, product); err != nil {
				return err
			}
			reply.Product = product
			srv.logger.Info("Product saved by admin", slog.Int64("userID", userID), slog.String("productID", product.ID))
		case fsm.EffectSaveNote:
			order, err := srv.lifecycle.AddNote(ctx, res.Session.OrderID, res.Session.Note, usecase.AdminActor(userID))
			if err != nil {
				return err
			}
			reply.Order = order
		}
	}

	return nil
}

func (srv *adminService) productExists(ctx context.Context, id string) (bool, error) {
	_, err := srv.catalog.Get(ctx, id)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, domainerrors.ErrProductNotFound) {
		return false, nil
	}

	return false, err
}

// Stats summarizes every order: counts per status and the revenue of
// completed orders with exact totals.
func (srv *adminService) Stats(ctx context.Context, userID int64) (*usecase.Stats, error) {
	if err := srv.authorize(userID, "stats"); err != nil {
		return nil, err
	}

	orders, err := srv.orders.ListOrders(ctx, repository.OrderFilter{})
	if err != nil {
		return nil, domainerrors.NewStorageError(err, "list orders")
	}
	products, err := srv.catalog.List(ctx)
	if err != nil {
		return nil, err
	}

	completed := lo.Filter(orders, func(o *entity.Order, _ int) bool {
		return o.Status == entity.OrderStatusCompleted
	})
	revenue := lo.Reduce(completed, func(sum decimal.Decimal, o *entity.Order, _ int) decimal.Decimal {
		return sum.Add(o.Total)
	}, decimal.Zero)

	return &usecase.Stats{
		Orders:   len(orders),
		ByStatus: lo.CountValuesBy(orders, func(o *entity.Order) entity.OrderStatus { return o.Status }),
		Revenue:  revenue,
		Products: len(products),
	}, nil
}
