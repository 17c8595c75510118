package postgres

import (
	"context"

	"storebot/internal/domain/entity"
	"storebot/internal/domain/repository"
	"storebot/internal/errors"
	"storebot/internal/infra/persistence/model"

	"gorm.io/gorm"
)

// orderRepository implements the repository.OrderRepository interface.
// Status history and notes live in child tables ordered by seq.
type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository is the constructor for orderRepository.
func NewOrderRepository(db *gorm.DB) repository.OrderRepository {
	return &orderRepository{db: db}
}

func preloadChildren(db *gorm.DB) *gorm.DB {
	return db.
		Preload("StatusHistory", func(tx *gorm.DB) *gorm.DB { return tx.Order("seq") }).
		Preload("Notes", func(tx *gorm.DB) *gorm.DB { return tx.Order("seq") })
}

// CreateOrder persists a new order with its history.
func (repo *orderRepository) CreateOrder(ctx context.Context, order *entity.Order) error {
	orderM := fromOrderDomain(order)

	if err := repo.db.WithContext(ctx).Create(orderM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrDuplicateOrder
		}

		return errors.Wrap(err, "failed to create order")
	}

	return nil
}

// FindOrder retrieves an order by id.
func (repo *orderRepository) FindOrder(ctx context.Context, id string) (*entity.Order, error) {
	var orderM model.OrderModel

	if err := preloadChildren(repo.db.WithContext(ctx)).Where("id = ?", id).First(&orderM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrOrderNotFound
		}

		return nil, errors.Wrap(err, "failed to find order")
	}

	return toOrderDomain(&orderM), nil
}

// ListOrders returns orders newest first.
func (repo *orderRepository) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, error) {
	query := preloadChildren(repo.db.WithContext(ctx)).Order("created_at DESC, id")
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var orderModels []*model.OrderModel
	if err := query.Find(&orderModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list orders")
	}

	orders := make([]*entity.Order, 0, len(orderModels))
	for _, orderM := range orderModels {
		orders = append(orders, toOrderDomain(orderM))
	}

	return orders, nil
}

// UpdateOrder writes the mutable order fields and appends the history
// entries and notes not stored yet.
func (repo *orderRepository) UpdateOrder(ctx context.Context, order *entity.Order) error {
	orderM := fromOrderDomain(order)

	return repo.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.OrderModel{}).
			Where("id = ?", order.ID).
			Updates(map[string]any{
				"status":        orderM.Status,
				"updated_at":    orderM.UpdatedAt,
				"processing_at": orderM.ProcessingAt,
				"completed_at":  orderM.CompletedAt,
				"cancelled_at":  orderM.CancelledAt,
			})
		if result.Error != nil {
			return errors.Wrap(result.Error, "failed to update order")
		}
		if result.RowsAffected == 0 {
			return repository.ErrOrderNotFound
		}

		if err := appendRows(tx, order.ID, orderM.StatusHistory, &model.OrderStatusChangeModel{}); err != nil {
			return errors.Wrap(err, "failed to append status history")
		}
		if err := appendRows(tx, order.ID, orderM.Notes, &model.OrderNoteModel{}); err != nil {
			return errors.Wrap(err, "failed to append notes")
		}

		return nil
	})
}

// appendRows inserts the rows whose seq is past the stored count.
func appendRows[T any](tx *gorm.DB, orderID string, rows []T, table any) error {
	var stored int64
	if err := tx.Model(table).Where("order_id = ?", orderID).Count(&stored).Error; err != nil {
		return err
	}
	if int(stored) >= len(rows) {
		return nil
	}

	pending := rows[stored:]

	return tx.Create(&pending).Error
}
