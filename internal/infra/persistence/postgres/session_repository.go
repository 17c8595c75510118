package postgres

import (
	"context"

	"storebot/internal/domain/entity"
	"storebot/internal/domain/repository"
	"storebot/internal/errors"
	"storebot/internal/infra/persistence/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// sessionRepository implements the session and basket repositories.
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository is the constructor for the session store.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

// NewBasketRepository is the constructor for the basket store.
func NewBasketRepository(db *gorm.DB) repository.BasketRepository {
	return &sessionRepository{db: db}
}

func (repo *sessionRepository) GetSession(ctx context.Context, userID int64) (*entity.Session, error) {
	var sessionM model.SessionModel

	if err := repo.db.WithContext(ctx).Where("user_id = ?", userID).First(&sessionM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrSessionNotFound
		}

		return nil, errors.Wrap(err, "failed to get session")
	}

	session := sessionM.Data
	session.UserID = sessionM.UserID

	return &session, nil
}

func (repo *sessionRepository) SaveSession(ctx context.Context, session *entity.Session) error {
	sessionM := &model.SessionModel{
		UserID:    session.UserID,
		Data:      *session,
		UpdatedAt: session.UpdatedAt,
	}

	err := repo.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(sessionM).Error

	return errors.Wrap(err, "failed to save session")
}

func (repo *sessionRepository) DeleteSession(ctx context.Context, userID int64) error {
	err := repo.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.SessionModel{}).Error

	return errors.Wrap(err, "failed to delete session")
}

func (repo *sessionRepository) GetBasket(ctx context.Context, userID int64) (*entity.Basket, error) {
	var basketM model.BasketModel

	if err := repo.db.WithContext(ctx).Where("user_id = ?", userID).First(&basketM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entity.NewBasket(userID), nil
		}

		return nil, errors.Wrap(err, "failed to get basket")
	}

	basket := entity.NewBasket(userID)
	for id, qty := range basketM.Items {
		basket.Items[id] = qty
	}
	basket.UpdatedAt = basketM.UpdatedAt

	return basket, nil
}

func (repo *sessionRepository) SaveBasket(ctx context.Context, basket *entity.Basket) error {
	basketM := &model.BasketModel{
		UserID: basket.UserID,
		Items:  basket.Items,
	}

	err := repo.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"items", "updated_at"}),
	}).Create(basketM).Error
	if err != nil {
		return errors.Wrap(err, "failed to save basket")
	}
	basket.UpdatedAt = basketM.UpdatedAt

	return nil
}

func (repo *sessionRepository) DeleteBasket(ctx context.Context, userID int64) error {
	err := repo.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&model.BasketModel{}).Error

	return errors.Wrap(err, "failed to delete basket")
}
