package impl

import (
	"context"
	"log/slog"

	"storebot/internal/domain/entity"
	domainerrors "storebot/internal/domain/errors"
	"storebot/internal/domain/repository"
	"storebot/internal/errors"
	"storebot/internal/usecase"
)

type basketService struct {
	baskets repository.BasketRepository
	catalog usecase.CatalogUsecase
	logger  *slog.Logger
}

// NewBasketService is the constructor for basketService.
func NewBasketService(
	baskets repository.BasketRepository,
	catalog usecase.CatalogUsecase,
	logger *slog.Logger,
) usecase.BasketUsecase {
	return &basketService{
		baskets: baskets,
		catalog: catalog,
		logger:  logger,
	}
}

// Add puts one more unit of productID into the basket.
func (srv *basketService) Add(ctx context.Context, userID int64, productID string) (*entity.Basket, error) {
	if _, err := srv.catalog.Get(ctx, productID); err != nil {
		return nil, err
	}

	basket, err := srv.baskets.GetBasket(ctx, userID)
	if err != nil {
		return nil, domainerrors.NewStorageError(err, "get basket")
	}

	basket.Add(productID, 1)
	if err := srv.baskets.SaveBasket(ctx, basket); err != nil {
		return nil, domainerrors.NewStorageError(err, "save basket")
	}

	srv.logger.Debug("Basket updated", slog.Int64("userID", userID), slog.String("productID", productID))

	return basket, nil
}

// Lines prices the basket. Products deleted from the catalog since they
// were added are dropped.
func (srv *basketService) Lines(ctx context.Context, userID int64) ([]entity.OrderLine, error) {
	basket, err := srv.baskets.GetBasket(ctx, userID)
	if err != nil {
		return nil, domainerrors.NewStorageError(err, "get basket")
	}

	lines := make([]entity.OrderLine, 0, len(basket.Items))
	for _, id := range basket.ProductIDs() {
		product, err := srv.catalog.Get(ctx, id)
		if err != nil {
			if errors.Is(err, domainerrors.ErrProductNotFound) {
				srv.logger.Warn("Basket product no longer in catalog",
					slog.Int64("userID", userID), slog.String("productID", id))

				continue
			}

			return nil, err
		}

		lines = append(lines, entity.OrderLine{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.Price,
			Quantity:  basket.Items[id],
		})
	}

	return lines, nil
}

// Clear empties the basket.
func (srv *basketService) Clear(ctx context.Context, userID int64) error {
	if err := srv.baskets.DeleteBasket(ctx, userID); err != nil {
		return domainerrors.NewStorageError(err, "delete basket")
	}

	return nil
}
