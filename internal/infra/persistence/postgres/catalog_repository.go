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

// catalogRepository implements the repository.CatalogRepository interface.
type catalogRepository struct {
	db *gorm.DB
}

// NewCatalogRepository is the constructor for catalogRepository.
func NewCatalogRepository(db *gorm.DB) repository.CatalogRepository {
	return &catalogRepository{db: db}
}

// ListProducts returns every product ordered by id.
func (repo *catalogRepository) ListProducts(ctx context.Context) ([]*entity.Product, error) {
	var productModels []*model.ProductModel

	if err := repo.db.WithContext(ctx).Order("id").Find(&productModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list products")
	}

	products := make([]*entity.Product, 0, len(productModels))
	for _, productM := range productModels {
		products = append(products, toProductDomain(productM))
	}

	return products, nil
}

// FindProduct retrieves a product by id.
func (repo *catalogRepository) FindProduct(ctx context.Context, id string) (*entity.Product, error) {
	var productM model.ProductModel

	if err := repo.db.WithContext(ctx).Where("id = ?", id).First(&productM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrProductNotFound
		}

		return nil, errors.Wrap(err, "failed to find product")
	}

	return toProductDomain(&productM), nil
}

// PutProduct inserts or replaces a product, keeping its creation time.
func (repo *catalogRepository) PutProduct(ctx context.Context, product *entity.Product) error {
	productM := fromProductDomain(product)

	err := repo.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "benefits", "description", "contraindications", "price", "photo", "updated_at",
		}),
	}).Create(productM).Error
	if err != nil {
		return errors.Wrap(err, "failed to put product")
	}

	if product.CreatedAt.IsZero() {
		product.CreatedAt = productM.CreatedAt
	}
	product.UpdatedAt = productM.UpdatedAt

	return nil
}

// DeleteProduct removes a product by id.
func (repo *catalogRepository) DeleteProduct(ctx context.Context, id string) error {
	result := repo.db.WithContext(ctx).Where("id = ?", id).Delete(&model.ProductModel{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete product")
	}
	if result.RowsAffected == 0 {
		return repository.ErrProductNotFound
	}

	return nil
}
