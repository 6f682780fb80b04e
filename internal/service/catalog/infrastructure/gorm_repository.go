// internal/service/catalog/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"storefront/internal/service/catalog/domain"
)

// GormProductRepository 是 ProductRepository 的 GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	var model ProductModel
	err := r.db.WithContext(ctx).First(&model, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, errors.Wrapf(err, "find product %d", id)
	}
	return ToDomainProduct(&model), nil
}

func (r *GormProductRepository) Create(ctx context.Context, product *domain.Product) error {
	model := FromDomainProduct(product)
	model.ID = 0
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return errors.Wrap(err, "create product")
	}
	product.ID = int64(model.ID)
	return nil
}

func (r *GormProductRepository) Update(ctx context.Context, product *domain.Product) error {
	updates := map[string]interface{}{
		"title":       product.Title,
		"price_cents": product.PriceCents,
		"description": product.Description,
		"image_url":   product.ImageURL,
	}
	result := r.db.WithContext(ctx).Model(&ProductModel{}).Where("id = ?", product.ID).Updates(updates)
	if result.Error != nil {
		return errors.Wrapf(result.Error, "update product %d", product.ID)
	}
	if result.RowsAffected == 0 {
		return domain.ErrProductNotFound
	}
	return nil
}
