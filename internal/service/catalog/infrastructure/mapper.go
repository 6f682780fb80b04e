// internal/service/catalog/infrastructure/mapper.go
package infrastructure

import (
	"gorm.io/gorm"

	"storefront/internal/service/catalog/domain"
)

// ToDomainProduct 将数据库模型转换为领域模型
func ToDomainProduct(model *ProductModel) *domain.Product {
	if model == nil {
		return nil
	}
	return &domain.Product{
		ID:          int64(model.ID),
		Title:       model.Title,
		PriceCents:  model.PriceCents,
		Description: model.Description,
		ImageURL:    model.ImageURL,
	}
}

// FromDomainProduct 将领域模型转换为数据库模型
func FromDomainProduct(product *domain.Product) *ProductModel {
	if product == nil {
		return nil
	}
	return &ProductModel{
		Model:       gorm.Model{ID: uint(product.ID)},
		Title:       product.Title,
		PriceCents:  product.PriceCents,
		Description: product.Description,
		ImageURL:    product.ImageURL,
	}
}
