package adapter

import (
	"context"

	"github.com/pkg/errors"

	catalogapp "storefront/internal/service/catalog/application"
	catalogdomain "storefront/internal/service/catalog/domain"
	"storefront/internal/service/order/port"
)

// CatalogAdapter 把目录上下文适配为结算侧的防腐层接口
type CatalogAdapter struct {
	catalog *catalogapp.CatalogService
}

func NewCatalogAdapter(catalog *catalogapp.CatalogService) *CatalogAdapter {
	return &CatalogAdapter{catalog: catalog}
}

func (a *CatalogAdapter) GetProduct(ctx context.Context, id int64) (*port.Product, error) {
	product, err := a.catalog.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, catalogdomain.ErrProductNotFound) {
			return nil, port.ErrProductNotFound
		}
		return nil, err
	}
	return &port.Product{
		ID:             product.ID,
		Title:          product.Title,
		UnitPriceCents: product.PriceCents,
	}, nil
}
