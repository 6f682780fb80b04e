// internal/service/catalog/application/service.go
package application

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/pkg/money"
	"storefront/internal/service/catalog/domain"
)

var (
	ErrEmptyTitle    = errors.New("product title must not be empty")
	ErrNegativePrice = errors.New("product price must not be negative")
)

// CatalogService 提供购物车与结算流程依赖的商品查询，
// 以及后台的商品录入。价格在录入边界一次性换算为分，之后只存整数。
type CatalogService struct {
	repo   domain.ProductRepository
	tracer trace.Tracer
}

func NewCatalogService(repo domain.ProductRepository, tracer trace.Tracer) *CatalogService {
	return &CatalogService{repo: repo, tracer: tracer}
}

func (s *CatalogService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.GetProduct")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", id))

	return s.repo.FindByID(ctx, id)
}

// CreateProduct 录入一个新商品。priceDollars 是后台表单里的美元金额，
// 在这里换算成分后就不再参与任何计算。
func (s *CatalogService) CreateProduct(ctx context.Context, title string, priceDollars decimal.Decimal, description, imageURL string) (*domain.Product, error) {
	ctx, span := s.tracer.Start(ctx, "catalog.CreateProduct")
	defer span.End()

	if title == "" {
		return nil, ErrEmptyTitle
	}
	if priceDollars.IsNegative() {
		return nil, ErrNegativePrice
	}

	product := &domain.Product{
		Title:       title,
		PriceCents:  money.CentsFromDecimalDollars(priceDollars),
		Description: description,
		ImageURL:    imageURL,
	}
	if err := s.repo.Create(ctx, product); err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("product.id", product.ID))
	return product, nil
}

// UpdateProduct 更新商品信息，价格同样只在这里换算一次。
func (s *CatalogService) UpdateProduct(ctx context.Context, id int64, title string, priceDollars decimal.Decimal, description, imageURL string) error {
	ctx, span := s.tracer.Start(ctx, "catalog.UpdateProduct")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", id))

	if title == "" {
		return ErrEmptyTitle
	}
	if priceDollars.IsNegative() {
		return ErrNegativePrice
	}

	return s.repo.Update(ctx, &domain.Product{
		ID:          id,
		Title:       title,
		PriceCents:  money.CentsFromDecimalDollars(priceDollars),
		Description: description,
		ImageURL:    imageURL,
	})
}
