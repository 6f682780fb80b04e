// internal/service/cart/application/service.go
package application

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/pkg/logger"
	"storefront/internal/pkg/money"
	"storefront/internal/service/cart/domain"
	"storefront/internal/service/cart/port"
)

// LineItem 是购物车的计价投影行。
type LineItem struct {
	ProductID      int64  `json:"product_id"`
	Title          string `json:"title"`
	UnitPriceCents int64  `json:"unit_price_cents"`
	Quantity       int    `json:"quantity"`
	SubtotalCents  int64  `json:"subtotal_cents"`
}

// CartView 是投影结果：存活的行与总额。
type CartView struct {
	Items           []LineItem `json:"items"`
	GrandTotalCents int64      `json:"grand_total_cents"`
}

// CartService 负责会话购物车的变更与只读投影。
type CartService struct {
	carts   domain.CartRepository
	catalog port.Catalog
	rule    domain.AdmissionRule
	tracer  trace.Tracer
}

func NewCartService(carts domain.CartRepository, catalog port.Catalog, rule domain.AdmissionRule, tracer trace.Tracer) *CartService {
	return &CartService{carts: carts, catalog: catalog, rule: rule, tracer: tracer}
}

// AddItem 把商品数量 +1（不存在则置 1）。
// 加购前先按配置的准入规则评估目标行，被拒绝时购物车保持不变。
func (s *CartService) AddItem(ctx context.Context, sessionID string, productID domain.ProductID) (int, error) {
	ctx, span := s.tracer.Start(ctx, "cart.AddItem")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", int64(productID)))

	product, err := s.catalog.GetProduct(ctx, int64(productID))
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	current, err := s.carts.Quantity(ctx, sessionID, productID)
	if err != nil {
		span.RecordError(err)
		return 0, err
	}

	allowed, err := s.rule.Evaluate(domain.Fact{
		ProductID:      int64(productID),
		Quantity:       current + 1,
		UnitPriceCents: product.UnitPriceCents,
	})
	if err != nil {
		span.RecordError(err)
		return 0, err
	}
	if !allowed {
		return 0, errors.Wrapf(domain.ErrRuleRejected, "product %d at quantity %d", productID, current+1)
	}

	return s.carts.Increment(ctx, sessionID, productID)
}

// RemoveItem 删除条目。条目不存在时什么也不做，返回成功。
func (s *CartService) RemoveItem(ctx context.Context, sessionID string, productID domain.ProductID) error {
	ctx, span := s.tracer.Start(ctx, "cart.RemoveItem")
	defer span.End()
	span.SetAttributes(attribute.Int64("product.id", int64(productID)))

	return s.carts.Remove(ctx, sessionID, productID)
}

// View 把购物车投影为计价行。目录里已不存在的商品被整体跳过，
// 既不出现在行里也不计入总额——与结算时的过滤口径完全一致。
func (s *CartService) View(ctx context.Context, sessionID string) (*CartView, error) {
	ctx, span := s.tracer.Start(ctx, "cart.View")
	defer span.End()

	cart, err := s.carts.Load(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	view := &CartView{Items: make([]LineItem, 0, len(cart))}
	for _, productID := range sortedIDs(cart) {
		product, err := s.catalog.GetProduct(ctx, int64(productID))
		if errors.Is(err, port.ErrProductNotFound) {
			logger.Ctx(ctx).Debug().
				Int64("product_id", int64(productID)).
				Msg("skipping cart line for product missing from catalog")
			continue
		}
		if err != nil {
			span.RecordError(err)
			return nil, err
		}

		quantity := cart[productID]
		subtotal, err := money.LineTotal(product.UnitPriceCents, quantity)
		if err != nil {
			return nil, err
		}
		view.Items = append(view.Items, LineItem{
			ProductID:      product.ID,
			Title:          product.Title,
			UnitPriceCents: product.UnitPriceCents,
			Quantity:       quantity,
			SubtotalCents:  subtotal,
		})
		view.GrandTotalCents += subtotal
	}
	return view, nil
}

func sortedIDs(cart domain.Cart) []domain.ProductID {
	ids := make([]domain.ProductID, 0, len(cart))
	for id := range cart {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
