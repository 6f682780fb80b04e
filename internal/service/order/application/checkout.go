package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"storefront/internal/pkg/logger"
	"storefront/internal/pkg/money"
	"storefront/internal/service/order/domain"
	"storefront/internal/service/order/port"
)

var ErrEmptyCart = errors.New("cart is empty")

// CheckoutService 结算用例：把会话购物车固化为一张不可变价格快照的订单
type CheckoutService struct {
	orders      domain.OrderRepository
	catalog     port.Catalog
	session     port.SessionState
	customers   port.CustomerDirectory
	notifier    port.NotificationProducer
	adminUserID int64
	tracer      trace.Tracer
}

func NewCheckoutService(
	orders domain.OrderRepository,
	catalog port.Catalog,
	session port.SessionState,
	customers port.CustomerDirectory,
	notifier port.NotificationProducer,
	adminUserID int64,
	tracer trace.Tracer,
) *CheckoutService {
	return &CheckoutService{
		orders:      orders,
		catalog:     catalog,
		session:     session,
		customers:   customers,
		notifier:    notifier,
		adminUserID: adminUserID,
		tracer:      tracer,
	}
}

// Checkout 执行结算。
// 购物车中已下架的商品被静默跳过；全部跳过后等同空车。
// 订单与明细在单个事务内落库，落库成功后才清理会话、发送通知,
// 这两步的失败只进 Warnings 而不回滚订单。
func (s *CheckoutService) Checkout(ctx context.Context, sessionID string, userID int64) (*CheckoutResult, error) {
	ctx, span := s.tracer.Start(ctx, "CheckoutService.Checkout")
	defer span.End()
	span.SetAttributes(attribute.Int64("user.id", userID))

	cart, err := s.session.LoadCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if len(cart) == 0 {
		return nil, ErrEmptyCart
	}

	discount, err := s.session.LoadDiscount(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	discountPercent := 0
	if discount != nil {
		discountPercent = money.ClampPercent(discount.Percent)
	}

	// 固定遍历顺序，保证重试时行顺序一致
	pids := make([]int64, 0, len(cart))
	for pid := range cart {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })

	var items []domain.OrderItem
	var lines []domain.NotificationLine
	for _, pid := range pids {
		product, err := s.catalog.GetProduct(ctx, pid)
		if err != nil {
			if errors.Is(err, port.ErrProductNotFound) {
				logger.Ctx(ctx).Debug().Int64("product_id", pid).Msg("skipping unavailable product at checkout")
				continue
			}
			return nil, err
		}
		items = append(items, domain.OrderItem{
			ProductID:            pid,
			Quantity:             cart[pid],
			PriceAtPurchaseCents: product.UnitPriceCents,
		})
		lines = append(lines, domain.NotificationLine{
			ProductID:  pid,
			Title:      product.Title,
			Quantity:   cart[pid],
			PriceCents: product.UnitPriceCents,
		})
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	order, err := domain.NewOrder(userID, items, discountPercent)
	if err != nil {
		return nil, err
	}
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int64("order.id", order.ID))
	logger.Ctx(ctx).Info().
		Int64("order_id", order.ID).
		Int64("user_id", userID).
		Int64("total_cents", order.TotalPriceCents).
		Msg("order created")

	result := &CheckoutResult{
		OrderID:       order.ID,
		TotalCents:    order.TotalPriceCents,
		DiscountCents: order.DiscountAmountCents,
	}

	if err := s.session.ClearCheckout(ctx, sessionID); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Int64("order_id", order.ID).Msg("failed to clear session after checkout")
		result.Warnings = append(result.Warnings, "session cleanup failed; cart may still show purchased items")
	}

	result.Warnings = append(result.Warnings, s.fanOutCheckoutNotifications(ctx, order, lines)...)
	return result, nil
}

// fanOutCheckoutNotifications 并发投递买家确认与管理员提醒。
// 所有失败都降级为警告。
func (s *CheckoutService) fanOutCheckoutNotifications(ctx context.Context, order *domain.Order, lines []domain.NotificationLine) []string {
	var mu sync.Mutex
	var warnings []string
	addWarning := func(w string) {
		mu.Lock()
		warnings = append(warnings, w)
		mu.Unlock()
	}

	buyer, err := s.customers.FindActive(ctx, order.UserID)
	if err != nil {
		// 幽灵买家：订单已落库，通知只能放弃
		logger.Ctx(ctx).Warn().Err(err).Int64("user_id", order.UserID).Msg("buyer not found, skipping confirmation email")
		addWarning(fmt.Sprintf("confirmation not sent: buyer %d not found", order.UserID))
		buyer = nil
	}

	g, gctx := errgroup.WithContext(ctx)
	if buyer != nil {
		// 确认邮件与发票邮件分开投递，任一失败不影响另一封
		for _, kind := range []domain.NotificationKind{domain.KindOrderConfirmation, domain.KindOrderInvoice} {
			kind := kind
			g.Go(func() error {
				event := domain.NotificationEvent{
					EventID:        uuid.NewString(),
					Kind:           kind,
					RecipientID:    buyer.ID,
					RecipientEmail: buyer.Email,
					OrderID:        order.ID,
					Payload: domain.NotificationPayload{
						Lines:         lines,
						TotalCents:    order.TotalPriceCents,
						DiscountCents: order.DiscountAmountCents,
					},
				}
				if err := s.notifier.Publish(gctx, event); err != nil {
					logger.Ctx(gctx).Warn().Err(err).Int64("order_id", order.ID).Str("kind", string(kind)).Msg("failed to publish buyer notification")
					addWarning(fmt.Sprintf("%s could not be queued", kind))
				}
				return nil
			})
		}
	}
	g.Go(func() error {
		event := domain.NotificationEvent{
			EventID:     uuid.NewString(),
			Kind:        domain.KindAdminAlert,
			RecipientID: s.adminUserID,
			OrderID:     order.ID,
			Payload: domain.NotificationPayload{
				TotalCents: order.TotalPriceCents,
			},
		}
		if err := s.notifier.Publish(gctx, event); err != nil {
			logger.Ctx(gctx).Warn().Err(err).Int64("order_id", order.ID).Msg("failed to publish admin alert")
			addWarning("admin alert could not be queued")
		}
		return nil
	})
	_ = g.Wait()
	return warnings
}
