package application

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"storefront/internal/pkg/logger"
	"storefront/internal/pkg/money"
	"storefront/internal/service/order/domain"
	"storefront/internal/service/order/port"
)

// LifecycleService 订单生命周期用例：发货、取消、查询与后台报表
type LifecycleService struct {
	orders    domain.OrderRepository
	customers port.CustomerDirectory
	catalog   port.Catalog
	notifier  port.NotificationProducer
	tracer    trace.Tracer
}

func NewLifecycleService(
	orders domain.OrderRepository,
	customers port.CustomerDirectory,
	catalog port.Catalog,
	notifier port.NotificationProducer,
	tracer trace.Tracer,
) *LifecycleService {
	return &LifecycleService{
		orders:    orders,
		customers: customers,
		catalog:   catalog,
		notifier:  notifier,
		tracer:    tracer,
	}
}

// Ship 把待支付订单迁移到已发货。终态订单拒绝发货。
func (s *LifecycleService) Ship(ctx context.Context, orderID int64) (*ShipResult, error) {
	ctx, span := s.tracer.Start(ctx, "LifecycleService.Ship")
	defer span.End()
	span.SetAttributes(attribute.Int64("order.id", orderID))

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.Ship(); err != nil {
		return nil, err
	}
	if err := s.orders.UpdateStatus(ctx, orderID, domain.StatusPending, domain.StatusShipped); err != nil {
		if errors.Is(err, domain.ErrStaleStatus) {
			return nil, s.resolveStale(ctx, orderID)
		}
		return nil, err
	}
	logger.Ctx(ctx).Info().Int64("order_id", orderID).Msg("order shipped")

	result := &ShipResult{OrderID: orderID}
	if warning := s.publishLifecycleEvent(ctx, order, domain.KindOrderShipped, 0); warning != "" {
		result.Warnings = append(result.Warnings, warning)
	}
	return result, nil
}

// Cancel 买家取消自己的待支付订单。重复取消返回幂等成功。
func (s *LifecycleService) Cancel(ctx context.Context, orderID, requestingUserID int64) (*CancelResult, error) {
	ctx, span := s.tracer.Start(ctx, "LifecycleService.Cancel")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("order.id", orderID),
		attribute.Int64("user.id", requestingUserID),
	)

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := order.Cancel(requestingUserID); err != nil {
		if errors.Is(err, domain.ErrAlreadyCancelled) {
			return &CancelResult{OrderID: orderID, AlreadyCancelled: true}, nil
		}
		return nil, err
	}
	if err := s.orders.UpdateStatus(ctx, orderID, domain.StatusPending, domain.StatusCancelled); err != nil {
		if errors.Is(err, domain.ErrStaleStatus) {
			resolved := s.resolveStale(ctx, orderID)
			if errors.Is(resolved, domain.ErrAlreadyCancelled) {
				return &CancelResult{OrderID: orderID, AlreadyCancelled: true}, nil
			}
			return nil, resolved
		}
		return nil, err
	}
	logger.Ctx(ctx).Info().Int64("order_id", orderID).Int64("refund_cents", order.TotalPriceCents).Msg("order cancelled")

	result := &CancelResult{OrderID: orderID, RefundCents: order.TotalPriceCents}
	if warning := s.publishLifecycleEvent(ctx, order, domain.KindOrderCancelled, order.TotalPriceCents); warning != "" {
		result.Warnings = append(result.Warnings, warning)
	}
	return result, nil
}

// resolveStale CAS 失败后重读订单，把当前状态翻译成对应的终态错误
func (s *LifecycleService) resolveStale(ctx context.Context, orderID int64) error {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return err
	}
	switch order.Status {
	case domain.StatusShipped:
		return domain.ErrAlreadyShipped
	case domain.StatusCancelled:
		return domain.ErrAlreadyCancelled
	}
	return domain.ErrStaleStatus
}

func (s *LifecycleService) publishLifecycleEvent(ctx context.Context, order *domain.Order, kind domain.NotificationKind, refundCents int64) string {
	buyer, err := s.customers.FindActive(ctx, order.UserID)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Int64("user_id", order.UserID).Msg("buyer not found, skipping notification")
		return "notification skipped: buyer not found"
	}
	event := domain.NotificationEvent{
		EventID:        uuid.NewString(),
		Kind:           kind,
		RecipientID:    buyer.ID,
		RecipientEmail: buyer.Email,
		OrderID:        order.ID,
		Payload: domain.NotificationPayload{
			TotalCents:  order.TotalPriceCents,
			RefundCents: refundCents,
		},
	}
	if err := s.notifier.Publish(ctx, event); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Int64("order_id", order.ID).Str("kind", string(kind)).Msg("failed to publish notification")
		return "notification could not be queued"
	}
	return ""
}

func (s *LifecycleService) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "LifecycleService.ListByUser")
	defer span.End()
	return s.orders.ListByUser(ctx, userID)
}

func (s *LifecycleService) ListAll(ctx context.Context) ([]domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "LifecycleService.ListAll")
	defer span.End()
	return s.orders.ListAll(ctx)
}

func (s *LifecycleService) Dashboard(ctx context.Context) (*domain.DashboardStats, error) {
	ctx, span := s.tracer.Start(ctx, "LifecycleService.Dashboard")
	defer span.End()
	return s.orders.Stats(ctx)
}

func (s *LifecycleService) PendingCount(ctx context.Context) (int64, error) {
	return s.orders.PendingCount(ctx)
}

// ExportCSV 导出全量订单报表。
// 已删除的关联数据用占位符兜底，导出永不因脏数据中断。
func (s *LifecycleService) ExportCSV(ctx context.Context) ([]byte, error) {
	ctx, span := s.tracer.Start(ctx, "LifecycleService.ExportCSV")
	defer span.End()

	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Order ID", "Date", "Customer Name", "Email", "Items", "Total ($)", "Status"}); err != nil {
		return nil, err
	}
	customerCache := make(map[int64]*port.Customer)
	titleCache := make(map[int64]string)
	for _, order := range orders {
		customer, ok := customerCache[order.UserID]
		if !ok {
			customer, _ = s.customers.FindByID(ctx, order.UserID)
			customerCache[order.UserID] = customer
		}
		name, email := "Deleted User", "N/A"
		if customer != nil {
			name, email = customer.Name, customer.Email
		}

		itemParts := make([]string, 0, len(order.Items))
		for _, item := range order.Items {
			title, ok := titleCache[item.ProductID]
			if !ok {
				if product, err := s.catalog.GetProduct(ctx, item.ProductID); err == nil {
					title = product.Title
				} else {
					title = "Deleted Product"
				}
				titleCache[item.ProductID] = title
			}
			itemParts = append(itemParts, fmt.Sprintf("%s (x%d)", title, item.Quantity))
		}

		date := "Unknown Date"
		if !order.CreatedDate.IsZero() {
			date = order.CreatedDate.Format("2006-01-02")
		}
		record := []string{
			strconv.FormatInt(order.ID, 10),
			date,
			name,
			email,
			strings.Join(itemParts, "; "),
			money.FormatDollars(order.TotalPriceCents),
			string(order.Status),
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
