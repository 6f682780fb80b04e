package interfaces

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"

	"storefront/internal/pkg/httpapi"
	"storefront/internal/service/order/application"
	"storefront/internal/service/order/domain"
)

const serviceName = "order-api"

var (
	ordersCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "storefront_orders_created_total",
		Help: "Number of orders successfully created.",
	})
	checkoutFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "storefront_checkout_failures_total",
		Help: "Number of failed checkout attempts by reason.",
	}, []string{"reason"})
)

// OrderHandler 封装了订单的 HTTP 处理器
type OrderHandler struct {
	checkout  *application.CheckoutService
	lifecycle *application.LifecycleService
}

func NewOrderHandler(checkout *application.CheckoutService, lifecycle *application.LifecycleService) *OrderHandler {
	return &OrderHandler{checkout: checkout, lifecycle: lifecycle}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *OrderHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/checkout", h.checkoutHandler)
	mux.HandleFunc("/my-orders", h.myOrdersHandler)
	mux.HandleFunc("/orders/cancel", h.cancelHandler)
	mux.HandleFunc("/admin/orders", h.adminListHandler)
	mux.HandleFunc("/admin/orders/ship", h.adminShipHandler)
	mux.HandleFunc("/admin/orders/export_csv", h.adminExportHandler)
	mux.HandleFunc("/admin/dashboard", h.adminDashboardHandler)
}

func (h *OrderHandler) checkoutHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpapi.WriteError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	propagator := otel.GetTextMapPropagator()
	ctx := propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(ctx, "order-api.Checkout")
	defer span.End()

	sessionID := httpapi.SessionID(w, r)
	userID, err := httpapi.UserID(r)
	if err != nil {
		httpapi.WriteError(w, http.StatusUnauthorized, err.Error())
		return
	}
	span.SetAttributes(attribute.Int64("user.id", userID))

	result, err := h.checkout.Checkout(ctx, sessionID, userID)
	if err != nil {
		if errors.Is(err, application.ErrEmptyCart) {
			checkoutFailures.WithLabelValues("empty_cart").Inc()
			httpapi.WriteError(w, http.StatusBadRequest, "cart is empty")
			return
		}
		checkoutFailures.WithLabelValues("internal").Inc()
		httpapi.WriteError(w, http.StatusInternalServerError, "checkout failed")
		return
	}
	ordersCreated.Inc()
	httpapi.WriteJSON(w, http.StatusCreated, result)
}

func (h *OrderHandler) myOrdersHandler(w http.ResponseWriter, r *http.Request) {
	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(r.Context(), "order-api.MyOrders")
	defer span.End()

	userID, err := httpapi.UserID(r)
	if err != nil {
		httpapi.WriteError(w, http.StatusUnauthorized, err.Error())
		return
	}
	orders, err := h.lifecycle.ListByUser(ctx, userID)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *OrderHandler) cancelHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpapi.WriteError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(r.Context(), "order-api.Cancel")
	defer span.End()

	userID, err := httpapi.UserID(r)
	if err != nil {
		httpapi.WriteError(w, http.StatusUnauthorized, err.Error())
		return
	}
	orderID, err := strconv.ParseInt(r.URL.Query().Get("order_id"), 10, 64)
	if err != nil || orderID <= 0 {
		httpapi.WriteError(w, http.StatusBadRequest, "invalid order_id")
		return
	}
	span.SetAttributes(attribute.Int64("order.id", orderID))

	result, err := h.lifecycle.Cancel(ctx, orderID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			httpapi.WriteError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, domain.ErrForbidden):
			httpapi.WriteError(w, http.StatusForbidden, "not your order")
		case errors.Is(err, domain.ErrAlreadyShipped):
			httpapi.WriteError(w, http.StatusConflict, "order has already been shipped")
		default:
			httpapi.WriteError(w, http.StatusInternalServerError, "failed to cancel order")
		}
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, result)
}

func (h *OrderHandler) adminShipHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpapi.WriteError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if !httpapi.IsAdmin(r) {
		httpapi.WriteError(w, http.StatusForbidden, "admin only")
		return
	}
	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(r.Context(), "order-api.Ship")
	defer span.End()

	orderID, err := strconv.ParseInt(r.URL.Query().Get("order_id"), 10, 64)
	if err != nil || orderID <= 0 {
		httpapi.WriteError(w, http.StatusBadRequest, "invalid order_id")
		return
	}
	span.SetAttributes(attribute.Int64("order.id", orderID))

	result, err := h.lifecycle.Ship(ctx, orderID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrOrderNotFound):
			httpapi.WriteError(w, http.StatusNotFound, "order not found")
		case errors.Is(err, domain.ErrAlreadyShipped):
			httpapi.WriteError(w, http.StatusConflict, "order has already been shipped")
		case errors.Is(err, domain.ErrAlreadyCancelled):
			httpapi.WriteError(w, http.StatusConflict, "order has been cancelled")
		default:
			httpapi.WriteError(w, http.StatusInternalServerError, "failed to ship order")
		}
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, result)
}

func (h *OrderHandler) adminListHandler(w http.ResponseWriter, r *http.Request) {
	if !httpapi.IsAdmin(r) {
		httpapi.WriteError(w, http.StatusForbidden, "admin only")
		return
	}
	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(r.Context(), "order-api.AdminList")
	defer span.End()

	orders, err := h.lifecycle.ListAll(ctx)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "failed to list orders")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, toOrderResponses(orders))
}

func (h *OrderHandler) adminExportHandler(w http.ResponseWriter, r *http.Request) {
	if !httpapi.IsAdmin(r) {
		httpapi.WriteError(w, http.StatusForbidden, "admin only")
		return
	}
	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(r.Context(), "order-api.ExportCSV")
	defer span.End()

	out, err := h.lifecycle.ExportCSV(ctx)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "failed to export orders")
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="orders.csv"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

func (h *OrderHandler) adminDashboardHandler(w http.ResponseWriter, r *http.Request) {
	if !httpapi.IsAdmin(r) {
		httpapi.WriteError(w, http.StatusForbidden, "admin only")
		return
	}
	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(r.Context(), "order-api.Dashboard")
	defer span.End()

	stats, err := h.lifecycle.Dashboard(ctx)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	pending, err := h.lifecycle.PendingCount(ctx)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "failed to load dashboard")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, dashboardResponse{
		TotalOrders:        stats.TotalOrders,
		TotalSalesCents:    stats.TotalSalesCents,
		AvgOrderValueCents: stats.AvgOrderValueCents,
		PendingOrders:      pending,
		SalesByDay:         stats.SalesByDay,
	})
}

type dashboardResponse struct {
	TotalOrders        int64               `json:"total_orders"`
	TotalSalesCents    int64               `json:"total_sales_cents"`
	AvgOrderValueCents int64               `json:"avg_order_value_cents"`
	PendingOrders      int64               `json:"pending_orders"`
	SalesByDay         []domain.DailySales `json:"sales_by_day"`
}

type orderItemResponse struct {
	ProductID            int64 `json:"product_id"`
	Quantity             int   `json:"quantity"`
	PriceAtPurchaseCents int64 `json:"price_at_purchase_cents"`
}

type orderResponse struct {
	ID                  int64               `json:"id"`
	UserID              int64               `json:"user_id"`
	CreatedDate         string              `json:"created_date"`
	TotalPriceCents     int64               `json:"total_price_cents"`
	DiscountAmountCents int64               `json:"discount_amount_cents"`
	Status              string              `json:"status"`
	Items               []orderItemResponse `json:"items"`
}

func toOrderResponses(orders []domain.Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for _, order := range orders {
		items := make([]orderItemResponse, 0, len(order.Items))
		for _, item := range order.Items {
			items = append(items, orderItemResponse{
				ProductID:            item.ProductID,
				Quantity:             item.Quantity,
				PriceAtPurchaseCents: item.PriceAtPurchaseCents,
			})
		}
		out = append(out, orderResponse{
			ID:                  order.ID,
			UserID:              order.UserID,
			CreatedDate:         order.CreatedDate.Format("2006-01-02 15:04:05"),
			TotalPriceCents:     order.TotalPriceCents,
			DiscountAmountCents: order.DiscountAmountCents,
			Status:              string(order.Status),
			Items:               items,
		})
	}
	return out
}
