package interfaces

import (
	"errors"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"storefront/internal/pkg/httpapi"
	"storefront/internal/service/cart/application"
	"storefront/internal/service/cart/domain"
	"storefront/internal/service/cart/port"
)

const serviceName = "cart-api"

// CartHandler 封装了购物车的 HTTP 处理器
type CartHandler struct {
	service *application.CartService
}

func NewCartHandler(service *application.CartService) *CartHandler {
	return &CartHandler{service: service}
}

// RegisterRoutes 在 ServeMux 上注册所有路由
func (h *CartHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/cart", h.viewHandler)
	mux.HandleFunc("/cart/add", h.addHandler)
	mux.HandleFunc("/cart/remove", h.removeHandler)
}

func (h *CartHandler) addHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpapi.WriteError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(r.Context(), "cart-api.Add")
	defer span.End()

	sessionID := httpapi.SessionID(w, r)
	productID, err := domain.ParseProductID(r.URL.Query().Get("product_id"))
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "invalid product_id")
		return
	}
	span.SetAttributes(attribute.Int64("product.id", int64(productID)))

	quantity, err := h.service.AddItem(ctx, sessionID, productID)
	if err != nil {
		switch {
		case errors.Is(err, port.ErrProductNotFound):
			httpapi.WriteError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, domain.ErrRuleRejected):
			httpapi.WriteError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			httpapi.WriteError(w, http.StatusInternalServerError, "failed to add item")
		}
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]any{"status": "added", "quantity": quantity})
}

func (h *CartHandler) removeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpapi.WriteError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(r.Context(), "cart-api.Remove")
	defer span.End()

	sessionID := httpapi.SessionID(w, r)
	productID, err := domain.ParseProductID(r.URL.Query().Get("product_id"))
	if err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "invalid product_id")
		return
	}

	if err := h.service.RemoveItem(ctx, sessionID, productID); err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "failed to remove item")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (h *CartHandler) viewHandler(w http.ResponseWriter, r *http.Request) {
	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(r.Context(), "cart-api.View")
	defer span.End()

	sessionID := httpapi.SessionID(w, r)
	view, err := h.service.View(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrCorruptCart) {
			httpapi.WriteError(w, http.StatusConflict, "cart contents are corrupt")
			return
		}
		httpapi.WriteError(w, http.StatusInternalServerError, "failed to load cart")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, view)
}
