package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"storefront/internal/pkg/httpapi"
	"storefront/internal/service/promotion/application"
	"storefront/internal/service/promotion/domain"
)

const serviceName = "promotion-api"

// CouponHandler 封装了优惠券的 HTTP 处理器
type CouponHandler struct {
	service *application.PromotionService
}

func NewCouponHandler(service *application.PromotionService) *CouponHandler {
	return &CouponHandler{service: service}
}

func (h *CouponHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/apply_coupon", h.applyHandler)
	mux.HandleFunc("/remove_coupon", h.removeHandler)
	mux.HandleFunc("/admin/coupons", h.adminListHandler)
	mux.HandleFunc("/admin/coupons/create", h.adminCreateHandler)
	mux.HandleFunc("/admin/coupons/set_active", h.adminSetActiveHandler)
	mux.HandleFunc("/admin/coupons/delete", h.adminDeleteHandler)
}

func (h *CouponHandler) applyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpapi.WriteError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(r.Context(), "promotion-api.Apply")
	defer span.End()

	sessionID := httpapi.SessionID(w, r)
	code := r.URL.Query().Get("code")
	span.SetAttributes(attribute.String("coupon.code", code))

	discount, err := h.service.Apply(ctx, sessionID, code)
	if err != nil {
		if errors.Is(err, domain.ErrCouponInvalid) {
			httpapi.WriteError(w, http.StatusUnprocessableEntity, "coupon is invalid or inactive")
			return
		}
		httpapi.WriteError(w, http.StatusInternalServerError, "failed to apply coupon")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, discount)
}

func (h *CouponHandler) removeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpapi.WriteError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(r.Context(), "promotion-api.Remove")
	defer span.End()

	sessionID := httpapi.SessionID(w, r)
	if err := h.service.Clear(ctx, sessionID); err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "failed to remove coupon")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

type createCouponRequest struct {
	Code            string `json:"code"`
	DiscountPercent int    `json:"discount_percent"`
}

func (h *CouponHandler) adminListHandler(w http.ResponseWriter, r *http.Request) {
	if !httpapi.IsAdmin(r) {
		httpapi.WriteError(w, http.StatusForbidden, "admin only")
		return
	}
	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(r.Context(), "promotion-api.List")
	defer span.End()

	coupons, err := h.service.List(ctx)
	if err != nil {
		httpapi.WriteError(w, http.StatusInternalServerError, "failed to list coupons")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, coupons)
}

func (h *CouponHandler) adminCreateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpapi.WriteError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if !httpapi.IsAdmin(r) {
		httpapi.WriteError(w, http.StatusForbidden, "admin only")
		return
	}
	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(r.Context(), "promotion-api.Create")
	defer span.End()

	var req createCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	coupon, err := h.service.Create(ctx, req.Code, req.DiscountPercent)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrEmptyCode), errors.Is(err, domain.ErrBadPercent):
			httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, domain.ErrCodeTaken):
			httpapi.WriteError(w, http.StatusConflict, "coupon code already exists")
		default:
			httpapi.WriteError(w, http.StatusInternalServerError, "failed to create coupon")
		}
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, coupon)
}

func (h *CouponHandler) adminSetActiveHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpapi.WriteError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if !httpapi.IsAdmin(r) {
		httpapi.WriteError(w, http.StatusForbidden, "admin only")
		return
	}
	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(r.Context(), "promotion-api.SetActive")
	defer span.End()

	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		httpapi.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	active := r.URL.Query().Get("active") == "true"
	if err := h.service.SetActive(ctx, id, active); err != nil {
		if errors.Is(err, domain.ErrCouponNotFound) {
			httpapi.WriteError(w, http.StatusNotFound, "coupon not found")
			return
		}
		httpapi.WriteError(w, http.StatusInternalServerError, "failed to update coupon")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (h *CouponHandler) adminDeleteHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpapi.WriteError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if !httpapi.IsAdmin(r) {
		httpapi.WriteError(w, http.StatusForbidden, "admin only")
		return
	}
	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(r.Context(), "promotion-api.Delete")
	defer span.End()

	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		httpapi.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	if err := h.service.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrCouponNotFound) {
			httpapi.WriteError(w, http.StatusNotFound, "coupon not found")
			return
		}
		httpapi.WriteError(w, http.StatusInternalServerError, "failed to delete coupon")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
