package interfaces

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"storefront/internal/pkg/httpapi"
	"storefront/internal/service/catalog/application"
	"storefront/internal/service/catalog/domain"
)

const serviceName = "catalog-api"

// ProductHandler 封装了商品目录的 HTTP 处理器
type ProductHandler struct {
	service *application.CatalogService
}

func NewProductHandler(service *application.CatalogService) *ProductHandler {
	return &ProductHandler{service: service}
}

func (h *ProductHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/products/get", h.getHandler)
	mux.HandleFunc("/admin/products/create", h.createHandler)
	mux.HandleFunc("/admin/products/update", h.updateHandler)
}

// productRequest 管理端录入价格用美元字符串，入库前换算为分
type productRequest struct {
	Title       string          `json:"title"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	ImageURL    string          `json:"image_url"`
}

type productResponse struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	PriceCents  int64  `json:"price_cents"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url"`
}

func toResponse(p *domain.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Title:       p.Title,
		PriceCents:  p.PriceCents,
		Description: p.Description,
		ImageURL:    p.ImageURL,
	}
}

func (h *ProductHandler) getHandler(w http.ResponseWriter, r *http.Request) {
	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(r.Context(), "catalog-api.Get")
	defer span.End()

	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		httpapi.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	span.SetAttributes(attribute.Int64("product.id", id))

	product, err := h.service.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			httpapi.WriteError(w, http.StatusNotFound, "product not found")
			return
		}
		httpapi.WriteError(w, http.StatusInternalServerError, "failed to load product")
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, toResponse(product))
}

func (h *ProductHandler) createHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpapi.WriteError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if !httpapi.IsAdmin(r) {
		httpapi.WriteError(w, http.StatusForbidden, "admin only")
		return
	}
	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(r.Context(), "catalog-api.Create")
	defer span.End()

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	product, err := h.service.CreateProduct(ctx, req.Title, req.Price, req.Description, req.ImageURL)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrEmptyTitle), errors.Is(err, application.ErrNegativePrice):
			httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			httpapi.WriteError(w, http.StatusInternalServerError, "failed to create product")
		}
		return
	}
	httpapi.WriteJSON(w, http.StatusCreated, toResponse(product))
}

func (h *ProductHandler) updateHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httpapi.WriteError(w, http.StatusMethodNotAllowed, "POST required")
		return
	}
	if !httpapi.IsAdmin(r) {
		httpapi.WriteError(w, http.StatusForbidden, "admin only")
		return
	}
	tracer := otel.Tracer(serviceName)
	ctx, span := tracer.Start(r.Context(), "catalog-api.Update")
	defer span.End()

	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil || id <= 0 {
		httpapi.WriteError(w, http.StatusBadRequest, "invalid id")
		return
	}
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpapi.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.service.UpdateProduct(ctx, id, req.Title, req.Price, req.Description, req.ImageURL); err != nil {
		switch {
		case errors.Is(err, domain.ErrProductNotFound):
			httpapi.WriteError(w, http.StatusNotFound, "product not found")
		case errors.Is(err, application.ErrEmptyTitle), errors.Is(err, application.ErrNegativePrice):
			httpapi.WriteError(w, http.StatusBadRequest, err.Error())
		default:
			httpapi.WriteError(w, http.StatusInternalServerError, "failed to update product")
		}
		return
	}
	httpapi.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}
