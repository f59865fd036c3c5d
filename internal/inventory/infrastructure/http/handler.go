package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/bitewise/foodflow/internal/inventory/application"
	"github.com/bitewise/foodflow/internal/inventory/domain"
	"github.com/bitewise/foodflow/pkg/tracing"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("inventory-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/menu", h.menu)
	r.Post("/reserve", h.reserve)
	r.Post("/reserve/confirm", h.confirm)
	r.Post("/reserve/cancel", h.cancel)
	return r
}

type foodDto struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	Stock       int    `json:"stock"`
}

type orderItemDto struct {
	FoodID   int64 `json:"foodId"`
	Quantity int   `json:"quantity"`
}

type reserveReq struct {
	OrderID string         `json:"orderId"`
	Items   []orderItemDto `json:"items"`
}

type reservationResultDto struct {
	OrderID string         `json:"orderId"`
	Items   []orderItemDto `json:"items"`
	Status  string         `json:"status"`
}

func (h *Handler) menu(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(tracing.ExtractHTTPHeaders(r.Context(), r.Header), "Menu")
	defer span.End()

	foods, err := h.service.Menu(ctx)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	dtos := make([]foodDto, 0, len(foods))
	for _, f := range foods {
		dtos = append(dtos, foodDto{
			ID: f.ID, Name: f.Name, Price: f.Price, Description: f.Description, Stock: f.Stock,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) reserve(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(tracing.ExtractHTTPHeaders(r.Context(), r.Header), "Reserve")
	defer span.End()

	var req reserveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	items := make([]application.ReserveItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, application.ReserveItem{FoodID: it.FoodID, Quantity: it.Quantity})
	}

	result, err := h.service.Reserve(ctx, req.OrderID, items)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	dto := reservationResultDto{
		OrderID: result.OrderID,
		Items:   make([]orderItemDto, 0, len(result.Items)),
		Status:  string(result.Status),
	}
	for _, it := range result.Items {
		dto.Items = append(dto.Items, orderItemDto{FoodID: it.FoodID, Quantity: it.Quantity})
	}
	writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(tracing.ExtractHTTPHeaders(r.Context(), r.Header), "Confirm")
	defer span.End()

	orderID := r.URL.Query().Get("orderId")
	if orderID == "" {
		http.Error(w, "orderId required", http.StatusBadRequest)
		return
	}
	if err := h.service.Confirm(ctx, orderID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(tracing.ExtractHTTPHeaders(r.Context(), r.Header), "Cancel")
	defer span.End()

	orderID := r.URL.Query().Get("orderId")
	if orderID == "" {
		http.Error(w, "orderId required", http.StatusBadRequest)
		return
	}
	if err := h.service.Cancel(ctx, orderID); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrOutOfStock):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, domain.ErrReservationNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrFoodNotFound),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidOrderID):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.Error("inventory request failed", "path", r.URL.Path, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
