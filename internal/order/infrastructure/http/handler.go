package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/bitewise/foodflow/internal/order/application"
	"github.com/bitewise/foodflow/internal/order/domain"
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
		tracer:  otel.Tracer("order-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Get("/menu", h.menu)
	r.Post("/order-confirmation", h.placeOrder)
	r.Get("/orders/{id}", h.getOrder)
	return r
}

type placeOrderReq struct {
	UserID string              `json:"userId"`
	Email  string              `json:"email"`
	Items  []placeOrderItemDto `json:"items"`
}

type placeOrderItemDto struct {
	FoodID   int64 `json:"foodId"`
	Quantity int   `json:"quantity"`
}

type orderItemDto struct {
	FoodID   int64 `json:"foodId"`
	Quantity int   `json:"quantity"`
	Price    int64 `json:"price"`
}

type orderDto struct {
	OrderID string         `json:"orderId"`
	UserID  string         `json:"userId"`
	Email   string         `json:"email"`
	Items   []orderItemDto `json:"items"`
	Value   int64          `json:"value"`
	Status  string         `json:"status"`
}

type menuItemDto struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Price       int64  `json:"price"`
	Description string `json:"description"`
	Stock       int    `json:"stock"`
}

func (h *Handler) menu(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(tracing.ExtractHTTPHeaders(r.Context(), r.Header), "Menu")
	defer span.End()

	menu, err := h.service.Menu(ctx)
	if err != nil {
		h.log.Error("menu fetch failed", "err", err)
		http.Error(w, "menu unavailable", http.StatusBadGateway)
		return
	}
	dtos := make([]menuItemDto, 0, len(menu))
	for _, m := range menu {
		dtos = append(dtos, menuItemDto{
			ID: m.ID, Name: m.Name, Price: m.Price, Description: m.Description, Stock: m.Stock,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(tracing.ExtractHTTPHeaders(r.Context(), r.Header), "PlaceOrder")
	defer span.End()

	var req placeOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	items := make([]application.RequestItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, application.RequestItem{FoodID: it.FoodID, Quantity: it.Quantity})
	}

	order, err := h.service.PlaceOrder(ctx, application.PlaceOrderRequest{
		UserID: req.UserID,
		Email:  req.Email,
		Items:  items,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, toDto(order))
	case errors.Is(err, application.ErrInvalidOrder):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.log.Error("order processing failed", "order_id", order.ID, "err", err)
		http.Error(w, "order processing failed", http.StatusInternalServerError)
	}
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(tracing.ExtractHTTPHeaders(r.Context(), r.Header), "GetOrder")
	defer span.End()

	order, err := h.service.GetOrder(ctx, chi.URLParam(r, "id"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, toDto(order))
	case errors.Is(err, domain.ErrOrderNotFound):
		http.Error(w, "order not found", http.StatusNotFound)
	default:
		h.log.Error("order lookup failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toDto(o domain.Order) orderDto {
	dto := orderDto{
		OrderID: o.ID,
		UserID:  o.UserID,
		Email:   o.Email,
		Items:   make([]orderItemDto, 0, len(o.Items)),
		Value:   o.Value,
		Status:  string(o.Status),
	}
	for _, item := range o.Items {
		dto.Items = append(dto.Items, orderItemDto{FoodID: item.FoodID, Quantity: item.Quantity, Price: item.Price})
	}
	return dto
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
