package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/bitewise/foodflow/internal/notification/application"
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
		tracer:  otel.Tracer("notification-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/notify", h.notify)
	return r
}

type notifyReq struct {
	OrderID     string `json:"orderId"`
	Email       string `json:"email"`
	OrderStatus string `json:"orderStatus"`
	Amount      int64  `json:"amount"`
}

type notifyResp struct {
	Success bool `json:"success"`
}

func (h *Handler) notify(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(tracing.ExtractHTTPHeaders(r.Context(), r.Header), "Notify")
	defer span.End()

	var req notifyReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}

	ok := h.service.Notify(ctx, application.Notification{
		OrderID:     req.OrderID,
		Email:       req.Email,
		OrderStatus: req.OrderStatus,
		Amount:      req.Amount,
	})

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(notifyResp{Success: ok})
}
