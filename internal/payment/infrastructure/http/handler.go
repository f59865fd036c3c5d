package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/bitewise/foodflow/internal/payment/application"
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
		tracer:  otel.Tracer("payment-http"),
	}
}

func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Post("/pay", h.pay)
	return r
}

type orderDto struct {
	OrderID     string `json:"orderId"`
	UserID      string `json:"userId"`
	Email       string `json:"email"`
	OrderStatus string `json:"orderStatus"`
	OrderValue  int64  `json:"orderValue"`
}

type paymentDto struct {
	OrderID     string `json:"orderId"`
	Amount      int64  `json:"amount"`
	PaymentType string `json:"paymentType"`
	Status      string `json:"status"`
}

func (h *Handler) pay(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(tracing.ExtractHTTPHeaders(r.Context(), r.Header), "Pay")
	defer span.End()

	var req orderDto
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if req.OrderID == "" {
		http.Error(w, "orderId required", http.StatusBadRequest)
		return
	}

	payment, err := h.service.Pay(ctx, application.OrderInfo{
		OrderID: req.OrderID,
		UserID:  req.UserID,
		Email:   req.Email,
		Status:  req.OrderStatus,
		Value:   req.OrderValue,
	})
	if err != nil {
		h.log.Error("payment failed", "order_id", req.OrderID, "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(paymentDto{
		OrderID:     payment.OrderID,
		Amount:      payment.Amount,
		PaymentType: payment.Type,
		Status:      string(payment.Status),
	})
}
