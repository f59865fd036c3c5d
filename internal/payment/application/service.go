package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bitewise/foodflow/internal/payment/domain"
	"github.com/bitewise/foodflow/pkg/tracing"
)

const defaultConfirmTimeout = 10 * time.Second

// OrderInfo is the order as presented by the orchestrator. The payment
// service only reads it.
type OrderInfo struct {
	OrderID string
	UserID  string
	Email   string
	Status  string
	Value   int64
}

// Service charges an order and drives the confirm-or-compensate step of the
// saga against the stock ledger.
type Service struct {
	log            *slog.Logger
	repo           PaymentRepository
	inventory      InventoryClient
	confirmTimeout time.Duration
}

func NewService(log *slog.Logger, repo PaymentRepository, inventory InventoryClient, opts ...Option) *Service {
	s := &Service{
		log:            log,
		repo:           repo,
		inventory:      inventory,
		confirmTimeout: defaultConfirmTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type Option func(*Service)

// WithConfirmTimeout overrides the bound on confirm/cancel calls.
func WithConfirmTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.confirmTimeout = d
		}
	}
}

// Pay processes the payment for a reserved order. The charge itself is
// simulated and always succeeds; the outcome is decided by the inventory
// confirmation. A failed confirmation triggers the compensating cancel and
// yields PAYMENT_CANCELLED rather than an error.
func (s *Service) Pay(ctx context.Context, order OrderInfo) (domain.Payment, error) {
	s.log.Info("processing payment", "order_id", order.OrderID)

	if order.Status != "RESERVED" {
		s.log.Info("order not in RESERVED state", "order_id", order.OrderID, "status", order.Status)
		return domain.Payment{
			OrderID: order.OrderID,
			Amount:  order.Value,
			Status:  domain.StatusOrderCreationFailed,
		}, nil
	}

	now := time.Now().UTC()
	payment := domain.Payment{
		ID:        uuid.NewString(),
		OrderID:   order.OrderID,
		Amount:    order.Value,
		Type:      domain.TypeUPI,
		Status:    domain.StatusComplete,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Save(ctx, payment); err != nil {
		return domain.Payment{}, fmt.Errorf("persist payment: %w", err)
	}
	s.log.Info("payment record created", "payment_id", payment.ID, "order_id", order.OrderID)

	confirmCtx, cancel := context.WithTimeout(ctx, s.confirmTimeout)
	defer cancel()
	if err := s.inventory.Confirm(confirmCtx, order.OrderID); err != nil {
		return s.compensate(ctx, payment, order, err)
	}

	payment.Status = domain.StatusPaymentComplete
	payment.UpdatedAt = time.Now().UTC()
	if err := s.notifyLater(ctx, payment, order); err != nil {
		return domain.Payment{}, err
	}
	s.log.Info("payment complete", "order_id", order.OrderID)
	return payment, nil
}

// notifyLater persists the terminal payment status together with the user
// notification event; the outbox relay delivers it after we return, so
// notification failure can never fail the payment.
func (s *Service) notifyLater(ctx context.Context, payment domain.Payment, order OrderInfo) error {
	event := domain.UserNotification{
		OrderID:     order.OrderID,
		Email:       order.Email,
		OrderStatus: "COMPLETED",
		Amount:      payment.Amount,
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}
	if err := s.repo.UpdateStatusWithOutbox(ctx, payment, domain.EventUserNotification, payload, tracing.Traceparent(ctx)); err != nil {
		return fmt.Errorf("persist payment status: %w", err)
	}
	return nil
}

// compensate is the saga's only rollback path: a failed or timed-out
// confirmation cancels the reservation and reports PAYMENT_CANCELLED.
func (s *Service) compensate(ctx context.Context, payment domain.Payment, order OrderInfo, cause error) (domain.Payment, error) {
	s.log.Error("inventory confirmation failed", "order_id", order.OrderID, "err", cause)

	payment.Status = domain.StatusPaymentCancelled
	payment.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateStatus(ctx, payment.ID, domain.StatusPaymentCancelled); err != nil {
		return domain.Payment{}, fmt.Errorf("persist cancelled payment: %w", err)
	}

	cancelCtx, cancel := context.WithTimeout(ctx, s.confirmTimeout)
	defer cancel()
	if err := s.inventory.Cancel(cancelCtx, order.OrderID); err != nil {
		// Stock stays over-reserved until reconciliation; the payment
		// outcome is already decided.
		s.log.Error("compensating cancel failed", "order_id", order.OrderID, "err", err)
	} else {
		s.log.Info("reservation cancelled", "order_id", order.OrderID)
	}
	return payment, nil
}
