package application

import (
	"context"
	"log/slog"
)

// Notification is a user-facing order outcome message. It arrives either
// over Kafka from the payment service's outbox or via the HTTP endpoint.
type Notification struct {
	OrderID     string
	Email       string
	OrderStatus string
	Amount      int64
}

// Service delivers order outcome notifications. Delivery is simulated with a
// log line; the channel is fire-and-forget end to end.
type Service struct {
	log *slog.Logger
}

func NewService(log *slog.Logger) *Service {
	return &Service{log: log}
}

// Notify reports whether the notification was accepted. Only terminal order
// outcomes are deliverable; anything else is dropped.
func (s *Service) Notify(ctx context.Context, n Notification) bool {
	switch n.OrderStatus {
	case "COMPLETED":
		s.log.Info("order completed, notifying user",
			"order_id", n.OrderID, "email", n.Email, "amount", n.Amount)
		return true
	case "CANCELLED":
		s.log.Info("order cancelled, notifying user",
			"order_id", n.OrderID, "email", n.Email, "amount", n.Amount)
		return true
	default:
		s.log.Warn("undeliverable notification",
			"order_id", n.OrderID, "status", n.OrderStatus)
		return false
	}
}
