package application

import (
	"context"

	"github.com/bitewise/foodflow/internal/payment/domain"
)

type PaymentRepository interface {
	Save(ctx context.Context, p domain.Payment) error
	UpdateStatus(ctx context.Context, id string, status domain.Status) error
	// UpdateStatusWithOutbox records the terminal status and the outgoing
	// notification event in one transaction.
	UpdateStatusWithOutbox(ctx context.Context, p domain.Payment, eventType string, payload []byte, traceparent string) error
}

// InventoryClient is the stock ledger seen from the payment side.
type InventoryClient interface {
	Confirm(ctx context.Context, orderID string) error
	Cancel(ctx context.Context, orderID string) error
}
