package application

import (
	"context"

	"github.com/bitewise/foodflow/internal/order/domain"
)

type OrderRepository interface {
	Create(ctx context.Context, o domain.Order) error
	Get(ctx context.Context, id string) (domain.Order, error)
	UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error
}

// MenuItem is a catalog entry as served by the inventory service.
type MenuItem struct {
	ID          int64
	Name        string
	Price       int64
	Description string
	Stock       int
}

type InventoryClient interface {
	Menu(ctx context.Context) ([]MenuItem, error)
	// Reserve earmarks stock for the whole order. ErrStockUnavailable means
	// a business rejection; any other error is a transport or processing
	// failure.
	Reserve(ctx context.Context, o domain.Order) error
}

// PaymentResult is the payment service's reply to a charge attempt.
type PaymentResult struct {
	OrderID string
	Amount  int64
	Type    string
	Status  string
}

const (
	PaymentComplete     = "PAYMENT_COMPLETE"
	PaymentCancelled    = "PAYMENT_CANCELLED"
	OrderCreationFailed = "ORDER_CREATION_FAILED"
)

type PaymentClient interface {
	Pay(ctx context.Context, o domain.Order) (PaymentResult, error)
}
