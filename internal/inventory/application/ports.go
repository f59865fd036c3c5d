package application

import (
	"context"

	"github.com/bitewise/foodflow/internal/inventory/domain"
)

// StockRepository persists food counters and reservation records. Each
// mutating call is atomic for its single item; cross-item consistency is the
// service's job.
type StockRepository interface {
	ListFood(ctx context.Context) ([]domain.Food, error)
	GetFood(ctx context.Context, foodID int64) (domain.Food, error)

	// FindReservation returns nil when no reservation exists for the pair.
	FindReservation(ctx context.Context, orderID string, foodID int64) (*domain.Reservation, error)
	ListReservationsByOrder(ctx context.Context, orderID string) ([]domain.Reservation, error)

	// CreateReservation inserts the record and adds its quantity to the
	// item's reserved counter in one transaction.
	CreateReservation(ctx context.Context, res domain.Reservation) error
	// ConfirmReservation commits the sale: stock and reserved both drop by
	// the reservation's quantity and the record becomes CONFIRMED.
	ConfirmReservation(ctx context.Context, res domain.Reservation) error
	// CancelReservation releases the hold: reserved drops by the quantity,
	// stock is unchanged and the record becomes CANCELLED.
	CancelReservation(ctx context.Context, res domain.Reservation) error
}
