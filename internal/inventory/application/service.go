package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"github.com/bitewise/foodflow/internal/inventory/domain"
	"github.com/bitewise/foodflow/pkg/keylock"
)

// ReserveItem is one line of a reservation request.
type ReserveItem struct {
	FoodID   int64
	Quantity int
}

// ReservationResult reports the outcome of a whole-order reserve call.
type ReservationResult struct {
	OrderID string
	Items   []ReserveItem
	Status  domain.ReservationStatus
}

// Service is the stock ledger: reserve, confirm and cancel for one order's
// full item list, with a per-item lock around every counter update.
type Service struct {
	log   *slog.Logger
	repo  StockRepository
	locks keylock.Locker
}

func NewService(log *slog.Logger, repo StockRepository, locks keylock.Locker) *Service {
	return &Service{log: log, repo: repo, locks: locks}
}

// Menu returns the full food catalog.
func (s *Service) Menu(ctx context.Context) ([]domain.Food, error) {
	foods, err := s.repo.ListFood(ctx)
	if err != nil {
		return nil, fmt.Errorf("list food: %w", err)
	}
	s.log.Info("menu requested", "items", len(foods))
	return foods, nil
}

// Reserve earmarks stock for every item of the order, or nothing at all.
// Items are processed in food-id order so overlapping orders always take
// item locks in the same sequence. A second reserve call for a pair that
// already holds a reservation is a no-op replay for that item.
func (s *Service) Reserve(ctx context.Context, orderID string, items []ReserveItem) (ReservationResult, error) {
	if orderID == "" {
		return ReservationResult{}, domain.ErrInvalidOrderID
	}
	for _, it := range items {
		if it.Quantity <= 0 {
			return ReservationResult{}, fmt.Errorf("%w: food %d", domain.ErrInvalidQuantity, it.FoodID)
		}
	}

	sorted := make([]ReserveItem, len(items))
	copy(sorted, items)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].FoodID < sorted[j].FoodID })

	// Reservations created by this call, in order. On failure they are
	// undone newest-first before the error is surfaced, so a partially
	// failed order never holds stock.
	var created []domain.Reservation

	for _, it := range sorted {
		res, err := s.reserveItem(ctx, orderID, it)
		if err != nil {
			s.rollback(ctx, created)
			return ReservationResult{}, err
		}
		if res != nil {
			created = append(created, *res)
		}
	}

	s.log.Info("reservation successful", "order_id", orderID, "items", len(sorted))
	return ReservationResult{
		OrderID: orderID,
		Items:   sorted,
		Status:  domain.ReservationReserved,
	}, nil
}

// reserveItem handles one line under that item's lock. A nil reservation
// with nil error means an idempotent replay was detected.
func (s *Service) reserveItem(ctx context.Context, orderID string, it ReserveItem) (*domain.Reservation, error) {
	release, err := s.locks.Lock(ctx, foodKey(it.FoodID))
	if err != nil {
		return nil, fmt.Errorf("lock food %d: %w", it.FoodID, err)
	}
	defer release()

	existing, err := s.repo.FindReservation(ctx, orderID, it.FoodID)
	if err != nil {
		return nil, fmt.Errorf("find reservation: %w", err)
	}
	if existing != nil {
		s.log.Info("reservation replay", "order_id", orderID, "food_id", it.FoodID)
		return nil, nil
	}

	food, err := s.repo.GetFood(ctx, it.FoodID)
	if err != nil {
		return nil, fmt.Errorf("get food %d: %w", it.FoodID, err)
	}
	if food.Available() < it.Quantity {
		s.log.Warn("out of stock",
			"food_id", it.FoodID, "requested", it.Quantity, "available", food.Available())
		return nil, fmt.Errorf("%w: food %d", domain.ErrOutOfStock, it.FoodID)
	}

	res := domain.Reservation{
		ID:       uuid.NewString(),
		OrderID:  orderID,
		FoodID:   it.FoodID,
		Quantity: it.Quantity,
		Status:   domain.ReservationReserved,
	}
	if err := s.repo.CreateReservation(ctx, res); err != nil {
		return nil, fmt.Errorf("create reservation: %w", err)
	}
	s.log.Info("reserved", "order_id", orderID, "food_id", it.FoodID, "quantity", it.Quantity)
	return &res, nil
}

func (s *Service) rollback(ctx context.Context, created []domain.Reservation) {
	for i := len(created) - 1; i >= 0; i-- {
		res := created[i]
		release, err := s.locks.Lock(ctx, foodKey(res.FoodID))
		if err != nil {
			s.log.Error("rollback lock failed", "food_id", res.FoodID, "err", err)
			continue
		}
		res.Status = domain.ReservationReserved
		if err := s.repo.CancelReservation(ctx, res); err != nil {
			s.log.Error("rollback cancel failed",
				"order_id", res.OrderID, "food_id", res.FoodID, "err", err)
		}
		release()
	}
}

// Confirm commits every still-open reservation of the order: stock is
// decremented and the hold consumed. Already confirmed or cancelled records
// are skipped, making retries safe.
func (s *Service) Confirm(ctx context.Context, orderID string) error {
	return s.finalize(ctx, orderID, domain.ReservationConfirmed)
}

// Cancel releases every still-open reservation of the order without selling.
// Idempotent under retry for the same reason as Confirm.
func (s *Service) Cancel(ctx context.Context, orderID string) error {
	return s.finalize(ctx, orderID, domain.ReservationCancelled)
}

func (s *Service) finalize(ctx context.Context, orderID string, target domain.ReservationStatus) error {
	reservations, err := s.repo.ListReservationsByOrder(ctx, orderID)
	if err != nil {
		return fmt.Errorf("list reservations: %w", err)
	}
	if len(reservations) == 0 {
		return fmt.Errorf("%w: %s", domain.ErrReservationNotFound, orderID)
	}

	s.log.Info("finalizing reservations",
		"order_id", orderID, "count", len(reservations), "target", string(target))

	for _, res := range reservations {
		if err := s.finalizeItem(ctx, res, target); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) finalizeItem(ctx context.Context, res domain.Reservation, target domain.ReservationStatus) error {
	release, err := s.locks.Lock(ctx, foodKey(res.FoodID))
	if err != nil {
		return fmt.Errorf("lock food %d: %w", res.FoodID, err)
	}
	defer release()

	// Re-read under the lock: a concurrent retry may have finalized the
	// record after we listed it.
	current, err := s.repo.FindReservation(ctx, res.OrderID, res.FoodID)
	if err != nil {
		return fmt.Errorf("find reservation: %w", err)
	}
	if current == nil || current.Status != domain.ReservationReserved {
		return nil
	}

	switch target {
	case domain.ReservationConfirmed:
		if err := s.repo.ConfirmReservation(ctx, *current); err != nil {
			return fmt.Errorf("confirm reservation: %w", err)
		}
		s.log.Info("confirmed", "order_id", res.OrderID, "food_id", res.FoodID)
	case domain.ReservationCancelled:
		if err := s.repo.CancelReservation(ctx, *current); err != nil {
			return fmt.Errorf("cancel reservation: %w", err)
		}
		s.log.Info("cancelled", "order_id", res.OrderID, "food_id", res.FoodID, "released", res.Quantity)
	default:
		return errors.New("finalize: invalid target status")
	}
	return nil
}

func foodKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
