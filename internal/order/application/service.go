package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bitewise/foodflow/internal/order/domain"
)

var (
	ErrStockUnavailable = errors.New("stock unavailable")
	ErrInvalidOrder     = errors.New("invalid order")
	ErrProcessing       = errors.New("order processing failed")
)

// Service drives the order saga: resolve prices, persist CREATED, reserve
// stock, charge payment, and persist every transition before the next
// network call so a crash leaves the order in its last recorded state.
type Service struct {
	log       *slog.Logger
	repo      OrderRepository
	inventory InventoryClient
	payment   PaymentClient
}

func NewService(log *slog.Logger, repo OrderRepository, inventory InventoryClient, payment PaymentClient) *Service {
	return &Service{log: log, repo: repo, inventory: inventory, payment: payment}
}

// PlaceOrderRequest is the storefront's order submission.
type PlaceOrderRequest struct {
	UserID string
	Email  string
	Items  []RequestItem
}

type RequestItem struct {
	FoodID   int64
	Quantity int
}

// Menu proxies the inventory catalog for the storefront.
func (s *Service) Menu(ctx context.Context) ([]MenuItem, error) {
	menu, err := s.inventory.Menu(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch menu: %w", err)
	}
	return menu, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	return s.repo.Get(ctx, id)
}

// PlaceOrder runs the saga to a terminal state. A rejected reservation or a
// declined payment is a business outcome, not an error: the final order is
// returned with a nil error. Transport and unexpected failures mark the
// order FAILED and surface ErrProcessing.
func (s *Service) PlaceOrder(ctx context.Context, req PlaceOrderRequest) (domain.Order, error) {
	items, err := s.resolveItems(ctx, req)
	if err != nil {
		return domain.Order{}, err
	}

	order := domain.NewOrder(req.UserID, req.Email, items)
	if err := s.repo.Create(ctx, order); err != nil {
		return domain.Order{}, fmt.Errorf("persist order: %w", err)
	}
	s.log.Info("order created", "order_id", order.ID, "user_id", order.UserID, "value", order.Value)

	if err := s.inventory.Reserve(ctx, order); err != nil {
		if errors.Is(err, ErrStockUnavailable) {
			s.log.Warn("reservation rejected", "order_id", order.ID)
			s.finalize(ctx, &order, domain.StatusReservationFailed)
			return order, nil
		}
		s.log.Error("reservation call failed", "order_id", order.ID, "err", err)
		s.finalize(ctx, &order, domain.StatusFailed)
		return order, fmt.Errorf("%w: reserve: %v", ErrProcessing, err)
	}

	if err := s.transition(ctx, &order, domain.StatusReserved); err != nil {
		return order, err
	}

	result, err := s.payment.Pay(ctx, order)
	if err != nil {
		s.log.Error("payment call failed", "order_id", order.ID, "err", err)
		s.finalize(ctx, &order, domain.StatusFailed)
		return order, fmt.Errorf("%w: pay: %v", ErrProcessing, err)
	}

	switch result.Status {
	case PaymentComplete:
		if err := s.transition(ctx, &order, domain.StatusCompleted); err != nil {
			return order, err
		}
		s.log.Info("order completed", "order_id", order.ID)
	case PaymentCancelled:
		if err := s.transition(ctx, &order, domain.StatusCancelled); err != nil {
			return order, err
		}
		s.log.Info("order cancelled", "order_id", order.ID)
	default:
		s.log.Error("unexpected payment status", "order_id", order.ID, "status", result.Status)
		s.finalize(ctx, &order, domain.StatusFailed)
		return order, fmt.Errorf("%w: payment status %s", ErrProcessing, result.Status)
	}

	return order, nil
}

// resolveItems snapshots unit prices from the current menu. It runs before
// anything is persisted, so rejections here have no side effects.
func (s *Service) resolveItems(ctx context.Context, req PlaceOrderRequest) ([]domain.OrderItem, error) {
	if req.UserID == "" || len(req.Items) == 0 {
		return nil, ErrInvalidOrder
	}
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity for food %d", ErrInvalidOrder, it.FoodID)
		}
	}

	menu, err := s.inventory.Menu(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch menu: %v", ErrProcessing, err)
	}
	byID := make(map[int64]MenuItem, len(menu))
	for _, m := range menu {
		byID[m.ID] = m
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		m, ok := byID[it.FoodID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown food %d", ErrInvalidOrder, it.FoodID)
		}
		items = append(items, domain.OrderItem{FoodID: it.FoodID, Quantity: it.Quantity, Price: m.Price})
	}
	return items, nil
}

func (s *Service) transition(ctx context.Context, order *domain.Order, next domain.OrderStatus) error {
	if err := order.TransitionTo(next); err != nil {
		return fmt.Errorf("%w: %v", ErrProcessing, err)
	}
	if err := s.repo.UpdateStatus(ctx, order.ID, next); err != nil {
		return fmt.Errorf("%w: persist status %s: %v", ErrProcessing, next, err)
	}
	return nil
}

// finalize records a terminal failure state; a persistence error here is
// logged but not returned since the caller is already on an error path.
func (s *Service) finalize(ctx context.Context, order *domain.Order, status domain.OrderStatus) {
	if err := order.TransitionTo(status); err != nil {
		s.log.Error("illegal finalize", "order_id", order.ID, "err", err)
		return
	}
	if err := s.repo.UpdateStatus(ctx, order.ID, status); err != nil {
		s.log.Error("persist final status failed", "order_id", order.ID, "status", string(status), "err", err)
	}
}
