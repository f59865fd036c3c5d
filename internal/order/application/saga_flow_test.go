package application_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	invapp "github.com/bitewise/foodflow/internal/inventory/application"
	invdomain "github.com/bitewise/foodflow/internal/inventory/domain"
	orderapp "github.com/bitewise/foodflow/internal/order/application"
	orderdomain "github.com/bitewise/foodflow/internal/order/domain"
	payapp "github.com/bitewise/foodflow/internal/payment/application"
	paydomain "github.com/bitewise/foodflow/internal/payment/domain"
	"github.com/bitewise/foodflow/pkg/keylock"
)

// The saga suite wires the real order, inventory and payment services
// together with in-memory stores, so a whole order flows through reserve,
// pay, confirm and compensation exactly as it would across processes.
type SagaSuite struct {
	suite.Suite

	stock    *memStock
	orders   *memOrders
	payments *memPayments
	invSvc   *invapp.Service
	confirm  *confirmGateway
	orderSvc *orderapp.Service
}

func TestSagaSuite(t *testing.T) {
	suite.Run(t, new(SagaSuite))
}

func (s *SagaSuite) SetupTest() {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	s.stock = newMemStock(
		invdomain.Food{ID: 1, Name: "margherita", Price: 1100, Stock: 10},
		invdomain.Food{ID: 2, Name: "ramen", Price: 950, Stock: 3},
	)
	s.orders = newMemOrders()
	s.payments = newMemPayments()

	s.invSvc = invapp.NewService(log, s.stock, keylock.NewKeyedMutex())
	s.confirm = &confirmGateway{inv: s.invSvc}

	paySvc := payapp.NewService(log, s.payments, s.confirm)
	s.orderSvc = orderapp.NewService(log, s.orders,
		&inventoryGateway{inv: s.invSvc},
		&paymentGateway{pay: paySvc},
	)
}

func (s *SagaSuite) TestOrderCompleted() {
	order, err := s.orderSvc.PlaceOrder(context.Background(), orderapp.PlaceOrderRequest{
		UserID: "user-1",
		Email:  "u@example.com",
		Items:  []orderapp.RequestItem{{FoodID: 1, Quantity: 2}, {FoodID: 2, Quantity: 1}},
	})
	require.NoError(s.T(), err)
	require.Equal(s.T(), orderdomain.StatusCompleted, order.Status)
	require.Equal(s.T(), int64(2*1100+950), order.Value)

	f1 := s.stock.food(1)
	require.Equal(s.T(), 8, f1.Stock)
	require.Equal(s.T(), 0, f1.Reserved)
	f2 := s.stock.food(2)
	require.Equal(s.T(), 2, f2.Stock)
	require.Equal(s.T(), 0, f2.Reserved)

	require.Equal(s.T(), []string{paydomain.EventUserNotification}, s.payments.events)
}

func (s *SagaSuite) TestOutOfStockFailsOrderWithoutSideEffects() {
	order, err := s.orderSvc.PlaceOrder(context.Background(), orderapp.PlaceOrderRequest{
		UserID: "user-1",
		Email:  "u@example.com",
		Items:  []orderapp.RequestItem{{FoodID: 2, Quantity: 5}},
	})
	require.NoError(s.T(), err)
	require.Equal(s.T(), orderdomain.StatusReservationFailed, order.Status)

	f2 := s.stock.food(2)
	require.Equal(s.T(), 3, f2.Stock)
	require.Equal(s.T(), 0, f2.Reserved)
	require.Empty(s.T(), s.payments.saved)
}

func (s *SagaSuite) TestConfirmFailureCancelsOrderAndReleasesStock() {
	s.confirm.confirmErr = errors.New("inventory unreachable")

	order, err := s.orderSvc.PlaceOrder(context.Background(), orderapp.PlaceOrderRequest{
		UserID: "user-1",
		Email:  "u@example.com",
		Items:  []orderapp.RequestItem{{FoodID: 1, Quantity: 4}},
	})
	require.NoError(s.T(), err)
	require.Equal(s.T(), orderdomain.StatusCancelled, order.Status)

	// The compensating cancel released the hold without selling.
	f1 := s.stock.food(1)
	require.Equal(s.T(), 10, f1.Stock)
	require.Equal(s.T(), 0, f1.Reserved)

	res := s.stock.reservation(order.ID, 1)
	require.NotNil(s.T(), res)
	require.Equal(s.T(), invdomain.ReservationCancelled, res.Status)

	require.Empty(s.T(), s.payments.events)
}

func (s *SagaSuite) TestPartialStockRejectsWholeOrder() {
	order, err := s.orderSvc.PlaceOrder(context.Background(), orderapp.PlaceOrderRequest{
		UserID: "user-1",
		Email:  "u@example.com",
		Items:  []orderapp.RequestItem{{FoodID: 1, Quantity: 2}, {FoodID: 2, Quantity: 4}},
	})
	require.NoError(s.T(), err)
	require.Equal(s.T(), orderdomain.StatusReservationFailed, order.Status)

	// The in-stock line was rolled back together with the rejected one.
	f1 := s.stock.food(1)
	require.Equal(s.T(), 10, f1.Stock)
	require.Equal(s.T(), 0, f1.Reserved)
}

// --- gateways bridging the service boundaries in process ---

type inventoryGateway struct {
	inv *invapp.Service
}

func (g *inventoryGateway) Menu(ctx context.Context) ([]orderapp.MenuItem, error) {
	foods, err := g.inv.Menu(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]orderapp.MenuItem, 0, len(foods))
	for _, f := range foods {
		items = append(items, orderapp.MenuItem{
			ID: f.ID, Name: f.Name, Price: f.Price, Description: f.Description, Stock: f.Stock,
		})
	}
	return items, nil
}

func (g *inventoryGateway) Reserve(ctx context.Context, o orderdomain.Order) error {
	items := make([]invapp.ReserveItem, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, invapp.ReserveItem{FoodID: it.FoodID, Quantity: it.Quantity})
	}
	_, err := g.inv.Reserve(ctx, o.ID, items)
	if errors.Is(err, invdomain.ErrOutOfStock) {
		return orderapp.ErrStockUnavailable
	}
	return err
}

type paymentGateway struct {
	pay *payapp.Service
}

func (g *paymentGateway) Pay(ctx context.Context, o orderdomain.Order) (orderapp.PaymentResult, error) {
	p, err := g.pay.Pay(ctx, payapp.OrderInfo{
		OrderID: o.ID,
		UserID:  o.UserID,
		Email:   o.Email,
		Status:  string(o.Status),
		Value:   o.Value,
	})
	if err != nil {
		return orderapp.PaymentResult{}, err
	}
	return orderapp.PaymentResult{
		OrderID: p.OrderID,
		Amount:  p.Amount,
		Type:    p.Type,
		Status:  string(p.Status),
	}, nil
}

type confirmGateway struct {
	inv        *invapp.Service
	confirmErr error
}

func (g *confirmGateway) Confirm(ctx context.Context, orderID string) error {
	if g.confirmErr != nil {
		return g.confirmErr
	}
	return g.inv.Confirm(ctx, orderID)
}

func (g *confirmGateway) Cancel(ctx context.Context, orderID string) error {
	return g.inv.Cancel(ctx, orderID)
}

// --- in-memory stores ---

type resKey struct {
	orderID string
	foodID  int64
}

type memStock struct {
	mu           sync.Mutex
	foods        map[int64]invdomain.Food
	reservations map[resKey]invdomain.Reservation
}

func newMemStock(foods ...invdomain.Food) *memStock {
	m := &memStock{
		foods:        make(map[int64]invdomain.Food),
		reservations: make(map[resKey]invdomain.Reservation),
	}
	for _, f := range foods {
		m.foods[f.ID] = f
	}
	return m
}

func (m *memStock) food(id int64) invdomain.Food {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.foods[id]
}

func (m *memStock) reservation(orderID string, foodID int64) *invdomain.Reservation {
	m.mu.Lock()
	defer m.mu.Unlock()
	if res, ok := m.reservations[resKey{orderID, foodID}]; ok {
		return &res
	}
	return nil
}

func (m *memStock) ListFood(ctx context.Context) ([]invdomain.Food, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]invdomain.Food, 0, len(m.foods))
	for _, f := range m.foods {
		out = append(out, f)
	}
	return out, nil
}

func (m *memStock) GetFood(ctx context.Context, foodID int64) (invdomain.Food, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.foods[foodID]
	if !ok {
		return invdomain.Food{}, invdomain.ErrFoodNotFound
	}
	return f, nil
}

func (m *memStock) FindReservation(ctx context.Context, orderID string, foodID int64) (*invdomain.Reservation, error) {
	return m.reservation(orderID, foodID), nil
}

func (m *memStock) ListReservationsByOrder(ctx context.Context, orderID string) ([]invdomain.Reservation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []invdomain.Reservation
	for k, res := range m.reservations {
		if k.orderID == orderID {
			out = append(out, res)
		}
	}
	return out, nil
}

func (m *memStock) CreateReservation(ctx context.Context, res invdomain.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := m.foods[res.FoodID]
	f.Reserved += res.Quantity
	m.foods[res.FoodID] = f
	m.reservations[resKey{res.OrderID, res.FoodID}] = res
	return nil
}

func (m *memStock) ConfirmReservation(ctx context.Context, res invdomain.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := m.foods[res.FoodID]
	f.Stock -= res.Quantity
	f.Reserved -= res.Quantity
	m.foods[res.FoodID] = f
	res.Status = invdomain.ReservationConfirmed
	m.reservations[resKey{res.OrderID, res.FoodID}] = res
	return nil
}

func (m *memStock) CancelReservation(ctx context.Context, res invdomain.Reservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := m.foods[res.FoodID]
	f.Reserved -= res.Quantity
	m.foods[res.FoodID] = f
	res.Status = invdomain.ReservationCancelled
	m.reservations[resKey{res.OrderID, res.FoodID}] = res
	return nil
}

type memOrders struct {
	mu     sync.Mutex
	orders map[string]orderdomain.Order
}

func newMemOrders() *memOrders {
	return &memOrders{orders: make(map[string]orderdomain.Order)}
}

func (m *memOrders) Create(ctx context.Context, o orderdomain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[o.ID] = o
	return nil
}

func (m *memOrders) Get(ctx context.Context, id string) (orderdomain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return orderdomain.Order{}, orderdomain.ErrOrderNotFound
	}
	return o, nil
}

func (m *memOrders) UpdateStatus(ctx context.Context, id string, status orderdomain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := m.orders[id]
	o.Status = status
	m.orders[id] = o
	return nil
}

type memPayments struct {
	mu     sync.Mutex
	saved  []paydomain.Payment
	events []string
}

func newMemPayments() *memPayments {
	return &memPayments{}
}

func (m *memPayments) Save(ctx context.Context, p paydomain.Payment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, p)
	return nil
}

func (m *memPayments) UpdateStatus(ctx context.Context, id string, status paydomain.Status) error {
	return nil
}

func (m *memPayments) UpdateStatusWithOutbox(ctx context.Context, p paydomain.Payment, eventType string, payload []byte, traceparent string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, eventType)
	return nil
}
