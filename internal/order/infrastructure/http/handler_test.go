package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bitewise/foodflow/internal/order/application"
	"github.com/bitewise/foodflow/internal/order/domain"
)

type stubOrderRepo struct {
	orders map[string]domain.Order
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{orders: make(map[string]domain.Order)}
}

func (r *stubOrderRepo) Create(ctx context.Context, o domain.Order) error {
	r.orders[o.ID] = o
	return nil
}

func (r *stubOrderRepo) Get(ctx context.Context, id string) (domain.Order, error) {
	o, ok := r.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return o, nil
}

func (r *stubOrderRepo) UpdateStatus(ctx context.Context, id string, status domain.OrderStatus) error {
	o := r.orders[id]
	o.Status = status
	r.orders[id] = o
	return nil
}

type stubInventory struct {
	menu       []application.MenuItem
	reserveErr error
}

func (c *stubInventory) Menu(ctx context.Context) ([]application.MenuItem, error) {
	return c.menu, nil
}

func (c *stubInventory) Reserve(ctx context.Context, o domain.Order) error {
	return c.reserveErr
}

type stubPayment struct {
	status string
}

func (c *stubPayment) Pay(ctx context.Context, o domain.Order) (application.PaymentResult, error) {
	return application.PaymentResult{
		OrderID: o.ID,
		Amount:  o.Value,
		Type:    "UPI",
		Status:  c.status,
	}, nil
}

func newTestHandler(repo *stubOrderRepo, inv *stubInventory, pay *stubPayment) http.Handler {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := application.NewService(log, repo, inv, pay)
	return NewHandler(log, svc).Routes()
}

func defaultMenu() []application.MenuItem {
	return []application.MenuItem{
		{ID: 1, Name: "margherita", Price: 1100, Stock: 10},
		{ID: 2, Name: "ramen", Price: 950, Stock: 4},
	}
}

func TestPlaceOrder_Completed(t *testing.T) {
	repo := newStubOrderRepo()
	h := newTestHandler(repo, &stubInventory{menu: defaultMenu()}, &stubPayment{status: application.PaymentComplete})

	body := `{"userId":"user-1","email":"u@example.com","items":[{"foodId":1,"quantity":2}]}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/order-confirmation", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var dto orderDto
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if dto.Status != string(domain.StatusCompleted) {
		t.Fatalf("expected COMPLETED, got %s", dto.Status)
	}
	if dto.Value != 2200 {
		t.Fatalf("expected value 2200, got %d", dto.Value)
	}
}

func TestPlaceOrder_OutOfStock(t *testing.T) {
	repo := newStubOrderRepo()
	inv := &stubInventory{menu: defaultMenu(), reserveErr: application.ErrStockUnavailable}
	h := newTestHandler(repo, inv, &stubPayment{status: application.PaymentComplete})

	body := `{"userId":"user-1","email":"u@example.com","items":[{"foodId":2,"quantity":9}]}`
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/order-confirmation", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("rejected reservation is a business outcome, expected 200, got %d", rec.Code)
	}
	var dto orderDto
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if dto.Status != string(domain.StatusReservationFailed) {
		t.Fatalf("expected RESERVATION_FAILED, got %s", dto.Status)
	}
}

func TestPlaceOrder_Validation(t *testing.T) {
	h := newTestHandler(newStubOrderRepo(), &stubInventory{menu: defaultMenu()}, &stubPayment{status: application.PaymentComplete})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"userId":`},
		{"missing user", `{"email":"u@example.com","items":[{"foodId":1,"quantity":1}]}`},
		{"no items", `{"userId":"user-1","email":"u@example.com","items":[]}`},
		{"zero quantity", `{"userId":"user-1","email":"u@example.com","items":[{"foodId":1,"quantity":0}]}`},
		{"unknown food", `{"userId":"user-1","email":"u@example.com","items":[{"foodId":99,"quantity":1}]}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/order-confirmation", strings.NewReader(tc.body)))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}

func TestGetOrder(t *testing.T) {
	repo := newStubOrderRepo()
	h := newTestHandler(repo, &stubInventory{menu: defaultMenu()}, &stubPayment{status: application.PaymentComplete})

	order := domain.NewOrder("user-1", "u@example.com", []domain.OrderItem{{FoodID: 1, Quantity: 1, Price: 1100}})
	repo.orders[order.ID] = order

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/"+order.ID, nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var dto orderDto
	if err := json.Unmarshal(rec.Body.Bytes(), &dto); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if dto.OrderID != order.ID {
		t.Fatalf("expected order %s, got %s", order.ID, dto.OrderID)
	}
}

func TestGetOrder_NotFound(t *testing.T) {
	h := newTestHandler(newStubOrderRepo(), &stubInventory{menu: defaultMenu()}, &stubPayment{status: application.PaymentComplete})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestMenuProxy(t *testing.T) {
	h := newTestHandler(newStubOrderRepo(), &stubInventory{menu: defaultMenu()}, &stubPayment{status: application.PaymentComplete})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/menu", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var dtos []menuItemDto
	if err := json.Unmarshal(rec.Body.Bytes(), &dtos); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(dtos) != 2 {
		t.Fatalf("expected 2 menu items, got %d", len(dtos))
	}
}
