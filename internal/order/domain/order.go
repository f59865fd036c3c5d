package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type OrderStatus string

const (
	StatusCreated           OrderStatus = "CREATED"
	StatusReserved          OrderStatus = "RESERVED"
	StatusCompleted         OrderStatus = "COMPLETED"
	StatusCancelled         OrderStatus = "CANCELLED"
	StatusReservationFailed OrderStatus = "RESERVATION_FAILED"
	StatusFailed            OrderStatus = "FAILED"
)

// transitions is the saga's state graph. CREATED is initial; everything
// except RESERVED is terminal.
var transitions = map[OrderStatus][]OrderStatus{
	StatusCreated:  {StatusReserved, StatusReservationFailed, StatusFailed},
	StatusReserved: {StatusCompleted, StatusCancelled, StatusFailed},
}

func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return len(transitions[s]) == 0
}

type OrderItem struct {
	FoodID   int64
	Quantity int
	// Price is the unit price snapshotted from the menu at order time.
	Price int64
}

type Order struct {
	ID        string
	UserID    string
	Email     string
	Items     []OrderItem
	Value     int64
	Status    OrderStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewOrder snapshots the order value from its item prices; Value is never
// recomputed from live catalog prices afterwards.
func NewOrder(userID, email string, items []OrderItem) Order {
	var total int64
	for _, item := range items {
		total += int64(item.Quantity) * item.Price
	}
	now := time.Now().UTC()
	return Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		Email:     email,
		Items:     items,
		Value:     total,
		Status:    StatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TransitionTo moves the order along the saga graph or reports the illegal
// edge.
func (o *Order) TransitionTo(next OrderStatus) error {
	if !CanTransition(o.Status, next) {
		return fmt.Errorf("illegal order transition %s -> %s", o.Status, next)
	}
	o.Status = next
	o.UpdatedAt = time.Now().UTC()
	return nil
}
