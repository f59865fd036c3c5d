package domain

import "time"

type Status string

const (
	// StatusComplete is the initial record: the (simulated) charge itself
	// succeeded but inventory confirmation is still pending.
	StatusComplete            Status = "COMPLETE"
	StatusPaymentComplete     Status = "PAYMENT_COMPLETE"
	StatusPaymentCancelled    Status = "PAYMENT_CANCELLED"
	StatusOrderCreationFailed Status = "ORDER_CREATION_FAILED"
)

const TypeUPI = "UPI"

type Payment struct {
	ID        string
	OrderID   string
	Amount    int64
	Type      string
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}
