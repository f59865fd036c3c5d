package domain

// UserNotification is the event emitted through the outbox once a payment
// reaches its terminal status; the notification service consumes it.
type UserNotification struct {
	OrderID     string `json:"orderId"`
	Email       string `json:"email"`
	OrderStatus string `json:"orderStatus"`
	Amount      int64  `json:"amount"`
}

const EventUserNotification = "UserNotification"
