package domain

import "errors"

var (
	ErrOutOfStock          = errors.New("out of stock")
	ErrFoodNotFound        = errors.New("food not found")
	ErrReservationNotFound = errors.New("no reservations found for order")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrInvalidOrderID      = errors.New("order id required")
)
