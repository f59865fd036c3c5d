package domain

// Food is one sellable menu item. Stock counts confirmed, sellable units;
// Reserved counts units earmarked by open reservations. The pair only moves
// under the per-item lock and always satisfies 0 <= Reserved <= Stock.
type Food struct {
	ID          int64
	Name        string
	Price       int64
	Description string
	Stock       int
	Reserved    int
}

// Available is the quantity offerable to new reservations.
func (f Food) Available() int {
	return f.Stock - f.Reserved
}

type ReservationStatus string

const (
	ReservationReserved  ReservationStatus = "RESERVED"
	ReservationConfirmed ReservationStatus = "CONFIRMED"
	ReservationCancelled ReservationStatus = "CANCELLED"
)

// Reservation earmarks a quantity of one food item against one order.
// There is at most one reservation per (OrderID, FoodID); transitions out of
// RESERVED are one-way.
type Reservation struct {
	ID       string
	OrderID  string
	FoodID   int64
	Quantity int
	Status   ReservationStatus
}
