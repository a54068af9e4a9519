// model/order.go
package model

import "time"

type OrderType string

const (
	OrderBuy  OrderType = "BUY"
	OrderRent OrderType = "RENT"
)

type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusConfirmed OrderStatus = "CONFIRMED"
	StatusCompleted OrderStatus = "COMPLETED"
	StatusCancelled OrderStatus = "CANCELLED"
	StatusReturned  OrderStatus = "RETURNED"
)

func ValidOrderType(t OrderType) bool {
	return t == OrderBuy || t == OrderRent
}

func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled, StatusReturned:
		return true
	}
	return false
}

// transitions is the full lifecycle table. COMPLETED is reachable for BUY
// orders only and RETURNED for RENT orders only; that extra check lives in
// CanTransition.
var transitions = map[OrderStatus][]OrderStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusReturned, StatusCancelled},
}

// CanTransition reports whether an order of the given type may move from one
// status to another. Terminal statuses have no outgoing edges.
func CanTransition(typ OrderType, from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next != to {
			continue
		}
		switch to {
		case StatusCompleted:
			return typ == OrderBuy
		case StatusReturned:
			return typ == OrderRent
		}
		return true
	}
	return false
}

type Order struct {
	ID        int64       `json:"id"`
	UserID    int64       `json:"user_id"`
	BookID    int64       `json:"book_id"`
	OrderType OrderType   `json:"order_type"`
	Status    OrderStatus `json:"status"`

	// Book snapshot taken at placement.
	BookTitle  string  `json:"book_title"`
	BookAuthor string  `json:"book_author"`
	BookISBN   *string `json:"book_isbn,omitempty"`

	// Pricing snapshot taken at placement, never recomputed.
	UnitPrice  float64 `json:"unit_price"`
	Quantity   int64   `json:"quantity"`
	TotalPrice float64 `json:"total_price"`

	// Rental window, set at placement for RENT orders only.
	RentalDays  *int64     `json:"rental_days,omitempty"`
	RentalStart *time.Time `json:"rental_start,omitempty"`
	RentalEnd   *time.Time `json:"rental_end,omitempty"`
	ReturnedAt  *time.Time `json:"returned_at,omitempty"`

	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Overdue reports whether the order is a confirmed rental whose window has
// passed as of now.
func (o *Order) Overdue(now time.Time) bool {
	return o.OrderType == OrderRent &&
		o.Status == StatusConfirmed &&
		o.RentalEnd != nil && o.RentalEnd.Before(now)
}
