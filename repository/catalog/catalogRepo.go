package catalogrepo

import (
	"context"
	"errors"
)

// Book is the catalog's view of a title. RentPrice is nil for titles that are
// not offered for rental.
type Book struct {
	ID            int64    `json:"id"`
	Title         string   `json:"title"`
	Author        string   `json:"author"`
	ISBN          *string  `json:"isbn"`
	Price         float64  `json:"price"`
	RentPrice     *float64 `json:"rent_price"`
	Available     bool     `json:"available"`
	StockQuantity int64    `json:"stock_quantity"`
}

var (
	ErrNotFound          = errors.New("book not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnavailable       = errors.New("catalog service unavailable")
)

type Repo interface {
	GetBook(ctx context.Context, bookID int64) (*Book, error)

	// AdjustStock applies delta to the book's stock. Negative deltas are an
	// atomic decrement-or-fail on the catalog side: the call reports
	// ErrInsufficientStock if stock is short at decrement time, regardless of
	// any earlier read.
	AdjustStock(ctx context.Context, bookID int64, delta int64) error
}
