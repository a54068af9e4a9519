// repository/order/repo.go
package orderrepo

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/mbjethwa/Seneca-Book-Store/model"
)

type Filter struct {
	UserID    *int64
	Status    *model.OrderStatus
	OrderType *model.OrderType
	Limit     int64
	Offset    int64
}

type Summary struct {
	TotalOrders    int64   `json:"total_orders"`
	TotalPurchases int64   `json:"total_purchases"`
	TotalRentals   int64   `json:"total_rentals"`
	TotalSpent     float64 `json:"total_spent"`
	ActiveRentals  int64   `json:"active_rentals"`
	OverdueRentals int64   `json:"overdue_rentals"`
}

type Repo interface {
	Create(ctx context.Context, o *model.Order) error
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	List(ctx context.Context, f Filter) ([]model.Order, int64, error)

	// TransitionStatus is the single-row compare-and-set: the write succeeds
	// only if the order still holds the expected status. A false return means
	// a concurrent transition won.
	TransitionStatus(ctx context.Context, id int64, from, to model.OrderStatus, returnedAt *time.Time, notes *string) (bool, error)

	ActiveRentals(ctx context.Context, userID *int64) ([]model.Order, error)
	OverdueRentals(ctx context.Context, now time.Time, userID *int64) ([]model.Order, error)
	Summarize(ctx context.Context, userID *int64, now time.Time) (*Summary, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

const orderColumns = `
	id, user_id, book_id, order_type, status,
	book_title, book_author, book_isbn,
	unit_price, quantity, total_price,
	rental_days, rental_start, rental_end, returned_at,
	notes, created_at, updated_at`

type rowScanner interface{ Scan(dest ...any) error }

func scanOrder(rs rowScanner, o *model.Order) error {
	return rs.Scan(
		&o.ID, &o.UserID, &o.BookID, &o.OrderType, &o.Status,
		&o.BookTitle, &o.BookAuthor, &o.BookISBN,
		&o.UnitPrice, &o.Quantity, &o.TotalPrice,
		&o.RentalDays, &o.RentalStart, &o.RentalEnd, &o.ReturnedAt,
		&o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
}

func (r *repo) Create(ctx context.Context, o *model.Order) error {
	const q = `
		INSERT INTO orders (
			user_id, book_id, order_type, status,
			book_title, book_author, book_isbn,
			unit_price, quantity, total_price,
			rental_days, rental_start, rental_end, notes
		)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
		RETURNING id, created_at, updated_at`
	return r.db.QueryRowContext(ctx, q,
		o.UserID, o.BookID, o.OrderType, o.Status,
		o.BookTitle, o.BookAuthor, o.BookISBN,
		o.UnitPrice, o.Quantity, o.TotalPrice,
		o.RentalDays, o.RentalStart, o.RentalEnd, o.Notes,
	).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
}

func (r *repo) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	q := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	var o model.Order
	if err := scanOrder(r.db.QueryRowContext(ctx, q, id), &o); err != nil {
		return nil, err
	}
	return &o, nil
}

func (f Filter) where() (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}
	if f.UserID != nil {
		add("user_id = $%d", *f.UserID)
	}
	if f.Status != nil {
		add("status = $%d", *f.Status)
	}
	if f.OrderType != nil {
		add("order_type = $%d", *f.OrderType)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *repo) List(ctx context.Context, f Filter) ([]model.Order, int64, error) {
	where, args := f.where()

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	q := `SELECT ` + orderColumns + ` FROM orders` + where +
		fmt.Sprintf(` ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	rows, err := r.db.QueryContext(ctx, q, append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out, err := collect(rows)
	return out, total, err
}

func collect(rows *sql.Rows) ([]model.Order, error) {
	var out []model.Order
	for rows.Next() {
		var o model.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (r *repo) TransitionStatus(ctx context.Context, id int64, from, to model.OrderStatus, returnedAt *time.Time, notes *string) (bool, error) {
	const q = `
		UPDATE orders
		SET status      = $3,
			returned_at = COALESCE($4, returned_at),
			notes       = COALESCE($5, notes),
			updated_at  = NOW()
		WHERE id = $1
		AND status = $2`
	res, err := r.db.ExecContext(ctx, q, id, from, to, returnedAt, notes)
	if err != nil {
		return false, err
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return aff > 0, nil
}

func (r *repo) ActiveRentals(ctx context.Context, userID *int64) ([]model.Order, error) {
	q := `SELECT ` + orderColumns + `
		FROM orders
		WHERE order_type = 'RENT' AND status = 'CONFIRMED'`
	var args []any
	if userID != nil {
		q += ` AND user_id = $1`
		args = append(args, *userID)
	}
	q += ` ORDER BY rental_end`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repo) OverdueRentals(ctx context.Context, now time.Time, userID *int64) ([]model.Order, error) {
	q := `SELECT ` + orderColumns + `
		FROM orders
		WHERE order_type = 'RENT' AND status = 'CONFIRMED' AND rental_end < $1`
	args := []any{now}
	if userID != nil {
		q += ` AND user_id = $2`
		args = append(args, *userID)
	}
	q += ` ORDER BY rental_end`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collect(rows)
}

func (r *repo) Summarize(ctx context.Context, userID *int64, now time.Time) (*Summary, error) {
	q := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE order_type = 'BUY'),
			COUNT(*) FILTER (WHERE order_type = 'RENT'),
			COALESCE(SUM(total_price) FILTER (WHERE status <> 'CANCELLED'), 0),
			COUNT(*) FILTER (WHERE order_type = 'RENT' AND status = 'CONFIRMED'),
			COUNT(*) FILTER (WHERE order_type = 'RENT' AND status = 'CONFIRMED' AND rental_end < $1)
		FROM orders`
	args := []any{now}
	if userID != nil {
		q += ` WHERE user_id = $2`
		args = append(args, *userID)
	}
	var s Summary
	err := r.db.QueryRowContext(ctx, q, args...).Scan(
		&s.TotalOrders, &s.TotalPurchases, &s.TotalRentals,
		&s.TotalSpent, &s.ActiveRentals, &s.OverdueRentals,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
