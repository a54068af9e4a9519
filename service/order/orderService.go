package ordersvc

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/mbjethwa/Seneca-Book-Store/model"
	catalogrepo "github.com/mbjethwa/Seneca-Book-Store/repository/catalog"
	orderrepo "github.com/mbjethwa/Seneca-Book-Store/repository/order"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound       ErrCode = "BOOK_NOT_FOUND"
	ErrBookUnavailable    ErrCode = "BOOK_UNAVAILABLE"
	ErrNoStock            ErrCode = "INSUFFICIENT_STOCK"
	ErrRentalNotSupported ErrCode = "RENTAL_NOT_SUPPORTED"
	ErrOrderNotFound      ErrCode = "ORDER_NOT_FOUND"
	ErrForbidden          ErrCode = "FORBIDDEN"
	ErrBadTransition      ErrCode = "INVALID_STATE_TRANSITION"
	ErrBadInput           ErrCode = "BAD_INPUT"
	ErrDependency         ErrCode = "DEPENDENCY_UNAVAILABLE"
)

type codedError struct {
	code  ErrCode
	cause error
}

func (e codedError) Error() string {
	if e.cause != nil {
		return string(e.code) + ": " + e.cause.Error()
	}
	return string(e.code)
}
func (e codedError) Code() ErrCode { return e.code }
func (e codedError) Unwrap() error { return e.cause }

func makeErr(c ErrCode) error              { return codedError{code: c} }
func wrapErr(c ErrCode, cause error) error { return codedError{code: c, cause: cause} }

// Code extracts the error code, or "" for uncoded errors.
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Actor is the authenticated caller, as reported by the user service.
type Actor struct {
	ID    int64
	Admin bool
}

func (a Actor) mayAccess(o *model.Order) bool { return a.Admin || o.UserID == a.ID }

type PlaceInput struct {
	BookID     int64
	OrderType  model.OrderType
	Quantity   int64
	RentalDays *int64
	Notes      *string
}

type ListInput struct {
	Status    *model.OrderStatus
	OrderType *model.OrderType
	Page      int64
	Size      int64
}

type Service interface {
	// Place validates against the catalog, decrements stock, and persists a
	// PENDING order. The stock decrement is the authoritative gate: its
	// failure aborts placement even when the earlier availability read passed.
	Place(ctx context.Context, userID int64, in PlaceInput) (*model.Order, error)

	Get(ctx context.Context, actor Actor, orderID int64) (*model.Order, error)
	ListMine(ctx context.Context, userID int64, in ListInput) ([]model.Order, int64, error)
	ListAll(ctx context.Context, in ListInput) ([]model.Order, int64, error)

	// Transition moves the order along the lifecycle table. CANCELLED restores
	// stock; RETURNED stamps returned_at. Returning does not restore stock.
	Transition(ctx context.Context, actor Actor, orderID int64, target model.OrderStatus, notes *string) (*model.Order, error)

	ActiveRentals(ctx context.Context, actor Actor) ([]model.Order, error)
	OverdueRentals(ctx context.Context, actor Actor) ([]model.Order, error)

	Summary(ctx context.Context, userID int64) (*orderrepo.Summary, error)
	AdminSummary(ctx context.Context) (*orderrepo.Summary, error)
}

type service struct {
	r orderrepo.Repo
	c catalogrepo.Repo
}

func New(r orderrepo.Repo, c catalogrepo.Repo) Service {
	return &service{r: r, c: c}
}

func (s *service) Place(ctx context.Context, userID int64, in PlaceInput) (*model.Order, error) {
	if !model.ValidOrderType(in.OrderType) || in.Quantity < 1 {
		return nil, makeErr(ErrBadInput)
	}
	if in.OrderType == model.OrderRent && (in.RentalDays == nil || *in.RentalDays < 1) {
		return nil, makeErr(ErrBadInput)
	}

	book, err := s.c.GetBook(ctx, in.BookID)
	if err != nil {
		return nil, mapCatalogErr(err)
	}
	if !book.Available {
		return nil, makeErr(ErrBookUnavailable)
	}
	if book.StockQuantity < in.Quantity {
		return nil, makeErr(ErrNoStock)
	}

	// Price snapshot. Catalog changes after this point never touch the order.
	unitPrice := book.Price
	var totalPrice float64
	var rentalDays *int64
	var rentalStart, rentalEnd *time.Time
	if in.OrderType == model.OrderRent {
		if book.RentPrice == nil || *book.RentPrice <= 0 {
			return nil, makeErr(ErrRentalNotSupported)
		}
		unitPrice = *book.RentPrice
		totalPrice = unitPrice * float64(in.Quantity) * float64(*in.RentalDays)
		rentalDays = in.RentalDays
		start := time.Now().UTC()
		end := start.Add(time.Duration(*in.RentalDays) * 24 * time.Hour)
		rentalStart, rentalEnd = &start, &end
	} else {
		totalPrice = unitPrice * float64(in.Quantity)
	}

	// The decrement must land before the row: the catalog fails it atomically
	// when two placements race past the read above.
	if err := s.c.AdjustStock(ctx, in.BookID, -in.Quantity); err != nil {
		return nil, mapCatalogErr(err)
	}

	o := &model.Order{
		UserID:      userID,
		BookID:      in.BookID,
		OrderType:   in.OrderType,
		Status:      model.StatusPending,
		BookTitle:   book.Title,
		BookAuthor:  book.Author,
		BookISBN:    book.ISBN,
		UnitPrice:   unitPrice,
		Quantity:    in.Quantity,
		TotalPrice:  totalPrice,
		RentalDays:  rentalDays,
		RentalStart: rentalStart,
		RentalEnd:   rentalEnd,
		Notes:       in.Notes,
	}
	if err := s.r.Create(ctx, o); err != nil {
		// Roll the reservation back so stock stays 1:1 with live orders.
		if rerr := s.c.AdjustStock(ctx, in.BookID, in.Quantity); rerr != nil {
			slog.Error("stock restore after failed insert", "book_id", in.BookID, "qty", in.Quantity, "err", rerr)
		}
		if derr := mapConstraintErr(err); derr != nil {
			return nil, derr
		}
		return nil, err
	}
	return o, nil
}

func (s *service) Get(ctx context.Context, actor Actor, orderID int64) (*model.Order, error) {
	o, err := s.r.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrOrderNotFound)
		}
		return nil, err
	}
	if !actor.mayAccess(o) {
		return nil, makeErr(ErrForbidden)
	}
	return o, nil
}

func (s *service) ListMine(ctx context.Context, userID int64, in ListInput) ([]model.Order, int64, error) {
	f := listFilter(in)
	f.UserID = &userID
	return s.r.List(ctx, f)
}

func (s *service) ListAll(ctx context.Context, in ListInput) ([]model.Order, int64, error) {
	return s.r.List(ctx, listFilter(in))
}

func listFilter(in ListInput) orderrepo.Filter {
	page, size := in.Page, in.Size
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	if size > 100 {
		size = 100
	}
	return orderrepo.Filter{
		Status:    in.Status,
		OrderType: in.OrderType,
		Limit:     size,
		Offset:    (page - 1) * size,
	}
}

func (s *service) Transition(ctx context.Context, actor Actor, orderID int64, target model.OrderStatus, notes *string) (*model.Order, error) {
	if !model.ValidOrderStatus(target) {
		return nil, makeErr(ErrBadInput)
	}

	o, err := s.r.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrOrderNotFound)
		}
		return nil, err
	}
	if !actor.mayAccess(o) {
		return nil, makeErr(ErrForbidden)
	}
	if !model.CanTransition(o.OrderType, o.Status, target) {
		return nil, makeErr(ErrBadTransition)
	}

	var returnedAt *time.Time
	if target == model.StatusReturned {
		now := time.Now().UTC()
		returnedAt = &now
	}

	ok, err := s.r.TransitionStatus(ctx, orderID, o.Status, target, returnedAt, notes)
	if err != nil {
		return nil, err
	}
	if !ok {
		// A concurrent transition moved the order first.
		return nil, makeErr(ErrBadTransition)
	}

	if target == model.StatusCancelled {
		// The CAS above won, so this runs at most once per order.
		if rerr := s.c.AdjustStock(ctx, o.BookID, o.Quantity); rerr != nil {
			slog.Error("stock restore on cancel", "order_id", orderID, "book_id", o.BookID, "qty", o.Quantity, "err", rerr)
		}
	}

	return s.r.GetByID(ctx, orderID)
}

func (s *service) ActiveRentals(ctx context.Context, actor Actor) ([]model.Order, error) {
	return s.r.ActiveRentals(ctx, scopeOf(actor))
}

func (s *service) OverdueRentals(ctx context.Context, actor Actor) ([]model.Order, error) {
	return s.r.OverdueRentals(ctx, time.Now().UTC(), scopeOf(actor))
}

// scopeOf narrows rental queries to the caller unless they are an admin.
func scopeOf(actor Actor) *int64 {
	if actor.Admin {
		return nil
	}
	id := actor.ID
	return &id
}

func (s *service) Summary(ctx context.Context, userID int64) (*orderrepo.Summary, error) {
	return s.r.Summarize(ctx, &userID, time.Now().UTC())
}

func (s *service) AdminSummary(ctx context.Context) (*orderrepo.Summary, error) {
	return s.r.Summarize(ctx, nil, time.Now().UTC())
}

func mapCatalogErr(err error) error {
	switch {
	case errors.Is(err, catalogrepo.ErrNotFound):
		return makeErr(ErrBookNotFound)
	case errors.Is(err, catalogrepo.ErrInsufficientStock):
		return makeErr(ErrNoStock)
	case errors.Is(err, catalogrepo.ErrUnavailable):
		return wrapErr(ErrDependency, err)
	}
	return err
}

func mapConstraintErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.CheckViolation {
		return wrapErr(ErrBadInput, err)
	}
	return nil
}
