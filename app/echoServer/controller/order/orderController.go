package order

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/mbjethwa/Seneca-Book-Store/model"
	ordersvc "github.com/mbjethwa/Seneca-Book-Store/service/order"
)

type Controller struct {
	Svc ordersvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func actorOf(c echo.Context) ordersvc.Actor {
	uid, _ := c.Get("user_id").(int64)
	admin, _ := c.Get("is_admin").(bool)
	return ordersvc.Actor{ID: uid, Admin: admin}
}

// respondErr maps service error codes onto the HTTP surface.
func (h *Controller) respondErr(c echo.Context, op string, err error) error {
	code := ordersvc.Code(err)
	switch code {
	case ordersvc.ErrBookNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
	case ordersvc.ErrOrderNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
	case ordersvc.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
	case ordersvc.ErrBookUnavailable:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "book is not available"})
	case ordersvc.ErrRentalNotSupported:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "book is not offered for rental"})
	case ordersvc.ErrBadInput:
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid payload"})
	case ordersvc.ErrNoStock:
		return c.JSON(http.StatusConflict, echo.Map{"message": "not enough stock"})
	case ordersvc.ErrBadTransition:
		return c.JSON(http.StatusConflict, echo.Map{"message": "invalid state transition"})
	case ordersvc.ErrDependency:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "dependency unavailable"})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}

// POST /orders
func (h *Controller) Create(c echo.Context) error {
	var req CreateOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	typ := model.OrderType(req.OrderType)
	if typ == model.OrderRent && req.RentalDays == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "rental_days is required for RENT orders"})
	}
	if typ == model.OrderBuy && req.RentalDays != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "rental_days is not allowed for BUY orders"})
	}

	uid, _ := c.Get("user_id").(int64)
	o, err := h.Svc.Place(c.Request().Context(), uid, ordersvc.PlaceInput{
		BookID:     req.BookID,
		OrderType:  typ,
		Quantity:   req.Quantity,
		RentalDays: req.RentalDays,
		Notes:      req.Notes,
	})
	if err != nil {
		return h.respondErr(c, "order create", err)
	}
	return c.JSON(http.StatusCreated, o)
}

// GET /orders
func (h *Controller) List(c echo.Context) error {
	in, err := listInput(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}
	uid, _ := c.Get("user_id").(int64)
	orders, total, err := h.Svc.ListMine(c.Request().Context(), uid, in)
	if err != nil {
		return h.respondErr(c, "order list", err)
	}
	return c.JSON(http.StatusOK, listResp(orders, total, in))
}

// GET /orders/:id
func (h *Controller) Detail(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	o, err := h.Svc.Get(c.Request().Context(), actorOf(c), id)
	if err != nil {
		return h.respondErr(c, "order detail", err)
	}
	return c.JSON(http.StatusOK, o)
}

// PUT /orders/:id/status
func (h *Controller) UpdateStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req UpdateStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	o, err := h.Svc.Transition(c.Request().Context(), actorOf(c), id, model.OrderStatus(req.Status), req.Notes)
	if err != nil {
		return h.respondErr(c, "order status update", err)
	}
	return c.JSON(http.StatusOK, o)
}

// POST /orders/:id/return
func (h *Controller) Return(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req ReturnReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	o, err := h.Svc.Transition(c.Request().Context(), actorOf(c), id, model.StatusReturned, req.Notes)
	if err != nil {
		return h.respondErr(c, "rental return", err)
	}
	return c.JSON(http.StatusOK, o)
}

// GET /orders/summary/me
func (h *Controller) Summary(c echo.Context) error {
	uid, _ := c.Get("user_id").(int64)
	s, err := h.Svc.Summary(c.Request().Context(), uid)
	if err != nil {
		return h.respondErr(c, "order summary", err)
	}
	return c.JSON(http.StatusOK, s)
}

// GET /orders/rentals/active
func (h *Controller) ActiveRentals(c echo.Context) error {
	rows, err := h.Svc.ActiveRentals(c.Request().Context(), actorOf(c))
	if err != nil {
		return h.respondErr(c, "active rentals", err)
	}
	return c.JSON(http.StatusOK, nonNil(rows))
}

// GET /orders/rentals/overdue
func (h *Controller) OverdueRentals(c echo.Context) error {
	rows, err := h.Svc.OverdueRentals(c.Request().Context(), actorOf(c))
	if err != nil {
		return h.respondErr(c, "overdue rentals", err)
	}
	return c.JSON(http.StatusOK, nonNil(rows))
}

// GET /admin/orders
func (h *Controller) AdminList(c echo.Context) error {
	in, err := listInput(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}
	orders, total, err := h.Svc.ListAll(c.Request().Context(), in)
	if err != nil {
		return h.respondErr(c, "admin order list", err)
	}
	return c.JSON(http.StatusOK, listResp(orders, total, in))
}

// GET /admin/summary
func (h *Controller) AdminSummary(c echo.Context) error {
	s, err := h.Svc.AdminSummary(c.Request().Context())
	if err != nil {
		return h.respondErr(c, "admin summary", err)
	}
	return c.JSON(http.StatusOK, AdminSummaryResp{
		TotalOrders:    s.TotalOrders,
		TotalPurchases: s.TotalPurchases,
		TotalRentals:   s.TotalRentals,
		TotalRevenue:   s.TotalSpent,
		ActiveRentals:  s.ActiveRentals,
		OverdueRentals: s.OverdueRentals,
	})
}

// GET /admin/orders/overdue
func (h *Controller) AdminOverdue(c echo.Context) error {
	rows, err := h.Svc.OverdueRentals(c.Request().Context(), actorOf(c))
	if err != nil {
		return h.respondErr(c, "admin overdue rentals", err)
	}
	return c.JSON(http.StatusOK, nonNil(rows))
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	return id, nil
}

func listInput(c echo.Context) (ordersvc.ListInput, error) {
	in := ordersvc.ListInput{Page: 1, Size: 20}
	if v := c.QueryParam("page"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 {
			return in, errInvalidQuery("page")
		}
		in.Page = n
	}
	if v := c.QueryParam("size"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 1 || n > 100 {
			return in, errInvalidQuery("size")
		}
		in.Size = n
	}
	if v := c.QueryParam("status"); v != "" {
		st := model.OrderStatus(v)
		if !model.ValidOrderStatus(st) {
			return in, errInvalidQuery("status")
		}
		in.Status = &st
	}
	if v := c.QueryParam("order_type"); v != "" {
		ot := model.OrderType(v)
		if !model.ValidOrderType(ot) {
			return in, errInvalidQuery("order_type")
		}
		in.OrderType = &ot
	}
	return in, nil
}

type errInvalidQuery string

func (e errInvalidQuery) Error() string { return "invalid query parameter: " + string(e) }

func listResp(orders []model.Order, total int64, in ordersvc.ListInput) OrderListResp {
	return OrderListResp{Orders: nonNil(orders), Total: total, Page: in.Page, Size: in.Size}
}

func nonNil(rows []model.Order) []model.Order {
	if rows == nil {
		return []model.Order{}
	}
	return rows
}
