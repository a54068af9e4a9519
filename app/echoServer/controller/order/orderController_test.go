package order

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/mbjethwa/Seneca-Book-Store/model"
	orderrepo "github.com/mbjethwa/Seneca-Book-Store/repository/order"
	ordersvc "github.com/mbjethwa/Seneca-Book-Store/service/order"
)

type svcMock struct {
	placeFn      func(ctx context.Context, userID int64, in ordersvc.PlaceInput) (*model.Order, error)
	getFn        func(ctx context.Context, actor ordersvc.Actor, orderID int64) (*model.Order, error)
	listMineFn   func(ctx context.Context, userID int64, in ordersvc.ListInput) ([]model.Order, int64, error)
	listAllFn    func(ctx context.Context, in ordersvc.ListInput) ([]model.Order, int64, error)
	transitionFn func(ctx context.Context, actor ordersvc.Actor, orderID int64, target model.OrderStatus, notes *string) (*model.Order, error)
	activeFn     func(ctx context.Context, actor ordersvc.Actor) ([]model.Order, error)
	overdueFn    func(ctx context.Context, actor ordersvc.Actor) ([]model.Order, error)
	summaryFn    func(ctx context.Context, userID int64) (*orderrepo.Summary, error)
	adminSumFn   func(ctx context.Context) (*orderrepo.Summary, error)
}

var _ ordersvc.Service = (*svcMock)(nil)

func (m *svcMock) Place(ctx context.Context, userID int64, in ordersvc.PlaceInput) (*model.Order, error) {
	return m.placeFn(ctx, userID, in)
}
func (m *svcMock) Get(ctx context.Context, actor ordersvc.Actor, orderID int64) (*model.Order, error) {
	return m.getFn(ctx, actor, orderID)
}
func (m *svcMock) ListMine(ctx context.Context, userID int64, in ordersvc.ListInput) ([]model.Order, int64, error) {
	return m.listMineFn(ctx, userID, in)
}
func (m *svcMock) ListAll(ctx context.Context, in ordersvc.ListInput) ([]model.Order, int64, error) {
	return m.listAllFn(ctx, in)
}
func (m *svcMock) Transition(ctx context.Context, actor ordersvc.Actor, orderID int64, target model.OrderStatus, notes *string) (*model.Order, error) {
	return m.transitionFn(ctx, actor, orderID, target, notes)
}
func (m *svcMock) ActiveRentals(ctx context.Context, actor ordersvc.Actor) ([]model.Order, error) {
	return m.activeFn(ctx, actor)
}
func (m *svcMock) OverdueRentals(ctx context.Context, actor ordersvc.Actor) ([]model.Order, error) {
	return m.overdueFn(ctx, actor)
}
func (m *svcMock) Summary(ctx context.Context, userID int64) (*orderrepo.Summary, error) {
	return m.summaryFn(ctx, userID)
}
func (m *svcMock) AdminSummary(ctx context.Context) (*orderrepo.Summary, error) {
	return m.adminSumFn(ctx)
}

func newController(m *svcMock) *Controller {
	return &Controller{
		Svc: m,
		V:   validator.New(),
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func request(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", int64(3))
	c.Set("is_admin", false)
	return c, rec
}

func TestCreate_RentRequiresDays(t *testing.T) {
	h := newController(&svcMock{})
	c, rec := request(http.MethodPost, "/orders", `{"book_id":1,"order_type":"RENT","quantity":1}`)

	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreate_BuyRejectsDays(t *testing.T) {
	h := newController(&svcMock{})
	c, rec := request(http.MethodPost, "/orders", `{"book_id":1,"order_type":"BUY","quantity":1,"rental_days":7}`)

	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreate_BadOrderType(t *testing.T) {
	h := newController(&svcMock{})
	c, rec := request(http.MethodPost, "/orders", `{"book_id":1,"order_type":"LEASE","quantity":1}`)

	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreate_Success(t *testing.T) {
	m := &svcMock{placeFn: func(ctx context.Context, userID int64, in ordersvc.PlaceInput) (*model.Order, error) {
		require.Equal(t, int64(3), userID)
		require.Equal(t, model.OrderBuy, in.OrderType)
		require.Equal(t, int64(2), in.Quantity)
		return &model.Order{ID: 7, UserID: userID, Status: model.StatusPending, TotalPrice: 20}, nil
	}}
	h := newController(m)
	c, rec := request(http.MethodPost, "/orders", `{"book_id":1,"order_type":"BUY","quantity":2}`)

	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var got model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Equal(t, int64(7), got.ID)
	require.Equal(t, 20.0, got.TotalPrice)
}

func TestCreate_ErrorMapping(t *testing.T) {
	cases := []struct {
		code ordersvc.ErrCode
		want int
	}{
		{ordersvc.ErrBookNotFound, http.StatusNotFound},
		{ordersvc.ErrBookUnavailable, http.StatusBadRequest},
		{ordersvc.ErrRentalNotSupported, http.StatusBadRequest},
		{ordersvc.ErrNoStock, http.StatusConflict},
		{ordersvc.ErrDependency, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		m := &svcMock{placeFn: func(ctx context.Context, userID int64, in ordersvc.PlaceInput) (*model.Order, error) {
			return nil, svcErr(tc.code)
		}}
		h := newController(m)
		c, rec := request(http.MethodPost, "/orders", `{"book_id":1,"order_type":"BUY","quantity":1}`)

		require.NoError(t, h.Create(c))
		require.Equal(t, tc.want, rec.Code, "code %s", tc.code)
	}
}

// svcErr builds a coded error the way the service package reports them.
type svcErr ordersvc.ErrCode

func (e svcErr) Error() string          { return string(e) }
func (e svcErr) Code() ordersvc.ErrCode { return ordersvc.ErrCode(e) }

func TestDetail_InvalidID(t *testing.T) {
	h := newController(&svcMock{})
	c, rec := request(http.MethodGet, "/orders/abc", "")
	c.SetParamNames("id")
	c.SetParamValues("abc")

	require.NoError(t, h.Detail(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDetail_ForbiddenAndMissing(t *testing.T) {
	for _, tc := range []struct {
		code ordersvc.ErrCode
		want int
	}{
		{ordersvc.ErrForbidden, http.StatusForbidden},
		{ordersvc.ErrOrderNotFound, http.StatusNotFound},
	} {
		m := &svcMock{getFn: func(ctx context.Context, actor ordersvc.Actor, orderID int64) (*model.Order, error) {
			return nil, svcErr(tc.code)
		}}
		h := newController(m)
		c, rec := request(http.MethodGet, "/orders/10", "")
		c.SetParamNames("id")
		c.SetParamValues("10")

		require.NoError(t, h.Detail(c))
		require.Equal(t, tc.want, rec.Code)
	}
}

func TestList_BadStatusFilter(t *testing.T) {
	h := newController(&svcMock{})
	c, rec := request(http.MethodGet, "/orders?status=SHIPPED", "")

	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestList_Defaults(t *testing.T) {
	m := &svcMock{listMineFn: func(ctx context.Context, userID int64, in ordersvc.ListInput) ([]model.Order, int64, error) {
		require.Equal(t, int64(1), in.Page)
		require.Equal(t, int64(20), in.Size)
		return nil, 0, nil
	}}
	h := newController(m)
	c, rec := request(http.MethodGet, "/orders", "")

	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp OrderListResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Orders)
	require.Empty(t, resp.Orders)
	require.Equal(t, int64(0), resp.Total)
}

func TestList_Filters(t *testing.T) {
	m := &svcMock{listMineFn: func(ctx context.Context, userID int64, in ordersvc.ListInput) ([]model.Order, int64, error) {
		require.NotNil(t, in.Status)
		require.Equal(t, model.StatusConfirmed, *in.Status)
		require.NotNil(t, in.OrderType)
		require.Equal(t, model.OrderRent, *in.OrderType)
		require.Equal(t, int64(2), in.Page)
		return []model.Order{{ID: 1}}, 21, nil
	}}
	h := newController(m)
	c, rec := request(http.MethodGet, "/orders?status=CONFIRMED&order_type=RENT&page=2&size=20", "")

	require.NoError(t, h.List(c))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestUpdateStatus_BadValue(t *testing.T) {
	h := newController(&svcMock{})
	c, rec := request(http.MethodPut, "/orders/10/status", `{"status":"SHIPPED"}`)
	c.SetParamNames("id")
	c.SetParamValues("10")

	require.NoError(t, h.UpdateStatus(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateStatus_Conflict(t *testing.T) {
	m := &svcMock{transitionFn: func(ctx context.Context, actor ordersvc.Actor, orderID int64, target model.OrderStatus, notes *string) (*model.Order, error) {
		return nil, svcErr(ordersvc.ErrBadTransition)
	}}
	h := newController(m)
	c, rec := request(http.MethodPut, "/orders/10/status", `{"status":"COMPLETED"}`)
	c.SetParamNames("id")
	c.SetParamValues("10")

	require.NoError(t, h.UpdateStatus(c))
	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestReturn_TargetsReturned(t *testing.T) {
	var gotTarget model.OrderStatus
	m := &svcMock{transitionFn: func(ctx context.Context, actor ordersvc.Actor, orderID int64, target model.OrderStatus, notes *string) (*model.Order, error) {
		gotTarget = target
		return &model.Order{ID: orderID, Status: target}, nil
	}}
	h := newController(m)
	c, rec := request(http.MethodPost, "/orders/10/return", `{"notes":"dog-eared but intact"}`)
	c.SetParamNames("id")
	c.SetParamValues("10")

	require.NoError(t, h.Return(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, model.StatusReturned, gotTarget)
}

func TestSummary(t *testing.T) {
	m := &svcMock{summaryFn: func(ctx context.Context, userID int64) (*orderrepo.Summary, error) {
		require.Equal(t, int64(3), userID)
		return &orderrepo.Summary{TotalOrders: 2, TotalSpent: 33.98}, nil
	}}
	h := newController(m)
	c, rec := request(http.MethodGet, "/orders/summary/me", "")

	require.NoError(t, h.Summary(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"total_spent":33.98`)
}

func TestAdminSummary_RevenueAlias(t *testing.T) {
	m := &svcMock{adminSumFn: func(ctx context.Context) (*orderrepo.Summary, error) {
		return &orderrepo.Summary{TotalOrders: 5, TotalSpent: 120.50}, nil
	}}
	h := newController(m)
	c, rec := request(http.MethodGet, "/admin/summary", "")

	require.NoError(t, h.AdminSummary(c))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"total_revenue":120.5`)
}
