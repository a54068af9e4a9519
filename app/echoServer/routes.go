package echoServer

import (
	"github.com/labstack/echo/v4"

	"github.com/mbjethwa/Seneca-Book-Store/app/echoServer/controller/order"
	userrepo "github.com/mbjethwa/Seneca-Book-Store/repository/user"
)

type C struct {
	Order *order.Controller
	Users userrepo.Repo
}

func Register(e *echo.Echo, c C) {
	authed := e.Group("", Auth(c.Users))

	authed.POST("/orders", c.Order.Create)
	authed.GET("/orders", c.Order.List)

	authed.GET("/orders/summary/me", c.Order.Summary)
	authed.GET("/orders/rentals/active", c.Order.ActiveRentals)
	authed.GET("/orders/rentals/overdue", c.Order.OverdueRentals)

	authed.GET("/orders/:id", c.Order.Detail)
	authed.PUT("/orders/:id/status", c.Order.UpdateStatus)
	authed.POST("/orders/:id/return", c.Order.Return)

	admin := e.Group("/admin", Auth(c.Users), AdminOnly())
	admin.GET("/orders", c.Order.AdminList)
	admin.GET("/orders/overdue", c.Order.AdminOverdue)
	admin.GET("/summary", c.Order.AdminSummary)
}
