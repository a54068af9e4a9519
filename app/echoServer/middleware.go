// app/echoServer/middleware.go
package echoServer

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	userrepo "github.com/mbjethwa/Seneca-Book-Store/repository/user"
)

func RegisterMiddlewares(e *echo.Echo) {

	e.Use(middleware.Recover())

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.NewString() },
	}))

	e.Use(middleware.CORS())

	e.Use(Slog())
}

func Slog() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			lat := time.Since(start).Milliseconds()

			rid := c.Response().Header().Get(echo.HeaderXRequestID)
			slog.Info("http",
				"method", c.Request().Method,
				"path", c.Path(),
				"status", c.Response().Status,
				"latency_ms", lat,
				"req_id", rid,
				"ip", c.RealIP(),
				"ua", c.Request().UserAgent(),
			)
			return err
		}
	}
}

// Auth resolves the bearer token through the user service and stashes the
// caller's identity in the request context. Token verification lives in the
// user service; this service only forwards.
func Auth(users userrepo.Repo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := bearerToken(c.Request().Header.Get("Authorization"))
			if token == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
			}

			id, err := users.Resolve(c.Request().Context(), token)
			if err != nil {
				if errors.Is(err, userrepo.ErrUnauthorized) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
				}
				slog.Error("user service resolve", "err", err,
					"req_id", c.Response().Header().Get(echo.HeaderXRequestID))
				return c.JSON(http.StatusServiceUnavailable, echo.Map{"message": "user service unavailable"})
			}

			c.Set("user_id", id.ID)
			c.Set("is_admin", id.IsAdmin)
			return next(c)
		}
	}
}

// AdminOnly requires Auth to have run first.
func AdminOnly() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if admin, _ := c.Get("is_admin").(bool); !admin {
				return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
			}
			return next(c)
		}
	}
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	if header == "" {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
