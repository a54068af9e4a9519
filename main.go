// Package main order API.
//
// @title           Seneca Book Store Order API
// @version         1.0
// @description     Order processing service for book purchases and rentals.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description  Use:  Bearer <token>
package main

import (
	"context"
	"embed"
	"log/slog"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pressly/goose/v3"
	echoSwagger "github.com/swaggo/echo-swagger"

	"github.com/mbjethwa/Seneca-Book-Store/app/echoServer"
	orderctrl "github.com/mbjethwa/Seneca-Book-Store/app/echoServer/controller/order"
	"github.com/mbjethwa/Seneca-Book-Store/app/echoServer/validation"
	"github.com/mbjethwa/Seneca-Book-Store/config"
	catalogrepo "github.com/mbjethwa/Seneca-Book-Store/repository/catalog"
	orderrepo "github.com/mbjethwa/Seneca-Book-Store/repository/order"
	userrepo "github.com/mbjethwa/Seneca-Book-Store/repository/user"
	ordersvc "github.com/mbjethwa/Seneca-Book-Store/service/order"
	"github.com/mbjethwa/Seneca-Book-Store/util/database"
	"github.com/mbjethwa/Seneca-Book-Store/util/discovery"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

func main() {

	cfg := config.Load()
	ctx := context.Background()

	// logger
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(log)

	// DB: *sql.DB over pgx
	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("db connect failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Error("goose dialect", "err", err)
		os.Exit(1)
	}
	if err := goose.Up(db, "migrations"); err != nil {
		log.Error("migrations failed", "err", err)
		os.Exit(1)
	}

	// Collaborator base URLs: Consul when configured, env otherwise.
	userURL, catalogURL := cfg.UserServiceURL, cfg.CatalogURL
	if cfg.ConsulAddr != "" {
		consul, err := discovery.NewClient(cfg.ConsulAddr)
		if err != nil {
			log.Error("consul connect failed", "err", err)
			os.Exit(1)
		}
		if u, err := discovery.ServiceURL(consul, "user-service"); err == nil {
			userURL = u
		} else {
			log.Warn("consul lookup user-service, falling back to env", "err", err)
		}
		if u, err := discovery.ServiceURL(consul, "catalog-service"); err == nil {
			catalogURL = u
		} else {
			log.Warn("consul lookup catalog-service, falling back to env", "err", err)
		}
	}

	// repos
	or := orderrepo.New(db)
	ur := userrepo.NewHTTP(userURL)
	cr := catalogrepo.NewHTTP(catalogURL)

	// services
	osvc := ordersvc.New(or, cr)

	// controllers
	v := validator.New()
	orderC := &orderctrl.Controller{Svc: osvc, V: v, Log: log}

	// echo
	e := echo.New()
	echoServer.RegisterMiddlewares(e)
	e.Validator = validation.New()

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]any{
			"status":  "OK",
			"service": "order-service",
		})
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	echoServer.Register(e, echoServer.C{
		Order: orderC,
		Users: ur,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}
	if port == "" {
		port = "8003"
	}

	log.Info("starting server", "port", port, "user_service", userURL, "catalog_service", catalogURL)

	e.Logger.Fatal(e.Start(":" + port))
}
