package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

func Load() App {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := App{
		Port:           getenv("APP_PORT", "8003"),
		DatabaseURL:    must("DATABASE_URL"),
		UserServiceURL: getenv("USER_SERVICE_URL", "http://localhost:8001"),
		CatalogURL:     getenv("CATALOG_SERVICE_URL", "http://localhost:8002"),
		ConsulAddr:     os.Getenv("CONSUL_HTTP_ADDR"),
		Env:            getenv("APP_ENV", "dev"),
	}
	return cfg
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		slog.Error("required env missing", "key", k)
		panic("missing env " + k)
	}
	return v
}
