package config

type App struct {
	Port           string `env:"APP_PORT" default:"8003"`
	DatabaseURL    string `env:"DATABASE_URL,required"`
	UserServiceURL string `env:"USER_SERVICE_URL" default:"http://localhost:8001"`
	CatalogURL     string `env:"CATALOG_SERVICE_URL" default:"http://localhost:8002"`
	ConsulAddr     string `env:"CONSUL_HTTP_ADDR"`
	Env            string `env:"APP_ENV" default:"dev"`
}
