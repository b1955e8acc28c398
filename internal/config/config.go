package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name    string `envconfig:"APP_NAME" default:"PriceUs"`
		Port    int    `envconfig:"PORT" default:"8080"`
		Origin  string `envconfig:"PUBLIC_ORIGIN" default:"http://localhost:8080"`
		Origins string `envconfig:"ALLOWED_ORIGINS" default:"*"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"priceus"`
	}

	Auth struct {
		JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
	}

	Signing struct {
		DraftSecret string        `envconfig:"SIGNING_DRAFT_SECRET" required:"true"`
		DraftTTL    time.Duration `envconfig:"SIGNING_DRAFT_TTL" default:"30m"`
	}

	Storage struct {
		ProjectURL string `envconfig:"STORAGE_PROJECT_URL"`
		APIKey     string `envconfig:"STORAGE_API_KEY"`
		Bucket     string `envconfig:"STORAGE_BUCKET" default:"contracts"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// StorageEnabled reports whether contract archival is configured.
// Without it, signed PDFs are only delivered as direct downloads.
func (c *Config) StorageEnabled() bool {
	return c.Storage.ProjectURL != "" && c.Storage.APIKey != ""
}

func Load() (*Config, error) {
	// Absent .env is fine in production; env vars win either way.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
