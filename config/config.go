// Package config handles loading and managing application configuration.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application.
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Order microservice configuration
	OrderAPI OrderAPIConfig

	// Mercado Pago configuration
	MercadoPago MercadoPagoConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port    string `envconfig:"PORT" default:"8080"`
	GinMode string `envconfig:"GIN_MODE" default:"debug"` // "debug", "release", or "test"
}

// DatabaseConfig holds postgres configuration.
type DatabaseConfig struct {
	DSN string `envconfig:"DATABASE_URL"`
}

// OrderAPIConfig holds order microservice configuration.
type OrderAPIConfig struct {
	BaseURL string        `envconfig:"ORDER_BASE_URL" default:"http://localhost:3000"`
	Timeout time.Duration `envconfig:"ORDER_API_TIMEOUT" default:"10s"`
}

// MercadoPagoConfig holds Mercado Pago in-store QR API configuration.
type MercadoPagoConfig struct {
	BaseURL       string        `envconfig:"MERCADO_PAGO_BASE_URL" default:"https://api.mercadopago.com"`
	Token         string        `envconfig:"MERCADO_PAGO_TOKEN"`
	UserID        int64         `envconfig:"MERCADO_PAGO_USER_ID"`
	PosID         string        `envconfig:"MERCADO_PAGO_EXTERNAL_POS_ID"`
	WebhookSecret string        `envconfig:"MP_WEBHOOK_SECRET"`
	Timeout       time.Duration `envconfig:"MERCADO_PAGO_TIMEOUT" default:"15s"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	return &cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.MercadoPago.Token == "" {
		return fmt.Errorf("MERCADO_PAGO_TOKEN is required")
	}
	if c.MercadoPago.UserID == 0 {
		return fmt.Errorf("MERCADO_PAGO_USER_ID is required")
	}
	if c.MercadoPago.PosID == "" {
		return fmt.Errorf("MERCADO_PAGO_EXTERNAL_POS_ID is required")
	}
	return nil
}
