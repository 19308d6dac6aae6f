// Payments Service
//
// This is the main entry point for the payment order service.
// It wires up all dependencies and starts the HTTP server.
package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/selforder/payments-service/config"
	"github.com/selforder/payments-service/internal/adapters/mercadopago"
	"github.com/selforder/payments-service/internal/adapters/orderapi"
	"github.com/selforder/payments-service/internal/adapters/postgres"
	"github.com/selforder/payments-service/internal/api"
	"github.com/selforder/payments-service/internal/core/service"
	"github.com/selforder/payments-service/internal/database"
)

func main() {
	logrus.Info("Starting Payments Service...")

	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Configuration error: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Configuration error: %v", err)
	}
	logrus.Infof("Configuration loaded: Port=%s, OrderAPI=%s", cfg.Server.Port, cfg.OrderAPI.BaseURL)

	db, err := database.Connect(cfg.Database.DSN)
	if err != nil {
		logrus.Fatalf("Database error: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		logrus.Fatalf("Migration error: %v", err)
	}

	// Wire up dependencies (manual dependency injection)
	//
	// Infrastructure Layer
	repo := postgres.NewPaymentOrderRepository(db)
	orderClient := orderapi.NewClient(cfg.OrderAPI.BaseURL, cfg.OrderAPI.Timeout)
	mpAdapter := mercadopago.NewAdapter(
		cfg.MercadoPago.BaseURL,
		cfg.MercadoPago.Token,
		cfg.MercadoPago.UserID,
		cfg.MercadoPago.PosID,
		cfg.MercadoPago.Timeout,
	)
	webhookValidator := mercadopago.NewWebhookValidator(cfg.MercadoPago.WebhookSecret)

	// Service Layer
	paymentOrderService := service.NewPaymentOrderService(repo, mpAdapter, orderClient)

	// API Layer
	handler := api.NewHandler(paymentOrderService)
	router := api.SetupRouter(handler, webhookValidator, cfg.Server.GinMode)

	// Start server in a goroutine
	serverAddr := fmt.Sprintf(":%s", cfg.Server.Port)
	go func() {
		logrus.Infof("Server listening on %s", serverAddr)
		if err := router.Run(serverAddr); err != nil {
			logrus.Fatalf("Server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
}
