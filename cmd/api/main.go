package main

import (
	"log"

	"retailcrm-gateway/internal/core/config"
	"retailcrm-gateway/internal/core/logger"
	"retailcrm-gateway/internal/core/server"
	"retailcrm-gateway/internal/core/validation"
	"retailcrm-gateway/internal/crm"
	customerhandler "retailcrm-gateway/internal/features/customers/handler"
	orderhandler "retailcrm-gateway/internal/features/orders/handler"

	"go.uber.org/zap"
)

// @title RetailCRM Gateway API
// @version 1.0
// @description REST gateway proxying customer, order and payment operations to RetailCRM.
// @contact.name API Support
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	// One immutable CRM client shared by all requests.
	crmClient, err := crm.New(cfg.CRM)
	if err != nil {
		l.Fatal("Invalid CRM configuration", zap.Error(err))
	}
	l.Info("CRM client configured",
		zap.String("base_url", cfg.CRM.BaseURL),
		zap.String("site_code", cfg.CRM.SiteCode),
	)

	validate := validation.New()

	customerHdl := customerhandler.NewCustomerHandler(crmClient, validate, cfg.CRM.SiteCode)
	orderHdl := orderhandler.NewOrderHandler(crmClient, validate, cfg.CRM.SiteCode)

	srv := server.New(cfg)

	// Register Routes
	api := srv.App.Group("/api/retailCRM")
	api.Get("/customers", customerHdl.ListCustomers)
	api.Post("/customers", customerHdl.CreateCustomer)
	api.Get("/customers/:id", customerHdl.GetCustomer)
	api.Post("/orders", orderHdl.CreateOrder)
	api.Post("/orders/payments", orderHdl.CreatePayment)
	api.Get("/orders/:customer_id", orderHdl.ListOrdersByCustomer)

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}
