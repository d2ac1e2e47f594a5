package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"

	"sejoli-paypal-gateway/internal/client"
	"sejoli-paypal-gateway/internal/config"
	"sejoli-paypal-gateway/internal/repository"
	"sejoli-paypal-gateway/internal/server"
	"sejoli-paypal-gateway/internal/service"
)

func main() {
	// load .env into os.Environ
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg := &config.Config{}
	if err := env.Parse(cfg); err != nil {
		fmt.Printf("Failed to parse config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Printf("Invalid config: %v\n", err)
		os.Exit(1)
	}
	if !cfg.Paypal.Active {
		fmt.Println("Paypal gateway is disabled, nothing to serve")
		os.Exit(0)
	}

	db := client.InitDatabase(cfg.DatabaseURL)
	paypalClient := client.NewPaypalClient(&cfg.Paypal)
	rateClient := client.NewExchangeRateClient(cfg.ExchangeRate.BaseURL)

	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	trxRepo := repository.NewTransactionRepository(db)
	tokenRepo := repository.NewTokenRepository(db)
	affiliateRepo := repository.NewAffiliateRepository(db)
	eventLogRepo := repository.NewEventLogRepository(db)

	tokenCache := service.NewTokenCache(paypalClient, tokenRepo, cfg.Paypal.Mode)

	paymentService := service.NewPaymentService(
		paypalClient, rateClient, tokenCache,
		orderRepo, productRepo, trxRepo, affiliateRepo, eventLogRepo,
		&cfg.Paypal, cfg.BaseURL,
	)
	ipnService := service.NewIPNService(
		orderRepo, productRepo, affiliateRepo, eventLogRepo,
		&cfg.Paypal,
	)

	serverAddr := cfg.HTTP.Host + ":" + cfg.HTTP.Port

	// Init HTTP server
	srv := server.NewServer(paymentService, ipnService)

	log.Println("Starting HTTP server on", serverAddr)
	go func() {
		if err := srv.Start(serverAddr); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	<-sigChan
	log.Println("Signal received, starting graceful shutdown...")

	_, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(); err != nil {
		log.Fatal("HTTP server shutdown error")
	}
}
