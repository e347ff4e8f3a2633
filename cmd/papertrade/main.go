package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/tberndt/papertrade/internal/auth"
	"github.com/tberndt/papertrade/internal/config"
	"github.com/tberndt/papertrade/internal/exchange"
	"github.com/tberndt/papertrade/internal/handler"
	"github.com/tberndt/papertrade/internal/service"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Set up the logger with the configured level.
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	// Exchange state: books, ledger, stores, matcher.
	x := exchange.New(logger)

	// Auth.
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)

	// Services.
	accountSvc := service.NewAccountService(x.Accounts, x.Ledger, x.Symbols, tokens)
	orderSvc := service.NewOrderService(x.Matcher, x.Ledger, x.Orders, x.Symbols, cfg.StrictSymbols)
	portfolioSvc := service.NewPortfolioService(x.Ledger)
	stockSvc := service.NewStockService(x.Executions, x.Books, x.Symbols, cfg.BookDepth)
	adminSvc := service.NewAdminService(x, logger)

	// Router.
	router := handler.NewRouter(accountSvc, orderSvc, portfolioSvc, stockSvc, adminSvc, tokens, logger)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info().Str("addr", addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("server error")
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info().Str("signal", sig.String()).Msg("shutdown signal received")

	// Graceful shutdown.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}

	logger.Info().Msg("server stopped")
}
