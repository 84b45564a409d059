package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fjod/go_cart/storefront/internal/config"
	"github.com/fjod/go_cart/storefront/internal/fakeshop"
	"github.com/fjod/go_cart/storefront/internal/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewDefault("fakeshop").WithError(err).Fatal("failed to load config")
	}
	log := logger.New("fakeshop", cfg.LogLevel, cfg.LogFormat, os.Stderr)

	shop, err := fakeshop.NewServer(
		fakeshop.WithSecret(cfg.FakeShopSecret),
		fakeshop.WithTokenTTL(cfg.FakeShopTTL),
	)
	if err != nil {
		log.WithError(err).Fatal("failed to seed fake shop")
	}

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.Compress(5))
	r.Mount("/", shop)

	srv := &http.Server{
		Addr:         ":" + cfg.FakeShopPort,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("fake shop starting on :%s (login %s / %s)", cfg.FakeShopPort, fakeshop.SeedEmail, fakeshop.SeedPassword)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Fatal("server forced to shutdown")
	}

	log.Info("server exited")
}
