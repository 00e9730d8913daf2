package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/feiralivre/storefront/internal/api"
	"github.com/feiralivre/storefront/internal/cart"
	"github.com/feiralivre/storefront/internal/checkout"
	"github.com/feiralivre/storefront/internal/httpapi"
	"github.com/feiralivre/storefront/internal/session"
	"github.com/feiralivre/storefront/pkg/logger"
)

type Config struct {
	HTTPPort        string
	BackendBaseURL  string
	RedisAddr       string
	Env             string
	LogLevel        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	PollInterval    time.Duration
}

func loadConfig() *Config {
	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		BackendBaseURL:  getEnv("BACKEND_BASE_URL", "http://localhost:3000"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		Env:             getEnv("ENV", "development"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		PollInterval:    5 * time.Second,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	cfg := loadConfig()

	log := logger.New(logger.Options{
		Service: "storefront",
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
	})

	// Credentials live in Redis when an address is configured, so a restart
	// resumes the same session; otherwise they stay in memory.
	var creds session.CredentialStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer rdb.Close()
		creds = session.NewRedisStore(rdb, "storefront:credential")
		log.Info("using redis credential store", "addr", cfg.RedisAddr)
	} else {
		creds = session.NewMemoryStore()
	}

	client := api.New(cfg.BackendBaseURL, session.NewTokenSource(creds, log),
		api.WithTimeout(cfg.RequestTimeout))

	sessions := session.NewProvider(client, creds, log)

	bgCtx, bgCancel := context.WithCancel(context.Background())
	defer bgCancel()

	// Resume never blocks startup on the backend: an unreachable or expired
	// credential just settles the session as anonymous.
	if err := sessions.Resume(bgCtx); err != nil {
		log.Warn("session resume failed", "error", err)
	}

	cartStore := cart.NewStore(client, sessions, log)
	go cartStore.Start(bgCtx)

	flow := checkout.NewOrchestrator(client, cartStore, log)

	orders := httpapi.NewOrderHandler(client, log, cfg.RequestTimeout, cfg.PollInterval)
	defer orders.Close()

	router := httpapi.NewRouter(httpapi.Handlers{
		Session:  httpapi.NewSessionHandler(sessions, cfg.RequestTimeout),
		Cart:     httpapi.NewCartHandler(cartStore, cfg.RequestTimeout),
		Checkout: httpapi.NewCheckoutHandler(flow, cfg.RequestTimeout),
		Order:    orders,
	}, cfg.RequestTimeout)

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("storefront starting", "port", cfg.HTTPPort, "backend", cfg.BackendBaseURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	bgCancel()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	log.Info("server exited")
}
