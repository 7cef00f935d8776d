package main

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/quickbill/checkout-server-go/internal/config"
	"github.com/quickbill/checkout-server-go/internal/database"
	"github.com/quickbill/checkout-server-go/internal/handler"
	"github.com/quickbill/checkout-server-go/internal/middleware"
	"github.com/quickbill/checkout-server-go/internal/redis"
	"github.com/quickbill/checkout-server-go/internal/service"
	"github.com/quickbill/checkout-server-go/internal/store"
	"github.com/quickbill/checkout-server-go/internal/validation"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := os.Getenv("FLY_APP_NAME") != ""
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	st, err := openStore(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open store")
	}
	defer st.Close()

	checkoutLimiter := middleware.NewRateLimitMiddleware(cfg.CheckoutRatePerMin).Handler
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected")
		checkoutLimiter = middleware.NewRedisRateLimitMiddleware(redisClient.Client, cfg.CheckoutRatePerMin).Handler
	}

	validate := validation.New()

	sessionService := service.NewSessionService(st)
	gatewayService := service.NewGatewayService(cfg.GatewayBaseURL, cfg.GatewayKeyID, cfg.GatewayKeySecret)
	notifyService := service.NewNotifyService(cfg.NotifyTimeout())
	paymentService := service.NewPaymentService(st, cfg.GatewayKeySecret, notifyService)

	checkoutHandler := handler.NewCheckoutHandler(sessionService, gatewayService, validate)
	paymentHandler := handler.NewPaymentHandler(paymentService, validate)
	billHandler := handler.NewBillHandler(paymentService)

	bodyLimitMiddleware := middleware.NewBodyLimitMiddleware(0)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
	r.Use(bodyLimitMiddleware.Handler)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]any{
			"status":    "ok",
			"timestamp": time.Now().UnixMilli(),
		})
	})

	r.Mount("/v1/checkout", checkoutHandler.Routes(checkoutLimiter))
	r.Mount("/v1/payment", paymentHandler.Routes())
	r.Mount("/v1/bills", billHandler.Routes())

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: 0,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

// openStore picks the bill ledger backend: Postgres when DATABASE_URL
// is set, otherwise JSON snapshots under the data directory.
func openStore(cfg *config.Config) (store.Store, error) {
	if cfg.DatabaseURL != "" {
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DBPingTimeout)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			db.Close()
			return nil, err
		}
		log.Info().Msg("database connected")

		return store.NewPGStore(db.DB)
	}

	log.Info().Str("dir", cfg.DataDir).Msg("using file store")
	return store.NewFileStore(cfg.DataDir)
}

func setLogLevel(level string) {
	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
