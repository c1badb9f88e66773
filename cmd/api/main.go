package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/accounthub/internal/config"
	"github.com/geocoder89/accounthub/internal/db"
	httpx "github.com/geocoder89/accounthub/internal/http"
	"github.com/geocoder89/accounthub/internal/observability"
	"github.com/geocoder89/accounthub/internal/redisclient"
	"github.com/geocoder89/accounthub/internal/security"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)

	// tracing
	shutdownTracer, err := observability.InitTracer(context.Background(), "accounthub", cfg.OTLPEndpoint)

	if err != nil {
		log.Warn("tracing disabled", "err", err)
		shutdownTracer = func(context.Context) error { return nil }
	}

	// database
	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("could not connect to database", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	// apply the schema, then seed built-in roles and the bootstrap admin account
	seedCtx, cancelSeed := config.WithTimeout(10 * time.Second)

	if err := db.EnsureSchema(seedCtx, pool); err != nil {
		cancelSeed()
		log.Error("could not apply schema", "err", err)
		os.Exit(1)
	}

	if err := db.EnsureRoles(seedCtx, pool); err != nil {
		cancelSeed()
		log.Error("could not seed roles", "err", err)
		os.Exit(1)
	}

	hasher := security.NewHasher(cfg.BcryptCost)

	if err := db.EnsureAdminUser(seedCtx, pool, cfg, hasher); err != nil {
		cancelSeed()
		log.Error("could not seed admin user", "err", err)
		os.Exit(1)
	}
	cancelSeed()

	// redis is optional; without it login throttling is off
	var redisClient *redisclient.Client

	if cfg.RedisAddr != "" {
		redisClient = redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})

		pingCtx, cancelPing := config.WithTimeout(2 * time.Second)

		if err := redisClient.Ping(pingCtx); err != nil {
			log.Warn("redis unreachable, continuing without throttle", "err", err)
		}
		cancelPing()
	}

	reg := prometheus.NewRegistry()

	// set up routers with the log
	router := httpx.NewRouter(log, pool, redisClient, reg, cfg)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// start server using a concurrent go-routine driven anonymous function.

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}

		if redisClient != nil {
			_ = redisClient.Close()
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}
