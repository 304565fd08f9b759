package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	accounthttp "github.com/screentime-labs/tracker/backend/internal/account/http"
	accountrepo "github.com/screentime-labs/tracker/backend/internal/account/repository"
	accountservice "github.com/screentime-labs/tracker/backend/internal/account/service"
	"github.com/screentime-labs/tracker/backend/internal/common/clock"
	"github.com/screentime-labs/tracker/backend/internal/common/config"
	commoncrypto "github.com/screentime-labs/tracker/backend/internal/common/crypto"
	"github.com/screentime-labs/tracker/backend/internal/common/db"
	commonhttp "github.com/screentime-labs/tracker/backend/internal/common/http"
	"github.com/screentime-labs/tracker/backend/internal/common/logger"
	srv "github.com/screentime-labs/tracker/backend/internal/common/server"
	trackerhttp "github.com/screentime-labs/tracker/backend/internal/tracker/http"
	trackerrepo "github.com/screentime-labs/tracker/backend/internal/tracker/repository"
	trackerservice "github.com/screentime-labs/tracker/backend/internal/tracker/service"
	"github.com/screentime-labs/tracker/backend/internal/tracker/ws"
)

func main() {
	log, err := logger.New(os.Getenv("LOG_DIR"), "api", os.Getenv("LOG_LEVEL"))
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("failed to initialize logger: %v\n", err))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := db.RunMigrations(context.Background(), cfg.DatabaseURL); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	pool := db.NewPool(log, cfg.DatabaseURL)
	defer pool.Close()

	realClock := clock.NewRealClock()
	idGenerator := commoncrypto.NewUUIDGenerator()

	accountRepo := accountrepo.NewPgRepository(pool)
	accountService := accountservice.NewAccountService(accountservice.Deps{
		Repo:        accountRepo,
		Hasher:      &commoncrypto.BcryptHasher{},
		IDGenerator: idGenerator,
		Clock:       realClock,
		Log:         log,
	}, cfg.JWTSecret, cfg.TokenTTL)

	hub := ws.NewHub(log)

	trackerRepo := trackerrepo.NewPgRepository(pool)
	trackerService := trackerservice.NewTrackerService(trackerservice.Deps{
		Repo:        trackerRepo,
		IDGenerator: idGenerator,
		Clock:       realClock,
		ResetZone:   cfg.ResetTimezone,
		Events:      hub,
		Log:         log,
	})

	accountHandler := accounthttp.NewHandler(accountService, cfg, log)
	trackerHandler := trackerhttp.NewHandler(trackerService, hub, cfg, log)

	mux := http.NewServeMux()
	mux.Handle("/api/register", accountHandler)
	mux.Handle("/api/login", accountHandler)
	mux.Handle("/api/users", accountHandler)
	mux.Handle("/api/websites", trackerHandler)
	mux.Handle("/api/websites/", trackerHandler)
	mux.Handle("/api/db-status", trackerHandler)
	mux.Handle("/ws/usage", trackerHandler)
	mux.HandleFunc("/health", commonhttp.HealthHandler(log))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/", index)

	rateLimiter := commonhttp.NewPathRateLimiter()
	handler := rateLimiter.Middleware(commonhttp.BuildBaseHandler(log, cfg.AllowedOrigins, mux))

	server := srv.NewServer(srv.DefaultServerConfig(cfg.HTTPPort), handler)

	srv.StartWithGracefulShutdown(server, log, "api", nil)
}

func index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		commonhttp.WriteError(w, http.StatusNotFound, "NOT_FOUND", "not found")
		return
	}
	commonhttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Screen Time Tracker API is running"})
}
