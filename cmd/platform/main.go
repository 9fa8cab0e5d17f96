package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/strokewatch/platform/internal/adapters/his"
	"github.com/strokewatch/platform/internal/alert"
	"github.com/strokewatch/platform/internal/coordination"
	"github.com/strokewatch/platform/internal/dashboard"
	"github.com/strokewatch/platform/internal/fast"
	"github.com/strokewatch/platform/internal/identity"
	"github.com/strokewatch/platform/internal/messaging"
	"github.com/strokewatch/platform/internal/record"
	"github.com/strokewatch/platform/internal/risk"
	"github.com/strokewatch/platform/internal/shared/auth"
	"github.com/strokewatch/platform/internal/shared/config"
	"github.com/strokewatch/platform/internal/shared/database"
	"github.com/strokewatch/platform/internal/shared/events"
	"github.com/strokewatch/platform/internal/shared/metrics"
	secmiddleware "github.com/strokewatch/platform/internal/shared/middleware"
	"github.com/strokewatch/platform/internal/shared/types"
	"github.com/strokewatch/platform/internal/sharing"
)

// App holds all application dependencies
type App struct {
	Config *config.Config
	DB     *database.DB
	Bus    *events.Bus
}

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	app := &App{Config: cfg}

	// Initialize database (optional - fall back to in-memory stores)
	db, err := database.New(ctx, cfg.Database)
	if err != nil {
		fmt.Printf("Warning: Database not available: %v\n", err)
		fmt.Println("Running with in-memory stores...")
	} else {
		app.DB = db
		defer db.Close()

		if err := database.Migrate(ctx, db.Pool); err != nil {
			fmt.Printf("Warning: Migration failed: %v\n", err)
		}
	}

	// Initialize event bus (optional - skip if not available)
	bus, err := events.NewBus(ctx, cfg.EventStore)
	if err != nil {
		fmt.Printf("Warning: EventStoreDB not available: %v\n", err)
		fmt.Println("Running without event streaming...")
	} else {
		app.Bus = bus
		defer bus.Close()
		fmt.Println("EventStoreDB event bus initialized")
	}

	// Stores: PostgreSQL when available, in-memory otherwise
	var (
		users     identity.Repository
		notes     identity.NoteStore
		records   record.Store
		history   risk.History
		screens   fast.Store
		registry  sharing.Registry
		alerts    alert.Store
		msgStore  messaging.Store
	)
	if app.DB != nil {
		users = identity.NewPostgresRepository(app.DB.Pool)
		notes = identity.NewPostgresNoteStore(app.DB.Pool)
		records = record.NewPostgresStore(app.DB.Pool)
		history = risk.NewPostgresHistory(app.DB.Pool)
		screens = fast.NewPostgresStore(app.DB.Pool)
		registry = sharing.NewPostgresRegistry(app.DB.Pool)
		alerts = alert.NewPostgresStore(app.DB.Pool)
		msgStore = messaging.NewPostgresStore(app.DB.Pool)
	} else {
		users = identity.NewMemoryRepository()
		notes = identity.NewMemoryNoteStore()
		records = record.NewMemoryStore()
		history = risk.NewMemoryHistory()
		screens = fast.NewMemoryStore()
		registry = sharing.NewMemoryRegistry()
		alerts = alert.NewMemoryStore()
		msgStore = messaging.NewMemoryStore()
	}

	policy := risk.NewPolicy(cfg.Policy)
	dispatcher := alert.NewDispatcher()
	messenger := messaging.NewService(msgStore)

	var publisher coordination.Publisher
	if app.Bus != nil {
		publisher = app.Bus
	}

	coordinator := coordination.NewService(
		users, records, history, policy, screens,
		registry, alerts, dispatcher, messenger, publisher,
	)
	dashboards := dashboard.NewService(users, records, history, policy, registry, alerts, messenger)

	// Hospital system import adapter (optional)
	if cfg.HIS.Enabled {
		adapter := his.New(cfg.HIS, users, func(ctx context.Context, patientID types.ID, in coordination.SnapshotInput, source string) error {
			_, _, err := coordinator.SubmitSnapshot(ctx, patientID, in, source)
			return err
		})
		if err := adapter.Start(ctx); err != nil {
			fmt.Printf("Warning: Hospital import adapter failed to start: %v\n", err)
		} else {
			fmt.Println("Hospital import adapter started")
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				adapter.Stop(stopCtx)
			}()
		}
	}

	identityHandler := identity.NewHandler(users, notes, cfg.Auth)
	coordinationHandler := coordination.NewHandler(coordinator, records, history, screens, registry)
	alertHandler := alert.NewHandler(alerts)
	messagingHandler := messaging.NewHandler(messenger)
	dashboardHandler := dashboard.NewHandler(dashboards, policy, registry)

	limiter := secmiddleware.NewIPRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(secmiddleware.SecurityHeaders)
	r.Use(secmiddleware.InputSanitizer)
	r.Use(limiter.Middleware)
	r.Use(metrics.Middleware)
	r.Use(corsMiddleware)

	// Health checks (unauthenticated)
	r.Get("/health", healthHandler(app))
	r.Get("/ready", readyHandler(app))
	r.Handle("/metrics", metrics.Handler())

	// API info
	r.Get("/", infoHandler)

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/auth", identityHandler.PublicRoutes())

		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(cfg.Auth))

			r.Mount("/users", identityHandler.Routes())
			r.Mount("/care", coordinationHandler.Routes())
			r.Mount("/alerts", alertHandler.Routes())
			r.Mount("/messaging", messagingHandler.Routes())
			r.Mount("/dashboard", dashboardHandler.Routes())
		})
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown
	done := make(chan bool)
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		fmt.Println("\nShutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			fmt.Printf("Server shutdown error: %v\n", err)
		}
		close(done)
	}()

	fmt.Println("============================================")
	fmt.Println("StrokeWatch Care Platform")
	fmt.Println("============================================")
	fmt.Printf("Environment:    %s\n", cfg.Server.Env)
	fmt.Printf("Server:         http://localhost:%d\n", cfg.Server.Port)
	fmt.Printf("API:            http://localhost:%d/api/v1\n", cfg.Server.Port)
	fmt.Printf("Health:         http://localhost:%d/health\n", cfg.Server.Port)
	fmt.Printf("High threshold: %.1f\n", cfg.Policy.HighRiskThreshold)
	fmt.Printf("EventStoreDB:   %s:%d\n", cfg.EventStore.Host, cfg.EventStore.Port)
	fmt.Println("============================================")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(1)
	}

	<-done
	fmt.Println("Server stopped")
}

func infoHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"name":    "StrokeWatch Care Platform",
		"version": "0.1.0",
		"docs":    "/api/v1",
	})
}

func healthHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status": "healthy",
		})
	}
}

func readyHandler(app *App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{
			"server": "ready",
		}

		if app.DB != nil {
			if err := app.DB.Health(r.Context()); err != nil {
				checks["database"] = "not ready: " + err.Error()
			} else {
				checks["database"] = "ready"
			}
		} else {
			checks["database"] = "not configured"
		}

		if app.Bus != nil {
			if err := app.Bus.Health(); err != nil {
				checks["eventstore"] = "not ready: " + err.Error()
			} else {
				checks["eventstore"] = "ready"
			}
		} else {
			checks["eventstore"] = "not configured"
		}

		allReady := true
		for _, status := range checks {
			if status != "ready" && status != "not configured" {
				allReady = false
				break
			}
		}

		status := http.StatusOK
		if !allReady {
			status = http.StatusServiceUnavailable
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]any{
			"status": map[bool]string{true: "ready", false: "not ready"}[allReady],
			"checks": checks,
		})
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
