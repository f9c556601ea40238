package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/calvinwijaya/casino-night/config"
	"github.com/calvinwijaya/casino-night/internal/api"
	"github.com/calvinwijaya/casino-night/internal/db"
	"github.com/calvinwijaya/casino-night/internal/store"
	"github.com/calvinwijaya/casino-night/pkg/logger"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

func main() {
	// Parse command line flags
	var (
		configPath = flag.String("config", "", "Path to config file (default: ./config.yaml or ./config/config.yaml)")
		noHistory  = flag.Bool("no-history", false, "Run without the round history store")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// Logger is not configured yet
		bootLog := logger.New("info", true)
		bootLog.Fatal().Err(err).Msg("Failed to load config")
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	log.Info().
		Str("addr", cfg.Server.Addr()).
		Int("starting_balance", cfg.Table.StartingBalance).
		Int("max_wager", cfg.Table.MaxWager).
		Msg("Starting casino night server")

	// Initialize the store
	sessionStore := store.NewMemoryStore()
	log.Info().Msg("In-memory session store initialized")

	// Initialize the round history
	var database *db.Database
	if !*noHistory {
		database, err = db.NewDatabase(log)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to initialize round history, continuing without it")
			database = nil
		} else {
			log.Info().Msg("Round history initialized")
			defer database.Close()
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize WebSocket hub
	hub := api.NewHub(log)
	go hub.Run(ctx)
	log.Info().Msg("WebSocket hub started")

	// Initialize API handlers
	handlers := api.NewHandlers(sessionStore, database, hub, log, api.Options{
		StartingBalance: cfg.Table.StartingBalance,
		MaxWager:        cfg.Table.MaxWager,
		HistoryLimit:    cfg.History.Limit,
	})

	// Set up router
	r := mux.NewRouter()
	handlers.RegisterRoutes(r)
	r.Use(requestLogger(log))

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.Server.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})

	// Create server
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      c.Handler(r),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		log.Info().Str("addr", srv.Addr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Set up graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a termination signal
	<-stop
	log.Info().Msg("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	cancel()

	log.Info().Msg("Server exited")
}

// statusRecorder captures the status code written by a handler
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestLogger logs every request with its status and latency
func requestLogger(log zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// The websocket upgrade needs the raw ResponseWriter to hijack
			if r.URL.Path == "/ws" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("latency", time.Since(start)).
				Msg("request")
		})
	}
}
