// cmd/api/main.go
// Main entry point for the application
// This file bootstraps all components and starts the server

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/daymatch/daymatch-backend/internal/attraction"
	"github.com/daymatch/daymatch-backend/internal/auth"
	"github.com/daymatch/daymatch-backend/internal/common/database"
	"github.com/daymatch/daymatch-backend/internal/config"
	"github.com/daymatch/daymatch-backend/internal/dates"
	"github.com/daymatch/daymatch-backend/internal/ledger"
	"github.com/daymatch/daymatch-backend/internal/proximity"
	"github.com/daymatch/daymatch-backend/internal/users"
)

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("Starting Daymatch API")
	log.Println("========================================")

	// 1. Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (%v), using environment variables", err)
	}

	// 2. Load and validate configuration
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration validation failed: ", err)
	}
	log.Println("Configuration loaded")

	// 3. Connect to PostgreSQL
	db, err := database.NewPostgresDBFromURL(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL: ", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// 4. Connect to Redis (optional, proximity cache only)
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClientFromURL(cfg.RedisURL)
		if err != nil {
			log.Printf("Redis unavailable (%v), continuing without proximity cache", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("Connected to Redis")
		}
	}

	// 5. Run database migrations
	if err := runMigrations(db); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}
	log.Println("Database migrations completed")

	// 6. Wire components
	txRunner := database.NewTxRunner(db)
	directory := users.NewPostgresDirectory(db)

	tokenManager := auth.NewTokenManager(cfg.JWTSecret, cfg.AccessTokenExpiry)
	authMiddleware := auth.NewMiddleware(tokenManager)

	ledgerRepo := ledger.NewPostgresRepository(db)
	ledgerService := ledger.NewService(ledgerRepo, directory, txRunner, cfg.InitialTokenGrant, cfg.MonthlyReplenishment)
	ledgerHandler := ledger.NewHandler(ledgerService)

	attractionRepo := attraction.NewPostgresRepository(db)
	attractionService := attraction.NewService(attractionRepo, ledgerRepo, directory, txRunner)
	attractionHandler := attraction.NewHandler(attractionService)

	datesRepo := dates.NewPostgresRepository(db)
	datesService := dates.NewService(datesRepo, directory, txRunner)
	datesHandler := dates.NewHandler(datesService)

	proximityClient := proximity.NewClient(cfg.ZipcodeAPIURL, redisClient, cfg.ProximityCacheTTL)
	proximityHandler := proximity.NewHandler(proximityClient)

	// 7. Setup routes
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	ledger.RegisterRoutes(router, ledgerHandler, authMiddleware)
	attraction.RegisterRoutes(router, attractionHandler, authMiddleware)
	dates.RegisterRoutes(router, datesHandler, authMiddleware)
	proximity.RegisterRoutes(router, proximityHandler, authMiddleware)
	log.Println("Routes registered")

	router.Use(loggingMiddleware)
	router.Use(corsMiddleware)

	// 8. Create and start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", srv.Addr)
		log.Printf("Environment: %s", cfg.Environment)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutdown signal received...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Println("Server exited")
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.RequestURI, time.Since(start))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id SERIAL PRIMARY KEY,
            username VARCHAR(100) NOT NULL UNIQUE,
            zipcode VARCHAR(10),
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS ledger_entries (
            id UUID PRIMARY KEY,
            user_id INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            transaction_type VARCHAR(20) NOT NULL,
            token_amount BIGINT NOT NULL,
            amount_usd NUMERIC(10,2),
            description TEXT NOT NULL,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
        )`,

		`CREATE TABLE IF NOT EXISTS attractions (
            id SERIAL PRIMARY KEY,
            user_from INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            user_to INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            day DATE NOT NULL,
            romantic_rating INTEGER NOT NULL DEFAULT 0,
            sexual_rating INTEGER NOT NULL DEFAULT 0,
            friendship_rating INTEGER NOT NULL DEFAULT 0,
            long_term_potential BOOLEAN NOT NULL DEFAULT FALSE,
            intellectual BOOLEAN NOT NULL DEFAULT FALSE,
            emotional BOOLEAN NOT NULL DEFAULT FALSE,
            result BOOLEAN,
            first_message_rights BOOLEAN,
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            CONSTRAINT attractions_no_self CHECK (user_from <> user_to),
            CONSTRAINT attractions_unique_triple UNIQUE (day, user_from, user_to)
        )`,

		`CREATE TABLE IF NOT EXISTS dates (
            id SERIAL PRIMARY KEY,
            user_from INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            user_to INTEGER NOT NULL REFERENCES users(id) ON DELETE CASCADE,
            day DATE NOT NULL,
            time VARCHAR(8),
            location_metadata JSONB,
            user_from_approved BOOLEAN NOT NULL DEFAULT FALSE,
            user_to_approved BOOLEAN NOT NULL DEFAULT FALSE,
            status VARCHAR(20) NOT NULL DEFAULT 'unscheduled',
            created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
            CONSTRAINT dates_no_self CHECK (user_from <> user_to)
        )`,

		// One date per unordered pair and day, regardless of direction.
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_dates_pair_day
            ON dates (LEAST(user_from, user_to), GREATEST(user_from, user_to), day)`,

		`CREATE INDEX IF NOT EXISTS idx_ledger_entries_user_id ON ledger_entries(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_attractions_pair ON attractions(user_from, user_to)`,
		`CREATE INDEX IF NOT EXISTS idx_dates_user_from ON dates(user_from)`,
		`CREATE INDEX IF NOT EXISTS idx_dates_user_to ON dates(user_to)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			if !strings.Contains(err.Error(), "already exists") {
				return fmt.Errorf("migration %d failed: %w", i+1, err)
			}
		}
	}

	return nil
}
