package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/uptrace/bun"

	"github.com/logo-playground/api/internal/auth"
	"github.com/logo-playground/api/internal/config"
	"github.com/logo-playground/api/internal/database"
	httpServer "github.com/logo-playground/api/internal/http"
	"github.com/logo-playground/api/internal/logging"
	"github.com/logo-playground/api/internal/memstore"
	"github.com/logo-playground/api/internal/program"
	"github.com/logo-playground/api/internal/user"
)

// @title           Logo Playground API
// @version         1.0
// @description     Backend for storing and sharing Logo programs with per-program visibility, behind session authentication.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Driver,
		"session_store", cfg.Session.Store,
	)

	// Initialize the database connection when any component persists to Postgres
	var db *bun.DB
	if cfg.Storage.Driver == config.DriverPostgres || cfg.Session.Store == config.DriverPostgres {
		db, err = initDB(cfg.Database)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer db.Close()
	}

	// Initialize repositories
	var userRepo auth.UserRepository
	var programRepo program.Repository
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		userRepo = user.NewRepository(db)
		programRepo = program.NewPostgresRepository(db)
	case config.DriverMemory:
		userRepo = memstore.NewUserStore()
		programRepo = memstore.NewProgramStore()
	}

	// Initialize the session store
	var sessionRepo auth.SessionRepository
	switch cfg.Session.Store {
	case config.DriverRedis:
		redisClient, err := initRedis(cfg.Redis)
		if err != nil {
			return fmt.Errorf("failed to initialize Redis: %w", err)
		}
		defer redisClient.Close()
		sessionRepo = auth.NewRedisSessionRepository(redisClient)
	case config.DriverPostgres:
		sessionRepo = auth.NewRepository(db)
	case config.DriverMemory:
		sessionRepo = memstore.NewSessionStore()
	}

	// Initialize services
	sessionManager := auth.NewSessionManager(sessionRepo, cfg.Session.Duration)
	authService := auth.NewService(userRepo)
	programService := program.NewService(programRepo)

	// Initialize HTTP handlers
	authHandler := auth.NewHandler(
		authService,
		sessionManager,
		logger,
		!cfg.Server.IsDevelopment(), // isProduction
		cfg.Session.Duration,
	)
	authMiddleware := auth.NewMiddleware(sessionManager)
	programHandler := program.NewHandler(programService, logger)

	// Initialize router
	router := httpServer.NewRouter(cfg, authHandler, authMiddleware, programHandler, logger)

	// Initialize HTTP server
	serverAddr := ":" + cfg.Server.Port
	server := httpServer.NewServer(
		serverAddr,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	// Wait for interrupt signal or server error
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		// Graceful shutdown with timeout
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// initDB initializes the database connection and returns a Bun DB instance
func initDB(cfg config.DatabaseConfig) (*bun.DB, error) {
	sqlDB, err := sql.Open("postgres", cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return database.NewBunDB(sqlDB), nil
}

// initRedis initializes the Redis client
func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}

	return client, nil
}
