package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/agent"
	agentstore "github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/agent/postgres"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/auth"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/access"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/events"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/core/money"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/debtlimit"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/observability"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/payment"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/transport"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/transport/rest"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/internal/transport/swagger"
	"github.com/TriThongVoSi/SE104-AgencyManagementSystem-sub002/pkg/logger"
)

const openAPIPath = "api/openapi.yml"

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle access and guardrail requests`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Redis  *redis.Client
	Bus    *events.EventBus
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	deps.Logger.Info("Starting HTTP server", "address", addr, "env", deps.Config.Env)

	server := &http.Server{
		Addr:              addr,
		Handler:           deps.Router,
		ReadHeaderTimeout: deps.Config.Server.ReadHeaderTimeout,
		ReadTimeout:       deps.Config.Server.ReadTimeout,
		WriteTimeout:      deps.Config.Server.WriteTimeout,
		IdleTimeout:       deps.Config.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		deps.Logger.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			deps.Logger.Error("Server shutdown error", "error", err)
		}
		deps.Bus.Wait()
		if deps.Redis != nil {
			if err := deps.Redis.Close(); err != nil {
				deps.Logger.Error("Redis close error", "error", err)
			}
		}
		if err := deps.DB.Close(); err != nil {
			deps.Logger.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			deps.Logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	deps.Logger.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	lg := logger.Configure(os.Stdout, config.Observability.Logging.Level, config.Observability.Logging.Format)

	policy, err := loadPolicy(config.Policy.File)
	if err != nil {
		return nil, err
	}
	decider, err := access.NewDecider(policy)
	if err != nil {
		return nil, fmt.Errorf("invalid access policy: %w", err)
	}

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	gormDB, err := gorm.Open(gormpostgres.New(gormpostgres.Config{Conn: db.DB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to open gorm session: %w", err)
	}

	bus := events.NewEventBus(lg)
	events.NewAuditSubscriber(lg).Register(bus)
	metrics := observability.NewDecisionMetrics()

	repo := agentstore.NewRepository(gormDB)
	var reader agent.Reader = agentstore.NewSnapshotReader(db)

	var cache *redis.Client
	if config.Redis.Enabled {
		cache, err = initRedis(config.Redis)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		cached := agent.NewCachedReader(reader, cache, config.Redis.CacheTTL, lg)
		bus.Subscribe(events.EventTypeDebtChanged, cached.HandleDebtChanged)
		reader = cached
	}

	docs, err := swagger.Load(context.Background(), openAPIPath)
	if err != nil {
		lg.Warn("API description not served", "error", err)
		docs = nil
	}

	coercion := money.Coercion{Strict: config.Guardrail.StrictInput}
	base := transport.NewBaseHandler(lg)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, rest.Routes{
		Config:    config,
		Health:    rest.NewHealthHandler(db.DB, cache),
		Sessions:  auth.NewTokenSessionProvider(config.Security.JWTSecret, config.Security.Issuer, config.Security.TokenLeeway),
		RBAC:      auth.NewRBACAuthorization(decider, bus, metrics, lg),
		Access:    auth.NewHandler(base, decider),
		DebtLimit: debtlimit.NewHandler(base, debtlimit.NewService(reader, repo, bus, metrics, lg), coercion),
		Payment:   payment.NewHandler(base, payment.NewService(reader, repo, bus, metrics, lg), coercion),
		Metrics:   metrics.Handler(),
		Docs:      docs,
		Logger:    lg,
	})

	return &Dependencies{
		Config: config,
		DB:     db,
		Redis:  cache,
		Bus:    bus,
		Router: router,
		Logger: lg,
	}, nil
}

func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

func initRedis(cfg internal.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}
