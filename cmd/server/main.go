// Package main is the entry point of the campus presence service.
//
// The service keeps an append-only log of building entries and exits for
// students and employees. Whether someone is currently inside is always
// derived from the two most recent movements, never stored.
//
// The layout follows Clean Architecture and DDD:
//   - Domain: presence derivation, fuzzy identity matching, sessions
//   - Application: command and query handlers
//   - Infrastructure: PostgreSQL stores, Redis caches, background jobs
//   - Interface: the REST API
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/campus-hub/campus-presence/config"
	"github.com/campus-hub/campus-presence/internal/application/command"
	"github.com/campus-hub/campus-presence/internal/application/query"
	"github.com/campus-hub/campus-presence/internal/domain/building"
	"github.com/campus-hub/campus-presence/internal/domain/operator"
	"github.com/campus-hub/campus-presence/internal/domain/presence"
	"github.com/campus-hub/campus-presence/internal/domain/search"
	"github.com/campus-hub/campus-presence/internal/domain/shared"
	"github.com/campus-hub/campus-presence/internal/infrastructure/persistence/postgres"
	"github.com/campus-hub/campus-presence/internal/infrastructure/persistence/redis"
	"github.com/campus-hub/campus-presence/internal/infrastructure/scheduler"
	"github.com/campus-hub/campus-presence/internal/infrastructure/scheduler/jobs"
	httpserver "github.com/campus-hub/campus-presence/internal/interface/http"
	"github.com/campus-hub/campus-presence/pkg/logger"
	"github.com/campus-hub/campus-presence/pkg/sanitize"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION & LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(os.Stdout, logger.ParseLevel(cfg.Log.Level))
	log.Info("starting campus presence service",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 2. POSTGRESQL
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("connecting to database")
	dbConn, err := postgres.NewConnectionFromURL(ctx, cfg.Database.URL, postgres.PoolSettings{
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection")
		dbConn.Close()
	}()

	if err := dbConn.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	log.Info("ensuring database schema")
	if err := postgres.EnsureSchema(ctx, dbConn); err != nil {
		return fmt.Errorf("failed to ensure schema: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 3. REDIS (optional accelerator)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	if !cfg.Redis.Disabled {
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("redis unavailable, caching disabled", logger.Err(err))
			redisCache = nil
		} else {
			defer redisCache.Close()
			log.Info("redis connection established")
		}
	}

	// Both caches are no-ops when built on a nil base cache.
	sessionCache := redis.NewSessionCache(redisCache)
	occupancyCache := redis.NewOccupancyCache(redisCache, cfg.Redis.OccupancyTTL)

	// ─────────────────────────────────────────────────────────────────────────
	// 4. REPOSITORIES & STORES
	// ─────────────────────────────────────────────────────────────────────────
	studentStore, err := postgres.NewPersonStore(dbConn, presence.KindStudent)
	if err != nil {
		return fmt.Errorf("failed to create student store: %w", err)
	}
	employeeStore, err := postgres.NewPersonStore(dbConn, presence.KindEmployee)
	if err != nil {
		return fmt.Errorf("failed to create employee store: %w", err)
	}
	stores := presence.StoreSet{
		presence.KindStudent:  studentStore,
		presence.KindEmployee: employeeStore,
	}

	buildingRepo := postgres.NewBuildingRepository(dbConn)
	operatorRepo := postgres.NewOperatorRepository(dbConn)
	sessionRepo := postgres.NewSessionRepository(dbConn)

	if err := seedBootstrapOperator(ctx, log, buildingRepo, operatorRepo); err != nil {
		return fmt.Errorf("failed to seed bootstrap operator: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	matcher := search.NewMatcher(search.Thresholds{
		Identifier: cfg.Search.IdentifierThreshold,
		SingleName: cfg.Search.SingleNameThreshold,
		FullName:   cfg.Search.FullNameThreshold,
	})

	registerPerson := command.NewRegisterPersonHandler(stores, buildingRepo, occupancyCache, log)
	togglePresence := command.NewTogglePresenceHandler(stores, occupancyCache, log)
	registerBuilding := command.NewRegisterBuildingHandler(buildingRepo, log)
	login := command.NewLoginHandler(operatorRepo, sessionRepo, sessionCache, cfg.Auth.SessionLifetime, log)
	logout := command.NewLogoutHandler(sessionRepo, sessionCache, log)

	listPersons := query.NewListPersonsHandler(stores, matcher, log)
	occupancy := query.NewOccupancyHandler(stores, buildingRepo, occupancyCache, log)
	listBuildings := query.NewListBuildingsHandler(buildingRepo)
	validateSession := query.NewValidateSessionHandler(
		sessionRepo, sessionCache, cfg.Auth.SessionLifetime, cfg.Auth.RenewalWindow, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 6. BACKGROUND JOBS
	// ─────────────────────────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		sched = scheduler.New(log, cfg.Scheduler.JobTimeout)
		if err := sched.Register(
			jobs.NewCleanupSessions(sessionRepo, log),
			scheduler.Every(cfg.Scheduler.SessionSweepInterval),
		); err != nil {
			return fmt.Errorf("failed to register cleanup job: %w", err)
		}
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimit
	httpConfig.SessionCookieName = cfg.Auth.CookieName
	httpConfig.SecureCookies = cfg.IsProduction()

	healthCheckers := map[string]httpserver.HealthChecker{
		"postgres": dbConn.Ping,
	}
	if redisCache != nil {
		healthCheckers["redis"] = redisCache.Ping
	}

	server := httpserver.NewServer(httpConfig, httpserver.Dependencies{
		RegisterPerson:   registerPerson,
		TogglePresence:   togglePresence,
		RegisterBuilding: registerBuilding,
		Login:            login,
		Logout:           logout,
		ListPersons:      listPersons,
		Occupancy:        occupancy,
		ListBuildings:    listBuildings,
		ValidateSession:  validateSession,
		DefaultPageSize:  cfg.Search.DefaultLimit,
		HealthCheckers:   healthCheckers,
		Logger:           log,
	})

	errCh := server.StartAsync()

	// ─────────────────────────────────────────────────────────────────────────
	// 8. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			log.Error("http server failed", logger.Err(err))
			return err
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	var shutdownErr error

	log.Info("stopping HTTP server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", logger.Err(err))
		shutdownErr = err
	}

	if sched != nil {
		log.Info("stopping scheduler")
		if err := sched.Stop(); err != nil {
			log.Error("failed to stop scheduler", logger.Err(err))
			shutdownErr = err
		}
	}

	if shutdownErr != nil {
		log.Warn("shutdown completed with errors")
	} else {
		log.Info("shutdown completed")
	}

	return nil
}

// seedBootstrapOperator creates an initial operator account (and its building)
// from BOOTSTRAP_OPERATOR_* environment variables, so a fresh deployment has a
// way to log in. A no-op when the variables are unset or the account exists.
func seedBootstrapOperator(
	ctx context.Context,
	log *logger.Logger,
	buildings building.Repository,
	operators operator.Repository,
) error {
	username := os.Getenv("BOOTSTRAP_OPERATOR_USERNAME")
	password := os.Getenv("BOOTSTRAP_OPERATOR_PASSWORD")
	buildingName := os.Getenv("BOOTSTRAP_OPERATOR_BUILDING")
	if username == "" || password == "" || buildingName == "" {
		return nil
	}

	if _, err := operators.GetByUsername(ctx, username); err == nil {
		return nil
	} else if !shared.IsNotFound(err) {
		return err
	}

	// Catalog names are stored sanitized; match what registrations check.
	b, err := building.New(sanitize.Sanitize(buildingName))
	if err != nil {
		return err
	}
	if err := buildings.Create(ctx, b); err != nil && !errors.Is(err, shared.ErrAlreadyExists) {
		return err
	}

	op, err := operator.New(username, password, b.Name)
	if err != nil {
		return err
	}
	if err := operators.Create(ctx, op); err != nil && !errors.Is(err, shared.ErrAlreadyExists) {
		return err
	}

	log.Info("bootstrap operator created",
		logger.Operator(username),
		logger.Building(b.Name),
	)
	return nil
}
