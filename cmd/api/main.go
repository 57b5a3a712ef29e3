package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/repair-desk/internal/api/http"
	"github.com/spec-kit/repair-desk/internal/api/http/handlers"
	"github.com/spec-kit/repair-desk/internal/auth"
	"github.com/spec-kit/repair-desk/internal/config"
	"github.com/spec-kit/repair-desk/internal/events"
	"github.com/spec-kit/repair-desk/internal/observability"
	"github.com/spec-kit/repair-desk/internal/persistence"
	"github.com/spec-kit/repair-desk/internal/repository"
	"github.com/spec-kit/repair-desk/internal/service"
	"github.com/spec-kit/repair-desk/internal/worker"
)

func main() {
	var (
		envFiles      []string
		addr          string
		migrationsDir string
		hashPassword  string
	)
	flags := pflag.NewFlagSet("repair-desk", pflag.ExitOnError)
	flags.StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env if present)")
	flags.StringVar(&addr, "addr", "", "listen address, overrides APP_HOST/APP_PORT")
	flags.StringVar(&migrationsDir, "migrations", persistence.DefaultMigrationsDir, "directory of SQL migrations")
	flags.StringVar(&hashPassword, "hash-password", "", "print a bcrypt hash for AUTH_OPERATOR_PASSWORD_HASH and exit")
	_ = flags.Parse(os.Args[1:])

	cfg, err := config.Load(envFiles...)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if hashPassword != "" {
		hash, err := auth.HashPassword(hashPassword, cfg.Auth.BcryptCost)
		if err != nil {
			log.Fatalf("failed to hash password: %v", err)
		}
		fmt.Println(hash)
		return
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshots, dependencies, closeStores := openSnapshotStore(ctx, cfg, migrationsDir, logger)
	defer closeStores()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher()
	worker.StartNotificationWorker(dispatcher, logger, cfg.Notification)

	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:   repository.NewTicketRepository(),
		SnapshotRepo: snapshots,
		Dispatcher:   dispatcher,
		Metrics:      metrics,
		Logger:       logger.Named("desk"),
	})
	if err := ticketService.Restore(ctx); err != nil {
		logger.Fatal("failed to restore desk", zap.Error(err))
	}

	authService := service.NewAuthService(*cfg, logger.Named("auth"))
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), cfg.Auth.Enabled())
	if !cfg.Auth.Enabled() {
		logger.Warn("AUTH_OPERATOR_PASSWORD_HASH not set; ticket routes are open")
	}

	app := fiber.New(fiber.Config{AppName: cfg.App.Name, DisableStartupMessage: true})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, dependencies),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Auth:           handlers.NewAuthHandler(authService),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	if addr == "" {
		addr = cfg.App.Addr()
	}
	go func() {
		logger.Info("listening", zap.String("addr", addr), zap.String("snapshot_backend", cfg.Snapshot.Backend))
		if err := app.Listen(addr); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

// openSnapshotStore connects the configured snapshot backend and returns the
// dependencies the readiness probe should check.
func openSnapshotStore(ctx context.Context, cfg *config.Config, migrationsDir string, logger *zap.Logger) (repository.SnapshotRepository, map[string]handlers.Pinger, func()) {
	deps := map[string]handlers.Pinger{}

	switch cfg.Snapshot.Backend {
	case config.SnapshotPostgres:
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), migrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		deps["postgres"] = pg
		return repository.NewPostgresSnapshotRepository(pg.PoolHandle()), deps, pg.Close

	case config.SnapshotRedis:
		rdb, err := persistence.NewRedis(ctx, cfg.Redis, true, logger)
		if err != nil {
			logger.Fatal("failed to connect redis", zap.Error(err))
		}
		deps["redis"] = rdb
		return repository.NewRedisSnapshotRepository(rdb.Client, cfg.Redis.Key), deps, rdb.Close

	default:
		logger.Info("desk state is kept in memory only")
		return repository.NewNoopSnapshotRepository(), deps, func() {}
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
