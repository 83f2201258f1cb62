package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	authorization "tracechain/contexts/identity-access/authorization-service"
	authzpostgres "tracechain/contexts/identity-access/authorization-service/adapters/postgres"
	redisadapter "tracechain/contexts/identity-access/authorization-service/adapters/redis"
	authzports "tracechain/contexts/identity-access/authorization-service/ports"
	traceservice "tracechain/contexts/provenance/trace-service"
	tracepostgres "tracechain/contexts/provenance/trace-service/adapters/postgres"
	traceworkers "tracechain/contexts/provenance/trace-service/application/workers"
	"tracechain/internal/platform/config"
	"tracechain/internal/platform/db"
	"tracechain/internal/platform/httpserver"
	"tracechain/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	redis    *redis.Client
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  traceworkers.OutboxRelay
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	authzRepo := authzpostgres.NewRepository(pg.DB, logger)
	if err := authzRepo.Migrate(); err != nil {
		_ = pg.Close()
		return nil, err
	}

	var redisClient *redis.Client
	var membershipCache authzports.MembershipCache
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		membershipCache = redisadapter.NewMembershipCache(redisClient)
	}

	authzModule := authorization.NewModule(authorization.Dependencies{
		Repo:     authzRepo,
		Cache:    membershipCache,
		Clock:    authzpostgres.SystemClock{},
		AdminID:  cfg.AdminAccountID,
		CacheTTL: 5 * time.Minute,
		Logger:   logger,
	})

	traceRepo := tracepostgres.NewRepository(pg.DB, tracepostgres.UUIDGenerator{}, logger)
	if err := traceRepo.Migrate(); err != nil {
		_ = pg.Close()
		return nil, err
	}

	traceModule := traceservice.NewModule(traceservice.Dependencies{
		Repo:             traceRepo,
		Idempotency:      traceRepo,
		Authorizer:       authzModule.CheckAccess,
		Clock:            tracepostgres.SystemClock{},
		MaxMetadataBytes: cfg.MaxMetadataBytes,
		RepeatLimit:      cfg.RepeatLimit,
		IdempotencyTTL:   7 * 24 * time.Hour,
		Logger:           logger,
	})

	server := httpserver.New(traceModule, authzModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		redis:    redisClient,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	kafka, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		return nil, err
	}

	repo := tracepostgres.NewRepository(pg.DB, tracepostgres.UUIDGenerator{}, logger)
	return &WorkerApp{
		postgres: pg,
		outboxRelay: traceworkers.OutboxRelay{
			Outbox:    repo,
			Publisher: kafka,
			Clock:     tracepostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.redis != nil {
		_ = a.redis.Close()
	}
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
	)

	for {
		if err := w.outboxRelay.RunOnce(ctx); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}
