package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"thesisflow/internal/app"
	httpapi "thesisflow/internal/http"
	"thesisflow/internal/identity"
	"thesisflow/internal/offer"
	"thesisflow/internal/platform/config"
	"thesisflow/internal/platform/httpserver"
	"thesisflow/internal/platform/logger"
	"thesisflow/internal/platform/metrics"
	"thesisflow/internal/platform/postgres"
	"thesisflow/internal/platform/redis"
	"thesisflow/internal/supervision"
	"thesisflow/internal/thesis"
	"thesisflow/pkg/platform/audit"
	auditmem "thesisflow/pkg/platform/audit/store/memory"
	auditpg "thesisflow/pkg/platform/audit/store/postgres"
	auditworker "thesisflow/pkg/platform/audit/worker"
	"thesisflow/pkg/platform/tx"
)

// main is the composition root: it picks memory or Postgres stores from
// configuration, decorates the identity oracle with the Redis cache,
// and runs the HTTP server and the audit outbox worker side by side.
func main() {
	cfg := config.FromEnv()
	log := logger.New()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	var (
		db         *sql.DB
		stores     app.Stores
		oracle     identity.Oracle
		auditStore audit.Store
		outbox     *auditpg.Store
		appOpts    = []app.Option{app.WithLogger(log), app.WithPrometheusMetrics()}
	)

	if cfg.PostgresDSN != "" {
		var err error
		db, err = postgres.Open(ctx, cfg.PostgresDSN)
		if err != nil {
			return err
		}
		defer db.Close()
		if err := postgres.ApplySchema(ctx, db); err != nil {
			return err
		}
		stores = app.Stores{
			Theses:   thesis.NewPostgres(db),
			Requests: supervision.NewPostgres(db),
			Offers:   offer.NewPostgres(db),
		}
		oracle = identity.NewPostgres(db)
		outbox = auditpg.New(db)
		auditStore = outbox
		appOpts = append(appOpts, app.WithTxRunner(tx.NewRunner(db)))
		log.Info("using postgres stores")
	} else {
		stores = app.Stores{
			Theses:   thesis.NewMemoryStore(),
			Requests: supervision.NewMemoryStore(),
			Offers:   offer.NewMemoryStore(),
		}
		oracle = identity.NewMemoryOracle()
		auditStore = auditmem.New()
		log.Info("using in-memory stores")
	}

	rdb, err := redis.New(cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		defer rdb.Close()
		oracle = identity.NewCached(oracle, rdb.Client, cfg.Redis.RoleTTL, log)
		log.Info("identity lookups cached in redis", "ttl", cfg.Redis.RoleTTL)
	}

	application := app.New(stores, oracle, auditStore, appOpts...)

	handler := httpapi.NewHandler(log, metrics.New(), application.Auditor)
	if db != nil {
		handler.RegisterChecker("postgres", pingChecker{db})
	}
	if rdb != nil {
		handler.RegisterChecker("redis", rdb)
	}
	srv := httpserver.New(cfg.Addr, httpapi.NewRouter(handler))

	group, groupCtx := errgroup.WithContext(ctx)

	group.Go(func() error {
		log.Info("starting thesisflow", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if len(cfg.Kafka.Brokers) > 0 && outbox != nil {
		worker, err := auditworker.New(groupCtx, cfg.Kafka.Brokers, cfg.Kafka.AuditTopic,
			cfg.Kafka.PollInterval, outbox, log)
		if err != nil {
			return err
		}
		group.Go(func() error {
			if err := worker.Run(groupCtx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
		log.Info("audit outbox worker started", "topic", cfg.Kafka.AuditTopic)
	}

	return group.Wait()
}

// pingChecker adapts *sql.DB to the readiness probe.
type pingChecker struct {
	db *sql.DB
}

func (c pingChecker) Health(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
