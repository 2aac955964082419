// mailroom is the email delivery service: it accepts send submissions,
// queues them durably, dispatches through the provider, and tracks
// delivery callbacks.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/hirelane/mailroom/internal/api"
	"github.com/hirelane/mailroom/internal/config"
	"github.com/hirelane/mailroom/internal/email"
	"github.com/hirelane/mailroom/internal/queue"
	"github.com/hirelane/mailroom/internal/storage/postgres"
	"github.com/hirelane/mailroom/internal/tasks"
	"github.com/hirelane/mailroom/internal/templates"
	"github.com/hirelane/mailroom/internal/webhook"
	"github.com/hirelane/mailroom/pkg/cache"
	"github.com/hirelane/mailroom/pkg/db"
	"github.com/hirelane/mailroom/pkg/health"
	"github.com/hirelane/mailroom/pkg/job"
	"github.com/hirelane/mailroom/pkg/logger"
	"github.com/hirelane/mailroom/pkg/mailer/resend"
	"github.com/hirelane/mailroom/pkg/redis"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("service exited with error", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.NewWithSentry(cfg.Sentry)

	pool, err := db.Connect(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool, postgres.Migrations(), cfg.DB.MigrationsTable, log); err != nil {
		return err
	}

	// Template reads go through a cache; Redis when configured, in-process
	// otherwise.
	templateCache, closeCache, err := newTemplateCache(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer closeCache()

	templateStore := email.NewCachedTemplateStore(postgres.NewTemplateStore(pool), templateCache)
	if err := templates.Seed(ctx, templateStore, log); err != nil {
		return err
	}

	// The send queue uses an insert-only client so submissions work even
	// while the worker side is restarting; both share the jobs table.
	enqueuer, err := job.NewEnqueuer(pool)
	if err != nil {
		return err
	}
	sendQueue := queue.New(enqueuer)

	logStore := postgres.NewLogStore(pool)
	composer := email.NewComposer(templateStore)
	service := email.NewService(logStore, composer, sendQueue, log)
	dispatcher := email.NewDispatcher(logStore, resend.New(cfg.Resend), log)
	tracker := email.NewTracker(logStore, sendQueue, log)

	manager, err := job.NewManager(pool,
		job.WithLogger(log),
		job.WithQueue(queue.QueueEmail, cfg.QueueWorkers),
		job.WithRetryBackoff(cfg.RetryBackoff),
		job.WithTask(tasks.NewSendEmail(dispatcher)),
		job.WithPeriodicTask(tasks.NewRequeueStuck(logStore, sendQueue, log, cfg.StuckAfter)),
	)
	if err != nil {
		return err
	}

	router := chi.NewRouter()
	router.Mount("/api/v1", api.NewHandler(service, tracker, logStore, templateStore, log).Router())
	router.Mount("/webhooks", webhook.NewHandler(tracker, log).Router())
	router.Get("/health/live", health.LivenessHandler())
	router.Get("/health/ready", health.ReadinessHandler(health.Checks{
		"postgres": pool.Ping,
	}, health.WithLogger(log)))

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := manager.Start(gctx); err != nil {
			return err
		}
		<-gctx.Done()

		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return manager.Stop(stopCtx)
	})

	g.Go(func() error {
		log.InfoContext(gctx, "http server listening", slog.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		stopCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(stopCtx)
	})

	return g.Wait()
}

func newTemplateCache(ctx context.Context, redisURL string) (cache.Cache[*email.Template], func(), error) {
	if redisURL == "" {
		c := cache.NewMemory[*email.Template](time.Minute)
		return c, func() { _ = c.Close() }, nil
	}

	client, err := redis.Open(ctx, redisURL)
	if err != nil {
		return nil, nil, err
	}
	c := cache.NewRedis[*email.Template](client, "mailroom:tpl", time.Minute)
	return c, func() { _ = client.Close() }, nil
}
