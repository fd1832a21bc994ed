package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/lib/pq"

	"ProposalReviewer/internal/config"
	"ProposalReviewer/internal/extract"
	"ProposalReviewer/internal/infrastructure/httpserver"
	"ProposalReviewer/internal/infrastructure/llm"
	"ProposalReviewer/internal/infrastructure/scheduler"
	"ProposalReviewer/internal/infrastructure/storage"
	"ProposalReviewer/internal/infrastructure/webhook"
	"ProposalReviewer/internal/logging"
	"ProposalReviewer/internal/ports"
	"ProposalReviewer/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	server    *httpserver.Server
	retention *usecase.Retention
	db        *sql.DB
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	var (
		db      *sql.DB
		rubrics ports.RubricRepository
		batches ports.BatchRepository
	)
	if cfg.Database.DSN != "" {
		var err error
		db, err = sql.Open("postgres", cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		repository := storage.NewPostgresRepository(db)
		rubrics = repository
		batches = repository
	} else {
		baseLogger.Warn("no database DSN configured; rubric and batch persistence disabled")
	}

	var notifier ports.Notifier
	if cfg.Webhook.URL != "" {
		notifier = webhook.NewNotifier(cfg.Webhook.URL)
	}

	completer := llm.NewClient(cfg.LLM)
	extractor := extract.DefaultService(baseLogger.With("component", "extract"))

	reviews := usecase.NewReviewService(usecase.ReviewDeps{
		Extractor: extractor,
		Completer: completer,
		Batches:   batches,
		Notifier:  notifier,
		Logger:    baseLogger.With("component", "review"),
	})
	generator := usecase.NewGenerator(completer, baseLogger.With("component", "generate"))

	server := httpserver.New(httpserver.Deps{
		Reviews:   reviews,
		Generator: generator,
		Rubrics:   rubrics,
		Batches:   batches,
		Logger:    baseLogger.With("component", "http"),
	})

	var retention *usecase.Retention
	if cfg.Retention.Enabled && batches != nil {
		driver := scheduler.NewTickerScheduler(time.Duration(cfg.Retention.SweepIntervalHours) * time.Hour)
		maxAge := time.Duration(cfg.Retention.MaxAgeHours) * time.Hour
		retention = usecase.NewRetention(driver, batches, maxAge, baseLogger.With("component", "retention"))
	}

	return &Application{
		cfg:       cfg,
		logger:    baseLogger,
		server:    server,
		retention: retention,
		db:        db,
	}, nil
}

// Run serves HTTP until the context is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if a.retention != nil {
		if err := a.retention.Start(ctx); err != nil {
			return fmt.Errorf("start retention: %w", err)
		}
		defer func() { _ = a.retention.Stop(context.Background()) }()
	}
	if a.db != nil {
		defer a.db.Close()
	}

	httpServer := &http.Server{
		Addr:              a.cfg.Server.Addr,
		Handler:           a.server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("http server listening", "addr", a.cfg.Server.Addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http: %w", err)
		}
		return nil
	}
}
