package app

import (
	"context"
	"fmt"
	"log/slog"

	"FeedEngager/internal/config"
	"FeedEngager/internal/dedup"
	"FeedEngager/internal/domain"
	"FeedEngager/internal/filter"
	"FeedEngager/internal/generation"
	"FeedEngager/internal/infrastructure/feed"
	"FeedEngager/internal/infrastructure/llm"
	"FeedEngager/internal/infrastructure/progress"
	"FeedEngager/internal/infrastructure/storage"
	"FeedEngager/internal/logging"
	"FeedEngager/internal/ports"
	"FeedEngager/internal/source"
	"FeedEngager/internal/submit"
	"FeedEngager/internal/usecase"
)

// Options carries collaborators the host environment provides. Without an
// action surface the engine runs in manual-approve mode: every generated
// response is staged for review instead of being submitted.
type Options struct {
	Surface ports.ActionSurface
	Sink    ports.ProgressSink
}

// Application wires config to the queue manager and owns process-lifetime
// resources.
type Application struct {
	cfg     config.Config
	logger  *slog.Logger
	manager *usecase.Manager
	store   *storage.SQLiteStore
	staging *submit.StagingSubmitter
	items   []domain.QueueItem
}

// New builds a runnable application. It fails fast when the dedup
// persistence is unavailable; a run must never start without a reliable
// dedup guarantee.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger, opts Options) (*Application, error) {
	if logger == nil {
		logger = logging.New(cfg.Logging.Level)
	}

	kv, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("open dedup storage: %w", err)
	}

	dedupStore, err := dedup.New(ctx, kv, logging.Component(logger, "dedup"))
	if err != nil {
		_ = kv.Close()
		return nil, fmt.Errorf("init dedup store: %w", err)
	}

	registry := source.NewRegistry()
	registry.Register(feed.NewBuilder(nil, logging.Component(logger, "feed")))
	registry.Register(source.NewTargetedBuilder())

	specs := make([]source.Spec, 0, len(cfg.Groups))
	items := make([]domain.QueueItem, 0, len(cfg.Groups))
	for _, group := range cfg.Groups {
		specs = append(specs, source.Spec{GroupID: group.Name, Mode: group.Mode, Options: group.Options})
		items = append(items, domain.QueueItem{GroupID: group.Name, Config: cfg.RunConfigFor(group)})
	}
	resolver := source.NewResolver(registry, specs, logging.Component(logger, "source"))

	backend := llm.NewHTTPBackend(cfg.Generation.Endpoint, cfg.Generation.APIKey)
	generator := generation.NewClient(backend, logging.Component(logger, "generation"))

	var staging *submit.StagingSubmitter
	var submitter submit.Submitter
	if opts.Surface != nil {
		submitter = submit.NewSurfaceSubmitter(opts.Surface, logging.Component(logger, "submit"))
	} else {
		staging = submit.NewStagingSubmitter()
		submitter = staging
		logger.Info("no action surface configured, staging responses for manual approval")
	}

	sink := opts.Sink
	if sink == nil {
		if cfg.Progress.WebhookURL != "" {
			sink = progress.NewWebhookSink(cfg.Progress.WebhookURL)
		} else {
			sink = progress.NewLogSink(logging.Component(logger, "progress"))
		}
	}

	deps := usecase.RunDeps{
		Dedup:     dedupStore,
		Filters:   filter.New(dedupStore),
		Generator: generator,
		Submitter: submitter,
		Progress:  sink,
		Logger:    logging.Component(logger, "run"),
	}
	manager := usecase.NewManager(resolver, deps, logging.Component(logger, "queue"))

	return &Application{
		cfg:     cfg,
		logger:  logger,
		manager: manager,
		store:   kv,
		staging: staging,
		items:   items,
	}, nil
}

// Run processes every configured group once, in order.
func (a *Application) Run(ctx context.Context) error {
	summaries := a.manager.Process(ctx, a.items)

	for _, summary := range summaries {
		a.logger.Info("run finished",
			"group", summary.GroupID,
			"run_id", summary.RunID,
			"status", summary.Status,
			"processed", summary.Processed,
			"acted", summary.Acted)
	}

	if a.staging != nil {
		for _, staged := range a.staging.Drain() {
			a.logger.Info("staged for approval",
				"item", staged.Candidate.CanonicalAlias(),
				"author", staged.Candidate.AuthorKey,
				"text", staged.Text)
		}
	}

	return nil
}

// Cancel aborts the current run and any queued ones, cooperatively.
func (a *Application) Cancel() {
	a.manager.Cancel()
}

// Close releases process-lifetime resources.
func (a *Application) Close() error {
	return a.store.Close()
}
