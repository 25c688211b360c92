package bootstrap

import (
	"context"
	"fmt"

	"github.com/orclabs/orchestrator/internal/config"
	"github.com/orclabs/orchestrator/internal/core/ports"
	"github.com/orclabs/orchestrator/internal/core/usecase"
	"github.com/orclabs/orchestrator/internal/infrastructure/extractor/pdftext"
	"github.com/orclabs/orchestrator/internal/infrastructure/llm/gemini"
	"github.com/orclabs/orchestrator/internal/infrastructure/prompts"
	"github.com/orclabs/orchestrator/internal/infrastructure/queue/nats"
	"github.com/orclabs/orchestrator/internal/infrastructure/repository/postgres"
	"github.com/orclabs/orchestrator/internal/infrastructure/resilience"
	"github.com/orclabs/orchestrator/internal/infrastructure/storage/localfs"
)

type App struct {
	Config config.Config

	Queue  ports.MessageQueue
	Repo   ports.DocumentRepository
	Audit  ports.AuditLog
	Drafts ports.DraftLog

	OrchestrateUC ports.DocumentOrchestrator
	IngestUC      ports.DocumentIngestor
	ProcessUC     ports.DocumentProcessor
	ComposeUC     ports.EmailComposer
	DecisionUC    ports.DecisionService

	closeFn func()
}

// New wires the full dependency graph. The stage observer is optional; the
// API and the worker each pass their own metrics implementation.
func New(ctx context.Context, cfg config.Config, observer usecase.StageObserver) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	audit := postgres.NewAuditRepository(db)
	drafts := postgres.NewDraftRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: resilience.NewExecutor(resilience.DefaultConfig()),
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	gateway := gemini.New(
		cfg.GeminiAPIKeys,
		gemini.WithBaseURL(cfg.GeminiBaseURL),
		gemini.WithModel(cfg.GeminiModel),
	)

	var engine *prompts.Engine
	if cfg.PromptEnginePath != "" {
		engine = prompts.LoadFromPaths(cfg.PromptEnginePath)
	} else {
		engine = prompts.Load()
	}

	orchestrateUC := usecase.NewOrchestrateUseCase(gateway, engine, pdftext.New(), observer)
	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(repo, storage, orchestrateUC)
	composeUC := usecase.NewComposeEmailUseCase(gateway, drafts)
	decisionUC := usecase.NewDecisionUseCase(repo, audit)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,
		Audit:  audit,
		Drafts: drafts,

		OrchestrateUC: orchestrateUC,
		IngestUC:      ingestUC,
		ProcessUC:     processUC,
		ComposeUC:     composeUC,
		DecisionUC:    decisionUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
