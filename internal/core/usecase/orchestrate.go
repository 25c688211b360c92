package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/orclabs/orchestrator/internal/core/domain"
	"github.com/orclabs/orchestrator/internal/core/ports"
	"github.com/orclabs/orchestrator/internal/infrastructure/prompts"
)

// StageObserver receives per-stage outcomes for metrics. Implementations must
// be safe for concurrent use.
type StageObserver interface {
	ObserveStage(stage, outcome string, duration time.Duration)
}

type noopObserver struct{}

func (noopObserver) ObserveStage(string, string, time.Duration) {}

type stageValidator interface {
	Validate() error
}

// OrchestrateUseCase sequences Gatekeeper -> Analyst -> Guardian. The stages
// run strictly in order; each consumes the previous stage's output.
type OrchestrateUseCase struct {
	gateway  ports.ModelGateway
	engine   *prompts.Engine
	snippets ports.TextExtractor
	observer StageObserver
}

func NewOrchestrateUseCase(
	gateway ports.ModelGateway,
	engine *prompts.Engine,
	snippets ports.TextExtractor,
	observer StageObserver,
) *OrchestrateUseCase {
	if observer == nil {
		observer = noopObserver{}
	}
	return &OrchestrateUseCase{
		gateway:  gateway,
		engine:   engine,
		snippets: snippets,
		observer: observer,
	}
}

// Run executes the pipeline for one artifact. A classification failure aborts
// the request with domain.ErrClassification. Extraction or compliance
// failures are swallowed: the result carries whatever stages succeeded.
func (uc *OrchestrateUseCase) Run(ctx context.Context, artifact *domain.Artifact) (*domain.PipelineResult, error) {
	if artifact == nil || len(artifact.Data) == 0 {
		return nil, domain.WrapError(domain.ErrInvalidInput, "orchestrate", fmt.Errorf("empty artifact"))
	}

	snippet := uc.textSnippet(ctx, artifact)

	classification, err := uc.classify(ctx, artifact, snippet)
	if err != nil {
		return nil, domain.WrapError(domain.ErrClassification, "gatekeeper stage", err)
	}

	result := &domain.PipelineResult{Gatekeeper: classification}
	if !classification.DocType.Extractable() {
		slog.Info("pipeline_stage_skipped", "stage", "analyst", "doc_type", classification.DocType)
		return result, nil
	}

	extraction, err := uc.extract(ctx, artifact, snippet)
	if err != nil {
		slog.Error("pipeline_stage_failed", "stage", "analyst", "filename", artifact.Filename, "error", err)
		return result, nil
	}
	result.Analyst = extraction

	compliance, err := uc.validate(ctx, classification, extraction)
	if err != nil {
		slog.Error("pipeline_stage_failed", "stage", "guardian", "filename", artifact.Filename, "error", err)
		return result, nil
	}
	result.Guardian = compliance

	return result, nil
}

func (uc *OrchestrateUseCase) classify(ctx context.Context, artifact *domain.Artifact, snippet string) (*domain.Classification, error) {
	out, err := runStage[domain.Classification](ctx, uc, "gatekeeper", ports.GenerateRequest{
		Instruction: prompts.Gatekeeper(uc.engine, snippet),
		Document:    artifact,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (uc *OrchestrateUseCase) extract(ctx context.Context, artifact *domain.Artifact, snippet string) (*domain.Extraction, error) {
	return runStage[domain.Extraction](ctx, uc, "analyst", ports.GenerateRequest{
		Instruction: prompts.Analyst(uc.engine, snippet),
		Document:    artifact,
	})
}

func (uc *OrchestrateUseCase) validate(ctx context.Context, cls *domain.Classification, ext *domain.Extraction) (*domain.Compliance, error) {
	gkJSON, err := json.Marshal(cls)
	if err != nil {
		return nil, fmt.Errorf("marshal gatekeeper context: %w", err)
	}
	extJSON, err := json.Marshal(ext)
	if err != nil {
		return nil, fmt.Errorf("marshal analyst context: %w", err)
	}

	// Text-only call: the Guardian reasons over prior outputs, not the file.
	return runStage[domain.Compliance](ctx, uc, "guardian", ports.GenerateRequest{
		Instruction: prompts.Guardian(uc.engine, gkJSON, extJSON),
	})
}

func runStage[T any, PT interface {
	*T
	stageValidator
}](ctx context.Context, uc *OrchestrateUseCase, stage string, req ports.GenerateRequest) (PT, error) {
	start := time.Now()

	raw, err := uc.gateway.Generate(ctx, req)
	if err != nil {
		uc.observer.ObserveStage(stage, "gateway_error", time.Since(start))
		return nil, fmt.Errorf("%s generate: %w", stage, err)
	}

	out := PT(new(T))
	if err := json.Unmarshal([]byte(CleanJSON(raw)), out); err != nil {
		uc.observer.ObserveStage(stage, "parse_error", time.Since(start))
		return nil, fmt.Errorf("%s reply is not valid json: %w", stage, err)
	}
	if err := out.Validate(); err != nil {
		uc.observer.ObserveStage(stage, "validation_error", time.Since(start))
		return nil, fmt.Errorf("%s output invalid: %w", stage, err)
	}

	uc.observer.ObserveStage(stage, "ok", time.Since(start))
	return out, nil
}

func (uc *OrchestrateUseCase) textSnippet(ctx context.Context, artifact *domain.Artifact) string {
	if uc.snippets == nil {
		return ""
	}
	snippet, err := uc.snippets.Extract(ctx, artifact)
	if err != nil {
		// Advisory only: the raw bytes are still attached to the prompt.
		slog.Warn("text_snippet_failed", "filename", artifact.Filename, "error", err)
		return ""
	}
	return snippet
}

// CleanJSON strips markdown code fences the model sometimes wraps its JSON in.
func CleanJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	return strings.TrimSpace(text)
}
