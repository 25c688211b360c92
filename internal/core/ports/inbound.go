package ports

import (
	"context"
	"io"

	"github.com/orclabs/orchestrator/internal/core/domain"
)

// DocumentOrchestrator runs the synchronous three-stage pipeline.
type DocumentOrchestrator interface {
	Run(ctx context.Context, artifact *domain.Artifact) (*domain.PipelineResult, error)
}

// DocumentIngestor accepts an upload for asynchronous processing.
type DocumentIngestor interface {
	Upload(ctx context.Context, filename, mimeType string, body io.Reader) (*domain.Document, error)
}

// DocumentProcessor drives a stored document through the pipeline.
type DocumentProcessor interface {
	ProcessByID(ctx context.Context, documentID string) error
}

// EmailComposer generates one supplier email draft.
type EmailComposer interface {
	Compose(ctx context.Context, emailType domain.EmailType, metadata domain.EmailMetadata) (*domain.EmailDraft, error)
}

// DecisionService applies a human approval decision to a processed document.
type DecisionService interface {
	Decide(ctx context.Context, documentID string, action domain.DecisionAction, reason string) (*domain.Document, error)
}
