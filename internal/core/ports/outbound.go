package ports

import (
	"context"
	"io"

	"github.com/orclabs/orchestrator/internal/core/domain"
)

// GenerateRequest is one call to the external model. Document is nil for
// text-only generation (the Guardian stage and email drafting).
type GenerateRequest struct {
	Instruction string
	Document    *domain.Artifact
}

// ModelGateway issues a single generate call against the external model,
// handling credential rotation and rate-limit retries internally.
type ModelGateway interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}

// TextExtractor pulls a plain-text snippet out of an uploaded artifact for
// prompt context. Failure is advisory; the raw bytes still go to the model.
type TextExtractor interface {
	Extract(ctx context.Context, artifact *domain.Artifact) (string, error)
}

// DocumentRepository persists document records for the async ingestion path.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus, errMessage string) error
	SaveResult(ctx context.Context, id string, result *domain.PipelineResult) error
	UpdateApproval(ctx context.Context, id string, approval domain.ApprovalStatus) error
}

// AuditLog is the append-only, capacity-bounded record of human decisions.
type AuditLog interface {
	Append(ctx context.Context, entry domain.AuditEntry) error
	List(ctx context.Context) ([]domain.AuditEntry, error)
	Clear(ctx context.Context) error
}

// DraftLog stores generated supplier email drafts, capacity-bounded.
type DraftLog interface {
	Append(ctx context.Context, draft domain.EmailDraft) error
	List(ctx context.Context, status domain.DraftStatus) ([]domain.EmailDraft, error)
	UpdateStatus(ctx context.Context, id string, status domain.DraftStatus) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// ObjectStorage stores source documents for the async worker.
type ObjectStorage interface {
	Save(ctx context.Context, key string, data io.Reader) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// MessageQueue publishes/consumes ingestion events.
type MessageQueue interface {
	PublishDocumentIngested(ctx context.Context, documentID string) error
	SubscribeDocumentIngested(ctx context.Context, handler func(context.Context, string) error) error
}
