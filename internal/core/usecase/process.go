package usecase

import (
	"context"
	"fmt"
	"io"

	"github.com/orclabs/orchestrator/internal/core/domain"
	"github.com/orclabs/orchestrator/internal/core/ports"
)

// ProcessDocumentUseCase drives a stored document through the pipeline from
// the async worker. Classification failure fails the document; partial stage
// failures still leave it ready for review.
type ProcessDocumentUseCase struct {
	repo         ports.DocumentRepository
	storage      ports.ObjectStorage
	orchestrator ports.DocumentOrchestrator
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	storage ports.ObjectStorage,
	orchestrator ports.DocumentOrchestrator,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:         repo,
		storage:      storage,
		orchestrator: orchestrator,
	}
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return fmt.Errorf("fetch document by id: %w", err)
	}

	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	artifact, err := uc.loadArtifact(ctx, doc)
	if err != nil {
		return uc.fail(ctx, documentID, err)
	}

	result, err := uc.orchestrator.Run(ctx, artifact)
	if err != nil {
		return uc.fail(ctx, documentID, err)
	}

	if err := uc.repo.SaveResult(ctx, documentID, result); err != nil {
		return uc.fail(ctx, documentID, fmt.Errorf("save pipeline result: %w", err))
	}
	if err := uc.repo.UpdateApproval(ctx, documentID, domain.ApprovalPending); err != nil {
		return uc.fail(ctx, documentID, fmt.Errorf("set approval=pending: %w", err))
	}

	if err := uc.repo.UpdateStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) loadArtifact(ctx context.Context, doc *domain.Document) (*domain.Artifact, error) {
	reader, err := uc.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read source document: %w", err)
	}

	return &domain.Artifact{
		Filename: doc.Filename,
		MimeType: doc.MimeType,
		Data:     data,
	}, nil
}

func (uc *ProcessDocumentUseCase) fail(ctx context.Context, documentID string, processErr error) error {
	if failErr := uc.repo.UpdateStatus(ctx, documentID, domain.StatusFailed, processErr.Error()); failErr != nil {
		return fmt.Errorf("%w; mark failed status: %v", processErr, failErr)
	}
	return processErr
}
