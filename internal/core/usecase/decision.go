package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/orclabs/orchestrator/internal/core/domain"
	"github.com/orclabs/orchestrator/internal/core/ports"
)

// DecisionUseCase applies a human approval decision to a processed document
// and writes the immutable audit snapshot.
type DecisionUseCase struct {
	repo  ports.DocumentRepository
	audit ports.AuditLog
}

func NewDecisionUseCase(repo ports.DocumentRepository, audit ports.AuditLog) *DecisionUseCase {
	return &DecisionUseCase{repo: repo, audit: audit}
}

func (uc *DecisionUseCase) Decide(
	ctx context.Context,
	documentID string,
	action domain.DecisionAction,
	reason string,
) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.Result == nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "decision", fmt.Errorf("document %s has no pipeline result", documentID))
	}
	if doc.Approval.Terminal() {
		return nil, domain.WrapError(domain.ErrInvalidInput, "decision", fmt.Errorf("decision already %s", doc.Approval))
	}

	var approval domain.ApprovalStatus
	switch action {
	case domain.DecisionApproved:
		approval = domain.ApprovalApproved
	case domain.DecisionRejected:
		if reason == "" {
			return nil, domain.WrapError(domain.ErrInvalidInput, "decision", fmt.Errorf("rejection reason is required"))
		}
		approval = domain.ApprovalRejected
	case domain.DecisionFlagged:
		approval = domain.ApprovalFlagged
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "decision", fmt.Errorf("unknown action %q", action))
	}

	if err := uc.repo.UpdateApproval(ctx, documentID, approval); err != nil {
		return nil, fmt.Errorf("update approval: %w", err)
	}

	entry := domain.NewAuditEntry(
		fmt.Sprintf("audit_%s", uuid.NewString()),
		time.Now().UTC(),
		action,
		doc.Result,
		doc.Filename,
		reason,
	)
	if err := uc.audit.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("append audit entry: %w", err)
	}

	doc.Approval = approval
	return doc, nil
}
