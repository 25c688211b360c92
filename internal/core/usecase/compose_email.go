package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/orclabs/orchestrator/internal/core/domain"
	"github.com/orclabs/orchestrator/internal/core/ports"
	"github.com/orclabs/orchestrator/internal/infrastructure/prompts"
)

// ComposeEmailUseCase generates one supplier email draft via a single
// text-only model call, independent of the document pipeline.
type ComposeEmailUseCase struct {
	gateway ports.ModelGateway
	drafts  ports.DraftLog
}

func NewComposeEmailUseCase(gateway ports.ModelGateway, drafts ports.DraftLog) *ComposeEmailUseCase {
	return &ComposeEmailUseCase{gateway: gateway, drafts: drafts}
}

func (uc *ComposeEmailUseCase) Compose(
	ctx context.Context,
	emailType domain.EmailType,
	metadata domain.EmailMetadata,
) (*domain.EmailDraft, error) {
	if err := metadata.Validate(); err != nil {
		return nil, domain.WrapError(domain.ErrInvalidInput, "compose email", err)
	}

	body, err := uc.gateway.Generate(ctx, ports.GenerateRequest{
		Instruction: prompts.Email(emailType, metadata),
	})
	if err != nil {
		return nil, fmt.Errorf("generate email body: %w", err)
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("generate email body: empty reply")
	}

	draft := &domain.EmailDraft{
		ID:        fmt.Sprintf("email_%s", uuid.NewString()),
		To:        metadata.RecipientAddress(),
		Subject:   prompts.EmailSubject(emailType, metadata.DocumentRef),
		Body:      body,
		Type:      emailType,
		Status:    domain.DraftStatusDraft,
		CreatedAt: time.Now().UTC(),
		Metadata:  metadata,
	}

	if err := uc.drafts.Append(ctx, *draft); err != nil {
		return nil, fmt.Errorf("store email draft: %w", err)
	}
	return draft, nil
}
