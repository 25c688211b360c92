package pdftext

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/orclabs/orchestrator/internal/core/domain"
)

// maxSnippet bounds how much locally extracted text is fed into prompts.
const maxSnippet = 4000

// Extractor pulls a plain-text snippet out of PDF uploads for prompt context.
// Non-PDF artifacts and unreadable PDFs yield an empty snippet; the document
// bytes themselves still go to the model.
type Extractor struct{}

func New() *Extractor {
	return &Extractor{}
}

func (e *Extractor) Extract(_ context.Context, artifact *domain.Artifact) (string, error) {
	if artifact == nil || !isPDF(artifact) {
		return "", nil
	}

	reader, err := pdf.NewReader(bytes.NewReader(artifact.Data), int64(len(artifact.Data)))
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", artifact.Filename, err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text %s: %w", artifact.Filename, err)
	}

	raw, err := io.ReadAll(io.LimitReader(plain, maxSnippet))
	if err != nil {
		return "", fmt.Errorf("read pdf text %s: %w", artifact.Filename, err)
	}
	return strings.TrimSpace(string(raw)), nil
}

func isPDF(artifact *domain.Artifact) bool {
	if strings.EqualFold(artifact.MimeType, "application/pdf") {
		return true
	}
	return strings.HasSuffix(strings.ToLower(artifact.Filename), ".pdf")
}
