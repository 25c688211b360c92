package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/orclabs/orchestrator/internal/core/domain"
	"github.com/orclabs/orchestrator/internal/infrastructure/resilience"
)

type HTTPStatusError struct {
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "gemini status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("gemini %s status: %s", e.Operation, e.Status)
	}
	return fmt.Sprintf("gemini %s status: %s: %s", e.Operation, e.Status, strings.TrimSpace(e.Body))
}

// IsRateLimit reports whether err is a quota-exhaustion signal from the
// upstream model: an explicit 429, or a quota message in the error body.
func IsRateLimit(err error) bool {
	if err == nil {
		return false
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		if statusErr.StatusCode == http.StatusTooManyRequests {
			return true
		}
		lower := strings.ToLower(statusErr.Body)
		return strings.Contains(lower, "quota") || strings.Contains(lower, "resource_exhausted")
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota")
}

// classifyGenerateError retries only rate-limit signals. Everything else,
// including timeouts and auth failures, propagates immediately.
func classifyGenerateError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}
	if IsRateLimit(err) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}

func wrapExhausted(attempts int, err error) error {
	if err == nil {
		return nil
	}
	if IsRateLimit(err) && !domain.IsKind(err, domain.ErrRateLimited) {
		return domain.WrapError(domain.ErrRateLimited, fmt.Sprintf("gemini generate after %d attempts", attempts), err)
	}
	return err
}
