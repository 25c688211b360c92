package nats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/orclabs/orchestrator/internal/core/domain"
	"github.com/orclabs/orchestrator/internal/infrastructure/resilience"
)

func fastPublishExecutor(maxAttempts int) *resilience.Executor {
	exec := resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    maxAttempts,
		RetryInitialBackoff: time.Millisecond,
		RetryBackoffStep:    time.Millisecond,
	})
	return exec.WithSleep(func(context.Context, time.Duration) error { return nil })
}

func TestPublishRetriesTransientFailures(t *testing.T) {
	attempts := 0
	q := &Queue{
		subject:  "documents.ingest",
		executor: fastPublishExecutor(3),
		publish: func(_ string, _ []byte) error {
			attempts++
			if attempts < 3 {
				return nats.ErrTimeout
			}
			return nil
		},
	}

	if err := q.PublishDocumentIngested(context.Background(), "doc-1"); err != nil {
		t.Fatalf("PublishDocumentIngested() error = %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestPublishExhaustedRetriesIsTemporary(t *testing.T) {
	attempts := 0
	q := &Queue{
		subject:  "documents.ingest",
		executor: fastPublishExecutor(3),
		publish: func(_ string, _ []byte) error {
			attempts++
			return nats.ErrNoServers
		},
	}

	err := q.PublishDocumentIngested(context.Background(), "doc-1")
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error kind, got %v", err)
	}
	if attempts != 3 {
		t.Fatalf("attempts = %d, want 3", attempts)
	}
}

func TestPublishDoesNotRetryUnknownErrors(t *testing.T) {
	attempts := 0
	q := &Queue{
		subject:  "documents.ingest",
		executor: fastPublishExecutor(3),
		publish: func(_ string, _ []byte) error {
			attempts++
			return errors.New("invalid subject")
		},
	}

	err := q.PublishDocumentIngested(context.Background(), "doc-1")
	if err == nil {
		t.Fatalf("expected error")
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("unknown failure must not map to temporary: %v", err)
	}
	if attempts != 1 {
		t.Fatalf("attempts = %d, want 1", attempts)
	}
}

func TestClassifyNATSError(t *testing.T) {
	cases := []struct {
		err       error
		retryable bool
	}{
		{nats.ErrTimeout, true},
		{nats.ErrNoServers, true},
		{nats.ErrConnectionClosed, true},
		{context.Canceled, false},
		{errors.New("invalid subject"), false},
	}
	for _, tc := range cases {
		if got := classifyNATSError(tc.err).Retryable; got != tc.retryable {
			t.Fatalf("classifyNATSError(%v).Retryable = %v, want %v", tc.err, got, tc.retryable)
		}
	}
}
