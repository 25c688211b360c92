package usecase

import (
	"strings"
	"testing"

	"github.com/orclabs/orchestrator/internal/core/domain"
)

func completedResult(confidence float64, guardian *domain.Compliance) *domain.PipelineResult {
	return &domain.PipelineResult{
		Gatekeeper: &domain.Classification{
			DocType:         domain.DocTypeInvoice,
			VendorName:      "Acme Corp",
			ConfidenceScore: confidence,
		},
		Analyst: &domain.Extraction{
			TotalAmount: 100,
			Currency:    "USD",
			LineItems:   []domain.LineItem{{Description: "widget", Quantity: 1, UnitPrice: 100, Total: 100}},
		},
		Guardian: guardian,
	}
}

func TestSessionStartResetsPriorRun(t *testing.T) {
	s := NewSession()
	s.Start("first.pdf", 2048)
	s.Complete(completedResult(0.95, &domain.Compliance{Status: domain.CompliancePass}))
	if err := s.Approve(); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}

	s.Start("second.pdf", 1024)
	if s.Status() != domain.RunProcessing {
		t.Fatalf("status = %s, want processing", s.Status())
	}
	if s.Approval() != domain.ApprovalNone {
		t.Fatalf("approval = %q, want cleared", s.Approval())
	}
	if s.Result() != nil {
		t.Fatalf("result must be cleared on restart")
	}
	if s.Phase() != domain.PhaseProcessing {
		t.Fatalf("phase = %s, want processing", s.Phase())
	}
}

func TestSessionCompleteSetsPendingApproval(t *testing.T) {
	s := NewSession()
	s.Start("invoice.pdf", 4096)
	s.Complete(completedResult(0.95, &domain.Compliance{Status: domain.CompliancePass}))

	if s.Status() != domain.RunComplete {
		t.Fatalf("status = %s, want complete", s.Status())
	}
	if s.Approval() != domain.ApprovalPending {
		t.Fatalf("approval = %s, want pending", s.Approval())
	}
	if s.Phase() != domain.PhaseReview {
		t.Fatalf("phase = %s, want review", s.Phase())
	}
	if s.RequiresHumanReview() {
		t.Fatalf("confident PASS result must not require review")
	}
}

func TestSessionApprovalIsSingleShot(t *testing.T) {
	s := NewSession()
	s.Start("invoice.pdf", 4096)
	s.Complete(completedResult(0.95, &domain.Compliance{Status: domain.CompliancePass}))

	if err := s.Approve(); err != nil {
		t.Fatalf("Approve() error = %v", err)
	}
	if s.Phase() != domain.PhaseAction {
		t.Fatalf("phase = %s, want action", s.Phase())
	}

	if err := s.Reject("changed my mind"); err == nil {
		t.Fatalf("second decision must be rejected")
	}
	if !domain.IsKind(s.Approve(), domain.ErrInvalidInput) {
		t.Fatalf("repeat approval must be an invalid input error")
	}
}

func TestSessionRejectRequiresReason(t *testing.T) {
	s := NewSession()
	s.Start("invoice.pdf", 4096)
	s.Complete(completedResult(0.95, &domain.Compliance{Status: domain.CompliancePass}))

	if err := s.Reject(""); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input for empty reason, got %v", err)
	}
	if s.Approval() != domain.ApprovalPending {
		t.Fatalf("failed rejection must not change approval, got %s", s.Approval())
	}

	if err := s.Reject("amount mismatch"); err != nil {
		t.Fatalf("Reject() error = %v", err)
	}
	if s.Approval() != domain.ApprovalRejected {
		t.Fatalf("approval = %s, want rejected", s.Approval())
	}
}

func TestSessionDecisionWithoutResult(t *testing.T) {
	s := NewSession()
	if err := s.Approve(); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("decision without result must fail, got %v", err)
	}
	s.Start("doc.pdf", 10)
	if err := s.FlagForReview(); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("decision while processing must fail, got %v", err)
	}
}

func TestSessionResetApprovalReturnsToPending(t *testing.T) {
	s := NewSession()
	s.Start("invoice.pdf", 4096)
	s.Complete(completedResult(0.95, &domain.Compliance{Status: domain.CompliancePass}))
	if err := s.FlagForReview(); err != nil {
		t.Fatalf("FlagForReview() error = %v", err)
	}

	s.ResetApproval()
	if s.Approval() != domain.ApprovalPending {
		t.Fatalf("approval after reset = %s, want pending", s.Approval())
	}
	if err := s.Approve(); err != nil {
		t.Fatalf("decision after reset must be allowed: %v", err)
	}
}

func TestSessionFail(t *testing.T) {
	s := NewSession()
	s.Start("invoice.pdf", 4096)
	s.Fail("model unavailable")

	if s.Status() != domain.RunError {
		t.Fatalf("status = %s, want error", s.Status())
	}
	logs := s.Logs()
	if len(logs) == 0 || !strings.Contains(logs[0].Message, "Critical Failure") {
		t.Fatalf("expected failure entry first, got %+v", logs)
	}
}

func TestSessionLogsNewestFirst(t *testing.T) {
	s := NewSession()
	s.Start("invoice.pdf", 4096)

	logs := s.Logs()
	if len(logs) != 3 {
		t.Fatalf("expected 3 initial entries, got %d", len(logs))
	}
	if logs[0].Agent != domain.ActorGatekeeper {
		t.Fatalf("newest entry agent = %s, want GATEKEEPER", logs[0].Agent)
	}
	if logs[2].Message != "Orchestration sequence initiated." {
		t.Fatalf("oldest entry = %q", logs[2].Message)
	}
}

func TestSessionNarratesPIIWarning(t *testing.T) {
	s := NewSession()
	s.Start("invoice.pdf", 4096)
	s.Complete(completedResult(0.95, &domain.Compliance{
		Status:      domain.ComplianceReview,
		Flags:       []string{"PII_FOUND"},
		PIIDetected: true,
	}))

	var sawPII bool
	for _, entry := range s.Logs() {
		if strings.Contains(entry.Message, "PII detected") {
			sawPII = true
		}
	}
	if !sawPII {
		t.Fatalf("expected PII warning in activity feed")
	}
	if !s.RequiresHumanReview() {
		t.Fatalf("PII result must require review")
	}
}
