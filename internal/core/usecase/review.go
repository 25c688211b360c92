package usecase

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/orclabs/orchestrator/internal/core/domain"
)

// Session is the workflow state machine for one document review cycle. It
// tracks run status, the newest-first activity feed and the human approval
// decision. Phase and review-required are derived on demand, never cached.
//
// A Session is not safe for concurrent use; callers serialize access.
type Session struct {
	status   domain.RunStatus
	approval domain.ApprovalStatus
	result   *domain.PipelineResult
	filename string
	logs     []domain.ActivityEntry

	now   func() time.Time
	newID func() string
}

func NewSession() *Session {
	return &Session{
		status: domain.RunIdle,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Start begins a new run: previous result, approval and activity feed are
// discarded, superseding any prior review at the state layer.
func (s *Session) Start(filename string, sizeBytes int) {
	s.status = domain.RunProcessing
	s.result = nil
	s.approval = domain.ApprovalNone
	s.filename = filename
	s.logs = nil

	s.log(domain.ActorSystem, "Orchestration sequence initiated.", domain.LogInfo)
	s.log(domain.ActorSystem, fmt.Sprintf("Ingesting artifact: %s (%.2f KB)", filename, float64(sizeBytes)/1024.0), domain.LogInfo)
	s.log(domain.ActorGatekeeper, "Analysis protocol started...", domain.LogProcessing)
}

// Complete records a finished pipeline run and narrates each stage outcome.
// The approval decision starts as pending in every case; whether review was
// strictly required remains a presentation distinction.
func (s *Session) Complete(result *domain.PipelineResult) {
	s.status = domain.RunComplete
	s.result = result
	s.approval = domain.ApprovalPending

	if gk := result.Gatekeeper; gk != nil {
		s.log(domain.ActorGatekeeper,
			fmt.Sprintf("Identified: %s (Confidence: %.0f%%)", gk.DocType, gk.ConfidenceScore*100),
			domain.LogSuccess)
		if gk.Summary != "" {
			s.log(domain.ActorGatekeeper, "Summary: "+gk.Summary, domain.LogInfo)
		}
	}

	if a := result.Analyst; a != nil {
		s.log(domain.ActorAnalyst, fmt.Sprintf("Extracted %d line items.", len(a.LineItems)), domain.LogSuccess)
		s.log(domain.ActorAnalyst, fmt.Sprintf("Total Value: %.2f %s", a.TotalAmount, a.Currency), domain.LogInfo)
	} else {
		s.log(domain.ActorAnalyst, "Skipped extraction (Document type not supported for deep analysis).", domain.LogWarning)
	}

	if g := result.Guardian; g != nil {
		if g.Status == domain.CompliancePass {
			s.log(domain.ActorGuardian, "Compliance Check: PASSED. No anomalies detected.", domain.LogSuccess)
		} else {
			s.log(domain.ActorGuardian, fmt.Sprintf("Compliance Check: %s. Review flags raised.", g.Status), domain.LogWarning)
			for _, flag := range g.Flags {
				s.log(domain.ActorGuardian, "Flag: "+flag, domain.LogWarning)
			}
		}
	}

	if result.RequiresHumanReview() {
		s.log(domain.ActorSystem, "Human review required before approval.", domain.LogWarning)
		if result.Guardian != nil && result.Guardian.PIIDetected {
			s.log(domain.ActorGuardian, "PII detected in document. Manual review required.", domain.LogWarning)
		}
	}
	s.log(domain.ActorSystem, "Orchestration complete. Awaiting human decision.", domain.LogSuccess)
}

// Fail records a fatal pipeline failure.
func (s *Session) Fail(message string) {
	s.status = domain.RunError
	s.log(domain.ActorSystem, "Critical Failure: "+message, domain.LogError)
}

// Approve marks the document approved. Valid only once a result exists and
// the decision is still pending.
func (s *Session) Approve() error {
	if err := s.decidable(); err != nil {
		return err
	}
	s.approval = domain.ApprovalApproved
	s.log(domain.ActorHuman, "Document APPROVED for processing.", domain.LogSuccess)
	return nil
}

// Reject marks the document rejected; the reason is required and retained.
func (s *Session) Reject(reason string) error {
	if err := s.decidable(); err != nil {
		return err
	}
	if reason == "" {
		return domain.WrapError(domain.ErrInvalidInput, "reject", fmt.Errorf("reason is required"))
	}
	s.approval = domain.ApprovalRejected
	s.log(domain.ActorHuman, "Document REJECTED. Reason: "+reason, domain.LogError)
	return nil
}

// FlagForReview escalates the document for manual review.
func (s *Session) FlagForReview() error {
	if err := s.decidable(); err != nil {
		return err
	}
	s.approval = domain.ApprovalFlagged
	s.log(domain.ActorHuman, "Document flagged for manual review.", domain.LogWarning)
	return nil
}

// ResetApproval clears the decision; the only path out of a terminal state.
func (s *Session) ResetApproval() {
	if s.result != nil {
		s.approval = domain.ApprovalPending
		return
	}
	s.approval = domain.ApprovalNone
}

func (s *Session) decidable() error {
	if s.result == nil {
		return domain.WrapError(domain.ErrInvalidInput, "decision", fmt.Errorf("no result to decide on"))
	}
	if s.approval.Terminal() {
		return domain.WrapError(domain.ErrInvalidInput, "decision", fmt.Errorf("decision already %s", s.approval))
	}
	return nil
}

func (s *Session) Status() domain.RunStatus        { return s.status }
func (s *Session) Approval() domain.ApprovalStatus { return s.approval }
func (s *Session) Result() *domain.PipelineResult  { return s.result }
func (s *Session) Filename() string                { return s.filename }
func (s *Session) RequiresHumanReview() bool       { return s.result.RequiresHumanReview() }

// Phase derives the workflow phase from current state.
func (s *Session) Phase() domain.WorkflowPhase {
	return domain.DerivePhase(s.status, s.approval, s.result != nil)
}

// Logs returns the activity feed, newest first.
func (s *Session) Logs() []domain.ActivityEntry {
	out := make([]domain.ActivityEntry, len(s.logs))
	copy(out, s.logs)
	return out
}

func (s *Session) log(agent domain.Actor, message string, severity domain.LogSeverity) {
	entry := domain.ActivityEntry{
		ID:        s.newID(),
		Agent:     agent,
		Message:   message,
		Timestamp: s.now(),
		Type:      severity,
	}
	s.logs = append([]domain.ActivityEntry{entry}, s.logs...)
}
