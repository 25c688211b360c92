package domain

import "time"

type ApprovalStatus string

const (
	ApprovalNone     ApprovalStatus = ""
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
	ApprovalFlagged  ApprovalStatus = "flagged_for_review"
)

// Terminal reports whether the decision has left the pending state. A terminal
// approval only changes again through an explicit reset.
func (s ApprovalStatus) Terminal() bool {
	switch s {
	case ApprovalApproved, ApprovalRejected, ApprovalFlagged:
		return true
	}
	return false
}

type RunStatus string

const (
	RunIdle       RunStatus = "idle"
	RunProcessing RunStatus = "processing"
	RunComplete   RunStatus = "complete"
	RunError      RunStatus = "error"
)

type WorkflowPhase string

const (
	PhaseIntake     WorkflowPhase = "intake"
	PhaseProcessing WorkflowPhase = "processing"
	PhaseReview     WorkflowPhase = "review"
	PhaseAction     WorkflowPhase = "action"
)

// DerivePhase computes the workflow phase from run status, approval and the
// presence of a result. It is recomputed on demand rather than cached.
func DerivePhase(status RunStatus, approval ApprovalStatus, hasResult bool) WorkflowPhase {
	switch {
	case approval == ApprovalApproved:
		return PhaseAction
	case status == RunProcessing:
		return PhaseProcessing
	case status == RunComplete:
		return PhaseReview
	case status == RunIdle && !hasResult:
		return PhaseIntake
	default:
		return PhaseIntake
	}
}

type Actor string

const (
	ActorSystem     Actor = "SYSTEM"
	ActorGatekeeper Actor = "GATEKEEPER"
	ActorAnalyst    Actor = "ANALYST"
	ActorGuardian   Actor = "GUARDIAN"
	ActorHuman      Actor = "HUMAN"
)

type LogSeverity string

const (
	LogInfo       LogSeverity = "info"
	LogSuccess    LogSeverity = "success"
	LogWarning    LogSeverity = "warning"
	LogError      LogSeverity = "error"
	LogProcessing LogSeverity = "processing"
)

// ActivityEntry is one observational line in the per-run activity feed.
// The feed never drives control flow.
type ActivityEntry struct {
	ID        string      `json:"id"`
	Agent     Actor       `json:"agent"`
	Message   string      `json:"message"`
	Timestamp time.Time   `json:"timestamp"`
	Type      LogSeverity `json:"type"`
}

type DecisionAction string

const (
	DecisionApproved DecisionAction = "APPROVED"
	DecisionRejected DecisionAction = "REJECTED"
	DecisionFlagged  DecisionAction = "FLAGGED_FOR_REVIEW"
)
