package domain

import "time"

// AuditDocument identifies the reviewed document inside an audit entry.
type AuditDocument struct {
	Filename   string `json:"filename"`
	DocType    string `json:"doc_type"`
	VendorName string `json:"vendor_name"`
}

// AuditExtraction summarizes the Analyst output at decision time.
type AuditExtraction struct {
	TotalAmount    float64 `json:"total_amount"`
	Currency       string  `json:"currency"`
	LineItemsCount int     `json:"line_items_count"`
}

// AuditDecision captures the signals the human decision was based on.
type AuditDecision struct {
	GatekeeperConfidence float64  `json:"gatekeeper_confidence"`
	GuardianStatus       string   `json:"guardian_status"`
	GuardianFlags        []string `json:"guardian_flags"`
	RequiresHumanReview  bool     `json:"requires_human_review"`
	PIIDetected          bool     `json:"pii_detected"`
}

// AuditEntry is an immutable snapshot written on every human decision.
type AuditEntry struct {
	ID         string          `json:"id"`
	Timestamp  time.Time       `json:"timestamp"`
	Action     DecisionAction  `json:"action"`
	Document   AuditDocument   `json:"document"`
	Extraction AuditExtraction `json:"extraction"`
	Decision   AuditDecision   `json:"decision"`
	Reason     string          `json:"reason,omitempty"`
}

// NewAuditEntry snapshots a pipeline result and a decision. Missing stages
// fall back to the same defaults the review UI shows.
func NewAuditEntry(id string, at time.Time, action DecisionAction, result *PipelineResult, filename, reason string) AuditEntry {
	entry := AuditEntry{
		ID:        id,
		Timestamp: at,
		Action:    action,
		Document: AuditDocument{
			Filename:   filename,
			DocType:    string(DocTypeUnknown),
			VendorName: "Unknown",
		},
		Extraction: AuditExtraction{Currency: "USD"},
		Decision: AuditDecision{
			GuardianStatus: string(ComplianceReview),
			GuardianFlags:  []string{},
		},
		Reason: reason,
	}
	if result == nil {
		return entry
	}
	if gk := result.Gatekeeper; gk != nil {
		entry.Document.DocType = string(gk.DocType)
		entry.Document.VendorName = result.VendorName()
		entry.Decision.GatekeeperConfidence = gk.ConfidenceScore
	}
	if a := result.Analyst; a != nil {
		entry.Extraction.TotalAmount = a.TotalAmount
		if a.Currency != "" {
			entry.Extraction.Currency = a.Currency
		}
		entry.Extraction.LineItemsCount = len(a.LineItems)
	}
	if g := result.Guardian; g != nil {
		entry.Decision.GuardianStatus = string(g.Status)
		if g.Flags != nil {
			entry.Decision.GuardianFlags = g.Flags
		}
		entry.Decision.PIIDetected = g.PIIDetected
	}
	entry.Decision.RequiresHumanReview = result.RequiresHumanReview()
	return entry
}
