package domain

import (
	"testing"
	"time"
)

func TestNewAuditEntryDefaultsWithoutResult(t *testing.T) {
	at := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	entry := NewAuditEntry("audit_1", at, DecisionApproved, nil, "scan.pdf", "")

	if entry.Document.DocType != string(DocTypeUnknown) {
		t.Fatalf("doc type = %s, want Unknown", entry.Document.DocType)
	}
	if entry.Document.VendorName != "Unknown" {
		t.Fatalf("vendor = %s, want Unknown", entry.Document.VendorName)
	}
	if entry.Extraction.Currency != "USD" {
		t.Fatalf("currency = %s, want USD", entry.Extraction.Currency)
	}
	if entry.Decision.GuardianStatus != string(ComplianceReview) {
		t.Fatalf("guardian status = %s, want REVIEW", entry.Decision.GuardianStatus)
	}
	if entry.Decision.GuardianFlags == nil {
		t.Fatalf("guardian flags must be an empty slice, not nil")
	}
}

func TestNewAuditEntrySnapshotsResult(t *testing.T) {
	result := &PipelineResult{
		Gatekeeper: &Classification{
			DocType:         DocTypeInvoice,
			VendorName:      "Acme Corp",
			ConfidenceScore: 0.97,
		},
		Analyst: &Extraction{
			TotalAmount: 1250.50,
			Currency:    "EUR",
			LineItems:   []LineItem{{Description: "widget", Quantity: 2, UnitPrice: 625.25, Total: 1250.50}},
		},
		Guardian: &Compliance{
			Status: CompliancePass,
			Flags:  []string{"AMOUNT_ROUNDING"},
		},
	}

	entry := NewAuditEntry("audit_2", time.Now(), DecisionRejected, result, "invoice.pdf", "duplicate")

	if entry.Document.DocType != "Invoice" || entry.Document.VendorName != "Acme Corp" {
		t.Fatalf("document snapshot mismatch: %+v", entry.Document)
	}
	if entry.Extraction.TotalAmount != 1250.50 || entry.Extraction.Currency != "EUR" || entry.Extraction.LineItemsCount != 1 {
		t.Fatalf("extraction snapshot mismatch: %+v", entry.Extraction)
	}
	if entry.Decision.GatekeeperConfidence != 0.97 {
		t.Fatalf("confidence = %v", entry.Decision.GatekeeperConfidence)
	}
	if entry.Decision.GuardianStatus != "PASS" || len(entry.Decision.GuardianFlags) != 1 {
		t.Fatalf("decision snapshot mismatch: %+v", entry.Decision)
	}
	if entry.Decision.RequiresHumanReview {
		t.Fatalf("confident PASS result must not require review")
	}
	if entry.Reason != "duplicate" {
		t.Fatalf("reason = %s", entry.Reason)
	}
}
