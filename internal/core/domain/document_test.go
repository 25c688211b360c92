package domain

import (
	"strings"
	"testing"
)

func floatPtr(v float64) *float64 { return &v }

func TestRequiresHumanReviewLowConfidence(t *testing.T) {
	result := &PipelineResult{
		Gatekeeper: &Classification{DocType: DocTypeInvoice, ConfidenceScore: 0.85},
		Guardian:   &Compliance{Status: CompliancePass},
	}
	if !result.RequiresHumanReview() {
		t.Fatalf("confidence below threshold must require review")
	}
}

func TestRequiresHumanReviewHighConfidencePass(t *testing.T) {
	result := &PipelineResult{
		Gatekeeper: &Classification{DocType: DocTypeInvoice, ConfidenceScore: 0.95},
		Guardian:   &Compliance{Status: CompliancePass},
	}
	if result.RequiresHumanReview() {
		t.Fatalf("high confidence PASS must not require review")
	}
}

func TestRequiresHumanReviewExactThresholdPasses(t *testing.T) {
	result := &PipelineResult{
		Gatekeeper: &Classification{DocType: DocTypeInvoice, ConfidenceScore: ConfidenceThreshold},
		Guardian:   &Compliance{Status: CompliancePass},
	}
	if result.RequiresHumanReview() {
		t.Fatalf("confidence equal to threshold must not require review")
	}
}

func TestRequiresHumanReviewPIIOverridesEverything(t *testing.T) {
	result := &PipelineResult{
		Gatekeeper: &Classification{DocType: DocTypeInvoice, ConfidenceScore: 0.99},
		Guardian:   &Compliance{Status: CompliancePass, PIIDetected: true},
	}
	if !result.RequiresHumanReview() {
		t.Fatalf("PII detection must force review regardless of other signals")
	}
}

func TestRequiresHumanReviewGuardianStatuses(t *testing.T) {
	for _, status := range []ComplianceStatus{ComplianceReview, ComplianceReject} {
		result := &PipelineResult{
			Gatekeeper: &Classification{DocType: DocTypeInvoice, ConfidenceScore: 0.99},
			Guardian:   &Compliance{Status: status},
		}
		if !result.RequiresHumanReview() {
			t.Fatalf("guardian status %s must require review", status)
		}
	}
}

func TestRequiresHumanReviewMissingGuardian(t *testing.T) {
	result := &PipelineResult{
		Gatekeeper: &Classification{DocType: DocTypeChatLog, ConfidenceScore: 0.97},
	}
	if result.RequiresHumanReview() {
		t.Fatalf("confident classification without guardian output must not require review")
	}
}

func TestExtractableDocTypes(t *testing.T) {
	cases := map[DocType]bool{
		DocTypeInvoice:       true,
		DocTypePurchaseOrder: true,
		DocTypeChatLog:       false,
		DocTypeEmail:         false,
		DocTypeUnknown:       false,
	}
	for docType, want := range cases {
		if got := docType.Extractable(); got != want {
			t.Fatalf("Extractable(%s) = %v, want %v", docType, got, want)
		}
	}
}

func TestClassificationValidate(t *testing.T) {
	valid := Classification{DocType: DocTypeInvoice, ConfidenceScore: 0.9}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid classification rejected: %v", err)
	}

	badType := Classification{DocType: "Receipt", ConfidenceScore: 0.9}
	if err := badType.Validate(); err == nil {
		t.Fatalf("expected error for unknown doc_type")
	}

	badScore := Classification{DocType: DocTypeInvoice, ConfidenceScore: 1.2}
	if err := badScore.Validate(); err == nil {
		t.Fatalf("expected error for confidence outside [0,1]")
	}
}

func TestExtractionValidate(t *testing.T) {
	valid := Extraction{Currency: "USD", InvoiceDate: "2026-08-31"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid extraction rejected: %v", err)
	}

	badCurrency := Extraction{Currency: "USDT"}
	if err := badCurrency.Validate(); err == nil {
		t.Fatalf("expected error for 4-char currency")
	}

	badDate := Extraction{Currency: "EUR", InvoiceDate: "31/08/2026"}
	if err := badDate.Validate(); err == nil {
		t.Fatalf("expected error for non-ISO date")
	}
}

func TestComplianceValidate(t *testing.T) {
	valid := Compliance{Status: CompliancePass, ConfidenceScore: floatPtr(0.8)}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid compliance rejected: %v", err)
	}

	badStatus := Compliance{Status: "MAYBE"}
	if err := badStatus.Validate(); err == nil {
		t.Fatalf("expected error for unknown status")
	}

	badScore := Compliance{Status: CompliancePass, ConfidenceScore: floatPtr(-0.1)}
	if err := badScore.Validate(); err == nil {
		t.Fatalf("expected error for negative confidence")
	}
}

func TestDerivePhase(t *testing.T) {
	cases := []struct {
		name      string
		status    RunStatus
		approval  ApprovalStatus
		hasResult bool
		want      WorkflowPhase
	}{
		{"idle no result", RunIdle, ApprovalNone, false, PhaseIntake},
		{"processing", RunProcessing, ApprovalNone, false, PhaseProcessing},
		{"complete pending", RunComplete, ApprovalPending, true, PhaseReview},
		{"complete approved", RunComplete, ApprovalApproved, true, PhaseAction},
		{"complete rejected stays in review", RunComplete, ApprovalRejected, true, PhaseReview},
		{"error", RunError, ApprovalNone, false, PhaseIntake},
	}
	for _, tc := range cases {
		if got := DerivePhase(tc.status, tc.approval, tc.hasResult); got != tc.want {
			t.Fatalf("%s: DerivePhase = %s, want %s", tc.name, got, tc.want)
		}
	}
}

func TestApprovalTerminal(t *testing.T) {
	if ApprovalPending.Terminal() || ApprovalNone.Terminal() {
		t.Fatalf("pending/none must not be terminal")
	}
	for _, s := range []ApprovalStatus{ApprovalApproved, ApprovalRejected, ApprovalFlagged} {
		if !s.Terminal() {
			t.Fatalf("%s must be terminal", s)
		}
	}
}

func TestVendorNameFallback(t *testing.T) {
	var nilResult *PipelineResult
	if got := nilResult.VendorName(); got != "Unknown" {
		t.Fatalf("nil result vendor = %s, want Unknown", got)
	}
	result := &PipelineResult{Gatekeeper: &Classification{VendorName: "  "}}
	if got := result.VendorName(); got != "Unknown" {
		t.Fatalf("blank vendor = %s, want Unknown", got)
	}
	result.Gatekeeper.VendorName = "Acme Corp"
	if got := result.VendorName(); got != "Acme Corp" {
		t.Fatalf("vendor = %s, want Acme Corp", got)
	}
}

func TestEmailMetadataRecipientAddress(t *testing.T) {
	explicit := EmailMetadata{VendorName: "Acme Corp", VendorEmail: "billing@acme.test"}
	if got := explicit.RecipientAddress(); got != "billing@acme.test" {
		t.Fatalf("explicit recipient = %s", got)
	}

	derived := EmailMetadata{VendorName: "Acme Global Corp"}
	got := derived.RecipientAddress()
	if got != "acme.global.corp@supplier.com" {
		t.Fatalf("derived recipient = %s", got)
	}
	if strings.Contains(got, " ") {
		t.Fatalf("derived recipient contains spaces: %s", got)
	}
}
