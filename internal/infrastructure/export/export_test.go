package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/orclabs/orchestrator/internal/core/domain"
)

func sampleEntries() []domain.AuditEntry {
	return []domain.AuditEntry{
		domain.NewAuditEntry(
			"audit_1",
			time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC),
			domain.DecisionApproved,
			&domain.PipelineResult{
				Gatekeeper: &domain.Classification{DocType: domain.DocTypeInvoice, VendorName: "Acme Corp", ConfidenceScore: 0.96},
				Analyst:    &domain.Extraction{TotalAmount: 42.5, Currency: "USD", LineItems: []domain.LineItem{{Description: "x"}}},
				Guardian:   &domain.Compliance{Status: domain.CompliancePass, Flags: []string{}},
			},
			"invoice.pdf",
			"",
		),
	}
}

func TestParseFormat(t *testing.T) {
	for raw, want := range map[string]Format{"": FormatJSON, "json": FormatJSON, "CSV": FormatCSV, "xlsx": FormatXLSX} {
		got, err := ParseFormat(raw)
		if err != nil || got != want {
			t.Fatalf("ParseFormat(%q) = (%v, %v), want %v", raw, got, err, want)
		}
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestFilename(t *testing.T) {
	at := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	got := Filename("orc_audit_log", FormatCSV, at)
	if got != "orc_audit_log_2026-09-01.csv" {
		t.Fatalf("Filename = %s", got)
	}
}

func TestAuditCSV(t *testing.T) {
	payload, err := Audit(sampleEntries(), FormatCSV)
	if err != nil {
		t.Fatalf("Audit() error = %v", err)
	}

	rows, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(rows))
	}
	if rows[0][0] != "id" || rows[1][0] != "audit_1" {
		t.Fatalf("unexpected rows: %v", rows)
	}
	joined := strings.Join(rows[1], ",")
	if !strings.Contains(joined, "Acme Corp") || !strings.Contains(joined, "42.50") {
		t.Fatalf("row missing snapshot fields: %s", joined)
	}
}

func TestAuditJSON(t *testing.T) {
	payload, err := Audit(sampleEntries(), FormatJSON)
	if err != nil {
		t.Fatalf("Audit() error = %v", err)
	}
	var decoded []domain.AuditEntry
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("json export must round-trip: %v", err)
	}
	if len(decoded) != 1 || decoded[0].ID != "audit_1" {
		t.Fatalf("decoded = %+v", decoded)
	}
}

func TestAuditXLSX(t *testing.T) {
	payload, err := Audit(sampleEntries(), FormatXLSX)
	if err != nil {
		t.Fatalf("Audit() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("open xlsx: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Sheet1")
	if err != nil {
		t.Fatalf("read sheet: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(rows))
	}
	if rows[0][0] != "id" || rows[1][0] != "audit_1" {
		t.Fatalf("unexpected sheet rows: %v", rows)
	}
}

func TestDraftsCSV(t *testing.T) {
	drafts := []domain.EmailDraft{{
		ID:        "email_1",
		To:        "acme.corp@supplier.com",
		Subject:   "Documentation Request - INV-1",
		Type:      domain.EmailInquiry,
		Status:    domain.DraftStatusDraft,
		CreatedAt: time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC),
		Metadata:  domain.EmailMetadata{VendorName: "Acme Corp", DocumentRef: "INV-1", TotalAmount: 10, Currency: "USD"},
	}}

	payload, err := Drafts(drafts, FormatCSV)
	if err != nil {
		t.Fatalf("Drafts() error = %v", err)
	}
	rows, err := csv.NewReader(bytes.NewReader(payload)).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(rows) != 2 || rows[1][0] != "email_1" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}
