package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/orclabs/orchestrator/internal/core/domain"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

func ParseFormat(raw string) (Format, error) {
	switch Format(strings.ToLower(raw)) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCSV:
		return FormatCSV, nil
	case FormatXLSX:
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown export format %q", raw)
}

func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Filename builds the download name, e.g. orc_audit_log_2026-09-01.csv.
func Filename(prefix string, format Format, at time.Time) string {
	return fmt.Sprintf("%s_%s.%s", prefix, at.Format("2006-01-02"), format)
}

var auditHeader = []string{
	"id", "timestamp", "action", "filename", "doc_type", "vendor_name",
	"total_amount", "currency", "line_items_count",
	"gatekeeper_confidence", "guardian_status", "guardian_flags",
	"requires_human_review", "pii_detected", "reason",
}

func auditRow(e domain.AuditEntry) []string {
	return []string{
		e.ID,
		e.Timestamp.UTC().Format(time.RFC3339),
		string(e.Action),
		e.Document.Filename,
		e.Document.DocType,
		e.Document.VendorName,
		strconv.FormatFloat(e.Extraction.TotalAmount, 'f', 2, 64),
		e.Extraction.Currency,
		strconv.Itoa(e.Extraction.LineItemsCount),
		strconv.FormatFloat(e.Decision.GatekeeperConfidence, 'f', 2, 64),
		e.Decision.GuardianStatus,
		strings.Join(e.Decision.GuardianFlags, "; "),
		strconv.FormatBool(e.Decision.RequiresHumanReview),
		strconv.FormatBool(e.Decision.PIIDetected),
		e.Reason,
	}
}

func Audit(entries []domain.AuditEntry, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return writeCSV(auditHeader, entries, auditRow)
	case FormatXLSX:
		return writeXLSX(auditHeader, entries, auditRow)
	default:
		return json.MarshalIndent(entries, "", "  ")
	}
}

var draftHeader = []string{
	"id", "created_at", "type", "status", "to", "subject",
	"vendor_name", "document_ref", "total_amount", "currency",
}

func draftRow(d domain.EmailDraft) []string {
	return []string{
		d.ID,
		d.CreatedAt.UTC().Format(time.RFC3339),
		string(d.Type),
		string(d.Status),
		d.To,
		d.Subject,
		d.Metadata.VendorName,
		d.Metadata.DocumentRef,
		strconv.FormatFloat(d.Metadata.TotalAmount, 'f', 2, 64),
		d.Metadata.Currency,
	}
}

func Drafts(drafts []domain.EmailDraft, format Format) ([]byte, error) {
	switch format {
	case FormatCSV:
		return writeCSV(draftHeader, drafts, draftRow)
	case FormatXLSX:
		return writeXLSX(draftHeader, drafts, draftRow)
	default:
		return json.MarshalIndent(drafts, "", "  ")
	}
}

func writeCSV[T any](header []string, items []T, row func(T) []string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, item := range items {
		if err := w.Write(row(item)); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func writeXLSX[T any](header []string, items []T, row func(T) []string) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	if err := setRow(f, sheet, 1, header); err != nil {
		return nil, err
	}
	for i, item := range items {
		if err := setRow(f, sheet, i+2, row(item)); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, sheet string, rowIdx int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowIdx)
	if err != nil {
		return fmt.Errorf("xlsx cell name: %w", err)
	}
	cells := make([]any, len(values))
	for i, v := range values {
		cells[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &cells); err != nil {
		return fmt.Errorf("xlsx set row: %w", err)
	}
	return nil
}
