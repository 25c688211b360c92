package domain

import (
	"fmt"
	"strings"
	"time"
)

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

// Artifact is an uploaded document held in memory for the duration of one
// orchestration request. The core never persists its bytes.
type Artifact struct {
	Filename string
	MimeType string
	Data     []byte
}

// Document is the persisted record for asynchronously ingested uploads.
type Document struct {
	ID          string          `json:"id"`
	Filename    string          `json:"filename"`
	MimeType    string          `json:"mime_type"`
	StoragePath string          `json:"storage_path"`
	Status      DocumentStatus  `json:"status"`
	Approval    ApprovalStatus  `json:"approval,omitempty"`
	Result      *PipelineResult `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type DocType string

const (
	DocTypeInvoice       DocType = "Invoice"
	DocTypePurchaseOrder DocType = "Purchase_Order"
	DocTypeChatLog       DocType = "Chat_Log"
	DocTypeEmail         DocType = "Email"
	DocTypeUnknown       DocType = "Unknown"
)

// Extractable reports whether the Analyst and Guardian stages run for this
// document type.
func (t DocType) Extractable() bool {
	return t == DocTypeInvoice || t == DocTypePurchaseOrder
}

// Classification is the Gatekeeper stage output.
type Classification struct {
	DocType         DocType `json:"doc_type"`
	VendorName      string  `json:"vendor_name,omitempty"`
	ConfidenceScore float64 `json:"confidence_score"`
	Summary         string  `json:"summary"`
}

func (c Classification) Validate() error {
	switch c.DocType {
	case DocTypeInvoice, DocTypePurchaseOrder, DocTypeChatLog, DocTypeEmail, DocTypeUnknown:
	default:
		return fmt.Errorf("unknown doc_type %q", c.DocType)
	}
	if c.ConfidenceScore < 0 || c.ConfidenceScore > 1 {
		return fmt.Errorf("confidence_score %v outside [0,1]", c.ConfidenceScore)
	}
	return nil
}

type LineItem struct {
	SKU         string  `json:"sku,omitempty"`
	Description string  `json:"desc"`
	Quantity    float64 `json:"qty"`
	UnitPrice   float64 `json:"unit_price"`
	Total       float64 `json:"total"`
}

type VendorDetails struct {
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
}

// Extraction is the Analyst stage output.
type Extraction struct {
	PONumber      string        `json:"po_number,omitempty"`
	InvoiceDate   string        `json:"invoice_date"`
	VendorDetails VendorDetails `json:"vendor_details"`
	LineItems     []LineItem    `json:"line_items"`
	Subtotal      float64       `json:"subtotal"`
	TaxAmount     float64       `json:"tax_amount"`
	TotalAmount   float64       `json:"total_amount"`
	Currency      string        `json:"currency"`
}

func (e Extraction) Validate() error {
	if len(e.Currency) != 3 {
		return fmt.Errorf("currency %q must be exactly 3 characters", e.Currency)
	}
	if e.InvoiceDate != "" {
		if _, err := time.Parse("2006-01-02", e.InvoiceDate); err != nil {
			return fmt.Errorf("invoice_date %q is not a calendar date: %w", e.InvoiceDate, err)
		}
	}
	return nil
}

type ComplianceStatus string

const (
	CompliancePass   ComplianceStatus = "PASS"
	ComplianceReview ComplianceStatus = "REVIEW"
	ComplianceReject ComplianceStatus = "REJECT"
)

// Compliance is the Guardian stage output.
type Compliance struct {
	Status              ComplianceStatus `json:"status"`
	Flags               []string         `json:"flags"`
	Reasoning           string           `json:"reasoning"`
	ConfidenceScore     *float64         `json:"confidence_score,omitempty"`
	RequiresHumanReview bool             `json:"requires_human_review,omitempty"`
	PIIDetected         bool             `json:"pii_detected,omitempty"`
}

func (c Compliance) Validate() error {
	switch c.Status {
	case CompliancePass, ComplianceReview, ComplianceReject:
	default:
		return fmt.Errorf("unknown compliance status %q", c.Status)
	}
	if c.ConfidenceScore != nil && (*c.ConfidenceScore < 0 || *c.ConfidenceScore > 1) {
		return fmt.Errorf("confidence_score %v outside [0,1]", *c.ConfidenceScore)
	}
	return nil
}

// PipelineResult aggregates the three stage outputs. Analyst and Guardian are
// nil when classification routes around them or when their stage failed.
type PipelineResult struct {
	Gatekeeper *Classification `json:"gatekeeper"`
	Analyst    *Extraction     `json:"analyst"`
	Guardian   *Compliance     `json:"guardian"`
}

// ConfidenceThreshold is the cutoff below which a classification is treated
// as low-confidence for review purposes.
const ConfidenceThreshold = 0.90

// RequiresHumanReview reports whether the result may not be auto-approved.
// PII detection forces review regardless of every other signal.
func (r *PipelineResult) RequiresHumanReview() bool {
	if r == nil || r.Gatekeeper == nil {
		return false
	}
	if r.Gatekeeper.ConfidenceScore < ConfidenceThreshold {
		return true
	}
	if g := r.Guardian; g != nil {
		if g.PIIDetected {
			return true
		}
		if g.Status == ComplianceReview || g.Status == ComplianceReject {
			return true
		}
		if g.RequiresHumanReview {
			return true
		}
	}
	return false
}

// VendorName returns the classified vendor, or "Unknown".
func (r *PipelineResult) VendorName() string {
	if r != nil && r.Gatekeeper != nil && strings.TrimSpace(r.Gatekeeper.VendorName) != "" {
		return r.Gatekeeper.VendorName
	}
	return "Unknown"
}
