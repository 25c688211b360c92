package domain

import (
	"fmt"
	"strings"
	"time"
)

type EmailType string

const (
	EmailInquiry      EmailType = "inquiry"
	EmailFollowUp     EmailType = "follow_up"
	EmailNegotiation  EmailType = "negotiation"
	EmailConfirmation EmailType = "confirmation"
)

func ParseEmailType(raw string) (EmailType, error) {
	switch EmailType(raw) {
	case EmailInquiry, EmailFollowUp, EmailNegotiation, EmailConfirmation:
		return EmailType(raw), nil
	}
	return "", fmt.Errorf("unknown email type %q", raw)
}

type DraftStatus string

const (
	DraftStatusDraft    DraftStatus = "draft"
	DraftStatusApproved DraftStatus = "approved"
	DraftStatusSent     DraftStatus = "sent"
	DraftStatusRejected DraftStatus = "rejected"
)

func ParseDraftStatus(raw string) (DraftStatus, error) {
	switch DraftStatus(raw) {
	case DraftStatusDraft, DraftStatusApproved, DraftStatusSent, DraftStatusRejected:
		return DraftStatus(raw), nil
	}
	return "", fmt.Errorf("unknown draft status %q", raw)
}

// EmailMetadata is the extracted-document context an email is drafted from.
type EmailMetadata struct {
	VendorName     string  `json:"vendor_name"`
	VendorEmail    string  `json:"vendor_email,omitempty"`
	DocumentRef    string  `json:"document_ref"`
	TotalAmount    float64 `json:"total_amount"`
	Currency       string  `json:"currency"`
	LineItemsCount int     `json:"line_items_count"`
}

func (m EmailMetadata) Validate() error {
	if strings.TrimSpace(m.VendorName) == "" {
		return fmt.Errorf("vendor_name is required")
	}
	if strings.TrimSpace(m.DocumentRef) == "" {
		return fmt.Errorf("document_ref is required")
	}
	return nil
}

// RecipientAddress is the explicit vendor email, or a placeholder derived
// from the vendor name.
func (m EmailMetadata) RecipientAddress() string {
	if strings.TrimSpace(m.VendorEmail) != "" {
		return m.VendorEmail
	}
	slug := strings.ToLower(strings.Join(strings.Fields(m.VendorName), "."))
	return slug + "@supplier.com"
}

// EmailDraft is a generated supplier email awaiting operator action. Its
// lifecycle is independent from the document pipeline.
type EmailDraft struct {
	ID        string        `json:"id"`
	To        string        `json:"to"`
	Subject   string        `json:"subject"`
	Body      string        `json:"body"`
	Type      EmailType     `json:"type"`
	Status    DraftStatus   `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	Metadata  EmailMetadata `json:"metadata"`
}
