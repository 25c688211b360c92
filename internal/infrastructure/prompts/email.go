package prompts

import (
	"fmt"
	"strings"

	"github.com/orclabs/orchestrator/internal/core/domain"
)

// EmailTemplate describes one supplier email variant shown to the operator.
type EmailTemplate struct {
	Name            string
	Description     string
	SubjectTemplate string
}

var emailTemplates = map[domain.EmailType]EmailTemplate{
	domain.EmailInquiry: {
		Name:            "Documentation Inquiry",
		Description:     "Request additional documentation or clarification from supplier",
		SubjectTemplate: "Documentation Request - {documentRef}",
	},
	domain.EmailFollowUp: {
		Name:            "Follow-Up Reminder",
		Description:     "Gentle reminder for pending responses or outstanding items",
		SubjectTemplate: "Follow-Up: Pending Response Required - {documentRef}",
	},
	domain.EmailNegotiation: {
		Name:            "Terms Discussion",
		Description:     "Initiate price or terms negotiation based on extracted data",
		SubjectTemplate: "Regarding Terms and Pricing - {documentRef}",
	},
	domain.EmailConfirmation: {
		Name:            "Receipt Confirmation",
		Description:     "Acknowledge receipt and approval of submitted documents",
		SubjectTemplate: "Confirmation: Document Received - {documentRef}",
	},
}

// EmailSubject renders the subject line for a draft type.
func EmailSubject(emailType domain.EmailType, documentRef string) string {
	tpl, ok := emailTemplates[emailType]
	if !ok {
		return documentRef
	}
	return strings.ReplaceAll(tpl.SubjectTemplate, "{documentRef}", documentRef)
}

var emailTypeInstructions = map[domain.EmailType]string{
	domain.EmailInquiry: `Write an email requesting additional documentation or clarification.
- Ask for specific missing information
- Mention the document reference
- Provide a reasonable response timeframe (5 business days)
- Be professional and courteous`,
	domain.EmailFollowUp: `Write a gentle follow-up reminder email.
- Reference the original document/request
- Politely note the pending items
- Offer assistance if they need clarification
- Suggest a call if needed`,
	domain.EmailNegotiation: `Write an email to discuss pricing or terms.
- Acknowledge receipt of their document
- Express interest in discussing terms
- Be diplomatic and open to discussion
- Suggest a meeting or call to discuss further`,
	domain.EmailConfirmation: `Write a confirmation email acknowledging receipt and approval.
- Confirm you received and reviewed their document
- Mention the approval status
- Outline any next steps
- Thank them for their business`,
}

// Email builds the generation prompt for one supplier email draft.
func Email(emailType domain.EmailType, metadata domain.EmailMetadata) string {
	var b strings.Builder
	b.WriteString("You are a professional procurement assistant drafting an email to a supplier.\n")
	b.WriteString("Write in a professional but friendly tone. Keep emails concise and actionable.\n\n")
	fmt.Fprintf(&b, "Vendor: %s\n", metadata.VendorName)
	fmt.Fprintf(&b, "Document Reference: %s\n", metadata.DocumentRef)
	fmt.Fprintf(&b, "Total Amount: %.2f %s\n", metadata.TotalAmount, metadata.Currency)
	fmt.Fprintf(&b, "Line Items: %d\n\n", metadata.LineItemsCount)
	b.WriteString(emailTypeInstructions[emailType])
	b.WriteString("\n\nGenerate ONLY the email body text. Do not include subject line, sender, or recipient headers. ")
	b.WriteString("Start directly with the greeting.\n")
	b.WriteString("Keep the email professional, concise (under 200 words), and actionable.\n")
	return b.String()
}
