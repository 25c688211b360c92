package prompts

import (
	"encoding/json"
	"fmt"
	"strings"
)

const (
	AgentGatekeeper = "GATEKEEPER"
	AgentAnalyst    = "ANALYST"
	AgentGuardian   = "GUARDIAN"
)

// Gatekeeper builds the classification instruction from the engine entry, or
// the built-in default when the engine lacks one.
func Gatekeeper(engine *Engine, textSnippet string) string {
	var b strings.Builder
	if cfg := engine.Agent(AgentGatekeeper); cfg != nil {
		fmt.Fprintf(&b, "ROLE: %s\n", cfg.Role)
		fmt.Fprintf(&b, "INSTRUCTION: %s\n", cfg.Instruction)
		fmt.Fprintf(&b, "OUTPUT SCHEMA (Strict JSON): %s\n", rawJSON(cfg.OutputSchema))
	} else {
		b.WriteString("ROLE: Universal Document Classifier\n")
		b.WriteString("INSTRUCTION: Identify what this document IS. Extract raw text content summary.\n")
		b.WriteString("OUTPUT SCHEMA: JSON matching { doc_type, vendor_name, confidence_score, summary }\n")
		b.WriteString("doc_type must be one of: Invoice, Purchase_Order, Chat_Log, Email, Unknown.\n")
	}
	appendSnippet(&b, textSnippet)
	return b.String()
}

// Analyst builds the extraction instruction.
func Analyst(engine *Engine, textSnippet string) string {
	var b strings.Builder
	if cfg := engine.Agent(AgentAnalyst); cfg != nil {
		fmt.Fprintf(&b, "ROLE: %s\n", cfg.Role)
		fmt.Fprintf(&b, "INSTRUCTION: %s\n", cfg.Instruction)
		fmt.Fprintf(&b, "FIELDS TO EXTRACT: %s\n", rawJSON(cfg.FieldsToExtract))
		fmt.Fprintf(&b, "LOGIC: %s\n", cfg.Logic)
	} else {
		b.WriteString("ROLE: Supply Chain Data Extractor\n")
		b.WriteString("INSTRUCTION: Extract entities (PO#, Date, Vendor, Totals). Normalize Dates to YYYY-MM-DD.\n")
		b.WriteString("OUTPUT SCHEMA: JSON matching { po_number, invoice_date, vendor_details: { name, address }, line_items: [{ sku, desc, qty, unit_price, total }], subtotal, tax_amount, total_amount, currency }\n")
		b.WriteString("currency must be a 3-letter code.\n")
	}
	appendSnippet(&b, textSnippet)
	return b.String()
}

// Guardian builds the compliance instruction. Both prior stage outputs are
// embedded as JSON context; this is a text-only call.
func Guardian(engine *Engine, gatekeeperJSON, analystJSON []byte) string {
	var b strings.Builder
	if cfg := engine.Agent(AgentGuardian); cfg != nil {
		fmt.Fprintf(&b, "ROLE: %s\n", cfg.Role)
		fmt.Fprintf(&b, "INSTRUCTION: %s\n", cfg.Instruction)
		fmt.Fprintf(&b, "CHECKS: %s\n", rawJSON(cfg.Checks))
		fmt.Fprintf(&b, "OUTPUT SCHEMA: %s\n", rawJSON(cfg.OutputSchema))
	} else {
		b.WriteString("ROLE: Compliance & Safety Officer\n")
		b.WriteString("INSTRUCTION: Check for PII, Math Errors, and Suspicious Values.\n")
		b.WriteString("OUTPUT SCHEMA: JSON matching { status: PASS|REVIEW|REJECT, flags: [string], reasoning, confidence_score, requires_human_review, pii_detected }\n")
	}
	b.WriteString("CONTEXT:\n")
	fmt.Fprintf(&b, "Gatekeeper: %s\n", gatekeeperJSON)
	fmt.Fprintf(&b, "Analyst: %s\n", analystJSON)
	return b.String()
}

func rawJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "{}"
	}
	return string(raw)
}

func appendSnippet(b *strings.Builder, snippet string) {
	snippet = strings.TrimSpace(snippet)
	if snippet == "" {
		return
	}
	b.WriteString("EXTRACTED TEXT (partial, for context):\n")
	b.WriteString(snippet)
	b.WriteString("\n")
}
