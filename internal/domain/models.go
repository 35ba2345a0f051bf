// package domain/models.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// IngestType tags a transaction at ingestion time, before any statement is built.
type IngestType string

// Constants for ingestion-time tags.
const (
	IngestInvoice IngestType = "INV"
	IngestPayment IngestType = "Payment"
)

// RenderType tags a ledger entry at statement-build time. The merge stage
// forces the tag from the entry's source collection (file rows become
// invoices, manual rows become payments) irrespective of the ingestion tag,
// so the two vocabularies are kept as distinct types on purpose.
type RenderType string

// Constants for render-time tags.
const (
	RenderInvoice RenderType = "INVOICE"
	RenderPayment RenderType = "PAYMENT"
)

// DateLayout is the canonical calendar-date form used everywhere in the
// service. Canonical dates compare correctly as plain strings.
const DateLayout = "2006-01-02"

// Transaction is the normalized representation of one ledger entry,
// independent of its original source format. Transactions are immutable after
// creation; statement building works on filtered copies.
type Transaction struct {
	ID             string          `json:"id"`
	TrxDate        string          `json:"trxDate"` // canonical YYYY-MM-DD
	Number         string          `json:"number"`
	Region         string          `json:"region"`
	SiteLocation   string          `json:"siteLocation"`
	TrxType        IngestType      `json:"trxType"`
	OriginalAmount decimal.Decimal `json:"originalAmount"`
	CustomerName   string          `json:"customerName"`
	GLAgency       string          `json:"glAgency,omitempty"`
	Note           string          `json:"note,omitempty"`
}

// StatementConfig is the session-scoped configuration consumed at render
// time. It is captured into each generated statement's history record but is
// not persisted on its own.
type StatementConfig struct {
	OperatingUnit  string          `json:"operatingUnit"`
	StartDate      string          `json:"startDate"` // canonical YYYY-MM-DD, inclusive
	EndDate        string          `json:"endDate"`   // canonical YYYY-MM-DD, inclusive
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	LogoURL        string          `json:"logoUrl,omitempty"`
}

// PeriodString renders the configured date range for display and history records.
func (c StatementConfig) PeriodString() string {
	return c.StartDate + " to " + c.EndDate
}

// LedgerEntry is one row of a built statement: a retagged copy of a source
// transaction with its rendering amount and the running balance after it.
type LedgerEntry struct {
	Transaction
	RenderType RenderType      `json:"renderType"`
	Amount     decimal.Decimal `json:"amount"`  // signed rendering amount
	Balance    decimal.Decimal `json:"balance"` // running balance after this row
}

// Ledger is the merged, chronologically ordered sequence of invoice and
// payment entries for one customer within a date range.
type Ledger struct {
	CustomerName   string          `json:"customerName"`
	Config         StatementConfig `json:"config"`
	Entries        []LedgerEntry   `json:"entries"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
}

// StatementHistoryItem is the persisted record of one completed generation.
// Created exactly once per successful generation; never updated.
type StatementHistoryItem struct {
	ID           string          `json:"id"`
	OwnerID      string          `json:"ownerId"`
	CustomerName string          `json:"customerName"`
	Period       string          `json:"period"`
	FileName     string          `json:"fileName"`
	Reference    string          `json:"reference"` // document-store reference
	Config       StatementConfig `json:"config"`
	GeneratedAt  time.Time       `json:"generatedAt"`
}

// IngestResult is the caller-facing summary of one file ingestion.
type IngestResult struct {
	Transactions []Transaction `json:"transactions"`
	Customers    []string      `json:"customers"` // distinct, in first-seen order
}
