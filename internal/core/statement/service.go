package statement

import (
	"io"
	"time"

	"statement-service/internal/domain"
)

// Service is the transaction reconciliation and statement-rendering pipeline:
// ingest a spreadsheet into canonical transactions, then build and render a
// statement of account from immutable snapshots of the session collections.
type Service interface {
	Ingest(file io.Reader) (*domain.IngestResult, error)
	Generate(fileTxs, manualTxs []domain.Transaction, customerName string, cfg domain.StatementConfig, logo []byte) (*RenderResult, *domain.Ledger, error)
}

type service struct{}

// NewService creates a new statement pipeline service.
func NewService() Service {
	return &service{}
}

// Ingest runs the ingestion pipeline over uploaded workbook bytes: locate the
// header row, extract keyed records, and build canonical transactions. The
// whole pipeline is synchronous; reading the bytes is the only blocking step.
func (svc *service) Ingest(file io.Reader) (*domain.IngestResult, error) {
	rows, err := loadWorkbookRows(file)
	if err != nil {
		return nil, err
	}

	rowSet, err := extractRecords(rows)
	if err != nil {
		return nil, err
	}

	txs, customers, err := buildTransactions(rowSet, time.Now())
	if err != nil {
		return nil, err
	}

	return &domain.IngestResult{Transactions: txs, Customers: customers}, nil
}

// Generate builds the merged ledger for one customer and renders it into a
// document. Rendering never mutates the source collections; persistence of
// the result is the caller's concern.
func (svc *service) Generate(fileTxs, manualTxs []domain.Transaction, customerName string, cfg domain.StatementConfig, logo []byte) (*RenderResult, *domain.Ledger, error) {
	ledger, err := BuildLedger(fileTxs, manualTxs, customerName, cfg)
	if err != nil {
		return nil, nil, err
	}

	result, err := RenderStatement(ledger, logo)
	if err != nil {
		return nil, nil, err
	}
	return result, ledger, nil
}
