package statement

import (
	"errors"
	"fmt"
)

// Ingestion and generation failures. Each names the failing stage so the
// handler can surface a precise reason; per-row skips during building are
// deliberate filtering, not errors.
var (
	// ErrMalformedFile means the byte stream is not a decodable workbook.
	ErrMalformedFile = errors.New("file is not a readable spreadsheet")

	// ErrHeaderNotFound means no scanned row contains a recognizable
	// customer-column keyword.
	ErrHeaderNotFound = errors.New("no customer column header found in the first 50 rows")

	// ErrEmptyData means a header row was found but no data rows follow it.
	ErrEmptyData = errors.New("header row found but the sheet has no data rows")

	// ErrNoValidTransactions means the file was readable but every data row
	// was discarded by the builder's skip rules.
	ErrNoValidTransactions = errors.New("no usable transactions found in file")

	// ErrRenderTargetMissing means a statement was requested with no customer
	// selected. This is a precondition failure, checked before any work begins.
	ErrRenderTargetMissing = errors.New("no customer selected for statement")
)

// UnknownCustomerError is returned when a statement is requested for a
// customer that appears in neither transaction collection. Suggestion holds
// the closest known customer name, when one exists.
type UnknownCustomerError struct {
	Customer   string
	Suggestion string
}

func (e *UnknownCustomerError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("no transactions for customer %q (closest match: %q)", e.Customer, e.Suggestion)
	}
	return fmt.Sprintf("no transactions for customer %q", e.Customer)
}
