package statement

import (
	"fmt"
	"strings"
	"time"

	"statement-service/internal/domain"
)

// Ranked column-name synonyms per canonical field. Order matters: the
// resolver always prefers the earliest candidate, so the dedicated total
// column beats generic amount columns and compound names like "Net Amount".
var (
	customerSynonyms = []string{"Customer Name", "Customer", "Client Name", "Client", "Party Name", "Bill To", "Account Name", "Payer"}
	amountSynonyms   = []string{"Total", "Amount", "Total Amount", "Original Amount", "Invoice Amount", "Gross Amount", "Value"}
	typeSynonyms     = []string{"Type", "Trx Type", "Transaction Type", "Doc Type", "Document Type", "Class"}
	dateSynonyms     = []string{"Date", "Trx Date", "Transaction Date", "Invoice Date", "Doc Date", "GL Date", "Posting Date"}
	numberSynonyms   = []string{"Number", "Invoice Number", "Invoice No", "Trx Number", "Reference", "Ref No", "Document Number", "Doc No"}
	regionSynonyms   = []string{"Region", "Area", "Zone", "Territory"}
	siteSynonyms     = []string{"Site Location", "Site", "Location", "Branch", "Outlet"}
	glAgencySynonyms = []string{"GL Agency", "GL Code", "Agency", "GL"}
	noteSynonyms     = []string{"Note", "Notes", "Remarks", "Comment", "Narration", "Description"}
)

// buildTransactions converts extracted records into canonical transactions.
// Rows without a resolvable customer name and summary rows (name containing
// "total") are skipped silently; that is filtering, not failure. Returns the
// transactions plus the distinct customer names in first-seen order.
func buildTransactions(rs *RowSet, ingestedAt time.Time) ([]domain.Transaction, []string, error) {
	var txs []domain.Transaction
	var customers []string
	seenCustomers := make(map[string]bool)

	for i, record := range rs.Records {
		rawName, ok := resolveField(rs.Header, record, customerSynonyms)
		if !ok || strings.TrimSpace(rawName) == "" {
			continue
		}
		name := NormalizeCustomerName(rawName)
		if strings.Contains(strings.ToLower(name), "total") {
			continue
		}

		rawAmount, _ := resolveField(rs.Header, record, amountSynonyms)
		amount := NormalizeAmount(rawAmount)

		typeText, ok := resolveField(rs.Header, record, typeSynonyms)
		if !ok {
			typeText = string(domain.IngestInvoice)
		}
		trxType := domain.IngestInvoice
		if strings.Contains(strings.ToLower(typeText), "payment") {
			trxType = domain.IngestPayment
			if amount.IsPositive() {
				amount = amount.Neg()
			}
		}
		// Parenthesis notation on the raw value is the final say on sign.
		if HasParenNegative(rawAmount) {
			amount = amount.Abs().Neg()
		}

		rawDate, _ := resolveField(rs.Header, record, dateSynonyms)
		number, _ := resolveField(rs.Header, record, numberSynonyms)
		region, _ := resolveField(rs.Header, record, regionSynonyms)
		site, _ := resolveField(rs.Header, record, siteSynonyms)
		glAgency, _ := resolveField(rs.Header, record, glAgencySynonyms)
		note, _ := resolveField(rs.Header, record, noteSynonyms)

		txs = append(txs, domain.Transaction{
			ID:             fmt.Sprintf("FILE-%d-%d", i, ingestedAt.UnixMilli()),
			TrxDate:        NormalizeDate(rawDate, ingestedAt),
			Number:         strings.TrimSpace(number),
			Region:         strings.TrimSpace(region),
			SiteLocation:   strings.TrimSpace(site),
			TrxType:        trxType,
			OriginalAmount: amount,
			CustomerName:   name,
			GLAgency:       strings.TrimSpace(glAgency),
			Note:           strings.TrimSpace(note),
		})

		if !seenCustomers[name] {
			seenCustomers[name] = true
			customers = append(customers, name)
		}
	}

	if len(txs) == 0 {
		return nil, nil, ErrNoValidTransactions
	}
	return txs, customers, nil
}

// ManualEntry carries the raw fields of a manually entered payment or invoice.
type ManualEntry struct {
	TrxDate      string `json:"trxDate"`
	Number       string `json:"number"`
	Region       string `json:"region"`
	SiteLocation string `json:"siteLocation"`
	TrxType      string `json:"trxType"`
	Amount       string `json:"amount"`
	CustomerName string `json:"customerName"`
	GLAgency     string `json:"glAgency"`
	Note         string `json:"note"`
}

// NewManualTransaction normalizes a manual entry into a canonical
// transaction. Unlike file ingestion there is no silent skip: a blank
// customer name is an input error.
func NewManualTransaction(e ManualEntry, now time.Time) (domain.Transaction, error) {
	if strings.TrimSpace(e.CustomerName) == "" {
		return domain.Transaction{}, fmt.Errorf("customer name is required")
	}

	amount := NormalizeAmount(e.Amount)
	trxType := domain.IngestInvoice
	if strings.Contains(strings.ToLower(e.TrxType), "payment") {
		trxType = domain.IngestPayment
		if amount.IsPositive() {
			amount = amount.Neg()
		}
	}
	if HasParenNegative(e.Amount) {
		amount = amount.Abs().Neg()
	}

	return domain.Transaction{
		ID:             fmt.Sprintf("MANUAL-%d", now.UnixNano()),
		TrxDate:        NormalizeDate(e.TrxDate, now),
		Number:         strings.TrimSpace(e.Number),
		Region:         strings.TrimSpace(e.Region),
		SiteLocation:   strings.TrimSpace(e.SiteLocation),
		TrxType:        trxType,
		OriginalAmount: amount,
		CustomerName:   NormalizeCustomerName(e.CustomerName),
		GLAgency:       strings.TrimSpace(e.GLAgency),
		Note:           strings.TrimSpace(e.Note),
	}, nil
}
