package statement

import (
	"sort"
	"strings"

	"statement-service/internal/domain"

	"github.com/schollz/closestmatch"
)

// sameCustomer compares cleaned customer names, ignoring case.
func sameCustomer(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

// inPeriod reports whether a canonical date falls inside the inclusive
// configured range. Canonical dates compare lexically; an empty bound is open.
func inPeriod(date string, cfg domain.StatementConfig) bool {
	if cfg.StartDate != "" && date < cfg.StartDate {
		return false
	}
	if cfg.EndDate != "" && date > cfg.EndDate {
		return false
	}
	return true
}

// BuildLedger merges file-sourced and manually entered transactions for one
// customer into a chronologically ordered, balance-annotated ledger. The
// engine is pure: it reads its four inputs, mutates none of them, and the same
// inputs always produce the same ledger.
//
// File rows inside the period are force-retagged INVOICE with the absolute
// amount; manual rows become PAYMENT with the negated absolute amount,
// regardless of how either was signed at ingestion. When both land on the same
// date, invoices come before payments.
func BuildLedger(fileTxs, manualTxs []domain.Transaction, customerName string, cfg domain.StatementConfig) (*domain.Ledger, error) {
	if strings.TrimSpace(customerName) == "" {
		return nil, ErrRenderTargetMissing
	}

	if !customerKnown(fileTxs, manualTxs, customerName) {
		return nil, &UnknownCustomerError{
			Customer:   customerName,
			Suggestion: closestCustomer(fileTxs, manualTxs, customerName),
		}
	}

	// The first manual entry for the customer carries the authoritative
	// region/site; file data locations are treated as possibly stale.
	var reference *domain.Transaction
	for i := range manualTxs {
		if sameCustomer(manualTxs[i].CustomerName, customerName) {
			reference = &manualTxs[i]
			break
		}
	}

	var entries []domain.LedgerEntry
	for _, tx := range fileTxs {
		if !sameCustomer(tx.CustomerName, customerName) || !inPeriod(tx.TrxDate, cfg) {
			continue
		}
		entry := domain.LedgerEntry{
			Transaction: tx,
			RenderType:  domain.RenderInvoice,
			Amount:      tx.OriginalAmount.Abs(),
		}
		if reference != nil {
			entry.Region = reference.Region
			entry.SiteLocation = reference.SiteLocation
		}
		entries = append(entries, entry)
	}
	for _, tx := range manualTxs {
		if !sameCustomer(tx.CustomerName, customerName) || !inPeriod(tx.TrxDate, cfg) {
			continue
		}
		entries = append(entries, domain.LedgerEntry{
			Transaction: tx,
			RenderType:  domain.RenderPayment,
			Amount:      tx.OriginalAmount.Abs().Neg(),
		})
	}

	// Stable sort over the invoices-then-payments concatenation keeps the
	// documented same-date ordering.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].TrxDate < entries[j].TrxDate
	})

	balance := cfg.OpeningBalance
	for i := range entries {
		balance = balance.Add(entries[i].Amount)
		entries[i].Balance = balance
	}

	return &domain.Ledger{
		CustomerName:   customerName,
		Config:         cfg,
		Entries:        entries,
		OpeningBalance: cfg.OpeningBalance,
		ClosingBalance: balance,
	}, nil
}

func customerKnown(fileTxs, manualTxs []domain.Transaction, customerName string) bool {
	for _, tx := range fileTxs {
		if sameCustomer(tx.CustomerName, customerName) {
			return true
		}
	}
	for _, tx := range manualTxs {
		if sameCustomer(tx.CustomerName, customerName) {
			return true
		}
	}
	return false
}

// closestCustomer fuzzy-matches the requested name against every known
// customer and returns the nearest one, or "". Matching keys are lowercase:
// closestmatch lowercases the search word internally, so uppercase dictionary
// keys can never score.
func closestCustomer(fileTxs, manualTxs []domain.Transaction, customerName string) string {
	byKey := make(map[string]string)
	var keys []string
	for _, tx := range append(append([]domain.Transaction{}, fileTxs...), manualTxs...) {
		key := strings.ToLower(normalizeText(tx.CustomerName))
		if key == "" || byKey[key] != "" {
			continue
		}
		byKey[key] = tx.CustomerName
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return ""
	}
	cm := closestmatch.New(keys, []int{3, 4})
	if match := cm.Closest(strings.ToLower(normalizeText(customerName))); match != "" {
		return byKey[match]
	}
	return ""
}
