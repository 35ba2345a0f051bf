package statement

import (
	"bytes"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"statement-service/internal/domain"
)

func sampleLedger(t *testing.T) *domain.Ledger {
	t.Helper()
	fileTxs := []domain.Transaction{
		tx("F1", "Acme Trading Co.", "2024-01-05", "500.00", domain.IngestInvoice),
	}
	manualTxs := []domain.Transaction{
		tx("M1", "Acme Trading Co.", "2024-01-10", "-200.00", domain.IngestPayment),
	}
	ledger, err := BuildLedger(fileTxs, manualTxs, "Acme Trading Co.", januaryConfig("1000.00"))
	require.NoError(t, err)
	return ledger
}

func TestRenderStatement_SameLedgerSameBytes(t *testing.T) {
	ledger := sampleLedger(t)

	first, err := RenderStatement(ledger, nil)
	require.NoError(t, err)

	// Resource dictionary ordering comes from map iteration, so one repeat is
	// not convincing on its own.
	for i := 0; i < 5; i++ {
		again, err := RenderStatement(ledger, nil)
		require.NoError(t, err)
		assert.True(t, bytes.Equal(first.Content, again.Content), "render %d differs for the same ledger", i+2)
	}
}

func TestRenderStatement_ProducesPDF(t *testing.T) {
	result, err := RenderStatement(sampleLedger(t), nil)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(result.Content, []byte("%PDF")))
	assert.Equal(t, "SOA_Acme_Trading_Co._2024-01-31.pdf", result.FileName)
}

func TestRenderStatement_UndecodableLogoFallsBackToTitle(t *testing.T) {
	ledger := sampleLedger(t)
	result, err := RenderStatement(ledger, []byte("not an image"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(result.Content, []byte("%PDF")))
}

func TestStatementFileName_SanitizesCustomer(t *testing.T) {
	assert.Equal(t, "SOA_Acme_Co_2024-01-31.pdf", StatementFileName("Acme & Co?", "2024-01-31"))
	assert.Equal(t, "SOA_X_2024-01-31.pdf", StatementFileName("  X  ", "2024-01-31"))
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0.00"},
		{"1234.5", "1,234.50"},
		{"1234567.891", "1,234,567.89"},
		{"-200", "-200.00"},
		{"-1250.5", "-1,250.50"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatAmount(decimal.RequireFromString(tt.in)), "input %s", tt.in)
	}
}
