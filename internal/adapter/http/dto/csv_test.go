package dto

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func csvFixture(walletID uuid.UUID) []domain.Transaction {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	return []domain.Transaction{
		*domain.NewTransaction(walletID, decimal.RequireFromString("-5"), decimal.RequireFromString("25.6679"), "", at.Add(2*time.Minute)),
		*domain.NewTransaction(walletID, decimal.RequireFromString("10.1"), decimal.RequireFromString("30.6679"), "", at.Add(time.Minute)),
		*domain.NewTransaction(walletID, decimal.RequireFromString("20.5679"), decimal.RequireFromString("20.5679"), domain.DescriptionSetup, at),
	}
}

func TestWriteTransactionsCSV(t *testing.T) {
	id := uuid.New()
	txns := csvFixture(id)
	txns[0].Description = `Rent, "May"`

	var buf bytes.Buffer
	require.NoError(t, WriteTransactionsCSV(&buf, txns))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"ID", "Type", "Amount", "Balance", "Description", "Date"}, records[0])
	assert.Equal(t, []string{
		txns[0].ID.String(), "DEBIT", "-5.0000", "25.6679", `Rent, "May"`, "2024-03-01T12:02:00Z",
	}, records[1])
	assert.Equal(t, "CREDIT", records[3][1])
	assert.Equal(t, "20.5679", records[3][2])
	assert.Equal(t, "Setup", records[3][4])
}

func TestWriteTransactionsCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransactionsCSV(&buf, nil))
	assert.Equal(t, "ID,Type,Amount,Balance,Description,Date\n", buf.String())
}

func TestWriteTransactionsCSV_NeutralizesFormulas(t *testing.T) {
	txns := csvFixture(uuid.New())
	txns[0].Description = `=HYPERLINK("http://x","y")`
	txns[1].Description = "@SUM(A1)"
	txns[2].Description = "-2+3"

	var buf bytes.Buffer
	require.NoError(t, WriteTransactionsCSV(&buf, txns))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, `'=HYPERLINK("http://x","y")`, records[1][4])
	assert.Equal(t, "'@SUM(A1)", records[2][4])
	assert.Equal(t, "'-2+3", records[3][4])
	assert.Equal(t, "-5.0000", records[1][2], "numeric columns are untouched")
}
