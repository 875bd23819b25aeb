package dto

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"wallet-ledger/internal/core/domain"
)

var csvHeader = []string{"ID", "Type", "Amount", "Balance", "Description", "Date"}

// WriteTransactionsCSV renders txns as CSV in the order given.
func WriteTransactionsCSV(w io.Writer, txns []domain.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, t := range txns {
		record := []string{
			t.ID.String(),
			string(t.Type),
			t.Amount.StringFixed(domain.Scale),
			t.Balance.StringFixed(domain.Scale),
			csvText(t.Description),
			t.Date.UTC().Format(time.RFC3339),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv record: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// csvText quotes a leading formula trigger so spreadsheets show the cell as text.
func csvText(s string) string {
	if s != "" && strings.ContainsRune("=+-@\t\r", rune(s[0])) {
		return "'" + s
	}
	return s
}
