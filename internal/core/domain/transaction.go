package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the direction of a ledger entry.
type TransactionType string

const (
	TransactionTypeCredit TransactionType = "CREDIT"
	TransactionTypeDebit  TransactionType = "DEBIT"
)

// Default descriptions used when the caller leaves one out.
const (
	DescriptionSetup  = "Setup"
	DescriptionCredit = "Credit"
	DescriptionDebit  = "Debit"
)

// TypeOf derives the transaction type from the sign of amount.
// Zero is only produced by setup and counts as a credit.
func TypeOf(amount decimal.Decimal) TransactionType {
	if amount.IsNegative() {
		return TransactionTypeDebit
	}
	return TransactionTypeCredit
}

// DefaultDescription returns "Credit" or "Debit" depending on the sign of amount.
func DefaultDescription(amount decimal.Decimal) string {
	if amount.IsNegative() {
		return DescriptionDebit
	}
	return DescriptionCredit
}

// Transaction is an immutable ledger entry recording one balance change.
type Transaction struct {
	ID          uuid.UUID       `json:"id"`
	WalletID    uuid.UUID       `json:"wallet_id"`
	Amount      decimal.Decimal `json:"amount"`
	Balance     decimal.Decimal `json:"balance"` // wallet balance after this entry
	Description string          `json:"description"`
	Type        TransactionType `json:"type"`
	Date        time.Time       `json:"date"`
}

// NewTransaction builds a ledger entry with a fresh id and a type derived from amount.
func NewTransaction(walletID uuid.UUID, amount, balance decimal.Decimal, description string, at time.Time) *Transaction {
	if description == "" {
		description = DefaultDescription(amount)
	}
	return &Transaction{
		ID:          uuid.New(),
		WalletID:    walletID,
		Amount:      amount,
		Balance:     balance,
		Description: description,
		Type:        TypeOf(amount),
		Date:        at,
	}
}
