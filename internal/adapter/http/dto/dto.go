package dto

import (
	"encoding/json"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"

	"github.com/shopspring/decimal"
)

// SetupRequest is the request body for wallet provisioning.
// Balance accepts a JSON number or a numeric string.
type SetupRequest struct {
	Name    string          `json:"name" binding:"notblank,max=100"`
	Balance json.RawMessage `json:"balance,omitempty"`
}

// TransactRequest is the request body for a credit (amount > 0) or debit (amount < 0).
type TransactRequest struct {
	Amount      json.RawMessage `json:"amount"`
	Description *string         `json:"description,omitempty" binding:"omitempty,max=255"`
}

// SetupResponse is the response body for a provisioned wallet.
type SetupResponse struct {
	ID            string      `json:"id"`
	Balance       json.Number `json:"balance"`
	TransactionID string      `json:"transactionId"`
	Name          string      `json:"name"`
	Date          time.Time   `json:"date"`
}

// TransactResponse is the response body for a committed mutation.
type TransactResponse struct {
	Balance       json.Number `json:"balance"`
	TransactionID string      `json:"transactionId"`
}

// TransactionResponse is one ledger entry.
type TransactionResponse struct {
	ID          string      `json:"id"`
	WalletID    string      `json:"walletId"`
	Amount      json.Number `json:"amount"`
	Balance     json.Number `json:"balance"`
	Description string      `json:"description"`
	Date        time.Time   `json:"date"`
	Type        string      `json:"type"`
}

// WalletResponse is the current wallet snapshot.
type WalletResponse struct {
	ID      string      `json:"id"`
	Balance json.Number `json:"balance"`
	Name    string      `json:"name"`
	Date    time.Time   `json:"date"`
}

// Number renders d as a JSON number carrying its exact decimal text.
func Number(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}

// NewSetupResponse maps a provisioning result.
func NewSetupResponse(res *ports.SetupResult) SetupResponse {
	return SetupResponse{
		ID:            res.Wallet.ID.String(),
		Balance:       Number(res.Wallet.Balance),
		TransactionID: res.TransactionID.String(),
		Name:          res.Wallet.Name,
		Date:          res.Wallet.CreatedAt,
	}
}

// NewTransactResponse maps a mutation result.
func NewTransactResponse(res *ports.TransactResult) TransactResponse {
	return TransactResponse{
		Balance:       Number(res.Balance),
		TransactionID: res.TransactionID.String(),
	}
}

// NewWalletResponse maps a wallet snapshot.
func NewWalletResponse(w *domain.Wallet) WalletResponse {
	return WalletResponse{
		ID:      w.ID.String(),
		Balance: Number(w.Balance),
		Name:    w.Name,
		Date:    w.CreatedAt,
	}
}

// NewTransactionResponses maps ledger entries, keeping their order.
// The result is never nil so an empty log encodes as [].
func NewTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, TransactionResponse{
			ID:          t.ID.String(),
			WalletID:    t.WalletID.String(),
			Amount:      Number(t.Amount),
			Balance:     Number(t.Balance),
			Description: t.Description,
			Date:        t.Date,
			Type:        string(t.Type),
		})
	}
	return out
}
