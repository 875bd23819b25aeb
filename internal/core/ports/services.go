package ports

//go:generate mockgen -source=services.go -destination=mocks/mock_services.go -package=mocks

import (
	"context"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SetupInput is the request to provision a wallet.
type SetupInput struct {
	Name    string
	Balance *decimal.Decimal // nil means zero
}

// SetupResult is the provisioned wallet and the id of its synthetic first entry.
type SetupResult struct {
	Wallet        domain.Wallet
	TransactionID uuid.UUID
}

// TransactInput is a signed credit or debit against a wallet.
type TransactInput struct {
	WalletID       uuid.UUID
	Amount         *decimal.Decimal
	Description    *string
	IdempotencyKey string
}

// TransactResult is the outcome of a committed mutation.
type TransactResult struct {
	WalletID      uuid.UUID       `json:"wallet_id"`
	Balance       decimal.Decimal `json:"balance"`
	TransactionID uuid.UUID       `json:"transaction_id"`
}

// SortField selects the in-page ordering of a transaction listing.
type SortField string

const (
	SortByDate   SortField = "date"
	SortByAmount SortField = "amount"
	SortByType   SortField = "type"
)

// SortOrder is ascending or descending.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ListParams selects a page of a wallet's log. The page is always taken from the
// newest-first log; SortBy and Order only reorder the entries inside it.
type ListParams struct {
	WalletID uuid.UUID
	Offset   int
	Limit    int
	SortBy   SortField
	Order    SortOrder
}

// LedgerService mutates wallets.
type LedgerService interface {
	Setup(ctx context.Context, in SetupInput) (*SetupResult, error)
	Transact(ctx context.Context, in TransactInput) (*TransactResult, error)
}

// ReportingService reads wallets and their transaction logs.
type ReportingService interface {
	GetWallet(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	ListTransactions(ctx context.Context, params ListParams) ([]domain.Transaction, error)
	ListAllTransactions(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error)
	ExportTransactions(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, []domain.Transaction, error)
}
