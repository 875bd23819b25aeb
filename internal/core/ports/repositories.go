package ports

//go:generate mockgen -source=repositories.go -destination=mocks/mock_repositories.go -package=mocks

import (
	"context"
	"errors"
	"time"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// WalletRepository defines persistence operations for wallets.
// Methods accepting pgx.Tx are used inside transaction blocks for pessimistic locking.
type WalletRepository interface {
	Create(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error
}

// TransactionRepository defines persistence operations for ledger entries.
// Entries are append-only and listed newest first.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, txn *domain.Transaction) error
	ListByWallet(ctx context.Context, walletID uuid.UUID, offset, limit int) ([]domain.Transaction, error)
	ListAllByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error)
}

// DBTransactor starts database transactions.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// WalletCache is a read-through cache of wallet snapshots.
// A miss is reported as nil, nil.
//
// Writers publish committed snapshots with Set. Readers populate a miss with
// Fill, which never replaces an existing entry, so a read that started before
// a commit cannot overwrite the snapshot that commit published.
type WalletCache interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Wallet, error)
	Set(ctx context.Context, wallet *domain.Wallet) error
	Fill(ctx context.Context, wallet *domain.Wallet) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}

// ErrIdempotencyInProgress is returned by IdempotencyCache.Get while another
// request holding the same key has not finished.
var ErrIdempotencyInProgress = errors.New("idempotent request in progress")

// IdempotencyCache stores serialized results of mutations keyed by client supplied keys.
// Reserve claims a key before the mutation runs; Release drops the claim when it fails.
type IdempotencyCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}
