package postgres

import (
	"context"
	"fmt"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const transactionColumnsSQL = `id, wallet_id, amount, balance, description, type, date`

// seq breaks ties between entries written within the same microsecond.
const newestFirstSQL = ` ORDER BY date DESC, seq DESC`

// TransactionRepo implements ports.TransactionRepository.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create appends a ledger entry within a transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	query := `INSERT INTO transactions (id, wallet_id, amount, balance, description, type, date)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		t.ID, t.WalletID, t.Amount, t.Balance, t.Description, string(t.Type), t.Date,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// ListByWallet returns one page of a wallet's log, newest first.
func (r *TransactionRepo) ListByWallet(ctx context.Context, walletID uuid.UUID, offset, limit int) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumnsSQL + ` FROM transactions WHERE wallet_id = $1` +
		newestFirstSQL + ` LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, walletID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return collectTransactions(rows)
}

// ListAllByWallet returns the full log of a wallet, newest first.
func (r *TransactionRepo) ListAllByWallet(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error) {
	query := `SELECT ` + transactionColumnsSQL + ` FROM transactions WHERE wallet_id = $1` + newestFirstSQL

	rows, err := r.pool.Query(ctx, query, walletID)
	if err != nil {
		return nil, fmt.Errorf("list all transactions: %w", err)
	}
	return collectTransactions(rows)
}

func collectTransactions(rows pgx.Rows) ([]domain.Transaction, error) {
	defer rows.Close()

	txns := make([]domain.Transaction, 0)
	for rows.Next() {
		var (
			t       domain.Transaction
			txnType string
		)
		if err := rows.Scan(
			&t.ID, &t.WalletID, &t.Amount, &t.Balance,
			&t.Description, &txnType, &t.Date,
		); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		t.Type = domain.TransactionType(txnType)
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate transaction rows: %w", err)
	}
	return txns, nil
}
