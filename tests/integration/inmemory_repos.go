package integration

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"wallet-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var errInjectedInsert = errors.New("injected transaction insert failure")

// memStore mimics the PostgreSQL ledger: committed rows, per-wallet row locks
// taken by GetByIDForUpdate and held until commit or rollback, and writes that
// stay invisible until the owning transaction commits.
type memStore struct {
	mu      sync.RWMutex
	wallets map[uuid.UUID]domain.Wallet
	txns    []storedTxn
	seq     int64

	locksMu sync.Mutex
	locks   map[uuid.UUID]*sync.Mutex

	failNextInsert atomic.Bool
	// afterRead runs once after the next unlocked wallet read returns its row.
	afterRead atomic.Pointer[func()]
}

type storedTxn struct {
	seq int64
	txn domain.Transaction
}

func newMemStore() *memStore {
	return &memStore{
		wallets: make(map[uuid.UUID]domain.Wallet),
		locks:   make(map[uuid.UUID]*sync.Mutex),
	}
}

func (s *memStore) rowLock(id uuid.UUID) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

// balance returns the committed balance of a wallet.
func (s *memStore) balance(id uuid.UUID) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.wallets[id].Balance
}

// entries returns the committed transactions of a wallet in insertion order.
func (s *memStore) entries(id uuid.UUID) []domain.Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.Transaction
	for _, st := range s.txns {
		if st.txn.WalletID == id {
			out = append(out, st.txn)
		}
	}
	return out
}

// --- Transactor ---

type memTransactor struct{ store *memStore }

func (t *memTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &memTx{
		store:    t.store,
		balances: make(map[uuid.UUID]decimal.Decimal),
	}, nil
}

// memTx stages writes and applies them on Commit. Unused pgx.Tx methods panic.
type memTx struct {
	pgx.Tx
	store    *memStore
	locked   []uuid.UUID
	wallets  []domain.Wallet
	balances map[uuid.UUID]decimal.Decimal
	inserts  []domain.Transaction
	done     bool
}

func (tx *memTx) Commit(_ context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	s := tx.store
	s.mu.Lock()
	for _, w := range tx.wallets {
		s.wallets[w.ID] = w
	}
	for id, b := range tx.balances {
		w := s.wallets[id]
		w.Balance = b
		s.wallets[id] = w
	}
	for _, t := range tx.inserts {
		s.seq++
		s.txns = append(s.txns, storedTxn{seq: s.seq, txn: t})
	}
	s.mu.Unlock()
	tx.finish()
	return nil
}

func (tx *memTx) Rollback(_ context.Context) error {
	if tx.done {
		return pgx.ErrTxClosed
	}
	tx.finish()
	return nil
}

func (tx *memTx) finish() {
	tx.done = true
	for _, id := range tx.locked {
		tx.store.rowLock(id).Unlock()
	}
	tx.locked = nil
}

func asMemTx(tx pgx.Tx) (*memTx, error) {
	mt, ok := tx.(*memTx)
	if !ok || mt.done {
		return nil, pgx.ErrTxClosed
	}
	return mt, nil
}

// --- WalletRepository ---

type memWalletRepo struct{ store *memStore }

func (r *memWalletRepo) Create(_ context.Context, tx pgx.Tx, w *domain.Wallet) error {
	mt, err := asMemTx(tx)
	if err != nil {
		return err
	}
	mt.wallets = append(mt.wallets, *w)
	return nil
}

func (r *memWalletRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Wallet, error) {
	w := r.load(id)
	if hook := r.store.afterRead.Swap(nil); hook != nil {
		(*hook)()
	}
	return w, nil
}

func (r *memWalletRepo) load(id uuid.UUID) *domain.Wallet {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	w, ok := r.store.wallets[id]
	if !ok {
		return nil
	}
	return &w
}

func (r *memWalletRepo) GetByIDForUpdate(_ context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	mt, err := asMemTx(tx)
	if err != nil {
		return nil, err
	}
	r.store.rowLock(id).Lock()
	mt.locked = append(mt.locked, id)

	w := r.load(id)
	if w == nil {
		return nil, nil
	}
	if b, ok := mt.balances[id]; ok {
		w.Balance = b
	}
	return w, nil
}

func (r *memWalletRepo) UpdateBalance(_ context.Context, tx pgx.Tx, walletID uuid.UUID, balance decimal.Decimal) error {
	mt, err := asMemTx(tx)
	if err != nil {
		return err
	}
	if balance.IsNegative() {
		return fmt.Errorf("check constraint wallets_balance_non_negative violated")
	}
	if r.load(walletID) == nil {
		return fmt.Errorf("update wallet balance: wallet %s not found", walletID)
	}
	mt.balances[walletID] = balance
	return nil
}

// --- TransactionRepository ---

type memTransactionRepo struct{ store *memStore }

func (r *memTransactionRepo) Create(_ context.Context, tx pgx.Tx, t *domain.Transaction) error {
	mt, err := asMemTx(tx)
	if err != nil {
		return err
	}
	if r.store.failNextInsert.CompareAndSwap(true, false) {
		return errInjectedInsert
	}
	mt.inserts = append(mt.inserts, *t)
	return nil
}

func (r *memTransactionRepo) ListByWallet(_ context.Context, walletID uuid.UUID, offset, limit int) ([]domain.Transaction, error) {
	all := r.newestFirst(walletID)
	if offset >= len(all) {
		return []domain.Transaction{}, nil
	}
	end := offset + min(limit, len(all)-offset)
	return all[offset:end], nil
}

func (r *memTransactionRepo) ListAllByWallet(_ context.Context, walletID uuid.UUID) ([]domain.Transaction, error) {
	return r.newestFirst(walletID), nil
}

// newestFirst orders by date DESC, seq DESC like the SQL index.
func (r *memTransactionRepo) newestFirst(walletID uuid.UUID) []domain.Transaction {
	r.store.mu.RLock()
	var rows []storedTxn
	for _, st := range r.store.txns {
		if st.txn.WalletID == walletID {
			rows = append(rows, st)
		}
	}
	r.store.mu.RUnlock()

	slices.SortFunc(rows, func(a, b storedTxn) int {
		if c := b.txn.Date.Compare(a.txn.Date); c != 0 {
			return c
		}
		return cmp.Compare(b.seq, a.seq)
	})

	out := make([]domain.Transaction, 0, len(rows))
	for _, st := range rows {
		out = append(out, st.txn)
	}
	return out
}
