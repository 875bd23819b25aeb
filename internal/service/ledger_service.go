package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const (
	defaultIdempotencyTTL = 24 * time.Hour
	// reservationTTL bounds how long a crashed request can hold an idempotency key.
	reservationTTL = 30 * time.Second
)

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	walletRepo  ports.WalletRepository
	txRepo      ports.TransactionRepository
	walletCache ports.WalletCache      // nil = no read cache to refresh
	idempCache  ports.IdempotencyCache // nil = Idempotency-Key ignored
	transactor  ports.DBTransactor
	idempTTL    time.Duration
	log         zerolog.Logger
	now         func() time.Time
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	walletCache ports.WalletCache,
	idempCache ports.IdempotencyCache,
	transactor ports.DBTransactor,
	idempTTL time.Duration,
	log zerolog.Logger,
) *LedgerServiceImpl {
	if idempTTL <= 0 {
		idempTTL = defaultIdempotencyTTL
	}
	return &LedgerServiceImpl{
		walletRepo:  walletRepo,
		txRepo:      txRepo,
		walletCache: walletCache,
		idempCache:  idempCache,
		transactor:  transactor,
		idempTTL:    idempTTL,
		log:         log,
		now:         utcNow,
	}
}

// utcNow truncates to the precision PostgreSQL stores.
func utcNow() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// Setup provisions a wallet and records its opening balance as a "Setup" credit.
func (s *LedgerServiceImpl) Setup(ctx context.Context, in ports.SetupInput) (*ports.SetupResult, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperror.ErrWalletNameRequired()
	}

	balance := decimal.Zero
	if in.Balance != nil {
		b, err := domain.NormalizeAmount(*in.Balance)
		if err != nil || b.IsNegative() {
			return nil, apperror.ErrInvalidBalance()
		}
		balance = b
	}

	now := s.now()
	wallet := domain.Wallet{
		ID:        uuid.New(),
		Name:      name,
		Balance:   balance,
		CreatedAt: now,
	}
	txn := domain.NewTransaction(wallet.ID, balance, balance, domain.DescriptionSetup, now)

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.walletRepo.Create(ctx, dbTx, &wallet); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create wallet: %w", err))
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create setup transaction: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("wallet_id", wallet.ID.String()).
		Str("tx_id", txn.ID.String()).
		Str("balance", balance.String()).
		Msg("wallet provisioned")

	return &ports.SetupResult{Wallet: wallet, TransactionID: txn.ID}, nil
}

// Transact applies a signed amount to a wallet under a row lock.
// The balance update and the ledger entry commit together or not at all.
func (s *LedgerServiceImpl) Transact(ctx context.Context, in ports.TransactInput) (res *ports.TransactResult, err error) {
	if in.Amount == nil {
		return nil, apperror.ErrInvalidAmount()
	}
	amount, nerr := domain.NormalizeAmount(*in.Amount)
	if nerr != nil || amount.IsZero() {
		return nil, apperror.ErrInvalidAmount()
	}

	idempKey := s.idempotencyKey(in)
	if idempKey != "" {
		cached, reserved, ierr := s.reserveIdempotencyKey(ctx, idempKey)
		if ierr != nil {
			return nil, ierr
		}
		if cached != nil {
			return cached, nil
		}
		if reserved {
			defer func() {
				if err != nil {
					s.releaseIdempotencyKey(ctx, idempKey)
				}
			}()
		}
	}

	description := domain.DefaultDescription(amount)
	if in.Description != nil {
		if d := strings.TrimSpace(*in.Description); d != "" {
			description = d
		}
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock & get wallet
	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, in.WalletID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}

	newBalance := wallet.Apply(amount)
	if newBalance.IsNegative() {
		return nil, apperror.ErrInsufficientFunds()
	}
	if _, rerr := domain.NormalizeAmount(newBalance); rerr != nil {
		return nil, apperror.ErrInvalidAmount()
	}

	txn := domain.NewTransaction(wallet.ID, amount, newBalance, description, s.now())

	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, newBalance); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("update balance: %w", err))
	}
	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("create transaction: %w", err))
	}
	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("commit tx: %w", err))
	}

	result := &ports.TransactResult{
		WalletID:      wallet.ID,
		Balance:       newBalance,
		TransactionID: txn.ID,
	}

	// Post-commit work is best-effort.
	if s.walletCache != nil {
		s.publishWallet(ctx, &domain.Wallet{
			ID:        wallet.ID,
			Name:      wallet.Name,
			Balance:   newBalance,
			CreatedAt: wallet.CreatedAt,
		})
	}
	if idempKey != "" {
		s.storeIdempotentResult(ctx, idempKey, result)
	}

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("wallet_id", wallet.ID.String()).
		Str("type", string(txn.Type)).
		Str("amount", amount.String()).
		Str("balance", newBalance.String()).
		Msg("transaction applied")

	return result, nil
}

// publishWallet overwrites the cached snapshot with the committed one.
// If that fails the entry is dropped so readers go back to the database.
func (s *LedgerServiceImpl) publishWallet(ctx context.Context, w *domain.Wallet) {
	err := s.walletCache.Set(ctx, w)
	if err == nil {
		return
	}
	s.log.Warn().Err(err).Str("wallet_id", w.ID.String()).Msg("failed to refresh wallet cache")
	if ierr := s.walletCache.Invalidate(ctx, w.ID); ierr != nil {
		s.log.Warn().Err(ierr).Str("wallet_id", w.ID.String()).Msg("failed to invalidate wallet cache")
	}
}

func (s *LedgerServiceImpl) idempotencyKey(in ports.TransactInput) string {
	key := strings.TrimSpace(in.IdempotencyKey)
	if s.idempCache == nil || key == "" {
		return ""
	}
	return in.WalletID.String() + ":" + key
}

// reserveIdempotencyKey returns a stored result for key, or claims the key.
// Redis failures degrade to processing the request without replay protection.
func (s *LedgerServiceImpl) reserveIdempotencyKey(ctx context.Context, key string) (*ports.TransactResult, bool, error) {
	cached, err := s.idempCache.Get(ctx, key)
	switch {
	case errors.Is(err, ports.ErrIdempotencyInProgress):
		return nil, false, apperror.ErrIdempotencyInProgress()
	case err != nil:
		s.log.Warn().Err(err).Str("key", key).Msg("redis idempotency check failed, processing without replay protection")
		return nil, false, nil
	case cached != nil:
		var res ports.TransactResult
		if err := json.Unmarshal(cached, &res); err != nil {
			return nil, false, apperror.InternalError(fmt.Errorf("unmarshal cached result: %w", err))
		}
		return &res, false, nil
	}

	ok, err := s.idempCache.Reserve(ctx, key, reservationTTL)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("redis idempotency reserve failed, processing without replay protection")
		return nil, false, nil
	}
	if !ok {
		return nil, false, apperror.ErrIdempotencyInProgress()
	}
	return nil, true, nil
}

func (s *LedgerServiceImpl) releaseIdempotencyKey(ctx context.Context, key string) {
	if err := s.idempCache.Release(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to release idempotency key")
	}
}

func (s *LedgerServiceImpl) storeIdempotentResult(ctx context.Context, key string, res *ports.TransactResult) {
	payload, err := json.Marshal(res)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to marshal idempotent result")
		return
	}
	if err := s.idempCache.Set(ctx, key, payload, s.idempTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to cache idempotent result in redis")
	}
}
