package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// reportingService implements ports.ReportingService.
type reportingService struct {
	walletRepo  ports.WalletRepository
	txRepo      ports.TransactionRepository
	walletCache ports.WalletCache
	log         zerolog.Logger
}

// NewReportingService creates a new reporting service. walletCache may be nil.
func NewReportingService(
	walletRepo ports.WalletRepository,
	txRepo ports.TransactionRepository,
	walletCache ports.WalletCache,
	log zerolog.Logger,
) ports.ReportingService {
	return &reportingService{
		walletRepo:  walletRepo,
		txRepo:      txRepo,
		walletCache: walletCache,
		log:         log,
	}
}

// GetWallet returns the current wallet snapshot, reading through the cache.
func (s *reportingService) GetWallet(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	if s.walletCache != nil {
		cached, err := s.walletCache.Get(ctx, id)
		if err != nil {
			s.log.Warn().Err(err).Str("wallet_id", id.String()).Msg("wallet cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	wallet, err := s.walletRepo.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.ErrDatabaseError(err)
	}
	if wallet == nil {
		return nil, apperror.ErrNotFound("Wallet")
	}

	if s.walletCache != nil {
		if err := s.walletCache.Fill(ctx, wallet); err != nil {
			s.log.Warn().Err(err).Str("wallet_id", id.String()).Msg("wallet cache write failed")
		}
	}
	return wallet, nil
}

// ListTransactions returns one newest-first page of a wallet's log,
// optionally reordered within the page.
func (s *reportingService) ListTransactions(ctx context.Context, params ports.ListParams) ([]domain.Transaction, error) {
	if params.Offset < 0 || params.Limit <= 0 {
		return nil, apperror.ErrInvalidPagination()
	}
	cmpFn, err := transactionComparator(params.SortBy, params.Order)
	if err != nil {
		return nil, err
	}

	if _, err := s.GetWallet(ctx, params.WalletID); err != nil {
		return nil, err
	}

	txns, err := s.txRepo.ListByWallet(ctx, params.WalletID, params.Offset, params.Limit)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list transactions: %w", err))
	}
	if cmpFn != nil {
		slices.SortStableFunc(txns, cmpFn)
	}
	return txns, nil
}

// ListAllTransactions returns a wallet's full log, newest first.
func (s *reportingService) ListAllTransactions(ctx context.Context, walletID uuid.UUID) ([]domain.Transaction, error) {
	if _, err := s.GetWallet(ctx, walletID); err != nil {
		return nil, err
	}
	txns, err := s.txRepo.ListAllByWallet(ctx, walletID)
	if err != nil {
		return nil, apperror.ErrDatabaseError(fmt.Errorf("list all transactions: %w", err))
	}
	return txns, nil
}

// ExportTransactions returns the wallet and its full log for rendering as a file.
func (s *reportingService) ExportTransactions(ctx context.Context, walletID uuid.UUID) (*domain.Wallet, []domain.Transaction, error) {
	wallet, err := s.GetWallet(ctx, walletID)
	if err != nil {
		return nil, nil, err
	}
	txns, err := s.txRepo.ListAllByWallet(ctx, walletID)
	if err != nil {
		return nil, nil, apperror.ErrDatabaseError(fmt.Errorf("export transactions: %w", err))
	}
	return wallet, txns, nil
}

// transactionComparator returns nil when the repository order (date desc) already applies.
func transactionComparator(field ports.SortField, order ports.SortOrder) (func(a, b domain.Transaction) int, error) {
	if field == "" {
		field = ports.SortByDate
	}
	if order == "" {
		order = ports.SortDesc
	}
	if order != ports.SortAsc && order != ports.SortDesc {
		return nil, apperror.ErrInvalidSort()
	}

	var base func(a, b domain.Transaction) int
	switch field {
	case ports.SortByDate:
		if order == ports.SortDesc {
			return nil, nil
		}
		base = func(a, b domain.Transaction) int { return a.Date.Compare(b.Date) }
	case ports.SortByAmount:
		base = func(a, b domain.Transaction) int { return a.Amount.Cmp(b.Amount) }
	case ports.SortByType:
		base = func(a, b domain.Transaction) int { return cmp.Compare(a.Type, b.Type) }
	default:
		return nil, apperror.ErrInvalidSort()
	}

	if order == ports.SortDesc {
		return func(a, b domain.Transaction) int { return base(b, a) }, nil
	}
	return base, nil
}
