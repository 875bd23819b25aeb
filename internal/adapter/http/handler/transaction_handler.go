package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	// HeaderIdempotencyKey makes a transact request safe to retry.
	HeaderIdempotencyKey = "Idempotency-Key"

	maxIdempotencyKeyLen = 255
	defaultSkip          = 0
	defaultLimit         = 10
)

// TransactionHandler handles mutations and transaction log reads.
type TransactionHandler struct {
	ledgerSvc    ports.LedgerService
	reportingSvc ports.ReportingService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(ledgerSvc ports.LedgerService, reportingSvc ports.ReportingService) *TransactionHandler {
	return &TransactionHandler{
		ledgerSvc:    ledgerSvc,
		reportingSvc: reportingSvc,
	}
}

// Transact handles POST /transact/:walletId.
func (h *TransactionHandler) Transact(c *gin.Context) {
	walletID, err := parseWalletID(c.Param("walletId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	key := c.GetHeader(HeaderIdempotencyKey)
	if len(key) > maxIdempotencyKeyLen {
		response.Error(c, apperror.Validation("Idempotency-Key must be at most 255 characters"))
		return
	}

	var req dto.TransactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	amount, err := dto.ParseDecimal(req.Amount)
	if err != nil || amount == nil {
		response.Error(c, apperror.ErrInvalidAmount())
		return
	}

	result, err := h.ledgerSvc.Transact(c.Request.Context(), ports.TransactInput{
		WalletID:       walletID,
		Amount:         amount,
		Description:    req.Description,
		IdempotencyKey: key,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewTransactResponse(result))
}

// ListTransactions handles GET /transactions?walletId=&skip=&limit=&sort=&order=.
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	walletID, err := parseWalletID(c.Query("walletId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	skip, err := intQuery(c, "skip", defaultSkip)
	if err != nil {
		response.Error(c, err)
		return
	}
	limit, err := intQuery(c, "limit", defaultLimit)
	if err != nil {
		response.Error(c, err)
		return
	}

	txns, err := h.reportingSvc.ListTransactions(c.Request.Context(), ports.ListParams{
		WalletID: walletID,
		Offset:   skip,
		Limit:    limit,
		SortBy:   ports.SortField(c.Query("sort")),
		Order:    ports.SortOrder(c.Query("order")),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewTransactionResponses(txns))
}

// ListAllTransactions handles GET /transactions/all/:walletId.
func (h *TransactionHandler) ListAllTransactions(c *gin.Context) {
	walletID, err := parseWalletID(c.Param("walletId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	txns, err := h.reportingSvc.ListAllTransactions(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewTransactionResponses(txns))
}

// ExportTransactions handles GET /transactions/export/:walletId.
func (h *TransactionHandler) ExportTransactions(c *gin.Context) {
	walletID, err := parseWalletID(c.Param("walletId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	wallet, txns, err := h.reportingSvc.ExportTransactions(c.Request.Context(), walletID)
	if err != nil {
		response.Error(c, err)
		return
	}

	var buf bytes.Buffer
	if err := dto.WriteTransactionsCSV(&buf, txns); err != nil {
		response.Error(c, apperror.InternalError(err))
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s-transactions.csv"`, wallet.ID))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// intQuery reads an integer query parameter, falling back to def when absent.
func intQuery(c *gin.Context, name string, def int) (int, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.ErrInvalidPagination()
	}
	return n, nil
}
