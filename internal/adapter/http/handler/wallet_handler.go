package handler

import (
	"wallet-ledger/internal/adapter/http/dto"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/pkg/apperror"
	"wallet-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// WalletHandler handles wallet provisioning and lookup.
type WalletHandler struct {
	ledgerSvc    ports.LedgerService
	reportingSvc ports.ReportingService
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(ledgerSvc ports.LedgerService, reportingSvc ports.ReportingService) *WalletHandler {
	return &WalletHandler{
		ledgerSvc:    ledgerSvc,
		reportingSvc: reportingSvc,
	}
}

// Setup handles POST /setup.
func (h *WalletHandler) Setup(c *gin.Context) {
	var req dto.SetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, dto.BindError(err))
		return
	}
	dto.SanitizeStruct(&req)

	balance, err := dto.ParseDecimal(req.Balance)
	if err != nil {
		response.Error(c, apperror.ErrInvalidBalance())
		return
	}

	result, err := h.ledgerSvc.Setup(c.Request.Context(), ports.SetupInput{
		Name:    req.Name,
		Balance: balance,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewSetupResponse(result))
}

// GetWallet handles GET /wallet/:id.
func (h *WalletHandler) GetWallet(c *gin.Context) {
	id, err := parseWalletID(c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	wallet, err := h.reportingSvc.GetWallet(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.NewWalletResponse(wallet))
}

func parseWalletID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apperror.ErrInvalidWalletID()
	}
	return id, nil
}
