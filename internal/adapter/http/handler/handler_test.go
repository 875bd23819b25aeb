package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wallet-ledger/internal/core/domain"
	"wallet-ledger/internal/core/ports"
	"wallet-ledger/internal/core/ports/mocks"
	"wallet-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type handlerTestDeps struct {
	router    *gin.Engine
	ledger    *mocks.MockLedgerService
	reporting *mocks.MockReportingService
}

func setupRouter(t *testing.T) *handlerTestDeps {
	ctrl := gomock.NewController(t)
	d := &handlerTestDeps{
		ledger:    mocks.NewMockLedgerService(ctrl),
		reporting: mocks.NewMockReportingService(ctrl),
	}
	d.router = SetupRouter(RouterDeps{
		LedgerSvc:    d.ledger,
		ReportingSvc: d.reporting,
		Logger:       zerolog.Nop(),
	})
	return d
}

func perform(r http.Handler, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	code, _ := resp["error_code"].(string)
	return code
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var created = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// --- Setup ---

func TestSetup_Success(t *testing.T) {
	d := setupRouter(t)
	walletID, txID := uuid.New(), uuid.New()

	d.ledger.EXPECT().Setup(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, in ports.SetupInput) (*ports.SetupResult, error) {
			assert.Equal(t, "Alice", in.Name)
			require.NotNil(t, in.Balance)
			assert.Equal(t, "20.56789", in.Balance.String())
			return &ports.SetupResult{
				Wallet:        domain.Wallet{ID: walletID, Name: "Alice", Balance: dec("20.5679"), CreatedAt: created},
				TransactionID: txID,
			}, nil
		})

	w := perform(d.router, http.MethodPost, "/api/setup", `{"name":"  Alice ","balance":20.56789}`)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, walletID.String(), resp["id"])
	assert.Equal(t, txID.String(), resp["transactionId"])
	assert.Equal(t, "Alice", resp["name"])
	assert.Equal(t, 20.5679, resp["balance"])
	assert.Equal(t, "2024-03-01T12:00:00Z", resp["date"])
}

func TestSetup_BalanceAsString(t *testing.T) {
	d := setupRouter(t)

	d.ledger.EXPECT().Setup(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, in ports.SetupInput) (*ports.SetupResult, error) {
			assert.Equal(t, "12.5", in.Balance.String())
			return &ports.SetupResult{Wallet: domain.Wallet{ID: uuid.New(), Name: in.Name, Balance: *in.Balance}}, nil
		})

	w := perform(d.router, http.MethodPost, "/api/setup", `{"name":"A","balance":"12.5"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSetup_BlankName(t *testing.T) {
	d := setupRouter(t)
	w := perform(d.router, http.MethodPost, "/api/setup", `{"name":"   "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_004", errorCode(t, w))
}

func TestSetup_InvalidBalance(t *testing.T) {
	d := setupRouter(t)
	w := perform(d.router, http.MethodPost, "/api/setup", `{"name":"A","balance":"lots"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_003", errorCode(t, w))
}

func TestSetup_MalformedJSON(t *testing.T) {
	d := setupRouter(t)
	w := perform(d.router, http.MethodPost, "/api/setup", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_000", errorCode(t, w))
}

func TestSetup_BodyTooLarge(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := SetupRouter(RouterDeps{
		LedgerSvc:    mocks.NewMockLedgerService(ctrl),
		ReportingSvc: mocks.NewMockReportingService(ctrl),
		Logger:       zerolog.Nop(),
		MaxBodyBytes: 32,
	})
	w := perform(r, http.MethodPost, "/api/setup", `{"name":"`+strings.Repeat("a", 64)+`"}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

// --- Transact ---

func TestTransact_Success(t *testing.T) {
	d := setupRouter(t)
	walletID, txID := uuid.New(), uuid.New()

	d.ledger.EXPECT().Transact(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, in ports.TransactInput) (*ports.TransactResult, error) {
			assert.Equal(t, walletID, in.WalletID)
			assert.Equal(t, "10.1", in.Amount.String())
			require.NotNil(t, in.Description)
			assert.Equal(t, "Recharge", *in.Description)
			assert.Equal(t, "abc-123", in.IdempotencyKey)
			return &ports.TransactResult{WalletID: walletID, Balance: dec("30.6679"), TransactionID: txID}, nil
		})

	w := perform(d.router, http.MethodPost, "/api/transact/"+walletID.String(),
		`{"amount":10.1,"description":"Recharge"}`, HeaderIdempotencyKey, "abc-123")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"balance":30.6679,"transactionId":"`+txID.String()+`"}`, w.Body.String())
}

func TestTransact_InvalidWalletIDCheckedFirst(t *testing.T) {
	d := setupRouter(t)
	w := perform(d.router, http.MethodPost, "/api/transact/not-a-uuid", `{"amount":"abc"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_001", errorCode(t, w))
}

func TestTransact_InvalidAmount(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing", `{}`},
		{"null", `{"amount":null}`},
		{"text", `{"amount":"ten"}`},
		{"boolean", `{"amount":true}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupRouter(t)
			w := perform(d.router, http.MethodPost, "/api/transact/"+uuid.NewString(), tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, "VAL_002", errorCode(t, w))
		})
	}
}

func TestTransact_ServiceErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"zero amount", apperror.ErrInvalidAmount(), http.StatusBadRequest, "VAL_002"},
		{"insufficient funds", apperror.ErrInsufficientFunds(), http.StatusBadRequest, "LED_001"},
		{"not found", apperror.ErrNotFound("Wallet"), http.StatusNotFound, "LED_004"},
		{"in progress", apperror.ErrIdempotencyInProgress(), http.StatusConflict, "LED_009"},
		{"store", apperror.ErrDatabaseError(errors.New("boom")), http.StatusInternalServerError, "SYS_001"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "SYS_000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupRouter(t)
			d.ledger.EXPECT().Transact(gomock.Any(), gomock.Any()).Return(nil, tt.err)

			w := perform(d.router, http.MethodPost, "/api/transact/"+uuid.NewString(), `{"amount":-5}`)
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestTransact_LongIdempotencyKey(t *testing.T) {
	d := setupRouter(t)
	w := perform(d.router, http.MethodPost, "/api/transact/"+uuid.NewString(), `{"amount":1}`,
		HeaderIdempotencyKey, strings.Repeat("k", 300))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_000", errorCode(t, w))
}

// --- Reads ---

func sampleTxns(walletID uuid.UUID) []domain.Transaction {
	return []domain.Transaction{
		*domain.NewTransaction(walletID, dec("-5"), dec("25.6679"), "", created.Add(time.Minute)),
		*domain.NewTransaction(walletID, dec("20.5679"), dec("20.5679"), domain.DescriptionSetup, created),
	}
}

func TestListTransactions_Defaults(t *testing.T) {
	d := setupRouter(t)
	walletID := uuid.New()

	d.reporting.EXPECT().ListTransactions(gomock.Any(), ports.ListParams{
		WalletID: walletID, Offset: 0, Limit: 10,
	}).Return(sampleTxns(walletID), nil)

	w := perform(d.router, http.MethodGet, "/api/transactions?walletId="+walletID.String(), "")

	assert.Equal(t, http.StatusOK, w.Code)
	var resp []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp, 2)
	assert.Equal(t, "DEBIT", resp[0]["type"])
	assert.Equal(t, -5.0, resp[0]["amount"])
	assert.Equal(t, walletID.String(), resp[0]["walletId"])
	assert.Equal(t, "Setup", resp[1]["description"])
}

func TestListTransactions_PassesPagingAndSort(t *testing.T) {
	d := setupRouter(t)
	walletID := uuid.New()

	d.reporting.EXPECT().ListTransactions(gomock.Any(), ports.ListParams{
		WalletID: walletID, Offset: 5, Limit: 2, SortBy: ports.SortByAmount, Order: ports.SortAsc,
	}).Return([]domain.Transaction{}, nil)

	w := perform(d.router, http.MethodGet,
		"/api/transactions?walletId="+walletID.String()+"&skip=5&limit=2&sort=amount&order=asc", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "[]", w.Body.String())
}

func TestListTransactions_BadParams(t *testing.T) {
	tests := []struct {
		name  string
		query string
		code  string
	}{
		{"missing wallet", "", "VAL_001"},
		{"bad wallet", "walletId=xyz", "VAL_001"},
		{"bad skip", "walletId=" + uuid.NewString() + "&skip=a", "VAL_005"},
		{"bad limit", "walletId=" + uuid.NewString() + "&limit=1.5", "VAL_005"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := setupRouter(t)
			w := perform(d.router, http.MethodGet, "/api/transactions?"+tt.query, "")
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestListAllTransactions(t *testing.T) {
	d := setupRouter(t)
	walletID := uuid.New()

	d.reporting.EXPECT().ListAllTransactions(gomock.Any(), walletID).Return(sampleTxns(walletID), nil)

	w := perform(d.router, http.MethodGet, "/api/transactions/all/"+walletID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)
	var resp []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp, 2)
}

func TestListAllTransactions_NotFound(t *testing.T) {
	d := setupRouter(t)
	walletID := uuid.New()

	d.reporting.EXPECT().ListAllTransactions(gomock.Any(), walletID).Return(nil, apperror.ErrNotFound("Wallet"))

	w := perform(d.router, http.MethodGet, "/api/transactions/all/"+walletID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "LED_004", errorCode(t, w))
}

func TestExportTransactions(t *testing.T) {
	d := setupRouter(t)
	walletID := uuid.New()
	wallet := &domain.Wallet{ID: walletID, Name: "Alice", Balance: dec("25.6679"), CreatedAt: created}

	d.reporting.EXPECT().ExportTransactions(gomock.Any(), walletID).Return(wallet, sampleTxns(walletID), nil)

	w := perform(d.router, http.MethodGet, "/api/transactions/export/"+walletID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), walletID.String()+"-transactions.csv")

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,Type,Amount,Balance,Description,Date", lines[0])
	assert.Contains(t, lines[1], ",DEBIT,-5.0000,25.6679,Debit,")
}

func TestGetWallet(t *testing.T) {
	d := setupRouter(t)
	walletID := uuid.New()

	d.reporting.EXPECT().GetWallet(gomock.Any(), walletID).Return(
		&domain.Wallet{ID: walletID, Name: "Alice", Balance: dec("25.6679"), CreatedAt: created}, nil)

	w := perform(d.router, http.MethodGet, "/api/wallet/"+walletID.String(), "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"`+walletID.String()+`","balance":25.6679,"name":"Alice","date":"2024-03-01T12:00:00Z"}`, w.Body.String())
}

func TestGetWallet_InvalidID(t *testing.T) {
	d := setupRouter(t)
	w := perform(d.router, http.MethodGet, "/api/wallet/123", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "VAL_001", errorCode(t, w))
}

// --- Misc ---

func TestNoRoute(t *testing.T) {
	d := setupRouter(t)
	w := perform(d.router, http.MethodGet, "/api/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Not Found - /api/nope", resp["message"])
	assert.NotEmpty(t, resp["request_id"])
}

func TestCustomAPIPrefix(t *testing.T) {
	ctrl := gomock.NewController(t)
	reporting := mocks.NewMockReportingService(ctrl)
	r := SetupRouter(RouterDeps{
		LedgerSvc:    mocks.NewMockLedgerService(ctrl),
		ReportingSvc: reporting,
		Logger:       zerolog.Nop(),
		APIPrefix:    "/v2",
	})
	walletID := uuid.New()
	reporting.EXPECT().GetWallet(gomock.Any(), walletID).Return(&domain.Wallet{ID: walletID}, nil)

	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/v2/wallet/"+walletID.String(), "").Code)
	assert.Equal(t, http.StatusNotFound, perform(r, http.MethodGet, "/api/wallet/"+walletID.String(), "").Code)
}

func TestHealthCheck(t *testing.T) {
	ctrl := gomock.NewController(t)
	pg := mocks.NewMockHealthChecker(ctrl)
	rd := mocks.NewMockHealthChecker(ctrl)
	pg.EXPECT().Name().Return("postgres").AnyTimes()
	rd.EXPECT().Name().Return("redis").AnyTimes()
	pg.EXPECT().Ping(gomock.Any()).Return(nil)
	rd.EXPECT().Ping(gomock.Any()).Return(errors.New("connection refused"))

	r := gin.New()
	r.GET("/health", HealthCheck(pg, rd))
	w := perform(r, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
	deps := resp["dependencies"].(map[string]any)
	assert.Equal(t, "healthy", deps["postgres"].(map[string]any)["status"])
	assert.Equal(t, "unhealthy", deps["redis"].(map[string]any)["status"])
}

func TestDocs_NotConfigured(t *testing.T) {
	d := setupRouter(t)

	w := perform(d.router, http.MethodGet, "/swagger/spec", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "LED_404")
	assert.Equal(t, http.StatusNotFound, perform(d.router, http.MethodGet, "/swagger", "").Code)
}

func TestDocs_ServesDocumentAndPage(t *testing.T) {
	ctrl := gomock.NewController(t)
	r := SetupRouter(RouterDeps{
		LedgerSvc:    mocks.NewMockLedgerService(ctrl),
		ReportingSvc: mocks.NewMockReportingService(ctrl),
		Logger:       zerolog.Nop(),
		OpenAPI:      []byte("openapi: 3.0.3\n"),
	})

	w := perform(r, http.MethodGet, "/swagger/spec", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/yaml", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("openapi")))

	ui := perform(r, http.MethodGet, "/swagger", "")
	assert.Equal(t, http.StatusOK, ui.Code)
	assert.Contains(t, ui.Body.String(), "Wallet Ledger API")
	assert.Contains(t, ui.Body.String(), `data-url="/swagger/spec"`)
}
