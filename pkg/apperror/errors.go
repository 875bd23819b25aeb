package apperror

import (
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// ---- Validation (VAL) ----

func ErrInvalidWalletID() *AppError {
	return New("VAL_001", "Invalid wallet ID", http.StatusBadRequest)
}

func ErrInvalidAmount() *AppError {
	return New("VAL_002", "Invalid amount value", http.StatusBadRequest)
}

func ErrInvalidBalance() *AppError {
	return New("VAL_003", "Invalid balance value", http.StatusBadRequest)
}

func ErrWalletNameRequired() *AppError {
	return New("VAL_004", "Wallet name is required", http.StatusBadRequest)
}

func ErrInvalidPagination() *AppError {
	return New("VAL_005", "Invalid pagination parameters", http.StatusBadRequest)
}

func ErrInvalidSort() *AppError {
	return New("VAL_006", "Invalid sort parameters", http.StatusBadRequest)
}

// Validation returns a generic VAL_000 error with a caller supplied message.
func Validation(message string) *AppError {
	return New("VAL_000", message, http.StatusBadRequest)
}

// ---- Ledger Business Logic (LED) ----

func ErrInsufficientFunds() *AppError {
	return New("LED_001", "Insufficient funds", http.StatusBadRequest)
}

func ErrNotFound(entity string) *AppError {
	return New("LED_004", fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrIdempotencyInProgress() *AppError {
	return New("LED_009", "A request with this idempotency key is already in progress", http.StatusConflict)
}

// ErrRouteNotFound is returned for requests that match no route.
func ErrRouteNotFound(path string) *AppError {
	return New("LED_404", fmt.Sprintf("Not Found - %s", path), http.StatusNotFound)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- System & Infrastructure (SYS) ----

func ErrDatabaseError(err error) *AppError {
	return Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, err)
}

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// Is reports whether err is an *AppError carrying the given code.
func Is(err error, code string) bool {
	appErr, ok := As(err)
	return ok && appErr.Code == code
}
