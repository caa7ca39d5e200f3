package wallet

import (
	"errors"
	"net/http"

	"github.com/socialpay/socialpay-api/internal/pkg/errorhandler"
)

var (
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrInvalidCurrency     = errors.New("invalid currency")
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvariantViolation marks ledger states that no valid sequence of
	// operations can produce.
	ErrInvariantViolation = errors.New("ledger invariant violation")
)

func init() {
	errorhandler.Register(
		errorhandler.Mapping{Err: ErrWalletNotFound, Status: http.StatusNotFound, Code: "WALLET_NOT_FOUND"},
		errorhandler.Mapping{Err: ErrInvalidAmount, Status: http.StatusBadRequest, Code: "INVALID_AMOUNT",
			Message: "amount must be positive with at most two decimal places"},
		errorhandler.Mapping{Err: ErrInvalidCurrency, Status: http.StatusBadRequest, Code: "INVALID_CURRENCY"},
		errorhandler.Mapping{Err: ErrInsufficientBalance, Status: http.StatusConflict, Code: "INSUFFICIENT_BALANCE"},
		errorhandler.Mapping{Err: ErrInvariantViolation, Status: http.StatusInternalServerError, Code: "INTERNAL_ERROR",
			Message: "An unexpected error occurred"},
	)
}
