package withdrawal

import (
	"errors"
	"net/http"

	"github.com/socialpay/socialpay-api/internal/pkg/errorhandler"
)

var (
	ErrWithdrawalNotFound  = errors.New("withdrawal not found")
	ErrExchangeNotFound    = errors.New("exchange not found")
	ErrAlreadyProcessed    = errors.New("request already processed")
	ErrBelowMinimum        = errors.New("amount is below the minimum withdrawal")
	ErrInvalidExchangeType = errors.New("invalid exchange type")
)

func init() {
	errorhandler.Register(
		errorhandler.Mapping{Err: ErrWithdrawalNotFound, Status: http.StatusNotFound, Code: "WITHDRAWAL_NOT_FOUND"},
		errorhandler.Mapping{Err: ErrExchangeNotFound, Status: http.StatusNotFound, Code: "EXCHANGE_NOT_FOUND"},
		errorhandler.Mapping{Err: ErrAlreadyProcessed, Status: http.StatusConflict, Code: "ALREADY_PROCESSED"},
		errorhandler.Mapping{Err: ErrBelowMinimum, Status: http.StatusBadRequest, Code: "BELOW_MINIMUM"},
		errorhandler.Mapping{Err: ErrInvalidExchangeType, Status: http.StatusBadRequest, Code: "INVALID_EXCHANGE_TYPE"},
	)
}
