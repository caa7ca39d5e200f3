package transfer

import (
	"errors"
	"net/http"

	"github.com/socialpay/socialpay-api/internal/pkg/errorhandler"
)

var (
	ErrPinNotSet          = errors.New("transaction PIN not set")
	ErrPinAlreadySet      = errors.New("transaction PIN already set")
	ErrInvalidPin         = errors.New("invalid PIN")
	ErrInvalidPinFormat   = errors.New("PIN must be exactly 4 digits")
	ErrPinLocked          = errors.New("PIN locked after too many failed attempts")
	ErrDailyLimitExceeded = errors.New("daily transfer limit reached")
	ErrAmountTooLarge     = errors.New("amount exceeds the single transfer maximum")
	ErrReceiverNotFound   = errors.New("receiver not found")
	ErrSelfTransfer       = errors.New("cannot transfer to yourself")
	ErrTransferNotFound   = errors.New("transfer not found")
	ErrNotReversible      = errors.New("only peer transfers can be reversed")
	ErrAlreadyReversed    = errors.New("transfer already reversed")
)

func init() {
	errorhandler.Register(
		errorhandler.Mapping{Err: ErrPinNotSet, Status: http.StatusBadRequest, Code: "PIN_NOT_SET"},
		errorhandler.Mapping{Err: ErrPinAlreadySet, Status: http.StatusConflict, Code: "PIN_ALREADY_SET"},
		errorhandler.Mapping{Err: ErrInvalidPin, Status: http.StatusForbidden, Code: "INVALID_PIN"},
		errorhandler.Mapping{Err: ErrInvalidPinFormat, Status: http.StatusBadRequest, Code: "INVALID_PIN_FORMAT"},
		errorhandler.Mapping{Err: ErrPinLocked, Status: http.StatusLocked, Code: "PIN_LOCKED"},
		errorhandler.Mapping{Err: ErrDailyLimitExceeded, Status: http.StatusTooManyRequests, Code: "DAILY_LIMIT_EXCEEDED"},
		errorhandler.Mapping{Err: ErrAmountTooLarge, Status: http.StatusBadRequest, Code: "AMOUNT_TOO_LARGE"},
		errorhandler.Mapping{Err: ErrReceiverNotFound, Status: http.StatusNotFound, Code: "RECEIVER_NOT_FOUND"},
		errorhandler.Mapping{Err: ErrSelfTransfer, Status: http.StatusBadRequest, Code: "SELF_TRANSFER"},
		errorhandler.Mapping{Err: ErrTransferNotFound, Status: http.StatusNotFound, Code: "TRANSFER_NOT_FOUND"},
		errorhandler.Mapping{Err: ErrNotReversible, Status: http.StatusBadRequest, Code: "NOT_REVERSIBLE"},
		errorhandler.Mapping{Err: ErrAlreadyReversed, Status: http.StatusConflict, Code: "ALREADY_REVERSED"},
	)
}
