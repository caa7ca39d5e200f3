package admin

import (
	"errors"
	"net/http"

	"github.com/socialpay/socialpay-api/internal/pkg/errorhandler"
)

var (
	ErrInvalidAction  = errors.New("invalid action")
	ErrAmountRequired = errors.New("amount and currency are required for adjust_balance")
	ErrSelfAction     = errors.New("admins cannot ban or unban themselves")
)

func init() {
	errorhandler.Register(
		errorhandler.Mapping{Err: ErrInvalidAction, Status: http.StatusBadRequest, Code: "INVALID_ACTION"},
		errorhandler.Mapping{Err: ErrAmountRequired, Status: http.StatusBadRequest, Code: "AMOUNT_REQUIRED"},
		errorhandler.Mapping{Err: ErrSelfAction, Status: http.StatusBadRequest, Code: "SELF_ACTION"},
	)
}
