package payment

import (
	"errors"
	"net/http"

	"github.com/socialpay/socialpay-api/internal/pkg/errorhandler"
)

var ErrDetailsNotFound = errors.New("payment details not found")

func init() {
	errorhandler.Register(
		errorhandler.Mapping{Err: ErrDetailsNotFound, Status: http.StatusNotFound, Code: "PAYMENT_DETAILS_NOT_FOUND"},
	)
}
