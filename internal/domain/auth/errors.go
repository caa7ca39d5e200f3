package auth

import (
	"errors"
	"net/http"

	"github.com/socialpay/socialpay-api/internal/pkg/errorhandler"
)

var (
	ErrIdentityRequired = errors.New("email or phone is required")
	ErrReferrerNotFound = errors.New("referrer not found")
)

func init() {
	errorhandler.Register(
		errorhandler.Mapping{Err: ErrIdentityRequired, Status: http.StatusBadRequest, Code: "IDENTITY_REQUIRED"},
		errorhandler.Mapping{Err: ErrReferrerNotFound, Status: http.StatusBadRequest, Code: "REFERRER_NOT_FOUND"},
	)
}
