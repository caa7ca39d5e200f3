package user

import (
	"errors"
	"net/http"

	"github.com/socialpay/socialpay-api/internal/pkg/errorhandler"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserBanned         = errors.New("user is banned")
	ErrIdentityTaken      = errors.New("email or phone already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

func init() {
	errorhandler.Register(
		errorhandler.Mapping{Err: ErrUserNotFound, Status: http.StatusNotFound, Code: "USER_NOT_FOUND"},
		errorhandler.Mapping{Err: ErrUserBanned, Status: http.StatusForbidden, Code: "USER_BANNED"},
		errorhandler.Mapping{Err: ErrIdentityTaken, Status: http.StatusConflict, Code: "IDENTITY_TAKEN"},
		errorhandler.Mapping{Err: ErrInvalidCredentials, Status: http.StatusUnauthorized, Code: "INVALID_CREDENTIALS"},
	)
}
