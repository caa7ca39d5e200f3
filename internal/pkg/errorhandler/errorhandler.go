package errorhandler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/socialpay/socialpay-api/internal/pkg/database"
	"github.com/socialpay/socialpay-api/internal/pkg/logger"
	"github.com/socialpay/socialpay-api/internal/pkg/response"
)

// Mapping binds a sentinel error to the HTTP status and stable code it is reported with.
type Mapping struct {
	Err     error
	Status  int
	Code    string
	Message string
}

var (
	mu       sync.RWMutex
	mappings []Mapping
)

// Register adds sentinel mappings. Domain packages call it from init.
func Register(m ...Mapping) {
	mu.Lock()
	defer mu.Unlock()
	mappings = append(mappings, m...)
}

// Lookup returns the mapping registered for err, if any.
func Lookup(err error) (Mapping, bool) {
	mu.RLock()
	defer mu.RUnlock()
	for _, m := range mappings {
		if errors.Is(err, m.Err) {
			return m, true
		}
	}
	return Mapping{}, false
}

// Respond writes err to the client. Registered business errors become 4xx
// responses, transient store failures 503, and anything else a logged 500.
func Respond(ctx context.Context, w http.ResponseWriter, err error) {
	if m, ok := Lookup(err); ok {
		msg := m.Message
		if msg == "" {
			msg = m.Err.Error()
		}
		if m.Status >= http.StatusInternalServerError {
			HandleError(ctx, w, m.Status, m.Code, msg, err)
			return
		}
		response.Error(w, m.Status, m.Code, msg)
		return
	}

	if database.IsTransient(err) {
		HandleError(ctx, w, http.StatusServiceUnavailable, "TRY_AGAIN", "Temporary conflict, please retry", err)
		return
	}

	HandleError(ctx, w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", err)
}

// HandleError logs a failed request and sends a formatted error response.
func HandleError(ctx context.Context, w http.ResponseWriter, status int, code, message string, err error) {
	event := log.Error().
		Str("request_id", logger.RequestID(ctx)).
		Str("error_code", code).
		Str("error_message", message).
		Int("status_code", status)

	if err != nil {
		event.Err(err)
	}

	event.Msg("Request error")

	response.Error(w, status, code, message)
}

// HandlePanicError logs a recovered panic with its stack trace.
func HandlePanicError(ctx context.Context, w http.ResponseWriter, panicErr interface{}, stackTrace string) {
	log.Error().
		Str("request_id", logger.RequestID(ctx)).
		Interface("panic_error", panicErr).
		Str("panic_stack", stackTrace).
		Msg("Request panic error")

	response.InternalError(w)
}

// LogValidationError logs validation errors with details
func LogValidationError(ctx context.Context, fieldErrors map[string]string) {
	errJSON, _ := json.Marshal(fieldErrors)
	log.Warn().
		Str("request_id", logger.RequestID(ctx)).
		RawJSON("validation_errors", errJSON).
		Msg("Validation error")
}
