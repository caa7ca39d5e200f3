package transfer

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/socialpay/socialpay-api/internal/domain/audit"
	"github.com/socialpay/socialpay-api/internal/middleware"
	"github.com/socialpay/socialpay-api/internal/pkg/errorhandler"
	"github.com/socialpay/socialpay-api/internal/pkg/response"
	"github.com/socialpay/socialpay-api/internal/pkg/validator"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// CreatePin handles POST /pin
func (h *Handler) CreatePin(w http.ResponseWriter, r *http.Request) {
	var req CreatePinRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	if err := h.svc.CreatePin(r.Context(), middleware.GetUserID(r.Context()), req.Pin); err != nil {
		errorhandler.Respond(r.Context(), w, err)
		return
	}
	response.Created(w, map[string]string{"status": "pin_created"})
}

// Transfer handles POST /transfers
func (h *Handler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	entry, err := h.svc.Transfer(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		errorhandler.Respond(r.Context(), w, err)
		return
	}
	response.Created(w, entry)
}

// History handles GET /transfers
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	limit, offset := response.PageParams(r)
	entries, err := h.svc.History(r.Context(), middleware.GetUserID(r.Context()), limit, offset)
	if err != nil {
		errorhandler.Respond(r.Context(), w, err)
		return
	}
	response.Page(w, entries, len(entries), limit, offset)
}

// Reverse handles POST /admin/transfers/{id}/reverse
func (h *Handler) Reverse(w http.ResponseWriter, r *http.Request) {
	transferID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid transfer ID")
		return
	}

	var req ReverseRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	entry, err := h.svc.Reverse(r.Context(), middleware.GetUserID(r.Context()), transferID, req.Reason)
	if err != nil {
		errorhandler.Respond(r.Context(), w, err)
		return
	}
	response.OK(w, entry)
}

// ListAudit handles GET /admin/transfers?type=&user_id=
func (h *Handler) ListAudit(w http.ResponseWriter, r *http.Request) {
	var f audit.Filter
	switch t := audit.EntryType(r.URL.Query().Get("type")); t {
	case "", audit.TypeP2PTransfer, audit.TypeTransferReversal, audit.TypeAdminAdjustment:
		f.Type = t
	default:
		response.BadRequest(w, "Invalid entry type")
		return
	}
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(w, "Invalid user ID")
			return
		}
		f.UserID = &id
	}

	limit, offset := response.PageParams(r)
	entries, err := h.svc.ListAudit(r.Context(), f, limit, offset)
	if err != nil {
		errorhandler.Respond(r.Context(), w, err)
		return
	}
	response.Page(w, entries, len(entries), limit, offset)
}

// ResetPin handles POST /admin/users/{id}/pin/reset
func (h *Handler) ResetPin(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	if err := h.svc.ResetPin(r.Context(), middleware.GetUserID(r.Context()), userID); err != nil {
		errorhandler.Respond(r.Context(), w, err)
		return
	}
	response.OK(w, map[string]string{"status": "pin_reset"})
}

// Routes returns the user transfer router. limiter guards the money-moving POST.
func (h *Handler) Routes(limiter func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.With(limiter).Post("/", h.Transfer)
	r.Get("/", h.History)
	return r
}

// AdminRoutes returns the admin transfer router
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ListAudit)
	r.Post("/{id}/reverse", h.Reverse)
	return r
}
