package withdrawal

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

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

// RequestWithdrawal handles POST /withdrawals
func (h *Handler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	var req WithdrawalRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	wd, err := h.svc.RequestWithdrawal(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		errorhandler.Respond(r.Context(), w, err)
		return
	}
	response.Created(w, wd)
}

// ListWithdrawals handles GET /withdrawals
func (h *Handler) ListWithdrawals(w http.ResponseWriter, r *http.Request) {
	limit, offset := response.PageParams(r)
	items, err := h.svc.ListWithdrawals(r.Context(), middleware.GetUserID(r.Context()), limit, offset)
	if err != nil {
		errorhandler.Respond(r.Context(), w, err)
		return
	}
	response.Page(w, items, len(items), limit, offset)
}

// RequestExchange handles POST /exchanges
func (h *Handler) RequestExchange(w http.ResponseWriter, r *http.Request) {
	var req ExchangeRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	ex, err := h.svc.RequestExchange(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		errorhandler.Respond(r.Context(), w, err)
		return
	}
	response.Created(w, ex)
}

// ListExchanges handles GET /exchanges
func (h *Handler) ListExchanges(w http.ResponseWriter, r *http.Request) {
	limit, offset := response.PageParams(r)
	items, err := h.svc.ListExchanges(r.Context(), middleware.GetUserID(r.Context()), limit, offset)
	if err != nil {
		errorhandler.Respond(r.Context(), w, err)
		return
	}
	response.Page(w, items, len(items), limit, offset)
}

// ListPendingWithdrawals handles GET /admin/withdrawals/pending
func (h *Handler) ListPendingWithdrawals(w http.ResponseWriter, r *http.Request) {
	limit, offset := response.PageParams(r)
	items, err := h.svc.ListPendingWithdrawals(r.Context(), limit, offset)
	if err != nil {
		errorhandler.Respond(r.Context(), w, err)
		return
	}
	response.Page(w, items, len(items), limit, offset)
}

// ReviewWithdrawal handles POST /admin/withdrawals/{id}/review
func (h *Handler) ReviewWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid withdrawal ID")
		return
	}

	var req ReviewRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	wd, err := h.svc.ReviewWithdrawal(r.Context(), middleware.GetUserID(r.Context()), id, *req.Approved)
	if err != nil {
		errorhandler.Respond(r.Context(), w, err)
		return
	}
	response.OK(w, wd)
}

// ListPendingExchanges handles GET /admin/exchanges/pending
func (h *Handler) ListPendingExchanges(w http.ResponseWriter, r *http.Request) {
	limit, offset := response.PageParams(r)
	items, err := h.svc.ListPendingExchanges(r.Context(), limit, offset)
	if err != nil {
		errorhandler.Respond(r.Context(), w, err)
		return
	}
	response.Page(w, items, len(items), limit, offset)
}

// CompleteExchange handles POST /admin/exchanges/{id}/complete
func (h *Handler) CompleteExchange(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid exchange ID")
		return
	}

	var req CompleteExchangeRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	ex, err := h.svc.CompleteExchange(r.Context(), middleware.GetUserID(r.Context()), id, req.ReceivedAmount)
	if err != nil {
		errorhandler.Respond(r.Context(), w, err)
		return
	}
	response.OK(w, ex)
}

// WithdrawalRoutes returns the user withdrawal router. limiter guards the POST.
func (h *Handler) WithdrawalRoutes(limiter func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.With(limiter).Post("/", h.RequestWithdrawal)
	r.Get("/", h.ListWithdrawals)
	return r
}

// ExchangeRoutes returns the user exchange router. limiter guards the POST.
func (h *Handler) ExchangeRoutes(limiter func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.With(limiter).Post("/", h.RequestExchange)
	r.Get("/", h.ListExchanges)
	return r
}

// AdminWithdrawalRoutes returns the admin withdrawal router
func (h *Handler) AdminWithdrawalRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/pending", h.ListPendingWithdrawals)
	r.Post("/{id}/review", h.ReviewWithdrawal)
	return r
}

// AdminExchangeRoutes returns the admin exchange router
func (h *Handler) AdminExchangeRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/pending", h.ListPendingExchanges)
	r.Post("/{id}/complete", h.CompleteExchange)
	return r
}
