package payment

import (
	"net/http"

	"github.com/go-chi/chi/v5"

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

// Set handles PUT /payment-details
func (h *Handler) Set(w http.ResponseWriter, r *http.Request) {
	var req SetDetailsRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ValidationError(w, errs)
		return
	}

	d, err := h.svc.SetDetails(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		errorhandler.Respond(r.Context(), w, err)
		return
	}
	response.OK(w, d)
}

// Get handles GET /payment-details
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	d, err := h.svc.GetDetails(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		errorhandler.Respond(r.Context(), w, err)
		return
	}
	response.OK(w, d)
}

// Routes returns payment details router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Get)
	r.Put("/", h.Set)
	return r
}
