package user

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/socialpay/socialpay-api/internal/middleware"
	"github.com/socialpay/socialpay-api/internal/pkg/errorhandler"
	"github.com/socialpay/socialpay-api/internal/pkg/response"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Profile handles GET /profile
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == uuid.Nil {
		response.Unauthorized(w, "unauthorized")
		return
	}

	u, err := h.svc.GetProfile(r.Context(), userID)
	if err != nil {
		errorhandler.Respond(r.Context(), w, err)
		return
	}
	response.OK(w, u)
}

// List handles GET /admin/users
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := response.PageParams(r)
	users, err := h.svc.List(r.Context(), limit, offset)
	if err != nil {
		errorhandler.Respond(r.Context(), w, err)
		return
	}
	response.Page(w, users, len(users), limit, offset)
}
