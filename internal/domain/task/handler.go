package task

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/socialpay/socialpay-api/internal/middleware"
	"github.com/socialpay/socialpay-api/internal/pkg/errorhandler"
	"github.com/socialpay/socialpay-api/internal/pkg/response"
	"github.com/socialpay/socialpay-api/internal/pkg/storage"
	"github.com/socialpay/socialpay-api/internal/pkg/validator"
)

// MaxUploadSize bounds the whole multipart body of a submission.
const MaxUploadSize = storage.MaxEvidenceSize + 1<<20

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List handles GET /tasks
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	limit, offset := response.PageParams(r)

	tasks, err := h.svc.ListTasks(r.Context(), userID, limit, offset)
	if err != nil {
		errorhandler.Respond(r.Context(), w, err)
		return
	}
	response.Page(w, tasks, len(tasks), limit, offset)
}

// Submit handles POST /tasks/{id}/submissions
// Multipart form: photo
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid task ID")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxUploadSize)
	if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
		response.BadRequest(w, "File too large or invalid form")
		return
	}

	file, _, err := r.FormFile("photo")
	if err != nil {
		response.BadRequest(w, "No photo provided")
		return
	}
	defer file.Close()

	sub, err := h.svc.Submit(r.Context(), middleware.GetUserID(r.Context()), taskID, file)
	if err != nil {
		errorhandler.Respond(r.Context(), w, err)
		return
	}
	response.Created(w, sub)
}

// Create handles POST /admin/tasks
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := response.DecodeJSON(r.Body, &req); err != nil {
		response.BadRequest(w, "Invalid JSON body")
		return
	}
	if errs := validator.Validate(req); errs != nil {
		errorhandler.LogValidationError(r.Context(), errs)
		response.ValidationError(w, errs)
		return
	}

	t, err := h.svc.CreateTask(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		errorhandler.Respond(r.Context(), w, err)
		return
	}
	response.Created(w, t)
}

// Delete handles DELETE /admin/tasks/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid task ID")
		return
	}

	if err := h.svc.DeleteTask(r.Context(), middleware.GetUserID(r.Context()), taskID); err != nil {
		errorhandler.Respond(r.Context(), w, err)
		return
	}
	response.NoContent(w)
}

// ListPending handles GET /admin/submissions/pending
func (h *Handler) ListPending(w http.ResponseWriter, r *http.Request) {
	limit, offset := response.PageParams(r)
	subs, err := h.svc.ListPending(r.Context(), limit, offset)
	if err != nil {
		errorhandler.Respond(r.Context(), w, err)
		return
	}
	response.Page(w, subs, len(subs), limit, offset)
}

// Review handles POST /admin/submissions/{id}/review
func (h *Handler) Review(w http.ResponseWriter, r *http.Request) {
	submissionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		response.BadRequest(w, "Invalid submission ID")
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

	result, err := h.svc.Review(r.Context(), middleware.GetUserID(r.Context()), submissionID, *req.Approved)
	if err != nil {
		errorhandler.Respond(r.Context(), w, err)
		return
	}
	response.OK(w, result)
}

// Routes returns the user task router
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/{id}/submissions", h.Submit)
	return r
}

// AdminTaskRoutes returns the admin task router
func (h *Handler) AdminTaskRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
	return r
}

// AdminSubmissionRoutes returns the admin review router
func (h *Handler) AdminSubmissionRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/pending", h.ListPending)
	r.Post("/{id}/review", h.Review)
	return r
}
