package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Idahel/js-project-api/internal/query"
	"github.com/Idahel/js-project-api/internal/services"
	"github.com/Idahel/js-project-api/internal/store"
	"github.com/Idahel/js-project-api/types"
)

// ThoughtHandler provides HTTP handlers for thoughts.
type ThoughtHandler struct {
	thoughtService *services.ThoughtService
	logger         *slog.Logger
}

// NewThoughtHandler constructs a handler with the provided service.
func NewThoughtHandler(thoughtService *services.ThoughtService, logger *slog.Logger) *ThoughtHandler {
	return &ThoughtHandler{thoughtService: thoughtService, logger: logger}
}

// ThoughtRouter registers thought routes on the given router.
func ThoughtRouter(
	r chi.Router,
	thoughtService *services.ThoughtService,
	authMiddleware func(http.Handler) http.Handler,
	logger *slog.Logger,
) {
	handler := NewThoughtHandler(thoughtService, logger)

	r.Get("/", handler.ListThoughts)
	r.With(authMiddleware).Post("/", withUser(handler.CreateThought))
	r.Route("/{thoughtID}", func(r chi.Router) {
		r.Get("/", handler.GetThought)
		r.With(authMiddleware).Patch("/", withUser(handler.UpdateThought))
		r.With(authMiddleware).Delete("/", withUser(handler.DeleteThought))
		r.Patch("/like", handler.LikeThought)
	})
}

func (h *ThoughtHandler) ListThoughts(w http.ResponseWriter, r *http.Request) {
	q, err := query.ParseThoughtQuery(r.URL.Query())
	if err != nil {
		var perr *query.ParamError
		if errors.As(err, &perr) {
			writeError(w, http.StatusBadRequest, perr.Message, map[string]string{"param": perr.Param})
			return
		}
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	page, err := h.thoughtService.List(r.Context(), q)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to list thoughts", "error", err)
		writeError(w, http.StatusInternalServerError, "Could not fetch thoughts.", nil)
		return
	}

	message := "Thoughts fetched successfully."
	if page.Total == 0 {
		message = "No thoughts matched the query."
	}
	writeSuccess(w, http.StatusOK, page, message)
}

func (h *ThoughtHandler) GetThought(w http.ResponseWriter, r *http.Request) {
	thought, err := h.thoughtService.Get(r.Context(), thoughtID(r))
	if err != nil {
		h.writeThoughtError(w, r, err, "fetch")
		return
	}
	writeSuccess(w, http.StatusOK, thought, "Thought found.")
}

func (h *ThoughtHandler) CreateThought(w http.ResponseWriter, r *http.Request, user types.User) {
	var req CreateThoughtRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body.", nil)
		return
	}

	created, err := h.thoughtService.Create(r.Context(), user, req.Message)
	if err != nil {
		h.writeThoughtError(w, r, err, "create")
		return
	}
	writeSuccess(w, http.StatusCreated, created, "Thought created successfully.")
}

func (h *ThoughtHandler) LikeThought(w http.ResponseWriter, r *http.Request) {
	liked, err := h.thoughtService.Like(r.Context(), thoughtID(r))
	if err != nil {
		h.writeThoughtError(w, r, err, "like")
		return
	}
	writeSuccess(w, http.StatusOK, liked, "Thought liked.")
}

func (h *ThoughtHandler) UpdateThought(w http.ResponseWriter, r *http.Request, user types.User) {
	var req UpdateThoughtRequest
	// A missing body supplies neither field, same as {}.
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, errEmptyBody) {
		writeError(w, http.StatusBadRequest, "Invalid request body.", nil)
		return
	}

	update := types.ThoughtUpdate{Message: req.Message, Unlike: req.Unlike}
	updated, err := h.thoughtService.Update(r.Context(), user, thoughtID(r), update)
	if err != nil {
		h.writeThoughtError(w, r, err, "update")
		return
	}

	message := "Thought updated successfully."
	if update.Empty() {
		message = "Nothing to update."
	}
	writeSuccess(w, http.StatusOK, updated, message)
}

func (h *ThoughtHandler) DeleteThought(w http.ResponseWriter, r *http.Request, user types.User) {
	deleted, err := h.thoughtService.Delete(r.Context(), user, thoughtID(r))
	if err != nil {
		h.writeThoughtError(w, r, err, "delete")
		return
	}
	writeSuccess(w, http.StatusOK, deleted, "Thought deleted successfully.")
}

// writeThoughtError maps service and store errors onto the envelope.
func (h *ThoughtHandler) writeThoughtError(w http.ResponseWriter, r *http.Request, err error, action string) {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, "Invalid thought.", verr.Fields)
	case errors.Is(err, store.ErrInvalidID):
		writeError(w, http.StatusBadRequest, "Invalid thought id.", nil)
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Thought not found.", nil)
	case errors.Is(err, services.ErrForbidden):
		writeError(w, http.StatusForbidden, "You can only "+action+" your own thoughts.", nil)
	default:
		h.logger.ErrorContext(r.Context(), "thought request failed", "action", action, "error", err)
		writeError(w, http.StatusInternalServerError, "Could not "+action+" thought.", nil)
	}
}

func thoughtID(r *http.Request) string {
	return strings.TrimSpace(chi.URLParam(r, "thoughtID"))
}

type CreateThoughtRequest struct {
	Message string `json:"message"`
}

// UpdateThoughtRequest carries the optional edits of PATCH /thoughts/{id}.
type UpdateThoughtRequest struct {
	Message *string `json:"message"`
	Unlike  bool    `json:"unlike"`
}
