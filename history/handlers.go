package history

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/user/contactdesk-go/apperror"
	"github.com/user/contactdesk-go/auth"
)

// Handlers exposes the audit log over HTTP.
type Handlers struct {
	service Service
}

// NewHandlers creates the history HTTP handlers.
func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts the history endpoints on the given router. The
// router is expected to already carry the JWT middleware.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleGetHistory())
	r.Delete("/", h.HandleDeleteHistory())
}

// HandleGetHistory handles GET /history.
func (h *Handlers) HandleGetHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.GetUserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("user identity missing from request context", nil))
			return
		}

		entries, err := h.service.List(r.Context(), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, entries)
	}
}

// HandleDeleteHistory handles DELETE /history.
func (h *Handlers) HandleDeleteHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := auth.GetUserIDFromContext(r.Context())
		if !ok {
			auth.WriteError(w, r, apperror.NewAuthError("user identity missing from request context", nil))
			return
		}

		if err := h.service.Clear(r.Context(), userID); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
