package contacts

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/user/contactdesk-go/apperror"
	"github.com/user/contactdesk-go/auth"
)

// Handlers exposes the contact store over HTTP.
type Handlers struct {
	service Service
}

// NewHandlers creates the contacts HTTP handlers.
func NewHandlers(service Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes mounts the contact endpoints on the given router. The
// router is expected to already carry the JWT middleware.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Post("/", h.HandleAddContact())
	r.Get("/", h.HandleListContacts())
	r.Post("/search", h.HandleSearchContacts())
	r.Get("/{id}", h.HandleGetContact())
	r.Patch("/{id}", h.HandleUpdateContact())
	r.Delete("/{id}", h.HandleDeleteContact())
}

// callerID resolves the authenticated user id or writes the error itself.
func callerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := auth.GetUserIDFromContext(r.Context())
	if !ok {
		auth.WriteError(w, r, apperror.NewAuthError("user identity missing from request context", nil))
		return 0, false
	}
	return userID, true
}

// contactID parses the {id} route parameter or writes the error itself.
func contactID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		auth.WriteError(w, r, apperror.NewValidationError("invalid contact id", err))
		return 0, false
	}
	return id, true
}

// HandleAddContact handles POST /contacts.
func (h *Handlers) HandleAddContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}

		var req ContactRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		if req.Name == "" || req.PhoneNumber == "" {
			auth.WriteError(w, r, apperror.NewValidationError("name and phoneNumber are required", nil))
			return
		}

		id, err := h.service.Add(r.Context(), userID, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, AddContactResponse{ID: id})
	}
}

// HandleGetContact handles GET /contacts/{id}.
func (h *Handlers) HandleGetContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		id, ok := contactID(w, r)
		if !ok {
			return
		}

		contact, err := h.service.Get(r.Context(), userID, id)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, ContactResponse{Contact: *contact})
	}
}

// HandleListContacts handles GET /contacts.
func (h *Handlers) HandleListContacts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}

		contacts, err := h.service.List(r.Context(), userID)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, ContactListResponse{Contacts: contacts})
	}
}

// HandleUpdateContact handles PATCH /contacts/{id}. The body replaces all
// four mutable fields; there is no partial update.
func (h *Handlers) HandleUpdateContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		id, ok := contactID(w, r)
		if !ok {
			return
		}

		var req ContactRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		if req.Name == "" || req.PhoneNumber == "" {
			auth.WriteError(w, r, apperror.NewValidationError("name and phoneNumber are required", nil))
			return
		}

		if err := h.service.Update(r.Context(), userID, id, req); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, nil)
	}
}

// HandleDeleteContact handles DELETE /contacts/{id}.
func (h *Handlers) HandleDeleteContact() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}
		id, ok := contactID(w, r)
		if !ok {
			return
		}

		if err := h.service.Delete(r.Context(), userID, id); err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, nil)
	}
}

// HandleSearchContacts handles POST /contacts/search.
func (h *Handlers) HandleSearchContacts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, ok := callerID(w, r)
		if !ok {
			return
		}

		var req SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			auth.WriteError(w, r, apperror.NewBadRequestError("invalid request body", err))
			return
		}
		defer r.Body.Close()

		contacts, err := h.service.Search(r.Context(), userID, req)
		if err != nil {
			auth.WriteError(w, r, err)
			return
		}
		auth.WriteJSON(w, http.StatusOK, ContactListResponse{Contacts: contacts})
	}
}
