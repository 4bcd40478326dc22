package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/hike-planner/internal/model"
	"github.com/sakif/hike-planner/internal/service"
)

// UserHandler serves the profile endpoints under /api/users.
//
// Identity is asserted by the client through the Clerk user id in the body
// or path; nothing here verifies it.
type UserHandler struct {
	users  *service.UserService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		users:  users,
		logger: logger,
	}
}

// SyncResponse is the stored profile plus whether this call created it.
type SyncResponse struct {
	*model.User
	IsNewUser bool   `json:"is_new_user"`
	Message   string `json:"message,omitempty"`
}

// HandleSync creates the profile on first sign-in and returns it unchanged
// afterwards.
//
// HTTP: POST /api/users/sync
// REQUEST BODY: {"clerk_id":"u1","email":"a@x.io","auth_provider":"google"}
func (h *UserHandler) HandleSync(w http.ResponseWriter, r *http.Request) {
	var in service.SyncUserInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	user, isNew, err := h.users.Sync(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := SyncResponse{User: user, IsNewUser: isNew}
	if isNew {
		resp.Message = "User saved successfully"
	}
	writeJSON(w, http.StatusOK, resp)
}

// DefaultProfile is the body for an identity that has never synced.
type DefaultProfile struct {
	ClerkID        string  `json:"clerk_id"`
	CustomUsername *string `json:"custom_username"`
}

// HandleGet returns the profile, or a default one for an unknown id.
//
// HTTP: GET /api/users/{clerk_id}
func (h *UserHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.Get(r.Context(), chi.URLParam(r, "clerk_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	// Stored profiles always carry a store id.
	if user.ID == "" {
		writeJSON(w, http.StatusOK, DefaultProfile{ClerkID: user.ClerkID})
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleGetByID looks a profile up by its store-generated id. Unlike
// HandleGet, an unknown id is a 404.
//
// HTTP: GET /api/users/id/{id}
func (h *UserHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// HandleUpdate merges the supplied profile fields.
//
// HTTP: PUT /api/users/{clerk_id}
// REQUEST BODY: any of {"custom_username", "first_name", "last_name"}
func (h *UserHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateUserInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.Update(r.Context(), chi.URLParam(r, "clerk_id"), in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
