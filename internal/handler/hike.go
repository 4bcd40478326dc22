package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/hike-planner/internal/model"
	"github.com/sakif/hike-planner/internal/service"
)

// HikeHandler serves the hike log under /api/hikes.
type HikeHandler struct {
	hikes  *service.HikeService
	logger *slog.Logger
}

func NewHikeHandler(hikes *service.HikeService, logger *slog.Logger) *HikeHandler {
	return &HikeHandler{
		hikes:  hikes,
		logger: logger,
	}
}

type CreateHikeResponse struct {
	Message string      `json:"message"`
	HikeID  string      `json:"hike_id"`
	Hike    *model.Hike `json:"hike"`
}

type ListHikesResponse struct {
	Hikes []model.Hike `json:"hikes"`
	Total int          `json:"total"`
}

// HandleCreate logs a hike.
//
// HTTP: POST /api/hikes
func (h *HikeHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var in service.LogHikeInput
	if err := decodeJSON(w, r, &in); err != nil {
		writeError(w, err)
		return
	}

	hike, err := h.hikes.Create(r.Context(), in)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, CreateHikeResponse{
		Message: "Hike logged successfully",
		HikeID:  hike.ID,
		Hike:    hike,
	})
}

// HandleListByUser returns every hike of a user, newest first.
//
// HTTP: GET /api/hikes/user/{user_id}
func (h *HikeHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	hikes, err := h.hikes.ListByOwner(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListHikesResponse{Hikes: hikes, Total: len(hikes)})
}

// HandleGetByID returns one hike.
//
// HTTP: GET /api/hikes/{id}
func (h *HikeHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	hike, err := h.hikes.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hike)
}

// HandleDelete removes a hike.
//
// HTTP: DELETE /api/hikes/{id}
func (h *HikeHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.hikes.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Hike deleted"})
}
