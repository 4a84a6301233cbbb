package handler

import (
	"context"
	"net/http"

	"github.com/bharath13925/street-view-videos-sub000/internal/auth"
	"github.com/bharath13925/street-view-videos-sub000/internal/models"
	"github.com/bharath13925/street-view-videos-sub000/internal/service"
)

type UserAPI interface {
	SyncUser(ctx context.Context, id *auth.Identity, data service.SyncUserData) (*models.User, error)
	GetMe(ctx context.Context, uid string) (*models.User, error)
}

type UserHandler struct {
	svc UserAPI
}

func NewUserHandler(s UserAPI) *UserHandler {
	return &UserHandler{svc: s}
}

// @Summary Sync the signed-in Firebase user
// @Description Creates the user on first sign-in, refreshes name, email and last login afterwards.
// @Tags users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param body body service.SyncUserData false "profile data"
// @Success 200 {object} models.User
// @Failure 400 {object} errorResponse
// @Failure 401 {object} errorResponse
// @Router /api/users/sync [post]
func (h *UserHandler) Sync(w http.ResponseWriter, r *http.Request) {
	var body service.SyncUserData
	if err := decodeBody(r, &body); err != nil {
		badRequest(w, err)
		return
	}
	u, err := h.svc.SyncUser(r.Context(), IdentityFromContext(r.Context()), body)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// @Summary Current user
// @Tags users
// @Security BearerAuth
// @Produce json
// @Success 200 {object} models.User
// @Failure 404 {object} errorResponse
// @Router /api/users/me [get]
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	u, err := h.svc.GetMe(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
