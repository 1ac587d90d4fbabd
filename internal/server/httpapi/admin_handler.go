package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/dmitrijs2005/datingapp/internal/common"
	"github.com/dmitrijs2005/datingapp/internal/logging"
	"github.com/dmitrijs2005/datingapp/internal/server/models"
	"github.com/dmitrijs2005/datingapp/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// AdminService is what the admin endpoints need from services.AdminService.
type AdminService interface {
	UsersWithRoles(ctx context.Context) ([]*models.UserWithRoles, error)
	EditRoles(ctx context.Context, targetUsername string, roles string) ([]models.RoleName, error)
	DeleteAccount(ctx context.Context, requesterID int64, targetUsername string) error
}

// Evictor drops live connections of a user.
type Evictor interface {
	Evict(username string) int
}

type AdminHandler struct {
	service AdminService
	evictor Evictor
	logger  logging.Logger
}

func NewAdminHandler(service AdminService, evictor Evictor, logger logging.Logger) *AdminHandler {
	return &AdminHandler{service: service, evictor: evictor, logger: logger}
}

type userWithRolesResponse struct {
	ID       int64             `json:"id"`
	Username string            `json:"username"`
	Roles    []models.RoleName `json:"roles"`
}

// UsersWithRoles handles GET /api/admin/users-with-roles.
func (h *AdminHandler) UsersWithRoles(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.UsersWithRoles(r.Context())
	if err != nil {
		h.logger.Error(r.Context(), "list users with roles", "error", err.Error())
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	resp := make([]userWithRolesResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, userWithRolesResponse{ID: u.ID, Username: u.UserName, Roles: u.Roles})
	}
	writeJSON(w, http.StatusOK, resp)
}

// EditRoles handles POST /api/admin/edit-roles/{username}?roles=a,b.
func (h *AdminHandler) EditRoles(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	roles, err := h.service.EditRoles(r.Context(), username, r.URL.Query().Get("roles"))
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, roles)
	case errors.Is(err, common.ErrEmptyRoleList), errors.Is(err, common.ErrUnknownRole):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "could not find user")
	default:
		h.logger.Error(r.Context(), "edit roles", "username", username, "error", err.Error())
		writeError(w, http.StatusInternalServerError, "failed to edit roles")
	}
}

// DeleteUser handles DELETE /api/admin/users/{username}.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	claims, ok := ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	requesterID, err := claims.UserID()
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	username := chi.URLParam(r, "username")

	err = h.service.DeleteAccount(r.Context(), requesterID, username)

	var forbidden *services.ForbiddenError
	switch {
	case err == nil:
		if h.evictor != nil {
			h.evictor.Evict(username)
		}
		w.WriteHeader(http.StatusOK)
	case errors.Is(err, common.ErrorNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	case errors.As(err, &forbidden):
		writeError(w, http.StatusBadRequest, forbiddenMessage(forbidden.Reason))
	default:
		writeError(w, http.StatusInternalServerError, "failed to delete user")
	}
}

func forbiddenMessage(reason string) string {
	switch reason {
	case services.ReasonSelfDelete:
		return "you can not delete yourself"
	case services.ReasonProtectedAccount:
		return "you can not delete an admin"
	}
	return "forbidden"
}
