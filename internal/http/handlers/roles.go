package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/accounthub/internal/config"
	"github.com/geocoder89/accounthub/internal/domain/role"
	"github.com/gin-gonic/gin"
)

type RoleDirectory interface {
	List(ctx context.Context) ([]role.Role, error)
}

// RolesHandler serves the role catalogue so clients can resolve the role id
// that register and create require. Roles are seeded, so this is read-only.
type RolesHandler struct {
	roles RoleDirectory
}

func NewRolesHandler(roles RoleDirectory) *RolesHandler {
	return &RolesHandler{roles: roles}
}

func (h *RolesHandler) ListRoles(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	roles, err := h.roles.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list roles")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, roles)
}
