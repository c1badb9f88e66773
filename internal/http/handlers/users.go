package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/geocoder89/accounthub/internal/cache"
	"github.com/geocoder89/accounthub/internal/config"
	"github.com/geocoder89/accounthub/internal/domain/role"
	"github.com/geocoder89/accounthub/internal/domain/user"
	"github.com/geocoder89/accounthub/internal/http/middlewares"
	"github.com/geocoder89/accounthub/internal/security"
	"github.com/geocoder89/accounthub/internal/utils"
	"github.com/gin-gonic/gin"
)

type UserDirectory interface {
	List(ctx context.Context) ([]user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
	EmailInUse(ctx context.Context, email, excludeID string) (bool, error)
	Update(ctx context.Context, id string, req user.UpdateUserRequest, passwordHash *string) (user.User, error)
	Delete(ctx context.Context, id string) error
}

// SessionRevoker kills every live session of a deleted user. May be nil
// when the deployment runs without refresh sessions.
type SessionRevoker interface {
	RevokeAllForUser(ctx context.Context, userID string) error
}

type UsersHandler struct {
	users     UserDirectory
	roles     RoleReader
	hasher    *security.Hasher
	roleCache *cache.Cache
	sessions  SessionRevoker
}

func NewUsersHandler(users UserDirectory, roles RoleReader, hasher *security.Hasher, roleCache *cache.Cache, sessions SessionRevoker) *UsersHandler {
	return &UsersHandler{
		users:     users,
		roles:     roles,
		hasher:    hasher,
		roleCache: roleCache,
		sessions:  sessions,
	}
}

func (h *UsersHandler) ListUsers(ctx *gin.Context) {
	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	users, err := h.users.List(cctx)

	if err != nil {
		RespondInternal(ctx, "Could not list users")
		return
	}

	RespondJSONWithETag(ctx, http.StatusOK, users)
}

// GetMe returns the record behind the access token's subject. The auth
// middleware has already resolved and verified the identity.
func (h *UsersHandler) GetMe(ctx *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(ctx)

	if !ok || userID == "" {
		RespondUnAuthorized(ctx, "unauthorized", "Missing identity")
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	u, err := h.users.GetByID(cctx, userID)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not fetch user")
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *UsersHandler) CreateUser(ctx *gin.Context) {
	var req user.CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if !h.validateEmailAndRole(ctx, cctx, req.Email, "", req.RoleID) {
		return
	}

	// same hashing policy as register: plaintext never reaches the store
	hash, err := h.hasher.Hash(req.Password)

	if err != nil {
		RespondInternal(ctx, "Could not create user")
		return
	}

	u, err := h.users.Create(cctx, user.NewFromCreateRequest(req, hash))

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			// lost the race between the pre-check and the insert
			RespondBadRequest(ctx, "email_exists", "Email already exists", nil)
			return
		}

		RespondInternal(ctx, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, u)
}

func (h *UsersHandler) UpdateUser(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "invalid_id", "user id must be a valid UUID", nil)
		return
	}

	var req user.UpdateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	if _, err := h.users.GetByID(cctx, id); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not update user")
		return
	}

	// the duplicate-email check excludes the record being updated so a
	// user saving their own unchanged email is not rejected
	if !h.validateEmailAndRole(ctx, cctx, req.Email, id, req.RoleID) {
		return
	}

	var passwordHash *string

	if req.Password != "" {
		hash, err := h.hasher.Hash(req.Password)

		if err != nil {
			RespondInternal(ctx, "Could not update user")
			return
		}

		passwordHash = &hash
	}

	u, err := h.users.Update(cctx, id, req, passwordHash)

	if err != nil {
		switch {
		case errors.Is(err, user.ErrNotFound):
			// deleted between the existence check and the update
			RespondNotFound(ctx, "User not found")
		case errors.Is(err, user.ErrEmailTaken):
			RespondBadRequest(ctx, "email_exists", "Email already exists", nil)
		default:
			RespondInternal(ctx, "Could not update user")
		}
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *UsersHandler) DeleteUser(ctx *gin.Context) {
	id := ctx.Param("id")

	if !utils.IsUUID(id) {
		RespondBadRequest(ctx, "invalid_id", "user id must be a valid UUID", nil)
		return
	}

	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	err := h.users.Delete(cctx, id)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			RespondNotFound(ctx, "User not found")
			return
		}

		RespondInternal(ctx, "Could not delete user")
		return
	}

	// best effort: the record is gone either way
	if h.sessions != nil {
		_ = h.sessions.RevokeAllForUser(cctx, id)
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "User deleted successfully"})
}

// validateEmailAndRole runs the two shared pre-write checks and writes the
// response itself on failure. Returns true when the write may proceed.
func (h *UsersHandler) validateEmailAndRole(ctx *gin.Context, cctx context.Context, email, excludeID, roleID string) bool {
	err := checkEmailAvailable(cctx, h.users, email, excludeID)

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			RespondBadRequest(ctx, "email_exists", "Email already exists", nil)
			return false
		}

		RespondInternal(ctx, "Could not validate email")
		return false
	}

	_, err = resolveRole(cctx, h.roles, h.roleCache, roleID)

	if err != nil {
		if errors.Is(err, role.ErrNotFound) {
			RespondBadRequest(ctx, "role_not_found", "Role not found", nil)
			return false
		}

		RespondInternal(ctx, "Could not validate role")
		return false
	}

	return true
}
