package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/geocoder89/accounthub/internal/auth"
	"github.com/geocoder89/accounthub/internal/cache"
	"github.com/geocoder89/accounthub/internal/config"
	"github.com/geocoder89/accounthub/internal/domain/role"
	"github.com/geocoder89/accounthub/internal/domain/user"
	"github.com/geocoder89/accounthub/internal/observability"
	"github.com/geocoder89/accounthub/internal/repo/postgres"
	"github.com/geocoder89/accounthub/internal/security"
	"github.com/gin-gonic/gin"
)

type UserAccounts interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	Create(ctx context.Context, u user.User) (user.User, error)
	EmailInUse(ctx context.Context, email, excludeID string) (bool, error)
}

type SessionStore interface {
	Create(ctx context.Context, row postgres.RefreshTokenRow) error
	Rotate(ctx context.Context, oldID, presentedHash string, newRow postgres.RefreshTokenRow) error
	Revoke(ctx context.Context, id string) error
}

// Keep this small interface so tests can fake the Redis-backed throttle.
type Throttle interface {
	Allow(ctx context.Context, email string) (bool, time.Duration, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}

type AuthHandler struct {
	users     UserAccounts
	roles     RoleReader
	hasher    *security.Hasher
	jwt       *auth.Manager
	sessions  SessionStore
	throttle  Throttle
	roleCache *cache.Cache
	prom      *observability.Prom
	cfg       config.Config
}

func NewAuthHandler(
	users UserAccounts,
	roles RoleReader,
	hasher *security.Hasher,
	jwtManager *auth.Manager,
	sessions SessionStore,
	throttle Throttle,
	roleCache *cache.Cache,
	prom *observability.Prom,
	cfg config.Config,
) *AuthHandler {
	return &AuthHandler{
		users:     users,
		roles:     roles,
		hasher:    hasher,
		jwt:       jwtManager,
		sessions:  sessions,
		throttle:  throttle,
		roleCache: roleCache,
		prom:      prom,
		cfg:       cfg,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	allowed, retryAfter, err := h.throttle.Allow(cctx, req.Email)

	if err != nil {
		// redis being down must not lock everyone out
		allowed = true
	}

	if !allowed {
		ctx.Header("Retry-After", itoaSeconds(retryAfter))
		h.prom.CountAuth("login", "throttled")
		RespondTooManyRequests(ctx, "Too many failed attempts. Please try again later.")
		return
	}

	foundUser, err := h.users.GetByEmail(cctx, req.Email)

	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// stop here: there is no stored hash to compare against
			_ = h.throttle.RecordFailure(cctx, req.Email)
			h.prom.CountAuth("login", "not_found")
			RespondNotFound(ctx, "User not found")
			return
		}

		h.prom.CountAuth("login", "error")
		RespondInternal(ctx, "Could not log in")
		return
	}

	err = h.hasher.Verify(foundUser.PasswordHash, req.Password)

	if err != nil {
		_ = h.throttle.RecordFailure(cctx, req.Email)
		h.prom.CountAuth("login", "bad_credentials")
		RespondUnAuthorized(ctx, "invalid_credentials", "Invalid credentials")
		return
	}

	_ = h.throttle.Reset(cctx, req.Email)

	identity, err := h.identityFor(cctx, foundUser)

	if err != nil {
		h.prom.CountAuth("login", "error")
		RespondInternal(ctx, "Could not log in")
		return
	}

	accessToken, err := h.jwt.GenerateAccessToken(identity)

	if err != nil {
		h.prom.CountAuth("login", "error")
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	rawRefreshToken, jti, expiresAt, err := h.jwt.GenerateRefreshToken(identity)

	if err != nil {
		h.prom.CountAuth("login", "error")
		RespondInternal(ctx, "Could not generate refresh token")
		return
	}

	if err := h.storeRefreshToken(cctx, foundUser.ID, jti, rawRefreshToken, expiresAt); err != nil {
		h.prom.CountAuth("login", "error")
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setRefreshCookie(ctx, rawRefreshToken, expiresAt)
	h.prom.CountAuth("login", "ok")

	ctx.JSON(http.StatusOK, gin.H{
		"token": accessToken,
	})
}

func (h *AuthHandler) Register(ctx *gin.Context) {
	var req user.CreateUserRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	err := checkEmailAvailable(cctx, h.users, req.Email, "")

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			h.prom.CountAuth("register", "conflict")
			RespondBadRequest(ctx, "email_exists", "Email already exists", nil)
			return
		}

		h.prom.CountAuth("register", "error")
		RespondInternal(ctx, "Could not register user")
		return
	}

	_, err = resolveRole(cctx, h.roles, h.roleCache, req.RoleID)

	if err != nil {
		if errors.Is(err, role.ErrNotFound) {
			h.prom.CountAuth("register", "conflict")
			RespondBadRequest(ctx, "role_not_found", "Role not found", nil)
			return
		}

		h.prom.CountAuth("register", "error")
		RespondInternal(ctx, "Could not register user")
		return
	}

	hash, err := h.hasher.Hash(req.Password)

	if err != nil {
		h.prom.CountAuth("register", "error")
		RespondInternal(ctx, "Could not register user")
		return
	}

	u, err := h.users.Create(cctx, user.NewFromCreateRequest(req, hash))

	if err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			h.prom.CountAuth("register", "conflict")
			RespondBadRequest(ctx, "email_exists", "Email already exists", nil)
			return
		}

		h.prom.CountAuth("register", "error")
		RespondInternal(ctx, "Could not register user")
		return
	}

	h.prom.CountAuth("register", "ok")

	// User marshals without the password hash
	ctx.JSON(http.StatusCreated, u)
}

func (h *AuthHandler) Refresh(ctx *gin.Context) {
	raw, err := ctx.Cookie(h.refreshCookieName())

	if err != nil || raw == "" {
		RespondUnAuthorized(ctx, "no_refresh", "Missing refresh token")
		return
	}

	claims, err := h.jwt.VerifyRefreshToken(raw)

	if err != nil {
		RespondUnAuthorized(ctx, "invalid_refresh", "Invalid refresh token")
		return
	}

	identity := claims.Identity()

	newRaw, newJTI, newExpiresAt, err := h.jwt.GenerateRefreshToken(identity)

	if err != nil {
		RespondInternal(ctx, "Could not refresh session")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	newRow := postgres.RefreshTokenRow{
		ID:        newJTI,
		UserID:    identity.UserID,
		TokenHash: h.jwt.HashRefreshToken(newRaw),
		ExpiresAt: newExpiresAt,
		CreatedAt: time.Now().UTC(),
	}

	err = h.sessions.Rotate(cctx, claims.JTI, h.jwt.HashRefreshToken(raw), newRow)

	if err != nil {
		switch {
		case errors.Is(err, postgres.ErrRefreshTokenExpired):
			RespondUnAuthorized(ctx, "expired_refresh", "Refresh token expired")
		case errors.Is(err, postgres.ErrRefreshTokenNotFound),
			errors.Is(err, postgres.ErrRefreshTokenRevoked),
			errors.Is(err, postgres.ErrRefreshTokenMismatch):
			RespondUnAuthorized(ctx, "invalid_refresh", "Invalid refresh token")
		default:
			RespondInternal(ctx, "Could not refresh session")
		}
		return
	}

	accessToken, err := h.jwt.GenerateAccessToken(identity)

	if err != nil {
		RespondInternal(ctx, "Could not generate access token")
		return
	}

	h.setRefreshCookie(ctx, newRaw, newExpiresAt)

	ctx.JSON(http.StatusOK, gin.H{
		"token": accessToken,
	})
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	raw, err := ctx.Cookie(h.refreshCookieName())

	if err != nil || raw == "" {
		// still clear cookie to be safe
		h.clearRefreshCookie(ctx)
		ctx.Status(http.StatusNoContent)
		return
	}

	claims, err := h.jwt.VerifyRefreshToken(raw)
	if err != nil {
		h.clearRefreshCookie(ctx)
		ctx.Status(http.StatusNoContent)
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	_ = h.sessions.Revoke(cctx, claims.JTI)

	h.clearRefreshCookie(ctx)
	ctx.Status(http.StatusNoContent)
}

// Helper functions

// identityFor resolves the role name behind the user's role id so tokens
// carry something the RBAC middleware can compare against.
func (h *AuthHandler) identityFor(ctx context.Context, u user.User) (auth.Identity, error) {
	ro, err := resolveRole(ctx, h.roles, h.roleCache, u.RoleID)

	if err != nil {
		return auth.Identity{}, err
	}

	return auth.Identity{
		UserID: u.ID,
		Email:  u.Email,
		RoleID: ro.ID,
		Role:   ro.Name,
	}, nil
}

func (h *AuthHandler) storeRefreshToken(ctx context.Context, userID, jti, raw string, expiresAt time.Time) error {
	return h.sessions.Create(ctx, postgres.RefreshTokenRow{
		ID:        jti,
		UserID:    userID,
		TokenHash: h.jwt.HashRefreshToken(raw),
		ExpiresAt: expiresAt,
		CreatedAt: time.Now().UTC(),
	})
}

func (h *AuthHandler) refreshCookieName() string {
	return "refresh_token"
}

func (h *AuthHandler) setRefreshCookie(ctx *gin.Context, raw string, expiresAt time.Time) {
	secure := h.cfg.Env == "prod"

	maxAge := int(time.Until(expiresAt).Seconds())

	ctx.SetSameSite(http.SameSiteStrictMode)

	ctx.SetCookie(
		h.refreshCookieName(),
		raw,
		maxAge,
		"/auth",
		"",
		secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearRefreshCookie(ctx *gin.Context) {
	secure := h.cfg.Env == "prod"
	ctx.SetSameSite(http.SameSiteStrictMode)
	ctx.SetCookie(
		h.refreshCookieName(),
		"",

		-1,
		"/auth",
		"",
		secure,
		true,
	)
}

func itoaSeconds(d time.Duration) string {
	secs := int(d.Seconds())

	if secs < 0 {
		secs = 0
	}

	return strconv.Itoa(secs)
}
