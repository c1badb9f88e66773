package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/accounthub/internal/auth"
	"github.com/geocoder89/accounthub/internal/domain/role"
	"github.com/geocoder89/accounthub/internal/domain/user"
	"github.com/geocoder89/accounthub/internal/http/handlers"
	"github.com/geocoder89/accounthub/internal/http/middlewares"
	"github.com/geocoder89/accounthub/internal/security"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Make sure Gin does not spam the console during the test

func init() {
	gin.SetMode(gin.TestMode)
}

func newUUID() string {
	return uuid.NewString()
}

// Fake repository implementations of the handlers.UserDirectory interface

type fakeUsersRepo struct {
	listFn       func(ctx context.Context) ([]user.User, error)
	getFn        func(ctx context.Context, id string) (user.User, error)
	getByEmailFn func(ctx context.Context, email string) (user.User, error)
	createFn     func(ctx context.Context, u user.User) (user.User, error)
	emailInUseFn func(ctx context.Context, email, excludeID string) (bool, error)
	updateFn     func(ctx context.Context, id string, req user.UpdateUserRequest, passwordHash *string) (user.User, error)
	deleteFn     func(ctx context.Context, id string) error
}

func (f *fakeUsersRepo) List(ctx context.Context) ([]user.User, error) {
	if f.listFn != nil {
		return f.listFn(ctx)
	}
	return []user.User{}, nil
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return user.User{}, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}
	return user.User{}, nil
}

func (f *fakeUsersRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, u)
	}
	return u, nil
}

func (f *fakeUsersRepo) EmailInUse(ctx context.Context, email, excludeID string) (bool, error) {
	if f.emailInUseFn != nil {
		return f.emailInUseFn(ctx, email, excludeID)
	}
	return false, nil
}

func (f *fakeUsersRepo) Update(ctx context.Context, id string, req user.UpdateUserRequest, passwordHash *string) (user.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req, passwordHash)
	}
	return user.User{}, nil
}

func (f *fakeUsersRepo) Delete(ctx context.Context, id string) error {
	if f.deleteFn != nil {
		return f.deleteFn(ctx, id)
	}
	return nil
}

// Fake role repo for the handlers.RoleReader interface

type fakeRolesRepo struct {
	getFn func(ctx context.Context, id string) (role.Role, error)
}

func (f *fakeRolesRepo) GetByID(ctx context.Context, id string) (role.Role, error) {
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	return role.Role{ID: id, Name: role.NameUser}, nil
}

// small helper function which returns the gin engine to mount one handler per test

func setupRouter(method, path string, h gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	r.Handle(method, path, h)

	return r
}

// fast hasher for tests; bcrypt at cost 10 would make the suite crawl
func testHasher() *security.Hasher {
	return security.NewHasher(bcrypt.MinCost)
}

func createUserBody(email, roleID string) string {
	return `{
		"firstName": "Ada",
		"lastName": "Lovelace",
		"email": "` + email + `",
		"password": "s3cret-pass",
		"birthDate": "1990-12-10T00:00:00Z",
		"roleId": "` + roleID + `"
	}`
}

// Create user tests

func TestCreateUserHandler(t *testing.T) {
	roleID := newUUID()

	tests := []struct {
		name           string
		body           string
		usersSetup     func(*fakeUsersRepo)
		rolesSetup     func(*fakeRolesRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: createUserBody("ada@example.com", roleID),
			usersSetup: func(f *fakeUsersRepo) {
				f.createFn = func(ctx context.Context, u user.User) (user.User, error) {
					if u.PasswordHash == "" || u.PasswordHash == "s3cret-pass" {
						return user.User{}, errors.New("password must be hashed before the store sees it")
					}
					return u, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "validation_error",
			body:           `{"firstName": ""}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "duplicate_email",
			body: createUserBody("taken@example.com", roleID),
			usersSetup: func(f *fakeUsersRepo) {
				f.emailInUseFn = func(ctx context.Context, email, excludeID string) (bool, error) {
					return true, nil
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "role_not_found",
			body: createUserBody("ada@example.com", roleID),
			rolesSetup: func(f *fakeRolesRepo) {
				f.getFn = func(ctx context.Context, id string) (role.Role, error) {
					return role.Role{}, role.ErrNotFound
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "insert_race_duplicate",
			body: createUserBody("raced@example.com", roleID),
			usersSetup: func(f *fakeUsersRepo) {
				f.createFn = func(ctx context.Context, u user.User) (user.User, error) {
					return user.User{}, user.ErrEmailTaken
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			body: createUserBody("ada@example.com", roleID),
			usersSetup: func(f *fakeUsersRepo) {
				f.createFn = func(ctx context.Context, u user.User) (user.User, error) {
					return user.User{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			usersRepo := &fakeUsersRepo{}
			rolesRepo := &fakeRolesRepo{}

			if tt.usersSetup != nil {
				tt.usersSetup(usersRepo)
			}
			if tt.rolesSetup != nil {
				tt.rolesSetup(rolesRepo)
			}

			h := handlers.NewUsersHandler(usersRepo, rolesRepo, testHasher(), nil, nil)

			r := setupRouter(http.MethodPost, "/users", h.CreateUser)

			req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestCreateUserHandler_ResponseOmitsPasswordHash(t *testing.T) {
	roleID := newUUID()

	usersRepo := &fakeUsersRepo{}
	h := handlers.NewUsersHandler(usersRepo, &fakeRolesRepo{}, testHasher(), nil, nil)

	r := setupRouter(http.MethodPost, "/users", h.CreateUser)

	req := httptest.NewRequest(http.MethodPost, "/users", bytes.NewBufferString(createUserBody("ada@example.com", roleID)))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusCreated, w.Body.String())
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}

	for _, key := range []string{"passwordHash", "password_hash", "password"} {
		if _, ok := raw[key]; ok {
			t.Fatalf("response leaked %q: %s", key, w.Body.String())
		}
	}

	if raw["email"] != "ada@example.com" {
		t.Fatalf("expected created user in response, got %s", w.Body.String())
	}
}

// Update user tests

func TestUpdateUserHandler(t *testing.T) {
	roleID := newUUID()
	validID := newUUID()
	missingID := newUUID()

	tests := []struct {
		name           string
		url            string
		body           string
		usersSetup     func(*fakeUsersRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/users/" + validID,
			body: createUserBody("ada@example.com", roleID),
			usersSetup: func(f *fakeUsersRepo) {
				f.getFn = func(ctx context.Context, id string) (user.User, error) {
					return user.User{ID: id}, nil
				}
				f.updateFn = func(ctx context.Context, id string, req user.UpdateUserRequest, passwordHash *string) (user.User, error) {
					return user.User{ID: id, Email: req.Email}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid_id",
			url:            "/users/not-a-uuid",
			body:           createUserBody("ada@example.com", roleID),
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "not_found",
			url:  "/users/" + missingID,
			body: createUserBody("ada@example.com", roleID),
			usersSetup: func(f *fakeUsersRepo) {
				f.getFn = func(ctx context.Context, id string) (user.User, error) {
					return user.User{}, user.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name:           "validation_error",
			url:            "/users/" + validID,
			body:           `{"email": "not-an-email"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "repo_error",
			url:  "/users/" + validID,
			body: createUserBody("ada@example.com", roleID),
			usersSetup: func(f *fakeUsersRepo) {
				f.getFn = func(ctx context.Context, id string) (user.User, error) {
					return user.User{ID: id}, nil
				}
				f.updateFn = func(ctx context.Context, id string, req user.UpdateUserRequest, passwordHash *string) (user.User, error) {
					return user.User{}, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			usersRepo := &fakeUsersRepo{}

			if tt.usersSetup != nil {
				tt.usersSetup(usersRepo)
			}

			h := handlers.NewUsersHandler(usersRepo, &fakeRolesRepo{}, testHasher(), nil, nil)

			r := setupRouter(http.MethodPut, "/users/:id", h.UpdateUser)
			req := httptest.NewRequest(http.MethodPut, tt.url, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

// A user saving their record with their own unchanged email must not be
// rejected: the uniqueness check has to exclude the record being updated.

func TestUpdateUserHandler_OwnEmailExcludedFromUniquenessCheck(t *testing.T) {
	roleID := newUUID()
	targetID := newUUID()

	usersRepo := &fakeUsersRepo{}
	usersRepo.getFn = func(ctx context.Context, id string) (user.User, error) {
		return user.User{ID: id, Email: "ada@example.com"}, nil
	}
	usersRepo.emailInUseFn = func(ctx context.Context, email, excludeID string) (bool, error) {
		if excludeID != targetID {
			return false, errors.New("uniqueness check must exclude the updated record")
		}
		// the email exists, but only on the excluded record
		return false, nil
	}
	usersRepo.updateFn = func(ctx context.Context, id string, req user.UpdateUserRequest, passwordHash *string) (user.User, error) {
		return user.User{ID: id, Email: req.Email}, nil
	}

	h := handlers.NewUsersHandler(usersRepo, &fakeRolesRepo{}, testHasher(), nil, nil)
	r := setupRouter(http.MethodPut, "/users/:id", h.UpdateUser)

	req := httptest.NewRequest(http.MethodPut, "/users/"+targetID, bytes.NewBufferString(createUserBody("ada@example.com", roleID)))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}
}

func TestUpdateUserHandler_PasswordOptional(t *testing.T) {
	roleID := newUUID()
	targetID := newUUID()

	var gotHash *string
	hashSeen := false

	usersRepo := &fakeUsersRepo{}
	usersRepo.getFn = func(ctx context.Context, id string) (user.User, error) {
		return user.User{ID: id}, nil
	}
	usersRepo.updateFn = func(ctx context.Context, id string, req user.UpdateUserRequest, passwordHash *string) (user.User, error) {
		gotHash = passwordHash
		hashSeen = true
		return user.User{ID: id, Email: req.Email}, nil
	}

	h := handlers.NewUsersHandler(usersRepo, &fakeRolesRepo{}, testHasher(), nil, nil)
	r := setupRouter(http.MethodPut, "/users/:id", h.UpdateUser)

	// no password field: the stored hash must be left alone
	body := `{
		"firstName": "Ada",
		"lastName": "Lovelace",
		"email": "ada@example.com",
		"birthDate": "1990-12-10T00:00:00Z",
		"roleId": "` + roleID + `"
	}`

	req := httptest.NewRequest(http.MethodPut, "/users/"+targetID, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}
	if !hashSeen {
		t.Fatalf("expected Update to be called")
	}
	if gotHash != nil {
		t.Fatalf("expected nil password hash when password is omitted, got %q", *gotHash)
	}

	// with a password the hash must be present and not the plaintext
	hashSeen = false
	req2 := httptest.NewRequest(http.MethodPut, "/users/"+targetID, bytes.NewBufferString(createUserBody("ada@example.com", roleID)))
	req2.Header.Set("Content-Type", "application/json")

	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, req2)

	if w2.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w2.Code, http.StatusOK, w2.Body.String())
	}
	if !hashSeen || gotHash == nil {
		t.Fatalf("expected a password hash when password is present")
	}
	if *gotHash == "s3cret-pass" {
		t.Fatalf("plaintext password reached the repository")
	}
}

// Delete user tests

type fakeSessionRevoker struct {
	revokeAllFn func(ctx context.Context, userID string) error
}

func (f *fakeSessionRevoker) RevokeAllForUser(ctx context.Context, userID string) error {
	if f.revokeAllFn != nil {
		return f.revokeAllFn(ctx, userID)
	}
	return nil
}

func TestDeleteUserHandler(t *testing.T) {
	validID := newUUID()
	missingID := newUUID()

	tests := []struct {
		name           string
		url            string
		usersSetup     func(*fakeUsersRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			url:  "/users/" + validID,
			usersSetup: func(f *fakeUsersRepo) {
				f.deleteFn = func(ctx context.Context, id string) error {
					return nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "invalid_id",
			url:            "/users/42",
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "not_found",
			url:  "/users/" + missingID,
			usersSetup: func(f *fakeUsersRepo) {
				f.deleteFn = func(ctx context.Context, id string) error {
					return user.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
		{
			name: "repo_error",
			url:  "/users/" + validID,
			usersSetup: func(f *fakeUsersRepo) {
				f.deleteFn = func(ctx context.Context, id string) error {
					return errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			usersRepo := &fakeUsersRepo{}

			if tt.usersSetup != nil {
				tt.usersSetup(usersRepo)
			}

			h := handlers.NewUsersHandler(usersRepo, &fakeRolesRepo{}, testHasher(), nil, nil)

			r := setupRouter(http.MethodDelete, "/users/:id", h.DeleteUser)

			req := httptest.NewRequest(http.MethodDelete, tt.url, nil)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}

func TestDeleteUserHandler_RevokesSessions(t *testing.T) {
	targetID := newUUID()
	revoked := ""

	sessions := &fakeSessionRevoker{
		revokeAllFn: func(ctx context.Context, userID string) error {
			revoked = userID
			return nil
		},
	}

	h := handlers.NewUsersHandler(&fakeUsersRepo{}, &fakeRolesRepo{}, testHasher(), nil, sessions)
	r := setupRouter(http.MethodDelete, "/users/:id", h.DeleteUser)

	req := httptest.NewRequest(http.MethodDelete, "/users/"+targetID, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}
	if revoked != targetID {
		t.Fatalf("expected sessions of %s to be revoked, got %q", targetID, revoked)
	}
}

// List users tests

func TestListUsersHandler(t *testing.T) {
	now := time.Now().UTC()

	tests := []struct {
		name           string
		usersSetup     func(*fakeUsersRepo)
		wantStatusCode int
		wantCount      int
	}{
		{
			name: "success",
			usersSetup: func(f *fakeUsersRepo) {
				f.listFn = func(ctx context.Context) ([]user.User, error) {
					return []user.User{
						{ID: newUUID(), FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", CreatedAt: now, UpdatedAt: now},
						{ID: newUUID(), FirstName: "Alan", LastName: "Turing", Email: "alan@example.com", CreatedAt: now, UpdatedAt: now},
					}, nil
				}
			},
			wantStatusCode: http.StatusOK,
			wantCount:      2,
		},
		{
			name:           "success_empty",
			wantStatusCode: http.StatusOK,
			wantCount:      0,
		},
		{
			name: "repo_error",
			usersSetup: func(f *fakeUsersRepo) {
				f.listFn = func(ctx context.Context) ([]user.User, error) {
					return nil, errors.New("db error")
				}
			},
			wantStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			usersRepo := &fakeUsersRepo{}

			if tt.usersSetup != nil {
				tt.usersSetup(usersRepo)
			}

			h := handlers.NewUsersHandler(usersRepo, &fakeRolesRepo{}, testHasher(), nil, nil)
			r := setupRouter(http.MethodGet, "/users", h.ListUsers)

			req := httptest.NewRequest(http.MethodGet, "/users", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusOK {
				var resp []user.User
				if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
					t.Fatalf("failed to unmarshal response: %v body=%s", err, w.Body.String())
				}
				if len(resp) != tt.wantCount {
					t.Fatalf("got %d users, want %d", len(resp), tt.wantCount)
				}
			}
		})
	}
}

func TestListUsersHandler_ETagNotModified(t *testing.T) {
	now := time.Now().UTC()
	calls := 0

	usersRepo := &fakeUsersRepo{}
	usersRepo.listFn = func(ctx context.Context) ([]user.User, error) {
		calls++
		return []user.User{
			{ID: "id-1", FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", CreatedAt: now, UpdatedAt: now},
		}, nil
	}

	h := handlers.NewUsersHandler(usersRepo, &fakeRolesRepo{}, testHasher(), nil, nil)
	r := setupRouter(http.MethodGet, "/users", h.ListUsers)

	w1 := httptest.NewRecorder()
	req1 := httptest.NewRequest(http.MethodGet, "/users", nil)
	r.ServeHTTP(w1, req1)

	if w1.Code != http.StatusOK {
		t.Fatalf("first call got %d body=%s", w1.Code, w1.Body.String())
	}

	etag := w1.Header().Get("ETag")
	if etag == "" {
		t.Fatalf("expected ETag header in first response")
	}

	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/users", nil)
	req2.Header.Set("If-None-Match", etag)
	r.ServeHTTP(w2, req2)

	if w2.Code != http.StatusNotModified {
		t.Fatalf("second call got %d, want %d, body=%s", w2.Code, http.StatusNotModified, w2.Body.String())
	}

	if w2.Body.Len() != 0 {
		t.Fatalf("expected empty body for 304, got %q", w2.Body.String())
	}

	if calls != 2 {
		t.Fatalf("expected repo to be called on each lookup, got %d calls", calls)
	}
}

// GetMe rides behind the auth middleware, so exercise the two together
// with a real signed token.

func TestGetMeHandler(t *testing.T) {
	jwtManager := auth.NewManager("test-secret", time.Minute, time.Hour)
	selfID := newUUID()

	token, err := jwtManager.GenerateAccessToken(auth.Identity{
		UserID: selfID,
		Email:  "ada@example.com",
		RoleID: newUUID(),
		Role:   role.NameUser,
	})
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	tests := []struct {
		name           string
		authHeader     string
		usersSetup     func(*fakeUsersRepo)
		wantStatusCode int
	}{
		{
			name:       "success",
			authHeader: "Bearer " + token,
			usersSetup: func(f *fakeUsersRepo) {
				f.getFn = func(ctx context.Context, id string) (user.User, error) {
					if id != selfID {
						return user.User{}, errors.New("looked up the wrong user")
					}
					return user.User{ID: id, Email: "ada@example.com"}, nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing_token",
			authHeader:     "",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "garbage_token",
			authHeader:     "Bearer not.a.jwt",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:       "record_gone",
			authHeader: "Bearer " + token,
			usersSetup: func(f *fakeUsersRepo) {
				f.getFn = func(ctx context.Context, id string) (user.User, error) {
					return user.User{}, user.ErrNotFound
				}
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			usersRepo := &fakeUsersRepo{}

			if tt.usersSetup != nil {
				tt.usersSetup(usersRepo)
			}

			h := handlers.NewUsersHandler(usersRepo, &fakeRolesRepo{}, testHasher(), nil, nil)

			r := gin.New()
			authMW := middlewares.NewAuthMiddleware(jwtManager)
			r.GET("/users/me", authMW.RequireAuth(), h.GetMe)

			req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}
		})
	}
}
