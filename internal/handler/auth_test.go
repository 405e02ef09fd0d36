package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/retail-backoffice/internal/logger"
	"github.com/iliyamo/retail-backoffice/internal/model"
	"github.com/iliyamo/retail-backoffice/internal/service"
	"github.com/iliyamo/retail-backoffice/internal/token"
)

// userStoreStub is a minimal in-memory service.UserStore for HTTP-level
// tests.
type userStoreStub struct {
	mu    sync.Mutex
	seq   uint64
	users map[uint64]*model.User
}

func newUserStoreStub() *userStoreStub { return &userStoreStub{users: map[uint64]*model.User{}} }

func (s *userStoreStub) Create(_ context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.users {
		if e.Email == u.Email {
			return model.ErrEmailExists
		}
		if e.Phone == u.Phone {
			return model.ErrPhoneExists
		}
	}
	s.seq++
	u.ID = s.seq
	u.EmployeeID = fmt.Sprintf("EMP%04d", s.seq)
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *userStoreStub) FindByEmailOrPhone(_ context.Context, email, phone string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email || u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *userStoreStub) FindByIdentifier(_ context.Context, email, employeeID string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email || u.EmployeeID == employeeID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (s *userStoreStub) FindByID(_ context.Context, id uint64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, model.ErrNotFound
}

func (s *userStoreStub) SaveRefreshToken(_ context.Context, id uint64, tok string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.RefreshToken = tok
		u.LastTokenRefresh = &at
		return nil
	}
	return model.ErrNotFound
}

func (s *userStoreStub) UpdateLastLogin(_ context.Context, id uint64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.LastLogin = &at
		return nil
	}
	return model.ErrNotFound
}

func (s *userStoreStub) RevokeTokens(_ context.Context, id uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.TokenVersion++
		u.RefreshToken = ""
		return nil
	}
	return model.ErrNotFound
}

func (s *userStoreStub) UpdatePassword(_ context.Context, id uint64, hash string) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[id]; ok {
		u.PasswordHash = hash
		u.TokenVersion++
		return u.TokenVersion, nil
	}
	return 0, model.ErrNotFound
}

type plainHasher struct{}

func (plainHasher) Hash(plain string) (string, error) { return "h:" + plain, nil }
func (plainHasher) Verify(hash, plain string) bool    { return hash == "h:"+plain }

const testPassword = "Str0ng@pass"

func newAuthHandler(t *testing.T) (*AuthHandler, *userStoreStub) {
	t.Helper()
	issuer, err := token.NewIssuer("secret", "", time.Minute, time.Hour)
	require.NoError(t, err)
	verifier, err := token.NewVerifier("secret", "")
	require.NoError(t, err)
	store := newUserStoreStub()
	sessions := service.NewSession(store, plainHasher{}, issuer, verifier, logger.New(int(slog.LevelError)))
	return NewAuthHandler(sessions), store
}

func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body string, setup func(echo.Context)) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}
	require.NoError(t, h(c))

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec, out
}

const registerBody = `{"name":"Asha","email":"asha@example.com","phone":"9876543210","password":"Str0ng@pass"}`

func TestRegisterEndpoint(t *testing.T) {
	h, _ := newAuthHandler(t)

	rec, out := doJSON(t, h.Register, http.MethodPost, "/api/auth/register", registerBody, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, true, out["success"])
	assert.Equal(t, "Employee registered successfully", out["message"])
	assert.NotEmpty(t, out["accessToken"])
	assert.NotEmpty(t, out["refreshToken"])

	user := out["user"].(map[string]any)
	assert.Equal(t, "EMP0001", user["employeeId"])
	assert.Equal(t, model.RoleStaff, user["role"])
	// No credential material in the response.
	_, leaked := user["passwordHash"]
	assert.False(t, leaked)
}

func TestRegisterEndpointDuplicateEmail(t *testing.T) {
	h, _ := newAuthHandler(t)
	doJSON(t, h.Register, http.MethodPost, "/api/auth/register", registerBody, nil)

	body := `{"name":"Other","email":"asha@example.com","phone":"1112223334","password":"Str0ng@pass"}`
	rec, out := doJSON(t, h.Register, http.MethodPost, "/api/auth/register", body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Email already registered", out["message"])
}

func TestRegisterEndpointValidation(t *testing.T) {
	h, _ := newAuthHandler(t)

	body := `{"name":"Asha","email":"bad","phone":"9876543210","password":"Str0ng@pass"}`
	rec, out := doJSON(t, h.Register, http.MethodPost, "/api/auth/register", body, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Please provide a valid email", out["message"])
}

func TestLoginEndpoint(t *testing.T) {
	h, _ := newAuthHandler(t)
	doJSON(t, h.Register, http.MethodPost, "/api/auth/register", registerBody, nil)

	body := `{"identifier":"asha@example.com","password":"Str0ng@pass"}`
	rec, out := doJSON(t, h.Login, http.MethodPost, "/api/auth/login", body, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Login successful", out["message"])
	assert.NotEmpty(t, out["accessToken"])
	user := out["user"].(map[string]any)
	assert.NotEmpty(t, user["lastLogin"])
}

func TestLoginEndpointBadPassword(t *testing.T) {
	h, _ := newAuthHandler(t)
	doJSON(t, h.Register, http.MethodPost, "/api/auth/register", registerBody, nil)

	body := `{"identifier":"asha@example.com","password":"Wr0ng@pass"}`
	rec, out := doJSON(t, h.Login, http.MethodPost, "/api/auth/login", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", out["message"])
}

func TestLoginEndpointDeactivated(t *testing.T) {
	h, store := newAuthHandler(t)
	doJSON(t, h.Register, http.MethodPost, "/api/auth/register", registerBody, nil)

	store.mu.Lock()
	store.users[1].IsActive = false
	store.mu.Unlock()

	body := `{"identifier":"asha@example.com","password":"Str0ng@pass"}`
	rec, out := doJSON(t, h.Login, http.MethodPost, "/api/auth/login", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Your account has been deactivated. Please contact admin.", out["message"])
}

func TestRefreshEndpoint(t *testing.T) {
	h, _ := newAuthHandler(t)
	_, reg := doJSON(t, h.Register, http.MethodPost, "/api/auth/register", registerBody, nil)
	refresh := reg["refreshToken"].(string)

	body := fmt.Sprintf(`{"refreshToken":%q}`, refresh)
	rec, out := doJSON(t, h.Refresh, http.MethodPost, "/api/auth/refresh", body, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, out["accessToken"])
	// No rotation: the response carries no new refresh token.
	_, rotated := out["refreshToken"]
	assert.False(t, rotated)
}

func TestRefreshEndpointMissingToken(t *testing.T) {
	h, _ := newAuthHandler(t)

	rec, out := doJSON(t, h.Refresh, http.MethodPost, "/api/auth/refresh", `{}`, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Refresh token required", out["message"])
}

func TestLogoutThenRefreshEndpoint(t *testing.T) {
	h, _ := newAuthHandler(t)
	_, reg := doJSON(t, h.Register, http.MethodPost, "/api/auth/register", registerBody, nil)
	refresh := reg["refreshToken"].(string)

	asUser := func(c echo.Context) { c.Set("user_id", uint64(1)) }
	rec, out := doJSON(t, h.Logout, http.MethodPost, "/api/auth/logout", ``, asUser)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Logged out successfully", out["message"])

	body := fmt.Sprintf(`{"refreshToken":%q}`, refresh)
	rec, out = doJSON(t, h.Refresh, http.MethodPost, "/api/auth/refresh", body, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired refresh token", out["message"])
}

func TestMeEndpoint(t *testing.T) {
	h, _ := newAuthHandler(t)
	doJSON(t, h.Register, http.MethodPost, "/api/auth/register", registerBody, nil)

	asUser := func(c echo.Context) { c.Set("user_id", uint64(1)) }
	rec, out := doJSON(t, h.Me, http.MethodGet, "/api/auth/me", ``, asUser)
	assert.Equal(t, http.StatusOK, rec.Code)
	user := out["user"].(map[string]any)
	assert.Equal(t, "asha@example.com", user["email"])
	assert.Equal(t, true, user["isActive"])
}

func TestUpdatePasswordEndpoint(t *testing.T) {
	h, _ := newAuthHandler(t)
	doJSON(t, h.Register, http.MethodPost, "/api/auth/register", registerBody, nil)
	asUser := func(c echo.Context) { c.Set("user_id", uint64(1)) }

	body := `{"currentPassword":"wrong","newPassword":"N3w@secret"}`
	rec, out := doJSON(t, h.UpdatePassword, http.MethodPut, "/api/auth/updatepassword", body, asUser)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Current password is incorrect", out["message"])

	body = `{"currentPassword":"Str0ng@pass","newPassword":"N3w@secret"}`
	rec, out = doJSON(t, h.UpdatePassword, http.MethodPut, "/api/auth/updatepassword", body, asUser)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Password updated successfully", out["message"])
	assert.NotEmpty(t, out["accessToken"])
	assert.NotEmpty(t, out["refreshToken"])
}
