package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/retail-backoffice/internal/logger"
	"github.com/iliyamo/retail-backoffice/internal/model"
	"github.com/iliyamo/retail-backoffice/internal/token"
)

// memStore is an in-memory UserStore with the same semantics as the MySQL
// repository: single refresh-token slot, atomic version bumps.
type memStore struct {
	mu    sync.Mutex
	seq   uint64
	users map[uint64]*model.User
}

func newMemStore() *memStore { return &memStore{users: map[uint64]*model.User{}} }

func (m *memStore) Create(_ context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.users {
		if e.Email == u.Email {
			return model.ErrEmailExists
		}
		if e.Phone == u.Phone {
			return model.ErrPhoneExists
		}
	}
	m.seq++
	u.ID = m.seq
	u.EmployeeID = fmt.Sprintf("EMP%04d", m.seq)
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *memStore) FindByEmailOrPhone(_ context.Context, email, phone string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email || u.Phone == phone {
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (m *memStore) FindByIdentifier(_ context.Context, email, employeeID string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email || u.EmployeeID == employeeID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, model.ErrNotFound
}

func (m *memStore) FindByID(_ context.Context, id uint64) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memStore) SaveRefreshToken(_ context.Context, id uint64, tok string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return model.ErrNotFound
	}
	u.RefreshToken = tok
	u.LastTokenRefresh = &at
	return nil
}

func (m *memStore) UpdateLastLogin(_ context.Context, id uint64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return model.ErrNotFound
	}
	u.LastLogin = &at
	return nil
}

func (m *memStore) RevokeTokens(_ context.Context, id uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return model.ErrNotFound
	}
	u.TokenVersion++
	u.RefreshToken = ""
	return nil
}

func (m *memStore) UpdatePassword(_ context.Context, id uint64, hash string) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return 0, model.ErrNotFound
	}
	u.PasswordHash = hash
	u.TokenVersion++
	return u.TokenVersion, nil
}

// fakeHasher is a reversible stand-in for bcrypt that counts Verify calls,
// so tests can assert no hash comparison ran for disabled accounts.
type fakeHasher struct {
	mu          sync.Mutex
	verifyCalls int
}

func (f *fakeHasher) Hash(plain string) (string, error) { return "h:" + plain, nil }

func (f *fakeHasher) Verify(hash, plain string) bool {
	f.mu.Lock()
	f.verifyCalls++
	f.mu.Unlock()
	return hash == "h:"+plain
}

const goodPassword = "Str0ng@pass"

func newTestSession(t *testing.T) (*Session, *memStore, *fakeHasher) {
	t.Helper()
	issuer, err := token.NewIssuer("test-secret", "test-refresh", time.Minute, time.Hour)
	require.NoError(t, err)
	verifier, err := token.NewVerifier("test-secret", "test-refresh")
	require.NoError(t, err)
	store := newMemStore()
	hasher := &fakeHasher{}
	return NewSession(store, hasher, issuer, verifier, logger.New(int(slog.LevelError))), store, hasher
}

func register(t *testing.T, s *Session) *AuthResult {
	t.Helper()
	res, err := s.Register(context.Background(), RegisterInput{
		Name:     "Asha Verma",
		Email:    "asha@example.com",
		Phone:    "9876543210",
		Password: goodPassword,
	})
	require.NoError(t, err)
	return res
}

func TestRegisterThenLogin(t *testing.T) {
	s, store, _ := newTestSession(t)

	res := register(t, s)
	assert.Equal(t, "EMP0001", res.User.EmployeeID)
	assert.Equal(t, model.RoleStaff, res.User.Role)
	assert.NotEmpty(t, res.Access.Value)
	assert.NotEmpty(t, res.Refresh.Value)

	// Registration leaves the session active.
	stored, err := store.FindByID(context.Background(), res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Refresh.Value, stored.RefreshToken)

	login, err := s.Login(context.Background(), "asha@example.com", goodPassword)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)
	assert.NotNil(t, login.User.LastLogin)
}

func TestLoginByEmployeeCode(t *testing.T) {
	s, _, _ := newTestSession(t)
	register(t, s)

	// Mixed case on both identifier kinds must still resolve.
	res, err := s.Login(context.Background(), "emp0001", goodPassword)
	require.NoError(t, err)
	assert.Equal(t, "EMP0001", res.User.EmployeeID)

	res, err = s.Login(context.Background(), "ASHA@example.com", goodPassword)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), res.User.ID)
}

func TestRegisterValidation(t *testing.T) {
	s, _, _ := newTestSession(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   RegisterInput
	}{
		{"missing fields", RegisterInput{Name: "A", Email: "a@b.co", Phone: "9876543210"}},
		{"bad email", RegisterInput{Name: "A", Email: "not-an-email", Phone: "9876543210", Password: goodPassword}},
		{"bad phone", RegisterInput{Name: "A", Email: "a@b.co", Phone: "12345", Password: goodPassword}},
		{"weak password", RegisterInput{Name: "A", Email: "a@b.co", Phone: "9876543210", Password: "alllowercase1@"}},
		{"disallowed special", RegisterInput{Name: "A", Email: "a@b.co", Phone: "9876543210", Password: "Str0ng#pass"}},
		{"bad role", RegisterInput{Name: "A", Email: "a@b.co", Phone: "9876543210", Password: goodPassword, Role: "root"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Register(ctx, tc.in)
			var verr *ValidationError
			assert.ErrorAs(t, err, &verr)
		})
	}
}

func TestRegisterDuplicates(t *testing.T) {
	s, _, _ := newTestSession(t)
	register(t, s)

	_, err := s.Register(context.Background(), RegisterInput{
		Name: "Other", Email: "asha@example.com", Phone: "1112223334", Password: goodPassword,
	})
	assert.ErrorIs(t, err, model.ErrEmailExists)

	_, err = s.Register(context.Background(), RegisterInput{
		Name: "Other", Email: "other@example.com", Phone: "9876543210", Password: goodPassword,
	})
	assert.ErrorIs(t, err, model.ErrPhoneExists)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	s, _, _ := newTestSession(t)
	register(t, s)

	// Unknown identifier and wrong password yield the same sentinel, so
	// responses cannot be used to enumerate accounts.
	_, err := s.Login(context.Background(), "nobody@example.com", goodPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.Login(context.Background(), "asha@example.com", "Wr0ng@pass")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginDisabledSkipsHashCheck(t *testing.T) {
	s, store, hasher := newTestSession(t)
	res := register(t, s)

	store.mu.Lock()
	store.users[res.User.ID].IsActive = false
	store.mu.Unlock()

	before := hasher.verifyCalls
	_, err := s.Login(context.Background(), "asha@example.com", goodPassword)
	assert.ErrorIs(t, err, ErrAccountDisabled)
	assert.Equal(t, before, hasher.verifyCalls)
}

func TestRefreshIsIdempotent(t *testing.T) {
	s, store, _ := newTestSession(t)
	res := register(t, s)

	first, err := s.Refresh(context.Background(), res.Refresh.Value)
	require.NoError(t, err)
	second, err := s.Refresh(context.Background(), res.Refresh.Value)
	require.NoError(t, err)
	assert.NotEmpty(t, first.Access.Value)
	assert.NotEmpty(t, second.Access.Value)

	// The stored refresh token is untouched by refreshes.
	stored, err := store.FindByID(context.Background(), res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Refresh.Value, stored.RefreshToken)
}

func TestRefreshErrors(t *testing.T) {
	s, _, _ := newTestSession(t)

	_, err := s.Refresh(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = s.Refresh(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)

	// An access token presented as a refresh token must be rejected.
	res := register(t, s)
	_, err = s.Refresh(context.Background(), res.Access.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestLogoutRevokesRefresh(t *testing.T) {
	s, store, _ := newTestSession(t)
	res := register(t, s)

	require.NoError(t, s.Logout(context.Background(), res.User.ID))

	_, err := s.Refresh(context.Background(), res.Refresh.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)

	stored, err := store.FindByID(context.Background(), res.User.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.RefreshToken)
	assert.Equal(t, uint64(1), stored.TokenVersion)
}

func TestVersionMonotonicAcrossLogouts(t *testing.T) {
	s, store, _ := newTestSession(t)
	res := register(t, s)

	for i := 0; i < 3; i++ {
		require.NoError(t, s.Logout(context.Background(), res.User.ID))
	}
	stored, err := store.FindByID(context.Background(), res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(3), stored.TokenVersion)
}

func TestNewLoginInvalidatesOldRefresh(t *testing.T) {
	s, _, _ := newTestSession(t)
	first := register(t, s)

	second, err := s.Login(context.Background(), "asha@example.com", goodPassword)
	require.NoError(t, err)

	// Single-slot sessions: the overwritten token no longer matches the
	// stored one even though its version is still current.
	if first.Refresh.Value != second.Refresh.Value {
		_, err = s.Refresh(context.Background(), first.Refresh.Value)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
	_, err = s.Refresh(context.Background(), second.Refresh.Value)
	assert.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	s, store, _ := newTestSession(t)
	res := register(t, s)
	const newPassword = "N3w@secret"

	_, err := s.ChangePassword(context.Background(), res.User.ID, "wrong", newPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = s.ChangePassword(context.Background(), res.User.ID, goodPassword, "weak")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	changed, err := s.ChangePassword(context.Background(), res.User.ID, goodPassword, newPassword)
	require.NoError(t, err)

	// Pre-change refresh tokens die with the version bump; the pair issued
	// by the change itself stays valid.
	_, err = s.Refresh(context.Background(), res.Refresh.Value)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = s.Refresh(context.Background(), changed.Refresh.Value)
	assert.NoError(t, err)

	stored, err := store.FindByID(context.Background(), res.User.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), stored.TokenVersion)

	_, err = s.Login(context.Background(), "asha@example.com", goodPassword)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = s.Login(context.Background(), "asha@example.com", newPassword)
	assert.NoError(t, err)
}

func TestRefreshForDeactivatedUser(t *testing.T) {
	s, store, _ := newTestSession(t)
	res := register(t, s)

	store.mu.Lock()
	store.users[res.User.ID].IsActive = false
	store.mu.Unlock()

	_, err := s.Refresh(context.Background(), res.Refresh.Value)
	assert.ErrorIs(t, err, ErrAccountDisabled)
}
