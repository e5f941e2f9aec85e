package service

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ifrs17-reporting/internal/auth"
	apperrors "github.com/ifrs17-reporting/internal/errors"
	"github.com/ifrs17-reporting/internal/logging"
	"github.com/ifrs17-reporting/internal/models"
	"github.com/ifrs17-reporting/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock repositories for testing

type mockUserRepo struct {
	mu     sync.Mutex
	users  map[int64]*models.User
	nextID int64
	err    error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[int64]*models.User)}
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	email := models.NormalizeEmail(user.Email)
	for _, u := range m.users {
		if u.Email == email {
			return storage.ErrEmailTaken
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.Email = email
	user.CreatedAt = time.Now()
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id int64) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if u, ok := m.users[id]; ok {
		copied := *u
		return &copied, nil
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	for _, u := range m.users {
		if u.Email == models.NormalizeEmail(email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, storage.ErrUserNotFound
}

func (m *mockUserRepo) List(ctx context.Context) ([]*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	users := make([]*models.User, 0, len(m.users))
	for _, u := range m.users {
		copied := *u
		users = append(users, &copied)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

type memoryDenylist struct {
	mu      sync.Mutex
	revoked map[string]time.Time
	err     error
}

func newMemoryDenylist() *memoryDenylist {
	return &memoryDenylist{revoked: make(map[string]time.Time)}
}

func (d *memoryDenylist) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return d.err
	}
	d.revoked[tokenID] = expiresAt
	return nil
}

func (d *memoryDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.err != nil {
		return false, d.err
	}
	_, ok := d.revoked[tokenID]
	return ok, nil
}

func quietLogger() *logging.Logger {
	return logging.NewLoggerWithOutput(logging.LevelError, logging.FormatJSON, &bytes.Buffer{})
}

func newTestUserService(t *testing.T) (*UserService, *mockUserRepo, *memoryDenylist) {
	t.Helper()
	repo := newMockUserRepo()
	denylist := newMemoryDenylist()
	svc := NewUserService(repo, denylist, auth.NewTokenManager("test-secret", time.Hour), quietLogger())
	return svc, repo, denylist
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var catErr *apperrors.CategorizedError
	require.True(t, errors.As(err, &catErr), "unexpected error type %T", err)
	assert.Equal(t, code, catErr.Code)
}

func TestUserService_EnsureDefaultAdmin(t *testing.T) {
	svc, repo, _ := newTestUserService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureDefaultAdmin(ctx, "admin@admin.com", "1234"))
	require.NoError(t, svc.EnsureDefaultAdmin(ctx, "admin@admin.com", "other"))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, models.RoleAdmin, users[0].Role)
	assert.Equal(t, "Default Admin", users[0].Name)

	admin, err := svc.Authenticate(ctx, "ADMIN@admin.com", "1234")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.Equal(t, users[0].ID, admin.ID)
}

func TestUserService_Create(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	ctx := context.Background()

	user, err := svc.Create(ctx, &models.NewUser{Email: "Jane@Example.com", Name: "  Jane  ", Password: "pw"})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.Equal(t, "Jane", user.Name)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "pw", user.PasswordHash)

	_, err = svc.Create(ctx, &models.NewUser{Email: "jane@EXAMPLE.com", Name: "Other", Password: "pw"})
	assertCode(t, err, apperrors.CodeConflict)
	assert.Equal(t, 409, apperrors.GetHTTPStatusCode(err))
}

func TestUserService_CreateValidation(t *testing.T) {
	svc, _, _ := newTestUserService(t)

	tests := []struct {
		name  string
		input *models.NewUser
	}{
		{"nil body", nil},
		{"missing email", &models.NewUser{Name: "n", Password: "p"}},
		{"bad email", &models.NewUser{Email: "not-an-email", Name: "n", Password: "p"}},
		{"display name form", &models.NewUser{Email: "Jane <jane@example.com>", Name: "n", Password: "p"}},
		{"missing name", &models.NewUser{Email: "a@b.com", Name: "  ", Password: "p"}},
		{"missing password", &models.NewUser{Email: "a@b.com", Name: "n"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.input)
			assertCode(t, err, apperrors.CodeInvalidParameter)
		})
	}
}

func TestUserService_Authenticate(t *testing.T) {
	svc, _, _ := newTestUserService(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, &models.NewUser{Email: "jane@example.com", Name: "Jane", Password: "secret"})
	require.NoError(t, err)

	tests := []struct {
		name     string
		email    string
		password string
		found    bool
	}{
		{"valid", "jane@example.com", "secret", true},
		{"email case and spaces", "  JANE@example.com ", "secret", true},
		{"wrong password", "jane@example.com", "nope", false},
		{"unknown email", "john@example.com", "secret", false},
		{"empty email", "", "secret", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.Authenticate(ctx, tt.email, tt.password)
			require.NoError(t, err)
			assert.Equal(t, tt.found, user != nil)
		})
	}
}

func TestUserService_LoginVerifyLogout(t *testing.T) {
	svc, _, denylist := newTestUserService(t)
	ctx := context.Background()
	created, err := svc.Create(ctx, &models.NewUser{Email: "jane@example.com", Name: "Jane", Password: "secret"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, "jane@example.com", "wrong")
	assertCode(t, err, apperrors.CodeUnauthorized)

	token, err := svc.Login(ctx, "jane@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, "bearer", token.TokenType)
	assert.Equal(t, int64(3600), token.ExpiresIn)

	session, err := svc.VerifyToken(ctx, token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID, session.UserID)

	require.NoError(t, svc.Logout(ctx, session))
	assert.Contains(t, denylist.revoked, session.Claims.ID)

	_, err = svc.VerifyToken(ctx, token.AccessToken)
	assertCode(t, err, apperrors.CodeUnauthorized)
	assert.True(t, strings.Contains(err.Error(), "revoked"))
}

func TestUserService_VerifyTokenErrors(t *testing.T) {
	svc, _, denylist := newTestUserService(t)
	ctx := context.Background()

	_, err := svc.VerifyToken(ctx, "garbage")
	assertCode(t, err, apperrors.CodeUnauthorized)

	token, _, err := auth.NewTokenManager("test-secret", time.Hour).Issue(9)
	require.NoError(t, err)
	denylist.err = errors.New("redis down")
	_, err = svc.VerifyToken(ctx, token)
	assertCode(t, err, apperrors.CodeCache)

	assertCode(t, svc.Logout(ctx, nil), apperrors.CodeUnauthorized)
}

func TestUserService_GetListRequireAdmin(t *testing.T) {
	svc, repo, _ := newTestUserService(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureDefaultAdmin(ctx, "admin@admin.com", "1234"))
	user, err := svc.Create(ctx, &models.NewUser{Email: "jane@example.com", Name: "Jane", Password: "secret"})
	require.NoError(t, err)

	got, err := svc.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane", got.Name)

	_, err = svc.Get(ctx, 999)
	assertCode(t, err, apperrors.CodeNotFound)

	users, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	admin, err := svc.RequireAdmin(ctx, 1)
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())

	_, err = svc.RequireAdmin(ctx, user.ID)
	assertCode(t, err, apperrors.CodeForbidden)

	_, err = svc.RequireAdmin(ctx, 999)
	assertCode(t, err, apperrors.CodeForbidden)

	repo.err = errors.New("connection reset")
	_, err = svc.List(ctx)
	assertCode(t, err, apperrors.CodeDatabase)
}
