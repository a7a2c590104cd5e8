package service

import (
	"context"
	"errors"
	"testing"

	"makepri/internal/config"
	"makepri/internal/dto"
	"makepri/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// ── In-memory UserRepository ─────────────────────────────────────────────────

type fakeUserRepo struct {
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	for _, existing := range r.users {
		if existing.Email == u.Email {
			return errors.New("duplicate email")
		}
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email && u.Active {
			return u, nil
		}
	}
	return nil, errors.New("not found")
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return u, nil
}

func (r *fakeUserRepo) List(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		if u.Active {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListAll(_ context.Context) ([]model.User, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *fakeUserRepo) Update(_ context.Context, u *model.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return errors.New("not found")
	}
	u.Active = false
	return nil
}

func (r *fakeUserRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return errors.New("not found")
	}
	u.Active = true
	return nil
}

func testAuthConfig() *config.Config {
	return &config.Config{
		JWTSecret:          "unit-test-secret",
		JWTExpirationHours: 1,
		JWTRefreshHours:    24,
	}
}

func seedUser(t *testing.T, repo *fakeUserRepo, email, password, role string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{Name: "Test User", Email: email, PasswordHash: string(hash), Role: role, Active: true}
	require.NoError(t, repo.Create(context.Background(), u))
	return u
}

// ── Login ────────────────────────────────────────────────────────────────────

func TestLogin_Success(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "cashier@store.test", "s3cret", "cashier")
	svc := NewAuthService(repo, testAuthConfig())

	resp, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "cashier@store.test",
		Password: "s3cret",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)
	assert.Equal(t, "cashier", resp.User.Role)

	// Access token carries the expected claims.
	token, err := jwt.Parse(resp.AccessToken, func(t *jwt.Token) (interface{}, error) {
		return []byte("unit-test-secret"), nil
	})
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "cashier@store.test", claims["email"])
	assert.Equal(t, "cashier", claims["role"])
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "cashier@store.test", "s3cret", "cashier")
	svc := NewAuthService(repo, testAuthConfig())

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "cashier@store.test",
		Password: "wrong",
	})
	assert.ErrorContains(t, err, "invalid credentials")
}

func TestLogin_InactiveUserRejected(t *testing.T) {
	repo := newFakeUserRepo()
	u := seedUser(t, repo, "old@store.test", "s3cret", "seller")
	u.Active = false
	svc := NewAuthService(repo, testAuthConfig())

	_, err := svc.Login(context.Background(), dto.LoginRequest{
		Email:    "old@store.test",
		Password: "s3cret",
	})
	assert.ErrorContains(t, err, "invalid credentials")
}

// ── Refresh ──────────────────────────────────────────────────────────────────

func TestRefresh_IssuesNewTokens(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "mgr@store.test", "s3cret", "manager")
	svc := NewAuthService(repo, testAuthConfig())

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "mgr@store.test", Password: "s3cret",
	})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, login.User.ID, refreshed.User.ID)
}

func TestRefresh_GarbageTokenRejected(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo(), testAuthConfig())

	_, err := svc.Refresh(context.Background(), "not-a-jwt")
	assert.ErrorContains(t, err, "invalid")
}

func TestRefresh_DeactivatedUserRejected(t *testing.T) {
	repo := newFakeUserRepo()
	u := seedUser(t, repo, "mgr@store.test", "s3cret", "manager")
	svc := NewAuthService(repo, testAuthConfig())

	login, err := svc.Login(context.Background(), dto.LoginRequest{
		Email: "mgr@store.test", Password: "s3cret",
	})
	require.NoError(t, err)

	require.NoError(t, repo.SoftDelete(context.Background(), u.ID))
	_, err = svc.Refresh(context.Background(), login.RefreshToken)
	assert.ErrorContains(t, err, "inactive")
}

// ── User management ──────────────────────────────────────────────────────────

func TestCreateUser_HashesPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo, testAuthConfig())

	resp, err := svc.CreateUser(context.Background(), dto.CreateUserRequest{
		Name:     "New Seller",
		Email:    "seller@store.test",
		Password: "plaintext",
		Role:     "seller",
	})
	require.NoError(t, err)
	assert.True(t, resp.Active)

	id, err := uuid.Parse(resp.ID)
	require.NoError(t, err)
	stored := repo.users[id]
	assert.NotEqual(t, "plaintext", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("plaintext")))
}

func TestUpdateUser_PartialFields(t *testing.T) {
	repo := newFakeUserRepo()
	u := seedUser(t, repo, "seller@store.test", "s3cret", "seller")
	svc := NewAuthService(repo, testAuthConfig())

	newRole := "manager"
	resp, err := svc.UpdateUser(context.Background(), u.ID, dto.UpdateUserRequest{Role: &newRole})
	require.NoError(t, err)
	assert.Equal(t, "manager", resp.Role)
	// Untouched fields stay put.
	assert.Equal(t, "seller@store.test", resp.Email)
}

func TestListUsers_FiltersInactiveByDefault(t *testing.T) {
	repo := newFakeUserRepo()
	seedUser(t, repo, "a@store.test", "x", "cashier")
	gone := seedUser(t, repo, "b@store.test", "x", "cashier")
	gone.Active = false
	svc := NewAuthService(repo, testAuthConfig())

	active, err := svc.ListUsers(context.Background(), false)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	all, err := svc.ListUsers(context.Background(), true)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
