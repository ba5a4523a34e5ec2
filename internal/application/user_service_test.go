package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iconforge/iconforge-backend/pkg/helpers"
)

func newTestUserService() (*UserService, *fakeUserRepo) {
	repo := newFakeUserRepo()
	jwt := helpers.NewJWTManager("test-access-secret", "test-refresh-secret", time.Hour, 24*time.Hour)
	svc := NewUserService(repo, jwt, nil, nil, nil, "", nil, false)
	return svc, repo
}

func TestRegisterHashesPasswordAndIssuesTokens(t *testing.T) {
	svc, repo := newTestUserService()

	u, pair, err := svc.Register(context.Background(), "alice@example.com", "alice", "s3cret-pass")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.NotEmpty(t, pair.Access)
	assert.NotEmpty(t, pair.Refresh)
	assert.NotZero(t, u.ID)

	stored := repo.users[u.ID]
	require.NotNil(t, stored)
	assert.NotEqual(t, "s3cret-pass", stored.Password, "password must be stored hashed")
	assert.True(t, helpers.CompareHashAndPassword(stored.Password, "s3cret-pass"))

	claims, err := svc.JWT.ParseAccessToken(pair.Access)
	require.NoError(t, err)
	assert.Equal(t, u.ID, claims.UserID)
	assert.NotEmpty(t, claims.SessionID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, repo := newTestUserService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice@example.com", "alice", "s3cret-pass")
	require.NoError(t, err)

	_, pair, err := svc.Register(ctx, "alice@example.com", "alice2", "another-pass")
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.Empty(t, pair.Access)
	assert.Len(t, repo.users, 1)
}

func TestLogin(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice@example.com", "alice", "s3cret-pass")
	require.NoError(t, err)

	u, pair, err := svc.Login(ctx, "alice@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
	assert.Equal(t, "alice", u.Name)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice@example.com", "alice", "s3cret-pass")
	require.NoError(t, err)

	u, pair, err := svc.Login(ctx, "alice@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrWrongPassword)
	assert.Equal(t, "email or pwd error", err.Error())
	assert.Nil(t, u)
	assert.Empty(t, pair.Access)
}

func TestLoginStorageFaultIsNotUserNotFound(t *testing.T) {
	svc, repo := newTestUserService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice@example.com", "alice", "s3cret-pass")
	require.NoError(t, err)

	repo.getErr = errors.New("connection reset")
	u, pair, err := svc.Login(ctx, "alice@example.com", "s3cret-pass")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
	assert.NotErrorIs(t, err, ErrWrongPassword)
	assert.Nil(t, u)
	assert.Empty(t, pair.Access)

	_, err = svc.Profile(ctx, 1)
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrUserNotFound)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc, _ := newTestUserService()

	u, pair, err := svc.Login(context.Background(), "nobody@example.com", "whatever-pass")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Nil(t, u)
	assert.Empty(t, pair.Access)
}

func TestRefreshIssuesNewPair(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	reg, pair, err := svc.Register(ctx, "alice@example.com", "alice", "s3cret-pass")
	require.NoError(t, err)

	u, next, err := svc.Refresh(ctx, pair.Refresh)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, u.ID)
	assert.NotEmpty(t, next.Access)
	assert.NotEmpty(t, next.Refresh)

	claims, err := svc.JWT.ParseAccessToken(next.Access)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, claims.UserID)
}

func TestRefreshRejectsGarbageAndAccessTokens(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	_, pair, err := svc.Register(ctx, "alice@example.com", "alice", "s3cret-pass")
	require.NoError(t, err)

	_, _, err = svc.Refresh(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	// access tokens are signed with a different secret
	_, _, err = svc.Refresh(ctx, pair.Access)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestProfile(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	reg, _, err := svc.Register(ctx, "alice@example.com", "alice", "s3cret-pass")
	require.NoError(t, err)

	u, err := svc.Profile(ctx, reg.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", u.Email)

	_, err = svc.Profile(ctx, 999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestLogoutWithoutSessionStore(t *testing.T) {
	svc, _ := newTestUserService()
	assert.NoError(t, svc.Logout(context.Background(), 1))
}

func TestSearchEmptyKeyword(t *testing.T) {
	svc, _ := newTestUserService()

	out, err := svc.Search(context.Background(), "   ", 10)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestSearchFallsBackToRepository(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	_, _, err := svc.Register(ctx, "alice@example.com", "Alice Smith", "s3cret-pass")
	require.NoError(t, err)
	_, _, err = svc.Register(ctx, "bob@example.com", "Bob Jones", "s3cret-pass")
	require.NoError(t, err)

	out, err := svc.Search(ctx, "alice", 10)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, "Alice Smith", out[0].Name)
}
