package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commerce-backend/internal/entity"
	"commerce-backend/internal/token"
)

func newUserFixture(t *testing.T) (*UserService, *memUserStore) {
	t.Helper()
	users := newMemUserStore()
	orders := newMemOrderStore(newMemProductStore())
	tokens := token.NewService("test-secret", time.Hour)
	return NewUserService(users, orders, tokens), users
}

func TestRegisterIssuesValidToken(t *testing.T) {
	svc, _ := newUserFixture(t)
	ctx := context.Background()

	user, raw, err := svc.Register(ctx, &entity.RegisterRequest{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "hunter22",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, raw)
	assert.NotEqual(t, "hunter22", user.PasswordHash)

	tokens := token.NewService("test-secret", time.Hour)
	assert.True(t, tokens.Validate(raw))
	got, err := tokens.ExtractUserID(raw)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc, users := newUserFixture(t)
	ctx := context.Background()

	first, _, err := svc.Register(ctx, &entity.RegisterRequest{
		Name: "Jane", Email: "jane@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	_, _, err = svc.Register(ctx, &entity.RegisterRequest{
		Name: "Impostor", Email: "jane@example.com", Password: "other",
	})
	assert.ErrorIs(t, err, entity.ErrEmailTaken)

	// First registration remains the sole record for that email.
	all, err := users.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, first.ID, all[0].ID)
}

func TestLogin(t *testing.T) {
	svc, _ := newUserFixture(t)
	ctx := context.Background()

	registered, _, err := svc.Register(ctx, &entity.RegisterRequest{
		Name: "Jane", Email: "jane@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	user, raw, err := svc.Login(ctx, "jane@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.NotEmpty(t, raw)

	_, _, err = svc.Login(ctx, "jane@example.com", "wrong")
	assert.ErrorIs(t, err, entity.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, entity.ErrInvalidCredentials)
}

func TestUpdateRejectsTakenEmail(t *testing.T) {
	svc, _ := newUserFixture(t)
	ctx := context.Background()

	_, _, err := svc.Register(ctx, &entity.RegisterRequest{
		Name: "Jane", Email: "jane@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	other, _, err := svc.Register(ctx, &entity.RegisterRequest{
		Name: "John", Email: "john@example.com", Password: "hunter22",
	})
	require.NoError(t, err)

	_, err = svc.Update(ctx, other.ID, &entity.RegisterRequest{Email: "jane@example.com"})
	assert.ErrorIs(t, err, entity.ErrEmailTaken)

	updated, err := svc.Update(ctx, other.ID, &entity.RegisterRequest{Name: "Johnny"})
	require.NoError(t, err)
	assert.Equal(t, "Johnny", updated.Name)
	assert.Equal(t, "john@example.com", updated.Email)
}
