package service

import (
	"context"
	"testing"

	"ffclash/internal/common"
	"ffclash/internal/common/security"
	"ffclash/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenClaims(t *testing.T, token string) map[string]interface{} {
	t.Helper()
	decoded, err := security.TokenAuth.Decode(token)
	require.NoError(t, err)
	claims, err := decoded.AsMap(context.Background())
	require.NoError(t, err)
	return claims
}

func validRegistration() RegisterRequest {
	return RegisterRequest{
		Username:    "alice",
		Email:       "Alice@Example.com",
		Password:    "secret123",
		FreeFireUID: "123456789",
	}
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.auth.Register(ctx, validRegistration())
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", res.User.Email)
	assert.True(t, res.User.Balance.IsZero())

	claims := tokenClaims(t, res.Token)
	assert.Equal(t, res.User.ID, claims["sub"])
	assert.Equal(t, model.TokenTypeUser, claims["type"])

	byEmail, err := f.auth.Login(ctx, LoginRequest{UsernameOrEmail: "ALICE@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, byEmail.User.ID)

	byName, err := f.auth.Login(ctx, LoginRequest{UsernameOrEmail: "alice", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, byName.User.ID)

	_, err = f.auth.Login(ctx, LoginRequest{UsernameOrEmail: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, common.ErrUnauthorized)
	_, err = f.auth.Login(ctx, LoginRequest{UsernameOrEmail: "nobody", Password: "secret123"})
	assert.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestRegisterConflicts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.auth.Register(ctx, validRegistration())
	require.NoError(t, err)

	tests := []struct {
		name    string
		mutate  func(*RegisterRequest)
		message string
	}{
		{"username", func(r *RegisterRequest) { r.Email = "other@example.com"; r.FreeFireUID = "987654321" }, "username already taken"},
		{"email", func(r *RegisterRequest) { r.Username = "bob"; r.FreeFireUID = "987654321" }, "email already registered"},
		{"uid", func(r *RegisterRequest) { r.Username = "bob"; r.Email = "bob@example.com" }, "free fire uid already registered"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRegistration()
			tt.mutate(&req)
			_, err := f.auth.Register(ctx, req)
			assert.ErrorIs(t, err, common.ErrConflict)
			assert.EqualError(t, err, tt.message)
		})
	}
}

func TestRegisterValidation(t *testing.T) {
	f := newFixture(t)
	req := validRegistration()
	req.FreeFireUID = "12345678"
	req.Password = "123"

	_, err := f.auth.Register(context.Background(), req)
	var vErr *common.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.ElementsMatch(t, []string{
		"password must have minimum length 6",
		"free_fire_uid must be exactly 9 digits",
	}, vErr.Details)
}

func TestAdminLogin(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	admin, err := f.auth.EnsureAdmin(ctx, "root", "Root@Example.com", "supersecret")
	require.NoError(t, err)
	assert.Equal(t, "root@example.com", admin.Email)

	// Re-running keeps the same admin and rotates the password.
	again, err := f.auth.EnsureAdmin(ctx, "root", "root@example.com", "rotated1")
	require.NoError(t, err)
	assert.Equal(t, admin.ID, again.ID)

	_, err = f.auth.AdminLogin(ctx, AdminLoginRequest{Username: "root", Password: "supersecret"})
	assert.ErrorIs(t, err, common.ErrUnauthorized)

	res, err := f.auth.AdminLogin(ctx, AdminLoginRequest{Username: "root", Password: "rotated1"})
	require.NoError(t, err)
	assert.Equal(t, model.TokenTypeAdmin, tokenClaims(t, res.Token)["type"])

	current, err := f.auth.CurrentAdmin(ctx, admin.ID)
	require.NoError(t, err)
	assert.Equal(t, "root", current.Username)

	_, err = f.auth.EnsureAdmin(ctx, "root", "root@example.com", "123")
	assert.ErrorIs(t, err, common.ErrValidation)
}
