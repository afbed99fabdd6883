package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"ffclash/internal/common"
	"ffclash/internal/common/security"
	"ffclash/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenFromLink(t *testing.T, body string) string {
	t.Helper()
	const marker = "reset-password?token="
	i := strings.Index(body, marker)
	require.GreaterOrEqual(t, i, 0, "email body has no reset link")
	return strings.Fields(body[i+len(marker):])[0]
}

func TestForgotPasswordUnknownEmail(t *testing.T) {
	f := newFixture(t)

	msg, err := f.resets.ForgotPassword(context.Background(), ForgotPasswordRequest{Email: "nobody@example.com"})
	require.NoError(t, err)
	assert.Equal(t, ForgotPasswordMessage, msg)
	assert.Empty(t, f.queue.Snapshot())
}

func TestPasswordResetFlow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser("u1", "alice", 0)

	msg, err := f.resets.ForgotPassword(ctx, ForgotPasswordRequest{Email: "ALICE@example.com"})
	require.NoError(t, err)
	assert.Equal(t, ForgotPasswordMessage, msg)

	jobs := f.queue.Snapshot()
	require.Len(t, jobs, 1)
	assert.Equal(t, model.NotificationEmail, jobs[0].Kind)
	assert.Equal(t, "alice@example.com", jobs[0].To)
	assert.Contains(t, jobs[0].Body, "https://ffclash.test/reset-password?token=")

	token := tokenFromLink(t, jobs[0].Body)
	stored, ok := f.store.ResetToken(token)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(ResetTokenTTL), stored.ExpiresAt, time.Minute)

	require.NoError(t, f.resets.VerifyToken(ctx, token))
	require.NoError(t, f.resets.ResetPassword(ctx, ResetPasswordRequest{Token: token, Password: "brandnew1"}))
	assert.True(t, security.CheckPasswordHash("brandnew1", f.store.User("u1").HashedPassword))
	assert.Len(t, f.queue.Snapshot(), 2, "confirmation email queued")

	// Tokens are single use.
	assert.ErrorIs(t, f.resets.VerifyToken(ctx, token), common.ErrBadRequest)
	err = f.resets.ResetPassword(ctx, ResetPasswordRequest{Token: token, Password: "another1"})
	assert.EqualError(t, err, "invalid or expired reset token")
	assert.True(t, security.CheckPasswordHash("brandnew1", f.store.User("u1").HashedPassword))
}

func TestExpiredResetTokenRejectedAndPurged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedUser("u1", "alice", 0)
	f.store.PutResetToken(model.PasswordResetToken{ID: "r1", UserID: "u1", Token: "expired", ExpiresAt: time.Now().Add(-time.Minute)})
	f.store.PutResetToken(model.PasswordResetToken{ID: "r2", UserID: "u1", Token: "fresh", ExpiresAt: time.Now().Add(time.Hour)})

	assert.ErrorIs(t, f.resets.VerifyToken(ctx, "expired"), common.ErrBadRequest)
	assert.ErrorIs(t, f.resets.VerifyToken(ctx, "unknown"), common.ErrBadRequest)
	assert.ErrorIs(t, f.resets.ResetPassword(ctx, ResetPasswordRequest{Token: "expired", Password: "brandnew1"}), common.ErrBadRequest)

	n, err := f.resets.PurgeStale(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	_, ok := f.store.ResetToken("fresh")
	assert.True(t, ok)

	// Two hours later the fresh token is stale too.
	f.resets.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	assert.ErrorIs(t, f.resets.VerifyToken(ctx, "fresh"), common.ErrBadRequest)
}
