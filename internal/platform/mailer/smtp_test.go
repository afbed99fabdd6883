package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMessage(t *testing.T) {
	m, err := BuildMessage("FF Clash <noreply@ffclash.local>", "player@example.com", "Hello", "body")
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello"}, m.GetGenHeader("Subject"))
}

func TestBuildMessageRejectsBadRecipient(t *testing.T) {
	_, err := BuildMessage("noreply@ffclash.local", "not an address", "Hello", "body")
	assert.Error(t, err)
}

func TestLogMailer(t *testing.T) {
	assert.NoError(t, LogMailer{}.SendEmail(context.Background(), "a@b.c", "s", "b"))
}
