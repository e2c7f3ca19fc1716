package authz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokensRoundTrip(t *testing.T) {
	tk := NewTokens("0123456789abcdef0123")
	tok, exp, err := tk.Issue("u-1", RoleRealtor, "admin", time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	c, err := tk.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", c.UserID)
	assert.Equal(t, RoleRealtor, c.Role)
}

func TestTokensExpired(t *testing.T) {
	tk := NewTokens("0123456789abcdef0123")
	tk.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, _, err := tk.Issue("u-1", RoleClient, "", time.Hour)
	require.NoError(t, err)

	tk.now = time.Now
	_, err = tk.Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokensWrongSecret(t *testing.T) {
	tok, _, err := NewTokens("first-secret-0123456").Issue("u-1", RoleRealtor, "", time.Hour)
	require.NoError(t, err)
	_, err = NewTokens("other-secret-0123456").Parse(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIsStaff(t *testing.T) {
	assert.True(t, IsStaff(RoleRealtor))
	assert.True(t, IsStaff(RoleAdmin))
	assert.False(t, IsStaff(RoleClient))
}
