package hyper

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueToken_RoundTrip(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	token, err := issueToken("KEY", "SECRET", now)
	require.NoError(t, err)

	claims, err := DecodeToken(token, "SECRET")
	require.NoError(t, err)
	assert.Equal(t, "KEY", claims.Subject)
	assert.Equal(t, now.Add(TokenTTL).Unix(), claims.ExpiresAt.Unix())
}

func TestDecodeToken_WrongSecret(t *testing.T) {
	token, err := IssueToken("KEY", "SECRET")
	require.NoError(t, err)

	_, err = DecodeToken(token, "OTHER")
	assert.Error(t, err)
}

func TestDecodeToken_Expired(t *testing.T) {
	token, err := issueToken("KEY", "SECRET", time.Now().Add(-2*TokenTTL))
	require.NoError(t, err)

	_, err = DecodeToken(token, "SECRET")
	assert.Error(t, err)
}

func TestIssueToken_FreshPerCall(t *testing.T) {
	a, err := issueToken("KEY", "SECRET", time.Unix(1000, 0))
	require.NoError(t, err)
	b, err := issueToken("KEY", "SECRET", time.Unix(2000, 0))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
