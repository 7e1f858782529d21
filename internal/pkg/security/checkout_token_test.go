package security

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckoutTokenRoundTrip(t *testing.T) {
	token, err := GenerateCheckoutToken(42, "premium", "sess-1", time.Hour, "secret")
	require.NoError(t, err)

	claims, err := VerifyCheckoutToken(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "premium", claims.Plan)
	assert.Equal(t, "sess-1", claims.SessionID)
}

func TestCheckoutTokenRejectsTampering(t *testing.T) {
	token, err := GenerateCheckoutToken(42, "basic", "sess-1", time.Hour, "secret")
	require.NoError(t, err)

	// Flip a character in the payload part.
	parts := strings.SplitN(token, ".", 2)
	tampered := parts[0][:len(parts[0])-1] + "A" + "." + parts[1]

	_, err = VerifyCheckoutToken(tampered, "secret")
	assert.Error(t, err)
}

func TestCheckoutTokenRejectsWrongSecret(t *testing.T) {
	token, err := GenerateCheckoutToken(42, "basic", "sess-1", time.Hour, "secret")
	require.NoError(t, err)

	_, err = VerifyCheckoutToken(token, "other")
	assert.Error(t, err)
}

func TestCheckoutTokenExpires(t *testing.T) {
	token, err := GenerateCheckoutToken(42, "basic", "sess-1", -time.Minute, "secret")
	require.NoError(t, err)

	_, err = VerifyCheckoutToken(token, "secret")
	assert.Error(t, err)
}

func TestCheckoutTokenRequiresSecret(t *testing.T) {
	_, err := GenerateCheckoutToken(42, "basic", "sess-1", time.Hour, "")
	assert.Error(t, err)

	_, err = VerifyCheckoutToken("a.b", "")
	assert.Error(t, err)
}
