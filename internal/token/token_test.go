package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/docsearch/internal/apperr"
)

func newTestSigner(t *testing.T, maxAge time.Duration) *Signer {
	t.Helper()
	s, err := NewSigner(Config{Secret: "test-secret", MaxAge: maxAge})
	require.NoError(t, err)
	return s
}

func TestSignDecodeRoundTrip(t *testing.T) {
	s := newTestSigner(t, time.Minute)

	signed, err := s.Sign(map[string]any{
		"user_uid": "user-1",
		"email":    "someone@example.com",
		"ticket":   "ticket-abc",
	})
	require.NoError(t, err)

	payload, err := s.Decode(signed)
	require.NoError(t, err)
	assert.Equal(t, "user-1", payload["user_uid"])
	assert.Equal(t, "someone@example.com", payload["email"])
	assert.Equal(t, "ticket-abc", payload["ticket"])
	assert.NotContains(t, payload, "exp")
	assert.NotContains(t, payload, "iat")
}

func TestDecodeExpiredToken(t *testing.T) {
	s := newTestSigner(t, time.Millisecond)

	signed, err := s.Sign(map[string]any{"user_uid": "u"})
	require.NoError(t, err)

	// jwt/v5 validates expiry without leeway here, so one second is enough.
	time.Sleep(1100 * time.Millisecond)

	_, err = s.Decode(signed)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindTokenExpired))
}

func TestDecodeTamperedToken(t *testing.T) {
	s := newTestSigner(t, time.Minute)
	other := newTestSigner(t, time.Minute)
	other.secret = []byte("different-secret")

	signed, err := other.Sign(map[string]any{"user_uid": "u"})
	require.NoError(t, err)

	_, err = s.Decode(signed)
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindTokenExpired))
}

func TestDecodeGarbage(t *testing.T) {
	s := newTestSigner(t, time.Minute)

	_, err := s.Decode("not.a.token")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindTokenExpired))
}

func TestSignRejectsReservedKeys(t *testing.T) {
	s := newTestSigner(t, time.Minute)

	_, err := s.Sign(map[string]any{"exp": 123})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalid))
}

func TestNewSignerRequiresSecret(t *testing.T) {
	_, err := NewSigner(Config{})
	require.Error(t, err)
}
