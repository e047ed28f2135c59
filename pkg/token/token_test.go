package token

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T, ttl time.Duration) *Service {
	t.Helper()
	svc, err := NewService(Config{Secret: "test-secret-key", TTL: ttl})
	require.NoError(t, err)
	return svc
}

func TestIssueAndValidate_RoundTrip(t *testing.T) {
	svc := newTestService(t, time.Hour)

	raw, err := svc.Issue("a@b.com")
	require.NoError(t, err)
	require.NotEmpty(t, raw)

	subject, err := svc.Validate(raw)
	assert.NoError(t, err)
	assert.Equal(t, "a@b.com", subject)
}

func TestValidate_Expired(t *testing.T) {
	svc := newTestService(t, -time.Minute)

	raw, err := svc.Issue("a@b.com")
	require.NoError(t, err)

	_, err = svc.Validate(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_Malformed(t *testing.T) {
	svc := newTestService(t, time.Hour)

	_, err := svc.Validate("not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_TamperedSignature(t *testing.T) {
	svc := newTestService(t, time.Hour)

	raw, err := svc.Issue("a@b.com")
	require.NoError(t, err)

	parts := strings.Split(raw, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + "AAAA" + parts[2][4:]

	_, err = svc.Validate(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidate_WrongKey(t *testing.T) {
	issuer := newTestService(t, time.Hour)
	other, err := NewService(Config{Secret: "a-different-secret", TTL: time.Hour})
	require.NoError(t, err)

	raw, err := issuer.Issue("a@b.com")
	require.NoError(t, err)

	_, err = other.Validate(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewService_RejectsBadConfig(t *testing.T) {
	_, err := NewService(Config{Secret: "", TTL: time.Hour})
	assert.Error(t, err)

	_, err = NewService(Config{Secret: "k", TTL: 0})
	assert.Error(t, err)
}
