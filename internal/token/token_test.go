package token

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPair(t *testing.T, accessTTL, refreshTTL time.Duration) (*Issuer, *Verifier) {
	t.Helper()
	issuer, err := NewIssuer("access-secret", "refresh-secret", accessTTL, refreshTTL)
	require.NoError(t, err)
	verifier, err := NewVerifier("access-secret", "refresh-secret")
	require.NoError(t, err)
	return issuer, verifier
}

func TestNewIssuerRequiresSecret(t *testing.T) {
	_, err := NewIssuer("", "", time.Minute, time.Hour)
	assert.Error(t, err)
}

func TestAccessRoundtrip(t *testing.T) {
	issuer, verifier := newPair(t, time.Minute, time.Hour)

	tok, err := issuer.IssueAccess(42)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Value)
	assert.WithinDuration(t, time.Now().Add(time.Minute), tok.ExpiresAt, 5*time.Second)

	claims, err := verifier.Verify(tok.Value, TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), claims.UserID)
	assert.Equal(t, TypeAccess, claims.Type)
	assert.Zero(t, claims.Version)
}

func TestRefreshCarriesVersion(t *testing.T) {
	issuer, verifier := newPair(t, time.Minute, time.Hour)

	tok, err := issuer.IssueRefresh(7, 3)
	require.NoError(t, err)

	claims, err := verifier.Verify(tok.Value, TypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), claims.UserID)
	assert.Equal(t, TypeRefresh, claims.Type)
	assert.Equal(t, uint64(3), claims.Version)
}

func TestVerifyRejectsWrongType(t *testing.T) {
	issuer, verifier := newPair(t, time.Minute, time.Hour)

	access, err := issuer.IssueAccess(1)
	require.NoError(t, err)
	_, err = verifier.Verify(access.Value, TypeRefresh)
	assert.ErrorIs(t, err, ErrInvalidToken) // signed with the access secret

	// Same secret for both kinds: the type claim alone must reject it.
	issuer2, err := NewIssuer("shared", "shared", time.Minute, time.Hour)
	require.NoError(t, err)
	verifier2, err := NewVerifier("shared", "shared")
	require.NoError(t, err)

	access2, err := issuer2.IssueAccess(1)
	require.NoError(t, err)
	_, err = verifier2.Verify(access2.Value, TypeRefresh)
	assert.ErrorIs(t, err, ErrWrongType)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	issuer, _ := newPair(t, time.Minute, time.Hour)
	other, err := NewVerifier("different-secret", "different-secret")
	require.NoError(t, err)

	tok, err := issuer.IssueAccess(1)
	require.NoError(t, err)
	_, err = other.Verify(tok.Value, TypeAccess)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	verifier, err := NewVerifier("s", "s")
	require.NoError(t, err)

	// NewIssuer normalizes non-positive TTLs, so go through the signer
	// directly to mint an already-expired token.
	tok, err := sign([]byte("s"), Claims{UserID: 1, Type: TypeAccess}, -time.Minute)
	require.NoError(t, err)

	_, err = verifier.Verify(tok.Value, TypeAccess)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestVerifyAgainstState(t *testing.T) {
	claims := &Claims{UserID: 1, Type: TypeRefresh, Version: 2}

	assert.NoError(t, VerifyAgainstState(claims, "tok", "tok", 2))
	assert.ErrorIs(t, VerifyAgainstState(claims, "tok", "tok", 3), ErrRevoked)
	assert.ErrorIs(t, VerifyAgainstState(claims, "tok", "other", 2), ErrMismatch)
	// Logged-out users have an empty slot; any token must fail.
	assert.ErrorIs(t, VerifyAgainstState(claims, "tok", "", 2), ErrMismatch)
}

func TestRefreshSecretFallback(t *testing.T) {
	issuer, err := NewIssuer("only-secret", "", time.Minute, time.Hour)
	require.NoError(t, err)
	verifier, err := NewVerifier("only-secret", "")
	require.NoError(t, err)

	tok, err := issuer.IssueRefresh(9, 0)
	require.NoError(t, err)
	claims, err := verifier.Verify(tok.Value, TypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, uint64(9), claims.UserID)
}
