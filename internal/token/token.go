// Package token issues and verifies the JWT pair used by the session layer.
// Access tokens carry only the identity and type; refresh tokens additionally
// embed the user's token version so a bumped version revokes every refresh
// token issued before it.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token types embedded in the "typ" claim.
const (
	TypeAccess  = "access"
	TypeRefresh = "refresh"
)

// Verification failures. Handlers and the session manager branch on these
// with errors.Is; none of them carry user-identifying detail.
var (
	ErrInvalidToken = errors.New("token invalid")
	ErrExpiredToken = errors.New("token expired")
	ErrWrongType    = errors.New("token type mismatch")
	ErrRevoked      = errors.New("token version revoked")
	ErrMismatch     = errors.New("token does not match stored token")
)

// Claims is the JWT payload for both token kinds. Version is only set on
// refresh tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID  uint64 `json:"uid"`
	Type    string `json:"typ"`
	Version uint64 `json:"ver,omitempty"`
}

// Token is a signed JWT along with its absolute expiry, returned to clients
// so they can schedule refreshes.
type Token struct {
	Value     string    `json:"token"`
	ExpiresAt time.Time `json:"expires"`
}

// Issuer mints signed access and refresh tokens. Construct once at startup
// and share; it has no mutable state.
type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewIssuer builds an Issuer. An empty access secret is a configuration
// fault and fails construction; an empty refresh secret falls back to the
// access secret.
func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	if accessSecret == "" {
		return nil, errors.New("token: signing secret is required")
	}
	if refreshSecret == "" {
		refreshSecret = accessSecret
	}
	if accessTTL <= 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL <= 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// IssueAccess signs a short-lived access token for the user. No side effects.
func (i *Issuer) IssueAccess(userID uint64) (Token, error) {
	return sign(i.accessSecret, Claims{UserID: userID, Type: TypeAccess}, i.accessTTL)
}

// IssueRefresh signs a long-lived refresh token bound to the given token
// version. Persisting the result is the caller's responsibility.
func (i *Issuer) IssueRefresh(userID, version uint64) (Token, error) {
	return sign(i.refreshSecret, Claims{UserID: userID, Type: TypeRefresh, Version: version}, i.refreshTTL)
}

func sign(secret []byte, claims Claims, ttl time.Duration) (Token, error) {
	now := time.Now().UTC()
	exp := now.Add(ttl)
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(exp)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return Token{}, err
	}
	return Token{Value: signed, ExpiresAt: exp}, nil
}

// Verifier validates signed tokens. It is a pure function of the token and
// the secrets; stored-state checks live in VerifyAgainstState.
type Verifier struct {
	accessSecret  []byte
	refreshSecret []byte
}

// NewVerifier builds a Verifier with the same fallback rule as NewIssuer.
func NewVerifier(accessSecret, refreshSecret string) (*Verifier, error) {
	if accessSecret == "" {
		return nil, errors.New("token: signing secret is required")
	}
	if refreshSecret == "" {
		refreshSecret = accessSecret
	}
	return &Verifier{accessSecret: []byte(accessSecret), refreshSecret: []byte(refreshSecret)}, nil
}

// Verify checks signature, expiry and token type, returning the parsed
// claims. The wantType argument selects which secret applies.
func (v *Verifier) Verify(raw, wantType string) (*Claims, error) {
	secret := v.accessSecret
	if wantType == TypeRefresh {
		secret = v.refreshSecret
	}
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !tok.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Type != wantType {
		return nil, ErrWrongType
	}
	return claims, nil
}

// VerifyAgainstState cross-checks refresh claims against the persisted token
// state. The version must equal the stored counter (ErrRevoked otherwise)
// and the presented token must be byte-equal to the stored one (ErrMismatch),
// which catches a stale-but-unexpired token surviving a login race.
func VerifyAgainstState(claims *Claims, presented, storedToken string, storedVersion uint64) error {
	if claims.Version != storedVersion {
		return ErrRevoked
	}
	if storedToken == "" || presented != storedToken {
		return ErrMismatch
	}
	return nil
}
