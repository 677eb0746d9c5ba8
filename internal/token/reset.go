package token

import (
	"crypto/hmac"
	"crypto/sha256"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pharmhub-dev/pharmhub/internal/domain"
	"github.com/pharmhub-dev/pharmhub/internal/logger"
)

// resetSalt separates the reset-link signing context from session tokens:
// a leaked reset token can't be replayed as a session token and vice versa.
const resetSalt = "password-reset"

type resetClaims struct {
	Email domain.Email `json:"email"`
	jwt.RegisteredClaims
}

// ResetCodec signs short-lived, purpose-scoped tokens for password-reset
// links. Validity is checked against a max age at decode time, so the token
// itself carries no expiry.
type ResetCodec struct {
	key []byte
	now func() time.Time
}

func NewResetCodec(secret string) *ResetCodec {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(resetSalt))
	return &ResetCodec{key: mac.Sum(nil), now: time.Now}
}

func (c *ResetCodec) Create(email domain.Email) (string, error) {
	claims := resetClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(c.now()),
		},
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.key)
	if err != nil {
		logger.Log.Error("failed to sign reset token", "error", err)
		return "", err
	}
	return tokenString, nil
}

// Decode returns the email only when the signature is valid and the token is
// no older than maxAge. Every failure mode collapses to ("", false) so callers
// can't leak why a reset link was rejected.
func (c *ResetCodec) Decode(tokenStr string, maxAge time.Duration) (domain.Email, bool) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithIssuedAt(),
	)

	claims := &resetClaims{}
	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return c.key, nil
	})
	if err != nil || !token.Valid {
		return "", false
	}
	if claims.IssuedAt == nil || claims.Email == "" {
		return "", false
	}
	if c.now().Sub(claims.IssuedAt.Time) > maxAge {
		return "", false
	}
	return claims.Email, true
}
