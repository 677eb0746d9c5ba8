// Package token issues and verifies the signed bearer tokens that carry
// session identity: short-lived access tokens and long-lived refresh tokens.
package token

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pharmhub-dev/pharmhub/internal/domain"
	internal_errors "github.com/pharmhub-dev/pharmhub/internal/errors"
	"github.com/pharmhub-dev/pharmhub/internal/logger"
)

// Kind is embedded in the claims so a refresh token can never be replayed
// where an access token is expected, even if the caller picks the wrong
// verifier. The codec itself refuses the mismatch.
type Kind string

const (
	KindAccess  Kind = "access"
	KindRefresh Kind = "refresh"
)

var (
	// ErrTokenExpired means the signature was fine but the token is past its expiry.
	ErrTokenExpired = &internal_errors.ErrorWithStatusCode{Message: "Token has expired", StatusCode: http.StatusUnauthorized}
	// ErrTokenInvalid covers bad signature, wrong shape and kind mismatch.
	ErrTokenInvalid = &internal_errors.ErrorWithStatusCode{Message: "Invalid token", StatusCode: http.StatusUnauthorized}
)

type Claims struct {
	Email   domain.Email `json:"email"`
	IsAdmin bool         `json:"is_admin"`
	Type    Kind         `json:"type"`
	jwt.RegisteredClaims
}

// UserId parses the subject claim back into a user id.
func (c *Claims) UserId() (domain.UserId, error) {
	id, err := strconv.ParseInt(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrTokenInvalid
	}
	return id, nil
}

// Jti returns the unique token identifier used as the revocation key.
func (c *Claims) Jti() string {
	return c.ID
}

type Codec struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time // overridable in tests
}

func NewCodec(secret string, accessTTL, refreshTTL time.Duration) *Codec {
	return &Codec{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}
}

func (c *Codec) AccessTTL() time.Duration  { return c.accessTTL }
func (c *Codec) RefreshTTL() time.Duration { return c.refreshTTL }

// IssueAccess mints a fresh access token for the user.
func (c *Codec) IssueAccess(user domain.User) (string, error) {
	return c.issue(user, KindAccess, c.accessTTL)
}

// IssueRefresh mints a fresh refresh token for the user.
func (c *Codec) IssueRefresh(user domain.User) (string, error) {
	return c.issue(user, KindRefresh, c.refreshTTL)
}

func (c *Codec) issue(user domain.User, kind Kind, ttl time.Duration) (string, error) {
	now := c.now()
	claims := Claims{
		Email:   user.Email,
		IsAdmin: user.Admin,
		Type:    kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(user.Id, 10),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		logger.Log.Error("failed to sign token", "kind", kind, "error", err)
		return "", errors.New("can't create token")
	}
	return tokenString, nil
}

// Verify checks signature, expiry and kind. Expiry failures are reported as
// ErrTokenExpired, everything else as ErrTokenInvalid.
func (c *Codec) Verify(tokenStr string, expected Kind) (*Claims, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(c.now),
		jwt.WithExpirationRequired(),
	)

	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return c.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}
	if claims.Type != expected || claims.ID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
