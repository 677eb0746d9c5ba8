package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pharmhub-dev/pharmhub/internal/config"
	"github.com/pharmhub-dev/pharmhub/internal/domain"
	internal_errors "github.com/pharmhub-dev/pharmhub/internal/errors"
	"github.com/pharmhub-dev/pharmhub/internal/logger"
	"github.com/pharmhub-dev/pharmhub/internal/token"
)

// Login failures share one value so unknown email and wrong password produce
// byte-identical responses.
var (
	ErrInvalidCredentials = &internal_errors.ErrorWithStatusCode{Message: "Invalid credentials", StatusCode: http.StatusUnauthorized}
	ErrUnauthenticated    = &internal_errors.ErrorWithStatusCode{Message: "Please sign-in", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &internal_errors.ErrorWithStatusCode{Message: "Access denied. Only for admin", StatusCode: http.StatusForbidden}
	ErrBadResetLink       = &internal_errors.ErrorWithStatusCode{Message: "Invalid or expired reset link", StatusCode: http.StatusUnauthorized}
)

type AuthService interface {
	Register(ctx context.Context, email domain.Email, fullName, password string, admin bool) (domain.PublicUser, error)
	Login(ctx context.Context, creds domain.Credentials) (TokenPair, domain.PublicUser, error)
	Authenticate(ctx context.Context, accessToken string) (*token.Claims, domain.User, error)
	Logout(ctx context.Context, accessToken, refreshToken string) error
	Refresh(ctx context.Context, refreshToken string) (TokenPair, domain.PublicUser, error)
	RequestPasswordReset(ctx context.Context, email domain.Email) error
	ConfirmPasswordReset(ctx context.Context, resetToken, newPassword, confirmPassword string) error
}

type UserStorage interface {
	SaveUser(ctx context.Context, user domain.User) (domain.User, error)
	UserByEmail(ctx context.Context, email domain.Email) (domain.User, error)
	UserById(ctx context.Context, id domain.UserId) (domain.User, error)
	UpdatePassword(ctx context.Context, id domain.UserId, passHash string) error
}

type Email interface {
	Send(recipientEmail, subject, html string) error
	IsCorrect(email domain.Email) error
}

type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hash string) bool
}

type TokenCodec interface {
	IssueAccess(user domain.User) (string, error)
	IssueRefresh(user domain.User) (string, error)
	Verify(tokenStr string, expected token.Kind) (*token.Claims, error)
	AccessTTL() time.Duration
	RefreshTTL() time.Duration
}

type ResetTokenCodec interface {
	Create(email domain.Email) (string, error)
	Decode(tokenStr string, maxAge time.Duration) (domain.Email, bool)
}

type RevocationStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

type TokenPair struct {
	Access  string
	Refresh string
}

// Auth orchestrates login, logout, refresh and password reset. It owns no
// persistent state of its own.
type Auth struct {
	storage     UserStorage
	email       Email
	hasher      PasswordHasher
	tokens      TokenCodec
	resetTokens ResetTokenCodec
	revocations RevocationStore
	cfg         *config.Public
}

func NewAuth(storage UserStorage, email Email, hasher PasswordHasher, tokens TokenCodec, resetTokens ResetTokenCodec, revocations RevocationStore, cfg *config.Public) *Auth {
	return &Auth{
		storage:     storage,
		email:       email,
		hasher:      hasher,
		tokens:      tokens,
		resetTokens: resetTokens,
		revocations: revocations,
		cfg:         cfg,
	}
}

// Register creates a new user. Duplicate emails surface as 409 from storage,
// backed by the unique constraint so concurrent registrations can't race past
// the check.
func (a *Auth) Register(ctx context.Context, email domain.Email, fullName, password string, admin bool) (domain.PublicUser, error) {
	email = strings.ToLower(email)

	if err := a.email.IsCorrect(email); err != nil {
		return domain.PublicUser{}, err
	}

	passHash, err := a.hasher.Hash(password)
	if err != nil {
		return domain.PublicUser{}, err
	}

	user, err := a.storage.SaveUser(ctx, domain.User{
		Email:    email,
		FullName: fullName,
		PassHash: passHash,
		Admin:    admin,
	})
	if err != nil {
		return domain.PublicUser{}, err
	}
	return user.Public(), nil
}

// Login checks credentials and issues a fresh access/refresh pair. A missing
// user, a soft-deleted user and a wrong password are indistinguishable to the
// caller.
func (a *Auth) Login(ctx context.Context, creds domain.Credentials) (TokenPair, domain.PublicUser, error) {
	email := strings.ToLower(creds.Email)

	user, err := a.storage.UserByEmail(ctx, email)
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return TokenPair{}, domain.PublicUser{}, ErrInvalidCredentials
		}
		return TokenPair{}, domain.PublicUser{}, err
	}
	if !user.Active() {
		return TokenPair{}, domain.PublicUser{}, ErrInvalidCredentials
	}
	if !a.hasher.Verify(creds.Password, user.PassHash) {
		return TokenPair{}, domain.PublicUser{}, ErrInvalidCredentials
	}

	pair, err := a.issuePair(user)
	if err != nil {
		return TokenPair{}, domain.PublicUser{}, err
	}
	return pair, user.Public(), nil
}

// Authenticate verifies an access token end to end: signature, kind, expiry,
// revocation, and that the subject still exists and is not soft-deleted.
// A revocation-store failure denies the request, never allows it.
func (a *Auth) Authenticate(ctx context.Context, accessToken string) (*token.Claims, domain.User, error) {
	claims, err := a.tokens.Verify(accessToken, token.KindAccess)
	if err != nil {
		return nil, domain.User{}, err
	}

	revoked, err := a.revocations.IsRevoked(ctx, claims.Jti())
	if err != nil {
		logger.Log.Error("revocation check failed, denying request", "jti", claims.Jti(), "error", err)
		return nil, domain.User{}, err
	}
	if revoked {
		return nil, domain.User{}, ErrUnauthenticated
	}

	user, err := a.storage.UserByEmail(ctx, claims.Email)
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return nil, domain.User{}, ErrUnauthenticated
		}
		return nil, domain.User{}, err
	}
	if !user.Active() {
		return nil, domain.User{}, ErrUnauthenticated
	}

	return claims, user, nil
}

// RequireAdmin gates admin-only operations on an already-authenticated user.
func (a *Auth) RequireAdmin(user domain.User) error {
	if !user.Admin {
		return ErrForbidden
	}
	return nil
}

// Logout revokes the jti of every still-valid token it is handed. Clearing
// the client cookies alone would leave the unexpired access token usable.
func (a *Auth) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if err := a.revokeIfValid(ctx, accessToken, token.KindAccess); err != nil {
		return err
	}
	return a.revokeIfValid(ctx, refreshToken, token.KindRefresh)
}

func (a *Auth) revokeIfValid(ctx context.Context, tokenStr string, kind token.Kind) error {
	if tokenStr == "" {
		return nil
	}
	claims, err := a.tokens.Verify(tokenStr, kind)
	if err != nil {
		// Expired or malformed tokens need no revocation entry.
		return nil
	}
	return a.revocations.Revoke(ctx, claims.Jti(), time.Until(claims.ExpiresAt.Time))
}

// Refresh rotates the token pair. The old refresh jti is revoked first, so a
// concurrent refresh from the same stale token loses the race and fails.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (TokenPair, domain.PublicUser, error) {
	claims, err := a.tokens.Verify(refreshToken, token.KindRefresh)
	if err != nil {
		return TokenPair{}, domain.PublicUser{}, ErrUnauthenticated
	}

	revoked, err := a.revocations.IsRevoked(ctx, claims.Jti())
	if err != nil {
		return TokenPair{}, domain.PublicUser{}, err
	}
	if revoked {
		return TokenPair{}, domain.PublicUser{}, ErrUnauthenticated
	}

	userId, err := claims.UserId()
	if err != nil {
		return TokenPair{}, domain.PublicUser{}, ErrUnauthenticated
	}
	user, err := a.storage.UserById(ctx, userId)
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return TokenPair{}, domain.PublicUser{}, ErrUnauthenticated
		}
		return TokenPair{}, domain.PublicUser{}, err
	}
	if !user.Active() {
		return TokenPair{}, domain.PublicUser{}, ErrUnauthenticated
	}

	if err := a.revocations.Revoke(ctx, claims.Jti(), time.Until(claims.ExpiresAt.Time)); err != nil {
		return TokenPair{}, domain.PublicUser{}, err
	}

	pair, err := a.issuePair(user)
	if err != nil {
		return TokenPair{}, domain.PublicUser{}, err
	}
	return pair, user.Public(), nil
}

// RequestPasswordReset always reports success so callers can't probe which
// emails are registered. Mail is dispatched in the background; the response
// never waits on SMTP.
func (a *Auth) RequestPasswordReset(ctx context.Context, email domain.Email) error {
	email = strings.ToLower(email)

	user, err := a.storage.UserByEmail(ctx, email)
	if err != nil || !user.Active() {
		if err != nil && !internal_errors.IsNotFound(err) {
			logger.Log.Error("password reset lookup failed", "error", err)
		}
		return nil
	}

	resetToken, err := a.resetTokens.Create(user.Email)
	if err != nil {
		logger.Log.Error("failed to create reset token", "error", err)
		return nil
	}

	link := fmt.Sprintf("%s/reset-password/%s", strings.TrimRight(a.cfg.FrontendHost, "/"), resetToken)
	body := fmt.Sprintf(`
		<h3>Password reset</h3>
		<p>Follow the link below to reset your password. The link expires in %d minutes.</p>
		<p><a href="%s">%s</a></p>
		<p>If you did not request this, please ignore this email.</p>
	`, int(a.cfg.ResetTokenMaxAge.Minutes()), link, link)

	go func() {
		if err := a.email.Send(user.Email, "Reset your password", body); err != nil {
			logger.Log.Error("failed to send password reset email", "error", err)
		}
	}()

	return nil
}

// ConfirmPasswordReset validates the link and stores the new hash in the same
// column the login path reads.
func (a *Auth) ConfirmPasswordReset(ctx context.Context, resetToken, newPassword, confirmPassword string) error {
	if newPassword == "" || newPassword != confirmPassword {
		return &internal_errors.ErrorWithStatusCode{Message: "Passwords do not match", StatusCode: http.StatusBadRequest}
	}

	email, ok := a.resetTokens.Decode(resetToken, a.cfg.ResetTokenMaxAge)
	if !ok {
		return ErrBadResetLink
	}

	user, err := a.storage.UserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if !user.Active() {
		return &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
	}

	passHash, err := a.hasher.Hash(newPassword)
	if err != nil {
		return err
	}
	return a.storage.UpdatePassword(ctx, user.Id, passHash)
}

func (a *Auth) issuePair(user domain.User) (TokenPair, error) {
	access, err := a.tokens.IssueAccess(user)
	if err != nil {
		logger.Log.Error("failed to issue access token", "user_id", user.Id, "error", err)
		return TokenPair{}, err
	}
	refresh, err := a.tokens.IssueRefresh(user)
	if err != nil {
		logger.Log.Error("failed to issue refresh token", "user_id", user.Id, "error", err)
		return TokenPair{}, err
	}
	return TokenPair{Access: access, Refresh: refresh}, nil
}
