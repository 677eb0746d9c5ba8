package service

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pharmhub-dev/pharmhub/internal/domain"
	internal_errors "github.com/pharmhub-dev/pharmhub/internal/errors"
)

type UserService interface {
	Users(ctx context.Context) ([]domain.PublicUser, error)
	UserById(ctx context.Context, id domain.UserId) (domain.PublicUser, error)
	UpdateUser(ctx context.Context, id domain.UserId, patch domain.UserPatch) (domain.PublicUser, error)
	DeleteUser(ctx context.Context, id domain.UserId) error
}

type UserAdminStorage interface {
	Users(ctx context.Context) ([]domain.User, error)
	UserById(ctx context.Context, id domain.UserId) (domain.User, error)
	UpdateUser(ctx context.Context, user domain.User) (domain.User, error)
	SoftDeleteUser(ctx context.Context, id domain.UserId) error
}

type Users struct {
	storage UserAdminStorage
}

func NewUsers(storage UserAdminStorage) *Users {
	return &Users{storage: storage}
}

func (s *Users) Users(ctx context.Context) ([]domain.PublicUser, error) {
	users, err := s.storage.Users(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PublicUser, 0, len(users))
	for i := range users {
		out = append(out, users[i].Public())
	}
	return out, nil
}

func (s *Users) UserById(ctx context.Context, id domain.UserId) (domain.PublicUser, error) {
	user, err := s.storage.UserById(ctx, id)
	if err != nil {
		return domain.PublicUser{}, err
	}
	if !user.Active() {
		return domain.PublicUser{}, &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
	}
	return user.Public(), nil
}

// UpdateUser merges a typed patch into the stored record field-by-field and
// persists the result in one call.
func (s *Users) UpdateUser(ctx context.Context, id domain.UserId, patch domain.UserPatch) (domain.PublicUser, error) {
	user, err := s.storage.UserById(ctx, id)
	if err != nil {
		return domain.PublicUser{}, err
	}
	if !user.Active() {
		return domain.PublicUser{}, &internal_errors.ErrorWithStatusCode{Message: "User not found", StatusCode: http.StatusNotFound}
	}

	if patch.Email != nil {
		normalized := strings.ToLower(*patch.Email)
		patch.Email = &normalized
	}
	patch.Apply(&user, time.Now().UTC())

	updated, err := s.storage.UpdateUser(ctx, user)
	if err != nil {
		return domain.PublicUser{}, err
	}
	return updated.Public(), nil
}

func (s *Users) DeleteUser(ctx context.Context, id domain.UserId) error {
	return s.storage.SoftDeleteUser(ctx, id)
}
