package service

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmhub-dev/pharmhub/internal/domain"
	internal_errors "github.com/pharmhub-dev/pharmhub/internal/errors"
)

type mockAdminStorage struct {
	users          func(ctx context.Context) ([]domain.User, error)
	userById       func(ctx context.Context, id domain.UserId) (domain.User, error)
	updateUser     func(ctx context.Context, user domain.User) (domain.User, error)
	softDeleteUser func(ctx context.Context, id domain.UserId) error
}

func (m *mockAdminStorage) Users(ctx context.Context) ([]domain.User, error) {
	return m.users(ctx)
}
func (m *mockAdminStorage) UserById(ctx context.Context, id domain.UserId) (domain.User, error) {
	return m.userById(ctx, id)
}
func (m *mockAdminStorage) UpdateUser(ctx context.Context, user domain.User) (domain.User, error) {
	return m.updateUser(ctx, user)
}
func (m *mockAdminStorage) SoftDeleteUser(ctx context.Context, id domain.UserId) error {
	return m.softDeleteUser(ctx, id)
}

func TestUsers_List(t *testing.T) {
	storage := &mockAdminStorage{
		users: func(ctx context.Context) ([]domain.User, error) {
			return []domain.User{activeUser(), {Id: 8, Email: "bob@example.com", PassHash: "hash:x"}}, nil
		},
	}
	svc := NewUsers(storage)

	users, err := svc.Users(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, int64(7), users[0].Id)
	assert.Equal(t, "bob@example.com", users[1].Email)
}

func TestUsers_UserById_Deleted(t *testing.T) {
	storage := &mockAdminStorage{
		userById: func(ctx context.Context, id domain.UserId) (domain.User, error) {
			return deletedUser(), nil
		},
	}
	svc := NewUsers(storage)

	_, err := svc.UserById(context.Background(), 7)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, internal_errors.StatusCode(err))
}

func TestUsers_UpdateUser(t *testing.T) {
	storage := &mockAdminStorage{
		userById: func(ctx context.Context, id domain.UserId) (domain.User, error) {
			return activeUser(), nil
		},
		updateUser: func(ctx context.Context, user domain.User) (domain.User, error) {
			return user, nil
		},
	}
	svc := NewUsers(storage)

	newEmail := "Alice.New@Example.COM"
	newName := "Alice Jones"
	updated, err := svc.UpdateUser(context.Background(), 7, domain.UserPatch{
		Email:    &newEmail,
		FullName: &newName,
	})
	require.NoError(t, err)

	assert.Equal(t, "alice.new@example.com", updated.Email, "patched email must be normalized")
	assert.Equal(t, "Alice Jones", updated.FullName)
	assert.False(t, updated.Admin, "untouched fields keep their values")
}

func TestUsers_UpdateUser_PartialPatch(t *testing.T) {
	var persisted domain.User
	storage := &mockAdminStorage{
		userById: func(ctx context.Context, id domain.UserId) (domain.User, error) {
			return activeUser(), nil
		},
		updateUser: func(ctx context.Context, user domain.User) (domain.User, error) {
			persisted = user
			return user, nil
		},
	}
	svc := NewUsers(storage)

	isAdmin := true
	before := time.Now().UTC().Add(-time.Second)
	_, err := svc.UpdateUser(context.Background(), 7, domain.UserPatch{Admin: &isAdmin})
	require.NoError(t, err)

	assert.True(t, persisted.Admin)
	assert.Equal(t, "alice@example.com", persisted.Email)
	assert.Equal(t, "Alice Smith", persisted.FullName)
	assert.True(t, persisted.UpdatedAt.After(before))
}

func TestUsers_DeleteUser(t *testing.T) {
	var deletedId domain.UserId
	storage := &mockAdminStorage{
		softDeleteUser: func(ctx context.Context, id domain.UserId) error {
			deletedId = id
			return nil
		},
	}
	svc := NewUsers(storage)

	require.NoError(t, svc.DeleteUser(context.Background(), 7))
	assert.Equal(t, int64(7), deletedId)
}
