package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmhub-dev/pharmhub/internal/domain"
	internal_errors "github.com/pharmhub-dev/pharmhub/internal/errors"
	"github.com/pharmhub-dev/pharmhub/internal/middleware"
)

// withCaller stores the authenticated user in the request context the way the
// auth middleware does.
func withCaller(req *http.Request, user domain.User) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), middleware.UserKey, &user))
}

// userRouter mounts the user handlers the way the real router does, so
// chi.URLParam resolves.
func userRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/users", h.GetUsers)
	r.Get("/v1/users/{id}", h.GetUser)
	r.Put("/v1/users/{id}", h.UpdateUser)
	r.Delete("/v1/users/{id}", h.DeleteUser)
	return r
}

func TestGetUsersHandler(t *testing.T) {
	h := newTestHandler(nil, &mockUserService{
		users: func(ctx context.Context) ([]domain.PublicUser, error) {
			return []domain.PublicUser{publicAlice(), {Id: 8, Email: "bob@example.com"}}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
	rec := httptest.NewRecorder()
	userRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "alice@example.com")
	assert.Contains(t, rec.Body.String(), "bob@example.com")
}

func TestGetUserHandler(t *testing.T) {
	h := newTestHandler(nil, &mockUserService{
		userById: func(ctx context.Context, id domain.UserId) (domain.PublicUser, error) {
			require.Equal(t, int64(7), id)
			return publicAlice(), nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/7", nil)
	rec := httptest.NewRecorder()
	userRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":7`)
}

func TestGetUserHandler_BadId(t *testing.T) {
	h := newTestHandler(nil, &mockUserService{
		userById: func(ctx context.Context, id domain.UserId) (domain.PublicUser, error) {
			t.Fatal("service must not be reached for a non-numeric id")
			return domain.PublicUser{}, nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/not-a-number", nil)
	rec := httptest.NewRecorder()
	userRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUserHandler_NotFound(t *testing.T) {
	h := newTestHandler(nil, &mockUserService{
		userById: func(ctx context.Context, id domain.UserId) (domain.PublicUser, error) {
			return domain.PublicUser{}, internal_errors.New("User not found", http.StatusNotFound)
		},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/99", nil)
	rec := httptest.NewRecorder()
	userRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateUserHandler(t *testing.T) {
	var gotPatch domain.UserPatch
	h := newTestHandler(nil, &mockUserService{
		updateUser: func(ctx context.Context, id domain.UserId, patch domain.UserPatch) (domain.PublicUser, error) {
			require.Equal(t, int64(7), id)
			gotPatch = patch
			return publicAlice(), nil
		},
	}, nil)

	body := `{"fullname":"Alice Jones"}`
	req := httptest.NewRequest(http.MethodPut, "/v1/users/7", strings.NewReader(body))
	req = withCaller(req, domain.User{Id: 7, Email: "alice@example.com"})
	rec := httptest.NewRecorder()
	userRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotPatch.FullName)
	assert.Equal(t, "Alice Jones", *gotPatch.FullName)
	assert.Nil(t, gotPatch.Email, "absent fields must stay nil in the patch")
	assert.Nil(t, gotPatch.Admin)
}

func TestUpdateUserHandler_SelfAdminGrantForbidden(t *testing.T) {
	h := newTestHandler(nil, &mockUserService{
		updateUser: func(ctx context.Context, id domain.UserId, patch domain.UserPatch) (domain.PublicUser, error) {
			t.Fatal("service must not be reached when a non-admin touches the admin flag")
			return domain.PublicUser{}, nil
		},
	}, nil)

	body := `{"is_admin":true}`
	req := httptest.NewRequest(http.MethodPut, "/v1/users/7", strings.NewReader(body))
	req = withCaller(req, domain.User{Id: 7, Email: "alice@example.com"})
	rec := httptest.NewRecorder()
	userRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateUserHandler_OtherUsersRecordForbidden(t *testing.T) {
	h := newTestHandler(nil, &mockUserService{
		updateUser: func(ctx context.Context, id domain.UserId, patch domain.UserPatch) (domain.PublicUser, error) {
			t.Fatal("service must not be reached when a non-admin patches someone else")
			return domain.PublicUser{}, nil
		},
	}, nil)

	body := `{"fullname":"Mallory"}`
	req := httptest.NewRequest(http.MethodPut, "/v1/users/8", strings.NewReader(body))
	req = withCaller(req, domain.User{Id: 7, Email: "alice@example.com"})
	rec := httptest.NewRecorder()
	userRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateUserHandler_AdminGrantsFlag(t *testing.T) {
	var gotPatch domain.UserPatch
	h := newTestHandler(nil, &mockUserService{
		updateUser: func(ctx context.Context, id domain.UserId, patch domain.UserPatch) (domain.PublicUser, error) {
			gotPatch = patch
			return publicAlice(), nil
		},
	}, nil)

	body := `{"is_admin":true}`
	req := httptest.NewRequest(http.MethodPut, "/v1/users/7", strings.NewReader(body))
	req = withCaller(req, domain.User{Id: 1, Email: "root@example.com", Admin: true})
	rec := httptest.NewRecorder()
	userRouter(h).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotPatch.Admin)
	assert.True(t, *gotPatch.Admin)
}

func TestUpdateUserHandler_NoIdentity(t *testing.T) {
	h := newTestHandler(nil, &mockUserService{
		updateUser: func(ctx context.Context, id domain.UserId, patch domain.UserPatch) (domain.PublicUser, error) {
			t.Fatal("service must not be reached without an authenticated caller")
			return domain.PublicUser{}, nil
		},
	}, nil)

	body := `{"fullname":"Alice Jones"}`
	req := httptest.NewRequest(http.MethodPut, "/v1/users/7", strings.NewReader(body))
	rec := httptest.NewRecorder()
	userRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUpdateUserHandler_BadEmail(t *testing.T) {
	h := newTestHandler(nil, &mockUserService{
		updateUser: func(ctx context.Context, id domain.UserId, patch domain.UserPatch) (domain.PublicUser, error) {
			t.Fatal("service must not be reached for an invalid email")
			return domain.PublicUser{}, nil
		},
	}, nil)

	body := `{"email":"not-an-email"}`
	req := httptest.NewRequest(http.MethodPut, "/v1/users/7", strings.NewReader(body))
	rec := httptest.NewRecorder()
	userRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeleteUserHandler(t *testing.T) {
	var deletedId domain.UserId
	h := newTestHandler(nil, &mockUserService{
		deleteUser: func(ctx context.Context, id domain.UserId) error {
			deletedId = id
			return nil
		},
	}, nil)

	req := httptest.NewRequest(http.MethodDelete, "/v1/users/7", nil)
	rec := httptest.NewRecorder()
	userRouter(h).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(7), deletedId)
}
