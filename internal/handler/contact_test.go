package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	internal_errors "github.com/pharmhub-dev/pharmhub/internal/errors"
)

func TestContactHandler(t *testing.T) {
	var gotName, gotAddress, gotMessage string
	h := newTestHandler(nil, nil, &mockContactService{
		sendMessage: func(name, address, message string) error {
			gotName, gotAddress, gotMessage = name, address, message
			return nil
		},
	})

	body := `{"name":"Bob","address":"bob@example.com","message":"Do you ship abroad?"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/contact", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Contact(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "Bob", gotName)
	assert.Equal(t, "bob@example.com", gotAddress)
	assert.Equal(t, "Do you ship abroad?", gotMessage)
}

func TestContactHandler_Validation(t *testing.T) {
	h := newTestHandler(nil, nil, &mockContactService{
		sendMessage: func(name, address, message string) error {
			t.Fatal("service must not be reached for an invalid body")
			return nil
		},
	})

	cases := []struct {
		name string
		body string
	}{
		{"missing message", `{"name":"Bob","address":"bob@example.com"}`},
		{"bad address", `{"name":"Bob","address":"nope","message":"hi"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/contact", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			h.Contact(rec, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestContactHandler_ServiceError(t *testing.T) {
	h := newTestHandler(nil, nil, &mockContactService{
		sendMessage: func(name, address, message string) error {
			return internal_errors.New("Invalid email", http.StatusBadRequest)
		},
	})

	body := `{"name":"Bob","address":"bob@example.com","message":"hi"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/contact", strings.NewReader(body))
	rec := httptest.NewRecorder()

	h.Contact(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
