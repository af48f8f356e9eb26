package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginSendsIdentifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/login", r.URL.Path)

		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "ana@x.io", body["username"])
		assert.Equal(t, "hunter22", body["password"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message":"ok","token":"tok","user":{"id":3,"username":"ana","email":"ana@x.io"}}`))
	}))
	defer srv.Close()

	out, err := New(srv.URL+"/", nil).Login(context.Background(), "ana@x.io", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "tok", out.Token)
	assert.Equal(t, int64(3), out.User.ID)
	assert.Equal(t, "ana", out.User.Username)
}

func TestUserSendsBearer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/users/42", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"id":42,"fullName":"Ana Silva"}`))
	}))
	defer srv.Close()

	user, err := New(srv.URL, nil).User(context.Background(), "tok", 42)
	require.NoError(t, err)
	assert.Equal(t, "Ana Silva", user.FullName)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		status int
		body   string
		target error
		msg    string
	}{
		{http.StatusUnauthorized, `{"message":"authentication required"}`, ErrUnauthorized, "authentication required"},
		{http.StatusForbidden, `{"message":"invalid or expired token"}`, ErrForbidden, "invalid or expired token"},
		{http.StatusConflict, `{"message":"email already exists"}`, nil, "email already exists"},
		{http.StatusBadGateway, `not json`, nil, "Bad Gateway"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL, nil).User(context.Background(), "tok", 1)
			require.Error(t, err)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.msg, apiErr.Message)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			} else {
				assert.False(t, errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden))
			}
		})
	}
}

func TestUpdateUserOmitsUnsetFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, map[string]any{"fullName": "Ana S."}, body)
		_, _ = w.Write([]byte(`{"id":5,"fullName":"Ana S."}`))
	}))
	defer srv.Close()

	name := "Ana S."
	user, err := New(srv.URL, nil).UpdateUser(context.Background(), "tok", 5, ProfileUpdate{FullName: &name})
	require.NoError(t, err)
	assert.Equal(t, "Ana S.", user.FullName)
}
