package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "admissions/internal/errors"
	"admissions/internal/model"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(Options{BaseURL: srv.URL + "/api", Timeout: 2 * time.Second, Retries: 2})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestClient_Login(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret" {
			writeJSON(w, http.StatusUnauthorized, apperrors.ErrorResponse{Error: "invalid email or password", Code: "INVALID_CREDENTIALS"})
			return
		}
		writeJSON(w, http.StatusOK, LoginResponse{
			AccessToken: "tok",
			User:        &model.Principal{ID: "u1", Email: req.Email, Role: model.Role{ID: 1, Name: model.RoleApplicant}},
		})
	})

	resp, err := client.Login(context.Background(), LoginRequest{Email: "a@example.edu", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.AccessToken)
	assert.True(t, resp.User.IsApplicant())

	_, err = client.Login(context.Background(), LoginRequest{Email: "a@example.edu", Password: "wrong"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "invalid email or password", apiErr.Body.Error)
}

func TestClient_RegisterFieldErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusConflict, apperrors.ErrorResponse{
			Error:  "user already exists",
			Code:   "USER_ALREADY_EXISTS",
			Fields: map[string][]string{"email": {"A user with this email already exists."}},
		})
	})

	_, err := client.Register(context.Background(), RegisterRequest{Email: "taken@example.edu", Password: "password1"})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	msg, ok := apiErr.Body.FirstField("email")
	assert.True(t, ok)
	assert.Equal(t, "A user with this email already exists.", msg)
	assert.NotErrorIs(t, err, ErrUnauthorized)
	assert.NotErrorIs(t, err, ErrUnavailable)
	assert.ErrorIs(t, err, ErrRejected)
}

func TestClient_MeSendsBearer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, model.Principal{ID: "u1", Role: model.Role{Name: model.RoleAdmin}})
	})

	p, err := client.Me(context.Background(), "tok")
	require.NoError(t, err)
	assert.True(t, p.IsStaff())
}

func TestAPIError_Unwrap(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrRejected},
		{http.StatusNotFound, ErrRejected},
		{http.StatusConflict, ErrRejected},
		{http.StatusRequestTimeout, ErrUnavailable},
		{http.StatusTooManyRequests, ErrUnavailable},
		{http.StatusBadGateway, ErrUnavailable},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			assert.ErrorIs(t, &APIError{Status: tt.status}, tt.want)
		})
	}
}

func TestClient_MeForbiddenIsRejected(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, apperrors.ErrorResponse{Error: "account disabled"})
	})

	_, err := client.Me(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrRejected)
	assert.NotErrorIs(t, err, ErrUnavailable)
}

func TestClient_RetriesReadsOn5xx(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			writeJSON(w, http.StatusServiceUnavailable, apperrors.ErrorResponse{Error: "warming up"})
			return
		}
		writeJSON(w, http.StatusOK, []model.Program{{Name: "Computer Science"}})
	})

	programs, err := client.Programs(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, programs, 1)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_DoesNotRetryLogin(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusBadGateway, apperrors.ErrorResponse{Error: "down"})
	})

	_, err := client.Login(context.Background(), LoginRequest{Email: "a@example.edu", Password: "x"})
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_TransportFailure(t *testing.T) {
	client := New(Options{BaseURL: "http://127.0.0.1:1/api", Timeout: 200 * time.Millisecond})

	_, err := client.Me(context.Background(), "tok")
	assert.ErrorIs(t, err, ErrUnavailable)
}
