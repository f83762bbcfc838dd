package portal

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"admissions/internal/backend"
	apperrors "admissions/internal/errors"
	"admissions/internal/model"
	"admissions/internal/session"
)

// MockBackend is a mock implementation of Backend.
type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Login(ctx context.Context, req backend.LoginRequest) (*backend.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.LoginResponse), args.Error(1)
}

func (m *MockBackend) Register(ctx context.Context, req backend.RegisterRequest) (*backend.RegisterResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*backend.RegisterResponse), args.Error(1)
}

// MockSessionCache is a mock implementation of SessionCache.
type MockSessionCache struct {
	mock.Mock
}

func (m *MockSessionCache) Forget(ctx context.Context, token string) {
	m.Called(ctx, token)
}

func applicantPrincipal() *model.Principal {
	return &model.Principal{
		ID:       "a1",
		Email:    "ada@example.edu",
		FullName: "Ada Applicant",
		Role:     model.Role{ID: 1, Name: model.RoleApplicant},
	}
}

func staffPrincipal(role model.RoleName) *model.Principal {
	return &model.Principal{
		ID:       "s1",
		Email:    "sam@example.edu",
		FullName: "Sam Staff",
		Role:     model.Role{ID: 2, Name: role},
	}
}

func TestAuthFacade_LoginSuccess(t *testing.T) {
	b := new(MockBackend)
	facade := NewAuthFacade(b, nil, nil)
	store := session.NewStore(session.MapMedium{})
	user := applicantPrincipal()

	b.On("Login", mock.Anything, backend.LoginRequest{Email: "ada@example.edu", Password: "secret123"}).
		Return(&backend.LoginResponse{AccessToken: "tok-1", User: user}, nil).Once()

	got, err := facade.Login(context.Background(), store, LoginRequest{Email: "ada@example.edu", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, user, got)
	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "tok-1", store.Token())
	assert.Equal(t, user, store.User())
	assert.False(t, facade.InFlight())
	b.AssertExpectations(t)
}

func TestAuthFacade_LoginFailureLeavesStoreUntouched(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		message string
	}{
		{
			name:    "backend message on 401",
			err:     &backend.APIError{Status: 401, Body: apperrors.ErrorResponse{Error: "invalid email or password"}},
			message: "invalid email or password",
		},
		{
			name:    "4xx without message",
			err:     &backend.APIError{Status: 400},
			message: loginFallbackMessage,
		},
		{
			name:    "server error is not shown",
			err:     &backend.APIError{Status: 500, Body: apperrors.ErrorResponse{Error: "sql: connection refused"}},
			message: loginFallbackMessage,
		},
		{
			name:    "network error",
			err:     errors.New("dial tcp: connection refused"),
			message: loginFallbackMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := new(MockBackend)
			facade := NewAuthFacade(b, nil, nil)
			medium := session.MapMedium{}
			store := session.NewStore(medium)

			b.On("Login", mock.Anything, mock.Anything).Return(nil, tt.err).Once()

			got, err := facade.Login(context.Background(), store, LoginRequest{Email: "ada@example.edu", Password: "wrong"})
			assert.Nil(t, got)

			var authErr *apperrors.AuthenticationError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.message, authErr.Message)
			assert.Empty(t, medium)
			assert.False(t, store.IsAuthenticated())
		})
	}
}

func TestAuthFacade_LoginInvalidInputSkipsBackend(t *testing.T) {
	b := new(MockBackend)
	facade := NewAuthFacade(b, nil, nil)

	_, err := facade.Login(context.Background(), session.NewStore(session.MapMedium{}), LoginRequest{Email: "not-an-email"})

	var authErr *apperrors.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, loginInvalidInputMessage, authErr.Message)
	b.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
}

func TestAuthFacade_LoginUnknownRole(t *testing.T) {
	b := new(MockBackend)
	facade := NewAuthFacade(b, nil, nil)
	medium := session.MapMedium{}

	b.On("Login", mock.Anything, mock.Anything).
		Return(&backend.LoginResponse{AccessToken: "tok", User: staffPrincipal("janitor")}, nil).Once()

	_, err := facade.Login(context.Background(), session.NewStore(medium), LoginRequest{Email: "sam@example.edu", Password: "secret123"})

	var authErr *apperrors.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, loginNoAccessMessage, authErr.Message)
	assert.Empty(t, medium)
}

// blockingBackend holds every login until release is closed.
type blockingBackend struct {
	calls   atomic.Int32
	started chan struct{}
	release chan struct{}
}

func (b *blockingBackend) Login(ctx context.Context, req backend.LoginRequest) (*backend.LoginResponse, error) {
	if b.calls.Add(1) == 1 {
		close(b.started)
	}
	select {
	case <-b.release:
		return &backend.LoginResponse{AccessToken: "tok-shared", User: applicantPrincipal()}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (b *blockingBackend) Register(ctx context.Context, req backend.RegisterRequest) (*backend.RegisterResponse, error) {
	return nil, errors.New("not implemented")
}

func TestAuthFacade_ConcurrentLoginsShareOneCall(t *testing.T) {
	b := &blockingBackend{started: make(chan struct{}), release: make(chan struct{})}
	facade := NewAuthFacade(b, nil, nil)
	req := LoginRequest{Email: "ada@example.edu", Password: "secret123"}

	stores := []*session.Store{
		session.NewStore(session.MapMedium{}),
		session.NewStore(session.MapMedium{}),
	}
	var wg sync.WaitGroup
	errs := make([]error, len(stores))

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, errs[0] = facade.Login(context.Background(), stores[0], req)
	}()
	<-b.started
	assert.True(t, facade.InFlight())

	wg.Add(1)
	go func() {
		defer wg.Done()
		_, errs[1] = facade.Login(context.Background(), stores[1], req)
	}()
	time.Sleep(50 * time.Millisecond)
	close(b.release)
	wg.Wait()

	assert.Equal(t, int32(1), b.calls.Load())
	for i, store := range stores {
		require.NoError(t, errs[i])
		assert.Equal(t, "tok-shared", store.Token())
	}
	assert.False(t, facade.InFlight())
}

func TestAuthFacade_SharedLoginSurvivesFirstCallerCancel(t *testing.T) {
	b := &blockingBackend{started: make(chan struct{}), release: make(chan struct{})}
	facade := NewAuthFacade(b, nil, nil)
	req := LoginRequest{Email: "ada@example.edu", Password: "secret123"}

	first := session.NewStore(session.MapMedium{})
	second := session.NewStore(session.MapMedium{})
	firstCtx, cancelFirst := context.WithCancel(context.Background())
	defer cancelFirst()

	firstErr := make(chan error, 1)
	go func() {
		_, err := facade.Login(firstCtx, first, req)
		firstErr <- err
	}()
	<-b.started

	secondErr := make(chan error, 1)
	go func() {
		_, err := facade.Login(context.Background(), second, req)
		secondErr <- err
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	select {
	case err := <-firstErr:
		var authErr *apperrors.AuthenticationError
		require.ErrorAs(t, err, &authErr)
	case <-time.After(time.Second):
		t.Fatal("cancelled caller kept waiting")
	}
	assert.Empty(t, first.Token())

	close(b.release)
	select {
	case err := <-secondErr:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("second caller never returned")
	}
	assert.Equal(t, "tok-shared", second.Token())
	assert.Equal(t, int32(1), b.calls.Load())
}

func TestAuthFacade_Register(t *testing.T) {
	valid := RegisterRequest{Email: "new@example.edu", Password: "longenough", FullName: "New Person"}

	tests := []struct {
		name      string
		req       RegisterRequest
		backend   error
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing email reported before password",
			req:       RegisterRequest{Password: "short", FullName: "X"},
			wantField: "email",
			wantMsg:   "This field is required.",
		},
		{
			name:      "short password",
			req:       RegisterRequest{Email: "new@example.edu", Password: "short", FullName: "X"},
			wantField: "password",
			wantMsg:   "Must be at least 8 characters.",
		},
		{
			name:      "missing full name gets generic message",
			req:       RegisterRequest{Email: "new@example.edu", Password: "longenough"},
			wantField: "",
			wantMsg:   registrationFallbackMessage,
		},
		{
			name: "already registered email shown verbatim",
			req:  valid,
			backend: &backend.APIError{Status: 409, Body: apperrors.ErrorResponse{
				Error:  "email already registered",
				Fields: map[string][]string{"email": {"An account with this email already exists."}},
			}},
			wantField: "email",
			wantMsg:   "An account with this email already exists.",
		},
		{
			name: "backend password message",
			req:  valid,
			backend: &backend.APIError{Status: 400, Body: apperrors.ErrorResponse{
				Fields: map[string][]string{"password": {"Password is too common."}},
			}},
			wantField: "password",
			wantMsg:   "Password is too common.",
		},
		{
			name:      "backend error without fields",
			req:       valid,
			backend:   &backend.APIError{Status: 500},
			wantField: "",
			wantMsg:   registrationFallbackMessage,
		},
		{
			name:      "network error",
			req:       valid,
			backend:   errors.New("timeout"),
			wantField: "",
			wantMsg:   registrationFallbackMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := new(MockBackend)
			if tt.backend != nil {
				b.On("Register", mock.Anything, mock.Anything).Return(nil, tt.backend).Once()
			}
			facade := NewAuthFacade(b, nil, nil)

			res, err := facade.Register(context.Background(), tt.req)
			assert.Nil(t, res)

			var vErr *apperrors.ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Equal(t, tt.wantField, vErr.Field)
			assert.Equal(t, tt.wantMsg, vErr.Message)
			if tt.backend == nil {
				b.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
			}
		})
	}
}

func TestAuthFacade_RegisterSuccessDoesNotSignIn(t *testing.T) {
	b := new(MockBackend)
	facade := NewAuthFacade(b, nil, nil)
	req := RegisterRequest{Email: "new@example.edu", Password: "longenough", FullName: "New Person"}

	b.On("Register", mock.Anything, backend.RegisterRequest{
		Email: req.Email, Password: req.Password, FullName: req.FullName,
	}).Return(&backend.RegisterResponse{Message: "registered", User: applicantPrincipal()}, nil).Once()

	res, err := facade.Register(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, &RegistrationResult{Email: "new@example.edu", Message: "registered"}, res)
	b.AssertExpectations(t)
}

func TestAuthFacade_Logout(t *testing.T) {
	b := new(MockBackend)
	sessions := new(MockSessionCache)
	facade := NewAuthFacade(b, sessions, nil)
	store := session.NewStore(session.MapMedium{})
	require.NoError(t, store.SetUser(applicantPrincipal(), "tok-1"))

	sessions.On("Forget", mock.Anything, "tok-1").Once()

	facade.Logout(context.Background(), store)

	assert.Nil(t, store.User())
	assert.False(t, store.IsAuthenticated())
	assert.False(t, store.HasRole(model.RoleApplicant))
	sessions.AssertExpectations(t)

	sessions.On("Forget", mock.Anything, "").Once()
	facade.Logout(context.Background(), store)
	assert.False(t, store.IsAuthenticated())
}
