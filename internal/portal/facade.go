// Package portal is the admissions portal web client: the authentication
// facade, the echo adapters for the route gate, and the page handlers.
package portal

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"admissions/internal/backend"
	apperrors "admissions/internal/errors"
	"admissions/internal/model"
	"admissions/internal/session"
)

const (
	loginFallbackMessage        = "Login failed. Please check your credentials."
	loginInvalidInputMessage    = "Please enter a valid email address and password."
	loginNoAccessMessage        = "Your account does not have access to the portal."
	registrationFallbackMessage = "Registration failed. Please try again."

	// sharedLoginTimeout bounds a de-duplicated login call once it no longer
	// follows the first caller's request.
	sharedLoginTimeout = 30 * time.Second
)

// Backend is the part of the REST API the facade needs.
type Backend interface {
	Login(ctx context.Context, req backend.LoginRequest) (*backend.LoginResponse, error)
	Register(ctx context.Context, req backend.RegisterRequest) (*backend.RegisterResponse, error)
}

// SessionCache forgets the live-session cache entry of a token.
type SessionCache interface {
	Forget(ctx context.Context, token string)
}

// LoginRequest is the login form.
type LoginRequest struct {
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required"`
}

// RegisterRequest is the registration form.
type RegisterRequest struct {
	Email    string `form:"email" json:"email" validate:"required,email"`
	Password string `form:"password" json:"password" validate:"required,min=8"`
	FullName string `form:"full_name" json:"full_name" validate:"required,max=255"`
}

// RegistrationResult is a successful registration. The user is not signed in.
type RegistrationResult struct {
	Email   string
	Message string
}

// AuthFacade wraps login, registration and logout. It is the only writer of
// the session store.
type AuthFacade interface {
	Login(ctx context.Context, store *session.Store, req LoginRequest) (*model.Principal, error)
	Register(ctx context.Context, req RegisterRequest) (*RegistrationResult, error)
	Logout(ctx context.Context, store *session.Store)
	// InFlight is true while any login or registration call is pending.
	InFlight() bool
}

type authFacade struct {
	backend  Backend
	sessions SessionCache
	validate *validator.Validate
	logins   singleflight.Group
	inFlight atomic.Int64
	logger   *slog.Logger
}

// NewAuthFacade creates the facade. sessions may be nil.
func NewAuthFacade(b Backend, sessions SessionCache, logger *slog.Logger) AuthFacade {
	if logger == nil {
		logger = slog.Default()
	}
	return &authFacade{
		backend:  b,
		sessions: sessions,
		validate: validator.New(),
		logger:   logger.With(slog.String("component", "auth_facade")),
	}
}

// Login authenticates and, on success, stores the principal and token.
// Failures are *errors.AuthenticationError and leave the store untouched.
// Identical concurrent submissions share one backend call.
func (f *authFacade) Login(ctx context.Context, store *session.Store, req LoginRequest) (*model.Principal, error) {
	if err := f.validate.Struct(req); err != nil {
		return nil, &apperrors.AuthenticationError{Message: loginInvalidInputMessage}
	}

	// The shared call outlives any single caller; each caller stops waiting
	// when its own request ends.
	ch := f.logins.DoChan(loginKey(req), func() (any, error) {
		f.inFlight.Add(1)
		defer f.inFlight.Add(-1)
		callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoginTimeout)
		defer cancel()
		return f.backend.Login(callCtx, backend.LoginRequest{Email: req.Email, Password: req.Password})
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		f.logger.Info("login abandoned", slog.String("email", req.Email), slog.String("error", ctx.Err().Error()))
		return nil, &apperrors.AuthenticationError{Message: loginFallbackMessage}
	}
	v, err := res.Val, res.Err
	if res.Shared {
		f.logger.Debug("login de-duplicated", slog.String("email", req.Email))
	}
	if err != nil {
		f.logger.Info("login rejected", slog.String("email", req.Email), slog.String("error", err.Error()))
		return nil, &apperrors.AuthenticationError{Message: backendMessage(err, loginFallbackMessage)}
	}

	resp := v.(*backend.LoginResponse)
	if !resp.User.Role.Name.Known() {
		return nil, &apperrors.AuthenticationError{Message: loginNoAccessMessage}
	}
	if err := store.SetUser(resp.User, resp.AccessToken); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return resp.User, nil
}

// Register creates an account without signing in. Failures are
// *errors.ValidationError carrying the email message, else the password
// message, else a generic one.
func (f *authFacade) Register(ctx context.Context, req RegisterRequest) (*RegistrationResult, error) {
	if err := f.validate.Struct(req); err != nil {
		return nil, firstFieldError(fieldMessages(err))
	}

	f.inFlight.Add(1)
	defer f.inFlight.Add(-1)

	resp, err := f.backend.Register(ctx, backend.RegisterRequest{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) {
			return nil, firstFieldError(apiErr.Body.Fields)
		}
		f.logger.Warn("registration failed", slog.String("error", err.Error()))
		return nil, firstFieldError(nil)
	}

	return &RegistrationResult{Email: req.Email, Message: resp.Message}, nil
}

// Logout clears the session. The backend is not contacted.
func (f *authFacade) Logout(ctx context.Context, store *session.Store) {
	token := store.Token()
	store.Clear()
	if f.sessions != nil {
		f.sessions.Forget(ctx, token)
	}
}

func (f *authFacade) InFlight() bool {
	return f.inFlight.Load() > 0
}

// backendMessage returns the backend's error text for 4xx responses.
func backendMessage(err error, fallback string) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Status < 500 && apiErr.Body.Error != "" {
		return apiErr.Body.Error
	}
	return fallback
}

func firstFieldError(fields map[string][]string) *apperrors.ValidationError {
	resp := apperrors.ErrorResponse{Fields: fields}
	for _, field := range []string{"email", "password"} {
		if msg, ok := resp.FirstField(field); ok {
			return &apperrors.ValidationError{Field: field, Message: msg}
		}
	}
	return &apperrors.ValidationError{Message: registrationFallbackMessage}
}

// fieldMessages turns validator errors into backend-shaped field messages.
func fieldMessages(err error) map[string][]string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	out := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		field := jsonField(fe.Field())
		out[field] = append(out[field], describe(fe))
	}
	return out
}

func jsonField(name string) string {
	switch name {
	case "Email":
		return "email"
	case "Password":
		return "password"
	case "FullName":
		return "full_name"
	default:
		return name
	}
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "min":
		return fmt.Sprintf("Must be at least %s characters.", fe.Param())
	case "max":
		return fmt.Sprintf("Must be at most %s characters.", fe.Param())
	default:
		return "Invalid value."
	}
}

// loginKey identifies a submission without keeping the password in memory.
func loginKey(req LoginRequest) string {
	sum := sha256.Sum256([]byte(req.Email + "\x00" + req.Password))
	return hex.EncodeToString(sum[:])
}
