// Package backend is the portal's client for the admissions REST API.
package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	apperrors "admissions/internal/errors"
	"admissions/internal/model"
)

var (
	// ErrUnauthorized is wrapped by errors for 401 responses.
	ErrUnauthorized = errors.New("backend: unauthorized")
	// ErrRejected is wrapped by the other 4xx responses, except 408 and 429.
	ErrRejected = errors.New("backend: rejected")
	// ErrUnavailable is wrapped by transport failures, 5xx, 408 and 429 responses.
	ErrUnavailable = errors.New("backend: unavailable")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status int
	Body   apperrors.ErrorResponse
}

func (e *APIError) Error() string {
	if e.Body.Error != "" {
		return fmt.Sprintf("backend: status %d: %s", e.Status, e.Body.Error)
	}
	return fmt.Sprintf("backend: status %d", e.Status)
}

func (e *APIError) Unwrap() error {
	switch {
	case e.Status == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.Status >= http.StatusInternalServerError,
		e.Status == http.StatusRequestTimeout,
		e.Status == http.StatusTooManyRequests:
		return ErrUnavailable
	case e.Status >= http.StatusBadRequest:
		return ErrRejected
	default:
		return nil
	}
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse is a successful login.
type LoginResponse struct {
	AccessToken string           `json:"access_token"`
	User        *model.Principal `json:"user"`
}

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

// RegisterResponse is a successful registration.
type RegisterResponse struct {
	Message string           `json:"message"`
	User    *model.Principal `json:"user"`
}

// Options configures New.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Retries int
	Debug   bool
}

// Client talks to the backend over HTTP.
type Client struct {
	rc *resty.Client
}

// New creates a client for the backend rooted at opts.BaseURL.
func New(opts Options) *Client {
	rc := resty.New().
		SetBaseURL(opts.BaseURL).
		SetTimeout(opts.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetRetryCount(opts.Retries).
		SetRetryWaitTime(100 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetDebug(opts.Debug)
	rc.AddRetryCondition(retryCondition)
	return &Client{rc: rc}
}

// retryCondition retries idempotent reads on network errors and 5xx.
// Login and registration are never retried.
func retryCondition(r *resty.Response, err error) bool {
	if r == nil || r.Request == nil || r.Request.Method != http.MethodGet {
		return false
	}
	if err != nil {
		return true
	}
	return r.StatusCode() >= http.StatusInternalServerError
}

// Login exchanges credentials for a token and principal.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", req, &out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" || out.User == nil {
		return nil, fmt.Errorf("%w: login response missing token or user", ErrUnavailable)
	}
	return &out, nil
}

// Register creates an applicant account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", "", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the principal the token belongs to.
func (c *Client) Me(ctx context.Context, token string) (*model.Principal, error) {
	var out model.Principal
	if err := c.do(ctx, http.MethodGet, "/me", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Announcements lists announcements visible to the token's principal.
func (c *Client) Announcements(ctx context.Context, token string) ([]model.Announcement, error) {
	var out []model.Announcement
	if err := c.do(ctx, http.MethodGet, "/announcements", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Programs lists the study programmes.
func (c *Client) Programs(ctx context.Context, token string) ([]model.Program, error) {
	var out []model.Program
	if err := c.do(ctx, http.MethodGet, "/programs", token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, result any) error {
	var apiErr apperrors.ErrorResponse
	req := c.rc.R().
		SetContext(ctx).
		SetResult(result).
		SetError(&apiErr)
	if token != "" {
		req.SetAuthToken(token)
	}
	if body != nil {
		req.SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %w", ErrUnavailable, method, path, err)
	}
	if resp.IsError() {
		return &APIError{Status: resp.StatusCode(), Body: apiErr}
	}
	return nil
}
