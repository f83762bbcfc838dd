package session

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"admissions/internal/backend"
	"admissions/internal/cache"
	"admissions/internal/model"
)

const liveKeyPrefix = "session:"

var (
	// ErrInvalidSession is wrapped by every reason a token is no longer usable.
	ErrInvalidSession = errors.New("invalid session")
	// ErrSessionExpired means the backend rejected the token.
	ErrSessionExpired = fmt.Errorf("session expired: %w", ErrInvalidSession)
	// ErrSessionRejected means the backend refused the token for another reason.
	ErrSessionRejected = fmt.Errorf("session rejected: %w", ErrInvalidSession)
	// ErrUnknownRole means the backend returned a role the portal does not know.
	ErrUnknownRole = fmt.Errorf("unknown role: %w", ErrInvalidSession)
)

// PrincipalFetcher resolves a token to its principal.
type PrincipalFetcher interface {
	Me(ctx context.Context, token string) (*model.Principal, error)
}

// LoaderOptions configures NewLoader.
type LoaderOptions struct {
	Fetcher PrincipalFetcher
	Cache   *cache.Client
	// CacheTTL of zero disables caching.
	CacheTTL time.Duration
	Timeout  time.Duration
	Logger   *slog.Logger
}

// Loader resolves the live session for a request: the token comes from the
// store, the principal from the redis cache or the backend.
type Loader struct {
	fetcher  PrincipalFetcher
	cache    *cache.Client
	cacheTTL time.Duration
	timeout  time.Duration
	logger   *slog.Logger
}

// NewLoader creates a loader.
func NewLoader(opts LoaderOptions) *Loader {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		fetcher:  opts.Fetcher,
		cache:    opts.Cache,
		cacheTTL: opts.CacheTTL,
		timeout:  opts.Timeout,
		logger:   logger.With(slog.String("component", "session_loader")),
	}
}

// Load returns the live state for store. A backend that cannot answer in time
// yields a Loading state, not an error. Errors wrap ErrInvalidSession and mean
// the session must be destroyed.
func (l *Loader) Load(ctx context.Context, store *Store) (model.SessionState, error) {
	token := store.Token()
	if token == "" {
		return model.SessionState{}, nil
	}

	key := liveKey(token)
	if p := l.cached(ctx, key); p != nil {
		return model.SessionState{Authenticated: true, Principal: p}, nil
	}

	fetchCtx := ctx
	if l.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	p, err := l.fetcher.Me(fetchCtx, token)
	switch {
	case errors.Is(err, backend.ErrUnauthorized):
		return model.SessionState{}, ErrSessionExpired
	case errors.Is(err, backend.ErrRejected):
		l.logger.Info("session rejected", slog.String("error", err.Error()))
		return model.SessionState{}, ErrSessionRejected
	case err != nil:
		l.logger.Warn("session load incomplete", slog.String("error", err.Error()))
		return model.SessionState{Loading: true, Authenticated: true}, nil
	case p == nil:
		return model.SessionState{Loading: true, Authenticated: true}, nil
	case !p.Role.Name.Known():
		l.logger.Info("principal has unknown role",
			slog.String("user_id", p.ID),
			slog.String("role", string(p.Role.Name)),
		)
		return model.SessionState{}, ErrUnknownRole
	}

	if l.cacheTTL > 0 {
		if payload, err := json.Marshal(p); err == nil {
			_ = l.cache.Set(ctx, key, payload, l.cacheTTL)
		}
	}
	return model.SessionState{Authenticated: true, Principal: p}, nil
}

// Forget drops the cached principal for token.
func (l *Loader) Forget(ctx context.Context, token string) {
	if token == "" {
		return
	}
	_ = l.cache.Delete(ctx, liveKey(token))
}

func (l *Loader) cached(ctx context.Context, key string) *model.Principal {
	if l.cacheTTL <= 0 {
		return nil
	}
	data, _ := l.cache.Get(ctx, key)
	if data == nil {
		return nil
	}
	var p model.Principal
	if err := json.Unmarshal(data, &p); err != nil || !p.Role.Name.Known() {
		return nil
	}
	return &p
}

// liveKey hashes the token so raw credentials never land in redis.
func liveKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return liveKeyPrefix + hex.EncodeToString(sum[:])
}
