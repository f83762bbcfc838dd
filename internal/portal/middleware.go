package portal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"admissions/internal/gate"
	"admissions/internal/model"
	"admissions/internal/session"
)

const stateContextKey = "portal.state"

// SessionMiddleware attaches a cookie-backed session store to every request.
func SessionMiddleware(opts session.CookieOptions) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			session.Attach(c, session.NewStore(session.NewCookieMedium(c, opts)))
			return next(c)
		}
	}
}

// EdgeFilterConfig configures EdgeFilter.
type EdgeFilterConfig struct {
	Skipper middleware.Skipper
	Routes  gate.Routes
	Logger  *slog.Logger
}

// ExcludePrefixes builds a skipper for paths under any of prefixes.
func ExcludePrefixes(prefixes []string) middleware.Skipper {
	return func(c echo.Context) bool {
		path := c.Request().URL.Path
		for _, p := range prefixes {
			if gate.HasPrefix(path, p) {
				return true
			}
		}
		return false
	}
}

// EdgeFilter decides each navigation from the request's cookies alone,
// before any page handler runs. It needs SessionMiddleware ahead of it.
func EdgeFilter(cfg EdgeFilterConfig) echo.MiddlewareFunc {
	if cfg.Skipper == nil {
		cfg.Skipper = middleware.DefaultSkipper
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "edge_filter"))

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cfg.Skipper(c) {
				return next(c)
			}
			store, ok := session.FromContext(c)
			if !ok {
				return echo.NewHTTPError(http.StatusInternalServerError, "session store missing")
			}

			snap, err := store.Snapshot()
			if err != nil {
				logger.Debug("session snapshot degraded",
					slog.String("error", err.Error()),
					slog.String("remote_addr", c.RealIP()),
				)
			}

			path := c.Request().URL.Path
			d := gate.Edge(cfg.Routes, snap, path)
			if d.Outcome == gate.Redirect {
				logger.Debug("edge redirect",
					slog.String("path", path),
					slog.String("location", d.Location),
					slog.String("reason", d.Reason),
				)
				return c.Redirect(http.StatusFound, d.Location)
			}
			return next(c)
		}
	}
}

// StateLoader resolves the live session of a request.
type StateLoader interface {
	Load(ctx context.Context, store *session.Store) (model.SessionState, error)
}

// Guards performs the post-routing checks against the live session.
type Guards struct {
	routes gate.Routes
	loader StateLoader
	facade AuthFacade
	logger *slog.Logger
}

// NewGuards creates the guard adapters.
func NewGuards(routes gate.Routes, loader StateLoader, facade AuthFacade, logger *slog.Logger) *Guards {
	if logger == nil {
		logger = slog.Default()
	}
	return &Guards{
		routes: routes,
		loader: loader,
		facade: facade,
		logger: logger.With(slog.String("component", "guard")),
	}
}

// AuthGuard lets the request through once the session has loaded and a token
// is present.
func (g *Guards) AuthGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			state, err := g.state(c)
			if err != nil {
				return err
			}
			return g.apply(c, gate.RequireAuth(g.routes, state), next)
		}
	}
}

// RoleGuard lets the request through only for the allowed roles. An empty
// fallback redirects to the applicant home.
func (g *Guards) RoleGuard(allowed []model.RoleName, fallback string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			state, err := g.state(c)
			if err != nil {
				return err
			}
			return g.apply(c, gate.RequireRole(g.routes, state, allowed, fallback), next)
		}
	}
}

// Root serves "/": after the session loads, send the user home or to login.
func (g *Guards) Root(c echo.Context) error {
	state, err := g.state(c)
	if err != nil {
		return err
	}
	return g.apply(c, gate.Root(g.routes, state), nil)
}

// state loads the live session once per request. An invalid session is
// destroyed and reported as unauthenticated.
func (g *Guards) state(c echo.Context) (model.SessionState, error) {
	if s, ok := c.Get(stateContextKey).(model.SessionState); ok {
		return s, nil
	}
	store, ok := session.FromContext(c)
	if !ok {
		return model.SessionState{}, echo.NewHTTPError(http.StatusInternalServerError, "session store missing")
	}

	ctx := c.Request().Context()
	state, err := g.loader.Load(ctx, store)
	if errors.Is(err, session.ErrInvalidSession) {
		g.logger.Info("invalid session destroyed", slog.String("reason", err.Error()))
		g.facade.Logout(ctx, store)
		state, err = model.SessionState{}, nil
	}
	if err != nil {
		return model.SessionState{}, err
	}
	c.Set(stateContextKey, state)
	return state, nil
}

func (g *Guards) apply(c echo.Context, d gate.Decision, next echo.HandlerFunc) error {
	switch d.Outcome {
	case gate.Pending:
		c.Response().Header().Set("Cache-Control", "no-store")
		return c.Render(http.StatusOK, "loading.html", pageData{Title: "Loading"})
	case gate.Redirect:
		g.logger.Debug("guard redirect",
			slog.String("path", c.Request().URL.Path),
			slog.String("location", d.Location),
			slog.String("reason", d.Reason),
		)
		return c.Redirect(http.StatusFound, d.Location)
	}
	if next == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return next(c)
}

// CurrentPrincipal returns the principal resolved by a guard for this request.
func CurrentPrincipal(c echo.Context) *model.Principal {
	s, _ := c.Get(stateContextKey).(model.SessionState)
	return s.Principal
}
