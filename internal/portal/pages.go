package portal

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "admissions/internal/errors"
	"admissions/internal/gate"
	"admissions/internal/model"
	"admissions/internal/session"
)

const unavailableNotice = "This information is temporarily unavailable."

// Directory is the read-only backend data the pages show.
type Directory interface {
	Announcements(ctx context.Context, token string) ([]model.Announcement, error)
	Programs(ctx context.Context, token string) ([]model.Program, error)
}

// Pages holds the page handlers.
type Pages struct {
	routes    gate.Routes
	facade    AuthFacade
	directory Directory
	logger    *slog.Logger
}

// NewPages creates the page handlers.
func NewPages(routes gate.Routes, facade AuthFacade, directory Directory, logger *slog.Logger) *Pages {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pages{
		routes:    routes,
		facade:    facade,
		directory: directory,
		logger:    logger.With(slog.String("component", "pages")),
	}
}

// Health reports liveness and whether an authentication call is pending.
func (p *Pages) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":       "ok",
		"auth_pending": p.facade.InFlight(),
	})
}

// LoginForm renders the sign-in form.
func (p *Pages) LoginForm(c echo.Context) error {
	data := pageData{Title: "Sign in"}
	if c.QueryParam("registered") == "1" {
		data.Notice = "Registration complete. You can now sign in."
	}
	return c.Render(http.StatusOK, "login.html", data)
}

// Login submits the sign-in form.
func (p *Pages) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	store, err := storeOf(c)
	if err != nil {
		return err
	}
	principal, err := p.facade.Login(c.Request().Context(), store, req)
	if err != nil {
		var authErr *apperrors.AuthenticationError
		if errors.As(err, &authErr) {
			return c.Render(http.StatusUnauthorized, "login.html", pageData{
				Title: "Sign in",
				Error: authErr.Message,
				Email: req.Email,
			})
		}
		return err
	}
	return c.Redirect(http.StatusSeeOther, p.routes.Home(principal))
}

// RegisterForm renders the registration form.
func (p *Pages) RegisterForm(c echo.Context) error {
	return c.Render(http.StatusOK, "register.html", pageData{Title: "Register"})
}

// Register submits the registration form. Success does not sign the user in.
func (p *Pages) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if _, err := p.facade.Register(c.Request().Context(), req); err != nil {
		var vErr *apperrors.ValidationError
		if errors.As(err, &vErr) {
			return c.Render(http.StatusUnprocessableEntity, "register.html", pageData{
				Title:    "Register",
				Error:    vErr.Message,
				Field:    vErr.Field,
				Email:    req.Email,
				FullName: req.FullName,
			})
		}
		return err
	}
	return c.Redirect(http.StatusSeeOther, p.routes.Login+"?registered=1")
}

// Logout clears the session and returns to the login page.
func (p *Pages) Logout(c echo.Context) error {
	store, err := storeOf(c)
	if err != nil {
		return err
	}
	p.facade.Logout(c.Request().Context(), store)
	return c.Redirect(http.StatusSeeOther, p.routes.Login)
}

// Dashboard shows the applicant's announcements.
func (p *Pages) Dashboard(c echo.Context) error {
	data := pageData{Title: "Dashboard", Principal: CurrentPrincipal(c)}
	items, err := p.directory.Announcements(c.Request().Context(), tokenOf(c))
	if err != nil {
		p.logger.Warn("load announcements", slog.String("error", err.Error()))
		data.Notice = unavailableNotice
	}
	data.Announcements = items
	return c.Render(http.StatusOK, "dashboard.html", data)
}

// Profile shows the signed-in principal.
func (p *Pages) Profile(c echo.Context) error {
	return c.Render(http.StatusOK, "profile.html", pageData{Title: "Profile", Principal: CurrentPrincipal(c)})
}

// Programs lists programmes with their application fees.
func (p *Pages) Programs(c echo.Context) error {
	data := pageData{Title: "Programs", Principal: CurrentPrincipal(c)}
	items, err := p.directory.Programs(c.Request().Context(), tokenOf(c))
	if err != nil {
		p.logger.Warn("load programs", slog.String("error", err.Error()))
		data.Notice = unavailableNotice
	}
	data.Programs = items
	return c.Render(http.StatusOK, "programs.html", data)
}

// Placeholder renders a page whose content lives in the backend UI.
func (p *Pages) Placeholder(title, notice string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.Render(http.StatusOK, "page.html", pageData{
			Title:     title,
			Notice:    notice,
			Principal: CurrentPrincipal(c),
		})
	}
}

// Admin is the staff landing page.
func (p *Pages) Admin(c echo.Context) error {
	return c.Render(http.StatusOK, "admin.html", pageData{Title: "Staff area", Principal: CurrentPrincipal(c)})
}

// AdminAnnouncements lists all announcements for staff.
func (p *Pages) AdminAnnouncements(c echo.Context) error {
	data := pageData{Title: "Announcements", Principal: CurrentPrincipal(c)}
	items, err := p.directory.Announcements(c.Request().Context(), tokenOf(c))
	if err != nil {
		p.logger.Warn("load announcements", slog.String("error", err.Error()))
		data.Notice = unavailableNotice
	}
	data.Announcements = items
	return c.Render(http.StatusOK, "announcements.html", data)
}

func storeOf(c echo.Context) (*session.Store, error) {
	store, ok := session.FromContext(c)
	if !ok {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "session store missing")
	}
	return store, nil
}

func tokenOf(c echo.Context) string {
	if store, ok := session.FromContext(c); ok {
		return store.Token()
	}
	return ""
}
