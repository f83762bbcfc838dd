package portal

import (
	"log/slog"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"admissions/internal/gate"
	"admissions/internal/logging"
	"admissions/internal/model"
	"admissions/internal/session"
)

// RouterConfig carries what Register needs besides the handlers.
type RouterConfig struct {
	Routes         gate.Routes
	Cookies        session.CookieOptions
	FilterExclude  []string
	BackendOrigin  *url.URL
	Logger         *slog.Logger
	RequestLogging bool
}

// Register wires middleware and routes.
func Register(e *echo.Echo, cfg RouterConfig, renderer echo.Renderer, guards *Guards, pages *Pages) {
	e.Renderer = renderer

	e.Use(middleware.RequestID())
	if cfg.RequestLogging {
		e.Use(logging.RequestLogger(cfg.Logger))
	}
	e.Use(middleware.Recover())
	e.Use(SessionMiddleware(cfg.Cookies))
	e.Use(EdgeFilter(EdgeFilterConfig{
		Skipper: ExcludePrefixes(cfg.FilterExclude),
		Routes:  cfg.Routes,
		Logger:  cfg.Logger,
	}))

	e.GET("/healthz", pages.Health)
	e.StaticFS("/static", StaticFS())

	if cfg.BackendOrigin != nil {
		api := e.Group("/api")
		api.Use(middleware.ProxyWithConfig(middleware.ProxyConfig{
			Balancer: middleware.NewRoundRobinBalancer([]*middleware.ProxyTarget{{URL: cfg.BackendOrigin}}),
		}))
	}

	e.GET("/", guards.Root)

	// Public
	e.GET("/login", pages.LoginForm)
	e.POST("/login", pages.Login)
	e.GET("/register", pages.RegisterForm)
	e.POST("/register", pages.Register)
	e.GET("/logout", pages.Logout)
	e.POST("/logout", pages.Logout)

	// Authenticated, no role restriction
	e.GET("/settings", pages.Placeholder("Settings", "Account settings are managed by the admissions office."), guards.AuthGuard())

	// Applicant area
	applicant := []echo.MiddlewareFunc{
		guards.AuthGuard(),
		guards.RoleGuard([]model.RoleName{model.RoleApplicant}, cfg.Routes.StaffHome),
	}
	applicantPages := map[string]echo.HandlerFunc{
		cfg.Routes.ApplicantHome: pages.Dashboard,
		"/profile":               pages.Profile,
		"/programs":              pages.Programs,
		"/applications":          pages.Placeholder("Applications", "Your submitted applications appear here."),
		"/payments":              pages.Placeholder("Payments", "Application fee receipts appear here."),
	}
	for _, path := range cfg.Routes.Applicant {
		h, ok := applicantPages[path]
		if !ok {
			h = pages.Placeholder(pageTitle(path), "")
		}
		e.GET(path, h, applicant...)
	}

	// Staff area
	staff := e.Group(cfg.Routes.StaffHome, guards.AuthGuard(), guards.RoleGuard(model.StaffRoles, ""))
	staff.GET("", pages.Admin)
	staff.GET("/announcements", pages.AdminAnnouncements)
}

// pageTitle turns "/open-days" into "Open days".
func pageTitle(path string) string {
	name := strings.ReplaceAll(strings.Trim(path, "/"), "-", " ")
	if name == "" {
		return "Portal"
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
