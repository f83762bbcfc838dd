package session

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Medium is the key/value store session values are persisted in.
type Medium interface {
	Get(name string) (string, bool)
	Set(name, value string)
	Delete(name string)
}

// CookieOptions are the attributes applied to session cookies.
type CookieOptions struct {
	Path   string
	MaxAge time.Duration
	Secure bool
}

// CookieMedium persists values as cookies on an echo request/response pair.
// Writes are remembered so later reads within the same request observe them.
type CookieMedium struct {
	c       echo.Context
	opts    CookieOptions
	written map[string]*string
}

// NewCookieMedium binds a medium to the current request.
func NewCookieMedium(c echo.Context, opts CookieOptions) *CookieMedium {
	if opts.Path == "" {
		opts.Path = "/"
	}
	return &CookieMedium{c: c, opts: opts, written: make(map[string]*string)}
}

func (m *CookieMedium) Get(name string) (string, bool) {
	if v, ok := m.written[name]; ok {
		if v == nil {
			return "", false
		}
		return *v, true
	}
	cookie, err := m.c.Cookie(name)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	return cookie.Value, true
}

func (m *CookieMedium) Set(name, value string) {
	m.c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     m.opts.Path,
		MaxAge:   int(m.opts.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	m.written[name] = &value
}

func (m *CookieMedium) Delete(name string) {
	m.c.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     m.opts.Path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.opts.Secure,
		SameSite: http.SameSiteLaxMode,
	})
	m.written[name] = nil
}

// MapMedium is an in-memory Medium.
type MapMedium map[string]string

func (m MapMedium) Get(name string) (string, bool) {
	v, ok := m[name]
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (m MapMedium) Set(name, value string) { m[name] = value }

func (m MapMedium) Delete(name string) { delete(m, name) }
