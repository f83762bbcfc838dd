package portal

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"admissions/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// StaticFS returns the embedded static assets rooted at static/.
func StaticFS() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// pageData is what every template receives.
type pageData struct {
	Title     string
	Principal *model.Principal
	Error     string
	Field     string
	Notice    string
	Email     string
	FullName  string

	Announcements []model.Announcement
	Programs      []model.Program
}

// Renderer renders page templates inside the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

var funcs = template.FuncMap{
	"fee": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"roleLabel": func(r model.RoleName) string {
		switch r {
		case model.RoleApplicant:
			return "Applicant"
		case model.RoleAdmissionOfficer:
			return "Admission officer"
		case model.RoleAdmin:
			return "Administrator"
		default:
			return "Unknown"
		}
	},
}

// NewRenderer parses every page against the layout.
func NewRenderer() (*Renderer, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, name := range names {
		base := path.Base(name)
		if base == "layout.html" {
			continue
		}
		t, err := template.New(base).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", base, err)
		}
		r.pages[base] = t
	}
	return r, nil
}

// Render implements echo.Renderer.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
