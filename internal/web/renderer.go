package web

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/nadlan-invest/portal/internal/core/domain"
)

// Page is the data every page template receives.
type Page struct {
	Locale domain.Locale
	// Path is the request path without the locale prefix, used by the
	// language switcher.
	Path  string
	Title string
	User  *domain.User
	Role  domain.Role
	// Error is a form error code passed back through the query string.
	Error    string
	Redirect string
	Data     any
}

// Dir returns the text direction of the page locale.
func (p Page) Dir() string { return p.Locale.Direction() }

// Renderer executes a page template inside the shared layout. Each page is
// parsed into its own template set so that pages can all define "content".
type Renderer struct {
	pages map[string]*template.Template
	log   zerolog.Logger
}

// NewRenderer parses the embedded templates.
func NewRenderer(log zerolog.Logger) (*Renderer, error) {
	return newRenderer(templateFS, log)
}

func newRenderer(fsys fs.FS, log zerolog.Logger) (*Renderer, error) {
	base, err := template.New("layout").Funcs(funcs()).ParseFS(fsys, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}

	files, err := fs.Glob(fsys, "templates/pages/*.html")
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New("no page templates")
	}

	r := &Renderer{pages: make(map[string]*template.Template, len(files)), log: log}
	for _, f := range files {
		t, err := template.Must(base.Clone()).ParseFS(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", f, err)
		}
		r.pages[strings.TrimSuffix(path.Base(f), ".html")] = t
	}
	return r, nil
}

// Render satisfies echo.Renderer. name is the page file name without
// extension, e.g. "sign-in".
func (r *Renderer) Render(w io.Writer, name string, data any, _ echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("unknown page %q", name)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		r.log.Error().Err(err).Str("page", name).Msg("template execution failed")
		return err
	}
	_, err := buf.WriteTo(w)
	return err
}

func funcs() template.FuncMap {
	return template.FuncMap{
		"t": Translate,
		"otherLocale": func(l domain.Locale) domain.Locale {
			if l == domain.LocaleHebrew {
				return domain.LocaleEnglish
			}
			return domain.LocaleHebrew
		},
		"money": func(amount float64, currency string) string {
			return fmt.Sprintf("%s %.0f", currency, amount)
		},
	}
}
