// Package web embeds the HTML templates and static assets of the public site
// and the admin shell.
package web

import (
	"embed"
	"html/template"
	"io/fs"
	"strings"
	"time"

	"github.com/folio-space/folio/internal/models"
	"github.com/folio-space/folio/internal/pkg/markdown"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Funcs are the helpers available to every template.
var Funcs = template.FuncMap{
	"markdown": markdown.Render,
	"inline":   markdown.RenderInline,
	"excerpt":  markdown.Excerpt,
	"join": func(items models.StringArray, sep string) string {
		return items.Join(sep)
	},
	"lines": func(items models.StringArray) string {
		return items.Join("\n")
	},
	"label": func(v any) string {
		s := strings.TrimSpace(toString(v))
		if s == "" {
			return ""
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
	"year": func() int { return time.Now().Year() },
	"initials": func(name string) string {
		var out []rune
		for _, part := range strings.Fields(name) {
			out = append(out, []rune(part)[0])
			if len(out) == 2 {
				break
			}
		}
		return strings.ToUpper(string(out))
	},
	"eqs": func(a, b any) bool { return toString(a) == toString(b) },
	"dict": func(pairs ...any) map[string]any {
		m := make(map[string]any, len(pairs)/2)
		for i := 0; i+1 < len(pairs); i += 2 {
			if k, ok := pairs[i].(string); ok {
				m[k] = pairs[i+1]
			}
		}
		return m
	},
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case models.ProjectCategory:
		return string(s)
	case models.SkillCategory:
		return string(s)
	case models.TimelineType:
		return string(s)
	case nil:
		return ""
	}
	return ""
}

// Templates parses every embedded template.
func Templates() (*template.Template, error) {
	return template.New("").Funcs(Funcs).ParseFS(templateFS, "templates/*.html")
}

// MustTemplates is Templates for program start-up.
func MustTemplates() *template.Template {
	return template.Must(Templates())
}

// Static returns the asset tree served under /static/.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
