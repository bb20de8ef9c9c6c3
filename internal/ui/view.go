package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/boardadmin/boardadmin/internal/ctxkeys"
	"github.com/boardadmin/boardadmin/internal/model"
	"github.com/dustin/go-humanize"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// View is the data every page template receives
type View struct {
	Title     string
	AppName   string
	User      *model.User
	CSRFToken string
	Path      string
	Error     string
	Success   string
	Data      any
}

// NewView fills the request scoped fields from the context
func NewView(r *http.Request, title string) View {
	ctx := r.Context()
	v := View{
		Title:     title,
		User:      ctxkeys.User(ctx),
		CSRFToken: ctxkeys.CSRFToken(ctx),
		Path:      ctxkeys.URLPath(ctx),
	}
	if cfg := ctxkeys.Config(ctx); cfg != nil {
		v.AppName = cfg.AppName
	}
	if v.AppName == "" {
		v.AppName = "Board Admin"
	}
	return v
}

var funcs = template.FuncMap{
	"bytes": func(n int64) string {
		if n < 0 {
			n = 0
		}
		return humanize.Bytes(uint64(n))
	},
	"ago": humanize.Time,
	"datetime": func(t time.Time) string {
		return t.Local().Format("2006-01-02 15:04")
	},
	"comma": humanize.Comma,
}

var pages = mustParsePages()

func mustParsePages() map[string]*template.Template {
	base := template.Must(template.New("").Funcs(funcs).ParseFS(templateFS, "templates/layout.html"))

	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		panic(err)
	}

	parsed := make(map[string]*template.Template, len(files))
	for _, file := range files {
		name := strings.TrimSuffix(path.Base(file), ".html")
		if name == "layout" {
			continue
		}
		t := template.Must(base.Clone())
		parsed[name] = template.Must(t.ParseFS(templateFS, file))
	}
	return parsed
}

// Page returns the named page wrapped in the site layout
func Page(name string, v View) templ.Component {
	t, ok := pages[name]
	if !ok {
		return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
			return fmt.Errorf("unknown page %q", name)
		})
	}
	return templ.FromGoHTML(t.Lookup("layout"), v)
}

// StaticHandler serves the embedded stylesheet under /assets/
func StaticHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/assets/", http.FileServer(http.FS(sub)))
}
