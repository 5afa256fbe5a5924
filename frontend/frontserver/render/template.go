package render

import (
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/diamondburned/postlist/postlist"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/tdewolff/minify"
	"github.com/tdewolff/minify/css"
	"github.com/tdewolff/minify/html"
)

//go:embed index.html
var indexHTML string

//go:embed base.css
var baseCSS string

// runtime minifier
var minifier = func() (minifier *minify.M) {
	minifier = minify.New()
	minifier.AddFunc("text/css", css.Minify)
	minifier.AddFunc("text/html", html.Minify)
	return
}()

var globalFns = template.FuncMap{
	// htmlTime formats the date for the datetime attribute of <time>.
	"htmlTime": func(d postlist.Date) string {
		return d.String()
	},
	// formatDate formats the date the way it is shown to readers.
	"formatDate": FormatDate,
	"humanizeTime": func(d postlist.Date) string {
		if d.IsZero() {
			return ""
		}
		return humanize.Time(d.Time)
	},
}

// FormatDate formats a publish date as a short calendar date. The zero date
// formats to an empty string.
func FormatDate(d postlist.Date) string {
	if d.IsZero() {
		return ""
	}
	return d.Format("1/2/2006")
}

// Component is a template snippet. Template holds the template text, which is
// defined under the name the component is registered with.
type Component struct {
	Template   string
	Components map[string]Component
	Functions  template.FuncMap
}

type Page struct {
	Template   string
	Components map[string]Component
	Functions  template.FuncMap
}

// prepareList is the list of templates to call prepare on.
var prepareList []*Template

func prepareAllTemplates() {
	for _, tmpl := range prepareList {
		tmpl.prepare()
	}
}

func BuildPage(n string, p Page) *Template {
	tmpl := &Template{
		name: n,
		page: p,
	}

	prepareList = append(prepareList, tmpl)

	return tmpl
}

type Template struct {
	*template.Template
	name string
	page Page
	once sync.Once
}

func (t *Template) prepare() {
	t.once.Do(t.do)
}

func (t *Template) do() {
	var components = map[string]Component{}
	collectComponents(components, t.page.Components)

	var funcs = template.FuncMap{}
	for n, fn := range t.page.Functions {
		funcs[n] = fn
	}

	// Combine all function duplicates.
	for _, component := range components {
		for n, fn := range component.Functions {
			// Only set into the map if we don't already have the function.
			if _, ok := funcs[n]; !ok {
				funcs[n] = fn
			}
		}
	}

	tmpl := template.New(t.name)
	tmpl = tmpl.Funcs(globalFns)
	tmpl = tmpl.Funcs(funcs)
	tmpl = template.Must(tmpl.Parse(t.page.Template))

	// Parse all components' HTMLs.
	for n, component := range components {
		tmpl = template.Must(tmpl.Parse(
			fmt.Sprintf("{{ define %q }}%s{{ end }}", n, component.Template),
		))
	}

	t.Template = tmpl
}

// collectComponents flattens nested components into dst.
func collectComponents(dst, src map[string]Component) {
	for n, component := range src {
		dst[n] = component
		if component.Components != nil {
			collectComponents(dst, component.Components)
		}
	}
}

// Render renders the template with the given argument into HTML.
func (t *Template) Render(v interface{}) (template.HTML, error) {
	t.prepare()

	var b bytes.Buffer

	if err := t.Execute(&b, v); err != nil {
		return "", errors.Wrapf(err, "Failed to render %s", t.name)
	}

	return template.HTML(b.String()), nil
}

var (
	componentsCSSs   = []string{baseCSS}
	componentsCSS    = bytes.Buffer{}
	componentModTime = time.Time{}
)

// RegisterCSS adds the stylesheet to the global stylesheet, which is served
// at /static/style.css.
func RegisterCSS(css string) {
	componentsCSSs = append(componentsCSSs, css)
}

func initializeCSS() {
	componentModTime = time.Now()

	for _, src := range componentsCSSs {
		if err := minifier.Minify("text/css", &componentsCSS, strings.NewReader(src)); err != nil {
			log.Panic().Err(err).Msg("Failed to minify CSS")
		}
	}
}

func componentsCSSHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css; charset=utf-8")

	http.ServeContent(
		w, r, "style.css", componentModTime,
		bytes.NewReader(componentsCSS.Bytes()),
	)
}

// renderIndex renders the page into the index layout and minifies the result.
func renderIndex(ctx renderCtx) ([]byte, error) {
	var page bytes.Buffer
	if err := index.Execute(&page, ctx); err != nil {
		return nil, errors.Wrap(err, "Failed to render index")
	}

	var out bytes.Buffer
	if err := minifier.Minify("text/html", &out, &page); err != nil {
		return nil, errors.Wrap(err, "Failed to minify page")
	}

	return out.Bytes(), nil
}

var initOnce sync.Once
var index *template.Template

func ensureInit() {
	initOnce.Do(func() {
		index = template.Must(template.New("index").Parse(indexHTML))

		initializeCSS()
		prepareAllTemplates()
	})
}
