package render

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"github.com/diamondburned/postlist/client"
	"github.com/go-chi/chi"
	chimw "github.com/go-chi/chi/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/hlog"
)

// Renderer represents a renderable page.
type Renderer = func(r *Request) (Render, error)

// ErrorRenderer represents a renderable page for errors.
type ErrorRenderer = func(r *Request, err error) (Render, error)

type Render struct {
	Title       string // og:title, <title>
	Description string // og:description

	// Status is the HTTP status code to write. Zero means 200.
	Status int

	Body template.HTML
}

// Empty is a blank page. Renderers that already wrote the response, such as
// redirects, return this.
var Empty = Render{}

type Config struct {
	SiteName string `toml:"siteName"`
}

func NewConfig() Config {
	return Config{
		SiteName: "My PostList",
	}
}

func (c *Config) Validate() error {
	if c.SiteName == "" {
		return errors.New("siteName is empty")
	}
	return nil
}

type renderCtx struct {
	Render Render
	Config Config
}

func (r renderCtx) FormatTitle() string {
	if r.Render.Title == "" {
		return r.Config.SiteName
	}
	return fmt.Sprintf("%s - %s", r.Render.Title, r.Config.SiteName)
}

type Request struct {
	*http.Request
	Writer http.ResponseWriter
	CommonCtx
}

func (r *Request) Param(name string) string {
	return unescapeParam(r.Request, chi.URLParam(r.Request, name))
}

// unescapeParam unescapes v if chi routed on the escaped path, which it does
// whenever the path has escapes like %2F that Path alone cannot express.
func unescapeParam(r *http.Request, v string) string {
	if r.URL.RawPath == "" {
		return v
	}
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

// Redirect redirects the client with 303 See Other, which turns a form POST
// into a GET.
func (r *Request) Redirect(url string) {
	http.Redirect(r.Writer, r.Request, url, http.StatusSeeOther)
}

type CommonCtx struct {
	Config  Config
	Request *http.Request
	Session *client.Session
}

type Mux struct {
	*chi.Mux
	host string
	cfg  Config
	errR ErrorRenderer
}

func NewMux(serverHost string, cfg Config) *Mux {
	ensureInit()

	r := chi.NewMux()
	r.Use(chimw.RealIP)
	r.Route("/static", func(r chi.Router) {
		r.Get("/style.css", componentsCSSHandler)
	})

	return &Mux{r, serverHost, cfg, nil}
}

func (m *Mux) SetErrorRenderer(r ErrorRenderer) {
	m.errR = r
}

func (m *Mux) NewRequest(w http.ResponseWriter, r *http.Request) *Request {
	c, err := client.NewClientFromRequest(m.host, r)
	if err != nil {
		// Host is validated on startup, so this should never happen.
		panic(fmt.Sprintf("Error making client: %v", err))
	}

	return &Request{
		Request: r,
		Writer:  w,
		CommonCtx: CommonCtx{
			Config:  m.cfg,
			Request: r,
			Session: client.NewSessionWithClient(c),
		},
	}
}

// M is the middleware wrapper.
func (m *Mux) M(render Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Write the proper headers.
		w.Header().Set("Content-Type", "text/html; charset=utf-8")

		var request = m.NewRequest(w, r)

		page, err := render(request)
		if err != nil {
			// Copy the status code if available. Else, fallback to 500.
			var code = client.ErrGetStatusCode(err, 500)

			// If there is no error renderer, then we just write the error down
			// in plain text.
			if m.errR == nil {
				w.WriteHeader(code)
				fmt.Fprintf(w, "Error: %v", err)
				return
			}

			// Render the error page.
			page, err = m.errR(request, err)
			if err != nil {
				// This shouldn't error out, so we should log it.
				hlog.FromRequest(r).Error().Err(err).Msg("Error rendering error page")
				w.WriteHeader(code)
				return
			}

			page.Status = code
		}

		// Don't render anything if an empty page is returned and there is no
		// error.
		if page == Empty {
			return
		}

		b, err := renderIndex(renderCtx{
			Render: page,
			Config: m.cfg,
		})
		if err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("Error executing index")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		if page.Status != 0 {
			w.WriteHeader(page.Status)
		}

		w.Write(b)
	}
}

func (m *Mux) Get(route string, r Renderer) {
	m.Mux.Get(route, m.M(r))
}

func (m *Mux) Post(route string, r Renderer) {
	m.Mux.Post(route, m.M(r))
}

// Muxer implements the interface that's passable to pages' mount functions.
type Muxer interface {
	M(Renderer) http.HandlerFunc
}

func (m *Mux) Mount(route string, mounter func(Muxer) http.Handler) {
	m.Mux.Mount(route, mounter(m))
}
