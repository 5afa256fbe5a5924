// Package home is the home feed page. The feed is mounted on the first visit
// and kept in a registry, so the load more window survives the redirects that
// follow every action.
package home

import (
	_ "embed"
	"net/http"
	"net/url"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/diamondburned/postlist/frontend/frontserver/components/catfilter"
	"github.com/diamondburned/postlist/frontend/frontserver/components/errbox"
	"github.com/diamondburned/postlist/frontend/frontserver/components/footer"
	"github.com/diamondburned/postlist/frontend/frontserver/components/nav"
	"github.com/diamondburned/postlist/frontend/frontserver/components/postlist"
	"github.com/diamondburned/postlist/frontend/frontserver/render"
	"github.com/diamondburned/postlist/frontend/viewmodel/feed"
	"github.com/diamondburned/postlist/frontend/viewmodel/views"
	"github.com/diamondburned/postlist/server/httperr"
	"github.com/go-chi/chi"
	"github.com/gorilla/schema"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ViewParam is the query parameter holding the mounted view's ID.
const ViewParam = "v"

var (
	//go:embed home.html
	html string
	//go:embed home.css
	css string
)

func init() {
	render.RegisterCSS(css)
}

var tmpl = render.BuildPage("home", render.Page{
	Template: html,
	Components: map[string]render.Component{
		"nav":       nav.Component,
		"footer":    footer.Component,
		"errbox":    errbox.Component,
		"catfilter": catfilter.Component,
		"postlist":  postlist.Component,
	},
})

var decoder = func() *schema.Decoder {
	d := schema.NewDecoder()
	d.IgnoreUnknownKeys(true)
	return d
}()

var ErrUnknownAction = httperr.New(404, "unknown feed action")

// mount is a mounted home page.
type mount struct {
	Feed   *feed.View
	Filter *catfilter.Control
}

// Page serves the home feed and its actions.
type Page struct {
	views       *views.Registry[*mount]
	maxFormSize datasize.ByteSize
}

// New creates the home page. Mounted feeds idle for longer than lifespan are
// dropped, as are the least recently used ones past maxViews. Action forms
// larger than maxFormSize are rejected.
func New(lifespan time.Duration, maxViews int, maxFormSize datasize.ByteSize) (*Page, error) {
	r, err := views.NewRegistry[*mount](lifespan, maxViews)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create view registry")
	}

	return &Page{
		views:       r,
		maxFormSize: maxFormSize,
	}, nil
}

// Mounted returns the number of live feeds.
func (p *Page) Mounted() int {
	return p.views.Len()
}

// Mount mounts the feed actions.
func (p *Page) Mount(muxer render.Muxer) http.Handler {
	mux := chi.NewMux()
	mux.Post("/{action}", muxer.M(p.action))
	return mux
}

// lookup returns the feed the query refers to. A missing or expired feed is
// mounted anew, and the query is updated with the new ID.
func (p *Page) lookup(r *render.Request, q *feed.URLQuery) *mount {
	if m, ok := p.views.Get(q.Values.Get(ViewParam)); ok {
		return m
	}

	m := &mount{
		Feed:   feed.NewView(r.Session),
		Filter: &catfilter.Control{},
	}

	// Load failures are kept in the feed state and shown as a banner.
	m.Feed.Load(r.Context())

	id := p.views.Mount(m)
	q.Values.Set(ViewParam, id)

	zerolog.Ctx(r.Context()).Debug().Str("view", id).Msg("Mounted feed")

	return m
}

type renderCtx struct {
	render.CommonCtx
	State  feed.State
	Filter catfilter.Data
	Form   catfilter.Form
	Error  errbox.Data
}

// Render renders the feed.
func (p *Page) Render(r *render.Request) (render.Render, error) {
	var q = feed.NewURLQuery(r.URL.Query())
	var m = p.lookup(r, q)

	var state = m.Feed.State(q)
	var form = catfilter.Form{
		ViewID:    q.Values.Get(ViewParam),
		Selection: state.Selection,
	}

	body, err := tmpl.Render(renderCtx{
		CommonCtx: r.CommonCtx,
		State:     state,
		Filter:    m.Filter.Data(state.Categories, state.Selection, form),
		Form:      form,
		Error: errbox.Data{
			Title: "Error fetching posts.",
			Err:   state.Err,
		},
	})
	if err != nil {
		return render.Empty, err
	}

	return render.Render{
		Body: body,
	}, nil
}

type actionForm struct {
	View     string   `schema:"v"`
	Category []string `schema:"category"`
	Name     string   `schema:"name"`
}

func (p *Page) action(r *render.Request) (render.Render, error) {
	if p.maxFormSize > 0 {
		r.Body = http.MaxBytesReader(r.Writer, r.Body, int64(p.maxFormSize))
	}

	if err := r.ParseForm(); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return render.Empty, httperr.Wrap(err, 413, "Form too large")
		}
		return render.Empty, httperr.Wrap(err, 400, "Failed to parse form")
	}

	var form actionForm
	if err := decoder.Decode(&form, r.PostForm); err != nil {
		return render.Empty, httperr.Wrap(err, 400, "Failed to decode form")
	}

	var q = feed.NewURLQuery(url.Values{ViewParam: {form.View}})
	q.SetSelection(form.Category)

	var action = r.Param("action")

	switch action {
	case "filters", "toggle", "reset", "more":
	default:
		return render.Empty, ErrUnknownAction
	}

	var m = p.lookup(r, q)

	switch action {
	case "filters":
		m.Filter.ToggleVisibility()
	case "toggle":
		if form.Name == "" {
			return render.Empty, httperr.New(400, "missing category name")
		}
		m.Filter.Select(form.Name, func(name string) { m.Feed.ToggleCategory(q, name) })
	case "reset":
		m.Filter.Reset(func() { m.Feed.ResetFilters(q) })
	case "more":
		m.Feed.LoadMore()
	}

	r.Redirect("/?" + q.Encode())
	return render.Empty, nil
}
