package frontserver

import (
	"net/http"
	"time"

	"github.com/c2h5oh/datasize"
	"github.com/diamondburned/duration"
	"github.com/diamondburned/postlist/client"
	"github.com/diamondburned/postlist/frontend/frontserver/pages/errorpage"
	"github.com/diamondburned/postlist/frontend/frontserver/pages/home"
	"github.com/diamondburned/postlist/frontend/frontserver/pages/post"
	"github.com/diamondburned/postlist/frontend/frontserver/render"
	"github.com/diamondburned/postlist/frontend/viewmodel/views"
	"github.com/diamondburned/postlist/server/httperr"
	"github.com/pkg/errors"
)

type FrontConfig struct {
	render.Config
	ViewLifespan string `toml:"viewLifespan"`
	MaxViews     int    `toml:"maxViews"`
	MaxFormSize  string `toml:"maxFormSize"`

	viewLifespan time.Duration
	maxFormSize  datasize.ByteSize
}

func NewConfig() FrontConfig {
	return FrontConfig{
		Config:       render.NewConfig(),
		ViewLifespan: "30m",
		MaxViews:     views.DefaultMaxViews,
		MaxFormSize:  "64KB",
	}
}

func (c *FrontConfig) Validate() error {
	if err := c.Config.Validate(); err != nil {
		return err
	}

	d, err := duration.ParseDuration(c.ViewLifespan)
	if err != nil {
		return errors.Wrap(err, "invalid view lifespan")
	}
	if d <= 0 {
		return errors.New("view lifespan must be positive")
	}
	c.viewLifespan = time.Duration(d)

	if c.MaxViews <= 0 {
		return errors.New("max views must be positive")
	}

	if err := c.maxFormSize.UnmarshalText([]byte(c.MaxFormSize)); err != nil {
		return errors.Wrap(err, "invalid max form size")
	}

	return nil
}

// Frontend is the server-rendered frontend.
type Frontend struct {
	*render.Mux
	Home *home.Page
}

// New creates the frontend. serverHost is the base URL of the server hosting
// the API under /api.
func New(serverHost string, cfg FrontConfig) (*Frontend, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Fail early, since the host is used for every request.
	if _, err := client.NewClient(serverHost); err != nil {
		return nil, errors.Wrap(err, "invalid backend address")
	}

	h, err := home.New(cfg.viewLifespan, cfg.MaxViews, cfg.maxFormSize)
	if err != nil {
		return nil, err
	}

	r := render.NewMux(serverHost, cfg.Config)
	r.SetErrorRenderer(errorpage.RenderError)
	r.Get("/", h.Render)
	r.Mount("/feed", h.Mount)
	r.Get("/posts/{postId}", post.Render)
	r.NotFound(r.M(func(*render.Request) (render.Render, error) {
		return render.Empty, errNotFound
	}))

	return &Frontend{r, h}, nil
}

var errNotFound = httperr.New(http.StatusNotFound, "page not found")
