package http

import (
	"net/http"

	"github.com/diamondburned/postlist/server/db"
	"github.com/diamondburned/postlist/server/http/internal/limit"
	"github.com/diamondburned/postlist/server/http/internal/middleware"
	"github.com/diamondburned/postlist/server/http/internal/tx"
	"github.com/diamondburned/postlist/server/http/post"
	"github.com/diamondburned/postlist/server/httperr"
	"github.com/go-chi/chi"
	chimw "github.com/go-chi/chi/middleware"
	"github.com/pkg/errors"
)

type HTTPConfig struct {
	// RateLimit is the number of API requests allowed per second per client.
	// Zero disables rate limiting.
	RateLimit float64 `toml:"rateLimit"`
}

func NewConfig() HTTPConfig {
	return HTTPConfig{
		RateLimit: 64,
	}
}

func (c *HTTPConfig) Validate() error {
	if c.RateLimit < 0 {
		return errors.New("`rateLimit' must not be negative")
	}
	return nil
}

var errRouteNotFound = httperr.New(404, "route not found")

type Routes struct {
	http.Handler
	mw  tx.Middleware
	cfg HTTPConfig
}

func New(db *db.Database, cfg HTTPConfig) (*Routes, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	mux := chi.NewMux()
	rts := &Routes{
		Handler: mux,
		mw:      tx.NewMiddleware(db),
		cfg:     cfg,
	}

	mux.Use(
		chimw.RealIP,
		chimw.Recoverer,
		middleware.ReadOnly,
		limit.RateLimit(cfg.RateLimit),
	)

	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		tx.RenderError(w, r, errRouteNotFound)
	})

	mux.Mount("/posts", post.Mount(rts.mw.M))

	return rts, nil
}
