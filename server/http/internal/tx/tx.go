// Package tx wraps API handlers so that each request runs inside a database
// transaction and renders its result as JSON.
package tx

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/diamondburned/postlist/postlist"
	"github.com/diamondburned/postlist/server/db"
	"github.com/diamondburned/postlist/server/httperr"
	"github.com/go-chi/chi"
	"github.com/rs/zerolog/hlog"
)

type Request struct {
	*http.Request
	Tx *db.Transaction
}

// Param is a helper function that returns a URL parameter from chi. chi routes
// on the escaped path when there is one, so the parameter is unescaped then.
func (r Request) Param(s string) string {
	v := chi.URLParam(r.Request, s)
	if r.URL.RawPath == "" {
		return v
	}
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

// Handler is the function signature for transaction handlers. Render could be
// Renderer.
type Handler = func(Request) (render interface{}, err error)

// Renderer is a possible return type for Handler's render.
type Renderer = func(w http.ResponseWriter) error

// Middlewarer is the interface for the transaction middleware.
type Middlewarer = func(Handler) http.HandlerFunc

type Middleware struct {
	db *db.Database
}

var _ Middlewarer = (Middleware{}).M

func NewMiddleware(db *db.Database) Middleware {
	return Middleware{db: db}
}

func (m Middleware) M(h Handler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var v interface{}

		err := m.db.Acquire(r.Context(), func(tx *db.Transaction) (err error) {
			v, err = h(Request{r, tx})
			return
		})

		if err != nil {
			RenderError(w, r, err)
			return
		}

		render(w, r, v)
	}
}

func render(w http.ResponseWriter, r *http.Request, v interface{}) {
	if v == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if fn, ok := v.(Renderer); ok {
		if err := fn(w); err != nil {
			RenderError(w, r, err)
		}
		return
	}

	// Headers must be set before WriteHeader.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Encode failed")
	}
}

func RenderError(w http.ResponseWriter, r *http.Request, err error) {
	code := httperr.ErrCode(err)

	if code >= 500 {
		hlog.FromRequest(r).Error().Err(err).Int("code", code).Msg("API error")
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	var jsonError = postlist.ErrResponse{
		Error: err.Error(),
	}

	if err := json.NewEncoder(w).Encode(jsonError); err != nil {
		hlog.FromRequest(r).Warn().Err(err).Msg("Encode failed")
	}
}
