// Package detail is the post detail view model. A view moves from Loading to
// Found, NotFound or Error for every post ID it is given.
package detail

import (
	"context"
	"sync"

	"github.com/diamondburned/postlist/postlist"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

// ErrStale is returned by Load when the view was given another ID before the
// fetch resolved.
var ErrStale = errors.New("stale fetch discarded")

type Status uint8

const (
	Loading Status = iota
	Found
	NotFound
	Error
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "Loading"
	case Found:
		return "Found"
	case NotFound:
		return "NotFound"
	case Error:
		return "Error"
	default:
		return "Status(?)"
	}
}

// Message returns the text shown for states without a post.
func (s Status) Message() string {
	switch s {
	case Loading:
		return "Loading..."
	case NotFound:
		return "Post not found."
	case Error:
		return "Error fetching post."
	default:
		return ""
	}
}

// Fetcher fetches a single post. It returns postlist.ErrPostNotFound if no
// post has the ID.
type Fetcher interface {
	Post(ctx context.Context, id string) (postlist.Post, error)
}

// State is a snapshot of the view. Post is only set when Status is Found.
type State struct {
	Status Status
	ID     string
	Post   postlist.Post
	Err    error
}

// View holds the detail state for the current post ID.
type View struct {
	fetcher Fetcher

	mu         sync.Mutex
	state      State
	generation uint64
}

// NewView creates a view in the Loading state with no ID.
func NewView(f Fetcher) *View {
	return &View{fetcher: f}
}

// State returns the current state.
func (v *View) State() State {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Load switches the view to id and fetches it. The view is Loading until the
// fetch resolves; a fetch that resolves after a newer Load is discarded and
// returns ErrStale. The resolved state is returned otherwise.
func (v *View) Load(ctx context.Context, id string) (State, error) {
	gen := v.Begin(id)

	post, err := v.fetcher.Post(ctx, id)

	state, ok := v.Resolve(gen, post, err)
	if !ok {
		return state, ErrStale
	}

	if state.Status == Error {
		zerolog.Ctx(ctx).Warn().Err(err).Str("post", id).Msg("Error fetching post")
	}

	return state, nil
}

// Begin enters the Loading state for id and returns the generation that a
// later Resolve must match.
func (v *View) Begin(id string) uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.generation++
	v.state = State{Status: Loading, ID: id}

	return v.generation
}

// Resolve applies the result of the fetch started by Begin. It returns false
// and leaves the view untouched if gen is no longer current.
func (v *View) Resolve(gen uint64, post postlist.Post, err error) (State, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.generation {
		return v.state, false
	}

	switch {
	case err == nil:
		v.state.Status = Found
		v.state.Post = post
	case errors.Is(err, postlist.ErrPostNotFound):
		v.state.Status = NotFound
	default:
		v.state.Status = Error
		v.state.Err = err
	}

	return v.state, true
}
