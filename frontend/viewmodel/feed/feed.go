// Package feed is the home feed view model: it fetches every post once, derives
// the categories, and exposes the filtered and windowed slice of posts to
// render.
package feed

import (
	"context"
	"sort"
	"sync"

	"github.com/diamondburned/postlist/postlist"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const (
	// InitialWindow is the number of posts shown after mounting.
	InitialWindow = 5
	// WindowStep is how many more posts each LoadMore shows.
	WindowStep = 5
)

// ErrStale is returned by Load when a newer Load was issued before this one
// resolved. The stale result is discarded.
var ErrStale = errors.New("stale load discarded")

// Lister fetches every post.
type Lister interface {
	Posts(ctx context.Context) ([]postlist.Post, error)
}

// View is the state of a mounted home feed. It is safe for concurrent use.
type View struct {
	lister Lister

	mu         sync.Mutex
	posts      []postlist.Post
	categories []string
	window     int
	loaded     bool
	loadErr    error
	generation uint64
}

// NewView creates an unloaded view.
func NewView(l Lister) *View {
	return &View{
		lister: l,
		window: InitialWindow,
	}
}

// Load fetches every post, sorts them newest first and derives the
// categories. On failure the view degrades to an empty feed, the error is
// logged and kept for LoadErr.
func (v *View) Load(ctx context.Context) error {
	gen := v.begin()

	posts, err := v.lister.Posts(ctx)
	if err != nil {
		err = errors.Wrap(err, "Failed to load feed")
	}

	if !v.resolve(gen, posts, err) {
		return ErrStale
	}

	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Error fetching posts")
	}

	return err
}

func (v *View) begin() uint64 {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.generation++
	return v.generation
}

func (v *View) resolve(gen uint64, posts []postlist.Post, err error) bool {
	v.mu.Lock()
	defer v.mu.Unlock()

	if gen != v.generation {
		return false
	}

	v.loaded = true
	v.loadErr = err

	if err != nil {
		v.posts = nil
		v.categories = nil
		return true
	}

	v.posts = SortPosts(posts)
	v.categories = Categories(v.posts)
	return true
}

// LoadErr returns the error of the last resolved Load, if any.
func (v *View) LoadErr() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loadErr
}

// Posts returns all loaded posts, newest first.
func (v *View) Posts() []postlist.Post {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.posts
}

// Categories returns the unique category names in order of first occurrence.
func (v *View) Categories() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.categories
}

// Window returns the number of filtered posts currently shown.
func (v *View) Window() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.window
}

// LoadMore grows the window. Filtering never shrinks it back.
func (v *View) LoadMore() {
	v.mu.Lock()
	v.window += WindowStep
	v.mu.Unlock()
}

// ToggleCategory adds or removes name from the selection stored in q. The
// window is untouched.
func (v *View) ToggleCategory(q Query, name string) {
	q.SetSelection(q.Selection().Toggled(name))
}

// ResetFilters clears the selection stored in q.
func (v *View) ResetFilters(q Query) {
	q.SetSelection(nil)
}

// Filtered returns the posts matching the selection in q, newest first.
func (v *View) Filtered(q Query) []postlist.Post {
	v.mu.Lock()
	defer v.mu.Unlock()
	return Filter(v.posts, q.Selection())
}

// VisiblePosts returns the filtered posts cut to the window.
func (v *View) VisiblePosts(q Query) []postlist.Post {
	return v.State(q).Visible
}

// HasMore returns true while the window is smaller than the filtered count.
func (v *View) HasMore(q Query) bool {
	return v.State(q).HasMore
}

// State is a consistent snapshot of the view for rendering.
type State struct {
	Categories    []string
	Selection     Selection
	Visible       []postlist.Post
	FilteredCount int
	Window        int
	HasMore       bool
	Loaded        bool
	Err           error
}

// State snapshots the view with the selection currently in q.
func (v *View) State(q Query) State {
	sel := q.Selection()

	v.mu.Lock()
	defer v.mu.Unlock()

	filtered := Filter(v.posts, sel)

	return State{
		Categories:    v.categories,
		Selection:     sel,
		Visible:       Take(filtered, v.window),
		FilteredCount: len(filtered),
		Window:        v.window,
		HasMore:       v.window < len(filtered),
		Loaded:        v.loaded,
		Err:           v.loadErr,
	}
}

// SortPosts returns a copy of posts sorted by publish date, newest first.
// Posts with equal dates keep their relative order.
func SortPosts(posts []postlist.Post) []postlist.Post {
	var sorted = make([]postlist.Post, len(posts))
	copy(sorted, posts)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PublishDate.After(sorted[j].PublishDate)
	})

	return sorted
}

// Categories returns every unique category name across posts, in order of
// first occurrence.
func Categories(posts []postlist.Post) []string {
	var seen = map[string]struct{}{}
	var names []string

	for _, post := range posts {
		for _, cat := range post.Categories {
			if _, ok := seen[cat.Name]; ok {
				continue
			}
			seen[cat.Name] = struct{}{}
			names = append(names, cat.Name)
		}
	}

	return names
}

// Filter returns the posts with at least one category in the selection, or
// all posts if the selection is empty. Order is kept.
func Filter(posts []postlist.Post, sel Selection) []postlist.Post {
	if sel.IsEmpty() {
		return posts
	}

	var filtered = make([]postlist.Post, 0, len(posts))

	for _, post := range posts {
		for _, name := range sel {
			if post.HasCategory(name) {
				filtered = append(filtered, post)
				break
			}
		}
	}

	return filtered
}

// Take returns at most the first n posts.
func Take(posts []postlist.Post, n int) []postlist.Post {
	if n < len(posts) {
		return posts[:n]
	}
	return posts
}
