package feed

import (
	"context"
	"fmt"
	"net/url"
	"testing"

	"github.com/diamondburned/postlist/postlist"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listerFunc func(ctx context.Context) ([]postlist.Post, error)

func (f listerFunc) Posts(ctx context.Context) ([]postlist.Post, error) {
	return f(ctx)
}

func staticLister(posts ...postlist.Post) Lister {
	return listerFunc(func(context.Context) ([]postlist.Post, error) {
		return posts, nil
	})
}

func post(id, date string, cats ...string) postlist.Post {
	var categories = make([]postlist.Category, len(cats))
	for i, cat := range cats {
		categories[i] = postlist.Category{ID: cat, Name: cat}
	}

	return postlist.Post{
		ID:          id,
		Title:       "Post " + id,
		PublishDate: postlist.MustDate(date),
		Categories:  categories,
		Author:      postlist.Author{Name: "Author " + id},
	}
}

func ids(posts []postlist.Post) []string {
	var out = make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

var examplePosts = []postlist.Post{
	post("p1", "2024-01-02", "Tech"),
	post("p2", "2024-01-05", "Life"),
	post("p3", "2024-01-01", "Tech", "Life"),
}

func loadedView(t *testing.T, posts ...postlist.Post) *View {
	t.Helper()

	v := NewView(staticLister(posts...))
	require.NoError(t, v.Load(context.Background()))

	return v
}

func TestExample(t *testing.T) {
	v := loadedView(t, examplePosts...)
	q := NewURLQuery(nil)

	assert.Equal(t, []string{"p2", "p1", "p3"}, ids(v.VisiblePosts(q)))

	v.ToggleCategory(q, "Tech")
	assert.Equal(t, []string{"p1", "p3"}, ids(v.VisiblePosts(q)))
}

func TestSortStable(t *testing.T) {
	v := loadedView(t,
		post("a", "2024-01-01"),
		post("b", "2024-02-01"),
		post("c", "2024-01-01"),
		post("d", "2024-02-01"),
		post("e", "2024-01-01"),
	)

	assert.Equal(t, []string{"b", "d", "a", "c", "e"}, ids(v.Posts()))
}

func TestSortDoesNotMutateInput(t *testing.T) {
	in := []postlist.Post{post("a", "2024-01-01"), post("b", "2024-02-01")}
	SortPosts(in)
	assert.Equal(t, []string{"a", "b"}, ids(in))
}

func TestSortZeroDateLast(t *testing.T) {
	undated := post("u", "2024-01-01")
	undated.PublishDate = postlist.Date{}

	v := loadedView(t, undated, post("a", "2023-01-01"))
	assert.Equal(t, []string{"a", "u"}, ids(v.Posts()))
}

func TestCategories(t *testing.T) {
	v := loadedView(t,
		post("a", "2024-01-03", "Go", "Life"),
		post("b", "2024-01-02", "Life", "Food"),
		post("c", "2024-01-01", "Go"),
	)

	assert.Equal(t, []string{"Go", "Life", "Food"}, v.Categories())
}

func TestCategoriesFollowSortedOrder(t *testing.T) {
	// The older post comes first in storage but its category is derived after
	// the newer post's.
	v := loadedView(t,
		post("old", "2023-01-01", "Old"),
		post("new", "2024-01-01", "New"),
	)

	assert.Equal(t, []string{"New", "Old"}, v.Categories())
}

func TestFilter(t *testing.T) {
	v := loadedView(t, examplePosts...)

	var tests = []struct {
		sel    Selection
		expect []string
	}{
		{nil, []string{"p2", "p1", "p3"}},
		{Selection{"Tech"}, []string{"p1", "p3"}},
		{Selection{"Life"}, []string{"p2", "p3"}},
		{Selection{"Life", "Tech"}, []string{"p2", "p1", "p3"}},
		{Selection{"Nothing"}, []string{}},
		{Selection{"tech"}, []string{}},
	}

	for _, test := range tests {
		t.Run(fmt.Sprint(test.sel), func(t *testing.T) {
			q := NewURLQuery(url.Values{CategoryParam: test.sel})
			assert.Equal(t, test.expect, ids(v.Filtered(q)))
		})
	}
}

func TestWindow(t *testing.T) {
	var posts []postlist.Post
	for i := 0; i < 12; i++ {
		posts = append(posts, post(fmt.Sprint(i), fmt.Sprintf("2024-01-%02d", 28-i)))
	}

	v := loadedView(t, posts...)
	q := NewURLQuery(nil)

	assert.Equal(t, InitialWindow, v.Window())
	assert.Len(t, v.VisiblePosts(q), 5)
	assert.True(t, v.HasMore(q))

	v.LoadMore()
	assert.Equal(t, 10, v.Window())
	assert.Len(t, v.VisiblePosts(q), 10)
	assert.True(t, v.HasMore(q))

	v.LoadMore()
	assert.Equal(t, 15, v.Window())
	assert.Len(t, v.VisiblePosts(q), 12)
	assert.False(t, v.HasMore(q))

	// Growing past the end is harmless.
	v.LoadMore()
	assert.Equal(t, 20, v.Window())
	assert.Equal(t, ids(posts), ids(v.VisiblePosts(q)))
}

func TestHasMoreExactFit(t *testing.T) {
	var posts []postlist.Post
	for i := 0; i < InitialWindow; i++ {
		posts = append(posts, post(fmt.Sprint(i), "2024-01-01"))
	}

	v := loadedView(t, posts...)
	assert.False(t, v.HasMore(NewURLQuery(nil)))
}

func TestFilterKeepsWindow(t *testing.T) {
	var posts []postlist.Post
	for i := 0; i < 20; i++ {
		cat := "Even"
		if i%2 == 1 {
			cat = "Odd"
		}
		posts = append(posts, post(fmt.Sprint(i), fmt.Sprintf("2024-01-%02d", 28-i), cat))
	}

	v := loadedView(t, posts...)
	q := NewURLQuery(nil)

	v.LoadMore()
	require.Equal(t, 10, v.Window())

	v.ToggleCategory(q, "Odd")
	assert.Equal(t, 10, v.Window())
	assert.Len(t, v.VisiblePosts(q), 10)
	assert.False(t, v.HasMore(q))

	v.ToggleCategory(q, "Odd")
	assert.Equal(t, 10, v.Window())
	assert.True(t, v.HasMore(q))
}

func TestToggleCategory(t *testing.T) {
	v := loadedView(t, examplePosts...)
	q := NewURLQuery(url.Values{"v": {"123"}})

	v.ToggleCategory(q, "Tech")
	v.ToggleCategory(q, "Life")
	assert.Equal(t, Selection{"Tech", "Life"}, q.Selection())

	v.ToggleCategory(q, "Tech")
	assert.Equal(t, Selection{"Life"}, q.Selection())

	// Unrelated parameters survive.
	assert.Equal(t, "123", q.Values.Get("v"))
	assert.Equal(t, "category=Life&v=123", q.Encode())
}

func TestResetFilters(t *testing.T) {
	v := loadedView(t, examplePosts...)
	q := NewURLQuery(url.Values{CategoryParam: {"Tech", "Life"}})

	v.ResetFilters(q)
	assert.True(t, q.Selection().IsEmpty())
	assert.Equal(t, ids(v.Posts()), ids(v.Filtered(q)))
	_, ok := q.Values[CategoryParam]
	assert.False(t, ok)
}

func TestLoadFailure(t *testing.T) {
	errBoom := errors.New("boom")

	v := NewView(listerFunc(func(context.Context) ([]postlist.Post, error) {
		return nil, errBoom
	}))

	err := v.Load(context.Background())
	assert.True(t, errors.Is(err, errBoom))

	s := v.State(NewURLQuery(nil))
	assert.True(t, s.Loaded)
	assert.Error(t, s.Err)
	assert.Empty(t, s.Visible)
	assert.Empty(t, s.Categories)
	assert.False(t, s.HasMore)
}

func TestLoadFailureClearsPreviousPosts(t *testing.T) {
	var fail bool

	v := NewView(listerFunc(func(context.Context) ([]postlist.Post, error) {
		if fail {
			return nil, errors.New("boom")
		}
		return examplePosts, nil
	}))

	require.NoError(t, v.Load(context.Background()))
	require.Len(t, v.Posts(), 3)

	fail = true
	assert.Error(t, v.Load(context.Background()))
	assert.Empty(t, v.Posts())
	assert.Empty(t, v.Categories())
}

func TestStaleLoadDiscarded(t *testing.T) {
	var (
		release = make(chan struct{})
		started = make(chan struct{})
		calls   int
	)

	v := NewView(listerFunc(func(context.Context) ([]postlist.Post, error) {
		calls++
		if calls == 1 {
			close(started)
			<-release
			return []postlist.Post{post("stale", "2024-01-01")}, nil
		}
		return []postlist.Post{post("fresh", "2024-01-01")}, nil
	}))

	done := make(chan error)
	go func() { done <- v.Load(context.Background()) }()

	<-started
	require.NoError(t, v.Load(context.Background()))
	close(release)

	assert.True(t, errors.Is(<-done, ErrStale))
	assert.Equal(t, []string{"fresh"}, ids(v.Posts()))
}

func TestUnloaded(t *testing.T) {
	v := NewView(staticLister())
	s := v.State(NewURLQuery(nil))

	assert.False(t, s.Loaded)
	assert.Empty(t, s.Visible)
	assert.Equal(t, InitialWindow, s.Window)
}
