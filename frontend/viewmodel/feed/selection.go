package feed

import "net/url"

// CategoryParam is the repeatable query parameter holding the selection.
const CategoryParam = "category"

// Selection is the ordered list of active category names. An empty selection
// means no filter.
type Selection []string

// Has returns true if name is selected.
func (s Selection) Has(name string) bool {
	for _, sel := range s {
		if sel == name {
			return true
		}
	}
	return false
}

// IsEmpty returns true if nothing is selected.
func (s Selection) IsEmpty() bool {
	return len(s) == 0
}

// Toggled returns a copy of the selection with name removed if it was
// selected, or appended if it was not.
func (s Selection) Toggled(name string) Selection {
	if s.Has(name) {
		var out = make(Selection, 0, len(s)-1)
		for _, sel := range s {
			if sel != name {
				out = append(out, sel)
			}
		}
		return out
	}

	var out = make(Selection, len(s), len(s)+1)
	copy(out, s)
	return append(out, name)
}

// Query is the route state the selection is read from and written to. The view
// never caches the selection; Query is the single source of truth.
type Query interface {
	Selection() Selection
	SetSelection(Selection)
}

// URLQuery is a Query backed by URL query values.
type URLQuery struct {
	Values url.Values
}

var _ Query = (*URLQuery)(nil)

// NewURLQuery wraps a copy of v.
func NewURLQuery(v url.Values) *URLQuery {
	var cpy = make(url.Values, len(v))
	for k, vs := range v {
		cpy[k] = append([]string(nil), vs...)
	}
	return &URLQuery{cpy}
}

func (q *URLQuery) Selection() Selection {
	return Selection(q.Values[CategoryParam])
}

// SetSelection replaces the category parameters. Other parameters are kept.
func (q *URLQuery) SetSelection(s Selection) {
	if s.IsEmpty() {
		q.Values.Del(CategoryParam)
		return
	}
	q.Values[CategoryParam] = append([]string(nil), s...)
}

// Encode encodes the query for a URL.
func (q *URLQuery) Encode() string {
	return q.Values.Encode()
}
