package errorpage

import (
	"testing"

	"github.com/diamondburned/postlist/postlist"
	"github.com/go-test/deep"
	"github.com/pkg/errors"
)

func TestSplitError(t *testing.T) {
	var tests = []struct {
		err    error
		expect [][]string
	}{
		{
			errors.New("page not found"),
			[][]string{{"Page not found."}},
		},
		{
			postlist.ErrPostNotFound,
			[][]string{{"Post not found."}},
		},
		{
			errors.Wrap(postlist.ErrPostNotFound, "failed to get post"),
			[][]string{{"Failed to get post: ", "Post not found."}},
		},
	}

	for _, test := range tests {
		if eq := deep.Equal(SplitError(test.err), test.expect); eq != nil {
			t.Fatalf("Unexpected split of %q: %v", test.err, eq)
		}
	}
}
