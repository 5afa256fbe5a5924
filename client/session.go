package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/diamondburned/postlist/postlist"
	"github.com/pkg/errors"
)

// Session wraps a Client with the post API endpoints.
type Session struct {
	Client *Client
}

// NewSession creates a new session with the given host.
func NewSession(host string) (*Session, error) {
	c, err := NewClient(host)
	if err != nil {
		return nil, err
	}

	return NewSessionWithClient(c), nil
}

// NewSessionWithClient creates a new session with a client. Refer to
// NewSession.
func NewSessionWithClient(c *Client) *Session {
	return &Session{
		Client: c,
	}
}

func (s *Session) Endpoint(path string) string {
	return s.Client.Endpoint() + path
}

// Posts returns every post in the order the server stores them.
func (s *Session) Posts(ctx context.Context) ([]postlist.Post, error) {
	var resp postlist.PostsResponse

	if err := s.Client.Get(ctx, "/posts", &resp, nil); err != nil {
		return nil, errors.Wrap(err, "Failed to fetch posts")
	}

	return resp.Posts, nil
}

// Post returns the post with the given ID. It returns ErrPostNotFound if the
// server answers 404 or answers without a post.
func (s *Session) Post(ctx context.Context, id string) (postlist.Post, error) {
	var resp postlist.PostResponse

	err := s.Client.Get(ctx, "/posts/"+url.PathEscape(id), &resp, nil)
	if err != nil {
		if ErrGetStatusCode(err, 0) == http.StatusNotFound {
			return postlist.Post{}, postlist.ErrPostNotFound
		}
		return postlist.Post{}, errors.Wrap(err, "Failed to fetch post")
	}

	if resp.Post == nil {
		return postlist.Post{}, postlist.ErrPostNotFound
	}

	return *resp.Post, nil
}
