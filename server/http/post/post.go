package post

import (
	"net/http"
	"strings"

	"github.com/diamondburned/postlist/postlist"
	"github.com/diamondburned/postlist/server/http/internal/tx"
	"github.com/go-chi/chi"
)

func Mount(m tx.Middlewarer) http.Handler {
	mux := chi.NewMux()
	mux.Get("/", m(ListPosts))
	mux.Get("/{id}", m(GetPost))
	return mux
}

// ListPosts answers every post in stored order. Posts are not paginated.
func ListPosts(r tx.Request) (interface{}, error) {
	p, err := r.Tx.Posts()
	if err != nil {
		return nil, err
	}

	return postlist.PostsResponse{Posts: p}, nil
}

func GetPost(r tx.Request) (interface{}, error) {
	id := strings.TrimSpace(r.Param("id"))
	if id == "" {
		return nil, postlist.ErrPostNotFound
	}

	p, err := r.Tx.Post(id)
	if err != nil {
		return nil, err
	}

	return postlist.PostResponse{Post: p}, nil
}
