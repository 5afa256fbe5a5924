// Package postlist contains the types shared by the API server, the client
// and the frontend.
package postlist

import (
	"net/url"

	"github.com/diamondburned/postlist/server/httperr"
)

// Category is a single category entry attached to a post. Categories carry no
// identity across posts beyond their name.
type Category struct {
	ID   string `json:"id"   db:"categoryid" yaml:"id"`
	Name string `json:"name" db:"name"       yaml:"name"`
}

// Author is the poster of a post. Avatar is optional.
type Author struct {
	Name   string `json:"name"             yaml:"name"`
	Avatar string `json:"avatar,omitempty" yaml:"avatar,omitempty"`
}

// HasAvatar returns true if the author has an avatar URL.
func (a Author) HasAvatar() bool {
	return a.Avatar != ""
}

type Post struct {
	ID          string     `json:"id"          yaml:"id"`
	Title       string     `json:"title"       yaml:"title"`
	PublishDate Date       `json:"publishDate" yaml:"publishDate"`
	Summary     string     `json:"summary"     yaml:"summary"`
	Categories  []Category `json:"categories"  yaml:"categories"`
	Author      Author     `json:"author"      yaml:"author"`
}

// HasCategory returns true if any of the post's categories is named name.
func (p Post) HasCategory(name string) bool {
	for _, cat := range p.Categories {
		if cat.Name == name {
			return true
		}
	}
	return false
}

// URL returns the frontend route of the post.
func (p Post) URL() string {
	return "/posts/" + url.PathEscape(p.ID)
}

// PostsResponse is the body of GET /posts.
type PostsResponse struct {
	Posts []Post `json:"posts"`
}

// PostResponse is the body of GET /posts/{id}. Post is nil if the server
// answered without one.
type PostResponse struct {
	Post *Post `json:"post"`
}

// ErrResponse is the body of every error answered by the API.
type ErrResponse struct {
	Error string `json:"error"`
}

var (
	ErrPostNotFound  = httperr.New(404, "Post not found.")
	ErrEmptyPostID   = httperr.New(400, "empty post ID")
	ErrDuplicatePost = httperr.New(409, "duplicate post ID")
)
