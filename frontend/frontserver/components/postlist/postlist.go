// Package postlist renders post summaries as cards. Each card links to the
// post's detail page.
package postlist

import (
	_ "embed"
	"html/template"

	"github.com/diamondburned/postlist/frontend/frontserver/internal/avatar"
	"github.com/diamondburned/postlist/frontend/frontserver/render"
	"github.com/diamondburned/postlist/postlist"
)

var (
	//go:embed postlist.html
	html string
	//go:embed postlist.css
	css string
)

func init() {
	render.RegisterCSS(css)
}

// Component renders the []postlist.Post it is given, or a notice if there are
// none.
var Component = render.Component{
	Template: html,
	Functions: map[string]interface{}{
		"avatarURL": AvatarURL,
	},
}

// AvatarURL returns the author's avatar for use in a src attribute. Authors
// without one get a generated placeholder.
func AvatarURL(a postlist.Author) interface{} {
	if a.HasAvatar() {
		// Let the template sanitize URLs from the dataset.
		return a.Avatar
	}
	// Placeholders are data URIs, which html/template rejects unless trusted.
	return template.URL(avatar.URL(a))
}
