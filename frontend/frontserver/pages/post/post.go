// Package post is the post detail page.
package post

import (
	_ "embed"
	"net/http"
	"unicode/utf8"

	"github.com/diamondburned/postlist/frontend/frontserver/components/footer"
	"github.com/diamondburned/postlist/frontend/frontserver/components/nav"
	"github.com/diamondburned/postlist/frontend/frontserver/components/postlist"
	"github.com/diamondburned/postlist/frontend/frontserver/render"
	"github.com/diamondburned/postlist/frontend/viewmodel/detail"
)

var (
	//go:embed post.html
	html string
	//go:embed post.css
	css string
)

func init() {
	render.RegisterCSS(css)
}

var tmpl = render.BuildPage("post", render.Page{
	Template: html,
	Components: map[string]render.Component{
		"nav":    nav.Component,
		"footer": footer.Component,
	},
	Functions: map[string]interface{}{
		"avatarURL": postlist.AvatarURL,
	},
})

type renderCtx struct {
	render.CommonCtx
	State detail.State
}

func (r renderCtx) Found() bool {
	return r.State.Status == detail.Found
}

// Render renders the post named by the postId parameter.
func Render(r *render.Request) (render.Render, error) {
	v := detail.NewView(r.Session)

	state, err := v.Load(r.Context(), r.Param("postId"))
	if err != nil {
		return render.Empty, err
	}

	body, err := tmpl.Render(renderCtx{
		CommonCtx: r.CommonCtx,
		State:     state,
	})
	if err != nil {
		return render.Empty, err
	}

	var page = render.Render{Body: body}

	switch state.Status {
	case detail.Found:
		page.Title = state.Post.Title
		page.Description = ellipsize(state.Post.Summary)
	case detail.NotFound:
		page.Title = "Post not found"
		page.Status = http.StatusNotFound
	case detail.Error:
		page.Status = http.StatusBadGateway
	}

	return page, nil
}

// ellipsize cuts str to fewer than 128 runes.
func ellipsize(str string) string {
	if utf8.RuneCountInString(str) < 128 {
		return str
	}

	return string([]rune(str)[:125]) + "..."
}
