package nav

import (
	_ "embed"

	"github.com/diamondburned/postlist/frontend/frontserver/render"
)

var (
	//go:embed nav.html
	html string
	//go:embed nav.css
	css string
)

func init() {
	render.RegisterCSS(css)
}

var Component = render.Component{
	Template: html,
}
