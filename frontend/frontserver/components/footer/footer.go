package footer

import (
	_ "embed"

	"github.com/diamondburned/postlist/frontend/frontserver/render"
)

var (
	//go:embed footer.html
	html string
	//go:embed footer.css
	css string
)

func init() {
	render.RegisterCSS(css)
}

var Component = render.Component{
	Template: html,
}
