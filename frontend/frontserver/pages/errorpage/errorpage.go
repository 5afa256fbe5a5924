package errorpage

import (
	_ "embed"
	"net/http"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/diamondburned/postlist/client"
	"github.com/diamondburned/postlist/frontend/frontserver/components/footer"
	"github.com/diamondburned/postlist/frontend/frontserver/components/nav"
	"github.com/diamondburned/postlist/frontend/frontserver/render"
	"github.com/rs/zerolog/hlog"
)

var (
	//go:embed errorpage.html
	html string
	//go:embed errorpage.css
	css string
)

func init() {
	render.RegisterCSS(css)
}

var tmpl = render.BuildPage("errorpage", render.Page{
	Template: html,
	Components: map[string]render.Component{
		"nav":    nav.Component,
		"footer": footer.Component,
	},
})

type renderCtx struct {
	render.CommonCtx
	Code   int
	Status string
	Errors [][]string
}

func RenderError(r *render.Request, err error) (render.Render, error) {
	var code = client.ErrGetStatusCode(err, 500)
	if code >= 500 {
		hlog.FromRequest(r.Request).Error().Err(err).Msg("Error rendering page")
	}

	body, err := tmpl.Render(renderCtx{
		CommonCtx: r.CommonCtx,
		Code:      code,
		Status:    http.StatusText(code),
		Errors:    SplitError(err),
	})
	if err != nil {
		return render.Empty, err
	}

	return render.Render{
		Title: http.StatusText(code),
		Body:  body,
	}, nil
}

// SplitError splits the error message into lines of wrapped parts, each
// capitalized, with a period at the end of every line.
func SplitError(err error) [][]string {
	var lines = strings.Split(err.Error(), "\n")
	var errors = make([][]string, len(lines))

	for i, line := range lines {
		var parts = strings.SplitAfter(line, ": ")

		// Capitalize every single error's first letter.
		for i, err := range parts {
			f, sze := utf8.DecodeRune([]byte(err))
			if sze > 0 {
				f = unicode.ToUpper(f)
				parts[i] = string(f) + err[sze:]
			}

			// Append a period at the end for formality.
			if i == len(parts)-1 && !strings.HasSuffix(parts[i], ".") {
				parts[i] += "."
			}
		}

		errors[i] = parts
	}

	return errors
}
