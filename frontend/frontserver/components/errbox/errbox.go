package errbox

import (
	_ "embed"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/diamondburned/postlist/frontend/frontserver/render"
)

var (
	//go:embed errbox.html
	html string
	//go:embed errbox.css
	css string
)

func init() {
	render.RegisterCSS(css)
}

var Component = render.Component{
	Template: html,
	Functions: map[string]interface{}{
		"minifyError": MinifyError,
	},
}

// MinifyError returns the innermost part of a wrapped error message,
// capitalized and with a trailing period.
func MinifyError(err error) string {
	var errmsg = err.Error()
	var parts = strings.Split(errmsg, ": ")
	if len(parts) == 0 {
		return ""
	}

	var part = parts[len(parts)-1]
	// Capitalize the first letter.
	f, sz := utf8.DecodeRune([]byte(part))
	if sz > 0 {
		f = unicode.ToUpper(f)
		part = string(f) + part[sz:]
	}

	if !strings.HasSuffix(part, ".") {
		part += "."
	}

	return part
}

// Data is the argument of the errbox template.
type Data struct {
	Title string
	Err   error
}
