// Package avatar generates placeholder avatars for authors without one. A
// placeholder is a small gradient whose colors are derived from the author's
// name, inlined as a PNG data URI.
package avatar

import (
	"bytes"
	"encoding/base64"
	"hash/fnv"
	"image/color"
	"sync"

	"github.com/diamondburned/postlist/postlist"
	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

const Size = 50
const Prefix = "data:image/png;base64,"

var cache sync.Map // name -> string

// URL returns the author's avatar, or a placeholder if they have none.
func URL(a postlist.Author) string {
	if a.HasAvatar() {
		return a.Avatar
	}

	p, err := Placeholder(a.Name)
	if err != nil {
		return ""
	}

	return p
}

// Placeholder returns the placeholder data URI for the given name. The same
// name always yields the same image.
func Placeholder(name string) (string, error) {
	if v, ok := cache.Load(name); ok {
		return v.(string), nil
	}

	var corners = Palette(name)

	// Draw a 2x2 image from the corner colors and let the resampler blend them
	// into a gradient.
	img := imaging.New(2, 2, corners[0])
	img.Set(1, 0, corners[1])
	img.Set(0, 1, corners[2])
	img.Set(1, 1, corners[3])

	img = imaging.Resize(img, Size, Size, imaging.Linear)

	var b bytes.Buffer

	if err := imaging.Encode(&b, img, imaging.PNG); err != nil {
		return "", errors.Wrap(err, "Failed to encode PNG")
	}

	uri := Prefix + base64.StdEncoding.EncodeToString(b.Bytes())
	cache.Store(name, uri)

	return uri, nil
}

// Palette derives four opaque colors from the name.
func Palette(name string) [4]color.NRGBA {
	h := fnv.New64a()
	h.Write([]byte(name))
	sum := h.Sum64()

	var colors [4]color.NRGBA
	for i := range colors {
		// Take 12 bits per color and keep every channel in the upper half so
		// the gradient stays readable on a dark background.
		bits := sum >> (i * 12)
		colors[i] = color.NRGBA{
			R: 0x80 | uint8(bits&0xF)<<3,
			G: 0x80 | uint8(bits>>4&0xF)<<3,
			B: 0x80 | uint8(bits>>8&0xF)<<3,
			A: 0xFF,
		}
	}

	return colors
}
