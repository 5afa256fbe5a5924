package avatar

import (
	"bytes"
	"encoding/base64"
	"strings"
	"testing"

	"github.com/diamondburned/postlist/postlist"
	"github.com/disintegration/imaging"
)

func TestPlaceholder(t *testing.T) {
	p, err := Placeholder("Jane Doe")
	if err != nil {
		t.Fatal("Failed to make placeholder:", err)
	}

	if !strings.HasPrefix(p, Prefix) {
		t.Fatalf("Unexpected prefix: %.40q", p)
	}

	b, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(p, Prefix))
	if err != nil {
		t.Fatal("Invalid base64:", err)
	}

	img, err := imaging.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatal("Invalid PNG:", err)
	}

	if sz := img.Bounds().Size(); sz.X != Size || sz.Y != Size {
		t.Fatalf("Unexpected size %v", sz)
	}

	again, err := Placeholder("Jane Doe")
	if err != nil {
		t.Fatal("Failed to make placeholder again:", err)
	}

	if again != p {
		t.Fatal("Placeholder is not deterministic.")
	}
}

func TestPalette(t *testing.T) {
	if Palette("a") == Palette("b") {
		t.Fatal("Different names have the same palette.")
	}

	for _, c := range Palette("someone") {
		if c.A != 0xFF || c.R < 0x80 || c.G < 0x80 || c.B < 0x80 {
			t.Fatalf("Color out of range: %v", c)
		}
	}
}

func TestURL(t *testing.T) {
	const avatar = "https://example.com/a.png"

	if u := URL(postlist.Author{Name: "A", Avatar: avatar}); u != avatar {
		t.Fatalf("Avatar not kept: %q", u)
	}

	if u := URL(postlist.Author{Name: "A"}); !strings.HasPrefix(u, Prefix) {
		t.Fatalf("No placeholder for missing avatar: %.40q", u)
	}
}
