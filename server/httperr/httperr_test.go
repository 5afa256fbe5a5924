package httperr

import (
	"io"
	"testing"

	"github.com/pkg/errors"
)

var errTeapot = New(418, "teapot")

func TestErrCode(t *testing.T) {
	var tests = []struct {
		err  error
		code int
	}{
		{errTeapot, 418},
		{errors.Wrap(errTeapot, "Failed to brew"), 418},
		{Wrap(io.EOF, 400, "Failed to read"), 400},
		{io.EOF, 500},
	}

	for _, test := range tests {
		if code := ErrCode(test.err); code != test.code {
			t.Fatalf("Unexpected code for %v: %d != %d", test.err, code, test.code)
		}
	}
}

func TestWrapNil(t *testing.T) {
	if err := Wrap(nil, 400, "nothing"); err != nil {
		t.Fatal("Wrapping nil should return nil, got", err)
	}
}

func TestWrapUnwraps(t *testing.T) {
	err := Wrap(errTeapot, 503, "Failed attempt")

	if !errors.Is(err, errTeapot) {
		t.Fatal("Wrapped error does not unwrap to the sentinel.")
	}

	if ErrCode(err) != 503 {
		t.Fatal("Outer code should win, got", ErrCode(err))
	}

	if msg := err.Error(); msg != "Failed attempt: teapot" {
		t.Fatalf("Unexpected message: %q", msg)
	}
}
