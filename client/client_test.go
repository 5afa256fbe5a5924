package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/diamondburned/postlist/postlist"
	"github.com/diamondburned/postlist/server"
	"github.com/go-chi/chi"
	"github.com/pkg/errors"
)

func newTestSession(t *testing.T, h http.Handler) *Session {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	s, err := NewSession(srv.URL)
	if err != nil {
		t.Fatal("Failed to create session:", err)
	}

	return s
}

func newAPISession(t *testing.T) *Session {
	t.Helper()

	cfg := server.NewConfig()
	cfg.RateLimit = 0

	a, err := server.New(cfg)
	if err != nil {
		t.Fatal("Failed to create API:", err)
	}
	t.Cleanup(func() { a.Close() })

	mux := chi.NewMux()
	mux.Mount("/api", a)

	return newTestSession(t, mux)
}

func TestSessionPosts(t *testing.T) {
	s := newAPISession(t)

	p, err := s.Posts(context.Background())
	if err != nil {
		t.Fatal("Failed to get posts:", err)
	}

	if len(p) == 0 {
		t.Fatal("No posts returned.")
	}
}

func TestSessionPost(t *testing.T) {
	s := newAPISession(t)

	t.Run("Found", func(t *testing.T) {
		p, err := s.Post(context.Background(), "1")
		if err != nil {
			t.Fatal("Failed to get post:", err)
		}
		if p.ID != "1" {
			t.Fatalf("Unexpected post ID %q", p.ID)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := s.Post(context.Background(), "missing")
		if !errors.Is(err, postlist.ErrPostNotFound) {
			t.Fatal("Unexpected error:", err)
		}
	})
}

func TestSessionPostNoBody(t *testing.T) {
	s := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))

	_, err := s.Post(context.Background(), "p1")
	if !errors.Is(err, postlist.ErrPostNotFound) {
		t.Fatal("A response without a post should be not found, got", err)
	}
}

func TestUnexpectedStatusCode(t *testing.T) {
	s := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`{"error":"upstream gone"}`))
	}))

	_, err := s.Posts(context.Background())
	if err == nil {
		t.Fatal("Expected error.")
	}

	var unexp ErrUnexpectedStatusCode
	if !errors.As(err, &unexp) {
		t.Fatalf("Unexpected error type %T: %v", err, err)
	}

	if unexp.Code != http.StatusBadGateway || unexp.ErrMsg != "upstream gone" {
		t.Fatalf("Unexpected error contents: %#v", unexp)
	}

	if code := ErrGetStatusCode(err, 0); code != http.StatusBadGateway {
		t.Fatal("Unexpected status code:", code)
	}
}

func TestUnexpectedStatusCodeBody(t *testing.T) {
	err := ErrUnexpectedStatusCode{Code: 500, Body: "oops"}
	if s := err.Error(); s != "Unexpected status code 500, body: oops" {
		t.Fatalf("Unexpected error string %q", s)
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	s, err := NewSession(srv.URL)
	if err != nil {
		t.Fatal("Failed to create session:", err)
	}

	_, err = s.Post(context.Background(), "p1")
	if err == nil || errors.Is(err, postlist.ErrPostNotFound) {
		t.Fatal("Expected a transport error, got", err)
	}
}

func TestUserAgent(t *testing.T) {
	var got string

	s := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.UserAgent()
		w.Write([]byte(`{"posts":[]}`))
	}))

	s.Client.SetUserAgent("GoTest/1.0")

	if _, err := s.Posts(context.Background()); err != nil {
		t.Fatal("Failed to get posts:", err)
	}

	if got != "GoTest/1.0" {
		t.Fatalf("Unexpected user agent %q", got)
	}
}

func TestNewClientInvalid(t *testing.T) {
	if _, err := NewClient("localhost"); err == nil {
		t.Fatal("Expected a host without scheme to fail.")
	}
}

func TestForwardedFor(t *testing.T) {
	var got string

	s := newTestSession(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("X-Forwarded-For")
		w.Write([]byte(`{"posts":[]}`))
	}))

	var tests = []struct {
		addr string
		want string
	}{
		{"203.0.113.7:51234", "203.0.113.7"},
		{"[2001:db8::1]:443", "2001:db8::1"},
		{"198.51.100.2", "198.51.100.2"},
	}

	for _, test := range tests {
		s.Client.SetForwardedFor(test.addr)

		if _, err := s.Posts(context.Background()); err != nil {
			t.Fatal("Failed to get posts:", err)
		}

		if got != test.want {
			t.Fatalf("Unexpected X-Forwarded-For for %q: %q", test.addr, got)
		}
	}
}

func TestNewClientFromRequest(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.10:4000"
	r.Header.Set("User-Agent", "GoTest/2.0")

	c, err := NewClientFromRequest("http://localhost", r)
	if err != nil {
		t.Fatal("Failed to create client:", err)
	}

	if c.agent != "GoTest/2.0" || c.forwardedFor != "192.0.2.10" {
		t.Fatalf("Unexpected client fields: %q, %q", c.agent, c.forwardedFor)
	}
}
