// Package views keeps mounted views alive between requests. Each view is keyed
// by a snowflake ID. A registry holds at most a fixed number of views, evicting
// the least recently used one when full, and never returns a view that has
// been idle for longer than its lifespan.
package views

import (
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/golang/groupcache/lru"
	"github.com/pkg/errors"
)

// DefaultLifespan is the idle time after which a view is evicted.
const DefaultLifespan = 30 * time.Minute

// DefaultMaxViews is the number of views a registry holds by default.
const DefaultMaxViews = 1000

type entry[T any] struct {
	view     T
	lastUsed time.Time
}

// Registry holds mounted views of type T. It is safe for concurrent use.
type Registry[T any] struct {
	// Now is the clock used for expiry. It defaults to time.Now.
	Now func() time.Time

	node     *snowflake.Node
	lifespan time.Duration

	mu    sync.Mutex
	views *lru.Cache // snowflake.ID -> *entry[T]
}

// NewRegistry creates a registry whose views expire after lifespan of
// inactivity and which holds at most max views. Zero values use
// DefaultLifespan and DefaultMaxViews.
func NewRegistry[T any](lifespan time.Duration, max int) (*Registry[T], error) {
	if lifespan <= 0 {
		lifespan = DefaultLifespan
	}
	if max <= 0 {
		max = DefaultMaxViews
	}

	n, err := snowflake.NewNode(0)
	if err != nil {
		return nil, errors.Wrap(err, "Failed to create snowflake node")
	}

	return &Registry[T]{
		Now:      time.Now,
		node:     n,
		lifespan: lifespan,
		views:    lru.New(max),
	}, nil
}

// Mount stores view under a new ID and returns that ID. If the registry is
// full, the least recently used view is dropped.
func (r *Registry[T]) Mount(view T) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.node.Generate()
	r.views.Add(id, &entry[T]{view: view, lastUsed: r.Now()})

	return id.String()
}

// Get returns the view with the given ID and marks it as used. It returns
// false if the ID is malformed, unknown or expired.
func (r *Registry[T]) Get(id string) (T, bool) {
	var zero T

	sf, err := snowflake.ParseString(id)
	if err != nil {
		return zero, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	v, ok := r.views.Get(sf)
	if !ok {
		return zero, false
	}

	e := v.(*entry[T])
	now := r.Now()

	if now.Sub(e.lastUsed) > r.lifespan {
		r.views.Remove(sf)
		return zero, false
	}

	e.lastUsed = now
	return e.view, true
}

// Len returns the number of views held. Idle views are only dropped once they
// are looked up or pushed out by newer ones.
func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.views.Len()
}
