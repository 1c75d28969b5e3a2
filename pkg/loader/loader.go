// Package loader implements staged lazy loading for the large assets:
// tokenizer dictionary, coordinate table, embedding table. Each resource
// tracks its own readiness and loads at most once per session; failures
// rewind to unloaded so the next trigger retries from scratch. Nothing is
// negatively cached.
package loader

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrResourceLoad wraps any fetch/parse/validate failure during a load.
var ErrResourceLoad = errors.New("resource load failed")

// State is a resource's position in the load lifecycle.
type State int

const (
	// Unloaded: never loaded, or rewound after a failure.
	Unloaded State = iota
	// Loading: a load is in flight.
	Loading
	// Ready: loaded and validated. Terminal for the session.
	Ready
	// Failed: load error observed. Momentary; Ensure rewinds the
	// resource to Unloaded before returning so retries start clean.
	Failed
)

func (s State) String() string {
	switch s {
	case Unloaded:
		return "unloaded"
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// LoadFunc fetches, parses and validates one resource. It must either
// fully materialize the resource or leave no partial state behind.
type LoadFunc func(ctx context.Context) error

// Resource is one lazily-loaded asset.
type Resource struct {
	name string
	load LoadFunc

	mu    sync.Mutex
	state State
}

// NewResource creates an unloaded resource.
func NewResource(name string, load LoadFunc) *Resource {
	return &Resource{name: name, load: load}
}

// Name returns the resource name, used in status lines and errors.
func (r *Resource) Name() string {
	return r.name
}

// State returns the current lifecycle state.
func (r *Resource) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Ready reports whether the resource is loaded.
func (r *Resource) Ready() bool {
	return r.State() == Ready
}

// Ensure loads the resource if it is not already Ready. Idempotent: a
// Ready resource returns immediately with no fetch. The lock is held for
// the duration of a load, so a concurrent Ensure waits for the in-flight
// load and then observes its outcome instead of starting a second fetch.
func (r *Resource) Ensure(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state == Ready {
		return nil
	}

	r.state = Loading
	if err := r.load(ctx); err != nil {
		r.state = Unloaded
		// Double-wrap so callers can match both the loader sentinel and
		// the underlying cause (integrity gate, deadline).
		return fmt.Errorf("%w: %s: %w", ErrResourceLoad, r.name, err)
	}

	r.state = Ready
	return nil
}

// Group tracks a set of resources and reports a combined status line.
type Group struct {
	resources []*Resource
}

// NewGroup collects resources for combined ensure/status.
func NewGroup(resources ...*Resource) *Group {
	return &Group{resources: resources}
}

// Ensure loads every resource in order, stopping at the first failure.
func (g *Group) Ensure(ctx context.Context) error {
	for _, r := range g.resources {
		if err := r.Ensure(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Status returns "name=state" pairs for every resource, in group order.
func (g *Group) Status() map[string]string {
	out := make(map[string]string, len(g.resources))
	for _, r := range g.resources {
		out[r.Name()] = r.State().String()
	}
	return out
}
