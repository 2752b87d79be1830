// Package capability provides the capability contract and registry.
//
// A capability is the single invocable unit of behavior the dispatcher can
// run: given structured arguments plus injected ambient values, execute and
// return a result or fail. The registry owns the set of registered
// capability instances; no other component constructs them.
package capability

import (
	"context"

	"github.com/vinayprograms/butler/internal/session"
)

// Invocation carries the arguments and ambient values for one capability
// run. Session may be nil when no persistence provider is configured.
type Invocation struct {
	Args      map[string]interface{}
	ContextID string
	Session   *session.Session
}

// String returns the named argument as a string, or "" if absent.
func (inv Invocation) String(key string) string {
	s, _ := inv.Args[key].(string)
	return s
}

// Capability is an executable unit of behavior looked up by name.
type Capability interface {
	// Name returns the capability name used for registry lookup.
	Name() string
	// Description returns a human-readable description.
	Description() string
	// Run executes the capability. Failures are returned, never panicked;
	// the executor still guards against misbehaving implementations.
	Run(ctx context.Context, inv Invocation) (string, error)
}

// Lookup resolves capabilities by name. Registry and Composite both
// implement it, so callers need not care how the set is layered.
type Lookup interface {
	Get(name string) (Capability, bool)
	Available() []string
}

// Registry holds registered capabilities. It is populated once at startup
// and read-only afterwards, so concurrent reads need no locking.
type Registry struct {
	caps  map[string]Capability
	names []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{caps: make(map[string]Capability)}
}

// Register adds a capability. Registering the same name twice replaces
// the instance but keeps the original position.
func (r *Registry) Register(c Capability) {
	if _, exists := r.caps[c.Name()]; !exists {
		r.names = append(r.names, c.Name())
	}
	r.caps[c.Name()] = c
}

// Get returns a capability by name.
func (r *Registry) Get(name string) (Capability, bool) {
	c, ok := r.caps[name]
	return c, ok
}

// Available returns capability names in registration order.
func (r *Registry) Available() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Composite resolves capabilities by probing sources in priority order and
// returning the first hit. It enables context-scoped overrides without
// mutating the global registry.
type Composite struct {
	sources []Lookup
}

// NewComposite creates a composite registry. Earlier sources win.
func NewComposite(sources ...Lookup) *Composite {
	return &Composite{sources: sources}
}

// Get probes each source in order, returning the first hit.
func (c *Composite) Get(name string) (Capability, bool) {
	for _, src := range c.sources {
		if cap, ok := src.Get(name); ok {
			return cap, true
		}
	}
	return nil, false
}

// Available returns the priority-ordered union of all source names,
// without duplicates.
func (c *Composite) Available() []string {
	seen := make(map[string]bool)
	var out []string
	for _, src := range c.sources {
		for _, name := range src.Available() {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}
