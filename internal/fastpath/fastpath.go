// Package fastpath provides pattern-matched shortcuts that invoke one
// capability directly, bypassing multi-step planning.
package fastpath

import (
	"regexp"
	"strings"
)

// Entry is a single fast-path rule: a pattern over the raw message text,
// a target capability, and either a fixed argument mapping or a function
// deriving arguments from the match.
type Entry struct {
	Pattern     *regexp.Regexp
	Capability  string
	Args        map[string]interface{}
	ArgsFunc    func(groups []string) map[string]interface{}
	Description string
}

// Match is the result of a successful fast-path scan.
type Match struct {
	Entry  Entry
	Groups []string
}

// Args returns the arguments for the matched invocation. ArgsFunc wins
// over the fixed mapping when both are set.
func (m Match) Args() map[string]interface{} {
	if m.Entry.ArgsFunc != nil {
		return m.Entry.ArgsFunc(m.Groups)
	}
	out := make(map[string]interface{}, len(m.Entry.Args))
	for k, v := range m.Entry.Args {
		out[k] = v
	}
	return out
}

// Router holds fast-path entries in registration order. It is populated
// once at startup and read-only afterwards.
type Router struct {
	entries []Entry
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{}
}

// Register appends an entry. No dedup, no validation beyond the entry's
// own well-formedness; a malformed pattern is a startup-time error caught
// when the pattern is compiled, not here.
func (r *Router) Register(e Entry) {
	r.entries = append(r.entries, e)
}

// Entries returns the registered entries in order.
func (r *Router) Entries() []Entry {
	return r.entries
}

// Match strips surrounding whitespace from the message and evaluates each
// entry's pattern in registration order. The first structurally matching
// entry wins; no scoring, no backtracking across entries. Pure scan, no
// side effects. The only failure mode is "no match".
func (r *Router) Match(message string) (Match, bool) {
	message = strings.TrimSpace(message)
	for _, e := range r.entries {
		if groups := e.Pattern.FindStringSubmatch(message); groups != nil {
			return Match{Entry: e, Groups: groups}, true
		}
	}
	return Match{}, false
}
