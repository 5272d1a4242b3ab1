package events

import (
	"strings"
	"sync"
)

// DefaultLogLimit is the number of firings remembered per event kind.
const DefaultLogLimit = 64

// Result tells the registry how to continue after a handler ran.
type Result int

const (
	// Continue lets dispatch and replay go on.
	Continue Result = iota
	// Stop ends the replay of past firings for the handler being registered.
	Stop
	// Preempt ends live dispatch and reports the firing as preempted, so the
	// caller skips its default behavior.
	Preempt
)

// Handler receives the arguments of a firing.
type Handler func(args ...any) Result

// Registry keeps handlers per event kind and a bounded log of past firings
// that late handlers replay on registration.
type Registry struct {
	mu       sync.Mutex
	limit    int
	handlers map[string][]Handler
	log      map[string][][]any
}

// NewRegistry creates a registry remembering up to limit firings per kind.
// A non-positive limit selects DefaultLogLimit.
func NewRegistry(limit int) *Registry {
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	return &Registry{
		limit:    limit,
		handlers: make(map[string][]Handler),
		log:      make(map[string][][]any),
	}
}

func normalize(kind string) string {
	return strings.ToLower(kind)
}

// On registers a handler and replays the remembered firings of the kind in
// order. A handler returning Stop ends its replay.
func (r *Registry) On(kind string, h Handler) {
	kind = normalize(kind)

	r.mu.Lock()
	r.handlers[kind] = append(r.handlers[kind], h)
	past := append([][]any(nil), r.log[kind]...)
	r.mu.Unlock()

	for _, args := range past {
		if h(args...) == Stop {
			break
		}
	}
}

// Fire records a firing and dispatches it to the registered handlers in
// registration order. It reports whether a handler preempted the event.
func (r *Registry) Fire(kind string, args ...any) bool {
	kind = normalize(kind)

	r.mu.Lock()
	entries := append(r.log[kind], args)
	if len(entries) > r.limit {
		entries = entries[len(entries)-r.limit:]
	}
	r.log[kind] = entries
	handlers := append([]Handler(nil), r.handlers[kind]...)
	r.mu.Unlock()

	for _, h := range handlers {
		if h(args...) == Preempt {
			return true
		}
	}
	return false
}

// History returns the remembered firings of a kind, oldest first.
func (r *Registry) History(kind string) [][]any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]any(nil), r.log[normalize(kind)]...)
}
