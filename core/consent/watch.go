package consent

// EventKind names a notification.
type EventKind string

const (
	// EventConsents fires whenever the consent mapping changes; data is the mapping.
	EventConsents EventKind = "consents"
	// EventSave fires after a save; data is a SaveEvent.
	EventSave EventKind = "saveConsents"
	// EventApply fires after an apply pass; data is an ApplyEvent.
	EventApply EventKind = "applyConsents"
)

// SaveEvent is the payload of EventSave.
type SaveEvent struct {
	// Changes holds the consents that differ from the previous save.
	Changes  map[string]bool `json:"changes"`
	Consents map[string]bool `json:"consents"`
	Type     string          `json:"type"`
}

// ApplyEvent is the payload of EventApply.
type ApplyEvent struct {
	Changed int `json:"changed"`
	// Service is set when the pass was limited to one service.
	Service string `json:"service,omitempty"`
}

// Watcher receives notifications from a Manager. Implementations must be
// comparable (usually a pointer) since watchers are kept as a set.
type Watcher interface {
	Update(m *Manager, kind EventKind, data any)
}

// Watch registers a watcher. Registering the same watcher twice has no effect.
func (m *Manager) Watch(w Watcher) {
	for _, existing := range m.watchers {
		if existing == w {
			return
		}
	}
	m.watchers = append(m.watchers, w)
}

// Unwatch removes a watcher.
func (m *Manager) Unwatch(w Watcher) {
	for i, existing := range m.watchers {
		if existing == w {
			m.watchers = append(m.watchers[:i], m.watchers[i+1:]...)
			return
		}
	}
}

func (m *Manager) notify(kind EventKind, data any) {
	// watchers may unwatch themselves while being notified
	watchers := append([]Watcher(nil), m.watchers...)
	for _, w := range watchers {
		w.Update(m, kind, data)
	}
}
