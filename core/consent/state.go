package consent

import (
	"context"
	"fmt"
	"maps"

	"consent-manager/core/catalog"

	"go.uber.org/zap"
)

// DefaultConsent resolves default, then required, then the global default.
func (m *Manager) DefaultConsent(svc *catalog.Service) bool {
	if svc.Default != nil {
		return *svc.Default
	}
	if svc.Required != nil {
		return *svc.Required
	}
	return m.config.Default
}

// DefaultConsents returns the default consent of every service.
func (m *Manager) DefaultConsents() map[string]bool {
	consents := make(map[string]bool, len(m.config.Services))
	for i := range m.config.Services {
		svc := &m.config.Services[i]
		if _, ok := consents[svc.Name]; ok {
			continue
		}
		consents[svc.Name] = m.DefaultConsent(svc)
	}
	return consents
}

// GetConsent returns the stored consent of a service; unknown names read false.
func (m *Manager) GetConsent(name string) bool {
	return m.consents[name]
}

// UpdateConsent stores a consent and reports whether it changed. Watchers are
// notified even when the value is unchanged.
func (m *Manager) UpdateConsent(name string, value bool) bool {
	changed := m.consents[name] != value
	m.consents[name] = value
	m.notify(EventConsents, m.Consents())
	return changed
}

// ChangeAll sets every service that is not contextual-only. Required services
// are always set to true. It returns how many stored values changed.
func (m *Manager) ChangeAll(value bool) int {
	changed := 0
	for i := range m.config.Services {
		svc := &m.config.Services[i]
		if svc.ContextualConsentOnly {
			continue
		}
		target := value || m.config.Required || (svc.Required != nil && *svc.Required)
		if m.UpdateConsent(svc.Name, target) {
			changed++
		}
	}
	return changed
}

// ResetConsents restores the defaults, forgets activation and lifecycle
// state, re-applies and deletes the persisted blob.
func (m *Manager) ResetConsents(ctx context.Context) error {
	m.consents = m.DefaultConsents()
	m.states = make(map[string]bool)
	m.initialized = make(map[string]bool)
	m.executedOnce = make(map[string]bool)
	m.confirmed = false

	if _, err := m.ApplyConsents(ctx, ApplyOptions{}); err != nil {
		return err
	}
	m.savedConsents = maps.Clone(m.consents)

	if err := m.store.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete consents: %w", err)
	}
	m.notify(EventConsents, m.Consents())
	return nil
}

// LoadConsents reads the persisted blob over the current mapping. A malformed
// blob is logged and ignored.
func (m *Manager) LoadConsents(ctx context.Context) (map[string]bool, error) {
	blob, ok, err := m.store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load consents: %w", err)
	}
	if !ok {
		return m.Consents(), nil
	}

	consents, err := Decode(blob)
	if err != nil {
		m.logger.Warn("Ignoring malformed consent data", zap.Error(err))
		return m.Consents(), nil
	}

	m.consents = consents
	m.checkConsents()
	m.notify(EventConsents, m.Consents())
	return m.Consents(), nil
}

// checkConsents prunes unknown services and back-fills missing ones. The
// decision only counts as confirmed when nothing had to be back-filled.
func (m *Manager) checkConsents() {
	known := make(map[string]struct{}, len(m.config.Services))
	for _, svc := range m.config.Services {
		known[svc.Name] = struct{}{}
	}
	for name := range m.consents {
		if _, ok := known[name]; !ok {
			delete(m.consents, name)
		}
	}

	complete := true
	for i := range m.config.Services {
		svc := &m.config.Services[i]
		if _, ok := m.consents[svc.Name]; ok {
			continue
		}
		m.consents[svc.Name] = m.DefaultConsent(svc)
		complete = false
	}

	m.confirmed = complete
	if !complete {
		m.changed = true
	}
}

// ChangedConsents returns the consents that differ from the last save.
func (m *Manager) ChangedConsents() map[string]bool {
	changes := make(map[string]bool)
	for name, v := range m.consents {
		if saved, ok := m.savedConsents[name]; !ok || saved != v {
			changes[name] = v
		}
	}
	return changes
}

// SaveConsents persists the mapping and marks the decision as confirmed.
func (m *Manager) SaveConsents(ctx context.Context, eventType string) error {
	if eventType == "" {
		eventType = DefaultSaveType
	}

	blob, err := Encode(m.consents)
	if err != nil {
		return err
	}
	if err := m.store.Set(ctx, blob); err != nil {
		return fmt.Errorf("failed to save consents: %w", err)
	}
	if err := m.aux.Set(ctx, eventType); err != nil {
		m.logger.Warn("Failed to record save type", zap.Error(err))
	}

	m.confirmed = true
	m.changed = false
	changes := m.ChangedConsents()
	m.savedConsents = maps.Clone(m.consents)

	m.notify(EventSave, SaveEvent{
		Changes:  changes,
		Consents: m.Consents(),
		Type:     eventType,
	})
	return nil
}

// SaveAndApplyConsents saves, then applies, returning the changed count.
func (m *Manager) SaveAndApplyConsents(ctx context.Context, eventType string) (int, error) {
	if err := m.SaveConsents(ctx, eventType); err != nil {
		return 0, err
	}
	return m.ApplyConsents(ctx, ApplyOptions{})
}

// LastSaveType returns the event type of the last save recorded in the
// auxiliary store.
func (m *Manager) LastSaveType(ctx context.Context) (string, bool, error) {
	return m.aux.Get(ctx)
}
