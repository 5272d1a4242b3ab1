package consent

import (
	"context"
	"fmt"

	"consent-manager/core/catalog"
	"consent-manager/core/cookies"
	"consent-manager/core/reconcile"

	"go.uber.org/zap"
)

// ApplyOptions controls an apply pass.
type ApplyOptions struct {
	// DryRun only counts changes; no handler runs and nothing is mutated.
	DryRun bool
	// Interactive treats the decision as confirmed, like DryRun.
	Interactive bool
	// Service limits the pass to one service name.
	Service string
}

// Decision is the outcome of the consent computation for one service.
type Decision struct {
	Service  string `json:"service"`
	Stored   bool   `json:"stored"`
	Required bool   `json:"required"`
	OptOut   bool   `json:"opt_out"`
	// Consent is the effective activation.
	Consent bool `json:"consent"`
	// Previous is the last applied activation, nil before the first apply.
	Previous *bool `json:"previous,omitempty"`
	Changed  bool  `json:"changed"`
	// Elements are the document changes the decision would cause.
	Elements []reconcile.Action `json:"elements,omitempty"`
}

func (m *Manager) matches(svc *catalog.Service, opts ApplyOptions) bool {
	return opts.Service == "" || opts.Service == svc.Name
}

func (m *Manager) decide(svc *catalog.Service, opts ApplyOptions) Decision {
	optOut := m.config.OptOut
	if svc.OptOut != nil {
		optOut = *svc.OptOut
	}
	required := m.config.Required
	if svc.Required != nil {
		required = *svc.Required
	}

	confirmed := m.confirmed || optOut || opts.DryRun || opts.Interactive
	stored := m.GetConsent(svc.Name)

	d := Decision{
		Service:  svc.Name,
		Stored:   stored,
		Required: required,
		OptOut:   optOut,
		Consent:  (stored && confirmed) || required,
	}
	if prev, ok := m.states[svc.Name]; ok {
		d.Previous = &prev
		d.Changed = prev != d.Consent
	} else {
		d.Changed = true
	}
	return d
}

// Plan computes the decision for every matching service without side
// effects, including the element actions for the attached document.
func (m *Manager) Plan(opts ApplyOptions) []Decision {
	var decisions []Decision
	for i := range m.config.Services {
		svc := &m.config.Services[i]
		if !m.matches(svc, opts) {
			continue
		}
		d := m.decide(svc, opts)
		if m.doc != nil && !m.onlyOnceSpent(svc, d.Consent) {
			d.Elements = m.reconciler.Plan(m.doc, svc.Name, d.Consent)
		}
		decisions = append(decisions, d)
	}
	return decisions
}

// ApplyConsents runs the two-pass reconciliation: first every matching
// service not yet initialized gets its OnInit hook, then each service's
// effective consent is computed and, unless DryRun is set, its hooks run and
// the document and cookie jar are updated. It returns how many services
// changed activation. Handler errors abort the pass and are returned.
func (m *Manager) ApplyConsents(ctx context.Context, opts ApplyOptions) (int, error) {
	for i := range m.config.Services {
		svc := &m.config.Services[i]
		if !m.matches(svc, opts) || m.initialized[svc.Name] {
			continue
		}
		m.initialized[svc.Name] = true
		if svc.Hooks.OnInit == nil {
			continue
		}
		if err := svc.Hooks.OnInit(m.handlerOptions(ctx, svc, false)); err != nil {
			return 0, fmt.Errorf("service %s: init handler: %w", svc.Name, err)
		}
	}

	changed := 0
	for i := range m.config.Services {
		svc := &m.config.Services[i]
		if !m.matches(svc, opts) {
			continue
		}

		d := m.decide(svc, opts)
		if d.Changed {
			changed++
		}
		if opts.DryRun {
			continue
		}

		if err := m.activate(ctx, svc, d.Consent); err != nil {
			return changed, err
		}
		m.states[svc.Name] = d.Consent
	}

	m.notify(EventApply, ApplyEvent{Changed: changed, Service: opts.Service})
	return changed, nil
}

func (m *Manager) activate(ctx context.Context, svc *catalog.Service, consent bool) error {
	handler := svc.Hooks.OnDecline
	if consent {
		handler = svc.Hooks.OnAccept
	}
	if handler != nil {
		if err := handler(m.handlerOptions(ctx, svc, true)); err != nil {
			return fmt.Errorf("service %s: consent handler: %w", svc.Name, err)
		}
	}

	if err := m.updateServiceElements(svc, consent); err != nil {
		return err
	}
	if err := m.updateServiceStorage(svc, consent); err != nil {
		return err
	}

	if svc.Hooks.Callback != nil {
		if err := svc.Hooks.Callback(consent, svc); err != nil {
			return fmt.Errorf("service %s: callback: %w", svc.Name, err)
		}
	}
	if m.config.Callback != nil {
		if err := m.config.Callback(consent, svc); err != nil {
			return fmt.Errorf("service %s: global callback: %w", svc.Name, err)
		}
	}
	return nil
}

func (m *Manager) handlerOptions(ctx context.Context, svc *catalog.Service, withConsents bool) catalog.HandlerOptions {
	vars := svc.Vars
	if vars == nil {
		vars = map[string]any{}
	}
	opts := catalog.HandlerOptions{
		Context: ctx,
		Service: svc,
		Config:  m.config,
		Vars:    vars,
		Engine:  m,
	}
	if withConsents {
		opts.Consents = m.Consents()
		opts.Confirmed = m.confirmed
	}
	return opts
}

func (m *Manager) onlyOnceSpent(svc *catalog.Service, consent bool) bool {
	return consent && svc.OnlyOnce && m.executedOnce[svc.Name]
}

func (m *Manager) updateServiceElements(svc *catalog.Service, consent bool) error {
	if consent {
		if m.onlyOnceSpent(svc, consent) {
			return nil
		}
		m.executedOnce[svc.Name] = true
	}
	if m.doc == nil {
		return nil
	}

	summary, err := m.reconciler.Reconcile(m.doc, svc.Name, consent)
	if err != nil {
		return fmt.Errorf("service %s: %w", svc.Name, err)
	}
	m.logger.Debug("Reconciled service elements",
		zap.String("service", svc.Name),
		zap.Bool("consent", consent),
		zap.Int("replaced", summary.Replaced),
		zap.Int("mutated", summary.Mutated),
		zap.Int("toggled", summary.Toggled),
		zap.Int("skipped", summary.Skipped),
	)
	return nil
}

// updateServiceStorage deletes the service's cookies on withdrawal. Cookies
// owned by another origin cannot be removed from here and are silently kept.
func (m *Manager) updateServiceStorage(svc *catalog.Service, consent bool) error {
	if consent || m.jar == nil || len(svc.Cookies) == 0 {
		return nil
	}
	if _, err := cookies.Purge(m.jar, svc.Cookies, m.hostname, m.logger); err != nil {
		return fmt.Errorf("service %s: %w", svc.Name, err)
	}
	return nil
}
