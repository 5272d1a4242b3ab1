package catalog

import (
	"context"
	"errors"
	"fmt"

	"consent-manager/core/cookies"
)

var (
	// ErrStringHandler is returned for lifecycle handlers given as code strings.
	ErrStringHandler = errors.New("string lifecycle handlers are not supported")
	// ErrDuplicateService is returned when two services share a name.
	ErrDuplicateService = errors.New("duplicate service name")
	// ErrUnknownService is returned when a name does not match any service.
	ErrUnknownService = errors.New("unknown service")
)

// HandlerOptions is passed to lifecycle handlers.
type HandlerOptions struct {
	Context context.Context
	Service *Service
	Config  *Config
	Vars    map[string]any

	// Consents and Confirmed are only set for OnAccept and OnDecline.
	Consents  map[string]bool
	Confirmed bool

	// Engine is the consent manager running the handler. Calling back into
	// it from a handler re-enters the apply pass.
	Engine any
}

// Handler is a lifecycle hook.
type Handler func(opts HandlerOptions) error

// Callback is invoked after a service has been reconciled.
type Callback func(consent bool, service *Service) error

// Hooks groups the Go callables of a service.
type Hooks struct {
	OnInit    Handler
	OnAccept  Handler
	OnDecline Handler
	Callback  Callback
}

// Service describes one third-party integration.
type Service struct {
	// Name is the unique key of the service.
	Name     string   `mapstructure:"name" json:"name"`
	Title    string   `mapstructure:"title" json:"title,omitempty"`
	Purposes []string `mapstructure:"purposes" json:"purposes,omitempty"`

	// Default, Required and OptOut are tri-state: nil falls back to the
	// global setting.
	Default  *bool `mapstructure:"default" json:"default,omitempty"`
	Required *bool `mapstructure:"required" json:"required,omitempty"`
	OptOut   *bool `mapstructure:"opt_out" json:"opt_out,omitempty"`

	// OnlyOnce suppresses further activation side effects after the first one.
	OnlyOnce bool `mapstructure:"only_once" json:"only_once,omitempty"`
	// ContextualConsentOnly services are left alone by accept/decline all.
	ContextualConsentOnly bool `mapstructure:"contextual_consent_only" json:"contextual_consent_only,omitempty"`

	Cookies []cookies.Rule `mapstructure:"cookies" json:"cookies,omitempty"`
	Vars    map[string]any `mapstructure:"vars" json:"vars,omitempty"`

	// Legacy code strings, kept only so Validate can reject them.
	OnInitScript    string `mapstructure:"on_init" json:"-"`
	OnAcceptScript  string `mapstructure:"on_accept" json:"-"`
	OnDeclineScript string `mapstructure:"on_decline" json:"-"`

	Hooks Hooks `mapstructure:"-" json:"-"`
}

// Config is the catalog plus the global flags services fall back to.
type Config struct {
	// ID identifies the catalog in consent receipts.
	ID       string    `mapstructure:"id" json:"id,omitempty"`
	Default  bool      `mapstructure:"default" json:"default"`
	Required bool      `mapstructure:"required" json:"required"`
	OptOut   bool      `mapstructure:"opt_out" json:"opt_out"`
	Services []Service `mapstructure:"services" json:"services"`

	// Callback is invoked for every service after its own callback.
	Callback Callback `mapstructure:"-" json:"-"`
}

// Bool returns a pointer to v, for building tri-state fields.
func Bool(v bool) *bool {
	return &v
}

// Service returns the first service with the given name.
func (c *Config) Service(name string) *Service {
	for i := range c.Services {
		if c.Services[i].Name == name {
			return &c.Services[i]
		}
	}
	return nil
}

// Handle attaches Go hooks to a service.
func (c *Config) Handle(name string, hooks Hooks) error {
	svc := c.Service(name)
	if svc == nil {
		return fmt.Errorf("%w: %s", ErrUnknownService, name)
	}
	svc.Hooks = hooks
	return nil
}

// Names returns the service names in catalog order.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Services))
	for _, svc := range c.Services {
		names = append(names, svc.Name)
	}
	return names
}

// Purposes returns the distinct purposes of all services, in first-seen order.
func (c *Config) Purposes() []string {
	seen := make(map[string]struct{})
	var purposes []string
	for _, svc := range c.Services {
		for _, p := range svc.Purposes {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			purposes = append(purposes, p)
		}
	}
	return purposes
}

// Validate checks the catalog before it is handed to the engine.
func (c *Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Services))
	for i, svc := range c.Services {
		if svc.Name == "" {
			return fmt.Errorf("service #%d has no name", i)
		}
		if _, ok := seen[svc.Name]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateService, svc.Name)
		}
		seen[svc.Name] = struct{}{}

		for hook, script := range map[string]string{
			"on_init":    svc.OnInitScript,
			"on_accept":  svc.OnAcceptScript,
			"on_decline": svc.OnDeclineScript,
		} {
			if script != "" {
				return fmt.Errorf("service %s: %s: %w", svc.Name, hook, ErrStringHandler)
			}
		}

		for _, rule := range svc.Cookies {
			if _, err := rule.Compile(); err != nil {
				return fmt.Errorf("service %s: %w", svc.Name, err)
			}
		}
	}
	return nil
}
