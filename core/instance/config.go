package instance

import "consent-manager/core/store"

// Config holds the consent engine settings.
type Config struct {
	// Source selects where catalogs are loaded from (file, object).
	Source string `mapstructure:"source" default:"file"`
	// CatalogDir is the directory of the file source.
	CatalogDir string `mapstructure:"catalog_dir" default:"configs"`
	// ConfigName is the catalog loaded at startup.
	ConfigName string `mapstructure:"config_name" default:"default"`
	// ConfigPrefix is the object storage prefix of the object source.
	ConfigPrefix string `mapstructure:"config_prefix" default:"configs"`
	// EventLogLimit bounds the replay log per event kind.
	EventLogLimit int `mapstructure:"event_log_limit" default:"64"`
	// Hostname is used for dotted-domain cookie deletion. Empty uses the
	// request host.
	Hostname string `mapstructure:"hostname" default:""`
	// VisitorCookie names the cookie identifying visitors for key-value stores.
	VisitorCookie string `mapstructure:"visitor_cookie" default:"consent_visitor"`
	// Store holds the persistence settings.
	Store store.Config `mapstructure:"store"`
}
