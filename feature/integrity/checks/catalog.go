package checks

import (
	"context"

	"consent-manager/core/instance"
)

// CatalogReport describes a catalog loaded from its source.
type CatalogReport struct {
	Name     string   `json:"name"`
	Status   string   `json:"status"` // "ok", "error"
	ID       string   `json:"id,omitempty"`
	Services []string `json:"services,omitempty"`
	Purposes []string `json:"purposes,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// CheckCatalog loads and validates a catalog.
func CheckCatalog(ctx context.Context, source instance.Source, name string) CatalogReport {
	report := CatalogReport{Name: name, Status: "error"}
	if source == nil {
		report.Error = "no catalog source configured"
		return report
	}

	cfg, err := source.Load(ctx, name)
	if err != nil {
		report.Error = err.Error()
		return report
	}
	if err := cfg.Validate(); err != nil {
		report.Error = err.Error()
		return report
	}

	report.Status = "ok"
	report.ID = cfg.ID
	report.Services = cfg.Names()
	report.Purposes = cfg.Purposes()
	return report
}
