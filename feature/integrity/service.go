package integrity

import (
	"context"
	"errors"

	"consent-manager/core/instance"
	"consent-manager/core/storage"
	"consent-manager/feature/integrity/checks"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ErrNotConfigured is returned by checks whose backend is not wired.
var ErrNotConfigured = errors.New("backend not configured")

// Pinger reports the health of a connection.
type Pinger interface {
	Health(ctx context.Context) error
}

// Options carries the backends the checks inspect. Unset fields make the
// matching check report ErrNotConfigured.
type Options struct {
	Client  storage.Client
	Bucket  string
	Folders []string
	Source  instance.Source
	Catalog string
	DB      *gorm.DB
	Tables  []checks.Table
	Redis   Pinger
}

// Service handles integrity checks.
type Service struct {
	opts   Options
	logger *zap.Logger
}

// NewService creates a new integrity service.
func NewService(opts Options, logger *zap.Logger) *Service {
	return &Service{opts: opts, logger: logger}
}

// CheckStructure returns the folders missing from the bucket.
func (s *Service) CheckStructure(ctx context.Context) ([]string, error) {
	if s.opts.Client == nil {
		return nil, ErrNotConfigured
	}
	return checks.CheckStructure(ctx, s.opts.Client, s.opts.Bucket, s.opts.Folders)
}

// FixStructure creates the missing folders.
func (s *Service) FixStructure(ctx context.Context, missing []string) error {
	if s.opts.Client == nil {
		return ErrNotConfigured
	}
	return checks.FixStructure(ctx, s.opts.Client, s.opts.Bucket, s.logger, missing)
}

// CheckCatalog loads and validates the configured catalog, or name when set.
func (s *Service) CheckCatalog(ctx context.Context, name string) checks.CatalogReport {
	if name == "" {
		name = s.opts.Catalog
	}
	return checks.CheckCatalog(ctx, s.opts.Source, name)
}

// CheckDatabase compares the schema of the consent tables with their models.
func (s *Service) CheckDatabase() (*checks.DatabaseReport, error) {
	if s.opts.DB == nil {
		return nil, ErrNotConfigured
	}
	return checks.CheckDatabase(s.opts.DB, s.opts.Tables...)
}

// CheckRedis pings the session store.
func (s *Service) CheckRedis(ctx context.Context) error {
	if s.opts.Redis == nil {
		return ErrNotConfigured
	}
	return s.opts.Redis.Health(ctx)
}

// CheckAll runs the structure, catalog, database and redis checks in
// parallel. Each check reports into its own entry; a failing check does not
// cancel the others.
func (s *Service) CheckAll(ctx context.Context) map[string]any {
	var (
		structure, database, redis any
		catalog                    checks.CatalogReport
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if missing, err := s.CheckStructure(ctx); err != nil {
			structure = status(err)
		} else {
			structure = map[string]any{"status": "ok", "missing": missing}
		}
		return nil
	})
	g.Go(func() error {
		catalog = s.CheckCatalog(ctx, "")
		return nil
	})
	g.Go(func() error {
		if report, err := s.CheckDatabase(); err != nil {
			database = status(err)
		} else {
			database = report
		}
		return nil
	})
	g.Go(func() error {
		if err := s.CheckRedis(ctx); err != nil {
			redis = status(err)
		} else {
			redis = map[string]any{"status": "ok"}
		}
		return nil
	})
	_ = g.Wait()

	return map[string]any{
		"structure": structure,
		"catalog":   catalog,
		"database":  database,
		"redis":     redis,
	}
}

func status(err error) map[string]any {
	if errors.Is(err, ErrNotConfigured) {
		return map[string]any{"status": "skipped"}
	}
	return map[string]any{"status": "error", "error": err.Error()}
}
