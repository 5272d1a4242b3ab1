package receipts

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// DefaultLimit is the page size of a receipt listing.
	DefaultLimit = 50
	// MaxLimit caps the page size.
	MaxLimit = 500
)

// Service reads and writes receipts.
type Service struct {
	repo   *Repository
	logger *zap.Logger
}

// NewService creates a new receipts service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{repo: NewRepository(db), logger: logger}
}

// Repository returns the underlying repository.
func (s *Service) Repository() *Repository {
	return s.repo
}

// List returns the newest receipts, decoded.
func (s *Service) List(ctx context.Context, visitor string, limit int) ([]View, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	rows, err := s.repo.List(ctx, visitor, limit)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(rows))
	for _, r := range rows {
		v, err := r.View()
		if err != nil {
			s.logger.Warn("Skipping undecodable receipt", zap.Uint("id", r.ID), zap.Error(err))
			continue
		}
		views = append(views, v)
	}
	return views, nil
}
