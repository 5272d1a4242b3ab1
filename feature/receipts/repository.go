package receipts

import (
	"context"
	"errors"
	"fmt"

	"consent-manager/core/database"

	"gorm.io/gorm"
)

// ErrNoDatabase is returned when the repository has no connection.
var ErrNoDatabase = errors.New("receipts need a database connection")

// Columns are the columns a usable receipts table must have.
var Columns = []string{"id", "visitor", "catalog_id", "save_type", "consents", "changes", "hostname", "created_at"}

// Repository persists receipts.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Migrate creates the receipts table when it is missing or incomplete.
func (r *Repository) Migrate(ctx context.Context) error {
	if r.db == nil {
		return ErrNoDatabase
	}
	columns, err := database.GetTableColumns(r.db.WithContext(ctx), TableName)
	if err == nil && database.HasColumns(columns, Columns...) {
		return nil
	}
	if err := r.db.WithContext(ctx).AutoMigrate(&Receipt{}); err != nil {
		return fmt.Errorf("failed to migrate %s: %w", TableName, err)
	}
	return nil
}

// Create stores a receipt.
func (r *Repository) Create(ctx context.Context, receipt *Receipt) error {
	if r.db == nil {
		return ErrNoDatabase
	}
	return r.db.WithContext(ctx).Create(receipt).Error
}

// List returns the newest receipts first. An empty visitor lists all.
func (r *Repository) List(ctx context.Context, visitor string, limit int) ([]Receipt, error) {
	if r.db == nil {
		return nil, ErrNoDatabase
	}
	q := r.db.WithContext(ctx).Order("id DESC").Limit(limit)
	if visitor != "" {
		q = q.Where("visitor = ?", visitor)
	}
	var out []Receipt
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
