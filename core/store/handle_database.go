package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"consent-manager/core/database"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Entry is a row of the local key-value table.
type Entry struct {
	Key       string `gorm:"column:entry_key;primaryKey;size:191"`
	Value     string `gorm:"column:entry_value;type:text"`
	UpdatedAt time.Time
}

// DatabaseHandle stores values in a SQL table through GORM.
type DatabaseHandle struct {
	db    *gorm.DB
	table string
}

// NewDatabaseHandle creates a handle over the given table.
func NewDatabaseHandle(db *gorm.DB, table string) *DatabaseHandle {
	if table == "" {
		table = "consent_entries"
	}
	return &DatabaseHandle{db: db, table: table}
}

// Prepare creates the table when it is missing or lacks the expected columns.
func (h *DatabaseHandle) Prepare(ctx context.Context) error {
	columns, err := database.GetTableColumns(h.db.WithContext(ctx), h.table)
	if err == nil && database.HasColumns(columns, "entry_key", "entry_value") {
		return nil
	}

	if err := h.db.WithContext(ctx).Table(h.table).AutoMigrate(&Entry{}); err != nil {
		return fmt.Errorf("failed to migrate table %s: %w", h.table, err)
	}
	return nil
}

func (h *DatabaseHandle) GetItem(ctx context.Context, key string) (string, bool, error) {
	var entry Entry
	err := h.db.WithContext(ctx).Table(h.table).Where("entry_key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return entry.Value, true, nil
}

func (h *DatabaseHandle) SetItem(ctx context.Context, key, value string) error {
	entry := Entry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := h.db.WithContext(ctx).Table(h.table).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (h *DatabaseHandle) RemoveItem(ctx context.Context, key string) error {
	err := h.db.WithContext(ctx).Table(h.table).Where("entry_key = ?", key).Delete(&Entry{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
