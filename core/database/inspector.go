package database

import (
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ColumnInfo is one column of a table, shaped like a SHOW COLUMNS row.
type ColumnInfo struct {
	Field   string
	Type    string
	Null    string
	Key     string
	Default *string
	Extra   string
}

type sqliteColumn struct {
	Cid        int
	Name       string
	Type       string
	Notnull    int
	DefaultVal *string `gorm:"column:dflt_value"`
	Pk         int
}

// GetTableColumns returns the columns of a table with lower-cased names and
// types. A missing table yields no columns on SQLite and an error on MySQL.
func GetTableColumns(db *gorm.DB, tableName string) ([]ColumnInfo, error) {
	if db.Dialector.Name() == "sqlite" {
		var rows []sqliteColumn
		if err := db.Raw(fmt.Sprintf("PRAGMA table_info('%s')", tableName)).Scan(&rows).Error; err != nil {
			return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
		}
		columns := make([]ColumnInfo, 0, len(rows))
		for _, col := range rows {
			info := ColumnInfo{
				Field:   strings.ToLower(col.Name),
				Type:    strings.ToLower(col.Type),
				Null:    "YES",
				Default: col.DefaultVal,
			}
			if col.Notnull == 1 {
				info.Null = "NO"
			}
			if col.Pk > 0 {
				info.Key = "PRI"
			}
			columns = append(columns, info)
		}
		return columns, nil
	}

	var columns []ColumnInfo
	if err := db.Raw(fmt.Sprintf("SHOW COLUMNS FROM `%s`", tableName)).Scan(&columns).Error; err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}
	for i := range columns {
		columns[i].Type = strings.ToLower(columns[i].Type)
		columns[i].Field = strings.ToLower(columns[i].Field)
	}
	return columns, nil
}

// MissingColumns returns the names not present in columns, in input order.
func MissingColumns(columns []ColumnInfo, names ...string) []string {
	found := make(map[string]bool, len(columns))
	for _, c := range columns {
		found[c.Field] = true
	}
	var missing []string
	for _, n := range names {
		if !found[strings.ToLower(n)] {
			missing = append(missing, n)
		}
	}
	return missing
}

// HasColumns reports whether every name is present in columns.
func HasColumns(columns []ColumnInfo, names ...string) bool {
	return len(MissingColumns(columns, names...)) == 0
}
