package checks

import (
	"fmt"
	"reflect"
	"strings"

	"consent-manager/core/database"

	"gorm.io/gorm"
)

// Table pairs a table name with the GORM model describing it.
type Table struct {
	Name  string
	Model any
}

// DatabaseReport is the result of a schema check.
type DatabaseReport struct {
	Driver  string                 `json:"driver"`
	Matched bool                   `json:"matched"`
	Tables  map[string]TableReport `json:"tables"`
	Errors  []string               `json:"errors"`
}

type TableReport struct {
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	Status         string   `json:"status"` // "ok", "error"
}

// CheckDatabase compares the live schema with the column and type tags of
// the given models.
func CheckDatabase(db *gorm.DB, tables ...Table) (*DatabaseReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &DatabaseReport{
		Driver:  db.Dialector.Name(),
		Matched: true,
		Tables:  make(map[string]TableReport),
		Errors:  []string{},
	}

	for _, table := range tables {
		actual, err := database.GetTableColumns(db, table.Name)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", table.Name, err))
			report.Matched = false
			continue
		}

		tr := checkTable(table.Model, actual)
		if tr.Status != "ok" {
			report.Matched = false
		}
		report.Tables[table.Name] = tr
	}
	return report, nil
}

func checkTable(model any, actual []database.ColumnInfo) TableReport {
	tr := TableReport{
		MissingColumns: []string{},
		TypeMismatches: []string{},
		Status:         "ok",
	}

	byName := make(map[string]database.ColumnInfo, len(actual))
	for _, col := range actual {
		byName[col.Field] = col
	}

	t := reflect.TypeOf(model)
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("gorm")
		name := gormTagValue(tag, "column")
		if name == "" {
			continue
		}

		col, ok := byName[name]
		if !ok {
			tr.MissingColumns = append(tr.MissingColumns, name)
			tr.Status = "error"
			continue
		}

		// only declared types are compared; sizes map to driver-specific names
		want := strings.ToLower(gormTagValue(tag, "type"))
		if want != "" && !strings.Contains(col.Type, want) {
			tr.TypeMismatches = append(tr.TypeMismatches, fmt.Sprintf("%s: expected %s, got %s", name, want, col.Type))
			tr.Status = "error"
		}
	}
	return tr
}

func gormTagValue(tag, key string) string {
	for _, part := range strings.Split(tag, ";") {
		if strings.HasPrefix(part, key+":") {
			return strings.TrimPrefix(part, key+":")
		}
	}
	return ""
}
