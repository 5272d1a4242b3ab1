package database

import (
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE consent_entries (entry_key TEXT PRIMARY KEY, entry_value TEXT NOT NULL, updated_at DATETIME)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "consent_entries")
	require.NoError(t, err)
	require.Len(t, columns, 3)

	byName := make(map[string]ColumnInfo)
	for _, col := range columns {
		byName[col.Field] = col
	}
	assert.Equal(t, "text", byName["entry_key"].Type)
	assert.Equal(t, "PRI", byName["entry_key"].Key)
	assert.Equal(t, "NO", byName["entry_value"].Null)
	assert.Equal(t, "datetime", byName["updated_at"].Type)

	t.Run("Missing Table", func(t *testing.T) {
		cols, err := GetTableColumns(db, "non_existent")
		assert.NoError(t, err)
		assert.Empty(t, cols)
	})
}

func TestGetTableColumnsMySQL(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)

	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("Entry_Key", "VARCHAR(191)", "NO", "PRI", nil, "").
		AddRow("entry_value", "TEXT", "YES", "", nil, "")
	mock.ExpectQuery(regexp.QuoteMeta("SHOW COLUMNS FROM `consent_entries`")).WillReturnRows(rows)

	columns, err := GetTableColumns(db, "consent_entries")
	require.NoError(t, err)
	require.Len(t, columns, 2)
	assert.Equal(t, "entry_key", columns[0].Field)
	assert.Equal(t, "varchar(191)", columns[0].Type)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMissingColumns(t *testing.T) {
	columns := []ColumnInfo{{Field: "id"}, {Field: "visitor"}}

	tests := []struct {
		name  string
		names []string
		want  []string
	}{
		{"All Present", []string{"id", "visitor"}, nil},
		{"Case Folded", []string{"ID"}, nil},
		{"Some Missing", []string{"id", "consents", "changes"}, []string{"consents", "changes"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MissingColumns(columns, tt.names...))
			assert.Equal(t, len(tt.want) == 0, HasColumns(columns, tt.names...))
		})
	}
}
