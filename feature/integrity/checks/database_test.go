package checks

import (
	"context"
	"regexp"
	"testing"

	"consent-manager/core/database"
	"consent-manager/core/store"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to open mock sql db: %v", err)
	}

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to open gorm db: %v", err)
	}
	return gormDB, mock
}

func TestCheckDatabase_NilDB(t *testing.T) {
	report, err := CheckDatabase(nil)
	assert.Error(t, err)
	assert.Nil(t, report)
}

func TestCheckDatabase_SQLite(t *testing.T) {
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, store.NewDatabaseHandle(db, "consent_entries").Prepare(context.Background()))

	report, err := CheckDatabase(db, Table{Name: "consent_entries", Model: store.Entry{}})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", report.Driver)
	assert.True(t, report.Matched)
	assert.Equal(t, "ok", report.Tables["consent_entries"].Status)

	t.Run("Missing Table", func(t *testing.T) {
		report, err := CheckDatabase(db, Table{Name: "absent", Model: &store.Entry{}})
		require.NoError(t, err)
		assert.False(t, report.Matched)
		assert.Equal(t, []string{"entry_key", "entry_value"}, report.Tables["absent"].MissingColumns)
	})
}

func TestCheckDatabase_MySQL(t *testing.T) {
	t.Run("Type Mismatch", func(t *testing.T) {
		db, mock := setupMockDB(t)

		rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
			AddRow("entry_key", "varchar(191)", "NO", "PRI", nil, "").
			AddRow("entry_value", "varchar(255)", "YES", "", nil, "")
		mock.ExpectQuery(regexp.QuoteMeta("SHOW COLUMNS FROM `consent_entries`")).WillReturnRows(rows)

		report, err := CheckDatabase(db, Table{Name: "consent_entries", Model: store.Entry{}})
		require.NoError(t, err)
		assert.False(t, report.Matched)

		tr := report.Tables["consent_entries"]
		assert.Equal(t, "error", tr.Status)
		assert.Empty(t, tr.MissingColumns)
		assert.Equal(t, []string{"entry_value: expected text, got varchar(255)"}, tr.TypeMismatches)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Inspect Error", func(t *testing.T) {
		db, mock := setupMockDB(t)
		mock.ExpectQuery(".*").WillReturnError(assert.AnError)

		report, err := CheckDatabase(db, Table{Name: "consent_entries", Model: store.Entry{}})
		require.NoError(t, err)
		assert.False(t, report.Matched)
		assert.Len(t, report.Errors, 1)
	})
}
