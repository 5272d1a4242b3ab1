package receipts

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"regexp"
	"testing"

	"consent-manager/core/catalog"
	"consent-manager/core/consent"
	"consent-manager/core/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, NewRepository(db).Migrate(context.Background()))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func newManager(t *testing.T, w consent.Watcher) *consent.Manager {
	t.Helper()
	cfg := &catalog.Config{
		ID: "site",
		Services: []catalog.Service{
			{Name: "analytics"},
			{Name: "essential", Required: catalog.Bool(true)},
		},
	}
	m, err := consent.New(context.Background(), cfg, consent.WithWatcher(w))
	require.NoError(t, err)
	return m
}

func TestRepository(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	repo := NewRepository(db)

	columns, err := database.GetTableColumns(db, TableName)
	require.NoError(t, err)
	assert.Empty(t, database.MissingColumns(columns, Columns...))

	for _, visitor := range []string{"a", "b", "a"} {
		r, err := NewReceipt(visitor, "site", "accept", "example.com", map[string]bool{"x": true}, nil)
		require.NoError(t, err)
		require.NoError(t, repo.Create(ctx, r))
		assert.NotZero(t, r.ID)
	}

	all, err := repo.List(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Greater(t, all[0].ID, all[1].ID)

	mine, err := repo.List(ctx, "a", 10)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	limited, err := repo.List(ctx, "", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	t.Run("Migrate Is Idempotent", func(t *testing.T) {
		assert.NoError(t, repo.Migrate(ctx))
	})

	t.Run("No Database", func(t *testing.T) {
		empty := NewRepository(nil)
		assert.ErrorIs(t, empty.Migrate(ctx), ErrNoDatabase)
		assert.ErrorIs(t, empty.Create(ctx, &Receipt{}), ErrNoDatabase)
		_, err := empty.List(ctx, "", 1)
		assert.ErrorIs(t, err, ErrNoDatabase)
	})
}

func TestRepositoryMySQL(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO `consent_receipts`")).
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	r, err := NewReceipt("v", "site", "save", "", map[string]bool{"x": false}, map[string]bool{"x": false})
	require.NoError(t, err)
	require.NoError(t, repo.Create(context.Background(), r))
	assert.Equal(t, uint(7), r.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecorder(t *testing.T) {
	ctx := context.Background()
	db := setupDB(t)
	repo := NewRepository(db)
	rec := NewRecorder(repo, "visitor-1", "example.com", zap.NewNop())

	m := newManager(t, rec)

	m.UpdateConsent("analytics", true)
	require.NoError(t, m.SaveConsents(ctx, "accept"))

	// unchanged re-save is not recorded
	require.NoError(t, m.SaveConsents(ctx, "save"))

	m.UpdateConsent("analytics", false)
	require.NoError(t, m.SaveConsents(ctx, "save"))

	rows, err := repo.List(ctx, "visitor-1", 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	latest, err := rows[0].View()
	require.NoError(t, err)
	assert.Equal(t, "save", latest.Type)
	assert.Equal(t, "site", latest.CatalogID)
	assert.Equal(t, "example.com", latest.Hostname)
	assert.Equal(t, map[string]bool{"analytics": false}, latest.Changes)
	assert.Equal(t, map[string]bool{"analytics": false, "essential": true}, latest.Consents)

	first, err := rows[1].View()
	require.NoError(t, err)
	assert.Equal(t, "accept", first.Type)

	t.Run("Ignores Other Events", func(t *testing.T) {
		rec.Update(m, consent.EventApply, consent.ApplyEvent{Changed: 1})
		rec.Update(m, consent.EventSave, "not a save event")
		rows, err := repo.List(ctx, "", 10)
		require.NoError(t, err)
		assert.Len(t, rows, 2)
	})
}

func TestHandleListReceipts(t *testing.T) {
	db := setupDB(t)
	feature := NewFeature(db, zap.NewNop())
	assert.True(t, feature.IsEnabled())

	app := fiber.New()
	require.NoError(t, feature.Load(app))

	app.Post("/save", func(c *fiber.Ctx) error {
		m := newManager(t, feature.Watcher(c, "v1"))
		m.ChangeAll(true)
		if err := m.SaveConsents(c.Context(), "accept"); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	})

	resp, err := app.Test(httptest.NewRequest("POST", "/save", nil))
	require.NoError(t, err)
	require.Equal(t, 204, resp.StatusCode)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"All", "/receipts", 1},
		{"By Visitor", "/receipts?visitor=v1", 1},
		{"Other Visitor", "/receipts?visitor=v2", 0},
		{"Bad Limit Falls Back", "/receipts?limit=abc", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := app.Test(httptest.NewRequest("GET", tt.target, nil))
			require.NoError(t, err)
			require.Equal(t, 200, resp.StatusCode)

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			var views []View
			require.NoError(t, json.Unmarshal(body, &views))
			assert.Len(t, views, tt.want)
			if tt.want > 0 {
				assert.Equal(t, "accept", views[0].Type)
				assert.True(t, views[0].Consents["analytics"])
			}
		})
	}
}

func TestFeatureDisabledWithoutDatabase(t *testing.T) {
	f := NewFeature(nil, zap.NewNop())
	assert.False(t, f.IsEnabled())
	assert.Equal(t, "receipts", f.Name())
}
