package integrity

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"consent-manager/core/instance"
	"consent-manager/core/storage/mocks"
	"consent-manager/core/store"
	"consent-manager/feature/integrity/checks"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

type fakePinger struct {
	err error
}

func (p fakePinger) Health(context.Context) error {
	return p.err
}

// signalPinger closes pinged when the redis check runs.
type signalPinger struct {
	pinged chan struct{}
}

func (p signalPinger) Health(context.Context) error {
	close(p.pinged)
	return nil
}

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

func catalogSource(t *testing.T) instance.Source {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "default.yaml"), []byte("id: site\nservices:\n  - name: analytics\n"), 0o644))
	return instance.NewFileSource(dir)
}

func setupTestApp(t *testing.T, opts Options) *fiber.App {
	app := fiber.New()
	feature := NewFeature(opts, zap.NewNop())
	assert.Equal(t, "integrity", feature.Name())
	assert.True(t, feature.IsEnabled())
	require.NoError(t, feature.Load(app))
	return app
}

func decode(t *testing.T, app *fiber.App, target string) (int, map[string]any) {
	resp, err := app.Test(httptest.NewRequest("GET", target, nil), 2000)
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestHandleStructureCheck(t *testing.T) {
	t.Run("Checked", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "consents").Return(true, nil)
		client.On("ListObjects", mock.Anything, "consents", mock.Anything).Return(mocks.Listing())

		app := setupTestApp(t, Options{Client: client, Bucket: "consents", Folders: []string{"configs", "consents"}})
		code, body := decode(t, app, "/integrity/structure")
		assert.Equal(t, 200, code)
		assert.Equal(t, "checked", body["status"])
		assert.Len(t, body["missing"], 2)
	})

	t.Run("Fixed", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "consents").Return(true, nil)
		client.On("ListObjects", mock.Anything, "consents", mock.Anything).Return(mocks.Listing())
		client.On("PutObject", mock.Anything, "consents", mock.Anything, mock.Anything, int64(0), mock.Anything).Return(minio.UploadInfo{}, nil)

		app := setupTestApp(t, Options{Client: client, Bucket: "consents", Folders: []string{"configs"}})
		code, body := decode(t, app, "/integrity/structure?fix=true")
		assert.Equal(t, 200, code)
		assert.Equal(t, "fixed", body["status"])
		client.AssertNumberOfCalls(t, "PutObject", 1)
	})

	t.Run("Not Configured", func(t *testing.T) {
		app := setupTestApp(t, Options{})
		code, _ := decode(t, app, "/integrity/structure")
		assert.Equal(t, 503, code)
	})

	t.Run("Bucket Error", func(t *testing.T) {
		client := new(mocks.Client)
		client.On("BucketExists", mock.Anything, "consents").Return(false, assert.AnError)

		app := setupTestApp(t, Options{Client: client, Bucket: "consents"})
		code, _ := decode(t, app, "/integrity/structure")
		assert.Equal(t, 500, code)
	})
}

func TestHandleCatalogCheck(t *testing.T) {
	app := setupTestApp(t, Options{Source: catalogSource(t), Catalog: "default"})

	code, body := decode(t, app, "/integrity/catalog")
	assert.Equal(t, 200, code)
	assert.Equal(t, "site", body["id"])

	code, body = decode(t, app, "/integrity/catalog?name=other")
	assert.Equal(t, 422, code)
	assert.Equal(t, "error", body["status"])
}

func TestHandleDatabaseCheck(t *testing.T) {
	db, sqlMock := setupMockDB(t)
	rows := sqlmock.NewRows([]string{"Field", "Type", "Null", "Key", "Default", "Extra"}).
		AddRow("entry_key", "varchar(191)", "NO", "PRI", nil, "").
		AddRow("entry_value", "text", "YES", "", nil, "")
	sqlMock.ExpectQuery(".*").WillReturnRows(rows)

	app := setupTestApp(t, Options{DB: db, Tables: []checks.Table{{Name: "consent_entries", Model: store.Entry{}}}})
	code, body := decode(t, app, "/integrity/database")
	assert.Equal(t, 200, code)
	assert.Equal(t, true, body["matched"])
	assert.Equal(t, "mysql", body["driver"])

	t.Run("Not Configured", func(t *testing.T) {
		app := setupTestApp(t, Options{})
		code, _ := decode(t, app, "/integrity/database")
		assert.Equal(t, 503, code)
	})
}

func TestHandleRedisCheck(t *testing.T) {
	code, body := decode(t, setupTestApp(t, Options{Redis: fakePinger{}}), "/integrity/redis")
	assert.Equal(t, 200, code)
	assert.Equal(t, "ok", body["status"])

	code, body = decode(t, setupTestApp(t, Options{Redis: fakePinger{err: assert.AnError}}), "/integrity/redis")
	assert.Equal(t, 503, code)
	assert.Equal(t, "error", body["status"])

	code, body = decode(t, setupTestApp(t, Options{}), "/integrity/redis")
	assert.Equal(t, 503, code)
	assert.Equal(t, "skipped", body["status"])
}

func TestHandleIntegrityCheck(t *testing.T) {
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "consents").Return(false, assert.AnError)

	app := setupTestApp(t, Options{
		Client:  client,
		Bucket:  "consents",
		Source:  catalogSource(t),
		Catalog: "default",
		Redis:   fakePinger{},
	})

	code, body := decode(t, app, "/integrity")
	assert.Equal(t, 200, code)

	assert.Equal(t, "error", body["structure"].(map[string]any)["status"])
	assert.Equal(t, "ok", body["catalog"].(map[string]any)["status"])
	assert.Equal(t, "skipped", body["database"].(map[string]any)["status"])
	assert.Equal(t, "ok", body["redis"].(map[string]any)["status"])
}

func TestCheckAllRunsInParallel(t *testing.T) {
	pinged := make(chan struct{})
	client := new(mocks.Client)
	client.On("BucketExists", mock.Anything, "consents").
		Run(func(mock.Arguments) {
			// the redis check has to make progress while storage is still busy
			select {
			case <-pinged:
			case <-time.After(2 * time.Second):
				t.Error("redis check did not run alongside the structure check")
			}
		}).
		Return(false, assert.AnError)

	svc := NewService(Options{
		Client: client,
		Bucket: "consents",
		Redis:  signalPinger{pinged: pinged},
	}, zap.NewNop())

	report := svc.CheckAll(context.Background())
	assert.Equal(t, "error", report["structure"].(map[string]any)["status"])
	assert.Equal(t, "ok", report["redis"].(map[string]any)["status"])
	assert.Equal(t, "skipped", report["database"].(map[string]any)["status"])
}
