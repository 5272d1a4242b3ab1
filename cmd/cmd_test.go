package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"consent-manager/core/catalog"
	"consent-manager/core/config"
	"consent-manager/core/consent"
	"consent-manager/core/instance"
	"consent-manager/core/middleware/auth"
	"consent-manager/core/store"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testCatalogYAML = `
id: site
services:
  - name: analytics
  - name: essential
    required: true
`

func TestSetConsents(t *testing.T) {
	cfg, err := catalog.Parse([]byte(testCatalogYAML), "yaml")
	require.NoError(t, err)

	tests := []struct {
		name      string
		acceptAll bool
		pairs     []string
		want      map[string]bool
		wantErr   bool
	}{
		{"Defaults", false, nil, map[string]bool{"analytics": false, "essential": true}, false},
		{"Pair", false, []string{"analytics=yes"}, map[string]bool{"analytics": true, "essential": true}, false},
		{"Accept Then Decline One", true, []string{"analytics=false"}, map[string]bool{"analytics": false, "essential": true}, false},
		{"Malformed", false, []string{"analytics"}, nil, true},
		{"Unknown", false, []string{"chat=true"}, nil, true},
		{"Not A Boolean", false, []string{"analytics=perhaps"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := consent.New(context.Background(), cfg, consent.SkipInitialApply())
			require.NoError(t, err)

			err = setConsents(m, tt.acceptAll, tt.pairs)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, m.Consents())
		})
	}
}

func TestApplyCommand(t *testing.T) {
	dir := t.TempDir()
	catalogPath := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte(testCatalogYAML), 0o644))

	page := `<html><head><script data-name="analytics" data-src="https://cdn.example/a.js" data-type="text/javascript" type="text/plain"></script></head><body></body></html>`
	pagePath := filepath.Join(dir, "page.html")
	require.NoError(t, os.WriteFile(pagePath, []byte(page), 0o644))

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetArgs([]string{"apply", pagePath, "--catalog", catalogPath, "--consent", "analytics=true"})
	require.NoError(t, RootCmd.Execute())

	assert.Contains(t, out.String(), `type="text/javascript"`)
	assert.Contains(t, out.String(), ` src="https://cdn.example/a.js"`)
}

func TestVisitorStores(t *testing.T) {
	rt := &runtime{cfg: &config.Config{}}

	t.Run("Cookie Rejected", func(t *testing.T) {
		rt.cfg.Consent.Store.Method = "cookie"
		_, _, err := visitorStores(rt, "v")
		assert.Error(t, err)
	})

	t.Run("Missing Backend", func(t *testing.T) {
		rt.cfg.Consent.Store.Method = "session"
		_, _, err := visitorStores(rt, "v")
		assert.ErrorIs(t, err, store.ErrBackendUnavailable)
	})
}

func TestNewApp(t *testing.T) {
	inst := instance.New(nil, nil, zap.NewNop())
	cfg, err := catalog.Parse([]byte(testCatalogYAML), "yaml")
	require.NoError(t, err)
	require.NoError(t, inst.InitializeWithConfig(cfg))

	rt := &runtime{
		cfg:      &config.Config{},
		logger:   zap.NewNop(),
		instance: inst,
	}
	rt.cfg.Server.ApiKey = "secret"
	rt.cfg.Consent.Store.Method = "cookie"

	app, err := newApp(rt)
	require.NoError(t, err)

	t.Run("Metrics Are Public", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", metricsPath, nil))
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		body, _ := io.ReadAll(resp.Body)
		assert.Contains(t, string(body), "go_goroutines")
	})

	t.Run("API Needs Key", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest("GET", "/consents", nil))
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode)

		req := httptest.NewRequest("GET", "/consents", nil)
		req.Header.Set(auth.Header, "secret")
		resp, err = app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 200, resp.StatusCode)
		assert.NotEmpty(t, resp.Header.Get("X-Ray-ID"))
	})

	t.Run("Null Consent Cookie Uses Defaults", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/consents", nil)
		req.Header.Set(auth.Header, "secret")
		req.AddCookie(&http.Cookie{Name: "klaro", Value: "null"})
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)

		var state struct {
			Consents  map[string]bool `json:"consents"`
			Confirmed bool            `json:"confirmed"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&state))
		assert.Equal(t, map[string]bool{"analytics": false, "essential": true}, state.Consents)
		assert.False(t, state.Confirmed)
	})

	t.Run("Handler Panic Becomes 500", func(t *testing.T) {
		app.Get("/panics", func(c *fiber.Ctx) error {
			panic("hook failed")
		})
		req := httptest.NewRequest("GET", "/panics", nil)
		req.Header.Set(auth.Header, "secret")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 500, resp.StatusCode)
	})

	t.Run("Receipts Disabled Without Database", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/receipts", nil)
		req.Header.Set(auth.Header, "secret")
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 404, resp.StatusCode)
	})
}
