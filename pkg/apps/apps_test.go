package apps_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/apphost/pkg/apps"
	"github.com/platinummonkey/apphost/pkg/plugins"
	"github.com/platinummonkey/apphost/pkg/plugins/static"
	"github.com/platinummonkey/apphost/pkg/plugins/testplugin"
)

const staticManifest = `name: docs
version: 0.2.0
displayName: Docs
routerPath: /docs
applications:
  - name: Guide
    version: 0.2.0
    path: /guide
  - name: Reference
    version: 0.2.0
    path: /ref
    homepageURL: https://ref.example.com
`

func loadRegistry(t *testing.T, raw ...string) *plugins.Registry {
	t.Helper()

	log := logrus.New()
	log.SetOutput(io.Discard)

	catalog := plugins.NewCatalog().MustAdd("meow", testplugin.New)
	catalog.SetDefault(static.New)

	specs, err := plugins.ParseSpecifiers(raw)
	require.NoError(t, err)

	reg := plugins.NewRegistry()
	require.NoError(t, plugins.NewLoader(catalog, log, plugins.WithConcurrency(1)).LoadAll(context.Background(), specs, reg))
	return reg
}

func docsModule(t *testing.T) string {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "docs")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plugin.yaml"), []byte(staticManifest), 0o644))
	return dir
}

func TestAggregate_Empty(t *testing.T) {
	got := apps.Aggregate(plugins.NewRegistry())

	require.NotNil(t, got)
	assert.Empty(t, got)

	body, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(body))
}

func TestAggregate_TestPlugin(t *testing.T) {
	reg := loadRegistry(t, testplugin.ModuleDir()+":meow")

	got := apps.Aggregate(reg)

	require.Len(t, got, 1)
	assert.Equal(t, apps.Application{
		Name:        "Test App",
		Version:     "4.0.0",
		Description: "This app does XYZ.",
		IconPath:    "/test-plugin/test-app/icon.svg",
		HomepageURL: "https://example.com",
		Path:        "/test-plugin/test-app",
		Plugin: apps.PluginSummary{
			Name:        "test-plugin",
			Version:     "1.0.0",
			ModulePath:  testplugin.ModuleDir(),
			DisplayName: "Test Plugin",
			Description: "Plugin used in code-server tests.",
			RouterPath:  "/test-plugin",
			HomepageURL: "https://example.com",
		},
	}, got[0])
	assert.Equal(t, 1, apps.Count(reg))
}

func TestAggregate_Order(t *testing.T) {
	docs := docsModule(t)
	reg := loadRegistry(t, testplugin.ModuleDir()+":meow", docs)

	got := apps.Aggregate(reg)

	require.Len(t, got, 3)
	names := []string{got[0].Name, got[1].Name, got[2].Name}
	assert.Equal(t, []string{"Test App", "Guide", "Reference"}, names)

	assert.Equal(t, "/docs/guide", got[1].Path)
	assert.Equal(t, "", got[1].HomepageURL)
	assert.Equal(t, "https://ref.example.com", got[2].HomepageURL)
	assert.Equal(t, "docs", got[2].Plugin.Name)

	for i := 0; i < 5; i++ {
		assert.Equal(t, got, apps.Aggregate(reg))
	}
}

func TestHandlers(t *testing.T) {
	reg := loadRegistry(t, testplugin.ModuleDir()+":meow")

	router := mux.NewRouter()
	apps.NewHandlers(reg).RegisterRoutes(router)

	tests := []struct {
		name     string
		method   string
		path     string
		wantCode int
	}{
		{name: "applications", method: http.MethodGet, path: "/api/applications", wantCode: http.StatusOK},
		{name: "plugins", method: http.MethodGet, path: "/api/plugins", wantCode: http.StatusOK},
		{name: "plugin by name", method: http.MethodGet, path: "/api/plugins/test-plugin", wantCode: http.StatusOK},
		{name: "unknown plugin", method: http.MethodGet, path: "/api/plugins/nope", wantCode: http.StatusNotFound},
		{name: "wrong method", method: http.MethodPost, path: "/api/applications", wantCode: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.wantCode, w.Code)
		})
	}
}

func TestHandlers_ApplicationsJSON(t *testing.T) {
	reg := loadRegistry(t, testplugin.ModuleDir()+":meow")

	router := mux.NewRouter()
	apps.NewHandlers(reg).RegisterRoutes(router)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/applications", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var got []map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "/test-plugin/test-app", got[0]["path"])

	plugin, ok := got[0]["plugin"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, testplugin.ModuleDir(), plugin["modulePath"])
	assert.Equal(t, "test-plugin", plugin["name"])
}
