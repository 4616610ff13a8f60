// Package testplugin is the plugin used by the host's own tests. Its module
// directory lives in testdata/test-plugin.
package testplugin

import (
	"context"
	"net/http"
	"path/filepath"
	"runtime"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/apphost/pkg/plugins"
)

// Plugin serves the test app page and ships an icon as a static asset
type Plugin struct {
	modulePath string
}

// New is a plugins.Factory
func New(m *plugins.Manifest) (plugins.Plugin, error) {
	return &Plugin{modulePath: m.ModulePath}, nil
}

// ModuleDir returns the absolute path of the fixture module directory
func ModuleDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "testdata", "test-plugin")
}

// Init implements plugins.InitPlugin
func (p *Plugin) Init(_ context.Context, env plugins.Env) error {
	env.Logger.Debug("test-plugin loaded!")
	return nil
}

// StaticDir implements plugins.StaticPlugin
func (p *Plugin) StaticDir() string {
	return "public"
}

// RegisterRoutes implements plugins.RoutePlugin
func (p *Plugin) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/test-app", func(w http.ResponseWriter, req *http.Request) {
		http.ServeFile(w, req, filepath.Join(p.modulePath, "public", "index.html"))
	}).Methods(http.MethodGet, http.MethodHead)
}

// Applications implements plugins.Plugin
func (p *Plugin) Applications() []plugins.Application {
	return []plugins.Application{
		{
			Name:        "Test App",
			Version:     "4.0.0",
			Description: "This app does XYZ.",
			IconPath:    "/test-app/icon.svg",
			Path:        "/test-app",
		},
	}
}
