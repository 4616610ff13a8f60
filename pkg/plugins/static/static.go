// Package static implements the manifest-only plugin: the applications come
// from plugin.yaml and the assets from a directory next to it.
package static

import (
	"os"
	"path/filepath"

	"github.com/platinummonkey/apphost/pkg/plugins"
)

// DefaultDir is served when the manifest does not name a static directory
const DefaultDir = "public"

// Plugin serves a module's assets and lists the applications its manifest
// declares.
type Plugin struct {
	dir  string
	apps []plugins.Application
}

// New is a plugins.Factory
func New(m *plugins.Manifest) (plugins.Plugin, error) {
	dir := m.StaticDir
	if dir == "" {
		if info, err := os.Stat(filepath.Join(m.ModulePath, DefaultDir)); err == nil && info.IsDir() {
			dir = DefaultDir
		}
	}

	apps := make([]plugins.Application, len(m.Applications))
	copy(apps, m.Applications)

	return &Plugin{dir: dir, apps: apps}, nil
}

// StaticDir implements plugins.StaticPlugin
func (p *Plugin) StaticDir() string {
	return p.dir
}

// Applications implements plugins.Plugin
func (p *Plugin) Applications() []plugins.Application {
	return p.apps
}
