// Package apps builds the host-wide application listing from the plugin
// registry.
package apps

import (
	"github.com/platinummonkey/apphost/pkg/plugins"
)

// PluginSummary is the owning plugin's public metadata
type PluginSummary struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	ModulePath  string `json:"modulePath"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	RouterPath  string `json:"routerPath"`
	HomepageURL string `json:"homepageURL"`
}

// Application is one entry of the applications listing
type Application struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Description string `json:"description"`
	IconPath    string `json:"iconPath"`
	HomepageURL string `json:"homepageURL"`
	Path        string `json:"path"`

	Plugin PluginSummary `json:"plugin"`
}

// Source is the read side of the plugin registry
type Source interface {
	All() []*plugins.LoadedPlugin
}

// Summarize returns the public summary of a plugin manifest
func Summarize(m *plugins.Manifest) PluginSummary {
	return PluginSummary{
		Name:        m.Name,
		Version:     m.Version,
		ModulePath:  m.ModulePath,
		DisplayName: m.DisplayName,
		Description: m.Description,
		RouterPath:  m.RouterPath,
		HomepageURL: m.HomepageURL,
	}
}

// Aggregate lists every application of every plugin, in plugin registration
// order and then in the order each plugin declares its applications. Paths
// are passed through untouched.
func Aggregate(src Source) []Application {
	out := []Application{}
	for _, p := range src.All() {
		summary := Summarize(p.Manifest)
		for _, app := range p.Applications() {
			out = append(out, Application{
				Name:        app.Name,
				Version:     app.Version,
				Description: app.Description,
				IconPath:    app.IconPath,
				HomepageURL: app.HomepageURL,
				Path:        app.Path,
				Plugin:      summary,
			})
		}
	}
	return out
}

// Count returns the number of applications Aggregate would list
func Count(src Source) int {
	n := 0
	for _, p := range src.All() {
		n += len(p.Applications())
	}
	return n
}
