package plugins

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// Plugin is the base interface all plugins must implement
type Plugin interface {
	// Applications returns the applications exposed by the plugin. Paths are
	// relative to the plugin's router path.
	Applications() []Application
}

// RoutePlugin is implemented by plugins that serve their own HTTP routes.
// The router passed in is already rooted at the plugin's router path.
type RoutePlugin interface {
	Plugin
	RegisterRoutes(r *mux.Router)
}

// StaticPlugin is implemented by plugins that ship static assets. The returned
// directory is relative to the plugin's module directory.
type StaticPlugin interface {
	Plugin
	StaticDir() string
}

// InitPlugin is implemented by plugins that need to run setup code before
// they are mounted.
type InitPlugin interface {
	Plugin
	Init(ctx context.Context, env Env) error
}

// Env is what the host hands to a plugin during Init
type Env struct {
	Logger     *logrus.Entry
	HTTPClient *http.Client
}

// Factory builds a plugin implementation from its validated manifest
type Factory func(m *Manifest) (Plugin, error)

// Manifest describes plugin metadata
type Manifest struct {
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version" json:"version"`
	DisplayName string `yaml:"displayName" json:"displayName"`
	Description string `yaml:"description" json:"description"`
	RouterPath  string `yaml:"routerPath" json:"routerPath"`
	HomepageURL string `yaml:"homepageURL" json:"homepageURL"`

	// StaticDir and Applications are only read by manifest-only plugins
	StaticDir    string        `yaml:"staticDir,omitempty" json:"-"`
	Applications []Application `yaml:"applications,omitempty" json:"-"`

	// ModulePath is the absolute directory the manifest was loaded from
	ModulePath string `yaml:"-" json:"modulePath"`
}

// Application describes one sub-application exposed by a plugin
type Application struct {
	Name        string `yaml:"name" json:"name"`
	Version     string `yaml:"version" json:"version"`
	Description string `yaml:"description" json:"description"`
	IconPath    string `yaml:"iconPath" json:"iconPath"`
	HomepageURL string `yaml:"homepageURL" json:"homepageURL"`
	Path        string `yaml:"path" json:"path"`
}

// ValidationError represents a manifest validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) String() string {
	return v.Field + ": " + v.Message
}

// LoadedPlugin is a plugin whose manifest has been validated and whose
// applications have been resolved against its router path.
type LoadedPlugin struct {
	Manifest *Manifest
	Plugin   Plugin

	staticDir    string
	applications []Application
}

// Name returns the manifest name
func (p *LoadedPlugin) Name() string {
	return p.Manifest.Name
}

// RouterPath returns the path prefix the plugin is mounted under
func (p *LoadedPlugin) RouterPath() string {
	return p.Manifest.RouterPath
}

// StaticDir returns the absolute static asset directory, or "" if the plugin
// has none.
func (p *LoadedPlugin) StaticDir() string {
	return p.staticDir
}

// Applications returns the resolved applications in the order the plugin
// declared them.
func (p *LoadedPlugin) Applications() []Application {
	out := make([]Application, len(p.applications))
	copy(out, p.applications)
	return out
}
