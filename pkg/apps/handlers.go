package apps

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/apphost/pkg/httputil"
	"github.com/platinummonkey/apphost/pkg/plugins"
)

// Registry is what the handlers need from the plugin registry
type Registry interface {
	Source
	Find(name string) (*plugins.LoadedPlugin, bool)
}

// Handlers serves the applications and plugins listings
type Handlers struct {
	registry Registry
}

// NewHandlers creates the listing handlers
func NewHandlers(registry Registry) *Handlers {
	return &Handlers{registry: registry}
}

// RegisterRoutes registers the listing endpoints under /api. Routes are
// registered with full paths so a method mismatch reaches the router's
// MethodNotAllowedHandler.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/applications", h.handleListApplications).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/api/plugins", h.handleListPlugins).Methods(http.MethodGet, http.MethodHead)
	r.HandleFunc("/api/plugins/{name}", h.handleGetPlugin).Methods(http.MethodGet, http.MethodHead)
}

func (h *Handlers) handleListApplications(w http.ResponseWriter, r *http.Request) {
	httputil.WriteSuccess(w, Aggregate(h.registry))
}

func (h *Handlers) handleListPlugins(w http.ResponseWriter, r *http.Request) {
	loaded := h.registry.All()
	summaries := make([]PluginSummary, 0, len(loaded))
	for _, p := range loaded {
		summaries = append(summaries, Summarize(p.Manifest))
	}
	httputil.WriteSuccess(w, summaries)
}

func (h *Handlers) handleGetPlugin(w http.ResponseWriter, r *http.Request) {
	name, ok := httputil.ParsePathStringOrError(w, r, "name")
	if !ok {
		return
	}

	p, ok := h.registry.Find(name)
	if !ok {
		httputil.WriteNotFoundError(w, "plugin not found: "+name)
		return
	}
	httputil.WriteSuccess(w, Summarize(p.Manifest))
}
