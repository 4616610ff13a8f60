package plugins

import (
	"net/http"
	"path"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/apphost/pkg/httputil"
)

// Mounter attaches every registered plugin to the host router. It mounts
// exactly once.
type Mounter struct {
	log      *logrus.Logger
	reserved []string

	mu      sync.Mutex
	mounted bool
}

// NewMounter creates a mounter. Reserved paths belong to the host and no
// plugin router path may overlap them.
func NewMounter(log *logrus.Logger, reserved ...string) *Mounter {
	if log == nil {
		log = logrus.New()
	}
	return &Mounter{log: log, reserved: reserved}
}

// Mount checks all router paths for overlaps and then attaches each plugin in
// registration order. Nothing is attached if any check fails.
func (m *Mounter) Mount(router *mux.Router, reg *Registry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.mounted {
		return ErrAlreadyMounted
	}

	plugins := reg.All()
	if err := CheckConflicts(plugins, m.reserved...); err != nil {
		return err
	}

	reg.Seal()
	for _, p := range plugins {
		h := newPluginHandler(p)
		router.Path(p.RouterPath()).Handler(h)
		router.PathPrefix(p.RouterPath() + "/").Handler(h)

		m.log.WithFields(logrus.Fields{
			"plugin":      p.Name(),
			"router_path": p.RouterPath(),
			"static":      p.StaticDir() != "",
		}).Info("Mounted plugin")
	}
	m.mounted = true

	return nil
}

// Mounted reports whether Mount has completed
func (m *Mounter) Mounted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.mounted
}

// CheckConflicts returns a RouteConflictError for the first pair of router
// paths where one equals or is a path prefix of the other.
func CheckConflicts(plugins []*LoadedPlugin, reserved ...string) error {
	for i, p := range plugins {
		for _, r := range reserved {
			if pathsOverlap(p.RouterPath(), r) {
				return &RouteConflictError{
					Plugin:      p.Name(),
					RouterPath:  p.RouterPath(),
					Conflicting: "host",
					OtherPath:   r,
				}
			}
		}
		for _, other := range plugins[:i] {
			if pathsOverlap(p.RouterPath(), other.RouterPath()) {
				return &RouteConflictError{
					Plugin:      p.Name(),
					RouterPath:  p.RouterPath(),
					Conflicting: other.Name(),
					OtherPath:   other.RouterPath(),
				}
			}
		}
	}
	return nil
}

func pathsOverlap(a, b string) bool {
	return a == b || strings.HasPrefix(a, b+"/") || strings.HasPrefix(b, a+"/")
}

// pluginHandler serves a static file when one matches and otherwise hands
// the request to the plugin's own routes.
type pluginHandler struct {
	routerPath string
	static     http.FileSystem
	routes     *mux.Router
}

func newPluginHandler(p *LoadedPlugin) *pluginHandler {
	h := &pluginHandler{
		routerPath: p.RouterPath(),
		routes:     mux.NewRouter(),
	}
	if dir := p.StaticDir(); dir != "" {
		h.static = http.Dir(dir)
	}

	unrouted := httputil.UnroutedHandler(h.routes, notFound)
	h.routes.NotFoundHandler = unrouted
	h.routes.MethodNotAllowedHandler = unrouted
	if rp, ok := p.Plugin.(RoutePlugin); ok {
		rp.RegisterRoutes(h.routes.PathPrefix(p.RouterPath()).Subrouter())
	}
	return h
}

func (h *pluginHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.static != nil && (r.Method == http.MethodGet || r.Method == http.MethodHead) {
		if h.serveStatic(w, r) {
			return
		}
	}
	h.routes.ServeHTTP(w, r)
}

// serveStatic reports whether it wrote a response
func (h *pluginHandler) serveStatic(w http.ResponseWriter, r *http.Request) bool {
	rel := path.Clean("/" + strings.TrimPrefix(r.URL.Path, h.routerPath))

	f, err := h.static.Open(rel)
	if err != nil {
		return false
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		return false
	}

	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
	return true
}

func notFound(w http.ResponseWriter, r *http.Request) {
	httputil.WriteNotFoundError(w, ErrNotFound.Error()+": "+r.URL.Path)
}
