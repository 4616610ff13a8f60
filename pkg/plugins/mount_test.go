package plugins

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// routedPlugin answers GET /hello and POST /echo under its router path
type routedPlugin struct {
	stubPlugin
}

func (routedPlugin) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/hello", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "hello from route")
	}).Methods(http.MethodGet)
	r.HandleFunc("/echo", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(w, r.Body)
	}).Methods(http.MethodPost)
	r.HandleFunc("", func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "index route")
	})
}

func registryOf(t *testing.T, plugins ...*LoadedPlugin) *Registry {
	t.Helper()
	reg := NewRegistry()
	for _, p := range plugins {
		require.NoError(t, reg.Register(p))
	}
	return reg
}

func serve(router http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestMounter_RoutesAndStatic(t *testing.T) {
	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "hello"), []byte("hello from file"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(static, "style.css"), []byte("body{}"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(static, "dir"), 0o755))

	p := newLoaded("docs", "/docs")
	p.Plugin = routedPlugin{}
	p.staticDir = static

	router := mux.NewRouter()
	require.NoError(t, NewMounter(quietLogger()).Mount(router, registryOf(t, p)))

	tests := []struct {
		name     string
		method   string
		target   string
		wantCode int
		wantBody string
	}{
		{name: "static file wins over route", method: http.MethodGet, target: "/docs/hello", wantCode: http.StatusOK, wantBody: "hello from file"},
		{name: "static file", method: http.MethodGet, target: "/docs/style.css", wantCode: http.StatusOK, wantBody: "body{}"},
		{name: "router path itself", method: http.MethodGet, target: "/docs", wantCode: http.StatusOK, wantBody: "index route"},
		{name: "directory falls through", method: http.MethodGet, target: "/docs/dir", wantCode: http.StatusNotFound},
		{name: "unknown path", method: http.MethodGet, target: "/docs/nope", wantCode: http.StatusNotFound},
		{name: "wrong method", method: http.MethodDelete, target: "/docs/echo", wantCode: http.StatusMethodNotAllowed},
		{name: "other prefix", method: http.MethodGet, target: "/docsx/hello", wantCode: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, tt.method, tt.target)
			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestMounter_PostSkipsStatic(t *testing.T) {
	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "echo"), []byte("file"), 0o644))

	p := newLoaded("docs", "/docs")
	p.Plugin = routedPlugin{}
	p.staticDir = static

	router := mux.NewRouter()
	require.NoError(t, NewMounter(quietLogger()).Mount(router, registryOf(t, p)))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/docs/echo", strings.NewReader("ping")))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ping", w.Body.String())
}

func TestMounter_MethodNotAllowed(t *testing.T) {
	p := newLoaded("docs", "/docs")
	p.Plugin = routedPlugin{}

	router := mux.NewRouter()
	require.NoError(t, NewMounter(quietLogger()).Mount(router, registryOf(t, p)))

	tests := []struct {
		method    string
		target    string
		wantAllow string
	}{
		{method: http.MethodPost, target: "/docs/hello", wantAllow: "GET"},
		{method: http.MethodHead, target: "/docs/hello", wantAllow: "GET"},
		{method: http.MethodGet, target: "/docs/echo", wantAllow: "POST"},
		{method: http.MethodDelete, target: "/docs/echo", wantAllow: "POST"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.target, func(t *testing.T) {
			w := serve(router, tt.method, tt.target)

			assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
			assert.Equal(t, tt.wantAllow, w.Header().Get("Allow"))
			assert.JSONEq(t, fmt.Sprintf(`{"error":"method not allowed: %s %s"}`, tt.method, tt.target), w.Body.String())
		})
	}
}

func TestMounter_NotFoundBody(t *testing.T) {
	router := mux.NewRouter()
	require.NoError(t, NewMounter(quietLogger()).Mount(router, registryOf(t, newLoaded("docs", "/docs"))))

	w := serve(router, http.MethodGet, "/docs/missing")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"not found: /docs/missing"}`, w.Body.String())
}

func TestMounter_StaticTraversal(t *testing.T) {
	module := t.TempDir()
	static := filepath.Join(module, "public")
	require.NoError(t, os.MkdirAll(static, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(module, "secret"), []byte("secret"), 0o644))

	p := newLoaded("docs", "/docs")
	p.staticDir = static

	h := newPluginHandler(p)
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/docs/x", nil)
	req.URL.Path = "/docs/../secret"
	h.ServeHTTP(w, req)

	assert.NotEqual(t, http.StatusOK, w.Code)
	assert.NotEqual(t, "secret", w.Body.String())
}

func TestMounter_MountOnce(t *testing.T) {
	reg := registryOf(t, newLoaded("docs", "/docs"))
	m := NewMounter(quietLogger())

	assert.False(t, m.Mounted())
	require.NoError(t, m.Mount(mux.NewRouter(), reg))
	assert.True(t, m.Mounted())
	assert.True(t, reg.Sealed())

	assert.ErrorIs(t, m.Mount(mux.NewRouter(), reg), ErrAlreadyMounted)
}

func TestMounter_ConflictAttachesNothing(t *testing.T) {
	reg := registryOf(t, newLoaded("a", "/tools"), newLoaded("b", "/tools/b"))
	router := mux.NewRouter()
	m := NewMounter(quietLogger())

	err := m.Mount(router, reg)

	var conflict *RouteConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, "b", conflict.Plugin)
	assert.Equal(t, "a", conflict.Conflicting)
	assert.False(t, m.Mounted())
	assert.False(t, reg.Sealed())

	w := serve(router, http.MethodGet, "/tools")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCheckConflicts(t *testing.T) {
	tests := []struct {
		name     string
		paths    []string
		reserved []string
		wantErr  bool
		other    string
	}{
		{name: "disjoint", paths: []string{"/a", "/b", "/ab"}},
		{name: "shared prefix string only", paths: []string{"/app", "/apps"}},
		{name: "identical", paths: []string{"/a", "/a"}, wantErr: true, other: "p0"},
		{name: "nested", paths: []string{"/a/b", "/a"}, wantErr: true, other: "p0"},
		{name: "deeply nested", paths: []string{"/a", "/x", "/a/b/c"}, wantErr: true, other: "p0"},
		{name: "reserved", paths: []string{"/api/v2"}, reserved: []string{"/api"}, wantErr: true, other: "host"},
		{name: "reserved exact", paths: []string{"/healthz"}, reserved: []string{"/api", "/healthz"}, wantErr: true, other: "host"},
		{name: "reserved sibling", paths: []string{"/apis"}, reserved: []string{"/api"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var loaded []*LoadedPlugin
			for i, p := range tt.paths {
				loaded = append(loaded, newLoaded(fmt.Sprintf("p%d", i), p))
			}

			err := CheckConflicts(loaded, tt.reserved...)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}

			var conflict *RouteConflictError
			require.True(t, errors.As(err, &conflict), "got %v", err)
			assert.Equal(t, tt.other, conflict.Conflicting)
		})
	}
}
