package plugins

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadedPlugin_Accessors(t *testing.T) {
	p := newLoaded("docs", "/docs")
	p.staticDir = "/opt/plugins/docs/public"
	p.applications = []Application{{Name: "Guide", Path: "/docs/guide"}}

	assert.Equal(t, "docs", p.Name())
	assert.Equal(t, "/docs", p.RouterPath())
	assert.Equal(t, "/opt/plugins/docs/public", p.StaticDir())

	apps := p.Applications()
	apps[0].Name = "changed"
	assert.Equal(t, "Guide", p.Applications()[0].Name)
}

func TestValidationError_String(t *testing.T) {
	v := ValidationError{Field: "routerPath", Message: "Router path is required"}
	assert.Equal(t, "routerPath: Router path is required", v.String())
}

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "specifier",
			err:  &SpecifierError{Specifier: ":x", Reason: "empty module path"},
			want: `invalid plugin specifier ":x": empty module path`,
		},
		{
			name: "duplicate",
			err:  &DuplicateNameError{Name: "docs", ModulePath: "/b", ExistingModule: "/a"},
			want: "plugin already registered: docs (/b conflicts with /a)",
		},
		{
			name: "route conflict",
			err:  &RouteConflictError{Plugin: "b", RouterPath: "/a/b", Conflicting: "a", OtherPath: "/a"},
			want: "router path /a/b of plugin b overlaps /a of a",
		},
		{
			name: "manifest with cause",
			err:  &ManifestError{ModulePath: "/a", Err: errors.New("no manifest found")},
			want: "invalid plugin manifest in /a: no manifest found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.want)
		})
	}
}
