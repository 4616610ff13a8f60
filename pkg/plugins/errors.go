package plugins

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is returned when a request under a plugin's router path
	// matches neither a static file nor a plugin route.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyMounted is returned when Mount is called more than once
	ErrAlreadyMounted = errors.New("plugins already mounted")

	// ErrRegistrySealed is returned when registering after mounting
	ErrRegistrySealed = errors.New("registry is sealed")
)

// SpecifierError reports a malformed plugin specifier
type SpecifierError struct {
	Specifier string
	Reason    string
}

func (e *SpecifierError) Error() string {
	return fmt.Sprintf("invalid plugin specifier %q: %s", e.Specifier, e.Reason)
}

// ManifestError reports missing or invalid plugin metadata
type ManifestError struct {
	ModulePath string
	Problems   []ValidationError
	Err        error
}

func (e *ManifestError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "invalid plugin manifest in %s", e.ModulePath)
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	for i, p := range e.Problems {
		if i == 0 && e.Err == nil {
			b.WriteString(": ")
		} else {
			b.WriteString("; ")
		}
		b.WriteString(p.String())
	}
	return b.String()
}

func (e *ManifestError) Unwrap() error {
	return e.Err
}

// DuplicateNameError is returned when a plugin name is registered twice
type DuplicateNameError struct {
	Name           string
	ModulePath     string
	ExistingModule string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("plugin already registered: %s (%s conflicts with %s)", e.Name, e.ModulePath, e.ExistingModule)
}

// RouteConflictError is returned when two router paths overlap
type RouteConflictError struct {
	Plugin      string
	RouterPath  string
	Conflicting string
	OtherPath   string
}

func (e *RouteConflictError) Error() string {
	return fmt.Sprintf("router path %s of plugin %s overlaps %s of %s", e.RouterPath, e.Plugin, e.OtherPath, e.Conflicting)
}
