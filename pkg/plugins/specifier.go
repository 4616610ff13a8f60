package plugins

import (
	"path/filepath"
	"strings"
)

// Specifier identifies a plugin module directory and the catalog name used to
// build it.
type Specifier struct {
	ModulePath string
	Name       string
	// Declared is true when the name came from the specifier rather than the
	// last path segment.
	Declared bool
}

func (s Specifier) String() string {
	if s.Declared {
		return s.ModulePath + ":" + s.Name
	}
	return s.ModulePath
}

// ParseSpecifier parses "path[:name]". The string is split on the first colon;
// without one the name is the final segment of path.
func ParseSpecifier(raw string) (Specifier, error) {
	if strings.TrimSpace(raw) == "" {
		return Specifier{}, &SpecifierError{Specifier: raw, Reason: "empty specifier"}
	}

	modulePath, name, declared := strings.Cut(raw, ":")
	if modulePath == "" {
		return Specifier{}, &SpecifierError{Specifier: raw, Reason: "empty module path"}
	}

	if declared {
		if name == "" {
			return Specifier{}, &SpecifierError{Specifier: raw, Reason: "empty name after ':'"}
		}
		return Specifier{ModulePath: modulePath, Name: name, Declared: true}, nil
	}

	name = lastSegment(modulePath)
	if name == "" {
		return Specifier{}, &SpecifierError{Specifier: raw, Reason: "cannot derive a name from the module path"}
	}
	return Specifier{ModulePath: modulePath, Name: name}, nil
}

// ParseSpecifiers parses every entry, stopping at the first error
func ParseSpecifiers(raw []string) ([]Specifier, error) {
	specs := make([]Specifier, 0, len(raw))
	for _, r := range raw {
		s, err := ParseSpecifier(r)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}

func lastSegment(p string) string {
	trimmed := strings.TrimRight(p, `/\`)
	if trimmed == "" {
		return ""
	}
	base := filepath.Base(trimmed)
	if base == "." || base == ".." {
		return ""
	}
	return base
}
