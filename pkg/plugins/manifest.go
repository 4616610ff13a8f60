package plugins

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// Manifest file names, in lookup order
var manifestFiles = []string{"plugin.yaml", "plugin.yml", "plugin.json"}

// LoadManifest loads and parses a plugin manifest from a file. ModulePath is
// set to the absolute directory containing the file.
func LoadManifest(file string) (*Manifest, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve manifest path: %w", err)
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	// JSON is a subset of YAML so plugin.json goes through the same decoder
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	manifest.ModulePath = filepath.Dir(abs)

	return &manifest, nil
}

// LoadManifestFromDir loads a plugin manifest from a module directory
func LoadManifestFromDir(dir string) (*Manifest, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, &ManifestError{ModulePath: dir, Err: fmt.Errorf("failed to resolve module path: %w", err)}
	}

	info, err := os.Stat(abs)
	if err != nil {
		return nil, &ManifestError{ModulePath: abs, Err: fmt.Errorf("unreadable module: %w", err)}
	}
	if !info.IsDir() {
		return nil, &ManifestError{ModulePath: abs, Err: errors.New("unreadable module: not a directory")}
	}

	file, ok := FindManifestFile(abs)
	if !ok {
		return nil, &ManifestError{ModulePath: abs, Err: fmt.Errorf("no manifest found (looked for %s)", strings.Join(manifestFiles, ", "))}
	}

	manifest, err := LoadManifest(file)
	if err != nil {
		return nil, &ManifestError{ModulePath: abs, Err: err}
	}

	if problems := ValidateManifest(manifest); len(problems) > 0 {
		return nil, &ManifestError{ModulePath: abs, Problems: problems}
	}

	return manifest, nil
}

// FindManifestFile returns the manifest file inside dir, if any
func FindManifestFile(dir string) (string, bool) {
	for _, name := range manifestFiles {
		p := filepath.Join(dir, name)
		info, err := os.Stat(p)
		if err == nil && info.Mode().IsRegular() {
			return p, true
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", false
		}
	}
	return "", false
}

// ValidateManifest performs basic validation on a plugin manifest
func ValidateManifest(manifest *Manifest) []ValidationError {
	var errs []ValidationError

	// Required fields
	if manifest.Name == "" {
		errs = append(errs, ValidationError{Field: "name", Message: "Plugin name is required"})
	} else if strings.ContainsAny(manifest.Name, "/\\ ") {
		errs = append(errs, ValidationError{Field: "name", Message: fmt.Sprintf("Invalid plugin name: %q", manifest.Name)})
	}

	if manifest.Version == "" {
		errs = append(errs, ValidationError{Field: "version", Message: "Version is required"})
	} else if _, err := semver.NewVersion(manifest.Version); err != nil {
		errs = append(errs, ValidationError{Field: "version", Message: fmt.Sprintf("Invalid semver format: %s", manifest.Version)})
	}

	if manifest.DisplayName == "" {
		errs = append(errs, ValidationError{Field: "displayName", Message: "Display name is required"})
	}

	if manifest.RouterPath == "" {
		errs = append(errs, ValidationError{Field: "routerPath", Message: "Router path is required"})
	} else if msg := checkRouterPath(manifest.RouterPath); msg != "" {
		errs = append(errs, ValidationError{Field: "routerPath", Message: msg})
	}

	if manifest.HomepageURL != "" && !isHTTPURL(manifest.HomepageURL) {
		errs = append(errs, ValidationError{Field: "homepageURL", Message: fmt.Sprintf("Invalid homepage URL: %s", manifest.HomepageURL)})
	}

	return errs
}

func checkRouterPath(p string) string {
	switch {
	case !strings.HasPrefix(p, "/"):
		return fmt.Sprintf("Router path must start with '/': %s", p)
	case p == "/":
		return "Router path must not be the root path"
	case strings.HasSuffix(p, "/"):
		return fmt.Sprintf("Router path must not end with '/': %s", p)
	case strings.ContainsAny(p, "?#%{}"):
		return fmt.Sprintf("Router path contains invalid characters: %s", p)
	case path.Clean(p) != p:
		return fmt.Sprintf("Router path is not clean: %s", p)
	}
	return ""
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
