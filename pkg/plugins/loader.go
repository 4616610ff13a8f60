package plugins

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// DefaultLoadConcurrency bounds how many plugin modules are loaded at once
const DefaultLoadConcurrency = 4

// LoadEvent is reported to the loader's observer when a plugin fails to
// resolve or finishes Init
type LoadEvent struct {
	Specifier Specifier
	Name      string
	Duration  time.Duration
	Err       error
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithSearchDirs adds directories whose subdirectories are loaded as plugins
func WithSearchDirs(dirs ...string) LoaderOption {
	return func(l *Loader) {
		l.searchDirs = append(l.searchDirs, dirs...)
	}
}

// WithConcurrency sets the maximum number of modules loaded in parallel
func WithConcurrency(n int) LoaderOption {
	return func(l *Loader) {
		if n > 0 {
			l.concurrency = n
		}
	}
}

// WithHTTPClient sets the client handed to plugins for outbound requests
func WithHTTPClient(c *http.Client) LoaderOption {
	return func(l *Loader) {
		l.httpClient = c
	}
}

// WithObserver registers a callback invoked after each plugin load attempt
func WithObserver(fn func(LoadEvent)) LoaderOption {
	return func(l *Loader) {
		l.observer = fn
	}
}

// Loader resolves specifiers into loaded plugins and fills a registry
type Loader struct {
	catalog     *Catalog
	searchDirs  []string
	concurrency int
	httpClient  *http.Client
	observer    func(LoadEvent)
	log         *logrus.Logger
}

// NewLoader creates a new plugin loader
func NewLoader(catalog *Catalog, log *logrus.Logger, opts ...LoaderOption) *Loader {
	if log == nil {
		log = logrus.New()
	}
	if catalog == nil {
		catalog = NewCatalog()
	}

	l := &Loader{
		catalog:     catalog,
		concurrency: DefaultLoadConcurrency,
		httpClient:  http.DefaultClient,
		log:         log,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// DiscoverSpecifiers scans the search directories. Every immediate
// subdirectory holding a manifest becomes a specifier named after the
// directory; other entries are ignored.
func (l *Loader) DiscoverSpecifiers() ([]Specifier, error) {
	var specs []Specifier

	for _, dir := range l.searchDirs {
		if _, err := os.Stat(dir); errors.Is(err, fs.ErrNotExist) {
			l.log.Debugf("Plugin directory does not exist: %s", dir)
			continue
		}

		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read plugin directory %s: %w", dir, err)
		}

		for _, entry := range entries {
			if !entry.IsDir() {
				continue
			}

			pluginDir := filepath.Join(dir, entry.Name())
			if _, ok := FindManifestFile(pluginDir); !ok {
				l.log.Debugf("Skipping %s: no plugin manifest", pluginDir)
				continue
			}

			specs = append(specs, Specifier{ModulePath: pluginDir, Name: entry.Name()})
		}
	}

	return specs, nil
}

// LoadAll discovers plugins in the search directories, loads them followed by
// the explicit specifiers, and registers the results in that order. Manifest
// names are checked for duplicates before any plugin's Init runs. The first
// failure aborts the whole load and nothing is registered.
func (l *Loader) LoadAll(ctx context.Context, specs []Specifier, reg *Registry) error {
	discovered, err := l.DiscoverSpecifiers()
	if err != nil {
		return err
	}
	all := append(discovered, specs...)

	loaded := make([]*LoadedPlugin, len(all))
	started := make([]time.Time, len(all))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, spec := range all {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			started[i] = time.Now()
			p, err := l.resolve(spec)
			if err != nil {
				l.observe(spec, started[i], nil, err)
				return err
			}
			loaded[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := checkNames(loaded, reg); err != nil {
		return err
	}

	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, p := range loaded {
		g.Go(func() error {
			err := l.initialize(gctx, p)
			l.observe(all[i], started[i], p, err)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for _, p := range loaded {
		if err := reg.Register(p); err != nil {
			return err
		}
		l.log.Infof("Loaded plugin: %s v%s at %s", p.Manifest.Name, p.Manifest.Version, p.Manifest.RouterPath)
	}

	return nil
}

// LoadPlugin loads and initializes a single plugin without registering it
func (l *Loader) LoadPlugin(ctx context.Context, spec Specifier) (p *LoadedPlugin, err error) {
	start := time.Now()
	defer func() {
		l.observe(spec, start, p, err)
	}()

	p, err = l.resolve(spec)
	if err != nil {
		return nil, err
	}
	if err := l.initialize(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (l *Loader) observe(spec Specifier, start time.Time, p *LoadedPlugin, err error) {
	if l.observer == nil {
		return
	}
	ev := LoadEvent{Specifier: spec, Duration: time.Since(start), Err: err}
	if p != nil {
		ev.Name = p.Manifest.Name
	}
	l.observer(ev)
}

// resolve reads the manifest, builds the implementation and resolves its
// static directory and applications. Nothing plugin-defined runs except the
// factory.
func (l *Loader) resolve(spec Specifier) (*LoadedPlugin, error) {
	manifest, err := LoadManifestFromDir(spec.ModulePath)
	if err != nil {
		return nil, err
	}

	factory, ok := l.catalog.Lookup(spec.Name)
	if !ok {
		return nil, &ManifestError{
			ModulePath: manifest.ModulePath,
			Err:        fmt.Errorf("no plugin implementation registered for %q (available: %s)", spec.Name, strings.Join(l.catalog.Names(), ", ")),
		}
	}

	impl, err := factory(manifest)
	if err != nil {
		return nil, &ManifestError{ModulePath: manifest.ModulePath, Err: fmt.Errorf("failed to create plugin: %w", err)}
	}
	if impl == nil {
		return nil, &ManifestError{ModulePath: manifest.ModulePath, Err: errors.New("plugin factory returned nil")}
	}

	p := &LoadedPlugin{Manifest: manifest, Plugin: impl}

	if sp, ok := impl.(StaticPlugin); ok && sp.StaticDir() != "" {
		dir, err := resolveStaticDir(manifest.ModulePath, sp.StaticDir())
		if err != nil {
			return nil, &ManifestError{ModulePath: manifest.ModulePath, Err: err}
		}
		p.staticDir = dir
	}

	apps, problems := resolveApplications(manifest, impl.Applications())
	if len(problems) > 0 {
		return nil, &ManifestError{ModulePath: manifest.ModulePath, Problems: problems}
	}
	p.applications = apps

	l.log.Debugf("Resolved plugin %s from %s (%d applications)", manifest.Name, spec, len(apps))
	return p, nil
}

func (l *Loader) initialize(ctx context.Context, p *LoadedPlugin) error {
	ip, ok := p.Plugin.(InitPlugin)
	if !ok {
		return nil
	}
	env := Env{
		Logger:     l.log.WithField("plugin", p.Manifest.Name),
		HTTPClient: l.httpClient,
	}
	if err := ip.Init(ctx, env); err != nil {
		return fmt.Errorf("plugin %s init failed: %w", p.Manifest.Name, err)
	}
	return nil
}

// checkNames reports the first plugin whose manifest name is already in reg
// or taken by an earlier plugin of the batch.
func checkNames(batch []*LoadedPlugin, reg *Registry) error {
	seen := make(map[string]*LoadedPlugin, len(batch))
	for _, p := range batch {
		name := p.Manifest.Name
		existing, ok := reg.Find(name)
		if !ok {
			existing, ok = seen[name]
		}
		if ok {
			return &DuplicateNameError{
				Name:           name,
				ModulePath:     p.Manifest.ModulePath,
				ExistingModule: existing.Manifest.ModulePath,
			}
		}
		seen[name] = p
	}
	return nil
}

func resolveStaticDir(modulePath, rel string) (string, error) {
	if filepath.IsAbs(rel) {
		return "", fmt.Errorf("static directory must be relative to the module: %s", rel)
	}
	dir := filepath.Join(modulePath, rel)
	if dir != modulePath && !strings.HasPrefix(dir, modulePath+string(filepath.Separator)) {
		return "", fmt.Errorf("static directory escapes the module: %s", rel)
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("unreadable static directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("static directory is not a directory: %s", rel)
	}
	return dir, nil
}

// resolveApplications roots every application path and icon under the
// plugin's router path and fills in the plugin homepage where missing.
func resolveApplications(m *Manifest, apps []Application) ([]Application, []ValidationError) {
	var problems []ValidationError
	out := make([]Application, 0, len(apps))

	for i, app := range apps {
		field := fmt.Sprintf("applications[%d]", i)
		if app.Name == "" {
			problems = append(problems, ValidationError{Field: field + ".name", Message: "Application name is required"})
		}

		p, ok := joinUnder(m.RouterPath, app.Path)
		if !ok {
			problems = append(problems, ValidationError{Field: field + ".path", Message: fmt.Sprintf("Path escapes router path: %s", app.Path)})
		}
		app.Path = p

		if app.IconPath != "" {
			icon, ok := joinUnder(m.RouterPath, app.IconPath)
			if !ok {
				problems = append(problems, ValidationError{Field: field + ".iconPath", Message: fmt.Sprintf("Icon path escapes router path: %s", app.IconPath)})
			}
			app.IconPath = icon
		}

		if app.HomepageURL == "" {
			app.HomepageURL = m.HomepageURL
		}
		out = append(out, app)
	}

	return out, problems
}

func joinUnder(root, rel string) (string, bool) {
	joined := path.Join(root, rel)
	return joined, joined == root || strings.HasPrefix(joined, root+"/")
}
