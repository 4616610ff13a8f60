// Package plugins discovers, validates, registers and mounts host plugins.
//
// # Overview
//
// A plugin is a module directory holding a manifest (plugin.yaml, plugin.yml
// or plugin.json) and, optionally, static assets. The Go implementation that
// backs it is compiled into the host and selected through a Catalog.
//
// # Plugin System
//
// Specifier: "path[:name]" naming the module directory and the catalog entry
// Catalog: build-time table of plugin factories
// Loader: resolves specifiers and search directories into loaded plugins
// Registry: insertion-ordered, written once at startup
// Mounter: attaches plugin routes and static assets to the host router
//
// # Capabilities
//
//	type Plugin interface {
//		Applications() []Application
//	}
//
// Optional: RoutePlugin (RegisterRoutes), StaticPlugin (StaticDir) and
// InitPlugin (Init).
//
// # Usage Example
//
//	catalog := plugins.NewCatalog()
//	catalog.MustAdd("meow", testplugin.New)
//
//	specs, err := plugins.ParseSpecifiers([]string{"/srv/plugins/test-plugin:meow"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	reg := plugins.NewRegistry()
//	loader := plugins.NewLoader(catalog, logger)
//	if err := loader.LoadAll(ctx, specs, reg); err != nil {
//		log.Fatal(err)
//	}
//
//	router := mux.NewRouter()
//	if err := plugins.NewMounter(logger, "/api").Mount(router, reg); err != nil {
//		log.Fatal(err)
//	}
//
// # Related Packages
//
//   - pkg/apps: Aggregated application listing
//   - pkg/server: Host HTTP server
package plugins
