package main

import (
	"context"
	"net/url"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/apphost/pkg/config"
	"github.com/platinummonkey/apphost/pkg/network"
	"github.com/platinummonkey/apphost/pkg/observability"
	"github.com/platinummonkey/apphost/pkg/plugins"
	"github.com/platinummonkey/apphost/pkg/plugins/static"
	"github.com/platinummonkey/apphost/pkg/server"
)

// newCatalog is the table of plugin implementations built into the binary.
// Specifiers whose name has no entry get the manifest-only plugin.
func newCatalog() *plugins.Catalog {
	catalog := plugins.NewCatalog().
		MustAdd("static", static.New)
	catalog.SetDefault(static.New)
	return catalog
}

// loadRegistry resolves every configured plugin. Any failure is returned
// as-is so the caller can refuse to start.
func loadRegistry(ctx context.Context, cfg *config.Config, log *logrus.Logger, metrics *observability.Metrics) (*plugins.Registry, error) {
	specs, err := plugins.ParseSpecifiers(cfg.Plugins.Specifiers)
	if err != nil {
		return nil, err
	}

	netCfg, err := network.FromEnv(os.LookupEnv)
	if err != nil {
		return nil, err
	}
	if netCfg.Enabled() {
		log.WithFields(logrus.Fields{
			"http_proxy":  redacted(netCfg.HTTPProxy),
			"https_proxy": redacted(netCfg.HTTPSProxy),
		}).Info("Using outbound proxy")
	}

	opts := []plugins.LoaderOption{
		plugins.WithSearchDirs(cfg.Plugins.SearchDirs...),
		plugins.WithConcurrency(cfg.Plugins.LoadConcurrency),
		plugins.WithHTTPClient(netCfg.NewClient(cfg.Network.OutboundTimeout)),
	}
	if metrics != nil {
		opts = append(opts, plugins.WithObserver(func(ev plugins.LoadEvent) {
			if ev.Err != nil {
				metrics.PluginLoadErrors.WithLabelValues(ev.Specifier.String()).Inc()
				return
			}
			metrics.PluginLoadDuration.WithLabelValues(ev.Name).Observe(ev.Duration.Seconds())
		}))
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Plugins.StartupTimeout)
	defer cancel()

	catalog := newCatalog()
	log.WithField("implementations", catalog.Names()).Debug("Plugin catalog")

	reg := plugins.NewRegistry()
	if err := plugins.NewLoader(catalog, log, opts...).LoadAll(ctx, specs, reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// checkRoutes runs the mount-time conflict check without a router
func checkRoutes(reg *plugins.Registry) error {
	return plugins.CheckConflicts(reg.All(), server.ReservedPaths...)
}

func redacted(u *url.URL) string {
	if u == nil {
		return ""
	}
	return u.Redacted()
}
