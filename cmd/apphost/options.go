package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/platinummonkey/apphost/pkg/config"
)

// hostOptions holds the command line overrides for the environment config
type hostOptions struct {
	plugins    []string
	pluginDirs []string
	host       string
	port       string
	logLevel   string
	logFormat  string
}

func (o *hostOptions) bind(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringArrayVar(&o.plugins, "plugin", nil, "Plugin specifier path[:name], repeatable")
	flags.StringSliceVar(&o.pluginDirs, "plugin-dir", nil, "Directory whose subdirectories are plugin modules")
	flags.StringVar(&o.host, "host", "", "Address to listen on (default from APPHOST_HOST)")
	flags.StringVarP(&o.port, "port", "p", "", "Port to listen on (default from APPHOST_PORT)")
	flags.StringVar(&o.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flags.StringVar(&o.logFormat, "log-format", "", "Log format: json, text")
}

// resolve loads the environment config and applies the flags that were set.
// Flag specifiers are appended to the ones from the environment.
func (o *hostOptions) resolve(flags *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	if flags.Changed("plugin") {
		cfg.Plugins.Specifiers = append(cfg.Plugins.Specifiers, o.plugins...)
	}
	if flags.Changed("plugin-dir") {
		cfg.Plugins.SearchDirs = append(cfg.Plugins.SearchDirs, o.pluginDirs...)
	}
	if flags.Changed("host") {
		cfg.Server.Host = o.host
	}
	if flags.Changed("port") {
		cfg.Server.Port = o.port
	}
	if flags.Changed("log-level") {
		cfg.Observability.LogLevel = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Observability.LogFormat = o.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
