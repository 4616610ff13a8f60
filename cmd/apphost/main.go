package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &hostOptions{}

	rootCmd := &cobra.Command{
		Use:   "apphost",
		Short: "Serve plugin applications behind a single HTTP host",
		Long: `apphost loads plugin modules, validates their manifests and mounts each
plugin under its router path. The applications of every plugin are listed at
GET /api/applications.

Plugins are given as path[:name] specifiers with --plugin or APPHOST_PLUGINS,
or discovered in the directories named by --plugin-dir or APPHOST_PLUGIN_PATH.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	opts.bind(rootCmd)

	rootCmd.AddCommand(newPluginsCmd(opts))

	return rootCmd
}
