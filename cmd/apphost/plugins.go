package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/platinummonkey/apphost/pkg/apps"
	"github.com/platinummonkey/apphost/pkg/observability"
)

func newPluginsCmd(opts *hostOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "Load and validate the configured plugins without serving them",
		Long: `Loads every configured plugin, checks router paths for conflicts and prints
the resulting applications. Exits non-zero when the host would refuse to start.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.resolve(cmd.Flags())
			if err != nil {
				return err
			}

			log, err := observability.NewLogger(cfg.Observability.LogLevel, cfg.Observability.LogFormat, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			reg, err := loadRegistry(ctx, cfg, log, nil)
			if err != nil {
				return err
			}
			if err := checkRoutes(reg); err != nil {
				return err
			}

			listing := apps.Aggregate(reg)
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(listing)
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PLUGIN\tVERSION\tAPPLICATION\tPATH")
			for _, p := range reg.All() {
				if len(p.Applications()) == 0 {
					fmt.Fprintf(w, "%s\t%s\t-\t%s\n", p.Name(), p.Manifest.Version, p.RouterPath())
				}
				for _, app := range p.Applications() {
					fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name(), p.Manifest.Version, app.Name, app.Path)
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the /api/applications document instead of a table")

	return cmd
}
