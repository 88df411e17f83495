// Package rootcmd wires the root cobra.Command for the mnemo binary.
package rootcmd

import (
	"time"

	"github.com/spf13/cobra"

	addcmd "github.com/five82/mnemo/cmd/mnemo/add"
	askcmd "github.com/five82/mnemo/cmd/mnemo/ask"
	configcmd "github.com/five82/mnemo/cmd/mnemo/config"
	docscmd "github.com/five82/mnemo/cmd/mnemo/docs"
	facescmd "github.com/five82/mnemo/cmd/mnemo/faces"
	logscmd "github.com/five82/mnemo/cmd/mnemo/logs"
	reindexcmd "github.com/five82/mnemo/cmd/mnemo/reindex"
	sharecmd "github.com/five82/mnemo/cmd/mnemo/share"
	"github.com/five82/mnemo/cmd/mnemo/shared"
	uploadcmd "github.com/five82/mnemo/cmd/mnemo/upload"
	waitcmd "github.com/five82/mnemo/cmd/mnemo/wait"
	"github.com/five82/mnemo/internal/app"
)

// New creates the root command. Without a subcommand it runs the TUI.
func New() *cobra.Command {
	ctx := &shared.Context{}
	var poll time.Duration

	root := &cobra.Command{
		Use:           "mnemo",
		Short:         "Terminal client for the memory backend",
		Version:       app.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return app.Run(cmd.Context(), app.Options{
				ConfigPath:  ctx.ConfigPath,
				PrefsPath:   ctx.PrefsPath,
				PollEvery:   poll,
				MetricsAddr: ctx.MetricsAddr,
			})
		},
	}

	root.PersistentFlags().StringVar(&ctx.ConfigPath, "config", "", "override mnemo config path (default ~/.config/mnemo/config.toml)")
	root.PersistentFlags().StringVar(&ctx.PrefsPath, "prefs", "", "override preferences path (default ~/.config/mnemo/prefs.toml)")
	root.PersistentFlags().StringVar(&ctx.MetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	root.PersistentFlags().StringVar(&ctx.BackendURL, "backend", "", "use this backend URL without saving it")
	root.Flags().DurationVar(&poll, "poll", 0, "library refresh interval (default 15s)")

	root.AddCommand(
		waitcmd.New(ctx).Cmd(),
		addcmd.New(ctx).Cmd(),
		uploadcmd.New(ctx).Cmd(),
		askcmd.New(ctx).Cmd(),
		docscmd.New(ctx).Cmd(),
		facescmd.New(ctx).Cmd(),
		reindexcmd.New(ctx).Cmd(),
		sharecmd.New(ctx).Cmd(),
		configcmd.New(ctx).Cmd(),
		logscmd.New(ctx).Cmd(),
	)

	return root
}
