// Package configcmd implements the `mnemo config` command group.
package configcmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/five82/mnemo/cmd/mnemo/shared"
	"github.com/five82/mnemo/internal/config"
	"github.com/five82/mnemo/internal/prefs"
)

// Command implements `mnemo config`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the config command group.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration and preferences",
		Args:  cobra.NoArgs,
		RunE:  c.runShow,
	}
	c.cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show the effective configuration and preferences",
			Args:  cobra.NoArgs,
			RunE:  c.runShow,
		},
		newGetURL(ctx),
		newSetURL(ctx),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) runShow(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(c.ctx.ConfigPath)
	if err != nil {
		return err
	}
	if c.ctx.MetricsAddr != "" {
		cfg.MetricsAddr = c.ctx.MetricsAddr
	}
	store := prefs.NewStore(c.ctx.PrefsPath, cfg.DefaultBackendURL)
	p := store.Load()

	configPath := c.ctx.ConfigPath
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	backendSource := "prefs"
	if p.BackendURL == "" {
		backendSource = "config"
	}
	backend := store.BaseURL()
	if c.ctx.BackendURL != "" {
		backend = c.ctx.BackendURL
		backendSource = "flag"
	}

	data := map[string]any{
		"config_path":    configPath,
		"prefs_path":     store.Path(),
		"backend_url":    backend,
		"backend_source": backendSource,
		"log_file":       cfg.LogFile,
		"log_level":      cfg.LogLevel,
		"metrics_addr":   cfg.MetricsAddr,
		"export_dir":     cfg.ExportDir,
		"boot": map[string]any{
			"probe_interval": cfg.Boot.ProbeInterval.String(),
			"loading_delay":  cfg.Boot.LoadingDelay.String(),
			"warmup_delay":   cfg.Boot.WarmupDelay.String(),
			"wait_attempts":  cfg.Boot.WaitAttempts,
			"wait_interval":  cfg.Boot.WaitInterval.String(),
			"confirm_ready":  cfg.Boot.ConfirmReady,
		},
		"prefs": map[string]any{
			"theme":        p.Theme,
			"gallery_size": p.GallerySize,
			"zoom_mode":    p.ZoomMode,
			"animations":   p.Animations,
		},
	}
	out, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), string(out))
	return nil
}

// ---------------------------------------------------------------------------
// get-url
// ---------------------------------------------------------------------------

func newGetURL(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "get-url",
		Short: "Print the backend URL requests will use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := prefsStore(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), store.BaseURL())
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// set-url
// ---------------------------------------------------------------------------

func newSetURL(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "set-url <url>",
		Short: "Persist the backend URL (an empty string reverts to the default)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := prefsStore(ctx)
			if err != nil {
				return err
			}
			if err := store.SetBaseURL(args[0]); err != nil {
				return err
			}
			if strings.TrimSpace(args[0]) == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Backend URL reset to %s\n", store.BaseURL())
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backend URL set to %s\n", store.BaseURL())
			return nil
		},
	}
}

func prefsStore(ctx *shared.Context) (*prefs.Store, error) {
	cfg, err := config.Load(ctx.ConfigPath)
	if err != nil {
		return nil, err
	}
	return prefs.NewStore(ctx.PrefsPath, cfg.DefaultBackendURL), nil
}
