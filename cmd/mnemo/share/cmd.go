// Package sharecmd implements `mnemo share`.
package sharecmd

import (
	"fmt"
	"path"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/mnemo/cmd/mnemo/shared"
	"github.com/five82/mnemo/internal/share"
)

// Command implements `mnemo share`.
type Command struct {
	ctx       *shared.Context
	cmd       *cobra.Command
	exportDir string
}

// New creates the share command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "share <url-or-path> [filename]",
		Short: "Export a backend file, copy its link, or open it",
		Long: `Fetches the file and saves it into the export directory. When that is not
possible the link is copied to the clipboard, and failing that it is opened
with the system opener. Backend-relative paths such as /files/a.pdf are
resolved against the current backend URL.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: c.run,
	}
	c.cmd.Flags().StringVar(&c.exportDir, "export-dir", "", "override export_dir from the config file")
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, args []string) error {
	rt, err := c.ctx.Runtime()
	if err != nil {
		return err
	}
	defer rt.Close()

	target := rt.Client.ResolveURL(strings.TrimSpace(args[0]))
	filename := ""
	if len(args) > 1 {
		filename = args[1]
	} else if base := path.Base(strings.SplitN(target, "?", 2)[0]); base != "." && base != "/" {
		filename = base
	}

	dir := rt.Config.ExportDir
	if c.exportDir != "" {
		dir = c.exportDir
	}
	resolver := share.NewResolver(share.NewDesktopHost(dir), nil, rt.Recorder)
	outcome := resolver.Share(cmd.Context(), filename, target)

	out := cmd.OutOrStdout()
	switch outcome.Strategy {
	case share.StrategyNone:
		fmt.Fprintln(out, "Nothing to share.")
	case share.StrategyFileShare:
		fmt.Fprintf(out, "Saved %s (%s) to %s\n", filename, outcome.MIME, dir)
	case share.StrategyURLShare:
		fmt.Fprintf(out, "Copied %s to the clipboard\n", target)
	case share.StrategyOpen:
		fmt.Fprintf(out, "Opened %s\n", target)
	default:
		return fmt.Errorf("could not share %s: %w", target, lastError(outcome))
	}
	return nil
}

func lastError(o share.Outcome) error {
	for i := len(o.Attempts) - 1; i >= 0; i-- {
		if err := o.Attempts[i].Err; err != nil {
			return err
		}
	}
	if o.FetchErr != nil {
		return o.FetchErr
	}
	return fmt.Errorf("no share method available")
}
