// Package logscmd implements `mnemo logs`.
package logscmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/mnemo/cmd/mnemo/shared"
	"github.com/five82/mnemo/internal/config"
	"github.com/five82/mnemo/internal/logtail"
)

const defaultLines = 50

// Command implements `mnemo logs`.
type Command struct {
	ctx    *shared.Context
	cmd    *cobra.Command
	follow bool
	lines  int
	plain  bool
}

// New creates the logs command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "logs",
		Short: "Show mnemo's own log file",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	c.cmd.Flags().BoolVarP(&c.follow, "follow", "f", false, "keep printing lines as they are written")
	c.cmd.Flags().IntVarP(&c.lines, "lines", "n", defaultLines, "number of trailing lines to show (0 for all)")
	c.cmd.Flags().BoolVar(&c.plain, "plain", false, "print lines without color")
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	// Logs are read straight from the file; building a runtime would append to it.
	cfg, err := config.Load(c.ctx.ConfigPath)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	emit := func(line string) {
		if !c.plain {
			line = logtail.ColorizeLine(line)
		}
		fmt.Fprintln(out, line)
	}

	if c.follow {
		return logtail.Follow(cmd.Context(), cfg.LogFile, c.lines, emit)
	}

	lines, err := logtail.Read(cfg.LogFile, c.lines)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "No log lines in %s\n", cfg.LogFile)
		return nil
	}
	for _, line := range lines {
		emit(line)
	}
	return nil
}
