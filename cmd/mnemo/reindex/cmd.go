// Package reindexcmd implements `mnemo rebuild-index`.
package reindexcmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/five82/mnemo/cmd/mnemo/shared"
)

// Command implements `mnemo rebuild-index`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the rebuild-index command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "rebuild-index",
		Short: "Ask the backend to rebuild its search index",
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, _ []string) error {
	rt, err := c.ctx.Runtime()
	if err != nil {
		return err
	}
	defer rt.Close()

	resp, err := shared.Check(rt.Client.RebuildIndex(cmd.Context()))
	if err != nil {
		return err
	}
	if resp.Count > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Index rebuilt (%d entries)\n", resp.Count)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Index rebuilt")
	return nil
}
