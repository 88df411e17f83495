// Package addcmd implements `mnemo add`.
package addcmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/mnemo/cmd/mnemo/shared"
)

// Command implements `mnemo add`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the add command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "add <text>... | add -",
		Short: "Store a text memory",
		Long:  "Stores the arguments, joined by spaces, as one memory. A single \"-\" reads the memory from stdin.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.run,
	}
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, args []string) error {
	content := strings.Join(args, " ")
	if len(args) == 1 && args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		content = string(data)
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return errors.New("memory text is empty")
	}

	rt, err := c.ctx.Runtime()
	if err != nil {
		return err
	}
	defer rt.Close()

	resp, err := shared.Check(rt.Client.AddMemory(cmd.Context(), content))
	if err != nil {
		return err
	}
	status := resp.Status
	if status == "" {
		status = "ok"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved memory (%s)\n", status)
	return nil
}
