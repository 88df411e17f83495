// Package askcmd implements `mnemo ask`.
package askcmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/mnemo/cmd/mnemo/shared"
)

// Command implements `mnemo ask`.
type Command struct {
	ctx      *shared.Context
	cmd      *cobra.Command
	evidence bool
	best     bool
}

// New creates the ask command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "ask <question>...",
		Short: "Ask a question against stored memories",
		Args:  cobra.MinimumNArgs(1),
		RunE:  c.run,
	}
	c.cmd.Flags().BoolVar(&c.evidence, "evidence", true, "print the supporting evidence")
	c.cmd.Flags().BoolVar(&c.best, "best-match", false, "return the single best matching memory instead of an answer")
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

func (c *Command) run(cmd *cobra.Command, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		return fmt.Errorf("question is empty")
	}

	rt, err := c.ctx.Runtime()
	if err != nil {
		return err
	}
	defer rt.Close()

	out := cmd.OutOrStdout()

	if c.best {
		resp, err := shared.Check(rt.Client.Search(cmd.Context(), query))
		if err != nil {
			return err
		}
		if resp.BestMatch == nil {
			fmt.Fprintln(out, "No matching memory.")
			return nil
		}
		fmt.Fprintln(out, *resp.BestMatch)
		return nil
	}

	resp, err := shared.Check(rt.Client.SmartQuery(cmd.Context(), query))
	if err != nil {
		return err
	}
	fmt.Fprintln(out, strings.TrimSpace(resp.Answer))
	if !c.evidence || len(resp.Evidence) == 0 {
		return nil
	}
	fmt.Fprintf(out, "\nEvidence (%d):\n", len(resp.Evidence))
	for i, ev := range resp.Evidence {
		name := ev.Filename
		if name == "" {
			name = ev.DocumentID.String()
		}
		fmt.Fprintf(out, "  %d. %s\n", i+1, name)
		if chunk := strings.TrimSpace(ev.Chunk); chunk != "" {
			fmt.Fprintf(out, "     %s\n", oneLine(chunk, 160))
		}
		if ref := ev.FileURL; ref != "" {
			fmt.Fprintf(out, "     %s\n", rt.Client.ResolveURL(ref))
		}
	}
	return nil
}

func oneLine(s string, limit int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
