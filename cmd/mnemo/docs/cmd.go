// Package docscmd implements the `mnemo docs` command group.
package docscmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/mnemo/cmd/mnemo/shared"
	"github.com/five82/mnemo/internal/memory"
)

// Command implements `mnemo docs`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the docs command group. Without a subcommand it lists.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	list := newList(ctx)
	c.cmd = &cobra.Command{
		Use:   "docs",
		Short: "List or delete stored documents",
		Args:  cobra.NoArgs,
		RunE:  list.RunE,
	}
	c.cmd.AddCommand(list, newDelete(ctx))
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

// ---------------------------------------------------------------------------
// docs list
// ---------------------------------------------------------------------------

func newList(ctx *shared.Context) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := ctx.Runtime()
			if err != nil {
				return err
			}
			defer rt.Close()

			docs, err := shared.Check(rt.Client.ListDocuments(cmd.Context()))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(docs)
			}
			if len(docs) == 0 {
				fmt.Fprintln(out, "No documents stored.")
				return nil
			}
			fmt.Fprintln(out, shared.Table([]string{"ID", "Name", "Type", "Created"}, documentRows(docs)))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw document list as JSON")
	return cmd
}

func documentRows(docs []memory.Document) [][]string {
	rows := make([][]string, 0, len(docs))
	for _, d := range docs {
		created := d.CreatedAt
		if t := d.ParsedCreatedAt(); !t.IsZero() {
			created = t.Local().Format(time.DateTime)
		}
		rows = append(rows, []string{d.DocumentID.String(), d.Filename, d.Type, created})
	}
	return rows
}

// ---------------------------------------------------------------------------
// docs delete
// ---------------------------------------------------------------------------

func newDelete(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <document-id>",
		Short: "Delete a document and its index entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := ctx.Runtime()
			if err != nil {
				return err
			}
			defer rt.Close()

			if _, err := shared.Check(rt.Client.DeleteDocument(cmd.Context(), memory.ID(args[0]))); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted document %s\n", args[0])
			return nil
		},
	}
}
