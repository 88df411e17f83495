// Package facescmd implements the `mnemo faces` command group.
package facescmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/five82/mnemo/cmd/mnemo/shared"
	"github.com/five82/mnemo/internal/app"
	"github.com/five82/mnemo/internal/memory"
)

// Command implements `mnemo faces`.
type Command struct {
	ctx *shared.Context
	cmd *cobra.Command
}

// New creates the faces command group. Without a subcommand it lists folders.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	folders := newFolders(ctx)
	c.cmd = &cobra.Command{
		Use:   "faces",
		Short: "Manage recognized faces and their labels",
		Args:  cobra.NoArgs,
		RunE:  folders.RunE,
	}
	c.cmd.AddCommand(
		folders,
		newUpload(ctx),
		newMatch(ctx),
		newSearch(ctx),
		newLabel(ctx),
		newRename(ctx),
		newUnlabel(ctx),
		newDelete(ctx),
	)
	return c
}

// Cmd returns the cobra command.
func (c *Command) Cmd() *cobra.Command { return c.cmd }

// withRuntime adapts a runtime-taking function into a cobra RunE.
func withRuntime(ctx *shared.Context, fn func(cmd *cobra.Command, rt *app.Runtime, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		rt, err := ctx.Runtime()
		if err != nil {
			return err
		}
		defer rt.Close()
		return fn(cmd, rt, args)
	}
}

func faceRows(rt *app.Runtime, faces []memory.Face) [][]string {
	rows := make([][]string, 0, len(faces))
	for _, f := range faces {
		label := f.Label
		if label == "" {
			label = "(unlabeled)"
		}
		score := ""
		if f.Score > 0 {
			score = strconv.FormatFloat(f.Score, 'f', 2, 64)
		}
		rows = append(rows, []string{f.FaceID.String(), f.ClusterID.String(), label, score, rt.Client.ResolveURL(f.ImageURL)})
	}
	return rows
}

var faceHeaders = []string{"Face", "Cluster", "Label", "Score", "Image"}

// ---------------------------------------------------------------------------
// faces folders
// ---------------------------------------------------------------------------

func newFolders(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "folders",
		Short: "List face labels with their face counts",
		Args:  cobra.NoArgs,
		RunE: withRuntime(ctx, func(cmd *cobra.Command, rt *app.Runtime, _ []string) error {
			folders, err := shared.Check(rt.Client.FaceFolders(cmd.Context()))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(folders) == 0 {
				fmt.Fprintln(out, "No labeled faces yet.")
				return nil
			}
			rows := make([][]string, 0, len(folders))
			for _, f := range folders {
				rows = append(rows, []string{f.Label, strconv.Itoa(f.Count), rt.Client.ResolveURL(f.PreviewURL)})
			}
			fmt.Fprintln(out, shared.Table([]string{"Label", "Faces", "Preview"}, rows))
			return nil
		}),
	}
}

// ---------------------------------------------------------------------------
// faces upload
// ---------------------------------------------------------------------------

func newUpload(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "upload <image>",
		Short: "Detect and index the faces in an image",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(ctx, func(cmd *cobra.Command, rt *app.Runtime, args []string) error {
			file, err := memory.OpenFile(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			resp, err := shared.Check(rt.Client.UploadFace(cmd.Context(), file))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Detected %d face(s) in %s\n", len(resp.Faces), file.Name)
			if unmatched := resp.Unmatched(); len(unmatched) > 0 {
				fmt.Fprintf(out, "%d face(s) need a label; use `mnemo faces label <cluster-id> <name>`\n", len(unmatched))
				fmt.Fprintln(out, shared.Table(faceHeaders, faceRows(rt, unmatched)))
			}
			return nil
		}),
	}
}

// ---------------------------------------------------------------------------
// faces match
// ---------------------------------------------------------------------------

func newMatch(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "match <image>",
		Short: "Find faces similar to the first face in an image",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(ctx, func(cmd *cobra.Command, rt *app.Runtime, args []string) error {
			file, err := memory.OpenFile(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			resp, err := shared.Check(rt.Client.SearchFaceByImage(cmd.Context(), file))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(resp.Matches) == 0 {
				fmt.Fprintln(out, "No similar faces found.")
				return nil
			}
			fmt.Fprintln(out, shared.Table(faceHeaders, faceRows(rt, resp.Matches)))
			return nil
		}),
	}
}

// ---------------------------------------------------------------------------
// faces search
// ---------------------------------------------------------------------------

func newSearch(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "search <label>",
		Short: "List the faces filed under a label",
		Args:  cobra.MinimumNArgs(1),
		RunE: withRuntime(ctx, func(cmd *cobra.Command, rt *app.Runtime, args []string) error {
			label := strings.Join(args, " ")
			faces, err := shared.Check(rt.Client.SearchFaceByLabel(cmd.Context(), label))
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(faces) == 0 {
				fmt.Fprintf(out, "No faces labeled %q.\n", label)
				return nil
			}
			fmt.Fprintln(out, shared.Table(faceHeaders, faceRows(rt, faces)))
			return nil
		}),
	}
}

// ---------------------------------------------------------------------------
// faces label / rename / unlabel
// ---------------------------------------------------------------------------

func newLabel(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "label <cluster-id> <name>...",
		Short: "Name a face cluster",
		Args:  cobra.MinimumNArgs(2),
		RunE: withRuntime(ctx, func(cmd *cobra.Command, rt *app.Runtime, args []string) error {
			name := strings.Join(args[1:], " ")
			if _, err := shared.Check(rt.Client.LabelFace(cmd.Context(), memory.ID(args[0]), name)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Labeled cluster %s as %q\n", args[0], name)
			return nil
		}),
	}
}

func newRename(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <cluster-id> <name>...",
		Short: "Rename a labeled face cluster",
		Args:  cobra.MinimumNArgs(2),
		RunE: withRuntime(ctx, func(cmd *cobra.Command, rt *app.Runtime, args []string) error {
			name := strings.Join(args[1:], " ")
			if _, err := shared.Check(rt.Client.RenameLabel(cmd.Context(), memory.ID(args[0]), name)); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed cluster %s to %q\n", args[0], name)
			return nil
		}),
	}
}

func newUnlabel(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "unlabel <cluster-id>",
		Short: "Remove the label from a face cluster",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(ctx, func(cmd *cobra.Command, rt *app.Runtime, args []string) error {
			if _, err := shared.Check(rt.Client.RemoveLabel(cmd.Context(), memory.ID(args[0]))); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed label from cluster %s\n", args[0])
			return nil
		}),
	}
}

// ---------------------------------------------------------------------------
// faces delete
// ---------------------------------------------------------------------------

func newDelete(ctx *shared.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <face-id>",
		Short: "Delete a single face",
		Args:  cobra.ExactArgs(1),
		RunE: withRuntime(ctx, func(cmd *cobra.Command, rt *app.Runtime, args []string) error {
			if _, err := shared.Check(rt.Client.DeleteFace(cmd.Context(), memory.ID(args[0]))); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted face %s\n", args[0])
			return nil
		}),
	}
}
