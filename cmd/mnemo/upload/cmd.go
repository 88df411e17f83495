// Package uploadcmd implements `mnemo upload`.
package uploadcmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/five82/mnemo/cmd/mnemo/shared"
	"github.com/five82/mnemo/internal/memory"
)

const barWidth = 40

// Command implements `mnemo upload`.
type Command struct {
	ctx   *shared.Context
	cmd   *cobra.Command
	quiet bool
}

// New creates the upload command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "upload <file>...",
		Short: "Upload documents for indexing",
		Long: `Uploads each file to the backend, which stores it and indexes its text.
Files are sent one at a time; a failed upload is reported and the rest continue.
Progress stops at 99% until the backend confirms the upload.`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.run,
	}
	c.cmd.Flags().BoolVarP(&c.quiet, "quiet", "q", false, "do not report progress")
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

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		file, err := memory.OpenFile(path)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
			failed++
			continue
		}

		var rep reporter = nopReporter{}
		if !c.quiet {
			rep = newReporter(cmd.ErrOrStderr(), file.Name)
		}
		resp, err := shared.Check(rt.Client.UploadFile(cmd.Context(), file, rep.Report))
		_ = file.Close()
		rep.Finish(err == nil)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
			failed++
			continue
		}

		line := fmt.Sprintf("Uploaded %s", resp.Filename)
		if resp.DocumentID != "" {
			line += fmt.Sprintf(" as %s", resp.DocumentID)
		}
		if resp.ChunksAdded != nil {
			line += fmt.Sprintf(" (%d chunks)", *resp.ChunksAdded)
		}
		fmt.Fprintln(out, line)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d upload(s) failed", failed, len(args))
	}
	return nil
}

// ---------------------------------------------------------------------------
// progress reporting
// ---------------------------------------------------------------------------

type reporter interface {
	Report(percent int)
	Finish(ok bool)
}

type nopReporter struct{}

func (nopReporter) Report(int)  {}
func (nopReporter) Finish(bool) {}

// newReporter draws a bar on a terminal and prints whole-ten percentages
// anywhere else.
func newReporter(w io.Writer, name string) reporter {
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return &barReporter{w: w, name: name, bar: progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth))}
	}
	return &lineReporter{w: w, name: name, last: -1}
}

type barReporter struct {
	w    io.Writer
	name string
	bar  progress.Model
}

func (r *barReporter) Report(percent int) {
	fmt.Fprintf(r.w, "\r%s %s", r.bar.ViewAs(float64(percent)/100), r.name)
}

func (r *barReporter) Finish(bool) {
	fmt.Fprint(r.w, "\r"+strings.Repeat(" ", barWidth+len(r.name)+8)+"\r")
}

type lineReporter struct {
	w    io.Writer
	name string
	last int
}

func (r *lineReporter) Report(percent int) {
	step := percent / 10 * 10
	if percent == 100 {
		step = 100
	}
	if step <= r.last {
		return
	}
	r.last = step
	fmt.Fprintf(r.w, "%s: %d%%\n", r.name, percent)
}

func (r *lineReporter) Finish(bool) {}
