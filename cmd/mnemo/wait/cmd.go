// Package waitcmd implements `mnemo wait`.
package waitcmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/mnemo/cmd/mnemo/shared"
	"github.com/five82/mnemo/internal/boot"
	"github.com/five82/mnemo/internal/retry"
)

// Command implements `mnemo wait`.
type Command struct {
	ctx      *shared.Context
	cmd      *cobra.Command
	attempts int
	interval time.Duration
	quiet    bool
}

// New creates the wait command.
func New(ctx *shared.Context) *Command {
	c := &Command{ctx: ctx}
	c.cmd = &cobra.Command{
		Use:   "wait",
		Short: "Block until the backend answers its health check",
		Long: `Probes GET /health until it succeeds or the attempt budget runs out.
Exits non-zero when the backend never became healthy. Defaults come from the
[boot] section of the config file (120 attempts, 1.5s apart).`,
		Args: cobra.NoArgs,
		RunE: c.run,
	}
	c.cmd.Flags().IntVar(&c.attempts, "attempts", 0, "maximum number of probes")
	c.cmd.Flags().DurationVar(&c.interval, "interval", 0, "delay between probes")
	c.cmd.Flags().BoolVarP(&c.quiet, "quiet", "q", false, "only report the result")
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

	policy := boot.WaitPolicy(rt.Config.Boot)
	if c.attempts > 0 || c.interval > 0 {
		attempts, interval := policy.MaxAttempts, policy.Interval
		if c.attempts > 0 {
			attempts = c.attempts
		}
		if c.interval > 0 {
			interval = c.interval
		}
		policy = retry.Bounded(attempts, interval)
	}
	if !c.quiet {
		out := cmd.ErrOrStderr()
		policy = policy.WithOnRetry(func(attempt int, err error) {
			fmt.Fprintf(out, "waiting for %s (%d/%d): %v\n", rt.Client.BaseURL(), attempt, policy.MaxAttempts, err)
		})
	}

	start := time.Now()
	attempts, err := boot.WaitForBackend(cmd.Context(), rt.Client, policy)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Backend at %s is healthy after %d probe(s) in %s\n",
		rt.Client.BaseURL(), attempts, time.Since(start).Round(time.Millisecond))
	return nil
}
