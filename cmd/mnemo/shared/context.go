// Package shared holds the state passed to every mnemo subcommand.
package shared

import (
	"errors"

	"github.com/five82/mnemo/internal/app"
	"github.com/five82/mnemo/internal/memory"
)

// Context carries the persistent flags set on the root command.
type Context struct {
	// ConfigPath overrides ~/.config/mnemo/config.toml.
	ConfigPath string
	// PrefsPath overrides ~/.config/mnemo/prefs.toml.
	PrefsPath string
	// MetricsAddr overrides metrics_addr from the config file.
	MetricsAddr string
	// BackendURL overrides the persisted backend URL for this invocation only.
	BackendURL string
}

// Runtime builds the process runtime from the flags. The caller closes it.
func (c *Context) Runtime() (*app.Runtime, error) {
	rt, err := app.NewRuntime(c.ConfigPath, c.PrefsPath, c.MetricsAddr)
	if err != nil {
		return nil, err
	}
	if c.BackendURL != "" {
		rt.UseBackend(c.BackendURL)
	}
	return rt, nil
}

// Failure is a backend call that did not succeed. Its message is the
// user-facing notice; the underlying *memory.RequestError stays reachable
// through errors.As.
type Failure struct {
	Err error
}

func (f *Failure) Error() string { return memory.Notice(f.Err) }

func (f *Failure) Unwrap() error { return f.Err }

// Check unpacks an outcome, turning a failure into a *Failure.
func Check[T any](o memory.Outcome[T]) (T, error) {
	v, err := o.Unpack()
	if err != nil {
		return v, &Failure{Err: err}
	}
	return v, nil
}

// IsFailure reports whether err came from a backend call.
func IsFailure(err error) bool {
	var f *Failure
	return errors.As(err, &f)
}
