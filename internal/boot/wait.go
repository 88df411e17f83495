package boot

import (
	"context"
	"errors"
	"fmt"

	"github.com/five82/mnemo/internal/config"
	"github.com/five82/mnemo/internal/retry"
)

// ErrBackendTimeout is returned when the bounded waiter spends its budget.
var ErrBackendTimeout = errors.New("backend did not become healthy in time")

// WaitPolicy is the bounded probe loop used by guards and the CLI.
func WaitPolicy(t config.BootTimings) retry.Policy {
	return retry.Bounded(t.WaitAttempts, t.WaitInterval)
}

// WaitForBackend probes until the backend is healthy or the bounded policy
// runs out. It returns the number of probes made. Unlike the Monitor it
// gives up: exhaustion yields an error wrapping ErrBackendTimeout and the
// last probe failure.
func WaitForBackend(ctx context.Context, prober Prober, policy retry.Policy) (int, error) {
	if !policy.Bounded() {
		return 0, fmt.Errorf("wait for backend: policy must be bounded")
	}
	attempts, err := policy.Do(ctx, prober.Health)
	if err == nil {
		return attempts, nil
	}
	if errors.Is(err, retry.ErrExhausted) {
		return attempts, fmt.Errorf("%w: %w", ErrBackendTimeout, err)
	}
	return attempts, fmt.Errorf("wait for backend: %w", err)
}
