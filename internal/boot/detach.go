package boot

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

const detachedTimeout = 2 * time.Minute

// Detach runs fn in its own goroutine and deliberately discards the result.
// The caller never waits on it, and a failure or panic inside fn is logged
// at debug level and goes no further. The returned channel closes when fn
// finishes and exists for tests only.
func Detach(ctx context.Context, name string, log *logrus.Entry, fn func(context.Context) error) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		ctx, cancel := context.WithTimeout(ctx, detachedTimeout)
		defer cancel()

		err := func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("panic: %v", r)
				}
			}()
			return fn(ctx)
		}()
		entry := log.WithField("task", name)
		if err != nil {
			entry.WithError(err).Debug("detached task failed; result ignored")
			return
		}
		entry.Debug("detached task finished")
	}()
	return done
}
