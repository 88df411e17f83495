package app

import (
	"context"
	"time"

	"github.com/five82/mnemo/internal/boot"
	"github.com/five82/mnemo/internal/logging"
	"github.com/five82/mnemo/internal/memory"
	"github.com/five82/mnemo/internal/state"
)

const (
	defaultPollInterval = 15 * time.Second
	maxBackoff          = 30 * time.Second
)

// Library is the subset of the API the refresher reads.
type Library interface {
	ListDocuments(ctx context.Context) memory.Outcome[[]memory.Document]
	FaceFolders(ctx context.Context) memory.Outcome[[]memory.FaceFolder]
}

// Refresher keeps the library snapshot current once the backend is ready.
type Refresher struct {
	store    *state.Store
	client   Library
	interval time.Duration
	kick     chan struct{}
}

// StartRefresher launches a goroutine that waits for the monitor to reach
// Ready and then refreshes store at interval, backing off while refreshes
// fail. Nothing is requested before Ready; if the monitor ends in Error the
// goroutine exits without issuing a request.
func StartRefresher(ctx context.Context, monitor *boot.Monitor, store *state.Store, client Library, interval time.Duration) *Refresher {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	r := &Refresher{
		store:    store,
		client:   client,
		interval: interval,
		kick:     make(chan struct{}, 1),
	}
	go func() {
		select {
		case <-ctx.Done():
			return
		case <-monitor.Done():
		}
		if monitor.State() != boot.Ready {
			return
		}
		r.loop(ctx)
	}()
	return r
}

// Trigger requests an immediate refresh. Extra triggers while one is pending
// are dropped.
func (r *Refresher) Trigger() {
	select {
	case r.kick <- struct{}{}:
	default:
	}
}

func (r *Refresher) loop(ctx context.Context) {
	for {
		r.refresh(ctx)
		wait := calculateBackoff(r.store.Snapshot().ConsecutiveFailures, r.interval)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-r.kick:
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (r *Refresher) refresh(ctx context.Context) {
	log := logging.NewLogger("library")

	docs, err := r.client.ListDocuments(ctx).Unpack()
	if err != nil {
		r.store.Update(nil, nil, err)
		log.WithError(err).Warn("document refresh failed")
		return
	}
	folders, err := r.client.FaceFolders(ctx).Unpack()
	if err != nil {
		r.store.Update(nil, nil, err)
		log.WithError(err).Warn("face folder refresh failed")
		return
	}
	r.store.Update(docs, folders, nil)
}

// calculateBackoff doubles the base interval per consecutive failure, capped
// at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	d := base
	for i := 0; i < failures; i++ {
		d *= 2
		if d >= maxBackoff {
			return maxBackoff
		}
	}
	return d
}
