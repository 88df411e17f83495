package boot

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/five82/mnemo/internal/config"
	"github.com/five82/mnemo/internal/logging"
	"github.com/five82/mnemo/internal/metrics"
	"github.com/five82/mnemo/internal/retry"
)

// Prober checks backend liveness. A nil error means a 2xx response.
type Prober interface {
	Health(ctx context.Context) error
}

// Backend is what the monitor drives: the health probe plus the warmup hint.
type Backend interface {
	Prober
	Warmup(ctx context.Context) error
}

// Monitor owns the boot state. Other code reads it through State and
// Subscribe; only the monitor's driver changes it.
type Monitor struct {
	backend  Backend
	timings  config.BootTimings
	recorder metrics.Recorder
	log      *logrus.Entry

	mu    sync.Mutex
	state State
	subs  map[int]chan State
	next  int
	done  chan struct{}

	start sync.Once
}

// MonitorOption customizes a Monitor.
type MonitorOption func(*Monitor)

// WithRecorder reports probes and transitions to r.
func WithRecorder(r metrics.Recorder) MonitorOption {
	return func(m *Monitor) {
		if r != nil {
			m.recorder = r
		}
	}
}

// NewMonitor returns a monitor in the Connecting state. Nothing happens until
// Start or Run is called.
func NewMonitor(backend Backend, timings config.BootTimings, opts ...MonitorOption) *Monitor {
	m := &Monitor{
		backend:  backend,
		timings:  timings,
		recorder: metrics.NoopRecorder{},
		log:      logging.NewLogger("boot"),
		state:    Connecting,
		subs:     make(map[int]chan State),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.recorder.SetBootState(Connecting.String())
	return m
}

// State returns the current state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Done is closed once the monitor reaches Ready or Error.
func (m *Monitor) Done() <-chan struct{} {
	return m.done
}

// Subscribe returns a channel that yields the current state immediately and
// then every later transition. The channel is closed after a terminal state
// is delivered or when cancel is called. Delivery never blocks the monitor:
// the buffer holds every state a subscriber can still observe.
func (m *Monitor) Subscribe() (<-chan State, func()) {
	ch := make(chan State, int(Error)+1)

	m.mu.Lock()
	ch <- m.state
	if m.state.Terminal() {
		close(ch)
		m.mu.Unlock()
		return ch, func() {}
	}
	id := m.next
	m.next++
	m.subs[id] = ch
	m.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			m.mu.Lock()
			defer m.mu.Unlock()
			if sub, ok := m.subs[id]; ok {
				delete(m.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Start runs the monitor in the background. Calls after the first are no-ops.
func (m *Monitor) Start(ctx context.Context) {
	m.start.Do(func() {
		go m.drive(ctx)
	})
}

// Run drives the monitor on the calling goroutine until a terminal state is
// reached or ctx ends. Teardown leaves the state where it was.
func (m *Monitor) Run(ctx context.Context) {
	ran := false
	m.start.Do(func() {
		ran = true
		m.drive(ctx)
	})
	if !ran {
		select {
		case <-m.done:
		case <-ctx.Done():
		}
	}
}

func (m *Monitor) drive(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			m.log.WithField("panic", fmt.Sprint(r)).Error("boot monitor failed")
			m.advance(Error)
		}
	}()

	if err := m.connect(ctx); err != nil {
		m.log.WithError(err).Debug("boot abandoned while connecting")
		return
	}
	m.advance(LoadingIndex)

	if err := retry.Sleep(ctx, m.timings.LoadingDelay); err != nil {
		return
	}
	m.advance(WarmingAI)
	Detach(ctx, "warmup", m.log, m.backend.Warmup)

	if err := retry.Sleep(ctx, m.timings.WarmupDelay); err != nil {
		return
	}
	if m.timings.ConfirmReady {
		if err := m.connect(ctx); err != nil {
			return
		}
	}
	m.advance(Ready)
}

// connect probes until the backend answers 2xx. Probe failures are expected
// and retried forever; only ctx ends the loop early.
func (m *Monitor) connect(ctx context.Context) error {
	policy := ConnectPolicy(m.timings).WithOnRetry(func(attempt int, err error) {
		entry := m.log.WithField("attempt", attempt).WithError(err)
		if attempt == 1 || attempt%10 == 0 {
			entry.Info("backend not ready; retrying")
			return
		}
		entry.Debug("backend not ready; retrying")
	})
	attempts, err := policy.Do(ctx, m.probe)
	if err != nil {
		return err
	}
	m.log.WithField("attempts", attempts).Info("backend healthy")
	return nil
}

func (m *Monitor) probe(ctx context.Context) error {
	err := m.backend.Health(ctx)
	if err != nil {
		m.recorder.IncProbe("failed")
		return err
	}
	m.recorder.IncProbe("ok")
	return nil
}

// advance moves to next if it is ahead of the current state. It reports
// whether a transition happened.
func (m *Monitor) advance(next State) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.Terminal() || next <= m.state {
		return false
	}
	prev := m.state
	m.state = next
	for id, ch := range m.subs {
		select {
		case ch <- next:
		default:
			m.log.WithField("subscriber", id).Warn("dropping boot state for full subscriber")
		}
		if next.Terminal() {
			close(ch)
			delete(m.subs, id)
		}
	}
	if next.Terminal() {
		close(m.done)
	}
	m.recorder.SetBootState(next.String())
	m.log.WithFields(logrus.Fields{"from": prev.String(), "to": next.String()}).Info("boot state changed")
	return true
}

// ConnectPolicy is the unbounded probe loop that drives the boot screen.
func ConnectPolicy(t config.BootTimings) retry.Policy {
	return retry.Unbounded(t.ProbeInterval)
}
