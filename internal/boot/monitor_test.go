package boot

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/five82/mnemo/internal/config"
	"github.com/five82/mnemo/internal/retry"
)

var errDown = errors.New("connection refused")

// scriptedBackend fails the first failures probes, then succeeds.
type scriptedBackend struct {
	failures int32
	probes   atomic.Int32
	warmups  atomic.Int32
	panicOn  bool
	warmDone chan struct{}
	// block, when set, holds Warmup until it closes or ctx ends.
	block     chan struct{}
	warmEnded atomic.Bool
}

func (b *scriptedBackend) Health(ctx context.Context) error {
	n := b.probes.Add(1)
	if b.panicOn {
		panic("probe exploded")
	}
	if b.failures < 0 || n <= b.failures {
		return errDown
	}
	return nil
}

func (b *scriptedBackend) Warmup(ctx context.Context) error {
	b.warmups.Add(1)
	if b.warmDone != nil {
		close(b.warmDone)
	}
	if b.block != nil {
		select {
		case <-b.block:
		case <-ctx.Done():
		}
		b.warmEnded.Store(true)
	}
	return errors.New("warmup failed")
}

func fastTimings() config.BootTimings {
	return config.BootTimings{
		ProbeInterval: time.Millisecond,
		LoadingDelay:  time.Millisecond,
		WarmupDelay:   time.Millisecond,
		WaitAttempts:  5,
		WaitInterval:  time.Millisecond,
	}
}

func collect(ch <-chan State) []State {
	var out []State
	for s := range ch {
		out = append(out, s)
	}
	return out
}

func TestMonitor_ReachesReadyOnceAfterFailures(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{failures: 3, warmDone: make(chan struct{})}
	m := NewMonitor(backend, fastTimings())
	states, _ := m.Subscribe()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	m.Run(ctx)

	got := collect(states)
	want := []State{Connecting, LoadingIndex, WarmingAI, Ready}
	if len(got) != len(want) {
		t.Fatalf("states = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("states = %v, want %v", got, want)
		}
	}
	if m.State() != Ready {
		t.Fatalf("final state = %v", m.State())
	}
	if n := backend.probes.Load(); n != 4 {
		t.Fatalf("probes = %d, want 4", n)
	}

	select {
	case <-backend.warmDone:
	case <-time.After(time.Second):
		t.Fatal("warmup was never issued")
	}
	// A failing warmup does not disturb Ready.
	if m.State() != Ready {
		t.Fatalf("state after warmup failure = %v", m.State())
	}
}

func TestMonitor_BlockingWarmupDoesNotDelayReady(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{warmDone: make(chan struct{}), block: make(chan struct{})}
	t.Cleanup(func() { close(backend.block) })
	timings := fastTimings()
	timings.WarmupDelay = 20 * time.Millisecond
	m := NewMonitor(backend, timings)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	start := time.Now()
	m.Run(ctx)

	if m.State() != Ready {
		t.Fatalf("state = %v, want ready", m.State())
	}
	if elapsed := time.Since(start); elapsed >= 5*time.Second {
		t.Fatalf("ready took %v, expected it not to wait on warmup", elapsed)
	}
	select {
	case <-backend.warmDone:
	case <-time.After(time.Second):
		t.Fatal("warmup was never issued")
	}
	if backend.warmEnded.Load() {
		t.Fatal("warmup returned before the test released it")
	}
}

func TestMonitor_AlwaysFailingProbeStaysConnecting(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{failures: -1}
	m := NewMonitor(backend, fastTimings())

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	m.Run(ctx)

	if m.State() != Connecting {
		t.Fatalf("state = %v, want connecting", m.State())
	}
	if n := backend.probes.Load(); n < 5 {
		t.Fatalf("probes = %d, expected the loop to keep retrying", n)
	}
	if backend.warmups.Load() != 0 {
		t.Fatal("warmup issued before health succeeded")
	}
	select {
	case <-m.Done():
		t.Fatal("monitor reported done while still connecting")
	default:
	}
}

func TestMonitor_PanicInDriverIsError(t *testing.T) {
	t.Parallel()

	m := NewMonitor(&scriptedBackend{panicOn: true}, fastTimings())
	states, _ := m.Subscribe()
	m.Run(context.Background())

	got := collect(states)
	if len(got) != 2 || got[0] != Connecting || got[1] != Error {
		t.Fatalf("states = %v, want [connecting error]", got)
	}
	if !m.State().Terminal() {
		t.Fatal("error should be terminal")
	}
}

func TestMonitor_ConfirmReadyProbesAgain(t *testing.T) {
	t.Parallel()

	timings := fastTimings()
	timings.ConfirmReady = true
	backend := &scriptedBackend{}
	m := NewMonitor(backend, timings)
	m.Run(context.Background())

	if m.State() != Ready {
		t.Fatalf("state = %v", m.State())
	}
	if n := backend.probes.Load(); n != 2 {
		t.Fatalf("probes = %d, want 2 with confirmation", n)
	}
}

func TestMonitor_AdvanceIsMonotonic(t *testing.T) {
	t.Parallel()

	m := NewMonitor(&scriptedBackend{}, fastTimings())
	if !m.advance(WarmingAI) {
		t.Fatal("forward transition refused")
	}
	if m.advance(LoadingIndex) || m.advance(WarmingAI) {
		t.Fatal("backward or repeated transition accepted")
	}
	if !m.advance(Ready) {
		t.Fatal("ready refused")
	}
	if m.advance(Error) {
		t.Fatal("ready is absorbing")
	}
}

func TestMonitor_SubscribeAfterReady(t *testing.T) {
	t.Parallel()

	m := NewMonitor(&scriptedBackend{}, fastTimings())
	m.Run(context.Background())

	states, cancel := m.Subscribe()
	defer cancel()
	got := collect(states)
	if len(got) != 1 || got[0] != Ready {
		t.Fatalf("late subscriber saw %v", got)
	}
}

func TestMonitor_StartIsIdempotent(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{}
	m := NewMonitor(backend, fastTimings())
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.Start(ctx)
		}()
	}
	wg.Wait()

	select {
	case <-m.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("monitor never finished")
	}
	if n := backend.probes.Load(); n != 1 {
		t.Fatalf("probes = %d, want a single driver", n)
	}
}

func TestWaitForBackend_ExhaustsAfterExactBudget(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{failures: -1}
	attempts, err := WaitForBackend(context.Background(), backend, retry.Bounded(7, time.Millisecond))
	if !errors.Is(err, ErrBackendTimeout) {
		t.Fatalf("err = %v, want ErrBackendTimeout", err)
	}
	if !errors.Is(err, errDown) {
		t.Fatalf("err = %v, want it to wrap the last probe failure", err)
	}
	if attempts != 7 || backend.probes.Load() != 7 {
		t.Fatalf("attempts = %d probes = %d, want 7", attempts, backend.probes.Load())
	}
}

func TestWaitForBackend_SucceedsEarly(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{failures: 2}
	attempts, err := WaitForBackend(context.Background(), backend, WaitPolicy(fastTimings()))
	if err != nil || attempts != 3 {
		t.Fatalf("attempts = %d, err = %v", attempts, err)
	}
}

func TestWaitForBackend_RejectsUnboundedPolicy(t *testing.T) {
	t.Parallel()

	backend := &scriptedBackend{}
	if _, err := WaitForBackend(context.Background(), backend, ConnectPolicy(fastTimings())); err == nil {
		t.Fatal("unbounded policy accepted")
	}
	if backend.probes.Load() != 0 {
		t.Fatal("probe issued with an invalid policy")
	}
}

func TestDefaultWaitPolicyBudget(t *testing.T) {
	p := WaitPolicy(config.Default().Boot)
	if p.MaxAttempts != 120 || p.Interval != 1500*time.Millisecond {
		t.Fatalf("wait policy = %+v", p)
	}
	if ConnectPolicy(config.Default().Boot).Bounded() {
		t.Fatal("connect policy must be unbounded")
	}
}

func TestStatusOf(t *testing.T) {
	if StatusOf(Steps[0], LoadingIndex) != StepDone || StatusOf(Steps[1], LoadingIndex) != StepActive || StatusOf(Steps[2], LoadingIndex) != StepPending {
		t.Fatal("unexpected checklist for loading_index")
	}
	for _, s := range Steps {
		if StatusOf(s, Error) != StepFailed {
			t.Fatalf("step %q not failed on error", s.Label)
		}
		if StatusOf(s, Ready) != StepDone {
			t.Fatalf("step %q not done on ready", s.Label)
		}
	}
}
