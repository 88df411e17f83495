package app

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/five82/mnemo/internal/boot"
	"github.com/five82/mnemo/internal/config"
	"github.com/five82/mnemo/internal/logging"
	"github.com/five82/mnemo/internal/memory"
	"github.com/five82/mnemo/internal/metrics"
	"github.com/five82/mnemo/internal/prefs"
	"github.com/five82/mnemo/internal/share"
	"github.com/five82/mnemo/internal/state"
	"github.com/five82/mnemo/internal/ui"
)

// Version is stamped at build time with -ldflags.
var Version = "dev"

// Options configure the mnemo TUI.
type Options struct {
	ConfigPath  string
	PrefsPath   string        // empty uses ~/.config/mnemo/prefs.toml
	PollEvery   time.Duration // zero uses the default library refresh interval
	MetricsAddr string        // overrides metrics_addr from the config file
}

// Runtime is everything a mnemo process needs to talk to the backend.
// Commands that do not run the TUI build one too.
type Runtime struct {
	Config   config.Config
	Prefs    *prefs.Store
	Client   *memory.Client
	Recorder metrics.Recorder
	Metrics  *metrics.PrometheusRecorder // nil unless a metrics address is set
	closeLog func() error
}

// NewRuntime loads configuration, routes logging to the configured file and
// builds the API client. Close releases the log file.
func NewRuntime(configPath, prefsPath, metricsAddr string) (*Runtime, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}

	closer, err := logging.Setup(logging.Options{File: cfg.LogFile, Level: cfg.LogLevel})
	if err != nil {
		return nil, fmt.Errorf("setup logging: %w", err)
	}

	rt := &Runtime{
		Config:   cfg,
		Prefs:    prefs.NewStore(prefsPath, cfg.DefaultBackendURL),
		Recorder: metrics.NoopRecorder{},
		closeLog: closer.Close,
	}
	if cfg.MetricsAddr != "" {
		rt.Metrics = metrics.NewPrometheusRecorder(nil)
		rt.Recorder = rt.Metrics
	}
	rt.Client = rt.newClient(rt.Prefs)
	return rt, nil
}

func (rt *Runtime) newClient(source memory.BaseURLSource) *memory.Client {
	return memory.NewClient(source,
		memory.WithRecorder(rt.Recorder),
		memory.WithUserAgent("mnemo/"+Version),
	)
}

// UseBackend pins the client to url for the life of the runtime, ignoring
// the persisted preference. Nothing is written to the prefs file.
func (rt *Runtime) UseBackend(url string) {
	rt.Client = rt.newClient(memory.StaticURL(url))
}

// ServeMetrics exposes /metrics until ctx is done when a metrics address is
// configured. Listener failures are logged, not fatal.
func (rt *Runtime) ServeMetrics(ctx context.Context) {
	if rt.Metrics == nil {
		return
	}
	log := logging.NewLogger("metrics")
	go func() {
		if err := rt.Metrics.Serve(ctx, rt.Config.MetricsAddr); err != nil {
			log.WithError(err).WithField("addr", rt.Config.MetricsAddr).Error("metrics listener stopped")
		}
	}()
}

// Close releases the log file.
func (rt *Runtime) Close() error {
	if rt.closeLog == nil {
		return nil
	}
	return rt.closeLog()
}

// Run boots mnemo and blocks in the TUI until the user quits or ctx is
// cancelled.
func Run(ctx context.Context, opts Options) error {
	rt, err := NewRuntime(opts.ConfigPath, opts.PrefsPath, opts.MetricsAddr)
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log := logging.NewLogger("app")
	log.WithFields(logrus.Fields{
		"version": Version,
		"backend": rt.Client.BaseURL(),
	}).Info("starting mnemo")

	rt.ServeMetrics(ctx)

	monitor := boot.NewMonitor(rt.Client, rt.Config.Boot, boot.WithRecorder(rt.Recorder))
	store := &state.Store{}
	refresher := StartRefresher(ctx, monitor, store, rt.Client, opts.PollEvery)

	prefsUpdates := make(chan prefs.Prefs, 1)
	go watchPrefs(ctx, rt.Prefs, prefsUpdates, log)

	host := share.NewDesktopHost(rt.Config.ExportDir)
	resolver := share.NewResolver(host, nil, rt.Recorder)

	monitor.Start(ctx)

	uiOpts := ui.Options{
		Context:      ctx,
		API:          rt.Client,
		Monitor:      monitor,
		Store:        store,
		Prefs:        rt.Prefs,
		Sharer:       resolver,
		Open:         host.Open,
		Refresh:      refresher.Trigger,
		PrefsUpdates: prefsUpdates,
		LogPath:      rt.Config.LogFile,
	}
	err = ui.Run(uiOpts)
	log.WithField("boot_state", monitor.State().String()).Info("mnemo exiting")
	return err
}

// watchPrefs forwards external edits of the prefs file to the UI, keeping
// only the newest value if the UI is behind.
func watchPrefs(ctx context.Context, store *prefs.Store, out chan prefs.Prefs, log *logrus.Entry) {
	err := store.Watch(ctx, func(p prefs.Prefs) {
		select {
		case <-out:
		default:
		}
		select {
		case out <- p:
		default:
		}
	})
	if err != nil {
		log.WithError(err).Warn("preferences watch stopped")
	}
}
