package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures mnemo's own runtime settings. The backend URL the user picks
// at runtime lives in prefs; DefaultBackendURL only seeds it.
type Config struct {
	DefaultBackendURL string
	LogFile           string
	LogLevel          string
	MetricsAddr       string
	ExportDir         string
	Boot              BootTimings
}

// BootTimings controls the boot readiness monitor pacing.
type BootTimings struct {
	ProbeInterval time.Duration
	LoadingDelay  time.Duration
	WarmupDelay   time.Duration
	WaitAttempts  int
	WaitInterval  time.Duration
	ConfirmReady  bool
}

const (
	defaultConfigPath    = "~/.config/mnemo/config.toml"
	defaultBackendURL    = "http://127.0.0.1:8000"
	defaultLogFile       = "~/.local/state/mnemo/mnemo.log"
	defaultLogLevel      = "info"
	defaultExportDir     = "~/Downloads/mnemo"
	defaultProbeInterval = 1200 * time.Millisecond
	defaultLoadingDelay  = 800 * time.Millisecond
	defaultWarmupDelay   = 800 * time.Millisecond
	defaultWaitAttempts  = 120
	defaultWaitInterval  = 1500 * time.Millisecond
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		DefaultBackendURL: defaultBackendURL,
		LogFile:           mustExpand(defaultLogFile),
		LogLevel:          defaultLogLevel,
		ExportDir:         mustExpand(defaultExportDir),
		Boot: BootTimings{
			ProbeInterval: defaultProbeInterval,
			LoadingDelay:  defaultLoadingDelay,
			WarmupDelay:   defaultWarmupDelay,
			WaitAttempts:  defaultWaitAttempts,
			WaitInterval:  defaultWaitInterval,
		},
	}
}

// Load locates and parses the mnemo config, falling back to defaults when missing.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		BackendURL  string `toml:"backend_url"`
		LogFile     string `toml:"log_file"`
		LogLevel    string `toml:"log_level"`
		MetricsAddr string `toml:"metrics_addr"`
		ExportDir   string `toml:"export_dir"`
		Boot        struct {
			ProbeInterval string `toml:"probe_interval"`
			LoadingDelay  string `toml:"loading_delay"`
			WarmupDelay   string `toml:"warmup_delay"`
			WaitAttempts  int    `toml:"wait_attempts"`
			WaitInterval  string `toml:"wait_interval"`
			ConfirmReady  bool   `toml:"confirm_ready"`
		} `toml:"boot"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.BackendURL); v != "" {
		cfg.DefaultBackendURL = v
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = mustExpand(v)
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	cfg.MetricsAddr = strings.TrimSpace(raw.MetricsAddr)
	if v := strings.TrimSpace(raw.ExportDir); v != "" {
		cfg.ExportDir = mustExpand(v)
	}

	durations := []struct {
		name  string
		value string
		dest  *time.Duration
	}{
		{"boot.probe_interval", raw.Boot.ProbeInterval, &cfg.Boot.ProbeInterval},
		{"boot.loading_delay", raw.Boot.LoadingDelay, &cfg.Boot.LoadingDelay},
		{"boot.warmup_delay", raw.Boot.WarmupDelay, &cfg.Boot.WarmupDelay},
		{"boot.wait_interval", raw.Boot.WaitInterval, &cfg.Boot.WaitInterval},
	}
	for _, d := range durations {
		if strings.TrimSpace(d.value) == "" {
			continue
		}
		parsed, err := time.ParseDuration(strings.TrimSpace(d.value))
		if err != nil {
			return Config{}, fmt.Errorf("parse config: %s: %w", d.name, err)
		}
		if parsed > 0 {
			*d.dest = parsed
		}
	}
	if raw.Boot.WaitAttempts > 0 {
		cfg.Boot.WaitAttempts = raw.Boot.WaitAttempts
	}
	cfg.Boot.ConfirmReady = raw.Boot.ConfirmReady

	return cfg, nil
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return defaultConfigPath
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return ExpandPath(defaultConfigPath)
	}
	return ExpandPath(path)
}

func mustExpand(path string) string {
	expanded, err := ExpandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

// ExpandPath resolves a leading ~ and returns an absolute path.
func ExpandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
