// Package config loads mnemo's runtime configuration.
//
// # Overview
//
// The config file holds settings that belong to the installation rather than
// the user's session: where logs go, the metrics listener, the export
// directory used when sharing files, and boot monitor pacing. The backend URL
// the user edits at runtime is stored by the prefs package; the value here
// only seeds it when prefs has none.
//
// # Configuration Discovery
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/mnemo/config.toml
//  3. If the file doesn't exist, fall back to Default()
//  4. Empty or missing fields keep their defaults
//
// # TOML Format
//
//	backend_url = "http://127.0.0.1:8000"
//	log_file = "~/.local/state/mnemo/mnemo.log"
//	log_level = "info"
//	metrics_addr = ""             # e.g. "127.0.0.1:9464"
//	export_dir = "~/Downloads/mnemo"
//
//	[boot]
//	probe_interval = "1.2s"       # unbounded /health retry spacing
//	loading_delay = "800ms"
//	warmup_delay = "800ms"
//	wait_attempts = 120           # `mnemo wait` budget
//	wait_interval = "1.5s"
//	confirm_ready = false         # re-probe /health before declaring ready
//
// # Error Handling
//
// Load returns errors for unreadable files, TOML syntax errors and invalid
// durations. A missing file is not an error.
package config
