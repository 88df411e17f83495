// Package app is the composition root for mnemo.
//
// NewRuntime loads the TOML config, points logrus at the log file (the TUI
// owns the terminal), builds the prefs-backed API client and, when a metrics
// address is configured, a Prometheus recorder. CLI commands use a Runtime
// directly; Run adds the interactive pieces:
//
//	Run()
//	 ├─> boot.Monitor.Start()     probe /health until ready
//	 ├─> StartRefresher()         waits for Ready, then keeps state.Store fresh
//	 ├─> prefs.Store.Watch()      external prefs edits reach the UI
//	 ├─> share.Resolver           desktop export / clipboard / opener
//	 └─> ui.Run()                 blocks until quit
//
// The refresher never issues a request before the monitor reports Ready and
// exits quietly if the monitor ends in Error. After a failed refresh it
// backs off exponentially up to 30 seconds.
package app
