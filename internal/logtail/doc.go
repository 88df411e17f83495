// Package logtail reads the mnemo log file for the logs command and the
// TUI.
//
// Read returns the last N lines using a ring buffer so large files are
// scanned once in O(N) memory. Follow emits a backlog and then every line
// appended afterwards, watching the log directory with fsnotify so that
// truncation and recreation start over from the top.
//
// Lines are logrus text-formatter output (logfmt). ParseLine splits them into
// an Entry and ColorizeLine renders one with lipgloss: dim timestamp, bold
// color-coded level, the component in brackets, then the message and the
// remaining fields. Lines that are not logfmt pass through unchanged.
//
// A missing file is not an error: Read returns nil and Follow waits for the
// file to appear.
package logtail
