package ui

import "time"

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which compact mode is used.
	LayoutCompactWidth = 100

	// LayoutCreatedWidth is the minimum width to show document timestamps.
	LayoutCreatedWidth = 80
)

// Rows taken by the header, command bar and notice line.
const chromeHeight = 4

const helpModalWidth = 44

// Timing constants.
const (
	// DefaultUIInterval is how often the UI re-reads the library snapshot.
	DefaultUIInterval = time.Second

	// ActionTimeout bounds one user-triggered request from the TUI.
	ActionTimeout = 2 * time.Minute
)

// Gallery columns per prefs gallery_size.
var galleryColumns = map[string]int{
	"small":  4,
	"medium": 3,
	"large":  2,
}
