package ui

import (
	"testing"
	"time"
)

func TestTruncateMiddle(t *testing.T) {
	if got := truncateMiddle("  ", 10); got != "" {
		t.Fatalf("truncateMiddle blank = %q, want empty", got)
	}
	if got := truncateMiddle("abcd", 2); got != "ab" {
		t.Fatalf("truncateMiddle limit<=3 = %q, want ab", got)
	}
	got := truncateMiddle("a very long holiday photo.jpeg", 16)
	if len([]rune(got)) > 16 {
		t.Fatalf("got %q (%d runes), want <=16", got, len([]rune(got)))
	}
	if got[len(got)-5:] != ".jpeg" {
		t.Fatalf("extension lost: %q", got)
	}
}

func TestHumanizeAge(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		at   time.Time
		want string
	}{
		{"zero", time.Time{}, "-"},
		{"future", now.Add(time.Minute), "just now"},
		{"seconds", now.Add(-30 * time.Second), "just now"},
		{"minutes", now.Add(-5 * time.Minute), "5m ago"},
		{"hours", now.Add(-3 * time.Hour), "3h ago"},
		{"days", now.Add(-49 * time.Hour), "2d ago"},
		{"old", time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC), "2025-01-02"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := humanizeAge(tc.at, now); got != tc.want {
				t.Fatalf("humanizeAge = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestVisibleWindowKeepsCursorOnScreen(t *testing.T) {
	cases := []struct {
		cursor, total, rows, start, end int
	}{
		{0, 5, 10, 0, 5},
		{0, 50, 10, 0, 10},
		{9, 50, 10, 0, 10},
		{10, 50, 10, 1, 11},
		{49, 50, 10, 40, 50},
	}
	for _, tc := range cases {
		start, end := visibleWindow(tc.cursor, tc.total, tc.rows)
		if start != tc.start || end != tc.end {
			t.Errorf("visibleWindow(%d,%d,%d) = %d,%d want %d,%d", tc.cursor, tc.total, tc.rows, start, end, tc.start, tc.end)
		}
	}
}

func TestDisplayName(t *testing.T) {
	if got := displayName("notes.txt", "http://h/x.bin"); got != "notes.txt" {
		t.Fatalf("displayName = %q", got)
	}
	if got := displayName("", "http://h/files/face.png"); got != "face.png" {
		t.Fatalf("displayName = %q", got)
	}
	if got := displayName("", ""); got != "file" {
		t.Fatalf("displayName = %q", got)
	}
}
