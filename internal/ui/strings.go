package ui

import (
	"fmt"
	"strings"
	"time"
)

// truncate cuts value to limit runes, ending in an ellipsis when cut.
func truncate(value string, limit int) string {
	value = strings.TrimSpace(value)
	runes := []rune(value)
	switch {
	case limit <= 0 || len(runes) <= limit:
		return value
	case limit == 1:
		return string(runes[:1])
	default:
		return string(runes[:limit-1]) + "…"
	}
}

// truncateMiddle shortens a string by removing characters from the middle,
// preserving both the beginning and end. For filenames it keeps the
// extension.
func truncateMiddle(value string, limit int) string {
	value = strings.TrimSpace(value)
	if limit <= 0 || value == "" {
		return value
	}
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	if limit <= 3 {
		return string(runes[:limit])
	}

	ellipsis := []rune("…")

	if lastDot := strings.LastIndex(value, "."); lastDot > 0 {
		ext := []rune(value[lastDot:])
		if len(ext) < 10 && len(ext) < limit/2 {
			base := []rune(value[:lastDot])
			baseLimit := limit - len(ext) - len(ellipsis)
			if baseLimit > 0 && len(base) > baseLimit {
				prefix := baseLimit / 2
				suffix := baseLimit - prefix
				return string(base[:prefix]) + string(ellipsis) + string(base[len(base)-suffix:]) + string(ext)
			}
		}
	}

	keep := limit - len(ellipsis)
	prefix := keep / 2
	suffix := keep - prefix
	return string(runes[:prefix]) + string(ellipsis) + string(runes[len(runes)-suffix:])
}

// titleCase turns "loading_index" into "Loading Index".
func titleCase(value string) string {
	words := strings.FieldsFunc(value, func(r rune) bool { return r == '_' || r == ' ' })
	for i, w := range words {
		w = strings.ToLower(w)
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// padRight pads s with spaces to width runes.
func padRight(s string, width int) string {
	if n := width - len([]rune(s)); n > 0 {
		return s + strings.Repeat(" ", n)
	}
	return s
}

// humanizeAge renders how long ago t was, relative to now.
func humanizeAge(t, now time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 30*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("2006-01-02")
	}
}

// clampIndex keeps a cursor inside [0, n).
func clampIndex(i, n int) int {
	if n <= 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
