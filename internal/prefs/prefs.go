// Package prefs handles mnemo user preferences persistence.
// Preferences are stored in ~/.config/mnemo/prefs.toml and re-read at point
// of use, so a change made by one process is seen by the next read anywhere.
package prefs

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	toml "github.com/pelletier/go-toml/v2"
)

// Prefs holds user preferences for mnemo. Every value is a plain string.
type Prefs struct {
	BackendURL  string `toml:"backend_url"`
	Theme       string `toml:"theme"`
	GallerySize string `toml:"gallery_size"`
	ZoomMode    string `toml:"zoom_mode"`
	Animations  string `toml:"animations"`
}

// AnimationsEnabled reports whether UI animations are on. Anything other than
// "false" counts as enabled.
func (p Prefs) AnimationsEnabled() bool {
	return p.Animations != "false"
}

const (
	defaultPrefsPath   = "~/.config/mnemo/prefs.toml"
	defaultBackendURL  = "http://127.0.0.1:8000"
	defaultTheme       = "Nightfox"
	defaultGallerySize = "medium"
	defaultZoomMode    = "contain"
)

// GallerySizes lists the accepted gallery_size values in display order.
var GallerySizes = []string{"small", "medium", "large"}

// ZoomModes lists the accepted zoom_mode values in display order.
var ZoomModes = []string{"contain", "cover"}

// DefaultPath returns the default preferences file path.
func DefaultPath() string {
	return defaultPrefsPath
}

// Defaults returns the preferences used when nothing is persisted.
func Defaults() Prefs {
	return Prefs{
		Theme:       defaultTheme,
		GallerySize: defaultGallerySize,
		ZoomMode:    defaultZoomMode,
		Animations:  "true",
	}
}

// Load reads preferences from the given path, falling back to defaults if
// missing or unreadable. BackendURL is left empty when unset.
func Load(path string) Prefs {
	prefs := Defaults()

	resolved, err := resolvePath(path)
	if err != nil {
		return prefs
	}

	file, err := os.Open(resolved)
	if err != nil {
		return prefs // Graceful degradation, including os.ErrNotExist
	}
	defer func() { _ = file.Close() }()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return prefs
	}

	if err := toml.Unmarshal(bytes, &prefs); err != nil {
		return Defaults()
	}
	return normalize(prefs)
}

// Save writes preferences to the given path, creating directories as needed.
func Save(path string, p Prefs) error {
	resolved, err := resolvePath(path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	dir := filepath.Dir(resolved)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create prefs dir: %w", err)
	}

	bytes, err := toml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal prefs: %w", err)
	}

	return writeAtomic(resolved, bytes)
}

// writeAtomic replaces path with data via a temp file and rename, so a
// concurrent Load sees either the old file or the new one, never a partial
// write.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp prefs: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write prefs: %w", err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod prefs: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close prefs: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace prefs: %w", err)
	}
	return nil
}

func normalize(p Prefs) Prefs {
	p.BackendURL = strings.TrimSpace(p.BackendURL)
	if strings.TrimSpace(p.Theme) == "" {
		p.Theme = defaultTheme
	}
	if !contains(GallerySizes, p.GallerySize) {
		p.GallerySize = defaultGallerySize
	}
	if !contains(ZoomModes, p.ZoomMode) {
		p.ZoomMode = defaultZoomMode
	}
	if p.Animations == "" {
		p.Animations = "true"
	}
	return p
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// Store is the durable configuration store the rest of mnemo reads from.
// It keeps no cached copy: every getter reads the file.
type Store struct {
	path       string
	defaultURL string
	mu         sync.Mutex // serializes read-modify-write cycles
}

// NewStore returns a Store over path (empty uses DefaultPath). defaultURL is
// returned by BaseURL when no backend_url is persisted; empty uses
// http://127.0.0.1:8000.
func NewStore(path, defaultURL string) *Store {
	if strings.TrimSpace(path) == "" {
		path = defaultPrefsPath
	}
	if strings.TrimSpace(defaultURL) == "" {
		defaultURL = defaultBackendURL
	}
	return &Store{path: path, defaultURL: defaultURL}
}

// Path returns the unexpanded preferences path.
func (s *Store) Path() string {
	return s.path
}

// Load returns the current persisted preferences.
func (s *Store) Load() Prefs {
	return Load(s.path)
}

// Update applies fn to the persisted preferences and writes the result.
func (s *Store) Update(fn func(*Prefs)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := Load(s.path)
	fn(&p)
	return Save(s.path, p)
}

// BaseURL returns the persisted backend URL, or the default when unset.
func (s *Store) BaseURL() string {
	if url := Load(s.path).BackendURL; url != "" {
		return url
	}
	return s.defaultURL
}

// SetBaseURL persists the backend URL. The value is not validated; an empty
// value reverts to the default.
func (s *Store) SetBaseURL(url string) error {
	return s.Update(func(p *Prefs) { p.BackendURL = strings.TrimSpace(url) })
}

// SetTheme persists the theme name.
func (s *Store) SetTheme(name string) error {
	return s.Update(func(p *Prefs) { p.Theme = name })
}

// SetGallerySize persists the gallery size.
func (s *Store) SetGallerySize(size string) error {
	if !contains(GallerySizes, size) {
		return fmt.Errorf("unknown gallery size %q", size)
	}
	return s.Update(func(p *Prefs) { p.GallerySize = size })
}

// SetZoomMode persists the image zoom mode.
func (s *Store) SetZoomMode(mode string) error {
	if !contains(ZoomModes, mode) {
		return fmt.Errorf("unknown zoom mode %q", mode)
	}
	return s.Update(func(p *Prefs) { p.ZoomMode = mode })
}

// SetAnimations persists the animation toggle.
func (s *Store) SetAnimations(enabled bool) error {
	return s.Update(func(p *Prefs) { p.Animations = strconv.FormatBool(enabled) })
}

// Next returns the value following current in values, wrapping around.
func Next(values []string, current string) string {
	for i, v := range values {
		if v == current {
			return values[(i+1)%len(values)]
		}
	}
	if len(values) == 0 {
		return current
	}
	return values[0]
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultPrefsPath)
	}
	return expandPath(path)
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", errors.New("path is empty")
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
