package prefs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	p := Load("")
	if p != Defaults() {
		t.Fatalf("Load = %#v, want defaults %#v", p, Defaults())
	}
	if !p.AnimationsEnabled() {
		t.Fatalf("AnimationsEnabled() = false, want true by default")
	}
}

func TestLoad_ReadsExistingFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	prefsDir := filepath.Join(home, ".config", "mnemo")
	if err := os.MkdirAll(prefsDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	prefsFile := filepath.Join(prefsDir, "prefs.toml")
	body := "theme = \"Slate\"\ngallery_size = \"large\"\nzoom_mode = \"cover\"\nanimations = \"false\"\n"
	if err := os.WriteFile(prefsFile, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := Load("")
	if p.Theme != "Slate" || p.GallerySize != "large" || p.ZoomMode != "cover" {
		t.Fatalf("Load = %#v, want Slate/large/cover", p)
	}
	if p.AnimationsEnabled() {
		t.Fatalf("AnimationsEnabled() = true, want false")
	}
}

func TestLoad_UnknownValuesFallBack(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("theme = \"\"\ngallery_size = \"huge\"\nzoom_mode = \"fill\"\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	p := Load(prefsFile)
	if p.Theme != defaultTheme || p.GallerySize != defaultGallerySize || p.ZoomMode != defaultZoomMode {
		t.Fatalf("Load = %#v, want defaults for invalid values", p)
	}
}

func TestLoad_InvalidTOMLFallsBackToDefault(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "prefs.toml")
	if err := os.WriteFile(prefsFile, []byte("not valid toml {{{\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	if p := Load(prefsFile); p != Defaults() {
		t.Fatalf("Load = %#v, want defaults", p)
	}
}

func TestSave_CreatesFileAndDirs(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "subdir", "prefs.toml")

	if err := Save(prefsFile, Prefs{Theme: "Slate"}); err != nil {
		t.Fatalf("Save returned error: %v", err)
	}
	if got := Load(prefsFile).Theme; got != "Slate" {
		t.Fatalf("Theme = %q, want %q", got, "Slate")
	}
}

func TestStore_BaseURLStableDuringUnrelatedWrites(t *testing.T) {
	dir := t.TempDir()
	prefsFile := filepath.Join(dir, "prefs.toml")
	store := NewStore(prefsFile, "http://default:1")
	if err := store.SetBaseURL("http://custom:2"); err != nil {
		t.Fatalf("SetBaseURL: %v", err)
	}

	stop := make(chan struct{})
	writerDone := make(chan error, 1)
	go func() {
		themes := []string{"Nightfox", "Slate"}
		for i := 0; ; i++ {
			select {
			case <-stop:
				writerDone <- nil
				return
			default:
			}
			if err := store.SetTheme(themes[i%2]); err != nil {
				writerDone <- err
				return
			}
		}
	}()

	wrong := 0
	for i := 0; i < 5000; i++ {
		if got := store.BaseURL(); got != "http://custom:2" {
			wrong++
		}
	}
	close(stop)
	if err := <-writerDone; err != nil {
		t.Fatalf("SetTheme: %v", err)
	}
	if wrong > 0 {
		t.Fatalf("BaseURL returned the wrong URL %d times while another key was written", wrong)
	}
	if got := store.BaseURL(); got != "http://custom:2" {
		t.Fatalf("BaseURL after writes = %q, persisted URL lost", got)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("prefs dir holds %d entries, want only prefs.toml (temp files left behind?)", len(entries))
	}
}

func TestStore_BaseURLDefaultsAndPersists(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "prefs.toml")
	store := NewStore(prefsFile, "")

	if got := store.BaseURL(); got != defaultBackendURL {
		t.Fatalf("BaseURL = %q, want default %q", got, defaultBackendURL)
	}

	if err := store.SetBaseURL("http://10.1.1.1:9000"); err != nil {
		t.Fatalf("SetBaseURL: %v", err)
	}
	if got := store.BaseURL(); got != "http://10.1.1.1:9000" {
		t.Fatalf("BaseURL = %q, want persisted value", got)
	}

	// A second store over the same file sees the value without any handoff.
	other := NewStore(prefsFile, "http://ignored")
	if got := other.BaseURL(); got != "http://10.1.1.1:9000" {
		t.Fatalf("second store BaseURL = %q, want persisted value", got)
	}

	if err := store.SetBaseURL(""); err != nil {
		t.Fatalf("SetBaseURL(\"\"): %v", err)
	}
	if got := other.BaseURL(); got != "http://ignored" {
		t.Fatalf("BaseURL after clearing = %q, want store default", got)
	}
}

func TestStore_SetBaseURLDoesNotValidate(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "prefs.toml"), "")
	if err := store.SetBaseURL("not a url"); err != nil {
		t.Fatalf("SetBaseURL returned error for malformed URL: %v", err)
	}
	if got := store.BaseURL(); got != "not a url" {
		t.Fatalf("BaseURL = %q, want value stored verbatim", got)
	}
}

func TestStore_TypedSettersPreserveOtherKeys(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "prefs.toml"), "")
	if err := store.SetBaseURL("http://host:1"); err != nil {
		t.Fatalf("SetBaseURL: %v", err)
	}
	if err := store.SetTheme("Kanagawa"); err != nil {
		t.Fatalf("SetTheme: %v", err)
	}
	if err := store.SetGallerySize("small"); err != nil {
		t.Fatalf("SetGallerySize: %v", err)
	}
	if err := store.SetZoomMode("cover"); err != nil {
		t.Fatalf("SetZoomMode: %v", err)
	}
	if err := store.SetAnimations(false); err != nil {
		t.Fatalf("SetAnimations: %v", err)
	}

	p := store.Load()
	want := Prefs{BackendURL: "http://host:1", Theme: "Kanagawa", GallerySize: "small", ZoomMode: "cover", Animations: "false"}
	if p != want {
		t.Fatalf("Load = %#v, want %#v", p, want)
	}

	if err := store.SetGallerySize("giant"); err == nil {
		t.Fatalf("SetGallerySize(giant) returned nil error")
	}
}

func TestNext_Wraps(t *testing.T) {
	if got := Next(GallerySizes, "large"); got != "small" {
		t.Fatalf("Next(large) = %q, want small", got)
	}
	if got := Next(ZoomModes, "unknown"); got != "contain" {
		t.Fatalf("Next(unknown) = %q, want first value", got)
	}
}

func TestStore_WatchReportsExternalWrites(t *testing.T) {
	prefsFile := filepath.Join(t.TempDir(), "prefs.toml")
	store := NewStore(prefsFile, "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan Prefs, 4)
	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx, func(p Prefs) { changes <- p })
	}()

	// Writes are spaced wider than the debounce window so one of them settles.
	deadline := time.After(3 * time.Second)
	writer := NewStore(prefsFile, "")
	ticker := time.NewTicker(400 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case p := <-changes:
			if p.Theme != "Slate" {
				t.Fatalf("Watch delivered theme %q, want Slate", p.Theme)
			}
			cancel()
			if err := <-done; err != nil {
				t.Fatalf("Watch returned error: %v", err)
			}
			return
		case <-ticker.C:
			if err := writer.SetTheme("Slate"); err != nil {
				t.Fatalf("SetTheme: %v", err)
			}
		case <-deadline:
			t.Fatalf("Watch did not report the external write")
		}
	}
}
