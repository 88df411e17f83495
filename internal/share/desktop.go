package share

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
)

// Opener commands per platform.
const (
	OpenCommand     = "open"
	XDGOpenCommand  = "xdg-open"
	ExplorerCommand = "explorer"
)

const exportDirPermissions = 0o755

// DesktopHost maps the share capabilities onto a desktop terminal session:
// file share exports into ExportDir, URL share copies to the clipboard and
// open hands the URL to the OS opener.
type DesktopHost struct {
	ExportDir string

	// Overridable for tests.
	clipboardUnsupported bool
	writeClipboard       func(string) error
	runOpener            func(ctx context.Context, name string, args ...string) error
}

// NewDesktopHost returns a host exporting into exportDir. An empty exportDir
// disables file sharing.
func NewDesktopHost(exportDir string) *DesktopHost {
	return &DesktopHost{
		ExportDir:            exportDir,
		clipboardUnsupported: clipboard.Unsupported,
		writeClipboard:       clipboard.WriteAll,
		runOpener:            startDetached,
	}
}

func (h *DesktopHost) CanShareFiles(f File) bool {
	return h.ExportDir != "" && len(f.Data) > 0
}

// ShareFiles writes the payload into ExportDir without overwriting an
// existing export.
func (h *DesktopHost) ShareFiles(_ context.Context, f File) error {
	if err := os.MkdirAll(h.ExportDir, exportDirPermissions); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}
	target, err := uniquePath(h.ExportDir, safeName(f.Name))
	if err != nil {
		return err
	}
	if err := os.WriteFile(target, f.Data, 0o644); err != nil {
		return fmt.Errorf("export %s: %w", f.Name, err)
	}
	return nil
}

func (h *DesktopHost) CanShareURL() bool {
	return !h.clipboardUnsupported && h.writeClipboard != nil
}

// ShareURL copies the URL to the system clipboard.
func (h *DesktopHost) ShareURL(_ context.Context, _ string, url string) error {
	if err := h.writeClipboard(url); err != nil {
		return fmt.Errorf("copy to clipboard: %w", err)
	}
	return nil
}

// Open hands target to the platform opener.
func (h *DesktopHost) Open(ctx context.Context, target string) error {
	name, args, err := OpenerCommand(runtime.GOOS, target)
	if err != nil {
		return err
	}
	return h.runOpener(ctx, name, args...)
}

// OpenerCommand returns the command that opens target with the default
// application on goos.
func OpenerCommand(goos, target string) (string, []string, error) {
	switch goos {
	case "darwin":
		return OpenCommand, []string{target}, nil
	case "windows":
		return ExplorerCommand, []string{target}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return XDGOpenCommand, []string{target}, nil
	default:
		return "", nil, fmt.Errorf("unsupported operating system: %s", goos)
	}
}

// startDetached launches the opener without tying it to ctx; openers like
// xdg-open may outlive mnemo.
func startDetached(_ context.Context, name string, args ...string) error {
	path, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("opener %s not found: %w", name, err)
	}
	cmd := exec.Command(path, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", name, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func safeName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return defaultFilename
	}
	return name
}

func uniquePath(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := filepath.Join(dir, name)
	for i := 1; i < 1000; i++ {
		if _, err := os.Stat(candidate); errors.Is(err, os.ErrNotExist) {
			return candidate, nil
		} else if err != nil {
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", stem, i, ext))
	}
	return "", fmt.Errorf("no free export name for %s", name)
}

var _ Host = (*DesktopHost)(nil)
