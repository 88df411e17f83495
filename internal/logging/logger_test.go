package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestNewLogger_CachesPerComponent(t *testing.T) {
	a := NewLogger("boot")
	b := NewLogger("boot")
	if a != b {
		t.Fatalf("NewLogger returned different entries for the same component")
	}
	if got := a.Data["component"]; got != "boot" {
		t.Fatalf("component field = %v, want boot", got)
	}
}

func TestSetup_WritesToFileAtLevel(t *testing.T) {
	t.Setenv(levelEnv, "")
	path := filepath.Join(t.TempDir(), "logs", "mnemo.log")

	closer, err := Setup(Options{File: path, Level: "debug"})
	if err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	t.Cleanup(func() {
		_ = closer.Close()
		SetOutput(os.Stderr)
	})

	NewLogger("test").Debug("probe failed")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.Contains(string(data), "probe failed") || !strings.Contains(string(data), "component=test") {
		t.Fatalf("log file = %q, want debug line with component", data)
	}
}

func TestSetup_EnvOverridesLevel(t *testing.T) {
	t.Setenv(levelEnv, "error")
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(os.Stderr) })

	if _, err := Setup(Options{Level: "debug"}); err != nil {
		t.Fatalf("Setup returned error: %v", err)
	}
	if root.GetLevel() != logrus.ErrorLevel {
		t.Fatalf("level = %v, want error from env", root.GetLevel())
	}
	NewLogger("test").Warn("ignored")
	if buf.Len() != 0 {
		t.Fatalf("warn line written at error level: %q", buf.String())
	}
}
