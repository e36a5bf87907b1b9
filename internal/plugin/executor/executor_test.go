package executor

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	figplugin "github.com/jmylchreest/figaid/pkg/plugin"
)

func writeScript(t *testing.T, body string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "describer.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), mode); err != nil {
		t.Fatal(err)
	}
	return path
}

// TestNew tests executor construction and validation.
func TestNew(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr bool
	}{
		{"empty", func(*testing.T) string { return "" }, true},
		{"missing", func(*testing.T) string { return filepath.Join(dir, "nope") }, true},
		{"directory", func(*testing.T) string { return dir }, true},
		{"not executable", func(t *testing.T) string { return writeScript(t, "exit 0\n", 0o600) }, true},
		{"valid", func(t *testing.T) string { return writeScript(t, "exit 0\n", 0o700) }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := New(tt.path(t), nil)
			if (err != nil) != tt.wantErr {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if e != nil {
				if !filepath.IsAbs(e.Path()) {
					t.Errorf("Path() = %q, want absolute", e.Path())
				}
				if e.Name() != "describer.sh" {
					t.Errorf("Name() = %q", e.Name())
				}
				e.Close()
			}
		})
	}
}

// TestInfo tests querying plugin metadata with the info flag.
func TestInfo(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on Windows")
	}

	path := writeScript(t, `if [ "$1" = "--plugin-info" ]; then
  echo '{"name":"sh-describer","version":"0.0.1","protocol_version":"0.1.0","description":"test"}'
  exit 0
fi
exit 1
`, 0o700)

	e, err := New(path, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	info, err := e.Info(context.Background())
	if err != nil {
		t.Fatalf("Info() error = %v", err)
	}
	if info.Name != "sh-describer" || info.Version != "0.0.1" {
		t.Errorf("Info() = %+v", info)
	}
}

// TestInfoInvalidJSON tests a plugin that answers the info flag with garbage.
func TestInfoInvalidJSON(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on Windows")
	}

	e, err := New(writeScript(t, "echo not-json\n", 0o700), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if _, err := e.Info(context.Background()); err == nil {
		t.Error("expected parse error")
	}
}

// TestDescribeNotAPlugin tests that a binary without the handshake fails
// cleanly instead of hanging.
func TestDescribeNotAPlugin(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts not supported on Windows")
	}

	e, err := New(writeScript(t, "echo hello\nexit 1\n", 0o700), nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer e.Close()

	if _, err := e.Describe(context.Background(), figpluginRequest()); err == nil {
		t.Error("expected error from a binary that is not a plugin")
	}
	// Close must be safe to call repeatedly.
	e.Close()
	e.Close()
}

func figpluginRequest() figplugin.DescribeRequest {
	return figplugin.DescribeRequest{ImagePath: "/tmp/x.png", Format: "png"}
}
