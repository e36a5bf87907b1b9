// Package capture takes screenshots of the whole screen, an interactively
// selected area or the design tool's front window.
package capture

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/kbinani/screenshot"
	"github.com/mitchellh/go-ps"

	imageutil "github.com/jmylchreest/figaid/internal/image"
)

// Target selects what to capture.
type Target string

const (
	TargetScreen      Target = "screen"
	TargetInteractive Target = "interactive"
	TargetFigma       Target = "figma"
)

// Targets lists the valid capture targets.
func Targets() []Target {
	return []Target{TargetScreen, TargetInteractive, TargetFigma}
}

// ParseTarget validates a target name. An empty name selects the screen.
func ParseTarget(s string) (Target, error) {
	if s == "" {
		return TargetScreen, nil
	}
	for _, t := range Targets() {
		if strings.EqualFold(s, string(t)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown capture target %q (valid: screen, interactive, figma)", s)
}

// Defaults.
const (
	DefaultApp           = "Figma"
	DefaultActivateDelay = 500 * time.Millisecond
	ScreencaptureCommand = "screencapture"
	OsascriptCommand     = "osascript"
)

// Result describes a saved capture.
type Result struct {
	Filename  string `json:"filename"`
	Path      string `json:"filepath"`
	Timestamp int64  `json:"timestamp"`
	App       string `json:"app,omitempty"`
}

// Options configures a Capturer. Zero values select the real system
// implementations.
type Options struct {
	// Dir is where captures are written. It is created on demand.
	Dir string

	// App is the process and application name of the design tool.
	App string

	// ActivateDelay is how long to wait after bringing the app to front.
	// Zero selects DefaultActivateDelay and a negative value disables it.
	ActivateDelay time.Duration

	Runner    ProcessRunner
	Processes func() ([]ps.Process, error)
	Grab      func(display int) (*image.RGBA, error)
	Now       func() time.Time
	Logger    hclog.Logger
}

// Capturer takes screenshots into a directory.
type Capturer struct {
	dir           string
	app           string
	activateDelay time.Duration
	runner        ProcessRunner
	processes     func() ([]ps.Process, error)
	grab          func(display int) (*image.RGBA, error)
	now           func() time.Time
	logger        hclog.Logger
}

// New creates a Capturer.
func New(opts Options) *Capturer {
	c := &Capturer{
		dir:           opts.Dir,
		app:           opts.App,
		activateDelay: opts.ActivateDelay,
		runner:        opts.Runner,
		processes:     opts.Processes,
		grab:          opts.Grab,
		now:           opts.Now,
		logger:        opts.Logger,
	}
	if c.dir == "" {
		c.dir = "captures"
	}
	if c.app == "" {
		c.app = DefaultApp
	}
	switch {
	case c.activateDelay == 0:
		c.activateDelay = DefaultActivateDelay
	case c.activateDelay < 0:
		c.activateDelay = 0
	}
	if c.runner == nil {
		c.runner = NewRealProcessRunner()
	}
	if c.processes == nil {
		c.processes = ps.Processes
	}
	if c.grab == nil {
		c.grab = screenshot.CaptureDisplay
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.logger == nil {
		c.logger = hclog.NewNullLogger()
	}
	return c
}

// Dir returns the capture directory.
func (c *Capturer) Dir() string {
	return c.dir
}

// Capture takes a screenshot of target.
func (c *Capturer) Capture(ctx context.Context, target Target) (*Result, error) {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create captures directory: %w", err)
	}

	switch target {
	case TargetScreen, "":
		return c.captureScreen(ctx)
	case TargetInteractive:
		return c.captureInteractive(ctx)
	case TargetFigma:
		return c.captureApp(ctx)
	default:
		return nil, fmt.Errorf("unknown capture target %q", target)
	}
}

func (c *Capturer) newResult(prefix string) *Result {
	ts := c.now().UnixMilli()
	name := fmt.Sprintf("%s_%d.png", prefix, ts)
	return &Result{
		Filename:  name,
		Path:      filepath.Join(c.dir, name),
		Timestamp: ts,
	}
}

// screencapture runs the macOS tool and checks that it produced a file;
// it exits zero when an interactive selection is cancelled.
func (c *Capturer) screencapture(ctx context.Context, path string, args ...string) error {
	args = append(args, path)
	if _, stderr, err := c.runner.Run(ctx, ScreencaptureCommand, args...); err != nil {
		return fmt.Errorf("screencapture failed: %w (%s)", err, strings.TrimSpace(string(stderr)))
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("screencapture did not write %s", filepath.Base(path))
	}
	return nil
}

func (c *Capturer) captureScreen(ctx context.Context) (*Result, error) {
	res := c.newResult("screen")

	err := c.screencapture(ctx, res.Path, "-x")
	if err == nil {
		c.logger.Info("screen captured", "file", res.Filename)
		return res, nil
	}
	c.logger.Warn("screencapture failed, using native capture", "error", err)

	if ferr := c.nativeCapture(res.Path); ferr != nil {
		return nil, fmt.Errorf("screen capture failed: %w; fallback: %w", err, ferr)
	}
	c.logger.Info("screen captured (fallback)", "file", res.Filename)
	return res, nil
}

func (c *Capturer) nativeCapture(path string) error {
	img, err := c.grab(0)
	if err != nil {
		return fmt.Errorf("failed to capture display: %w", err)
	}

	f, err := os.Create(path) // #nosec G304 - generated capture path
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode capture: %w", err)
	}
	return f.Close()
}

func (c *Capturer) captureInteractive(ctx context.Context) (*Result, error) {
	res := c.newResult("interactive")
	c.logger.Info("click and drag to select the area to capture")
	if err := c.screencapture(ctx, res.Path, "-i", "-x"); err != nil {
		return nil, err
	}
	c.logger.Info("area captured", "file", res.Filename)
	return res, nil
}

func (c *Capturer) captureApp(ctx context.Context) (*Result, error) {
	res, err := c.captureAppWindow(ctx)
	if err != nil {
		c.logger.Warn("app capture failed, falling back to full screen", "app", c.app, "error", err)
		return c.captureScreen(ctx)
	}
	c.logger.Info("app window captured", "app", c.app, "file", res.Filename)
	return res, nil
}

func (c *Capturer) captureAppWindow(ctx context.Context) (*Result, error) {
	running, err := c.AppRunning()
	if err != nil {
		return nil, err
	}
	if !running {
		return nil, fmt.Errorf("%s is not running", c.app)
	}

	activate := fmt.Sprintf(`tell application "System Events" to tell process %q to set frontmost to true`, c.app)
	if _, stderr, err := c.runner.Run(ctx, OsascriptCommand, "-e", activate); err != nil {
		return nil, fmt.Errorf("failed to activate %s: %w (%s)", c.app, err, strings.TrimSpace(string(stderr)))
	}

	if c.activateDelay > 0 {
		select {
		case <-time.After(c.activateDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	stdout, stderr, err := c.runner.Run(ctx, OsascriptCommand, "-e", fmt.Sprintf(`tell app %q to id of window 1`, c.app))
	if err != nil {
		return nil, fmt.Errorf("failed to find %s window: %w (%s)", c.app, err, strings.TrimSpace(string(stderr)))
	}
	id := strings.TrimSpace(string(stdout))
	if id == "" {
		return nil, fmt.Errorf("%s has no open window", c.app)
	}

	res := c.newResult(strings.ToLower(c.app))
	res.App = c.app
	if err := c.screencapture(ctx, res.Path, "-x", "-l"+id); err != nil {
		return nil, err
	}
	return res, nil
}

// AppRunning reports whether a process named like the configured app exists.
func (c *Capturer) AppRunning() (bool, error) {
	processes, err := c.processes()
	if err != nil {
		return false, fmt.Errorf("failed to get process list: %w", err)
	}
	for _, p := range processes {
		if strings.EqualFold(p.Executable(), c.app) {
			return true, nil
		}
	}
	return false, nil
}

// List returns the captures already in the directory.
func (c *Capturer) List() ([]string, error) {
	return imageutil.ListImages(c.dir)
}

// OpenFolder opens dir in the platform's file manager.
func OpenFolder(ctx context.Context, runner ProcessRunner, dir string) error {
	if runner == nil {
		runner = NewRealProcessRunner()
	}
	cmd := "xdg-open"
	switch runtime.GOOS {
	case "darwin":
		cmd = "open"
	case "windows":
		cmd = "explorer"
	}
	if _, stderr, err := runner.Run(ctx, cmd, dir); err != nil {
		return fmt.Errorf("failed to open %s: %w (%s)", dir, err, strings.TrimSpace(string(stderr)))
	}
	return nil
}
