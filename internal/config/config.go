// Package config resolves figaid settings from defaults, FIGAID_*
// environment variables and command-line flags, in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/jmylchreest/figaid/internal/analysis"
	"github.com/jmylchreest/figaid/internal/capture"
	"github.com/jmylchreest/figaid/internal/history"
	"github.com/jmylchreest/figaid/internal/placement"
	"github.com/jmylchreest/figaid/internal/showcase"
)

// Environment variable names.
const (
	EnvHost            = "FIGAID_HOST"
	EnvPort            = "FIGAID_PORT"
	EnvCapturesDir     = "FIGAID_CAPTURES_DIR"
	EnvApp             = "FIGAID_APP"
	EnvPadding         = "FIGAID_PADDING"
	EnvMonitorInterval = "FIGAID_MONITOR_INTERVAL"
	EnvHistoryLimit    = "FIGAID_HISTORY_LIMIT"
	EnvLibrary         = "FIGAID_LIBRARY"
	EnvGeminiModel     = "FIGAID_GEMINI_MODEL"
	EnvGemini          = "FIGAID_GEMINI"
	EnvPlugins         = "FIGAID_PLUGINS"
)

// Flag names shared by every command that binds configuration flags.
const (
	FlagHost            = "host"
	FlagPort            = "port"
	FlagCapturesDir     = "captures-dir"
	FlagApp             = "app"
	FlagPadding         = "padding"
	FlagMonitorInterval = "monitor-interval"
	FlagHistoryLimit    = "history-limit"
	FlagLibrary         = "library"
	FlagGeminiModel     = "gemini-model"
	FlagGemini          = "gemini"
	FlagPlugins         = "plugin"
)

// Defaults.
const (
	DefaultHost            = "localhost"
	DefaultPort            = 3001
	DefaultCapturesDir     = "captures"
	DefaultMonitorInterval = 5 * time.Second
)

// Config holds the resolved settings.
type Config struct {
	Host        string
	Port        int
	CapturesDir string
	App         string

	// Padding is the gap kept between placed frames and existing content.
	Padding float64

	// MonitorInterval is the period of the /monitor capture stream.
	MonitorInterval time.Duration

	// HistoryLimit is how many entries the history endpoint returns.
	HistoryLimit int

	// Library filters library variable collections by name.
	Library string

	// Gemini enables the Gemini describer; GeminiModel selects its model.
	Gemini      bool
	GeminiModel string

	// Plugins are paths to describer plugin binaries.
	Plugins []string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Host:            DefaultHost,
		Port:            DefaultPort,
		CapturesDir:     DefaultCapturesDir,
		App:             capture.DefaultApp,
		Padding:         placement.DefaultPadding,
		MonitorInterval: DefaultMonitorInterval,
		HistoryLimit:    history.DefaultRecent,
		Library:         showcase.DefaultLibrary,
		GeminiModel:     analysis.DefaultGeminiModel,
	}
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Validate checks that the settings are usable.
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}
	if c.CapturesDir == "" {
		return fmt.Errorf("captures directory cannot be empty")
	}
	if c.Padding < 0 {
		return fmt.Errorf("padding cannot be negative, got %g", c.Padding)
	}
	if c.MonitorInterval <= 0 {
		return fmt.Errorf("monitor interval must be positive, got %s", c.MonitorInterval)
	}
	if c.HistoryLimit < 1 {
		return fmt.Errorf("history limit must be at least 1, got %d", c.HistoryLimit)
	}
	return nil
}

// Builder provides a fluent interface for resolving a Config.
type Builder struct {
	config Config
	useEnv bool
	getenv func(string) string
	flags  *pflag.FlagSet
}

// NewBuilder creates a Builder starting from Default.
func NewBuilder() *Builder {
	return &Builder{
		config: Default(),
		getenv: os.Getenv,
	}
}

// WithConfig replaces the base configuration.
func (b *Builder) WithConfig(config Config) *Builder {
	b.config = config
	return b
}

// WithEnvConfig applies FIGAID_* environment variables on top of the base.
func (b *Builder) WithEnvConfig() *Builder {
	b.useEnv = true
	return b
}

// WithFlags applies flags registered by RegisterFlags. Only flags the user
// changed override earlier layers.
func (b *Builder) WithFlags(fs *pflag.FlagSet) *Builder {
	b.flags = fs
	return b
}

// Build resolves and validates the configuration.
func (b *Builder) Build() (Config, error) {
	config := b.config

	if b.useEnv {
		if err := applyEnv(&config, b.getenv); err != nil {
			return Config{}, err
		}
	}

	if b.flags != nil {
		if err := applyFlags(&config, b.flags); err != nil {
			return Config{}, err
		}
	}

	if err := config.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func applyEnv(c *Config, getenv func(string) string) error {
	if v := getenv(EnvHost); v != "" {
		c.Host = v
	}
	if v := getenv(EnvPort); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		c.Port = port
	}
	if v := getenv(EnvCapturesDir); v != "" {
		c.CapturesDir = v
	}
	if v := getenv(EnvApp); v != "" {
		c.App = v
	}
	if v := getenv(EnvPadding); v != "" {
		padding, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPadding, err)
		}
		c.Padding = padding
	}
	if v := getenv(EnvMonitorInterval); v != "" {
		interval, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvMonitorInterval, err)
		}
		c.MonitorInterval = interval
	}
	if v := getenv(EnvHistoryLimit); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvHistoryLimit, err)
		}
		c.HistoryLimit = limit
	}
	if v := getenv(EnvLibrary); v != "" {
		c.Library = v
	}
	if v := getenv(EnvGeminiModel); v != "" {
		c.GeminiModel = v
	}
	if v := getenv(EnvGemini); v != "" {
		enabled, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvGemini, err)
		}
		c.Gemini = enabled
	}
	if v := getenv(EnvPlugins); v != "" {
		c.Plugins = parseList(v)
	}
	return nil
}

// parseList splits a comma-separated list, dropping empty items.
func parseList(s string) []string {
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// RegisterFlags adds the configuration flags to fs with their defaults.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String(FlagHost, d.Host, "listen host ("+EnvHost+")")
	fs.IntP(FlagPort, "p", d.Port, "listen port ("+EnvPort+")")
	fs.String(FlagCapturesDir, d.CapturesDir, "directory for captures and exports ("+EnvCapturesDir+")")
	fs.String(FlagApp, d.App, "design tool process name ("+EnvApp+")")
	fs.Float64(FlagPadding, d.Padding, "gap between placed frames and existing content ("+EnvPadding+")")
	fs.Duration(FlagMonitorInterval, d.MonitorInterval, "capture period of the monitor stream ("+EnvMonitorInterval+")")
	fs.Int(FlagHistoryLimit, d.HistoryLimit, "entries returned by the history endpoint ("+EnvHistoryLimit+")")
	fs.String(FlagLibrary, d.Library, "library name filter for library colour variables ("+EnvLibrary+")")
	fs.Bool(FlagGemini, d.Gemini, "describe captures with Gemini, needs GOOGLE_API_KEY ("+EnvGemini+")")
	fs.String(FlagGeminiModel, d.GeminiModel, "Gemini model name ("+EnvGeminiModel+")")
	fs.StringSlice(FlagPlugins, nil, "describer plugin binary, repeatable ("+EnvPlugins+")")
}

func applyFlags(c *Config, fs *pflag.FlagSet) error {
	var err error
	changed := func(name string) bool {
		f := fs.Lookup(name)
		return err == nil && f != nil && f.Changed
	}

	if changed(FlagHost) {
		c.Host, err = fs.GetString(FlagHost)
	}
	if changed(FlagPort) {
		c.Port, err = fs.GetInt(FlagPort)
	}
	if changed(FlagCapturesDir) {
		c.CapturesDir, err = fs.GetString(FlagCapturesDir)
	}
	if changed(FlagApp) {
		c.App, err = fs.GetString(FlagApp)
	}
	if changed(FlagPadding) {
		c.Padding, err = fs.GetFloat64(FlagPadding)
	}
	if changed(FlagMonitorInterval) {
		c.MonitorInterval, err = fs.GetDuration(FlagMonitorInterval)
	}
	if changed(FlagHistoryLimit) {
		c.HistoryLimit, err = fs.GetInt(FlagHistoryLimit)
	}
	if changed(FlagLibrary) {
		c.Library, err = fs.GetString(FlagLibrary)
	}
	if changed(FlagGemini) {
		c.Gemini, err = fs.GetBool(FlagGemini)
	}
	if changed(FlagGeminiModel) {
		c.GeminiModel, err = fs.GetString(FlagGeminiModel)
	}
	if changed(FlagPlugins) {
		c.Plugins, err = fs.GetStringSlice(FlagPlugins)
	}

	if err != nil {
		return fmt.Errorf("failed to read flags: %w", err)
	}
	return nil
}
