// components/logging/config.go
package logging

import (
	"fmt"
	"path/filepath"
	"strings"
)

// TargetKind names where log records go.
type TargetKind string

const (
	TargetStdout  TargetKind = "stdout"
	TargetStderr  TargetKind = "stderr"
	TargetWebview TargetKind = "webview" // embedded console, streamed to the UI
	TargetFolder  TargetKind = "folder"  // rotating file in a directory
)

// Target is one output of the logger.
type Target struct {
	Kind     TargetKind `yaml:"kind" json:"kind"`
	Path     string     `yaml:"path,omitempty" json:"path,omitempty"`           // folder only
	FileName string     `yaml:"file_name,omitempty" json:"file_name,omitempty"` // folder only, without extension
	Format   string     `yaml:"format,omitempty" json:"format,omitempty"`       // console|json; webview is always json
}

func NewTarget(kind TargetKind) Target { return Target{Kind: kind} }

// FolderTarget writes <path>/<fileName>.log with size based rotation.
func FolderTarget(path, fileName string) Target {
	return Target{Kind: TargetFolder, Path: path, FileName: fileName}
}

// File returns the active log file path of a folder target.
func (t Target) File() string {
	return filepath.Join(t.Path, t.FileName+logFileExt)
}

type RotationMode string

const (
	RotationKeepAll  RotationMode = "keep_all"
	RotationKeepOne  RotationMode = "keep_one"
	RotationKeepSome RotationMode = "keep_some"
)

// RotationStrategy decides which rotated files survive a rotation.
type RotationStrategy struct {
	Mode RotationMode `yaml:"mode" json:"mode"`
	Keep int          `yaml:"keep,omitempty" json:"keep,omitempty"` // keep_some only
}

// KeepAll never deletes a rotated file.
func KeepAll() RotationStrategy { return RotationStrategy{Mode: RotationKeepAll} }

// KeepOne deletes every rotated file; only the active file remains.
func KeepOne() RotationStrategy { return RotationStrategy{Mode: RotationKeepOne} }

// KeepSome retains the n newest rotated files.
func KeepSome(n int) RotationStrategy { return RotationStrategy{Mode: RotationKeepSome, Keep: n} }

// retained returns how many rotated files survive, or -1 for all of them.
func (r RotationStrategy) retained() int {
	switch r.Mode {
	case RotationKeepOne:
		return 0
	case RotationKeepSome:
		return r.Keep
	default:
		return -1
	}
}

func (r RotationStrategy) String() string {
	if r.Mode == RotationKeepSome {
		return fmt.Sprintf("%s(%d)", r.Mode, r.Keep)
	}
	return string(r.Mode)
}

type TimezoneStrategy string

const (
	TimezoneUseLocal TimezoneStrategy = "local"
	TimezoneUseUTC   TimezoneStrategy = "utc"
)

// LoggingConfig is built once at startup and owned by the logging component afterwards.
type LoggingConfig struct {
	Enabled        bool             `yaml:"enabled" json:"enabled"`
	Level          string           `yaml:"level" json:"level"`
	Format         string           `yaml:"format" json:"format"`
	Targets        []Target         `yaml:"targets" json:"targets"`
	Rotation       RotationStrategy `yaml:"rotation" json:"rotation"`
	MaxFileSize    int64            `yaml:"max_file_size" json:"max_file_size"` // bytes, 0 disables rotation
	Timezone       TimezoneStrategy `yaml:"timezone" json:"timezone"`
	ConsoleBacklog int              `yaml:"console_backlog" json:"console_backlog"` // records replayed to new webview subscribers
}

// Option mutates a LoggingConfig under construction.
type Option func(*LoggingConfig)

func WithTarget(t Target) Option             { return func(c *LoggingConfig) { c.Targets = append(c.Targets, t) } }
func WithLevel(lvl string) Option             { return func(c *LoggingConfig) { c.Level = lvl } }
func WithFormat(f string) Option              { return func(c *LoggingConfig) { c.Format = f } }
func WithRotation(r RotationStrategy) Option  { return func(c *LoggingConfig) { c.Rotation = r } }
func WithMaxFileSize(bytes int64) Option      { return func(c *LoggingConfig) { c.MaxFileSize = bytes } }
func WithTimezone(tz TimezoneStrategy) Option { return func(c *LoggingConfig) { c.Timezone = tz } }
func WithConsoleBacklog(n int) Option         { return func(c *LoggingConfig) { c.ConsoleBacklog = n } }

// NewConfig returns an enabled config with the given options applied over defaults.
func NewConfig(opts ...Option) *LoggingConfig {
	cfg := &LoggingConfig{Enabled: true}
	for _, apply := range opts {
		apply(cfg)
	}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	if cfg.Format == "" {
		cfg.Format = "console"
	}
	if cfg.Rotation.Mode == "" {
		cfg.Rotation = KeepAll()
	}
	if cfg.Timezone == "" {
		cfg.Timezone = TimezoneUseLocal
	}
	if cfg.ConsoleBacklog <= 0 {
		cfg.ConsoleBacklog = defaultConsoleBacklog
	}
	if len(cfg.Targets) == 0 {
		cfg.Targets = []Target{NewTarget(TargetStdout)}
	}
}

func validate(cfg *LoggingConfig) error {
	if _, err := ParseLevel(cfg.Level); err != nil {
		return err
	}
	switch cfg.Rotation.Mode {
	case RotationKeepAll, RotationKeepOne:
	case RotationKeepSome:
		if cfg.Rotation.Keep < 1 {
			return fmt.Errorf("logging.rotation keep_some requires keep >= 1, got %d", cfg.Rotation.Keep)
		}
	default:
		return fmt.Errorf("logging.rotation unknown mode %q", cfg.Rotation.Mode)
	}
	if cfg.MaxFileSize < 0 {
		return fmt.Errorf("logging.max_file_size must be >= 0")
	}
	switch cfg.Timezone {
	case TimezoneUseLocal, TimezoneUseUTC:
	default:
		return fmt.Errorf("logging.timezone must be local or utc, got %q", cfg.Timezone)
	}
	webviews := 0
	for i, t := range cfg.Targets {
		switch t.Kind {
		case TargetStdout, TargetStderr:
		case TargetWebview:
			webviews++
		case TargetFolder:
			if strings.TrimSpace(t.Path) == "" || strings.TrimSpace(t.FileName) == "" {
				return fmt.Errorf("logging.targets[%d]: folder target needs path and file_name", i)
			}
		default:
			return fmt.Errorf("logging.targets[%d]: unknown kind %q", i, t.Kind)
		}
		if t.Format != "" && t.Format != "console" && t.Format != "json" {
			return fmt.Errorf("logging.targets[%d]: unknown format %q", i, t.Format)
		}
	}
	if webviews > 1 {
		return fmt.Errorf("logging: at most one webview target allowed")
	}
	return nil
}
