// components/logging/logger_component.go
package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/warehouse-management/warehouse/internal/application/consts"
	"github.com/warehouse-management/warehouse/internal/application/core"
)

// Logger method -> writeWithContext -> zap. The global helpers add one
// frame and log through a logger with one more skip.
const callerSkip = 2

type Logger interface {
	Debug(ctx context.Context, msg string, fields ...zap.Field)
	Info(ctx context.Context, msg string, fields ...zap.Field)
	Warn(ctx context.Context, msg string, fields ...zap.Field)
	Error(ctx context.Context, msg string, fields ...zap.Field)
	Fatal(ctx context.Context, msg string, fields ...zap.Field)
	With(fields ...zap.Field) Logger
	Sync() error
}

// LoggerComponent is the logging plugin. It tees every record into one zap
// core per target; all cores share a single level so the threshold applies
// to every output alike.
type LoggerComponent struct {
	*core.BaseComponent
	config    *LoggingConfig
	level     zap.AtomicLevel
	zapLogger *zap.Logger
	global    *childLogger

	console *ConsoleHub
	files   []*sizeRotatingWriter
	stdio   map[TargetKind]io.Writer
}

func NewLoggerComponent(cfg *LoggingConfig) *LoggerComponent {
	lc := &LoggerComponent{
		BaseComponent: core.NewBaseComponent(consts.COMPONENT_LOGGING),
		config:        cfg,
		stdio: map[TargetKind]io.Writer{
			TargetStdout: os.Stdout,
			TargetStderr: os.Stderr,
		},
	}
	for _, t := range cfg.Targets {
		if t.Kind == TargetWebview {
			lc.console = NewConsoleHub(cfg.ConsoleBacklog)
		}
	}
	return lc
}

func (lc *LoggerComponent) Start(ctx context.Context) error {
	lvl, err := ParseLevel(lc.config.Level)
	if err != nil {
		return err
	}
	lc.level = zap.NewAtomicLevelAt(lvl)

	cores := make([]zapcore.Core, 0, len(lc.config.Targets))
	for _, t := range lc.config.Targets {
		ws, err := lc.buildWriteSyncer(t)
		if err != nil {
			lc.closeFiles()
			return fmt.Errorf("failed to create %s target: %w", t.Kind, err)
		}
		cores = append(cores, zapcore.NewCore(lc.buildEncoder(t), ws, lc.level))
	}

	lc.zapLogger = zap.New(
		zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddCallerSkip(callerSkip),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)

	if err := lc.BaseComponent.Start(ctx); err != nil {
		return err
	}
	lc.global = &childLogger{parent: lc, zapLogger: lc.zapLogger.WithOptions(zap.AddCallerSkip(1)), global: true}
	SetGlobalLogger(lc.global)
	Info(ctx, "logger component started",
		zap.String("level", lc.config.Level),
		zap.Strings("targets", lc.targetNames()),
		zap.Stringer("rotation", lc.config.Rotation),
		zap.Int64("max_file_size", lc.config.MaxFileSize),
		zap.String("timezone", string(lc.config.Timezone)),
	)
	return nil
}

func (lc *LoggerComponent) Stop(ctx context.Context) error {
	if lc.zapLogger != nil {
		Info(ctx, "logger component stopping")
		_ = lc.zapLogger.Sync()
	}
	if lc.global != nil {
		ResetGlobalLogger(lc.global)
	}
	lc.closeFiles()
	if lc.console != nil {
		lc.console.Close()
	}
	return lc.BaseComponent.Stop(ctx)
}

func (lc *LoggerComponent) HealthCheck() error {
	if err := lc.BaseComponent.HealthCheck(); err != nil {
		return err
	}
	if lc.zapLogger == nil {
		return errors.New("zap logger is not initialized")
	}
	return nil
}

func (lc *LoggerComponent) clock() time.Time {
	if lc.config.Timezone == TimezoneUseUTC {
		return time.Now().UTC()
	}
	return time.Now().Local()
}

func (lc *LoggerComponent) timeEncoder() zapcore.TimeEncoder {
	utc := lc.config.Timezone == TimezoneUseUTC
	return func(t time.Time, enc zapcore.PrimitiveArrayEncoder) {
		if utc {
			t = t.UTC()
		} else {
			t = t.Local()
		}
		zapcore.ISO8601TimeEncoder(t, enc)
	}
}

func (lc *LoggerComponent) buildEncoder(t Target) zapcore.Encoder {
	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     lc.timeEncoder(),
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	format := t.Format
	if format == "" {
		format = lc.config.Format
	}
	// the UI parses console records, so the webview always gets json
	if t.Kind == TargetWebview || format == "json" {
		return zapcore.NewJSONEncoder(encoderConfig)
	}
	if t.Kind == TargetStdout || t.Kind == TargetStderr {
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func (lc *LoggerComponent) buildWriteSyncer(t Target) (zapcore.WriteSyncer, error) {
	switch t.Kind {
	case TargetStdout, TargetStderr:
		return zapcore.Lock(zapcore.AddSync(lc.stdio[t.Kind])), nil
	case TargetWebview:
		if lc.console == nil {
			lc.console = NewConsoleHub(lc.config.ConsoleBacklog)
		}
		return lc.console, nil
	case TargetFolder:
		// the directory is created on first write, not here
		w := newSizeRotatingWriter(t.Path, t.FileName, lc.config.MaxFileSize, lc.config.Rotation, lc.clock)
		lc.files = append(lc.files, w)
		return w, nil
	default:
		return nil, fmt.Errorf("unknown target kind %q", t.Kind)
	}
}

func (lc *LoggerComponent) closeFiles() {
	for _, f := range lc.files {
		_ = f.Close()
	}
	lc.files = nil
}

func (lc *LoggerComponent) targetNames() []string {
	names := make([]string, 0, len(lc.config.Targets))
	for _, t := range lc.config.Targets {
		if t.Kind == TargetFolder {
			names = append(names, fmt.Sprintf("%s:%s", t.Kind, t.File()))
			continue
		}
		names = append(names, string(t.Kind))
	}
	return names
}

// Console returns the webview hub, or nil when no webview target is configured.
func (lc *LoggerComponent) Console() *ConsoleHub { return lc.console }

// Config returns the configuration the component owns.
func (lc *LoggerComponent) Config() *LoggingConfig { return lc.config }

// SetLevel changes the threshold of every target at runtime.
func (lc *LoggerComponent) SetLevel(level string) error {
	lvl, err := ParseLevel(level)
	if err != nil {
		return err
	}
	lc.level.SetLevel(lvl)
	return nil
}

// Enabled reports whether a record at the named level would be emitted.
func (lc *LoggerComponent) Enabled(level string) bool {
	lvl, err := ParseLevel(level)
	if err != nil || lc.zapLogger == nil {
		return false
	}
	return lc.level.Enabled(lvl)
}

func (lc *LoggerComponent) Debug(ctx context.Context, msg string, fields ...zap.Field) {
	writeWithContext(lc.zapLogger, ctx, zapcore.DebugLevel, msg, fields...)
}

func (lc *LoggerComponent) Info(ctx context.Context, msg string, fields ...zap.Field) {
	writeWithContext(lc.zapLogger, ctx, zapcore.InfoLevel, msg, fields...)
}

func (lc *LoggerComponent) Warn(ctx context.Context, msg string, fields ...zap.Field) {
	writeWithContext(lc.zapLogger, ctx, zapcore.WarnLevel, msg, fields...)
}

func (lc *LoggerComponent) Error(ctx context.Context, msg string, fields ...zap.Field) {
	writeWithContext(lc.zapLogger, ctx, zapcore.ErrorLevel, msg, fields...)
}

// Fatal logs then exits the process through zap.
func (lc *LoggerComponent) Fatal(ctx context.Context, msg string, fields ...zap.Field) {
	writeWithContext(lc.zapLogger, ctx, zapcore.FatalLevel, msg, fields...)
}

func (lc *LoggerComponent) With(fields ...zap.Field) Logger {
	if lc.zapLogger == nil {
		return lc
	}
	return &childLogger{parent: lc, zapLogger: lc.zapLogger.With(fields...)}
}

func (lc *LoggerComponent) Sync() error {
	if lc.zapLogger != nil {
		return lc.zapLogger.Sync()
	}
	return nil
}

// GetZapLogger exposes the underlying logger, nil before Start.
func (lc *LoggerComponent) GetZapLogger() *zap.Logger { return lc.zapLogger }

func writeWithContext(l *zap.Logger, ctx context.Context, level zapcore.Level, msg string, fields ...zap.Field) {
	if l == nil {
		return
	}
	fields = withContextFields(ctx, fields)
	if ce := l.Check(level, msg); ce != nil {
		ce.Write(fields...)
	}
}

// childLogger carries fields added with With. The global one also skips
// the package-level helper frame.
type childLogger struct {
	parent    *LoggerComponent
	zapLogger *zap.Logger
	global    bool
}

func (c *childLogger) Debug(ctx context.Context, msg string, fields ...zap.Field) {
	writeWithContext(c.zapLogger, ctx, zapcore.DebugLevel, msg, fields...)
}
func (c *childLogger) Info(ctx context.Context, msg string, fields ...zap.Field) {
	writeWithContext(c.zapLogger, ctx, zapcore.InfoLevel, msg, fields...)
}
func (c *childLogger) Warn(ctx context.Context, msg string, fields ...zap.Field) {
	writeWithContext(c.zapLogger, ctx, zapcore.WarnLevel, msg, fields...)
}
func (c *childLogger) Error(ctx context.Context, msg string, fields ...zap.Field) {
	writeWithContext(c.zapLogger, ctx, zapcore.ErrorLevel, msg, fields...)
}
func (c *childLogger) Fatal(ctx context.Context, msg string, fields ...zap.Field) {
	writeWithContext(c.zapLogger, ctx, zapcore.FatalLevel, msg, fields...)
}
func (c *childLogger) With(fields ...zap.Field) Logger {
	if c.global {
		return c.parent.With(fields...)
	}
	return &childLogger{parent: c.parent, zapLogger: c.zapLogger.With(fields...)}
}
func (c *childLogger) Sync() error { return c.zapLogger.Sync() }

type ctxKey string

const requestIDKey ctxKey = consts.KEY_RequestID

// WithRequestID stores a request id that is attached to every record logged with ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the id stored by WithRequestID.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

func hasField(fields []zap.Field, key string) bool {
	for _, f := range fields {
		if strings.EqualFold(f.Key, key) {
			return true
		}
	}
	return false
}

// withContextFields prepends trace and request ids found in ctx. Only an
// existing OTel span id is used; no id is synthesized.
func withContextFields(ctx context.Context, fields []zap.Field) []zap.Field {
	if ctx == nil {
		return fields
	}
	var extra []zap.Field
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() && !hasField(fields, consts.KEY_TraceID) {
		extra = append(extra, zap.String(consts.KEY_TraceID, sc.TraceID().String()))
	}
	if id := RequestID(ctx); id != "" && !hasField(fields, consts.KEY_RequestID) {
		extra = append(extra, zap.String(consts.KEY_RequestID, id))
	}
	if len(extra) == 0 {
		return fields
	}
	return append(extra, fields...)
}
