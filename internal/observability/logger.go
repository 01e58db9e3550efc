// File: internal/observability/logger.go

// Package observability owns the process-wide logger. Every component takes
// a child of it via GetLogger().Named: pipeline transitions log as
// "lantern.pipeline", fetches as "lantern.network", style resolution as
// "lantern.style", layout as "lantern.layout". Console output is for the
// person running the browser; the optional rotating file sink is always
// JSON so a timing run can be inspected afterwards.
package observability

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/xkilldash9x/lantern/internal/config"
)

var (
	global   atomic.Pointer[zap.Logger]
	initOnce = new(sync.Once)
)

const ansiReset = "\x1b[0m"

// ansi maps the color names accepted in logger.colors config keys.
var ansi = map[string]string{
	"black":   "\x1b[30m",
	"red":     "\x1b[31m",
	"green":   "\x1b[32m",
	"yellow":  "\x1b[33m",
	"blue":    "\x1b[34m",
	"magenta": "\x1b[35m",
	"cyan":    "\x1b[36m",
	"white":   "\x1b[37m",
}

// Initialize builds the global logger from config and stores it for
// GetLogger. Subsequent calls are no-ops; the first configuration wins for
// the life of the process. console is the human-facing sink (tests pass a
// buffer).
func Initialize(cfg config.LoggerConfig, console zapcore.WriteSyncer) {
	initOnce.Do(func() {
		level := parseLevel(cfg.Level)

		cores := []zapcore.Core{
			zapcore.NewCore(newEncoder(cfg), console, level),
		}
		if cfg.LogFile != "" {
			cores = append(cores, fileCore(cfg, level))
		}

		opts := []zap.Option{zap.AddStacktrace(zap.ErrorLevel)}
		if cfg.AddSource {
			opts = append(opts, zap.AddCaller())
		}

		logger := zap.New(zapcore.NewTee(cores...), opts...).Named(cfg.ServiceName)
		global.Store(logger)

		// Anything logging through the stdlib (fyne does, occasionally)
		// lands in the same sinks.
		zap.ReplaceGlobals(logger)
		zap.RedirectStdLog(logger)
	})
}

// InitializeLogger is the production entry point: console output goes to a
// locked stdout.
func InitializeLogger(cfg config.LoggerConfig) {
	Initialize(cfg, zapcore.Lock(os.Stdout))
}

// ResetForTest clears the singleton so each test can initialize its own
// configuration. Tests only.
func ResetForTest() {
	global.Store(nil)
	initOnce = new(sync.Once)
}

// GetLogger returns the global logger, or a development fallback when a
// component logs before the CLI has run Initialize (early config errors,
// package-level tests).
func GetLogger() *zap.Logger {
	if logger := global.Load(); logger != nil {
		return logger
	}
	l, err := zap.NewDevelopment()
	if err != nil {
		return zap.NewNop()
	}
	l.Warn("logger requested before initialization; using development fallback")
	return l.Named("fallback")
}

// Sync flushes buffered entries. Called on shutdown and after timing runs;
// the sync errors stdout reports on some platforms are expected and
// swallowed.
func Sync() {
	logger := global.Load()
	if logger == nil {
		return
	}
	if err := logger.Sync(); err != nil {
		msg := err.Error()
		if !strings.Contains(msg, "sync /dev/stdout") &&
			!strings.Contains(msg, "invalid argument") &&
			!strings.Contains(msg, "operation not supported") {
			fmt.Fprintln(os.Stderr, "Error: failed to sync logger:", err)
		}
	}
}

func parseLevel(s string) zap.AtomicLevel {
	level := zap.NewAtomicLevel()
	if err := level.UnmarshalText([]byte(s)); err != nil {
		level.SetLevel(zap.InfoLevel)
	}
	return level
}

// fileCore builds the rotating JSON sink. lumberjack serializes writes and
// handles rollover, so one file survives long browsing sessions.
func fileCore(cfg config.LoggerConfig, level zap.AtomicLevel) zapcore.Core {
	writer := zapcore.AddSync(&lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	})
	return zapcore.NewCore(newEncoder(config.LoggerConfig{Format: "json"}), writer, level)
}

// newEncoder picks the output format: "console" is a single colorized line
// per event, anything else is JSON.
func newEncoder(cfg config.LoggerConfig) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")

	if cfg.Format == "console" {
		ec.EncodeLevel = colorLevelEncoder(cfg.Colors)
		// The dot suffix sets the component apart from the message, so a
		// phase transition reads `lantern.pipeline. phase complete`.
		ec.EncodeName = func(name string, enc zapcore.PrimitiveArrayEncoder) {
			enc.AppendString(name + ".")
		}
		return zapcore.NewConsoleEncoder(ec)
	}

	return zapcore.NewJSONEncoder(ec)
}

// colorLevelEncoder wraps the level in the configured ANSI color. Levels
// without a configured color print plain.
func colorLevelEncoder(colors config.ColorConfig) zapcore.LevelEncoder {
	byLevel := map[zapcore.Level]string{
		zapcore.DebugLevel:  ansi[colors.Debug],
		zapcore.InfoLevel:   ansi[colors.Info],
		zapcore.WarnLevel:   ansi[colors.Warn],
		zapcore.ErrorLevel:  ansi[colors.Error],
		zapcore.DPanicLevel: ansi[colors.DPanic],
		zapcore.PanicLevel:  ansi[colors.Panic],
		zapcore.FatalLevel:  ansi[colors.Fatal],
	}
	return func(level zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
		text := strings.ToUpper(level.String())
		if color := byLevel[level]; color != "" {
			enc.AppendString(color + text + ansiReset)
			return
		}
		enc.AppendString(text)
	}
}
