// Package logger provides pawlette's structured logging: a console sink,
// a rotating file sink, and an optional systemd-journal sink, fanned out
// through a single slog.Logger.
package logger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

var (
	Log   *slog.Logger
	level = new(slog.LevelVar)
	mu    sync.Mutex
)

func init() {
	level.Set(slog.LevelInfo)
	Log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey {
				a.Value = slog.StringValue(a.Value.Time().Format("15:04:05.000"))
			}
			return a
		},
	}))
}

// SetLevel sets the level of the stderr logger installed at package init.
// The sinks built by Setup use the per-sink levels in Options instead.
func SetLevel(l slog.Level) {
	level.Set(l)
}

// SetDebug raises the init-time stderr logger to debug level.
func SetDebug() { SetLevel(slog.LevelDebug) }

// Options configures the sinks built by Setup, mirroring the logging
// section of the pawlette.json config file.
type Options struct {
	EnableConsole bool
	ConsoleLevel  string
	FileLevel     string
	JournalLevel  string
	EnableColors  bool
	LogFile       string
	MaxSizeBytes  int64
}

// DefaultOptions returns the configuration defaults pawlette.json falls
// back to when the config file is missing or a field is absent.
func DefaultOptions(logFile string) Options {
	return Options{
		EnableConsole: true,
		ConsoleLevel:  "info",
		FileLevel:     "debug",
		JournalLevel:  "warn",
		EnableColors:  true,
		LogFile:       logFile,
		MaxSizeBytes:  5 * 1024 * 1024,
	}
}

// Setup installs the console + rotating-file (+ optional journal) fan-out
// handler described by opts as the package logger.
func Setup(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	var handlers []slog.Handler

	if opts.EnableConsole {
		handlers = append(handlers, slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: parseLevel(opts.ConsoleLevel),
		}))
	}

	if opts.LogFile != "" {
		if err := rotateIfNeeded(opts.LogFile, opts.MaxSizeBytes); err != nil {
			fmt.Fprintf(os.Stderr, "logger: rotate failed: %v\n", err)
		}
		if err := os.MkdirAll(filepath.Dir(opts.LogFile), 0o755); err != nil {
			return fmt.Errorf("create log dir: %w", err)
		}
		f, err := os.OpenFile(opts.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{
			Level:     parseLevel(opts.FileLevel),
			AddSource: true,
		}))
	}

	if journalAvailable() {
		handlers = append(handlers, &journalHandler{level: parseLevel(opts.JournalLevel)})
	}

	Log = slog.New(&MultiHandler{handlers: handlers})
	return nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// rotateIfNeeded renames logFile to logFile+".1" once it exceeds maxSize.
func rotateIfNeeded(logFile string, maxSize int64) error {
	if maxSize <= 0 {
		return nil
	}
	info, err := os.Stat(logFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if info.Size() < maxSize {
		return nil
	}
	return os.Rename(logFile, logFile+".1")
}

// MultiHandler fans a single slog record out to every wrapped handler.
type MultiHandler struct {
	handlers []slog.Handler
}

func (m *MultiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *MultiHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *MultiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &MultiHandler{handlers: next}
}

func (m *MultiHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		next[i] = h.WithGroup(name)
	}
	return &MultiHandler{handlers: next}
}

// journalHandler is a best-effort slog.Handler that pipes records to
// systemd-cat when present; pawlette never depends on the journal existing.
type journalHandler struct {
	level slog.Level
}

func journalAvailable() bool {
	_, err := exec.LookPath("systemd-cat")
	return err == nil
}

func (j *journalHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= j.level
}

func (j *journalHandler) Handle(_ context.Context, r slog.Record) error {
	cmd := exec.Command("systemd-cat", "-t", "pawlette", "-p", journalPriority(r.Level))
	cmd.Stdin = strings.NewReader(r.Message + "\n")
	return cmd.Run()
}

func (j *journalHandler) WithAttrs(_ []slog.Attr) slog.Handler { return j }
func (j *journalHandler) WithGroup(_ string) slog.Handler      { return j }

func journalPriority(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "err"
	case level >= slog.LevelWarn:
		return "warning"
	case level >= slog.LevelInfo:
		return "info"
	default:
		return "debug"
	}
}

func Debug(msg string, args ...any) { Log.Debug(msg, args...) }
func Info(msg string, args ...any)  { Log.Info(msg, args...) }
func Warn(msg string, args ...any)  { Log.Warn(msg, args...) }
func Error(msg string, args ...any) { Log.Error(msg, args...) }
