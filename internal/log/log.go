package log

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger wraps slog with a rotating file sink. A nil *Logger is valid:
// debug and info messages are dropped and warnings and errors go to the
// default slog logger.
type Logger struct {
	*slog.Logger
	LogFile string
	LogDir  string
	Start   time.Time
}

// ParseLevel maps a level name to a slog level
func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("invalid log level: %s", level)
}

// New creates a logger writing JSON records to dir/route-planner.slog.
func New(level string, dir string) *Logger {
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		fmt.Fprintf(os.Stderr, "Unable to create log dir %s: %v\n", dir, err)
	}

	w := &lumberjack.Logger{
		Filename:   filepath.Join(dir, "route-planner.slog"),
		MaxSize:    32, // MB
		MaxBackups: 3,
		Compress:   true,
	}

	l := NewWithWriter(level, w)
	l.LogFile = w.Filename
	l.LogDir = dir

	l.Info("Hello logging", slog.Time("start", l.Start))
	l.Info("System information",
		slog.String("GOARCH", runtime.GOARCH),
		slog.String("GOOS", runtime.GOOS),
		slog.Int("NumCPUs", runtime.NumCPU()))
	if bi, ok := debug.ReadBuildInfo(); ok {
		l.Info("Build",
			slog.String("Go version", bi.GoVersion),
			slog.String("Path", bi.Path))
	}

	return l
}

// NewWithWriter creates a logger writing JSON records to w.
func NewWithWriter(level string, w io.Writer) *Logger {
	lvl, err := ParseLevel(level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
	}
	h := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	return &Logger{
		Logger: slog.New(h),
		Start:  time.Now(),
	}
}

func (l *Logger) Debug(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(context.Background(), slog.LevelDebug) {
		l.Logger.Debug(msg, args...)
	}
}

// Debugf is a convenience wrapper that logs just a message and allows
// printf-style formatting of the provided args.
func (l *Logger) Debugf(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(context.Background(), slog.LevelDebug) {
		l.Logger.Debug(fmt.Sprintf(msg, args...))
	}
}

func (l *Logger) Info(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(context.Background(), slog.LevelInfo) {
		l.Logger.Info(msg, args...)
	}
}

func (l *Logger) Infof(msg string, args ...any) {
	if l != nil && l.Logger.Enabled(context.Background(), slog.LevelInfo) {
		l.Logger.Info(fmt.Sprintf(msg, args...))
	}
}

func (l *Logger) Warn(msg string, args ...any) {
	if l == nil {
		slog.Warn(msg, args...)
	} else {
		l.Logger.Warn(msg, args...)
	}
}

func (l *Logger) Warnf(msg string, args ...any) {
	l.Warn(fmt.Sprintf(msg, args...))
}

func (l *Logger) Error(msg string, args ...any) {
	if l == nil {
		slog.Error(msg, args...)
	} else {
		l.Logger.Error(msg, args...)
	}
}

func (l *Logger) Errorf(msg string, args ...any) {
	l.Error(fmt.Sprintf(msg, args...))
}
