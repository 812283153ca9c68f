package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Leveled logger used across the API. The Printf-style helpers are kept so
// call sites stay terse; records are emitted by zerolog.

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// FileOptions enables a rolling log file next to the console output.
type FileOptions struct {
	Directory  string
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

var (
	mu     sync.RWMutex
	out    io.Writer = os.Stdout
	logger           = zerolog.New(os.Stdout).With().Timestamp().Logger()
	level            = LevelInfo
)

// Init sets the global log level (case-insensitive: debug, info, warn, error, fatal).
// Call early during startup. Default level is Info.
func Init(l string) {
	mu.Lock()
	defer mu.Unlock()
	level = parseLevel(l)
	logger = logger.Level(zerologLevel(level))
}

// EnableFile tees output into a lumberjack-rotated file.
func EnableFile(opts FileOptions) error {
	if opts.Directory == "" {
		opts.Directory = "logs"
	}
	if opts.Filename == "" {
		opts.Filename = "mamacare.log"
	}
	if err := os.MkdirAll(opts.Directory, 0o744); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}
	file := &lumberjack.Logger{
		Filename:   filepath.Join(opts.Directory, opts.Filename),
		MaxSize:    orDefault(opts.MaxSizeMB, 10),
		MaxBackups: orDefault(opts.MaxBackups, 10),
		MaxAge:     orDefault(opts.MaxAgeDays, 10),
	}
	mu.Lock()
	defer mu.Unlock()
	setOutputLocked(zerolog.MultiLevelWriter(out, file))
	return nil
}

// SetOutput redirects log output; used by tests and by the console mode.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	setOutputLocked(w)
}

// UseConsole switches to zerolog's human readable console writer.
func UseConsole() {
	SetOutput(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

func setOutputLocked(w io.Writer) {
	out = w
	logger = zerolog.New(w).With().Timestamp().Logger().Level(zerologLevel(level))
}

func parseLevel(l string) Level {
	switch strings.ToLower(strings.TrimSpace(l)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

func zerologLevel(l Level) zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelWarn:
		return zerolog.WarnLevel
	case LevelError:
		return zerolog.ErrorLevel
	case LevelFatal:
		return zerolog.FatalLevel
	}
	return zerolog.InfoLevel
}

func current() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// Get returns the underlying zerolog logger for structured call sites.
func Get() *zerolog.Logger {
	l := current()
	return &l
}

func Debugf(format string, v ...interface{}) {
	l := current()
	l.Debug().Msgf(format, v...)
}

func Infof(format string, v ...interface{}) {
	l := current()
	l.Info().Msgf(format, v...)
}

func Warnf(format string, v ...interface{}) {
	l := current()
	l.Warn().Msgf(format, v...)
}

func Errorf(format string, v ...interface{}) {
	l := current()
	l.Error().Msgf(format, v...)
}

// LevelString returns the current level as text.
func LevelString() string {
	mu.RLock()
	defer mu.RUnlock()
	switch level {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelFatal:
		return "fatal"
	}
	return "info"
}

func orDefault(v, d int) int {
	if v <= 0 {
		return d
	}
	return v
}
