// Package logging provides the core's structured, leveled logger: one
// singleton instance per process, a console mirror, and a per-run log
// file under the data directory. Field shape and level set mirror the
// teacher agent's pkg/logging, rebuilt on top of zerolog instead of a
// hand-rolled log.Logger wrapper.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Level mirrors the teacher's four-value severity enum.
type Level int8

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) zerolog() zerolog.Level {
	switch l {
	case LevelDebug:
		return zerolog.DebugLevel
	case LevelInfo:
		return zerolog.InfoLevel
	case LevelWarn:
		return zerolog.WarnLevel
	default:
		return zerolog.ErrorLevel
	}
}

// Logger wraps a zerolog.Logger writing to both the console and a
// per-session log file, matching the teacher's dual-sink behavior.
type Logger struct {
	zl      zerolog.Logger
	file    *os.File
	mu      sync.Mutex
	sessID  string
	started time.Time
}

var (
	instance *Logger
	once     sync.Once
)

// Init initializes the process-wide singleton. Safe to call more than
// once; only the first call takes effect, matching the teacher's
// sync.Once-guarded Init.
func Init(dataDir, sessionID string, level Level, consoleOutput bool) error {
	var initErr error
	once.Do(func() {
		instance, initErr = newLogger(dataDir, sessionID, level, consoleOutput)
	})
	return initErr
}

// Default returns the singleton, lazily initializing a stderr-only
// logger at info level if Init was never called (e.g. in unit tests).
func Default() *Logger {
	if instance == nil {
		once.Do(func() {
			instance = &Logger{
				zl:      zerolog.New(os.Stderr).Level(zerolog.InfoLevel).With().Timestamp().Logger(),
				started: time.Now(),
			}
		})
	}
	return instance
}

func newLogger(dataDir, sessionID string, level Level, consoleOutput bool) (*Logger, error) {
	logDir := filepath.Join(dataDir, "logs")
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	logPath := filepath.Join(logDir, sessionID+".log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	var w io.Writer = f
	if consoleOutput {
		w = zerolog.MultiLevelWriter(f, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	zl := zerolog.New(w).Level(level.zerolog()).With().
		Timestamp().
		Str("session_id", sessionID).
		Logger()

	return &Logger{zl: zl, file: f, sessID: sessionID, started: time.Now()}, nil
}

// Close flushes and closes the underlying log file, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file != nil {
		return l.file.Close()
	}
	return nil
}

func event(zl zerolog.Logger, lvl Level) *zerolog.Event {
	switch lvl {
	case LevelDebug:
		return zl.Debug()
	case LevelInfo:
		return zl.Info()
	case LevelWarn:
		return zl.Warn()
	default:
		return zl.Error()
	}
}

func log(l *Logger, lvl Level, msg string, kv []any) {
	ev := event(l.zl, lvl)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		ev = ev.Interface(key, kv[i+1])
	}
	ev.Msg(msg)
}

// Debug, Info, Warn and Error accept the teacher's variadic key/value
// call shape: logging.Info("message", "key", value, "key2", value2).
func Debug(msg string, kv ...any) { log(Default(), LevelDebug, msg, kv) }
func Info(msg string, kv ...any)  { log(Default(), LevelInfo, msg, kv) }
func Warn(msg string, kv ...any)  { log(Default(), LevelWarn, msg, kv) }
func Error(msg string, kv ...any) { log(Default(), LevelError, msg, kv) }

// Component returns a child logger tagged with a component name, used by
// each internal package (e.g. logging.Component("chocolatey")) so log
// lines are attributable without every call site repeating the tag.
func Component(name string) *ComponentLogger {
	return &ComponentLogger{name: name}
}

// ComponentLogger tags every line with a fixed "component" field.
type ComponentLogger struct{ name string }

func (c *ComponentLogger) Debug(msg string, kv ...any) { log(Default(), LevelDebug, msg, append(kv, "component", c.name)) }
func (c *ComponentLogger) Info(msg string, kv ...any)  { log(Default(), LevelInfo, msg, append(kv, "component", c.name)) }
func (c *ComponentLogger) Warn(msg string, kv ...any)  { log(Default(), LevelWarn, msg, append(kv, "component", c.name)) }
func (c *ComponentLogger) Error(msg string, kv ...any) { log(Default(), LevelError, msg, append(kv, "component", c.name)) }
