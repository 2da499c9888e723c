package common

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/joho/godotenv"
)

// LogLevel represents different logging levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// Logger is the console logger for CLI output. Secrets must never be passed to it.
type Logger struct {
	Level      LogLevel
	ShowEmojis bool
	ShowColors bool
	SilentMode bool

	Out io.Writer
	Err io.Writer

	mu sync.Mutex
	// inline is true while a \r-redrawn line is on screen
	inline bool
}

// NewLogger creates a new logger with default settings
func NewLogger() *Logger {
	return &Logger{
		Level:      LogLevelInfo,
		ShowEmojis: true,
		ShowColors: true,
		SilentMode: false,
		Out:        os.Stdout,
		Err:        os.Stderr,
	}
}

// SetSilentMode enables or disables silent mode
func (l *Logger) SetSilentMode(silent bool) {
	l.SilentMode = silent
}

func (l *Logger) prefix(emoji, plain string) string {
	if l.ShowEmojis {
		return emoji
	}
	return plain
}

func (l *Logger) colorize(colors text.Colors, s string) string {
	if !l.ShowColors {
		return s
	}
	return colors.Sprint(s)
}

// write prints a full line, first terminating any inline redraw
func (l *Logger) write(w io.Writer, line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inline {
		fmt.Fprintln(w)
		l.inline = false
	}
	fmt.Fprintln(w, line)
}

// Header prints a formatted header
func (l *Logger) Header(title string) {
	if l.SilentMode {
		return
	}

	emoji := l.prefix("🎯", "***")
	l.write(l.Out, "")
	l.write(l.Out, l.colorize(text.Colors{text.Bold}, fmt.Sprintf("%s %s", emoji, strings.ToUpper(title))))
	l.write(l.Out, strings.Repeat("=", len(title)+5))
}

// Info prints an info message
func (l *Logger) Info(format string, args ...interface{}) {
	if l.SilentMode || l.Level < LogLevelInfo {
		return
	}

	l.write(l.Out, fmt.Sprintf("%s  %s", l.prefix("ℹ️", "[INFO]"), fmt.Sprintf(format, args...)))
}

// Error prints an error message; it is shown even in silent mode
func (l *Logger) Error(format string, args ...interface{}) {
	msg := fmt.Sprintf("%s %s", l.prefix("❌", "[ERROR]"), fmt.Sprintf(format, args...))
	l.write(l.Err, l.colorize(text.Colors{text.FgRed}, msg))
}

// Success prints a success message
func (l *Logger) Success(format string, args ...interface{}) {
	if l.SilentMode {
		return
	}

	msg := fmt.Sprintf("%s %s", l.prefix("✅", "[SUCCESS]"), fmt.Sprintf(format, args...))
	l.write(l.Out, l.colorize(text.Colors{text.FgGreen}, msg))
}

// Warn prints a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	if l.Level < LogLevelWarn {
		return
	}

	msg := fmt.Sprintf("%s  %s", l.prefix("⚠️", "[WARN]"), fmt.Sprintf(format, args...))
	l.write(l.Err, l.colorize(text.Colors{text.FgYellow}, msg))
}

// Debug prints a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	if l.Level < LogLevelDebug {
		return
	}

	l.write(l.Out, fmt.Sprintf("%s %s", l.prefix("🔍", "[DEBUG]"), fmt.Sprintf(format, args...)))
}

// Progress prints a progress message
func (l *Logger) Progress(format string, args ...interface{}) {
	if l.SilentMode {
		return
	}

	l.write(l.Out, fmt.Sprintf("%s %s", l.prefix("🔄", "[PROGRESS]"), fmt.Sprintf(format, args...)))
}

// Inline redraws the current line in place with \r
func (l *Logger) Inline(format string, args ...interface{}) {
	if l.SilentMode {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.Out, "\r%s %s\033[K", l.prefix("⏳", "[WAIT]"), fmt.Sprintf(format, args...))
	l.inline = true
}

// EndInline terminates an inline line if one is on screen
func (l *Logger) EndInline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.inline {
		fmt.Fprintln(l.Out)
		l.inline = false
	}
}

// EnvLoader provides environment loading utilities
type EnvLoader struct {
	logger *Logger
}

// NewEnvLoader creates a new environment loader
func NewEnvLoader(logger *Logger) *EnvLoader {
	return &EnvLoader{logger: logger}
}

// LoadEnvFile loads environment variables from a file. Variables already set
// in the process environment win.
func (e *EnvLoader) LoadEnvFile(path string) error {
	if path == "" {
		path = ".env"
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		e.logger.Debug("Environment file %s not found, using system environment", path)
		return nil
	}

	if err := godotenv.Load(path); err != nil {
		e.logger.Warn("Could not load environment file %s: %v", path, err)
		return err
	}

	e.logger.Debug("Environment loaded from %s", path)
	return nil
}
