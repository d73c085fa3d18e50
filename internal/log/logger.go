package log

import (
	"log/slog"
	"os"
	"strings"
)

// Logger is a slog.Logger bound to a component. The component attribute is
// attached once, so records never carry it twice.
type Logger struct {
	*slog.Logger
	// base has the same handler and attributes without the component, for
	// callers that name the component per record.
	base      *slog.Logger
	component string
}

// Config holds logger configuration
type Config struct {
	Level     slog.Level
	Component string
	// Handler overrides the default text handler on stdout.
	Handler slog.Handler
}

// DefaultConfig returns an info-level app logger on stdout.
func DefaultConfig() Config {
	return Config{
		Level:     slog.LevelInfo,
		Component: ComponentApp,
	}
}

// ParseLevel maps debug|info|warn|error onto a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

// ForComponent builds a text logger on stdout at the given level.
func ForComponent(component, level string) *Logger {
	return New(Config{Level: ParseLevel(level), Component: component})
}

func New(config Config) *Logger {
	handler := config.Handler
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: config.Level})
	}
	return bind(slog.New(handler), config.Component)
}

func bind(base *slog.Logger, component string) *Logger {
	return &Logger{
		Logger:    base.With(FieldComponent, component),
		base:      base,
		component: component,
	}
}

// With returns a logger that adds args to every record.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{
		Logger:    l.Logger.With(args...),
		base:      l.base.With(args...),
		component: l.component,
	}
}

// WithComponent rebinds the logger to another component, keeping any
// attributes added with With.
func (l *Logger) WithComponent(component string) *Logger {
	return bind(l.base, component)
}

// SetDefault installs the logger's handler as the slog default. Packages
// that log through slog directly supply their own component attribute.
func SetDefault(logger *Logger) {
	slog.SetDefault(logger.base)
}

func (l *Logger) Component() string {
	return l.component
}
