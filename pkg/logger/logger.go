package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the log output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

type settings struct {
	level  slog.Level
	format Format
	output io.Writer
	attrs  []slog.Attr
}

// Option configures logger creation.
type Option func(*settings)

// WithLevel sets the minimum level.
func WithLevel(l slog.Level) Option {
	return func(s *settings) { s.level = l }
}

// WithLevelString sets the level from its string form (debug, info, warn,
// error). Unknown values fall back to info.
func WithLevelString(level string) Option {
	return func(s *settings) {
		switch strings.ToLower(level) {
		case "debug":
			s.level = slog.LevelDebug
		case "warn", "warning":
			s.level = slog.LevelWarn
		case "error":
			s.level = slog.LevelError
		default:
			s.level = slog.LevelInfo
		}
	}
}

// WithFormat sets the output encoding.
func WithFormat(f Format) Option {
	return func(s *settings) {
		if f == FormatJSON || f == FormatText {
			s.format = f
		}
	}
}

// WithFormatString sets the encoding from its string form. Unknown values
// fall back to JSON.
func WithFormatString(format string) Option {
	return func(s *settings) {
		if strings.EqualFold(format, string(FormatText)) {
			s.format = FormatText
		} else {
			s.format = FormatJSON
		}
	}
}

// WithOutput sets a custom destination. Nil writers are ignored.
func WithOutput(w io.Writer) Option {
	return func(s *settings) {
		if w != nil {
			s.output = w
		}
	}
}

// WithAttrs adds static attributes to every record.
func WithAttrs(attrs ...slog.Attr) Option {
	return func(s *settings) { s.attrs = append(s.attrs, attrs...) }
}

// New creates a configured *slog.Logger. Defaults: JSON, info, stderr.
func New(opts ...Option) *slog.Logger {
	s := &settings{
		level:  slog.LevelInfo,
		format: FormatJSON,
		output: os.Stderr,
	}
	for _, opt := range opts {
		opt(s)
	}

	handlerOpts := &slog.HandlerOptions{Level: s.level}

	var handler slog.Handler
	if s.format == FormatText {
		handler = slog.NewTextHandler(s.output, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(s.output, handlerOpts)
	}
	if len(s.attrs) > 0 {
		handler = handler.WithAttrs(s.attrs)
	}
	return slog.New(handler)
}
