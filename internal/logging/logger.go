// Package logging assembles the slog loggers used by the CLI and the
// interactive picker.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/nconklindev/xl2json/internal/config"
)

// FileName is the log file created inside a configured log directory.
const FileName = "xl2json.log"

// Options describes logger construction parameters.
type Options struct {
	Level  string
	Format string
	// Dir, when set, receives an appended FileName log.
	Dir string
	// Console receives log lines in addition to the file. Nil disables it.
	Console io.Writer
	// ConsoleLevel raises the console threshold above Level, for example
	// while a progress bar owns the terminal. The file keeps Level.
	ConsoleLevel string
}

// New constructs a slog logger using the provided options. The returned
// close function releases the log file, if any.
func New(opts Options) (*slog.Logger, func() error, error) {
	noop := func() error { return nil }

	format := strings.ToLower(strings.TrimSpace(opts.Format))
	switch format {
	case "json", "console", "":
	default:
		return nil, noop, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}

	level := parseLevel(opts.Level)
	var handlers []slog.Handler
	closeFn := noop

	if opts.Console != nil {
		consoleLevel := level
		if strings.TrimSpace(opts.ConsoleLevel) != "" {
			consoleLevel = max(level, parseLevel(opts.ConsoleLevel))
		}
		// Interactive terminals get short lines; files keep timestamps.
		replace := consoleAttrs
		if IsTerminal(opts.Console) {
			replace = terminalAttrs
		}
		handlers = append(handlers, newHandler(opts.Console, format, consoleLevel, replace))
	}
	if dir := strings.TrimSpace(opts.Dir); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, noop, fmt.Errorf("ensure log directory: %w", err)
		}
		path := filepath.Join(dir, FileName)
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
		if err != nil {
			return nil, noop, fmt.Errorf("open log file %s: %w", path, err)
		}
		handlers = append(handlers, newHandler(file, format, level, consoleAttrs))
		closeFn = file.Close
	}

	if len(handlers) == 0 {
		return Discard(), noop, nil
	}
	return slog.New(newFanoutHandler(handlers...)), closeFn, nil
}

func newHandler(w io.Writer, format string, level slog.Level, replace func([]string, slog.Attr) slog.Attr) slog.Handler {
	if format == "json" {
		return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level, ReplaceAttr: jsonAttrs})
	}
	return slog.NewTextHandler(w, &slog.HandlerOptions{Level: level, ReplaceAttr: replace})
}

// NewFromConfig creates a logger from the logging section of cfg.
func NewFromConfig(cfg *config.Config, console io.Writer) (*slog.Logger, func() error, error) {
	return New(OptionsFromConfig(cfg, console))
}

// OptionsFromConfig maps the logging section of cfg onto Options.
func OptionsFromConfig(cfg *config.Config, console io.Writer) Options {
	if cfg == nil {
		def := config.Default()
		cfg = &def
	}
	return Options{
		Level:   cfg.Logging.Level,
		Format:  cfg.Logging.Format,
		Dir:     cfg.Logging.Dir,
		Console: console,
	}
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

func jsonAttrs(groups []string, attr slog.Attr) slog.Attr {
	switch attr.Key {
	case slog.TimeKey:
		attr.Key = "ts"
		if attr.Value.Kind() == slog.KindTime {
			attr.Value = slog.StringValue(attr.Value.Time().UTC().Format(time.RFC3339))
		}
	case slog.LevelKey:
		attr.Value = slog.StringValue(strings.ToLower(attr.Value.String()))
	}
	return attr
}

func consoleAttrs(groups []string, attr slog.Attr) slog.Attr {
	if attr.Key == slog.TimeKey && attr.Value.Kind() == slog.KindTime && len(groups) == 0 {
		attr.Value = slog.StringValue(attr.Value.Time().Format(time.DateTime))
	}
	return attr
}

func terminalAttrs(groups []string, attr slog.Attr) slog.Attr {
	if attr.Key == slog.TimeKey && len(groups) == 0 {
		return slog.Attr{}
	}
	return attr
}
