// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package logging configures structured logging for aabhalint.
//
// The package is a thin layer over log/slog: the CLI writes human-readable
// text to stderr (diagnostic output goes to stdout and must stay clean for
// piping), and an optional log file captures the same stream as JSON for
// CI archaeology.
//
// # Basic Usage
//
//	logger := logging.New(logging.Config{Level: logging.LevelDebug})
//	defer logger.Close()
//	slog.SetDefault(logger.Slog())
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Level represents log severity levels, ordered Debug < Info < Warn < Error.
type Level int

const (
	// LevelDebug is for development troubleshooting.
	LevelDebug Level = iota

	// LevelInfo is for normal operational messages.
	LevelInfo

	// LevelWarn is for potentially problematic situations.
	LevelWarn

	// LevelError is for error conditions.
	LevelError
)

// String returns the human-readable name of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) toSlogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Config configures the Logger. The zero value writes Info+ messages to
// stderr as text.
type Config struct {
	// Level sets the minimum log level. Messages below it are discarded.
	Level Level

	// LogDir enables file logging to the given directory. The file is
	// named "aabhalint_{YYYY-MM-DD}.log" and always uses JSON format.
	// The directory is created with 0750 permissions when missing.
	LogDir string

	// Quiet disables stderr output. Logs still go to the file when LogDir
	// is set.
	Quiet bool
}

// Logger wraps slog.Logger with an optional file destination.
//
// Thread Safety: Safe for concurrent use. Close must be called once, after
// all logging is done.
type Logger struct {
	slog *slog.Logger
	file *os.File
}

// New creates a logger from the config. File-open failures degrade to
// stderr-only logging rather than failing the run.
func New(cfg Config) *Logger {
	level := cfg.Level.toSlogLevel()

	var handlers []slog.Handler
	if !cfg.Quiet {
		handlers = append(handlers, slog.NewTextHandler(os.Stderr,
			&slog.HandlerOptions{Level: level}))
	}

	var file *os.File
	if cfg.LogDir != "" {
		if f, err := openLogFile(cfg.LogDir); err == nil {
			file = f
			handlers = append(handlers, slog.NewJSONHandler(f,
				&slog.HandlerOptions{Level: level}))
		} else {
			fmt.Fprintf(os.Stderr, "aabhalint: file logging disabled: %v\n", err)
		}
	}

	var handler slog.Handler
	switch len(handlers) {
	case 0:
		handler = slog.NewTextHandler(io.Discard, nil)
	case 1:
		handler = handlers[0]
	default:
		handler = newFanoutHandler(handlers)
	}

	return &Logger{slog: slog.New(handler), file: file}
}

// Default creates a stderr-only logger at Info level.
func Default() *Logger {
	return New(Config{})
}

// Slog returns the underlying slog.Logger, for slog.SetDefault.
func (l *Logger) Slog() *slog.Logger {
	return l.slog
}

// Close releases the log file, if any.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

func openLogFile(dir string) (*os.File, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	name := fmt.Sprintf("aabhalint_%s.log", time.Now().Format("2006-01-02"))
	f, err := os.OpenFile(filepath.Join(dir, name),
		os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o640)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
