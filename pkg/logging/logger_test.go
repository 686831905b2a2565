// Copyright (C) 2026 Aabha Project (krabhishek)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package logging

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLevel_String(t *testing.T) {
	tests := []struct {
		level Level
		want  string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{Level(42), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("Level(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}

func TestNew_FileLogging(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger := New(Config{Level: LevelInfo, LogDir: dir, Quiet: true})

	logger.Slog().Info("lint run finished", slog.Int("errors", 2))
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one log file, got %v (err %v)", entries, err)
	}
	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}

	line := strings.TrimSpace(strings.SplitN(string(data), "\n", 2)[0])
	var record map[string]any
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		t.Fatalf("log line is not JSON: %q", line)
	}
	if record["msg"] != "lint run finished" {
		t.Errorf("msg = %v", record["msg"])
	}
}

func TestNew_LevelFilters(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	logger := New(Config{Level: LevelError, LogDir: dir, Quiet: true})

	logger.Slog().Info("filtered out")
	logger.Slog().Error("kept")
	if err := logger.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 1 {
		t.Fatalf("expected one log file, got %v (err %v)", entries, err)
	}
	data, _ := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	if strings.Contains(string(data), "filtered out") {
		t.Error("info message must be filtered at error level")
	}
	if !strings.Contains(string(data), "kept") {
		t.Error("error message missing")
	}
}

func TestLogger_CloseWithoutFile(t *testing.T) {
	logger := Default()
	if err := logger.Close(); err != nil {
		t.Errorf("Close with no file: %v", err)
	}
	if err := logger.Close(); err != nil {
		t.Errorf("double Close: %v", err)
	}
}

func TestFanoutHandler_LevelsIndependent(t *testing.T) {
	dir := t.TempDir()
	fa, err := os.Create(filepath.Join(dir, "a.log"))
	if err != nil {
		t.Fatal(err)
	}
	defer fa.Close()
	fb, err := os.Create(filepath.Join(dir, "b.log"))
	if err != nil {
		t.Fatal(err)
	}
	defer fb.Close()

	h := newFanoutHandler([]slog.Handler{
		slog.NewTextHandler(fa, &slog.HandlerOptions{Level: slog.LevelError}),
		slog.NewTextHandler(fb, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("fanout must be enabled when any sub-handler is")
	}

	logger := slog.New(h)
	logger.Debug("debug message")

	a, _ := os.ReadFile(fa.Name())
	b, _ := os.ReadFile(fb.Name())
	if strings.Contains(string(a), "debug message") {
		t.Error("error-level handler must not receive debug records")
	}
	if !strings.Contains(string(b), "debug message") {
		t.Error("debug-level handler missing the record")
	}
}
