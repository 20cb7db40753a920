// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package logger provides the leveled slog logger the tracking core logs
// through. Errors here are never fatal: the aging worker and shrinker
// log and continue on a per-item failure rather than abort, so every
// helper in this package is a pure side effect with no error return.
package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync/atomic"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Severity levels, offset the way slog's own Debug/Info/Warn/Error are,
// with an additional Trace level below Debug for per-item aging detail
// that would otherwise be too noisy even for Debug.
const (
	LevelTrace   = slog.Level(-8)
	LevelDebug   = slog.LevelDebug
	LevelInfo    = slog.LevelInfo
	LevelWarning = slog.LevelWarn
	LevelError   = slog.LevelError
)

var levelNames = map[slog.Leveler]string{
	LevelTrace:   "TRACE",
	LevelDebug:   "DEBUG",
	LevelInfo:    "INFO",
	LevelWarning: "WARNING",
	LevelError:   "ERROR",
}

// Config controls the global logger's destination, format, and verbosity.
type Config struct {
	Severity string // TRACE, DEBUG, INFO, WARNING, ERROR
	Format   string // "text" or "json"
	FilePath string // empty means stderr
	MaxSizeMB int
	MaxBackups int
}

func parseSeverity(s string) slog.Level {
	switch s {
	case "TRACE":
		return LevelTrace
	case "DEBUG":
		return LevelDebug
	case "WARNING", "WARN":
		return LevelWarning
	case "ERROR":
		return LevelError
	default:
		return LevelInfo
	}
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	switch a.Key {
	case slog.LevelKey:
		level, _ := a.Value.Any().(slog.Level)
		name, ok := levelNames[level]
		if !ok {
			name = level.String()
		}
		a.Key = "severity"
		a.Value = slog.StringValue(name)
	case slog.MessageKey:
		a.Key = "message"
	case slog.TimeKey:
		if len(groups) == 0 {
			a.Key = "time"
		}
	}
	return a
}

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(New(Config{Severity: "INFO", Format: "text"}))
}

// New builds a standalone logger from cfg. Most callers want Init, which
// also installs the result as the package default.
func New(cfg Config) *slog.Logger {
	var w io.Writer = os.Stderr
	if cfg.FilePath != "" {
		maxSize := cfg.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 100
		}
		w = &lumberjack.Logger{
			Filename:   cfg.FilePath,
			MaxSize:    maxSize,
			MaxBackups: cfg.MaxBackups,
			Compress:   true,
		}
	}

	opts := &slog.HandlerOptions{
		Level:       parseSeverity(cfg.Severity),
		ReplaceAttr: replaceAttr,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// Init builds a logger from cfg and installs it as the package default
// used by Trace/Debug/Info/Warn/Error below.
func Init(cfg Config) {
	current.Store(New(cfg))
}

func l() *slog.Logger { return current.Load() }

func Tracef(format string, args ...any) { l().Log(context.Background(), LevelTrace, fmt.Sprintf(format, args...)) }
func Debugf(format string, args ...any) { l().Debug(fmt.Sprintf(format, args...)) }
func Infof(format string, args ...any)  { l().Info(fmt.Sprintf(format, args...)) }
func Warnf(format string, args ...any)  { l().Warn(fmt.Sprintf(format, args...)) }
func Errorf(format string, args ...any) { l().Error(fmt.Sprintf(format, args...)) }
