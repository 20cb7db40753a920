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

package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSeverity(t *testing.T) {
	testCases := []struct {
		name string
		in   string
		want slog.Level
	}{
		{"trace", "TRACE", LevelTrace},
		{"debug", "DEBUG", LevelDebug},
		{"warning", "WARNING", LevelWarning},
		{"warn alias", "WARN", LevelWarning},
		{"error", "ERROR", LevelError},
		{"unknown falls back to info", "BOGUS", LevelInfo},
		{"empty falls back to info", "", LevelInfo},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, parseSeverity(tc.in))
		})
	}
}

func TestNew_JSONHandlerRenamesReservedKeys(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{ReplaceAttr: replaceAttr}))

	l.Info("hello world")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, "hello world", decoded["message"])
	assert.Equal(t, "INFO", decoded["severity"])
	_, hasLevel := decoded["level"]
	assert.False(t, hasLevel, "level key must be renamed to severity")
}

func TestNew_RespectsConfiguredSeverityFloor(t *testing.T) {
	l := New(Config{Severity: "ERROR", Format: "text"})

	assert.False(t, l.Enabled(nil, LevelInfo))
	assert.True(t, l.Enabled(nil, LevelError))
}

func TestInit_InstallsLoggerUsedByPackageHelpers(t *testing.T) {
	orig := current.Load()
	t.Cleanup(func() { current.Store(orig) })

	Init(Config{Severity: "DEBUG", Format: "text"})

	assert.NotPanics(t, func() { Infof("test message %d", 1) })
}
