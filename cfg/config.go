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

// Package cfg binds the hot-tracking tunables to pflag/viper, the way the
// rest of this family of file-system tools reads its sysctl-style knobs.
package cfg

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Viper keys for the tracker's two sysctl-style tunables, plus ambient
// knobs.
const (
	KeyMemoryHighThresholdMiB = "tracking.memory-high-threshold-mib"
	KeyUpdateIntervalSeconds  = "tracking.update-interval-seconds"
	KeyVolumeName             = "volume.name"
	KeyLogSeverity            = "logging.severity"
	KeyLogFormat              = "logging.format"
	KeyLogFilePath            = "logging.file-path"
	KeyMetricsAddr            = "metrics.listen-addr"
)

// Defaults mirror the C source's sysctl_hot_mem_high_thresh (0, disabled)
// and sysctl_hot_update_interval (150s).
const (
	DefaultUpdateIntervalSeconds = 150
	DefaultMemoryHighThresholdMB = 0
	DefaultLogSeverity           = "INFO"
	DefaultLogFormat             = "text"
	DefaultMetricsAddr           = ":9101"
)

// BindFlags registers the tracker's command-line surface and wires each
// flag to its viper key, following this project's BindPFlag convention.
func BindFlags(flagSet *pflag.FlagSet) error {
	flagSet.String("volume-name", "", "Identifier for this mount's tracker instance; a UUID is generated if empty.")
	if err := viper.BindPFlag(KeyVolumeName, flagSet.Lookup("volume-name")); err != nil {
		return fmt.Errorf("bind volume-name: %w", err)
	}

	flagSet.Int64("memory-high-threshold-mib", DefaultMemoryHighThresholdMB,
		"Internal eviction target, in MiB of tracked byte usage. 0 disables internal eviction.")
	if err := viper.BindPFlag(KeyMemoryHighThresholdMiB, flagSet.Lookup("memory-high-threshold-mib")); err != nil {
		return fmt.Errorf("bind memory-high-threshold-mib: %w", err)
	}

	flagSet.Int64("update-interval-seconds", DefaultUpdateIntervalSeconds,
		"Aging-worker period, in seconds.")
	if err := viper.BindPFlag(KeyUpdateIntervalSeconds, flagSet.Lookup("update-interval-seconds")); err != nil {
		return fmt.Errorf("bind update-interval-seconds: %w", err)
	}

	flagSet.String("log-severity", DefaultLogSeverity, "Minimum log severity: TRACE, DEBUG, INFO, WARNING, or ERROR.")
	if err := viper.BindPFlag(KeyLogSeverity, flagSet.Lookup("log-severity")); err != nil {
		return fmt.Errorf("bind log-severity: %w", err)
	}

	flagSet.String("log-format", DefaultLogFormat, "Log encoding: text or json.")
	if err := viper.BindPFlag(KeyLogFormat, flagSet.Lookup("log-format")); err != nil {
		return fmt.Errorf("bind log-format: %w", err)
	}

	flagSet.String("log-file", "", "Path to the log file. Empty means stderr.")
	if err := viper.BindPFlag(KeyLogFilePath, flagSet.Lookup("log-file")); err != nil {
		return fmt.Errorf("bind log-file: %w", err)
	}

	flagSet.String("metrics-addr", DefaultMetricsAddr, "Address the Prometheus /metrics endpoint listens on.")
	if err := viper.BindPFlag(KeyMetricsAddr, flagSet.Lookup("metrics-addr")); err != nil {
		return fmt.Errorf("bind metrics-addr: %w", err)
	}

	return nil
}

// SetDefaults populates a bare *viper.Viper with the tracker's defaults,
// for callers (tests, library embedders) that construct their own Viper
// instance instead of going through BindFlags.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyMemoryHighThresholdMiB, DefaultMemoryHighThresholdMB)
	v.SetDefault(KeyUpdateIntervalSeconds, DefaultUpdateIntervalSeconds)
	v.SetDefault(KeyLogSeverity, DefaultLogSeverity)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)
}

// EffectiveYAML renders v's fully-resolved settings (defaults, config
// file, env, flags, in viper's own precedence order) as YAML, for
// logging the configuration a daemon actually started with instead of
// just the config file it was handed.
func EffectiveYAML(v *viper.Viper) (string, error) {
	out, err := yaml.Marshal(v.AllSettings())
	if err != nil {
		return "", fmt.Errorf("marshal effective config: %w", err)
	}
	return string(out), nil
}
