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

package cfg

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindFlags_DefaultsLandInViper(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	err := BindFlags(fs)
	require.NoError(t, err)
	require.NoError(t, fs.Parse(nil))

	assert.Equal(t, int64(DefaultMemoryHighThresholdMB), viper.GetInt64(KeyMemoryHighThresholdMiB))
	assert.Equal(t, int64(DefaultUpdateIntervalSeconds), viper.GetInt64(KeyUpdateIntervalSeconds))
	assert.Equal(t, DefaultLogSeverity, viper.GetString(KeyLogSeverity))
}

func TestBindFlags_ExplicitFlagOverridesDefault(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	err := BindFlags(fs)
	require.NoError(t, err)
	require.NoError(t, fs.Parse([]string{"--update-interval-seconds=30"}))

	assert.Equal(t, int64(30), viper.GetInt64(KeyUpdateIntervalSeconds))
}

func TestTunables_MemoryHighThresholdBytes(t *testing.T) {
	testCases := []struct {
		name string
		mib  int64
		want int64
	}{
		{"zero disables", 0, 0},
		{"negative disables", -1, 0},
		{"positive converts to bytes", 4, 4 * 1024 * 1024},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := viper.New()
			v.Set(KeyMemoryHighThresholdMiB, tc.mib)
			tunables := NewTunables(v)

			assert.Equal(t, tc.want, tunables.MemoryHighThresholdBytes())
		})
	}
}

func TestTunables_UpdateInterval_FallsBackToDefault(t *testing.T) {
	v := viper.New()
	v.Set(KeyUpdateIntervalSeconds, 0)
	tunables := NewTunables(v)

	assert.Equal(t, int64(DefaultUpdateIntervalSeconds*1e9), int64(tunables.UpdateInterval()))
}

func TestEffectiveYAML_RendersBoundSettings(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set(KeyVolumeName, "test-volume")

	out, err := EffectiveYAML(v)
	require.NoError(t, err)
	assert.Contains(t, out, "test-volume")
	assert.Contains(t, out, "tracking")
}

func TestTunables_ReadsLiveNotCached(t *testing.T) {
	v := viper.New()
	v.Set(KeyUpdateIntervalSeconds, 10)
	tunables := NewTunables(v)

	require.Equal(t, int64(10), int64(tunables.UpdateInterval().Seconds()))

	v.Set(KeyUpdateIntervalSeconds, 20)

	assert.Equal(t, int64(20), int64(tunables.UpdateInterval().Seconds()), "Tunables must observe config changes without re-construction")
}
