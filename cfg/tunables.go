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
	"time"

	"github.com/spf13/viper"
)

// Tunables reads the two sysctl-style knobs straight out of a *viper.Viper
// on every call. Nothing here is cached: these are atomically-loaded
// integers read at update time, not values fixed at Root construction, so
// a host can change them under viper (env var, config file reload, flag)
// and have the aging worker observe the change on its very next tick.
type Tunables struct {
	V *viper.Viper
}

// NewTunables wraps v, or the global viper instance if v is nil.
func NewTunables(v *viper.Viper) Tunables {
	if v == nil {
		v = viper.GetViper()
	}
	return Tunables{V: v}
}

// MemoryHighThresholdBytes returns the internal-eviction byte threshold,
// or 0 if internal eviction is disabled.
func (t Tunables) MemoryHighThresholdBytes() int64 {
	mib := t.V.GetInt64(KeyMemoryHighThresholdMiB)
	if mib <= 0 {
		return 0
	}
	return mib * 1024 * 1024
}

// UpdateInterval returns the aging-worker period.
func (t Tunables) UpdateInterval() time.Duration {
	secs := t.V.GetInt64(KeyUpdateIntervalSeconds)
	if secs <= 0 {
		secs = DefaultUpdateIntervalSeconds
	}
	return time.Duration(secs) * time.Second
}
