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

//go:build !linux

package pressure

import (
	"context"

	"github.com/googlecloudplatform/hottrackfs/internal/logger"
)

// Shrinker is the callback Watcher invokes when a PSI trigger fires.
type Shrinker func(ctx context.Context, nr int, reclaimAllowed bool) (int, error)

// Watcher is a no-op off Linux: PSI is a Linux-only kernel facility, so
// there is nothing to arm here.
type Watcher struct {
	StallMicros  int64
	WindowMicros int64
	BatchSize    int
	Shrink       Shrinker
}

// Run logs once and returns; the tracker relies solely on internal
// high-water-mark eviction on this platform.
func (w *Watcher) Run(ctx context.Context) {
	logger.Infof("pressure: PSI monitoring is only available on linux")
}
