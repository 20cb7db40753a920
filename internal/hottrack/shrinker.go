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

package hottrack

import (
	"context"

	"golang.org/x/time/rate"
)

// shrinkerState holds the external-pressure reclaim path
// (hot_track_shrink_scan / hot_track_shrink_count in the source). It is
// throttled by a token-bucket limiter so a host that calls ShrinkerScan
// in a tight loop under sustained memory pressure cannot monopolize the
// bucket locks the aging worker and the I/O path also need.
type shrinkerState struct {
	root    *Root
	limiter *rate.Limiter
}

// shrinkerBurst and shrinkerRefillPerSecond bound a caller invoking
// ShrinkerScan to at most this many scans per second, with a short burst
// allowance for an initial rush of pressure callbacks.
const (
	shrinkerRefillPerSecond = 10
	shrinkerBurst           = 20
)

func newShrinkerState(root *Root) *shrinkerState {
	return &shrinkerState{
		root:    root,
		limiter: rate.NewLimiter(rate.Limit(shrinkerRefillPerSecond), shrinkerBurst),
	}
}

// ShrinkerScan is the external memory-pressure callback: a host (here,
// internal/pressure, or a manual caller) asks the tracker to reclaim up
// to nr items and reports how many it actually freed. A scan that
// arrives faster than the configured rate is not rejected — it simply
// blocks on the limiter the same way the original shrinker blocks on its
// own scan_control, rather than silently
// dropping a request the host assumes took effect.
//
// reclaimAllowed is the caller's !(gfp_mask & __GFP_FS) check: when
// false, the caller is in a context that cannot tolerate filesystem
// reclaim (e.g. already holding a lock this package's allocator could
// recurse into), and ShrinkerScan returns immediately with
// ErrShrinkStop instead of scanning, the same way the original shrinker
// returns SHRINK_STOP without touching scan_control.
func (r *Root) ShrinkerScan(ctx context.Context, nr int, reclaimAllowed bool) (int, error) {
	if !reclaimAllowed {
		return 0, ErrShrinkStop
	}

	if err := r.shrinker.limiter.Wait(ctx); err != nil {
		return 0, err
	}

	// Ranges first: reclaiming a range never invalidates the inode
	// reclaim pass below, while the reverse is not true (an inode
	// reclaim cascades and would otherwise double-count).
	reclaimed := r.evictRanges(nr, "shrinker")
	if remaining := nr - reclaimed; remaining > 0 {
		reclaimed += r.evictInodes(remaining, "shrinker")
	}
	return reclaimed, nil
}

// ShrinkerCountObjects mirrors hot_track_shrink_count: the host's
// shrinker framework calls this to decide whether ShrinkerScan is worth
// invoking at all.
func (r *Root) ShrinkerCountObjects() int64 {
	return r.ItemCount()
}
