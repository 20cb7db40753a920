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
)

// runAgingWorker is the re-arming periodic pass (hot_update_worker in the
// source): snapshot every live item under one read-side epoch section,
// re-bucket each one under only its kind's bucket lock, then sleep for the
// configured interval and repeat until ctx is cancelled. Init starts
// exactly one of these per Root, joined by Teardown through the errgroup
// it was launched under.
func (r *Root) runAgingWorker(ctx context.Context) {
	for {
		r.agingTick()

		interval := r.tunables.UpdateInterval()
		if interval <= 0 {
			interval = DefaultUpdateInterval
		}

		select {
		case <-ctx.Done():
			return
		case <-r.clock.After(interval):
		}
	}
}

// agingTick performs one memory-evictor pass followed by a full
// traversal and re-bucket pass of the inode index and every inode's
// range index.
func (r *Root) agingTick() {
	ctx, span := r.tracer.Start(context.Background(), "AgingTick")
	defer span.End()
	_ = ctx

	start := r.clock.Now()

	r.maybeInternalEvict()

	// One read-side section for the whole traversal, not one per item —
	// matching the source's single rcu_read_lock()/rcu_read_unlock() pair
	// around hot_update_worker's walk.
	leave := r.epoch.enter()
	inodes, ranges := r.snapshotLive()
	leave()

	now := r.clock.Now()
	for _, he := range inodes {
		rebucketInode(r, he, now)
	}
	for _, hr := range ranges {
		rebucketRange(r, hr, now)
	}

	r.metrics.recordAgingLatency(r.clock.Now().Sub(start).Seconds())
}

// snapshotLive copies out the current membership of both indices so the
// re-bucket pass can run without holding inodeLock/mapLock for its
// duration. An item unlinked between the snapshot and the re-bucket call
// is caught by the he.elem == nil / hr.elem == nil check in
// rebucketInode/rebucketRange and skipped.
func (r *Root) snapshotLive() ([]*InodeItem, []*RangeItem) {
	r.inodeLock.Lock()
	inodes := make([]*InodeItem, 0, len(r.inodes))
	for _, he := range r.inodes {
		inodes = append(inodes, he)
	}
	r.inodeLock.Unlock()

	var ranges []*RangeItem
	for _, he := range inodes {
		he.rangeLock.Lock()
		for _, hr := range he.ranges {
			ranges = append(ranges, hr)
		}
		he.rangeLock.Unlock()
	}

	return inodes, ranges
}
