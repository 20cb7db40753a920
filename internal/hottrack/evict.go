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

import "container/list"

// evictBudget bounds one eviction scan: stop once count items have been
// reclaimed or the coldest bucket run out, whichever comes first. Both
// maybeInternalEvict and ShrinkerScan build one of these and hand it to
// evictColdest: internal eviction and the external shrinker drive the
// same underlying reclaim routine.
type evictBudget struct {
	remaining int
	reclaimed int
}

// evictColdest is hot_item_evict generalized over item kind: walk each
// temperature bucket from coldest (0) upward, and within a bucket from
// head (oldest insertion/re-bucket) to tail, reclaiming any item whose
// refcount is exactly 1 (held only by the index itself). It yields once
// per bucket boundary, matching the single cond_resched() call site
// hot_item_evict has.
func evictColdest(buckets *[mapSize]*list.List, lock lockable, refsOf func(any) int32, putOf func(any), budget *evictBudget) {
	for b := 0; b < mapSize && budget.remaining > 0; b++ {
		lock.Lock()
		bucket := buckets[b]
		var victims []any
		for e := bucket.Front(); e != nil && len(victims) < budget.remaining; e = e.Next() {
			if refsOf(e.Value) == 1 {
				victims = append(victims, e.Value)
			}
		}
		lock.Unlock()

		for _, v := range victims {
			putOf(v)
			budget.remaining--
			budget.reclaimed++
		}

		yieldCPU()
	}
}

// lockable is the subset of sync.Mutex/sync.RWMutex evictColdest needs;
// declared so the same traversal serves both the inode bucket array
// (guarded by inodeLock) and the range bucket array (guarded by mapLock)
// without duplicating the walk.
type lockable interface {
	Lock()
	Unlock()
}

// evictInodes reclaims up to n cold, unreferenced inodes. Dropping an
// inode's last reference here cascades into its ranges via put.
func (r *Root) evictInodes(n int, source string) int {
	budget := &evictBudget{remaining: n}
	evictColdest(&r.inodeBuckets, &r.inodeLock,
		func(v any) int32 { return v.(*InodeItem).refs() },
		func(v any) {
			he := v.(*InodeItem)
			he.put()
			r.metrics.recordEviction(kindInode, source)
		},
		budget)
	return budget.reclaimed
}

// evictRanges reclaims up to n cold, unreferenced ranges directly (as
// opposed to as a side effect of their owning inode being evicted).
func (r *Root) evictRanges(n int, source string) int {
	budget := &evictBudget{remaining: n}
	evictColdest(&r.rangeBuckets, &r.mapLock,
		func(v any) int32 { return v.(*RangeItem).refs() },
		func(v any) {
			hr := v.(*RangeItem)
			hr.put()
			r.metrics.recordEviction(kindRange, source)
		},
		budget)
	return budget.reclaimed
}

// maybeInternalEvict is the high-water-mark trigger: run once per aging
// tick, it reclaims coldest-first until byte usage drops back under the
// configured threshold, or there is nothing left to reclaim. A threshold
// of 0 (the default) disables internal eviction entirely; only the
// external shrinker then reclaims memory.
func (r *Root) maybeInternalEvict() {
	threshold := r.tunables.MemoryHighThresholdBytes()
	if threshold <= 0 {
		return
	}

	const batchSize = 64
	for r.ByteUsage() > threshold {
		reclaimed := r.evictRanges(batchSize, "internal")
		reclaimed += r.evictInodes(batchSize, "internal")
		if reclaimed == 0 {
			return
		}
	}
}
