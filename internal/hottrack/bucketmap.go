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
	"container/list"
	"time"
)

// newBucketArray allocates the mapSize insertion-ordered lists for one
// item kind (2^MAP_BITS buckets). container/list gives O(1) append,
// O(1) move-to-tail, and O(1) unlink given the element pointer, which is
// exactly the access pattern bucketing needs.
func newBucketArray() [mapSize]*list.List {
	var a [mapSize]*list.List
	for i := range a {
		a[i] = list.New()
	}
	return a
}

// insertInodeBucket places a freshly linked InodeItem into its initial
// bucket, computed from its (cold) freq record. Caller must hold
// root.inodeLock.
func insertInodeBucket(root *Root, he *InodeItem, now time.Time) {
	temp := calcTemperature(&he.freq, now.UnixNano())
	he.freq.lastTemp = temp
	b := bucketOf(temp)
	he.bucketHint = b
	he.elem = root.inodeBuckets[b].PushBack(he)
	root.metrics.observeTemperature(kindInode, temp)
	root.metrics.recordInsert(kindInode, inodeItemBytes)
}

// insertRangeBucket is insertInodeBucket's range-kind twin. Caller must
// hold root.mapLock.
func insertRangeBucket(root *Root, hr *RangeItem, now time.Time) {
	temp := calcTemperature(&hr.freq, now.UnixNano())
	hr.freq.lastTemp = temp
	b := bucketOf(temp)
	hr.bucketHint = b
	hr.elem = root.rangeBuckets[b].PushBack(hr)
	root.metrics.observeTemperature(kindRange, temp)
	root.metrics.recordInsert(kindRange, rangeItemBytes)
}

// rebucketInode recomputes he's temperature and, if the bucket index
// changed, moves it to the tail of the new bucket. It takes
// root.inodeLock itself; the caller must not already hold it (the aging
// worker calls this after leaving its epoch read-side section, holding
// no lock; the only lock taken here is the inode kind's bucket lock,
// which for the inode kind is the same lock as the index lock).
func rebucketInode(root *Root, he *InodeItem, now time.Time) {
	temp := calcTemperature(&he.freq, now.UnixNano())
	newBucket := bucketOf(temp)

	root.inodeLock.Lock()
	defer root.inodeLock.Unlock()

	if he.elem == nil {
		// Unlinked between the traversal snapshot and now; skip it.
		return
	}
	oldBucket := he.bucketHint
	he.freq.lastTemp = temp
	if newBucket == oldBucket {
		return
	}
	root.inodeBuckets[oldBucket].Remove(he.elem)
	he.bucketHint = newBucket
	he.elem = root.inodeBuckets[newBucket].PushBack(he)
}

// rebucketRange is rebucketInode's range-kind twin, guarded by
// root.mapLock instead.
func rebucketRange(root *Root, hr *RangeItem, now time.Time) {
	temp := calcTemperature(&hr.freq, now.UnixNano())
	newBucket := bucketOf(temp)

	root.mapLock.Lock()
	defer root.mapLock.Unlock()

	if hr.elem == nil {
		return
	}
	oldBucket := hr.bucketHint
	hr.freq.lastTemp = temp
	if newBucket == oldBucket {
		return
	}
	root.rangeBuckets[oldBucket].Remove(hr.elem)
	hr.bucketHint = newBucket
	hr.elem = root.rangeBuckets[newBucket].PushBack(hr)
}
