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
	"sync"
	"sync/atomic"
)

// Rough notional sizes used for the byte-usage accounting
// (hot_mem_limit_add/sub in the source). These do not need to be exact
// ABI sizes; they only need to be a stable, representative cost so the
// evictor has something monotonic to work a budget against.
const (
	inodeItemBytes = 160
	rangeItemBytes = 128
)

// InodeItem is the per-file tracking entry. Its lifetime is reference
// counted: it lives in root.inodes (and in one of root.inodeBuckets)
// from the moment get_or_insert links it until its last reference is
// dropped.
type InodeItem struct {
	ino  uint64
	root *Root

	freq freqRecord

	// refcount follows the usual lookup-count pattern (one Inc per
	// reference taken, one Dec per reference dropped, destroy when it
	// hits zero) but is atomic rather than
	// externally synchronized, because InodeItem is reached from
	// concurrent I/O-path goroutines with no shared lock to serialize
	// reference counting under.
	refcount int32

	// elem is this item's membership link into
	// root.inodeBuckets[bucket]. bucketHint records which bucket that
	// is, so put/rebucket never need to search for it. Both are
	// protected by root.inodeLock, the same lock that protects
	// root.inodes.
	elem       *list.Element
	bucketHint int

	rangeLock sync.Mutex
	ranges    map[int64]*RangeItem
}

// RangeItem is the per-range tracking entry, owned by exactly one
// InodeItem.
type RangeItem struct {
	start int64
	len   int64

	// inode is a non-owning back reference and must never extend the
	// InodeItem's lifetime. We honor that by construction rather than
	// by a weak pointer: a RangeItem is only ever reachable through its
	// owning InodeItem's ranges map (or, fleetingly, through the range
	// temperature bucket, which destroyRanges clears when the
	// InodeItem's last reference is dropped), so inode is always valid
	// exactly as long as the RangeItem that holds it is.
	inode *InodeItem

	freq freqRecord

	refcount   int32
	elem       *list.Element // membership in root.rangeBuckets[bucket], guarded by root.mapLock
	bucketHint int
}

func newInodeItem(root *Root, ino uint64) *InodeItem {
	return &InodeItem{
		ino:      ino,
		root:     root,
		freq:     newFreqRecord(),
		refcount: 1, // the index's own membership reference
		ranges:   make(map[int64]*RangeItem),
	}
}

func newRangeItem(inode *InodeItem, key int64) *RangeItem {
	return &RangeItem{
		start:    rangeStart(key),
		len:      rangeSize,
		inode:    inode,
		freq:     newFreqRecord(),
		refcount: 1,
	}
}

// addRef takes an additional reference. Called with the owning index's
// lock held, exactly as kref_get is in the source.
func (he *InodeItem) addRef() { atomic.AddInt32(&he.refcount, 1) }
func (hr *RangeItem) addRef() { atomic.AddInt32(&hr.refcount, 1) }

// refs reports the current reference count, used by the evictor to
// decide whether an item is otherwise in use: refcount == 1 means only
// the index holds it.
func (he *InodeItem) refs() int32 { return atomic.LoadInt32(&he.refcount) }
func (hr *RangeItem) refs() int32 { return atomic.LoadInt32(&hr.refcount) }

// put drops one reference. When it is the last one, it unlinks the item
// from its index and bucket and tears down owned children, then defers
// the release hook to after the current grace period — the Go analogue
// of kref_put driving hot_inode_item_free / hot_range_item_free.
//
// put must be called with the item's owning index lock NOT held — it
// takes the locks it needs itself, mirroring the source calling
// hot_inode_item_put under root->t_lock only where the caller already
// intended that (UnlinkInode), and unlocked everywhere else.
func (he *InodeItem) put() {
	if atomic.AddInt32(&he.refcount, -1) != 0 {
		return
	}

	he.root.inodeLock.Lock()
	delete(he.root.inodes, he.ino)
	if he.elem != nil {
		he.root.inodeBuckets[he.bucketHint].Remove(he.elem)
		he.elem = nil
	}
	he.root.inodeLock.Unlock()

	// Tear down the range tree before the inode item itself is freed.
	he.destroyRanges()

	he.root.itemCount.Add(-1)
	he.root.byteUsage.Add(-int64(inodeItemBytes))
	he.root.metrics.recordDestroy(kindInode, inodeItemBytes)
	he.root.metrics.recordEviction(kindInode, "destroy")

	he.root.epoch.afterGracePeriod(func() {})
}

func (hr *RangeItem) put() {
	if atomic.AddInt32(&hr.refcount, -1) != 0 {
		return
	}

	he := hr.inode
	he.rangeLock.Lock()
	delete(he.ranges, rangeKey(hr.start))
	he.rangeLock.Unlock()

	root := he.root
	root.mapLock.Lock()
	if hr.elem != nil {
		root.rangeBuckets[hr.bucketHint].Remove(hr.elem)
		hr.elem = nil
	}
	root.mapLock.Unlock()

	root.itemCount.Add(-1)
	root.byteUsage.Add(-int64(rangeItemBytes))
	root.metrics.recordDestroy(kindRange, rangeItemBytes)
	root.metrics.recordEviction(kindRange, "destroy")

	root.epoch.afterGracePeriod(func() {})
}

// destroyRanges drops the index's reference on every range still owned
// by he, cascading destruction of the whole range tree when an inode's
// last reference is dropped.
func (he *InodeItem) destroyRanges() {
	he.rangeLock.Lock()
	victims := make([]*RangeItem, 0, len(he.ranges))
	for _, hr := range he.ranges {
		victims = append(victims, hr)
	}
	he.rangeLock.Unlock()

	for _, hr := range victims {
		hr.put()
	}
}
