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

// This file implements the race-safe get_or_insert protocol, one copy
// per kind (inode, range) because the two indices differ in key type
// and in which lock guards their bucket list. Both are a direct port of
// hot_inode_item_alloc / hot_range_item_alloc:
//
//  1. lock, walk; on hit, add a ref, unlock, return.
//  2. on miss, unlock, allocate a candidate outside the lock, yield,
//     relock, and re-walk.
//  3. if the key appeared while we were unlocked, drop the candidate
//     (reversing the bookkeeping its allocation did) and return the
//     winner.
//  4. otherwise link the candidate, bucket it, take the caller's
//     reference, unlock, return it.
//
// Go's map does not let us "walk, release, reacquire, walk again"
// any cheaper than a second lookup, so step 1 and step 2's re-walk are
// both plain map reads; the retry loop still bounds to two iterations
// in the uncontended case and is wait-free (a losing goroutine's
// allocation is wasted work, not unbounded spinning).

func (r *Root) getOrInsertInode(ino uint64) *InodeItem {
	r.inodeLock.Lock()
	if he, ok := r.inodes[ino]; ok {
		he.addRef()
		r.inodeLock.Unlock()
		return he
	}
	r.inodeLock.Unlock()

	candidate := newInodeItem(r, ino)
	r.itemCount.Add(1)
	r.byteUsage.Add(inodeItemBytes)

	yieldCPU()

	r.inodeLock.Lock()
	if he, ok := r.inodes[ino]; ok {
		// Lost the race: somebody else inserted first.
		he.addRef()
		r.inodeLock.Unlock()

		r.itemCount.Add(-1)
		r.byteUsage.Add(-inodeItemBytes)
		return he
	}

	r.inodes[ino] = candidate
	insertInodeBucket(r, candidate, r.clock.Now())
	candidate.addRef() // for the caller; the struct literal already counts the index's own ref
	r.inodeLock.Unlock()

	return candidate
}

func (he *InodeItem) getOrInsertRange(key int64) *RangeItem {
	root := he.root

	he.rangeLock.Lock()
	if hr, ok := he.ranges[key]; ok {
		hr.addRef()
		he.rangeLock.Unlock()
		return hr
	}
	he.rangeLock.Unlock()

	candidate := newRangeItem(he, key)
	root.itemCount.Add(1)
	root.byteUsage.Add(rangeItemBytes)

	yieldCPU()

	he.rangeLock.Lock()
	if hr, ok := he.ranges[key]; ok {
		hr.addRef()
		he.rangeLock.Unlock()

		root.itemCount.Add(-1)
		root.byteUsage.Add(-rangeItemBytes)
		return hr
	}

	he.ranges[key] = candidate
	root.mapLock.Lock()
	insertRangeBucket(root, candidate, root.clock.Now())
	root.mapLock.Unlock()
	candidate.addRef() // for the caller
	he.rangeLock.Unlock()

	return candidate
}

// lookupInodeRef returns an InodeItem for ino with an added reference,
// or ErrNotFound. It never allocates.
func (r *Root) lookupInodeRef(ino uint64) (*InodeItem, error) {
	r.inodeLock.Lock()
	defer r.inodeLock.Unlock()

	he, ok := r.inodes[ino]
	if !ok {
		return nil, ErrNotFound
	}
	he.addRef()
	return he, nil
}
