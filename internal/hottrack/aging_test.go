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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/googlecloudplatform/hottrackfs/clock"
)

func TestRebucketInode_MovesToHotterBucketAfterActivity(t *testing.T) {
	root := newTestRoot(t)
	root.RecordIO(1, true, 0, 100, false)

	he, err := root.LookupInode(1)
	require.NoError(t, err)
	defer root.PutInode(he)

	// Simulate a burst of recent reads the way the I/O path would.
	now := root.clock.Now()
	for i := 0; i < 2000; i++ {
		he.freq.update(now.UnixNano(), false)
	}

	before := he.bucketHint
	rebucketInode(root, he, now)
	after := he.bucketHint

	assert.GreaterOrEqual(t, after, before, "heavy recent access must never move an item to a colder bucket")
}

func TestRebucketInode_CoolsTowardBucketZeroAfterLongIdlePeriod(t *testing.T) {
	// Start far enough past the Unix epoch that the "never written"
	// recency term is already saturated at the outset, so the only
	// thing driving the bucket down over this test is the read's own
	// recency decaying, not that quirk.
	start := time.Date(2200, 1, 1, 0, 0, 0, 0, time.UTC)
	clk := clock.NewSimulatedClock(start)
	root := newTestRootWithClock(t, clk)
	root.RecordIO(1, true, 0, 100, false)

	he, err := root.LookupInode(1)
	require.NoError(t, err)
	defer root.PutInode(he)

	rebucketInode(root, he, clk.Now())
	hot := he.bucketHint

	// Advance well past the recency divider's saturation point (roughly
	// 146 years) so the read's own "last accessed" contribution decays
	// to zero, with no further activity to refresh it.
	clk.AdvanceTime(200 * 365 * 24 * time.Hour)
	rebucketInode(root, he, clk.Now())
	cold := he.bucketHint

	assert.Less(t, cold, hot, "an idle item must cool toward bucket 0 as the clock advances, never stay hot or get hotter")
	assert.Equal(t, 0, cold, "a long-idle item with a single stale read must end up in the coldest bucket")
}

func TestRebucketInode_SkipsItemUnlinkedSinceSnapshot(t *testing.T) {
	root := newTestRoot(t)
	root.RecordIO(1, true, 0, 100, false)

	he, err := root.LookupInode(1)
	require.NoError(t, err)

	root.UnlinkInode(1) // drops the index's own reference
	root.PutInode(he)   // drops the last reference; he.elem becomes nil

	assert.NotPanics(t, func() { rebucketInode(root, he, root.clock.Now()) })
}

func TestAgingTick_RebucketsAllLiveItems(t *testing.T) {
	root := newTestRoot(t)
	for ino := uint64(1); ino <= 3; ino++ {
		root.RecordIO(ino, true, 0, 100, false)
	}

	assert.NotPanics(t, func() { root.agingTick() })
}
