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

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvictInodes_SkipsItemsStillReferenced(t *testing.T) {
	root := newTestRoot(t)

	root.RecordIO(1, true, 0, 100, false)
	root.RecordIO(2, true, 0, 100, false)
	held, err := root.LookupInode(2)
	require.NoError(t, err)

	n := root.evictInodes(10, "test")

	assert.Equal(t, 1, n, "only the unreferenced inode should be reclaimed")
	_, err = root.LookupInode(1)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = root.LookupInode(2)
	assert.NoError(t, err, "the held inode must survive eviction")

	root.PutInode(held)
}

func TestEvictInodes_RespectsBudget(t *testing.T) {
	root := newTestRoot(t)
	for ino := uint64(1); ino <= 5; ino++ {
		root.RecordIO(ino, true, 0, 100, false)
	}

	n := root.evictInodes(2, "test")

	assert.Equal(t, 2, n)
	assert.Equal(t, int64(3*2), root.ItemCount(), "3 inodes plus their ranges remain")
}

func TestMaybeInternalEvict_DisabledWhenThresholdIsZero(t *testing.T) {
	root := newTestRoot(t)
	root.RecordIO(1, true, 0, 100, false)

	before := root.ItemCount()
	root.maybeInternalEvict()

	assert.Equal(t, before, root.ItemCount(), "a zero threshold must never evict")
}
