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
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewFreqRecord_ColdStart(t *testing.T) {
	f := newFreqRecord()

	assert.Equal(t, uint64(math.MaxUint64), f.avgDeltaReads)
	assert.Equal(t, uint64(math.MaxUint64), f.avgDeltaWrites)
	assert.Zero(t, f.nrReads)
	assert.Zero(t, f.nrWrites)
}

func TestEwmaUpdate(t *testing.T) {
	testCases := []struct {
		name  string
		avg   uint64
		delta uint64
		want  uint64
	}{
		{"delta equals avg is stable", 1000, 1000, 1000},
		{"delta below avg pulls down", 1600, 0, 1500},
		{"zero avg with nonzero delta climbs toward delta", 0, 160, 10},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := ewmaUpdate(tc.avg, tc.delta)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFreqRecord_Update_CountsSaturate(t *testing.T) {
	f := newFreqRecord()
	f.nrReads = math.MaxUint32

	f.update(1000, false)

	assert.Equal(t, uint32(math.MaxUint32), f.nrReads, "counter must saturate, not wrap")
}

func TestFreqRecord_Update_ReadsAndWritesAreIndependent(t *testing.T) {
	f := newFreqRecord()

	f.update(1000, false)
	assert.Equal(t, uint32(1), f.nrReads)
	assert.Zero(t, f.nrWrites)
	assert.Equal(t, int64(1000), f.lastReadTime)
	assert.Zero(t, f.lastWriteTime)

	f.update(2000, true)
	assert.Equal(t, uint32(1), f.nrReads)
	assert.Equal(t, uint32(1), f.nrWrites)
	assert.Equal(t, int64(2000), f.lastWriteTime)
}

func TestSaturatingInc(t *testing.T) {
	assert.Equal(t, uint32(1), saturatingInc(0))
	assert.Equal(t, uint32(math.MaxUint32), saturatingInc(math.MaxUint32))
}
