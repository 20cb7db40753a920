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

func TestCalcTemperature_ColdItemIsBucketZero(t *testing.T) {
	f := newFreqRecord()

	// Far enough past the zero "never accessed" timestamps that their
	// recency terms saturate to 0; at now == 0 they would count as an
	// access made just now.
	temp := calcTemperature(&f, int64(1)<<62)

	assert.Equal(t, 0, bucketOf(temp), "a never-accessed item must land in the coldest bucket")
}

func TestCalcTemperature_MonotonicInReadCount(t *testing.T) {
	now := int64(1_000_000_000)

	cold := newFreqRecord()
	warm := newFreqRecord()
	warm.nrReads = 1000

	coldTemp := calcTemperature(&cold, now)
	warmTemp := calcTemperature(&warm, now)

	assert.Greater(t, warmTemp, coldTemp, "more reads must never produce a lower temperature")
}

func TestCalcTemperature_MonotonicInRecency(t *testing.T) {
	now := int64(10_000_000_000)

	stale := newFreqRecord()
	stale.lastReadTime = 0

	fresh := newFreqRecord()
	fresh.lastReadTime = now - 1

	staleTemp := calcTemperature(&stale, now)
	freshTemp := calcTemperature(&fresh, now)

	assert.GreaterOrEqual(t, freshTemp, staleTemp, "a more recent access must never produce a lower temperature")
}

func TestSaturateRecency(t *testing.T) {
	testCases := []struct {
		name    string
		now     uint64
		last    uint64
		divider uint
		want    uint64
	}{
		{"no elapsed time is max heat", 1000, 1000, 0, uint64(1) << 32},
		{"elapsed time beyond 2^32 saturates to zero", uint64(1) << 40, 0, 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := saturateRecency(tc.now, tc.last, tc.divider)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSaturateInverse(t *testing.T) {
	testCases := []struct {
		name    string
		avg     uint64
		divider uint
		want    uint64
	}{
		{"avg at max means zero heat", math.MaxUint64, 0, 0},
		{"avg at zero saturates to max", 0, 0, math.MaxUint32},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := saturateInverse(tc.avg, tc.divider)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestBucketOf(t *testing.T) {
	assert.Equal(t, 0, bucketOf(0))
	assert.Equal(t, mapSize-1, bucketOf(math.MaxUint32))
}
