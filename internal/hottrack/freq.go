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

import "math"

// freqRecord is the embedded access-activity counter set every InodeItem
// and RangeItem carries. Fields are exported-by-convention within the
// package but the type itself stays unexported; callers only ever see it
// through the items' Heat methods (diagnostics.go).
//
// Updates are intentionally unsynchronized here, matching the source: two
// concurrent writers may race and lose a sample, but every field is
// 32- or 64-bit aligned and the EWMA tolerates a lost sample. The caller
// (record_io) holds no lock for either the inode-wide or the per-range
// update — see root.go.
type freqRecord struct {
	lastReadTime  int64 // unix nanoseconds
	lastWriteTime int64
	nrReads       uint32
	nrWrites      uint32
	avgDeltaReads  uint64
	avgDeltaWrites uint64
	lastTemp       uint32
}

// newFreqRecord returns a cold record: average deltas at the maximum
// representable value, so the two average terms add no heat. The zero
// last-access timestamps are aged from the Unix epoch like any other, so
// a brand new item lands in bucket 0 only once the clock is at least
// 2^62 ns (about 146 years) past the epoch.
func newFreqRecord() freqRecord {
	return freqRecord{
		avgDeltaReads:  math.MaxUint64,
		avgDeltaWrites: math.MaxUint64,
	}
}

// ewmaUpdate folds a new inter-arrival delta into avg using the same
// fixed-point arithmetic as hot_freq_calc: a single left-shift-then-
// subtract-then-add keeps the update overflow-safe in 64-bit unsigned
// arithmetic because delta is shifted down before it is folded in.
func ewmaUpdate(avg uint64, delta uint64) uint64 {
	return ((avg << FreqPower) - avg + delta) >> FreqPower
}

// update applies one access sample at nowNS to the record. The counter is
// bumped before the timestamp is advanced, matching hot_freq_update.
func (f *freqRecord) update(nowNS int64, write bool) {
	if write {
		f.nrWrites = saturatingInc(f.nrWrites)
		delta := uint64(nowNS-f.lastWriteTime) >> FreqPower
		f.avgDeltaWrites = ewmaUpdate(f.avgDeltaWrites, delta)
		f.lastWriteTime = nowNS
		return
	}

	f.nrReads = saturatingInc(f.nrReads)
	delta := uint64(nowNS-f.lastReadTime) >> FreqPower
	f.avgDeltaReads = ewmaUpdate(f.avgDeltaReads, delta)
	f.lastReadTime = nowNS
}

func saturatingInc(n uint32) uint32 {
	if n == math.MaxUint32 {
		return n
	}
	return n + 1
}
