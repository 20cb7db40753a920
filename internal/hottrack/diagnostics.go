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

// HeatInfo is the read-only diagnostic snapshot of one item's access
// history, matching the field set of include/uapi/linux/hot_tracking.h's
// hot_heat_info: a stable, independently-meaningful readout that does not
// expose the internal freqRecord type itself.
type HeatInfo struct {
	Live bool

	Temperature    uint32
	AvgDeltaReads  uint64 // nanoseconds, EWMA-smoothed
	AvgDeltaWrites uint64
	LastReadNanos  int64
	LastWriteNanos int64
	NumReads       uint32
	NumWrites      uint32
}

func snapshotFreq(f *freqRecord, live bool) HeatInfo {
	return HeatInfo{
		Live:           live,
		Temperature:    f.lastTemp,
		AvgDeltaReads:  f.avgDeltaReads,
		AvgDeltaWrites: f.avgDeltaWrites,
		LastReadNanos:  f.lastReadTime,
		LastWriteNanos: f.lastWriteTime,
		NumReads:       f.nrReads,
		NumWrites:      f.nrWrites,
	}
}

// Heat returns he's current diagnostic snapshot. Safe to call while other
// goroutines mutate he: freqRecord fields are read racily here exactly as
// record_io writes them racily — a torn read yields a stale-but-plausible
// value, never a crash, because every field involved is machine-word
// sized.
func (he *InodeItem) Heat() HeatInfo {
	return snapshotFreq(&he.freq, he.elem != nil)
}

// Heat returns hr's current diagnostic snapshot.
func (hr *RangeItem) Heat() HeatInfo {
	return snapshotFreq(&hr.freq, hr.elem != nil)
}

// Ino is the inode number this item tracks.
func (he *InodeItem) Ino() uint64 { return he.ino }

// Start and End describe the byte range this item tracks, end-exclusive.
func (hr *RangeItem) Start() int64 { return hr.start }
func (hr *RangeItem) End() int64   { return hr.start + hr.len }
