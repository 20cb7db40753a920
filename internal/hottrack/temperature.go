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

// calcTemperature distills the six heat criteria down to one 32-bit
// scalar, at wall-clock nowNS. It is a straight port of
// hot_temp_calc: recent, frequent, short-interval access each push the
// value up monotonically; a long-idle item's contributions decay to
// zero and it drifts toward bucket 0.
//
// All intermediate arithmetic is unsigned and allowed to wrap/saturate
// exactly as the C does; there is no error path.
func calcTemperature(f *freqRecord, nowNS int64) uint32 {
	now := uint64(nowNS)

	nrrHeat := uint32(f.nrReads) << nrrMultiplierPower
	nrwHeat := uint32(f.nrWrites) << nrwMultiplierPower

	ltrHeat := saturateRecency(now, uint64(f.lastReadTime), ltrDividerPower)
	ltwHeat := saturateRecency(now, uint64(f.lastWriteTime), ltwDividerPower)

	avrHeat := saturateInverse(f.avgDeltaReads, avrDividerPower)
	avwHeat := saturateInverse(f.avgDeltaWrites, avwDividerPower)

	nrrHeat = uint32(uint64(nrrHeat) >> (3 - nrrCoeffPower))
	nrwHeat = uint32(uint64(nrwHeat) >> (3 - nrwCoeffPower))
	ltrHeat = ltrHeat >> (3 - ltrCoeffPower)
	ltwHeat = ltwHeat >> (3 - ltwCoeffPower)
	avrHeat = avrHeat >> (3 - avrCoeffPower)
	avwHeat = avwHeat >> (3 - avwCoeffPower)

	return nrrHeat + nrwHeat + uint32(ltrHeat) + uint32(ltwHeat) + uint32(avrHeat) + uint32(avwHeat)
}

// saturateRecency turns "time elapsed since last access" into a heat
// value that is high when recent and 0 when the elapsed time overflows a
// 32-bit span: age := (now-last)>>divider; heat := 2^32 - age, saturating
// to 0 once age >= 2^32.
func saturateRecency(now, last uint64, divider uint) uint64 {
	age := (now - last) >> divider
	if age >= (uint64(1) << 32) {
		return 0
	}
	return (uint64(1) << 32) - age
}

// saturateInverse turns an EWMA average delta into a heat value that is
// high for short (hot) average inter-arrival times: cold := (MaxUint64 -
// avg)>>divider, saturating to MaxUint32 once it would overflow 32 bits.
func saturateInverse(avg uint64, divider uint) uint64 {
	cold := (math.MaxUint64 - avg) >> divider
	if cold >= (uint64(1) << 32) {
		return math.MaxUint32
	}
	return cold
}

// bucketOf returns the top MapBits bits of a temperature value: the
// index of the bucket it belongs in.
func bucketOf(temp uint32) int {
	return int(temp >> tempShift)
}
