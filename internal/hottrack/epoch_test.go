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
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEpoch_AfterGracePeriod_WaitsForOpenReader(t *testing.T) {
	var e epoch
	var fired atomic.Bool

	leave := e.enter()

	done := make(chan struct{})
	go func() {
		e.afterGracePeriod(func() { fired.Store(true) })
		close(done)
	}()

	// The grace period cannot have elapsed yet: the reader is still
	// inside its critical section.
	time.Sleep(10 * time.Millisecond)
	assert.False(t, fired.Load())

	leave()
	<-done

	assert.True(t, fired.Load())
}

func TestEpoch_AfterGracePeriod_RunsImmediatelyWithNoOpenReader(t *testing.T) {
	var e epoch
	var fired bool

	e.afterGracePeriod(func() { fired = true })

	assert.True(t, fired)
}
