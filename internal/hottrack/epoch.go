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

import "sync"

// epoch is the grace-period primitive readers need: readers that
// traverse the index without holding inodeLock (the aging worker, see
// aging.go) declare a bounded read-side critical section by calling
// enter; destructors defer their release_fn until every read-side
// section that began before the unlink has finished, by calling
// afterGracePeriod.
//
// The source models this with RCU (rcu_read_lock/call_rcu). Go has
// nothing built for that directly, but a sync.RWMutex gives the same
// ordering guarantee when every reader takes it for read for the
// duration of its traversal and every writer's grace-period wait takes
// it for write once: the write Lock cannot complete until all readers
// that were already in their RLock have called RUnlock, which is exactly
// "every read-side section that began before this point has completed".
//
// What this primitive preserves is not memory safety (the garbage
// collector already has that) but the *ordering* guarantee: a
// release_fn hook never fires while an in-flight traversal might still
// observe the pre-unlink bucket membership. The hooks passed in this
// package are empty; item and byte accounting happen in put before the
// grace-period wait.
type epoch struct {
	mu sync.RWMutex
}

// enter begins a read-side critical section. The caller must invoke the
// returned function exactly once to end it.
func (e *epoch) enter() func() {
	e.mu.RLock()
	return e.mu.RUnlock
}

// afterGracePeriod blocks until every read-side section that began
// before this call has ended, then runs fn. fn runs synchronously on the
// caller's goroutine once the grace period has elapsed; destructors that
// want this to happen in the background should call it from their own
// goroutine. Every caller in this package, including Root.Teardown's
// final drain, calls it synchronously.
func (e *epoch) afterGracePeriod(fn func()) {
	e.mu.Lock()
	e.mu.Unlock()
	fn()
}
