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

// Package pressure gives the tracker's shrinker hook a concrete host
// trigger: it arms a Pressure Stall Information (PSI) monitor on
// /proc/pressure/memory and invokes a registered callback whenever the
// kernel reports that stall threshold crossed, the way a kernel shrinker
// is invoked by direct reclaim rather than by a fixed poll timer.
package pressure

import (
	"context"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/googlecloudplatform/hottrackfs/internal/logger"
)

const psiMemoryPath = "/proc/pressure/memory"

// Shrinker is the callback Watcher invokes when a PSI trigger fires. It
// matches the shape of hottrack.Root.ShrinkerScan without importing that
// package, keeping this package usable against any reclaimer.
// reclaimAllowed is always true here: a PSI callback runs in its own
// goroutine with a background context, never inside a caller's
// reclaim-forbidding critical section, so Watcher always passes true.
type Shrinker func(ctx context.Context, nr int, reclaimAllowed bool) (int, error)

// Watcher arms a "some" PSI trigger on /proc/pressure/memory: fire when
// at least StallMicros of the WindowMicros window was stalled on memory.
// The kernel's documented minimums are a 500ms window and a 50ms stall.
type Watcher struct {
	StallMicros  int64 // e.g. 150_000 (150ms)
	WindowMicros int64 // e.g. 1_000_000 (1s)
	BatchSize    int
	Shrink       Shrinker
}

const pollfdTimeoutMS = 1000

// Run arms the trigger and blocks, invoking Shrink each time the kernel
// reports the threshold crossed, until ctx is cancelled. Any setup error
// (PSI disabled — no CONFIG_PSI, or not running under cgroup v2) is
// logged and Run returns immediately: the tracker then relies solely on
// its internal high-water-mark eviction.
func (w *Watcher) Run(ctx context.Context) {
	fd, err := w.arm()
	if err != nil {
		logger.Infof("pressure: PSI monitoring unavailable: %v", err)
		return
	}
	defer unix.Close(fd)

	pollfds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLPRI}}

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		n, err := unix.Poll(pollfds, pollfdTimeoutMS)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			logger.Warnf("pressure: poll %s: %v", psiMemoryPath, err)
			return
		}
		if n == 0 {
			continue
		}
		if pollfds[0].Revents&unix.POLLERR != 0 {
			logger.Warnf("pressure: %s monitor closed (POLLERR)", psiMemoryPath)
			return
		}
		if pollfds[0].Revents&unix.POLLPRI == 0 {
			continue
		}

		reclaimed, err := w.Shrink(ctx, w.BatchSize, true)
		if err != nil {
			logger.Warnf("pressure: shrink scan: %v", err)
			continue
		}
		logger.Infof("pressure: memory stall threshold crossed, reclaimed %d items", reclaimed)
	}
}

// arm opens /proc/pressure/memory read-write and writes the trigger
// string the kernel's PSI monitoring API expects: "<some|full> <stall
// window>", both in microseconds. The fd must stay open for the
// trigger's lifetime; closing it disarms the monitor.
func (w *Watcher) arm() (int, error) {
	fd, err := unix.Open(psiMemoryPath, unix.O_RDWR|unix.O_CLOEXEC, 0)
	if err != nil {
		return -1, fmt.Errorf("open %s: %w", psiMemoryPath, err)
	}

	trigger := fmt.Sprintf("some %d %d", w.StallMicros, w.WindowMicros)
	if _, err := unix.Write(fd, []byte(trigger)); err != nil {
		unix.Close(fd)
		return -1, fmt.Errorf("arm trigger %q: %w", trigger, err)
	}

	return fd, nil
}
