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
	"container/list"
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/googlecloudplatform/hottrackfs/cfg"
	"github.com/googlecloudplatform/hottrackfs/clock"
	"github.com/googlecloudplatform/hottrackfs/internal/logger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// Root is the tracker root: one instance per mounted volume, owning the
// inode index, the two temperature maps, memory accounting, the aging
// worker, and the shrinker hook.
type Root struct {
	VolumeID string

	clock     clock.Clock
	tunables  cfg.Tunables
	tracer    trace.Tracer

	enabled atomic.Bool

	inodeLock    sync.Mutex
	inodes       map[uint64]*InodeItem
	inodeBuckets [mapSize]*list.List

	mapLock      sync.Mutex
	rangeBuckets [mapSize]*list.List

	itemCount atomic.Int64
	byteUsage atomic.Int64

	epoch epoch

	metrics *metricsRecorder

	shrinker *shrinkerState

	agingCtx    context.Context
	agingCancel context.CancelFunc
	agingGroup  *errgroup.Group
}

// Options configures Init. A zero-value Options is valid: it uses
// RealClock, the global viper instance's tunables, a generated volume
// ID, and the global otel MeterProvider/TracerProvider.
type Options struct {
	VolumeID string
	Clock    clock.Clock
	Tunables cfg.Tunables
}

// Init constructs and starts a Tracker Root: it allocates the indices and
// temperature maps, and arms the aging worker, matching hot_track_init's
// hot_tree_init + queue_delayed_work + register_shrinker sequence.
//
// Init is the one call in this package allowed to surface ErrOutOfMemory;
// in Go that can only happen via panic/OOM-kill, so this always
// succeeds, but the error return is kept so callers — and the original
// C API shape — are not lying about the possibility.
func Init(opts Options) (*Root, error) {
	volumeID := opts.VolumeID
	if volumeID == "" {
		volumeID = uuid.NewString()
	}

	clk := opts.Clock
	if clk == nil {
		clk = clock.RealClock{}
	}

	r := &Root{
		VolumeID:     volumeID,
		clock:        clk,
		tunables:     cfg.NewTunables(opts.Tunables.V),
		tracer:       otel.Tracer("hottrack"),
		inodes:       make(map[uint64]*InodeItem),
		inodeBuckets: newBucketArray(),
		rangeBuckets: newBucketArray(),
	}
	r.metrics = newMetricsRecorder(volumeID)
	r.shrinker = newShrinkerState(r)
	r.enabled.Store(true)

	r.agingCtx, r.agingCancel = context.WithCancel(context.Background())
	r.agingGroup, r.agingCtx = errgroup.WithContext(r.agingCtx)
	r.agingGroup.Go(func() error {
		r.runAgingWorker(r.agingCtx)
		return nil
	})

	logger.Infof("hottrack: tracker started for volume %s", volumeID)
	return r, nil
}

// Teardown is the tracker's single cancellation point: stop RecordIO
// from tracking, cancel and join the aging worker, drop every remaining
// item (forcing destruction regardless of external holders — callers must
// guarantee no outstanding references), and wait for one final grace
// period. There is no shrinker registration to undo: ShrinkerScan stays
// callable after Teardown and finds nothing left to reclaim.
func (r *Root) Teardown() {
	r.enabled.Store(false)

	r.agingCancel()
	_ = r.agingGroup.Wait()

	r.inodeLock.Lock()
	victims := make([]*InodeItem, 0, len(r.inodes))
	for _, he := range r.inodes {
		victims = append(victims, he)
	}
	r.inodeLock.Unlock()

	for _, he := range victims {
		// Collapse any outstanding references so this put destroys he.
		atomic.StoreInt32(&he.refcount, 1)
		he.put()
	}

	r.epoch.afterGracePeriod(func() {})
	logger.Infof("hottrack: tracker stopped for volume %s", r.VolumeID)
}

// RecordIO is record_io: the entry point every read/write on a regular
// file funnels through. It never fails the I/O path — every error
// condition here is a silent no-op.
func (r *Root) RecordIO(ino uint64, isRegularFile bool, offset, length int64, write bool) {
	if !r.enabled.Load() || !isRegularFile || length <= 0 {
		return
	}

	ctx, span := r.tracer.Start(context.Background(), "RecordIO")
	defer span.End()
	_ = ctx

	now := r.clock.Now()

	he := r.getOrInsertInode(ino)
	he.freq.update(now.UnixNano(), write)

	first := offset >> RangeBits
	last := (offset + length + rangeSize - 1) >> RangeBits
	for key := first; key < last; key++ {
		hr := he.getOrInsertRange(key)
		hr.freq.update(now.UnixNano(), write)
		hr.put()
	}

	he.put()
}

// UnlinkInode forgets an inode the host has deleted.
// Lookup-then-drop-twice: the lookup's own reference, then the index's
// membership reference — which is what can trigger destruction.
// Idempotent: a second call after the first sees ErrNotFound and no-ops.
// While a caller still holds a reference from LookupInode, the item stays
// in the index, and LookupInode keeps finding it, until that reference is
// released with PutInode.
func (r *Root) UnlinkInode(ino uint64) {
	he, err := r.lookupInodeRef(ino)
	if err != nil {
		return
	}
	he.put()
	he.put()
}

// LookupInode returns an InodeItem for ino with a reference the caller
// must release with PutInode, or ErrNotFound.
func (r *Root) LookupInode(ino uint64) (*InodeItem, error) {
	return r.lookupInodeRef(ino)
}

// PutInode drops the caller's reference on an item returned by
// LookupInode.
func (r *Root) PutInode(he *InodeItem) {
	he.put()
}

// ItemCount is the live item count across both kinds (hot_cnt in the
// source), exposed for diagnostics and as the shrinker's count_objects.
func (r *Root) ItemCount() int64 { return r.itemCount.Load() }

// ByteUsage is the notional byte usage across both kinds.
func (r *Root) ByteUsage() int64 { return r.byteUsage.Load() }
