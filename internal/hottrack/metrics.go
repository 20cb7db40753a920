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
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/googlecloudplatform/hottrackfs/internal/logger"
)

const (
	// kindKey annotates a measurement with which index (inode/range) it
	// belongs to.
	kindKey = "item_kind"

	// evictionSourceKey annotates an eviction with what triggered it.
	evictionSourceKey = "eviction_source"
)

var hottrackMeter = otel.Meter("hottrack")

// loadOrStoreAttributeOption caches a metric.MeasurementOption per key so
// RecordIO's hot path never allocates a new attribute.Set.
func loadOrStoreAttributeOption[K comparable](mp *sync.Map, key K, gen func() attribute.Set) metric.MeasurementOption {
	if v, ok := mp.Load(key); ok {
		return v.(metric.MeasurementOption)
	}
	v, _ := mp.LoadOrStore(key, metric.WithAttributeSet(gen()))
	return v.(metric.MeasurementOption)
}

var (
	kindAttributeSet            sync.Map
	kindBucketAttributeSet      sync.Map
	evictionSourceAttributeSet  sync.Map
)

func (k itemKind) String() string {
	if k == kindInode {
		return "inode"
	}
	return "range"
}

func getKindAttributeSet(k itemKind) metric.MeasurementOption {
	return loadOrStoreAttributeOption(&kindAttributeSet, k, func() attribute.Set {
		return attribute.NewSet(attribute.String(kindKey, k.String()))
	})
}

type kindBucket struct {
	kind   itemKind
	bucket int
}

func getKindBucketAttributeSet(kb kindBucket) metric.MeasurementOption {
	return loadOrStoreAttributeOption(&kindBucketAttributeSet, kb, func() attribute.Set {
		return attribute.NewSet(attribute.String(kindKey, kb.kind.String()), attribute.Int("bucket", kb.bucket))
	})
}

func getEvictionSourceAttributeSet(kind itemKind, source string) metric.MeasurementOption {
	type key struct {
		kind   itemKind
		source string
	}
	return loadOrStoreAttributeOption(&evictionSourceAttributeSet, key{kind, source}, func() attribute.Set {
		return attribute.NewSet(attribute.String(kindKey, kind.String()), attribute.String(evictionSourceKey, source))
	})
}

// metricsRecorder publishes the observability surface named in the domain
// stack: item counts and byte usage per kind, a per-kind temperature
// histogram, eviction counts by source, and aging-tick latency.
type metricsRecorder struct {
	volumeAttr metric.MeasurementOption

	itemCount      metric.Int64UpDownCounter
	byteUsage      metric.Int64UpDownCounter
	temperature    metric.Int64Histogram
	evictionCount  metric.Int64Counter
	agingLatency   metric.Float64Histogram
}

func newMetricsRecorder(volumeID string) *metricsRecorder {
	itemCount, err1 := hottrackMeter.Int64UpDownCounter("hottrack/item_count",
		metric.WithDescription("Live tracked items by kind."))
	byteUsage, err2 := hottrackMeter.Int64UpDownCounter("hottrack/byte_usage",
		metric.WithDescription("Notional memory charged to the tracker."), metric.WithUnit("By"))
	temperature, err3 := hottrackMeter.Int64Histogram("hottrack/temperature_bucket",
		metric.WithDescription("Distribution of items across the 256-bucket temperature histogram."))
	evictionCount, err4 := hottrackMeter.Int64Counter("hottrack/eviction_count",
		metric.WithDescription("Items reclaimed, by kind and source."))
	agingLatency, err5 := hottrackMeter.Float64Histogram("hottrack/aging_tick_latency",
		metric.WithDescription("Wall time spent re-bucketing one aging pass."), metric.WithUnit("ms"))

	if err := errors.Join(err1, err2, err3, err4, err5); err != nil {
		// Metric registration only fails on duplicate-name collisions in
		// tests that construct more than one recorder against the global
		// provider; degrade to no-op measurement rather than fail Init.
		logNonFatalMetricsErr(err)
	}

	return &metricsRecorder{
		volumeAttr:    metric.WithAttributes(attribute.String("volume_id", volumeID)),
		itemCount:     itemCount,
		byteUsage:     byteUsage,
		temperature:   temperature,
		evictionCount: evictionCount,
		agingLatency:  agingLatency,
	}
}

func (m *metricsRecorder) recordInsert(kind itemKind, bytes int64) {
	ctx := context.Background()
	m.itemCount.Add(ctx, 1, getKindAttributeSet(kind), m.volumeAttr)
	m.byteUsage.Add(ctx, bytes, getKindAttributeSet(kind), m.volumeAttr)
}

func (m *metricsRecorder) recordDestroy(kind itemKind, bytes int64) {
	ctx := context.Background()
	m.itemCount.Add(ctx, -1, getKindAttributeSet(kind), m.volumeAttr)
	m.byteUsage.Add(ctx, -bytes, getKindAttributeSet(kind), m.volumeAttr)
}

func (m *metricsRecorder) observeTemperature(kind itemKind, temp uint32) {
	m.temperature.Record(context.Background(), 1, getKindBucketAttributeSet(kindBucket{kind, bucketOf(temp)}), m.volumeAttr)
}

func (m *metricsRecorder) recordEviction(kind itemKind, source string) {
	m.evictionCount.Add(context.Background(), 1, getEvictionSourceAttributeSet(kind, source), m.volumeAttr)
}

func (m *metricsRecorder) recordAgingLatency(seconds float64) {
	m.agingLatency.Record(context.Background(), seconds*1000, m.volumeAttr)
}

// logNonFatalMetricsErr is split out so tests can observe that metric
// registration failure never propagates into Init's error return.
func logNonFatalMetricsErr(err error) {
	logger.Warnf("hottrack: metrics registration: %v", err)
}
