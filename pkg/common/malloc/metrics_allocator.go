// Copyright 2024 Matrix Origin
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package malloc

import (
	"github.com/prometheus/client_golang/prometheus"
)

type MetricsAllocator[U Allocator] struct {
	upstream        U
	deallocatorPool *ClosureDeallocatorPool[metricsDeallocatorArgs]

	allocateBytesCounter   prometheus.Counter
	inuseBytesGauge        prometheus.Gauge
	allocateObjectsCounter prometheus.Counter
	inuseObjectsGauge      prometheus.Gauge
	refusedCounter         prometheus.Counter
}

type metricsDeallocatorArgs struct {
	size uint64
}

func NewMetricsAllocator[U Allocator](
	upstream U,
	allocateBytesCounter prometheus.Counter,
	inuseBytesGauge prometheus.Gauge,
	allocateObjectsCounter prometheus.Counter,
	inuseObjectsGauge prometheus.Gauge,
	refusedCounter prometheus.Counter,
) *MetricsAllocator[U] {

	var ret *MetricsAllocator[U]

	ret = &MetricsAllocator[U]{
		upstream:               upstream,
		allocateBytesCounter:   allocateBytesCounter,
		inuseBytesGauge:        inuseBytesGauge,
		allocateObjectsCounter: allocateObjectsCounter,
		inuseObjectsGauge:      inuseObjectsGauge,
		refusedCounter:         refusedCounter,

		deallocatorPool: NewClosureDeallocatorPool(
			func(args metricsDeallocatorArgs) {
				if ret.inuseBytesGauge != nil {
					ret.inuseBytesGauge.Sub(float64(args.size))
				}
				if ret.inuseObjectsGauge != nil {
					ret.inuseObjectsGauge.Dec()
				}
			},
		),
	}

	return ret
}

// NewDefaultMetricsAllocator wires upstream to the package level collectors.
func NewDefaultMetricsAllocator[U Allocator](upstream U) *MetricsAllocator[U] {
	return NewMetricsAllocator(
		upstream,
		allocateBytesCounter,
		inuseBytesGauge,
		allocateObjectsCounter,
		inuseObjectsGauge,
		refusedCounter,
	)
}

var _ Allocator = new(MetricsAllocator[Allocator])

func (m *MetricsAllocator[U]) Allocate(size uint64) (Deallocator, error) {
	dec, err := m.upstream.Allocate(size)
	if err != nil {
		if m.refusedCounter != nil {
			m.refusedCounter.Inc()
		}
		return nil, err
	}
	if m.allocateBytesCounter != nil {
		m.allocateBytesCounter.Add(float64(size))
	}
	if m.inuseBytesGauge != nil {
		m.inuseBytesGauge.Add(float64(size))
	}
	if m.allocateObjectsCounter != nil {
		m.allocateObjectsCounter.Inc()
	}
	if m.inuseObjectsGauge != nil {
		m.inuseObjectsGauge.Inc()
	}

	return ChainDeallocator(
		dec,
		m.deallocatorPool.Get(metricsDeallocatorArgs{
			size: size,
		}),
	), nil
}
