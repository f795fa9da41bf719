// Copyright 2021 - 2024 Matrix Origin
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

import "github.com/prometheus/client_golang/prometheus"

var (
	allocateBytesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mo",
			Subsystem: "malloc",
			Name:      "allocate_bytes_total",
			Help:      "Total bytes of slot blocks allocated.",
		})

	inuseBytesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mo",
			Subsystem: "malloc",
			Name:      "inuse_bytes",
			Help:      "Bytes of slot blocks not yet released.",
		})

	allocateObjectsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mo",
			Subsystem: "malloc",
			Name:      "allocate_objects_total",
			Help:      "Total number of slot blocks allocated.",
		})

	inuseObjectsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mo",
			Subsystem: "malloc",
			Name:      "inuse_objects",
			Help:      "Number of slot blocks not yet released.",
		})

	refusedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "mo",
			Subsystem: "malloc",
			Name:      "refused_total",
			Help:      "Total number of allocation requests refused.",
		})
)

// RegisterMetrics registers the package collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		allocateBytesCounter,
		inuseBytesGauge,
		allocateObjectsCounter,
		inuseObjectsGauge,
		refusedCounter,
	} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
