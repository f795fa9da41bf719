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
	"go.uber.org/zap"

	"github.com/matrixorigin/movec/pkg/logutil"
)

type Config struct {
	// Limit caps the bytes of live slot blocks; zero means unlimited.
	Limit uint64 `toml:"limit"`

	// EnableMetrics reports allocations to the package prometheus collectors.
	EnableMetrics bool `toml:"enable-metrics"`

	// CheckSlots enables slot state checking in slot storage. It is
	// consumed by the storage layer, not by the allocator.
	CheckSlots bool `toml:"check-slots"`
}

// NewAllocator builds the allocator chain described by c.
func NewAllocator(c Config) Allocator {
	var ret Allocator = NewHeapAllocator()
	if c.Limit > 0 {
		ret = NewLimitAllocator(ret, c.Limit, GlobalPeakInuseTracker)
	}
	if c.EnableMetrics {
		ret = NewDefaultMetricsAllocator(ret)
	}
	return ret
}

// SetupDefault installs the allocator described by c as the process default.
func SetupDefault(c Config) Allocator {
	logutil.Info("malloc",
		zap.Uint64("limit", c.Limit),
		zap.Bool("enable metrics", c.EnableMetrics),
		zap.Bool("check slots", c.CheckSlots),
	)
	ret := NewAllocator(c)
	SetDefault(ret)
	return ret
}
