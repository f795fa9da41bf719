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
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/matrixorigin/movec/pkg/common/moerr"
	"github.com/matrixorigin/movec/pkg/logutil"
)

// LimitAllocator refuses requests that would push the bytes in use past
// limit. Refusal is reported as moerr.ErrOOM.
type LimitAllocator[U Allocator] struct {
	upstream        U
	limit           uint64
	inuse           atomic.Uint64
	tracker         *PeakInuseTracker
	deallocatorPool *ClosureDeallocatorPool[uint64]
}

func NewLimitAllocator[U Allocator](
	upstream U,
	limit uint64,
	tracker *PeakInuseTracker,
) *LimitAllocator[U] {
	ret := &LimitAllocator[U]{
		upstream: upstream,
		limit:    limit,
		tracker:  tracker,
	}
	ret.deallocatorPool = NewClosureDeallocatorPool(
		func(size uint64) {
			ret.inuse.Add(^(size - 1))
		},
	)
	return ret
}

var _ Allocator = new(LimitAllocator[Allocator])

func (l *LimitAllocator[U]) Allocate(size uint64) (Deallocator, error) {
	var n uint64
	for {
		cur := l.inuse.Load()
		n = cur + size
		if n > l.limit || n < cur {
			logutil.Warn("malloc limit exceeded",
				zap.Uint64("request", size),
				zap.Uint64("inuse", cur),
				zap.Uint64("limit", l.limit),
			)
			return nil, moerr.NewOOMNoCtx()
		}
		if l.inuse.CompareAndSwap(cur, n) {
			break
		}
	}

	dec, err := l.upstream.Allocate(size)
	if err != nil {
		l.inuse.Add(^(size - 1))
		return nil, err
	}
	if l.tracker != nil {
		l.tracker.UpdateMalloc(n)
	}
	if size == 0 {
		return dec, nil
	}
	return ChainDeallocator(
		dec,
		l.deallocatorPool.Get(size),
	), nil
}

func (l *LimitAllocator[U]) InUse() uint64 {
	return l.inuse.Load()
}

func (l *LimitAllocator[U]) Limit() uint64 {
	return l.limit
}
