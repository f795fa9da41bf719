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
	"testing"
)

func BenchmarkMakeSlots(b *testing.B) {
	a := NewHeapAllocator()
	for i := 0; i < b.N; i++ {
		_, dec, err := MakeSlots[int64](a, 512)
		if err != nil {
			b.Fatal(err)
		}
		dec.Deallocate()
	}
}

func BenchmarkParallelLimitAllocate(b *testing.B) {
	a := NewLimitAllocator(NewHeapAllocator(), GB, nil)
	b.RunParallel(func(pb *testing.PB) {
		for size := uint64(1); pb.Next(); size++ {
			dec, err := a.Allocate(size % 65536)
			if err != nil {
				b.Fatal(err)
			}
			dec.Deallocate()
		}
	})
}

func BenchmarkParallelMetricsAllocate(b *testing.B) {
	a := NewDefaultMetricsAllocator(NewHeapAllocator())
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			dec, err := a.Allocate(4096)
			if err != nil {
				b.Fatal(err)
			}
			dec.Deallocate()
		}
	})
}
