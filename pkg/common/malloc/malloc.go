// Copyright 2022 Matrix Origin
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

// Package malloc is the process wide allocation strategy for slot blocks.
//
// Block memory always comes from the Go heap as a typed slice, so the
// collector can trace pointers stored in slots. An Allocator decides whether
// a request of a given byte size may proceed and observes the lifetime of
// the block through the returned Deallocator.
package malloc

import (
	"sync/atomic"
	"unsafe"
)

const (
	KB = 1 << 10
	MB = 1 << 20
	GB = 1 << 30
)

type Allocator interface {
	// Allocate admits a block of size bytes. The returned Deallocator must
	// be called exactly once when the block is released.
	Allocate(size uint64) (Deallocator, error)
}

type Deallocator interface {
	Deallocate()
}

// DeallocatorFunc adapts a plain function to Deallocator.
type DeallocatorFunc func()

func (f DeallocatorFunc) Deallocate() {
	f()
}

type chainDeallocator []Deallocator

func (c chainDeallocator) Deallocate() {
	for _, d := range c {
		d.Deallocate()
	}
}

// ChainDeallocator returns a Deallocator calling every non-nil d in order.
func ChainDeallocator(ds ...Deallocator) Deallocator {
	ret := make(chainDeallocator, 0, len(ds))
	for _, d := range ds {
		if d == nil {
			continue
		}
		if c, ok := d.(chainDeallocator); ok {
			ret = append(ret, c...)
			continue
		}
		ret = append(ret, d)
	}
	if len(ret) == 1 {
		return ret[0]
	}
	return ret
}

// SizeOf returns the number of bytes n slots of T occupy.
func SizeOf[T any](n int) uint64 {
	var v T
	return uint64(n) * uint64(unsafe.Sizeof(v))
}

// MakeSlots obtains a block of n zeroed slots of T admitted by a.
// n == 0 yields no block and does not consult a.
func MakeSlots[T any](a Allocator, n int) ([]T, Deallocator, error) {
	if n == 0 {
		return nil, nil, nil
	}
	dec, err := a.Allocate(SizeOf[T](n))
	if err != nil {
		return nil, nil, err
	}
	return make([]T, n), dec, nil
}

type allocatorHolder struct {
	Allocator
}

var defaultAllocator atomic.Pointer[allocatorHolder]

func init() {
	defaultAllocator.Store(&allocatorHolder{NewHeapAllocator()})
}

// GetDefault returns the process wide allocator.
func GetDefault() Allocator {
	return defaultAllocator.Load().Allocator
}

// SetDefault replaces the process wide allocator and returns the previous one.
// Blocks already handed out keep the deallocator of the allocator that
// admitted them.
func SetDefault(a Allocator) Allocator {
	return defaultAllocator.Swap(&allocatorHolder{a}).Allocator
}
