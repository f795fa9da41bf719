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

import "sync"

// ClosureDeallocator calls fn with the argument captured at allocation time,
// then returns itself to its pool. It must not be used after Deallocate.
type ClosureDeallocator[T any] struct {
	argument T
	pool     *ClosureDeallocatorPool[T]
}

func (c *ClosureDeallocator[T]) Deallocate() {
	c.pool.fn(c.argument)
	var zero T
	c.argument = zero
	c.pool.pool.Put(c)
}

type ClosureDeallocatorPool[T any] struct {
	fn   func(T)
	pool sync.Pool
}

func NewClosureDeallocatorPool[T any](
	fn func(T),
) *ClosureDeallocatorPool[T] {
	ret := &ClosureDeallocatorPool[T]{
		fn: fn,
	}
	ret.pool.New = func() any {
		return &ClosureDeallocator[T]{
			pool: ret,
		}
	}
	return ret
}

func (c *ClosureDeallocatorPool[T]) Get(argument T) Deallocator {
	closure := c.pool.Get().(*ClosureDeallocator[T])
	closure.argument = argument
	return closure
}
