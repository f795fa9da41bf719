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

// Package rawmem provides Storage, an owning handle to a block of element
// slots that knows nothing about which slots hold constructed elements.
//
// Storage is the only place in this module that touches slot memory
// directly. The owner decides which slots are constructed and must destroy
// them before the block is released; Release itself never destroys
// elements.
package rawmem

import (
	"github.com/matrixorigin/movec/pkg/common/malloc"
	"github.com/matrixorigin/movec/pkg/common/moerr"
)

// noCopy makes go vet's copylocks check reject copies of Storage.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Storage owns capacity slots of T. Unconstructed slots hold the zero value
// of T. The zero Storage owns nothing.
type Storage[T any] struct {
	_ noCopy

	buf     []T
	dec     malloc.Deallocator
	traits  *Traits[T]
	checker *slotChecker
}

// Allocate reserves n slots through the process allocator. n == 0 yields
// an empty Storage without consulting the allocator.
func Allocate[T any](n int) (Storage[T], error) {
	if n < 0 {
		return Storage[T]{}, moerr.NewInvalidArgNoCtx("capacity", n)
	}
	if n == 0 {
		return Storage[T]{}, nil
	}
	buf, dec, err := malloc.MakeSlots[T](malloc.GetDefault(), n)
	if err != nil {
		return Storage[T]{}, err
	}
	return Storage[T]{
		buf:     buf,
		dec:     dec,
		traits:  TraitsOf[T](),
		checker: newSlotChecker[T](),
	}, nil
}

// Capacity returns the number of slots owned.
func (s *Storage[T]) Capacity() int {
	return len(s.buf)
}

// Traits returns the slot operations of T.
func (s *Storage[T]) Traits() *Traits[T] {
	if s.traits == nil {
		s.traits = TraitsOf[T]()
	}
	return s.traits
}

// At returns the address of constructed slot i, i < Capacity().
func (s *Storage[T]) At(i int) *T {
	s.checker.accessed(i)
	return &s.buf[i]
}

// Slots returns slots [from, to) as a slice sharing the block. to may equal
// Capacity(); the slice never extends past to.
func (s *Storage[T]) Slots(from, to int) []T {
	return s.buf[from:to:to]
}

// Swap exchanges the blocks of s and other without touching any slot.
func (s *Storage[T]) Swap(other *Storage[T]) {
	s.buf, other.buf = other.buf, s.buf
	s.dec, other.dec = other.dec, s.dec
	s.traits, other.traits = other.traits, s.traits
	s.checker, other.checker = other.checker, s.checker
}

// MoveFrom releases the block of s and takes over the block of src, which
// is left empty.
func (s *Storage[T]) MoveFrom(src *Storage[T]) {
	if s == src {
		return
	}
	s.Release()
	s.Swap(src)
}

// Release returns the block to its allocator. Constructed slots are not
// destroyed. Releasing an empty Storage is a no-op.
func (s *Storage[T]) Release() {
	if s.buf == nil {
		return
	}
	s.checker.released()
	if s.dec != nil {
		s.dec.Deallocate()
	}
	s.buf = nil
	s.dec = nil
	s.checker = nil
}

// Construct builds slot i with ctor. If ctor fails nothing was constructed:
// the slot is zeroed without running the destroyer.
func (s *Storage[T]) Construct(i int, ctor func(slot *T) error) error {
	p := &s.buf[i]
	if err := ctor(p); err != nil {
		var zero T
		*p = zero
		return err
	}
	s.checker.constructed(i)
	return nil
}

// ConstructN builds slots [at, at+n) in order, passing the offset k of each
// slot to ctor. If any construction fails, the slots built so far are
// destroyed and the error is returned; no slot of the range stays
// constructed.
func (s *Storage[T]) ConstructN(at, n int, ctor func(k int, slot *T) error) error {
	for k := 0; k < n; k++ {
		if err := s.Construct(at+k, func(slot *T) error {
			return ctor(k, slot)
		}); err != nil {
			s.DestroyN(at, k)
			return err
		}
	}
	return nil
}

// Destroy destroys constructed slot i and resets it to the zero value.
func (s *Storage[T]) Destroy(i int) {
	s.checker.destroyed(i)
	s.Traits().reset(&s.buf[i])
}

// DestroyN destroys constructed slots [at, at+n).
func (s *Storage[T]) DestroyN(at, n int) {
	for i := at; i < at+n; i++ {
		s.Destroy(i)
	}
}
