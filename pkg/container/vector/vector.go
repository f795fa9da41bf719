// Copyright 2021 Matrix Origin
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

// Package vector implements Vector, a growable sequence of T over slot
// storage, with amortized constant time append, random access and
// positional insert and erase.
//
// Slots [0, Size()) hold constructed elements, slots [Size(), Capacity())
// are unconstructed. Every operation that needs a new block builds all of
// the new contents there first and only then adopts it, so a failure leaves
// the vector as it was.
//
// A Vector is not safe for concurrent mutation.
package vector

import (
	"bytes"
	"fmt"

	"go.uber.org/zap"

	"github.com/matrixorigin/movec/pkg/common/moerr"
	"github.com/matrixorigin/movec/pkg/container/rawmem"
	"github.com/matrixorigin/movec/pkg/logutil"
)

// Vector is a growable sequence of T. The zero Vector is empty and ready
// to use. A Vector must not be copied; use Clone or Move.
type Vector[T any] struct {
	data rawmem.Storage[T]
	size int
}

// New returns an empty vector with no capacity.
func New[T any]() *Vector[T] {
	return &Vector[T]{}
}

// NewWithSize returns a vector of n default-constructed elements and
// capacity n. If any construction fails, the elements built so far are
// destroyed, the block is released and no vector is returned.
func NewWithSize[T any](n int) (*Vector[T], error) {
	data, err := rawmem.Allocate[T](n)
	if err != nil {
		return nil, err
	}
	tr := data.Traits()
	if err := data.ConstructN(0, n, func(_ int, slot *T) error {
		return tr.Init(slot)
	}); err != nil {
		data.Release()
		return nil, err
	}
	v := &Vector[T]{size: n}
	v.data.MoveFrom(&data)
	return v, nil
}

// Clone returns a copy of v with capacity v.Size(). The copy is built element
// by element with the copy constructor of T; on failure nothing is left
// behind.
func (v *Vector[T]) Clone() (*Vector[T], error) {
	data, err := rawmem.Allocate[T](v.size)
	if err != nil {
		return nil, err
	}
	tr := data.Traits()
	if err := data.ConstructN(0, v.size, func(k int, slot *T) error {
		return tr.Copy(slot, v.data.At(k))
	}); err != nil {
		data.Release()
		return nil, err
	}
	ret := &Vector[T]{size: v.size}
	ret.data.MoveFrom(&data)
	return ret, nil
}

// Move returns a vector owning the block and elements of v and leaves v
// empty. No element is constructed, copied or moved.
func (v *Vector[T]) Move() *Vector[T] {
	ret := &Vector[T]{}
	ret.Swap(v)
	return ret
}

// Assign makes v a copy of rhs. If rhs has more capacity than v, a full
// copy of rhs is built first and swapped in, so v is untouched on failure.
// Otherwise the storage of v is reused: the common prefix is copy-assigned,
// a surplus tail is destroyed and a missing tail is copy-constructed.
func (v *Vector[T]) Assign(rhs *Vector[T]) error {
	if v == rhs {
		return nil
	}
	if rhs.Capacity() > v.Capacity() {
		cp, err := rhs.Clone()
		if err != nil {
			return err
		}
		v.Swap(cp)
		cp.Free()
		return nil
	}

	tr := v.traits()
	for i, n := 0, min(v.size, rhs.size); i < n; i++ {
		if err := tr.Assign(v.data.At(i), rhs.data.At(i)); err != nil {
			return err
		}
	}
	if v.size > rhs.size {
		v.data.DestroyN(rhs.size, v.size-rhs.size)
	} else {
		from := v.size
		if err := v.data.ConstructN(from, rhs.size-from, func(k int, slot *T) error {
			return tr.Copy(slot, rhs.data.At(from+k))
		}); err != nil {
			return err
		}
	}
	v.size = rhs.size
	return nil
}

// MoveAssign frees the contents of v, then takes over the block and
// elements of rhs, leaving rhs empty.
func (v *Vector[T]) MoveAssign(rhs *Vector[T]) {
	if v == rhs {
		return
	}
	v.Free()
	v.Swap(rhs)
}

// Free destroys every element and releases the block. v stays usable as an
// empty vector.
func (v *Vector[T]) Free() {
	v.data.DestroyN(0, v.size)
	v.size = 0
	v.data.Release()
}

// Clear destroys every element and keeps the capacity.
func (v *Vector[T]) Clear() {
	v.data.DestroyN(0, v.size)
	v.size = 0
}

// Swap exchanges the contents of v and other in constant time.
func (v *Vector[T]) Swap(other *Vector[T]) {
	v.data.Swap(&other.data)
	v.size, other.size = other.size, v.size
}

func (v *Vector[T]) Size() int {
	return v.size
}

func (v *Vector[T]) Capacity() int {
	return v.data.Capacity()
}

func (v *Vector[T]) Empty() bool {
	return v.size == 0
}

// Reserve makes the capacity at least n. If it grows, a block of exactly n
// slots is allocated and the elements are relocated into it; on failure v
// is unchanged.
func (v *Vector[T]) Reserve(n int) error {
	if n <= v.data.Capacity() {
		return nil
	}
	newData, err := rawmem.Allocate[T](n)
	if err != nil {
		return err
	}
	if err := v.relocate(&newData, 0, 0, v.size); err != nil {
		newData.Release()
		return err
	}
	v.adopt(&newData)
	return nil
}

// Resize makes the size n, destroying the tail or appending
// default-constructed elements.
func (v *Vector[T]) Resize(n int) error {
	switch {
	case n < 0:
		return moerr.NewInvalidArgNoCtx("size", n)
	case n < v.size:
		v.data.DestroyN(n, v.size-n)
		v.size = n
	case n > v.size:
		if err := v.Reserve(n); err != nil {
			return err
		}
		tr := v.traits()
		if err := v.data.ConstructN(v.size, n-v.size, func(_ int, slot *T) error {
			return tr.Init(slot)
		}); err != nil {
			return err
		}
		v.size = n
	}
	return nil
}

// PushBack appends value, moving it into the vector.
func (v *Vector[T]) PushBack(value T) error {
	tr := v.traits()
	defer tr.Destroy(&value)
	_, err := v.EmplaceBack(func(slot *T) error {
		return tr.Move(slot, &value)
	})
	return err
}

// PushBackCopy appends a copy of *value. value may point into v.
func (v *Vector[T]) PushBackCopy(value *T) error {
	tr := v.traits()
	_, err := v.EmplaceBack(func(slot *T) error {
		return tr.Copy(slot, value)
	})
	return err
}

// EmplaceBack constructs a new last element with ctor and returns it.
//
// When the vector is full the capacity doubles (1 from empty). The new
// element is constructed in its final slot of the new block before any
// existing element is relocated, so a failing ctor leaves v unchanged.
func (v *Vector[T]) EmplaceBack(ctor func(slot *T) error) (*T, error) {
	if v.size == v.data.Capacity() {
		if err := v.reallocInsert(v.size, ctor); err != nil {
			return nil, err
		}
	} else {
		if err := v.data.Construct(v.size, ctor); err != nil {
			return nil, err
		}
		v.size++
	}
	return v.data.At(v.size - 1), nil
}

// PopBack destroys the last element. The vector must not be empty.
func (v *Vector[T]) PopBack() {
	if rawmem.CheckerEnabled() && v.size == 0 {
		panic(moerr.NewEmptyVectorNoCtx())
	}
	v.data.Destroy(v.size - 1)
	v.size--
}

// Emplace constructs a new element with ctor before pos and returns an
// iterator to it.
//
// If v is full, a new block is allocated, the new element is constructed
// there first and the elements before and after it are relocated around
// it; v is unchanged on failure. Otherwise the element is built in a
// temporary, the last element is moved into the first free slot, the range
// [pos, last) is shifted right by move assignment and the temporary is
// move-assigned into place. If a move fails during that shift the contents
// are unspecified, though every slot in [0, Size()) stays constructed.
func (v *Vector[T]) Emplace(pos ConstIterator[T], ctor func(slot *T) error) (Iterator[T], error) {
	i := pos.Index()
	v.checkPosition(i)
	var err error
	switch {
	case i == v.size:
		_, err = v.EmplaceBack(ctor)
	case v.size == v.data.Capacity():
		err = v.reallocInsert(i, ctor)
	default:
		err = v.insertInPlace(i, ctor)
	}
	if err != nil {
		return Iterator[T]{}, err
	}
	return Iterator[T]{v: v, i: i}, nil
}

// Insert moves value into the vector before pos.
func (v *Vector[T]) Insert(pos ConstIterator[T], value T) (Iterator[T], error) {
	tr := v.traits()
	defer tr.Destroy(&value)
	return v.Emplace(pos, func(slot *T) error {
		return tr.Move(slot, &value)
	})
}

// InsertCopy inserts a copy of *value before pos. value may point into v.
func (v *Vector[T]) InsertCopy(pos ConstIterator[T], value *T) (Iterator[T], error) {
	tr := v.traits()
	return v.Emplace(pos, func(slot *T) error {
		return tr.Copy(slot, value)
	})
}

// Erase removes the element at pos, shifting the following elements left
// by move assignment, and returns an iterator to the element that took its
// place. The capacity is unchanged.
func (v *Vector[T]) Erase(pos ConstIterator[T]) (Iterator[T], error) {
	i := pos.Index()
	v.checkIndex(i)
	tr := v.traits()
	for j := i; j+1 < v.size; j++ {
		if err := tr.MoveAssign(v.data.At(j), v.data.At(j+1)); err != nil {
			return Iterator[T]{}, err
		}
	}
	v.data.Destroy(v.size - 1)
	v.size--
	return Iterator[T]{v: v, i: i}, nil
}

// At returns the address of element i, i < Size(). The address is valid
// until the next operation that reallocates or shifts elements.
func (v *Vector[T]) At(i int) *T {
	v.checkIndex(i)
	return v.data.At(i)
}

// Get returns element i, i < Size().
func (v *Vector[T]) Get(i int) T {
	return *v.At(i)
}

func (v *Vector[T]) Front() *T {
	return v.At(0)
}

func (v *Vector[T]) Back() *T {
	return v.At(v.size - 1)
}

// Slice returns the constructed elements as a slice sharing the block.
func (v *Vector[T]) Slice() []T {
	return v.data.Slots(0, v.size)
}

// Range calls fn for every element in order until fn returns false.
func (v *Vector[T]) Range(fn func(i int, elem *T) bool) {
	for i := 0; i < v.size; i++ {
		if !fn(i, v.data.At(i)) {
			return
		}
	}
}

func (v *Vector[T]) String() string {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i := 0; i < v.size; i++ {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(&buf, "%v", *v.data.At(i))
	}
	buf.WriteByte(']')
	return buf.String()
}

func (v *Vector[T]) traits() *rawmem.Traits[T] {
	return v.data.Traits()
}

func (v *Vector[T]) growCapacity() int {
	if c := v.data.Capacity(); c > 0 {
		return 2 * c
	}
	return 1
}

// relocate constructs dst[at, at+n) from the elements [from, from+n) of v
// following the relocation policy of T. On failure nothing in dst is left
// constructed.
func (v *Vector[T]) relocate(dst *rawmem.Storage[T], at, from, n int) error {
	tr := v.traits()
	return dst.ConstructN(at, n, func(k int, slot *T) error {
		return tr.Relocate(slot, v.data.At(from+k))
	})
}

// adopt destroys the elements of v and replaces its block with newData,
// whose slots [0, Size()) must already hold the relocated elements.
func (v *Vector[T]) adopt(newData *rawmem.Storage[T]) {
	if ce := logutil.GetGlobalLogger().Check(zap.DebugLevel, "vector reallocate"); ce != nil {
		ce.Write(
			zap.Int("size", v.size),
			zap.Int("from", v.data.Capacity()),
			zap.Int("to", newData.Capacity()),
		)
	}
	v.data.DestroyN(0, v.size)
	v.data.MoveFrom(newData)
}

// reallocInsert grows the block, constructs the new element at index i of
// the new block first, then relocates [0, i) and [i, size) around it.
func (v *Vector[T]) reallocInsert(i int, ctor func(slot *T) error) error {
	newData, err := rawmem.Allocate[T](v.growCapacity())
	if err != nil {
		return err
	}
	if err := newData.Construct(i, ctor); err != nil {
		newData.Release()
		return err
	}
	if err := v.relocate(&newData, 0, 0, i); err != nil {
		newData.Destroy(i)
		newData.Release()
		return err
	}
	if err := v.relocate(&newData, i+1, i, v.size-i); err != nil {
		newData.DestroyN(0, i+1)
		newData.Release()
		return err
	}
	v.adopt(&newData)
	v.size++
	return nil
}

// insertInPlace inserts before i, i < size < capacity.
func (v *Vector[T]) insertInPlace(i int, ctor func(slot *T) error) error {
	tr := v.traits()
	var tmp T
	if err := ctor(&tmp); err != nil {
		return err
	}
	defer tr.Destroy(&tmp)

	last := v.size - 1
	if err := v.data.Construct(v.size, func(slot *T) error {
		return tr.Move(slot, v.data.At(last))
	}); err != nil {
		return err
	}
	v.size++
	for j := last; j > i; j-- {
		if err := tr.MoveAssign(v.data.At(j), v.data.At(j-1)); err != nil {
			return err
		}
	}
	return tr.MoveAssign(v.data.At(i), &tmp)
}

func (v *Vector[T]) checkIndex(i int) {
	if rawmem.CheckerEnabled() && (i < 0 || i >= v.size) {
		panic(moerr.NewOutOfRangeNoCtx("index", "%d not in [0, %d)", i, v.size))
	}
}

func (v *Vector[T]) checkPosition(i int) {
	if rawmem.CheckerEnabled() && (i < 0 || i > v.size) {
		panic(moerr.NewOutOfRangeNoCtx("position", "%d not in [0, %d]", i, v.size))
	}
}
