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

package vector

// Iterator is a position in a Vector. It stays meaningful across
// operations that keep the element at its index, but any reallocation or
// shift changes which element it denotes.
type Iterator[T any] struct {
	v *Vector[T]
	i int
}

// ConstIterator is an Iterator that only reads.
type ConstIterator[T any] struct {
	v *Vector[T]
	i int
}

// Begin returns an iterator to the first element.
func (v *Vector[T]) Begin() Iterator[T] {
	return Iterator[T]{v: v}
}

// End returns the past-the-end iterator.
func (v *Vector[T]) End() Iterator[T] {
	return Iterator[T]{v: v, i: v.size}
}

func (v *Vector[T]) CBegin() ConstIterator[T] {
	return ConstIterator[T]{v: v}
}

func (v *Vector[T]) CEnd() ConstIterator[T] {
	return ConstIterator[T]{v: v, i: v.size}
}

// IteratorAt returns an iterator to index i, 0 <= i <= Size().
func (v *Vector[T]) IteratorAt(i int) Iterator[T] {
	v.checkPosition(i)
	return Iterator[T]{v: v, i: i}
}

func (it Iterator[T]) Index() int {
	return it.i
}

// Value returns the address of the element it denotes.
func (it Iterator[T]) Value() *T {
	return it.v.At(it.i)
}

func (it Iterator[T]) Next() Iterator[T] {
	return Iterator[T]{v: it.v, i: it.i + 1}
}

func (it Iterator[T]) Prev() Iterator[T] {
	return Iterator[T]{v: it.v, i: it.i - 1}
}

func (it Iterator[T]) Add(n int) Iterator[T] {
	return Iterator[T]{v: it.v, i: it.i + n}
}

// Sub returns the distance from other to it. Both must belong to the same
// vector.
func (it Iterator[T]) Sub(other Iterator[T]) int {
	return it.i - other.i
}

func (it Iterator[T]) Equal(other Iterator[T]) bool {
	return it.v == other.v && it.i == other.i
}

func (it Iterator[T]) Less(other Iterator[T]) bool {
	return it.i < other.i
}

func (it Iterator[T]) Const() ConstIterator[T] {
	return ConstIterator[T]{v: it.v, i: it.i}
}

func (it ConstIterator[T]) Index() int {
	return it.i
}

// Value returns the element it denotes.
func (it ConstIterator[T]) Value() T {
	return *it.v.At(it.i)
}

func (it ConstIterator[T]) Next() ConstIterator[T] {
	return ConstIterator[T]{v: it.v, i: it.i + 1}
}

func (it ConstIterator[T]) Prev() ConstIterator[T] {
	return ConstIterator[T]{v: it.v, i: it.i - 1}
}

func (it ConstIterator[T]) Add(n int) ConstIterator[T] {
	return ConstIterator[T]{v: it.v, i: it.i + n}
}

func (it ConstIterator[T]) Sub(other ConstIterator[T]) int {
	return it.i - other.i
}

func (it ConstIterator[T]) Equal(other ConstIterator[T]) bool {
	return it.v == other.v && it.i == other.i
}

func (it ConstIterator[T]) Less(other ConstIterator[T]) bool {
	return it.i < other.i
}
