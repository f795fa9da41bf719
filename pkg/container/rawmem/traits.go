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

package rawmem

import (
	"reflect"
	"sync"

	"github.com/matrixorigin/movec/pkg/common/moerr"
)

// The interfaces below are optional capabilities of an element type T,
// implemented on *T. A type implementing none of them behaves like a plain
// Go value: zero value on construction, assignment on copy, and a move that
// leaves the source zeroed and never fails.

// Initializer default-constructs an unconstructed (zero) receiver.
type Initializer interface {
	Init() error
}

// Copier copy-constructs an unconstructed (zero) receiver from src.
type Copier[T any] interface {
	CopyFrom(src *T) error
}

// Assigner copy-assigns src into a constructed receiver.
type Assigner[T any] interface {
	AssignFrom(src *T) error
}

// Mover move-constructs an unconstructed (zero) receiver from src. src stays
// constructed in a moved-from state and is destroyed later.
type Mover[T any] interface {
	MoveFrom(src *T) error
}

// NoFailMover marks a Mover whose MoveFrom never returns an error.
type NoFailMover interface {
	NoFailMove()
}

// MoveOnly marks a type that cannot be copied.
type MoveOnly interface {
	MoveOnly()
}

// Destroyer releases what the element holds. Destroy must accept a zero
// value and a moved-from value.
type Destroyer interface {
	Destroy()
}

// Traits is the resolved set of slot operations for T. It is computed once
// per element type; see TraitsOf.
type Traits[T any] struct {
	init     func(*T) error
	copy     func(dst, src *T) error
	assign   func(dst, src *T) error
	move     func(dst, src *T) error
	destroy  func(*T)
	relocate func(dst, src *T) error

	copyable   bool
	noFailMove bool
}

var traitsCache sync.Map // reflect.Type -> *Traits[T]

// TraitsOf returns the cached traits of T.
func TraitsOf[T any]() *Traits[T] {
	key := reflect.TypeOf((*T)(nil)).Elem()
	if v, ok := traitsCache.Load(key); ok {
		return v.(*Traits[T])
	}
	v, _ := traitsCache.LoadOrStore(key, resolveTraits[T]())
	return v.(*Traits[T])
}

func resolveTraits[T any]() *Traits[T] {
	var probe any = (*T)(nil)
	t := &Traits[T]{}

	if _, ok := probe.(Destroyer); ok {
		t.destroy = func(p *T) {
			any(p).(Destroyer).Destroy()
		}
	} else {
		t.destroy = func(*T) {}
	}

	if _, ok := probe.(Initializer); ok {
		t.init = func(p *T) error {
			return any(p).(Initializer).Init()
		}
	} else {
		t.init = func(*T) error { return nil }
	}

	_, moveOnly := probe.(MoveOnly)
	t.copyable = !moveOnly
	_, copier := probe.(Copier[T])
	_, assigner := probe.(Assigner[T])
	switch {
	case moveOnly:
		t.copy = func(dst, src *T) error {
			return moerr.NewNotSupportedNoCtx("copy of move-only element %T", *src)
		}
		t.assign = t.copy
	case copier:
		t.copy = func(dst, src *T) error {
			return any(dst).(Copier[T]).CopyFrom(src)
		}
	default:
		t.copy = func(dst, src *T) error {
			*dst = *src
			return nil
		}
	}
	switch {
	case moveOnly:
	case assigner:
		t.assign = func(dst, src *T) error {
			return any(dst).(Assigner[T]).AssignFrom(src)
		}
	default:
		t.assign = func(dst, src *T) error {
			t.reset(dst)
			return t.copy(dst, src)
		}
	}

	if _, ok := probe.(Mover[T]); ok {
		t.move = func(dst, src *T) error {
			return any(dst).(Mover[T]).MoveFrom(src)
		}
		_, t.noFailMove = probe.(NoFailMover)
	} else {
		t.move = func(dst, src *T) error {
			var zero T
			*dst = *src
			*src = zero
			return nil
		}
		t.noFailMove = true
	}

	if t.noFailMove || !t.copyable {
		t.relocate = t.move
	} else {
		t.relocate = t.copy
	}
	return t
}

// reset destroys *p and leaves the zero value behind.
func (t *Traits[T]) reset(p *T) {
	t.destroy(p)
	var zero T
	*p = zero
}

// Init default-constructs *dst.
func (t *Traits[T]) Init(dst *T) error {
	return t.init(dst)
}

// Copy copy-constructs *dst from *src.
func (t *Traits[T]) Copy(dst, src *T) error {
	return t.copy(dst, src)
}

// Assign copy-assigns *src into the constructed *dst.
func (t *Traits[T]) Assign(dst, src *T) error {
	return t.assign(dst, src)
}

// Move move-constructs *dst from *src.
func (t *Traits[T]) Move(dst, src *T) error {
	return t.move(dst, src)
}

// MoveAssign destroys the constructed *dst, then move-constructs it from *src.
func (t *Traits[T]) MoveAssign(dst, src *T) error {
	t.reset(dst)
	return t.move(dst, src)
}

// Destroy destroys the constructed *p and leaves the zero value behind.
func (t *Traits[T]) Destroy(p *T) {
	t.reset(p)
}

// Relocate constructs *dst from *src following the relocation policy: by
// move if the move cannot fail or T cannot be copied, by copy otherwise.
func (t *Traits[T]) Relocate(dst, src *T) error {
	return t.relocate(dst, src)
}

// Copyable reports whether T can be copied, i.e. it is not MoveOnly.
func (t *Traits[T]) Copyable() bool {
	return t.copyable
}

// NoFailMove reports whether moving a T never fails: T is a NoFailMover
// or uses the default move.
func (t *Traits[T]) NoFailMove() bool {
	return t.noFailMove
}

// RelocatesByMove reports whether Relocate moves rather than copies.
func (t *Traits[T]) RelocatesByMove() bool {
	return t.noFailMove || !t.copyable
}
