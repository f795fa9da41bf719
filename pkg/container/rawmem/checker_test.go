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
	"testing"

	"github.com/stretchr/testify/require"
)

func withChecker(t *testing.T) {
	prev := CheckerEnabled()
	EnableChecker(true)
	t.Cleanup(func() {
		EnableChecker(prev)
	})
}

func TestCheckerDisabled(t *testing.T) {
	EnableChecker(false)
	s, err := Allocate[int](2)
	require.NoError(t, err)
	require.Equal(t, -1, s.checker.liveCount())
	// unconstructed access is not checked
	require.Equal(t, 0, *s.At(1))
	s.Release()
}

func TestCheckerTracksSlots(t *testing.T) {
	withChecker(t)

	s, err := Allocate[int](4)
	require.NoError(t, err)
	require.NoError(t, s.ConstructN(0, 3, func(k int, slot *int) error {
		*slot = k
		return nil
	}))
	require.Equal(t, 3, s.checker.liveCount())

	s.Destroy(1)
	require.Equal(t, 2, s.checker.liveCount())

	require.PanicsWithValue(t,
		"access of unconstructed slot 1 for type: *int",
		func() { s.At(1) })
	require.PanicsWithValue(t,
		"destroy of unconstructed slot 3 for type: *int",
		func() { s.Destroy(3) })
	require.PanicsWithValue(t,
		"double construct of slot 0 for type: *int",
		func() {
			_ = s.Construct(0, func(*int) error { return nil })
		})
	require.PanicsWithValue(t,
		"release with 2 constructed slots for type: *int, first: 0",
		func() { s.Release() })

	s.Destroy(0)
	s.Destroy(2)
	s.Release()
}

func TestCheckerFollowsSwap(t *testing.T) {
	withChecker(t)

	s1, err := Allocate[int](1)
	require.NoError(t, err)
	var s2 Storage[int]
	require.NoError(t, s1.Construct(0, func(slot *int) error {
		*slot = 5
		return nil
	}))
	s2.Swap(&s1)
	require.Equal(t, 5, *s2.At(0))
	s2.Destroy(0)
	s2.Release()
	s1.Release()
}
