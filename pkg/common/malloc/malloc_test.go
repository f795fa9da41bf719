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

	"github.com/stretchr/testify/require"
)

type countingAllocator struct {
	sizes       []uint64
	deallocated int
}

func (c *countingAllocator) Allocate(size uint64) (Deallocator, error) {
	c.sizes = append(c.sizes, size)
	return DeallocatorFunc(func() {
		c.deallocated++
	}), nil
}

func TestMakeSlots(t *testing.T) {
	a := new(countingAllocator)

	slots, dec, err := MakeSlots[int64](a, 0)
	require.NoError(t, err)
	require.Nil(t, slots)
	require.Nil(t, dec)
	require.Empty(t, a.sizes)

	slots, dec, err = MakeSlots[int64](a, 4)
	require.NoError(t, err)
	require.Equal(t, 4, len(slots))
	require.Equal(t, []int64{0, 0, 0, 0}, slots)
	require.Equal(t, []uint64{32}, a.sizes)
	dec.Deallocate()
	require.Equal(t, 1, a.deallocated)

	type pair struct {
		a int32
		b *int
	}
	_, _, err = MakeSlots[pair](a, 2)
	require.NoError(t, err)
	require.Equal(t, SizeOf[pair](2), a.sizes[1])
}

func TestChainDeallocator(t *testing.T) {
	var order []int
	d1 := DeallocatorFunc(func() { order = append(order, 1) })
	d2 := DeallocatorFunc(func() { order = append(order, 2) })
	d3 := DeallocatorFunc(func() { order = append(order, 3) })

	single := ChainDeallocator(nil, d1)
	single.Deallocate()
	require.Equal(t, []int{1}, order)

	order = order[:0]
	ChainDeallocator(ChainDeallocator(d1, d2), nil, d3).Deallocate()
	require.Equal(t, []int{1, 2, 3}, order)
}

func TestClosureDeallocatorPool(t *testing.T) {
	var got []string
	pool := NewClosureDeallocatorPool(func(s string) {
		got = append(got, s)
	})
	pool.Get("a").Deallocate()
	pool.Get("b").Deallocate()
	require.Equal(t, []string{"a", "b"}, got)
}

func TestSetDefault(t *testing.T) {
	a := new(countingAllocator)
	prev := SetDefault(a)
	defer SetDefault(prev)

	require.Equal(t, a, GetDefault())
	_, _, err := MakeSlots[byte](GetDefault(), 8)
	require.NoError(t, err)
	require.Equal(t, []uint64{8}, a.sizes)
}

func TestPeakInuseTracker(t *testing.T) {
	tracker := NewPeakInuseTracker()
	tracker.UpdateMalloc(10)
	tracker.UpdateMalloc(5)
	v, at := tracker.Peak()
	require.Equal(t, uint64(10), v)
	require.False(t, at.IsZero())

	tracker.UpdateMalloc(20)
	v, _ = tracker.Peak()
	require.Equal(t, uint64(20), v)

	data, err := tracker.MarshalJSON()
	require.NoError(t, err)
	require.Contains(t, string(data), `"bytes":20`)

	tracker.Reset()
	v, at = tracker.Peak()
	require.Equal(t, uint64(0), v)
	require.True(t, at.IsZero())
}
