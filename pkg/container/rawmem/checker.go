// Copyright 2023 Matrix Origin
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
	"fmt"
	"sync/atomic"

	"github.com/RoaringBitmap/roaring"
)

var enableChecker atomic.Bool

// EnableChecker turns slot state checking on or off for storages allocated
// afterwards. A checked storage panics on double construction, destruction
// or access of an unconstructed slot, and release with constructed slots.
func EnableChecker(enable bool) {
	enableChecker.Store(enable)
}

func CheckerEnabled() bool {
	return enableChecker.Load()
}

// slotChecker records which slots of one block are constructed.
type slotChecker struct {
	typ  string
	live *roaring.Bitmap
}

func newSlotChecker[T any]() *slotChecker {
	if !enableChecker.Load() {
		return nil
	}
	var v T
	return &slotChecker{
		typ:  fmt.Sprintf("%T", &v),
		live: roaring.New(),
	}
}

func (c *slotChecker) constructed(i int) {
	if c == nil {
		return
	}
	if !c.live.CheckedAdd(uint32(i)) {
		panic(fmt.Sprintf("double construct of slot %d for type: %s", i, c.typ))
	}
}

func (c *slotChecker) destroyed(i int) {
	if c == nil {
		return
	}
	if !c.live.CheckedRemove(uint32(i)) {
		panic(fmt.Sprintf("destroy of unconstructed slot %d for type: %s", i, c.typ))
	}
}

func (c *slotChecker) accessed(i int) {
	if c == nil {
		return
	}
	if !c.live.Contains(uint32(i)) {
		panic(fmt.Sprintf("access of unconstructed slot %d for type: %s", i, c.typ))
	}
}

func (c *slotChecker) released() {
	if c == nil {
		return
	}
	if n := c.liveCount(); n > 0 {
		panic(fmt.Sprintf("release with %d constructed slots for type: %s, first: %d",
			n, c.typ, c.live.Minimum()))
	}
}

func (c *slotChecker) liveCount() int {
	if c == nil {
		return -1
	}
	return int(c.live.GetCardinality())
}
