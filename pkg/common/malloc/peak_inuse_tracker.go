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
	"encoding/json"
	"sync/atomic"
	"time"
)

// PeakInuseTracker remembers the highest in-use byte count reported by a
// LimitAllocator and when it was reached.
type PeakInuseTracker struct {
	peak atomic.Pointer[peakSample]
}

type peakSample struct {
	Bytes uint64    `json:"bytes"`
	At    time.Time `json:"at"`
}

var GlobalPeakInuseTracker = NewPeakInuseTracker()

func NewPeakInuseTracker() *PeakInuseTracker {
	ret := new(PeakInuseTracker)
	ret.peak.Store(&peakSample{})
	return ret
}

func (p *PeakInuseTracker) UpdateMalloc(n uint64) {
	for {
		cur := p.peak.Load()
		if n <= cur.Bytes {
			return
		}
		if p.peak.CompareAndSwap(cur, &peakSample{Bytes: n, At: time.Now()}) {
			return
		}
	}
}

// Peak returns the highest in-use byte count seen and when it was reached.
func (p *PeakInuseTracker) Peak() (uint64, time.Time) {
	s := p.peak.Load()
	return s.Bytes, s.At
}

// Reset forgets the recorded peak.
func (p *PeakInuseTracker) Reset() {
	p.peak.Store(&peakSample{})
}

func (p *PeakInuseTracker) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.peak.Load())
}
