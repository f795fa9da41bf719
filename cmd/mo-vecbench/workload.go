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

package main

import (
	"bytes"
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/matrixorigin/movec/pkg/common/malloc"
	"github.com/matrixorigin/movec/pkg/common/moerr"
	"github.com/matrixorigin/movec/pkg/container/vector"
	"github.com/matrixorigin/movec/pkg/logutil"
)

// opCounters is owned by a single task.
type opCounters struct {
	copies int
	moves  int
}

// payload owns a buffer filled with its id. Copies duplicate the buffer,
// moves hand it over.
type payload struct {
	id  int
	buf []byte
	c   *opCounters
}

func newPayload(c *opCounters, id, n int) payload {
	return payload{
		id:  id,
		buf: bytes.Repeat([]byte{byte(id)}, n),
		c:   c,
	}
}

func (p *payload) CopyFrom(src *payload) error {
	if src.c != nil {
		src.c.copies++
	}
	p.id = src.id
	p.buf = bytes.Clone(src.buf)
	p.c = src.c
	return nil
}

func (p *payload) MoveFrom(src *payload) error {
	if src.c != nil {
		src.c.moves++
	}
	*p = *src
	*src = payload{}
	return nil
}

func (p *payload) NoFailMove() {}

func (p *payload) valid() bool {
	if p.id == 0 {
		return p.buf == nil
	}
	for _, b := range p.buf {
		if b != byte(p.id) {
			return false
		}
	}
	return true
}

type taskResult struct {
	ops     int
	copies  int
	moves   int
	maxSize int
}

type summary struct {
	tasks   int
	ops     int
	copies  int
	moves   int
	maxSize int
	elapsed time.Duration
	// peakInuse is only known when a malloc limit is configured.
	peakInuse uint64
}

func (s summary) fields() []zap.Field {
	return []zap.Field{
		zap.Int("tasks", s.tasks),
		zap.Int("ops", s.ops),
		zap.Int("copies", s.copies),
		zap.Int("moves", s.moves),
		zap.Int("max size", s.maxSize),
		zap.Duration("elapsed", s.elapsed),
		zap.Uint64("peak inuse", s.peakInuse),
	}
}

var runTaskFunc = runTask

// run submits Workers * Rounds tasks to a worker pool and waits for them.
// The first task error is returned after every task has finished.
func run(ctx context.Context, cfg BenchConfig) (summary, error) {
	pool, err := ants.NewPool(cfg.Workers)
	if err != nil {
		return summary{}, err
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		total    summary
		firstErr error
	)
	malloc.GlobalPeakInuseTracker.Reset()
	start := time.Now()
	for r := 0; r < cfg.Rounds; r++ {
		for w := 0; w < cfg.Workers; w++ {
			seed := cfg.Seed + int64(r*cfg.Workers+w)
			wg.Add(1)
			err := pool.Submit(func() {
				defer wg.Done()
				res, err := runTaskFunc(ctx, seed, cfg)
				mu.Lock()
				defer mu.Unlock()
				if err != nil {
					taskCounter.WithLabelValues("failed").Inc()
					if firstErr == nil {
						firstErr = err
					}
					return
				}
				taskCounter.WithLabelValues("ok").Inc()
				total.tasks++
				total.ops += res.ops
				total.copies += res.copies
				total.moves += res.moves
				total.maxSize = max(total.maxSize, res.maxSize)
			})
			if err != nil {
				wg.Done()
				wg.Wait()
				return summary{}, err
			}
		}
	}
	wg.Wait()
	total.elapsed = time.Since(start)
	total.peakInuse, _ = malloc.GlobalPeakInuseTracker.Peak()
	return total, firstErr
}

// runTask drives one vector through cfg.Ops random operations and checks
// it against a slice of ids after each round of operations.
func runTask(ctx context.Context, seed int64, cfg BenchConfig) (res taskResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = moerr.ConvertPanicError(ctx, r)
		}
	}()

	rnd := rand.New(rand.NewSource(seed))
	c := &opCounters{}
	v := vector.New[payload]()
	defer v.Free()

	var model []int
	nextID := 0
	newID := func() int {
		nextID++
		return nextID
	}

	for i := 0; i < cfg.Ops; i++ {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return res, err
			}
		}
		switch op := rnd.Intn(16); {
		case op < 6:
			id := newID()
			if err := v.PushBack(newPayload(c, id, cfg.ElemBytes)); err != nil {
				return res, err
			}
			model = append(model, id)
		case op < 8:
			id := newID()
			at := rnd.Intn(len(model) + 1)
			if _, err := v.Insert(v.CBegin().Add(at), newPayload(c, id, cfg.ElemBytes)); err != nil {
				return res, err
			}
			model = append(model, 0)
			copy(model[at+1:], model[at:])
			model[at] = id
		case op < 10 && len(model) > 0:
			at := rnd.Intn(len(model))
			if _, err := v.Erase(v.CBegin().Add(at)); err != nil {
				return res, err
			}
			model = append(model[:at], model[at+1:]...)
		case op < 12 && len(model) > 0:
			v.PopBack()
			model = model[:len(model)-1]
		case op == 12:
			if err := v.Reserve(len(model) + rnd.Intn(64)); err != nil {
				return res, err
			}
		case op == 13:
			n := rnd.Intn(len(model) + 8)
			if err := v.Resize(n); err != nil {
				return res, err
			}
			for len(model) < n {
				model = append(model, 0)
			}
			model = model[:n]
		case op == 14 && len(model) < 4096:
			cp, err := v.Clone()
			if err != nil {
				return res, err
			}
			err = verify(cp, model)
			cp.Free()
			if err != nil {
				return res, err
			}
		default:
			if len(model) > 0 {
				at := rnd.Intn(len(model))
				if got := v.At(at).id; got != model[at] {
					return res, moerr.NewInvalidStateNoCtx("element %d is %d, expect %d", at, got, model[at])
				}
			}
		}
		res.maxSize = max(res.maxSize, v.Size())
	}
	if err := verify(v, model); err != nil {
		return res, err
	}

	res.ops = cfg.Ops
	res.copies = c.copies
	res.moves = c.moves
	if ce := logutil.GetGlobalLogger().Check(zap.DebugLevel, "task done"); ce != nil {
		ce.Write(
			zap.Int64("seed", seed),
			zap.Int("size", v.Size()),
			zap.Int("capacity", v.Capacity()),
		)
	}
	return res, nil
}

func verify(v *vector.Vector[payload], model []int) error {
	if v.Size() != len(model) {
		return moerr.NewInvalidStateNoCtx("size %d, expect %d", v.Size(), len(model))
	}
	var err error
	v.Range(func(i int, p *payload) bool {
		switch {
		case p.id != model[i]:
			err = moerr.NewInvalidStateNoCtx("element %d is %d, expect %d", i, p.id, model[i])
		case !p.valid():
			err = moerr.NewInvalidStateNoCtx("element %d has a corrupted buffer", i)
		}
		return err == nil
	})
	return err
}
