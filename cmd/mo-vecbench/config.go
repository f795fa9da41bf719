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
	"os"

	"github.com/BurntSushi/toml"

	"github.com/matrixorigin/movec/pkg/common/malloc"
	"github.com/matrixorigin/movec/pkg/common/moerr"
	"github.com/matrixorigin/movec/pkg/logutil"
)

const (
	defaultWorkers   = 4
	defaultRounds    = 16
	defaultOps       = 100000
	defaultElemBytes = 64
	defaultSeed      = 1
)

// Config is the mo-vecbench configuration.
type Config struct {
	Log    logutil.LogConfig `toml:"log"`
	Malloc malloc.Config     `toml:"malloc"`
	Bench  BenchConfig       `toml:"bench"`
}

// BenchConfig describes the workload.
type BenchConfig struct {
	// Workers is the size of the worker pool. Each round submits one task
	// per worker.
	Workers int `toml:"workers"`
	Rounds  int `toml:"rounds"`
	// Ops is the number of vector operations performed by one task.
	Ops int `toml:"ops"`
	// ElemBytes is the size of the buffer owned by each element.
	ElemBytes int   `toml:"elem-bytes"`
	Seed      int64 `toml:"seed"`
	// MetricsAddr serves prometheus metrics at /metrics when not empty.
	MetricsAddr string `toml:"metrics-addr"`
}

func parseConfigFromFile(file string) (*Config, error) {
	cfg := &Config{}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, moerr.NewFileNotFound(moerr.Context(), file)
			}
			return nil, moerr.ConvertGoError(moerr.Context(), err)
		}
		if _, err := toml.Decode(string(data), cfg); err != nil {
			return nil, moerr.NewBadConfigNoCtx("%v", err)
		}
	}
	cfg.setDefaultValue()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) setDefaultValue() {
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "console"
	}
	if c.Bench.Workers == 0 {
		c.Bench.Workers = defaultWorkers
	}
	if c.Bench.Rounds == 0 {
		c.Bench.Rounds = defaultRounds
	}
	if c.Bench.Ops == 0 {
		c.Bench.Ops = defaultOps
	}
	if c.Bench.ElemBytes == 0 {
		c.Bench.ElemBytes = defaultElemBytes
	}
	if c.Bench.Seed == 0 {
		c.Bench.Seed = defaultSeed
	}
}

func (c *Config) validate() error {
	switch {
	case c.Bench.Workers < 0:
		return moerr.NewBadConfigNoCtx("bench.workers must be positive, got %d", c.Bench.Workers)
	case c.Bench.Rounds < 0:
		return moerr.NewBadConfigNoCtx("bench.rounds must be positive, got %d", c.Bench.Rounds)
	case c.Bench.Ops < 0:
		return moerr.NewBadConfigNoCtx("bench.ops must be positive, got %d", c.Bench.Ops)
	case c.Bench.ElemBytes < 0:
		return moerr.NewBadConfigNoCtx("bench.elem-bytes must not be negative, got %d", c.Bench.ElemBytes)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return moerr.NewBadConfigNoCtx("unsupported log format: %s", c.Log.Format)
	}
	return nil
}
