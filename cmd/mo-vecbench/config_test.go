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
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/matrixorigin/movec/pkg/common/moerr"
)

func writeConfig(t *testing.T, content string) string {
	file := filepath.Join(t.TempDir(), "vecbench.toml")
	require.NoError(t, os.WriteFile(file, []byte(content), 0o644))
	return file
}

func TestParseConfig(t *testing.T) {
	file := writeConfig(t, `
[log]
level = "debug"
format = "json"

[malloc]
limit = 1048576
enable-metrics = true
check-slots = true

[bench]
workers = 8
rounds = 2
ops = 1000
elem-bytes = 16
seed = 42
metrics-addr = ":7001"
`)
	cfg, err := parseConfigFromFile(file)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, uint64(1048576), cfg.Malloc.Limit)
	require.True(t, cfg.Malloc.EnableMetrics)
	require.True(t, cfg.Malloc.CheckSlots)
	require.Equal(t, BenchConfig{
		Workers:     8,
		Rounds:      2,
		Ops:         1000,
		ElemBytes:   16,
		Seed:        42,
		MetricsAddr: ":7001",
	}, cfg.Bench)
}

func TestParseConfigDefaults(t *testing.T) {
	cfg, err := parseConfigFromFile("")
	require.NoError(t, err)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "console", cfg.Log.Format)
	require.Equal(t, defaultWorkers, cfg.Bench.Workers)
	require.Equal(t, defaultRounds, cfg.Bench.Rounds)
	require.Equal(t, defaultOps, cfg.Bench.Ops)
	require.Equal(t, defaultElemBytes, cfg.Bench.ElemBytes)
	require.Equal(t, int64(defaultSeed), cfg.Bench.Seed)
	require.Equal(t, uint64(0), cfg.Malloc.Limit)

	cfg, err = parseConfigFromFile(writeConfig(t, "[bench]\nworkers = 2\n"))
	require.NoError(t, err)
	require.Equal(t, 2, cfg.Bench.Workers)
	require.Equal(t, defaultOps, cfg.Bench.Ops)
}

func TestParseConfigErrors(t *testing.T) {
	kases := []struct {
		name    string
		content string
		code    uint16
	}{
		{"syntax", "[bench\nworkers = 1", moerr.ErrBadConfig},
		{"type", "[bench]\nworkers = \"many\"", moerr.ErrBadConfig},
		{"workers", "[bench]\nworkers = -1", moerr.ErrBadConfig},
		{"ops", "[bench]\nops = -5", moerr.ErrBadConfig},
		{"elem bytes", "[bench]\nelem-bytes = -5", moerr.ErrBadConfig},
		{"log format", "[log]\nformat = \"xml\"", moerr.ErrBadConfig},
	}
	for _, kase := range kases {
		t.Run(kase.name, func(t *testing.T) {
			_, err := parseConfigFromFile(writeConfig(t, kase.content))
			require.True(t, moerr.IsMoErrCode(err, kase.code), "%v", err)
		})
	}

	_, err := parseConfigFromFile(filepath.Join(t.TempDir(), "missing.toml"))
	require.True(t, moerr.IsMoErrCode(err, moerr.ErrFileNotFound))
}
