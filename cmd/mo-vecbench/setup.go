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
	"context"

	"go.uber.org/zap"

	"github.com/matrixorigin/movec/pkg/common/malloc"
	"github.com/matrixorigin/movec/pkg/common/moerr"
	"github.com/matrixorigin/movec/pkg/container/rawmem"
	"github.com/matrixorigin/movec/pkg/logutil"
)

func setup(cfg *Config) {
	setupLogger(cfg)
	setupMalloc(cfg)
}

func setupLogger(cfg *Config) {
	logutil.SetupMOLogger(&cfg.Log)
	moerr.SetReportFunc(reportError)
}

func setupMalloc(cfg *Config) {
	malloc.SetupDefault(cfg.Malloc)
	rawmem.EnableChecker(cfg.Malloc.CheckSlots)
}

func reportError(_ context.Context, err *moerr.Error) {
	if ce := logutil.GetGlobalLogger().Check(zap.DebugLevel, "moerr"); ce != nil {
		ce.Write(
			zap.Uint16("code", err.ErrorCode()),
			zap.String("message", err.Error()),
		)
	}
}
