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
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/matrixorigin/movec/pkg/logutil"
)

var (
	configFile = flag.String("cfg", "", "toml configuration used to run mo-vecbench")
	version    = flag.Bool("version", false, "print version information")
)

// Set with -ldflags at build time.
var (
	Version   = "dev"
	CommitID  = "unknown"
	BuildTime = "unknown"
)

func main() {
	flag.Parse()
	maybePrintVersion()

	cfg, err := parseConfigFromFile(*configFile)
	if err != nil {
		panic(fmt.Sprintf("failed to parse config from %s, error: %s", *configFile, err.Error()))
	}
	setup(cfg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	stopMetrics, addr, err := startMetricsServer(cfg.Bench.MetricsAddr)
	if err != nil {
		logutil.Fatal("failed to start metrics server", zap.Error(err))
	}
	if addr != "" {
		logutil.Info("metrics server started", zap.String("addr", addr))
	}

	summary, err := run(ctx, cfg.Bench)
	stopMetrics()
	if err != nil {
		logutil.Error("vecbench failed", zap.Error(err))
		os.Exit(1)
	}
	logutil.Info("vecbench done", summary.fields()...)
}

func maybePrintVersion() {
	if !*version {
		return
	}
	fmt.Printf("mo-vecbench %s\n", Version)
	fmt.Printf("commit: %s\n", CommitID)
	fmt.Printf("build time: %s\n", BuildTime)
	os.Exit(0)
}
