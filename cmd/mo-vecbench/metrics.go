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
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/matrixorigin/movec/pkg/common/malloc"
	"github.com/matrixorigin/movec/pkg/logutil"
)

var taskCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "mo",
		Subsystem: "vecbench",
		Name:      "tasks_total",
		Help:      "Total number of finished workload tasks.",
	}, []string{"result"})

func newRegistry() (*prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	if err := malloc.RegisterMetrics(reg); err != nil {
		return nil, err
	}
	for _, c := range []prometheus.Collector{
		taskCounter,
		collectors.NewGoCollector(),
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// startMetricsServer serves /metrics on addr and returns a func that shuts
// the server down, plus the bound address. An empty addr serves nothing.
func startMetricsServer(addr string) (func(), string, error) {
	if addr == "" {
		return func() {}, "", nil
	}
	reg, err := newRegistry()
	if err != nil {
		return nil, "", err
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, "", err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logutil.Error("metrics listener failed", zap.Error(err))
		}
	}()

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logutil.Warn("metrics server shutdown", zap.Error(err))
		}
		<-done
	}
	return stop, ln.Addr().String(), nil
}
