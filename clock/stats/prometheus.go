/*
Copyright (c) Facebook, Inc. and its affiliates.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package stats

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// PrometheusStats implements the Stats interface and exposes metrics for
// prometheus to scrape
type PrometheusStats struct {
	registry *prometheus.Registry
	requests prometheus.Counter
	failures prometheus.Counter
	offset   prometheus.Gauge
	lastSync prometheus.Gauge
}

// NewPrometheusStats registers the sync metrics on a fresh registry
func NewPrometheusStats() *PrometheusStats {
	s := &PrometheusStats{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sysclock_sync_requests_total",
			Help: "Number of attempted exchanges with the time server",
		}),
		failures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "sysclock_sync_failures_total",
			Help: "Number of exchanges that produced no usable timestamps",
		}),
		offset: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sysclock_offset_seconds",
			Help: "Last computed clock offset in seconds",
		}),
		lastSync: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "sysclock_last_sync_seconds",
			Help: "System time of the last successful sync, seconds from the prime epoch",
		}),
	}
	s.registry.MustRegister(s.requests, s.failures, s.offset, s.lastSync)
	return s
}

// Start serves the /metrics endpoint
func (s *PrometheusStats) Start(port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	addr := fmt.Sprintf(":%d", port)
	log.Debugf("Starting prometheus exporter on %s", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Errorf("Failed to start listener: %v", err)
	}
}

// IncRequests adds 1 to the requests counter
func (s *PrometheusStats) IncRequests() {
	s.requests.Inc()
}

// IncFailures adds 1 to the failures counter
func (s *PrometheusStats) IncFailures() {
	s.failures.Inc()
}

// SetOffset sets the last offset gauge
func (s *PrometheusStats) SetOffset(secs float64) {
	s.offset.Set(secs)
}

// SetLastSync sets the last sync gauge
func (s *PrometheusStats) SetLastSync(secs int64) {
	s.lastSync.Set(float64(secs))
}
