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
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
)

// JSONStats implements the Stats interface and reports metrics via a
// plain JSON http endpoint. This is a passive implementation, only Start
// needs to be called.
type JSONStats struct {
	// keep these aligned to 64-bit for sync/atomic
	requests   int64
	failures   int64
	lastSync   int64
	offsetBits uint64
}

// toMap converts struct to a map
func (j *JSONStats) toMap() (export map[string]float64) {
	export = make(map[string]float64)

	export["requests"] = float64(atomic.LoadInt64(&j.requests))
	export["failures"] = float64(atomic.LoadInt64(&j.failures))
	export["lastsync"] = float64(atomic.LoadInt64(&j.lastSync))
	export["offset"] = math.Float64frombits(atomic.LoadUint64(&j.offsetBits))

	return export
}

// handleRequest is a handler used for all http monitoring requests
func (j *JSONStats) handleRequest(w http.ResponseWriter, _ *http.Request) {
	js, err := json.Marshal(j.toMap())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err = w.Write(js); err != nil {
		log.Errorf("Failed to reply: %v", err)
	}
}

// Start launches the http monitoring endpoint
func (j *JSONStats) Start(port int) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", j.handleRequest)
	addr := fmt.Sprintf(":%d", port)
	log.Debugf("Starting http json server on %s", addr)
	err := http.ListenAndServe(addr, mux)
	if err != nil {
		log.Errorf("Failed to start listener: %v", err)
	}
}

// IncRequests atomically add 1 to the counter
func (j *JSONStats) IncRequests() {
	atomic.AddInt64(&j.requests, 1)
}

// IncFailures atomically add 1 to the counter
func (j *JSONStats) IncFailures() {
	atomic.AddInt64(&j.failures, 1)
}

// SetOffset atomically sets the last offset gauge
func (j *JSONStats) SetOffset(secs float64) {
	atomic.StoreUint64(&j.offsetBits, math.Float64bits(secs))
}

// SetLastSync atomically sets the last sync gauge
func (j *JSONStats) SetLastSync(secs int64) {
	atomic.StoreInt64(&j.lastSync, secs)
}
