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

/*
Package stats implements statistics collection and reporting for the
clock synchronization loop: how many exchanges ran, how many failed and
what the last computed offset was.
*/
package stats

// Stats is a metric collection interface fed by the synchronization loop
type Stats interface {
	// IncRequests counts an attempted exchange with the time server
	IncRequests()
	// IncFailures counts an exchange that produced no usable timestamps
	IncFailures()
	// SetOffset records the last computed clock offset in seconds
	SetOffset(secs float64)
	// SetLastSync records the system time of the last successful sync
	SetLastSync(secs int64)
}

// Noop is a Stats implementation which does nothing
type Noop struct{}

// IncRequests does nothing
func (n *Noop) IncRequests() {}

// IncFailures does nothing
func (n *Noop) IncFailures() {}

// SetOffset does nothing
func (n *Noop) SetOffset(_ float64) {}

// SetLastSync does nothing
func (n *Noop) SetLastSync(_ int64) {}
