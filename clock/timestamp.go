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

package clock

import (
	"time"
)

var monoStart = time.Now()

// monotonicMillis returns milliseconds elapsed since process start. It is a
// package variable so tests can substitute a deterministic source.
var monotonicMillis = func() uint64 {
	return uint64(time.Since(monoStart) / time.Millisecond)
}

// Timestamp pairs an Instant with the local millisecond tick at which it was
// last current. Updating folds elapsed milliseconds into the Instant for
// drift extrapolation between NTP synchronizations; the creation stamp is
// preserved for elapsed-time measurement.
type Timestamp struct {
	instant Instant
	millis  uint64
	stamp   uint64
}

// NewTimestamp stamps an Instant with the current millisecond tick
func NewTimestamp(i Instant) Timestamp {
	m := monotonicMillis()
	return Timestamp{instant: i, millis: m, stamp: m}
}

// Instant returns the Instant this Timestamp refers to
func (t Timestamp) Instant() Instant {
	return t.instant
}

// Millis returns the millisecond tick of the last update
func (t Timestamp) Millis() uint64 {
	return t.millis
}

// StampMillis returns the millisecond tick at creation or last re-stamp
func (t Timestamp) StampMillis() uint64 {
	return t.stamp
}

// Update folds milliseconds elapsed since the last update into the Instant
// and returns the result. The creation stamp is unchanged.
func (t Timestamp) Update() Timestamp {
	now := monotonicMillis()
	elapsed := now - t.millis
	t.instant = t.instant.AddSeconds(int64(elapsed / 1000)).AddMillis(uint32(elapsed % 1000))
	t.millis = now
	return t
}

// Stamp updates ref to the current tick and re-stamps it, producing a fresh
// Timestamp whose Instant reflects real elapsed local time since ref
func Stamp(ref Timestamp) Timestamp {
	t := ref.Update()
	t.stamp = t.millis
	return t
}

// AddInstant shifts the Instant without touching the stamps, e.g. when
// applying a clock offset or a timezone shift
func (t Timestamp) AddInstant(d Instant) Timestamp {
	t.instant = t.instant.Add(d)
	return t
}

// SubInstant shifts the Instant backward without touching the stamps
func (t Timestamp) SubInstant(d Instant) Timestamp {
	t.instant = t.instant.Sub(d)
	return t
}
