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

// TimerHandler is the unit of work run when a Timer expires
type TimerHandler func()

// Timer is a cooperative interval timer. It owns no goroutine; progress is
// made only when the host loop calls Tick. The handler runs once per
// expiration; restart the Timer from inside the handler for periodic work.
// A stopped Timer remembers its remaining time and runs it out on the next
// Start.
type Timer struct {
	millis      uint64 // tick of the last Start, 0 when stopped
	setPoint    uint64 // configured duration in ms
	limit       uint64 // tick at which the timer expires, 0 when stopped
	stoppage    uint64 // remaining ms recorded at the last Stop
	pauseMillis uint64 // tick at pause, 0 when not paused
	pauseLimit  uint64 // tick at which the pause expires
	handler     TimerHandler
}

// Set configures the duration from hours, minutes and seconds, resetting any
// remaining time from a previous run. Negative components count as zero.
func (t *Timer) Set(h, m, s int) {
	if h < 0 {
		h = 0
	}
	if m < 0 {
		m = 0
	}
	if s < 0 {
		s = 0
	}
	t.SetMillis(uint64(s)*1000 + uint64(m)*60000 + uint64(h)*3600000)
}

// SetMillis configures the duration in milliseconds
func (t *Timer) SetMillis(millis uint64) {
	t.setPoint = millis
	t.stoppage = millis
}

// SetHandler installs the expiration callback
func (t *Timer) SetHandler(h TimerHandler) {
	t.handler = h
}

// Start runs the timer; if it was paused the pause is cancelled
func (t *Timer) Start() {
	if t.Stopped() {
		t.millis = monotonicMillis()
		t.pauseMillis = 0
		t.pauseLimit = 0
		t.limit = t.millis + t.stoppage
	}
}

// Started reports whether the timer is running
func (t *Timer) Started() bool {
	return t.millis != 0
}

// Stopped reports whether the timer is not running
func (t *Timer) Stopped() bool {
	return !t.Started()
}

// Stop halts the timer, remembering the remaining time until the next Start
func (t *Timer) Stop() {
	if t.Started() {
		t.millis = 0
		now := monotonicMillis()
		if now < t.limit {
			t.stoppage = t.limit - now
		} else {
			t.stoppage = 0
		}
		t.limit = 0
	}
}

// Reset stops the timer and restores the full configured duration
func (t *Timer) Reset() {
	t.millis = 0
	t.stoppage = t.setPoint
	t.limit = 0
	t.pauseMillis = 0
	t.pauseLimit = 0
}

// Clear resets the timer and drops the configured duration
func (t *Timer) Clear() {
	t.Reset()
	t.setPoint = 0
	t.stoppage = 0
}

// Pause stops the timer for duration milliseconds; Tick resumes it when the
// pause expires, or Start/CancelPause resume it early
func (t *Timer) Pause(duration uint64) {
	if !t.Paused() {
		t.Stop()
		t.pauseMillis = monotonicMillis()
		t.pauseLimit = t.pauseMillis + duration
	}
}

// CancelPause ends an active pause and restarts the timer
func (t *Timer) CancelPause() {
	if t.Paused() {
		t.Start()
	}
}

// Paused reports whether the timer is paused
func (t *Timer) Paused() bool {
	return t.pauseMillis != 0
}

// PauseLimit returns the tick at which an active pause expires
func (t *Timer) PauseLimit() uint64 {
	return t.pauseLimit
}

// SetPointMillis returns the configured duration in milliseconds
func (t *Timer) SetPointMillis() uint64 {
	return t.setPoint
}

// Limit returns the tick at which a started timer expires, 0 otherwise
func (t *Timer) Limit() uint64 {
	return t.limit
}

// ElapsedTimeMillis returns milliseconds since the last Start
func (t *Timer) ElapsedTimeMillis() uint64 {
	if t.millis > 0 {
		return monotonicMillis() - t.millis
	}
	return 0
}

// ElapsedTimeSeconds returns whole seconds since the last Start
func (t *Timer) ElapsedTimeSeconds() uint64 {
	return t.ElapsedTimeMillis() / 1000
}

// Run invokes the handler directly
func (t *Timer) Run() {
	if t.handler != nil {
		t.handler()
	}
}

// Tick advances the timer; the host loop must call it regularly. The timer
// is Reset before the handler runs, so the handler will not fire again
// unless it calls Start itself.
func (t *Timer) Tick() {
	if t.Started() {
		if monotonicMillis() > t.Limit() && t.handler != nil {
			t.Reset()
			t.Run()
		}
	} else if t.Paused() {
		if monotonicMillis() > t.PauseLimit() {
			t.CancelPause()
		}
	}
}
