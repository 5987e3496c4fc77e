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
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"

	"github.com/dltoth/systemclock/clock/stats"
	"github.com/dltoth/systemclock/ntp/client"
)

const (
	// DefaultSyncInterval is the NTP synchronization interval in minutes
	DefaultSyncInterval = 60
	minSyncInterval     = 15
	maxSyncInterval     = 1440
)

// Config specifies SystemClock run options
type Config struct {
	// TZOffset is the timezone offset in hours, between -14 and +14 in
	// quarter-hour steps
	TZOffset float64 `yaml:"tzoffset"`
	// SyncInterval is the NTP synchronization interval in minutes,
	// clamped to [15, 1440]
	SyncInterval uint `yaml:"syncinterval"`
	// NTP configures the time server exchange
	NTP client.Config `yaml:"ntp"`
}

// ReadConfig reads config from the file
func ReadConfig(path string) (*Config, error) {
	c := &Config{}
	cData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(cData, c); err != nil {
		return nil, fmt.Errorf("failed to parse config %q: %w", path, err)
	}
	return c, nil
}

// SystemClock provides NTP-synchronized system time as Instants on the NTP
// time scale. It must be initialized to within 68 years of actual UTC; the
// default initialization is Jan 1, 2024 00:00:00. Between synchronizations
// time advances by local millisecond extrapolation. Synchronization runs
// either from the cooperative sync timer (host loop calls Tick) or on
// demand from SysTime when the interval has passed.
//
// SystemClock is single-threaded by design, matching the cooperative model
// of the rest of the package.
type SystemClock struct {
	exchanger client.Exchanger
	stats     stats.Stats

	initDate  Instant
	start     Timestamp
	sysTime   Timestamp
	tzOffset  int32
	syncMin   uint
	lastSync  int64
	nextSync  int64
	timerOff  bool
	syncTimer Timer
}

// New builds a SystemClock synchronizing through x. A nil st disables
// statistics.
func New(cfg *Config, x client.Exchanger, st stats.Stats) *SystemClock {
	if st == nil {
		st = &stats.Noop{}
	}
	c := &SystemClock{
		exchanger: x,
		stats:     st,
		initDate:  FromEra(0, Jan12024, 0),
		syncMin:   DefaultSyncInterval,
	}
	c.sysTime = NewTimestamp(c.initDate)
	if cfg != nil {
		c.SetTZOffset(cfg.TZOffset)
		if cfg.SyncInterval != 0 {
			c.syncMin = clampSyncInterval(cfg.SyncInterval)
		}
	}
	c.syncTimer.Set(0, int(c.syncMin), 0)
	c.syncTimer.SetHandler(func() {
		c.UpdateSysTime()
		c.syncTimer.Start()
	})
	c.syncTimer.Start()
	return c
}

func clampSyncInterval(min uint) uint {
	if min < minSyncInterval {
		return minSyncInterval
	}
	if min > maxSyncInterval {
		return maxSyncInterval
	}
	return min
}

// Initialize sets the clock to ref, the assumed current UTC. Must land
// within 68 years of actual UTC for the offset calculation to be valid.
func (c *SystemClock) Initialize(ref Instant) {
	c.initDate = ref
	c.sysTime = NewTimestamp(ref)
}

// InitializationDate returns the instant the clock was initialized to
func (c *SystemClock) InitializationDate() Instant {
	return c.initDate
}

// Reset drops all synchronization state and restores the initialization date
func (c *SystemClock) Reset() {
	c.lastSync = 0
	c.nextSync = 0
	c.sysTime = NewTimestamp(c.initDate)
}

// Now returns system time in the local timezone, synchronizing with NTP as
// necessary
func (c *SystemClock) Now() Instant {
	return c.UTCToLocal(c.SysTime())
}

// SysTime returns system time UTC, synchronizing with NTP when the sync
// interval has passed and extrapolating from local milliseconds otherwise
func (c *SystemClock) SysTime() Instant {
	c.sysTime = c.sysTime.Update()
	if c.lastSync == 0 || c.sysTime.Instant().Secs() > c.nextSync {
		return c.UpdateSysTime()
	}
	return c.sysTime.Instant()
}

// UpdateSysTime forces an NTP synchronization and returns system time UTC.
// A failed exchange leaves the running time unchanged apart from locally
// elapsed milliseconds.
func (c *SystemClock) UpdateSysTime() Instant {
	c.stats.IncRequests()
	res := NTPOffset(c.sysTime, c.exchanger)
	c.sysTime = res.T4.AddInstant(res.Offset)
	if res.Err != nil {
		c.stats.IncFailures()
	} else {
		c.stats.SetOffset(res.Offset.Float())
		c.stats.SetLastSync(c.sysTime.Instant().Secs())
		log.Debugf("synchronized, offset %.6fs, system time %s",
			res.Offset.Float(), DateTimeString(c.sysTime.Instant()))
	}
	if c.lastSync == 0 {
		c.start = c.sysTime
	}
	c.lastSync = c.sysTime.Instant().Secs()
	c.nextSync = c.lastSync + int64(c.syncMin)*60
	c.resetSyncTimer()
	return c.sysTime.Instant()
}

// UTCToLocal shifts a UTC instant by the configured timezone offset
func (c *SystemClock) UTCToLocal(utc Instant) Instant {
	return utc.AddSeconds(int64(c.tzOffset))
}

// StartTime returns the UTC timestamp of the first successful reading
func (c *SystemClock) StartTime() Timestamp {
	return c.start
}

// SetTZOffset sets the timezone offset in hours, validated by TZOffset
func (c *SystemClock) SetTZOffset(hours float64) {
	c.tzOffset = TZOffset(hours)
}

// TZOffsetHours returns the timezone offset in hours
func (c *SystemClock) TZOffsetHours() float64 {
	return float64(c.tzOffset) / 3600.0
}

// SetSyncInterval sets the NTP synchronization interval in minutes,
// clamped to [15, 1440], and reschedules the sync timer
func (c *SystemClock) SetSyncInterval(min uint) {
	c.syncMin = clampSyncInterval(min)
	c.nextSync = c.lastSync + int64(c.syncMin)*60
	c.resetSyncTimer()
}

// SyncInterval returns the NTP synchronization interval in minutes
func (c *SystemClock) SyncInterval() uint {
	return c.syncMin
}

// LastSync returns the local time of the last NTP synchronization
func (c *SystemClock) LastSync() Instant {
	return c.UTCToLocal(NewInstant(c.lastSync, 0))
}

// NextSync returns the local time of the next expected synchronization
func (c *SystemClock) NextSync() Instant {
	return c.UTCToLocal(NewInstant(c.nextSync, 0))
}

// SetTimerOff disables or enables the sync timer; with the timer off,
// synchronization happens on demand from SysTime only
func (c *SystemClock) SetTimerOff(off bool) {
	if off == c.timerOff {
		return
	}
	c.timerOff = off
	c.resetSyncTimer()
}

// TimerOff reports whether the sync timer is disabled
func (c *SystemClock) TimerOff() bool {
	return c.timerOff
}

// Tick does one unit of cooperative work, advancing the sync timer. The
// host loop must call it regularly for timed synchronization to happen.
func (c *SystemClock) Tick() {
	c.syncTimer.Tick()
}

func (c *SystemClock) resetSyncTimer() {
	c.syncTimer.Set(0, int(c.syncMin), 0)
	c.syncTimer.Reset()
	if !c.timerOff {
		c.syncTimer.Start()
	}
}
