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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dltoth/systemclock/clock/stats"
	"github.com/dltoth/systemclock/ntp/client"
)

func TestSystemClockDefaults(t *testing.T) {
	fakeTicks(t)

	clk := New(nil, &fakeExchanger{err: errExchange}, nil)
	require.Equal(t, uint(DefaultSyncInterval), clk.SyncInterval())
	require.Equal(t, int64(3913056000), clk.InitializationDate().Secs())
	require.Equal(t, float64(0), clk.TZOffsetHours())
	require.False(t, clk.TimerOff())
}

func TestSystemClockUpdate(t *testing.T) {
	fakeTicks(t)

	// server runs 100s ahead of the initialization date
	x := &fakeExchanger{
		ts: client.Timestamps{
			RxSec: Jan12024 + 100,
			TxSec: Jan12024 + 100,
		},
	}
	clk := New(nil, x, nil)

	got := clk.UpdateSysTime()
	require.Equal(t, int64(3913056100), got.Secs())
	require.Equal(t, got.Secs(), clk.LastSync().Secs())
	require.Equal(t, got.Secs()+int64(DefaultSyncInterval)*60, clk.NextSync().Secs())
	require.Equal(t, got.Secs(), clk.StartTime().Instant().Secs())
}

func TestSystemClockFailedSyncIsNoop(t *testing.T) {
	fakeTicks(t)

	clk := New(nil, &fakeExchanger{err: errExchange}, nil)
	before := clk.InitializationDate()

	got := clk.UpdateSysTime()
	// no time elapsed, no offset applied: the clock is unchanged
	require.Equal(t, before.Secs(), got.Secs())
	require.Equal(t, before.Fraction(), got.Fraction())
}

func TestSystemClockSysTimeExtrapolates(t *testing.T) {
	advance := fakeTicks(t)

	x := &fakeExchanger{
		ts: client.Timestamps{RxSec: Jan12024, TxSec: Jan12024},
	}
	clk := New(nil, x, nil)
	first := clk.SysTime() // triggers the initial sync
	require.Equal(t, int64(3913056000), first.Secs())

	// between syncs, time advances by local extrapolation only
	x.err = errExchange
	advance(2000)
	second := clk.SysTime()
	require.Equal(t, first.Secs()+2, second.Secs())
}

func TestSystemClockResyncsWhenDue(t *testing.T) {
	advance := fakeTicks(t)

	x := &fakeExchanger{
		ts: client.Timestamps{RxSec: Jan12024, TxSec: Jan12024},
	}
	st := &stats.JSONStats{}
	clk := New(nil, x, st)
	clk.SysTime()

	// jump past the sync interval: the next SysTime call resyncs
	x.ts.RxSec = Jan12024 + uint32(DefaultSyncInterval)*60 + 10
	x.ts.TxSec = x.ts.RxSec
	advance(uint64(DefaultSyncInterval)*60000 + 10000)
	got := clk.SysTime()
	require.Equal(t, int64(Jan12024)+int64(DefaultSyncInterval)*60+10, got.Secs())
}

func TestSystemClockTimerDrivenSync(t *testing.T) {
	advance := fakeTicks(t)

	x := &fakeExchanger{
		ts: client.Timestamps{RxSec: Jan12024 + 100, TxSec: Jan12024 + 100},
	}
	cfg := &Config{SyncInterval: 15}
	clk := New(cfg, x, nil)
	require.Equal(t, uint(15), clk.SyncInterval())

	// the sync timer fires from Tick after the interval passes
	advance(15 * 60000)
	clk.Tick()
	require.Equal(t, int64(0), clk.LastSync().Secs())

	advance(1000)
	clk.Tick()
	require.Equal(t, int64(3913056100), clk.LastSync().Secs())
}

func TestSystemClockTimezone(t *testing.T) {
	fakeTicks(t)

	cfg := &Config{TZOffset: -5.0}
	x := &fakeExchanger{
		ts: client.Timestamps{RxSec: Jan12024, TxSec: Jan12024},
	}
	clk := New(cfg, x, nil)
	require.Equal(t, -5.0, clk.TZOffsetHours())

	now := clk.Now()
	require.Equal(t, int64(3913056000)-5*3600, now.Secs())
}

func TestSystemClockSyncIntervalClamped(t *testing.T) {
	fakeTicks(t)

	clk := New(&Config{SyncInterval: 1}, &fakeExchanger{err: errExchange}, nil)
	require.Equal(t, uint(15), clk.SyncInterval())

	clk.SetSyncInterval(100000)
	require.Equal(t, uint(1440), clk.SyncInterval())
}

func TestSystemClockReset(t *testing.T) {
	fakeTicks(t)

	x := &fakeExchanger{
		ts: client.Timestamps{RxSec: Jan12024 + 100, TxSec: Jan12024 + 100},
	}
	clk := New(nil, x, nil)
	clk.UpdateSysTime()
	require.Equal(t, int64(3913056100), clk.LastSync().Secs())

	clk.Reset()
	require.Equal(t, int64(0), clk.LastSync().Secs())
	x.err = errExchange
	require.Equal(t, clk.InitializationDate().Secs(), clk.UpdateSysTime().Secs())
}

func TestReadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sysclock.yaml")
	data := `tzoffset: -5.0
syncinterval: 30
ntp:
  server: 127.0.0.1
  port: 8123
  timeout: 1000000000
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := ReadConfig(path)
	require.NoError(t, err)
	require.Equal(t, -5.0, cfg.TZOffset)
	require.Equal(t, uint(30), cfg.SyncInterval)
	require.Equal(t, "127.0.0.1", cfg.NTP.Server)
	require.Equal(t, 8123, cfg.NTP.Port)
	require.Equal(t, time.Second, cfg.NTP.Timeout)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
