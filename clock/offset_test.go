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
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dltoth/systemclock/ntp/client"
)

var errExchange = errors.New("no reply")

// fakeExchanger returns canned timestamps, optionally advancing the fake
// millisecond tick to simulate network time passing during the exchange
type fakeExchanger struct {
	ts      client.Timestamps
	err     error
	advance func(millis uint64)
	latency uint64
}

func (f *fakeExchanger) Exchange() (client.Timestamps, error) {
	if f.advance != nil && f.latency > 0 {
		f.advance(f.latency)
	}
	if f.err != nil {
		return client.Timestamps{}, f.err
	}
	return f.ts, nil
}

func TestNTPOffsetFailureIsZero(t *testing.T) {
	fakeTicks(t)

	ref := NewTimestamp(FromEra(0, Jan12024, 0))
	res := NTPOffset(ref, &fakeExchanger{err: errExchange})

	require.ErrorIs(t, res.Err, errExchange)
	// a failed sync collapses to a zero offset, never a corrupting one
	require.Equal(t, int64(0), res.Offset.Secs())
	require.Equal(t, uint32(0), res.Offset.Fraction())
	require.True(t, res.T2.Instant().Equal(res.T1.Instant()))
	require.True(t, res.T3.Instant().Equal(res.T4.Instant()))
}

func TestNTPOffsetExactZero(t *testing.T) {
	advance := fakeTicks(t)

	// server replies exactly match the local timestamps on both sides of
	// the exchange, so the computed offset must be exactly zero
	ref := NewTimestamp(NewInstant(1000, 0))
	x := &fakeExchanger{
		ts: client.Timestamps{
			RxSec: 1000, RxFrac: 0,
			TxSec: 1000, TxFrac: 2147483648,
		},
		advance: advance,
		latency: 500,
	}
	res := NTPOffset(ref, x)

	require.NoError(t, res.Err)
	require.Equal(t, int64(1000), res.T1.Instant().Secs())
	require.Equal(t, int64(1000), res.T4.Instant().Secs())
	require.Equal(t, uint32(2147483648), res.T4.Instant().Fraction())
	require.Equal(t, int64(0), res.Offset.Secs())
	require.Equal(t, uint32(0), res.Offset.Fraction())
}

func TestNTPOffsetAhead(t *testing.T) {
	fakeTicks(t)

	// server clock runs 100s ahead of the local clock; with zero latency
	// the offset is the full difference
	local := FromEra(0, Jan12024, 0)
	ref := NewTimestamp(local)
	x := &fakeExchanger{
		ts: client.Timestamps{
			RxSec: Jan12024 + 100,
			TxSec: Jan12024 + 100,
		},
	}
	res := NTPOffset(ref, x)

	require.NoError(t, res.Err)
	require.Equal(t, int64(100), res.Offset.Secs())
	require.Equal(t, uint32(0), res.Offset.Fraction())

	// applying the offset to T4 yields the synchronized time
	synced := res.T4.AddInstant(res.Offset)
	require.Equal(t, local.Secs()+100, synced.Instant().Secs())
}

func TestEraStraddleServerAhead(t *testing.T) {
	fakeTicks(t)

	// local clock sits just before the era boundary, server already rolled
	// into the next era: its raw offset near 0 must resolve to era+1, not
	// a multi-era negative jump
	ref := NewTimestamp(NewInstant(4294967290, 0))
	x := &fakeExchanger{
		ts: client.Timestamps{RxSec: 5, TxSec: 5},
	}
	res := NTPOffset(ref, x)

	require.NoError(t, res.Err)
	require.Equal(t, int32(1), res.T2.Instant().Era())
	require.Equal(t, int32(1), res.T3.Instant().Era())
	require.Equal(t, int64(4294967301), res.T2.Instant().Secs())
	require.Equal(t, int64(11), res.Offset.Secs())
}

func TestEraStraddleClientAhead(t *testing.T) {
	fakeTicks(t)

	// local clock rolled into era 1 first; server still reports era-0
	// offsets near the top of the range
	ref := NewTimestamp(NewInstant(4294967296+5, 0))
	x := &fakeExchanger{
		ts: client.Timestamps{RxSec: 4294967290, TxSec: 4294967290},
	}
	res := NTPOffset(ref, x)

	require.NoError(t, res.Err)
	require.Equal(t, int32(0), res.T2.Instant().Era())
	require.Equal(t, int64(4294967290), res.T2.Instant().Secs())
	require.Equal(t, int64(-11), res.Offset.Secs())
}

func TestSameEraLargeOffset(t *testing.T) {
	fakeTicks(t)

	// differences below the 68-year threshold stay in the local era
	ref := NewTimestamp(FromEra(0, Jan12024, 0))
	x := &fakeExchanger{
		ts: client.Timestamps{
			RxSec: Jan12024 - 1000000,
			TxSec: Jan12024 - 1000000,
		},
	}
	res := NTPOffset(ref, x)

	require.NoError(t, res.Err)
	require.Equal(t, int32(0), res.T2.Instant().Era())
	require.Equal(t, int64(-1000000), res.Offset.Secs())
}
