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
	log "github.com/sirupsen/logrus"

	"github.com/dltoth/systemclock/ntp/client"
)

// OffsetResult carries the two-way clock offset of one exchange together
// with the four timestamps that produced it:
//
//	T1 - local instant the request was sent
//	T2 - server instant the request was received
//	T3 - server instant the reply was transmitted
//	T4 - local instant the reply was received
//
// offset = ((T2-T1)+(T3-T4))/2, and the synchronized local clock is
// T4 + offset. The result is valid only for the attempt that produced it.
type OffsetResult struct {
	Offset Instant
	T1     Timestamp
	T2     Timestamp
	T3     Timestamp
	T4     Timestamp
	Err    error
}

// NTPOffset performs one exchange through x and computes the clock offset
// relative to ref. T1 is stamped strictly before the exchange and T4
// strictly after, both by adding locally elapsed milliseconds to the same
// reference, so T4-T1 reflects real elapsed local time whatever the
// exchange outcome.
//
// The server reports T2 and T3 as era offsets only. Local and remote
// clocks must be within 68 years of each other for the offset to be valid
// at all, so an era-offset difference beyond 68 years can only mean the
// clocks straddle an era boundary, and the server era is resolved to one
// ahead of or behind the local era. On exchange failure T2=T1 and T3=T4,
// collapsing the offset to exactly zero: a failed sync is a no-op, never a
// corrupting one.
//
// One attempt per call; retry and backoff policy belong to the scheduler.
func NTPOffset(ref Timestamp, x client.Exchanger) OffsetResult {
	t1 := Stamp(ref)
	t2 := NewTimestamp(Instant{})

	ts, err := x.Exchange()

	t3 := NewTimestamp(Instant{})
	t4 := Stamp(t1)

	T1 := t1.Instant()
	T4 := t4.Instant()
	var T2, T3 Instant
	if err == nil {
		T2 = resolveEra(T1, ts.RxSec, ts.RxFrac)
		T3 = resolveEra(T4, ts.TxSec, ts.TxFrac)
	} else {
		log.Warningf("time server exchange failed, applying zero offset: %v", err)
		T2 = T1
		T3 = T4
	}
	t2 = t2.AddInstant(T2)
	t3 = t3.AddInstant(T3)

	offset := T2.Sub(T1).Add(T3.Sub(T4)).Div(2)
	return OffsetResult{Offset: offset, T1: t1, T2: t2, T3: t3, T4: t4, Err: err}
}

// resolveEra attaches an era to a server-reported era offset by comparing
// it against the local instant captured on the same side of the exchange.
// A signed difference beyond +68 years means the server rolled into the
// next era first; beyond -68 years, the local clock rolled first.
func resolveEra(local Instant, secs, frac uint32) Instant {
	era := local.Era()
	diff := int64(local.EraOffset()) - int64(secs)
	switch {
	case diff > SecsIn68Years:
		era++
	case diff < -SecsIn68Years:
		era--
	}
	return FromEra(era, secs, frac)
}
