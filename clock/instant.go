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
Package clock implements a point-in-time representation on the NTP time
scale and the clock offset calculation used to synchronize it against a
remote NTP server.

An Instant is a signed 64-bit seconds count from the prime epoch
(00:00:00 Jan 1, 1900 UTC) plus an unsigned 32-bit sub-second fraction.
The seconds field decomposes into a signed 32-bit era and an unsigned
32-bit era offset, where seconds = era*2^32 + eraOffset and eraOffset is
non-negative even before the epoch. Era 0 starts at the prime epoch and
rolls to era 1 on Feb 7, 2036 at 06:28:16.
*/
package clock

import (
	"time"
)

const (
	pow2x32  = int64(1) << 32
	pow2x32f = float64(pow2x32)

	// SecsIn68Years is the era-straddle threshold: two clocks assumed to be
	// within 68 years of each other are in adjoining eras when their era
	// offsets differ by more than this.
	SecsIn68Years = int64(2144448000)

	// SecsToUnix is the offset between the prime epoch and the Unix epoch
	SecsToUnix = int64(2208988800)

	// Jan12024 is the era-0 offset of Jan 1, 2024 00:00:00 UTC, a convenient
	// modern initialization point for clocks without battery backed RTC
	Jan12024 = uint32(3913056000)
)

// Instant is a point on the NTP time scale: signed 64-bit seconds from the
// prime epoch and an unsigned 32-bit fraction. The fraction is always a
// non-negative offset added to seconds, even when seconds is negative.
// Instant is a plain value; all operations return new values.
type Instant struct {
	secs int64
	frac uint32
}

// NewInstant builds an Instant from seconds and fraction
func NewInstant(secs int64, frac uint32) Instant {
	return Instant{secs: secs, frac: frac}
}

// FromEra builds an Instant from era, era offset and fraction
func FromEra(era int32, offset uint32, frac uint32) Instant {
	return Instant{secs: int64(era)*pow2x32 + int64(offset), frac: frac}
}

// FromFloat builds an Instant from a real-valued seconds count. For negative
// values with a fractional remainder the integer part is decremented and the
// fraction becomes the positive complement, preserving the invariant that
// the fraction is a non-negative offset.
func FromFloat(v float64) Instant {
	secs := int64(v)
	diff := v - float64(secs)
	if diff < 0 {
		f := uint64((diff + 1) * pow2x32f)
		if f >= uint64(pow2x32) {
			return Instant{secs: secs}
		}
		return Instant{secs: secs - 1, frac: uint32(f)}
	}
	f := uint64(diff * pow2x32f)
	if f >= uint64(pow2x32) {
		return Instant{secs: secs + 1}
	}
	return Instant{secs: secs, frac: uint32(f)}
}

// FromDateTime builds an Instant from a calendar date and time of day
func FromDateTime(d Date, t Time) Instant {
	return Instant{secs: dateTimeToSeconds(d, t), frac: t.Fraction}
}

// FromUnix builds an Instant from a Unix time
func FromUnix(t time.Time) Instant {
	secs := t.Unix() + SecsToUnix
	frac := (uint64(t.Nanosecond()) << 32) / uint64(time.Second)
	return Instant{secs: secs, frac: uint32(frac)}
}

// Secs returns seconds from the prime epoch
func (i Instant) Secs() int64 {
	return i.secs
}

// Fraction returns the sub-second fraction in units of 2^-32 s
func (i Instant) Fraction() uint32 {
	return i.frac
}

// Era returns the signed 32-bit era, seconds divided by 2^32 with floor
// semantics so the era is monotonic across the sign boundary
func (i Instant) Era() int32 {
	if i.secs%pow2x32 < 0 {
		return int32(i.secs/pow2x32 - 1)
	}
	return int32(i.secs / pow2x32)
}

// EraOffset returns seconds within the current era, always in [0, 2^32)
func (i Instant) EraOffset() uint32 {
	rem := i.secs % pow2x32
	if rem < 0 {
		rem += pow2x32
	}
	return uint32(rem)
}

// Float returns the real-valued view seconds + fraction/2^32. Only suitable
// for display and coarse arithmetic; exact arithmetic stays on the integer pair.
func (i Instant) Float() float64 {
	return float64(i.secs) + float64(i.frac)/pow2x32f
}

// Unix converts the Instant to Unix time
func (i Instant) Unix() time.Time {
	nanos := (uint64(i.frac) * uint64(time.Second)) >> 32
	return time.Unix(i.secs-SecsToUnix, int64(nanos))
}

// Add returns i + o. Fractions are summed with 64-bit width and carry one
// second when the sum reaches 2^32.
func (i Instant) Add(o Instant) Instant {
	secs := i.secs + o.secs
	frac := uint64(i.frac) + uint64(o.frac)
	if frac >= uint64(pow2x32) {
		secs++
		frac -= uint64(pow2x32)
	}
	return Instant{secs: secs, frac: uint32(frac)}
}

// Sub returns i - o
func (i Instant) Sub(o Instant) Instant {
	return i.Add(o.Neg())
}

// Neg returns the additive inverse: the fraction becomes 2^32 - fraction
// with a one-second borrow when the original fraction was non-zero, so
// i.Add(i.Neg()) is exactly zero.
func (i Instant) Neg() Instant {
	secs := -i.secs
	frac := uint32(uint64(pow2x32) - uint64(i.frac))
	if frac != 0 {
		secs--
	}
	return Instant{secs: secs, frac: frac}
}

// Div divides by an integer denominator on the real-valued view. Precision
// below the float64 mantissa is lost; acceptable for averaging two offsets
// but not for general fixed-point arithmetic.
func (i Instant) Div(denom int) Instant {
	return FromFloat(i.Float() / float64(denom))
}

// AddSeconds returns i shifted by a whole number of seconds
func (i Instant) AddSeconds(secs int64) Instant {
	return Instant{secs: i.secs + secs, frac: i.frac}
}

// AddMillis folds a millisecond count into the Instant using integer
// scaling, carrying into seconds on fraction overflow. Called at high
// frequency for local clock extrapolation, so no floating point.
func (i Instant) AddMillis(millis uint32) Instant {
	secs := i.secs + int64(millis/1000)
	frac := (uint64(millis%1000) << 32) / 1000
	frac += uint64(i.frac)
	if frac >= uint64(pow2x32) {
		secs++
		frac -= uint64(pow2x32)
	}
	return Instant{secs: secs, frac: uint32(frac)}
}

// Abs returns the non-negative Instant with the same magnitude
func (i Instant) Abs() Instant {
	if i.secs < 0 {
		return i.Neg()
	}
	return i
}

// Cmp is a three-way comparison: by seconds first, fraction second.
// Returns -1 if i < o, 0 if equal, 1 if i > o.
func (i Instant) Cmp(o Instant) int {
	switch {
	case i.secs < o.secs:
		return -1
	case i.secs > o.secs:
		return 1
	case i.frac < o.frac:
		return -1
	case i.frac > o.frac:
		return 1
	}
	return 0
}

// Equal reports whether two Instants are the same point in time
func (i Instant) Equal(o Instant) bool {
	return i.Cmp(o) == 0
}

// Before reports whether i is earlier than o
func (i Instant) Before(o Instant) bool {
	return i.Cmp(o) < 0
}

// After reports whether i is later than o
func (i Instant) After(o Instant) bool {
	return i.Cmp(o) > 0
}

// ElapsedTime returns the absolute difference between two Instants as a
// non-negative whole-second duration
func (i Instant) ElapsedTime(o Instant) uint64 {
	return uint64(i.Sub(o).Abs().Secs())
}

// ToTimezone shifts the Instant by a timezone offset in hours, validated
// and snapped by TZOffset
func (i Instant) ToTimezone(hours float64) Instant {
	return i.AddSeconds(int64(TZOffset(hours)))
}

// Date converts the Instant to a calendar date
func (i Instant) Date() Date {
	return secondsToDate(i.secs)
}

// Time converts the Instant to a time of day
func (i Instant) Time() Time {
	t := secondsToTime(i.secs)
	t.Fraction = i.frac
	return t
}

// TZOffset converts a timezone offset in hours to whole seconds. Hours are
// clamped to [-14, 14] and the fractional hour is snapped onto a
// quarter-hour boundary in the direction of its sign; real-world timezones
// only use quarter-hour offsets, so this guards against malformed
// configuration input.
func TZOffset(hours float64) int32 {
	if hours < -14 {
		hours = -14
	} else if hours > 14 {
		hours = 14
	}
	h := int(hours)
	frac := hours - float64(h)
	if frac < 0 {
		switch {
		case frac <= -.75:
			frac = -.75
		case frac <= -.5:
			frac = -.5
		default:
			frac = -.25
		}
	} else if frac > 0 {
		switch {
		case frac >= .75:
			frac = .75
		case frac >= .5:
			frac = .5
		default:
			frac = .25
		}
	}
	return int32(3600.0*float64(h) + 3600.0*frac)
}
