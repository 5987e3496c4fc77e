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

// SecsInDay is the number of seconds in one calendar day
const SecsInDay = 86400

// epochYear is the first year of era 0 on the NTP time scale.
// Seconds count forward from 00:00:00 Jan 1 of this year,
// and backward into 1899 and earlier for negative values.
const epochYear = 1900

var daysPerMonth = [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// Months holds short month names indexed by month-1
var Months = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// Date is a calendar date. Out-of-range values are clamped on construction,
// never rejected; see NewDate.
type Date struct {
	Month int
	Day   int
	Year  int
}

// Time is a time of day with an optional sub-second fraction in units of 2^-32 s.
type Time struct {
	Hour     int
	Min      int
	Sec      int
	Fraction uint32
}

// NewDate builds a Date, clamping month to [1,12], year to >= 0 and
// day to [1, days in month] accounting for leap years.
func NewDate(month, day, year int) Date {
	d := Date{}
	if month < 1 {
		month = 1
	} else if month > 12 {
		month = 12
	}
	d.Month = month
	if year < 0 {
		year = 0
	}
	d.Year = year
	if day < 1 {
		day = 1
	} else if max := monthDays(month, year); day > max {
		day = max
	}
	d.Day = day
	return d
}

// NewTime builds a Time, clamping hour to [0,23] and min/sec to [0,59].
func NewTime(hour, min, sec int) Time {
	return NewTimeWithFraction(hour, min, sec, 0)
}

// NewTimeWithFraction is NewTime with a sub-second fraction attached.
func NewTimeWithFraction(hour, min, sec int, fraction uint32) Time {
	t := Time{Fraction: fraction}
	t.Hour = clampInt(hour, 0, 23)
	t.Min = clampInt(min, 0, 59)
	t.Sec = clampInt(sec, 0, 59)
	return t
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// IsLeapYear implements the Gregorian rule: divisible by 4,
// except centuries, except multiples of 400.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// monthDays returns the number of days in month (1-based) of year
func monthDays(month, year int) int {
	if month == 2 && IsLeapYear(year) {
		return daysPerMonth[1] + 1
	}
	return daysPerMonth[month-1]
}

func daysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

func secsInYear(year int) int64 {
	return int64(daysInYear(year)) * SecsInDay
}

// secondsToDate converts seconds from the prime epoch to a calendar date.
// For negative input the year walk runs backward from 1899 until the
// remainder fits within one year; the date within that year is then found
// from the year's complement, so the day-of-year computation always runs
// forward from a non-negative second count.
func secondsToDate(secs int64) Date {
	rem := secs
	beforeEpoch := rem < 0
	year := epochYear
	if beforeEpoch {
		year = epochYear - 1
		for rem < -secsInYear(year) {
			rem += secsInYear(year)
			year--
		}
	} else {
		for rem >= secsInYear(year) {
			rem -= secsInYear(year)
			year++
		}
	}

	// rem is now within year; for pre-epoch years it counts backward from
	// Dec 31 23:59:60, so the complement gives forward seconds from Jan 1.
	var inYear uint64
	if beforeEpoch {
		inYear = uint64(secsInYear(year) + rem)
	} else {
		inYear = uint64(rem)
	}

	days := int(inYear / SecsInDay)
	month := 0
	for month < 11 && days >= monthDays(month+1, year) {
		days -= monthDays(month+1, year)
		month++
	}
	return Date{Month: month + 1, Day: days + 1, Year: year}
}

// secondsToTime converts seconds from the prime epoch to a time of day.
// Negative remainders are normalized by adding a full day so the result
// is always a valid time.
func secondsToTime(secs int64) Time {
	rem := secs % SecsInDay
	if rem < 0 {
		rem += SecsInDay
	}
	return Time{
		Hour: int((rem / 3600) % 24),
		Min:  int((rem / 60) % 60),
		Sec:  int(rem % 60),
	}
}

// dateTimeToSeconds is the inverse of secondsToDate/secondsToTime.
// Years are accumulated forward from 1900 or backward for earlier dates;
// within the target year seconds are counted forward from Jan 1 and, for
// pre-epoch dates, subtracted as the complement from the full year.
func dateTimeToSeconds(d Date, t Time) int64 {
	beforeEpoch := d.Year < epochYear
	var secs int64
	if beforeEpoch {
		for year := epochYear - 1; year > d.Year; year-- {
			secs -= secsInYear(year)
		}
	} else {
		for year := epochYear; year < d.Year; year++ {
			secs += secsInYear(year)
		}
	}

	var inYear int64
	for month := 1; month < d.Month; month++ {
		inYear += int64(monthDays(month, d.Year)) * SecsInDay
	}
	inYear += int64(d.Day-1) * SecsInDay
	inYear += int64(t.Hour) * 3600
	inYear += int64(t.Min) * 60
	inYear += int64(t.Sec)

	if beforeEpoch {
		secs -= secsInYear(d.Year) - inYear
	} else {
		secs += inYear
	}
	return secs
}
