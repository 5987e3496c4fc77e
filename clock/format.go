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
)

// FormatTime renders a time of day as hh:mm:ss
func FormatTime(t Time) string {
	return fmt.Sprintf("%02d:%02d:%02d", t.Hour, t.Min, t.Sec)
}

// FormatDate renders a date as "Jan 2, 2024"
func FormatDate(d Date) string {
	return fmt.Sprintf("%s %d, %d", Months[d.Month-1], d.Day, d.Year)
}

// FormatDateTime renders a date and time as "15:04:05 Jan 2, 2024"
func FormatDateTime(d Date, t Time) string {
	return fmt.Sprintf("%s %s", FormatTime(t), FormatDate(d))
}

// DateTimeString renders an Instant as "15:04:05 Jan 2, 2024"
func DateTimeString(i Instant) string {
	return FormatDateTime(i.Date(), i.Time())
}

// ElapsedString renders a whole-second duration as "N Days hh:mm:ss"
func ElapsedString(secs uint64) string {
	days := secs / SecsInDay
	t := secondsToTime(int64(secs % SecsInDay))
	return fmt.Sprintf("%d Days %s", days, FormatTime(t))
}

// String renders the Instant for debugging with era decomposition
func (i Instant) String() string {
	return fmt.Sprintf("era=%d eraOffset=%d secs=%d fraction=%d (%s)",
		i.Era(), i.EraOffset(), i.Secs(), i.Fraction(), DateTimeString(i))
}
