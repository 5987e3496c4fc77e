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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormat(t *testing.T) {
	require.Equal(t, "06:28:15", FormatTime(Time{6, 28, 15, 0}))
	require.Equal(t, "Feb 7, 2036", FormatDate(Date{2, 7, 2036}))
	require.Equal(t, "00:00:00 Jan 1, 2024", DateTimeString(FromEra(0, Jan12024, 0)))
}

func TestElapsedString(t *testing.T) {
	require.Equal(t, "0 Days 00:00:00", ElapsedString(0))
	require.Equal(t, "0 Days 01:01:05", ElapsedString(3665))
	require.Equal(t, "3 Days 02:00:30", ElapsedString(3*86400+7230))
}

func TestInstantString(t *testing.T) {
	s := NewInstant(4294967296, 0).String()
	require.Contains(t, s, "era=1")
	require.Contains(t, s, "eraOffset=0")
	require.Contains(t, s, "06:28:16 Feb 7, 2036")
}
