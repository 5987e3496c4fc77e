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

package cmd

import (
	"fmt"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dltoth/systemclock/clock"
)

func init() {
	RootCmd.AddCommand(convertCmd)
}

// parseInstant accepts either plain seconds from the prime epoch or an
// era:offset pair
func parseInstant(arg string) (clock.Instant, error) {
	if era, offset, found := strings.Cut(arg, ":"); found {
		e, err := strconv.ParseInt(era, 10, 32)
		if err != nil {
			return clock.Instant{}, fmt.Errorf("invalid era %q: %w", era, err)
		}
		o, err := strconv.ParseUint(offset, 10, 32)
		if err != nil {
			return clock.Instant{}, fmt.Errorf("invalid era offset %q: %w", offset, err)
		}
		return clock.FromEra(int32(e), uint32(o), 0), nil
	}
	secs, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return clock.Instant{}, fmt.Errorf("invalid seconds %q: %w", arg, err)
	}
	return clock.NewInstant(secs, 0), nil
}

var convertCmd = &cobra.Command{
	Use:   "convert [seconds | era:offset]...",
	Short: "Convert NTP time scale values to calendar dates",
	Args:  cobra.MinimumNArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		ConfigureVerbosity()
		for _, arg := range args {
			i, err := parseInstant(arg)
			if err != nil {
				log.Fatal(err)
			}
			fmt.Printf("%s -> %s\n", arg, i)
		}
	},
}
