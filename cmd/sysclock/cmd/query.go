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
	"math"
	"time"

	"github.com/fatih/color"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dltoth/systemclock/clock"
	"github.com/dltoth/systemclock/ntp/client"
)

var (
	queryServer  string
	queryPort    int
	queryTimeout time.Duration
)

// warnOffset is the offset magnitude above which the result is highlighted
const warnOffset = 0.1

func init() {
	RootCmd.AddCommand(queryCmd)
	queryCmd.Flags().StringVarP(&queryServer, "server", "s", "", "time server to query (default: public fallback chain)")
	queryCmd.Flags().IntVarP(&queryPort, "port", "p", client.DefaultPort, "time server port")
	queryCmd.Flags().DurationVarP(&queryTimeout, "timeout", "t", client.DefaultTimeout, "reply timeout")
}

func printTimestamp(name string, t clock.Timestamp) {
	i := t.Instant()
	fmt.Printf("%s: era=%d eraOffset=%d secs=%d fraction=%d  %s\n",
		name, i.Era(), i.EraOffset(), i.Secs(), i.Fraction(), clock.DateTimeString(i))
}

func runQuery() error {
	c, err := client.New(client.Config{Server: queryServer, Port: queryPort, Timeout: queryTimeout})
	if err != nil {
		return err
	}
	log.Infof("querying %s", c.Server())

	ref := clock.NewTimestamp(clock.FromUnix(time.Now()))
	res := clock.NTPOffset(ref, c)
	if res.Err != nil {
		return res.Err
	}

	printTimestamp("T1", res.T1)
	printTimestamp("T2", res.T2)
	printTimestamp("T3", res.T3)
	printTimestamp("T4", res.T4)

	offset := res.Offset.Float()
	offsetStr := color.GreenString("%.6fs", offset)
	if math.Abs(offset) > warnOffset {
		offsetStr = color.RedString("%.6fs", offset)
	}
	fmt.Printf("offset: %s\n", offsetStr)
	fmt.Printf("synchronized time: %s UTC\n", clock.DateTimeString(res.T4.Instant().Add(res.Offset)))
	return nil
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Perform one exchange with a time server and print the four timestamps and clock offset",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		if err := runQuery(); err != nil {
			log.Fatal(err)
		}
	},
}
