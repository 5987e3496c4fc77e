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
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dltoth/systemclock/clock"
	"github.com/dltoth/systemclock/clock/stats"
	"github.com/dltoth/systemclock/ntp/client"
)

var (
	runConfig         string
	runMonitoringPort int
	runUseJSONStats   bool
	runPrintInterval  time.Duration
)

// tickInterval paces the cooperative host loop
const tickInterval = 100 * time.Millisecond

func init() {
	RootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runConfig, "config", "c", "", "path to yaml config file")
	runCmd.Flags().IntVarP(&runMonitoringPort, "monitoringport", "m", 0, "port to serve sync statistics on, 0 to disable")
	runCmd.Flags().BoolVar(&runUseJSONStats, "json", false, "serve plain json statistics instead of prometheus")
	runCmd.Flags().DurationVar(&runPrintInterval, "print", time.Minute, "how often to log current time, 0 to disable")
}

func runClock() error {
	cfg := &clock.Config{}
	if runConfig != "" {
		var err error
		cfg, err = clock.ReadConfig(runConfig)
		if err != nil {
			return err
		}
	}

	c, err := client.New(cfg.NTP)
	if err != nil {
		return err
	}

	var st stats.Stats
	if runMonitoringPort != 0 {
		if runUseJSONStats {
			js := &stats.JSONStats{}
			go js.Start(runMonitoringPort)
			st = js
		} else {
			ps := stats.NewPrometheusStats()
			go ps.Start(runMonitoringPort)
			st = ps
		}
	}

	clk := clock.New(cfg, c, st)
	log.Infof("starting system clock, server %s, sync interval %d min, tz offset %.2fh",
		c.Server(), clk.SyncInterval(), clk.TZOffsetHours())
	clk.UpdateSysTime()

	lastPrint := time.Now()
	for {
		clk.Tick()
		if runPrintInterval > 0 && time.Since(lastPrint) >= runPrintInterval {
			log.Infof("local time %s, last sync %s",
				clock.DateTimeString(clk.Now()), clock.DateTimeString(clk.LastSync()))
			lastPrint = time.Now()
		}
		time.Sleep(tickInterval)
	}
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the NTP-synchronized clock, resyncing on the configured interval",
	Run: func(_ *cobra.Command, _ []string) {
		ConfigureVerbosity()
		if err := runClock(); err != nil {
			log.Fatal(err)
		}
	},
}
