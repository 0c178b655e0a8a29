package main

import (
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"transit.dev/raptor/model"
	"transit.dev/raptor/parse"
	"transit.dev/raptor/schedule"
)

var rootCmd = &cobra.Command{
	Use:          "raptor",
	Short:        "RAPTOR journey planner",
	Long:         "Computes public transport journeys from a GTFS feed",
	SilenceUsage: true,
}

var (
	feedPath string
	verbose  bool
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&feedPath, "feed", "f", "", "Path to a zipped GTFS feed")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging")
	rootCmd.AddCommand(routeCmd)
	rootCmd.AddCommand(stopsCmd)
}

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	cobra.OnInitialize(func() {
		if verbose {
			logrus.SetLevel(logrus.DebugLevel)
		}
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func loadFeed() (*model.Feed, error) {
	if feedPath == "" {
		return nil, fmt.Errorf("feed path is required")
	}

	buf, err := os.ReadFile(feedPath)
	if err != nil {
		return nil, fmt.Errorf("reading feed: %w", err)
	}

	started := time.Now()
	feed, err := parse.Feed(buf)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"stops":      len(feed.Stops),
		"trips":      len(feed.Trips),
		"stop_times": len(feed.StopTimes),
		"elapsed":    time.Since(started),
	}).Debug("feed parsed")

	return feed, nil
}

func loadSchedule() (*schedule.Schedule, error) {
	feed, err := loadFeed()
	if err != nil {
		return nil, err
	}

	started := time.Now()
	sched, err := schedule.Build(feed, schedule.BuildOptions{})
	if err != nil {
		return nil, fmt.Errorf("building schedule: %w", err)
	}
	logrus.WithFields(logrus.Fields{
		"stops":   len(sched.Stops()),
		"routes":  len(sched.Routes()),
		"elapsed": time.Since(started),
	}).Debug("schedule built")

	return sched, nil
}
