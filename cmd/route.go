package main

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"transit.dev/raptor"
	"transit.dev/raptor/transfer"
)

var (
	fromStopID string
	toStopID   string
	departAt   string
)

func init() {
	routeCmd.Flags().StringVarP(&fromStopID, "from", "", "", "Origin stop id")
	routeCmd.Flags().StringVarP(&toStopID, "to", "", "", "Destination stop id")
	routeCmd.Flags().StringVarP(&departAt, "at", "", "", "Departure time (RFC 3339, default now)")
}

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Compute a journey between two stops",
	RunE: func(cmd *cobra.Command, args []string) error {
		sched, err := loadSchedule()
		if err != nil {
			return err
		}

		origin, found := sched.StopByID(fromStopID)
		if !found {
			return fmt.Errorf("unknown origin stop '%s'", fromStopID)
		}
		destination, found := sched.StopByID(toStopID)
		if !found {
			return fmt.Errorf("unknown destination stop '%s'", toStopID)
		}

		departure := time.Now()
		if departAt != "" {
			departure, err = time.Parse(time.RFC3339, departAt)
			if err != nil {
				return fmt.Errorf("parsing departure time: %w", err)
			}
		}

		started := time.Now()
		transfers, err := transfer.NewManager(sched.Stops(), nil, nil, transfer.DefaultManagerParams())
		if err != nil {
			return fmt.Errorf("building transfer graph: %w", err)
		}
		logrus.WithField("elapsed", time.Since(started)).Debug("transfer graph built")

		router := raptor.NewRouter(sched, transfers)

		started = time.Now()
		journey, err := router.Route(origin, destination, departure)
		if err != nil {
			return err
		}
		logrus.WithField("elapsed", time.Since(started)).Debug("query done")

		if len(journey) == 0 {
			fmt.Println("No journey found")
			return nil
		}

		for _, m := range journey {
			switch m := m.(type) {
			case raptor.PTMovement:
				name := m.Route.ShortName
				if name == "" {
					name = m.Route.LongName
				}
				fmt.Printf(
					"%s  ride %s from %s to %s, arriving %s\n",
					m.Departure().Format("15:04:05"),
					name,
					m.From().Name,
					m.To().Name,
					m.Arrival().Format("15:04:05"),
				)
			case raptor.WalkingMovement:
				fmt.Printf(
					"         walk from %s to %s, arriving %s\n",
					m.From().Name,
					m.To().Name,
					m.Arrival().Format("15:04:05"),
				)
			}
		}

		return nil
	},
}
