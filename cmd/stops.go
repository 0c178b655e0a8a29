package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"transit.dev/raptor/transfer"
)

var (
	lat      float64
	lon      float64
	radiusKm float64
)

func init() {
	stopsCmd.Flags().Float64VarP(&lat, "lat", "", 0, "Latitude")
	stopsCmd.Flags().Float64VarP(&lon, "lon", "", 0, "Longitude")
	stopsCmd.Flags().Float64VarP(&radiusKm, "radius", "r", 1.0, "Search radius in km")
}

var stopsCmd = &cobra.Command{
	Use:   "stops",
	Short: "List stops near a coordinate",
	RunE: func(cmd *cobra.Command, args []string) error {
		sched, err := loadSchedule()
		if err != nil {
			return err
		}

		finder := transfer.NewStopKDTree(sched.Stops())
		nearby := finder.StopsInRadius(lat, lon, radiusKm)

		sort.Slice(nearby, func(i, j int) bool {
			return nearby[i].DistanceKm < nearby[j].DistanceKm
		})

		for _, n := range nearby {
			fmt.Printf("%-30s %-12s %.3f km\n", n.Stop.Name, n.Stop.ID, n.DistanceKm)
		}

		return nil
	},
}
