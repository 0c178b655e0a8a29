package transfer

import (
	"transit.dev/raptor/schedule"
)

// A stop found near a query point, with its distance from the point.
type StopWithDistance struct {
	Stop       *schedule.Stop
	DistanceKm float64
}

// Finds stops within a radius of a point or of another stop.
//
// A coordinate search may include a stop located exactly at the query
// point; a search around a stop never includes that stop itself.
type NearbyStopsFinder interface {
	StopsInRadius(lat, lon, radiusKm float64) []StopWithDistance
	StopsInRadiusOfStop(stop *schedule.Stop, radiusKm float64) []StopWithDistance
}

// Builds a finder over a stop collection. The finder keeps references into
// the collection, so the collection must outlive it.
type FinderFactory func(stops []*schedule.Stop) NearbyStopsFinder
