package transfer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transit.dev/raptor/schedule"
)

// Stops on a line going north from (59.0, 18.0). A degree of latitude is
// roughly 111.2 km, so 0.005 degrees is about 0.55 km.
func lineOfStops() []*schedule.Stop {
	return []*schedule.Stop{
		{ID: "origin", Lat: 59.0, Lon: 18.0},
		{ID: "near", Lat: 59.005, Lon: 18.0},
		{ID: "far", Lat: 59.02, Lon: 18.0},
		{ID: "veryfar", Lat: 60.0, Lon: 18.0},
	}
}

func TestStopKDTreeStopsInRadius(t *testing.T) {
	tree := NewStopKDTree(lineOfStops())

	results := tree.StopsInRadius(59.0, 18.0, 1.0)

	// A search by coordinate includes a stop sitting exactly at the
	// query point.
	ids := map[string]float64{}
	for _, r := range results {
		ids[r.Stop.ID] = r.DistanceKm
	}
	require.Len(t, ids, 2)
	assert.InDelta(t, 0.0, ids["origin"], 0.001)
	assert.InDelta(t, 0.556, ids["near"], 0.01)
	assert.NotContains(t, ids, "far")
	assert.NotContains(t, ids, "veryfar")
}

func TestStopKDTreeStopsInRadiusOfStop(t *testing.T) {
	stops := lineOfStops()
	tree := NewStopKDTree(stops)

	// A search around a stop excludes the stop itself.
	results := tree.StopsInRadiusOfStop(stops[0], 1.0)
	require.Len(t, results, 1)
	assert.Equal(t, "near", results[0].Stop.ID)

	// A wider radius picks up the next stop out.
	results = tree.StopsInRadiusOfStop(stops[0], 3.0)
	ids := []string{}
	for _, r := range results {
		ids = append(ids, r.Stop.ID)
	}
	assert.ElementsMatch(t, []string{"near", "far"}, ids)
}

func TestStopKDTreeDistanceApproximatesHaversine(t *testing.T) {
	stops := lineOfStops()
	tree := NewStopKDTree(stops)

	// For small radii, the chord distance is a good approximation of
	// the great-circle distance.
	for _, r := range tree.StopsInRadiusOfStop(stops[0], 3.0) {
		haversine := HaversineKm(stops[0].Lat, stops[0].Lon, r.Stop.Lat, r.Stop.Lon)
		assert.InDelta(t, haversine, r.DistanceKm, 0.001)
	}
}

func TestStopKDTreeQueryPointNeedNotBeAStop(t *testing.T) {
	tree := NewStopKDTree(lineOfStops())

	// Query halfway between origin and near.
	results := tree.StopsInRadius(59.0025, 18.0, 0.5)
	ids := []string{}
	for _, r := range results {
		ids = append(ids, r.Stop.ID)
	}
	assert.ElementsMatch(t, []string{"origin", "near"}, ids)
}
