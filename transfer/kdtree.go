package transfer

import (
	"math"

	"github.com/kyroy/kdtree"
	"github.com/kyroy/kdtree/kdrange"
	"github.com/samber/lo"

	"transit.dev/raptor/schedule"
)

// Earth radius in kilometres, shared by the cartesian projection and the
// haversine distance.
const earthRadiusKm = 6371.0

// A stop projected onto Earth-centred cartesian coordinates, indexed by the
// KD tree.
type stopPoint struct {
	stop   *schedule.Stop
	coords [3]float64
}

func (p *stopPoint) Dimensions() int {
	return 3
}

func (p *stopPoint) Dimension(i int) float64 {
	return p.coords[i]
}

// Converts geographic to cartesian coordinates on a sphere of Earth radius.
func toCartesian(lat, lon float64) [3]float64 {
	phi := lat * math.Pi / 180
	lambda := lon * math.Pi / 180
	return [3]float64{
		earthRadiusKm * math.Cos(phi) * math.Cos(lambda),
		earthRadiusKm * math.Cos(phi) * math.Sin(lambda),
		earthRadiusKm * math.Sin(phi),
	}
}

// Finds nearby stops with a KD tree over cartesian coordinates.
//
// Distances are straight-line chords through the sphere, not great-circle
// arcs (https://timvink.nl/blog/closest-coordinates/), so results are only
// a good approximation for radii of a few kilometres.
type StopKDTree struct {
	tree *kdtree.KDTree
}

// Builds an index over the given stops. The index stores references to the
// stops; the collection must outlive it.
func NewStopKDTree(stops []*schedule.Stop) *StopKDTree {
	points := lo.Map(stops, func(s *schedule.Stop, _ int) kdtree.Point {
		return &stopPoint{stop: s, coords: toCartesian(s.Lat, s.Lon)}
	})
	return &StopKDTree{tree: kdtree.New(points)}
}

// The default FinderFactory.
func KDTreeFinderFactory(stops []*schedule.Stop) NearbyStopsFinder {
	return NewStopKDTree(stops)
}

// Radius search under the L2 metric: range-search the bounding box, then
// keep points within the radius.
func (t *StopKDTree) radiusSearch(center [3]float64, radiusKm float64) []StopWithDistance {
	box := t.tree.RangeSearch(kdrange.New(
		center[0]-radiusKm, center[0]+radiusKm,
		center[1]-radiusKm, center[1]+radiusKm,
		center[2]-radiusKm, center[2]+radiusKm,
	))

	results := []StopWithDistance{}
	for _, p := range box {
		sp := p.(*stopPoint)
		dx := sp.coords[0] - center[0]
		dy := sp.coords[1] - center[1]
		dz := sp.coords[2] - center[2]
		distance := math.Sqrt(dx*dx + dy*dy + dz*dz)
		if distance <= radiusKm {
			results = append(results, StopWithDistance{Stop: sp.stop, DistanceKm: distance})
		}
	}
	return results
}

func (t *StopKDTree) StopsInRadius(lat, lon, radiusKm float64) []StopWithDistance {
	return t.radiusSearch(toCartesian(lat, lon), radiusKm)
}

func (t *StopKDTree) StopsInRadiusOfStop(stop *schedule.Stop, radiusKm float64) []StopWithDistance {
	results := t.radiusSearch(toCartesian(stop.Lat, stop.Lon), radiusKm)

	// The stop itself is at distance zero; callers asking around a stop
	// want its neighbours.
	return lo.Filter(results, func(r StopWithDistance, _ int) bool {
		return r.Stop.ID != stop.ID
	})
}
