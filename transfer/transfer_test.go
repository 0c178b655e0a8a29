package transfer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transit.dev/raptor/schedule"
)

// A finder returning canned results per stop id.
type staticFinder struct {
	results map[string][]StopWithDistance
}

func (f *staticFinder) StopsInRadius(lat, lon, radiusKm float64) []StopWithDistance {
	return nil
}

func (f *staticFinder) StopsInRadiusOfStop(stop *schedule.Stop, radiusKm float64) []StopWithDistance {
	return f.results[stop.ID]
}

func staticFinderFactory(f *staticFinder) FinderFactory {
	return func(stops []*schedule.Stop) NearbyStopsFinder {
		return f
	}
}

// Two stops in a station, plus a lone stop on foot from one of them.
func stationFixture(t *testing.T) (b, bPrime, lone *schedule.Stop, stops []*schedule.Stop) {
	b = &schedule.Stop{ID: "B", Name: "Platform B"}
	bPrime = &schedule.Stop{ID: "B'", Name: "Platform B'"}
	lone = &schedule.Stop{ID: "L", Name: "Lone"}

	_, err := schedule.NewStopManager(
		[]*schedule.Stop{b, bPrime, lone},
		[]*schedule.Station{{ID: "S", Name: "Station"}},
		map[string][]string{"S": {"B", "B'"}},
	)
	require.NoError(t, err)

	return b, bPrime, lone, []*schedule.Stop{b, bPrime, lone}
}

func transferTo(t *testing.T, m *Manager, from, to *schedule.Stop) Transfer {
	for _, tr := range m.TransfersFrom(from) {
		if tr.To == to {
			return tr
		}
	}
	t.Fatalf("no transfer from %s to %s", from.ID, to.ID)
	return Transfer{}
}

func TestManagerSameStationTransfers(t *testing.T) {
	b, bPrime, lone, stops := stationFixture(t)

	m, err := NewManager(
		stops,
		staticFinderFactory(&staticFinder{}),
		nil,
		DefaultManagerParams(),
	)
	require.NoError(t, err)

	// Stops sharing a station get the in-station cost, in both
	// directions.
	assert.Equal(t, DefaultInStationTransfer, transferTo(t, m, b, bPrime).Duration)
	assert.Equal(t, DefaultInStationTransfer, transferTo(t, m, bPrime, b).Duration)

	// A stop with no transfers yields an empty list, not an error.
	assert.Empty(t, m.TransfersFrom(lone))
}

func TestManagerOnFootTransfers(t *testing.T) {
	_, _, lone, stops := stationFixture(t)
	other := stops[0]

	finder := &staticFinder{results: map[string][]StopWithDistance{
		"L": {{Stop: other, DistanceKm: 0.5}},
	}}
	calc, err := NewLinearWalkingTime(5)
	require.NoError(t, err)

	m, err := NewManager(stops, staticFinderFactory(finder), calc, DefaultManagerParams())
	require.NoError(t, err)

	// Walk time for 0.5 km at 5 km/h is 360s; the exit cost is added
	// exactly once.
	tr := transferTo(t, m, lone, other)
	assert.Equal(t, 360*time.Second+DefaultExitStation, tr.Duration)
}

func TestManagerSameStationWinsOverOnFoot(t *testing.T) {
	b, bPrime, _, stops := stationFixture(t)

	// The finder also sees B' on foot from B; the same-station edge
	// must not be overwritten.
	finder := &staticFinder{results: map[string][]StopWithDistance{
		"B": {{Stop: bPrime, DistanceKm: 0.1}},
	}}

	m, err := NewManager(stops, staticFinderFactory(finder), nil, DefaultManagerParams())
	require.NoError(t, err)

	assert.Equal(t, DefaultInStationTransfer, transferTo(t, m, b, bPrime).Duration)

	// And only one edge exists for the pair.
	count := 0
	for _, tr := range m.TransfersFrom(b) {
		if tr.To == bPrime {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestManagerIdempotentRebuild(t *testing.T) {
	_, _, _, stops := stationFixture(t)

	finder := &staticFinder{results: map[string][]StopWithDistance{
		"L": {{Stop: stops[0], DistanceKm: 0.5}},
	}}

	build := func() *Manager {
		m, err := NewManager(stops, staticFinderFactory(finder), nil, DefaultManagerParams())
		require.NoError(t, err)
		return m
	}

	m1, m2 := build(), build()
	for _, stop := range stops {
		assert.Equal(t, m1.TransfersFrom(stop), m2.TransfersFrom(stop))
	}
}

func TestManagerParamValidation(t *testing.T) {
	_, _, _, stops := stationFixture(t)

	params := DefaultManagerParams()
	params.MaxRadiusKm = 0
	_, err := NewManager(stops, staticFinderFactory(&staticFinder{}), nil, params)
	assert.Error(t, err)

	params = DefaultManagerParams()
	params.InStationTransfer = -time.Second
	_, err = NewManager(stops, staticFinderFactory(&staticFinder{}), nil, params)
	assert.Error(t, err)

	params = DefaultManagerParams()
	params.ExitStation = -time.Second
	_, err = NewManager(stops, staticFinderFactory(&staticFinder{}), nil, params)
	assert.Error(t, err)
}

func TestManagerDefaults(t *testing.T) {
	// Nil finder and calculator select the KD tree and the linear
	// calculator. Stops 0.5 km apart end up with a walking transfer.
	a := &schedule.Stop{ID: "A", Lat: 59.0, Lon: 18.0}
	b := &schedule.Stop{ID: "B", Lat: 59.0045, Lon: 18.0}

	m, err := NewManager([]*schedule.Stop{a, b}, nil, nil, DefaultManagerParams())
	require.NoError(t, err)

	tr := transferTo(t, m, a, b)
	assert.Greater(t, tr.Duration, DefaultExitStation)
	assert.Equal(t, b, tr.To)
}
