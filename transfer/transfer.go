package transfer

import (
	"time"

	"github.com/pkg/errors"

	"transit.dev/raptor/schedule"
)

const (
	DefaultMaxRadiusKm       = 1.0
	DefaultInStationTransfer = 60 * time.Second
	DefaultExitStation       = 120 * time.Second
	DefaultWalkingSpeedKmh   = 5.0
)

// Tuning parameters for the transfer graph.
type ManagerParams struct {
	// Upper bound for on-foot transfers.
	MaxRadiusKm float64

	// Cost of moving between two stops sharing a parent station.
	InStationTransfer time.Duration

	// Fixed cost added to every on-foot transfer, modelling leaving and
	// entering the stop areas.
	ExitStation time.Duration
}

func DefaultManagerParams() ManagerParams {
	return ManagerParams{
		MaxRadiusKm:       DefaultMaxRadiusKm,
		InStationTransfer: DefaultInStationTransfer,
		ExitStation:       DefaultExitStation,
	}
}

// One directed transfer edge.
type Transfer struct {
	To       *schedule.Stop
	Duration time.Duration
}

// The precomputed transfer graph: for every stop, the stops reachable
// without riding a vehicle and the time to reach them.
//
// The graph is built once and read-only afterwards, so it can be shared
// across concurrent queries. Edges are stored directed, in both directions
// for symmetric inputs; consumers must not rely on symmetry.
type Manager struct {
	stops     []*schedule.Stop
	transfers map[*schedule.Stop][]Transfer
}

// Builds the transfer graph in two passes: same-station transfers first,
// then on-foot transfers within params.MaxRadiusKm. A same-station edge is
// never overwritten by an on-foot edge for the same pair.
//
// The manager keeps references into stops, so the collection must outlive
// it. Passing a nil finder factory or calculator selects the defaults (KD
// tree, linear walking time at 5 km/h).
func NewManager(
	stops []*schedule.Stop,
	newFinder FinderFactory,
	calc WalkingTimeCalculator,
	params ManagerParams,
) (*Manager, error) {

	if params.MaxRadiusKm <= 0 {
		return nil, errors.Errorf("max radius must be positive, got %v", params.MaxRadiusKm)
	}
	if params.InStationTransfer < 0 {
		return nil, errors.Errorf("in-station transfer duration must not be negative")
	}
	if params.ExitStation < 0 {
		return nil, errors.Errorf("exit station duration must not be negative")
	}

	if newFinder == nil {
		newFinder = KDTreeFinderFactory
	}
	if calc == nil {
		var err error
		calc, err = NewLinearWalkingTime(DefaultWalkingSpeedKmh)
		if err != nil {
			return nil, err
		}
	}

	m := &Manager{
		stops:     stops,
		transfers: map[*schedule.Stop][]Transfer{},
	}
	m.buildSameStationTransfers(params.InStationTransfer)
	m.buildOnFootTransfers(newFinder(stops), calc, params)

	return m, nil
}

// Transfers leaving the given stop. Nil for stops with no transfers.
func (m *Manager) TransfersFrom(stop *schedule.Stop) []Transfer {
	return m.transfers[stop]
}

func (m *Manager) buildSameStationTransfers(duration time.Duration) {
	for _, from := range m.stops {
		station := from.ParentStation()
		if station == nil {
			continue
		}
		for _, to := range station.Stops() {
			if to == from {
				continue
			}
			m.transfers[from] = append(m.transfers[from], Transfer{To: to, Duration: duration})
		}
	}
}

func (m *Manager) buildOnFootTransfers(
	finder NearbyStopsFinder,
	calc WalkingTimeCalculator,
	params ManagerParams,
) {
	for _, from := range m.stops {
		existing := m.transfers[from]
		for _, nearby := range finder.StopsInRadiusOfStop(from, params.MaxRadiusKm) {
			if hasTransferTo(existing, nearby.Stop) {
				continue
			}
			duration := calc.WalkingTimeForDistance(nearby.DistanceKm) + params.ExitStation
			existing = append(existing, Transfer{To: nearby.Stop, Duration: duration})
		}
		if len(existing) > 0 {
			m.transfers[from] = existing
		}
	}
}

func hasTransferTo(transfers []Transfer, stop *schedule.Stop) bool {
	for _, t := range transfers {
		if t.To == stop {
			return true
		}
	}
	return false
}
