package schedule

import (
	"fmt"
)

// Fields shared by the platform-like records of stops.txt. Entrances and
// boarding areas carry nothing else.
type StopPoint struct {
	ID   string
	Name string
	Lat  float64
	Lon  float64
}

type (
	Entrance     = StopPoint
	BoardingArea = StopPoint
)

// A stop (platform) passengers board at. Identity is the GTFS id; two stops
// with the same id are the same stop. The parent station link is set once by
// the StopManager and immutable afterwards.
type Stop struct {
	ID            string
	Name          string
	Lat           float64
	Lon           float64
	PlatformCode  string
	BoardingAreas []BoardingArea

	parent *Station
}

func (s *Stop) ParentStation() *Station {
	return s.parent
}

// A station groups co-located stops and entrances. It references its child
// stops but does not own them.
type Station struct {
	ID        string
	Name      string
	Entrances []Entrance

	stops []*Stop
}

func (st *Station) Stops() []*Stop {
	return st.stops
}

// StopManager owns the stops and stations and the links between them.
//
// Stops live behind pointers handed out to stop times, transfers and router
// state; they are never moved or copied after construction. The manager
// itself must not be copied either, since the parent/child links point into
// it.
type StopManager struct {
	stops    []*Stop
	stations []*Station

	stopByID    map[string]*Stop
	stationByID map[string]*Station
}

// Links every station to its child stops according to children, in both
// directions. Ids not present among the given stops or stations make
// construction fail.
func NewStopManager(stops []*Stop, stations []*Station, children map[string][]string) (*StopManager, error) {
	m := &StopManager{
		stops:       stops,
		stations:    stations,
		stopByID:    make(map[string]*Stop, len(stops)),
		stationByID: make(map[string]*Station, len(stations)),
	}

	for _, s := range stops {
		m.stopByID[s.ID] = s
	}
	for _, st := range stations {
		m.stationByID[st.ID] = st
	}

	for stationID, stopIDs := range children {
		station, ok := m.stationByID[stationID]
		if !ok {
			return nil, fmt.Errorf("%w: unknown station '%s'", ErrFeedInconsistent, stationID)
		}
		for _, stopID := range stopIDs {
			stop, ok := m.stopByID[stopID]
			if !ok {
				return nil, fmt.Errorf("%w: unknown stop '%s' in station '%s'", ErrFeedInconsistent, stopID, stationID)
			}
			stop.parent = station
			station.stops = append(station.stops, stop)
		}
	}

	return m, nil
}

func (m *StopManager) Stops() []*Stop {
	return m.stops
}

func (m *StopManager) Stations() []*Station {
	return m.stations
}

func (m *StopManager) StopByID(id string) (*Stop, bool) {
	s, ok := m.stopByID[id]
	return s, ok
}

func (m *StopManager) StationByID(id string) (*Station, bool) {
	st, ok := m.stationByID[id]
	return st, ok
}
