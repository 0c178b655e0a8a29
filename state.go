package raptor

import (
	"time"

	"transit.dev/raptor/schedule"
)

// How a stop was first reached in a round: the arrival instant, the stop
// the movement started at, and, for public transport, the route and trip
// ridden. A nil route means the stop was reached on foot; a nil boarding
// stop marks the origin.
type label struct {
	arrival   time.Time
	boarding  *schedule.Stop
	route     *schedule.Route
	tripIndex int
}

func (l label) byTransit() bool {
	return l.route != nil
}

// Per-query state of the round loop.
//
// Labels come in two layers: the current round's, which all writes go to,
// and the previous round's, snapshotted by newRound. The earliest-arrival
// table tracks the best arrival per stop across all rounds and backs both
// the improvement check and target pruning.
type raptorState struct {
	current  map[*schedule.Stop]label
	previous map[*schedule.Stop]label

	earliestArrival map[*schedule.Stop]time.Time
	improved        map[*schedule.Stop]struct{}

	round       int
	destination *schedule.Stop
}

func newRaptorState(origin, destination *schedule.Stop, departure time.Time) *raptorState {
	s := &raptorState{
		current:         map[*schedule.Stop]label{},
		previous:        map[*schedule.Stop]label{},
		earliestArrival: map[*schedule.Stop]time.Time{},
		improved:        map[*schedule.Stop]struct{}{},
		destination:     destination,
	}
	s.current[origin] = label{arrival: departure}
	s.earliestArrival[origin] = departure
	s.improved[origin] = struct{}{}
	return s
}

// Starts round k+1: the current labels become the previous round's, and
// also remain the starting values for the new round. Returns the new round
// number, which doubles as the transfer count.
func (s *raptorState) newRound() int {
	s.previous = make(map[*schedule.Stop]label, len(s.current))
	for stop, l := range s.current {
		s.previous[stop] = l
	}
	s.round++
	return s.round
}

// Accepts the new arrival iff it beats the best known arrival at the stop
// AND the best known arrival at the destination, both strictly. Equal times
// never replace an existing label, which keeps results deterministic.
func (s *raptorState) tryImprove(
	stop *schedule.Stop,
	arrival time.Time,
	boarding *schedule.Stop,
	route *schedule.Route,
	tripIndex int,
) bool {

	if best, found := s.earliestArrival[stop]; found && !arrival.Before(best) {
		return false
	}
	if best, found := s.earliestArrival[s.destination]; found && !arrival.Before(best) {
		return false
	}

	s.current[stop] = label{
		arrival:   arrival,
		boarding:  boarding,
		route:     route,
		tripIndex: tripIndex,
	}
	s.earliestArrival[stop] = arrival
	s.improved[stop] = struct{}{}
	return true
}

// True iff the stop was reached in the previous round no later than the
// given departure: with one transfer less we'd be at the stop in time to
// board a trip leaving then.
func (s *raptorState) mightCatchEarlierTrip(stop *schedule.Stop, departure time.Time) bool {
	l, found := s.previous[stop]
	return found && !l.arrival.After(departure)
}

func (s *raptorState) haveStopsToImprove() bool {
	return len(s.improved) > 0
}

func (s *raptorState) getAndClearImprovedStops() []*schedule.Stop {
	stops := make([]*schedule.Stop, 0, len(s.improved))
	for stop := range s.improved {
		stops = append(stops, stop)
	}
	s.improved = map[*schedule.Stop]struct{}{}
	return stops
}

// The improved set as a slice, without clearing it. Transfer relaxation
// iterates this snapshot while tryImprove grows the live set.
func (s *raptorState) improvedSnapshot() []*schedule.Stop {
	stops := make([]*schedule.Stop, 0, len(s.improved))
	for stop := range s.improved {
		stops = append(stops, stop)
	}
	return stops
}

func (s *raptorState) currentLabel(stop *schedule.Stop) (label, bool) {
	l, found := s.current[stop]
	return l, found
}

func (s *raptorState) currentArrival(stop *schedule.Stop) (time.Time, bool) {
	l, found := s.current[stop]
	return l.arrival, found
}

func (s *raptorState) previousArrival(stop *schedule.Stop) (time.Time, bool) {
	l, found := s.previous[stop]
	return l.arrival, found
}
