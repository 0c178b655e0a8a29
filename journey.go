package raptor

import (
	"fmt"
	"time"

	"github.com/samber/lo"

	"transit.dev/raptor/schedule"
)

// One step of a journey: either a ride on a trip or a walk between stops.
type Movement interface {
	From() *schedule.Stop
	To() *schedule.Stop
	Arrival() time.Time
}

// A ride on one trip, from one position in the route's stop sequence to a
// later one.
type PTMovement struct {
	Trip          *schedule.Trip
	Route         *schedule.Route
	FromStopIndex int
	ToStopIndex   int
	ShapeID       string
}

func (m PTMovement) From() *schedule.Stop {
	return m.Route.StopSequence()[m.FromStopIndex]
}

func (m PTMovement) To() *schedule.Stop {
	return m.Route.StopSequence()[m.ToStopIndex]
}

func (m PTMovement) Departure() time.Time {
	return m.Trip.StopTimes[m.FromStopIndex].Departure
}

func (m PTMovement) Arrival() time.Time {
	return m.Trip.StopTimes[m.ToStopIndex].Arrival
}

// The stop times ridden through, boarding stop included.
func (m PTMovement) StopTimes() []schedule.StopTime {
	return m.Trip.StopTimes[m.FromStopIndex : m.ToStopIndex+1]
}

// A walk from one stop to another.
type WalkingMovement struct {
	FromStop *schedule.Stop
	ToStop   *schedule.Stop
	ArriveAt time.Time
}

func (m WalkingMovement) From() *schedule.Stop {
	return m.FromStop
}

func (m WalkingMovement) To() *schedule.Stop {
	return m.ToStop
}

func (m WalkingMovement) Arrival() time.Time {
	return m.ArriveAt
}

// Walks the labels backwards from the destination to the origin and emits
// the journey in chronological order. No label at the destination means no
// journey exists.
func reconstruct(destination *schedule.Stop, state *raptorState) ([]Movement, error) {
	movements := []Movement{}

	current := destination
	l, found := state.currentLabel(current)
	if !found {
		return movements, nil
	}

	for l.boarding != nil {
		if l.byTransit() {
			m, err := transitMovement(current, l)
			if err != nil {
				return nil, err
			}
			movements = append(movements, m)
		} else {
			movements = append(movements, WalkingMovement{
				FromStop: l.boarding,
				ToStop:   current,
				ArriveAt: l.arrival,
			})
		}

		current = l.boarding
		l, found = state.currentLabel(current)
		if !found {
			return nil, fmt.Errorf("no label for intermediate stop '%s'", current.ID)
		}
	}

	return lo.Reverse(movements), nil
}

func transitMovement(current *schedule.Stop, l label) (PTMovement, error) {
	stops := l.route.StopSequence()

	fromIdx := -1
	for i, s := range stops {
		if s == l.boarding {
			fromIdx = i
			break
		}
	}
	if fromIdx < 0 {
		return PTMovement{}, fmt.Errorf("boarding stop '%s' not on route '%s'", l.boarding.ID, l.route.ID)
	}

	// A route may visit a stop twice; the first match after the boarding
	// stop is the one that was ridden to.
	toIdx := -1
	for i := fromIdx + 1; i < len(stops); i++ {
		if stops[i] == current {
			toIdx = i
			break
		}
	}
	if toIdx < 0 {
		return PTMovement{}, fmt.Errorf("stop '%s' not after '%s' on route '%s'", current.ID, l.boarding.ID, l.route.ID)
	}

	trip := l.route.Trips[l.tripIndex]
	return PTMovement{
		Trip:          trip,
		Route:         l.route,
		FromStopIndex: fromIdx,
		ToStopIndex:   toIdx,
		ShapeID:       trip.ShapeID,
	}, nil
}
