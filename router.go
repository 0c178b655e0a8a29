package raptor

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"transit.dev/raptor/schedule"
	"transit.dev/raptor/transfer"
)

var ErrUnknownStop = errors.New("stop not in schedule")

// A route passing through a stop, with the stop's position in the route's
// stop sequence. A route visiting the same stop twice yields two entries.
type routeStopIndex struct {
	route     *schedule.Route
	stopIndex int
}

// Computes earliest-arrival journeys over a schedule and its transfer
// graph.
//
// The router is read-only after construction; concurrent Route calls are
// safe, each call owns its own state.
type Router struct {
	schedule  *schedule.Schedule
	transfers *transfer.Manager

	routesByStop map[*schedule.Stop][]routeStopIndex
}

func NewRouter(sched *schedule.Schedule, transfers *transfer.Manager) *Router {
	routesByStop := map[*schedule.Stop][]routeStopIndex{}
	for _, route := range sched.Routes() {
		for idx, stop := range route.StopSequence() {
			routesByStop[stop] = append(routesByStop[stop], routeStopIndex{route: route, stopIndex: idx})
		}
	}

	return &Router{
		schedule:     sched,
		transfers:    transfers,
		routesByStop: routesByStop,
	}
}

// Computes the journey from origin to destination departing no earlier
// than the given instant, minimising arrival time and, among journeys
// arriving together, the number of transfers.
//
// The returned movements are chronological. An empty slice means no
// journey exists; that is not an error.
func (r *Router) Route(
	origin, destination *schedule.Stop,
	departure time.Time,
) ([]Movement, error) {

	for _, stop := range []*schedule.Stop{origin, destination} {
		if known, found := r.schedule.StopByID(stop.ID); !found || known != stop {
			return nil, fmt.Errorf("%w: '%s'", ErrUnknownStop, stop.ID)
		}
	}

	state := newRaptorState(origin, destination, departure)

	// Seed the origin's on-foot neighbourhood before the first round, or
	// stops reachable only by walking from the origin are never
	// considered.
	r.relaxTransfers(state)

	for state.haveStopsToImprove() {
		state.newRound()
		for route, hopOnIdx := range r.collectRoutes(state.getAndClearImprovedStops()) {
			r.scanRoute(route, hopOnIdx, state)
		}
		r.relaxTransfers(state)
	}

	return reconstruct(destination, state)
}

// The routes serving any of the given stops, each with the smallest stop
// index it can be boarded at. Scan order does not matter: tryImprove only
// lowers arrivals, and scans compare against the previous round's labels.
func (r *Router) collectRoutes(stops []*schedule.Stop) map[*schedule.Route]int {
	q := map[*schedule.Route]int{}
	for _, stop := range stops {
		for _, rsi := range r.routesByStop[stop] {
			if idx, found := q[rsi.route]; !found || rsi.stopIndex < idx {
				q[rsi.route] = rsi.stopIndex
			}
		}
	}
	return q
}

// Rides the earliest catchable trip of the route forward from the hop-on
// stop, improving labels along the way. When a stop was reached faster in
// the previous round than the current trip reaches it, the scan hops onto
// an earlier trip of the same route.
func (r *Router) scanRoute(route *schedule.Route, hopOnIdx int, state *raptorState) {
	stops := route.StopSequence()

	hopOnTime, found := state.previousArrival(stops[hopOnIdx])
	if !found {
		return
	}

	tripIdx, found := earliestTripAt(route, hopOnIdx, hopOnTime)
	if !found {
		return
	}
	trip := route.Trips[tripIdx]

	for i := hopOnIdx + 1; i < len(stops); i++ {
		st := trip.StopTimes[i]

		improved := state.tryImprove(st.Stop, st.Arrival, stops[hopOnIdx], route, tripIdx)

		if !improved && state.mightCatchEarlierTrip(st.Stop, st.Departure) {
			prevArrival, _ := state.previousArrival(st.Stop)
			if earlier, found := earliestTripAt(route, i, prevArrival); found && earlier < tripIdx {
				tripIdx = earlier
				trip = route.Trips[tripIdx]
				hopOnIdx = i
			}
		}
	}
}

// Index of the first trip departing the given stop position at or after t.
// Trips are sorted by first-stop departure and don't overtake each other,
// so the ordering holds at every stop and binary search applies.
func earliestTripAt(route *schedule.Route, stopIdx int, t time.Time) (int, bool) {
	n := len(route.Trips)
	i := sort.Search(n, func(k int) bool {
		return !route.Trips[k].StopTimes[stopIdx].Departure.Before(t)
	})
	if i == n {
		return 0, false
	}
	return i, true
}

// Relaxes the transfer edges of every stop improved so far this round.
// Improvements land in the same round: a walk doesn't count as a transfer.
func (r *Router) relaxTransfers(state *raptorState) {
	for _, from := range state.improvedSnapshot() {
		arrival, found := state.currentArrival(from)
		if !found {
			continue
		}
		for _, t := range r.transfers.TransfersFrom(from) {
			state.tryImprove(t.To, arrival.Add(t.Duration), from, nil, 0)
		}
	}
}
