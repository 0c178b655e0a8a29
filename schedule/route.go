package schedule

import (
	"crypto/sha256"
	"fmt"

	"github.com/samber/lo"
)

// A route is a collection of trips which stop at exactly the same stops, in
// the same order, and share a GTFS route id. Trips are sorted by the
// departure time at their first stop.
type Route struct {
	ID        string
	ShortName string
	LongName  string
	Agency    *Agency
	Trips     []*Trip

	stops []*Stop
}

// The ordered stops this route's trips serve. All trips have the same
// stops, so they are taken from the first trip, once.
func (r *Route) StopSequence() []*Stop {
	if r.stops == nil {
		r.stops = lo.Map(r.Trips[0].StopTimes, func(st StopTime, _ int) *Stop {
			return st.Stop
		})
	}
	return r.stops
}

// Grouping key for assembling routes: a digest over the GTFS route id and
// the stop id sequence. Callers must still verify id and sequence equality
// within a key's bucket; the digest is never trusted on its own.
func routeGroupKey(routeID string, stopIDs []string) string {
	h := sha256.New()
	h.Write([]byte(routeID))
	for _, id := range stopIDs {
		h.Write([]byte{0})
		h.Write([]byte(id))
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
