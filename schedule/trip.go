package schedule

import "time"

// A vehicle arriving at and departing from a stop, as absolute instants.
// Arrival never exceeds Departure. The stop is owned by the Schedule.
type StopTime struct {
	Arrival   time.Time
	Departure time.Time
	Stop      *Stop
}

// A concrete vehicle run on one service date. The same GTFS trip yields one
// Trip per date its service is active, each with its own absolute stop
// times.
type Trip struct {
	ID        string
	ShapeID   string
	RouteID   string
	StopTimes []StopTime
}

// Departure time of this particular instantiation of the trip.
func (t *Trip) Departure() time.Time {
	return t.StopTimes[0].Departure
}

// Two instantiations of the same GTFS trip on different dates are distinct,
// so equality includes the first-stop departure.
func (t *Trip) Equal(other *Trip) bool {
	return t.ID == other.ID && t.Departure().Equal(other.Departure())
}
