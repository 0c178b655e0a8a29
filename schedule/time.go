package schedule

import "time"

// Composes a service date and a GTFS time-of-day into an absolute instant
// in the given zone. Hours may exceed 24 to place the time on the day after
// the service date, as GTFS does for after-midnight service.
//
// The wall-clock time is resolved in loc; at a DST transition an ambiguous
// local time takes its earliest interpretation.
func AbsoluteTime(serviceDate time.Time, h, m, s int, loc *time.Location) time.Time {
	t := time.Date(
		serviceDate.Year(), serviceDate.Month(), serviceDate.Day(),
		h, m, s, 0,
		loc,
	)

	// time.Date may resolve a wall-clock time that occurs twice (clocks
	// going back) to either offset. The same reading under the larger
	// offset in force before the transition is the earlier instant.
	_, offset := t.Zone()
	_, prevOffset := t.Add(-12 * time.Hour).Zone()
	if prevOffset > offset {
		earlier := t.Add(-time.Duration(prevOffset-offset) * time.Second)
		if earlier.Format(time.DateTime) == t.Format(time.DateTime) {
			return earlier
		}
	}
	return t
}
