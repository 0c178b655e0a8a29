package schedule

import "time"

// A transit agency. The time zone is resolved once, at build time, and
// shared by every stop time instantiated for the agency's trips.
type Agency struct {
	ID       string
	Name     string
	URL      string
	Location *time.Location
}
