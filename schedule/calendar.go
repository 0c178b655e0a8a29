package schedule

import (
	"fmt"
	"time"

	"transit.dev/raptor/model"
)

// Bounds calendar expansion to [From, To], inclusive. Zero values leave the
// corresponding side unbounded.
type DateWindow struct {
	From time.Time
	To   time.Time
}

func (w DateWindow) clamp(start, end time.Time) (time.Time, time.Time) {
	if !w.From.IsZero() && w.From.After(start) {
		start = w.From
	}
	if !w.To.IsZero() && w.To.Before(end) {
		end = w.To
	}
	return start, end
}

func (w DateWindow) contains(d time.Time) bool {
	if !w.From.IsZero() && d.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && d.After(w.To) {
		return false
	}
	return true
}

func parseDate(s string) (time.Time, error) {
	d, err := time.ParseInLocation("20060102", s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: parsing date '%s': %v", ErrFeedInconsistent, s, err)
	}
	return d, nil
}

// Expands the calendar tables into concrete service dates per service id.
//
// Each weekly calendar row is intersected with the window once, then every
// occurrence of each active weekday in the intersection is enumerated.
// Exceptions apply afterwards, in source order: Added appends the date,
// Removed deletes the first matching date. A Removed exception inside the
// window with no matching date is a feed error. Exceptions outside the
// window are ignored.
//
// Dates are UTC midnights; they only carry year, month and day.
func ExpandCalendars(
	calendars []model.Calendar,
	calendarDates []model.CalendarDate,
	window DateWindow,
) (map[string][]time.Time, error) {

	if !window.From.IsZero() && !window.To.IsZero() && window.To.Before(window.From) {
		return nil, fmt.Errorf("%w: date window ends before it starts", ErrInvalidParameter)
	}

	services := map[string][]time.Time{}

	for _, cal := range calendars {
		if _, found := services[cal.ServiceID]; found {
			return nil, fmt.Errorf("%w: duplicate service_id '%s'", ErrFeedInconsistent, cal.ServiceID)
		}

		start, err := parseDate(cal.StartDate)
		if err != nil {
			return nil, err
		}
		end, err := parseDate(cal.EndDate)
		if err != nil {
			return nil, err
		}
		start, end = window.clamp(start, end)

		dates := []time.Time{}
		for wd := time.Sunday; wd <= time.Saturday; wd++ {
			if cal.Weekday&(1<<wd) == 0 {
				continue
			}
			// First occurrence of the weekday at or after start,
			// then every seventh day up to end.
			offset := (int(wd) - int(start.Weekday()) + 7) % 7
			for d := start.AddDate(0, 0, offset); !d.After(end); d = d.AddDate(0, 0, 7) {
				dates = append(dates, d)
			}
		}
		services[cal.ServiceID] = dates
	}

	for _, cd := range calendarDates {
		date, err := parseDate(cd.Date)
		if err != nil {
			return nil, err
		}
		if !window.contains(date) {
			continue
		}

		switch cd.ExceptionType {
		case model.ExceptionTypeAdded:
			services[cd.ServiceID] = append(services[cd.ServiceID], date)
		case model.ExceptionTypeRemoved:
			dates, found := services[cd.ServiceID]
			if !found {
				return nil, fmt.Errorf("%w: removal for unknown service_id '%s'", ErrFeedInconsistent, cd.ServiceID)
			}
			removed := false
			for i, d := range dates {
				if d.Equal(date) {
					services[cd.ServiceID] = append(dates[:i:i], dates[i+1:]...)
					removed = true
					break
				}
			}
			if !removed {
				return nil, fmt.Errorf(
					"%w: removal of date %s not active for service_id '%s'",
					ErrFeedInconsistent, cd.Date, cd.ServiceID,
				)
			}
		default:
			return nil, fmt.Errorf("%w: illegal exception_type %d", ErrFeedInconsistent, cd.ExceptionType)
		}
	}

	return services, nil
}
