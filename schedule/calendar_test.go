package schedule

import (
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"transit.dev/raptor/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sortedDates(dates []time.Time) []time.Time {
	sorted := append([]time.Time{}, dates...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Before(sorted[j])
	})
	return sorted
}

func TestExpandCalendarsWeekdays(t *testing.T) {
	// Mondays and Wednesdays over two weeks, June 2019. The 3rd is a
	// Monday.
	services, err := ExpandCalendars(
		[]model.Calendar{
			{
				ServiceID: "s",
				StartDate: "20190603",
				EndDate:   "20190616",
				Weekday:   1<<time.Monday | 1<<time.Wednesday,
			},
		},
		nil,
		DateWindow{},
	)
	require.NoError(t, err)

	assert.Equal(t, []time.Time{
		date(2019, 6, 3),
		date(2019, 6, 5),
		date(2019, 6, 10),
		date(2019, 6, 12),
	}, sortedDates(services["s"]))
}

func TestExpandCalendarsWindow(t *testing.T) {
	cal := []model.Calendar{
		{
			ServiceID: "daily",
			StartDate: "20190601",
			EndDate:   "20190630",
			Weekday:   127,
		},
	}

	// Window narrower than the calendar period on both sides.
	services, err := ExpandCalendars(cal, nil, DateWindow{
		From: date(2019, 6, 10),
		To:   date(2019, 6, 12),
	})
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		date(2019, 6, 10),
		date(2019, 6, 11),
		date(2019, 6, 12),
	}, sortedDates(services["daily"]))

	// Window wider than the calendar period changes nothing.
	services, err = ExpandCalendars(cal, nil, DateWindow{
		From: date(2019, 1, 1),
		To:   date(2019, 12, 31),
	})
	require.NoError(t, err)
	assert.Len(t, services["daily"], 30)

	// Reversed window is a parameter error.
	_, err = ExpandCalendars(cal, nil, DateWindow{
		From: date(2019, 6, 12),
		To:   date(2019, 6, 10),
	})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestExpandCalendarsExceptions(t *testing.T) {
	cal := []model.Calendar{
		{
			ServiceID: "mondays",
			StartDate: "20190603",
			EndDate:   "20190616",
			Weekday:   1 << time.Monday,
		},
	}

	// An added date lands in the set even though its weekday is
	// inactive; a removed date disappears.
	services, err := ExpandCalendars(cal, []model.CalendarDate{
		{ServiceID: "mondays", Date: "20190605", ExceptionType: model.ExceptionTypeAdded},
		{ServiceID: "mondays", Date: "20190610", ExceptionType: model.ExceptionTypeRemoved},
	}, DateWindow{})
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		date(2019, 6, 3),
		date(2019, 6, 5),
	}, sortedDates(services["mondays"]))

	// Removing a date that isn't active is a feed error.
	_, err = ExpandCalendars(cal, []model.CalendarDate{
		{ServiceID: "mondays", Date: "20190604", ExceptionType: model.ExceptionTypeRemoved},
	}, DateWindow{})
	assert.ErrorIs(t, err, ErrFeedInconsistent)

	// So is removing from an unknown service.
	_, err = ExpandCalendars(cal, []model.CalendarDate{
		{ServiceID: "nope", Date: "20190603", ExceptionType: model.ExceptionTypeRemoved},
	}, DateWindow{})
	assert.ErrorIs(t, err, ErrFeedInconsistent)

	// Exceptions outside the window are ignored, including removals
	// that would otherwise have no match.
	services, err = ExpandCalendars(cal, []model.CalendarDate{
		{ServiceID: "mondays", Date: "20190624", ExceptionType: model.ExceptionTypeAdded},
		{ServiceID: "mondays", Date: "20190625", ExceptionType: model.ExceptionTypeRemoved},
	}, DateWindow{From: date(2019, 6, 3), To: date(2019, 6, 16)})
	require.NoError(t, err)
	assert.Equal(t, []time.Time{
		date(2019, 6, 3),
		date(2019, 6, 10),
	}, sortedDates(services["mondays"]))
}

func TestExpandCalendarsDuplicateService(t *testing.T) {
	_, err := ExpandCalendars(
		[]model.Calendar{
			{ServiceID: "s", StartDate: "20190601", EndDate: "20190630", Weekday: 127},
			{ServiceID: "s", StartDate: "20190701", EndDate: "20190731", Weekday: 127},
		},
		nil,
		DateWindow{},
	)
	assert.ErrorIs(t, err, ErrFeedInconsistent)
}

// For every date in the period: it is in the expanded set iff its weekday
// is active and it wasn't removed; added dates are always in the set.
func TestExpandCalendarsRoundTrip(t *testing.T) {
	start := date(2019, 6, 1)
	end := date(2019, 6, 30)
	weekday := int8(1<<time.Tuesday | 1<<time.Saturday)
	removed := date(2019, 6, 8)
	added := date(2019, 6, 5)

	services, err := ExpandCalendars(
		[]model.Calendar{
			{ServiceID: "s", StartDate: "20190601", EndDate: "20190630", Weekday: weekday},
		},
		[]model.CalendarDate{
			{ServiceID: "s", Date: "20190605", ExceptionType: model.ExceptionTypeAdded},
			{ServiceID: "s", Date: "20190608", ExceptionType: model.ExceptionTypeRemoved},
		},
		DateWindow{},
	)
	require.NoError(t, err)

	inSet := map[time.Time]bool{}
	for _, d := range services["s"] {
		inSet[d] = true
	}

	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		expected := weekday&(1<<d.Weekday()) != 0
		if d.Equal(removed) {
			expected = false
		}
		if d.Equal(added) {
			expected = true
		}
		assert.Equal(t, expected, inSet[d], "date %s", d.Format("20060102"))
	}
}
