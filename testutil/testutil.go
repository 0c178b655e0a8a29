package testutil

// Helpers for building feeds and schedules in tests.

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"transit.dev/raptor/model"
	"transit.dev/raptor/parse"
	"transit.dev/raptor/schedule"
)

func BuildZip(
	t testing.TB,
	files map[string][]string,
) []byte {

	buf := &bytes.Buffer{}
	w := zip.NewWriter(buf)
	for filename, content := range files {
		f, err := w.Create(filename)
		require.NoError(t, err)
		_, err = f.Write([]byte(strings.Join(content, "\n")))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	return buf.Bytes()
}

// Builds a model.Feed from literal CSV tables. Missing files are filled in
// with (mostly blank) dummy data.
func BuildFeed(
	t testing.TB,
	files map[string][]string,
) *model.Feed {

	if files["agency.txt"] == nil {
		files["agency.txt"] = []string{
			"agency_timezone,agency_name,agency_url",
			"Europe/Stockholm,FooAgency,http://example.com",
		}
	}
	if files["calendar.txt"] == nil && files["calendar_dates.txt"] == nil {
		files["calendar.txt"] = []string{"service_id"}
	}
	if files["routes.txt"] == nil {
		files["routes.txt"] = []string{"route_id"}
	}
	if files["trips.txt"] == nil {
		files["trips.txt"] = []string{"trip_id"}
	}
	if files["stops.txt"] == nil {
		files["stops.txt"] = []string{"stop_id"}
	}
	if files["stop_times.txt"] == nil {
		files["stop_times.txt"] = []string{"stop_id"}
	}

	feed, err := parse.Feed(BuildZip(t, files))
	require.NoError(t, err)

	return feed
}

// Builds a Schedule from literal CSV tables.
func BuildSchedule(
	t testing.TB,
	files map[string][]string,
) *schedule.Schedule {

	sched, err := schedule.Build(BuildFeed(t, files), schedule.BuildOptions{})
	require.NoError(t, err)

	return sched
}
