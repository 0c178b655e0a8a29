package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestAbsoluteTime(t *testing.T) {
	day := time.Date(2019, 6, 4, 0, 0, 0, 0, time.UTC)

	got := AbsoluteTime(day, 9, 5, 30, stockholm)
	assert.True(t, got.Equal(time.Date(2019, 6, 4, 9, 5, 30, 0, stockholm)))

	// Hours past 24 land on the next day.
	got = AbsoluteTime(day, 25, 30, 0, stockholm)
	assert.True(t, got.Equal(time.Date(2019, 6, 5, 1, 30, 0, 0, stockholm)))
}

func TestAbsoluteTimeDST(t *testing.T) {
	// Stockholm springs forward on 2019-03-31: 02:00 becomes
	// 03:00. Noon that day is only eleven hours of real time after
	// midnight.
	day := time.Date(2019, 3, 31, 0, 0, 0, 0, time.UTC)

	midnight := AbsoluteTime(day, 0, 0, 0, stockholm)
	noon := AbsoluteTime(day, 12, 0, 0, stockholm)
	assert.Equal(t, 11*time.Hour, noon.Sub(midnight))

	// A 26:00 stop time is 02:00 on April 1st, wall clock.
	after := AbsoluteTime(day, 26, 0, 0, stockholm)
	assert.True(t, after.Equal(time.Date(2019, 4, 1, 2, 0, 0, 0, stockholm)))
}
