package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-06-01")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.June, 1), d)
	assert.Equal(t, "2024-06-01", d.String())

	for _, bad := range []string{"", "2024-6-1", "01/06/2024", "2024-02-30"} {
		_, err := ParseDate(bad)
		assert.Error(t, err, bad)
	}
}

func TestDateOf_UsesLocalCalendarDay(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*3600)
	// 2024-06-01 20:00 UTC is already 2024-06-02 in Tokyo.
	instant := time.Date(2024, time.June, 1, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, NewDate(2024, time.June, 1), DateOf(instant))
	assert.Equal(t, NewDate(2024, time.June, 2), DateOf(instant.In(tokyo)))
}

func TestNightsBetween(t *testing.T) {
	start := NewDate(2024, time.January, 1)
	assert.Equal(t, 1, NightsBetween(start, start.AddDays(1)))
	assert.Equal(t, 2, NightsBetween(start, start.AddDays(2)))
	assert.Equal(t, 366, NightsBetween(start, NewDate(2025, time.January, 1)))
	assert.Equal(t, -3, NightsBetween(start, start.AddDays(-3)))

	// Crossing a DST change elsewhere has no effect on UTC dates.
	assert.Equal(t, 1, NightsBetween(NewDate(2024, time.March, 30), NewDate(2024, time.March, 31)))
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2024-06-10"))
	assert.Equal(t, NewDate(2024, time.June, 10), d)

	require.NoError(t, d.Scan([]byte("2024-06-11T00:00:00Z")))
	assert.Equal(t, NewDate(2024, time.June, 11), d)

	require.NoError(t, d.Scan(time.Date(2024, time.June, 12, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, NewDate(2024, time.June, 12), d)

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}

func TestDate_Value(t *testing.T) {
	v, err := NewDate(2024, time.June, 5).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-06-05", v)
}
