package scheduler

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeekday(t *testing.T) {
	cases := map[string]Weekday{
		"monday":   Monday,
		"MON":      Monday,
		" Fri ":    Friday,
		"sunday":   Sunday,
		"Wed":      Wednesday,
		"THURSDAY": Thursday,
	}
	for raw, expected := range cases {
		day, err := ParseWeekday(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, expected, day, raw)
	}

	_, err := ParseWeekday("funday")
	assert.Error(t, err)
}

func TestWeekdayLabels(t *testing.T) {
	assert.Equal(t, "MONDAY", Monday.String())
	assert.Equal(t, "SAT", Saturday.Short())
	assert.Equal(t, "WEEKDAY(9)", Weekday(9).String())
	assert.False(t, Weekday(-1).Valid())
	assert.Len(t, Weekdays(), 7)
	assert.Equal(t, []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}, DefaultWeekdays())
}

func TestPeriodClock(t *testing.T) {
	assert.Equal(t, "08:00", PeriodClock(1))
	assert.Equal(t, "08:30", PeriodClock(2))
	assert.Equal(t, "16:30", PeriodClock(18))
}

func TestSpanBoundsRoundTrip(t *testing.T) {
	span := SpanFromBounds(3, 6)
	assert.Equal(t, Span{Start: 3, Size: 4}, span)
	assert.Equal(t, 6, span.End())
}

func TestSpanIntersects(t *testing.T) {
	base := Span{Start: 3, Size: 2} // periods 3-4

	assert.True(t, base.Intersects(Span{Start: 4, Size: 2}))
	assert.True(t, base.Intersects(Span{Start: 1, Size: 3}))
	assert.True(t, base.Intersects(Span{Start: 1, Size: 10}))
	assert.False(t, base.Intersects(Span{Start: 5, Size: 2}), "adjacent spans do not intersect")
	assert.False(t, base.Intersects(Span{Start: 1, Size: 2}))
	assert.False(t, base.Intersects(Span{Start: 3, Size: 0}))
}

func TestWeekdayJSON(t *testing.T) {
	raw, err := json.Marshal([]Weekday{Monday, Friday})
	require.NoError(t, err)
	assert.JSONEq(t, `["MONDAY","FRIDAY"]`, string(raw))

	var days []Weekday
	require.NoError(t, json.Unmarshal([]byte(`["tue","Sunday"]`), &days))
	assert.Equal(t, []Weekday{Tuesday, Sunday}, days)

	assert.Error(t, json.Unmarshal([]byte(`["someday"]`), &days))
	_, err = json.Marshal(Weekday(12))
	assert.Error(t, err)
}
