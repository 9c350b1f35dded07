package scheduler

import (
	"fmt"
	"strings"
)

// Weekday labels a row of the weekly grid. Monday is zero.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

const (
	// PeriodMinutes is the length of a single grid period.
	PeriodMinutes = 30
	// DayStartMinutes is the wall clock start of period 1 (08:00).
	DayStartMinutes = 8 * 60
	// DefaultPeriodStart and DefaultPeriodEnd bound the default daily window.
	DefaultPeriodStart = 1
	DefaultPeriodEnd   = 18
	// PeriodsPerHour converts subject hour counts into periods.
	PeriodsPerHour = 60 / PeriodMinutes
)

var weekdayNames = [...]string{"MONDAY", "TUESDAY", "WEDNESDAY", "THURSDAY", "FRIDAY", "SATURDAY", "SUNDAY"}

// String returns the upper-case weekday name.
func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("WEEKDAY(%d)", int(d))
	}
	return weekdayNames[d]
}

// Short returns the three letter abbreviation used by exports.
func (d Weekday) Short() string {
	if !d.Valid() {
		return "?"
	}
	return weekdayNames[d][:3]
}

// Valid reports whether d is one of the seven weekdays.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

// MarshalText encodes the weekday by name.
func (d Weekday) MarshalText() ([]byte, error) {
	if !d.Valid() {
		return nil, fmt.Errorf("invalid weekday %d", int(d))
	}
	return []byte(d.String()), nil
}

// UnmarshalText accepts any form understood by ParseWeekday.
func (d *Weekday) UnmarshalText(text []byte) error {
	parsed, err := ParseWeekday(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseWeekday accepts full or abbreviated names in any case.
func ParseWeekday(raw string) (Weekday, error) {
	value := strings.ToUpper(strings.TrimSpace(raw))
	for idx, name := range weekdayNames {
		if value == name || (len(value) == 3 && value == name[:3]) {
			return Weekday(idx), nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", raw)
}

// Weekdays lists the full week in row order.
func Weekdays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// DefaultWeekdays lists Monday through Friday.
func DefaultWeekdays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}
}

// PeriodClock formats the start time of a period as HH:MM.
func PeriodClock(period int) string {
	minutes := DayStartMinutes + (period-1)*PeriodMinutes
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Span is a half-open run of periods [Start, Start+Size).
type Span struct {
	Start int `json:"start"`
	Size  int `json:"size"`
}

// SpanFromBounds converts the inclusive start/end form used by stored rows.
func SpanFromBounds(start, end int) Span {
	return Span{Start: start, Size: end - start + 1}
}

// End returns the inclusive last period of the span.
func (s Span) End() int {
	return s.Start + s.Size - 1
}

// Intersects reports whether both spans share at least one period.
func (s Span) Intersects(other Span) bool {
	return other.Start < s.Start+s.Size && other.Start+other.Size > s.Start
}
