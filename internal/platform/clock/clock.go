package clock

import "time"

const (
	// TimestampLayout is the second-resolution wall-clock format persisted in
	// the record store.
	TimestampLayout = "2006-01-02 15:04:05"
	DateLayout      = "2006-01-02"
)

// Clock abstracts time to keep usecases deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock reports wall-clock time in Location (time.Local when nil).
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	loc := c.Location
	if loc == nil {
		loc = time.Local
	}
	return time.Now().In(loc)
}

// Format renders t with TimestampLayout after dropping sub-second precision.
func Format(t time.Time) string {
	return t.Truncate(time.Second).Format(TimestampLayout)
}

// Parse reads a TimestampLayout value in loc.
func Parse(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(TimestampLayout, value, loc)
}

// Date returns the calendar day of t as DateLayout.
func Date(t time.Time) string {
	return t.Format(DateLayout)
}
