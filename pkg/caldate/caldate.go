// Package caldate treats time.Time values as calendar dates: UTC midnight,
// no time-of-day component.
package caldate

import "time"

const Layout = "2006-01-02"

// Of truncates t to the calendar date it falls on in UTC.
func Of(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, err
	}
	return Of(t), nil
}

func Format(t time.Time) string { return Of(t).Format(Layout) }

// FormatPtr returns "" for nil.
func FormatPtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return Format(*t)
}

func AddDays(t time.Time, n int) time.Time { return Of(t).AddDate(0, 0, n) }

// DaysBetween returns the number of whole days from a to b (negative when b
// is before a).
func DaysBetween(a, b time.Time) int {
	return int(Of(b).Sub(Of(a)).Hours() / 24)
}
