package report

import (
	"fmt"
	"strings"
	"time"

	"backend-fieldops/internal/attendance"
)

// ParseRange resolves the inclusive window [start 00:00, end 23:59:59.999999999]
// in loc. Dates are YYYY-MM-DD or RFC3339.
func ParseRange(startDate, endDate string, loc *time.Location) (time.Time, time.Time, error) {
	startDate, endDate = strings.TrimSpace(startDate), strings.TrimSpace(endDate)
	if startDate == "" || endDate == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start_date and end_date are required", attendance.ErrInvalidArgument)
	}
	start, err := parseDate(startDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDate(endDate, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end_date is before start_date", attendance.ErrInvalidArgument)
	}
	return start, endOfDay(end.Format(dateLayout), loc), nil
}

// Days counts calendar days in the window, both ends included.
func Days(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	return int(e.Sub(s).Hours()/24) + 1
}

func parseDate(v string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(dateLayout, v, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: malformed date %q", attendance.ErrInvalidArgument, v)
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

func endOfDay(date string, loc *time.Location) time.Time {
	t, _ := time.ParseInLocation(dateLayout, date, loc)
	return t.AddDate(0, 0, 1).Add(-time.Nanosecond)
}
