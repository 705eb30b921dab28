package attendance

import (
	"slices"

	"backend-fieldops/internal/visit"
)

// BuildWaypoints stitches start, visits ordered by check-in and the optional
// end into the route of a day. Visits to clients without coordinates are
// skipped.
func BuildWaypoints(record DailyRecord, visits []visit.Visit, includeEnd bool) []Waypoint {
	ordered := slices.Clone(visits)
	slices.SortStableFunc(ordered, func(a, b visit.Visit) int {
		return a.CheckInTime.Compare(b.CheckInTime)
	})

	wps := make([]Waypoint, 0, len(ordered)+2)
	wps = append(wps, Waypoint{Coordinate: record.StartLocation, Role: RoleStart, ObservedAt: record.StartTime})

	for _, v := range ordered {
		if v.Client == nil || v.Client.Location == nil {
			continue
		}
		wps = append(wps, Waypoint{
			Coordinate: *v.Client.Location,
			Role:       RoleVisit,
			ObservedAt: v.CheckInTime,
			ClientID:   v.ClientID,
			ClientName: v.Client.CompanyName,
		})
	}

	if includeEnd && record.EndTime != nil && record.EndLocation != nil {
		wps = append(wps, Waypoint{Coordinate: *record.EndLocation, Role: RoleEnd, ObservedAt: *record.EndTime})
	}
	return wps
}
