package attendance

import (
	"testing"
	"time"

	"backend-fieldops/internal/geo"
	"backend-fieldops/internal/visit"
)

var day = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func TestBuildWaypointsOrdersByCheckIn(t *testing.T) {
	end := at(day, 17, 0)
	rec := DailyRecord{
		StartTime:     at(day, 8, 0),
		StartLocation: geo.Coordinate{Lat: 0, Lng: 0},
		EndTime:       &end,
		EndLocation:   &geo.Coordinate{Lat: 3, Lng: 3},
	}
	visits := []visit.Visit{
		clientVisit("u", "b", at(day, 11, 0), &geo.Coordinate{Lat: 2, Lng: 2}),
		clientVisit("u", "a", at(day, 9, 0), &geo.Coordinate{Lat: 1, Lng: 1}),
	}

	wps := BuildWaypoints(rec, visits, true)
	want := []geo.Coordinate{{Lat: 0, Lng: 0}, {Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}, {Lat: 3, Lng: 3}}
	if len(wps) != len(want) {
		t.Fatalf("expected %d waypoints, got %d", len(want), len(wps))
	}
	for i := range want {
		if wps[i].Coordinate != want[i] {
			t.Fatalf("waypoint %d: got %v want %v", i, wps[i].Coordinate, want[i])
		}
	}
	if wps[0].Role != RoleStart || wps[1].Role != RoleVisit || wps[3].Role != RoleEnd {
		t.Fatalf("unexpected roles %+v", wps)
	}
	if wps[1].ClientID != "a" || wps[1].ClientName != "Client a" {
		t.Fatalf("expected client details on visit waypoint")
	}
	// input is left untouched
	if visits[0].ClientID != "b" {
		t.Fatalf("input slice was reordered")
	}
}

func TestBuildWaypointsSkipsClientsWithoutCoordinates(t *testing.T) {
	rec := DailyRecord{StartTime: at(day, 8, 0)}
	visits := []visit.Visit{
		clientVisit("u", "a", at(day, 9, 0), nil),
		{ID: "orphan", CheckInTime: at(day, 9, 30)},
		clientVisit("u", "b", at(day, 10, 0), &geo.Coordinate{Lat: 1, Lng: 1}),
	}
	wps := BuildWaypoints(rec, visits, false)
	if len(wps) != 2 || wps[1].ClientID != "b" {
		t.Fatalf("expected start plus one visit, got %+v", wps)
	}
}

func TestBuildWaypointsEndRequiresRecordedEnd(t *testing.T) {
	rec := DailyRecord{StartTime: at(day, 8, 0)}
	if wps := BuildWaypoints(rec, nil, true); len(wps) != 1 {
		t.Fatalf("expected end omitted when not recorded, got %d", len(wps))
	}

	end := at(day, 17, 0)
	rec.EndTime = &end
	rec.EndLocation = &geo.Coordinate{Lat: 1, Lng: 1}
	if wps := BuildWaypoints(rec, nil, false); len(wps) != 1 {
		t.Fatalf("expected end omitted when not requested, got %d", len(wps))
	}
}

func TestBuildWaypointsStableForEqualCheckIns(t *testing.T) {
	rec := DailyRecord{StartTime: at(day, 8, 0)}
	same := at(day, 9, 0)
	visits := []visit.Visit{
		clientVisit("u", "first", same, &geo.Coordinate{Lat: 1, Lng: 1}),
		clientVisit("u", "second", same, &geo.Coordinate{Lat: 2, Lng: 2}),
	}
	wps := BuildWaypoints(rec, visits, false)
	if wps[1].ClientID != "first" || wps[2].ClientID != "second" {
		t.Fatalf("expected input order kept for ties")
	}
}

func TestBuildWaypointsGrowsWithVisits(t *testing.T) {
	rec := DailyRecord{StartTime: at(day, 8, 0)}
	var visits []visit.Visit
	prev := len(BuildWaypoints(rec, visits, false))
	for i := 0; i < 5; i++ {
		visits = append(visits, clientVisit("u", string(rune('a'+i)), at(day, 9+i, 0), &geo.Coordinate{Lat: float64(i), Lng: 1}))
		n := len(BuildWaypoints(rec, visits, false))
		if n != prev+1 {
			t.Fatalf("expected one more waypoint per geolocated visit")
		}
		prev = n
	}
}
