package geo

import "testing"

func TestHaversineKm(t *testing.T) {
	// Jakarta (-6.2, 106.816) to Bandung (-6.9175, 107.6191) ~ 115-120 km
	d := HaversineKm(-6.2, 106.816, -6.9175, 107.6191)
	if d < 100 || d > 140 {
		t.Fatalf("unexpected distance: %v", d)
	}
}

func TestDistanceKmSamePoint(t *testing.T) {
	p := Coordinate{Lat: 1.5, Lng: 2.5}
	if d := DistanceKm(p, p); d != 0 {
		t.Fatalf("expected 0, got %v", d)
	}
}

func TestRoundedAndValid(t *testing.T) {
	c := Coordinate{Lat: -6.1234567, Lng: 106.7654321}.Rounded()
	if c.Lat != -6.12346 || c.Lng != 106.76543 {
		t.Fatalf("unexpected rounding: %+v", c)
	}
	if !c.Valid() {
		t.Fatalf("expected valid coordinate")
	}
	if (Coordinate{Lat: 91}).Valid() || (Coordinate{Lng: -181}).Valid() {
		t.Fatalf("expected out-of-range coordinates to be invalid")
	}
	if c.String() != "-6.12346,106.76543" {
		t.Fatalf("unexpected string %s", c.String())
	}
}
