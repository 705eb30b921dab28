package attendance

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"backend-fieldops/internal/geo"
	"backend-fieldops/internal/visit"
)

type fixture struct {
	svc       *Service
	store     *memStore
	ledger    *memLedger
	router    *countingRouter
	clock     *clock
	notifier  *recordingNotifier
	publisher *recordingPublisher
}

func newFixture(router *countingRouter) *fixture {
	f := &fixture{
		store:     newMemStore(),
		ledger:    &memLedger{},
		router:    router,
		clock:     &clock{t: at(day, 8, 0)},
		notifier:  &recordingNotifier{},
		publisher: &recordingPublisher{},
	}
	f.svc = NewService(f.store, f.ledger, NewAccumulator(router, 4, time.Second), f.notifier, f.publisher, time.UTC)
	f.svc.now = f.clock.now
	return f
}

func TestFullDayScenario(t *testing.T) {
	f := newFixture(haversineRouter())
	ctx := context.Background()

	if _, err := f.svc.StartDay(ctx, "rep-1", geo.Coordinate{Lat: 0, Lng: 0}); err != nil {
		t.Fatalf("start day: %v", err)
	}
	f.ledger.visits = []visit.Visit{
		clientVisit("rep-1", "B", at(day, 11, 0), &geo.Coordinate{Lat: 2, Lng: 2}),
		clientVisit("rep-1", "A", at(day, 9, 0), &geo.Coordinate{Lat: 1, Lng: 1}),
	}
	f.clock.set(17, 0)

	rec, err := f.svc.EndDay(ctx, "rep-1", geo.Coordinate{Lat: 3, Lng: 3})
	if err != nil {
		t.Fatalf("end day: %v", err)
	}

	want := geo.HaversineKm(0, 0, 1, 1) + geo.HaversineKm(1, 1, 2, 2) + geo.HaversineKm(2, 2, 3, 3)
	if math.Abs(rec.KmTravelled-want) > 1e-9 {
		t.Fatalf("expected %v km, got %v", want, rec.KmTravelled)
	}
	if f.router.calls.Load() != 3 {
		t.Fatalf("expected 3 legs, got %d", f.router.calls.Load())
	}
	if rec.State() != StateCompleted || rec.DistanceIncomplete {
		t.Fatalf("unexpected record %+v", rec)
	}

	status, err := f.svc.GetStatus(ctx, "rep-1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Status != StateCompleted || !status.HasStarted || !status.HasEnded || status.KmTravelled != rec.KmTravelled {
		t.Fatalf("unexpected status %+v", status)
	}
	if f.router.calls.Load() != 3 {
		t.Fatalf("completed status must not recompute")
	}
	if len(f.publisher.keys) != 2 || f.publisher.keys[0] != "attendance.day.started" || f.publisher.keys[1] != "attendance.day.completed" {
		t.Fatalf("unexpected events %v", f.publisher.keys)
	}
	if len(f.notifier.keys) == 0 || f.notifier.keys[0] != "rep-1" {
		t.Fatalf("expected live updates for rep-1")
	}
}

func TestStartDayTwiceConflicts(t *testing.T) {
	f := newFixture(fixedLegs(1))
	ctx := context.Background()

	if _, err := f.svc.StartDay(ctx, "rep-1", geo.Coordinate{}); err != nil {
		t.Fatalf("start day: %v", err)
	}
	f.clock.set(10, 0)
	if _, err := f.svc.StartDay(ctx, "rep-1", geo.Coordinate{}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}

	// after completion the day still cannot restart
	if _, err := f.svc.EndDay(ctx, "rep-1", geo.Coordinate{}); err != nil {
		t.Fatalf("end day: %v", err)
	}
	if _, err := f.svc.StartDay(ctx, "rep-1", geo.Coordinate{}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict after completion, got %v", err)
	}

	// another rep is independent
	if _, err := f.svc.StartDay(ctx, "rep-2", geo.Coordinate{}); err != nil {
		t.Fatalf("other rep start: %v", err)
	}
}

func TestStartDayUniqueViolationConflicts(t *testing.T) {
	f := newFixture(fixedLegs(1))
	f.store.createErr = ErrConflict

	if _, err := f.svc.StartDay(context.Background(), "rep-1", geo.Coordinate{}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	if len(f.publisher.keys) != 0 {
		t.Fatalf("no event expected on failed start")
	}
}

func TestEndDayWithoutActiveDay(t *testing.T) {
	f := newFixture(fixedLegs(1))
	ctx := context.Background()

	if _, err := f.svc.EndDay(ctx, "rep-1", geo.Coordinate{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	_, _ = f.svc.StartDay(ctx, "rep-1", geo.Coordinate{})
	_, _ = f.svc.EndDay(ctx, "rep-1", geo.Coordinate{})
	if _, err := f.svc.EndDay(ctx, "rep-1", geo.Coordinate{}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on second end, got %v", err)
	}
}

func TestEndDayLedgerFailureCommitsNothing(t *testing.T) {
	f := newFixture(fixedLegs(1))
	ctx := context.Background()
	_, _ = f.svc.StartDay(ctx, "rep-1", geo.Coordinate{})

	f.ledger.err = errors.New("ledger down")
	if _, err := f.svc.EndDay(ctx, "rep-1", geo.Coordinate{}); err == nil {
		t.Fatalf("expected error")
	}
	rec, _ := f.store.FindForDay(ctx, "rep-1", "2024-03-04")
	if rec.State() != StateActive {
		t.Fatalf("day must stay active, got %s", rec.State())
	}
}

func TestStartAndEndAtSamePoint(t *testing.T) {
	f := newFixture(haversineRouter())
	ctx := context.Background()
	here := geo.Coordinate{Lat: -6.2, Lng: 106.8}

	_, _ = f.svc.StartDay(ctx, "rep-1", here)
	f.clock.set(17, 0)
	rec, err := f.svc.EndDay(ctx, "rep-1", here)
	if err != nil {
		t.Fatalf("end day: %v", err)
	}
	if f.router.calls.Load() != 1 || rec.KmTravelled != 0 {
		t.Fatalf("expected a single zero-length leg, got %d calls, %v km", f.router.calls.Load(), rec.KmTravelled)
	}
}

func TestGetStatusNotStarted(t *testing.T) {
	f := newFixture(fixedLegs(1))
	status, err := f.svc.GetStatus(context.Background(), "rep-1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if status.Status != StateNotStarted || status.HasStarted || status.KmTravelled != 0 || status.DailyRecord != nil {
		t.Fatalf("unexpected status %+v", status)
	}
	if status.Date != "2024-03-04" || status.Message == "" {
		t.Fatalf("expected date and message, got %+v", status)
	}
}

func TestGetStatusActiveRecomputesIdempotently(t *testing.T) {
	f := newFixture(fixedLegs(4))
	ctx := context.Background()
	_, _ = f.svc.StartDay(ctx, "rep-1", geo.Coordinate{})
	f.ledger.visits = []visit.Visit{
		clientVisit("rep-1", "A", at(day, 9, 0), &geo.Coordinate{Lat: 1, Lng: 1}),
		clientVisit("rep-1", "B", at(day, 10, 0), &geo.Coordinate{Lat: 2, Lng: 2}),
	}
	f.clock.set(12, 0)

	first, err := f.svc.GetStatus(ctx, "rep-1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	second, _ := f.svc.GetStatus(ctx, "rep-1")
	if first.KmTravelled != 8 || second.KmTravelled != first.KmTravelled {
		t.Fatalf("expected stable 8 km, got %v then %v", first.KmTravelled, second.KmTravelled)
	}
	if first.Status != StateActive || first.HasEnded {
		t.Fatalf("unexpected status %+v", first)
	}
	if f.store.saves != 2 {
		t.Fatalf("expected distance persisted on each recompute, got %d", f.store.saves)
	}
}

func TestGetStatusFlagsIncompleteDistance(t *testing.T) {
	router := &countingRouter{fn: func(_ context.Context, _, d geo.Coordinate) (float64, error) {
		if d.Lat == 2 {
			return 0, errors.New("upstream 503")
		}
		return 3, nil
	}}
	f := newFixture(router)
	ctx := context.Background()
	_, _ = f.svc.StartDay(ctx, "rep-1", geo.Coordinate{})
	f.ledger.visits = []visit.Visit{
		clientVisit("rep-1", "A", at(day, 9, 0), &geo.Coordinate{Lat: 1, Lng: 1}),
		clientVisit("rep-1", "B", at(day, 10, 0), &geo.Coordinate{Lat: 2, Lng: 2}),
	}
	f.clock.set(12, 0)

	status, err := f.svc.GetStatus(ctx, "rep-1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	rec := status.DailyRecord
	if rec.KmTravelled != 3 || !rec.DistanceIncomplete || rec.FailedLegs != 1 {
		t.Fatalf("unexpected record %+v", rec)
	}

	// routing recovers and the flag clears
	router.fn = func(context.Context, geo.Coordinate, geo.Coordinate) (float64, error) { return 3, nil }
	status, _ = f.svc.GetStatus(ctx, "rep-1")
	if status.DailyRecord.DistanceIncomplete || status.KmTravelled != 6 {
		t.Fatalf("expected complete distance, got %+v", status.DailyRecord)
	}
}

func TestGetDayDetail(t *testing.T) {
	f := newFixture(fixedLegs(2))
	ctx := context.Background()

	detail, err := f.svc.GetDayDetail(ctx, "rep-1")
	if err != nil || detail.Status != StateNotStarted || len(detail.Visits) != 0 {
		t.Fatalf("unexpected detail %+v, %v", detail, err)
	}

	_, _ = f.svc.StartDay(ctx, "rep-1", geo.Coordinate{})
	f.ledger.visits = []visit.Visit{
		clientVisit("rep-1", "A", at(day, 9, 0), &geo.Coordinate{Lat: 1, Lng: 1}),
		clientVisit("rep-1", "late", at(day, 18, 0), &geo.Coordinate{Lat: 5, Lng: 5}),
	}
	f.clock.set(12, 0)

	detail, err = f.svc.GetDayDetail(ctx, "rep-1")
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if detail.Status != StateActive || len(detail.Visits) != 1 || detail.KmTravelled != 2 {
		t.Fatalf("unexpected active detail %+v", detail)
	}

	f.clock.set(17, 0)
	_, _ = f.svc.EndDay(ctx, "rep-1", geo.Coordinate{Lat: 3, Lng: 3})
	detail, err = f.svc.GetDayDetail(ctx, "rep-1")
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	// start -> A -> end
	if detail.Status != StateCompleted || detail.KmTravelled != 4 || detail.Visits[0].Client.CompanyName != "Client A" {
		t.Fatalf("unexpected completed detail %+v", detail)
	}
}

func TestRecompute(t *testing.T) {
	f := newFixture(fixedLegs(1.5))
	ctx := context.Background()

	if _, err := f.svc.Recompute(ctx, "rep-1", "not-a-date"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if _, err := f.svc.Recompute(ctx, "rep-1", "2024-03-04"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	_, _ = f.svc.StartDay(ctx, "rep-1", geo.Coordinate{})
	f.clock.set(17, 0)
	_, _ = f.svc.EndDay(ctx, "rep-1", geo.Coordinate{Lat: 1, Lng: 1})

	rec, err := f.svc.Recompute(ctx, "rep-1", "2024-03-04")
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if rec.KmTravelled != 1.5 {
		t.Fatalf("expected end leg included, got %v", rec.KmTravelled)
	}
}

func TestBusinessTimezoneDecidesToday(t *testing.T) {
	jakarta := time.FixedZone("WIB", 7*3600)
	f := newFixture(fixedLegs(1))
	f.svc.loc = jakarta
	// 20:00 UTC on the 4th is 03:00 on the 5th in Jakarta
	f.clock.t = time.Date(2024, 3, 4, 20, 0, 0, 0, time.UTC)

	rec, err := f.svc.StartDay(context.Background(), "rep-1", geo.Coordinate{})
	if err != nil {
		t.Fatalf("start day: %v", err)
	}
	if rec.WorkDate != "2024-03-05" {
		t.Fatalf("expected Jakarta calendar date, got %s", rec.WorkDate)
	}
}
