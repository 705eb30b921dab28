package attendance

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"backend-fieldops/internal/geo"
	"backend-fieldops/internal/visit"
)

type routerFunc func(ctx context.Context, origin, dest geo.Coordinate) (float64, error)

type countingRouter struct {
	fn    routerFunc
	calls atomic.Int32
}

func (r *countingRouter) LegDistance(ctx context.Context, origin, dest geo.Coordinate) (float64, error) {
	r.calls.Add(1)
	return r.fn(ctx, origin, dest)
}

// fixedLegs answers every leg with the same distance.
func fixedLegs(km float64) *countingRouter {
	return &countingRouter{fn: func(context.Context, geo.Coordinate, geo.Coordinate) (float64, error) { return km, nil }}
}

func haversineRouter() *countingRouter {
	return &countingRouter{fn: func(_ context.Context, o, d geo.Coordinate) (float64, error) { return geo.DistanceKm(o, d), nil }}
}

type memStore struct {
	mu        sync.Mutex
	records   map[string]*DailyRecord
	createErr error
	saves     int
}

func newMemStore() *memStore {
	return &memStore{records: map[string]*DailyRecord{}}
}

func (m *memStore) key(userID, date string) string { return userID + "/" + date }

func (m *memStore) FindForDay(_ context.Context, userID, date string) (*DailyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[m.key(userID, date)]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (m *memStore) Create(_ context.Context, rec DailyRecord) (DailyRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return DailyRecord{}, m.createErr
	}
	k := m.key(rec.UserID, rec.WorkDate)
	if _, ok := m.records[k]; ok {
		return DailyRecord{}, ErrConflict
	}
	rec.CreatedAt = rec.StartTime
	rec.UpdatedAt = rec.StartTime
	m.records[k] = &rec
	return rec, nil
}

func (m *memStore) Complete(_ context.Context, rec DailyRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.records[m.key(rec.UserID, rec.WorkDate)]
	if !ok || stored.EndTime != nil {
		return ErrNotFound
	}
	cp := rec
	m.records[m.key(rec.UserID, rec.WorkDate)] = &cp
	return nil
}

func (m *memStore) SaveDistance(_ context.Context, id string, res Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.ID == id {
			rec.apply(res)
			m.saves++
			return nil
		}
	}
	return errors.New("record not found")
}

type memLedger struct {
	visits []visit.Visit
	err    error
}

func (l *memLedger) FindByUserAndWindow(_ context.Context, userID string, from, to time.Time) ([]visit.Visit, error) {
	if l.err != nil {
		return nil, l.err
	}
	out := []visit.Visit{}
	for _, v := range l.visits {
		if v.SalesRepID == userID && !v.CheckInTime.Before(from) && !v.CheckInTime.After(to) {
			out = append(out, v)
		}
	}
	return out, nil
}

func clientVisit(userID, clientID string, at time.Time, loc *geo.Coordinate) visit.Visit {
	return visit.Visit{
		ID:          "visit-" + clientID,
		SalesRepID:  userID,
		ClientID:    clientID,
		CheckInTime: at,
		Client:      &visit.Client{ID: clientID, CompanyName: "Client " + clientID, Location: loc},
	}
}

type recordingNotifier struct {
	mu   sync.Mutex
	keys []string
}

func (n *recordingNotifier) Broadcast(key string, _ []byte) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.keys = append(n.keys, key)
}

type recordingPublisher struct {
	mu   sync.Mutex
	keys []string
}

func (p *recordingPublisher) Publish(_ context.Context, key string, _ any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.keys = append(p.keys, key)
	return nil
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }
func (c *clock) set(h, m int) {
	c.t = time.Date(c.t.Year(), c.t.Month(), c.t.Day(), h, m, 0, 0, c.t.Location())
}
func at(base time.Time, h, m int) time.Time {
	return time.Date(base.Year(), base.Month(), base.Day(), h, m, 0, 0, base.Location())
}
