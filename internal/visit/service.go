package visit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"backend-fieldops/internal/db"
	"backend-fieldops/internal/events"
	"backend-fieldops/internal/geo"
	"backend-fieldops/internal/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Notifier pushes live updates to a user's subscribers.
type Notifier interface {
	Broadcast(key string, payload []byte)
}

type Service struct {
	db            db.Querier
	publisher     events.Publisher
	notifier      Notifier
	maxDistanceKm float64
	now           func() time.Time
}

func NewService(q db.Querier, publisher events.Publisher, notifier Notifier, maxDistanceKm float64) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{
		db:            q,
		publisher:     publisher,
		notifier:      notifier,
		maxDistanceKm: maxDistanceKm,
		now:           time.Now,
	}
}

const visitColumns = `
	v.id, v.sales_rep_id, v.client_id, v.check_in_time, v.comment, v.duration_min,
	c.company_name, c.address, c.contact_person, c.contact_phone, c.category, c.status,
	ST_Y(c.location::geometry), ST_X(c.location::geometry)`

// Lookup returns a client from the directory.
func (s *Service) Lookup(ctx context.Context, clientID string) (Client, error) {
	var c Client
	var lat, lng *float64
	err := s.db.QueryRow(ctx, `
		SELECT id, company_name, address, contact_person, contact_phone, category, status,
		       ST_Y(location::geometry), ST_X(location::geometry)
		FROM clients WHERE id=$1
	`, clientID).Scan(&c.ID, &c.CompanyName, &c.Address, &c.ContactPerson, &c.ContactPhone, &c.Category, &c.Status, &lat, &lng)
	if errors.Is(err, pgx.ErrNoRows) {
		return Client{}, ErrClientNotFound
	}
	if err != nil {
		return Client{}, fmt.Errorf("lookup client %s: %w", clientID, err)
	}
	c.Location = coordinate(lat, lng)
	return c, nil
}

// FindByUserAndWindow returns the user's visits with check-in inside
// [from, to], ordered by check-in, each with its client populated.
func (s *Service) FindByUserAndWindow(ctx context.Context, userID string, from, to time.Time) ([]Visit, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+visitColumns+`
		FROM visits v JOIN clients c ON c.id = v.client_id
		WHERE v.sales_rep_id=$1 AND v.check_in_time >= $2 AND v.check_in_time <= $3
		ORDER BY v.check_in_time
	`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query visits: %w", err)
	}
	defer rows.Close()

	visits := []Visit{}
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

func (s *Service) FindByID(ctx context.Context, id string) (Visit, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+visitColumns+`
		FROM visits v JOIN clients c ON c.id = v.client_id
		WHERE v.id=$1
	`, id)
	v, err := scanVisit(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Visit{}, ErrVisitNotFound
	}
	return v, err
}

// CheckIn records a visit when the rep stands close enough to the client.
func (s *Service) CheckIn(ctx context.Context, userID string, req CheckInRequest) (Visit, error) {
	client, err := s.Lookup(ctx, req.ClientID)
	if err != nil {
		return Visit{}, err
	}
	if client.Location == nil {
		return Visit{}, ErrNoClientLocation
	}

	here := geo.Coordinate{Lat: req.UserLat, Lng: req.UserLng}
	if d := geo.DistanceKm(here, *client.Location); d > s.maxDistanceKm {
		return Visit{}, fmt.Errorf("%w: %.3f km away, limit %.3f km", ErrTooFar, d, s.maxDistanceKm)
	}

	v := Visit{
		ID:          uuid.NewString(),
		SalesRepID:  userID,
		ClientID:    client.ID,
		CheckInTime: s.now(),
		Comment:     req.Comment,
		Client:      &client,
	}
	if _, err := s.db.Exec(ctx, `
		INSERT INTO visits (id, sales_rep_id, client_id, check_in_time, comment)
		VALUES ($1,$2,$3,$4,$5)
	`, v.ID, v.SalesRepID, v.ClientID, v.CheckInTime, v.Comment); err != nil {
		return Visit{}, fmt.Errorf("insert visit: %w", err)
	}

	if err := s.publisher.Publish(ctx, events.VisitCheckedIn, v); err != nil {
		logger.Ctx(ctx).Warn("publish visit event failed", logger.String("visit_id", v.ID), logger.Err(err))
	}
	s.notify(userID, v)
	return v, nil
}

// SetDuration backfills the visit length. Only the owner may change it.
func (s *Service) SetDuration(ctx context.Context, userID, visitID string, minutes int) (Visit, error) {
	if minutes < 0 {
		return Visit{}, ErrInvalidDuration
	}
	v, err := s.FindByID(ctx, visitID)
	if err != nil {
		return Visit{}, err
	}
	if v.SalesRepID != userID {
		return Visit{}, ErrVisitNotFound
	}

	if _, err := s.db.Exec(ctx, `UPDATE visits SET duration_min=$2 WHERE id=$1`, visitID, minutes); err != nil {
		return Visit{}, fmt.Errorf("update visit duration: %w", err)
	}
	v.DurationMin = &minutes
	return v, nil
}

func (s *Service) notify(userID string, v Visit) {
	if s.notifier == nil {
		return
	}
	payload, _ := json.Marshal(map[string]any{"type": events.VisitCheckedIn, "visit": v})
	s.notifier.Broadcast(userID, payload)
}

func scanVisit(row pgx.Row) (Visit, error) {
	var v Visit
	var c Client
	var lat, lng *float64
	if err := row.Scan(&v.ID, &v.SalesRepID, &v.ClientID, &v.CheckInTime, &v.Comment, &v.DurationMin,
		&c.CompanyName, &c.Address, &c.ContactPerson, &c.ContactPhone, &c.Category, &c.Status, &lat, &lng); err != nil {
		return Visit{}, err
	}
	c.ID = v.ClientID
	c.Location = coordinate(lat, lng)
	v.Client = &c
	return v, nil
}

func coordinate(lat, lng *float64) *geo.Coordinate {
	if lat == nil || lng == nil {
		return nil
	}
	return &geo.Coordinate{Lat: *lat, Lng: *lng}
}
