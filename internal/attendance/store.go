package attendance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"backend-fieldops/internal/db"
	"backend-fieldops/internal/geo"

	"github.com/jackc/pgx/v5"
)

// Store persists daily records in Postgres.
type Store struct {
	db db.Querier
}

func NewStore(q db.Querier) *Store {
	return &Store{db: q}
}

const recordColumns = `id, user_id, work_date::text, start_time, end_time, start_lat, start_lng,
	end_lat, end_lng, km_travelled, distance_incomplete, failed_legs, created_at, updated_at`

// FindForDay returns nil without error when the user has no record that day.
func (s *Store) FindForDay(ctx context.Context, userID, workDate string) (*DailyRecord, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+recordColumns+`
		FROM daily_records WHERE user_id=$1 AND work_date=$2
	`, userID, workDate)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find daily record: %w", err)
	}
	return &rec, nil
}

func (s *Store) Create(ctx context.Context, rec DailyRecord) (DailyRecord, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO daily_records (id, user_id, work_date, start_time, start_lat, start_lng, km_travelled)
		VALUES ($1,$2,$3,$4,$5,$6,0)
		RETURNING created_at, updated_at
	`, rec.ID, rec.UserID, rec.WorkDate, rec.StartTime, rec.StartLocation.Lat, rec.StartLocation.Lng)
	if err := row.Scan(&rec.CreatedAt, &rec.UpdatedAt); err != nil {
		if db.IsUniqueViolation(err) {
			return DailyRecord{}, ErrConflict
		}
		return DailyRecord{}, fmt.Errorf("insert daily record: %w", err)
	}
	return rec, nil
}

// Complete writes the end of the day and its distance in one statement.
func (s *Store) Complete(ctx context.Context, rec DailyRecord) error {
	if rec.EndTime == nil || rec.EndLocation == nil {
		return fmt.Errorf("complete %s: %w", rec.ID, ErrInvalidArgument)
	}
	tag, err := s.db.Exec(ctx, `
		UPDATE daily_records
		SET end_time=$2, end_lat=$3, end_lng=$4, km_travelled=$5,
		    distance_incomplete=$6, failed_legs=$7, updated_at=now()
		WHERE id=$1 AND end_time IS NULL
	`, rec.ID, *rec.EndTime, rec.EndLocation.Lat, rec.EndLocation.Lng, rec.KmTravelled, rec.DistanceIncomplete, rec.FailedLegs)
	if err != nil {
		return fmt.Errorf("complete daily record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SaveDistance overwrites the stored distance of a record.
func (s *Store) SaveDistance(ctx context.Context, id string, res Result) error {
	_, err := s.db.Exec(ctx, `
		UPDATE daily_records
		SET km_travelled=$2, distance_incomplete=$3, failed_legs=$4, updated_at=now()
		WHERE id=$1
	`, id, res.KM, res.FailedLegs > 0, res.FailedLegs)
	if err != nil {
		return fmt.Errorf("save distance: %w", err)
	}
	return nil
}

// FindOverlapping returns the user's records that touch [from, to].
func (s *Store) FindOverlapping(ctx context.Context, userID string, from, to time.Time) ([]DailyRecord, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+recordColumns+`
		FROM daily_records
		WHERE user_id=$1 AND (
			(start_time >= $2 AND start_time <= $3)
			OR (end_time >= $2 AND end_time <= $3)
			OR (start_time <= $2 AND end_time >= $3)
		)
		ORDER BY start_time
	`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query daily records: %w", err)
	}
	defer rows.Close()

	records := []DailyRecord{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRecord(row pgx.Row) (DailyRecord, error) {
	var rec DailyRecord
	var endLat, endLng *float64
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.WorkDate, &rec.StartTime, &rec.EndTime,
		&rec.StartLocation.Lat, &rec.StartLocation.Lng, &endLat, &endLng,
		&rec.KmTravelled, &rec.DistanceIncomplete, &rec.FailedLegs, &rec.CreatedAt, &rec.UpdatedAt); err != nil {
		return DailyRecord{}, err
	}
	if endLat != nil && endLng != nil {
		rec.EndLocation = &geo.Coordinate{Lat: *endLat, Lng: *endLng}
	}
	return rec, nil
}
