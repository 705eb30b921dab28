package attendance

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backend-fieldops/internal/events"
	"backend-fieldops/internal/geo"
	"backend-fieldops/internal/logger"
	"backend-fieldops/internal/visit"

	"github.com/google/uuid"
)

type RecordStore interface {
	FindForDay(ctx context.Context, userID, workDate string) (*DailyRecord, error)
	Create(ctx context.Context, rec DailyRecord) (DailyRecord, error)
	Complete(ctx context.Context, rec DailyRecord) error
	SaveDistance(ctx context.Context, id string, res Result) error
}

// VisitLedger returns visits with check-in inside [from, to], clients populated.
type VisitLedger interface {
	FindByUserAndWindow(ctx context.Context, userID string, from, to time.Time) ([]visit.Visit, error)
}

// Notifier pushes live updates to a user's subscribers.
type Notifier interface {
	Broadcast(key string, payload []byte)
}

type Service struct {
	store     RecordStore
	visits    VisitLedger
	acc       *Accumulator
	notifier  Notifier
	publisher events.Publisher
	loc       *time.Location
	now       func() time.Time
}

func NewService(store RecordStore, visits VisitLedger, acc *Accumulator, notifier Notifier, publisher events.Publisher, loc *time.Location) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		store:     store,
		visits:    visits,
		acc:       acc,
		notifier:  notifier,
		publisher: publisher,
		loc:       loc,
		now:       time.Now,
	}
}

// Today is the current calendar date in the business timezone.
func (s *Service) Today() string {
	return s.now().In(s.loc).Format(dateLayout)
}

func (s *Service) StartDay(ctx context.Context, userID string, at geo.Coordinate) (DailyRecord, error) {
	now := s.now()
	date := now.In(s.loc).Format(dateLayout)

	existing, err := s.store.FindForDay(ctx, userID, date)
	if err != nil {
		return DailyRecord{}, err
	}
	if existing != nil {
		return DailyRecord{}, ErrConflict
	}

	rec, err := s.store.Create(ctx, DailyRecord{
		ID:            uuid.NewString(),
		UserID:        userID,
		WorkDate:      date,
		StartTime:     now,
		StartLocation: at,
	})
	if err != nil {
		return DailyRecord{}, err
	}

	logger.Ctx(ctx).Info("working day started", logger.String("record_id", rec.ID), logger.String("date", date))
	s.emit(ctx, events.DayStarted, &rec)
	return rec, nil
}

func (s *Service) EndDay(ctx context.Context, userID string, at geo.Coordinate) (DailyRecord, error) {
	date := s.Today()
	rec, err := s.store.FindForDay(ctx, userID, date)
	if err != nil {
		return DailyRecord{}, err
	}
	if rec.State() != StateActive {
		return DailyRecord{}, ErrNotFound
	}

	end := s.now()
	rec.EndTime = &end
	rec.EndLocation = &at
	if _, err := s.measure(ctx, rec, true); err != nil {
		return DailyRecord{}, err
	}
	if err := s.store.Complete(ctx, *rec); err != nil {
		return DailyRecord{}, err
	}

	logger.Ctx(ctx).Info("working day completed",
		logger.String("record_id", rec.ID),
		logger.Float64("km", rec.KmTravelled),
		logger.Int("failed_legs", rec.FailedLegs),
	)
	s.emit(ctx, events.DayCompleted, rec)
	return *rec, nil
}

func (s *Service) GetStatus(ctx context.Context, userID string) (StatusView, error) {
	date := s.Today()
	rec, err := s.store.FindForDay(ctx, userID, date)
	if err != nil {
		return StatusView{}, err
	}
	if rec.State() == StateActive {
		if _, err := s.recompute(ctx, rec, false); err != nil {
			return StatusView{}, err
		}
	}

	state := rec.State()
	view := StatusView{
		Status:      state,
		Message:     stateMessage(state),
		Date:        date,
		HasStarted:  state != StateNotStarted,
		HasEnded:    state == StateCompleted,
		DailyRecord: rec,
	}
	if rec != nil {
		view.KmTravelled = rec.KmTravelled
	}
	return view, nil
}

// GetDayDetail is GetStatus plus the day's visits. Completed days are
// recomputed with their end point.
func (s *Service) GetDayDetail(ctx context.Context, userID string) (DayDetail, error) {
	rec, err := s.store.FindForDay(ctx, userID, s.Today())
	if err != nil {
		return DayDetail{}, err
	}
	state := rec.State()
	detail := DayDetail{Status: state, Message: stateMessage(state), DailyRecord: rec, Visits: []visit.Visit{}}
	if rec == nil {
		return detail, nil
	}

	visits, err := s.recompute(ctx, rec, state == StateCompleted)
	if err != nil {
		return DayDetail{}, err
	}
	detail.Visits = visits
	detail.KmTravelled = rec.KmTravelled
	return detail, nil
}

// Recompute refreshes the stored distance of the user's record on date.
func (s *Service) Recompute(ctx context.Context, userID, date string) (DailyRecord, error) {
	if _, err := time.ParseInLocation(dateLayout, date, s.loc); err != nil {
		return DailyRecord{}, fmt.Errorf("%w: date %q", ErrInvalidArgument, date)
	}
	rec, err := s.store.FindForDay(ctx, userID, date)
	if err != nil {
		return DailyRecord{}, err
	}
	if rec == nil {
		return DailyRecord{}, ErrNotFound
	}
	if _, err := s.recompute(ctx, rec, rec.State() == StateCompleted); err != nil {
		return DailyRecord{}, err
	}
	return *rec, nil
}

func (s *Service) recompute(ctx context.Context, rec *DailyRecord, includeEnd bool) ([]visit.Visit, error) {
	visits, err := s.measure(ctx, rec, includeEnd)
	if err != nil {
		return nil, err
	}
	if err := s.store.SaveDistance(ctx, rec.ID, Result{KM: rec.KmTravelled, FailedLegs: rec.FailedLegs}); err != nil {
		return nil, err
	}
	s.notify(ctx, rec)
	return visits, nil
}

// measure loads the day's visits and applies the route distance to rec.
func (s *Service) measure(ctx context.Context, rec *DailyRecord, includeEnd bool) ([]visit.Visit, error) {
	to := s.now()
	if rec.EndTime != nil {
		to = *rec.EndTime
	}
	visits, err := s.visits.FindByUserAndWindow(ctx, rec.UserID, rec.StartTime, to)
	if err != nil {
		return nil, fmt.Errorf("load visits: %w", err)
	}

	res := s.acc.Accumulate(ctx, BuildWaypoints(*rec, visits, includeEnd))
	rec.apply(res)
	if res.FailedLegs > 0 {
		logger.Ctx(ctx).Warn("distance incomplete",
			logger.String("record_id", rec.ID),
			logger.Int("failed_legs", res.FailedLegs),
			logger.Int("legs", res.Legs),
		)
	}
	return visits, nil
}

func (s *Service) emit(ctx context.Context, key string, rec *DailyRecord) {
	if err := s.publisher.Publish(ctx, key, rec); err != nil {
		logger.Ctx(ctx).Warn("publish event failed", logger.String("event", key), logger.Err(err))
	}
	s.notify(ctx, rec)
}

func (s *Service) notify(ctx context.Context, rec *DailyRecord) {
	if s.notifier == nil {
		return
	}
	state := rec.State()
	payload, err := json.Marshal(map[string]any{
		"type":         "attendance.status",
		"status":       state,
		"km_travelled": rec.KmTravelled,
		"daily_record": rec,
	})
	if err != nil {
		logger.Ctx(ctx).Warn("encode live update failed", logger.Err(err))
		return
	}
	s.notifier.Broadcast(rec.UserID, payload)
}
