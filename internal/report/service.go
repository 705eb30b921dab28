package report

import (
	"context"
	"time"

	"backend-fieldops/internal/attendance"
	"backend-fieldops/internal/logger"
	"backend-fieldops/internal/visit"
)

type RecordSource interface {
	FindOverlapping(ctx context.Context, userID string, from, to time.Time) ([]attendance.DailyRecord, error)
}

type VisitSource interface {
	FindByUserAndWindow(ctx context.Context, userID string, from, to time.Time) ([]visit.Visit, error)
}

type Service struct {
	records RecordSource
	visits  VisitSource
	loc     *time.Location
	now     func() time.Time
}

func NewService(records RecordSource, visits VisitSource, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{records: records, visits: visits, loc: loc, now: time.Now}
}

func (s *Service) GetRangeReport(ctx context.Context, userID, startDate, endDate string) (RangeReport, error) {
	from, to, err := ParseRange(startDate, endDate, s.loc)
	if err != nil {
		return RangeReport{}, err
	}

	records, err := s.records.FindOverlapping(ctx, userID, from, to)
	if err != nil {
		return RangeReport{}, err
	}
	visits, err := s.visits.FindByUserAndWindow(ctx, userID, from, to)
	if err != nil {
		return RangeReport{}, err
	}

	days := Aggregate(records, visits, s.loc, s.now())
	summary := Summarize(days, DateRange{Start: startDate, End: endDate, Days: Days(from, to)})

	logger.Ctx(ctx).Debug("range report built",
		logger.String("from", from.Format(dateLayout)),
		logger.String("to", to.Format(dateLayout)),
		logger.Int("days", len(days)),
	)
	return RangeReport{Summary: summary, DailyReports: days}, nil
}
