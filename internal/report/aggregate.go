package report

import (
	"slices"
	"time"

	"backend-fieldops/internal/attendance"
	"backend-fieldops/internal/visit"

	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

// Aggregate groups records and visits by calendar date in loc. Records are
// keyed by their start, visits by their check-in. now bounds the working
// hours of a day that has not ended.
func Aggregate(records []attendance.DailyRecord, visits []visit.Visit, loc *time.Location, now time.Time) []DailyReport {
	recs := slices.Clone(records)
	slices.SortStableFunc(recs, func(a, b attendance.DailyRecord) int { return a.StartTime.Compare(b.StartTime) })
	vs := slices.Clone(visits)
	slices.SortStableFunc(vs, func(a, b visit.Visit) int { return a.CheckInTime.Compare(b.CheckInTime) })

	byDate := map[string]*DailyReport{}
	day := func(t time.Time) *DailyReport {
		key := t.In(loc).Format(dateLayout)
		d, ok := byDate[key]
		if !ok {
			d = &DailyReport{Date: key, Locations: []Location{}, Visits: []VisitSummary{}}
			byDate[key] = d
		}
		return d
	}

	for _, rec := range recs {
		d := day(rec.StartTime)
		if d.StartTime == nil {
			start := rec.StartTime.In(loc)
			d.StartTime = &start
		}
		d.KmTravelled += rec.KmTravelled
		d.DistanceIncomplete = d.DistanceIncomplete || rec.DistanceIncomplete
		d.Locations = append(d.Locations, Location{Type: string(attendance.RoleStart), Coordinate: rec.StartLocation, Time: rec.StartTime.In(loc)})
		if rec.EndTime != nil && rec.EndLocation != nil {
			end := rec.EndTime.In(loc)
			d.EndTime = &end
			d.Locations = append(d.Locations, Location{Type: string(attendance.RoleEnd), Coordinate: *rec.EndLocation, Time: end})
		}
	}

	for _, v := range vs {
		d := day(v.CheckInTime)
		s := summarizeVisit(v)
		s.CheckInTime = s.CheckInTime.In(loc)
		d.Visits = append(d.Visits, s)
		d.VisitCount++
		if v.DurationMin != nil {
			d.TotalDuration += *v.DurationMin
		}
		if s.Location != nil {
			d.Locations = append(d.Locations, Location{
				Type:       string(attendance.RoleVisit),
				Coordinate: *s.Location,
				Time:       s.CheckInTime,
				ClientID:   s.ClientID,
				ClientName: s.CompanyName,
			})
		}
	}

	days := make([]DailyReport, 0, len(byDate))
	for _, d := range byDate {
		d.WorkingHours = workingHours(*d, loc, now)
		days = append(days, *d)
	}
	slices.SortFunc(days, func(a, b DailyReport) int {
		switch {
		case a.Date < b.Date:
			return -1
		case a.Date > b.Date:
			return 1
		}
		return 0
	})
	return days
}

// Summarize folds the daily reports into range totals.
func Summarize(days []DailyReport, r DateRange) Summary {
	s := Summary{DateRange: r}
	for _, d := range days {
		s.TotalKm += d.KmTravelled
		s.TotalVisits += d.VisitCount
		s.TotalDuration += d.TotalDuration
		if d.StartTime != nil {
			s.TotalWorkingDays++
		}
	}
	s.AverageKmPerDay = ratio(s.TotalKm, float64(s.TotalWorkingDays))
	s.AverageVisitsPerDay = ratio(float64(s.TotalVisits), float64(s.TotalWorkingDays))
	s.AverageDurationPerVisit = ratio(float64(s.TotalDuration), float64(s.TotalVisits))
	return s
}

func summarizeVisit(v visit.Visit) VisitSummary {
	s := VisitSummary{
		VisitID:     v.ID,
		ClientID:    v.ClientID,
		CheckInTime: v.CheckInTime,
		Duration:    v.DurationMin,
		Comment:     v.Comment,
	}
	if c := v.Client; c != nil {
		s.CompanyName = c.CompanyName
		s.Address = c.Address
		s.ContactPerson = c.ContactPerson
		s.ContactPhone = c.ContactPhone
		s.Category = c.Category
		s.Status = c.Status
		s.Location = c.Location
	}
	return s
}

func workingHours(d DailyReport, loc *time.Location, now time.Time) *float64 {
	if d.StartTime == nil {
		return nil
	}
	end := now
	if d.EndTime != nil {
		end = *d.EndTime
	} else if eod := endOfDay(d.Date, loc); eod.Before(now) {
		end = eod
	}
	hours := end.Sub(*d.StartTime).Hours()
	if hours < 0 {
		hours = 0
	}
	h := round2(hours)
	return &h
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return decimal.NewFromFloat(num).Div(decimal.NewFromFloat(den)).Round(2).InexactFloat64()
}

func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}
