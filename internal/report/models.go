package report

import (
	"time"

	"backend-fieldops/internal/geo"
)

// Location is a point of the day shown on the report map.
type Location struct {
	Type       string         `json:"type"`
	Coordinate geo.Coordinate `json:"coordinate"`
	Time       time.Time      `json:"time"`
	ClientID   string         `json:"client_id,omitempty"`
	ClientName string         `json:"client_name,omitempty"`
}

type VisitSummary struct {
	VisitID       string          `json:"visit_id"`
	ClientID      string          `json:"client_id"`
	CompanyName   string          `json:"company_name"`
	Address       string          `json:"address"`
	ContactPerson string          `json:"contact_person"`
	ContactPhone  string          `json:"contact_phone"`
	Category      string          `json:"category"`
	Status        string          `json:"status"`
	Location      *geo.Coordinate `json:"location,omitempty"`
	CheckInTime   time.Time       `json:"check_in_time"`
	Duration      *int            `json:"duration,omitempty"`
	Comment       string          `json:"comment"`
}

type DailyReport struct {
	Date               string         `json:"date"`
	StartTime          *time.Time     `json:"start_time"`
	EndTime            *time.Time     `json:"end_time"`
	KmTravelled        float64        `json:"km_travelled"`
	DistanceIncomplete bool           `json:"distance_incomplete"`
	VisitCount         int            `json:"visit_count"`
	TotalDuration      int            `json:"total_duration"`
	WorkingHours       *float64       `json:"working_hours,omitempty"`
	Locations          []Location     `json:"locations"`
	Visits             []VisitSummary `json:"visits"`
}

type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Days  int    `json:"days"`
}

type Summary struct {
	TotalKm                 float64   `json:"total_km"`
	TotalVisits             int       `json:"total_visits"`
	TotalDuration           int       `json:"total_duration"`
	TotalWorkingDays        int       `json:"total_working_days"`
	AverageKmPerDay         float64   `json:"average_km_per_day"`
	AverageVisitsPerDay     float64   `json:"average_visits_per_day"`
	AverageDurationPerVisit float64   `json:"average_duration_per_visit"`
	DateRange               DateRange `json:"date_range"`
}

type RangeReport struct {
	Summary      Summary       `json:"summary"`
	DailyReports []DailyReport `json:"daily_reports"`
}

type RangeRequest struct {
	StartDate string `json:"start_date" query:"start_date"`
	EndDate   string `json:"end_date" query:"end_date"`
}
