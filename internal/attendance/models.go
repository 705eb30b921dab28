package attendance

import (
	"time"

	"backend-fieldops/internal/geo"
	"backend-fieldops/internal/visit"
)

type State string

const (
	StateNotStarted State = "NOT_STARTED"
	StateActive     State = "ACTIVE"
	StateCompleted  State = "COMPLETED"
)

const dateLayout = "2006-01-02"

// DailyRecord is one rep's working day. At most one exists per user and date.
type DailyRecord struct {
	ID                 string          `json:"id"`
	UserID             string          `json:"user_id"`
	WorkDate           string          `json:"work_date"`
	StartTime          time.Time       `json:"start_time"`
	EndTime            *time.Time      `json:"end_time,omitempty"`
	StartLocation      geo.Coordinate  `json:"start_location"`
	EndLocation        *geo.Coordinate `json:"end_location,omitempty"`
	KmTravelled        float64         `json:"km_travelled"`
	DistanceIncomplete bool            `json:"distance_incomplete"`
	FailedLegs         int             `json:"failed_legs"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

func (r *DailyRecord) State() State {
	switch {
	case r == nil:
		return StateNotStarted
	case r.EndTime == nil:
		return StateActive
	default:
		return StateCompleted
	}
}

func (r *DailyRecord) apply(res Result) {
	r.KmTravelled = res.KM
	r.FailedLegs = res.FailedLegs
	r.DistanceIncomplete = res.FailedLegs > 0
}

type Role string

const (
	RoleStart Role = "start"
	RoleVisit Role = "visit"
	RoleEnd   Role = "end"
)

// Waypoint is a derived point of the day's route. Never persisted.
type Waypoint struct {
	Coordinate geo.Coordinate `json:"coordinate"`
	Role       Role           `json:"role"`
	ObservedAt time.Time      `json:"observed_at"`
	ClientID   string         `json:"client_id,omitempty"`
	ClientName string         `json:"client_name,omitempty"`
}

type StatusView struct {
	Status      State        `json:"status"`
	Message     string       `json:"message"`
	Date        string       `json:"date"`
	KmTravelled float64      `json:"km_travelled"`
	HasStarted  bool         `json:"has_started"`
	HasEnded    bool         `json:"has_ended"`
	DailyRecord *DailyRecord `json:"daily_record"`
}

type DayDetail struct {
	Status      State         `json:"status"`
	Message     string        `json:"message"`
	DailyRecord *DailyRecord  `json:"daily_record"`
	Visits      []visit.Visit `json:"visits"`
	KmTravelled float64       `json:"km_travelled"`
}

type CoordinateRequest struct {
	Lat *float64 `json:"lat" validate:"required,latitude"`
	Lng *float64 `json:"lng" validate:"required,longitude"`
}

func (r CoordinateRequest) Coordinate() geo.Coordinate {
	return geo.Coordinate{Lat: *r.Lat, Lng: *r.Lng}
}

func stateMessage(s State) string {
	switch s {
	case StateActive:
		return "Your working day is in progress"
	case StateCompleted:
		return "Your working day is completed"
	default:
		return "You have not started your working day yet"
	}
}
