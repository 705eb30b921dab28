package visit

import (
	"time"

	"backend-fieldops/internal/geo"
)

// Client is the directory projection the core needs.
type Client struct {
	ID            string          `json:"id"`
	CompanyName   string          `json:"company_name"`
	Address       string          `json:"address"`
	ContactPerson string          `json:"contact_person"`
	ContactPhone  string          `json:"contact_phone"`
	Category      string          `json:"category"`
	Status        string          `json:"status"`
	Location      *geo.Coordinate `json:"location,omitempty"`
}

type Visit struct {
	ID          string    `json:"id"`
	SalesRepID  string    `json:"sales_rep_id"`
	ClientID    string    `json:"client_id"`
	CheckInTime time.Time `json:"check_in_time"`
	Comment     string    `json:"comment"`
	DurationMin *int      `json:"duration,omitempty"`
	Client      *Client   `json:"client,omitempty"`
}

type CheckInRequest struct {
	ClientID string  `json:"client_id" validate:"required"`
	Comment  string  `json:"comment" validate:"max=2000"`
	UserLat  float64 `json:"user_lat" validate:"latitude"`
	UserLng  float64 `json:"user_lng" validate:"longitude"`
}

type DurationRequest struct {
	Duration *int `json:"duration" validate:"required,min=0"`
}
