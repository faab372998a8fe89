package strava

import "time"

// Activity is a summary activity from /athlete/activities
type Activity struct {
	ID                 int64     `json:"id"`
	Athlete            Athlete   `json:"athlete"`
	Name               string    `json:"name"`
	Type               string    `json:"type"`
	SportType          string    `json:"sport_type"`
	StartDate          time.Time `json:"start_date"`
	Timezone           string    `json:"timezone"`
	Distance           float64   `json:"distance"`             // meters
	MovingTime         int       `json:"moving_time"`          // seconds
	ElapsedTime        int       `json:"elapsed_time"`         // seconds
	TotalElevationGain float64   `json:"total_elevation_gain"` // meters
	AverageSpeed       float64   `json:"average_speed"`        // m/s
	AverageTemp        *float64  `json:"average_temp"`         // °C, only from devices with a sensor
	Manual             bool      `json:"manual"`
	Trainer            bool      `json:"trainer"`
}

// Athlete represents a Strava athlete (minimal info in activity response)
type Athlete struct {
	ID int64 `json:"id"`
}

// Kind returns the sport type, falling back to the legacy type field
func (a Activity) Kind() string {
	if a.SportType != "" {
		return a.SportType
	}
	return a.Type
}

// EndDate is the start plus elapsed time
func (a Activity) EndDate() time.Time {
	return a.StartDate.Add(time.Duration(a.ElapsedTime) * time.Second)
}
