package store

import "time"

// Auth represents OAuth tokens for Strava API access
type Auth struct {
	AthleteID    int64     `db:"athlete_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"`
}

// Workout is a stored workout summary. All measurements are SI.
type Workout struct {
	ID            string    `db:"id"`
	Name          string    `db:"name"`
	ActivityType  string    `db:"activity_type"`
	StartDate     time.Time `db:"start_date"`
	EndDate       time.Time `db:"end_date"`
	DistanceM     float64   `db:"distance_m"`
	DurationS     float64   `db:"duration_s"`
	ElevationGain float64   `db:"elevation_gain_m"`
	AverageTempC  *float64  `db:"average_temp_c"` // nullable
	HumidityPct   *float64  `db:"humidity_pct"`   // nullable
}
