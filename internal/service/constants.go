package service

const (
	// Unit conversions
	MetersPerMile      = 1609.344
	MetersPerKilometer = 1000.0
	FeetPerMeter       = 3.28084

	// Pagination
	DefaultPerPage = 100

	// Strava's "after" filter is exclusive, so resume one second before the
	// newest stored start to catch activities sharing that timestamp
	resumeOverlapSeconds = 1
)

// Activity types kept when no configuration is given
var DefaultActivityTypes = []string{"Run", "TrailRun", "Walk", "Hike"}
