package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/multierr"

	"runcohorts/internal/store"
)

// ImportedWorkout is one entry of a JSON workout export. Measurements are SI.
// Humidity only ever arrives this way: Strava summaries don't carry it.
type ImportedWorkout struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ActivityType string    `json:"activity_type"`
	Start        time.Time `json:"start"`
	End          time.Time `json:"end"`
	DistanceM    float64   `json:"distance_m"`
	DurationS    float64   `json:"duration_s"`
	ElevationM   float64   `json:"elevation_gain_m"`
	TemperatureC *float64  `json:"temperature_c,omitempty"`
	HumidityPct  *float64  `json:"humidity_pct,omitempty"`
}

func (w ImportedWorkout) validate() error {
	switch {
	case w.ID == "":
		return errors.New("missing id")
	case w.Start.IsZero():
		return fmt.Errorf("workout %s: missing start", w.ID)
	case w.DistanceM < 0 || w.DurationS < 0 || w.ElevationM < 0:
		return fmt.Errorf("workout %s: negative measurement", w.ID)
	case w.HumidityPct != nil && (*w.HumidityPct < 0 || *w.HumidityPct > 100):
		return fmt.Errorf("workout %s: humidity %v outside 0-100", w.ID, *w.HumidityPct)
	}
	return nil
}

// ImportWorkouts reads a JSON array of workouts from r and upserts the valid
// ones. It returns how many were stored and every rejected entry's error.
func ImportWorkouts(r io.Reader, db *store.DB) (int, error) {
	var entries []ImportedWorkout
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return 0, fmt.Errorf("decoding workouts: %w", err)
	}

	var (
		stored int
		errs   error
	)
	for _, e := range entries {
		if err := e.validate(); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}

		end := e.End
		if end.IsZero() {
			end = e.Start.Add(time.Duration(e.DurationS * float64(time.Second)))
		}
		w := &store.Workout{
			ID:            e.ID,
			Name:          e.Name,
			ActivityType:  e.ActivityType,
			StartDate:     e.Start,
			EndDate:       end,
			DistanceM:     e.DistanceM,
			DurationS:     e.DurationS,
			ElevationGain: e.ElevationM,
			AverageTempC:  e.TemperatureC,
			HumidityPct:   e.HumidityPct,
		}
		if w.ActivityType == "" {
			w.ActivityType = "Run"
		}
		if err := db.UpsertWorkout(w); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("storing workout %s: %w", e.ID, err))
			continue
		}
		stored++
	}
	return stored, errs
}
