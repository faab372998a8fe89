package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const workoutColumns = `id, name, activity_type, start_date, end_date,
	distance_m, duration_s, elevation_gain_m, average_temp_c, humidity_pct`

// UpsertWorkout inserts or updates a workout
func (db *DB) UpsertWorkout(w *Workout) error {
	_, err := db.Exec(`
		INSERT INTO workouts (`+workoutColumns+`, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			activity_type = excluded.activity_type,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			distance_m = excluded.distance_m,
			duration_s = excluded.duration_s,
			elevation_gain_m = excluded.elevation_gain_m,
			average_temp_c = excluded.average_temp_c,
			humidity_pct = excluded.humidity_pct,
			updated_at = CURRENT_TIMESTAMP
	`,
		w.ID, w.Name, w.ActivityType,
		w.StartDate.UTC().Format(time.RFC3339), w.EndDate.UTC().Format(time.RFC3339),
		w.DistanceM, w.DurationS, w.ElevationGain, w.AverageTempC, w.HumidityPct,
	)
	if err != nil {
		return fmt.Errorf("upserting workout %s: %w", w.ID, err)
	}
	return nil
}

// GetWorkout retrieves a workout by ID
func (db *DB) GetWorkout(id string) (*Workout, error) {
	row := db.QueryRow(`SELECT `+workoutColumns+` FROM workouts WHERE id = ?`, id)

	w, err := scanWorkout(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// ListWorkouts returns workouts ordered by start date ascending. With no
// activity types every workout is returned.
func (db *DB) ListWorkouts(activityTypes ...string) ([]Workout, error) {
	query := `SELECT ` + workoutColumns + ` FROM workouts`
	args := make([]any, len(activityTypes))
	if len(activityTypes) > 0 {
		placeholders := make([]string, len(activityTypes))
		for i, t := range activityTypes {
			placeholders[i] = "?"
			args[i] = t
		}
		query += ` WHERE activity_type IN (` + strings.Join(placeholders, ",") + `)`
	}
	query += ` ORDER BY start_date ASC, id ASC`

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	defer rows.Close()

	var workouts []Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, *w)
	}
	return workouts, rows.Err()
}

// CountWorkouts returns the total number of workouts
func (db *DB) CountWorkouts() (int, error) {
	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM workouts").Scan(&count)
	return count, err
}

// DeleteWorkout removes a workout
func (db *DB) DeleteWorkout(id string) error {
	result, err := db.Exec(`DELETE FROM workouts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkout(row rowScanner) (*Workout, error) {
	var w Workout
	var startDate, endDate string

	err := row.Scan(
		&w.ID, &w.Name, &w.ActivityType, &startDate, &endDate,
		&w.DistanceM, &w.DurationS, &w.ElevationGain, &w.AverageTempC, &w.HumidityPct,
	)
	if err != nil {
		return nil, err
	}

	if w.StartDate, err = time.Parse(time.RFC3339, startDate); err != nil {
		return nil, fmt.Errorf("parsing start_date %q: %w", startDate, err)
	}
	if w.EndDate, err = time.Parse(time.RFC3339, endDate); err != nil {
		return nil, fmt.Errorf("parsing end_date %q: %w", endDate, err)
	}
	return &w, nil
}
