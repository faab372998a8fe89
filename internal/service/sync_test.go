package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"runcohorts/internal/store"
	"runcohorts/internal/strava"
)

var syncDay = time.Date(2024, 3, 1, 6, 30, 0, 0, time.UTC)

// fakeSource serves activities newer than 'after', perPage at a time
type fakeSource struct {
	activities []strava.Activity
	err        error
	afters     []time.Time
}

func (f *fakeSource) GetActivities(_ context.Context, after time.Time, page, perPage int) ([]strava.Activity, error) {
	f.afters = append(f.afters, after)
	if f.err != nil {
		return nil, f.err
	}

	var newer []strava.Activity
	for _, a := range f.activities {
		if a.StartDate.After(after) {
			newer = append(newer, a)
		}
	}

	lo := (page - 1) * perPage
	if lo >= len(newer) {
		return nil, nil
	}
	return newer[lo:min(lo+perPage, len(newer))], nil
}

func activity(id int64, day int, kind string, meters float64, seconds int) strava.Activity {
	return strava.Activity{
		ID:          id,
		Name:        "Activity",
		Type:        kind,
		SportType:   kind,
		StartDate:   syncDay.AddDate(0, 0, day),
		Distance:    meters,
		MovingTime:  seconds,
		ElapsedTime: seconds + 60,
	}
}

func setupTestDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.OpenPath(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func drain(ch <-chan SyncProgress) []SyncProgress {
	var out []SyncProgress
	for p := range ch {
		out = append(out, p)
	}
	return out
}

func TestSyncWorkouts(t *testing.T) {
	db := setupTestDB(t)

	trail := activity(4, 2, "TrailRun", 9000, 3300)
	trail.Type = "Run"
	temp := 12.5
	trail.AverageTemp = &temp

	src := &fakeSource{activities: []strava.Activity{
		activity(1, 0, "Run", 5000, 1500),
		activity(2, 1, "Ride", 30000, 3600),
		activity(3, 1, "Run", 0, 600),
		trail,
		activity(5, 3, "Walk", 3000, 2100),
	}}

	svc := NewSyncService(src, db, nil, 2)
	finished := syncDay.AddDate(0, 0, 10)
	svc.now = func() time.Time { return finished }

	progress := make(chan SyncProgress, 10)
	result, err := svc.SyncWorkouts(context.Background(), progress)
	require.NoError(t, err)

	assert.Equal(t, 5, result.ActivitiesFetched)
	assert.Equal(t, 3, result.WorkoutsStored)
	assert.Equal(t, 2, result.Skipped)
	assert.Empty(t, result.Errors)

	updates := drain(progress)
	require.Len(t, updates, 3)
	assert.Equal(t, 3, updates[2].Page)
	assert.Equal(t, 3, updates[2].Stored)

	count, err := db.CountWorkouts()
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	w, err := db.GetWorkout("4")
	require.NoError(t, err)
	assert.Equal(t, "TrailRun", w.ActivityType)
	assert.Equal(t, 3300.0, w.DurationS)
	assert.True(t, w.EndDate.Equal(trail.StartDate.Add(3360*time.Second)))
	require.NotNil(t, w.AverageTempC)
	assert.Equal(t, 12.5, *w.AverageTempC)
	assert.Nil(t, w.HumidityPct)

	newest, err := db.GetSyncTime(store.SyncKeyLastActivity)
	require.NoError(t, err)
	assert.True(t, newest.Equal(syncDay.AddDate(0, 0, 3)))

	last, err := LastSync(db)
	require.NoError(t, err)
	assert.True(t, last.Equal(finished))
}

func TestSyncWorkoutsResumesFromNewest(t *testing.T) {
	db := setupTestDB(t)
	src := &fakeSource{activities: []strava.Activity{
		activity(1, 0, "Run", 5000, 1500),
		activity(2, 5, "Run", 8000, 2500),
	}}
	svc := NewSyncService(src, db, []string{"Run"}, 50)

	_, err := svc.SyncWorkouts(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, src.afters[0].IsZero())

	src.activities = append(src.activities, activity(3, 9, "Run", 10000, 3100))
	result, err := svc.SyncWorkouts(context.Background(), nil)
	require.NoError(t, err)

	assert.True(t, src.afters[1].Equal(syncDay.AddDate(0, 0, 5).Add(-time.Second)))
	// The overlap re-fetches the newest stored activity; upsert keeps one copy
	assert.Equal(t, 2, result.WorkoutsStored)

	count, err := db.CountWorkouts()
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestSyncWorkoutsSourceError(t *testing.T) {
	db := setupTestDB(t)
	src := &fakeSource{err: errors.New("boom")}
	svc := NewSyncService(src, db, nil, 0)

	progress := make(chan SyncProgress, 1)
	_, err := svc.SyncWorkouts(context.Background(), progress)
	assert.ErrorContains(t, err, "fetching page 1: boom")

	_, open := <-progress
	assert.False(t, open, "progress channel should be closed")

	last, err := LastSync(db)
	require.NoError(t, err)
	assert.True(t, last.IsZero())
}

func TestSyncWorkoutsCancelled(t *testing.T) {
	db := setupTestDB(t)
	src := &fakeSource{activities: []strava.Activity{activity(1, 0, "Run", 5000, 1500)}}
	svc := NewSyncService(src, db, nil, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.SyncWorkouts(ctx, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, src.afters)
}

func TestNewSyncServiceDefaults(t *testing.T) {
	svc := NewSyncService(&fakeSource{}, nil, nil, 1000)
	assert.Equal(t, DefaultActivityTypes, svc.activityTypes)
	assert.Equal(t, DefaultPerPage, svc.perPage)
}
