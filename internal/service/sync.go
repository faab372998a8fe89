package service

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"runcohorts/internal/log"
	"runcohorts/internal/store"
	"runcohorts/internal/strava"
)

// ActivitySource pages through a provider's activity summaries
type ActivitySource interface {
	GetActivities(ctx context.Context, after time.Time, page, perPage int) ([]strava.Activity, error)
}

// SyncService orchestrates syncing workouts from Strava
type SyncService struct {
	source        ActivitySource
	store         *store.DB
	activityTypes []string
	perPage       int
	now           func() time.Time
}

// NewSyncService creates a sync service keeping only activityTypes.
// An empty list keeps DefaultActivityTypes.
func NewSyncService(source ActivitySource, db *store.DB, activityTypes []string, perPage int) *SyncService {
	if len(activityTypes) == 0 {
		activityTypes = DefaultActivityTypes
	}
	if perPage <= 0 || perPage > strava.MaxPerPage {
		perPage = DefaultPerPage
	}
	return &SyncService{
		source:        source,
		store:         db,
		activityTypes: activityTypes,
		perPage:       perPage,
		now:           time.Now,
	}
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Page            int
	Fetched         int
	Stored          int
	CurrentActivity string
}

// SyncResult contains the results of a sync operation
type SyncResult struct {
	ActivitiesFetched int
	WorkoutsStored    int
	Skipped           int
	Errors            []error
}

// SyncWorkouts fetches every activity newer than the last stored one and
// upserts the ones worth grouping. progress, if non-nil, is closed on return.
func (s *SyncService) SyncWorkouts(ctx context.Context, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}

	result := &SyncResult{}

	newest, err := s.store.GetSyncTime(store.SyncKeyLastActivity)
	if err != nil {
		return result, fmt.Errorf("reading sync state: %w", err)
	}
	var after time.Time
	if !newest.IsZero() {
		after = newest.Add(-resumeOverlapSeconds * time.Second)
	}
	log.Debugf("syncing activities after %s", after.Format(time.RFC3339))

	for page := 1; ; page++ {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		activities, err := s.source.GetActivities(ctx, after, page, s.perPage)
		if err != nil {
			return result, fmt.Errorf("fetching page %d: %w", page, err)
		}

		result.ActivitiesFetched += len(activities)

		var current string
		for _, a := range activities {
			if !s.keep(a) {
				result.Skipped++
				continue
			}

			w := convertActivity(a)
			if err := s.store.UpsertWorkout(w); err != nil {
				result.Errors = append(result.Errors, fmt.Errorf("storing activity %d: %w", a.ID, err))
				continue
			}
			result.WorkoutsStored++
			current = a.Name

			if a.StartDate.After(newest) {
				newest = a.StartDate
			}
		}

		if progress != nil {
			progress <- SyncProgress{
				Page:            page,
				Fetched:         result.ActivitiesFetched,
				Stored:          result.WorkoutsStored,
				CurrentActivity: current,
			}
		}

		if len(activities) < s.perPage {
			break // Last page
		}
	}

	if !newest.IsZero() {
		if err := s.store.SetSyncTime(store.SyncKeyLastActivity, newest); err != nil {
			return result, fmt.Errorf("saving sync state: %w", err)
		}
	}
	if err := s.store.SetSyncTime(store.SyncKeyLastSync, s.now()); err != nil {
		return result, fmt.Errorf("saving sync state: %w", err)
	}

	log.Infow("sync complete",
		"fetched", result.ActivitiesFetched,
		"stored", result.WorkoutsStored,
		"skipped", result.Skipped,
		"errors", len(result.Errors),
	)
	return result, nil
}

// keep reports whether an activity can become a workout record
func (s *SyncService) keep(a strava.Activity) bool {
	if !slices.Contains(s.activityTypes, a.Kind()) && !slices.Contains(s.activityTypes, a.Type) {
		return false
	}
	// Pace is undefined without distance or time
	return a.Distance > 0 && a.MovingTime > 0
}

// convertActivity converts a Strava activity summary to a stored workout
func convertActivity(a strava.Activity) *store.Workout {
	return &store.Workout{
		ID:            strconv.FormatInt(a.ID, 10),
		Name:          a.Name,
		ActivityType:  a.Kind(),
		StartDate:     a.StartDate,
		EndDate:       a.EndDate(),
		DistanceM:     a.Distance,
		DurationS:     float64(a.MovingTime),
		ElevationGain: a.TotalElevationGain,
		AverageTempC:  a.AverageTemp,
	}
}

// LastSync returns when the last sync finished. The zero time means never.
func LastSync(db *store.DB) (time.Time, error) {
	return db.GetSyncTime(store.SyncKeyLastSync)
}
