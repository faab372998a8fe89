package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"runcohorts/internal/config"
	"runcohorts/internal/grouping"
	"runcohorts/internal/log"
	"runcohorts/internal/quantity"
	"runcohorts/internal/store"
)

// ErrCohortNotFound is returned when no cohort has the requested key
var ErrCohortNotFound = errors.New("cohort not found")

// WorkoutLister reads stored workouts
type WorkoutLister interface {
	ListWorkouts(activityTypes ...string) ([]store.Workout, error)
}

// CohortService loads workouts and runs the grouping engine over them
type CohortService struct {
	store  WorkoutLister
	cfg    *config.Config
	engine *grouping.Engine
}

// NewCohortService creates a cohort service. The engine's prediction horizon
// and per-cohort predictions come from cfg unless opts override them.
func NewCohortService(db WorkoutLister, cfg *config.Config, opts ...grouping.Option) *CohortService {
	base := []grouping.Option{
		grouping.WithWeeksAhead(cfg.Prediction.WeeksAhead),
		grouping.WithPredictions(cfg.Prediction.Enabled),
	}
	return &CohortService{
		store:  db,
		cfg:    cfg,
		engine: grouping.NewEngine(append(base, opts...)...),
	}
}

// Records loads every stored workout as a grouping record
func (s *CohortService) Records(ctx context.Context) ([]grouping.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	workouts, err := s.store.ListWorkouts()
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}
	return ToRecords(workouts, s.cfg.Display.DistanceUnit)
}

// Groups buckets stored workouts by metric with the configured parameters
func (s *CohortService) Groups(ctx context.Context, metric grouping.MetricType) (*grouping.Result, error) {
	params, err := s.cfg.Parameters(metric)
	if err != nil {
		return nil, err
	}
	return s.GroupsWith(ctx, metric, params)
}

// GroupsWith buckets stored workouts by metric with explicit parameters
func (s *CohortService) GroupsWith(ctx context.Context, metric grouping.MetricType, params grouping.Parameters) (*grouping.Result, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}
	return s.engine.Group(records, metric, params)
}

// AllGroups runs every metric concurrently over one shared, read-only record
// slice. Results are in grouping.AllMetrics order.
func (s *CohortService) AllGroups(ctx context.Context) ([]*grouping.Result, error) {
	records, err := s.Records(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]*grouping.Result, len(grouping.AllMetrics))
	g, ctx := errgroup.WithContext(ctx)
	for i, metric := range grouping.AllMetrics {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			params, err := s.cfg.Parameters(metric)
			if err != nil {
				return err
			}
			res, err := s.engine.Group(records, metric, params)
			if err != nil {
				return fmt.Errorf("grouping by %s: %w", metric, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Cohort finds the cohort with key among metric's groups
func (s *CohortService) Cohort(ctx context.Context, metric grouping.MetricType, key string) (grouping.Cohort, error) {
	res, err := s.Groups(ctx, metric)
	if err != nil {
		return grouping.Cohort{}, err
	}
	for _, c := range res.Cohorts {
		if c.Key == key {
			return c, nil
		}
	}
	return grouping.Cohort{}, fmt.Errorf("%w: %s %q", ErrCohortNotFound, metric, key)
}

// Predict forecasts one cohort weeksAhead weeks out
func (s *CohortService) Predict(ctx context.Context, metric grouping.MetricType, key string, weeksAhead float64) (*grouping.Prediction, error) {
	c, err := s.Cohort(ctx, metric, key)
	if err != nil {
		return nil, err
	}
	return s.PredictCohort(c, weeksAhead)
}

// PredictCohort forecasts an already grouped cohort
func (s *CohortService) PredictCohort(c grouping.Cohort, weeksAhead float64) (*grouping.Prediction, error) {
	return s.engine.Predict(c, weeksAhead)
}

// recordUnits returns the display units for a distance unit
func recordUnits(distanceUnit string) (grouping.RecordUnits, error) {
	switch distanceUnit {
	case quantity.Miles, "":
		return grouping.RecordUnits{
			Distance:    quantity.Miles,
			Elevation:   quantity.Feet,
			Temperature: quantity.Fahrenheit,
		}, nil
	case quantity.Kilometers:
		return grouping.RecordUnits{
			Distance:    quantity.Kilometers,
			Elevation:   quantity.Meters,
			Temperature: quantity.Celsius,
		}, nil
	default:
		return grouping.RecordUnits{}, fmt.Errorf("unknown distance unit %q", distanceUnit)
	}
}

// ToRecords converts SI store rows into records in the display unit system.
// Workouts with no distance or time are dropped, as is anything the record
// constructor rejects.
func ToRecords(workouts []store.Workout, distanceUnit string) ([]grouping.Record, error) {
	units, err := recordUnits(distanceUnit)
	if err != nil {
		return nil, err
	}

	metersPerUnit := MetersPerMile
	elevationFactor := FeetPerMeter
	if units.Distance == quantity.Kilometers {
		metersPerUnit = MetersPerKilometer
		elevationFactor = 1
	}

	records := make([]grouping.Record, 0, len(workouts))
	for _, w := range workouts {
		if w.DistanceM <= 0 || w.DurationS <= 0 {
			continue
		}

		in := grouping.RecordInput{
			ID:           w.ID,
			Name:         w.Name,
			ActivityType: w.ActivityType,
			Start:        w.StartDate,
			End:          w.EndDate,
			Distance:     w.DistanceM / metersPerUnit,
			Duration:     w.DurationS,
			Elevation:    w.ElevationGain * elevationFactor,
			Humidity:     w.HumidityPct,
		}
		if w.AverageTempC != nil {
			t := *w.AverageTempC
			if units.Temperature == quantity.Fahrenheit {
				t = celsiusToFahrenheit(t)
			}
			in.Temperature = &t
		}

		r, err := grouping.NewRecord(in, units)
		if err != nil {
			log.Warnf("skipping workout: %v", err)
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

func celsiusToFahrenheit(c float64) float64 {
	return c*9/5 + 32
}
