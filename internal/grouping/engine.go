// Package grouping buckets workouts into cohorts by a chosen metric, computes
// per-cohort statistics and forecasts future performance within a cohort.
//
// The engine is a pure function of its inputs: it performs no I/O, holds no
// state between calls and may be invoked concurrently with independent
// record slices or the same read-only slice.
package grouping

import (
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"runcohorts/internal/log"
)

// DefaultWeeksAhead is the prediction horizon used when none is configured
const DefaultWeeksAhead = 4

// Engine groups records and enriches the resulting cohorts
type Engine struct {
	logger      *zap.SugaredLogger
	now         func() time.Time
	weeksAhead  float64
	predictAll  bool
	calculators map[MetricType]Calculator
}

// Option configures an Engine
type Option func(*Engine)

// WithLogger sets the logger used for per-cohort failures
func WithLogger(l *zap.SugaredLogger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithClock sets the source of "today" for prediction target dates
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithWeeksAhead sets the prediction horizon for predictions made while grouping
func WithWeeksAhead(weeks float64) Option {
	return func(e *Engine) { e.weeksAhead = weeks }
}

// WithPredictions attaches a prediction to every cohort with at least two
// members, not just elevation cohorts.
func WithPredictions(enabled bool) Option {
	return func(e *Engine) { e.predictAll = enabled }
}

// NewEngine creates an engine with the standard per-metric calculators
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:         time.Now,
		weeksAhead:  DefaultWeeksAhead,
		calculators: standardCalculators(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.GetSugaredLogger()
	}
	return e
}

// Result is the output of one grouping run
type Result struct {
	Metric     MetricType `json:"metric"`
	Parameters Parameters `json:"parameters"`

	// Cohorts ordered by rank (descending member count)
	Cohorts []Cohort `json:"cohorts"`

	// Skipped counts records that passed the metric's inclusion filter but
	// fell outside every bucket's tolerance
	Skipped int `json:"skipped"`

	// Considered counts records that passed the inclusion filter
	Considered int `json:"considered"`
}

// Group buckets records by metric using the default engine
func Group(records []Record, metric MetricType, params Parameters) (*Result, error) {
	return NewEngine().Group(records, metric, params)
}

// Group assigns each record to at most one cohort, then runs the stat
// calculators and ranks the cohorts. Configuration errors are returned before
// any record is examined.
func (e *Engine) Group(records []Record, metric MetricType, params Parameters) (*Result, error) {
	def, err := Lookup(metric)
	if err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := validateWeeksAhead(e.weeksAhead); err != nil {
		return nil, err
	}

	result := &Result{Metric: metric, Parameters: params}

	var cohorts []Cohort
	index := make(map[string]int)

	for _, r := range records {
		if def.Include != nil && !def.Include(r) {
			continue
		}
		result.Considered++

		v := def.Extract(r)
		center := bucketCenter(v.Value, params.BucketWidth)
		if !accepts(v.Value, center, params.Tolerance) {
			result.Skipped++
			continue
		}

		key := bucketKey(center)
		i, ok := index[key]
		if !ok {
			index[key] = len(cohorts)
			cohorts = append(cohorts, newCohort(def, params, key, center, v.Unit, r))
			continue
		}

		next, err := cohorts[i].withMember(r, v)
		if err != nil {
			return nil, fmt.Errorf("grouping by %s: %w", metric, err)
		}
		cohorts[i] = next
	}

	env := calcEnv{
		def:        def,
		considered: result.Considered,
		skipped:    result.Skipped,
		today:      e.now(),
		weeksAhead: e.weeksAhead,
	}

	enriched := make([]Cohort, len(cohorts))
	for i, c := range cohorts {
		enriched[i] = e.calculate(c, env)
	}

	result.Cohorts = rankCohorts(enriched)
	return result, nil
}

// Predict forecasts a cohort's performance weeksAhead weeks from today
func (e *Engine) Predict(c Cohort, weeksAhead float64) (*Prediction, error) {
	return Predict(c, weeksAhead, e.now())
}

func validateWeeksAhead(weeks float64) error {
	if math.IsNaN(weeks) || math.IsInf(weeks, 0) || weeks < 0 {
		return fmt.Errorf("%w: weeks ahead %v must be a finite non-negative number", ErrInvalidConfiguration, weeks)
	}
	return nil
}
