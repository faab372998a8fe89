package grouping

import (
	"fmt"
	"strings"

	"runcohorts/internal/analysis"
	"runcohorts/internal/quantity"
)

// Intensity is the effort level of a recommended workout
type Intensity string

const (
	IntensityEasy     Intensity = "easy"
	IntensityModerate Intensity = "moderate"
	IntensityHard     Intensity = "hard"
)

// Recommendation is a suggested workout for the weeks leading to a prediction
type Recommendation struct {
	WorkoutType     string             `json:"workout_type"`
	WeeklyFrequency int                `json:"weekly_frequency"`
	Intensity       Intensity          `json:"intensity"`
	Rationale       string             `json:"rationale"`
	TargetDuration  *quantity.Quantity `json:"target_duration,omitempty"`
	TargetPace      *quantity.Quantity `json:"target_pace,omitempty"`
}

const (
	intervalPaceFactor = 0.95
	speedPaceFactor    = 0.95
	easyPaceFactor     = 1.10
	longRunFactor      = 1.25
	recoveryDuration   = 30 * 60
	tempoDuration      = 20 * 60
)

type trainingBaseline struct {
	projectedPace float64
	latestPace    float64
	paceUnit      string
	typicalTime   float64 // seconds
	improvement   float64 // percent
}

func (b trainingBaseline) pace(v float64) *quantity.Quantity {
	if v <= 0 {
		return nil
	}
	return &quantity.Quantity{Value: v, Unit: b.paceUnit}
}

func seconds(v float64) *quantity.Quantity {
	if v <= 0 {
		return nil
	}
	return &quantity.Quantity{Value: v, Unit: quantity.Seconds}
}

// quickerPace is the faster of the projection and the latest workout. The
// trend can point faster while the latest run already beats the projection.
func (b trainingBaseline) quickerPace() float64 {
	if b.latestPace > 0 && b.latestPace < b.projectedPace {
		return b.latestPace
	}
	return b.projectedPace
}

func recommend(m analysis.Momentum, b trainingBaseline) []Recommendation {
	switch m {
	case analysis.MomentumImproving:
		target := b.quickerPace()
		rationale := fmt.Sprintf("You're trending %.1f%% faster. Sustained work at %s makes the projected pace your normal.",
			b.improvement, paceText(b.pace(target)))
		if b.improvement <= 0 {
			rationale = fmt.Sprintf("Your trend points faster and your latest run is already ahead of it. Sustained work at %s holds that gain.",
				paceText(b.pace(target)))
		}
		return []Recommendation{
			{
				WorkoutType:     "Tempo Run",
				WeeklyFrequency: 1,
				Intensity:       IntensityModerate,
				Rationale:       rationale,
				TargetDuration:  seconds(tempoDuration),
				TargetPace:      b.pace(target),
			},
			{
				WorkoutType:     "Intervals",
				WeeklyFrequency: 1,
				Intensity:       IntensityHard,
				Rationale:       "Short repeats slightly quicker than your tempo pace build headroom above it.",
				TargetPace:      b.pace(target * intervalPaceFactor),
			},
			{
				WorkoutType:     "Easy Run",
				WeeklyFrequency: 2,
				Intensity:       IntensityEasy,
				Rationale:       "Keep easy volume steady so the quality sessions can be absorbed.",
				TargetDuration:  seconds(b.typicalTime),
			},
		}
	case analysis.MomentumDeclining:
		return []Recommendation{
			{
				WorkoutType:     "Recovery Run",
				WeeklyFrequency: 2,
				Intensity:       IntensityEasy,
				Rationale:       "Recent runs are getting slower. Short, relaxed runs let fatigue clear before adding load.",
				TargetDuration:  seconds(recoveryDuration),
				TargetPace:      b.pace(b.latestPace * easyPaceFactor),
			},
			{
				WorkoutType:     "Easy Run",
				WeeklyFrequency: 2,
				Intensity:       IntensityEasy,
				Rationale: fmt.Sprintf("Hold volume near %s at an easier %s until the trend turns.",
					quantity.FormatClock(b.typicalTime), paceText(b.pace(b.latestPace*easyPaceFactor))),
				TargetDuration: seconds(b.typicalTime),
				TargetPace:     b.pace(b.latestPace * easyPaceFactor),
			},
		}
	default:
		return []Recommendation{
			{
				WorkoutType:     "Hill Repeats",
				WeeklyFrequency: 1,
				Intensity:       IntensityHard,
				Rationale:       "Your times have leveled off. Hills add strength without more mileage.",
			},
			{
				WorkoutType:     "Speed Work",
				WeeklyFrequency: 1,
				Intensity:       IntensityHard,
				Rationale:       "A new stimulus faster than your latest pace breaks the plateau.",
				TargetPace:      b.pace(b.latestPace * speedPaceFactor),
			},
			{
				WorkoutType:     "Long Run",
				WeeklyFrequency: 1,
				Intensity:       IntensityEasy,
				Rationale:       "Extending your usual time by a quarter builds the aerobic base.",
				TargetDuration:  seconds(b.typicalTime * longRunFactor),
			},
		}
	}
}

func paceText(q *quantity.Quantity) string {
	if q == nil {
		return "an even pace"
	}
	return quantity.Format(*q)
}

func recommendationSection(recs []Recommendation) StatSection {
	items := make([]StatItem, 0, len(recs))
	for _, r := range recs {
		parts := []string{fmt.Sprintf("%dx/week", r.WeeklyFrequency), string(r.Intensity)}
		if r.TargetPace != nil {
			parts = append(parts, quantity.Format(*r.TargetPace))
		}
		if r.TargetDuration != nil {
			parts = append(parts, quantity.Format(*r.TargetDuration))
		}
		items = append(items, StatItem{Label: r.WorkoutType, Value: strings.Join(parts, ", ")})
	}
	return StatSection{Title: "Training Recommendations", Items: items}
}
