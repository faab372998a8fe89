package grouping

import (
	"fmt"
	"math"

	"runcohorts/internal/quantity"
)

// Parameters control how a metric is binned
type Parameters struct {
	// Tolerance is the maximum distance from a bucket center for membership
	Tolerance float64 `json:"tolerance" toml:"tolerance"`

	// BucketWidth is the spacing between adjacent bucket centers.
	// Zero buckets each distinct value on its own.
	BucketWidth float64 `json:"bucket_width" toml:"bucket_width"`
}

// Validate rejects non-finite or negative values and any tolerance wider than
// half a bucket. A wider tolerance would let adjacent buckets' acceptance
// windows overlap.
func (p Parameters) Validate() error {
	if !isFiniteNonNegative(p.Tolerance) {
		return fmt.Errorf("%w: tolerance %v must be a finite non-negative number", ErrInvalidConfiguration, p.Tolerance)
	}
	if !isFiniteNonNegative(p.BucketWidth) {
		return fmt.Errorf("%w: bucket width %v must be a finite non-negative number", ErrInvalidConfiguration, p.BucketWidth)
	}
	if p.Tolerance > p.BucketWidth/2 {
		return fmt.Errorf("%w: tolerance %v exceeds half the bucket width %v", ErrInvalidConfiguration, p.Tolerance, p.BucketWidth)
	}
	return nil
}

func isFiniteNonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// quotientSnap is the precision the bucket quotient is rounded to before the
// half-up step, so decimal midpoints like 0.15/0.1 land on x.5 exactly
const quotientSnap = 1e9

// bucketCenter rounds v half-up to the nearest multiple of width
func bucketCenter(v, width float64) float64 {
	if width == 0 {
		return v
	}
	q := math.Round(v/width*quotientSnap) / quotientSnap
	return math.Floor(q+0.5) * width
}

// acceptanceEpsilon absorbs float error in |v - center| <= tolerance
const acceptanceEpsilon = 1e-9

func accepts(v, center, tolerance float64) bool {
	return math.Abs(v-center) <= tolerance+acceptanceEpsilon
}

// bucketKey formats a center as a stable map/display key ("5", "0.3", "480")
func bucketKey(center float64) string {
	return quantity.TrimFloat(math.Round(center*1e6)/1e6, 6)
}
