package massshift

import (
	"math"

	"gonum.org/v1/gonum/optimize"
)

// minCalibrationPoints is the smallest number of explained shifts from
// which a systematic offset is estimated.
const minCalibrationPoints = 3

// EstimateOffset fits a constant systematic offset to the residual
// errors of the confidently explained queries in a batch. Search
// engines and instruments often leave a small common bias on every
// reported delta mass; resolving a batch once, estimating the offset
// and resolving again with Config.Offset set recovers matches that the
// bias pushed just outside tolerance.
//
// Only results whose top candidate contains at least one modification
// are used. The second return value is false when there are too few
// usable points or the fit fails.
func EstimateOffset(results []MatchResult) (float64, bool) {
	var residuals []float64
	for _, r := range results {
		if len(r.Candidates) == 0 {
			continue
		}
		top := r.Candidates[0]
		if top.Size() == 0 {
			continue
		}
		residuals = append(residuals, top.Error)
	}
	if len(residuals) < minCalibrationPoints {
		return 0, false
	}

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			sumOfResiduals := 0.0
			for _, e := range residuals {
				diff := e - x[0]
				sumOfResiduals += diff * diff
			}
			return math.Sqrt(sumOfResiduals)
		},
	}
	result, err := optimize.Minimize(problem, []float64{0}, nil, nil)
	if err != nil {
		return 0, false
	}
	offset := result.X[0]
	if math.IsNaN(offset) || math.IsInf(offset, 0) {
		return 0, false
	}
	return offset, true
}
