// Package scoring turns finding counts into the repository health score.
package scoring

// Weights holds the penalty weight per finding class.
type Weights struct {
	MissingHandler     int
	UnregisteredHandler int
	UnusedHandler      int
	DeadExport         int
	DuplicateDivisor   int
	DuplicateCap       int
	Cycle              int
	DeadParrot         int
	SameLanguageTwin   int
}

// DefaultWeights are the shipped penalty weights.
func DefaultWeights() Weights {
	return Weights{
		MissingHandler:      20,
		UnregisteredHandler: 15,
		UnusedHandler:       5,
		DeadExport:          2,
		DuplicateDivisor:    5,
		DuplicateCap:        20,
		Cycle:               3,
		DeadParrot:          1,
		SameLanguageTwin:    2,
	}
}

// Inputs are the finding counts the score is computed from.
type Inputs struct {
	MissingHandlers      int
	UnregisteredHandlers int
	UnusedHandlers       int
	DeadExports          int
	DuplicateExports     int
	Cycles               int
	DeadParrots          int
	SameLanguageTwins    int
}

// Scorer computes health scores with a weight set.
type Scorer struct {
	Weights Weights
}

// Score maps finding counts to 100 − min(100, penalty), so the result is
// always in [0, 100].
func (s Scorer) Score(in Inputs) int {
	w := s.Weights

	duplicatePenalty := in.DuplicateExports / w.DuplicateDivisor
	if duplicatePenalty > w.DuplicateCap {
		duplicatePenalty = w.DuplicateCap
	}

	penalty := w.MissingHandler*in.MissingHandlers +
		w.UnregisteredHandler*in.UnregisteredHandlers +
		w.UnusedHandler*in.UnusedHandlers +
		w.DeadExport*in.DeadExports +
		duplicatePenalty +
		w.Cycle*in.Cycles +
		w.DeadParrot*in.DeadParrots +
		w.SameLanguageTwin*in.SameLanguageTwins

	if penalty > 100 {
		penalty = 100
	}
	if penalty < 0 {
		penalty = 0
	}
	return 100 - penalty
}

// Tier buckets a score for display.
func Tier(score int) string {
	switch {
	case score >= 90:
		return "healthy"
	case score >= 70:
		return "fair"
	case score >= 40:
		return "ailing"
	default:
		return "critical"
	}
}
