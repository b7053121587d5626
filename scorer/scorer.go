// Package scorer grades how well a set of retrieval matches supports an
// answer. The result is a heuristic in [0,1], not a calibrated probability.
package scorer

import "github.com/w-h-a/support/storer"

const (
	// Baseline is reported when nothing was retrieved: the answer may be
	// generic, not necessarily wrong.
	Baseline = 0.3
	// Coverage is the match count at which coverage saturates.
	Coverage = 3
	Boost    = 1.2
)

// Score returns min(avg * min(n/Coverage, 1) * Boost, 1), or Baseline for
// no matches. Negative similarities are floored at zero.
func Score(matches []storer.Match) float64 {
	if len(matches) == 0 {
		return Baseline
	}

	var sum float64
	for _, m := range matches {
		sum += m.Score
	}

	avg := sum / float64(len(matches))
	coverage := min(float64(len(matches))/Coverage, 1.0)

	return max(min(avg*coverage*Boost, 1.0), 0.0)
}
