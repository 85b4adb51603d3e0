package models

import (
	"errors"
	"math"
)

// ProbabilityTolerance is the allowed deviation of a complete prize pool's
// probability sum from 1.0.
const ProbabilityTolerance = 0.01

var (
	// ErrEmptyPrizePool is returned when building a distribution without prizes
	ErrEmptyPrizePool = errors.New("prize pool is empty")

	// ErrInvalidProbability is returned when a probability is outside [0,1]
	// or a complete pool does not sum to 1.0 within tolerance
	ErrInvalidProbability = errors.New("invalid prize probability")
)

// ProbabilityDistribution is a validated, immutable view over a campaign's
// prize list used for weighted selection.
type ProbabilityDistribution struct {
	prizes     []*Prize
	cumulative []float64
	totalMass  float64
}

// NewProbabilityDistribution validates a complete prize pool and builds a
// distribution over it. The probabilities must each be in [0,1] and sum to
// 1.0 within ProbabilityTolerance.
func NewProbabilityDistribution(prizes []*Prize) (*ProbabilityDistribution, error) {
	dist, err := newDistribution(prizes)
	if err != nil {
		return nil, err
	}
	if math.Abs(dist.totalMass-1.0) > ProbabilityTolerance {
		return nil, ErrInvalidProbability
	}
	return dist, nil
}

// NewPartialDistribution builds a distribution over a subset of a campaign's
// prizes (typically the ones with stock remaining). The probability sum may be
// below 1.0; Select rescales by the remaining mass so relative odds between
// the listed prizes match the configured pool.
func NewPartialDistribution(prizes []*Prize) (*ProbabilityDistribution, error) {
	return newDistribution(prizes)
}

func newDistribution(prizes []*Prize) (*ProbabilityDistribution, error) {
	if len(prizes) == 0 {
		return nil, ErrEmptyPrizePool
	}

	cumulative := make([]float64, len(prizes))
	var total float64
	for i, prize := range prizes {
		if prize.Probability < 0 || prize.Probability > 1 {
			return nil, ErrInvalidProbability
		}
		total += prize.Probability
		cumulative[i] = total
	}
	if total <= 0 {
		return nil, ErrInvalidProbability
	}

	return &ProbabilityDistribution{
		prizes:     prizes,
		cumulative: cumulative,
		totalMass:  total,
	}, nil
}

// Prizes returns the prizes backing the distribution in selection order.
func (d *ProbabilityDistribution) Prizes() []*Prize {
	return d.prizes
}

// Select picks one prize for a uniform randomValue in [0,1).
//
// The random value is scaled by the distribution's total mass and walked
// against the cumulative bounds; the first prize whose upper bound exceeds
// the target wins. If floating-point drift leaves no prize selected, the last
// prize is returned: a draw on a non-empty distribution always awards
// something.
func (d *ProbabilityDistribution) Select(randomValue float64) *Prize {
	target := randomValue * d.totalMass
	for i, upper := range d.cumulative {
		if target < upper {
			return d.prizes[i]
		}
	}
	return d.prizes[len(d.prizes)-1]
}
