package needle

import (
	"errors"
	"math"
	"sort"
)

var ErrInvalidTrials = errors.New("number of needles must be positive")

// SimParams describes one batch run.
type SimParams struct {
	Config     Config
	Method     Method
	Trials     int // needles per replicate
	Replicates int // independent replicates; <= 0 means 1
}

// Estimates summarizes the per-replicate π estimates.
type Estimates struct {
	Mean   float64
	Var    float64
	StdDev float64
	P50    float64
	P90    float64
	P99    float64
	// Optional: raw samples if caller needs histograms/exports
	Samples []float64 `json:"-"`
}

// Summary is the result of RunMonteCarlo.
type Summary struct {
	Stats       Stats   // pooled over all replicates
	Probability float64 // theoretical crossing probability for Config
	Estimates   Estimates
}

// calcEstimates computes mean/variance/percentiles of the finite samples.
// Replicates without a crossing (NaN) are skipped.
func calcEstimates(all []float64) Estimates {
	xs := make([]float64, 0, len(all))
	for _, v := range all {
		if Defined(v) {
			xs = append(xs, v)
		}
	}
	n := len(xs)
	if n == 0 {
		return Estimates{Mean: math.NaN(), Var: math.NaN(), StdDev: math.NaN(),
			P50: math.NaN(), P90: math.NaN(), P99: math.NaN()}
	}
	var sum float64
	for _, v := range xs {
		sum += v
	}
	mean := sum / float64(n)

	// variance (population)
	var acc float64
	for _, v := range xs {
		d := v - mean
		acc += d * d
	}
	variance := acc / float64(n)

	cp := append([]float64(nil), xs...)
	sort.Float64s(cp)
	percentile := func(p float64) float64 {
		if n == 1 || p <= 0 {
			return cp[0]
		}
		if p >= 1 {
			return cp[n-1]
		}
		pos := p * float64(n-1)
		i := int(math.Floor(pos))
		f := pos - float64(i)
		if i+1 >= n {
			return cp[i]
		}
		return cp[i]*(1-f) + cp[i+1]*f
	}

	return Estimates{
		Mean:    mean,
		Var:     variance,
		StdDev:  math.Sqrt(variance),
		P50:     percentile(0.50),
		P90:     percentile(0.90),
		P99:     percentile(0.99),
		Samples: xs,
	}
}

// RunMonteCarlo throws p.Trials needles in each of p.Replicates replicates.
// progress, if not nil, is called once per needle.
func RunMonteCarlo(p SimParams, rng RandomSource, progress func()) (Summary, error) {
	if p.Trials <= 0 {
		return Summary{}, ErrInvalidTrials
	}
	if err := p.Config.Validate(); err != nil {
		return Summary{}, err
	}
	method, err := ParseMethod(string(p.Method))
	if err != nil {
		return Summary{}, err
	}
	if rng == nil {
		rng = DefaultRNG()
	}
	reps := p.Replicates
	if reps <= 0 {
		reps = 1
	}

	var pooled State
	samples := make([]float64, reps)
	for r := 0; r < reps; r++ {
		var st State
		for i := 0; i < p.Trials; i++ {
			Throw(p.Config, method, &st, rng)
			if progress != nil {
				progress()
			}
		}
		samples[r] = PiEstimate(p.Config, st.Snapshot())
		pooled.TotalNeedles += st.TotalNeedles
		pooled.CrossedNeedles += st.CrossedNeedles
	}

	return Summary{
		Stats:       pooled.Snapshot(),
		Probability: CrossProbability(p.Config),
		Estimates:   calcEstimates(samples),
	}, nil
}
