package needle

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Stats is a read-only view of a State. Ratio and PiApprox are NaN while
// undefined (no trials, or no crossings yet).
type Stats struct {
	Total      uint64
	Crossed    uint64
	NotCrossed uint64
	Ratio      float64 // Crossed / Total
	PiApprox   float64 // Total / Crossed
}

// Snapshot derives the reported statistics from the counters.
func (s State) Snapshot() Stats {
	st := Stats{
		Total:      s.TotalNeedles,
		Crossed:    s.CrossedNeedles,
		NotCrossed: s.TotalNeedles - s.CrossedNeedles,
		Ratio:      math.NaN(),
		PiApprox:   math.NaN(),
	}
	if s.TotalNeedles > 0 {
		st.Ratio = float64(s.CrossedNeedles) / float64(s.TotalNeedles)
	}
	if s.CrossedNeedles > 0 {
		st.PiApprox = float64(s.TotalNeedles) / float64(s.CrossedNeedles)
	}
	return st
}

// Defined reports whether v holds a value rather than the undefined sentinel.
func Defined(v float64) bool { return !math.IsNaN(v) }

// Format renders the stats overlay text.
func (st Stats) Format() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total Needles: %d\n", st.Total)
	b.WriteString("--------------------\n")
	fmt.Fprintf(&b, "Crossed: %d\n", st.Crossed)
	fmt.Fprintf(&b, "Not Crossed: %d\n", st.NotCrossed)
	b.WriteString("--------------------\n")
	b.WriteString("Approximation of π\n")
	fmt.Fprintf(&b, "(Crossed / Total): %s\n", formatValue(st.Ratio))
	fmt.Fprintf(&b, "(Total / Crossed): %s", formatValue(st.PiApprox))
	return b.String()
}

func formatValue(v float64) string {
	if !Defined(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.6f", v)
}

// CrossProbability returns the probability that one drop crosses a line.
// For a fixed angle θ the probability is min(1, L·sinθ/D); averaging over
// θ in [0, π) gives 2L/(πD) for L <= D.
func CrossProbability(cfg Config) float64 {
	x := cfg.NeedleLength / cfg.LineDistance
	if x <= 1 {
		return 2 * x / math.Pi
	}
	// long needle: the needle always crosses once sinθ >= 1/x
	return 2 / math.Pi * (x - math.Sqrt(x*x-1) + math.Acos(1/x))
}

// PiEstimate scales Total/Crossed by the needle geometry so the result
// approaches π for any short needle. NaN until the first crossing.
func PiEstimate(cfg Config, st Stats) float64 {
	if st.Crossed == 0 {
		return math.NaN()
	}
	return 2 * cfg.NeedleLength * float64(st.Total) / (cfg.LineDistance * float64(st.Crossed))
}

type statsJSON struct {
	Total      uint64   `json:"total"`
	Crossed    uint64   `json:"crossed"`
	NotCrossed uint64   `json:"not_crossed"`
	Ratio      *float64 `json:"ratio"`
	PiApprox   *float64 `json:"pi_approx"`
}

// MarshalJSON encodes undefined values as null.
func (st Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(statsJSON{
		Total:      st.Total,
		Crossed:    st.Crossed,
		NotCrossed: st.NotCrossed,
		Ratio:      nullable(st.Ratio),
		PiApprox:   nullable(st.PiApprox),
	})
}

// UnmarshalJSON maps null back to NaN.
func (st *Stats) UnmarshalJSON(b []byte) error {
	var v statsJSON
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*st = Stats{
		Total:      v.Total,
		Crossed:    v.Crossed,
		NotCrossed: v.NotCrossed,
		Ratio:      orNaN(v.Ratio),
		PiApprox:   orNaN(v.PiApprox),
	}
	return nil
}

func nullable(v float64) *float64 {
	if !Defined(v) {
		return nil
	}
	return &v
}

func orNaN(v *float64) float64 {
	if v == nil {
		return math.NaN()
	}
	return *v
}
