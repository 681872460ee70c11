package needle

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"math/rand/v2"
)

// RandomSource feeds every needle placement. Float64 must return values
// in [0, 1). Implementations are not required to be safe for concurrent use;
// the Simulator serializes access.
type RandomSource interface {
	Float64() float64
}

// DefaultRNG returns an unseeded source backed by crypto/rand, used when a
// run has no seed configured.
func DefaultRNG() RandomSource { return systemSource{} }

// NewSeededRNG returns a PCG source. The same seed replays the same needles,
// which batch runs and tests rely on.
func NewSeededRNG(seed uint64) RandomSource {
	return &pcgSource{r: rand.New(rand.NewPCG(seed, 0))}
}

type systemSource struct{}

func (systemSource) Float64() float64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		return rand.Float64()
	}
	// top 53 bits fill the float64 mantissa exactly
	return float64(binary.BigEndian.Uint64(buf[:])>>11) / (1 << 53)
}

type pcgSource struct{ r *rand.Rand }

func (p *pcgSource) Float64() float64 { return p.r.Float64() }

// uniform draws from U(lo, hi). Every sampled quantity of a drop (centre
// height, horizontal offset, angle, distance to the nearest line) goes
// through here, one rng draw per quantity, so a seeded run is reproducible
// as long as the draw order in DropNeedle and Throw is kept.
func uniform(rng RandomSource, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}
