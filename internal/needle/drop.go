package needle

import (
	"errors"
	"fmt"
	"math"
)

var ErrUnknownMethod = errors.New("unknown sampling method")

// Method selects how a single trial is sampled.
type Method string

const (
	// Needle centre anywhere between the two lines, angle in [0, π).
	MethodStrip Method = "strip"
	// Distance from centre to the nearest line in [0, D/2), angle in [0, π/2).
	MethodNearest Method = "nearest"
)

// ParseMethod maps a config/flag value onto a Method. Empty means strip.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case "", MethodStrip:
		return MethodStrip, nil
	case MethodNearest:
		return MethodNearest, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMethod, s)
}

// Drop is one needle placement and its outcome.
type Drop struct {
	CenterX float64 `json:"center_x"`
	CenterY float64 `json:"center_y"`
	Angle   float64 `json:"angle"` // [0, π)
	TipX    float64 `json:"tip_x"`
	TipY    float64 `json:"tip_y"`
	TailX   float64 `json:"tail_x"`
	TailY   float64 `json:"tail_y"`
	Crossed bool    `json:"crossed"`
}

// State accumulates trial counts. The zero value is ready to use.
// Invariant: CrossedNeedles <= TotalNeedles.
type State struct {
	TotalNeedles   uint64
	CrossedNeedles uint64
}

// Record applies one trial outcome to the counters.
func (s *State) Record(crossed bool) {
	s.TotalNeedles++
	if crossed {
		s.CrossedNeedles++
	}
}

// Place computes the geometry of a needle centred at (centerX, centerY)
// with the given orientation and decides whether it crosses a line.
// Touching a line counts as crossing.
func Place(cfg Config, centerX, centerY, angle float64) Drop {
	h := cfg.NeedleLength / 2
	sin, cos := math.Sincos(angle)
	d := Drop{
		CenterX: centerX,
		CenterY: centerY,
		Angle:   angle,
		TipX:    centerX + h*cos,
		TipY:    centerY + h*sin,
		TailX:   centerX - h*cos,
		TailY:   centerY - h*sin,
	}
	d.Crossed = d.TailY <= 0 || d.TipY >= cfg.LineDistance
	return d
}

// DropNeedle draws one random placement under cfg, records it in state and
// returns it for rendering. A nil rng uses DefaultRNG.
func DropNeedle(cfg Config, state *State, rng RandomSource) Drop {
	if rng == nil {
		rng = DefaultRNG()
	}
	centerY := uniform(rng, 0, cfg.LineDistance)
	centerX := uniform(rng, -cfg.CenterXRange, cfg.CenterXRange)
	angle := uniform(rng, 0, math.Pi)

	d := Place(cfg, centerX, centerY, angle)
	state.Record(d.Crossed)
	return d
}

// Throw runs one trial with the given method and records it, without
// keeping any geometry around. Used by batch runs.
func Throw(cfg Config, method Method, state *State, rng RandomSource) bool {
	if rng == nil {
		rng = DefaultRNG()
	}
	var crossed bool
	switch method {
	case MethodNearest:
		d := uniform(rng, 0, cfg.LineDistance/2)
		theta := uniform(rng, 0, math.Pi/2)
		crossed = d <= (cfg.NeedleLength/2)*math.Sin(theta)
	default:
		centerY := uniform(rng, 0, cfg.LineDistance)
		angle := uniform(rng, 0, math.Pi)
		rise := (cfg.NeedleLength / 2) * math.Sin(angle)
		crossed = centerY-rise <= 0 || centerY+rise >= cfg.LineDistance
	}
	state.Record(crossed)
	return crossed
}
