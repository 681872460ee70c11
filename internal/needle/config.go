package needle

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidConfig = errors.New("invalid needle config")

const (
	DefaultLineDistance = 2.0
	DefaultNeedleLength = 1.0
	DefaultCenterXRange = 1.5
)

// Config holds the fixed parameters of one simulation run.
type Config struct {
	LineDistance float64 // spacing between the two parallel lines
	NeedleLength float64 // length of the dropped needle
	CenterXRange float64 // centerX is drawn from [-CenterXRange, CenterXRange); drawing only
}

func DefaultConfig() Config {
	return Config{
		LineDistance: DefaultLineDistance,
		NeedleLength: DefaultNeedleLength,
		CenterXRange: DefaultCenterXRange,
	}
}

// Validate checks that every parameter is positive and finite.
func (c Config) Validate() error {
	if !positive(c.LineDistance) {
		return fmt.Errorf("%w: line distance must be > 0, got %v", ErrInvalidConfig, c.LineDistance)
	}
	if !positive(c.NeedleLength) {
		return fmt.Errorf("%w: needle length must be > 0, got %v", ErrInvalidConfig, c.NeedleLength)
	}
	if !positive(c.CenterXRange) {
		return fmt.Errorf("%w: center x range must be > 0, got %v", ErrInvalidConfig, c.CenterXRange)
	}
	return nil
}

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}
