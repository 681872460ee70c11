package config

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/xtding233/buffon-needle/internal/needle"
)

var logLevels = map[string]bool{
	"none": true, "trace": true, "debug": true, "info": true,
	"warn": true, "error": true, "fatal": true,
}

// ValidateRaw checks semantic constraints of a RawConfig.
func ValidateRaw(cfg RawConfig) error {
	var errs []string

	// simulation
	sim := cfg.Simulation
	if sim.LineDistance == nil {
		errs = append(errs, "simulation.line_distance is required")
	} else if !positive(*sim.LineDistance) {
		errs = append(errs, "simulation.line_distance must be > 0")
	}
	if sim.NeedleLength == nil {
		errs = append(errs, "simulation.needle_length is required")
	} else if !positive(*sim.NeedleLength) {
		errs = append(errs, "simulation.needle_length must be > 0")
	}
	if sim.CenterXRange != nil && !positive(*sim.CenterXRange) {
		errs = append(errs, "simulation.center_x_range must be > 0")
	}
	if _, err := needle.ParseMethod(sim.Method); err != nil {
		errs = append(errs, "simulation.method must be one of: strip, nearest")
	}

	// animation
	if cfg.Animation != nil {
		if cfg.Animation.TickInterval != "" {
			d, err := time.ParseDuration(cfg.Animation.TickInterval)
			if err != nil {
				errs = append(errs, fmt.Sprintf("animation.tick_interval: %v", err))
			} else if d <= 0 {
				errs = append(errs, "animation.tick_interval must be > 0")
			}
		}
		if cfg.Animation.History != nil && *cfg.Animation.History < 1 {
			errs = append(errs, "animation.history must be >= 1")
		}
	}

	// log
	if cfg.Log != nil && cfg.Log.Level != "" && !logLevels[strings.ToLower(cfg.Log.Level)] {
		errs = append(errs, "log.level must be one of: none, trace, debug, info, warn, error, fatal")
	}

	// render
	if cfg.Render != nil {
		if cfg.Render.WidthCm != nil && !positive(*cfg.Render.WidthCm) {
			errs = append(errs, "render.width_cm must be > 0")
		}
		if cfg.Render.HeightCm != nil && !positive(*cfg.Render.HeightCm) {
			errs = append(errs, "render.height_cm must be > 0")
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// normalize turns a validated RawConfig into Config, filling any section
// still missing with defaults.
func normalize(raw RawConfig) (Config, error) {
	def := Defaults()
	raw = mergeRaw(def, raw)

	method, err := needle.ParseMethod(raw.Simulation.Method)
	if err != nil {
		return Config{}, err
	}
	interval, err := time.ParseDuration(raw.Animation.TickInterval)
	if err != nil {
		return Config{}, err
	}
	cfg := Config{
		Version: raw.Version,
		Needle: needle.Config{
			LineDistance: *raw.Simulation.LineDistance,
			NeedleLength: *raw.Simulation.NeedleLength,
			CenterXRange: *raw.Simulation.CenterXRange,
		},
		Method:           method,
		Seed:             raw.Simulation.Seed,
		TickInterval:     interval,
		History:          *raw.Animation.History,
		HTTPAddr:         *raw.Server.HTTPAddr,
		GRPCAddr:         *raw.Server.GRPCAddr,
		LogLevel:         strings.ToLower(raw.Log.Level),
		LogFile:          raw.Log.File,
		MetricsNamespace: raw.Metrics.Namespace,
		RenderWidthCm:    *raw.Render.WidthCm,
		RenderHeightCm:   *raw.Render.HeightCm,
	}
	return cfg, cfg.Needle.Validate()
}
