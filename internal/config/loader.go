package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

var ErrUnsupportedFormat = errors.New("unsupported config format")

// Load merges defaults <- paths[0] <- paths[1] ... and returns the
// validated, normalized Config. Empty paths are skipped.
func Load(paths ...string) (Config, error) {
	merged := Defaults()
	for _, p := range paths {
		if p == "" {
			continue
		}
		raw, err := ReadFile(p)
		if err != nil {
			return Config{}, err
		}
		merged = mergeRaw(merged, raw)
	}
	if err := ValidateRaw(merged); err != nil {
		return Config{}, err
	}
	return normalize(merged)
}

// ReadFile decodes one config file. The format follows the extension:
// .yaml/.yml, .toml or .json.
func ReadFile(path string) (RawConfig, error) {
	var cfg RawConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return RawConfig{}, fmt.Errorf("read config: %w", err)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(b, &cfg)
	case ".toml":
		err = toml.Unmarshal(b, &cfg)
	case ".json":
		err = json.Unmarshal(b, &cfg)
	default:
		return RawConfig{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	if err != nil {
		return RawConfig{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return cfg, nil
}

// mergeRaw overlays b onto a: set fields in b win.
func mergeRaw(a, b RawConfig) RawConfig {
	out := a

	// top-level scalars
	if b.Version != "" {
		out.Version = b.Version
	}
	if b.Notes != "" {
		out.Notes = b.Notes
	}

	// simulation
	if b.Simulation.LineDistance != nil {
		out.Simulation.LineDistance = b.Simulation.LineDistance
	}
	if b.Simulation.NeedleLength != nil {
		out.Simulation.NeedleLength = b.Simulation.NeedleLength
	}
	if b.Simulation.CenterXRange != nil {
		out.Simulation.CenterXRange = b.Simulation.CenterXRange
	}
	if b.Simulation.Method != "" {
		out.Simulation.Method = b.Simulation.Method
	}
	if b.Simulation.Seed != nil {
		out.Simulation.Seed = b.Simulation.Seed
	}

	// animation
	switch {
	case out.Animation == nil && b.Animation != nil:
		c := *b.Animation
		out.Animation = &c
	case out.Animation != nil && b.Animation != nil:
		c := *out.Animation
		if b.Animation.TickInterval != "" {
			c.TickInterval = b.Animation.TickInterval
		}
		if b.Animation.History != nil {
			c.History = b.Animation.History
		}
		out.Animation = &c
	}

	// server
	switch {
	case out.Server == nil && b.Server != nil:
		c := *b.Server
		out.Server = &c
	case out.Server != nil && b.Server != nil:
		c := *out.Server
		if b.Server.HTTPAddr != nil {
			c.HTTPAddr = b.Server.HTTPAddr
		}
		if b.Server.GRPCAddr != nil {
			c.GRPCAddr = b.Server.GRPCAddr
		}
		out.Server = &c
	}

	// log
	switch {
	case out.Log == nil && b.Log != nil:
		c := *b.Log
		out.Log = &c
	case out.Log != nil && b.Log != nil:
		c := *out.Log
		if b.Log.Level != "" {
			c.Level = b.Log.Level
		}
		if b.Log.File != "" {
			c.File = b.Log.File
		}
		out.Log = &c
	}

	// metrics
	if b.Metrics != nil && b.Metrics.Namespace != "" {
		out.Metrics = &MetricsConfig{Namespace: b.Metrics.Namespace}
	}

	// render
	switch {
	case out.Render == nil && b.Render != nil:
		c := *b.Render
		out.Render = &c
	case out.Render != nil && b.Render != nil:
		c := *out.Render
		if b.Render.WidthCm != nil {
			c.WidthCm = b.Render.WidthCm
		}
		if b.Render.HeightCm != nil {
			c.HeightCm = b.Render.HeightCm
		}
		out.Render = &c
	}

	return out
}
