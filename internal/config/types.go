// types.go
package config

import (
	"time"

	"github.com/xtding233/buffon-needle/internal/needle"
)

// RawConfig is the file schema. Pointer fields distinguish "unset" from zero.
type RawConfig struct {
	Version    string           `yaml:"version" toml:"version" json:"version"`
	Simulation SimulationConfig `yaml:"simulation" toml:"simulation" json:"simulation"`
	Animation  *AnimationConfig `yaml:"animation,omitempty" toml:"animation,omitempty" json:"animation,omitempty"`
	Server     *ServerConfig    `yaml:"server,omitempty" toml:"server,omitempty" json:"server,omitempty"`
	Log        *LogConfig       `yaml:"log,omitempty" toml:"log,omitempty" json:"log,omitempty"`
	Metrics    *MetricsConfig   `yaml:"metrics,omitempty" toml:"metrics,omitempty" json:"metrics,omitempty"`
	Render     *RenderConfig    `yaml:"render,omitempty" toml:"render,omitempty" json:"render,omitempty"`
	Notes      string           `yaml:"notes,omitempty" toml:"notes,omitempty" json:"notes,omitempty"`
}

type SimulationConfig struct {
	LineDistance *float64 `yaml:"line_distance" toml:"line_distance" json:"line_distance"`
	NeedleLength *float64 `yaml:"needle_length" toml:"needle_length" json:"needle_length"`
	CenterXRange *float64 `yaml:"center_x_range,omitempty" toml:"center_x_range,omitempty" json:"center_x_range,omitempty"`
	// "strip" | "nearest". nearest draws no geometry and is accepted by throw only.
	Method string  `yaml:"method,omitempty" toml:"method,omitempty" json:"method,omitempty"`
	Seed   *uint64 `yaml:"seed,omitempty" toml:"seed,omitempty" json:"seed,omitempty"` // unset => crypto source
}

type AnimationConfig struct {
	TickInterval string `yaml:"tick_interval" toml:"tick_interval" json:"tick_interval"` // e.g. "100ms"
	History      *int   `yaml:"history,omitempty" toml:"history,omitempty" json:"history,omitempty"`
}

type ServerConfig struct {
	HTTPAddr *string `yaml:"http_addr,omitempty" toml:"http_addr,omitempty" json:"http_addr,omitempty"` // "" disables
	GRPCAddr *string `yaml:"grpc_addr,omitempty" toml:"grpc_addr,omitempty" json:"grpc_addr,omitempty"` // "" disables
}

type LogConfig struct {
	Level string `yaml:"level" toml:"level" json:"level"`
	File  string `yaml:"file,omitempty" toml:"file,omitempty" json:"file,omitempty"`
}

type MetricsConfig struct {
	Namespace string `yaml:"namespace" toml:"namespace" json:"namespace"`
}

type RenderConfig struct {
	WidthCm  *float64 `yaml:"width_cm,omitempty" toml:"width_cm,omitempty" json:"width_cm,omitempty"`
	HeightCm *float64 `yaml:"height_cm,omitempty" toml:"height_cm,omitempty" json:"height_cm,omitempty"`
}

// Config is the normalized configuration used by the rest of the program.
type Config struct {
	Version          string
	Needle           needle.Config
	Method           needle.Method
	Seed             *uint64
	TickInterval     time.Duration
	History          int
	HTTPAddr         string
	GRPCAddr         string
	LogLevel         string
	LogFile          string
	MetricsNamespace string
	RenderWidthCm    float64
	RenderHeightCm   float64
}

// RNG returns the random source selected by the config.
func (c Config) RNG() needle.RandomSource {
	if c.Seed != nil {
		return needle.NewSeededRNG(*c.Seed)
	}
	return needle.DefaultRNG()
}
