package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/xtding233/buffon-needle/internal/needle"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, needle.DefaultConfig(), cfg.Needle)
	require.Equal(t, needle.MethodStrip, cfg.Method)
	require.Equal(t, 100*time.Millisecond, cfg.TickInterval)
	require.Equal(t, DefaultHistory, cfg.History)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, ":9090", cfg.GRPCAddr)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, "buffon", cfg.MetricsNamespace)
	require.Nil(t, cfg.Seed)
}

func TestLoadYAML(t *testing.T) {
	p := writeFile(t, "sim.yaml", `
version: "2"
simulation:
  line_distance: 3
  needle_length: 1.5
  seed: 42
animation:
  tick_interval: 250ms
server:
  grpc_addr: ""
log:
  level: DEBUG
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, "2", cfg.Version)
	require.Equal(t, 3.0, cfg.Needle.LineDistance)
	require.Equal(t, 1.5, cfg.Needle.NeedleLength)
	require.Equal(t, needle.DefaultCenterXRange, cfg.Needle.CenterXRange)
	require.Equal(t, 250*time.Millisecond, cfg.TickInterval)
	require.Equal(t, DefaultHistory, cfg.History)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, "", cfg.GRPCAddr)
	require.Equal(t, "debug", cfg.LogLevel)
	require.NotNil(t, cfg.Seed)
	require.EqualValues(t, 42, *cfg.Seed)

	a, b := cfg.RNG(), cfg.RNG()
	require.Equal(t, a.Float64(), b.Float64())
}

func TestLoadTOML(t *testing.T) {
	p := writeFile(t, "sim.toml", `
[simulation]
line_distance = 4.0
needle_length = 2.0
method = "nearest"

[metrics]
namespace = "needles"
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, 4.0, cfg.Needle.LineDistance)
	require.Equal(t, needle.MethodNearest, cfg.Method)
	require.Equal(t, "needles", cfg.MetricsNamespace)
}

func TestLoadJSON(t *testing.T) {
	p := writeFile(t, "sim.json", `{"simulation":{"needle_length":0.5},"render":{"width_cm":10}}`)
	cfg, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, 0.5, cfg.Needle.NeedleLength)
	require.Equal(t, 2.0, cfg.Needle.LineDistance)
	require.Equal(t, 10.0, cfg.RenderWidthCm)
	require.Equal(t, DefaultRenderSizeCm, cfg.RenderHeightCm)
}

func TestLoadLaterFileWins(t *testing.T) {
	base := writeFile(t, "base.yaml", "simulation:\n  needle_length: 1.2\nlog:\n  level: warn\n")
	local := writeFile(t, "local.yaml", "simulation:\n  needle_length: 0.8\n")
	cfg, err := Load(base, "", local)
	require.NoError(t, err)
	require.Equal(t, 0.8, cfg.Needle.NeedleLength)
	require.Equal(t, "warn", cfg.LogLevel)
}

func TestLoadValidationCollectsErrors(t *testing.T) {
	p := writeFile(t, "bad.yaml", `
simulation:
  line_distance: 0
  needle_length: -1
  method: spiral
animation:
  tick_interval: soon
  history: 0
log:
  level: loud
`)
	_, err := Load(p)
	require.Error(t, err)
	msg := err.Error()
	for _, want := range []string{
		"simulation.line_distance must be > 0",
		"simulation.needle_length must be > 0",
		"simulation.method",
		"animation.tick_interval",
		"animation.history must be >= 1",
		"log.level",
	} {
		require.Contains(t, msg, want)
	}
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, "sim.ini", "x=1"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(writeFile(t, "broken.yaml", "simulation: [1, 2"))
	require.Error(t, err)
}

func TestValidateRawRequiresGeometry(t *testing.T) {
	err := ValidateRaw(RawConfig{})
	require.ErrorContains(t, err, "simulation.line_distance is required")
	require.ErrorContains(t, err, "simulation.needle_length is required")
	require.NoError(t, ValidateRaw(Defaults()))
}
