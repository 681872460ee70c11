package config

import "github.com/xtding233/buffon-needle/internal/needle"

const (
	DefaultTickInterval     = "100ms"
	DefaultHistory          = 2000
	DefaultHTTPAddr         = ":8080"
	DefaultGRPCAddr         = ":9090"
	DefaultLogLevel         = "info"
	DefaultMetricsNamespace = "buffon"
	DefaultRenderSizeCm     = 20.0
)

// Defaults returns the built-in configuration every file is merged onto.
func Defaults() RawConfig {
	return RawConfig{
		Version: "1",
		Simulation: SimulationConfig{
			LineDistance: ptr(needle.DefaultLineDistance),
			NeedleLength: ptr(needle.DefaultNeedleLength),
			CenterXRange: ptr(needle.DefaultCenterXRange),
			Method:       string(needle.MethodStrip),
		},
		Animation: &AnimationConfig{
			TickInterval: DefaultTickInterval,
			History:      ptr(DefaultHistory),
		},
		Server: &ServerConfig{
			HTTPAddr: ptr(DefaultHTTPAddr),
			GRPCAddr: ptr(DefaultGRPCAddr),
		},
		Log:     &LogConfig{Level: DefaultLogLevel},
		Metrics: &MetricsConfig{Namespace: DefaultMetricsNamespace},
		Render: &RenderConfig{
			WidthCm:  ptr(DefaultRenderSizeCm),
			HeightCm: ptr(DefaultRenderSizeCm),
		},
	}
}

func ptr[T any](v T) *T { return &v }
