package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/xtding233/buffon-needle/internal/api"
	"github.com/xtding233/buffon-needle/internal/config"
	"github.com/xtding233/buffon-needle/internal/grpcapi"
	"github.com/xtding233/buffon-needle/internal/logging"
	"github.com/xtding233/buffon-needle/internal/metrics"
	"github.com/xtding233/buffon-needle/internal/needle"
	"github.com/xtding233/buffon-needle/internal/render"
	"github.com/xtding233/buffon-needle/internal/sim"
)

const shutdownTimeout = 5 * time.Second

// ErrLiveMethod is returned by serve for sampling methods that produce no
// needle geometry to display.
var ErrLiveMethod = errors.New("serve only supports simulation.method strip")

func Serve() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the live simulation with HTTP and gRPC endpoints",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPaths(cmd)...)
			if err != nil {
				return err
			}
			closeLog, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
			defer closeLog()
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, nil, nil)
		},
	}
}

// runServe blocks until ctx is done or a server fails. Listeners may be
// passed in (tests); otherwise they are opened from cfg.
func runServe(ctx context.Context, cfg config.Config, httpLn, grpcLn net.Listener) error {
	if cfg.Method != needle.MethodStrip {
		return fmt.Errorf("%w, got %q", ErrLiveMethod, cfg.Method)
	}
	runID := uuid.NewString()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(metrics.Config{
		Namespace:   cfg.MetricsNamespace,
		ConstLabels: map[string]string{"run": runID},
		Registerer:  reg,
	}, cfg.Needle)
	if err != nil {
		return err
	}

	s, err := sim.New(cfg.Needle, sim.Options{
		ID:        runID,
		RNG:       cfg.RNG(),
		History:   cfg.History,
		Observers: []sim.Observer{m},
	})
	if err != nil {
		return err
	}

	if httpLn == nil && cfg.HTTPAddr != "" {
		if httpLn, err = net.Listen("tcp", cfg.HTTPAddr); err != nil {
			return err
		}
	}
	if grpcLn == nil && cfg.GRPCAddr != "" {
		if grpcLn, err = net.Listen("tcp", cfg.GRPCAddr); err != nil {
			if httpLn != nil {
				_ = httpLn.Close()
			}
			return err
		}
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := s.Run(ctx, cfg.TickInterval); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	if httpLn != nil {
		srv := &http.Server{
			Handler: api.NewHandler(s, api.Options{
				Render:   render.Options{WidthCm: cfg.RenderWidthCm, HeightCm: cfg.RenderHeightCm},
				Gatherer: reg,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}
		log.Info().Str("addr", httpLn.Addr().String()).Msg("serving http")
		g.Go(func() error {
			if err := srv.Serve(httpLn); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if grpcLn != nil {
		gs := grpc.NewServer()
		grpcapi.Register(gs, grpcapi.NewServer(s))
		log.Info().Str("addr", grpcLn.Addr().String()).Msg("serving grpc")
		g.Go(func() error {
			return gs.Serve(grpcLn)
		})
		g.Go(func() error {
			<-ctx.Done()
			// Watch streams return once the simulator closes its subscribers
			gs.GracefulStop()
			return nil
		})
	}

	err = g.Wait()
	log.Info().Str("run", runID).Msg("shutdown complete")
	return err
}
