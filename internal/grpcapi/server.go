package grpcapi

import (
	"context"
	"math"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/buffon-needle/internal/needle"
	"github.com/xtding233/buffon-needle/internal/sim"
)

// Server implements SimulationServer on top of a Simulator.
type Server struct {
	sim *sim.Simulator
}

func NewServer(s *sim.Simulator) *Server {
	return &Server{sim: s}
}

func (s *Server) Stats(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return statsStruct(s.sim.ID(), s.sim.Config(), s.sim.Stats())
}

func (s *Server) Drop(_ context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	return tickStruct(s.sim.Step())
}

// Watch streams every tick until the client cancels.
func (s *Server) Watch(_ *emptypb.Empty, stream grpc.ServerStream) error {
	ch := s.sim.Subscribe()
	defer s.sim.Unsubscribe(ch)
	ctx := stream.Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case t, ok := <-ch:
			if !ok {
				return status.Error(codes.Unavailable, "simulation stopped")
			}
			msg, err := tickStruct(t)
			if err != nil {
				return status.Error(codes.Internal, err.Error())
			}
			if err := stream.SendMsg(msg); err != nil {
				log.Debug().Err(err).Msg("grpc watch send")
				return err
			}
		}
	}
}

// number returns nil for undefined values so they encode as null.
func number(v float64) any {
	if !needle.Defined(v) {
		return nil
	}
	return v
}

func statsFields(st needle.Stats) map[string]any {
	return map[string]any{
		"total":       st.Total,
		"crossed":     st.Crossed,
		"not_crossed": st.NotCrossed,
		"ratio":       number(st.Ratio),
		"pi_approx":   number(st.PiApprox),
	}
}

func statsStruct(run string, cfg needle.Config, st needle.Stats) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"run":               run,
		"line_distance":     cfg.LineDistance,
		"needle_length":     cfg.NeedleLength,
		"cross_probability": needle.CrossProbability(cfg),
		"stats":             statsFields(st),
	})
}

func tickStruct(t sim.Tick) (*structpb.Struct, error) {
	d := t.Drop
	return structpb.NewStruct(map[string]any{
		"seq": t.Seq,
		"drop": map[string]any{
			"center_x": d.CenterX,
			"center_y": d.CenterY,
			"angle":    d.Angle,
			"tip_x":    d.TipX,
			"tip_y":    d.TipY,
			"tail_x":   d.TailX,
			"tail_y":   d.TailY,
			"crossed":  d.Crossed,
		},
		"stats": statsFields(t.Stats),
	})
}

// StatsFromStruct decodes the "stats" field of a Stats/Drop/Watch response.
func StatsFromStruct(s *structpb.Struct) needle.Stats {
	f := s.GetFields()["stats"].GetStructValue().GetFields()
	get := func(k string) float64 {
		v, ok := f[k]
		if !ok {
			return 0
		}
		if _, null := v.GetKind().(*structpb.Value_NullValue); null {
			return math.NaN()
		}
		return v.GetNumberValue()
	}
	return needle.Stats{
		Total:      uint64(get("total")),
		Crossed:    uint64(get("crossed")),
		NotCrossed: uint64(get("not_crossed")),
		Ratio:      get("ratio"),
		PiApprox:   get("pi_approx"),
	}
}
