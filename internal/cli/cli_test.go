package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image/png"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/xtding233/buffon-needle/internal/config"
	"github.com/xtding233/buffon-needle/internal/needle"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	root := Root()
	var out bytes.Buffer
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestThrow(t *testing.T) {
	out, err := execute(t, "", "throw", "--needles", "100000", "--seed", "42", "--progress=false")
	require.NoError(t, err)
	require.Contains(t, out, "Total needles thrown   : 100000\n")
	require.Contains(t, out, "Theoretical probability: 0.318310\n")

	var crossed int
	line := out[strings.Index(out, "Needles intersected"):]
	_, err = fmt.Sscanf(line, "Needles intersected    : %d", &crossed)
	require.NoError(t, err)
	require.InDelta(t, 100000/3.14159, float64(crossed), 1000)
}

func TestThrowSeededIsReproducible(t *testing.T) {
	a, err := execute(t, "", "throw", "-n", "5000", "--seed", "7", "--method", "nearest", "--progress=false")
	require.NoError(t, err)
	b, err := execute(t, "", "throw", "-n", "5000", "--seed", "7", "--method", "nearest", "--progress=false")
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestThrowPromptsForCount(t *testing.T) {
	out, err := execute(t, "250\n", "throw", "--seed", "1", "--progress=false")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "Enter number of needles to throw: "))
	require.Contains(t, out, "Total needles thrown   : 250\n")
}

func TestThrowRejectsNonPositive(t *testing.T) {
	_, err := execute(t, "", "throw", "-n", "-3", "--progress=false")
	require.ErrorIs(t, err, needle.ErrInvalidTrials)

	_, err = execute(t, "0\n", "throw", "--progress=false")
	require.ErrorIs(t, err, needle.ErrInvalidTrials)

	_, err = execute(t, "abc\n", "throw", "--progress=false")
	require.Error(t, err)
}

func TestThrowReplicatesAndHistogram(t *testing.T) {
	hist := filepath.Join(t.TempDir(), "hist.png")
	out, err := execute(t, "", "throw", "-n", "2000", "-r", "20", "--seed", "3", "--hist", hist)
	require.NoError(t, err)
	require.Contains(t, out, "Total needles thrown   : 40000\n")
	require.Contains(t, out, "Replicate estimates    : mean=")

	f, err := os.Open(hist)
	require.NoError(t, err)
	defer f.Close()
	_, err = png.Decode(f)
	require.NoError(t, err)
}

func TestThrowUsesConfigFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "long.yaml")
	require.NoError(t, os.WriteFile(p, []byte("simulation:\n  line_distance: 1\n  needle_length: 1\n  seed: 5\n"), 0o644))
	out, err := execute(t, "", "throw", "-c", p, "-n", "10", "--progress=false")
	require.NoError(t, err)
	require.Contains(t, out, "Theoretical probability: 0.636620\n")
}

func TestCheckConfig(t *testing.T) {
	out, err := execute(t, "", "checkconfig")
	require.NoError(t, err)
	require.Contains(t, out, "config is valid")

	p := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(p, []byte("simulation:\n  needle_length: 0\n"), 0o644))
	_, err = execute(t, "", "checkconfig", "--config", p)
	require.ErrorContains(t, err, "simulation.needle_length must be > 0")
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "", "version")
	require.NoError(t, err)
	require.Contains(t, out, "buffon v")
}

func TestRunServe(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.TickInterval = time.Millisecond
	cfg.HTTPAddr, cfg.GRPCAddr = "", ""

	httpLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServe(ctx, cfg, httpLn, nil) }()

	url := "http://" + httpLn.Addr().String() + "/stats"
	require.Eventually(t, func() bool {
		res, err := http.Get(url)
		if err != nil {
			return false
		}
		defer res.Body.Close()
		var body struct {
			Stats needle.Stats `json:"stats"`
		}
		return json.NewDecoder(res.Body).Decode(&body) == nil && body.Stats.Total > 0
	}, 5*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("runServe did not return")
	}
}

func TestRunServeRejectsNearest(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Method = needle.MethodNearest
	cfg.HTTPAddr, cfg.GRPCAddr = "", ""
	require.ErrorIs(t, runServe(context.Background(), cfg, nil, nil), ErrLiveMethod)
}

func TestRunServeStopsWithOpenWatch(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.TickInterval = time.Millisecond
	cfg.HTTPAddr, cfg.GRPCAddr = "", ""

	grpcLn, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- runServe(ctx, cfg, nil, grpcLn) }()

	conn, err := grpc.NewClient(grpcLn.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	defer conn.Close()

	// the client keeps its stream open for the whole test
	streamCtx, streamCancel := context.WithCancel(context.Background())
	defer streamCancel()
	stream, err := conn.NewStream(streamCtx, &grpc.StreamDesc{ServerStreams: true}, "/buffon.v1.Simulation/Watch")
	require.NoError(t, err)
	require.NoError(t, stream.SendMsg(&emptypb.Empty{}))
	require.NoError(t, stream.CloseSend())
	require.NoError(t, stream.RecvMsg(new(structpb.Struct)))

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("runServe blocked on an open watch stream")
	}
}

func TestMainPrintsPlainErrors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := Main([]string{"throw", "--needles=-1", "--progress=false"}, &stdout, &stderr)
	require.Equal(t, 1, code)
	require.Equal(t, "Error: number of needles must be positive\n", stderr.String())

	stderr.Reset()
	require.Equal(t, 0, Main([]string{"version"}, &stdout, &stderr))
	require.Empty(t, stderr.String())
}
