package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/cheggaaa/pb/v3"
	"github.com/spf13/cobra"

	"github.com/xtding233/buffon-needle/internal/config"
	"github.com/xtding233/buffon-needle/internal/needle"
	"github.com/xtding233/buffon-needle/internal/render"
)

type throwOptions struct {
	needles    int
	replicates int
	method     string
	seed       uint64
	seeded     bool
	hist       string
	progress   bool
}

func Throw() *cobra.Command {
	var o throwOptions
	cmd := &cobra.Command{
		Use:   "throw",
		Short: "Throw a batch of needles and print the crossing statistics",
		Long: `Throw --needles needles (asked for on stdin when not given) in each of
--replicates replicates and report how many crossed a line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPaths(cmd)...)
			if err != nil {
				return err
			}
			o.seeded = cmd.Flags().Changed("seed")
			if !cmd.Flags().Changed("method") {
				o.method = string(cfg.Method)
			}
			if !o.seeded && cfg.Seed != nil {
				o.seed, o.seeded = *cfg.Seed, true
			}
			return runThrow(cmd.InOrStdin(), cmd.OutOrStdout(), cmd.ErrOrStderr(), cfg, o)
		},
	}
	cmd.Flags().IntVarP(&o.needles, "needles", "n", 0, "needles per replicate (prompted when 0)")
	cmd.Flags().IntVarP(&o.replicates, "replicates", "r", 1, "independent replicates")
	cmd.Flags().StringVarP(&o.method, "method", "m", string(needle.MethodStrip), "sampling method: strip or nearest")
	cmd.Flags().Uint64Var(&o.seed, "seed", 0, "seed for a reproducible run")
	cmd.Flags().StringVar(&o.hist, "hist", "", "write a PNG histogram of per-replicate π estimates")
	cmd.Flags().BoolVar(&o.progress, "progress", true, "show a progress bar")
	return cmd
}

func runThrow(in io.Reader, out, errOut io.Writer, cfg config.Config, o throwOptions) error {
	if o.needles == 0 {
		fmt.Fprint(out, "Enter number of needles to throw: ")
		if _, err := fmt.Fscan(bufio.NewReader(in), &o.needles); err != nil {
			return fmt.Errorf("read needle count: %w", err)
		}
	}
	if o.needles <= 0 {
		return needle.ErrInvalidTrials
	}

	rng := needle.DefaultRNG()
	if o.seeded {
		rng = needle.NewSeededRNG(o.seed)
	}
	params := needle.SimParams{
		Config:     cfg.Needle,
		Method:     needle.Method(o.method),
		Trials:     o.needles,
		Replicates: o.replicates,
	}

	var tick func()
	if o.progress {
		reps := max(o.replicates, 1)
		bar := pb.New64(int64(o.needles) * int64(reps)).SetWriter(errOut)
		bar.Start()
		defer bar.Finish()
		tick = func() { bar.Increment() }
	}
	sum, err := needle.RunMonteCarlo(params, rng, tick)
	if err != nil {
		return err
	}

	st := sum.Stats
	fmt.Fprintf(out, "Total needles thrown   : %d\n", st.Total)
	fmt.Fprintf(out, "Needles intersected    : %d\n", st.Crossed)
	fmt.Fprintf(out, "Needles not intersected: %d\n", st.NotCrossed)
	fmt.Fprintf(out, "Intersection probability: %s\n", fixed(st.Ratio))
	fmt.Fprintf(out, "Inverse of probability : %s\n", fixed(st.PiApprox))
	fmt.Fprintf(out, "Theoretical probability: %s\n", fixed(sum.Probability))
	fmt.Fprintf(out, "Estimate of π          : %s\n", fixed(needle.PiEstimate(cfg.Needle, st)))
	if o.replicates > 1 {
		e := sum.Estimates
		fmt.Fprintf(out, "Replicate estimates    : mean=%s stddev=%s p50=%s p90=%s p99=%s\n",
			fixed(e.Mean), fixed(e.StdDev), fixed(e.P50), fixed(e.P90), fixed(e.P99))
	}

	if o.hist != "" {
		f, err := os.Create(o.hist)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := render.Histogram(f, sum.Estimates.Samples, 0, render.Options{
			WidthCm:  cfg.RenderWidthCm,
			HeightCm: cfg.RenderHeightCm,
		}); err != nil {
			return err
		}
		return f.Close()
	}
	return nil
}

func fixed(v float64) string {
	if !needle.Defined(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.6f", v)
}
