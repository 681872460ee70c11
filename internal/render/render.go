// Package render draws the simulation the way the live display shows it:
// two horizontal boundary lines, every recent needle, and the stats text.
package render

import (
	"errors"
	"image/color"
	"io"
	"math"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/xtding233/buffon-needle/internal/needle"
)

var ErrNoSamples = errors.New("no samples to plot")

var (
	crossedColor = color.NRGBA{R: 255, A: 255}
	missedColor  = color.NRGBA{B: 255, A: 255}
	lineColor    = color.NRGBA{A: 255}
)

// Options sets the output size. Zero values mean 20cm.
type Options struct {
	WidthCm  float64
	HeightCm float64
}

func (o Options) size() (vg.Length, vg.Length) {
	w, h := o.WidthCm, o.HeightCm
	if w <= 0 {
		w = 20
	}
	if h <= 0 {
		h = 20
	}
	return vg.Length(w) * vg.Centimeter, vg.Length(h) * vg.Centimeter
}

// Plane writes a PNG of the plane with the given drops and stats overlay.
func Plane(w io.Writer, cfg needle.Config, drops []needle.Drop, st needle.Stats, opts Options) error {
	p := hplot.New()
	p.Title.Text = "Buffon's Needle Simulation\n" + st.Format()
	p.X.Min, p.X.Max = -(cfg.CenterXRange + 0.5), cfg.CenterXRange+0.5
	p.Y.Min, p.Y.Max = -1, cfg.LineDistance+1
	p.HideAxes()

	for _, y := range []float64{0, cfg.LineDistance} {
		l, err := plotter.NewLine(plotter.XYs{{X: p.X.Min, Y: y}, {X: p.X.Max, Y: y}})
		if err != nil {
			return err
		}
		l.Color = lineColor
		l.Width = vg.Points(2)
		p.Add(l)
	}

	for _, d := range drops {
		l, err := plotter.NewLine(plotter.XYs{{X: d.TailX, Y: d.TailY}, {X: d.TipX, Y: d.TipY}})
		if err != nil {
			return err
		}
		l.Color = missedColor
		if d.Crossed {
			l.Color = crossedColor
		}
		l.Width = vg.Points(0.5)
		p.Add(l)
	}
	return writePNG(w, p, opts)
}

// Histogram writes a PNG histogram of per-replicate pi estimates.
func Histogram(w io.Writer, samples []float64, bins int, opts Options) error {
	if len(samples) == 0 {
		return ErrNoSamples
	}
	if bins <= 0 {
		bins = 50
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range samples {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	pad := (hi - lo) * 0.05
	if pad == 0 {
		pad = 0.1
	}
	h := hbook.NewH1D(bins, lo-pad, hi+pad)
	for _, v := range samples {
		h.Fill(v, 1)
	}

	p := hplot.New()
	p.Title.Text = "π estimates per replicate"
	p.X.Label.Text = "π estimate"
	p.Y.Label.Text = "replicates"

	hh := hplot.NewH1D(h)
	hh.LineStyle.Color = missedColor
	_, _, _, ymax := h.DataRange()
	ref, err := plotter.NewLine(plotter.XYs{{X: math.Pi, Y: 0}, {X: math.Pi, Y: ymax}})
	if err != nil {
		return err
	}
	ref.Color = crossedColor
	ref.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(hh, ref, hplot.NewGrid())
	return writePNG(w, p, opts)
}

func writePNG(w io.Writer, p *hplot.Plot, opts Options) error {
	width, height := opts.size()
	canvas := vgimg.PngCanvas{Canvas: vgimg.New(width, height)}
	p.Draw(draw.New(canvas))
	_, err := canvas.WriteTo(w)
	return err
}
