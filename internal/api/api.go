package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/websocket"

	"github.com/xtding233/buffon-needle/internal/needle"
	"github.com/xtding233/buffon-needle/internal/render"
	"github.com/xtding233/buffon-needle/internal/sim"
)

type configResp struct {
	LineDistance float64 `json:"line_distance"`
	NeedleLength float64 `json:"needle_length"`
}

type statsResp struct {
	Run              string       `json:"run"`
	Config           configResp   `json:"config"`
	Stats            needle.Stats `json:"stats"`
	CrossProbability float64      `json:"cross_probability"`
}

type errResp struct {
	Err string `json:"err"`
}

// Options for the HTTP handler.
type Options struct {
	Render render.Options
	// Gatherer backs /metrics. If nil, prometheus.DefaultGatherer is used.
	Gatherer prometheus.Gatherer
}

// Handler serves the simulation over HTTP.
type Handler struct {
	sim  *sim.Simulator
	opts Options
	mux  *http.ServeMux
}

// NewHandler creates new Handler.
func NewHandler(s *sim.Simulator, opts Options) *Handler {
	if opts.Gatherer == nil {
		opts.Gatherer = prometheus.DefaultGatherer
	}
	h := &Handler{sim: s, opts: opts, mux: http.NewServeMux()}
	h.mux.HandleFunc("GET /stats", h.handleStats)
	h.mux.HandleFunc("POST /drop", h.handleDrop)
	h.mux.HandleFunc("GET /plot.png", h.handlePlot)
	h.mux.Handle("GET /data", websocket.Handler(h.handleData))
	h.mux.Handle("GET /metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	h.mux.HandleFunc("GET /health", h.handleHealth)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	h.mux.ServeHTTP(w, r)
	log.Debug().Str("method", r.Method).Str("path", r.URL.Path).
		Dur("took", time.Since(start)).Msg("http request")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	cfg := h.sim.Config()
	writeJSON(w, http.StatusOK, statsResp{
		Run:              h.sim.ID(),
		Config:           configResp{LineDistance: cfg.LineDistance, NeedleLength: cfg.NeedleLength},
		Stats:            h.sim.Stats(),
		CrossProbability: needle.CrossProbability(cfg),
	})
}

// manual step, independent of the ticker
func (h *Handler) handleDrop(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sim.Step())
}

func (h *Handler) handlePlot(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := render.Plane(&buf, h.sim.Config(), h.sim.Recent(), h.sim.Stats(), h.opts.Render)
	if err != nil {
		log.Error().Err(err).Msg("render plane")
		writeJSON(w, http.StatusInternalServerError, errResp{Err: err.Error()})
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(buf.Bytes())
}

// handleData streams every tick to a websocket client until it goes away.
func (h *Handler) handleData(ws *websocket.Conn) {
	ch := h.sim.Subscribe()
	defer h.sim.Unsubscribe(ch)
	ctx := ws.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return
		case t, ok := <-ch:
			if !ok {
				return
			}
			if err := websocket.JSON.Send(ws, t); err != nil {
				log.Debug().Err(err).Msg("websocket send")
				return
			}
		}
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{}`))
}
