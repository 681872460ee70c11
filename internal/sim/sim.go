package sim

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/xtding233/buffon-needle/internal/logging"
	"github.com/xtding233/buffon-needle/internal/needle"
)

const (
	DefaultInterval = 100 * time.Millisecond
	DefaultHistory  = 2000
	subscriberBuf   = 64
)

// Tick is what observers receive after every step.
type Tick struct {
	Seq   uint64       `json:"seq"`
	Drop  needle.Drop  `json:"drop"`
	Stats needle.Stats `json:"stats"`
}

// Observer is notified synchronously after each step, e.g. metrics.
type Observer interface {
	Observe(needle.Drop, needle.Stats)
}

// Options configure a Simulator. Zero values fall back to defaults.
type Options struct {
	ID        string // run id; generated when empty
	RNG       needle.RandomSource
	History   int // recent drops kept for rendering
	Observers []Observer
}

// Simulator owns the simulation state for one run. Step is the only writer.
type Simulator struct {
	cfg       needle.Config
	id        string
	rng       needle.RandomSource
	observers []Observer

	mu      sync.RWMutex
	state   needle.State
	history []needle.Drop // ring buffer
	next    int

	subMu   sync.Mutex
	subs    map[chan Tick]struct{}
	stopped bool // Run has returned; no new ticks will be published
}

// New creates a simulator for cfg. cfg is validated here so Step never fails.
func New(cfg needle.Config, opts Options) (*Simulator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rng := opts.RNG
	if rng == nil {
		rng = needle.DefaultRNG()
	}
	id := opts.ID
	if id == "" {
		id = uuid.NewString()
	}
	history := opts.History
	if history <= 0 {
		history = DefaultHistory
	}
	return &Simulator{
		cfg:       cfg,
		id:        id,
		rng:       rng,
		observers: opts.Observers,
		history:   make([]needle.Drop, 0, history),
		subs:      make(map[chan Tick]struct{}),
	}, nil
}

func (s *Simulator) ID() string            { return s.id }
func (s *Simulator) Config() needle.Config { return s.cfg }

// Step drops one needle and notifies observers and subscribers.
func (s *Simulator) Step() Tick {
	s.mu.Lock()
	d := needle.DropNeedle(s.cfg, &s.state, s.rng)
	if len(s.history) < cap(s.history) {
		s.history = append(s.history, d)
	} else {
		s.history[s.next] = d
		s.next = (s.next + 1) % len(s.history)
	}
	t := Tick{Seq: s.state.TotalNeedles, Drop: d, Stats: s.state.Snapshot()}
	s.mu.Unlock()

	for _, o := range s.observers {
		o.Observe(t.Drop, t.Stats)
	}
	if logging.Enabled(zerolog.DebugLevel) {
		log.Debug().Str("run", s.id).Uint64("seq", t.Seq).Bool("crossed", d.Crossed).
			Float64("pi", t.Stats.PiApprox).Msg("needle dropped")
	}
	s.publish(t)
	return t
}

// Stats returns the current statistics.
func (s *Simulator) Stats() needle.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Snapshot()
}

// Recent returns the kept drops, oldest first.
func (s *Simulator) Recent() []needle.Drop {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]needle.Drop, 0, len(s.history))
	out = append(out, s.history[s.next:]...)
	out = append(out, s.history[:s.next]...)
	return out
}

// Run calls Step every interval until ctx is done. On return every
// subscriber channel is closed.
func (s *Simulator) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	log.Info().Str("run", s.id).Dur("interval", interval).
		Float64("line_distance", s.cfg.LineDistance).
		Float64("needle_length", s.cfg.NeedleLength).
		Msg("simulation started")
	for {
		select {
		case <-ticker.C:
			s.Step()
		case <-ctx.Done():
			st := s.Stats()
			log.Info().Str("run", s.id).Uint64("total", st.Total).
				Uint64("crossed", st.Crossed).Msg("simulation stopped")
			s.closeSubscribers()
			return ctx.Err()
		}
	}
}

// Subscribe returns a channel receiving every subsequent tick. A subscriber
// that falls behind misses ticks; the engine never blocks on it. After Run
// has returned the channel comes back already closed.
func (s *Simulator) Subscribe() chan Tick {
	ch := make(chan Tick, subscriberBuf)
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.stopped {
		close(ch)
		return ch
	}
	s.subs[ch] = struct{}{}
	return ch
}

func (s *Simulator) closeSubscribers() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.stopped = true
	for ch := range s.subs {
		delete(s.subs, ch)
		close(ch)
	}
}

// Unsubscribe removes and closes ch.
func (s *Simulator) Unsubscribe(ch chan Tick) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if _, ok := s.subs[ch]; ok {
		delete(s.subs, ch)
		close(ch)
	}
}

func (s *Simulator) publish(t Tick) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- t:
		default:
		}
	}
}
