package draw

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/raffle/internal/models"
	"github.com/desertthunder/raffle/internal/shared"
	"golang.org/x/time/rate"
)

const (
	DefaultTickInterval = 30 * time.Millisecond
	DefaultDuration     = 5 * time.Second
	DefaultSettleDelay  = 500 * time.Millisecond
)

// State is the engine's position in the draw lifecycle.
type State int

const (
	Idle State = iota
	Drawing
	Revealed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	case Revealed:
		return "revealed"
	default:
		return ""
	}
}

// PoolFunc returns the names eligible for the next draw.
type PoolFunc func() []string

// Recorder commits a drawn winner. [ledger.Ledger] satisfies it.
type Recorder interface {
	Record(name, prize string) (models.WinnerRecord, error)
}

// Options configures reveal timing and randomness.
type Options struct {
	TickInterval time.Duration // Time between reveal ticks (default: 30ms)
	Duration     time.Duration // Total reveal length (default: 5s)
	SettleDelay  time.Duration // Pause between the final tick and the commit (default: 500ms)
	Rand         *rand.Rand    // Random source (default: randomly seeded PCG)
	Logger       *log.Logger   // Logger (default: discard)
}

// DefaultOptions returns the reference reveal timing.
func DefaultOptions() Options {
	return Options{
		TickInterval: DefaultTickInterval,
		Duration:     DefaultDuration,
		SettleDelay:  DefaultSettleDelay,
	}
}

// Ticks returns the number of reveal ticks: Duration/TickInterval rounded to the nearest integer, at least 1.
func (o Options) Ticks() int {
	if o.TickInterval <= 0 {
		return 1
	}
	n := int(math.Round(float64(o.Duration) / float64(o.TickInterval)))
	return max(n, 1)
}

// Status is a point-in-time view of the engine for presentation polling.
type Status struct {
	State   State
	Prize   string               // Prize of the current or last revealed draw
	Display string               // Name currently on display
	Step    int                  // Ticks elapsed
	Total   int                  // Total ticks
	Winner  string               // Drawn winner; set once Revealed
	Last    *models.WinnerRecord // Most recently committed record
}

// round is one draw in flight.
type round struct {
	prize   string
	pool    []string
	winner  string
	ticks   int
	step    int
	display string
	cancel  context.CancelFunc
	done    chan struct{}
}

// Engine runs one draw at a time. Safe for concurrent use.
type Engine struct {
	mu        sync.Mutex
	pool      PoolFunc
	rec       Recorder
	opts      Options
	rng       *rand.Rand
	logger    *log.Logger
	tickLog   rate.Sometimes
	state     State
	current   *round
	committed bool
	last      *models.WinnerRecord
	closed    bool
}

// NewEngine creates an Engine that draws from pool and commits winners to rec.
func NewEngine(pool PoolFunc, rec Recorder, opts Options) *Engine {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.Duration < 0 {
		opts.Duration = 0
	}
	if opts.SettleDelay < 0 {
		opts.SettleDelay = 0
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{
		pool:    pool,
		rec:     rec,
		opts:    opts,
		rng:     rng,
		logger:  logger,
		tickLog: rate.Sometimes{Interval: time.Second},
	}
}

// StartDraw begins a draw for prize.
//
// Invalid requests are ignored and return (nil, false). Otherwise the returned channel receives one event per
// reveal tick followed by a commit or cancel event, then is closed.
func (e *Engine) StartDraw(prize string) (<-chan Event, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	r, err := e.prepare(prize)
	if err != nil {
		e.logger.Debug("draw request ignored", "prize", prize, "reason", err)
		return nil, false
	}

	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	e.current = r
	e.state = Drawing
	e.committed = false

	events := make(chan Event, r.ticks+1)
	go e.run(ctx, r, events)

	e.logger.Info("draw started", "prize", r.prize, "pool", len(r.pool), "ticks", r.ticks)
	return events, true
}

func (e *Engine) prepare(prize string) (*round, error) {
	switch {
	case e.closed:
		return nil, fmt.Errorf("%w: engine closed", shared.ErrInvalidDrawRequest)
	case e.state == Drawing:
		return nil, fmt.Errorf("%w: draw in progress", shared.ErrInvalidDrawRequest)
	case e.state == Revealed && !e.committed:
		return nil, fmt.Errorf("%w: winner not yet committed", shared.ErrInvalidDrawRequest)
	}

	prize = strings.TrimSpace(prize)
	if prize == "" {
		return nil, fmt.Errorf("%w: %w", shared.ErrInvalidDrawRequest, shared.ErrEmptyPrize)
	}

	var pool []string
	if e.pool != nil {
		pool = slices.Clone(e.pool())
	}
	if len(pool) == 0 {
		return nil, fmt.Errorf("%w: no eligible participants", shared.ErrInvalidDrawRequest)
	}

	return &round{
		prize:   prize,
		pool:    pool,
		winner:  e.pick(pool),
		ticks:   e.opts.Ticks(),
		display: pool[0],
		done:    make(chan struct{}),
	}, nil
}

// pick returns a uniformly chosen name. Callers hold e.mu.
func (e *Engine) pick(pool []string) string {
	return pool[e.rng.IntN(len(pool))]
}

func (e *Engine) run(ctx context.Context, r *round, events chan<- Event) {
	defer close(r.done)
	defer close(events)
	defer r.cancel()

	ticker := time.NewTicker(e.opts.TickInterval)
	defer ticker.Stop()

	for step := 1; step <= r.ticks; step++ {
		select {
		case <-ctx.Done():
			e.abort(r, events)
			return
		case <-ticker.C:
		}
		e.sendProgress(events, e.tick(r, step))
	}
	ticker.Stop()

	settle := time.NewTimer(e.opts.SettleDelay)
	defer settle.Stop()

	select {
	case <-ctx.Done():
		e.abort(r, events)
		return
	case <-settle.C:
	}

	rec, err := e.commit(ctx, r)
	if errors.Is(err, context.Canceled) {
		e.abort(r, events)
		return
	}
	e.sendProgress(events, commitEvent(r, rec, err))
}

func (e *Engine) tick(r *round, step int) Event {
	e.mu.Lock()
	defer e.mu.Unlock()

	r.step = step
	if step < r.ticks {
		r.display = e.pick(r.pool)
		e.tickLog.Do(func() {
			e.logger.Debug("reveal tick", "prize", r.prize, "step", step, "total", r.ticks, "display", r.display)
		})
		return spinEvent(r, step, r.display)
	}

	r.display = r.winner
	if e.current == r {
		e.state = Revealed
	}
	e.logger.Info("winner revealed", "prize", r.prize, "winner", r.winner)
	return revealEvent(r)
}

// commit records the winner unless the draw was cancelled or the engine closed while settling.
func (e *Engine) commit(ctx context.Context, r *round) (models.WinnerRecord, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed || ctx.Err() != nil || e.current != r {
		return models.WinnerRecord{}, context.Canceled
	}

	rec, err := e.rec.Record(r.winner, r.prize)
	e.committed = true
	if err != nil {
		e.state = Idle
		e.current = nil
		e.logger.Error("failed to commit winner", "prize", r.prize, "winner", r.winner, "error", err)
		return rec, err
	}

	e.last = &rec
	e.logger.Info("winner committed", "prize", rec.Prize, "winner", rec.Name, "id", rec.ID)
	return rec, nil
}

func (e *Engine) abort(r *round, events chan<- Event) {
	e.mu.Lock()
	if e.current == r {
		e.state = Idle
		e.current = nil
	}
	e.mu.Unlock()

	e.logger.Info("draw cancelled", "prize", r.prize, "step", r.step, "total", r.ticks)
	e.sendProgress(events, cancelEvent(r))
}

// sendProgress sends an event without blocking.
func (e *Engine) sendProgress(events chan<- Event, ev Event) {
	select {
	case events <- ev:
	default:
		e.logger.Warn("draw event dropped", "phase", ev.Phase, "step", ev.Step)
	}
}

// Status returns the current engine state.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	st := Status{State: e.state}
	if e.last != nil {
		last := *e.last
		st.Last = &last
	}
	if r := e.current; r != nil {
		st.Prize = r.prize
		st.Display = r.display
		st.Step = r.step
		st.Total = r.ticks
		if e.state == Revealed {
			st.Winner = r.winner
		}
	}
	return st
}

// Dismiss returns a Revealed engine whose winner has been committed to Idle.
func (e *Engine) Dismiss() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Revealed || !e.committed {
		return false
	}
	e.state = Idle
	e.current = nil
	return true
}

// Cancel aborts the in-flight draw, if any, and waits for it to stop. No record is committed for a cancelled draw.
func (e *Engine) Cancel() {
	e.mu.Lock()
	r := e.current
	if r == nil || e.committed {
		e.mu.Unlock()
		return
	}
	r.cancel()
	e.mu.Unlock()

	<-r.done
}

// Close cancels any in-flight draw and rejects further draws. After Close returns no commit will happen.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	r := e.current
	if r != nil {
		r.cancel()
	}
	e.mu.Unlock()

	if r != nil {
		<-r.done
	}
	e.logger.Debug("draw engine closed")
	return nil
}
