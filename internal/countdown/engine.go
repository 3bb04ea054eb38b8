// Package countdown drives a live deadline display. The engine never counts
// down a stored number: every tick recomputes the remaining time from the
// wall clock, so a suspended or delayed ticker can never drift the display
// away from the real deadline.
package countdown

import (
	"context"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hyukudan/enroltimer/pkg/timeunit"
)

// Clock abstracts time for the engine. Tests inject a fake.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the real wall clock.
func SystemClock() Clock { return systemClock{} }

// Cell is one rendered digit.
type Cell struct {
	Digit byte
}

// UnitFrame is the rendered state of one unit at one tick.
type UnitFrame struct {
	Unit  string
	Value int64
	Cells []Cell
}

// Display receives frames. Implementations render to a terminal, a websocket,
// or a test recorder.
type Display interface {
	Render(frames []UnitFrame)
	Finished()
}

// Options tune the engine.
type Options struct {
	Clock          Clock
	ForceTwoDigits bool
	Logger         *zap.Logger
}

// Engine tracks a single deadline.
type Engine struct {
	deadline time.Time
	units    []timeunit.Unit
	display  Display
	clock    Clock
	twoDigit bool
	logger   *zap.Logger

	mu        sync.Mutex
	suspended bool
	stopped   bool
}

// New creates an engine whose deadline is initialSeconds from now. The units
// slice names which units the display carries, usually from
// timeunit.SelectDisplayUnits.
func New(initialSeconds int64, units []timeunit.Unit, display Display, opts Options) *Engine {
	clock := opts.Clock
	if clock == nil {
		clock = SystemClock()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(units) == 0 {
		units = timeunit.Table()
	}
	return &Engine{
		deadline: clock.Now().Add(time.Duration(initialSeconds) * time.Second),
		units:    units,
		display:  display,
		clock:    clock,
		twoDigit: opts.ForceTwoDigits,
		logger:   logger,
	}
}

// Remaining returns the whole seconds left until the deadline, floored at
// zero.
func (e *Engine) Remaining() int64 {
	left := int64(e.deadline.Sub(e.clock.Now()) / time.Second)
	if left < 0 {
		return 0
	}
	return left
}

// Stopped reports whether the engine reached zero.
func (e *Engine) Stopped() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stopped
}

// Suspended reports whether ticking is paused.
func (e *Engine) Suspended() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.suspended
}

// Tick recomputes the remaining time and pushes a frame. Once the deadline
// passes, a final all-zero frame goes out, the display is told the run is
// finished and further ticks are no-ops.
func (e *Engine) Tick() {
	e.mu.Lock()
	if e.suspended || e.stopped {
		e.mu.Unlock()
		return
	}
	remaining := e.Remaining()
	done := remaining == 0
	if done {
		e.stopped = true
	}
	e.mu.Unlock()

	e.render(remaining)
	if done {
		e.display.Finished()
	}
}

// Suspend pauses ticking without touching the deadline, mirroring a page
// losing visibility.
func (e *Engine) Suspend() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.suspended = true
}

// Resume recomputes immediately and continues ticking only while time is
// left; a deadline that lapsed during the pause renders its zeros once and
// stops.
func (e *Engine) Resume() {
	e.mu.Lock()
	if !e.suspended {
		e.mu.Unlock()
		return
	}
	e.suspended = false
	alreadyStopped := e.stopped
	e.mu.Unlock()

	if alreadyStopped {
		return
	}
	e.Tick()
}

// Run drives Tick once per second until the deadline passes or the context
// is cancelled. The first frame renders immediately.
func (e *Engine) Run(ctx context.Context) error {
	e.Tick()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			e.Tick()
			if e.Stopped() {
				return nil
			}
		}
	}
}

func (e *Engine) render(remaining int64) {
	counts := timeunit.Decompose(remaining, timeunit.Keys(e.units))
	frames := make([]UnitFrame, len(counts))
	for i, c := range counts {
		frames[i] = UnitFrame{Unit: c.Unit, Value: c.Value, Cells: cells(c.Value, e.twoDigit)}
	}
	e.display.Render(frames)
}

// cells splits a value into per-digit cells, padding to two digits when
// requested.
func cells(value int64, forceTwo bool) []Cell {
	text := strconv.FormatInt(value, 10)
	if forceTwo && len(text) == 1 {
		text = "0" + text
	}
	out := make([]Cell, len(text))
	for i := 0; i < len(text); i++ {
		out[i] = Cell{Digit: text[i]}
	}
	return out
}
