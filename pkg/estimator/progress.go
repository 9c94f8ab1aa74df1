package estimator

import (
	"math/rand"
	"sync"
	"time"

	"github.com/RuvinSL/token-estimator/pkg/models"
)

const (
	DefaultTickInterval    = 400 * time.Millisecond
	DefaultMessageInterval = 1800 * time.Millisecond
	DefaultCompletionHold  = 1200 * time.Millisecond

	// progressCap is the ceiling while the service is still working; the
	// remainder is only reached when the request actually completes.
	progressCap      = 90.0
	progressComplete = 100.0
)

// StatusMessages is the pool of filler lines rotated during a full analysis.
var StatusMessages = []string{
	"AI is crawling your website's secret corners...",
	"Counting tokens like a squirrel counts nuts...",
	"Exploring every page, even the hidden ones!",
	"Analyzing forms, buttons, and mysterious features...",
	"Almost there, don't blink!",
	"AI is working hard, please grab a coffee ☕",
	"Mapping the digital universe...",
	"Summoning token wizards...",
	"Calculating, calculating, calculating...",
	"This is not magic, it's just a lot of math!",
}

// Clock provides the timers owned by the simulator.
type Clock interface {
	NewTicker(d time.Duration) Ticker
	AfterFunc(d time.Duration, f func()) Timer
}

type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type Timer interface {
	Stop() bool
}

// SystemClock is the Clock backed by package time.
type SystemClock struct{}

func (SystemClock) NewTicker(d time.Duration) Ticker {
	return systemTicker{time.NewTicker(d)}
}

func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type systemTicker struct {
	t *time.Ticker
}

func (s systemTicker) C() <-chan time.Time { return s.t.C }
func (s systemTicker) Stop()               { s.t.Stop() }

// SimulatorConfig holds the simulator periods. Zero fields take the defaults.
type SimulatorConfig struct {
	TickInterval    time.Duration
	MessageInterval time.Duration
	CompletionHold  time.Duration
}

func (c SimulatorConfig) withDefaults() SimulatorConfig {
	if c.TickInterval <= 0 {
		c.TickInterval = DefaultTickInterval
	}
	if c.MessageInterval <= 0 {
		c.MessageInterval = DefaultMessageInterval
	}
	if c.CompletionHold <= 0 {
		c.CompletionHold = DefaultCompletionHold
	}
	return c
}

// ProgressSnapshot is a point-in-time view of the simulator.
type ProgressSnapshot struct {
	Active   bool
	Progress float64
	Message  string
}

// ProgressSimulator produces synthetic progress for full-site analyses.
//
// It runs only while loading && mode == full. Activation starts two tickers
// (progress and status message) that are stopped, and their goroutines
// joined, on every transition out of that condition and on Close.
// Update must not be called while holding a lock that onChange acquires.
type ProgressSimulator struct {
	cfg      SimulatorConfig
	clock    Clock
	random   func() float64
	onChange func()

	mu       sync.Mutex
	progress float64
	message  string
	run      *simulatorRun
	hold     Timer
	holdSeq  uint64
	closed   bool
}

type simulatorRun struct {
	stop chan struct{}
	wg   sync.WaitGroup
}

// NewProgressSimulator creates an idle simulator. clock and random may be nil;
// random must return values in [0, 1). onChange, when set, is called after
// every visible change, never with the simulator's lock held.
func NewProgressSimulator(cfg SimulatorConfig, clock Clock, random func() float64, onChange func()) *ProgressSimulator {
	if clock == nil {
		clock = SystemClock{}
	}
	if random == nil {
		random = rand.Float64
	}
	if onChange == nil {
		onChange = func() {}
	}
	return &ProgressSimulator{
		cfg:      cfg.withDefaults(),
		clock:    clock,
		random:   random,
		onChange: onChange,
		message:  StatusMessages[0],
	}
}

// Update evaluates the activation rule for the given loading flag and mode.
func (s *ProgressSimulator) Update(loading bool, mode models.Mode) {
	active := loading && mode == models.ModeFull

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	var stopped *simulatorRun
	changed := false
	switch {
	case active && s.run == nil:
		s.cancelHoldLocked()
		s.progress = 0
		s.run = s.startLocked()
		changed = true
	case !active && s.run != nil:
		stopped = s.run
		s.run = nil
		close(stopped.stop)
		if !loading && mode == models.ModeFull {
			s.progress = progressComplete
			s.scheduleResetLocked()
		} else {
			s.progress = 0
		}
		changed = true
	}
	s.mu.Unlock()

	if stopped != nil {
		stopped.wg.Wait()
	}
	if changed {
		s.onChange()
	}
}

// Snapshot returns the current progress and status message.
func (s *ProgressSimulator) Snapshot() ProgressSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ProgressSnapshot{
		Active:   s.run != nil,
		Progress: s.progress,
		Message:  s.message,
	}
}

// Close stops every timer. The simulator ignores Update afterwards.
func (s *ProgressSimulator) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.cancelHoldLocked()
	stopped := s.run
	s.run = nil
	if stopped != nil {
		close(stopped.stop)
	}
	s.progress = 0
	s.mu.Unlock()

	if stopped != nil {
		stopped.wg.Wait()
	}
}

func (s *ProgressSimulator) startLocked() *simulatorRun {
	run := &simulatorRun{stop: make(chan struct{})}
	progressTicker := s.clock.NewTicker(s.cfg.TickInterval)
	messageTicker := s.clock.NewTicker(s.cfg.MessageInterval)

	run.wg.Add(2)
	go s.loop(run, progressTicker, s.advance)
	go s.loop(run, messageTicker, s.rotate)
	return run
}

func (s *ProgressSimulator) loop(run *simulatorRun, ticker Ticker, step func(*simulatorRun) bool) {
	defer run.wg.Done()
	defer ticker.Stop()

	for {
		select {
		case <-run.stop:
			return
		case <-ticker.C():
			if step(run) {
				s.onChange()
			}
		}
	}
}

// advance moves progress forward by a value in [1, 4), never past the cap.
func (s *ProgressSimulator) advance(run *simulatorRun) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.run != run || s.progress >= progressCap {
		return false
	}
	next := s.progress + 1 + s.random()*3
	if next > progressCap {
		next = progressCap
	}
	s.progress = next
	return true
}

func (s *ProgressSimulator) rotate(run *simulatorRun) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.run != run {
		return false
	}
	idx := int(s.random() * float64(len(StatusMessages)))
	if idx >= len(StatusMessages) {
		idx = len(StatusMessages) - 1
	}
	s.message = StatusMessages[idx]
	return true
}

func (s *ProgressSimulator) scheduleResetLocked() {
	s.cancelHoldLocked()
	seq := s.holdSeq
	s.hold = s.clock.AfterFunc(s.cfg.CompletionHold, func() {
		s.mu.Lock()
		if s.closed || s.holdSeq != seq {
			s.mu.Unlock()
			return
		}
		s.hold = nil
		s.progress = 0
		s.mu.Unlock()
		s.onChange()
	})
}

func (s *ProgressSimulator) cancelHoldLocked() {
	if s.hold != nil {
		s.hold.Stop()
		s.hold = nil
	}
	s.holdSeq++
}
