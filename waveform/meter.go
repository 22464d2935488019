package waveform

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"murmur/log"
)

// Meter drives a Buffer from a periodic ticker. Sample may be called from
// any goroutine; frames are published to OnFrame from the tick goroutine.
type Meter struct {
	cfg     Config
	level   Level
	jitter  JitterSource
	onFrame func(heights []float64)
	ticks   atomic.Uint64

	mu  sync.Mutex
	buf *Buffer

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type Option func(*Meter)

// WithJitter replaces the random source. Pass NoJitter for reproducible output.
func WithJitter(j JitterSource) Option {
	return func(m *Meter) { m.jitter = j }
}

// WithOnFrame registers a callback receiving a copy of the heights after
// every tick. It runs on the tick goroutine and must not block.
func WithOnFrame(fn func(heights []float64)) Option {
	return func(m *Meter) { m.onFrame = fn }
}

func NewMeter(cfg Config, opts ...Option) (*Meter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	m := &Meter{
		cfg:    cfg,
		jitter: DefaultJitter,
		buf:    NewBuffer(cfg),
	}
	for _, o := range opts {
		o(m)
	}
	return m, nil
}

func (m *Meter) Config() Config { return m.cfg }

// Sample stores the latest amplitude. Invalid values are logged and
// stored as silence.
func (m *Meter) Sample(v float64) {
	clean, ok := Sanitize(v)
	if !ok {
		log.InvalidSample(v)
	}
	m.level.Store(clean)
}

// Level returns the amplitude the next tick will consume.
func (m *Meter) Level() float64 {
	return m.level.Load()
}

// Tick advances the buffer once. The ticker calls it; tests call it directly.
func (m *Meter) Tick() {
	a := m.level.Load()

	m.mu.Lock()
	m.buf.Tick(a, m.jitter)
	frame := m.buf.Heights()
	m.mu.Unlock()

	m.ticks.Add(1)
	if m.onFrame != nil {
		m.onFrame(frame)
	}
}

func (m *Meter) Ticks() uint64 { return m.ticks.Load() }

func (m *Meter) Snapshot() []float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.buf.Heights()
}

// Start launches the tick goroutine. Starting a running meter is a no-op.
// The goroutine exits when ctx is done or Stop is called.
func (m *Meter) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.runMu.Lock()
	defer m.runMu.Unlock()

	if m.done != nil {
		select {
		case <-m.done:
			// previous run ended with its context; fall through and restart
			m.cancel()
		default:
			return nil
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done

	log.MeterStart(m.cfg.Bars, m.cfg.Interval)
	go m.loop(ctx, done)
	return nil
}

func (m *Meter) loop(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(m.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Tick()
		}
	}
}

// Running reports whether the tick goroutine is alive.
func (m *Meter) Running() bool {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.done == nil {
		return false
	}
	select {
	case <-m.done:
		return false
	default:
		return true
	}
}

// Stop cancels the ticker and waits for the goroutine to exit.
// It is safe to call more than once, and before Start.
func (m *Meter) Stop() {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.done == nil {
		return
	}
	m.cancel()
	<-m.done
	m.cancel = nil
	m.done = nil
	log.MeterStop(m.ticks.Load())
}

// Run starts the meter, calls fn, and stops the meter however fn returns.
func (m *Meter) Run(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := m.Start(ctx); err != nil {
		return err
	}
	defer m.Stop()
	return fn(ctx)
}
