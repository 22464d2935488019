package waveform

import "math/rand/v2"

// JitterSource returns a value in [-1, 1]. The result is scaled by
// Config.Jitter before it is added to the newest bar.
type JitterSource func() float64

func DefaultJitter() float64 {
	return rand.Float64()*2 - 1
}

// NoJitter always returns 0.
func NoJitter() float64 { return 0 }

// Buffer is a fixed-length run of bar heights. Index 0 is the oldest bar.
// It is not safe for concurrent use; Meter serialises access.
type Buffer struct {
	cfg     Config
	heights []float64
}

func NewBuffer(cfg Config) *Buffer {
	h := make([]float64, cfg.Bars)
	for i := range h {
		h[i] = cfg.Initial
	}
	return &Buffer{cfg: cfg, heights: h}
}

func (b *Buffer) Len() int { return len(b.heights) }

// Tick drops the oldest bar and appends one derived from amplitude.
// A nil jitter source disables jitter.
func (b *Buffer) Tick(amplitude float64, jitter JitterSource) {
	scaled := amplitude*b.cfg.Gain + b.cfg.Base

	n := len(b.heights)
	copy(b.heights, b.heights[1:])
	b.heights[n-1] = scaled

	// A flat signal stays flat; noise on silence reads as signal.
	if amplitude > b.cfg.Epsilon && jitter != nil {
		b.heights[n-1] += jitter() * b.cfg.Jitter
	}

	for i, h := range b.heights {
		b.heights[i] = clamp(h, b.cfg.MinHeight, b.cfg.MaxHeight)
	}
}

// Heights returns a copy, so a renderer never sees a half-shifted frame.
func (b *Buffer) Heights() []float64 {
	out := make([]float64, len(b.heights))
	copy(out, b.heights)
	return out
}

// clamp maps NaN to lo, which plain math.Max/math.Min would propagate.
func clamp(v, lo, hi float64) float64 {
	if !(v >= lo) {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
