package waveform

import (
	"math"
	"sync/atomic"
)

// Level holds the most recent amplitude sample. Store is called from the
// capture callback, Load from the tick goroutine. Only the last value
// stored before a tick is ever seen.
type Level struct {
	bits atomic.Uint64
}

func (l *Level) Store(v float64) {
	l.bits.Store(math.Float64bits(v))
}

func (l *Level) Load() float64 {
	return math.Float64frombits(l.bits.Load())
}

// Sanitize rejects amplitudes that would poison the scale step:
// NaN, ±Inf and negatives all read as silence. Large finite values are
// accepted and left to the clamp.
func Sanitize(v float64) (float64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}
