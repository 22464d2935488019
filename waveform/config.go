// Package waveform keeps the rolling bar heights behind the audio-level
// visualisation. Amplitude samples arrive from the capture callback at
// whatever rate the device delivers them; the bars advance on a fixed
// period so the picture scrolls smoothly regardless.
package waveform

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var ErrInvalidConfig = errors.New("waveform: invalid config")

// MinInterval is the fastest tick period accepted. Anything quicker is
// far beyond what a display can show and only burns CPU.
const MinInterval = time.Millisecond

type Config struct {
	Bars      int           // number of bars (N)
	Gain      float64       // amplitude -> height multiplier
	Base      float64       // height added to every sample
	MinHeight float64       // lower clamp
	MaxHeight float64       // upper clamp
	Epsilon   float64       // amplitudes at or below this get no jitter
	Jitter    float64       // half-width of the random term on the newest bar
	Initial   float64       // fill value before the first tick
	Interval  time.Duration // tick period
}

func DefaultConfig() Config {
	return Config{
		Bars:      40,
		Gain:      50.0,
		Base:      5.0,
		MinHeight: 5.0,
		MaxHeight: 60.0,
		Epsilon:   0.01,
		Jitter:    5.0,
		Initial:   0.1,
		Interval:  50 * time.Millisecond,
	}
}

func (c Config) Validate() error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"gain", c.Gain}, {"base", c.Base}, {"min height", c.MinHeight},
		{"max height", c.MaxHeight}, {"epsilon", c.Epsilon}, {"jitter", c.Jitter},
		{"initial", c.Initial},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be finite, got %v", ErrInvalidConfig, f.name, f.v)
		}
	}

	switch {
	case c.Bars < 1:
		return fmt.Errorf("%w: bars must be >= 1, got %d", ErrInvalidConfig, c.Bars)
	case c.MinHeight > c.MaxHeight:
		return fmt.Errorf("%w: min height %.1f above max height %.1f", ErrInvalidConfig, c.MinHeight, c.MaxHeight)
	case c.Interval < MinInterval:
		return fmt.Errorf("%w: interval must be at least %s, got %s", ErrInvalidConfig, MinInterval, c.Interval)
	case c.Gain < 0:
		return fmt.Errorf("%w: negative gain %.2f", ErrInvalidConfig, c.Gain)
	case c.Jitter < 0:
		return fmt.Errorf("%w: negative jitter %.2f", ErrInvalidConfig, c.Jitter)
	}
	return nil
}
