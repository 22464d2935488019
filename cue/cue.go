// Package cue plays the short ticks that confirm listening started or
// stopped, so a global hotkey toggle is audible from any window.
package cue

import (
	"encoding/binary"
	"math"
)

const sampleRate = 44100

type tone struct {
	freq   float64
	secs   float64
	volume float64
	decay  float64
}

var (
	// snappy high tick
	startTone = tone{freq: 1200, secs: 0.03, volume: 0.5, decay: 60}
	// slightly lower and longer
	stopTone = tone{freq: 900, secs: 0.05, volume: 0.5, decay: 40}
)

// Player plays the listen cues. Implementations never block the caller.
type Player interface {
	Start()
	Stop()
	Close()
}

// Nop is a silent Player.
type Nop struct{}

func (Nop) Start() {}
func (Nop) Stop()  {}
func (Nop) Close() {}

// New opens the platform's playback backend. It falls back to Nop when
// disabled or when no output device is available.
func New(enabled bool) Player {
	if !enabled {
		return Nop{}
	}
	p, err := newPlayer()
	if err != nil {
		return Nop{}
	}
	return p
}

// samples renders t as 16-bit PCM with an exponential decay envelope,
// repeating each sample across channels.
func (t tone) samples(channels int) []int16 {
	n := int(sampleRate * t.secs)
	out := make([]int16, n*channels)
	for i := 0; i < n; i++ {
		at := float64(i) / sampleRate
		env := math.Exp(-at * t.decay)
		s := int16(math.Sin(2*math.Pi*t.freq*at) * 32767 * t.volume * env)
		for c := 0; c < channels; c++ {
			out[i*channels+c] = s
		}
	}
	return out
}

func (t tone) bytes() []byte {
	s := t.samples(1)
	out := make([]byte, len(s)*2)
	for i, v := range s {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}
	return out
}
