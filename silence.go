package main

import "time"

const (
	silenceWarnAfter = 8 * time.Second
	speechMinRatio   = 0.10
	speechClearRatio = 0.25 // higher threshold to clear warning (hysteresis)
)

type SilenceEvent int

const (
	SilenceNone      SilenceEvent = iota
	SilenceWarn                   // no voice detected
	SilenceWarnClear              // speech resumed after warning
	SilenceRepeat                 // still nothing, remind again
)

// silenceMonitor looks at one amplitude per waveform frame while
// listening and flags a microphone that is delivering nothing, usually a
// muted or wrong input.
type silenceMonitor struct {
	window []bool // ring of the last warnAt frames
	speech int    // true entries in window
	ticks  int
	warned bool
	last   int // tick of the last warning
}

func newSilenceMonitor(interval time.Duration) *silenceMonitor {
	n := max(int(silenceWarnAfter/interval), 1)
	return &silenceMonitor{window: make([]bool, n)}
}

func (m *silenceMonitor) Reset() {
	clear(m.window)
	m.speech = 0
	m.ticks = 0
	m.warned = false
	m.last = 0
}

func (m *silenceMonitor) ratio() float64 {
	n := min(m.ticks, len(m.window))
	if n == 0 {
		return 1.0
	}
	return float64(m.speech) / float64(n)
}

func (m *silenceMonitor) Tick(hasSpeech bool) SilenceEvent {
	slot := m.ticks % len(m.window)
	if m.window[slot] {
		m.speech--
	}
	if hasSpeech {
		m.speech++
	}
	m.window[slot] = hasSpeech
	m.ticks++

	full := m.ticks >= len(m.window)
	r := m.ratio()

	switch {
	case !m.warned && full && r < speechMinRatio:
		m.warned = true
		m.last = m.ticks
		return SilenceWarn
	case m.warned && r >= speechClearRatio:
		m.warned = false
		return SilenceWarnClear
	case m.warned && m.ticks-m.last >= len(m.window):
		m.last = m.ticks
		return SilenceRepeat
	}
	return SilenceNone
}
