package main

import (
	"testing"
	"time"

	"murmur/waveform"
)

// 100ms frames: the warning needs 80 of them.
func testMonitor() *silenceMonitor {
	return newSilenceMonitor(100 * time.Millisecond)
}

func feedN(m *silenceMonitor, speech bool, n int) SilenceEvent {
	var last SilenceEvent
	for i := 0; i < n; i++ {
		last = m.Tick(speech)
	}
	return last
}

func TestSilenceWarnAfter8s(t *testing.T) {
	m := testMonitor()
	for i := 0; i < 79; i++ {
		if ev := m.Tick(false); ev != SilenceNone {
			t.Fatalf("unexpected event at tick %d: %d", i, ev)
		}
	}
	if ev := m.Tick(false); ev != SilenceWarn {
		t.Fatalf("expected SilenceWarn at tick 80, got %d", ev)
	}
}

func TestSilenceWarnClearsOnSpeech(t *testing.T) {
	m := testMonitor()
	feedN(m, false, 80)

	// 25% of the 80-frame window must be speech
	for i := 0; i < 19; i++ {
		if ev := m.Tick(true); ev != SilenceNone {
			t.Fatalf("cleared too early at speech tick %d", i)
		}
	}
	if ev := m.Tick(true); ev != SilenceWarnClear {
		t.Fatalf("expected SilenceWarnClear, got %d", ev)
	}
}

func TestSilenceRepeat(t *testing.T) {
	m := testMonitor()
	feedN(m, false, 80)
	for i := 0; i < 79; i++ {
		if ev := m.Tick(false); ev != SilenceNone {
			t.Fatalf("unexpected event at tick %d: %d", i, ev)
		}
	}
	if ev := m.Tick(false); ev != SilenceRepeat {
		t.Fatalf("expected SilenceRepeat, got %d", ev)
	}
}

func TestSilenceSteadySpeech(t *testing.T) {
	m := testMonitor()
	if ev := feedN(m, true, 500); ev != SilenceNone {
		t.Fatalf("speech produced event %d", ev)
	}
}

func TestSilenceSparseSpeechWarns(t *testing.T) {
	m := testMonitor()
	// one frame in twenty is below the 10% floor
	var warned bool
	for i := 0; i < 200; i++ {
		if m.Tick(i%20 == 0) == SilenceWarn {
			warned = true
		}
	}
	if !warned {
		t.Fatal("expected warning for 5% speech")
	}
}

func TestSilenceReset(t *testing.T) {
	m := testMonitor()
	feedN(m, false, 79)
	m.Reset()
	if ev := feedN(m, false, 79); ev != SilenceNone {
		t.Fatalf("reset monitor warned early: %d", ev)
	}
}

func TestSilenceTinyInterval(t *testing.T) {
	m := newSilenceMonitor(time.Minute)
	if len(m.window) != 1 {
		t.Fatalf("window = %d, want 1", len(m.window))
	}
	if ev := m.Tick(false); ev != SilenceWarn {
		t.Fatalf("expected immediate warning, got %d", ev)
	}
}

func TestSilenceWindowAtFastestInterval(t *testing.T) {
	m := newSilenceMonitor(waveform.MinInterval)
	if len(m.window) != 8000 {
		t.Fatalf("window = %d, want 8000", len(m.window))
	}
}

func TestSilenceSpeechCountTracksWindow(t *testing.T) {
	m := newSilenceMonitor(time.Second) // window of 8
	pattern := []bool{true, false, false, true, true, false, true, false, false, false, true}
	for round := 0; round < 5; round++ {
		for _, s := range pattern {
			m.Tick(s)
			want := 0
			for _, w := range m.window {
				if w {
					want++
				}
			}
			if m.speech != want {
				t.Fatalf("speech = %d, want %d after %d ticks", m.speech, want, m.ticks)
			}
		}
	}
	m.Reset()
	if m.speech != 0 {
		t.Fatalf("speech after reset = %d", m.speech)
	}
}
