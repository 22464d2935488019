package waveform

import (
	"math"
	"slices"
	"testing"
)

func testConfig(bars int) Config {
	cfg := DefaultConfig()
	cfg.Bars = bars
	cfg.Initial = cfg.MinHeight
	return cfg
}

func TestNewBufferInitialFill(t *testing.T) {
	cfg := DefaultConfig()
	b := NewBuffer(cfg)
	if b.Len() != 40 {
		t.Fatalf("len = %d, want 40", b.Len())
	}
	for i, h := range b.Heights() {
		if h != 0.1 {
			t.Fatalf("heights[%d] = %v, want 0.1", i, h)
		}
	}
}

func TestTickScenario(t *testing.T) {
	b := NewBuffer(testConfig(4))

	b.Tick(0.2, NoJitter)
	if got, want := b.Heights(), []float64{5, 5, 5, 15}; !slices.Equal(got, want) {
		t.Fatalf("after 0.2: got %v, want %v", got, want)
	}

	// 2.0*50+5 = 105, clamped to 60
	b.Tick(2.0, NoJitter)
	if got, want := b.Heights(), []float64{5, 5, 15, 60}; !slices.Equal(got, want) {
		t.Fatalf("after 2.0: got %v, want %v", got, want)
	}
}

func TestTickShift(t *testing.T) {
	cfg := testConfig(5)
	b := NewBuffer(cfg)
	for _, a := range []float64{0.1, 0.2, 0.3, 0.4, 0.5} {
		b.Tick(a, NoJitter)
	}
	before := b.Heights()

	// a <= Epsilon: no jitter even with a noisy source
	b.Tick(0.005, func() float64 { return 1 })

	after := b.Heights()
	want := append(slices.Clone(before[1:]), clamp(0.005*cfg.Gain+cfg.Base, cfg.MinHeight, cfg.MaxHeight))
	if !slices.Equal(after, want) {
		t.Fatalf("got %v, want %v", after, want)
	}
}

func TestSilenceAppendsBase(t *testing.T) {
	cfg := testConfig(3)
	cfg.MinHeight = 0 // expose the unclamped value
	b := NewBuffer(cfg)

	calls := 0
	b.Tick(0, func() float64 { calls++; return 1 })

	if calls != 0 {
		t.Fatalf("jitter source called %d times on silence", calls)
	}
	if got := b.Heights()[2]; got != cfg.Base {
		t.Fatalf("newest bar = %v, want %v", got, cfg.Base)
	}
}

func TestJitterOnlyTouchesNewestBar(t *testing.T) {
	b := NewBuffer(testConfig(4))
	b.Tick(0.5, NoJitter)
	b.Tick(0.5, NoJitter)
	before := b.Heights()

	b.Tick(0.5, func() float64 { return -1 })
	after := b.Heights()

	if !slices.Equal(after[:3], before[1:]) {
		t.Fatalf("older bars changed: before %v, after %v", before, after)
	}
	// 0.5*50+5 = 30, minus 5 of jitter
	if after[3] != 25 {
		t.Fatalf("newest bar = %v, want 25", after[3])
	}
}

func TestTickBoundsAndLength(t *testing.T) {
	cfg := DefaultConfig()
	b := NewBuffer(cfg)
	inputs := []float64{0, 0.001, 0.5, 1, 3, 100, 0.02, math.NaN(), -4, math.Inf(1), math.Inf(-1)}
	for i := 0; i < 500; i++ {
		b.Tick(inputs[i%len(inputs)], DefaultJitter)
		hs := b.Heights()
		if len(hs) != cfg.Bars {
			t.Fatalf("tick %d: len = %d, want %d", i, len(hs), cfg.Bars)
		}
		for j, h := range hs {
			if h < cfg.MinHeight || h > cfg.MaxHeight || math.IsNaN(h) {
				t.Fatalf("tick %d: heights[%d] = %v out of [%v, %v]", i, j, h, cfg.MinHeight, cfg.MaxHeight)
			}
		}
	}
}

func TestHeightsIsCopy(t *testing.T) {
	b := NewBuffer(testConfig(3))
	hs := b.Heights()
	hs[0] = 999
	if b.Heights()[0] == 999 {
		t.Fatal("Heights exposed internal storage")
	}
}

func TestSingleBar(t *testing.T) {
	b := NewBuffer(testConfig(1))
	b.Tick(0.4, NoJitter)
	if got := b.Heights(); !slices.Equal(got, []float64{25}) {
		t.Fatalf("got %v, want [25]", got)
	}
}

func TestClamp(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{3, 5},
		{5, 5},
		{30, 30},
		{60, 60},
		{61, 60},
		{math.NaN(), 5},
		{math.Inf(1), 60},
		{math.Inf(-1), 5},
	}
	for _, tt := range tests {
		if got := clamp(tt.in, 5, 60); got != tt.want {
			t.Errorf("clamp(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestDefaultJitterRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		if v := DefaultJitter(); v < -1 || v > 1 {
			t.Fatalf("DefaultJitter() = %v outside [-1, 1]", v)
		}
	}
}
