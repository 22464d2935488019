package hotkey

import (
	"context"
	"sync"
	"testing"
	"time"
)

type listenState struct {
	mu    sync.Mutex
	on    bool
	calls []bool
}

func (s *listenState) listening() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.on
}

func (s *listenState) set(on bool) {
	s.mu.Lock()
	s.on = on
	s.calls = append(s.calls, on)
	s.mu.Unlock()
}

func (s *listenState) snapshot() (bool, []bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.on, append([]bool(nil), s.calls...)
}

const testLongPress = 50 * time.Millisecond

func startWatch(t *testing.T, initial bool) (*FakeHotkey, *listenState) {
	t.Helper()
	hk := NewFake()
	st := &listenState{on: initial}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Watch(ctx, hk, testLongPress, st.listening, st.set)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hk, st
}

// settle lets Watch finish handling the last event; the fake's channels
// are unbuffered so the event was taken, but set may still be running.
func settle() { time.Sleep(5 * time.Millisecond) }

func TestTapToggles(t *testing.T) {
	hk, st := startWatch(t, false)

	hk.Press()
	hk.Release()
	settle()
	if on, _ := st.snapshot(); !on {
		t.Fatal("tap should start listening")
	}

	hk.Press()
	hk.Release()
	settle()
	on, calls := st.snapshot()
	if on {
		t.Fatal("second tap should stop listening")
	}
	if len(calls) != 2 {
		t.Fatalf("calls = %v", calls)
	}
}

func TestHoldToTalk(t *testing.T) {
	hk, st := startWatch(t, false)

	hk.Press()
	settle()
	if on, _ := st.snapshot(); !on {
		t.Fatal("press should start listening immediately")
	}
	time.Sleep(2 * testLongPress)
	hk.Release()
	settle()
	if on, _ := st.snapshot(); on {
		t.Fatal("release after a hold should stop listening")
	}
}

func TestTapWhileListening(t *testing.T) {
	// listening was started elsewhere, e.g. from the UI
	hk, st := startWatch(t, true)

	hk.Press()
	settle()
	if on, _ := st.snapshot(); !on {
		t.Fatal("press alone should not stop listening")
	}
	hk.Release()
	settle()
	on, calls := st.snapshot()
	if on || len(calls) != 1 {
		t.Fatalf("on=%v calls=%v", on, calls)
	}
}

func TestStrayKeyupIgnored(t *testing.T) {
	hk, st := startWatch(t, false)
	hk.Release()
	settle()
	if _, calls := st.snapshot(); len(calls) != 0 {
		t.Fatalf("calls = %v", calls)
	}
}

func TestWatchStops(t *testing.T) {
	hk := NewFake()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		Watch(ctx, hk, testLongPress, func() bool { return false }, func(bool) {})
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}
