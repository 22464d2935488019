// Package hotkey drives listening from a global key chord
// (Ctrl+Shift+Space) that works while another window has focus.
package hotkey

import (
	"context"
	"time"
)

type Hotkey interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
}

const DefaultLongPress = 350 * time.Millisecond

// Watch turns chord presses into listening changes until ctx is done.
// A tap toggles. Holding the chord for longPress or more while idle
// listens only until release, like push-to-talk.
func Watch(ctx context.Context, hk Hotkey, longPress time.Duration, listening func() bool, set func(on bool)) {
	var (
		pressed   time.Time
		startedOn bool // this press turned listening on
		down      bool
	)
	for {
		select {
		case <-ctx.Done():
			return
		case <-hk.Keydown():
			if down {
				continue
			}
			down = true
			pressed = time.Now()
			startedOn = !listening()
			if startedOn {
				set(true)
			}
		case <-hk.Keyup():
			if !down {
				continue
			}
			down = false
			switch {
			case !startedOn:
				set(false)
			case time.Since(pressed) >= longPress:
				set(false)
			}
		}
	}
}
