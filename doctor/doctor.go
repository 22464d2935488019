// Package doctor runs the -doctor self checks: can we write logs, hear
// the microphone, see the global hotkey and reach the clipboard.
package doctor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"murmur/audio"
	"murmur/clipboard"
	"murmur/hotkey"
)

// Check is one diagnostic. Run returns a short PASS detail or the reason
// it failed.
type Check struct {
	Name string
	Run  func(ctx context.Context, w io.Writer) (string, error)
}

// Run executes checks in order and returns an exit code (0=all pass, 1=any fail).
func Run(ctx context.Context, w io.Writer, checks []Check) int {
	fmt.Fprintln(w, "murmur doctor - system diagnostics")
	fmt.Fprintln(w, "==================================")

	failed := 0
	for i, c := range checks {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "[%d/%d] %s\n", i+1, len(checks), c.Name)
		if err := ctx.Err(); err != nil {
			fmt.Fprintln(w, "  SKIP: interrupted")
			failed++
			continue
		}
		msg, err := c.Run(ctx, w)
		if err != nil {
			fmt.Fprintf(w, "  FAIL: %v\n", err)
			failed++
			continue
		}
		fmt.Fprintf(w, "  PASS: %s\n", msg)
	}

	fmt.Fprintln(w)
	if failed == 0 {
		fmt.Fprintln(w, "All checks passed!")
		return 0
	}
	fmt.Fprintf(w, "%d of %d checks failed. See details above.\n", failed, len(checks))
	return 1
}

// Default is the full set run by -doctor.
func Default(logDir string, actx audio.Context) []Check {
	return []Check{
		LogDirCheck(logDir),
		MicCheck(actx, 3*time.Second, 0.01),
		HotkeyCheck(hotkey.New(), 10*time.Second),
		ClipboardCheck(),
	}
}

func LogDirCheck(dir string) Check {
	return Check{
		Name: "Log directory",
		Run: func(context.Context, io.Writer) (string, error) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return "", err
			}
			f, err := os.CreateTemp(dir, ".doctor-*")
			if err != nil {
				return "", fmt.Errorf("%s is not writable: %w", dir, err)
			}
			name := f.Name()
			f.Close()
			os.Remove(name)
			return filepath.Clean(dir), nil
		},
	}
}

// MicCheck records for d and fails if the loudest callback never rose
// above floor.
func MicCheck(actx audio.Context, d time.Duration, floor float64) Check {
	return Check{
		Name: "Microphone",
		Run: func(ctx context.Context, w io.Writer) (string, error) {
			devices, err := actx.Devices()
			if err != nil {
				return "", fmt.Errorf("cannot list devices: %w", err)
			}
			if len(devices) == 0 {
				return "", errors.New("no capture devices found")
			}

			capture, err := actx.NewCapture(nil, audio.DefaultCaptureConfig())
			if err != nil {
				return "", fmt.Errorf("cannot open capture device: %w", err)
			}
			defer capture.Close()

			var mu sync.Mutex
			var peak float64
			var callbacks int
			capture.SetCallback(func(data []byte, _ uint32) {
				lvl := audio.RMS(data)
				mu.Lock()
				peak = max(peak, lvl)
				callbacks++
				mu.Unlock()
			})

			fmt.Fprintf(w, "Speak for %s...\n", d)
			if err := capture.Start(); err != nil {
				return "", fmt.Errorf("cannot start capture: %w", err)
			}
			select {
			case <-ctx.Done():
			case <-time.After(d):
			}
			capture.Stop()
			capture.ClearCallback()

			mu.Lock()
			defer mu.Unlock()
			switch {
			case callbacks == 0:
				return "", errors.New("no audio delivered (permission denied?)")
			case peak <= floor:
				return "", fmt.Errorf("only silence from %s (peak %.3f)", capture.DeviceName(), peak)
			}
			return fmt.Sprintf("%s, peak level %.0f%%", capture.DeviceName(), min(peak, 1)*100), nil
		},
	}
}

func HotkeyCheck(hk hotkey.Hotkey, timeout time.Duration) Check {
	return Check{
		Name: "Global hotkey",
		Run: func(ctx context.Context, w io.Writer) (string, error) {
			if err := hk.Register(); err != nil {
				return "", fmt.Errorf("could not register hotkey: %w", err)
			}
			defer hk.Unregister()

			fmt.Fprintln(w, "Press Ctrl+Shift+Space...")
			select {
			case <-hk.Keydown():
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(timeout):
				return "", errors.New("timeout waiting for hotkey")
			}
			// wait for release so the keypress doesn't leak into the shell
			select {
			case <-hk.Keyup():
			case <-time.After(5 * time.Second):
			}
			resetTerminal()
			return "hotkey detected", nil
		},
	}
}

func ClipboardCheck() Check {
	return Check{
		Name: "Clipboard",
		Run: func(context.Context, io.Writer) (string, error) {
			if clipboard.Unsupported() {
				return "", errors.New("no clipboard backend (install xclip, xsel or wl-clipboard)")
			}
			if _, err := clipboard.Read(); err != nil {
				return "", err
			}
			return "clipboard reachable", nil
		},
	}
}
