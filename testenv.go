package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"murmur/chrome"
	"murmur/log"
	"murmur/transcript"
	"murmur/waveform"
)

// headlessView replaces the UI in -test mode. Commands arrive one per
// line on stdin; answers go to stdout:
//
//	LISTEN / STOP        toggle capture
//	WAIT_FRAMES n        block until n more frames arrived
//	WAIT_TRANSCRIPT      block until a transcript was delivered
//	FRAME                print the latest heights
//	COPY                 copy the last message
//	SLEEP ms
//	QUIT
type headlessView struct {
	in  io.Reader
	out io.Writer
	ctl controls

	mu          sync.Mutex
	cond        *sync.Cond
	frames      int
	heights     []float64
	transcripts int
	messages    []transcript.Message
	quit        bool

	done     chan struct{}
	quitOnce sync.Once
}

func newHeadless(cfg waveform.Config, _ chrome.WindowChrome, ctl controls) view {
	return newHeadlessView(os.Stdin, os.Stdout, ctl)
}

func newHeadlessView(in io.Reader, out io.Writer, ctl controls) *headlessView {
	v := &headlessView{in: in, out: out, ctl: ctl, done: make(chan struct{})}
	v.cond = sync.NewCond(&v.mu)
	return v
}

func (v *headlessView) Run() error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(v.in)
		for scanner.Scan() {
			lines <- strings.TrimSpace(scanner.Text())
		}
	}()

	for {
		select {
		case <-v.done:
			return nil
		case cmd, ok := <-lines:
			if !ok || cmd == "QUIT" {
				return nil
			}
			if err := v.exec(cmd); err != nil {
				return err
			}
		}
	}
}

func (v *headlessView) exec(cmd string) error {
	name, arg, _ := strings.Cut(cmd, " ")
	switch name {
	case "LISTEN", "STOP":
		if err := v.ctl.SetListening(name == "LISTEN"); err != nil {
			fmt.Fprintf(v.out, "error %v\n", err)
		}
	case "WAIT_FRAMES":
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("WAIT_FRAMES: %w", err)
		}
		v.mu.Lock()
		target := v.frames + n
		for v.frames < target && !v.quit {
			v.cond.Wait()
		}
		v.mu.Unlock()
	case "WAIT_TRANSCRIPT":
		v.mu.Lock()
		for v.transcripts == 0 && !v.quit {
			v.cond.Wait()
		}
		v.mu.Unlock()
	case "FRAME":
		v.mu.Lock()
		parts := make([]string, len(v.heights))
		for i, h := range v.heights {
			parts[i] = strconv.FormatFloat(h, 'f', 2, 64)
		}
		v.mu.Unlock()
		fmt.Fprintf(v.out, "frame %s\n", strings.Join(parts, " "))
	case "COPY":
		v.mu.Lock()
		text, ok := lastMessageText(v.messages)
		v.mu.Unlock()
		if !ok {
			fmt.Fprintln(v.out, "nothing to copy")
			return nil
		}
		if err := v.ctl.Copy(text); err != nil {
			fmt.Fprintf(v.out, "error %v\n", err)
		}
	case "SLEEP":
		if ms, err := strconv.Atoi(arg); err == nil {
			time.Sleep(time.Duration(ms) * time.Millisecond)
		}
	case "":
	default:
		log.Warnf("headless: unknown command %q", cmd)
	}
	return nil
}

func (v *headlessView) Quit() {
	v.quitOnce.Do(func() {
		v.mu.Lock()
		v.quit = true
		v.cond.Broadcast()
		v.mu.Unlock()
		close(v.done)
	})
}

func (v *headlessView) Waveform(heights []float64) {
	v.mu.Lock()
	v.heights = heights
	v.frames++
	v.cond.Broadcast()
	v.mu.Unlock()
}

func (v *headlessView) Transcript(msgs []transcript.Message) {
	v.mu.Lock()
	v.messages = msgs
	v.transcripts++
	v.cond.Broadcast()
	v.mu.Unlock()
}

func (v *headlessView) AudioLevel(float64) {}

func (v *headlessView) Listening(bool) {}

func (v *headlessView) DeviceLine(text string) {
	log.Info("device_line: " + text)
}

func (v *headlessView) Status(text string) {
	log.Info("status: " + text)
}
