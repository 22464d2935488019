package audio

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	fakeFrameSize     = 1024
	fakeBytesPerFrame = 2 // 16-bit mono
)

// FakeContext replays PCM instead of opening a device. Used by -fake and
// by tests.
type FakeContext struct {
	pcm      []byte
	realtime bool
	loop     bool
}

// NewFakeContext decodes a WAV file and converts it to 16-bit mono.
func NewFakeContext(wavPath string, realtime bool) (*FakeContext, error) {
	f, err := os.Open(wavPath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%s: not a valid WAV file", wavPath)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", wavPath, err)
	}
	return &FakeContext{pcm: toPCM16Mono(buf), realtime: realtime}, nil
}

// NewPCMContext replays raw little-endian 16-bit mono PCM.
func NewPCMContext(pcm []byte, realtime bool) *FakeContext {
	return &FakeContext{pcm: pcm, realtime: realtime}
}

// NewToneContext loops a synthetic speech-like signal forever.
func NewToneContext() *FakeContext {
	return &FakeContext{pcm: Syllables(4 * time.Second), realtime: true, loop: true}
}

func toPCM16Mono(buf *goaudio.IntBuffer) []byte {
	chans := 1
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		chans = buf.Format.NumChannels
	}
	shift := buf.SourceBitDepth - 16

	frames := len(buf.Data) / chans
	out := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		var sum int
		for c := 0; c < chans; c++ {
			sum += buf.Data[i*chans+c]
		}
		v := sum / chans
		switch {
		case shift > 0:
			v >>= shift
		case shift < 0:
			v <<= -shift
		}
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(v)))
	}
	return out
}

// Tone returns d of a sine at freq Hz with peak amplitude amp in [0, 1].
func Tone(freq float64, d time.Duration, amp float64) []byte {
	n := int(d.Seconds() * SampleRate)
	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		s := amp * math.Sin(2*math.Pi*freq*float64(i)/SampleRate)
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s*32767)))
	}
	return out
}

// Syllables is a 180 Hz carrier gated into roughly 4 bursts per second
// with pauses between phrases, which is enough to make the meter move
// the way it does for speech.
func Syllables(d time.Duration) []byte {
	n := int(d.Seconds() * SampleRate)
	out := make([]byte, n*2)
	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		env := math.Max(0, math.Sin(2*math.Pi*4*t))
		if math.Mod(t, 2) > 1.4 {
			env = 0
		}
		s := 0.6 * env * math.Sin(2*math.Pi*180*t)
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s*32767)))
	}
	return out
}

func (f *FakeContext) Devices() ([]DeviceInfo, error) {
	return []DeviceInfo{{ID: "fake", Name: "fake"}}, nil
}

func (f *FakeContext) Close() {}

func (f *FakeContext) NewCapture(_ *DeviceInfo, _ CaptureConfig) (CaptureDevice, error) {
	return &FakeCapture{pcm: f.pcm, realtime: f.realtime, loop: f.loop, audioDone: make(chan struct{})}, nil
}

type FakeCapture struct {
	pcm      []byte
	realtime bool
	loop     bool

	mu        sync.Mutex
	cb        DataCallback
	stopCh    chan struct{}
	feedDone  chan struct{}
	audioDone chan struct{}
}

// AudioDone is closed once the whole clip has been delivered.
func (f *FakeCapture) AudioDone() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.audioDone
}

func (f *FakeCapture) SetCallback(cb DataCallback) {
	f.mu.Lock()
	f.cb = cb
	f.mu.Unlock()
}

func (f *FakeCapture) ClearCallback() {
	f.mu.Lock()
	f.cb = nil
	f.mu.Unlock()
}

func (f *FakeCapture) DeviceName() string { return "fake" }

func (f *FakeCapture) callback() DataCallback {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cb
}

func (f *FakeCapture) feedChunk(cb DataCallback, pos, chunkBytes int) int {
	end := min(pos+chunkBytes, len(f.pcm))
	chunk := make([]byte, end-pos)
	copy(chunk, f.pcm[pos:end])
	cb(chunk, uint32(len(chunk)/fakeBytesPerFrame))
	return end
}

func (f *FakeCapture) Start() error {
	f.mu.Lock()
	if f.stopCh != nil {
		f.mu.Unlock()
		return nil
	}
	stopCh := make(chan struct{})
	feedDone := make(chan struct{})
	audioDone := f.audioDone
	f.stopCh, f.feedDone = stopCh, feedDone
	f.mu.Unlock()

	chunkBytes := fakeFrameSize * fakeBytesPerFrame

	if !f.realtime {
		// Deliver everything synchronously, then idle.
		if cb := f.callback(); cb != nil {
			for pos := 0; pos < len(f.pcm); {
				pos = f.feedChunk(cb, pos, chunkBytes)
			}
		}
		close(audioDone)
		go func() {
			defer close(feedDone)
			<-stopCh
		}()
		return nil
	}

	interval := time.Duration(fakeFrameSize) * time.Second / SampleRate
	go func() {
		defer close(feedDone)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		pos := 0
		finished := false
		silence := make([]byte, chunkBytes)
		for {
			select {
			case <-stopCh:
				return
			case <-ticker.C:
			}

			cb := f.callback()
			if cb == nil {
				continue
			}
			switch {
			case pos < len(f.pcm):
				pos = f.feedChunk(cb, pos, chunkBytes)
			case f.loop && len(f.pcm) > 0:
				pos = f.feedChunk(cb, 0, chunkBytes)
			default:
				if !finished {
					finished = true
					close(audioDone)
				}
				cb(silence, fakeFrameSize)
			}
		}
	}()
	return nil
}

func (f *FakeCapture) Stop() {
	f.mu.Lock()
	stopCh, feedDone := f.stopCh, f.feedDone
	f.stopCh, f.feedDone = nil, nil
	f.mu.Unlock()
	if stopCh == nil {
		return
	}
	close(stopCh)
	<-feedDone

	f.mu.Lock()
	select {
	case <-f.audioDone:
		f.audioDone = make(chan struct{}) // reset for replay
	default:
	}
	f.mu.Unlock()
}

func (f *FakeCapture) Close() { f.Stop() }
