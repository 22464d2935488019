package audio

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func writeWAV(t *testing.T, channels int, samples []int16) string {
	t.Helper()
	const headerSize = 44
	dataSize := len(samples) * 2

	buf := make([]byte, headerSize+dataSize)
	copy(buf[0:4], "RIFF")
	binary.LittleEndian.PutUint32(buf[4:8], uint32(headerSize-8+dataSize))
	copy(buf[8:12], "WAVE")
	copy(buf[12:16], "fmt ")
	binary.LittleEndian.PutUint32(buf[16:20], 16)
	binary.LittleEndian.PutUint16(buf[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(buf[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(buf[24:28], SampleRate)
	binary.LittleEndian.PutUint32(buf[28:32], uint32(SampleRate*2*channels))
	binary.LittleEndian.PutUint16(buf[32:34], uint16(2*channels))
	binary.LittleEndian.PutUint16(buf[34:36], 16)
	copy(buf[36:40], "data")
	binary.LittleEndian.PutUint32(buf[40:44], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[headerSize+i*2:], uint16(s))
	}

	path := filepath.Join(t.TempDir(), "clip.wav")
	if err := os.WriteFile(path, buf, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

type collector struct {
	mu     sync.Mutex
	data   []byte
	frames uint32
}

func (c *collector) cb(data []byte, frames uint32) {
	c.mu.Lock()
	c.data = append(c.data, data...)
	c.frames += frames
	c.mu.Unlock()
}

func (c *collector) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.data)
}

func TestFakeContextDecodesWAV(t *testing.T) {
	samples := make([]int16, 3000)
	for i := range samples {
		samples[i] = int16(8000 * math.Sin(float64(i)/10))
	}
	ctx, err := NewFakeContext(writeWAV(t, 1, samples), false)
	if err != nil {
		t.Fatal(err)
	}
	if len(ctx.pcm) != len(samples)*2 {
		t.Fatalf("pcm = %d bytes, want %d", len(ctx.pcm), len(samples)*2)
	}
	for i, s := range samples {
		if got := int16(binary.LittleEndian.Uint16(ctx.pcm[i*2:])); got != s {
			t.Fatalf("sample %d = %d, want %d", i, got, s)
		}
	}
}

func TestFakeContextMixesStereo(t *testing.T) {
	// L=1000, R=3000 -> mono 2000
	ctx, err := NewFakeContext(writeWAV(t, 2, []int16{1000, 3000, -1000, -3000}), false)
	if err != nil {
		t.Fatal(err)
	}
	if got := RMS(ctx.pcm); math.Abs(got-2000.0/32768) > 1e-9 {
		t.Fatalf("RMS = %v, want %v", got, 2000.0/32768)
	}
}

func TestFakeContextRejectsNonWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.wav")
	if err := os.WriteFile(path, []byte("not a wav file at all, definitely"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFakeContext(path, false); err == nil {
		t.Fatal("expected error")
	}
}

func TestFakeCaptureBatch(t *testing.T) {
	pcm := Tone(300, 200*time.Millisecond, 0.3)
	capture, err := NewPCMContext(pcm, false).NewCapture(nil, DefaultCaptureConfig())
	if err != nil {
		t.Fatal(err)
	}
	var c collector
	capture.SetCallback(c.cb)
	if err := capture.Start(); err != nil {
		t.Fatal(err)
	}
	<-capture.(*FakeCapture).AudioDone()
	capture.Stop()

	if c.len() != len(pcm) {
		t.Fatalf("delivered %d bytes, want %d", c.len(), len(pcm))
	}
	if c.frames != uint32(len(pcm)/2) {
		t.Fatalf("frames = %d, want %d", c.frames, len(pcm)/2)
	}
}

func TestFakeCaptureRealtimeThenSilence(t *testing.T) {
	pcm := Tone(300, 100*time.Millisecond, 0.3)
	capture, err := NewPCMContext(pcm, true).NewCapture(nil, DefaultCaptureConfig())
	if err != nil {
		t.Fatal(err)
	}
	var c collector
	capture.SetCallback(c.cb)
	if err := capture.Start(); err != nil {
		t.Fatal(err)
	}

	select {
	case <-capture.(*FakeCapture).AudioDone():
	case <-time.After(2 * time.Second):
		t.Fatal("clip not delivered within 2s")
	}
	deadline := time.Now().Add(time.Second)
	for c.len() <= len(pcm) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	capture.Stop()
	capture.Stop() // idempotent

	c.mu.Lock()
	tail := c.data[len(pcm):]
	c.mu.Unlock()
	if len(tail) == 0 || RMS(tail) != 0 {
		t.Fatalf("expected silence after clip, got %d bytes rms %v", len(tail), RMS(tail))
	}
}

func TestFakeCaptureNoCallback(t *testing.T) {
	capture, err := NewToneContext().NewCapture(nil, DefaultCaptureConfig())
	if err != nil {
		t.Fatal(err)
	}
	if err := capture.Start(); err != nil {
		t.Fatal(err)
	}
	time.Sleep(100 * time.Millisecond)
	capture.Close()
}
