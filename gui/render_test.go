package gui

import (
	"bytes"
	"image/png"
	"math"
	"strings"
	"testing"
	"time"

	"murmur/chrome"
	"murmur/transcript"
)

func TestLayoutBars(t *testing.T) {
	rects := layoutBars([]float64{60, 30, 0}, 60, 300, 100)
	if len(rects) != 3 {
		t.Fatalf("got %d rects", len(rects))
	}
	if rects[0].H != 100 || rects[0].Y != 0 {
		t.Errorf("full bar = %+v", rects[0])
	}
	if rects[1].H != 50 || rects[1].Y != 25 {
		t.Errorf("half bar = %+v", rects[1])
	}
	if rects[2].H != 0 {
		t.Errorf("empty bar = %+v", rects[2])
	}
	for i, r := range rects {
		if r.X < float32(i)*100 || r.X+r.W > float32(i+1)*100 {
			t.Errorf("bar %d leaves its slot: %+v", i, r)
		}
	}
}

func TestLayoutBarsDegenerate(t *testing.T) {
	if layoutBars(nil, 60, 100, 100) != nil {
		t.Error("no bars should give no rects")
	}
	if layoutBars([]float64{1}, 0, 100, 100) != nil {
		t.Error("zero max height should give no rects")
	}
	if layoutBars([]float64{1}, 60, 0, 100) != nil {
		t.Error("zero width should give no rects")
	}
}

func TestBarFraction(t *testing.T) {
	tests := []struct {
		h, max, want float64
	}{
		{30, 60, 0.5},
		{90, 60, 1},
		{-5, 60, 0},
		{math.NaN(), 60, 0},
		{10, 0, 0},
	}
	for _, tt := range tests {
		if got := barFraction(tt.h, tt.max); got != tt.want {
			t.Errorf("barFraction(%v, %v) = %v, want %v", tt.h, tt.max, got, tt.want)
		}
	}
}

func TestBarColor(t *testing.T) {
	if barColor(1, false) != barColorIdle {
		t.Error("inactive bars should be grey")
	}
	if barColor(0, true) != barColorsActive[0] {
		t.Error("quiet bar should use the first colour")
	}
	if barColor(1, true) != barColorsActive[len(barColorsActive)-1] {
		t.Error("full bar should use the last colour")
	}
}

func TestStatusText(t *testing.T) {
	if got := statusText(false, 0.5, ""); got != "○ idle" {
		t.Errorf("idle = %q", got)
	}
	if got := statusText(true, 0.42, "✓ copied"); !strings.Contains(got, "42%") || !strings.Contains(got, "copied") {
		t.Errorf("listening = %q", got)
	}
	if got := statusText(true, 3, ""); !strings.Contains(got, "100%") {
		t.Errorf("over-range level = %q", got)
	}
}

func TestTranscriptText(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	msgs := []transcript.Message{
		{Text: "what's the weather", Sender: transcript.SenderUser, Timestamp: now.Add(-2 * time.Minute)},
		{Text: "Sunny, 21 degrees.", Sender: transcript.SenderAssistant, Timestamp: now.Add(-time.Minute)},
	}
	got := transcriptText(msgs, now)
	want := "Today, 11:59\n\nYou\nwhat's the weather\n\nAssistant\nSunny, 21 degrees."
	if got != want {
		t.Errorf("transcriptText =\n%q\nwant\n%q", got, want)
	}
	if transcriptText(nil, now) != "No conversation yet" {
		t.Error("empty conversation placeholder missing")
	}
}

func TestIconPNG(t *testing.T) {
	img, err := png.Decode(bytes.NewReader(iconPNG()))
	if err != nil {
		t.Fatal(err)
	}
	b := img.Bounds()
	if b.Dx() != iconSize || b.Dy() != iconSize {
		t.Fatalf("icon is %dx%d", b.Dx(), b.Dy())
	}
	// centre bar reaches the middle row, corners stay transparent
	if _, _, _, a := img.At(iconSize/2, iconSize/2).RGBA(); a == 0 {
		t.Error("centre pixel is transparent")
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Error("corner pixel is painted")
	}
}

func TestCanvasShortcuts(t *testing.T) {
	items := []chrome.MenuItem{
		{Label: "Listen", WindowKey: "L", Key: " ", Action: chrome.ActionListen},
		{Label: "Copy", WindowKey: "C", Key: "y", Action: chrome.ActionCopy},
		{Label: "Clear", Key: "c", Action: chrome.ActionClear},
		{Label: "Quit", WindowKey: "Q", Key: "q", Action: chrome.ActionQuit},
	}
	got := canvasShortcuts(items)
	if len(got) != 2 || got[0].Action != chrome.ActionListen || got[1].Action != chrome.ActionCopy {
		t.Fatalf("canvasShortcuts = %+v", got)
	}
}
