// Package gui is the desktop front end. It shows the same waveform and
// transcript as the terminal UI in a fyne window shaped by the platform
// chrome. The window itself needs -tags gui; the drawing helpers do not.
package gui

import (
	"fmt"
	"image/color"
	"math"
	"strings"
	"time"

	"murmur/chrome"
	"murmur/transcript"
)

// Share of each bar slot left as a gap.
const barGap = 0.3

// barRect is one bar's placement inside the widget.
type barRect struct{ X, Y, W, H float32 }

// layoutBars spreads the bars evenly across width, each centred
// vertically and scaled so maxHeight fills the widget.
func layoutBars(heights []float64, maxHeight float64, width, height float32) []barRect {
	n := len(heights)
	if n == 0 || maxHeight <= 0 || width <= 0 || height <= 0 {
		return nil
	}
	slot := width / float32(n)
	w := slot * (1 - barGap)
	out := make([]barRect, n)
	for i, h := range heights {
		bh := float32(barFraction(h, maxHeight)) * height
		out[i] = barRect{
			X: float32(i)*slot + (slot-w)/2,
			Y: (height - bh) / 2,
			W: w,
			H: bh,
		}
	}
	return out
}

func barFraction(h, maxHeight float64) float64 {
	if math.IsNaN(h) || maxHeight <= 0 {
		return 0
	}
	return math.Max(0, math.Min(h/maxHeight, 1))
}

// Quiet to loud while listening (ANSI 226 → 196).
var (
	barColorsActive = []color.Color{
		color.RGBA{255, 255, 0, 255},
		color.RGBA{255, 215, 0, 255},
		color.RGBA{255, 175, 0, 255},
		color.RGBA{255, 135, 0, 255},
		color.RGBA{255, 95, 0, 255},
		color.RGBA{255, 0, 0, 255},
	}
	barColorIdle = color.RGBA{88, 88, 88, 255}
)

func barColor(frac float64, active bool) color.Color {
	if !active {
		return barColorIdle
	}
	i := int(frac * float64(len(barColorsActive)))
	i = max(0, min(i, len(barColorsActive)-1))
	return barColorsActive[i]
}

func statusText(listening bool, level float64, extra string) string {
	s := "○ idle"
	if listening {
		s = fmt.Sprintf("● listening %3.0f%%", math.Min(math.Max(level, 0), 1)*100)
	}
	if extra != "" {
		s += "   " + extra
	}
	return s
}

var senderLabels = map[transcript.Sender]string{
	transcript.SenderUser:      "You",
	transcript.SenderAssistant: "Assistant",
}

// transcriptText renders the conversation as plain text for a wrapping
// label: the latest timestamp once at the top, then one block per message.
func transcriptText(msgs []transcript.Message, now time.Time) string {
	if len(msgs) == 0 {
		return "No conversation yet"
	}
	var b strings.Builder
	if latest, ok := transcript.Latest(msgs); ok {
		b.WriteString(transcript.FormatHeader(latest, now))
		b.WriteString("\n\n")
	}
	for i, m := range msgs {
		b.WriteString(senderLabels[m.Sender])
		b.WriteString("\n")
		b.WriteString(m.Text)
		if i < len(msgs)-1 {
			b.WriteString("\n\n")
		}
	}
	return b.String()
}

// canvasShortcuts lists the items that need a ⌘/ctrl shortcut registered
// on the window canvas. Quit is left out: fyne binds it for IsQuit items.
func canvasShortcuts(items []chrome.MenuItem) []chrome.MenuItem {
	var out []chrome.MenuItem
	for _, it := range items {
		if it.WindowKey != "" && it.Action != chrome.ActionQuit {
			out = append(out, it)
		}
	}
	return out
}
