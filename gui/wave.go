//go:build gui

package gui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

// WaveWidget draws the rolling bars. All state is touched on the fyne
// main goroutine only; App funnels updates through fyne.Do.
type WaveWidget struct {
	widget.BaseWidget
	heights   []float64
	maxHeight float64
	active    bool
}

func NewWaveWidget(bars int, initial, maxHeight float64) *WaveWidget {
	heights := make([]float64, bars)
	for i := range heights {
		heights[i] = initial
	}
	w := &WaveWidget{heights: heights, maxHeight: maxHeight}
	w.ExtendBaseWidget(w)
	return w
}

// SetHeights takes one frame. Frames of the wrong length are ignored.
func (w *WaveWidget) SetHeights(h []float64) {
	if len(h) != len(w.heights) {
		return
	}
	copy(w.heights, h)
}

func (w *WaveWidget) SetActive(on bool) {
	w.active = on
}

func (w *WaveWidget) MinSize() fyne.Size {
	return fyne.NewSize(float32(len(w.heights)*6), float32(w.maxHeight*1.5))
}

func (w *WaveWidget) CreateRenderer() fyne.WidgetRenderer {
	r := &waveRenderer{wave: w}
	r.rects = make([]*canvas.Rectangle, len(w.heights))
	for i := range r.rects {
		rect := canvas.NewRectangle(barColorIdle)
		rect.CornerRadius = 2
		r.rects[i] = rect
	}
	return r
}

type waveRenderer struct {
	wave  *WaveWidget
	rects []*canvas.Rectangle
	size  fyne.Size
}

func (r *waveRenderer) Layout(size fyne.Size) {
	r.size = size
	r.place()
}

func (r *waveRenderer) place() {
	for i, b := range layoutBars(r.wave.heights, r.wave.maxHeight, r.size.Width, r.size.Height) {
		r.rects[i].Move(fyne.NewPos(b.X, b.Y))
		r.rects[i].Resize(fyne.NewSize(b.W, b.H))
	}
}

func (r *waveRenderer) MinSize() fyne.Size {
	return r.wave.MinSize()
}

func (r *waveRenderer) Refresh() {
	r.place()
	for i, h := range r.wave.heights {
		r.rects[i].FillColor = barColor(barFraction(h, r.wave.maxHeight), r.wave.active)
		r.rects[i].Refresh()
	}
}

func (r *waveRenderer) Objects() []fyne.CanvasObject {
	objs := make([]fyne.CanvasObject, len(r.rects))
	for i, rect := range r.rects {
		objs[i] = rect
	}
	return objs
}

func (r *waveRenderer) Destroy() {}
