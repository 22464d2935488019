//go:build gui

package gui

import (
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
	"github.com/go-gl/glfw/v3.3/glfw"

	"murmur/chrome"
	"murmur/transcript"
)

const statusTimeout = 3 * time.Second

// Controls is what the window can ask the rest of the app to do.
type Controls interface {
	SetListening(on bool) error
	Copy(text string) error
}

type App struct {
	chrome  chrome.WindowChrome
	fyneApp fyne.App
	window  fyne.Window
	onReady func()
	done    chan struct{}
	closed  atomic.Bool
	posX    int
	posY    int

	// owned by the fyne main goroutine once mounted
	ctl       Controls
	wave      *WaveWidget
	statusLbl *widget.Label
	deviceLbl *widget.Label
	text      *widget.Label
	scroll    *container.Scroll
	listening bool
	level     float64
	status    string
	statusSeq int
	messages  []transcript.Message
}

func NewApp(w chrome.WindowChrome, onReady func()) *App {
	return &App{chrome: w, onReady: onReady, done: make(chan struct{})}
}

func Run(a *App) error {
	a.fyneApp = app.NewWithID("io.murmur.gui")
	a.fyneApp.Settings().SetTheme(&darkTheme{})
	icon := fyne.NewStaticResource("murmur.png", iconPNG())
	a.fyneApp.SetIcon(icon)

	if desk, ok := a.fyneApp.(desktop.App); ok {
		desk.SetSystemTrayMenu(fyne.NewMenu("murmur", a.menuItems()...))
		desk.SetSystemTrayIcon(icon)
	}

	width, height := a.chrome.Size()
	var screenW, screenH int
	if monitor := glfw.GetPrimaryMonitor(); monitor != nil {
		_, _, screenW, screenH = monitor.GetWorkarea()
	} else {
		screenW, screenH = 1920, 1080 // fallback
	}
	// top-right corner, clear of the menu bar
	a.posX = screenW - width - 24
	a.posY = 48
	if a.posX < 0 || height > screenH {
		a.posX, a.posY = 0, 0
	}

	a.window = a.fyneApp.NewWindow(a.chrome.Title())
	a.window.SetIcon(icon)
	a.window.Resize(fyne.NewSize(float32(width), float32(height)))
	a.window.SetFixedSize(!a.chrome.Resizable())
	a.window.SetMainMenu(fyne.NewMainMenu(fyne.NewMenu(a.chrome.Title(), a.menuItems()...)))
	for _, it := range canvasShortcuts(a.chrome.Menu()) {
		action := it.Action
		a.window.Canvas().AddShortcut(windowShortcut(it), func(fyne.Shortcut) { a.do(action) })
	}
	a.window.Canvas().SetOnTypedRune(func(r rune) {
		if it, ok := chrome.Lookup(a.chrome, string(r)); ok {
			a.do(it.Action)
		}
	})
	a.window.SetContent(widget.NewLabel("Starting..."))

	go a.onReady()

	a.fyneApp.Run()
	a.closed.Store(true)
	close(a.done)
	return nil
}

func (a *App) menuItems() []*fyne.MenuItem {
	var items []*fyne.MenuItem
	for _, it := range a.chrome.Menu() {
		action := it.Action
		mi := fyne.NewMenuItem(it.Label, func() { a.do(action) })
		mi.IsQuit = action == chrome.ActionQuit
		if it.WindowKey != "" {
			mi.Shortcut = windowShortcut(it)
		}
		items = append(items, mi)
	}
	return items
}

// windowShortcut is the item's key with ⌘ on macOS and ctrl elsewhere.
func windowShortcut(it chrome.MenuItem) *desktop.CustomShortcut {
	return &desktop.CustomShortcut{KeyName: fyne.KeyName(it.WindowKey), Modifier: fyne.KeyModifierShortcutDefault}
}

// Mount builds the window content for a session and shows it.
func (a *App) Mount(bars int, initial, maxHeight float64, ctl Controls) {
	a.ctl = ctl
	a.wave = NewWaveWidget(bars, initial, maxHeight)
	a.statusLbl = widget.NewLabel(statusText(false, 0, ""))
	a.deviceLbl = widget.NewLabel("")
	a.deviceLbl.Truncation = fyne.TextTruncateEllipsis
	a.text = widget.NewLabel(transcriptText(nil, time.Now()))
	a.text.Wrapping = fyne.TextWrapWord
	a.scroll = container.NewVScroll(a.text)

	top := container.NewVBox(a.wave, container.NewHBox(a.statusLbl, a.deviceLbl))
	content := container.NewBorder(top, nil, nil, nil, a.scroll)

	a.ui(func() {
		a.window.SetContent(content)
		a.show()
	})
}

func (a *App) show() {
	a.window.Show()
	// Position via GLFW; fyne has no window placement API.
	if glfwWin := glfw.GetCurrentContext(); glfwWin != nil {
		glfwWin.SetPos(a.posX, a.posY)
	}
}

// ui runs fn on the fyne main goroutine, dropping it once the app is gone.
func (a *App) ui(fn func()) {
	if a.closed.Load() {
		return
	}
	fyne.Do(fn)
}

// Wait blocks until the fyne event loop has exited.
func (a *App) Wait() {
	<-a.done
}

func (a *App) Quit() {
	if a.fyneApp != nil && !a.closed.Load() {
		a.fyneApp.Quit()
	}
}

// do runs a menu action. Called on the main goroutine.
func (a *App) do(action chrome.Action) {
	switch action {
	case chrome.ActionQuit:
		a.Quit()

	case chrome.ActionListen:
		if a.ctl == nil {
			return
		}
		want := !a.listening
		ctl := a.ctl
		go func() {
			if err := ctl.SetListening(want); err != nil {
				a.Status("mic: " + err.Error())
				return
			}
			a.Listening(want)
		}()

	case chrome.ActionCopy:
		if a.ctl == nil {
			return
		}
		if len(a.messages) == 0 {
			a.setStatus("nothing to copy")
			return
		}
		text := a.messages[len(a.messages)-1].Text
		ctl := a.ctl
		go func() {
			if err := ctl.Copy(text); err != nil {
				a.Status("copy failed: " + err.Error())
				return
			}
			a.Status("✓ copied")
		}()

	case chrome.ActionClear:
		if a.text != nil {
			a.setTranscript(nil)
		}
	}
}

func (a *App) refreshStatus() {
	a.statusLbl.SetText(statusText(a.listening, a.level, a.status))
}

func (a *App) setStatus(text string) {
	if a.statusLbl == nil {
		return
	}
	a.status = text
	a.statusSeq++
	seq := a.statusSeq
	a.refreshStatus()
	time.AfterFunc(statusTimeout, func() {
		a.ui(func() {
			if a.statusSeq == seq {
				a.status = ""
				a.refreshStatus()
			}
		})
	})
}

func (a *App) setTranscript(msgs []transcript.Message) {
	a.messages = msgs
	a.text.SetText(transcriptText(msgs, time.Now()))
	a.scroll.ScrollToBottom()
}

// EventSink implementation. Every update hops onto the main goroutine.

func (a *App) Waveform(heights []float64) {
	a.ui(func() {
		a.wave.SetHeights(heights)
		a.wave.Refresh()
	})
}

func (a *App) AudioLevel(level float64) {
	a.ui(func() {
		if a.level == level {
			return
		}
		a.level = level
		if a.listening {
			a.refreshStatus()
		}
	})
}

func (a *App) Listening(on bool) {
	a.ui(func() {
		a.listening = on
		if !on {
			a.level = 0
		}
		a.wave.SetActive(on)
		a.wave.Refresh()
		a.refreshStatus()
	})
}

func (a *App) DeviceLine(text string) {
	a.ui(func() { a.deviceLbl.SetText(text) })
}

func (a *App) Transcript(msgs []transcript.Message) {
	a.ui(func() { a.setTranscript(msgs) })
}

func (a *App) Status(text string) {
	a.ui(func() { a.setStatus(text) })
}
