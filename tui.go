package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"murmur/chrome"
	"murmur/transcript"
	"murmur/waveform"
)

// TUI message types
type WaveformMsg struct{ Heights []float64 }
type AudioLevelMsg struct{ Level float64 }
type ListeningMsg struct{ On bool }
type DeviceLineMsg struct{ Text string }
type TranscriptMsg struct{ Messages []transcript.Message }
type StatusMsg struct{ Text string }
type clearStatusMsg struct{ seq int }

const (
	waveRows      = 8
	statusTimeout = 3 * time.Second
)

// controls is what the view can ask the rest of the app to do.
type controls interface {
	SetListening(on bool) error
	Copy(text string) error
}

type keyMap struct {
	bindings map[chrome.Action]key.Binding
	order    []chrome.Action
}

func newKeyMap(w chrome.WindowChrome) keyMap {
	km := keyMap{bindings: map[chrome.Action]key.Binding{}}
	for _, it := range w.Menu() {
		keys := []string{it.Key}
		if it.Key == " " {
			keys = append(keys, "space")
		}
		if it.Action == chrome.ActionQuit {
			keys = append(keys, "ctrl+c")
		}
		km.bindings[it.Action] = key.NewBinding(key.WithKeys(keys...), key.WithHelp(it.KeyLabel(), strings.ToLower(it.Label)))
		km.order = append(km.order, it.Action)
	}
	return km
}

func (k keyMap) ShortHelp() []key.Binding {
	out := make([]key.Binding, 0, len(k.order))
	for _, a := range k.order {
		out = append(out, k.bindings[a])
	}
	return out
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func (k keyMap) action(msg tea.KeyMsg) (chrome.Action, bool) {
	for _, a := range k.order {
		if key.Matches(msg, k.bindings[a]) {
			return a, true
		}
	}
	return "", false
}

type tuiModel struct {
	cfg        waveform.Config
	heights    []float64
	level      float64
	listening  bool
	deviceLine string
	messages   []transcript.Message
	status     string
	statusSeq  int

	width, height int
	viewport      viewport.Model
	help          help.Model
	keys          keyMap
	title         string
	ctl           controls
	now           func() time.Time
}

func newTUIModel(cfg waveform.Config, w chrome.WindowChrome, ctl controls) tuiModel {
	heights := make([]float64, cfg.Bars)
	for i := range heights {
		heights[i] = cfg.Initial
	}
	return tuiModel{
		cfg:      cfg,
		heights:  heights,
		viewport: viewport.New(0, 0),
		help:     help.New(),
		keys:     newKeyMap(w),
		title:    w.Title(),
		ctl:      ctl,
		now:      time.Now,
	}
}

func (m tuiModel) Init() tea.Cmd {
	return nil
}

func (m tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()

	case tea.KeyMsg:
		if a, ok := m.keys.action(msg); ok {
			return m.do(a)
		}
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case WaveformMsg:
		if len(msg.Heights) == len(m.heights) {
			m.heights = msg.Heights
		}

	case AudioLevelMsg:
		m.level = msg.Level

	case ListeningMsg:
		m.listening = msg.On
		if !msg.On {
			m.level = 0
		}

	case DeviceLineMsg:
		m.deviceLine = msg.Text

	case TranscriptMsg:
		m.messages = msg.Messages
		m.refreshTranscript()

	case StatusMsg:
		m.status = msg.Text
		m.statusSeq++
		seq := m.statusSeq
		return m, tea.Tick(statusTimeout, func(time.Time) tea.Msg { return clearStatusMsg{seq: seq} })

	case clearStatusMsg:
		if msg.seq == m.statusSeq {
			m.status = ""
		}
	}
	return m, nil
}

func (m tuiModel) do(a chrome.Action) (tea.Model, tea.Cmd) {
	switch a {
	case chrome.ActionQuit:
		return m, tea.Quit

	case chrome.ActionListen:
		want := !m.listening
		ctl := m.ctl
		return m, func() tea.Msg {
			if ctl == nil {
				return nil
			}
			if err := ctl.SetListening(want); err != nil {
				return StatusMsg{Text: "mic: " + err.Error()}
			}
			return ListeningMsg{On: want}
		}

	case chrome.ActionCopy:
		text, ok := lastMessageText(m.messages)
		if !ok {
			return m, func() tea.Msg { return StatusMsg{Text: "nothing to copy"} }
		}
		ctl := m.ctl
		return m, func() tea.Msg {
			if ctl == nil {
				return nil
			}
			if err := ctl.Copy(text); err != nil {
				return StatusMsg{Text: "copy failed: " + err.Error()}
			}
			return StatusMsg{Text: "✓ copied"}
		}

	case chrome.ActionClear:
		m.messages = nil
		m.refreshTranscript()
	}
	return m, nil
}

func lastMessageText(msgs []transcript.Message) (string, bool) {
	if len(msgs) == 0 {
		return "", false
	}
	return msgs[len(msgs)-1].Text, true
}

// layout splits the screen: waveform and status on top, transcript
// filling the middle, help at the bottom.
func (m *tuiModel) layout() {
	top := waveRows + 3
	bottom := 2
	h := m.height - top - bottom
	if h < 3 {
		h = 3
	}
	m.viewport.Width = m.width
	m.viewport.Height = h
	m.help.Width = m.width
	m.refreshTranscript()
}

func (m *tuiModel) refreshTranscript() {
	m.viewport.SetContent(renderTranscript(m.messages, m.viewport.Width, m.now()))
	m.viewport.GotoBottom()
}

func (m tuiModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var b strings.Builder

	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("246")).Bold(true)
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")

	bars := renderBars(m.heights, m.cfg.MaxHeight, waveRows, m.listening)
	b.WriteString(lipgloss.PlaceHorizontal(m.width, lipgloss.Center, bars))
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")

	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m tuiModel) statusLine() string {
	var parts []string
	if m.listening {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true).
			Render(fmt.Sprintf("● LISTENING %3.0f%%", math.Min(m.level, 1)*100)))
	} else {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("○ IDLE"))
	}
	if m.deviceLine != "" {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render(m.deviceLine))
	}
	if m.status != "" {
		parts = append(parts, lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Render(m.status))
	}
	return strings.Join(parts, "  ")
}

// Bar colours from quiet to loud while listening; idle bars are grey.
var (
	barColorsActive = []string{"226", "220", "214", "208", "202", "196"}
	barStylesActive []lipgloss.Style
	barStyleIdle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

func init() {
	for _, c := range barColorsActive {
		barStylesActive = append(barStylesActive, lipgloss.NewStyle().Foreground(lipgloss.Color(c)))
	}
}

// levelStyle maps a bar's fill fraction to a colour.
func levelStyle(frac float64, active bool) lipgloss.Style {
	if !active {
		return barStyleIdle
	}
	i := int(frac * float64(len(barStylesActive)))
	i = max(0, min(i, len(barStylesActive)-1))
	return barStylesActive[i]
}

// Block characters, index 0 = empty, 8 = full cell.
var blockChars = []rune(" ▁▂▃▄▅▆▇█")

// renderBars draws one column per height, rows tall, each cell split into
// eighths. maxHeight maps to a full column.
func renderBars(heights []float64, maxHeight float64, rows int, active bool) string {
	if rows < 1 || maxHeight <= 0 {
		return ""
	}
	eighths := make([]int, len(heights))
	styles := make([]lipgloss.Style, len(heights))
	for i, h := range heights {
		frac := math.Max(0, math.Min(h/maxHeight, 1))
		eighths[i] = int(math.Round(frac * float64(rows*8)))
		styles[i] = levelStyle(frac, active)
	}

	var b strings.Builder
	for r := rows - 1; r >= 0; r-- {
		for i, e := range eighths {
			fill := e - r*8
			fill = max(0, min(fill, 8))
			if fill == 0 {
				b.WriteRune(' ')
				continue
			}
			b.WriteString(styles[i].Render(string(blockChars[fill])))
		}
		if r > 0 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

var (
	senderStyles = map[transcript.Sender]lipgloss.Style{
		transcript.SenderUser:      lipgloss.NewStyle().Foreground(lipgloss.Color("4")).Bold(true),
		transcript.SenderAssistant: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	}
	senderLabels = map[transcript.Sender]string{
		transcript.SenderUser:      "you",
		transcript.SenderAssistant: "assistant",
	}
)

func renderTranscript(msgs []transcript.Message, width int, now time.Time) string {
	if len(msgs) == 0 {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Render("No conversation yet")
	}

	wrapWidth := width - 2
	if wrapWidth < 10 {
		wrapWidth = 10
	}

	var b strings.Builder
	if latest, ok := transcript.Latest(msgs); ok {
		header := lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
		b.WriteString(header.Render(transcript.FormatHeader(latest, now)))
		b.WriteString("\n\n")
	}
	textStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	for i, msg := range msgs {
		b.WriteString(senderStyles[msg.Sender].Render(senderLabels[msg.Sender]))
		b.WriteString("\n")
		for _, line := range wrapText(msg.Text, wrapWidth) {
			b.WriteString(textStyle.Render(line))
			b.WriteString("\n")
		}
		if i < len(msgs)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

func wrapText(text string, width int) []string {
	if len(text) == 0 {
		return []string{""}
	}
	if width <= 0 {
		width = 1
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		runes := []rune(para)
		for len(runes) > width {
			// Find last space within width
			splitAt := width
			for i := width; i > 0; i-- {
				if runes[i] == ' ' {
					splitAt = i
					break
				}
			}
			lines = append(lines, string(runes[:splitAt]))
			runes = []rune(strings.TrimLeft(string(runes[splitAt:]), " "))
		}
		lines = append(lines, string(runes))
	}
	return lines
}

// tuiView adapts a tea.Program to the view interface.
type tuiView struct {
	p *tea.Program
}

func newTUIView(cfg waveform.Config, w chrome.WindowChrome, ctl controls) *tuiView {
	m := newTUIModel(cfg, w, ctl)
	return &tuiView{p: tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())}
}

func (v *tuiView) Run() error {
	_, err := v.p.Run()
	return err
}

func (v *tuiView) Quit() { v.p.Quit() }

func (v *tuiView) Waveform(heights []float64)           { v.p.Send(WaveformMsg{Heights: heights}) }
func (v *tuiView) AudioLevel(level float64)             { v.p.Send(AudioLevelMsg{Level: level}) }
func (v *tuiView) Listening(on bool)                    { v.p.Send(ListeningMsg{On: on}) }
func (v *tuiView) DeviceLine(text string)               { v.p.Send(DeviceLineMsg{Text: text}) }
func (v *tuiView) Transcript(msgs []transcript.Message) { v.p.Send(TranscriptMsg{Messages: msgs}) }
func (v *tuiView) Status(text string)                   { v.p.Send(StatusMsg{Text: text}) }
