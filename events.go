package main

import "murmur/transcript"

// EventSink abstracts the display layer so both the Bubble Tea TUI
// and the fyne window receive the same waveform/transcript events.
type EventSink interface {
	Waveform(heights []float64)
	AudioLevel(level float64)
	Listening(on bool)
	DeviceLine(text string)
	Transcript(msgs []transcript.Message)
	Status(text string)
}

// view is an EventSink with a lifetime. Run blocks until the user closes it.
type view interface {
	EventSink
	Run() error
	Quit()
}
