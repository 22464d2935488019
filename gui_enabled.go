//go:build gui

package main

import (
	"fmt"
	"os"
	"runtime"

	"murmur/chrome"
	"murmur/gui"
	"murmur/waveform"
)

var guiApp *gui.App

// guiView adapts the fyne app to view. Run blocks until the window goes away.
type guiView struct{ *gui.App }

func (v guiView) Run() error {
	v.Wait()
	return nil
}

func newGUI(cfg waveform.Config, w chrome.WindowChrome, ctl controls) view {
	guiApp.Mount(cfg.Bars, cfg.Initial, cfg.MaxHeight, ctl)
	return guiView{guiApp}
}

func initGUI() {
	// Lock this goroutine to OS thread for Fyne/GLFW
	runtime.LockOSThread()

	guiApp = gui.NewApp(chrome.Current().Window, func() {
		run(newGUI)
		guiApp.Quit()
	})
	if err := gui.Run(guiApp); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
