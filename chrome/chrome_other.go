//go:build !darwin

package chrome

var current = Platform{
	Name: "other",
	Window: window{
		title:     "murmur",
		width:     480,
		height:    640,
		resizable: true,
		menu: []MenuItem{
			{Label: "Listen", Shortcut: "space", Key: " ", Action: ActionListen},
			{Label: "Copy last", Shortcut: "y", Key: "y", Action: ActionCopy},
			{Label: "Clear", Shortcut: "c", Key: "c", Action: ActionClear},
			{Label: "Quit", Shortcut: "q", Key: "q", Action: ActionQuit},
		},
	},
	Permission: newTerminalPrompt(map[Permission]string{
		PermissionMicrophone: "Could not open a capture device. Check that PulseAudio (or PipeWire) is running and that your user may record audio, or pick another device with -setup.",
	}),
}
