//go:build darwin

package chrome

var current = Platform{
	Name: "darwin",
	Window: window{
		title:     "murmur",
		width:     420,
		height:    640,
		resizable: false,
		menu: []MenuItem{
			{Label: "Start/Stop Listening", Shortcut: "⌘L", WindowKey: "L", Key: " ", Action: ActionListen},
			{Label: "Copy Last Message", Shortcut: "⌘C", WindowKey: "C", Key: "y", Action: ActionCopy},
			{Label: "Clear Conversation", Shortcut: "⌘K", WindowKey: "K", Key: "c", Action: ActionClear},
			{Label: "Quit murmur", Shortcut: "⌘Q", WindowKey: "Q", Key: "q", Action: ActionQuit},
		},
	},
	Permission: newTerminalPrompt(map[Permission]string{
		PermissionMicrophone: "Microphone access was denied. Enable it in System Settings › Privacy & Security › Microphone, then restart murmur.",
	}),
}
