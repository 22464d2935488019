// Package chrome hides the platform-specific window, menu and permission
// behaviour behind small interfaces. The implementation is picked at
// build time from chrome_darwin.go or chrome_other.go; view code only
// ever talks to Current().
package chrome

// Action names a menu command. The view layer decides what it does.
type Action string

const (
	ActionListen Action = "listen"
	ActionCopy   Action = "copy"
	ActionClear  Action = "clear"
	ActionQuit   Action = "quit"
)

type MenuItem struct {
	Label    string
	Shortcut string // window shortcut as shown in menus, e.g. "⌘Q"
	// WindowKey is the key name (fyne/glfw style, e.g. "L") pressed with
	// the platform's primary modifier to trigger the item in a window.
	// Empty when the window relies on Key alone.
	WindowKey string
	Key       string // key as the terminal UI reports it
	Action    Action
}

// KeyLabel is the terminal key in the form shown in help text.
func (it MenuItem) KeyLabel() string {
	if it.Key == " " {
		return "space"
	}
	return it.Key
}

type Permission int

const (
	PermissionMicrophone Permission = iota
)

func (p Permission) String() string {
	switch p {
	case PermissionMicrophone:
		return "microphone"
	}
	return "unknown"
}

type WindowChrome interface {
	Title() string
	Size() (width, height int)
	Resizable() bool
	Menu() []MenuItem
}

type PermissionPrompt interface {
	// Explain returns guidance shown when access was refused.
	Explain(p Permission) string
	// Confirm asks the user whether to request access now.
	Confirm(p Permission) (bool, error)
}

type Platform struct {
	Name       string
	Window     WindowChrome
	Permission PermissionPrompt
}

// Current returns the chrome for the platform this binary was built for.
func Current() Platform {
	return current
}

// Lookup finds the menu item bound to key, as reported by the terminal UI.
func Lookup(w WindowChrome, key string) (MenuItem, bool) {
	for _, it := range w.Menu() {
		if it.Key == key {
			return it, true
		}
	}
	return MenuItem{}, false
}

type window struct {
	title     string
	width     int
	height    int
	resizable bool
	menu      []MenuItem
}

func (w window) Title() string    { return w.title }
func (w window) Size() (int, int) { return w.width, w.height }
func (w window) Resizable() bool  { return w.resizable }
func (w window) Menu() []MenuItem { return append([]MenuItem(nil), w.menu...) }
