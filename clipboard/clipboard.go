// Package clipboard copies transcript text to the system clipboard.
package clipboard

import (
	"errors"
	"strings"

	cb "github.com/atotto/clipboard"
)

var ErrEmpty = errors.New("clipboard: nothing to copy")

// Unsupported reports whether no clipboard backend was found (on Linux,
// none of xclip, xsel or wl-copy is installed).
func Unsupported() bool {
	return cb.Unsupported
}

// Copy places text on the clipboard with trailing whitespace trimmed.
func Copy(text string) error {
	text = normalize(text)
	if text == "" {
		return ErrEmpty
	}
	return cb.WriteAll(text)
}

func Read() (string, error) {
	return cb.ReadAll()
}

// normalize trims surrounding blank lines and trailing spaces on each line.
func normalize(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t")
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}
