package chrome

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// terminalPrompt asks y/N on the controlling terminal. When stdin is not
// a terminal the answer is always no.
type terminalPrompt struct {
	in       io.Reader
	out      io.Writer
	isTTY    func() bool
	guidance map[Permission]string
}

func newTerminalPrompt(guidance map[Permission]string) *terminalPrompt {
	return &terminalPrompt{
		in:       os.Stdin,
		out:      os.Stderr,
		isTTY:    func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
		guidance: guidance,
	}
}

func (p *terminalPrompt) Explain(perm Permission) string {
	if g, ok := p.guidance[perm]; ok {
		return g
	}
	return fmt.Sprintf("murmur needs %s access.", perm)
}

func (p *terminalPrompt) Confirm(perm Permission) (bool, error) {
	if !p.isTTY() {
		return false, nil
	}
	fmt.Fprintf(p.out, "murmur wants to use the %s. Allow? [y/N] ", perm)
	line, err := bufio.NewReader(p.in).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("reading answer: %w", err)
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes", nil
}
