package clipboard

import (
	"errors"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"hello", "hello"},
		{"hello  \n", "hello"},
		{"\n\nline one \r\nline two\t\n\n", "line one\nline two"},
		{"  indented", "  indented"},
		{"   \n\t\n", ""},
	}
	for _, tt := range tests {
		if got := normalize(tt.in); got != tt.want {
			t.Errorf("normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCopyEmpty(t *testing.T) {
	if err := Copy(" \n "); !errors.Is(err, ErrEmpty) {
		t.Fatalf("Copy(blank) = %v, want ErrEmpty", err)
	}
}

func TestCopyRoundTrip(t *testing.T) {
	if Unsupported() {
		t.Skip("no clipboard backend")
	}
	if err := Copy("murmur clipboard test  \n"); err != nil {
		t.Skip("clipboard not available:", err)
	}
	got, err := Read()
	if err != nil {
		t.Skip("clipboard not readable:", err)
	}
	if got != "murmur clipboard test" {
		t.Errorf("Read() = %q", got)
	}
}
