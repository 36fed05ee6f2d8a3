package cli

import (
	"bytes"
	"os"
	"testing"

	"golang.org/x/term"
)

func TestIsInteractiveTerminal(t *testing.T) {
	cli := NewCLI()

	for _, f := range []*os.File{os.Stdin, os.Stdout, os.Stderr} {
		fd := int(f.Fd())
		if got, want := cli.isInteractiveTerminal(fd), term.IsTerminal(fd); got != want {
			t.Errorf("isInteractiveTerminal(%d) = %v, want %v", fd, got, want)
		}
	}

	if cli.isInteractiveTerminal(-1) {
		t.Error("invalid fd must not be a terminal")
	}
}

func TestIsInteractiveWriter(t *testing.T) {
	cli := NewCLI()
	cli.terminalDetector = fakeTerminal{interactive: true}

	if cli.isInteractiveWriter(&bytes.Buffer{}) {
		t.Error("a buffer is never interactive")
	}
	if !cli.isInteractiveWriter(os.Stderr) {
		t.Error("a file is interactive when the detector says so")
	}
}
