package ui

import (
	"io"
	"os"

	"github.com/charmbracelet/x/term"
)

// DefaultTermWidth is used when the terminal width cannot be read.
const DefaultTermWidth = 100

// DisplayContext holds the width and TTY state of an output stream.
type DisplayContext struct {
	TermWidth int
	IsTTY     bool
}

// NewDisplayContext inspects w. Writers that are not terminal files get
// IsTTY false and the default width.
func NewDisplayContext(w io.Writer) *DisplayContext {
	d := &DisplayContext{TermWidth: DefaultTermWidth}
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(f.Fd()) {
		return d
	}
	d.IsTTY = true
	if width, _, err := term.GetSize(f.Fd()); err == nil && width > 0 {
		d.TermWidth = width
	}
	return d
}

// NewDisplayContextWithWidth returns a terminal context of a fixed width.
func NewDisplayContextWithWidth(width int) *DisplayContext {
	return &DisplayContext{TermWidth: width, IsTTY: true}
}
