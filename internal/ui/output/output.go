// Package output decides how much styling jig writes to a given stream.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Profile returns the color profile for writing to w.
// NO_COLOR always yields plain text. Streams that are not terminals are plain too,
// unless FORCE_COLOR asks for the environment profile anyway.
func Profile(w io.Writer) termenv.Profile {
	switch {
	case os.Getenv("NO_COLOR") != "":
		return termenv.Ascii
	case IsTerminal(w), os.Getenv("FORCE_COLOR") != "":
		return termenv.EnvColorProfile()
	default:
		return termenv.Ascii
	}
}

// New wraps w in a termenv.Output using Profile(w). A nil w means stderr.
func New(w io.Writer) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}
	return termenv.NewOutput(w, termenv.WithProfile(Profile(w)), termenv.WithTTY(true))
}

// IsTerminal reports whether w is a file attached to an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}
