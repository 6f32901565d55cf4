// Package progress renders terminal progress for long-running operations.
//
// An Indicator is indeterminate: it animates on its own timer between
// Start and Stop. A Bar is determinate: it only moves when ticked.
package progress

import (
	"io"
	"os"

	"golang.org/x/term"
)

// Indicator is an indeterminate progress display driven by the poller.
// Stop must be safe to call more than once and from any goroutine.
type Indicator interface {
	// Start begins animating with msg. Starting a running indicator
	// only changes its message.
	Start(msg string)

	// SetMessage replaces the text shown next to the animation.
	SetMessage(msg string)

	// Println writes a line above the animation.
	Println(line string)

	// Stop ends the animation, cancels its timer and releases any
	// terminal input captured by Start.
	Stop()
}

// Bar is a determinate progress display.
type Bar interface {
	// Tick advances the bar by amount, a fraction of the whole.
	Tick(amount float64)

	// Percent returns the current position in [0, 1].
	Percent() float64

	// Done draws the bar at its final position and moves to a new line.
	Done()
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// NewIndicator picks the indicator for w: an interactive spinner that
// owns the terminal when w is a TTY, and plain status lines otherwise.
// opts apply to the interactive spinner only.
func NewIndicator(w io.Writer, opts ...TeaOption) Indicator {
	if IsTerminal(w) {
		return NewTeaSpinner(w, opts...)
	}
	return NewLines(w)
}

// NewBar picks the bar for w.
func NewBar(w io.Writer, label string) Bar {
	return NewProgressBar(w, label, IsTerminal(w))
}

// Nop discards everything.
type Nop struct{}

func (Nop) Start(string)      {}
func (Nop) SetMessage(string) {}
func (Nop) Println(string)    {}
func (Nop) Stop()             {}
