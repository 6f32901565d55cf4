package progress

import (
	"fmt"
	"io"
	"math"
	"sync"

	bprogress "github.com/charmbracelet/bubbles/progress"
)

// ProgressBar is a determinate Bar. It only moves forward and stops at
// 100%. Interactive bars redraw in place; plain bars print a line each
// time another tenth completes.
type ProgressBar struct {
	mu          sync.Mutex
	w           io.Writer
	label       string
	interactive bool
	model       bprogress.Model
	pct         float64
	step        int
	finished    bool
}

// NewProgressBar returns a bar at 0%.
func NewProgressBar(w io.Writer, label string, interactive bool) *ProgressBar {
	return &ProgressBar{
		w:           w,
		label:       label,
		interactive: interactive,
		model:       bprogress.New(bprogress.WithDefaultGradient(), bprogress.WithWidth(40)),
	}
}

// Tick advances the bar by amount. Non-positive and non-finite amounts
// are ignored.
func (b *ProgressBar) Tick(amount float64) {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finished {
		return
	}
	b.pct = math.Min(1, b.pct+amount)
	b.render()
}

// Set moves the bar to fraction if that is ahead of its position.
func (b *ProgressBar) Set(fraction float64) {
	b.Tick(fraction - b.Percent())
}

func (b *ProgressBar) Percent() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pct
}

func (b *ProgressBar) Done() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finished {
		return
	}
	b.finished = true
	if b.interactive {
		b.render()
		_, _ = io.WriteString(b.w, "\n")
	}
}

// render expects b.mu to be held.
func (b *ProgressBar) render() {
	if b.interactive {
		_, _ = fmt.Fprintf(b.w, "\r%s %s", b.label, b.model.ViewAs(b.pct))
		return
	}
	step := int(b.pct * 10)
	if step > b.step {
		b.step = step
		_, _ = fmt.Fprintf(b.w, "%s %3.0f%%\n", b.label, b.pct*100)
	}
}
