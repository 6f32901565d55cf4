package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Lines is the indicator for non-interactive output such as CI logs: it
// prints each distinct message once and never animates.
type Lines struct {
	mu   sync.Mutex
	w    io.Writer
	last string
}

// NewLines returns a Lines indicator writing to w.
func NewLines(w io.Writer) *Lines {
	return &Lines{w: w}
}

func (l *Lines) Start(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.show(msg)
}

func (l *Lines) SetMessage(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.show(msg)
}

func (l *Lines) Println(line string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	_, _ = io.WriteString(l.w, line)
}

func (l *Lines) Stop() {}

func (l *Lines) show(msg string) {
	if msg == "" || msg == l.last {
		return
	}
	l.last = msg
	_, _ = fmt.Fprintln(l.w, msg)
}
