package progress

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"onmodulus/xervo/internal/tui/styles"
)

// --- Messages ---

type setMessageMsg string

type printLineMsg string

type stopMsg struct{}

// --- Model ---

type teaSpinnerModel struct {
	spin        spinner.Model
	msg         string
	stopping    bool
	onInterrupt func()
}

func (m teaSpinnerModel) Init() tea.Cmd {
	return m.spin.Tick
}

func (m teaSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case setMessageMsg:
		m.msg = string(msg)
		return m, nil

	case printLineMsg:
		return m, tea.Println(string(msg))

	case stopMsg:
		m.stopping = true
		return m, tea.Quit

	case tea.KeyMsg:
		// The program holds the terminal in raw mode, so ctrl+c arrives
		// here instead of as SIGINT.
		if msg.Type == tea.KeyCtrlC {
			if m.onInterrupt != nil {
				m.onInterrupt()
			}
			m.stopping = true
			return m, tea.Quit
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m teaSpinnerModel) View() string {
	if m.stopping {
		return ""
	}
	return m.spin.View() + " " + styles.Subtitle.Render(m.msg)
}

// --- Indicator ---

// TeaSpinner is an Indicator backed by a bubbletea program. The program
// owns terminal input from Start until Stop, so keystrokes do not echo
// into the animation; ctrl+c is forwarded to the interrupt callback.
type TeaSpinner struct {
	out         io.Writer
	in          io.Reader
	onInterrupt func()

	mu   sync.Mutex
	prog *tea.Program
	done chan struct{}
}

// TeaOption configures a TeaSpinner.
type TeaOption func(*TeaSpinner)

// WithInput replaces os.Stdin as the captured input. A nil reader
// disables input handling.
func WithInput(r io.Reader) TeaOption {
	return func(s *TeaSpinner) { s.in = r }
}

// WithInterrupt sets the function called when the user presses ctrl+c
// while the spinner owns the terminal. Commands pass their context's
// cancel function.
func WithInterrupt(fn func()) TeaOption {
	return func(s *TeaSpinner) { s.onInterrupt = fn }
}

// NewTeaSpinner returns a stopped TeaSpinner rendering to out.
func NewTeaSpinner(out io.Writer, opts ...TeaOption) *TeaSpinner {
	s := &TeaSpinner{out: out, in: os.Stdin}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TeaSpinner) Start(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.prog != nil {
		s.prog.Send(setMessageMsg(msg))
		return
	}

	spin := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(styles.AccentText),
	)
	model := teaSpinnerModel{spin: spin, msg: msg, onInterrupt: s.onInterrupt}

	prog := tea.NewProgram(model,
		tea.WithOutput(s.out),
		tea.WithInput(s.in),
		tea.WithoutSignalHandler(),
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = prog.Run()
	}()
	s.prog = prog
	s.done = done
}

// SetMessage is dropped once the program has exited.
func (s *TeaSpinner) SetMessage(msg string) {
	if p := s.running(); p != nil {
		p.Send(setMessageMsg(msg))
	}
}

// Println goes through the program while it runs and straight to the
// output once it has exited, for example after ctrl+c quit it.
// Program.Send is used rather than Program.Println because Send gives up
// when the program shuts down.
func (s *TeaSpinner) Println(line string) {
	line = strings.TrimSuffix(line, "\n")
	if p := s.running(); p != nil {
		p.Send(printLineMsg(line))
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.out, line+"\n")
}

// Stop quits the program and waits for it to restore the terminal.
func (s *TeaSpinner) Stop() {
	s.mu.Lock()
	prog, done := s.prog, s.done
	s.prog, s.done = nil, nil
	s.mu.Unlock()

	if prog == nil {
		return
	}
	prog.Send(stopMsg{})
	<-done
}

// running returns the program if it was started and has not exited.
func (s *TeaSpinner) running() *tea.Program {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.prog == nil {
		return nil
	}
	select {
	case <-s.done:
		return nil
	default:
		return s.prog
	}
}

// Exited reports whether a started program has exited without Stop,
// which happens when ctrl+c quits it.
func (s *TeaSpinner) Exited() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.done == nil {
		return false
	}
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}
