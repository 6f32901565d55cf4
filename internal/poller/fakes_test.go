package poller

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"onmodulus/xervo/internal/domain"
	"onmodulus/xervo/internal/librarian"
)

// fakeIndicator records every call made by the poller.
type fakeIndicator struct {
	mu       sync.Mutex
	starts   []string
	messages []string
	printed  []string
	stops    int
}

func (f *fakeIndicator) Start(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.starts = append(f.starts, msg)
}

func (f *fakeIndicator) SetMessage(msg string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, msg)
}

func (f *fakeIndicator) Println(line string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.printed = append(f.printed, line)
}

func (f *fakeIndicator) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
}

func (f *fakeIndicator) snapshot() (starts, messages, printed []string, stops int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.starts...), append([]string(nil), f.messages...),
		append([]string(nil), f.printed...), f.stops
}

// instantClock fires every tick immediately and counts how many ticks
// were scheduled.
type instantClock struct {
	ticks atomic.Int64
}

func (c *instantClock) After(time.Duration) <-chan time.Time {
	c.ticks.Add(1)
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

// fakeBar records ticks.
type fakeBar struct {
	mu    sync.Mutex
	pct   float64
	ticks int
	done  int
}

func (b *fakeBar) Tick(amount float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ticks++
	b.pct += amount
	if b.pct > 1 {
		b.pct = 1
	}
}

func (b *fakeBar) Percent() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pct
}

func (b *fakeBar) Done() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.done++
}

// scriptedProjects answers Get with a status script; the last status
// repeats once the script is exhausted.
type scriptedProjects struct {
	mu        sync.Mutex
	statuses  []string
	getErr    func(call int) error
	gets      int
	logs      func(call int) string
	logCalls  int
	progress  func(call int) (float64, error)
	progCalls int
}

func (s *scriptedProjects) Get(_ context.Context, id string) (*domain.Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.getErr != nil {
		if err := s.getErr(s.gets); err != nil {
			return nil, err
		}
	}
	i := s.gets - 1
	if i >= len(s.statuses) {
		i = len(s.statuses) - 1
	}
	return &domain.Project{ID: id, Status: s.statuses[i]}, nil
}

func (s *scriptedProjects) DeployLogs(_ context.Context, _ string) ([]librarian.LogSource, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logCalls++
	if s.logs == nil {
		return nil, nil
	}
	return []librarian.LogSource{{Key: "build", Text: s.logs(s.logCalls)}, {Key: "other", Text: "ignored"}}, nil
}

func (s *scriptedProjects) UploadProgress(_ context.Context, _ string) (float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.progCalls++
	if s.progress == nil {
		return 0, nil
	}
	return s.progress(s.progCalls)
}

func (s *scriptedProjects) counts() (gets, logs, progress int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets, s.logCalls, s.progCalls
}

var (
	errBlip = &librarian.Error{Kind: librarian.KindTransport, Err: context.DeadlineExceeded}
	errAPI  = &librarian.Error{Kind: librarian.KindAPI, Message: "Project not found."}
)
