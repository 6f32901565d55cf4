package poller

import (
	"fmt"
	"sync"
)

// State is the phase of a poll session.
type State int

const (
	// Submitting: the transition request has not been accepted yet.
	Submitting State = iota
	// Polling: the request was accepted and status is being fetched.
	Polling
	// Succeeded: the terminal status was observed.
	Succeeded
	// Failed: the submit or a fetch failed, or the wait was abandoned.
	Failed
)

func (s State) String() string {
	switch s {
	case Submitting:
		return "submitting"
	case Polling:
		return "polling"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether no further polling may happen in s.
func (s State) Terminal() bool {
	return s == Succeeded || s == Failed
}

// Session is the bookkeeping for one transition being awaited. The
// status loop, log-tail loop and upload-progress loop of a deploy share
// one Session, so every field is guarded by mu.
type Session struct {
	mu        sync.Mutex
	resource  string
	state     State
	status    string
	uploading bool
	cursor    int
	err       error
}

// NewSession returns a session in the Submitting state. initial is the
// status assumed before the first poll.
func NewSession(resource, initial string) *Session {
	return &Session{resource: resource, status: initial}
}

func (s *Session) Resource() string {
	return s.resource
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the error the session failed with, if any.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Accept moves Submitting to Polling. It reports false in any other state.
func (s *Session) Accept() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Submitting {
		return false
	}
	s.state = Polling
	return true
}

// Finish moves the session to Succeeded (err == nil) or Failed. Only the
// first call has any effect; it reports whether this call was it.
func (s *Session) Finish(err error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Terminal() {
		return false
	}
	if err != nil {
		s.state = Failed
		s.err = err
	} else {
		s.state = Succeeded
	}
	return true
}

// Status returns the last observed status.
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Observe replaces the last observed status and returns the previous one.
func (s *Session) Observe(status string) (prev string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, s.status = s.status, status
	return prev
}

func (s *Session) SetUploading(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploading = v
}

// Uploading reports whether the archive upload is still in flight.
func (s *Session) Uploading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploading
}

// Cursor returns how many bytes of the log have been shown.
func (s *Session) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Tail returns the part of log not shown yet and advances the cursor to
// its end. The server sends the whole log each time; if it is shorter
// than what was already shown it is treated as a new log and returned
// from the start.
func (s *Session) Tail(log string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(log) < s.cursor {
		s.cursor = 0
	}
	unseen := log[s.cursor:]
	s.cursor = len(log)
	return unseen
}
