// Package notify carries user-visible notices from the client core to
// whatever front end hosts it.
package notify

import (
	"fmt"
	"io"
	"sync"

	"go.uber.org/zap"
)

// Level is the severity of a notice.
type Level int

const (
	// Info confirms a completed action.
	Info Level = iota
	// Error reports a failed action.
	Error
)

func (l Level) String() string {
	if l == Error {
		return "error"
	}
	return "info"
}

// Notice is a short message for the user.
type Notice struct {
	Level       Level
	Title       string
	Description string
}

// Notifier delivers notices.
type Notifier interface {
	Notify(Notice)
}

// Func adapts a function to Notifier.
type Func func(Notice)

// Notify calls f(n).
func (f Func) Notify(n Notice) { f(n) }

// Nop discards notices.
var Nop Notifier = Func(func(Notice) {})

// SyncWriter serializes writes to w. The front end prints through the same
// SyncWriter as its Console so that notices raised by background writes do
// not interleave with its own output.
type SyncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

// NewSyncWriter wraps w.
func NewSyncWriter(w io.Writer) *SyncWriter {
	return &SyncWriter{w: w}
}

// Write implements io.Writer.
func (s *SyncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Do runs fn with exclusive use of the underlying writer, so that a block of
// lines is printed in one piece.
func (s *SyncWriter) Do(fn func(w io.Writer)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.w)
}

// Console prints notices as single lines and logs errors.
type Console struct {
	out *SyncWriter
	log *zap.Logger
}

// NewConsole creates a Console writing to w. A *SyncWriter is used as is,
// anything else gets wrapped. log may be nil.
func NewConsole(w io.Writer, log *zap.Logger) *Console {
	if log == nil {
		log = zap.NewNop()
	}
	out, ok := w.(*SyncWriter)
	if !ok {
		out = NewSyncWriter(w)
	}
	return &Console{out: out, log: log}
}

// Writer returns the guarded writer the Console prints to.
func (c *Console) Writer() *SyncWriter {
	return c.out
}

// Notify implements Notifier.
func (c *Console) Notify(n Notice) {
	mark := "✔"
	if n.Level == Error {
		mark = "✖"
		c.log.Warn("notice", zap.String("title", n.Title), zap.String("description", n.Description))
	}

	line := fmt.Sprintf("%s %s\n", mark, n.Title)
	if n.Description != "" {
		line = fmt.Sprintf("%s %s: %s\n", mark, n.Title, n.Description)
	}
	_, _ = io.WriteString(c.out, line)
}

// Recorder keeps every notice it receives.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// Notify implements Notifier.
func (r *Recorder) Notify(n Notice) {
	r.mu.Lock()
	r.notices = append(r.notices, n)
	r.mu.Unlock()
}

// Notices returns a copy of the recorded notices.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notice(nil), r.notices...)
}

// Titles returns the titles of the recorded notices in order.
func (r *Recorder) Titles() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	titles := make([]string, len(r.notices))
	for i, n := range r.notices {
		titles[i] = n.Title
	}
	return titles
}
