package display

import (
	"fmt"
	"io"
	"sync"
)

// Sink shows the current detection value, replacing whatever was shown before.
type Sink interface {
	Show(value string)
}

// LineSink writes one line per change to an io.Writer. Repeated values are
// not rewritten.
type LineSink struct {
	mu   sync.Mutex
	w    io.Writer
	last string
	seen bool
}

// NewLineSink creates a sink writing to w
func NewLineSink(w io.Writer) *LineSink {
	return &LineSink{w: w}
}

// Show writes value when it differs from the previous one
func (s *LineSink) Show(value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.seen && value == s.last {
		return
	}
	s.last = value
	s.seen = true
	fmt.Fprintln(s.w, value)
}
