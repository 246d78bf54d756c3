package mock

import (
	"strings"
	"sync"
)

// IOWriter is an io.Writer which accumulates everything written to it. It is safe for
// concurrent use as reload workers log in parallel.
type IOWriter struct {
	mu   sync.Mutex
	line []byte
}

func (t *IOWriter) Reset() {
	t.mu.Lock()
	t.line = t.line[:0]
	t.mu.Unlock()
}

func (t *IOWriter) Write(b []byte) (int, error) {
	t.mu.Lock()
	t.line = append(t.line, b...)
	t.mu.Unlock()

	return len(b), nil
}

func (t *IOWriter) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	return string(t.line)
}

func (t *IOWriter) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.line)
}

// Contains reports whether any output so far contains sub.
func (t *IOWriter) Contains(sub string) bool {
	return strings.Contains(t.String(), sub)
}

// Count returns the number of occurrences of sub in the output so far.
func (t *IOWriter) Count(sub string) int {
	return strings.Count(t.String(), sub)
}
