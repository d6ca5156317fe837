package ui

import (
	"sync"

	"github.com/expath/xproj/internal/javaproc"
)

// LogLine is one line of process output.
type LogLine struct {
	Stream javaproc.Stream
	Text   string
}

// LogBuffer keeps the last maxLines lines of output
type LogBuffer struct {
	lines    []LogLine
	maxLines int
	// dropped counts lines evicted from the front
	dropped int
	mu      sync.RWMutex
}

func NewLogBuffer(maxLines int) *LogBuffer {
	if maxLines <= 0 {
		maxLines = 1
	}
	return &LogBuffer{
		lines:    make([]LogLine, 0, maxLines),
		maxLines: maxLines,
	}
}

// Append adds a line, evicting the oldest when full.
func (lb *LogBuffer) Append(line LogLine) {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if len(lb.lines) >= lb.maxLines {
		copy(lb.lines, lb.lines[1:])
		lb.lines = lb.lines[:len(lb.lines)-1]
		lb.dropped++
	}
	lb.lines = append(lb.lines, line)
}

// GetAll returns all buffered lines
func (lb *LogBuffer) GetAll() []LogLine {
	lb.mu.RLock()
	defer lb.mu.RUnlock()

	result := make([]LogLine, len(lb.lines))
	copy(result, lb.lines)
	return result
}

// Dropped is the number of lines that no longer fit.
func (lb *LogBuffer) Dropped() int {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	return lb.dropped
}

func (lb *LogBuffer) Len() int {
	lb.mu.RLock()
	defer lb.mu.RUnlock()
	return len(lb.lines)
}
