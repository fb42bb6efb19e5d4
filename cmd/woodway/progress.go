package main

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"woodway/internal/queue"
)

// consoleSink prints one line per stage transition. The workflow invokes it
// from worker goroutines, so every write holds the mutex.
type consoleSink struct {
	mu  sync.Mutex
	out io.Writer
}

func newConsoleSink(out io.Writer) *consoleSink {
	return &consoleSink{out: out}
}

func (s *consoleSink) StageStarted(item *queue.Item, stage string) {
	s.printf("  [%d] %-32s %s\n", item.Ordinal, item.OriginalFilename(), stage)
}

func (s *consoleSink) StageCompleted(*queue.Item, string) {}

func (s *consoleSink) ItemFinished(item *queue.Item) {
	switch item.Status {
	case queue.StatusCompleted:
		target := filepath.Base(item.OutputPath)
		if target == "." || target == "" {
			target = "done"
		}
		s.printf("  [%d] %-32s -> %s\n", item.Ordinal, item.OriginalFilename(), target)
	case queue.StatusFailed:
		s.printf("  [%d] %-32s failed: %s\n", item.Ordinal, item.OriginalFilename(), item.ErrorMessage)
	case queue.StatusSkipped:
		s.printf("  [%d] %-32s skipped: %s\n", item.Ordinal, item.OriginalFilename(), item.ErrorMessage)
	}
}

func (s *consoleSink) printf(format string, args ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fmt.Fprintf(s.out, format, args...)
}
