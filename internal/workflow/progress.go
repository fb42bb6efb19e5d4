package workflow

import "woodway/internal/queue"

// ProgressSink receives item lifecycle updates while a batch runs. Methods
// are called from worker goroutines and must be safe for concurrent use.
type ProgressSink interface {
	StageStarted(item *queue.Item, stage string)
	StageCompleted(item *queue.Item, stage string)
	// ItemFinished fires once per item when it reaches a terminal status.
	ItemFinished(item *queue.Item)
}

// NopSink discards all updates.
type NopSink struct{}

func (NopSink) StageStarted(*queue.Item, string)   {}
func (NopSink) StageCompleted(*queue.Item, string) {}
func (NopSink) ItemFinished(*queue.Item)           {}
