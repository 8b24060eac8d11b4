package queue

import (
	"context"
	"time"
)

// RecordChangeTopic carries one message per committed record version.
var RecordChangeTopic = "graphbase.record.changes"

// ChangeEvent describes one committed record version.
type ChangeEvent struct {
	ID       string    `json:"id"`
	Table    string    `json:"table"`
	RecordID int64     `json:"record_id"`
	Version  int64     `json:"version"`
	Status   string    `json:"status"`
	ActorID  int64     `json:"actor_id,omitempty"`
	At       time.Time `json:"at"`
}

type RecordQueue interface {
	// PublishChange appends a record change to the queue.
	PublishChange(ctx context.Context, change *ChangeEvent) error
	Close() error
}
