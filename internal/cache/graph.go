package cache

import (
	"context"
	"time"
)

// Snapshot is one exported graph payload plus the metadata needed to
// decode it again. Data holds the codec-encoded JSON graph.
type Snapshot struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"-"`
	Codec     string    `json:"codec"`
	NodeCount int       `json:"node_count"`
	EdgeCount int       `json:"edge_count"`
	BuiltAt   time.Time `json:"built_at"`
}

// GraphCache stores periodically exported graph snapshots for cheap
// reads by other processes. It is an export target, not a read-through
// cache: graph queries always hit the store.
type GraphCache interface {
	// SetSnapshot stores a snapshot under its key.
	SetSnapshot(ctx context.Context, snap *Snapshot) error
	// GetSnapshot returns the snapshot stored under key, or nil when
	// there is none.
	GetSnapshot(ctx context.Context, key string) (*Snapshot, error)
	// DeleteSnapshot removes a stored snapshot.
	DeleteSnapshot(ctx context.Context, key string) error
}
