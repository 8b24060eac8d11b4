package queue

import "context"

var _ RecordQueue = (*NoopQueue)(nil)

// NewNoopQueue creates a queue that drops every change. Used when no
// broker is configured.
func NewNoopQueue() *NoopQueue {
	return &NoopQueue{}
}

type NoopQueue struct{}

func (n *NoopQueue) PublishChange(ctx context.Context, change *ChangeEvent) error {
	return nil
}

func (n *NoopQueue) Close() error {
	return nil
}
