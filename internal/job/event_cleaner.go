package job

import (
	"context"
	"time"

	"github.com/emrgen/graphbase/internal/store"
	"github.com/sirupsen/logrus"
)

// EventCleaner prunes old view events in the background. Record history
// is never touched, only the access log shrinks.
type EventCleaner struct {
	store     store.Store
	retention time.Duration
	interval  time.Duration
	done      chan struct{}
}

// NewEventCleaner creates a cleaner removing view events older than
// retention.
func NewEventCleaner(store store.Store, retention time.Duration) *EventCleaner {
	return &EventCleaner{
		store:     store,
		retention: retention,
		interval:  time.Hour,
		done:      make(chan struct{}),
	}
}

func (c *EventCleaner) Stop() {
	close(c.done)
}

func (c *EventCleaner) Run() {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.clean()
		}
	}
}

func (c *EventCleaner) clean() {
	cutoff := time.Now().Add(-c.retention)

	removed, err := c.store.DeleteViewEventsBefore(context.TODO(), cutoff)
	if err != nil {
		logrus.Error("Error pruning view events: ", err)
		return
	}

	if removed > 0 {
		logrus.Infof("Removed %v view events older than %v", removed, c.retention)
	}
}
