package service

import (
	"context"

	"github.com/emrgen/graphbase/internal/model"
	"github.com/emrgen/graphbase/internal/module"
	"github.com/emrgen/graphbase/internal/store"
	"github.com/sirupsen/logrus"
)

const defaultEventLimit = 50

// NewEventService creates a service recording who viewed which record.
func NewEventService(st store.Store) *EventService {
	return &EventService{store: st}
}

type EventService struct {
	store store.Store
}

// LogView records that the acting user viewed a record. Logging is best
// effort, a failure never fails the read it decorates.
func (e *EventService) LogView(ctx context.Context, table string, id int64) {
	actor, _ := module.ActorFrom(ctx)
	event := &model.ViewEvent{
		ActorID:        actor,
		RequestedTable: table,
		RequestedID:    id,
	}

	if err := e.store.CreateViewEvent(ctx, event); err != nil {
		logrus.Errorf("recording view event for %s/%d: %v", table, id, err)
	}
}

// ListRecent returns the most recent view events, newest first.
func (e *EventService) ListRecent(ctx context.Context, limit int) ([]*model.ViewEvent, error) {
	if limit <= 0 {
		limit = defaultEventLimit
	}
	return e.store.ListViewEvents(ctx, limit)
}
