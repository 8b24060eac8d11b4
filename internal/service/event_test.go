package service

import (
	"context"
	"testing"

	"github.com/emrgen/graphbase/internal/module"
	"github.com/emrgen/graphbase/internal/schema"
	"github.com/emrgen/graphbase/internal/store"
	"github.com/emrgen/graphbase/internal/tester"
	"github.com/stretchr/testify/assert"
)

func newEventService() *EventService {
	tester.RemoveDBFile()
	tester.Setup()

	return NewEventService(store.NewGormStore(tester.TestDB(), schema.Default()))
}

func TestEventService_LogView(t *testing.T) {
	events := newEventService()
	ctx := module.WithActor(context.TODO(), 5)

	events.LogView(ctx, "people", 1)
	events.LogView(ctx, "organisations", 2)

	recent, err := events.ListRecent(ctx, 10)
	assert.NoError(t, err)
	assert.Len(t, recent, 2)

	// newest first
	assert.Equal(t, "organisations", recent[0].RequestedTable)
	assert.Equal(t, int64(2), recent[0].RequestedID)
	assert.Equal(t, int64(5), recent[0].ActorID)
	assert.Equal(t, "people", recent[1].RequestedTable)

	recent, err = events.ListRecent(ctx, 1)
	assert.NoError(t, err)
	assert.Len(t, recent, 1)
}

func TestEventService_ListRecent_DefaultLimit(t *testing.T) {
	events := newEventService()
	ctx := context.TODO()

	events.LogView(ctx, "people", 1)

	recent, err := events.ListRecent(ctx, 0)
	assert.NoError(t, err)
	assert.Len(t, recent, 1)

	// without an actor in the context the event is still recorded
	assert.Equal(t, int64(0), recent[0].ActorID)
}
