package service

import (
	"context"
	"testing"

	"github.com/emrgen/graphbase/internal/model"
	"github.com/emrgen/graphbase/internal/queue"
	"github.com/emrgen/graphbase/internal/schema"
	"github.com/emrgen/graphbase/internal/store"
	"github.com/emrgen/graphbase/internal/tester"
	"github.com/stretchr/testify/assert"
)

func newRecordService() *RecordService {
	tester.RemoveDBFile()
	tester.Setup()

	sch := schema.Default()
	return NewRecordService(sch, store.NewGormStore(tester.TestDB(), sch), queue.NewNoopQueue())
}

func TestRecordService_Submit(t *testing.T) {
	records := newRecordService()
	ctx := context.TODO()

	res, err := records.Submit(ctx, "people", map[string]any{"name": "Alice", "role": "Data Scientist"})
	assert.NoError(t, err)
	assert.Equal(t, SubmitCreated, res.Status)
	assert.Equal(t, int64(1), res.ID)
	assert.Equal(t, int64(1), res.Version)

	res, err = records.Submit(ctx, "people", map[string]any{"id": res.ID, "name": "Alice", "role": "Team Lead"})
	assert.NoError(t, err)
	assert.Equal(t, SubmitUpdated, res.Status)
	assert.Equal(t, int64(1), res.ID)
	assert.Equal(t, int64(2), res.Version)

	rec, err := records.Get(ctx, "people", res.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Team Lead", rec["role"])
	assert.Equal(t, int64(2), rec.Version())

	// the previous version stays reachable
	rec, err = records.GetVersion(ctx, "people", res.ID, 1)
	assert.NoError(t, err)
	assert.Equal(t, "Data Scientist", rec["role"])
}

func TestRecordService_Submit_Invalid(t *testing.T) {
	records := newRecordService()
	ctx := context.TODO()

	tests := []struct {
		name    string
		table   string
		fields  map[string]any
		wantErr error
	}{
		{name: "unknown table", table: "unknown", fields: map[string]any{"name": "x"}, wantErr: store.ErrTableNotFound},
		{name: "no fields", table: "people", fields: map[string]any{}, wantErr: ErrEmptyPayload},
		{name: "only system fields", table: "people", fields: map[string]any{"status": "active"}, wantErr: ErrEmptyPayload},
		{name: "unknown column", table: "people", fields: map[string]any{"name": "x", "nickname": "y"}, wantErr: store.ErrConstraint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := records.Submit(ctx, tt.table, tt.fields)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRecordService_JSONColumns(t *testing.T) {
	records := newRecordService()
	ctx := context.TODO()

	res, err := records.Submit(ctx, "people", map[string]any{
		"name": "Alice",
		"tags": []string{"datascience", "python"},
	})
	assert.NoError(t, err)

	// the structured value survives the text storage round trip
	rec, err := records.Get(ctx, "people", res.ID)
	assert.NoError(t, err)
	assert.Equal(t, []any{"datascience", "python"}, rec["tags"])

	// a pre-encoded string passes through untouched
	res, err = records.Submit(ctx, "people", map[string]any{"name": "Bob", "tags": `["pm"]`})
	assert.NoError(t, err)

	rec, err = records.Get(ctx, "people", res.ID)
	assert.NoError(t, err)
	assert.Equal(t, []any{"pm"}, rec["tags"])
}

func TestRecordService_MalformedJSON(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	sch := schema.Default()
	st := store.NewGormStore(tester.TestDB(), sch)
	records := NewRecordService(sch, st, queue.NewNoopQueue())
	ctx := context.TODO()

	// written behind the service's back, eg. by an older tool
	id, _, err := st.InsertRecordVersion(ctx, "people", model.Record{"name": "Alice", "tags": "{broken"})
	assert.NoError(t, err)

	rec, err := records.Get(ctx, "people", id)
	assert.NoError(t, err)
	assert.Equal(t, "{broken", rec["tags"])
	assert.Equal(t, true, rec["tags_malformed"])
}

func TestRecordService_Delete(t *testing.T) {
	records := newRecordService()
	ctx := context.TODO()

	res, err := records.Submit(ctx, "people", map[string]any{"name": "Alice"})
	assert.NoError(t, err)

	err = records.Delete(ctx, "people", res.ID)
	assert.NoError(t, err)

	_, err = records.Get(ctx, "people", res.ID)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)

	// the delete marker is an ordinary version in the chain
	versions, err := records.ListVersions(ctx, "people", res.ID)
	assert.NoError(t, err)
	assert.Len(t, versions, 2)
	assert.False(t, versions[0].Deleted())
	assert.True(t, versions[1].Deleted())
	assert.Equal(t, "Alice", versions[1]["name"])

	// resubmitting the id revives the entity
	res, err = records.Submit(ctx, "people", map[string]any{"id": res.ID, "name": "Alice"})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), res.Version)

	rec, err := records.Get(ctx, "people", res.ID)
	assert.NoError(t, err)
	assert.False(t, rec.Deleted())

	err = records.Delete(ctx, "people", 99)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestRecordService_List(t *testing.T) {
	records := newRecordService()
	ctx := context.TODO()

	for _, name := range []string{"Alice", "Bob"} {
		_, err := records.Submit(ctx, "people", map[string]any{"name": name})
		assert.NoError(t, err)
	}
	assert.NoError(t, records.Delete(ctx, "people", 2))

	current, err := records.List(ctx, "people", false)
	assert.NoError(t, err)
	assert.Len(t, current, 1)
	assert.Equal(t, "Alice", current[0]["name"])

	all, err := records.List(ctx, "people", true)
	assert.NoError(t, err)
	assert.Len(t, all, 2)
	assert.True(t, all[1].Deleted())

	_, err = records.ListVersions(ctx, "people", 99)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}
