package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/emrgen/graphbase/internal/model"
	"github.com/emrgen/graphbase/internal/module"
	"github.com/emrgen/graphbase/internal/schema"
	"github.com/emrgen/graphbase/internal/store"
	"github.com/emrgen/graphbase/internal/tester"
	"github.com/stretchr/testify/assert"
)

func newStore() *store.GormStore {
	tester.RemoveDBFile()
	tester.Setup()

	return store.NewGormStore(tester.TestDB(), schema.Default())
}

func TestGormStore_InsertRecordVersion(t *testing.T) {
	st := newStore()
	ctx := module.WithActor(context.TODO(), 7)

	id, version, err := st.InsertRecordVersion(ctx, "people", model.Record{"name": "Alice"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, int64(1), version)

	// a second entity allocates the next id
	id, version, err = st.InsertRecordVersion(ctx, "people", model.Record{"name": "Bob"})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), id)
	assert.Equal(t, int64(1), version)

	// a payload with an id appends the next version of that entity
	id, version, err = st.InsertRecordVersion(ctx, "people", model.Record{"id": int64(1), "name": "Alice Cooper"})
	assert.NoError(t, err)
	assert.Equal(t, int64(1), id)
	assert.Equal(t, int64(2), version)

	rec, err := st.GetCurrentRecord(ctx, "people", 1)
	assert.NoError(t, err)
	assert.Equal(t, "Alice Cooper", rec["name"])
	assert.Equal(t, int64(2), rec.Version())
	assert.Equal(t, schema.StatusActive, rec.Status())
	assert.Equal(t, int64(7), model.ToInt64(rec[schema.ColCreatedBy]))
}

func TestGormStore_InsertRecordVersion_Invalid(t *testing.T) {
	st := newStore()
	ctx := context.TODO()

	tests := []struct {
		name    string
		table   string
		row     model.Record
		wantErr error
	}{
		{name: "unknown table", table: "unknown", row: model.Record{"name": "x"}, wantErr: store.ErrTableNotFound},
		{name: "unknown column", table: "people", row: model.Record{"name": "x", "nickname": "y"}, wantErr: store.ErrConstraint},
		{name: "missing required column", table: "people", row: model.Record{"role": "y"}, wantErr: store.ErrConstraint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := st.InsertRecordVersion(ctx, tt.table, tt.row)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	// a failed insert leaves the table untouched
	records, err := st.ListRecords(ctx, "people", true)
	assert.NoError(t, err)
	assert.Len(t, records, 0)
}

func TestGormStore_InsertRecordVersion_BornActive(t *testing.T) {
	st := newStore()
	ctx := context.TODO()

	// a brand new entity cannot start deleted
	id, _, err := st.InsertRecordVersion(ctx, "people", model.Record{"name": "Ghost", "status": schema.StatusDeleted})
	assert.NoError(t, err)

	rec, err := st.GetCurrentRecord(ctx, "people", id)
	assert.NoError(t, err)
	assert.Equal(t, schema.StatusActive, rec.Status())
}

func TestGormStore_GetCurrentRecord(t *testing.T) {
	st := newStore()
	ctx := context.TODO()

	_, err := st.GetCurrentRecord(ctx, "unknown", 1)
	assert.ErrorIs(t, err, store.ErrTableNotFound)

	_, err = st.GetCurrentRecord(ctx, "people", 1)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)

	id, _, err := st.InsertRecordVersion(ctx, "people", model.Record{"name": "Alice"})
	assert.NoError(t, err)

	// soft delete by appending a deleted version
	_, _, err = st.InsertRecordVersion(ctx, "people", model.Record{"id": id, "name": "Alice", "status": schema.StatusDeleted})
	assert.NoError(t, err)

	_, err = st.GetCurrentRecord(ctx, "people", id)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)

	// the history keeps both versions
	v1, err := st.GetRecordVersion(ctx, "people", id, 1)
	assert.NoError(t, err)
	assert.False(t, v1.Deleted())

	v2, err := st.GetRecordVersion(ctx, "people", id, 2)
	assert.NoError(t, err)
	assert.True(t, v2.Deleted())

	_, err = st.GetRecordVersion(ctx, "people", id, 3)
	assert.ErrorIs(t, err, store.ErrRecordNotFound)
}

func TestGormStore_ListRecords(t *testing.T) {
	st := newStore()
	ctx := context.TODO()

	for _, name := range []string{"Alice", "Bob", "Carol"} {
		_, _, err := st.InsertRecordVersion(ctx, "people", model.Record{"name": name})
		assert.NoError(t, err)
	}
	_, _, err := st.InsertRecordVersion(ctx, "people", model.Record{"id": int64(2), "name": "Bob", "status": schema.StatusDeleted})
	assert.NoError(t, err)

	current, err := st.ListRecords(ctx, "people", false)
	assert.NoError(t, err)
	assert.Len(t, current, 2)
	assert.Equal(t, int64(1), current[0].ID())
	assert.Equal(t, int64(3), current[1].ID())

	all, err := st.ListRecords(ctx, "people", true)
	assert.NoError(t, err)
	assert.Len(t, all, 3)
	assert.True(t, all[1].Deleted())

	// the window row number never leaks out
	_, leaked := all[0]["rn"]
	assert.False(t, leaked)
}

func TestGormStore_ListRecordVersions(t *testing.T) {
	st := newStore()
	ctx := context.TODO()

	id, _, err := st.InsertRecordVersion(ctx, "people", model.Record{"name": "Alice"})
	assert.NoError(t, err)
	_, _, err = st.InsertRecordVersion(ctx, "people", model.Record{"id": id, "name": "Alice", "status": schema.StatusDeleted})
	assert.NoError(t, err)
	_, _, err = st.InsertRecordVersion(ctx, "people", model.Record{"id": id, "name": "Alice Cooper"})
	assert.NoError(t, err)

	versions, err := st.ListRecordVersions(ctx, "people", id)
	assert.NoError(t, err)
	assert.Len(t, versions, 3)
	for i, v := range versions {
		assert.Equal(t, int64(i+1), v.Version())
	}
	assert.True(t, versions[1].Deleted())
	assert.False(t, versions[2].Deleted())
}

func TestGormStore_NextRecordID(t *testing.T) {
	st := newStore()
	ctx := context.TODO()

	next, err := st.NextRecordID(ctx, "people")
	assert.NoError(t, err)
	assert.Equal(t, int64(1), next)

	next, err = st.NextRecordID(ctx, "people")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), next)

	// the counter seeds from the highest id already present
	_, _, err = st.InsertRecordVersion(ctx, "organisations", model.Record{"id": int64(5), "name": "Data Org"})
	assert.NoError(t, err)

	next, err = st.NextRecordID(ctx, "organisations")
	assert.NoError(t, err)
	assert.Equal(t, int64(6), next)

	_, err = st.NextRecordID(ctx, "unknown")
	assert.ErrorIs(t, err, store.ErrTableNotFound)
}

func TestGormStore_CurrentLinkTargets(t *testing.T) {
	st := newStore()
	ctx := context.TODO()

	rows := []model.Record{
		{"organisation_id": int64(1), "person_id": int64(1), "type": "member"},
		{"organisation_id": int64(1), "person_id": int64(2), "type": "member"},
		{"organisation_id": int64(2), "person_id": int64(1), "type": "member"},
	}
	for _, row := range rows {
		_, _, err := st.InsertRecordVersion(ctx, "organisation_people_links", row)
		assert.NoError(t, err)
	}

	targets, err := st.CurrentLinkTargets(ctx, "organisation_people_links", "organisation_id", "person_id", 1)
	assert.NoError(t, err)
	assert.Equal(t, map[int64]int64{1: 1, 2: 2}, targets)

	// a soft deleted link row drops out of the current set
	_, _, err = st.InsertRecordVersion(ctx, "organisation_people_links", model.Record{
		"id": int64(2), "organisation_id": int64(1), "person_id": int64(2), "status": schema.StatusDeleted,
	})
	assert.NoError(t, err)

	targets, err = st.CurrentLinkTargets(ctx, "organisation_people_links", "organisation_id", "person_id", 1)
	assert.NoError(t, err)
	assert.Equal(t, map[int64]int64{1: 1}, targets)

	_, err = st.CurrentLinkTargets(ctx, "organisation_people_links", "type", "person_id", 1)
	assert.ErrorIs(t, err, store.ErrNotLinkColumn)

	_, err = st.CurrentLinkTargets(ctx, "unknown", "a", "b", 1)
	assert.ErrorIs(t, err, store.ErrTableNotFound)
}

func TestGormStore_CurrentLinkTargets_SelfReferential(t *testing.T) {
	st := newStore()
	ctx := context.TODO()

	_, _, err := st.InsertRecordVersion(ctx, "initiative_initiative_links",
		model.Record{"parent_id": int64(1), "child_id": int64(2)})
	assert.NoError(t, err)

	// the same row answers both traversal directions, each one keyed by
	// the column passed as the source
	children, err := st.CurrentLinkTargets(ctx, "initiative_initiative_links", "parent_id", "child_id", 1)
	assert.NoError(t, err)
	assert.Equal(t, map[int64]int64{2: 1}, children)

	parents, err := st.CurrentLinkTargets(ctx, "initiative_initiative_links", "child_id", "parent_id", 2)
	assert.NoError(t, err)
	assert.Equal(t, map[int64]int64{1: 1}, parents)

	children, err = st.CurrentLinkTargets(ctx, "initiative_initiative_links", "parent_id", "child_id", 2)
	assert.NoError(t, err)
	assert.Empty(t, children)

	parents, err = st.CurrentLinkTargets(ctx, "initiative_initiative_links", "child_id", "parent_id", 1)
	assert.NoError(t, err)
	assert.Empty(t, parents)
}

func TestGormStore_ViewEvents(t *testing.T) {
	st := newStore()
	ctx := context.TODO()

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		event := &model.ViewEvent{
			ActorID:        1,
			RequestedTable: "people",
			RequestedID:    int64(i + 1),
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		assert.NoError(t, st.CreateViewEvent(ctx, event))
	}

	events, err := st.ListViewEvents(ctx, 2)
	assert.NoError(t, err)
	assert.Len(t, events, 2)
	assert.Equal(t, int64(3), events[0].RequestedID)
	assert.Equal(t, int64(2), events[1].RequestedID)

	removed, err := st.DeleteViewEventsBefore(ctx, base.Add(90*time.Second))
	assert.NoError(t, err)
	assert.Equal(t, int64(2), removed)

	events, err = st.ListViewEvents(ctx, 0)
	assert.NoError(t, err)
	assert.Len(t, events, 1)
	assert.Equal(t, int64(3), events[0].RequestedID)
}
