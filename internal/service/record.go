package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/emrgen/graphbase/internal/model"
	"github.com/emrgen/graphbase/internal/module"
	"github.com/emrgen/graphbase/internal/queue"
	"github.com/emrgen/graphbase/internal/schema"
	"github.com/emrgen/graphbase/internal/store"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	// SubmitCreated means the submission wrote the first version of a
	// new entity.
	SubmitCreated = "created"
	// SubmitUpdated means the submission appended a version to an
	// existing entity.
	SubmitUpdated = "updated"
)

// SubmitResult reports what a record submission did.
type SubmitResult struct {
	ID      int64  `json:"id"`
	Version int64  `json:"version"`
	Status  string `json:"status"`
}

// NewRecordService creates a service for submitting and reading
// versioned records. queue may be nil when change events are not wanted.
func NewRecordService(s *schema.Schema, st store.Store, q queue.RecordQueue) *RecordService {
	return &RecordService{
		schema: s,
		store:  st,
		queue:  q,
	}
}

// RecordService manages the append-only version chains of entity and
// link records.
type RecordService struct {
	schema *schema.Schema
	store  store.Store
	queue  queue.RecordQueue
}

// Submit appends a record version. A payload without an id creates a
// new entity, a payload with one appends the next version for it.
func (r *RecordService) Submit(ctx context.Context, table string, fields map[string]any) (*SubmitResult, error) {
	tbl, ok := r.schema.Table(table)
	if !ok {
		return nil, store.ErrTableNotFound
	}

	row := model.Record(fields).Clone()
	if !hasDomainColumns(row) {
		return nil, ErrEmptyPayload
	}

	// structured values destined for json columns are stored as text
	for _, c := range tbl.Columns {
		if c.Type != schema.ColumnJSON || !row.Has(c.Name) {
			continue
		}
		if _, ok := row[c.Name].(string); ok {
			continue
		}
		data, err := json.Marshal(row[c.Name])
		if err != nil {
			return nil, err
		}
		row[c.Name] = string(data)
	}

	id, version, err := r.store.InsertRecordVersion(ctx, table, row)
	if err != nil {
		return nil, err
	}

	result := &SubmitResult{ID: id, Version: version, Status: SubmitUpdated}
	if version == 1 {
		result.Status = SubmitCreated
	}

	publishChange(ctx, r.queue, table, id, version, schema.StatusActive)

	return result, nil
}

// Get returns the current version of an entity with json columns
// decoded into structured values.
func (r *RecordService) Get(ctx context.Context, table string, id int64) (model.Record, error) {
	rec, err := r.store.GetCurrentRecord(ctx, table, id)
	if err != nil {
		return nil, err
	}

	return r.decode(table, rec), nil
}

// GetVersion returns one explicit version from the history.
func (r *RecordService) GetVersion(ctx context.Context, table string, id, version int64) (model.Record, error) {
	rec, err := r.store.GetRecordVersion(ctx, table, id, version)
	if err != nil {
		return nil, err
	}

	return r.decode(table, rec), nil
}

// List returns the latest version per entity, ordered by id.
func (r *RecordService) List(ctx context.Context, table string, includeDeleted bool) ([]model.Record, error) {
	records, err := r.store.ListRecords(ctx, table, includeDeleted)
	if err != nil {
		return nil, err
	}

	for i, rec := range records {
		records[i] = r.decode(table, rec)
	}

	return records, nil
}

// ListVersions returns the full version chain of an entity, oldest
// first.
func (r *RecordService) ListVersions(ctx context.Context, table string, id int64) ([]model.Record, error) {
	records, err := r.store.ListRecordVersions(ctx, table, id)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, store.ErrRecordNotFound
	}

	for i, rec := range records {
		records[i] = r.decode(table, rec)
	}

	return records, nil
}

// Delete soft-deletes an entity by appending a copy of its current
// version with status deleted. The history stays readable.
func (r *RecordService) Delete(ctx context.Context, table string, id int64) error {
	var version int64
	err := r.store.Transaction(ctx, func(tx store.Store) error {
		rec, err := tx.GetCurrentRecord(ctx, table, id)
		if err != nil {
			return err
		}

		next := rec.Clone()
		delete(next, schema.ColVersion)
		delete(next, schema.ColTimestamp)
		delete(next, schema.ColCreatedBy)
		next[schema.ColStatus] = schema.StatusDeleted

		_, version, err = tx.InsertRecordVersion(ctx, table, next)
		return err
	})
	if err != nil {
		return err
	}

	publishChange(ctx, r.queue, table, id, version, schema.StatusDeleted)

	return nil
}

// decode unpacks json columns for reading. A value that fails to parse
// is kept raw and flagged with a "<column>_malformed" marker instead of
// failing the whole record.
func (r *RecordService) decode(table string, rec model.Record) model.Record {
	tbl, ok := r.schema.Table(table)
	if !ok {
		return rec
	}

	for _, c := range tbl.Columns {
		if c.Type != schema.ColumnJSON {
			continue
		}
		raw, ok := rec[c.Name].(string)
		if !ok || raw == "" {
			continue
		}

		var decoded any
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			logrus.Warnf("record %s/%d has malformed json in column %s: %v", table, rec.ID(), c.Name, err)
			rec[c.Name+"_malformed"] = true
			continue
		}
		rec[c.Name] = decoded
	}

	return rec
}

// publishChange emits a change event after a committed write. Delivery
// is best effort, a queue failure never fails the write itself.
func publishChange(ctx context.Context, q queue.RecordQueue, table string, id, version int64, status string) {
	if q == nil {
		return
	}

	actor, _ := module.ActorFrom(ctx)
	event := &queue.ChangeEvent{
		ID:       uuid.New().String(),
		Table:    table,
		RecordID: id,
		Version:  version,
		Status:   status,
		ActorID:  actor,
		At:       time.Now().UTC(),
	}

	if err := q.PublishChange(ctx, event); err != nil {
		logrus.Errorf("publishing change event for %s/%d: %v", table, id, err)
	}
}

func hasDomainColumns(rec model.Record) bool {
	for col := range rec {
		if !schema.IsSystemColumn(col) {
			return true
		}
	}
	return false
}
