package store

import (
	"context"
	"errors"
	"time"

	"github.com/emrgen/graphbase/internal/model"
)

var (
	// ErrTableNotFound is returned when a table is not in the schema.
	ErrTableNotFound = errors.New("table not found in schema")
	// ErrRecordNotFound is returned when an entity has no current version.
	ErrRecordNotFound = errors.New("record not found")
	// ErrConstraint is returned when a row does not fit the physical
	// storage, eg. a missing value for a required column.
	ErrConstraint = errors.New("record violates table constraints")
	// ErrIDConflict is returned when an insert collides on (id, version).
	ErrIDConflict = errors.New("record id conflict")
	// ErrNotLinkColumn is returned when a link query names a column that
	// is not a foreign key of the link table.
	ErrNotLinkColumn = errors.New("column is not a foreign key of the link table")
)

// Store is the persistence boundary of the core: append-only versioned
// records, current-link lookups and view events.
type Store interface {
	RecordStore
	LinkStore
	EventStore
	// Transaction runs f against a store bound to a single transaction.
	Transaction(ctx context.Context, f func(tx Store) error) error
	// Migrate creates the system tables and the schema-driven tables.
	Migrate() error
}

type RecordStore interface {
	// GetCurrentRecord returns the latest version of an entity, or
	// ErrRecordNotFound when it does not exist or is soft-deleted.
	GetCurrentRecord(ctx context.Context, table string, id int64) (model.Record, error)
	// GetRecordVersion returns one explicit version from the history,
	// soft-deleted versions included.
	GetRecordVersion(ctx context.Context, table string, id, version int64) (model.Record, error)
	// ListCurrentRecords returns the current non-deleted rows of a
	// table, ordered by id ascending.
	ListCurrentRecords(ctx context.Context, table string) ([]model.Record, error)
	// ListRecords returns the latest version per id, keeping entities
	// whose latest version is soft-deleted when includeDeleted is set.
	ListRecords(ctx context.Context, table string, includeDeleted bool) ([]model.Record, error)
	// ListRecordVersions returns the full version chain of an entity,
	// oldest first.
	ListRecordVersions(ctx context.Context, table string, id int64) ([]model.Record, error)
	// InsertRecordVersion appends a new version and returns the record
	// id and the version written. A record without an id allocates one
	// and starts at version 1; otherwise the next version for its id is
	// appended. The row is stamped with the write time and the acting
	// user from the context. A failed insert touches zero rows.
	InsertRecordVersion(ctx context.Context, table string, data model.Record) (int64, int64, error)
	// NextRecordID allocates the next entity id for a table. Call it
	// inside a Transaction together with the insert that uses the id.
	NextRecordID(ctx context.Context, table string) (int64, error)
}

type LinkStore interface {
	// CurrentLinkTargets returns target id -> link record id for every
	// link row whose latest version is not deleted and whose source
	// column matches sourceID.
	CurrentLinkTargets(ctx context.Context, linkTable, sourceCol, targetCol string, sourceID int64) (map[int64]int64, error)
}

type EventStore interface {
	// CreateViewEvent appends a view event.
	CreateViewEvent(ctx context.Context, event *model.ViewEvent) error
	// ListViewEvents returns the most recent view events.
	ListViewEvents(ctx context.Context, limit int) ([]*model.ViewEvent, error)
	// DeleteViewEventsBefore removes view events older than cutoff and
	// returns the number of rows removed.
	DeleteViewEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
