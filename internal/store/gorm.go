package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/emrgen/graphbase/internal/model"
	"github.com/emrgen/graphbase/internal/module"
	"github.com/emrgen/graphbase/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NewGormStore creates a store over a gorm connection. The schema
// decides which dynamic tables exist and what columns they carry.
func NewGormStore(db *gorm.DB, s *schema.Schema) *GormStore {
	return &GormStore{db: db, schema: s}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db     *gorm.DB
	schema *schema.Schema
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db, g.schema)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx, schema: g.schema})
	})
}

func (g *GormStore) GetCurrentRecord(ctx context.Context, table string, id int64) (model.Record, error) {
	if _, ok := g.schema.Table(table); !ok {
		return nil, ErrTableNotFound
	}

	var rows []map[string]any
	err := g.db.WithContext(ctx).Table(table).
		Where("id = ?", id).
		Order("version desc").
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, ErrRecordNotFound
	}

	rec := model.Record(rows[0])
	if rec.Deleted() {
		return nil, ErrRecordNotFound
	}

	return rec, nil
}

func (g *GormStore) GetRecordVersion(ctx context.Context, table string, id, version int64) (model.Record, error) {
	if _, ok := g.schema.Table(table); !ok {
		return nil, ErrTableNotFound
	}

	var rows []map[string]any
	err := g.db.WithContext(ctx).Table(table).
		Where("id = ? AND version = ?", id, version).
		Limit(1).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	if len(rows) == 0 {
		return nil, ErrRecordNotFound
	}

	return model.Record(rows[0]), nil
}

func (g *GormStore) ListCurrentRecords(ctx context.Context, table string) ([]model.Record, error) {
	return g.ListRecords(ctx, table, false)
}

func (g *GormStore) ListRecords(ctx context.Context, table string, includeDeleted bool) ([]model.Record, error) {
	if _, ok := g.schema.Table(table); !ok {
		return nil, ErrTableNotFound
	}

	sub := g.db.Table(table).
		Select("*, row_number() over (partition by id order by version desc) as rn")
	q := g.db.WithContext(ctx).Table("(?) as v", sub).Where("v.rn = 1")
	if !includeDeleted {
		q = q.Where("(v.status IS NULL OR v.status <> ?)", schema.StatusDeleted)
	}

	var rows []map[string]any
	if err := q.Order("v.id").Find(&rows).Error; err != nil {
		return nil, err
	}

	return toRecords(rows), nil
}

func (g *GormStore) ListRecordVersions(ctx context.Context, table string, id int64) ([]model.Record, error) {
	if _, ok := g.schema.Table(table); !ok {
		return nil, ErrTableNotFound
	}

	var rows []map[string]any
	err := g.db.WithContext(ctx).Table(table).
		Where("id = ?", id).
		Order("version asc").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	return toRecords(rows), nil
}

func (g *GormStore) InsertRecordVersion(ctx context.Context, table string, data model.Record) (int64, int64, error) {
	tbl, ok := g.schema.Table(table)
	if !ok {
		return 0, 0, ErrTableNotFound
	}

	row := data.Clone()
	for col := range row {
		if schema.IsSystemColumn(col) || tbl.HasColumn(col) {
			continue
		}
		return 0, 0, fmt.Errorf("%w: unknown column %q", ErrConstraint, col)
	}
	for _, c := range tbl.Columns {
		if c.Nullable || row.Has(c.Name) {
			continue
		}
		return 0, 0, fmt.Errorf("%w: missing value for column %q", ErrConstraint, c.Name)
	}

	var id, version int64
	err := g.Transaction(ctx, func(tx Store) error {
		txg := tx.(*GormStore)

		if row.Has(schema.ColID) {
			id = row.ID()
		} else {
			next, err := txg.NextRecordID(ctx, table)
			if err != nil {
				return err
			}
			id = next
		}
		row[schema.ColID] = id

		current, err := txg.maxVersion(ctx, table, id)
		if err != nil {
			return err
		}
		version = current + 1
		row[schema.ColVersion] = version
		if current == 0 || !row.Has(schema.ColStatus) {
			// a brand new entity is always born active
			row[schema.ColStatus] = schema.StatusActive
		}
		row[schema.ColTimestamp] = time.Now().UTC()
		if !row.Has(schema.ColCreatedBy) {
			if actor, ok := module.ActorFrom(ctx); ok {
				row[schema.ColCreatedBy] = actor
			}
		}

		err = txg.db.WithContext(ctx).Table(table).Create(map[string]any(row)).Error
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrIDConflict
			}
			return err
		}

		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	return id, version, nil
}

func (g *GormStore) NextRecordID(ctx context.Context, table string) (int64, error) {
	if _, ok := g.schema.Table(table); !ok {
		return 0, ErrTableNotFound
	}

	res := g.db.WithContext(ctx).Model(&model.RecordSequence{}).
		Where("table_name = ?", table).
		Update("next", gorm.Expr("next + 1"))
	if res.Error != nil {
		return 0, res.Error
	}

	if res.RowsAffected == 0 {
		// first allocation for this table, seed the counter from the
		// highest id already present
		var maxID sql.NullInt64
		err := g.db.WithContext(ctx).Table(table).Select("max(id)").Row().Scan(&maxID)
		if err != nil {
			return 0, err
		}

		seq := &model.RecordSequence{Table: table, Next: maxID.Int64 + 1}
		created := g.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(seq)
		if created.Error != nil {
			return 0, created.Error
		}
		if created.RowsAffected > 0 {
			return seq.Next, nil
		}

		// another writer seeded the counter first, take the next slot
		res = g.db.WithContext(ctx).Model(&model.RecordSequence{}).
			Where("table_name = ?", table).
			Update("next", gorm.Expr("next + 1"))
		if res.Error != nil {
			return 0, res.Error
		}
	}

	seq := &model.RecordSequence{}
	err := g.db.WithContext(ctx).Where("table_name = ?", table).First(seq).Error
	if err != nil {
		return 0, err
	}

	return seq.Next, nil
}

func (g *GormStore) CurrentLinkTargets(ctx context.Context, linkTable, sourceCol, targetCol string, sourceID int64) (map[int64]int64, error) {
	tbl, ok := g.schema.Table(linkTable)
	if !ok {
		return nil, ErrTableNotFound
	}
	for _, col := range []string{sourceCol, targetCol} {
		_, isFK := g.schema.Parent(linkTable, col)
		if !tbl.HasColumn(col) || !isFK {
			return nil, fmt.Errorf("%w: %s.%s", ErrNotLinkColumn, linkTable, col)
		}
	}

	// the source filter has to sit inside the window query, otherwise a
	// row deleted in its latest version could slip back in through an
	// older live version
	sub := g.db.Table(linkTable).
		Select(fmt.Sprintf("id, version, status, %s, row_number() over (partition by id order by version desc) as rn", quoteIdent(targetCol))).
		Where(fmt.Sprintf("%s = ?", quoteIdent(sourceCol)), sourceID)

	var rows []map[string]any
	err := g.db.WithContext(ctx).Table("(?) as v", sub).
		Where("v.rn = 1").
		Where("(v.status IS NULL OR v.status <> ?)", schema.StatusDeleted).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	targets := make(map[int64]int64, len(rows))
	for _, row := range rows {
		rec := model.Record(row)
		targets[model.ToInt64(row[targetCol])] = rec.ID()
	}

	return targets, nil
}

func (g *GormStore) CreateViewEvent(ctx context.Context, event *model.ViewEvent) error {
	return g.db.WithContext(ctx).Create(event).Error
}

func (g *GormStore) ListViewEvents(ctx context.Context, limit int) ([]*model.ViewEvent, error) {
	q := g.db.WithContext(ctx).Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var events []*model.ViewEvent
	if err := q.Find(&events).Error; err != nil {
		return nil, err
	}

	return events, nil
}

func (g *GormStore) DeleteViewEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := g.db.WithContext(ctx).Unscoped().
		Where("created_at < ?", cutoff).
		Delete(&model.ViewEvent{})
	return res.RowsAffected, res.Error
}

func (g *GormStore) maxVersion(ctx context.Context, table string, id int64) (int64, error) {
	var v sql.NullInt64
	err := g.db.WithContext(ctx).Table(table).
		Select("max(version)").
		Where("id = ?", id).
		Row().Scan(&v)
	if err != nil {
		return 0, err
	}

	return v.Int64, nil
}

func toRecords(rows []map[string]any) []model.Record {
	records := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		delete(row, "rn")
		records = append(records, model.Record(row))
	}

	return records
}

func quoteIdent(name string) string {
	return `"` + name + `"`
}
