package service

import (
	"context"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/graphbase/internal/model"
	"github.com/emrgen/graphbase/internal/queue"
	"github.com/emrgen/graphbase/internal/schema"
	"github.com/emrgen/graphbase/internal/store"
)

const (
	// DefaultLinkType is written into the type column of freshly created
	// link rows when the caller does not name one.
	DefaultLinkType = "linked"

	linkTypeColumn = "type"
)

// SyncRequest declares the desired link set of one source entity in one
// link table.
type SyncRequest struct {
	LinkTable string  `json:"link_table"`
	SourceCol string  `json:"source_col"`
	TargetCol string  `json:"target_col"`
	SourceID  int64   `json:"source_id"`
	TargetIDs []int64 `json:"target_ids"`
	LinkType  string  `json:"link_type"`
}

// SyncResult reports which targets were linked and unlinked. Kept
// counts the targets that were already linked and stayed untouched.
type SyncResult struct {
	Added   []int64 `json:"added"`
	Removed []int64 `json:"removed"`
	Kept    int     `json:"kept"`
}

// NewLinkService creates a service reconciling link tables against
// desired target sets.
func NewLinkService(s *schema.Schema, st store.Store, q queue.RecordQueue) *LinkService {
	return &LinkService{
		schema: s,
		store:  st,
		queue:  q,
	}
}

// LinkService reconciles the links of a source entity. Links are
// ordinary versioned records, so removals append deleted versions and
// additions append fresh rows instead of touching history.
type LinkService struct {
	schema *schema.Schema
	store  store.Store
	queue  queue.RecordQueue
}

// Sync makes the stored link set of req.SourceID equal to
// req.TargetIDs. Existing matching links are left untouched, missing
// ones are created and surplus ones soft-deleted, all in one
// transaction.
func (l *LinkService) Sync(ctx context.Context, req *SyncRequest) (*SyncResult, error) {
	tbl, ok := l.schema.Table(req.LinkTable)
	if !ok {
		return nil, store.ErrTableNotFound
	}
	if !l.schema.IsLinkTable(req.LinkTable) {
		return nil, ErrNotLinkTable
	}

	desired := mapset.NewSet(req.TargetIDs...)

	var result *SyncResult
	var changes []changedRow
	err := l.store.Transaction(ctx, func(tx store.Store) error {
		current, err := tx.CurrentLinkTargets(ctx, req.LinkTable, req.SourceCol, req.TargetCol, req.SourceID)
		if err != nil {
			return err
		}

		existing := mapset.NewSetFromMapKeys(current)
		toAdd := sortedIDs(desired.Difference(existing))
		toRemove := sortedIDs(existing.Difference(desired))

		for _, target := range toRemove {
			rec, err := tx.GetCurrentRecord(ctx, req.LinkTable, current[target])
			if err != nil {
				return err
			}

			next := rec.Clone()
			delete(next, schema.ColVersion)
			delete(next, schema.ColTimestamp)
			delete(next, schema.ColCreatedBy)
			next[schema.ColStatus] = schema.StatusDeleted

			id, version, err := tx.InsertRecordVersion(ctx, req.LinkTable, next)
			if err != nil {
				return err
			}
			changes = append(changes, changedRow{id: id, version: version, status: schema.StatusDeleted})
		}

		for _, target := range toAdd {
			row := model.Record{
				req.SourceCol: req.SourceID,
				req.TargetCol: target,
			}
			if tbl.HasColumn(linkTypeColumn) {
				linkType := req.LinkType
				if linkType == "" {
					linkType = DefaultLinkType
				}
				row[linkTypeColumn] = linkType
			}

			id, version, err := tx.InsertRecordVersion(ctx, req.LinkTable, row)
			if err != nil {
				return err
			}
			changes = append(changes, changedRow{id: id, version: version, status: schema.StatusActive})
		}

		result = &SyncResult{
			Added:   toAdd,
			Removed: toRemove,
			Kept:    desired.Intersect(existing).Cardinality(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, c := range changes {
		publishChange(ctx, l.queue, req.LinkTable, c.id, c.version, c.status)
	}

	return result, nil
}

type changedRow struct {
	id      int64
	version int64
	status  string
}

func sortedIDs(set mapset.Set[int64]) []int64 {
	ids := set.ToSlice()
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
