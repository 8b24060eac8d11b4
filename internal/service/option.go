package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/emrgen/graphbase/internal/model"
	"github.com/emrgen/graphbase/internal/schema"
	"github.com/emrgen/graphbase/internal/store"
)

// Option is one entry of a selection list.
type Option struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// OptionQuery selects which records of a table become options. ValueCol
// defaults to the id column and LabelCol to the record label heuristic.
// ExcludeID drops one record, typically the one a form is editing so it
// cannot link to itself.
type OptionQuery struct {
	Table     string
	ValueCol  string
	LabelCol  string
	ExcludeID int64
}

// NewOptionService creates a service producing selection lists from
// current records.
func NewOptionService(s *schema.Schema, st store.Store) *OptionService {
	return &OptionService{
		schema: s,
		store:  st,
	}
}

type OptionService struct {
	schema *schema.Schema
	store  store.Store
}

// ListOptions returns (label, value) pairs for the current records of a
// table, sorted by the value column ascending. Soft-deleted records
// never appear.
func (o *OptionService) ListOptions(ctx context.Context, query OptionQuery) ([]Option, error) {
	tbl, ok := o.schema.Table(query.Table)
	if !ok {
		return nil, fmt.Errorf("%w: %s", store.ErrTableNotFound, query.Table)
	}

	valueCol := query.ValueCol
	if valueCol == "" {
		valueCol = schema.ColID
	}
	if !schema.IsSystemColumn(valueCol) && !tbl.HasColumn(valueCol) {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, query.Table, valueCol)
	}
	if query.LabelCol != "" && !schema.IsSystemColumn(query.LabelCol) && !tbl.HasColumn(query.LabelCol) {
		return nil, fmt.Errorf("%w: %s.%s", ErrUnknownColumn, query.Table, query.LabelCol)
	}

	records, err := o.store.ListCurrentRecords(ctx, query.Table)
	if err != nil {
		return nil, err
	}

	options := make([]Option, 0, len(records))
	for _, rec := range records {
		if query.ExcludeID != 0 && rec.ID() == query.ExcludeID {
			continue
		}
		options = append(options, Option{
			Label: optionLabel(rec, query),
			Value: rec[valueCol],
		})
	}

	sort.SliceStable(options, func(i, j int) bool {
		return lessValue(options[i].Value, options[j].Value)
	})

	return options, nil
}

func optionLabel(rec model.Record, query OptionQuery) string {
	if query.LabelCol != "" {
		switch v := rec[query.LabelCol].(type) {
		case string:
			if v != "" {
				return v
			}
		case []byte:
			if len(v) > 0 {
				return string(v)
			}
		}
	}
	return rec.Label(query.Table)
}

// lessValue orders option values numerically when both sides are
// numbers, lexicographically otherwise.
func lessValue(a, b any) bool {
	an, aok := asNumber(a)
	bn, bok := asNumber(b)
	if aok && bok {
		return an < bn
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
