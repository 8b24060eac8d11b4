package model

import (
	"fmt"
	"strconv"

	"github.com/emrgen/graphbase/internal/schema"
)

// Record is one stored row of a schema-driven table. Column values carry
// whatever the driver scanned them as; the helpers below coerce the
// versioning columns.
type Record map[string]any

// ID returns the logical entity id of the row.
func (r Record) ID() int64 {
	return ToInt64(r[schema.ColID])
}

// Version returns the version of the row.
func (r Record) Version() int64 {
	return ToInt64(r[schema.ColVersion])
}

// Status returns the status of the row, empty when unset.
func (r Record) Status() string {
	switch v := r[schema.ColStatus].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	}
	return ""
}

// Deleted reports whether the row is a soft-delete marker.
func (r Record) Deleted() bool {
	return r.Status() == schema.StatusDeleted
}

// Has reports whether the column carries a non-nil value.
func (r Record) Has(col string) bool {
	v, ok := r[col]
	return ok && v != nil
}

// Clone returns a shallow copy of the record.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Label returns the display label of the row: the name column when
// present, then Name, then email, then "<table> <id>".
func (r Record) Label(table string) string {
	for _, col := range []string{"name", "Name", "email"} {
		if s := asString(r[col]); s != "" {
			return s
		}
	}
	return fmt.Sprintf("%s %d", table, r.ID())
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	}
	return ""
}

// ToInt64 coerces a scanned or decoded column value to int64. JSON
// bodies decode numbers as float64, sqlite scans them as int64.
func ToInt64(v any) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case uint:
		return int64(n)
	case uint32:
		return int64(n)
	case uint64:
		return int64(n)
	case float64:
		return int64(n)
	case float32:
		return int64(n)
	case string:
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return 0
		}
		return i
	}
	return 0
}
