package schema

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Versioning columns present on every table. They are owned by the store
// and must not be redeclared in a descriptor.
const (
	ColID        = "id"
	ColVersion   = "version"
	ColStatus    = "status"
	ColTimestamp = "timestamp"
	ColCreatedBy = "created_by"
)

const (
	StatusActive  = "active"
	StatusDeleted = "deleted"
)

// ColumnType enumerates the supported semantic column types. The set is
// closed: a descriptor with an unknown type fails to load instead of
// falling back to text.
type ColumnType string

const (
	ColumnText     ColumnType = "text"
	ColumnInteger  ColumnType = "integer"
	ColumnDecimal  ColumnType = "decimal"
	ColumnBoolean  ColumnType = "boolean"
	ColumnDatetime ColumnType = "datetime"
	ColumnEmail    ColumnType = "email"
	ColumnURL      ColumnType = "url"
	ColumnJSON     ColumnType = "json"
	ColumnHidden   ColumnType = "hidden"
)

// Valid reports whether t is a supported column type.
func (t ColumnType) Valid() bool {
	switch t {
	case ColumnText, ColumnInteger, ColumnDecimal, ColumnBoolean,
		ColumnDatetime, ColumnEmail, ColumnURL, ColumnJSON, ColumnHidden:
		return true
	}
	return false
}

// Column describes one domain column of a table.
type Column struct {
	Name     string     `yaml:"name" json:"name"`
	Type     ColumnType `yaml:"type" json:"type"`
	Nullable bool       `yaml:"nullable" json:"nullable"`
}

// SelfRef declares the role columns of a self-referential link table.
// Source is the column rendered as the edge source, eg. parent_id.
type SelfRef struct {
	Source string `yaml:"source" json:"source"`
	Target string `yaml:"target" json:"target"`
}

// Table is one named collection of versioned records.
type Table struct {
	Name    string   `yaml:"name" json:"name"`
	Columns []Column `yaml:"columns" json:"columns"`
	SelfRef *SelfRef `yaml:"self_ref,omitempty" json:"self_ref,omitempty"`
}

// Column returns the named domain column.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// HasColumn reports whether the table declares the domain column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.Column(name)
	return ok
}

// ForeignKey declares table.column -> parent_table.parent_column.
type ForeignKey struct {
	Table        string `yaml:"table" json:"table"`
	Column       string `yaml:"column" json:"column"`
	ParentTable  string `yaml:"parent_table" json:"parent_table"`
	ParentColumn string `yaml:"parent_column" json:"parent_column"`
}

// ColumnRef identifies a column within a table.
type ColumnRef struct {
	Table  string
	Column string
}

// Schema is the descriptor every component reads: tables with ordered
// columns, the node-table partition and the foreign-key index. It is
// loaded once at startup and treated as immutable afterwards; components
// receive it explicitly instead of reading a global.
type Schema struct {
	Tables      []*Table     `yaml:"tables" json:"tables"`
	NodeTables  []string     `yaml:"node_tables" json:"node_tables"`
	ForeignKeys []ForeignKey `yaml:"foreign_keys" json:"foreign_keys"`

	tables    map[string]*Table
	nodes     mapset.Set[string]
	fkIndex   map[ColumnRef]ColumnRef
	fkByTable map[string][]ForeignKey
}

var identPattern = regexp.MustCompile(`^[a-z][a-z0-9_]*$`)

// Load reads a YAML descriptor from path. Any parse or validation
// failure is returned as an error; callers treat it as fatal, the
// system cannot run without a schema.
func Load(path string) (*Schema, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema %s: %w", path, err)
	}

	s := &Schema{}
	if err := yaml.Unmarshal(buf, s); err != nil {
		return nil, fmt.Errorf("parse schema %s: %w", path, err)
	}

	if err := s.init(); err != nil {
		return nil, fmt.Errorf("invalid schema %s: %w", path, err)
	}

	return s, nil
}

// init validates the descriptor and builds the lookup indexes. It is
// called once by Load and Default; a Schema is read-only after it.
func (s *Schema) init() error {
	s.tables = make(map[string]*Table)
	s.nodes = mapset.NewSet[string]()
	s.fkIndex = make(map[ColumnRef]ColumnRef)
	s.fkByTable = make(map[string][]ForeignKey)

	if len(s.Tables) == 0 {
		return fmt.Errorf("no tables declared")
	}

	for _, t := range s.Tables {
		if !identPattern.MatchString(t.Name) {
			return fmt.Errorf("invalid table name %q", t.Name)
		}
		if _, ok := s.tables[t.Name]; ok {
			return fmt.Errorf("duplicate table %q", t.Name)
		}

		seen := make(map[string]bool)
		for _, c := range t.Columns {
			if !identPattern.MatchString(c.Name) {
				return fmt.Errorf("table %q: invalid column name %q", t.Name, c.Name)
			}
			if IsSystemColumn(c.Name) {
				return fmt.Errorf("table %q: column %q is reserved", t.Name, c.Name)
			}
			if seen[c.Name] {
				return fmt.Errorf("table %q: duplicate column %q", t.Name, c.Name)
			}
			if !c.Type.Valid() {
				return fmt.Errorf("table %q: column %q has unknown type %q", t.Name, c.Name, c.Type)
			}
			seen[c.Name] = true
		}

		s.tables[t.Name] = t
	}

	for _, name := range s.NodeTables {
		if _, ok := s.tables[name]; !ok {
			return fmt.Errorf("node table %q is not declared", name)
		}
		s.nodes.Add(name)
	}

	for _, fk := range s.ForeignKeys {
		child, ok := s.tables[fk.Table]
		if !ok {
			return fmt.Errorf("foreign key on unknown table %q", fk.Table)
		}
		if !child.HasColumn(fk.Column) {
			return fmt.Errorf("foreign key on unknown column %s.%s", fk.Table, fk.Column)
		}
		parent, ok := s.tables[fk.ParentTable]
		if !ok {
			return fmt.Errorf("foreign key %s.%s references unknown table %q", fk.Table, fk.Column, fk.ParentTable)
		}
		if fk.ParentColumn != ColID && !parent.HasColumn(fk.ParentColumn) {
			return fmt.Errorf("foreign key %s.%s references unknown column %s.%s", fk.Table, fk.Column, fk.ParentTable, fk.ParentColumn)
		}

		ref := ColumnRef{Table: fk.Table, Column: fk.Column}
		if _, ok := s.fkIndex[ref]; ok {
			return fmt.Errorf("duplicate foreign key on %s.%s", fk.Table, fk.Column)
		}
		s.fkIndex[ref] = ColumnRef{Table: fk.ParentTable, Column: fk.ParentColumn}
		s.fkByTable[fk.Table] = append(s.fkByTable[fk.Table], fk)
	}

	return s.resolveSelfRefs()
}

// resolveSelfRefs checks declared roles on self-referential link tables
// and guesses them from column names when absent.
func (s *Schema) resolveSelfRefs() error {
	for _, t := range s.Tables {
		fks := s.fkByTable[t.Name]
		selfRef := len(fks) == 2 && fks[0].ParentTable == fks[1].ParentTable && !s.IsNodeTable(t.Name)

		if t.SelfRef != nil {
			if !selfRef {
				return fmt.Errorf("table %q declares self_ref but is not a self-referential link table", t.Name)
			}
			if !fkColumn(fks, t.SelfRef.Source) || !fkColumn(fks, t.SelfRef.Target) {
				return fmt.Errorf("table %q: self_ref columns %q/%q are not its foreign keys", t.Name, t.SelfRef.Source, t.SelfRef.Target)
			}
			if t.SelfRef.Source == t.SelfRef.Target {
				return fmt.Errorf("table %q: self_ref source and target are the same column", t.Name)
			}
			continue
		}

		if !selfRef {
			continue
		}

		roles, ok := GuessRoles(fks[0].Column, fks[1].Column)
		if !ok {
			return fmt.Errorf("table %q: self-referential link table needs a self_ref declaration", t.Name)
		}
		logrus.Warnf("schema: table %q has no self_ref declaration, guessed source=%s target=%s from column names", t.Name, roles.Source, roles.Target)
		t.SelfRef = roles
	}

	return nil
}

// GuessRoles infers source/target roles of a self-referential link table
// from column name substrings (parent/child, from/to). Best-effort guess
// for descriptors derived from raw metadata; declared roles always win.
func GuessRoles(a, b string) (*SelfRef, bool) {
	pairs := [][2]string{{"parent", "child"}, {"from", "to"}, {"source", "target"}}
	for _, p := range pairs {
		if strings.Contains(a, p[0]) && strings.Contains(b, p[1]) {
			return &SelfRef{Source: a, Target: b}, true
		}
		if strings.Contains(b, p[0]) && strings.Contains(a, p[1]) {
			return &SelfRef{Source: b, Target: a}, true
		}
	}
	return nil, false
}

// Table returns the named table.
func (s *Schema) Table(name string) (*Table, bool) {
	t, ok := s.tables[name]
	return t, ok
}

// IsNodeTable reports whether the table's records render as graph nodes.
func (s *Schema) IsNodeTable(name string) bool {
	return s.nodes.Contains(name)
}

// Parent resolves a foreign-key column to the column it references.
func (s *Schema) Parent(table, column string) (ColumnRef, bool) {
	ref, ok := s.fkIndex[ColumnRef{Table: table, Column: column}]
	return ref, ok
}

// TableForeignKeys returns the foreign keys declared on a table, in
// declaration order.
func (s *Schema) TableForeignKeys(table string) []ForeignKey {
	return s.fkByTable[table]
}

// IsLinkTable reports whether the table is a many-to-many link table: a
// non-node table with exactly two foreign-key columns.
func (s *Schema) IsLinkTable(name string) bool {
	if s.IsNodeTable(name) {
		return false
	}
	if _, ok := s.tables[name]; !ok {
		return false
	}
	return len(s.fkByTable[name]) == 2
}

// LinkRoles returns which foreign-key column of a link table acts as the
// edge source and which as the edge target. Declared self_ref roles win,
// then recognizable column-name pairs, then the later-sorting column
// becomes the source.
func (s *Schema) LinkRoles(name string) (sourceCol, targetCol string, ok bool) {
	if !s.IsLinkTable(name) {
		return "", "", false
	}

	if ref := s.tables[name].SelfRef; ref != nil {
		return ref.Source, ref.Target, true
	}

	fks := s.fkByTable[name]
	a, b := fks[0].Column, fks[1].Column
	if roles, ok := GuessRoles(a, b); ok {
		return roles.Source, roles.Target, true
	}
	if a < b {
		return b, a, true
	}
	return a, b, true
}

// IsSystemColumn reports whether name is one of the versioning columns
// every record table carries.
func IsSystemColumn(name string) bool {
	switch name {
	case ColID, ColVersion, ColStatus, ColTimestamp, ColCreatedBy:
		return true
	}
	return false
}

func fkColumn(fks []ForeignKey, col string) bool {
	for _, fk := range fks {
		if fk.Column == col {
			return true
		}
	}
	return false
}
