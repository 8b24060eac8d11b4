package graph

import (
	"context"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/emrgen/graphbase/internal/model"
	"github.com/emrgen/graphbase/internal/schema"
	"github.com/emrgen/graphbase/internal/store"
	"github.com/sirupsen/logrus"
)

// BuildOptions selects what ends up in the materialized graph.
type BuildOptions struct {
	// IncludeDeleted keeps soft-deleted records as nodes. Edges owned
	// by a deleted row stay dropped either way.
	IncludeDeleted bool
	// NodeTypes keeps only nodes of the named tables. Applied last, so
	// it never widens what the neighborhood filter selected.
	NodeTypes []string
	// Seeds are node ids like "people-1" the neighborhood filter starts
	// from. Without seeds the filter is off.
	Seeds []string
	// Radius bounds the hops from the seeds. Negative means unbounded.
	Radius int
	// TraversableTypes gates which node types the neighborhood walk may
	// expand through. Empty means every type.
	TraversableTypes []string
}

// NewBuilder creates a graph builder over the schema and store.
func NewBuilder(s *schema.Schema, st store.Store) *Builder {
	return &Builder{
		schema: s,
		store:  st,
	}
}

// Builder materializes the current state of every table into nodes and
// edges.
type Builder struct {
	schema *schema.Schema
	store  store.Store
}

// BuildGraph loads the latest version of every record and renders node
// tables as nodes, foreign-key columns and link tables as edges. A table
// that fails to load degrades to an empty one so a broken table cannot
// take the whole canvas down.
func (b *Builder) BuildGraph(ctx context.Context, opts BuildOptions) (*Graph, error) {
	rows := b.loadRows(ctx, opts.IncludeDeleted)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	g := &Graph{Nodes: []*Node{}, Edges: []*Edge{}}
	nodeIDs := mapset.NewSet[string]()

	for _, table := range b.schema.NodeTables {
		for _, rec := range rows[table] {
			node := &Node{
				ID:         NodeID(table, rec.ID()),
				Label:      rec.Label(table),
				Type:       table,
				Status:     rec.Status(),
				Properties: rec,
			}
			g.Nodes = append(g.Nodes, node)
			nodeIDs.Add(node.ID)
		}
	}

	for _, fk := range b.schema.ForeignKeys {
		if !b.schema.IsNodeTable(fk.Table) {
			continue
		}
		b.addDirectEdges(g, nodeIDs, rows[fk.Table], fk)
	}

	for _, t := range b.schema.Tables {
		if !b.schema.IsLinkTable(t.Name) {
			continue
		}
		b.addLinkEdges(g, nodeIDs, rows[t.Name], t.Name)
	}

	g = FilterByRadius(g, opts.Seeds, opts.Radius, opts.TraversableTypes)
	g = FilterByTypes(g, opts.NodeTypes)

	return g, nil
}

// addDirectEdges renders a foreign-key column of a node table as edges
// from the referenced parent to the owning row.
func (b *Builder) addDirectEdges(g *Graph, nodeIDs mapset.Set[string], records []model.Record, fk schema.ForeignKey) {
	for _, rec := range records {
		if rec.Deleted() || !rec.Has(fk.Column) {
			continue
		}

		src := NodeID(fk.ParentTable, model.ToInt64(rec[fk.Column]))
		tgt := NodeID(fk.Table, rec.ID())
		if !nodeIDs.Contains(src) || !nodeIDs.Contains(tgt) {
			continue
		}

		g.Edges = append(g.Edges, &Edge{
			ID:     "fk-" + src + "-" + tgt,
			Source: src,
			Target: tgt,
			Label:  directEdgeLabel(fk.Column),
			Status: rec.Status(),
		})
	}
}

// addLinkEdges renders the rows of a link table as edges between the two
// referenced records.
func (b *Builder) addLinkEdges(g *Graph, nodeIDs mapset.Set[string], records []model.Record, table string) {
	srcCol, tgtCol, ok := b.schema.LinkRoles(table)
	if !ok {
		return
	}
	srcRef, _ := b.schema.Parent(table, srcCol)
	tgtRef, _ := b.schema.Parent(table, tgtCol)

	for _, rec := range records {
		if rec.Deleted() || !rec.Has(srcCol) || !rec.Has(tgtCol) {
			continue
		}

		src := NodeID(srcRef.Table, model.ToInt64(rec[srcCol]))
		tgt := NodeID(tgtRef.Table, model.ToInt64(rec[tgtCol]))
		if !nodeIDs.Contains(src) || !nodeIDs.Contains(tgt) {
			continue
		}

		g.Edges = append(g.Edges, &Edge{
			ID:        NodeID(table, rec.ID()),
			Source:    src,
			Target:    tgt,
			Label:     linkEdgeLabel(table, rec),
			Status:    rec.Status(),
			TableName: table,
			ObjectID:  rec.ID(),
		})
	}
}

// loadRows fetches the latest version of every record, table by table.
// Link tables only ever contribute live rows; node tables keep their
// deleted rows when asked to.
func (b *Builder) loadRows(ctx context.Context, includeDeleted bool) map[string][]model.Record {
	rows := make(map[string][]model.Record, len(b.schema.Tables))
	for _, t := range b.schema.Tables {
		var (
			records []model.Record
			err     error
		)
		if b.schema.IsNodeTable(t.Name) {
			records, err = b.store.ListRecords(ctx, t.Name, includeDeleted)
		} else {
			records, err = b.store.ListCurrentRecords(ctx, t.Name)
		}
		if err != nil {
			logrus.Errorf("loading %s for graph build: %v", t.Name, err)
			records = nil
		}
		rows[t.Name] = records
	}

	return rows
}

// directEdgeLabel turns a foreign-key column name into a display label,
// eg. responsible_person -> "responsible person".
func directEdgeLabel(col string) string {
	return strings.TrimSpace(strings.ReplaceAll(strings.ReplaceAll(col, "_", " "), "id", ""))
}

// linkEdgeLabel prefers the row's own type over a label derived from the
// table name, eg. organisation_people_links -> "organisation people".
func linkEdgeLabel(table string, rec model.Record) string {
	if t, ok := rec["type"].(string); ok && t != "" {
		return t
	}
	return strings.ReplaceAll(strings.ReplaceAll(table, "_links", ""), "_", " ")
}
