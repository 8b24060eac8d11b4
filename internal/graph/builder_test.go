package graph

import (
	"context"
	"testing"

	"github.com/emrgen/graphbase/internal/model"
	"github.com/emrgen/graphbase/internal/schema"
	"github.com/emrgen/graphbase/internal/store"
	"github.com/emrgen/graphbase/internal/tester"
	"github.com/stretchr/testify/assert"
)

func newBuilder() (*Builder, *store.GormStore) {
	tester.RemoveDBFile()
	tester.Setup()

	sch := schema.Default()
	st := store.NewGormStore(tester.TestDB(), sch)

	return NewBuilder(sch, st), st
}

func seedGraph(t *testing.T, st *store.GormStore) {
	ctx := context.TODO()

	rows := []struct {
		table string
		row   model.Record
	}{
		{"people", model.Record{"name": "Alice"}},
		{"people", model.Record{"name": "Bob"}},
		{"organisations", model.Record{"name": "Data Org", "contact_person": int64(1)}},
		{"organisation_people_links", model.Record{"organisation_id": int64(1), "person_id": int64(1), "type": "member"}},
	}
	for _, r := range rows {
		_, _, err := st.InsertRecordVersion(ctx, r.table, r.row)
		assert.NoError(t, err)
	}
}

func findNode(g *Graph, id string) *Node {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}

func findEdge(g *Graph, id string) *Edge {
	for _, e := range g.Edges {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func TestBuilder_BuildGraph(t *testing.T) {
	builder, st := newBuilder()
	seedGraph(t, st)

	g, err := builder.BuildGraph(context.TODO(), BuildOptions{Radius: -1})
	assert.NoError(t, err)
	assert.Len(t, g.Nodes, 3)
	assert.Len(t, g.Edges, 2)

	alice := findNode(g, "people-1")
	assert.NotNil(t, alice)
	assert.Equal(t, "Alice", alice.Label)
	assert.Equal(t, "people", alice.Type)
	assert.Equal(t, schema.StatusActive, alice.Status)
	assert.Equal(t, "Alice", alice.Properties["name"])

	// a foreign-key column renders an edge from the referenced record
	// to the owning one
	fk := findEdge(g, "fk-people-1-organisations-1")
	assert.NotNil(t, fk)
	assert.Equal(t, "people-1", fk.Source)
	assert.Equal(t, "organisations-1", fk.Target)
	assert.Equal(t, "contact person", fk.Label)
	assert.Empty(t, fk.TableName)

	// a link row renders an edge carrying its table and row id so the
	// client can edit the underlying record
	link := findEdge(g, "organisation_people_links-1")
	assert.NotNil(t, link)
	assert.Equal(t, "people-1", link.Source)
	assert.Equal(t, "organisations-1", link.Target)
	assert.Equal(t, "member", link.Label)
	assert.Equal(t, "organisation_people_links", link.TableName)
	assert.Equal(t, int64(1), link.ObjectID)
}

func TestBuilder_BuildGraph_LinkLabelFallback(t *testing.T) {
	builder, st := newBuilder()
	seedGraph(t, st)

	// a link row without a type labels the edge after its table
	_, _, err := st.InsertRecordVersion(context.TODO(), "organisation_people_links",
		model.Record{"organisation_id": int64(1), "person_id": int64(2)})
	assert.NoError(t, err)

	g, err := builder.BuildGraph(context.TODO(), BuildOptions{Radius: -1})
	assert.NoError(t, err)

	link := findEdge(g, "organisation_people_links-2")
	assert.NotNil(t, link)
	assert.Equal(t, "organisation people", link.Label)
}

func TestBuilder_BuildGraph_DeletedNodes(t *testing.T) {
	builder, st := newBuilder()
	ctx := context.TODO()

	for _, name := range []string{"Alice", "Bob"} {
		_, _, err := st.InsertRecordVersion(ctx, "people", model.Record{"name": name})
		assert.NoError(t, err)
	}
	_, _, err := st.InsertRecordVersion(ctx, "organisations", model.Record{"name": "Data Org", "contact_person": int64(1)})
	assert.NoError(t, err)
	_, _, err = st.InsertRecordVersion(ctx, "organisations",
		model.Record{"id": int64(1), "name": "Data Org", "contact_person": int64(1), "status": schema.StatusDeleted})
	assert.NoError(t, err)

	g, err := builder.BuildGraph(ctx, BuildOptions{Radius: -1})
	assert.NoError(t, err)
	assert.Len(t, g.Nodes, 2)
	assert.Nil(t, findNode(g, "organisations-1"))
	assert.Len(t, g.Edges, 0)

	// included deleted records render as isolated nodes
	g, err = builder.BuildGraph(ctx, BuildOptions{IncludeDeleted: true, Radius: -1})
	assert.NoError(t, err)
	assert.Len(t, g.Nodes, 3)
	assert.Len(t, g.Edges, 0)

	org := findNode(g, "organisations-1")
	assert.NotNil(t, org)
	assert.Equal(t, schema.StatusDeleted, org.Status)
}

func TestBuilder_BuildGraph_DeletedEndpoint(t *testing.T) {
	builder, st := newBuilder()
	ctx := context.TODO()

	_, _, err := st.InsertRecordVersion(ctx, "people", model.Record{"name": "Alice"})
	assert.NoError(t, err)
	_, _, err = st.InsertRecordVersion(ctx, "people",
		model.Record{"id": int64(1), "name": "Alice", "email": "alice@example.com"})
	assert.NoError(t, err)
	_, _, err = st.InsertRecordVersion(ctx, "initiatives",
		model.Record{"name": "Outreach", "responsible_person": int64(1)})
	assert.NoError(t, err)

	g, err := builder.BuildGraph(ctx, BuildOptions{Radius: -1})
	assert.NoError(t, err)
	fk := findEdge(g, "fk-people-1-initiatives-1")
	assert.NotNil(t, fk)
	assert.Equal(t, "responsible person", fk.Label)

	_, _, err = st.InsertRecordVersion(ctx, "people",
		model.Record{"id": int64(1), "name": "Alice", "status": schema.StatusDeleted})
	assert.NoError(t, err)

	g, err = builder.BuildGraph(ctx, BuildOptions{Radius: -1})
	assert.NoError(t, err)
	assert.Nil(t, findNode(g, "people-1"))
	assert.Nil(t, findEdge(g, "fk-people-1-initiatives-1"))

	// the initiative row owning the edge is still live, so bringing the
	// deleted person back as a node brings the edge back with it
	g, err = builder.BuildGraph(ctx, BuildOptions{IncludeDeleted: true, Radius: -1})
	assert.NoError(t, err)
	alice := findNode(g, "people-1")
	assert.NotNil(t, alice)
	assert.Equal(t, schema.StatusDeleted, alice.Status)

	fk = findEdge(g, "fk-people-1-initiatives-1")
	assert.NotNil(t, fk)
	assert.Equal(t, schema.StatusActive, fk.Status)
}

func TestBuilder_BuildGraph_DanglingReference(t *testing.T) {
	builder, st := newBuilder()
	ctx := context.TODO()

	// contact person 99 does not exist, neither does person 42
	_, _, err := st.InsertRecordVersion(ctx, "organisations", model.Record{"name": "Data Org", "contact_person": int64(99)})
	assert.NoError(t, err)
	_, _, err = st.InsertRecordVersion(ctx, "organisation_people_links",
		model.Record{"organisation_id": int64(1), "person_id": int64(42)})
	assert.NoError(t, err)

	g, err := builder.BuildGraph(ctx, BuildOptions{Radius: -1})
	assert.NoError(t, err)

	// the node renders, the edges into the void do not
	assert.NotNil(t, findNode(g, "organisations-1"))
	assert.Len(t, g.Edges, 0)
}

func TestBuilder_BuildGraph_Filtered(t *testing.T) {
	builder, st := newBuilder()
	seedGraph(t, st)

	g, err := builder.BuildGraph(context.TODO(), BuildOptions{
		Seeds:  []string{"people-1"},
		Radius: 1,
	})
	assert.NoError(t, err)
	assert.Len(t, g.Nodes, 2)
	assert.NotNil(t, findNode(g, "people-1"))
	assert.NotNil(t, findNode(g, "organisations-1"))
	assert.Nil(t, findNode(g, "people-2"))
	assert.Len(t, g.Edges, 2)

	g, err = builder.BuildGraph(context.TODO(), BuildOptions{
		NodeTypes: []string{"people"},
		Radius:    -1,
	})
	assert.NoError(t, err)
	assert.Len(t, g.Nodes, 2)
	assert.Len(t, g.Edges, 0)
}
