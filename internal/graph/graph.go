package graph

import "fmt"

// Node is one record rendered for the canvas. The id is "<table>-<id>"
// so ids stay unique across tables.
type Node struct {
	ID         string         `json:"id"`
	Label      string         `json:"label"`
	Type       string         `json:"type"`
	Status     string         `json:"status,omitempty"`
	Properties map[string]any `json:"properties,omitempty"`
}

// Edge connects two nodes. Edges born from a link table carry the table
// name and row id so the client can edit the underlying record; edges
// implied by a foreign-key column carry neither.
type Edge struct {
	ID        string `json:"id"`
	Source    string `json:"source"`
	Target    string `json:"target"`
	Label     string `json:"label"`
	Status    string `json:"status,omitempty"`
	TableName string `json:"table_name,omitempty"`
	ObjectID  int64  `json:"object_id,omitempty"`
}

// Graph is a materialized snapshot of the store.
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// NodeID renders the canvas id of a record.
func NodeID(table string, id int64) string {
	return fmt.Sprintf("%s-%d", table, id)
}
