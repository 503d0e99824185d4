package graph

import (
	"testing"

	"feynman_tutor/src/model"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func node(name, desc string) any {
	return map[string]any{"name": name, "description": desc}
}

func rel(from, to string, weight any) any {
	return map[string]any{"from": from, "to": to, "type": RelatesTo, "weight": weight}
}

func TestGraphBuilderMergesPaths(t *testing.T) {
	rows := []*neo4j.Record{
		{
			Keys:   []string{"nodes", "rels"},
			Values: []any{[]any{node("Python", ""), node("算法", "steps")}, []any{rel("Python", "算法", 2.5)}},
		},
		{
			Keys: []string{"nodes", "rels"},
			Values: []any{
				[]any{node("Python", ""), node("算法", "steps"), node("数据结构", "layout")},
				// the first edge is repeated in reverse; the int weight is widened
				[]any{rel("算法", "Python", 9.0), rel("算法", "数据结构", int64(3))},
			},
		},
	}

	b := newGraphBuilder("Python", "a language")
	for _, record := range rows {
		b.addPath(getMaps(record, "nodes"), getMaps(record, "rels"))
	}

	assert.Equal(t, []model.GraphNode{
		{ID: "Python", Label: "Python", Type: nodeMain, Description: "a language", Group: 0},
		{ID: "算法", Label: "算法", Type: nodeRelated, Description: "steps", Group: 1},
		{ID: "数据结构", Label: "数据结构", Type: nodeRelated, Description: "layout", Group: 2},
	}, b.graph.Nodes)
	assert.Equal(t, []model.GraphEdge{
		{From: "Python", To: "算法", Type: RelatesTo, Weight: 2.5},
		{From: "算法", To: "数据结构", Type: RelatesTo, Weight: 3},
	}, b.graph.Edges)
}

func TestGraphBuilderSkipsMalformedRows(t *testing.T) {
	b := newGraphBuilder("Go", "")
	b.addPath(
		[]map[string]any{{"description": "no name"}, {"name": "Go"}},
		[]map[string]any{{"from": "Go"}, {"from": "Go", "to": "C", "weight": nil}},
	)

	require.Len(t, b.graph.Nodes, 1)
	require.Len(t, b.graph.Edges, 1)
	assert.Equal(t, DefaultWeight, b.graph.Edges[0].Weight)
}

func TestRecordGetters(t *testing.T) {
	record := &neo4j.Record{
		Keys:   []string{"name", "related", "paths"},
		Values: []any{"Python", []any{"算法", 42, "数据结构", nil}, []any{map[string]any{"name": "x"}, "junk"}},
	}

	assert.Equal(t, "Python", getString(record, "name"))
	assert.Equal(t, "", getString(record, "missing"))
	assert.Equal(t, []string{"算法", "数据结构"}, getStrings(record, "related"))
	assert.Equal(t, []string{}, getStrings(record, "missing"))
	assert.Equal(t, []map[string]any{{"name": "x"}}, getMaps(record, "paths"))
	assert.Nil(t, getMaps(record, "name"))
}
