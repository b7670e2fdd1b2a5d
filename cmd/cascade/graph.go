package main

import (
	"fmt"
	"strconv"

	gographviz "github.com/awalterschulze/gographviz"

	"github.com/ravi-parthasarathy/cascade/pkg/pipeline"
)

// renderDOT produces a DOT digraph of the require graph recorded during a
// run: one node per executed plugin, one edge per require relationship.
func renderDOT(name string, tr *pipeline.Trace) (string, error) {
	if name == "" {
		name = "cascade"
	}
	graphName := strconv.Quote(name)

	g := gographviz.NewGraph()
	if err := g.SetName(graphName); err != nil {
		return "", err
	}
	if err := g.SetDir(true); err != nil {
		return "", err
	}
	for _, node := range tr.Nodes {
		if err := g.AddNode(graphName, strconv.Quote(node), nil); err != nil {
			return "", fmt.Errorf("node %q: %w", node, err)
		}
	}
	for _, edge := range tr.Edges {
		if err := g.AddEdge(strconv.Quote(edge.From), strconv.Quote(edge.To), true, nil); err != nil {
			return "", fmt.Errorf("edge %q -> %q: %w", edge.From, edge.To, err)
		}
	}
	return g.String(), nil
}
