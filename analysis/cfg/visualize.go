package cfg

import (
	"fmt"

	"github.com/cs-au-dk/tipdetect/ir"
	"github.com/cs-au-dk/tipdetect/utils/dot"
)

// Dot converts the simplified CFG into a renderable dot graph.
func (g *Graph) Dot() *dot.DotGraph {
	dg := &dot.DotGraph{
		Name:  "SimplifiedCFG",
		Title: fmt.Sprintf("Simplified CFG for %s", g.fn.Name()),
	}

	nodes := make(map[ir.Instruction]*dot.DotNode, len(g.order))
	for idx, i := range g.order {
		n := &dot.DotNode{
			ID: fmt.Sprintf("n%d", idx),
			Attrs: dot.DotAttrs{
				"label": i.String(),
			},
		}
		nodes[i] = n
		dg.Nodes = append(dg.Nodes, n)
	}
	for _, i := range g.order {
		for _, s := range g.succs[i] {
			dg.Edges = append(dg.Edges, &dot.DotEdge{
				From:  nodes[i],
				To:    nodes[s],
				Attrs: dot.DotAttrs{},
			})
		}
	}
	return dg
}
