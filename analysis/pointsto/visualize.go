package pointsto

import (
	"fmt"

	"github.com/cs-au-dk/tipdetect/utils/dot"
)

// Dot converts the solved subset-edge graph into a renderable dot graph.
// Nodes are cells labeled with their points-to sets; edges are the subset
// edges installed during solving.
func (r *Result) Dot(fname string) *dot.DotGraph {
	dg := &dot.DotGraph{
		Name:  "PointsTo",
		Title: fmt.Sprintf("Points-to constraint graph for %s", fname),
	}

	nodes := make([]*dot.DotNode, len(r.cells))
	for id, c := range r.cells {
		nodes[id] = &dot.DotNode{
			ID: fmt.Sprintf("c%d", id),
			Attrs: dot.DotAttrs{
				"label": fmt.Sprintf("%s\npt = {%s}", c.Name(), r.nameList(&r.sol[id])),
			},
		}
		dg.Nodes = append(dg.Nodes, nodes[id])
	}
	for id := range r.cells {
		var ids []int
		for _, succ := range r.succ[id].AppendTo(ids) {
			dg.Edges = append(dg.Edges, &dot.DotEdge{
				From:  nodes[id],
				To:    nodes[succ],
				Attrs: dot.DotAttrs{},
			})
		}
	}
	return dg
}
