// Package cfg builds the simplified instruction-level control flow graph
// used by the memory safety dataflow: within a block each instruction
// falls through to the next, and a block terminator flows to the first
// instruction of each successor block.
package cfg

import (
	"github.com/cs-au-dk/tipdetect/ir"
)

// Graph is the simplified successor graph of a single function.
type Graph struct {
	fn    *ir.Function
	order []ir.Instruction
	succs map[ir.Instruction][]ir.Instruction
	preds map[ir.Instruction][]ir.Instruction
}

// Simplified computes the simplified CFG of fn.
func Simplified(fn *ir.Function) *Graph {
	g := &Graph{
		fn:    fn,
		succs: make(map[ir.Instruction][]ir.Instruction),
		preds: make(map[ir.Instruction][]ir.Instruction),
	}

	for _, b := range fn.Blocks {
		for idx, i := range b.Instrs {
			g.order = append(g.order, i)
			if t, ok := i.(ir.Terminator); ok {
				for _, succ := range t.Successors() {
					if len(succ.Instrs) > 0 {
						g.addEdge(i, succ.Instrs[0])
					}
				}
			} else if idx+1 < len(b.Instrs) {
				g.addEdge(i, b.Instrs[idx+1])
			}
		}
	}
	return g
}

func (g *Graph) addEdge(from, to ir.Instruction) {
	for _, s := range g.succs[from] {
		if s == to {
			return
		}
	}
	g.succs[from] = append(g.succs[from], to)
	g.preds[to] = append(g.preds[to], from)
}

// Function returns the underlying function.
func (g *Graph) Function() *ir.Function { return g.fn }

// Instructions returns every instruction in block order.
func (g *Graph) Instructions() []ir.Instruction { return g.order }

// Successors returns the simplified-CFG successors of i.
func (g *Graph) Successors(i ir.Instruction) []ir.Instruction { return g.succs[i] }

// Predecessors returns the simplified-CFG predecessors of i.
func (g *Graph) Predecessors(i ir.Instruction) []ir.Instruction { return g.preds[i] }
