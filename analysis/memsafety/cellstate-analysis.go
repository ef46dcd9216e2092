package memsafety

import (
	"fmt"
	"log"
	"strings"

	"github.com/cs-au-dk/tipdetect/analysis/cfg"
	"github.com/cs-au-dk/tipdetect/analysis/lattice"
	"github.com/cs-au-dk/tipdetect/analysis/pointsto"
	"github.com/cs-au-dk/tipdetect/config"
	"github.com/cs-au-dk/tipdetect/ir"
	"github.com/cs-au-dk/tipdetect/utils/worklist"
)

// StateResult carries the solved cell-state dataflow of a function: the
// out-state of every instruction over the eligible cell set.
type StateResult struct {
	graph    *cfg.Graph
	pts      *pointsto.Result
	eligible []int
	bottom   MapState
	out      map[ir.Instruction]MapState
}

// eligibleCells filters the points-to cells down to those the dataflow
// tracks: stack allocations and calls to calloc.
func eligibleCells(pts *pointsto.Result) []int {
	var eligible []int
	for id, c := range pts.Cells() {
		switch c := c.(type) {
		case *ir.Alloca:
			eligible = append(eligible, id)
		case *ir.Call:
			if c.Callee == "calloc" {
				eligible = append(eligible, id)
			}
		}
	}
	return eligible
}

// analyzeCellStates runs the forward dataflow over the simplified CFG.
// Every instruction starts at the all-⊥ state; the worklist is seeded with
// every instruction and changed out-states re-enqueue their successors.
func analyzeCellStates(g *cfg.Graph, pts *pointsto.Result, conf config.Config) *StateResult {
	res := &StateResult{
		graph:    g,
		pts:      pts,
		eligible: eligibleCells(pts),
		out:      make(map[ir.Instruction]MapState),
	}
	res.bottom = bottomState(res.eligible)
	for _, i := range g.Instructions() {
		res.out[i] = res.bottom
	}

	w := worklist.Empty[ir.Instruction]()
	for _, i := range g.Instructions() {
		w.Add(i)
	}

	for !w.IsEmpty() {
		i := w.GetNext()
		old := res.out[i]

		updated := res.transfer(i, res.In(i))
		if conf.Debug {
			log.Printf("cell states after %s: %s",
				i, updated.format(res.eligible, res.pts.Cell))
		}

		if !updated.Equal(old, res.eligible) {
			res.out[i] = updated
			for _, succ := range g.Successors(i) {
				w.Add(succ)
			}
		}
	}
	return res
}

// In computes the incoming state of an instruction: the join of its
// predecessors' out-states, or the all-⊥ state at function entry.
func (r *StateResult) In(i ir.Instruction) MapState {
	preds := r.graph.Predecessors(i)
	if len(preds) == 0 {
		return r.bottom
	}
	state := r.out[preds[0]]
	for _, p := range preds[1:] {
		state = state.Join(r.out[p], r.eligible)
	}
	return state
}

// Out returns the out-state of an instruction.
func (r *StateResult) Out(i ir.Instruction) MapState {
	return r.out[i]
}

// EligibleCells returns the arena ids of the tracked cells.
func (r *StateResult) EligibleCells() []int {
	return r.eligible
}

// transfer updates at most one cell: allocas come alive StackAllocated,
// calloc calls HeapAllocated, and a free whose argument is itself an
// eligible cell marks it HeapFreed. Calls to anything else are unknown and
// leave the state untouched.
func (r *StateResult) transfer(i ir.Instruction, in MapState) MapState {
	switch i := i.(type) {
	case *ir.Alloca:
		if id, ok := r.pts.CellID(i); ok {
			return in.Set(id, lattice.StackAllocated)
		}
	case *ir.Call:
		switch i.Callee {
		case "calloc":
			if id, ok := r.pts.CellID(i); ok {
				return in.Set(id, lattice.HeapAllocated)
			}
		case "free":
			if len(i.Args) > 0 {
				if id, ok := r.pts.CellID(i.Args[0]); ok {
					return in.Set(id, lattice.HeapFreed)
				}
			}
		}
	}
	return in
}

// String renders the out-state of every instruction.
func (r *StateResult) String() string {
	var sb strings.Builder
	for _, i := range r.graph.Instructions() {
		fmt.Fprintf(&sb, "%s: %s\n", i, r.out[i].format(r.eligible, r.pts.Cell))
	}
	return sb.String()
}
