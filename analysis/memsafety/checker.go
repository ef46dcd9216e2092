package memsafety

import (
	"fmt"

	"github.com/cs-au-dk/tipdetect/analysis/cfg"
	"github.com/cs-au-dk/tipdetect/analysis/lattice"
	"github.com/cs-au-dk/tipdetect/analysis/pointsto"
	"github.com/cs-au-dk/tipdetect/ir"
)

// ViolationKind classifies the memory safety violations the checker
// reports.
type ViolationKind uint8

const (
	// UseAfterFree is a load or store through a possibly freed cell.
	UseAfterFree ViolationKind = iota
	// DoubleFree is a free of a possibly already freed cell.
	DoubleFree
	// StackFree is a free of stack memory.
	StackFree
)

func (k ViolationKind) String() string {
	switch k {
	case UseAfterFree:
		return "Use after free"
	case DoubleFree:
		return "Double free"
	case StackFree:
		return "Freeing non-heap memory"
	}
	return fmt.Sprintf("ViolationKind(%d)", uint8(k))
}

// Violation is a single report: purely informational, never an error.
type Violation struct {
	Kind  ViolationKind
	Instr ir.Instruction
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Kind, v.Instr)
}

// check inspects every load, store and free site against the incoming
// cell states. The referenced cells of a site are its syntactic root
// closed transitively under the equivalence relation; cells without a
// MapState entry are skipped.
func check(g *cfg.Graph, pts *pointsto.Result, states *StateResult) []Violation {
	var violations []Violation

	for _, i := range g.Instructions() {
		var root ir.Value
		isFree := false
		switch i := i.(type) {
		case *ir.Load:
			root = i.Ptr
		case *ir.Store:
			root = i.Ptr
		case *ir.Call:
			if i.Callee != "free" || len(i.Args) == 0 {
				continue
			}
			root = i.Args[0]
			isFree = true
		default:
			continue
		}

		in := states.In(i)
		for _, cid := range pts.AliasClosure(root) {
			st, ok := in.Get(cid)
			if !ok {
				continue
			}
			switch {
			case isFree && st == lattice.HeapFreed:
				violations = append(violations, Violation{DoubleFree, i})
			case isFree && st == lattice.StackAllocated:
				violations = append(violations, Violation{StackFree, i})
			case !isFree && st == lattice.HeapFreed:
				violations = append(violations, Violation{UseAfterFree, i})
			}
		}
	}
	return violations
}
