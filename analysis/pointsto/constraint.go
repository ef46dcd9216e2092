// Package pointsto implements an Andersen-style inclusion-based points-to
// analysis: IR scanning produces subset constraints over a finite set of
// abstract cells, and a cubic solver with conditional edges computes the
// least solution.
package pointsto

import (
	"fmt"

	"github.com/cs-au-dk/tipdetect/ir"
)

// ConstraintKind tags the four constraint forms.
type ConstraintKind uint8

const (
	// Alloc seeds the allocation site into its own points-to set.
	Alloc ConstraintKind = iota
	// Assign is pt(src) ⊆ pt(dst), produced by casts.
	Assign
	// Load is pt(c) ⊆ pt(dst) for every c ∈ pt(src).
	Load
	// Store is pt(src) ⊆ pt(c) for every c ∈ pt(dst).
	Store
)

func (k ConstraintKind) String() string {
	switch k {
	case Alloc:
		return "alloc"
	case Assign:
		return "assign"
	case Load:
		return "load"
	case Store:
		return "store"
	}
	return fmt.Sprintf("constraint(%d)", uint8(k))
}

// Constraint is a single points-to constraint between two IR values.
type Constraint struct {
	Kind ConstraintKind
	Src  ir.Value
	Dst  ir.Value
}

func (c Constraint) String() string {
	return fmt.Sprintf("%s(%s, %s)", c.Kind, c.Src.Name(), c.Dst.Name())
}

// Collect scans a function for pointer-relevant instructions, producing
// the constraint list, the registered cell set (in first-occurrence
// order) and the allocation sites.
func Collect(fn *ir.Function) (constraints []Constraint, cells []ir.Value, allocSites []ir.Instruction) {
	seen := make(map[ir.Value]bool)
	register := func(v ir.Value) {
		if !seen[v] {
			seen[v] = true
			cells = append(cells, v)
		}
	}

	for _, i := range fn.Instructions() {
		switch i := i.(type) {
		case *ir.Call:
			// Heap allocations are calls to calloc.
			if i.Callee == "calloc" {
				allocSites = append(allocSites, i)
				register(i)
				constraints = append(constraints, Constraint{Alloc, i, i})
			}

		case *ir.Alloca:
			allocSites = append(allocSites, i)
			register(i)
			constraints = append(constraints, Constraint{Alloc, i, i})

		case *ir.Store:
			// Constant stores carry no pointer information.
			if _, isConst := i.Val.(*ir.Const); isConst {
				continue
			}
			register(i.Val)
			register(i.Ptr)
			constraints = append(constraints, Constraint{Store, i.Val, i.Ptr})

		case *ir.Load:
			register(i.Ptr)
			register(i)
			constraints = append(constraints, Constraint{Load, i.Ptr, i})

		case *ir.Cast:
			register(i.X)
			register(i)
			constraints = append(constraints, Constraint{Assign, i.X, i})

		case *ir.IntToPtr:
			register(i.X)
			register(i)
			constraints = append(constraints, Constraint{Assign, i.X, i})

		case *ir.PtrToInt:
			register(i.X)
			register(i)
			constraints = append(constraints, Constraint{Assign, i.X, i})
		}
	}
	return constraints, cells, allocSites
}
