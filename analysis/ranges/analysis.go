// Package ranges implements the interval range analysis: a worklist
// fixpoint assigning every supported instruction a conservative interval,
// accelerated by widening over a finite landmark set.
package ranges

import (
	"fmt"
	"log"
	"strings"

	"github.com/cs-au-dk/tipdetect/analysis"
	"github.com/cs-au-dk/tipdetect/analysis/lattice"
	"github.com/cs-au-dk/tipdetect/config"
	"github.com/cs-au-dk/tipdetect/ir"
	"github.com/cs-au-dk/tipdetect/utils/worklist"
)

// Result maps every supported instruction of a function to its interval.
type Result struct {
	fn    *ir.Function
	order []ir.Instruction
	state map[ir.Value]lattice.Interval
}

// isSupported limits the analysis to the instruction fragment that arises
// when compiling TIP programs. Floats, bitwise operations and the likes of
// poison/undef never reach the passes.
func isSupported(i ir.Instruction) bool {
	switch i.(type) {
	case *ir.Phi, *ir.BinOp, *ir.Alloca, *ir.Load, *ir.Call, *ir.Select, *ir.ICmp:
		return true
	}
	return false
}

// getInterval produces the interval of an operand: constants become
// singletons, instruction results are read from the state. Values the
// analysis does not track read as the empty interval.
func getInterval(v ir.Value, state map[ir.Value]lattice.Interval) lattice.Interval {
	if c, ok := v.(*ir.Const); ok {
		return lattice.Singleton(float64(c.Value))
	}
	if itv, ok := state[v]; ok {
		return itv
	}
	return lattice.Empty()
}

// Analyze runs the interval range analysis on fn.
func Analyze(fn *ir.Function, conf config.Config) (*Result, error) {
	state := make(map[ir.Value]lattice.Interval)
	var order []ir.Instruction
	for _, i := range fn.Instructions() {
		if isSupported(i) {
			state[i.(ir.Value)] = lattice.Empty()
			order = append(order, i)
		}
	}

	B := collectLandmarks(fn, conf.MaxExponent)
	if conf.Debug {
		log.Printf("widening landmarks for %s: %v", fn.Name(), []float64(B))
	}

	w := worklist.EmptyDeduped[ir.Instruction]()
	for _, i := range order {
		w.Add(i)
	}

	for !w.IsEmpty() {
		i := w.GetNext()
		old := state[i.(ir.Value)]

		current, err := transfer(i, state)
		if err != nil {
			return nil, err
		}

		if conf.WideningEnabled && !current.Equal(lattice.Empty()) {
			widened := B.widen(current)
			if conf.Debug {
				log.Printf("  widened %s to %s", current, widened)
			}
			current = widened
		}

		if conf.Debug {
			log.Printf("analyzing %s: old %s, new %s", i, old, current)
		}

		if !old.Equal(current) {
			state[i.(ir.Value)] = current
			for _, u := range ir.Referrers(i.(ir.Value)) {
				if isSupported(u) {
					w.Add(u)
				}
			}
		}
	}

	return &Result{fn: fn, order: order, state: state}, nil
}

// transfer computes the new interval of a supported instruction.
func transfer(i ir.Instruction, state map[ir.Value]lattice.Interval) (lattice.Interval, error) {
	switch i := i.(type) {
	case *ir.Phi:
		current := lattice.Empty()
		for _, e := range i.Edges {
			current = current.Lub(getInterval(e, state))
		}
		return current, nil

	case *ir.Select:
		return getInterval(i.TrueVal, state).Lub(getInterval(i.FalseVal, state)), nil

	case *ir.BinOp:
		l := getInterval(i.X, state)
		r := getInterval(i.Y, state)
		switch i.Op {
		case ir.Add:
			return l.Add(r), nil
		case ir.Sub:
			return l.Sub(r), nil
		case ir.Mul:
			return l.Mul(r), nil
		case ir.SDiv:
			return l.Div(r), nil
		}
		return lattice.Empty(), fmt.Errorf("%w: unsupported binary opcode in %s", analysis.ErrInternalInvariant, i)

	case *ir.ICmp:
		l := getInterval(i.X, state)
		r := getInterval(i.Y, state)
		switch i.Pred {
		case ir.EQ:
			return l.Eq(r), nil
		case ir.NE:
			return l.Ne(r), nil
		case ir.SLT:
			return l.Lt(r), nil
		case ir.SGT:
			return l.Gt(r), nil
		}
		return lattice.Empty(), fmt.Errorf("%w: unsupported comparison predicate in %s", analysis.ErrInternalInvariant, i)

	case *ir.Alloca, *ir.Load, *ir.Call:
		// The analysis is intraprocedural and does not track memory, so
		// these yield the full interval.
		return lattice.Full(), nil
	}

	return lattice.Empty(), fmt.Errorf("%w: unsupported instruction %s", analysis.ErrInternalInvariant, i)
}

// Interval returns the interval computed for v.
func (r *Result) Interval(v ir.Value) (lattice.Interval, bool) {
	itv, ok := r.state[v]
	return itv, ok
}

// Function returns the analyzed function.
func (r *Result) Function() *ir.Function { return r.fn }

// String renders the analysis state in instruction order.
func (r *Result) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*** interval range analysis for function %s ***\n", r.fn.Name())
	for _, i := range r.order {
		v := i.(ir.Value)
		fmt.Fprintf(&sb, "%s = %s\n", v.Name(), r.state[v])
	}
	return sb.String()
}
