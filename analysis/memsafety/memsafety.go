// Package memsafety detects double frees, uses after free and frees of
// non-heap memory. It combines the points-to solution with a forward
// dataflow tracking the allocation state of every eligible cell at every
// program point, and checks load/store/free sites against that state.
package memsafety

import (
	"fmt"
	"strings"

	"github.com/cs-au-dk/tipdetect/analysis/cfg"
	"github.com/cs-au-dk/tipdetect/analysis/pointsto"
	"github.com/cs-au-dk/tipdetect/config"
	"github.com/cs-au-dk/tipdetect/ir"
)

// Result is the memory safety analysis of a single function.
type Result struct {
	fn         *ir.Function
	PointsTo   *pointsto.Result
	States     *StateResult
	Violations []Violation
}

// Analyze runs the full memory safety pipeline on fn: points-to solving,
// the cell-state dataflow over the simplified CFG, and the safety checker.
// The analysis is total on well-formed IR; violations are reports, not
// errors.
func Analyze(fn *ir.Function, conf config.Config) *Result {
	pts := pointsto.Analyze(fn, conf)
	g := cfg.Simplified(fn)
	states := analyzeCellStates(g, pts, conf)

	return &Result{
		fn:         fn,
		PointsTo:   pts,
		States:     states,
		Violations: check(g, pts, states),
	}
}

// Function returns the analyzed function.
func (r *Result) Function() *ir.Function { return r.fn }

// String renders the violation list.
func (r *Result) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "*** memory safety analysis for function %s ***\n", r.fn.Name())
	if len(r.Violations) == 0 {
		sb.WriteString("no violations\n")
		return sb.String()
	}
	for _, v := range r.Violations {
		fmt.Fprintf(&sb, "%s\n", v)
	}
	return sb.String()
}
