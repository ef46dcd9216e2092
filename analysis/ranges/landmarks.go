package ranges

import (
	"math"
	"sort"

	"github.com/cs-au-dk/tipdetect/analysis/lattice"
	"github.com/cs-au-dk/tipdetect/ir"
)

// landmarks is the widening bound set B: a sorted set of extended reals.
// It always contains ±∞, 0 and 1, every integer constant appearing as a
// binary or phi operand in the analyzed function, and the geometric series
// ±2^k for 0 ≤ k < maxExponent.
type landmarks []float64

func collectLandmarks(fn *ir.Function, maxExponent int) landmarks {
	set := map[float64]bool{
		math.Inf(-1): true,
		math.Inf(1):  true,
		0:            true,
		1:            true,
	}
	addConst := func(v ir.Value) {
		if c, ok := v.(*ir.Const); ok {
			set[float64(c.Value)] = true
		}
	}
	for _, i := range fn.Instructions() {
		switch i := i.(type) {
		case *ir.BinOp:
			addConst(i.X)
			addConst(i.Y)
		case *ir.Phi:
			for _, e := range i.Edges {
				addConst(e)
			}
		}
	}

	for k := 0; k < maxExponent; k++ {
		b := math.Pow(2, float64(k))
		set[b] = true
		set[-b] = true
	}

	B := make(landmarks, 0, len(set))
	for b := range set {
		B = append(B, b)
	}
	sort.Float64s(B)
	return B
}

// feq compares landmarks: infinities exactly, finite values within the
// interval domain's ε.
func feq(a, b float64) bool {
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return a == b
	}
	return math.Abs(a-b) < 2.220446049250313e-16
}

func boundFloat(b lattice.IntervalBound) float64 {
	switch b := b.(type) {
	case lattice.FiniteBound:
		return float64(b)
	case lattice.PlusInfinity:
		return math.Inf(1)
	}
	return math.Inf(-1)
}

func floatBound(f float64) lattice.IntervalBound {
	switch {
	case math.IsInf(f, 1):
		return lattice.PlusInfinity{}
	case math.IsInf(f, -1):
		return lattice.MinusInfinity{}
	}
	return lattice.FiniteBound(f)
}

// widen projects the interval onto landmark bounds: the lower bound moves
// to the greatest landmark strictly below it, unless it already is a
// landmark; the upper bound moves to the least landmark at or above it.
// Both searches terminate because ±∞ ∈ B.
func (B landmarks) widen(i lattice.Interval) lattice.Interval {
	lo := boundFloat(i.Low())
	hi := boundFloat(i.High())

	idx := sort.SearchFloat64s(B, lo)
	var lb float64
	if idx < len(B) && feq(B[idx], lo) {
		lb = B[idx]
	} else {
		// -∞ ∈ B, so idx > 0 here.
		lb = B[idx-1]
	}

	idx = sort.SearchFloat64s(B, hi)
	var ub float64
	if idx > 0 && feq(B[idx-1], hi) {
		ub = B[idx-1]
	} else {
		ub = B[idx]
	}

	return lattice.MkInterval(floatBound(lb), floatBound(ub))
}

// contains reports landmark membership; exposed for the fixpoint tests.
func (B landmarks) contains(f float64) bool {
	idx := sort.SearchFloat64s(B, f)
	return (idx < len(B) && feq(B[idx], f)) || (idx > 0 && feq(B[idx-1], f))
}
