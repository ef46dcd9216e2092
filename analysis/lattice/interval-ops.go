package lattice

import "fmt"

// Interval is a member of the interval lattice. The pair (low, high)
// denotes the non-empty closed interval [low, high] when low ≤ high; a
// pair with low > high is empty, canonically [∞, -∞].
type Interval struct {
	low  IntervalBound
	high IntervalBound
}

// MkInterval creates an interval with the given bounds.
func MkInterval(low, high IntervalBound) Interval {
	return Interval{low: low, high: high}
}

// FiniteInterval creates an interval with finite bounds.
func FiniteInterval(low, high float64) Interval {
	return Interval{low: FiniteBound(low), high: FiniteBound(high)}
}

// Singleton creates the degenerate interval [c, c].
func Singleton(c float64) Interval {
	return FiniteInterval(c, c)
}

// Empty yields the canonical empty interval [∞, -∞].
func Empty() Interval {
	return Interval{low: PlusInfinity{}, high: MinusInfinity{}}
}

// Full yields the full interval [-∞, ∞].
func Full() Interval {
	return Interval{low: MinusInfinity{}, high: PlusInfinity{}}
}

// Unit yields the interval [0, 1], the abstraction of a boolean.
func Unit() Interval {
	return FiniteInterval(0, 1)
}

// Low returns the lower bound.
func (i Interval) Low() IntervalBound { return i.low }

// High returns the upper bound.
func (i Interval) High() IntervalBound { return i.high }

// IsEmpty reports whether the interval denotes no values.
func (i Interval) IsEmpty() bool {
	return i.low.Gt(i.high)
}

// emptyOperands is the empty test applied by comparisons and division:
// an operand whose lower bound is ∞ or whose upper bound is -∞ is empty.
func emptyOperands(l, r Interval) bool {
	_, lpinf := l.low.(PlusInfinity)
	_, rpinf := r.low.(PlusInfinity)
	_, lminf := l.high.(MinusInfinity)
	_, rminf := r.high.(MinusInfinity)
	return lpinf || rpinf || lminf || rminf
}

// Equal performs deep interval equality: bound pairs involving an infinity
// compare exactly, finite pairs compare within ε.
func (i Interval) Equal(o Interval) bool {
	return i.low.Eq(o.low) && i.high.Eq(o.high)
}

// Lub computes the least upper bound of two intervals. Edge cases lead to
// extreme intervals; the general case takes the lowest of the lows and the
// highest of the highs.
func (l Interval) Lub(r Interval) Interval {
	switch {
	case l.Equal(Full()):
		return Full()
	case l.Equal(Empty()):
		return r
	}
	return Interval{low: l.low.Min(r.low), high: l.high.Max(r.high)}
}

// Neg computes the unary negation of an interval. The extreme intervals
// map onto themselves or their mirror image; the general case negates the
// bounds and re-establishes their order.
func (i Interval) Neg() Interval {
	_, lminf := i.low.(MinusInfinity)
	_, lpinf := i.low.(PlusInfinity)
	_, hminf := i.high.(MinusInfinity)
	_, hpinf := i.high.(PlusInfinity)
	switch {
	case lminf && hpinf:
		return Full()
	case lpinf && hminf:
		return Empty()
	case lminf && hminf:
		return Interval{low: PlusInfinity{}, high: PlusInfinity{}}
	case lpinf && hpinf:
		return Interval{low: MinusInfinity{}, high: MinusInfinity{}}
	case hpinf:
		return Interval{low: MinusInfinity{}, high: i.low.Neg()}
	case lminf:
		return Interval{low: i.high.Neg(), high: PlusInfinity{}}
	}
	nl, nh := i.high.Neg(), i.low.Neg()
	return Interval{low: nl.Min(nh), high: nl.Max(nh)}
}

// Add computes interval addition. A lower bound of ∞ on either side
// (an empty operand) absorbs into an ∞ lower bound; otherwise -∞ absorbs;
// otherwise the bounds add. The upper bound is symmetric.
func (l Interval) Add(r Interval) Interval {
	var low, high IntervalBound

	_, lpinf := l.low.(PlusInfinity)
	_, rpinf := r.low.(PlusInfinity)
	_, lminf := l.low.(MinusInfinity)
	_, rminf := r.low.(MinusInfinity)
	switch {
	case lpinf || rpinf:
		low = PlusInfinity{}
	case lminf || rminf:
		low = MinusInfinity{}
	default:
		low = l.low.(FiniteBound) + r.low.(FiniteBound)
	}

	_, lhminf := l.high.(MinusInfinity)
	_, rhminf := r.high.(MinusInfinity)
	_, lhpinf := l.high.(PlusInfinity)
	_, rhpinf := r.high.(PlusInfinity)
	switch {
	case lhminf || rhminf:
		high = MinusInfinity{}
	case lhpinf || rhpinf:
		high = PlusInfinity{}
	default:
		high = l.high.(FiniteBound) + r.high.(FiniteBound)
	}

	return Interval{low: low, high: high}
}

// Sub computes interval subtraction as l + (-r).
func (l Interval) Sub(r Interval) Interval {
	return l.Add(r.Neg())
}

// Mul computes interval multiplication from the four corner products.
// Products of 0 and ±∞ count as 0.
func (l Interval) Mul(r Interval) Interval {
	if l.IsEmpty() || r.IsEmpty() {
		return Empty()
	}

	corners := []IntervalBound{
		l.low.Mult(r.low),
		l.low.Mult(r.high),
		l.high.Mult(r.low),
		l.high.Mult(r.high),
	}
	low, high := corners[0], corners[0]
	for _, c := range corners[1:] {
		low = low.Min(c)
		high = high.Max(c)
	}
	return Interval{low: low, high: high}
}

// Div computes interval division as l * 1/r, case-split on whether r
// contains zero. When r straddles zero the reciprocal is a union of two
// half-lines and the two products are joined. The final bounds are
// conservatively rounded outwards.
func (l Interval) Div(r Interval) Interval {
	if emptyOperands(l, r) {
		return Empty()
	}

	zero := FiniteBound(0)
	var result Interval
	if r.low.Leq(zero) && r.high.Geq(zero) {
		// r contains 0: 1/r = [-∞, 1/low] ∪ [1/high, ∞]
		left := Interval{low: MinusInfinity{}, high: r.low.Recip()}
		right := Interval{low: r.high.Recip(), high: PlusInfinity{}}
		result = l.Mul(left).Lub(l.Mul(right))
	} else {
		recip := Interval{low: r.high.Recip(), high: r.low.Recip()}
		result = l.Mul(recip)
	}

	return Interval{low: result.low.Floor(), high: result.high.Ceil()}
}

// Lt computes the abstract strict less-than comparison:
//
//	empty   if either operand is empty
//	[1, 1]  if l is definitely below r
//	[0, 0]  if l is definitely above r
//	[0, 1]  otherwise
func (l Interval) Lt(r Interval) Interval {
	if emptyOperands(l, r) {
		return Empty()
	}
	if l.high.Lt(r.low) {
		return Singleton(1)
	}
	if r.high.Lt(l.low) {
		return Singleton(0)
	}
	return Unit()
}

// Gt computes the abstract strict greater-than comparison.
func (l Interval) Gt(r Interval) Interval {
	return r.Lt(l)
}

// Eq computes the abstract equality comparison. Two singletons decide the
// answer; disjoint intervals definitely differ; anything else is unknown.
func (l Interval) Eq(r Interval) Interval {
	if emptyOperands(l, r) {
		return Empty()
	}
	if l.high.Lt(r.low) || r.high.Lt(l.low) {
		return Singleton(0)
	}
	if l.low.Eq(l.high) && r.low.Eq(r.high) {
		if l.low.Eq(r.low) {
			return Singleton(1)
		}
		return Singleton(0)
	}
	return Unit()
}

// Ne computes the abstract inequality comparison, derived from Eq.
func (l Interval) Ne(r Interval) Interval {
	if emptyOperands(l, r) {
		return Empty()
	}
	switch {
	case l.Eq(r).Equal(Singleton(1)):
		return Singleton(0)
	case l.Eq(r).Equal(Singleton(0)):
		return Singleton(1)
	}
	return Unit()
}

// bstr renders a bound for interval output: -inf/+inf, or the bound
// rounded down (lower bounds) or up (upper bounds) to an integer.
func bstr(b IntervalBound, roundUp bool) string {
	switch b := b.(type) {
	case MinusInfinity:
		return "-inf"
	case PlusInfinity:
		return "+inf"
	case FiniteBound:
		if roundUp {
			return fmt.Sprintf("%d", int64(b.Ceil().(FiniteBound)))
		}
		return fmt.Sprintf("%d", int64(b.Floor().(FiniteBound)))
	}
	return b.String()
}

// String renders the interval as [lower,upper] with the lower bound
// floored and the upper bound ceiled.
func (i Interval) String() string {
	return "[" + bstr(i.low, false) + "," + bstr(i.high, true) + "]"
}
