package lattice

import "testing"

func TestIntervalLub(t *testing.T) {
	type b = FiniteBound
	type P = PlusInfinity
	type M = MinusInfinity

	tests := []struct {
		a, b, expected Interval
	}{
		{Empty(), Empty(), Empty()},
		{Empty(), Full(), Full()},
		{Full(), Empty(), Full()},
		{Full(), Full(), Full()},
		{Empty(), FiniteInterval(0, 0), FiniteInterval(0, 0)},
		{FiniteInterval(0, 0), Empty(), FiniteInterval(0, 0)},
		{FiniteInterval(0, 0), FiniteInterval(1, 1), FiniteInterval(0, 1)},
		{FiniteInterval(1, 1), FiniteInterval(0, 0), FiniteInterval(0, 1)},
		{FiniteInterval(1, 2), FiniteInterval(3, 4), FiniteInterval(1, 4)},
		{FiniteInterval(-1, 0), FiniteInterval(0, 1), FiniteInterval(-1, 1)},
		{FiniteInterval(0, 1024), MkInterval(b(0), P{}), MkInterval(b(0), P{})},
		{MkInterval(M{}, b(0)), FiniteInterval(-1024, 0), MkInterval(M{}, b(0))},
		{MkInterval(M{}, b(-1024)), MkInterval(b(1024), P{}), Full()},
	}

	for _, test := range tests {
		res := test.a.Lub(test.b)
		if !res.Equal(test.expected) {
			t.Errorf("%s ⊔ %s = %s, expected %s\n", test.a, test.b, res, test.expected)
		} else {
			t.Logf("%s ⊔ %s = %s\n", test.a, test.b, res)
		}
	}
}

func TestIntervalLubCommutative(t *testing.T) {
	ivs := []Interval{
		Empty(), Full(), Unit(),
		FiniteInterval(-3, 5),
		MkInterval(MinusInfinity{}, FiniteBound(0)),
		MkInterval(FiniteBound(2), PlusInfinity{}),
	}
	for _, a := range ivs {
		for _, b := range ivs {
			if !a.Lub(b).Equal(b.Lub(a)) {
				t.Errorf("%s ⊔ %s is not commutative", a, b)
			}
			for _, c := range ivs {
				l := a.Lub(b).Lub(c)
				r := a.Lub(b.Lub(c))
				if !l.Equal(r) {
					t.Errorf("⊔ not associative on %s, %s, %s: %s vs %s", a, b, c, l, r)
				}
			}
		}
	}
}

func TestIntervalNeg(t *testing.T) {
	type b = FiniteBound
	type P = PlusInfinity
	type M = MinusInfinity

	tests := []struct {
		a, expected Interval
	}{
		{Full(), Full()},
		{Empty(), Empty()},
		{FiniteInterval(1, 2), FiniteInterval(-2, -1)},
		{FiniteInterval(-2, 3), FiniteInterval(-3, 2)},
		{MkInterval(b(0), P{}), MkInterval(M{}, b(0))},
		{MkInterval(M{}, b(5)), MkInterval(b(-5), P{})},
		{MkInterval(P{}, P{}), MkInterval(M{}, M{})},
		{MkInterval(M{}, M{}), MkInterval(P{}, P{})},
	}

	for _, test := range tests {
		res := test.a.Neg()
		if !res.Equal(test.expected) {
			t.Errorf("neg(%s) = %s, expected %s\n", test.a, res, test.expected)
		}
	}
}

func TestIntervalAdd(t *testing.T) {
	type b = FiniteBound
	type P = PlusInfinity
	type M = MinusInfinity

	tests := []struct {
		a, b, expected Interval
	}{
		{FiniteInterval(1, 2), FiniteInterval(3, 4), FiniteInterval(4, 6)},
		{Empty(), FiniteInterval(3, 5), Empty()},
		{FiniteInterval(3, 5), Empty(), Empty()},
		{MkInterval(b(0), P{}), FiniteInterval(1, 1), MkInterval(b(1), P{})},
		{MkInterval(M{}, b(0)), FiniteInterval(-1, 1), MkInterval(M{}, b(1))},
		{Full(), FiniteInterval(7, 7), Full()},
	}

	for _, test := range tests {
		res := test.a.Add(test.b)
		if !res.Equal(test.expected) {
			t.Errorf("%s + %s = %s, expected %s\n", test.a, test.b, res, test.expected)
		}
	}
}

func TestIntervalSubIsAddNeg(t *testing.T) {
	ivs := []Interval{
		Empty(), Full(), Unit(),
		FiniteInterval(-3, 5), FiniteInterval(2, 2),
		MkInterval(MinusInfinity{}, FiniteBound(4)),
	}
	for _, a := range ivs {
		for _, b := range ivs {
			if !a.Sub(b).Equal(a.Add(b.Neg())) {
				t.Errorf("%s - %s differs from %s + neg(%s)", a, b, a, b)
			}
		}
	}
}

func TestIntervalAddNegContainsZero(t *testing.T) {
	ivs := []Interval{Unit(), FiniteInterval(1, 3), FiniteInterval(-7, -2), FiniteInterval(5, 5)}
	zero := FiniteBound(0)
	for _, a := range ivs {
		sum := a.Add(a.Neg())
		if !(sum.Low().Leq(zero) && sum.High().Geq(zero)) {
			t.Errorf("%s + neg(%s) = %s does not contain 0", a, a, sum)
		}
	}
}

func TestIntervalMul(t *testing.T) {
	type b = FiniteBound
	type P = PlusInfinity
	type M = MinusInfinity

	tests := []struct {
		a, b, expected Interval
	}{
		{FiniteInterval(2, 3), FiniteInterval(4, 5), FiniteInterval(8, 15)},
		{FiniteInterval(-2, 3), FiniteInterval(4, 5), FiniteInterval(-10, 15)},
		{FiniteInterval(-2, -1), FiniteInterval(-4, -3), FiniteInterval(3, 8)},
		{Empty(), FiniteInterval(1, 2), Empty()},
		{FiniteInterval(1, 2), Empty(), Empty()},
		{FiniteInterval(0, 0), Full(), FiniteInterval(0, 0)},
		{FiniteInterval(2, 2), MkInterval(M{}, b(1)), MkInterval(M{}, b(2))},
		{Full(), Full(), Full()},
	}

	for _, test := range tests {
		res := test.a.Mul(test.b)
		if !res.Equal(test.expected) {
			t.Errorf("%s * %s = %s, expected %s\n", test.a, test.b, res, test.expected)
		}
	}
}

func TestIntervalMulUnit(t *testing.T) {
	// a * [0,1] spans from min(0, low(a)) to max(0, high(a)).
	tests := []struct {
		a, expected Interval
	}{
		{FiniteInterval(2, 5), FiniteInterval(0, 5)},
		{FiniteInterval(-3, 5), FiniteInterval(-3, 5)},
		{FiniteInterval(-4, -2), FiniteInterval(-4, 0)},
	}
	for _, test := range tests {
		res := test.a.Mul(Unit())
		if !res.Equal(test.expected) {
			t.Errorf("%s * %s = %s, expected %s\n", test.a, Unit(), res, test.expected)
		}
	}
}

func TestIntervalDiv(t *testing.T) {
	tests := []struct {
		a, b, expected Interval
	}{
		{FiniteInterval(10, 10), FiniteInterval(2, 2), FiniteInterval(5, 5)},
		{FiniteInterval(10, 10), FiniteInterval(3, 3), FiniteInterval(3, 4)},
		{FiniteInterval(10, 10), FiniteInterval(-1, 1), Full()},
		{FiniteInterval(1, 1), FiniteInterval(0, 0), Full()},
		{FiniteInterval(-10, 10), FiniteInterval(2, 5), FiniteInterval(-5, 5)},
		{Empty(), FiniteInterval(1, 2), Empty()},
		{FiniteInterval(1, 2), Empty(), Empty()},
	}

	for _, test := range tests {
		res := test.a.Div(test.b)
		if !res.Equal(test.expected) {
			t.Errorf("%s / %s = %s, expected %s\n", test.a, test.b, res, test.expected)
		}
	}
}

func TestIntervalComparisons(t *testing.T) {
	tests := []struct {
		name     string
		op       func(Interval, Interval) Interval
		a, b     Interval
		expected Interval
	}{
		{"lt", Interval.Lt, FiniteInterval(0, 0), FiniteInterval(10, 10), Singleton(1)},
		{"lt", Interval.Lt, FiniteInterval(11, 12), FiniteInterval(0, 10), Singleton(0)},
		{"lt", Interval.Lt, FiniteInterval(0, 16), FiniteInterval(10, 10), Unit()},
		{"lt", Interval.Lt, Empty(), FiniteInterval(1, 2), Empty()},
		{"gt", Interval.Gt, FiniteInterval(11, 12), FiniteInterval(0, 10), Singleton(1)},
		{"gt", Interval.Gt, FiniteInterval(0, 0), FiniteInterval(10, 10), Singleton(0)},
		{"eq", Interval.Eq, FiniteInterval(3, 3), FiniteInterval(3, 3), Singleton(1)},
		{"eq", Interval.Eq, FiniteInterval(3, 3), FiniteInterval(4, 4), Singleton(0)},
		{"eq", Interval.Eq, FiniteInterval(0, 1), FiniteInterval(3, 4), Singleton(0)},
		{"eq", Interval.Eq, FiniteInterval(0, 5), FiniteInterval(3, 3), Unit()},
		{"eq", Interval.Eq, Empty(), Empty(), Empty()},
		{"ne", Interval.Ne, FiniteInterval(3, 3), FiniteInterval(3, 3), Singleton(0)},
		{"ne", Interval.Ne, FiniteInterval(0, 1), FiniteInterval(3, 4), Singleton(1)},
		{"ne", Interval.Ne, FiniteInterval(0, 5), FiniteInterval(3, 3), Unit()},
	}

	for _, test := range tests {
		res := test.op(test.a, test.b)
		if !res.Equal(test.expected) {
			t.Errorf("%s(%s, %s) = %s, expected %s\n", test.name, test.a, test.b, res, test.expected)
		}
	}
}

func TestIntervalEqReflexive(t *testing.T) {
	one := FiniteBound(1)
	for _, a := range []Interval{Singleton(3), Unit(), FiniteInterval(-2, 7)} {
		res := a.Eq(a)
		if !(res.Low().Leq(one) && res.High().Geq(one)) {
			t.Errorf("eq(%s, %s) = %s does not contain 1", a, a, res)
		}
	}
}

func TestIntervalEqual(t *testing.T) {
	tests := []struct {
		a, b     Interval
		expected bool
	}{
		{Empty(), Empty(), true},
		{Full(), Full(), true},
		{Empty(), Full(), false},
		{FiniteInterval(1, 2), FiniteInterval(1, 2), true},
		{FiniteInterval(1, 2), FiniteInterval(1, 3), false},
		{MkInterval(MinusInfinity{}, FiniteBound(2)), MkInterval(MinusInfinity{}, FiniteBound(2)), true},
		{MkInterval(MinusInfinity{}, FiniteBound(2)), FiniteInterval(-1e308, 2), false},
	}
	for _, test := range tests {
		if res := test.a.Equal(test.b); res != test.expected {
			t.Errorf("%s = %s is %v, expected %v", test.a, test.b, res, test.expected)
		}
	}
}

func TestIntervalString(t *testing.T) {
	tests := []struct {
		a        Interval
		expected string
	}{
		{Full(), "[-inf,+inf]"},
		{Empty(), "[+inf,-inf]"},
		{Unit(), "[0,1]"},
		{FiniteInterval(-3.5, 4.5), "[-4,5]"},
		{MkInterval(FiniteBound(0), PlusInfinity{}), "[0,+inf]"},
	}
	for _, test := range tests {
		if res := test.a.String(); res != test.expected {
			t.Errorf("String(%v) = %q, expected %q", test.a, res, test.expected)
		}
	}
}
