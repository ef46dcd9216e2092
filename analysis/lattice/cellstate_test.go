package lattice

import "testing"

func TestCellStateJoin(t *testing.T) {
	tests := []struct {
		a, b, expected CellState
	}{
		{CellBot, CellBot, CellBot},
		{CellBot, HeapAllocated, HeapAllocated},
		{CellBot, StackAllocated, StackAllocated},
		{CellBot, HeapFreed, HeapFreed},
		{CellBot, CellTop, CellTop},
		{HeapAllocated, HeapAllocated, HeapAllocated},
		{HeapAllocated, StackAllocated, CellTop},
		{HeapAllocated, HeapFreed, HeapFreed},
		{HeapAllocated, CellTop, CellTop},
		{StackAllocated, StackAllocated, StackAllocated},
		{StackAllocated, HeapFreed, CellTop},
		{StackAllocated, CellTop, CellTop},
		{HeapFreed, HeapFreed, HeapFreed},
		{HeapFreed, CellTop, CellTop},
		{CellTop, CellTop, CellTop},
	}

	for _, test := range tests {
		if res := test.a.Join(test.b); res != test.expected {
			t.Errorf("%s ⊔ %s = %s, expected %s\n", test.a, test.b, res, test.expected)
		}
		// The join table is commutative.
		if res := test.b.Join(test.a); res != test.expected {
			t.Errorf("%s ⊔ %s = %s, expected %s\n", test.b, test.a, res, test.expected)
		}
	}
}

func TestCellStateLeq(t *testing.T) {
	tests := []struct {
		a, b     CellState
		expected bool
	}{
		{CellBot, HeapAllocated, true},
		{CellBot, CellTop, true},
		{HeapAllocated, CellTop, true},
		{CellTop, HeapAllocated, false},
		{StackAllocated, HeapFreed, false},
		{HeapAllocated, HeapFreed, true},
		{HeapFreed, HeapAllocated, false},
	}

	for _, test := range tests {
		if res := test.a.Leq(test.b); res != test.expected {
			t.Errorf("%s ⊑ %s = %v, expected %v\n", test.a, test.b, res, test.expected)
		}
	}
}
