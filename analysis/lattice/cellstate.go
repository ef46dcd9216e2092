package lattice

import "fmt"

// CellState is a member of the five-point lattice tracking the allocation
// status of an abstract memory cell:
//
//	      ⊤
//	 /    |    \
//	HA    SA    HF
//	 \    |    /
//	      ⊥
//
// with the one extra ordering HA ⊑ HF (see Join).
type CellState uint8

const (
	// CellBot is ⊥: the cell has not been allocated on any path.
	CellBot CellState = iota
	// HeapAllocated marks a live calloc allocation.
	HeapAllocated
	// StackAllocated marks a live alloca allocation.
	StackAllocated
	// HeapFreed marks a heap allocation released by free.
	HeapFreed
	// CellTop is ⊤: incompatible allocation statuses merged.
	CellTop
)

// Join computes s1 ⊔ s2. The lattice is flat except for one deliberate
// asymmetry: HeapAllocated ⊔ HeapFreed = HeapFreed, so a possibly-freed
// cell counts as freed and double-free/use-after-free are never masked.
func (s1 CellState) Join(s2 CellState) CellState {
	switch {
	case s1 == s2:
		return s1
	case s1 == CellTop || s2 == CellTop:
		return CellTop
	case s1 == CellBot:
		return s2
	case s2 == CellBot:
		return s1
	case s1 == StackAllocated || s2 == StackAllocated:
		return CellTop
	}
	// Unequal, neither ⊥/⊤ nor stack: HeapAllocated with HeapFreed.
	return HeapFreed
}

// Leq computes s1 ⊑ s2.
func (s1 CellState) Leq(s2 CellState) bool {
	return s1.Join(s2) == s2
}

func (s CellState) String() string {
	switch s {
	case CellBot:
		return "⊥"
	case HeapAllocated:
		return "HeapAllocated"
	case StackAllocated:
		return "StackAllocated"
	case HeapFreed:
		return "HeapFreed"
	case CellTop:
		return "⊤"
	}
	return fmt.Sprintf("CellState(%d)", uint8(s))
}
