package memsafety

import (
	"fmt"
	"strings"

	"github.com/benbjohnson/immutable"

	"github.com/cs-au-dk/tipdetect/analysis/lattice"
	"github.com/cs-au-dk/tipdetect/ir"
	"github.com/cs-au-dk/tipdetect/utils"
)

// MapState is the per-program-point dataflow fact: a total map from
// eligible cells (by arena id) to their cell state. MapStates are
// immutable; transfer and join produce fresh states.
type MapState struct {
	m *immutable.Map[int, lattice.CellState]
}

// bottomState maps every eligible cell to ⊥.
func bottomState(eligible []int) MapState {
	m := immutable.NewMap[int, lattice.CellState](utils.IntHasher())
	for _, id := range eligible {
		m = m.Set(id, lattice.CellBot)
	}
	return MapState{m}
}

// Get returns the state of the cell. Cells outside the eligible set have
// no entry.
func (s MapState) Get(id int) (lattice.CellState, bool) {
	return s.m.Get(id)
}

// Set updates the state of an eligible cell. Updates to cells outside the
// eligible set are dropped, keeping the map total over exactly the
// eligible cells.
func (s MapState) Set(id int, st lattice.CellState) MapState {
	if _, ok := s.m.Get(id); !ok {
		return s
	}
	return MapState{s.m.Set(id, st)}
}

// Join computes the pointwise least upper bound over the eligible cells.
func (s MapState) Join(o MapState, eligible []int) MapState {
	res := s.m
	for _, id := range eligible {
		a, _ := s.m.Get(id)
		b, _ := o.m.Get(id)
		if j := a.Join(b); j != a {
			res = res.Set(id, j)
		}
	}
	return MapState{res}
}

// Equal compares two states over the eligible cells.
func (s MapState) Equal(o MapState, eligible []int) bool {
	for _, id := range eligible {
		a, _ := s.m.Get(id)
		b, _ := o.m.Get(id)
		if a != b {
			return false
		}
	}
	return true
}

// format renders the state with cell names resolved through the arena.
func (s MapState) format(eligible []int, cell func(int) ir.Value) string {
	parts := make([]string, 0, len(eligible))
	for _, id := range eligible {
		st, _ := s.m.Get(id)
		parts = append(parts, fmt.Sprintf("%s: %s", cell(id).Name(), st))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
