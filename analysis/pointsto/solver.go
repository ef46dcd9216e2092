package pointsto

import (
	"fmt"
	"log"
	"strings"

	"golang.org/x/tools/container/intsets"

	"github.com/cs-au-dk/tipdetect/config"
	"github.com/cs-au-dk/tipdetect/ir"
	"github.com/cs-au-dk/tipdetect/utils/worklist"
)

// Cells are identified by their index into the solver arena, so that the
// solution, subset-edge and equivalence structures are keyed by small
// integers and subset-edge cycles carry no ownership concerns.

// Result is the solved points-to information of a single function.
type Result struct {
	cells []ir.Value
	index map[ir.Value]int
	sol   []intsets.Sparse
	succ  []intsets.Sparse
	equiv []intsets.Sparse
}

// tokenCell is a pending propagation of token into the set of cell.
type tokenCell struct {
	token int
	cell  int
}

// condPair keys conditional subset edges: edges installed once token
// enters the solution of cell.
type condPair struct {
	cell  int
	token int
}

type edge struct {
	from int
	to   int
}

type solver struct {
	cells []ir.Value
	index map[ir.Value]int
	sol   []intsets.Sparse
	succ  []intsets.Sparse
	equiv []intsets.Sparse
	cond  map[condPair][]edge
	work  worklist.Worklist[tokenCell]
	debug bool
}

// Analyze collects the constraints of fn and solves them.
func Analyze(fn *ir.Function, conf config.Config) *Result {
	constraints, cells, _ := Collect(fn)
	s := newSolver(cells, conf.Debug)
	s.solve(constraints)
	return &Result{
		cells: s.cells,
		index: s.index,
		sol:   s.sol,
		succ:  s.succ,
		equiv: s.equiv,
	}
}

func newSolver(cells []ir.Value, debug bool) *solver {
	s := &solver{
		cells: cells,
		index: make(map[ir.Value]int, len(cells)),
		sol:   make([]intsets.Sparse, len(cells)),
		succ:  make([]intsets.Sparse, len(cells)),
		equiv: make([]intsets.Sparse, len(cells)),
		cond:  make(map[condPair][]edge),
		work:  worklist.Empty[tokenCell](),
		debug: debug,
	}
	for id, c := range cells {
		s.index[c] = id
		// Every cell is syntactically equivalent to itself.
		s.equiv[id].Insert(id)
	}
	return s
}

// solve processes each constraint in turn, maintaining the invariant that
// the worklist is drained before the next constraint is considered.
func (s *solver) solve(constraints []Constraint) {
	for _, c := range constraints {
		if s.debug {
			log.Printf("processing constraint %s", c)
		}
		switch c.Kind {
		case Alloc:
			// Seed the allocation site into its own set.
			s.addToken(s.index[c.Src], s.index[c.Dst])
			s.propagate()

		case Store:
			x := s.index[c.Dst]
			y := s.index[c.Src]

			s.addToken(y, x)
			s.propagate()

			for cid := range s.cells {
				if s.sol[x].Has(cid) {
					s.addEdge(y, cid)
					s.propagate()
				} else {
					key := condPair{x, cid}
					s.cond[key] = append(s.cond[key], edge{y, cid})
				}
			}

		case Load:
			x := s.index[c.Src]
			z := s.index[c.Dst]
			for cid := range s.cells {
				if s.sol[x].Has(cid) {
					s.addToken(cid, z)
					s.propagate()
				} else {
					key := condPair{x, cid}
					s.cond[key] = append(s.cond[key], edge{cid, z})
				}
			}

		case Assign:
			src := s.index[c.Src]
			dst := s.index[c.Dst]
			s.addEdge(src, dst)
			// Only the destination is credited with the source; the
			// equivalence relation stays asymmetric.
			s.equiv[dst].Insert(src)
			s.propagate()
		}
	}
}

// addToken inserts t into sol(x), scheduling propagation on growth and
// pulling in every cell syntactically equivalent to t.
func (s *solver) addToken(t, x int) {
	if s.sol[x].Insert(t) {
		if s.debug {
			log.Printf("  token %s -> cell %s", s.cells[t].Name(), s.cells[x].Name())
		}
		s.work.Add(tokenCell{t, x})

		var equivs []int
		for _, e := range s.equiv[t].AppendTo(equivs) {
			s.addToken(e, x)
		}
	}
}

// addEdge installs the subset edge pt(x) ⊆ pt(y) and forwards the tokens
// already known for x.
func (s *solver) addEdge(x, y int) {
	if x == y {
		return
	}
	if !s.succ[x].Insert(y) {
		return
	}
	if s.debug {
		log.Printf("  edge %s -> %s", s.cells[x].Name(), s.cells[y].Name())
	}

	var tokens []int
	for _, t := range s.sol[x].AppendTo(tokens) {
		s.addToken(t, y)
	}
}

// propagate drains the worklist: each pending (token, cell) pair installs
// the conditional edges it unlocks and flows the token across the
// subset edges of its cell.
func (s *solver) propagate() {
	for !s.work.IsEmpty() {
		curr := s.work.GetNext()
		t, x := curr.token, curr.cell

		for _, e := range s.cond[condPair{x, t}] {
			s.addEdge(e.from, e.to)
		}

		var succs []int
		for _, y := range s.succ[x].AppendTo(succs) {
			s.addToken(t, y)
		}
	}
}

// Cells returns every registered cell in arena order.
func (r *Result) Cells() []ir.Value { return r.cells }

// CellID resolves a value to its arena index.
func (r *Result) CellID(v ir.Value) (int, bool) {
	id, ok := r.index[v]
	return id, ok
}

// Cell returns the value of an arena index.
func (r *Result) Cell(id int) ir.Value { return r.cells[id] }

// PointsTo returns the points-to set of v in arena order.
func (r *Result) PointsTo(v ir.Value) []ir.Value {
	id, ok := r.index[v]
	if !ok {
		return nil
	}
	var ids []int
	var res []ir.Value
	for _, t := range r.sol[id].AppendTo(ids) {
		res = append(res, r.cells[t])
	}
	return res
}

// Equiv returns the directly equivalent cells of v (including v itself).
func (r *Result) Equiv(v ir.Value) []ir.Value {
	id, ok := r.index[v]
	if !ok {
		return nil
	}
	var ids []int
	var res []ir.Value
	for _, e := range r.equiv[id].AppendTo(ids) {
		res = append(res, r.cells[e])
	}
	return res
}

// AliasClosure returns the arena ids reachable from root by transitively
// following the equivalence relation, in arena order. A root that is not a
// registered cell has an empty closure.
func (r *Result) AliasClosure(root ir.Value) []int {
	id, ok := r.index[root]
	if !ok {
		return nil
	}
	var visited intsets.Sparse
	stack := []int{id}
	visited.Insert(id)
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		var ids []int
		for _, e := range r.equiv[n].AppendTo(ids) {
			if visited.Insert(e) {
				stack = append(stack, e)
			}
		}
	}
	var res []int
	return visited.AppendTo(res)
}

// String renders the solution cell by cell.
func (r *Result) String() string {
	var sb strings.Builder
	for id, c := range r.cells {
		fmt.Fprintf(&sb, "%s -> {%s} equiv {%s}\n",
			c.Name(), r.nameList(&r.sol[id]), r.nameList(&r.equiv[id]))
	}
	return sb.String()
}

func (r *Result) nameList(set *intsets.Sparse) string {
	var ids []int
	names := []string{}
	for _, id := range set.AppendTo(ids) {
		names = append(names, r.cells[id].Name())
	}
	return strings.Join(names, ", ")
}
