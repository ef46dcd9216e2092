package memsafety

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sebdah/goldie/v2"

	"github.com/cs-au-dk/tipdetect/analysis/lattice"
	"github.com/cs-au-dk/tipdetect/config"
	"github.com/cs-au-dk/tipdetect/ir"
)

const doubleFreeSrc = `
func dfree() {
entry:
  p = call calloc(1, 8)
  call free(p)
  call free(p)
  ret
}
`

const useAfterFreeSrc = `
func uaf() {
entry:
  p = call calloc(1, 8)
  q = cast p
  call free(p)
  x = load q
  ret
}
`

const stackFreeSrc = `
func sfree() {
entry:
  p = alloca
  call free(p)
  ret
}
`

func analyze(t *testing.T, src string) *Result {
	t.Helper()
	fn, err := ir.ParseFunction(src)
	if err != nil {
		t.Fatal(err)
	}
	return Analyze(fn, config.Default())
}

func kinds(violations []Violation) []ViolationKind {
	res := []ViolationKind{}
	for _, v := range violations {
		res = append(res, v.Kind)
	}
	return res
}

func TestDoubleFree(t *testing.T) {
	res := analyze(t, doubleFreeSrc)
	if diff := cmp.Diff([]ViolationKind{DoubleFree}, kinds(res.Violations)); diff != "" {
		t.Errorf("violations mismatch (-want +got):\n%s", diff)
	}
	// The report is tied to the second free, not the first.
	second := res.Function().Blocks[0].Instrs[2]
	if len(res.Violations) == 1 && res.Violations[0].Instr != second {
		t.Errorf("violation reported on %s, expected %s", res.Violations[0].Instr, second)
	}
}

func TestUseAfterFreeThroughCast(t *testing.T) {
	res := analyze(t, useAfterFreeSrc)
	if diff := cmp.Diff([]ViolationKind{UseAfterFree}, kinds(res.Violations)); diff != "" {
		t.Errorf("violations mismatch (-want +got):\n%s", diff)
	}
	load := res.Function().Blocks[0].Instrs[3]
	if len(res.Violations) == 1 && res.Violations[0].Instr != load {
		t.Errorf("violation reported on %s, expected %s", res.Violations[0].Instr, load)
	}
}

// Pointer arithmetic through integers is approximated as assignment, so
// the alias closure survives a ptrtoint/inttoptr round trip.
func TestUseAfterFreeThroughIntegerCast(t *testing.T) {
	res := analyze(t, `
func intcast() {
entry:
  p = call calloc(1, 8)
  i = ptrtoint p
  q = inttoptr i
  call free(p)
  x = load q
  ret
}
`)
	if diff := cmp.Diff([]ViolationKind{UseAfterFree}, kinds(res.Violations)); diff != "" {
		t.Errorf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestStackFree(t *testing.T) {
	res := analyze(t, stackFreeSrc)
	if diff := cmp.Diff([]ViolationKind{StackFree}, kinds(res.Violations)); diff != "" {
		t.Errorf("violations mismatch (-want +got):\n%s", diff)
	}
}

func TestNoViolations(t *testing.T) {
	res := analyze(t, `
func clean() {
entry:
  p = call calloc(1, 8)
  store 1, p
  x = load p
  call free(p)
  ret
}
`)
	if len(res.Violations) != 0 {
		t.Errorf("expected no violations, got %v", res.Violations)
	}
}

// At function entry every eligible cell is ⊥.
func TestEntryStateIsBottom(t *testing.T) {
	res := analyze(t, doubleFreeSrc)
	entry := res.Function().Blocks[0].Instrs[0]
	in := res.States.In(entry)
	for _, id := range res.States.EligibleCells() {
		st, ok := in.Get(id)
		if !ok || st != lattice.CellBot {
			t.Errorf("cell %s is %s at entry, expected ⊥",
				res.PointsTo.Cell(id).Name(), st)
		}
	}
}

// A cell HeapAllocated on one branch and HeapFreed on the other merges to
// HeapFreed, so the use after the merge is flagged.
func TestBranchMergePrefersFreed(t *testing.T) {
	res := analyze(t, `
func maybe(c) {
entry:
  p = call calloc(1, 8)
  cnd = icmp sgt c, 0
  br cnd, thenb, elseb
thenb:
  call free(p)
  jmp joinb
elseb:
  jmp joinb
joinb:
  x = load p
  ret
}
`)
	if diff := cmp.Diff([]ViolationKind{UseAfterFree}, kinds(res.Violations)); diff != "" {
		t.Errorf("violations mismatch (-want +got):\n%s", diff)
	}

	fn := res.Function()
	load := fn.Blocks[3].Instrs[0]
	call := fn.Blocks[0].Instrs[0].(*ir.Call)
	id, ok := res.PointsTo.CellID(call)
	if !ok {
		t.Fatal("calloc call is not a registered cell")
	}
	if st, _ := res.States.In(load).Get(id); st != lattice.HeapFreed {
		t.Errorf("merged state of p is %s, expected HeapFreed", st)
	}
}

// Freeing through an unknown pointer (never constrained) is silently
// skipped rather than reported.
func TestUnknownFreeIsSkipped(t *testing.T) {
	res := analyze(t, `
func unknown(p) {
entry:
  call free(p)
  ret
}
`)
	if len(res.Violations) != 0 {
		t.Errorf("expected no violations, got %v", res.Violations)
	}
}

func TestViolationsGolden(t *testing.T) {
	out := []byte{}
	for _, src := range []string{doubleFreeSrc, useAfterFreeSrc, stackFreeSrc} {
		out = append(out, analyze(t, src).String()...)
	}
	goldie.New(t).Assert(t, t.Name(), out)
}
