// Package ir defines the SSA-form intermediate representation consumed by
// the detection passes. A Function is an ordered list of BasicBlocks, each
// an ordered list of Instructions ending in a terminator. Every instruction
// except stores and terminators names an SSA value.
//
// The representation deliberately mirrors the fragment of instructions that
// arise when compiling TIP programs: phis, the four signed integer binary
// operators, the four signed comparisons, selects, stack and heap
// allocation, loads, stores, calls by name, and the three pointer cast
// forms. Everything else a richer IR would carry is out of scope for the
// analyses in this repository.
package ir

import "fmt"

// Value is an SSA name: either the result of a value-producing instruction,
// a function parameter, or an integer literal. Values are compared by
// identity and are valid map keys.
type Value interface {
	// Name returns the SSA name of the value. Constants return their
	// literal spelling.
	Name() string
	String() string
}

// Instruction is implemented by every member of a basic block.
type Instruction interface {
	// Block returns the basic block the instruction belongs to.
	Block() *BasicBlock
	// Operands returns the values the instruction uses, in syntactic
	// order. Terminator block references are not operands.
	Operands() []Value
	String() string

	setBlock(*BasicBlock)
}

// Terminator is implemented by instructions that end a basic block.
type Terminator interface {
	Instruction
	// Successors returns the blocks control may transfer to.
	Successors() []*BasicBlock
}

// Function is a single analyzed function.
type Function struct {
	FuncName string
	Params   []*Param
	Blocks   []*BasicBlock
}

// BasicBlock is a maximal straight-line instruction sequence. The last
// instruction of a finished block is its terminator.
type BasicBlock struct {
	BlockName string
	Index     int
	Instrs    []Instruction
	fn        *Function
}

// register is embedded by every value-producing instruction. It carries the
// SSA name, the owning block and the instructions using the value.
type register struct {
	name      string
	block     *BasicBlock
	referrers []Instruction
}

func (r *register) Name() string              { return r.name }
func (r *register) Block() *BasicBlock        { return r.block }
func (r *register) Referrers() []Instruction  { return r.referrers }
func (r *register) setBlock(b *BasicBlock)    { r.block = b }
func (r *register) addReferrer(i Instruction) { r.referrers = append(r.referrers, i) }

// anInstruction is embedded by instructions that do not produce a value.
type anInstruction struct {
	block *BasicBlock
}

func (i *anInstruction) Block() *BasicBlock     { return i.block }
func (i *anInstruction) setBlock(b *BasicBlock) { i.block = b }

// defined is satisfied by values that track their referrers, i.e. every
// value except constants.
type defined interface {
	Value
	addReferrer(Instruction)
}

// Const is an integer literal operand. Constants are not instructions and
// have no defining block; every occurrence is a distinct node.
type Const struct {
	Value int64
}

func (c *Const) Name() string   { return fmt.Sprintf("%d", c.Value) }
func (c *Const) String() string { return c.Name() }

// Param is a function parameter.
type Param struct {
	register
}

func (p *Param) String() string { return p.name }

// BinaryOp enumerates the supported binary opcodes.
type BinaryOp uint8

const (
	Add BinaryOp = iota
	Sub
	Mul
	SDiv
)

func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "add"
	case Sub:
		return "sub"
	case Mul:
		return "mul"
	case SDiv:
		return "sdiv"
	}
	return fmt.Sprintf("binop(%d)", op)
}

// Predicate enumerates the supported signed comparison predicates.
type Predicate uint8

const (
	EQ Predicate = iota
	NE
	SLT
	SGT
)

func (p Predicate) String() string {
	switch p {
	case EQ:
		return "eq"
	case NE:
		return "ne"
	case SLT:
		return "slt"
	case SGT:
		return "sgt"
	}
	return fmt.Sprintf("pred(%d)", p)
}

// Phi merges one incoming value per predecessor.
type Phi struct {
	register
	Edges []Value
}

// BinOp computes Op(X, Y).
type BinOp struct {
	register
	Op   BinaryOp
	X, Y Value
}

// ICmp compares X and Y under a signed predicate, producing 0 or 1.
type ICmp struct {
	register
	Pred Predicate
	X, Y Value
}

// Select picks TrueVal or FalseVal depending on Cond.
type Select struct {
	register
	Cond     Value
	TrueVal  Value
	FalseVal Value
}

// Alloca reserves a stack slot and names its address.
type Alloca struct {
	register
}

// Load reads through Ptr.
type Load struct {
	register
	Ptr Value
}

// Store writes Val through Ptr. Stores produce no value.
type Store struct {
	anInstruction
	Val Value
	Ptr Value
}

// Call invokes a function by name. The analyses only interpret the callees
// "calloc" and "free"; any other callee is an unknown external call.
type Call struct {
	register
	Callee string
	Args   []Value
}

// Cast renames X at a different pointer type.
type Cast struct {
	register
	X Value
}

// IntToPtr reinterprets an integer as a pointer.
type IntToPtr struct {
	register
	X Value
}

// PtrToInt reinterprets a pointer as an integer.
type PtrToInt struct {
	register
	X Value
}

// Jump transfers control unconditionally.
type Jump struct {
	anInstruction
	Target *BasicBlock
}

// CondBr transfers control to Then when Cond is nonzero, and to Else
// otherwise.
type CondBr struct {
	anInstruction
	Cond Value
	Then *BasicBlock
	Else *BasicBlock
}

// Ret leaves the function. X may be nil.
type Ret struct {
	anInstruction
	X Value
}

func (i *Phi) Operands() []Value { return append([]Value(nil), i.Edges...) }
func (i *BinOp) Operands() []Value {
	return []Value{i.X, i.Y}
}
func (i *ICmp) Operands() []Value     { return []Value{i.X, i.Y} }
func (i *Select) Operands() []Value   { return []Value{i.Cond, i.TrueVal, i.FalseVal} }
func (i *Alloca) Operands() []Value   { return nil }
func (i *Load) Operands() []Value     { return []Value{i.Ptr} }
func (i *Store) Operands() []Value    { return []Value{i.Val, i.Ptr} }
func (i *Call) Operands() []Value     { return append([]Value(nil), i.Args...) }
func (i *Cast) Operands() []Value     { return []Value{i.X} }
func (i *IntToPtr) Operands() []Value { return []Value{i.X} }
func (i *PtrToInt) Operands() []Value { return []Value{i.X} }
func (i *Jump) Operands() []Value     { return nil }
func (i *CondBr) Operands() []Value   { return []Value{i.Cond} }
func (i *Ret) Operands() []Value {
	if i.X == nil {
		return nil
	}
	return []Value{i.X}
}

func (i *Jump) Successors() []*BasicBlock   { return []*BasicBlock{i.Target} }
func (i *CondBr) Successors() []*BasicBlock { return []*BasicBlock{i.Then, i.Else} }
func (i *Ret) Successors() []*BasicBlock    { return nil }

// Name returns the function name.
func (f *Function) Name() string { return f.FuncName }

// NewBlock appends a fresh basic block to the function.
func (f *Function) NewBlock(name string) *BasicBlock {
	b := &BasicBlock{BlockName: name, Index: len(f.Blocks), fn: f}
	f.Blocks = append(f.Blocks, b)
	return b
}

// AddParam appends a fresh parameter to the function.
func (f *Function) AddParam(name string) *Param {
	p := &Param{register{name: name}}
	f.Params = append(f.Params, p)
	return p
}

// Append adds an instruction at the end of the block and returns it.
func (b *BasicBlock) Append(i Instruction) Instruction {
	i.setBlock(b)
	b.Instrs = append(b.Instrs, i)
	return i
}

// Parent returns the enclosing function.
func (b *BasicBlock) Parent() *Function { return b.fn }

// Terminator returns the block terminator, or nil for an unfinished block.
func (b *BasicBlock) Terminator() Terminator {
	if len(b.Instrs) == 0 {
		return nil
	}
	t, _ := b.Instrs[len(b.Instrs)-1].(Terminator)
	return t
}

// Instructions returns all instructions of the function in block order.
func (f *Function) Instructions() []Instruction {
	var all []Instruction
	for _, b := range f.Blocks {
		all = append(all, b.Instrs...)
	}
	return all
}

// Finish validates the function and computes referrer lists. Every block
// must end in a terminator and terminators must not appear mid-block.
func (f *Function) Finish() error {
	for _, b := range f.Blocks {
		if b.Terminator() == nil {
			return fmt.Errorf("function %s: block %s has no terminator", f.FuncName, b.BlockName)
		}
		for idx, i := range b.Instrs {
			if _, ok := i.(Terminator); ok && idx != len(b.Instrs)-1 {
				return fmt.Errorf("function %s: terminator mid-block in %s", f.FuncName, b.BlockName)
			}
		}
	}
	for _, b := range f.Blocks {
		for _, i := range b.Instrs {
			for _, op := range i.Operands() {
				if d, ok := op.(defined); ok {
					d.addReferrer(i)
				}
			}
		}
	}
	return nil
}

// Referrers returns the instructions using v, or nil when v does not track
// its users (constants).
func Referrers(v Value) []Instruction {
	type referrers interface{ Referrers() []Instruction }
	if r, ok := v.(referrers); ok {
		return r.Referrers()
	}
	return nil
}
