package ir

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Parse reads a sequence of textual IR functions. The format is
// line-oriented:
//
//	func main() {
//	entry:
//	  p = call calloc(1, 8)
//	  q = cast p
//	  call free(p)
//	  x = load q
//	  ret
//	}
//
// Lines starting with '#' are comments. A function body without an initial
// label gets an implicit "entry" block. Operands are SSA names or integer
// literals; forward references (e.g. phi back edges) are allowed.
func Parse(r io.Reader) ([]*Function, error) {
	var (
		fns    []*Function
		header string
		body   []string
		lineno int
		start  int
	)
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		lineno++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		switch {
		case header == "":
			if !strings.HasPrefix(line, "func ") {
				return nil, fmt.Errorf("line %d: expected function header, got %q", lineno, line)
			}
			header = line
			start = lineno
			body = body[:0]
		case line == "}":
			fn, err := parseFunction(header, body, start)
			if err != nil {
				return nil, err
			}
			fns = append(fns, fn)
			header = ""
		default:
			body = append(body, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if header != "" {
		return nil, fmt.Errorf("line %d: unterminated function %q", start, header)
	}
	return fns, nil
}

// ParseFile parses the textual IR in the named file.
func ParseFile(path string) ([]*Function, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fns, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fns, nil
}

// ParseFunction parses a source string containing exactly one function.
// Intended for tests.
func ParseFunction(src string) (*Function, error) {
	fns, err := Parse(strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	if len(fns) != 1 {
		return nil, fmt.Errorf("expected exactly one function, got %d", len(fns))
	}
	return fns[0], nil
}

// fixup defers operand resolution until every value of the function has
// been created, so that phis may reference later definitions.
type fixup func(resolve func(string) (Value, error)) error

func parseFunction(header string, body []string, lineno int) (*Function, error) {
	name, params, err := parseHeader(header)
	if err != nil {
		return nil, fmt.Errorf("line %d: %w", lineno, err)
	}

	fn := &Function{FuncName: name}
	env := map[string]Value{}
	for _, p := range params {
		if _, dup := env[p]; dup {
			return nil, fmt.Errorf("line %d: duplicate parameter %q", lineno, p)
		}
		env[p] = fn.AddParam(p)
	}

	// First pass: block structure.
	blocks := map[string]*BasicBlock{}
	var cur *BasicBlock
	ensure := func(label string) *BasicBlock {
		if b, ok := blocks[label]; ok {
			return b
		}
		b := fn.NewBlock(label)
		blocks[label] = b
		return b
	}
	type pending struct {
		block *BasicBlock
		line  string
	}
	var insts []pending
	for _, line := range body {
		if label, ok := cutSuffix(line, ":"); ok {
			cur = ensure(label)
			continue
		}
		if cur == nil {
			cur = ensure("entry")
		}
		insts = append(insts, pending{cur, line})
	}

	// Second pass: create instructions, gather operand fixups.
	var fixups []fixup
	tmp := 0
	for _, p := range insts {
		fix, err := parseInstr(fn, p.block, p.line, env, blocks, &tmp)
		if err != nil {
			return nil, fmt.Errorf("function %s: %w", name, err)
		}
		if fix != nil {
			fixups = append(fixups, fix)
		}
	}

	resolve := func(op string) (Value, error) {
		if c, err := strconv.ParseInt(op, 10, 64); err == nil {
			return &Const{Value: c}, nil
		}
		if v, ok := env[op]; ok {
			return v, nil
		}
		return nil, fmt.Errorf("function %s: undefined value %q", name, op)
	}
	for _, fix := range fixups {
		if err := fix(resolve); err != nil {
			return nil, err
		}
	}

	if err := fn.Finish(); err != nil {
		return nil, err
	}
	return fn, nil
}

func parseHeader(header string) (string, []string, error) {
	rest := strings.TrimPrefix(header, "func ")
	rest, ok := cutSuffix(strings.TrimSpace(rest), "{")
	if !ok {
		return "", nil, fmt.Errorf("malformed function header %q", header)
	}
	rest = strings.TrimSpace(rest)
	open := strings.IndexByte(rest, '(')
	if open < 0 || !strings.HasSuffix(rest, ")") {
		return "", nil, fmt.Errorf("malformed function header %q", header)
	}
	name := strings.TrimSpace(rest[:open])
	if name == "" {
		return "", nil, fmt.Errorf("missing function name in %q", header)
	}
	return name, splitOperands(rest[open+1 : len(rest)-1]), nil
}

func parseInstr(
	fn *Function,
	b *BasicBlock,
	line string,
	env map[string]Value,
	blocks map[string]*BasicBlock,
	tmp *int,
) (fixup, error) {
	def := ""
	rest := line
	if eq := strings.Index(line, "="); eq >= 0 && !strings.Contains(line[:eq], "(") {
		def = strings.TrimSpace(line[:eq])
		rest = strings.TrimSpace(line[eq+1:])
	}
	op, args, hasArgs := strings.Cut(rest, " ")
	if !hasArgs {
		args = ""
	}
	args = strings.TrimSpace(args)

	bind := func(v Value, reg *register) error {
		if def == "" {
			*tmp++
			def = fmt.Sprintf("t%d", *tmp)
		}
		if _, dup := env[def]; dup {
			return fmt.Errorf("redefinition of %q", def)
		}
		reg.name = def
		env[def] = v
		return nil
	}
	target := func(label string) (*BasicBlock, error) {
		if blk, ok := blocks[label]; ok {
			return blk, nil
		}
		return nil, fmt.Errorf("undefined block label %q in %q", label, line)
	}

	switch op {
	case "phi":
		names := splitOperands(args)
		if len(names) == 0 {
			return nil, fmt.Errorf("phi with no incoming values in %q", line)
		}
		i := &Phi{}
		if err := bind(i, &i.register); err != nil {
			return nil, err
		}
		b.Append(i)
		return func(resolve func(string) (Value, error)) error {
			for _, n := range names {
				v, err := resolve(n)
				if err != nil {
					return err
				}
				i.Edges = append(i.Edges, v)
			}
			return nil
		}, nil

	case "add", "sub", "mul", "sdiv":
		x, y, err := twoOperands(args, line)
		if err != nil {
			return nil, err
		}
		var bop BinaryOp
		switch op {
		case "add":
			bop = Add
		case "sub":
			bop = Sub
		case "mul":
			bop = Mul
		case "sdiv":
			bop = SDiv
		}
		i := &BinOp{Op: bop}
		if err := bind(i, &i.register); err != nil {
			return nil, err
		}
		b.Append(i)
		return func(resolve func(string) (Value, error)) (err error) {
			if i.X, err = resolve(x); err != nil {
				return err
			}
			i.Y, err = resolve(y)
			return err
		}, nil

	case "icmp":
		predName, cmpArgs, ok := strings.Cut(args, " ")
		if !ok {
			return nil, fmt.Errorf("malformed icmp %q", line)
		}
		var pred Predicate
		switch predName {
		case "eq":
			pred = EQ
		case "ne":
			pred = NE
		case "slt":
			pred = SLT
		case "sgt":
			pred = SGT
		default:
			return nil, fmt.Errorf("unknown icmp predicate %q in %q", predName, line)
		}
		x, y, err := twoOperands(cmpArgs, line)
		if err != nil {
			return nil, err
		}
		i := &ICmp{Pred: pred}
		if err := bind(i, &i.register); err != nil {
			return nil, err
		}
		b.Append(i)
		return func(resolve func(string) (Value, error)) (err error) {
			if i.X, err = resolve(x); err != nil {
				return err
			}
			i.Y, err = resolve(y)
			return err
		}, nil

	case "select":
		ops := splitOperands(args)
		if len(ops) != 3 {
			return nil, fmt.Errorf("select expects 3 operands in %q", line)
		}
		i := &Select{}
		if err := bind(i, &i.register); err != nil {
			return nil, err
		}
		b.Append(i)
		return func(resolve func(string) (Value, error)) (err error) {
			if i.Cond, err = resolve(ops[0]); err != nil {
				return err
			}
			if i.TrueVal, err = resolve(ops[1]); err != nil {
				return err
			}
			i.FalseVal, err = resolve(ops[2])
			return err
		}, nil

	case "alloca":
		i := &Alloca{}
		if err := bind(i, &i.register); err != nil {
			return nil, err
		}
		b.Append(i)
		return nil, nil

	case "load":
		i := &Load{}
		if err := bind(i, &i.register); err != nil {
			return nil, err
		}
		b.Append(i)
		ptr := args
		return func(resolve func(string) (Value, error)) (err error) {
			i.Ptr, err = resolve(ptr)
			return err
		}, nil

	case "store":
		val, ptr, err := twoOperands(args, line)
		if err != nil {
			return nil, err
		}
		i := &Store{}
		b.Append(i)
		return func(resolve func(string) (Value, error)) (err error) {
			if i.Val, err = resolve(val); err != nil {
				return err
			}
			i.Ptr, err = resolve(ptr)
			return err
		}, nil

	case "call":
		open := strings.IndexByte(args, '(')
		if open < 0 || !strings.HasSuffix(args, ")") {
			return nil, fmt.Errorf("malformed call %q", line)
		}
		callee := strings.TrimSpace(args[:open])
		argNames := splitOperands(args[open+1 : len(args)-1])
		i := &Call{Callee: callee}
		if err := bind(i, &i.register); err != nil {
			return nil, err
		}
		b.Append(i)
		return func(resolve func(string) (Value, error)) error {
			for _, n := range argNames {
				v, err := resolve(n)
				if err != nil {
					return err
				}
				i.Args = append(i.Args, v)
			}
			return nil
		}, nil

	case "cast", "inttoptr", "ptrtoint":
		var i Instruction
		var reg *register
		switch op {
		case "cast":
			c := &Cast{}
			i, reg = c, &c.register
		case "inttoptr":
			c := &IntToPtr{}
			i, reg = c, &c.register
		case "ptrtoint":
			c := &PtrToInt{}
			i, reg = c, &c.register
		}
		if err := bind(i.(Value), reg); err != nil {
			return nil, err
		}
		b.Append(i)
		src := args
		return func(resolve func(string) (Value, error)) error {
			v, err := resolve(src)
			if err != nil {
				return err
			}
			switch i := i.(type) {
			case *Cast:
				i.X = v
			case *IntToPtr:
				i.X = v
			case *PtrToInt:
				i.X = v
			}
			return nil
		}, nil

	case "jmp":
		blk, err := target(args)
		if err != nil {
			return nil, err
		}
		b.Append(&Jump{Target: blk})
		return nil, nil

	case "br":
		ops := splitOperands(args)
		if len(ops) != 3 {
			return nil, fmt.Errorf("br expects cond, then, else in %q", line)
		}
		then, err := target(ops[1])
		if err != nil {
			return nil, err
		}
		els, err := target(ops[2])
		if err != nil {
			return nil, err
		}
		i := &CondBr{Then: then, Else: els}
		b.Append(i)
		cond := ops[0]
		return func(resolve func(string) (Value, error)) (err error) {
			i.Cond, err = resolve(cond)
			return err
		}, nil

	case "ret":
		i := &Ret{}
		b.Append(i)
		if args == "" {
			return nil, nil
		}
		x := args
		return func(resolve func(string) (Value, error)) (err error) {
			i.X, err = resolve(x)
			return err
		}, nil
	}
	return nil, fmt.Errorf("unknown instruction %q", line)
}

func twoOperands(args, line string) (string, string, error) {
	ops := splitOperands(args)
	if len(ops) != 2 {
		return "", "", fmt.Errorf("expected 2 operands in %q", line)
	}
	return ops[0], ops[1], nil
}

func splitOperands(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// cutSuffix is like strings.CutSuffix, except that the remainder is also
// trimmed of surrounding white space when the suffix is found.
func cutSuffix(s, suffix string) (string, bool) {
	if !strings.HasSuffix(s, suffix) {
		return s, false
	}
	return strings.TrimSpace(s[:len(s)-len(suffix)]), true
}
