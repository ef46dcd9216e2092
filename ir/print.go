package ir

import (
	"fmt"
	"strings"
)

func opName(v Value) string {
	if v == nil {
		return "<nil>"
	}
	return v.Name()
}

func operandList(vs []Value) string {
	names := make([]string, len(vs))
	for i, v := range vs {
		names[i] = opName(v)
	}
	return strings.Join(names, ", ")
}

func (i *Phi) String() string {
	return fmt.Sprintf("%s = phi %s", i.name, operandList(i.Edges))
}

func (i *BinOp) String() string {
	return fmt.Sprintf("%s = %s %s, %s", i.name, i.Op, opName(i.X), opName(i.Y))
}

func (i *ICmp) String() string {
	return fmt.Sprintf("%s = icmp %s %s, %s", i.name, i.Pred, opName(i.X), opName(i.Y))
}

func (i *Select) String() string {
	return fmt.Sprintf("%s = select %s, %s, %s",
		i.name, opName(i.Cond), opName(i.TrueVal), opName(i.FalseVal))
}

func (i *Alloca) String() string {
	return fmt.Sprintf("%s = alloca", i.name)
}

func (i *Load) String() string {
	return fmt.Sprintf("%s = load %s", i.name, opName(i.Ptr))
}

func (i *Store) String() string {
	return fmt.Sprintf("store %s, %s", opName(i.Val), opName(i.Ptr))
}

func (i *Call) String() string {
	return fmt.Sprintf("%s = call %s(%s)", i.name, i.Callee, operandList(i.Args))
}

func (i *Cast) String() string {
	return fmt.Sprintf("%s = cast %s", i.name, opName(i.X))
}

func (i *IntToPtr) String() string {
	return fmt.Sprintf("%s = inttoptr %s", i.name, opName(i.X))
}

func (i *PtrToInt) String() string {
	return fmt.Sprintf("%s = ptrtoint %s", i.name, opName(i.X))
}

func (i *Jump) String() string {
	return fmt.Sprintf("jmp %s", i.Target.BlockName)
}

func (i *CondBr) String() string {
	return fmt.Sprintf("br %s, %s, %s", opName(i.Cond), i.Then.BlockName, i.Else.BlockName)
}

func (i *Ret) String() string {
	if i.X == nil {
		return "ret"
	}
	return fmt.Sprintf("ret %s", opName(i.X))
}

func (f *Function) String() string {
	var sb strings.Builder
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = p.Name()
	}
	fmt.Fprintf(&sb, "func %s(%s) {\n", f.FuncName, strings.Join(params, ", "))
	for _, b := range f.Blocks {
		fmt.Fprintf(&sb, "%s:\n", b.BlockName)
		for _, i := range b.Instrs {
			fmt.Fprintf(&sb, "  %s\n", i)
		}
	}
	sb.WriteString("}\n")
	return sb.String()
}
