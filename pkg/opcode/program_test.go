package opcode

import (
	"strings"
	"testing"
)

func TestOpString(t *testing.T) {
	tests := []struct {
		op   Op
		name string
	}{
		{Push, "push"},
		{Monster, "monster"},
		{SelComplement, "sel_complement"},
		{InitLevel, "init_level"},
		{Op(200), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.name {
			t.Errorf("Op(%d).String() = %q, want %q", tt.op, got, tt.name)
		}
	}
}

func TestOperandString(t *testing.T) {
	tests := []struct {
		operand *Operand
		want    string
	}{
		{NewInt(42), "42"},
		{NewStr("hi"), `"hi"`},
		{NewVar(VarRef{Slot: 2, Name: "gold"}), "$gold@2"},
		{NewCoord(Coord{X: 3, Y: 7}), "(3,7)"},
		{NewCoord(Coord{IsRandom: true}), "(rnd)"},
		{NewRegion(Rect{X1: 1, Y1: 2, X2: 3, Y2: 4}), "(1,2,3,4)"},
	}
	for _, tt := range tests {
		if got := tt.operand.String(); got != tt.want {
			t.Errorf("operand String() = %q, want %q", got, tt.want)
		}
	}
}

func TestDisassemble(t *testing.T) {
	p := &Program{
		Name: "mine-1",
		Code: []Instruction{
			{Op: Push, Operand: NewInt(7)},
			{Op: Pop},
			{Op: Exit},
		},
		Vars: []VarInfo{{Name: "n", Type: VarInt}},
	}

	out := p.Disassemble()
	if !strings.HasPrefix(out, `level "mine-1" (3 instructions, 1 vars, 0 funcs)`) {
		t.Errorf("unexpected header: %q", strings.SplitN(out, "\n", 2)[0])
	}
	for _, want := range []string{"push", "pop", "exit", "7"} {
		if !strings.Contains(out, want) {
			t.Errorf("disassembly lacks %q:\n%s", want, out)
		}
	}
}
