package parser

import (
	"errors"
	"testing"

	"github.com/levforge/deslev/pkg/compiler/lexer"
	"github.com/levforge/deslev/pkg/level"
	"github.com/levforge/deslev/pkg/opcode"
)

func compile(t *testing.T, src string) *opcode.Program {
	t.Helper()
	p := New(lexer.New(src), nil)
	progs, err := p.Parse()
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if len(progs) != 1 {
		t.Fatalf("expected 1 program, got %d", len(progs))
	}
	return progs[0]
}

func compileErr(t *testing.T, src string) *Error {
	t.Helper()
	p := New(lexer.New(src), nil)
	_, err := p.Parse()
	if err == nil {
		t.Fatal("expected compile error, got nil")
	}
	var pe *Error
	if !errors.As(err, &pe) {
		t.Fatalf("expected *Error, got %T: %v", err, err)
	}
	return pe
}

func opsOf(prog *opcode.Program) []opcode.Op {
	ops := make([]opcode.Op, len(prog.Code))
	for i, ins := range prog.Code {
		ops[i] = ins.Op
	}
	return ops
}

func expectOps(t *testing.T, prog *opcode.Program, want []opcode.Op) {
	t.Helper()
	got := opsOf(prog)
	if len(got) != len(want) {
		t.Fatalf("instruction count: expected %d, got %d\n%s",
			len(want), len(got), prog.Disassemble())
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("instruction %d: expected %s, got %s\n%s",
				i, want[i], got[i], prog.Disassemble())
		}
	}
}

func TestMazeHeader(t *testing.T) {
	prog := compile(t, `MAZE: "tower1", random`)

	if prog.Name != "tower1" {
		t.Errorf("expected name %q, got %q", "tower1", prog.Name)
	}

	expectOps(t, prog, []opcode.Op{
		opcode.Push, opcode.Push, opcode.Push, opcode.Push,
		opcode.Push, opcode.Push, opcode.Push, opcode.Push,
		opcode.InitLevel,
		opcode.Push, opcode.LevelFlags,
		opcode.Push, opcode.LevelFlags,
	})

	if got := prog.Code[0].Operand.Int; got != int64(level.InitMazeGrid) {
		t.Errorf("expected mazegrid style %d, got %d", level.InitMazeGrid, got)
	}
	if got := prog.Code[1].Operand.Int; got != int64(level.HWall) {
		t.Errorf("expected HWall fill %d, got %d", level.HWall, got)
	}
	if got := prog.Code[9].Operand.Int; got != int64(level.MazeLevel) {
		t.Errorf("expected mazelevel flag %d, got %d", level.MazeLevel, got)
	}
}

func TestMazeCharFill(t *testing.T) {
	prog := compile(t, `MAZE: "dungeon", ' '`)

	if got := prog.Code[0].Operand.Int; got != int64(level.InitSolidFill) {
		t.Errorf("expected solidfill style %d, got %d", level.InitSolidFill, got)
	}
	if got := prog.Code[1].Operand.Int; got != int64(level.FromMapChar(' ')) {
		t.Errorf("expected fill terrain %d, got %d", level.FromMapChar(' '), got)
	}
}

func TestLevelFlags(t *testing.T) {
	prog := compile(t, "LEVEL: \"oracle\"\nFLAGS: noteleport, hardfloor")

	expectOps(t, prog, []opcode.Op{opcode.Push, opcode.LevelFlags})
	want := int64(level.NoTeleport | level.HardFloor)
	if got := prog.Code[0].Operand.Int; got != want {
		t.Errorf("expected flags %d, got %d", want, got)
	}
}

func TestLevelWithoutFlags(t *testing.T) {
	prog := compile(t, `LEVEL: "plain"`)

	expectOps(t, prog, []opcode.Op{opcode.Push, opcode.LevelFlags})
	if got := prog.Code[0].Operand.Int; got != 0 {
		t.Errorf("expected zero flags, got %d", got)
	}
}

func TestMultipleLevels(t *testing.T) {
	src := "LEVEL: \"first\"\nLEVEL: \"second\"\nMAZE: \"third\", random\n"
	p := New(lexer.New(src), nil)
	progs, err := p.Parse()
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if len(progs) != 3 {
		t.Fatalf("expected 3 programs, got %d", len(progs))
	}
	names := []string{"first", "second", "third"}
	for i, want := range names {
		if progs[i].Name != want {
			t.Errorf("program %d: expected name %q, got %q", i, want, progs[i].Name)
		}
	}
}

func TestPercentStatement(t *testing.T) {
	prog := compile(t, "LEVEL: \"x\"\n50%: EXIT\n")

	expectOps(t, prog, []opcode.Op{
		opcode.Push, opcode.LevelFlags,
		opcode.Push, opcode.Rn2, opcode.Push, opcode.Cmp,
		opcode.Push, opcode.Jge,
		opcode.Exit,
	})

	if got := prog.Code[2].Operand.Int; got != 100 {
		t.Errorf("expected rn2 bound 100, got %d", got)
	}
	if got := prog.Code[4].Operand.Int; got != 50 {
		t.Errorf("expected threshold 50, got %d", got)
	}
	// The jump at index 7 skips past the guarded statement.
	if got := prog.Code[6].Operand.Int; got != 2 {
		t.Errorf("expected jump offset 2, got %d", got)
	}
}

func TestIfElse(t *testing.T) {
	src := "LEVEL: \"x\"\n$n = 3\nIF [$n > 2] {\nEXIT\n} ELSE {\nEXIT\n}\n"
	prog := compile(t, src)

	expectOps(t, prog, []opcode.Op{
		opcode.Push, opcode.LevelFlags,
		opcode.Push, opcode.Push, opcode.VarInit,
		opcode.Push, opcode.Push, opcode.Cmp,
		opcode.Push, opcode.Jle,
		opcode.Exit,
		opcode.Push, opcode.Jmp,
		opcode.Exit,
	})

	// The > comparison compiles to the negated jump Jle that skips the
	// then block and lands on the else block.
	if got := prog.Code[8].Operand.Int; got != 4 {
		t.Errorf("expected then-skip offset 4, got %d", got)
	}
	// The unconditional jump at the end of the then block skips the
	// else block.
	if got := prog.Code[11].Operand.Int; got != 2 {
		t.Errorf("expected else-skip offset 2, got %d", got)
	}
}

func TestForLoopShape(t *testing.T) {
	prog := compile(t, "LEVEL: \"x\"\nFOR $i = 1 TO 5 {\n}\n")

	code := prog.Code
	n := len(code)
	if code[n-1].Op != opcode.Jne {
		t.Fatalf("expected trailing Jne, got %s", code[n-1].Op)
	}
	if code[n-2].Op != opcode.Push {
		t.Fatalf("expected back-jump offset push, got %s", code[n-2].Op)
	}
	if code[n-2].Operand.Int >= 0 {
		t.Errorf("expected negative back-jump offset, got %d", code[n-2].Operand.Int)
	}

	// Hidden end and step variables get their own slots.
	if len(prog.Vars) != 3 {
		t.Fatalf("expected 3 variable slots, got %d", len(prog.Vars))
	}
	if prog.Vars[0].Name != "i end" || prog.Vars[1].Name != "i" || prog.Vars[2].Name != "i step" {
		t.Errorf("unexpected variable layout: %+v", prog.Vars)
	}
}

func TestLoopShape(t *testing.T) {
	prog := compile(t, "LEVEL: \"x\"\nLOOP [3] {\nEXIT\n}\n")

	expectOps(t, prog, []opcode.Op{
		opcode.Push, opcode.LevelFlags,
		opcode.Push,
		opcode.Dec,
		opcode.Exit,
		opcode.Copy, opcode.Push, opcode.Cmp,
		opcode.Push, opcode.Jg,
		opcode.Pop,
	})

	// The back jump at index 9 returns to the Dec at index 3.
	if got := prog.Code[8].Operand.Int; got != -6 {
		t.Errorf("expected back-jump offset -6, got %d", got)
	}
}

func TestSwitchLayout(t *testing.T) {
	src := "LEVEL: \"x\"\nSWITCH [1d2] {\nCASE 0:\nBREAK\nCASE 1:\nBREAK\n}\n"
	prog := compile(t, src)

	code := prog.Code
	popIdx := len(code) - 1
	if code[popIdx].Op != opcode.Pop {
		t.Fatalf("expected trailing Pop, got %s\n%s", code[popIdx].Op, prog.Disassemble())
	}

	// The first jump skips the body section and lands on the check
	// table, which starts with a Copy of the switch value.
	firstJmp := -1
	for i, ins := range code {
		if ins.Op == opcode.Jmp {
			firstJmp = i
			break
		}
	}
	if firstJmp < 0 {
		t.Fatalf("no Jmp emitted\n%s", prog.Disassemble())
	}
	checkStart := firstJmp + int(code[firstJmp-1].Operand.Int)
	if code[checkStart].Op != opcode.Copy {
		t.Fatalf("check table at %d starts with %s, expected copy\n%s",
			checkStart, code[checkStart].Op, prog.Disassemble())
	}

	// Case checks jump backward into the body section.
	jeCount := 0
	for i, ins := range code {
		if ins.Op != opcode.Je {
			continue
		}
		jeCount++
		target := i + int(code[i-1].Operand.Int)
		if target <= firstJmp || target >= checkStart {
			t.Errorf("case check at %d jumps to %d, outside bodies (%d, %d)",
				i, target, firstJmp, checkStart)
		}
	}
	if jeCount != 2 {
		t.Errorf("expected 2 case checks, got %d", jeCount)
	}

	// Breaks and the body-section end jump all land on the Pop, so the
	// switch value leaves the stack exactly once.
	for i, ins := range code {
		if ins.Op != opcode.Jmp || i == firstJmp {
			continue
		}
		if target := i + int(code[i-1].Operand.Int); target != popIdx {
			t.Errorf("jump at %d targets %d, expected pop at %d", i, target, popIdx)
		}
	}
}

func TestSwitchCaseBodiesAreContiguous(t *testing.T) {
	src := "LEVEL: \"x\"\nSWITCH [2] {\nCASE 0:\nMESSAGE: \"a\"\nCASE 1:\nMESSAGE: \"b\"\nBREAK\n}\n"
	prog := compile(t, src)

	// A case body without BREAK must run straight into the next case's
	// body: between the two Message instructions there is no jump.
	code := prog.Code
	first, second := -1, -1
	for i, ins := range code {
		if ins.Op == opcode.Message {
			if first < 0 {
				first = i
			} else {
				second = i
			}
		}
	}
	if first < 0 || second < 0 {
		t.Fatalf("expected two message instructions\n%s", prog.Disassemble())
	}
	for i := first + 1; i < second; i++ {
		switch code[i].Op {
		case opcode.Jmp, opcode.Je, opcode.Jne, opcode.Jl, opcode.Jle, opcode.Jg, opcode.Jge:
			t.Errorf("jump at %d between case bodies breaks fallthrough\n%s",
				i, prog.Disassemble())
		}
	}
}

func TestDuplicateDefaultCase(t *testing.T) {
	src := "LEVEL: \"x\"\nSWITCH [1] {\nDEFAULT:\nBREAK\nDEFAULT:\nBREAK\n}\n"
	pe := compileErr(t, src)
	if pe.Kind != KindSyntax {
		t.Errorf("expected syntax error, got %s", pe.Kind)
	}
}

func TestFunctionDefinitionAndCall(t *testing.T) {
	src := "LEVEL: \"x\"\nFUNCTION place($a, $b) {\n}\nplace(1, 2)\n"
	prog := compile(t, src)

	if len(prog.Funcs) != 1 {
		t.Fatalf("expected 1 function, got %d", len(prog.Funcs))
	}
	fn := prog.Funcs[0]
	if fn.Name != "place" || fn.Params != 2 {
		t.Errorf("unexpected function info: %+v", fn)
	}
	if prog.Code[fn.Entry].Op != opcode.FramePush {
		t.Errorf("function entry %d is %s, expected frame_push", fn.Entry, prog.Code[fn.Entry].Op)
	}

	last := prog.Code[len(prog.Code)-1]
	if last.Op != opcode.Call {
		t.Fatalf("expected trailing Call, got %s", last.Op)
	}
	if last.Operand.Int != int64(fn.Entry) {
		t.Errorf("call targets %d, expected entry %d", last.Operand.Int, fn.Entry)
	}
}

func TestFunctionArityMismatch(t *testing.T) {
	src := "LEVEL: \"x\"\nFUNCTION place($a) {\n}\nplace(1, 2)\n"
	pe := compileErr(t, src)
	if pe.Kind != KindSyntax {
		t.Errorf("expected syntax error, got %s", pe.Kind)
	}
}

func TestDuplicateFunction(t *testing.T) {
	src := "LEVEL: \"x\"\nFUNCTION f() {\n}\nFUNCTION f() {\n}\n"
	pe := compileErr(t, src)
	if pe.Kind != KindDuplicateFunction {
		t.Errorf("expected duplicate function error, got %s", pe.Kind)
	}
}

func TestUndeclaredVariable(t *testing.T) {
	pe := compileErr(t, "LEVEL: \"x\"\n$a = $missing\n")
	if pe.Kind != KindUndeclaredVariable {
		t.Errorf("expected undeclared variable error, got %s", pe.Kind)
	}
}

func TestUndeclaredIndexedVariablePosition(t *testing.T) {
	pe := compileErr(t, "LEVEL: \"x\"\n$a = $missing[0]\n")
	if pe.Kind != KindUndeclaredVariable {
		t.Errorf("expected undeclared variable error, got %s", pe.Kind)
	}
	// The position is the reference itself: $missing starts at line 2,
	// column 6.
	if pe.Line != 2 || pe.Column != 6 {
		t.Errorf("error at line %d, column %d, expected line 2, column 6", pe.Line, pe.Column)
	}
}

func TestBreakOutsideSwitch(t *testing.T) {
	pe := compileErr(t, "LEVEL: \"x\"\nBREAK\n")
	if pe.Kind != KindMismatchedNesting {
		t.Errorf("expected mismatched nesting error, got %s", pe.Kind)
	}
}

func TestStatementOutsideLevel(t *testing.T) {
	pe := compileErr(t, `MESSAGE: "homeless"`)
	if pe.Kind != KindSyntax {
		t.Errorf("expected syntax error, got %s", pe.Kind)
	}
}

func TestShuffleNeedsArray(t *testing.T) {
	src := "LEVEL: \"x\"\n$v = 1\nSHUFFLE: $v\n"
	pe := compileErr(t, src)
	if pe.Kind != KindSyntax {
		t.Errorf("expected syntax error, got %s", pe.Kind)
	}
}

func TestVariableForms(t *testing.T) {
	src := "LEVEL: \"x\"\n" +
		"$n = 2 + 3 * 4\n" +
		"$s = \"hello\"\n" +
		"$c = (3,4)\n" +
		"$a = { 1, 2, 3 }\n" +
		"$chars = { '.', 'L' }\n"
	prog := compile(t, src)

	want := []struct {
		name  string
		typ   opcode.VarType
		array bool
	}{
		{"n", opcode.VarInt, false},
		{"s", opcode.VarStr, false},
		{"c", opcode.VarCoord, false},
		{"a", opcode.VarInt, true},
		{"chars", opcode.VarMapChar, true},
	}
	if len(prog.Vars) != len(want) {
		t.Fatalf("expected %d variables, got %d: %+v", len(want), len(prog.Vars), prog.Vars)
	}
	for i, w := range want {
		v := prog.Vars[i]
		if v.Name != w.name || v.Type != w.typ || v.Array != w.array {
			t.Errorf("var %d: expected %+v, got %+v", i, w, v)
		}
	}
}

func TestArrayAssignmentCount(t *testing.T) {
	prog := compile(t, "LEVEL: \"x\"\n$a = { 10, 20, 30 }\n")

	expectOps(t, prog, []opcode.Op{
		opcode.Push, opcode.LevelFlags,
		opcode.Push, opcode.Push, opcode.Push,
		opcode.Push, opcode.VarInit,
	})
	// The element count travels above the values.
	if got := prog.Code[5].Operand.Int; got != 3 {
		t.Errorf("expected element count 3, got %d", got)
	}
}

func TestMonsterStatement(t *testing.T) {
	prog := compile(t, "LEVEL: \"x\"\nMONSTER: 'L', (10,5)\n")

	code := prog.Code
	last := code[len(code)-1]
	if last.Op != opcode.Monster {
		t.Fatalf("expected trailing Monster, got %s", last.Op)
	}
	// Class-only monster resolves to a random member of the class.
	monst := code[2].Operand
	if monst.Kind != opcode.KindMonst {
		t.Fatalf("expected monster operand, got %v", monst.Kind)
	}
	if monst.Monst.Class != int('L') {
		t.Errorf("expected class %d, got %d", 'L', monst.Monst.Class)
	}
}

func TestMapStatementDefaults(t *testing.T) {
	src := "MAZE: \"m\", random\nMAP\n...\n...\nENDMAP\n"
	prog := compile(t, src)

	code := prog.Code
	last := code[len(code)-1]
	if last.Op != opcode.Map {
		t.Fatalf("expected trailing Map, got %s", last.Op)
	}

	// MAP without GEOMETRY pushes placement defaults before the map
	// payload: coord, hasGeometry=0, roomFill=1.
	n := len(code)
	if code[n-7].Operand.Kind != opcode.KindCoord {
		t.Errorf("expected default coord push, got %v", code[n-7].Operand.Kind)
	}
	if code[n-6].Operand.Int != 0 {
		t.Errorf("expected hasGeometry 0, got %d", code[n-6].Operand.Int)
	}
	if code[n-5].Operand.Int != 1 {
		t.Errorf("expected roomFill 1, got %d", code[n-5].Operand.Int)
	}
	// data, height, width complete the payload.
	if code[n-4].Operand.Kind != opcode.KindStr {
		t.Errorf("expected map data string, got %v", code[n-4].Operand.Kind)
	}
	if code[n-3].Operand.Int != 2 {
		t.Errorf("expected height 2, got %d", code[n-3].Operand.Int)
	}
	if code[n-2].Operand.Int != 3 {
		t.Errorf("expected width 3, got %d", code[n-2].Operand.Int)
	}
}
