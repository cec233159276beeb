package vm

import (
	"errors"
	"strings"
	"testing"

	"github.com/levforge/deslev/pkg/compiler/lexer"
	"github.com/levforge/deslev/pkg/compiler/parser"
	"github.com/levforge/deslev/pkg/level"
	"github.com/levforge/deslev/pkg/opcode"
	"github.com/levforge/deslev/pkg/rng"
)

func compileLevel(t *testing.T, src string) *opcode.Program {
	t.Helper()
	p := parser.New(lexer.New(src), nil)
	progs, err := p.Parse()
	if err != nil {
		t.Fatalf("compile failed: %v", err)
	}
	if len(progs) != 1 {
		t.Fatalf("expected 1 program, got %d", len(progs))
	}
	return progs[0]
}

func runLevel(t *testing.T, src string, seed uint64) *level.Recorder {
	t.Helper()
	prog := compileLevel(t, src)
	rec := level.NewRecorder()
	if err := New(prog, rec, rng.New(seed)).Run(); err != nil {
		t.Fatalf("run failed: %v\n%s", err, prog.Disassemble())
	}
	return rec
}

func countLines(rec *level.Recorder, substr string) int {
	n := 0
	for _, line := range rec.Lines() {
		if strings.Contains(line, substr) {
			n++
		}
	}
	return n
}

func TestDeterministicTranscript(t *testing.T) {
	src := `MAZE: "det", random
MONSTER: random, random
$g = 2d6
GOLD: $g, random
TRAP: "arrow", random
`
	first := runLevel(t, src, 42).Transcript()
	second := runLevel(t, src, 42).Transcript()
	if first != second {
		t.Errorf("same seed produced different transcripts:\n%s\n----\n%s", first, second)
	}
}

func TestPercentStatistics(t *testing.T) {
	src := "MAZE: \"p\", random\n50%: MESSAGE: \"yes\"\n"
	hits := 0
	const runs = 500
	for seed := uint64(0); seed < runs; seed++ {
		rec := runLevel(t, src, seed)
		if countLines(rec, `message "yes"`) > 0 {
			hits++
		}
	}
	// A 50% chance over 500 independent seeds stays well inside these
	// bounds.
	if hits < 150 || hits > 350 {
		t.Errorf("50%% statement fired %d/%d times", hits, runs)
	}
}

func TestForLoopInclusive(t *testing.T) {
	rec := runLevel(t, "LEVEL: \"f\"\nFOR $i = 1 TO 3 {\nMESSAGE: \"tick\"\n}\n", 1)
	if got := countLines(rec, `message "tick"`); got != 3 {
		t.Errorf("expected 3 iterations, got %d", got)
	}
}

func TestForLoopDownward(t *testing.T) {
	rec := runLevel(t, "LEVEL: \"f\"\nFOR $i = 5 TO 2 {\nMESSAGE: \"tick\"\n}\n", 1)
	if got := countLines(rec, `message "tick"`); got != 4 {
		t.Errorf("expected 4 iterations, got %d", got)
	}
}

func TestForLoopSingleIteration(t *testing.T) {
	rec := runLevel(t, "LEVEL: \"f\"\nFOR $i = 2 TO 2 {\nMESSAGE: \"tick\"\n}\n", 1)
	if got := countLines(rec, `message "tick"`); got != 1 {
		t.Errorf("expected 1 iteration, got %d", got)
	}
}

func TestLoopCount(t *testing.T) {
	rec := runLevel(t, "LEVEL: \"l\"\nLOOP [4] {\nMESSAGE: \"beat\"\n}\n", 1)
	if got := countLines(rec, `message "beat"`); got != 4 {
		t.Errorf("expected 4 iterations, got %d", got)
	}
}

func TestSwitchSelectsMatchingCase(t *testing.T) {
	src := `LEVEL: "s"
$n = 2
SWITCH [$n] {
CASE 1:
MESSAGE: "one"
BREAK
CASE 2:
MESSAGE: "two"
BREAK
DEFAULT:
MESSAGE: "other"
}
`
	rec := runLevel(t, src, 1)
	if got := countLines(rec, "message"); got != 1 {
		t.Fatalf("expected 1 message, got %d: %v", got, rec.Lines())
	}
	if countLines(rec, `message "two"`) != 1 {
		t.Errorf("expected case 2 to run: %v", rec.Lines())
	}
}

func TestSwitchFallsThroughWithoutBreak(t *testing.T) {
	src := `LEVEL: "s"
SWITCH [2] {
CASE 2:
MESSAGE: "two"
DEFAULT:
MESSAGE: "other"
}
`
	rec := runLevel(t, src, 1)
	if countLines(rec, `message "two"`) != 1 || countLines(rec, `message "other"`) != 1 {
		t.Errorf("expected fallthrough into default: %v", rec.Lines())
	}
}

func TestSwitchCaseFallthrough(t *testing.T) {
	src := `LEVEL: "s"
$v = 0
SWITCH [$v] {
CASE 0:
MESSAGE: "zero"
CASE 1:
MESSAGE: "one"
BREAK
}
`
	rec := runLevel(t, src, 1)
	if countLines(rec, `message "zero"`) != 1 || countLines(rec, `message "one"`) != 1 {
		t.Errorf("expected case 0 to fall through into case 1: %v", rec.Lines())
	}
}

func TestSwitchFallingOffLastCaseExits(t *testing.T) {
	src := `LEVEL: "s"
SWITCH [0] {
CASE 0:
MESSAGE: "only"
}
MESSAGE: "after"
`
	rec := runLevel(t, src, 1)
	if countLines(rec, `message "only"`) != 1 || countLines(rec, `message "after"`) != 1 {
		t.Errorf("expected the switch to run once and exit: %v", rec.Lines())
	}
}

func TestSwitchDefaultOnly(t *testing.T) {
	src := `LEVEL: "s"
SWITCH [7] {
CASE 1:
MESSAGE: "one"
BREAK
DEFAULT:
MESSAGE: "other"
}
`
	rec := runLevel(t, src, 1)
	if got := countLines(rec, `message "other"`); got != 1 {
		t.Errorf("expected default case, got %d messages: %v", got, rec.Lines())
	}
	if countLines(rec, `message "one"`) != 0 {
		t.Errorf("case 1 must not run: %v", rec.Lines())
	}
}

func TestFunctionCallWithArguments(t *testing.T) {
	src := `LEVEL: "fn"
FUNCTION chant($n) {
LOOP [$n] {
MESSAGE: "hi"
}
}
chant(2)
chant(3)
`
	rec := runLevel(t, src, 1)
	if got := countLines(rec, `message "hi"`); got != 5 {
		t.Errorf("expected 5 messages, got %d", got)
	}
}

func TestFunctionScopeRestored(t *testing.T) {
	src := `LEVEL: "fn"
$n = 3
FUNCTION clobber($n) {
$n = 100
}
clobber(1)
LOOP [$n] {
MESSAGE: "kept"
}
`
	rec := runLevel(t, src, 1)
	if got := countLines(rec, `message "kept"`); got != 3 {
		t.Errorf("expected outer $n to survive the call, got %d iterations", got)
	}
}

func TestDivisionByZeroKeepsDividend(t *testing.T) {
	src := `LEVEL: "d"
$a = 7 / 0
LOOP [$a] {
MESSAGE: "a"
}
`
	rec := runLevel(t, src, 1)
	if got := countLines(rec, `message "a"`); got != 7 {
		t.Errorf("expected 7/0 to evaluate to 7, got %d iterations", got)
	}
}

func TestModuloByZeroYieldsZero(t *testing.T) {
	src := `LEVEL: "d"
$a = 7 % 0
IF [$a == 0] {
MESSAGE: "zero"
}
`
	rec := runLevel(t, src, 1)
	if countLines(rec, `message "zero"`) != 1 {
		t.Errorf("expected 7%%0 to evaluate to 0: %v", rec.Lines())
	}
}

func TestExitStopsExecution(t *testing.T) {
	src := `LEVEL: "e"
MESSAGE: "before"
EXIT
MESSAGE: "after"
`
	rec := runLevel(t, src, 1)
	if countLines(rec, `message "before"`) != 1 || countLines(rec, `message "after"`) != 0 {
		t.Errorf("EXIT must stop the program: %v", rec.Lines())
	}
}

func TestShuffleIsDeterministicPerSeed(t *testing.T) {
	src := `LEVEL: "sh"
$chars = { 10, 20, 30, 40 }
SHUFFLE: $chars
$v = $chars[0]
LOOP [$v] {
MESSAGE: "n"
}
`
	first := runLevel(t, src, 9).Transcript()
	second := runLevel(t, src, 9).Transcript()
	if first != second {
		t.Errorf("shuffle not deterministic for a fixed seed")
	}
	// Whatever order the shuffle picks, element 0 is one of the four
	// original values.
	got := countLines(runLevel(t, src, 9), `message "n"`)
	switch got {
	case 10, 20, 30, 40:
	default:
		t.Errorf("shuffled array lost its elements: %d messages", got)
	}
}

func TestMapPlacementWithGeometry(t *testing.T) {
	src := "MAZE: \"m\", random\nGEOMETRY: left, top\nMAP\n---\n|..\n---\nENDMAP\nSTAIR: (1,1), up\n"
	rec := runLevel(t, src, 1)
	if countLines(rec, "map at=(2,0) size=3x3") != 1 {
		t.Errorf("expected left/top placement: %v", rec.Lines())
	}
	if countLines(rec, "stair (1,1) up=true") != 1 {
		t.Errorf("expected stair placement: %v", rec.Lines())
	}
}

func TestFlagsAndMapDoorCell(t *testing.T) {
	src := "MAZE: \"gate\", ' '\nFLAGS: noteleport\nGEOMETRY: left, top\nMAP\n---\n|.+\n---\nENDMAP\n"
	rec := runLevel(t, src, 1)

	if countLines(rec, "flags 0x1") != 1 {
		t.Errorf("expected the noteleport flag recorded: %v", rec.Lines())
	}

	// The single + in the map block becomes the only door cell, at the
	// placed offset: map at (2,0), door at map (2,1).
	doors := 0
	dx, dy := -1, -1
	for y := 0; y < level.Height; y++ {
		for x := 0; x < level.Width; x++ {
			if rec.TerrainAt(x, y) == level.Door {
				doors++
				dx, dy = x, y
			}
		}
	}
	if doors != 1 || dx != 4 || dy != 1 {
		t.Errorf("expected exactly one door cell at (4,1), got %d at (%d,%d)", doors, dx, dy)
	}
}

func TestSelectionFeaturePlacement(t *testing.T) {
	src := `LEVEL: "f"
$s = selection: fillrect(1,1,2,2)
FOUNTAIN: $s
SINK: (5,5)
POOL: $s
`
	rec := runLevel(t, src, 1)
	if got := countLines(rec, "fountain"); got != 4 {
		t.Errorf("expected a fountain per selected cell, got %d: %v", got, rec.Lines())
	}
	if countLines(rec, "sink (5,5)") != 1 {
		t.Errorf("expected a single sink: %v", rec.Lines())
	}
	if got := countLines(rec, "pool"); got != 4 {
		t.Errorf("expected a pool per selected cell, got %d: %v", got, rec.Lines())
	}
}

func TestStringConcatenation(t *testing.T) {
	prog := &opcode.Program{Name: "c", Code: []opcode.Instruction{
		{Op: opcode.Push, Operand: opcode.NewStr("bug")},
		{Op: opcode.Push, Operand: opcode.NewStr("bear")},
		{Op: opcode.MathAdd},
		{Op: opcode.Message},
	}}
	rec := level.NewRecorder()
	if err := New(prog, rec, rng.New(1)).Run(); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if countLines(rec, `message "bugbear"`) != 1 {
		t.Errorf("expected concatenated message: %v", rec.Lines())
	}
}

func TestMonsterPlacement(t *testing.T) {
	rec := runLevel(t, "LEVEL: \"m\"\nMONSTER: 'L', (10,5), peaceful\n", 1)
	if countLines(rec, "monster class=76 id=-1 at=(10,5) inventory=0") != 1 {
		t.Errorf("unexpected monster transcript: %v", rec.Lines())
	}
}

func TestRuntimeErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		prog *opcode.Program
		kind ErrorKind
	}{
		{
			name: "stack underflow",
			prog: &opcode.Program{Name: "u", Code: []opcode.Instruction{{Op: opcode.Cmp}}},
			kind: StackUnderflow,
		},
		{
			name: "type mismatch",
			prog: &opcode.Program{Name: "t", Code: []opcode.Instruction{
				{Op: opcode.Push, Operand: opcode.NewStr("oops")},
				{Op: opcode.LevelFlags},
			}},
			kind: TypeMismatch,
		},
		{
			name: "unset variable",
			prog: &opcode.Program{
				Name: "v",
				Code: []opcode.Instruction{
					{Op: opcode.Push, Operand: opcode.NewVar(opcode.VarRef{Slot: 0, Name: "x"})},
					{Op: opcode.Pop},
				},
				Vars: []opcode.VarInfo{{Name: "x"}},
			},
			kind: UnknownFunctionOrVariable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.prog, level.NewRecorder(), rng.New(1)).Run()
			if err == nil {
				t.Fatal("expected runtime error, got nil")
			}
			var re *RuntimeError
			if !errors.As(err, &re) {
				t.Fatalf("expected *RuntimeError, got %T: %v", err, err)
			}
			if re.Kind != tt.kind {
				t.Errorf("expected %s, got %s", tt.kind, re.Kind)
			}
		})
	}
}

func TestTraceObserver(t *testing.T) {
	prog := compileLevel(t, "LEVEL: \"t\"\nMESSAGE: \"x\"\n")
	var seen []opcode.Op
	in := New(prog, level.NewRecorder(), rng.New(1), WithTrace(func(_ int, op opcode.Op, _ int) {
		seen = append(seen, op)
	}))
	if err := in.Run(); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(seen) != len(prog.Code) {
		t.Errorf("trace saw %d instructions, expected %d", len(seen), len(prog.Code))
	}
}
